//go:build linux

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lvmcore/lvmcore/pkg/devscan"
)

// blockDeviceFilter accepts any regular file or block device under the
// scanned directory; real deployments scan /dev, tests point --dir at
// a directory of loopback-backed image files.
type blockDeviceFilter struct{}

func (blockDeviceFilter) Accept(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	mode := info.Mode()
	return mode.IsRegular() || (mode&os.ModeDevice != 0 && mode&os.ModeCharDevice == 0)
}

// openDirIterator wraps devscan.NewDirIterator, resolving dir to an
// absolute path so logged device names are unambiguous.
func openDirIterator(dir string) (devscan.Iterator, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("lvcore: resolve %s: %w", dir, err)
	}
	it, err := devscan.NewDirIterator(abs, blockDeviceFilter{})
	if err != nil {
		return nil, fmt.Errorf("lvcore: open %s: %w", abs, err)
	}
	return it, nil
}

//go:build linux

package devscan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// FileDevice is a real block device (or a flat image file standing in
// for one), read and written with pread/pwrite so concurrent callers
// never perturb a shared file offset.
type FileDevice struct {
	path string
	f    *os.File
}

// OpenFileDevice opens path for read/write.
func OpenFileDevice(path string) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("devscan: open %s: %w", path, err)
	}
	return &FileDevice{path: path, f: f}, nil
}

// Close releases the underlying file handle.
func (d *FileDevice) Close() error {
	return d.f.Close()
}

func (d *FileDevice) Name() string { return d.path }

func (d *FileDevice) ReadAt(_ context.Context, offset int64, buf []byte) error {
	n, err := unix.Pread(int(d.f.Fd()), buf, offset)
	if err != nil {
		return fmt.Errorf("devscan: read %s at %d: %w", d.path, offset, err)
	}
	if n != len(buf) {
		return fmt.Errorf("devscan: short read on %s: got %d, want %d", d.path, n, len(buf))
	}
	return nil
}

func (d *FileDevice) WriteAt(_ context.Context, offset int64, buf []byte) error {
	n, err := unix.Pwrite(int(d.f.Fd()), buf, offset)
	if err != nil {
		return fmt.Errorf("devscan: write %s at %d: %w", d.path, offset, err)
	}
	if n != len(buf) {
		return fmt.Errorf("devscan: short write on %s: wrote %d, want %d", d.path, n, len(buf))
	}
	return nil
}

func (d *FileDevice) ZeroAt(ctx context.Context, offset int64, length int64) error {
	const chunk = 64 * 1024
	zeros := make([]byte, chunk)
	for length > 0 {
		n := int64(chunk)
		if n > length {
			n = length
		}
		if err := d.WriteAt(ctx, offset, zeros[:n]); err != nil {
			return err
		}
		offset += n
		length -= n
	}
	return nil
}

// DirIterator scans a directory for candidate device nodes, applying
// filter to each path, opening matches as FileDevice.
type DirIterator struct {
	paths  []string
	pos    int
	opened []*FileDevice
}

// NewDirIterator lists dir and keeps entries filter accepts.
func NewDirIterator(dir string, filter Filter) (*DirIterator, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("devscan: list %s: %w", dir, err)
	}
	it := &DirIterator{}
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		if filter.Accept(p) {
			it.paths = append(it.paths, p)
		}
	}
	return it, nil
}

func (it *DirIterator) Next() (Device, bool) {
	if it.pos >= len(it.paths) {
		return nil, false
	}
	p := it.paths[it.pos]
	it.pos++
	d, err := OpenFileDevice(p)
	if err != nil {
		// Unreadable candidates are skipped, not fatal to the scan;
		// the aggregator treats a device it cannot parse the same as
		// one that fails validation.
		return it.Next()
	}
	it.opened = append(it.opened, d)
	return d, true
}

func (it *DirIterator) Destroy() error {
	var first error
	for _, d := range it.opened {
		if err := d.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

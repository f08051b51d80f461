//go:build linux

package fsnotify

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// MknodNotifier creates and removes the classic "/dev/<vg>/<lv>" block
// device node directly with mknod(2), the way a pre-udev system (and
// the original's fs.c) populated /dev itself.
type MknodNotifier struct {
	// DevDir is the root under which VG subdirectories are created,
	// e.g. "/dev".
	DevDir string
}

// NewMknodNotifier returns a MknodNotifier rooted at devDir.
func NewMknodNotifier(devDir string) *MknodNotifier {
	return &MknodNotifier{DevDir: devDir}
}

func (m *MknodNotifier) lvPath(vgName, lvName string) string {
	return filepath.Join(m.DevDir, vgName, lvName)
}

func (m *MknodNotifier) AddLV(vgName, lvName string, major, minor uint32) error {
	dir := filepath.Join(m.DevDir, vgName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("fsnotify: create %s: %w", dir, err)
	}
	path := m.lvPath(vgName, lvName)
	_ = os.Remove(path) // stale node from a previous run, if any
	dev := unix.Mkdev(major, minor)
	if err := unix.Mknod(path, unix.S_IFBLK|0660, int(dev)); err != nil {
		return fmt.Errorf("fsnotify: mknod %s: %w", path, err)
	}
	return nil
}

func (m *MknodNotifier) DelLV(vgName, lvName string) error {
	path := m.lvPath(vgName, lvName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("fsnotify: remove %s: %w", path, err)
	}
	return nil
}

package devscan

import (
	"context"
	"fmt"
)

// MemDevice is a []byte-backed Device used by every diskrep round-trip
// test and by the metadata reconstruction tests.
type MemDevice struct {
	name string
	data []byte
}

// NewMemDevice returns a MemDevice named name with size bytes of
// zeroed backing storage.
func NewMemDevice(name string, size int) *MemDevice {
	return &MemDevice{name: name, data: make([]byte, size)}
}

// Bytes exposes the underlying buffer for test assertions.
func (d *MemDevice) Bytes() []byte {
	return d.data
}

func (d *MemDevice) Name() string { return d.name }

func (d *MemDevice) ReadAt(_ context.Context, offset int64, buf []byte) error {
	if offset < 0 || offset+int64(len(buf)) > int64(len(d.data)) {
		return fmt.Errorf("memdevice %s: short read at %d, len %d (size %d)", d.name, offset, len(buf), len(d.data))
	}
	copy(buf, d.data[offset:offset+int64(len(buf))])
	return nil
}

func (d *MemDevice) WriteAt(_ context.Context, offset int64, buf []byte) error {
	if offset < 0 || offset+int64(len(buf)) > int64(len(d.data)) {
		return fmt.Errorf("memdevice %s: short write at %d, len %d (size %d)", d.name, offset, len(buf), len(d.data))
	}
	copy(d.data[offset:offset+int64(len(buf))], buf)
	return nil
}

func (d *MemDevice) ZeroAt(_ context.Context, offset int64, length int64) error {
	if offset < 0 || offset+length > int64(len(d.data)) {
		return fmt.Errorf("memdevice %s: short zero at %d, len %d (size %d)", d.name, offset, length, len(d.data))
	}
	for i := offset; i < offset+length; i++ {
		d.data[i] = 0
	}
	return nil
}

// SliceIterator iterates a fixed, pre-built list of devices — the test
// stand-in for a real directory scan.
type SliceIterator struct {
	devices []Device
	pos     int
}

// NewSliceIterator wraps devices for iteration.
func NewSliceIterator(devices ...Device) *SliceIterator {
	return &SliceIterator{devices: devices}
}

func (it *SliceIterator) Next() (Device, bool) {
	if it.pos >= len(it.devices) {
		return nil, false
	}
	d := it.devices[it.pos]
	it.pos++
	return d, true
}

func (it *SliceIterator) Destroy() error { return nil }

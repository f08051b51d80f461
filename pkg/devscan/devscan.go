// Package devscan is the device iteration/filtering collaborator spec
// §6.4 names: dev_iter_create/dev_iter_get/dev_iter_destroy, and the
// dev_read/dev_write/dev_zero/dev_name operations a Device exposes.
package devscan

import "context"

// Device is a block device (or a stand-in for one in tests). All
// offsets and lengths are byte offsets/lengths from the start of the
// device, matching the original's dev_read/dev_write contract.
type Device interface {
	// Name returns a stable, human-readable path for logging.
	Name() string
	// ReadAt reads exactly len(buf) bytes at offset, or returns an
	// error — short reads are always surfaced as an error rather than
	// a partial-length return, so callers never have to check n.
	ReadAt(ctx context.Context, offset int64, buf []byte) error
	// WriteAt writes exactly len(buf) bytes at offset.
	WriteAt(ctx context.Context, offset int64, buf []byte) error
	// ZeroAt fills length bytes at offset with zeros.
	ZeroAt(ctx context.Context, offset int64, length int64) error
}

// Filter decides whether a candidate device path should be considered
// during a scan (e.g. "looks like a block device", "passes a
// name/type allowlist").
type Filter interface {
	Accept(path string) bool
}

// Iterator yields devices one at a time. Destroy releases any
// underlying resource (open directory handles, etc.) and must be
// called exactly once, on every exit path.
type Iterator interface {
	// Next returns the next device, or (nil, false) when exhausted.
	Next() (Device, bool)
	Destroy() error
}

// AcceptAllFilter accepts every candidate path.
type AcceptAllFilter struct{}

// Accept always returns true.
func (AcceptAllFilter) Accept(path string) bool { return true }

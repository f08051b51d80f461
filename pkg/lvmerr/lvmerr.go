// Package lvmerr defines the error-kind taxonomy shared by every lvmcore
// package: I/O, validation, capacity, allocation, and state errors.
// Callers distinguish kinds with errors.Is against the sentinels below.
package lvmerr

import "errors"

var (
	// ErrIO marks short reads/writes and device-mapper ioctl failures.
	// Never retried.
	ErrIO = errors.New("lvmcore: i/o error")

	// ErrValidation marks metadata that fails a consistency check: an
	// unknown metadata version, a PV set or PE map that breaks a VG
	// invariant, a segment that cannot be turned into a target row, or
	// a record that cannot be encoded. ReadDisk does not return it for
	// bad magic, an unknown version, or a foreign VG name; it returns
	// (nil, nil) for those.
	ErrValidation = errors.New("lvmcore: validation error")

	// ErrCapacity marks a fixed-size on-disk region overflowing: too
	// many uuids for the uuid-list region, or more live LVs than the
	// LV table's lv_max slots.
	ErrCapacity = errors.New("lvmcore: capacity exceeded")

	// ErrAllocation marks arena exhaustion.
	ErrAllocation = errors.New("lvmcore: allocation failed")

	// ErrState marks the kernel refusing an operation because of
	// device state: CREATE of an existing name, REMOVE of an open
	// device, RELOAD of an absent device.
	ErrState = errors.New("lvmcore: device state error")
)

// Package option provides the functional-options pattern used by
// lvmcore's entry points for reading a PV, collecting a VG's PVs, and
// driving the activation engine.
package option

import (
	"github.com/lvmcore/lvmcore/pkg/logging"
)

// ReadOptions configures a single ReadDisk call.
type ReadOptions struct {
	// ExpectedVGName, if non-empty, rejects a PV whose on-disk
	// vg_name differs (spec §4.C step 5).
	ExpectedVGName string
	Logger         *logging.Logger
}

// ReadOption mutates ReadOptions.
type ReadOption func(*ReadOptions)

// WithExpectedVGName rejects any PV that does not belong to name.
func WithExpectedVGName(name string) ReadOption {
	return func(o *ReadOptions) {
		o.ExpectedVGName = name
	}
}

// WithReadLogger attaches a logging sink to a read operation.
func WithReadLogger(l *logging.Logger) ReadOption {
	return func(o *ReadOptions) {
		o.Logger = l
	}
}

// NewReadOptions applies opts over the zero value.
func NewReadOptions(opts ...ReadOption) ReadOptions {
	var o ReadOptions
	o.Logger = logging.DefaultLogger()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ActivateOptions configures the devmapper activation engine.
type ActivateOptions struct {
	Logger *logging.Logger
	// StripedWireQuirk preserves the original target's omission of a
	// stripes-count/chunk-size prefix on striped targets (spec §9 Open
	// Question). Default true.
	StripedWireQuirk bool
	// ChunkSizeSectors is the chunk size reported to the kernel
	// striped target when StripedWireQuirk is false.
	ChunkSizeSectors uint64
}

// ActivateOption mutates ActivateOptions.
type ActivateOption func(*ActivateOptions)

// WithActivateLogger attaches a logging sink to the activation engine.
func WithActivateLogger(l *logging.Logger) ActivateOption {
	return func(o *ActivateOptions) {
		o.Logger = l
	}
}

// WithStripedWireQuirk toggles the historical unprefixed striped
// parameter format. Passing false emits the kernel-documented
// "<stripes> <chunk_size> <dev> <sector> ..." form instead.
func WithStripedWireQuirk(enabled bool) ActivateOption {
	return func(o *ActivateOptions) {
		o.StripedWireQuirk = enabled
	}
}

// WithChunkSizeSectors sets the chunk size used when the wire quirk is
// disabled.
func WithChunkSizeSectors(sectors uint64) ActivateOption {
	return func(o *ActivateOptions) {
		o.ChunkSizeSectors = sectors
	}
}

// NewActivateOptions applies opts over the documented defaults.
func NewActivateOptions(opts ...ActivateOption) ActivateOptions {
	o := ActivateOptions{
		Logger:           logging.DefaultLogger(),
		StripedWireQuirk: true,
		ChunkSizeSectors: 8,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

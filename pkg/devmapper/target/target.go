// Package target is the segment-to-target translator (spec component
// F): it turns one reconstructed metadata.Segment into the single
// device-mapper table row that represents it.
//
// Grounded on _emit_target in original_source/lib/activate/activate.c.
package target

import (
	"fmt"
	"strings"

	"github.com/lvmcore/lvmcore/pkg/devmapper/dmtask"
	"github.com/lvmcore/lvmcore/pkg/lvmerr"
	"github.com/lvmcore/lvmcore/pkg/metadata"
	"github.com/lvmcore/lvmcore/pkg/option"
)

// DeviceNamer returns the kernel-visible path a segment's area should
// reference (e.g. "/dev/sdb" for the PV backing the area). Kept as an
// injected function rather than a method on metadata.PhysicalVolume so
// this package has no dependency on how a PV's device was opened.
type DeviceNamer func(pv *metadata.PhysicalVolume) string

// EmitTarget builds the TargetRow for one segment: "linear" if
// seg.Stripes == 1, else "striped", at logical start/length scaled by
// extentSize (sectors per extent), with one "<dev> <start_sector>"
// pair per area.
//
// The original has a known quirk the comment in activate.c does not
// fully resolve: _emit_target never actually prepends the
// "<stripes> <chunk_size>" prefix the real kernel striped target
// requires, appearing to pass only the area list. lvmcore reproduces
// that byte-for-byte when opts.StripedWireQuirk is true (the default,
// for parity with the historical binary) and emits the
// kernel-documented prefixed form otherwise.
func EmitTarget(seg metadata.Segment, extentSize uint64, namer DeviceNamer, opts ...option.ActivateOption) (dmtask.TargetRow, error) {
	o := option.NewActivateOptions(opts...)

	if seg.Stripes == 0 {
		return dmtask.TargetRow{}, fmt.Errorf("%w: segment has zero stripes", lvmerr.ErrValidation)
	}
	if len(seg.Areas) != int(seg.Stripes) {
		return dmtask.TargetRow{}, fmt.Errorf("%w: segment declares %d stripes but has %d areas",
			lvmerr.ErrValidation, seg.Stripes, len(seg.Areas))
	}

	targetType := "linear"
	if seg.Stripes > 1 {
		targetType = "striped"
	}

	parts := make([]string, 0, len(seg.Areas)+2)
	if seg.Stripes > 1 && !o.StripedWireQuirk {
		parts = append(parts, fmt.Sprintf("%d", seg.Stripes), fmt.Sprintf("%d", o.ChunkSizeSectors))
	}
	for _, area := range seg.Areas {
		dev := namer(area.PV)
		if dev == "" {
			return dmtask.TargetRow{}, fmt.Errorf("%w: no device name for PV %s", lvmerr.ErrValidation, area.PV.UUID)
		}
		startSector := uint64(area.PV.PEStart) + uint64(area.StartPE)*extentSize
		parts = append(parts, fmt.Sprintf("%s %d", dev, startSector))
	}

	params := strings.Join(parts, " ")

	return dmtask.TargetRow{
		StartSector:  extentSize * uint64(seg.LE),
		LengthSector: extentSize * uint64(seg.Len),
		Type:         targetType,
		Params:       params,
	}, nil
}

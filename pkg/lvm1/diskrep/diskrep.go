// Package diskrep implements the PV reader and writer (spec components
// C and D): locating, validating, and round-tripping the per-PV
// metadata region described by pkg/lvm1/layout, and the VG aggregator
// (component E) that collects PV views belonging to one VG across a
// device scan.
//
// Grounded line-for-line on original_source/lib/format1/disk-rep.c's
// read_disk/read_pvs_in_vg/_write_all_pvd/write_pvds.
package diskrep

import (
	"context"
	"fmt"

	"github.com/lvmcore/lvmcore/pkg/devscan"
	"github.com/lvmcore/lvmcore/pkg/lvm1/arena"
	"github.com/lvmcore/lvmcore/pkg/lvm1/layout"
	"github.com/lvmcore/lvmcore/pkg/lvmerr"
	"github.com/lvmcore/lvmcore/pkg/option"
)

// PhysicalVolume is the in-core, PV-local view of a VG: the canonical
// PV record plus (unless orphan) the VG record, uuid list, LV table,
// and PE map read from one device.
type PhysicalVolume struct {
	Device devscan.Device
	PVD    layout.PVDisk

	// The following are populated only when PVD is not an orphan.
	VGD   layout.VGDisk
	UUIDs []string
	LVs   []layout.LVDisk // live slots only, in on-disk slot order
	PEs   []layout.PEDisk // exactly PVD.PETotal entries
}

// IsOrphan reports whether this PV belongs to no VG.
func (pv *PhysicalVolume) IsOrphan() bool {
	return pv.PVD.IsOrphan()
}

// migrateVersion performs the version 2 -> 1 migration of spec §3.1,
// never persisted back to disk. Grounded on _munge_formats.
func migrateVersion(pvd *layout.PVDisk) error {
	switch pvd.Version {
	case layout.Version1:
		return nil
	case layout.Version2:
		pvd.Version = layout.Version1
		peStart := pvd.PEStart * layout.SectorSize
		pvd.PEOnDisk.Size = peStart - pvd.PEOnDisk.Base
		return nil
	default:
		return fmt.Errorf("%w: unknown metadata version %d", lvmerr.ErrValidation, pvd.Version)
	}
}

// ReadDisk implements spec §4.C: read, validate, and materialize one
// PV view from dev. Returns (nil, nil) — not an error — for any
// non-fatal, recoverable rejection (bad magic, foreign VG): spec's
// validation-kind errors are recovered locally, not surfaced. A
// caller that wants to know which rejection reason occurred should
// enable a logger with option.WithReadLogger; the rejection itself is
// reported only on the log channels (spec §6.5, §7).
func ReadDisk(ctx context.Context, dev devscan.Device, ar *arena.Arena, opts ...option.ReadOption) (*PhysicalVolume, error) {
	o := option.NewReadOptions(opts...)
	name := dev.Name()

	pv := ar.Own(&PhysicalVolume{Device: dev}).(*PhysicalVolume)

	raw := make([]byte, layout.PVDiskSize)
	if err := dev.ReadAt(ctx, 0, raw); err != nil {
		o.Logger.Error(err, "failed to read PV record", "device", name)
		return nil, fmt.Errorf("%w: %v", lvmerr.ErrIO, err)
	}
	if err := pv.PVD.Unmarshal(raw); err != nil {
		o.Logger.Error(err, "failed to parse PV record", "device", name)
		return nil, fmt.Errorf("%w: %v", lvmerr.ErrIO, err)
	}

	if pv.PVD.ID != layout.Magic {
		o.Logger.VeryVerbose("device does not have a valid PV identifier", "device", name)
		return nil, nil
	}

	if err := migrateVersion(&pv.PVD); err != nil {
		o.Logger.VeryVerbose("unknown metadata version found", "device", name, "version", pv.PVD.Version)
		return nil, nil
	}

	// Orphan: no VG, nothing further to read.
	if pv.PVD.IsOrphan() {
		o.Logger.VeryVerbose("device is not a member of any VG", "device", name)
		return pv, nil
	}

	vgName := pv.PVD.VGNameString()
	if o.ExpectedVGName != "" && o.ExpectedVGName != vgName {
		o.Logger.VeryVerbose("device is not a member of the expected VG", "device", name, "vg", vgName, "expected", o.ExpectedVGName)
		return nil, nil
	}

	if err := readVGD(ctx, dev, pv); err != nil {
		o.Logger.Error(err, "failed to read VG record", "device", name)
		return nil, fmt.Errorf("%w: %v", lvmerr.ErrIO, err)
	}
	if err := readUUIDs(ctx, dev, pv); err != nil {
		o.Logger.Error(err, "failed to read PV uuid list", "device", name)
		return nil, fmt.Errorf("%w: %v", lvmerr.ErrIO, err)
	}
	if err := readLVs(ctx, dev, pv); err != nil {
		o.Logger.Error(err, "failed to read LVs", "device", name)
		return nil, fmt.Errorf("%w: %v", lvmerr.ErrIO, err)
	}
	if err := readPEs(ctx, dev, pv); err != nil {
		o.Logger.Error(err, "failed to read extents", "device", name)
		return nil, fmt.Errorf("%w: %v", lvmerr.ErrIO, err)
	}

	o.Logger.VeryVerbose("found device in VG", "device", name, "vg", vgName)
	return pv, nil
}

func readVGD(ctx context.Context, dev devscan.Device, pv *PhysicalVolume) error {
	raw := make([]byte, layout.VGDiskSize)
	if err := dev.ReadAt(ctx, int64(pv.PVD.VGOnDisk.Base), raw); err != nil {
		return err
	}
	return pv.VGD.Unmarshal(raw)
}

func readUUIDs(ctx context.Context, dev devscan.Device, pv *PhysicalVolume) error {
	pos := int64(pv.PVD.PVUUIDListOnDisk.Base)
	end := pos + int64(pv.PVD.PVUUIDListOnDisk.Size)
	buf := make([]byte, layout.NameLen)

	pv.UUIDs = nil
	for pos < end && len(pv.UUIDs) < int(pv.VGD.PVCur) {
		if err := dev.ReadAt(ctx, pos, buf); err != nil {
			return err
		}
		pv.UUIDs = append(pv.UUIDs, layout.CString(buf))
		pos += layout.NameLen
	}
	return nil
}

func readLVs(ctx context.Context, dev devscan.Device, pv *PhysicalVolume) error {
	pv.LVs = nil
	buf := make([]byte, layout.LVDiskSize)
	for i := uint32(0); i < pv.VGD.LVMax && uint32(len(pv.LVs)) < pv.VGD.LVCur; i++ {
		pos := int64(pv.PVD.LVOnDisk.Base) + int64(i)*int64(layout.LVDiskSize)
		if err := dev.ReadAt(ctx, pos, buf); err != nil {
			return err
		}
		var lvd layout.LVDisk
		if err := lvd.Unmarshal(buf); err != nil {
			return err
		}
		if !lvd.IsLive() {
			continue
		}
		pv.LVs = append(pv.LVs, lvd)
	}
	return nil
}

func readPEs(ctx context.Context, dev devscan.Device, pv *PhysicalVolume) error {
	n := int(pv.PVD.PETotal)
	raw := make([]byte, n*layout.PEDiskSize)
	if err := dev.ReadAt(ctx, int64(pv.PVD.PEOnDisk.Base), raw); err != nil {
		return err
	}
	pes, err := layout.UnmarshalPEMap(raw, n)
	if err != nil {
		return err
	}
	pv.PEs = pes
	return nil
}

// ReadPVsInVG is the VG aggregator (spec component E). It is a pure
// collector: every device iter yields is handed to ReadDisk with
// vgName as the expected VG; parses that succeed are collected.
// Emptiness is the caller's signal that the VG was not found.
// Grounded on read_pvs_in_vg.
func ReadPVsInVG(ctx context.Context, iter devscan.Iterator, vgName string, ar *arena.Arena, opts ...option.ReadOption) ([]*PhysicalVolume, error) {
	defer iter.Destroy()

	allOpts := append(append([]option.ReadOption{}, option.WithExpectedVGName(vgName)), opts...)

	var found []*PhysicalVolume
	for {
		dev, ok := iter.Next()
		if !ok {
			break
		}
		pv, err := ReadDisk(ctx, dev, ar, allOpts...)
		if err != nil {
			// An I/O error on one device does not abort the scan; the
			// aggregator is a pure collector, not a validator.
			continue
		}
		if pv == nil || pv.IsOrphan() {
			continue
		}
		found = append(found, pv)
	}
	return found, nil
}

package diskrep

import (
	"context"
	"fmt"

	"github.com/lvmcore/lvmcore/pkg/lvm1/layout"
	"github.com/lvmcore/lvmcore/pkg/lvmerr"
)

// WritePVDs serializes a list of PV views, writing each one's full
// metadata region to its device. Grounded on write_pvds, which loops
// over the PV list calling _write_all_pvd on each; it is the same
// operation as WriteAllPVD under a different name for the same
// many-PVs-at-once call shape the original exposes.
func WritePVDs(ctx context.Context, pvs []*PhysicalVolume) error {
	return WriteAllPVD(ctx, pvs)
}

// WriteAllPVD writes the full metadata region — PV record, VG record,
// uuid list, LV table, and PE map — of every pv to its device.
// Grounded on _write_all_pvd. Every PV in the slice must belong to the
// same VG; callers are expected to have validated that already (spec
// invariant 1).
func WriteAllPVD(ctx context.Context, pvs []*PhysicalVolume) error {
	for _, pv := range pvs {
		if err := writeOnePVD(ctx, pv); err != nil {
			return err
		}
	}
	return nil
}

func writeOnePVD(ctx context.Context, pv *PhysicalVolume) error {
	if err := writePVD(ctx, pv); err != nil {
		return err
	}
	if pv.PVD.IsOrphan() {
		return nil
	}
	if err := writeVGD(ctx, pv); err != nil {
		return err
	}
	if err := writeUUIDs(ctx, pv); err != nil {
		return err
	}
	if err := writeLVs(ctx, pv); err != nil {
		return err
	}
	return writePEs(ctx, pv)
}

func writePVD(ctx context.Context, pv *PhysicalVolume) error {
	raw, err := pv.PVD.Marshal()
	if err != nil {
		return fmt.Errorf("%w: %v", lvmerr.ErrValidation, err)
	}
	if err := pv.Device.WriteAt(ctx, 0, raw); err != nil {
		return fmt.Errorf("%w: %v", lvmerr.ErrIO, err)
	}
	return nil
}

func writeVGD(ctx context.Context, pv *PhysicalVolume) error {
	raw, err := pv.VGD.Marshal()
	if err != nil {
		return fmt.Errorf("%w: %v", lvmerr.ErrValidation, err)
	}
	if err := pv.Device.WriteAt(ctx, int64(pv.PVD.VGOnDisk.Base), raw); err != nil {
		return fmt.Errorf("%w: %v", lvmerr.ErrIO, err)
	}
	return nil
}

func writeUUIDs(ctx context.Context, pv *PhysicalVolume) error {
	pos := int64(pv.PVD.PVUUIDListOnDisk.Base)
	end := pos + int64(pv.PVD.PVUUIDListOnDisk.Size)
	for _, uuid := range pv.UUIDs {
		if pos+layout.NameLen > end {
			return fmt.Errorf("%w: uuid list overflows its on-disk region", lvmerr.ErrCapacity)
		}
		var buf [layout.NameLen]byte
		if err := layout.SetFixedString(buf[:], uuid); err != nil {
			return fmt.Errorf("%w: %v", lvmerr.ErrValidation, err)
		}
		if err := pv.Device.WriteAt(ctx, pos, buf[:]); err != nil {
			return fmt.Errorf("%w: %v", lvmerr.ErrIO, err)
		}
		pos += layout.NameLen
	}
	return nil
}

func writeLVs(ctx context.Context, pv *PhysicalVolume) error {
	if uint32(len(pv.LVs)) > pv.VGD.LVMax {
		return fmt.Errorf("%w: %d live LVs exceeds lv_max %d", lvmerr.ErrCapacity, len(pv.LVs), pv.VGD.LVMax)
	}

	// Zero the entire LV region first so every slot beyond the live
	// entries we write below is a dead (lv_name[0] == 0) slot, per
	// spec: the writer never leaves a stale live-looking slot behind.
	regionLen := int64(pv.VGD.LVMax) * int64(layout.LVDiskSize)
	if err := pv.Device.ZeroAt(ctx, int64(pv.PVD.LVOnDisk.Base), regionLen); err != nil {
		return fmt.Errorf("%w: %v", lvmerr.ErrIO, err)
	}

	for i, lvd := range pv.LVs {
		raw, err := lvd.Marshal()
		if err != nil {
			return fmt.Errorf("%w: %v", lvmerr.ErrValidation, err)
		}
		pos := int64(pv.PVD.LVOnDisk.Base) + int64(i)*int64(layout.LVDiskSize)
		if err := pv.Device.WriteAt(ctx, pos, raw); err != nil {
			return fmt.Errorf("%w: %v", lvmerr.ErrIO, err)
		}
	}
	return nil
}

func writePEs(ctx context.Context, pv *PhysicalVolume) error {
	if uint32(len(pv.PEs)) != pv.PVD.PETotal {
		return fmt.Errorf("%w: have %d extents, pe_total says %d", lvmerr.ErrValidation, len(pv.PEs), pv.PVD.PETotal)
	}
	raw := layout.MarshalPEMap(pv.PEs)
	if err := pv.Device.WriteAt(ctx, int64(pv.PVD.PEOnDisk.Base), raw); err != nil {
		return fmt.Errorf("%w: %v", lvmerr.ErrIO, err)
	}
	return nil
}

package layout

import (
	"fmt"

	"github.com/lvmcore/lvmcore/pkg/lvm1/xlate"
)

// VGDisk is the on-disk VG record, located at PVDisk.VGOnDisk.Base.
type VGDisk struct {
	VGNumber    uint32
	VGAccess    uint32
	VGStatus    uint32
	LVMax       uint32
	LVCur       uint32
	LVOpen      uint32
	PVMax       uint32
	PVCur       uint32
	PVAct       uint32
	PESize      uint32
	PETotal     uint32
	PEAllocated uint32
	PVGTotal    uint32
}

func (d *VGDisk) fields() []*uint32 {
	return []*uint32{
		&d.VGNumber, &d.VGAccess, &d.VGStatus, &d.LVMax, &d.LVCur, &d.LVOpen,
		&d.PVMax, &d.PVCur, &d.PVAct, &d.PESize, &d.PETotal, &d.PEAllocated, &d.PVGTotal,
	}
}

// Marshal converts the VGDisk into its on-disk byte representation.
func (d *VGDisk) Marshal() ([]byte, error) {
	buf := make([]byte, VGDiskSize)
	off := 0
	for _, f := range d.fields() {
		xlate.PutUint32(buf[off:off+4], *f)
		off += 4
	}
	return buf, nil
}

// Unmarshal parses a VGDiskSize-byte slice into the VGDisk.
func (d *VGDisk) Unmarshal(data []byte) error {
	if len(data) < VGDiskSize {
		return fmt.Errorf("vgdisk: need %d bytes, got %d", VGDiskSize, len(data))
	}
	off := 0
	for _, f := range d.fields() {
		*f = xlate.Uint32(data[off : off+4])
		off += 4
	}
	return nil
}

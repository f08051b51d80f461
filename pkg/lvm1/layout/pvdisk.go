package layout

import (
	"fmt"

	"github.com/lvmcore/lvmcore/pkg/lvm1/xlate"
)

// PVDisk is the on-disk PV record at byte offset 0 of the device.
// Field order here is the on-disk field order; never reorder.
type PVDisk struct {
	ID      [2]byte // always Magic ('H', 'M')
	Version uint16  // 1 or 2; migrated to 1 at read time

	PVOnDisk         Region // self-descriptor: base always 0
	VGOnDisk         Region
	PVUUIDListOnDisk Region
	LVOnDisk         Region
	PEOnDisk         Region

	// PVMajor, PVNumber, PVStatus, PVAllocatable are carried for
	// byte-exact layout fidelity with the original format; the core
	// round-trips them but does not interpret their values.
	PVMajor       uint32
	PVNumber      uint32
	PVStatus      uint32
	PVAllocatable uint32

	PVSize      uint32 // sectors
	LVCur       uint32
	PESize      uint32 // sectors per extent
	PETotal     uint32
	PEAllocated uint32
	PEStart     uint32 // sector of first data extent

	VGName [NameLen]byte // NUL-terminated; empty means orphan PV
	PVUUID [NameLen]byte
}

// IsOrphan reports whether this PV belongs to no VG.
func (d *PVDisk) IsOrphan() bool {
	return d.VGName[0] == 0
}

// VGNameString returns VGName up to its first NUL byte.
func (d *PVDisk) VGNameString() string {
	return cString(d.VGName[:])
}

// SetVGName writes name into VGName, NUL-padding the remainder.
func (d *PVDisk) SetVGName(name string) error {
	return setFixedString(d.VGName[:], name)
}

// PVUUIDString returns PVUUID up to its first NUL byte.
func (d *PVDisk) PVUUIDString() string {
	return cString(d.PVUUID[:])
}

// SetPVUUID writes uuid into PVUUID, NUL-padding the remainder.
func (d *PVDisk) SetPVUUID(uuid string) error {
	return setFixedString(d.PVUUID[:], uuid)
}

// Marshal converts the PVDisk into its on-disk byte representation.
func (d *PVDisk) Marshal() ([]byte, error) {
	buf := make([]byte, PVDiskSize)
	off := 0

	buf[0], buf[1] = d.ID[0], d.ID[1]
	off = 2
	xlate.PutUint16(buf[off:off+2], d.Version)
	off += 2

	for _, r := range []Region{d.PVOnDisk, d.VGOnDisk, d.PVUUIDListOnDisk, d.LVOnDisk, d.PEOnDisk} {
		rb := r.Marshal()
		copy(buf[off:off+RegionDiskSize], rb[:])
		off += RegionDiskSize
	}

	for _, v := range []uint32{
		d.PVMajor, d.PVNumber, d.PVStatus, d.PVAllocatable,
		d.PVSize, d.LVCur, d.PESize, d.PETotal, d.PEAllocated, d.PEStart,
	} {
		xlate.PutUint32(buf[off:off+4], v)
		off += 4
	}

	copy(buf[off:off+NameLen], d.VGName[:])
	off += NameLen
	copy(buf[off:off+NameLen], d.PVUUID[:])
	off += NameLen

	if off != PVDiskSize {
		return nil, fmt.Errorf("pvdisk: marshal produced %d bytes, want %d", off, PVDiskSize)
	}
	return buf, nil
}

// Unmarshal parses a PVDiskSize-byte slice into the PVDisk.
func (d *PVDisk) Unmarshal(data []byte) error {
	if len(data) < PVDiskSize {
		return fmt.Errorf("pvdisk: need %d bytes, got %d", PVDiskSize, len(data))
	}
	off := 0
	d.ID[0], d.ID[1] = data[0], data[1]
	off = 2
	d.Version = xlate.Uint16(data[off : off+2])
	off += 2

	regions := []*Region{&d.PVOnDisk, &d.VGOnDisk, &d.PVUUIDListOnDisk, &d.LVOnDisk, &d.PEOnDisk}
	for _, r := range regions {
		if err := r.Unmarshal(data[off : off+RegionDiskSize]); err != nil {
			return err
		}
		off += RegionDiskSize
	}

	fields := []*uint32{
		&d.PVMajor, &d.PVNumber, &d.PVStatus, &d.PVAllocatable,
		&d.PVSize, &d.LVCur, &d.PESize, &d.PETotal, &d.PEAllocated, &d.PEStart,
	}
	for _, f := range fields {
		*f = xlate.Uint32(data[off : off+4])
		off += 4
	}

	copy(d.VGName[:], data[off:off+NameLen])
	off += NameLen
	copy(d.PVUUID[:], data[off:off+NameLen])
	off += NameLen

	return nil
}

// CString returns b up to its first NUL byte, for callers outside
// this package decoding a fixed-width NUL-padded field (e.g. a PV
// uuid list entry, which has no dedicated struct of its own).
func CString(b []byte) string {
	return cString(b)
}

// SetFixedString writes s into dst, NUL-padding the remainder, for
// callers outside this package encoding a fixed-width field.
func SetFixedString(dst []byte, s string) error {
	return setFixedString(dst, s)
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func setFixedString(dst []byte, s string) error {
	if len(s) >= len(dst) {
		return fmt.Errorf("string %q too long for %d-byte field", s, len(dst))
	}
	for i := range dst {
		dst[i] = 0
	}
	copy(dst, s)
	return nil
}

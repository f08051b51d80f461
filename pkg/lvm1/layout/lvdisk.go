package layout

import (
	"fmt"

	"github.com/lvmcore/lvmcore/pkg/lvm1/xlate"
)

// LVDisk is one slot of the on-disk LV table. A slot is live iff
// LVName[0] != 0.
type LVDisk struct {
	LVName [NameLen]byte

	LVAccess uint32
	LVStatus uint32
	LVOpen   uint32
	LVNumber uint32

	LVSize        uint32 // sectors
	LVAllocatedLE uint32
	LVStripes     uint32
	LVStripeSize  uint32 // sectors

	LVReadAhead uint32 // read-ahead hint, sectors
	LVIOTimeout uint32 // io-timeout hint, passed through to the kernel table row
}

// IsLive reports whether this slot holds a named LV.
func (d *LVDisk) IsLive() bool {
	return d.LVName[0] != 0
}

// LVNameString returns LVName up to its first NUL byte.
func (d *LVDisk) LVNameString() string {
	return cString(d.LVName[:])
}

// SetLVName writes name into LVName, NUL-padding the remainder.
func (d *LVDisk) SetLVName(name string) error {
	return setFixedString(d.LVName[:], name)
}

func (d *LVDisk) wordFields() []*uint32 {
	return []*uint32{
		&d.LVAccess, &d.LVStatus, &d.LVOpen, &d.LVNumber,
		&d.LVSize, &d.LVAllocatedLE, &d.LVStripes, &d.LVStripeSize,
		&d.LVReadAhead, &d.LVIOTimeout,
	}
}

// Marshal converts the LVDisk into its on-disk byte representation.
func (d *LVDisk) Marshal() ([]byte, error) {
	buf := make([]byte, LVDiskSize)
	off := 0
	copy(buf[off:off+NameLen], d.LVName[:])
	off += NameLen
	for _, f := range d.wordFields() {
		xlate.PutUint32(buf[off:off+4], *f)
		off += 4
	}
	if off != LVDiskSize {
		return nil, fmt.Errorf("lvdisk: marshal produced %d bytes, want %d", off, LVDiskSize)
	}
	return buf, nil
}

// Unmarshal parses an LVDiskSize-byte slice into the LVDisk.
func (d *LVDisk) Unmarshal(data []byte) error {
	if len(data) < LVDiskSize {
		return fmt.Errorf("lvdisk: need %d bytes, got %d", LVDiskSize, len(data))
	}
	off := 0
	copy(d.LVName[:], data[off:off+NameLen])
	off += NameLen
	for _, f := range d.wordFields() {
		*f = xlate.Uint32(data[off : off+4])
		off += 4
	}
	return nil
}

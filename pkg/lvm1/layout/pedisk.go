package layout

import (
	"fmt"

	"github.com/lvmcore/lvmcore/pkg/lvm1/xlate"
)

// PEDisk is one entry of the on-disk PE map: which LV (1-based, 0 =
// free) and which logical extent within that LV owns this physical
// extent.
type PEDisk struct {
	LVNum uint16
	LENum uint16
}

// IsFree reports whether this physical extent is unallocated.
func (d PEDisk) IsFree() bool {
	return d.LVNum == 0
}

// Marshal converts the PEDisk into its 4-byte on-disk representation.
func (d PEDisk) Marshal() [PEDiskSize]byte {
	var buf [PEDiskSize]byte
	xlate.PutUint16(buf[0:2], d.LVNum)
	xlate.PutUint16(buf[2:4], d.LENum)
	return buf
}

// Unmarshal parses a 4-byte slice into the PEDisk.
func (d *PEDisk) Unmarshal(data []byte) error {
	if len(data) < PEDiskSize {
		return fmt.Errorf("pedisk: need %d bytes, got %d", PEDiskSize, len(data))
	}
	d.LVNum = xlate.Uint16(data[0:2])
	d.LENum = xlate.Uint16(data[2:4])
	return nil
}

// MarshalPEMap converts a slice of PEDisk entries into a contiguous
// byte buffer.
func MarshalPEMap(entries []PEDisk) []byte {
	buf := make([]byte, len(entries)*PEDiskSize)
	for i, e := range entries {
		eb := e.Marshal()
		copy(buf[i*PEDiskSize:(i+1)*PEDiskSize], eb[:])
	}
	return buf
}

// UnmarshalPEMap parses count contiguous PE-map entries from data.
func UnmarshalPEMap(data []byte, count int) ([]PEDisk, error) {
	if len(data) < count*PEDiskSize {
		return nil, fmt.Errorf("pe map: need %d bytes for %d entries, got %d", count*PEDiskSize, count, len(data))
	}
	entries := make([]PEDisk, count)
	for i := range entries {
		if err := entries[i].Unmarshal(data[i*PEDiskSize : (i+1)*PEDiskSize]); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

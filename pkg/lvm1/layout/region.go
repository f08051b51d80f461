package layout

import (
	"fmt"

	"github.com/lvmcore/lvmcore/pkg/lvm1/xlate"
)

// Region is a {base, size} descriptor locating a sub-region within a
// PV's metadata area, always byte offsets/lengths from the start of
// the PV.
type Region struct {
	Base uint32
	Size uint32
}

// Marshal converts a Region into its 8-byte on-disk representation.
func (r Region) Marshal() [RegionDiskSize]byte {
	var buf [RegionDiskSize]byte
	xlate.PutUint32(buf[0:4], r.Base)
	xlate.PutUint32(buf[4:8], r.Size)
	return buf
}

// Unmarshal parses an 8-byte slice into a Region.
func (r *Region) Unmarshal(data []byte) error {
	if len(data) < RegionDiskSize {
		return fmt.Errorf("region: need %d bytes, got %d", RegionDiskSize, len(data))
	}
	r.Base = xlate.Uint32(data[0:4])
	r.Size = xlate.Uint32(data[4:8])
	return nil
}

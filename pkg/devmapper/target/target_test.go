package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvmcore/lvmcore/pkg/metadata"
	"github.com/lvmcore/lvmcore/pkg/option"
)

func namer(pv *metadata.PhysicalVolume) string {
	return pv.Device.Name()
}

type namedDevice string

func (n namedDevice) Name() string { return string(n) }

func TestEmitTarget_Linear(t *testing.T) {
	pv := &metadata.PhysicalVolume{Device: namedDevice("/dev/sdb"), PEStart: 100}
	seg := metadata.Segment{
		LE: 2, Len: 4, Stripes: 1,
		Areas: []metadata.Area{{PV: pv, StartPE: 3}},
	}

	row, err := EmitTarget(seg, 8, namer)
	require.NoError(t, err)
	assert.Equal(t, "linear", row.Type)
	assert.Equal(t, uint64(16), row.StartSector) // 8*2
	assert.Equal(t, uint64(32), row.LengthSector) // 8*4
	assert.Equal(t, "/dev/sdb 124", row.Params) // 100 + 8*3
}

func TestEmitTarget_StripedWireQuirkOmitsPrefix(t *testing.T) {
	pv0 := &metadata.PhysicalVolume{Device: namedDevice("/dev/sda"), PEStart: 0}
	pv1 := &metadata.PhysicalVolume{Device: namedDevice("/dev/sdb"), PEStart: 0}
	seg := metadata.Segment{
		LE: 0, Len: 2, Stripes: 2,
		Areas: []metadata.Area{{PV: pv0, StartPE: 0}, {PV: pv1, StartPE: 0}},
	}

	row, err := EmitTarget(seg, 8, namer)
	require.NoError(t, err)
	assert.Equal(t, "striped", row.Type)
	assert.Equal(t, "/dev/sda 0 /dev/sdb 0", row.Params)
}

func TestEmitTarget_WithoutQuirkPrependsStripesAndChunkSize(t *testing.T) {
	pv0 := &metadata.PhysicalVolume{Device: namedDevice("/dev/sda")}
	pv1 := &metadata.PhysicalVolume{Device: namedDevice("/dev/sdb")}
	seg := metadata.Segment{
		LE: 0, Len: 2, Stripes: 2,
		Areas: []metadata.Area{{PV: pv0, StartPE: 0}, {PV: pv1, StartPE: 0}},
	}

	row, err := EmitTarget(seg, 8, namer, option.WithStripedWireQuirk(false), option.WithChunkSizeSectors(16))
	require.NoError(t, err)
	assert.Equal(t, "2 16 /dev/sda 0 /dev/sdb 0", row.Params)
}

func TestEmitTarget_AreaCountMustMatchStripes(t *testing.T) {
	pv := &metadata.PhysicalVolume{Device: namedDevice("/dev/sda")}
	seg := metadata.Segment{
		LE: 0, Len: 2, Stripes: 2,
		Areas: []metadata.Area{{PV: pv, StartPE: 0}},
	}
	_, err := EmitTarget(seg, 8, namer)
	assert.Error(t, err)
}

package diskrep

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvmcore/lvmcore/pkg/devscan"
	"github.com/lvmcore/lvmcore/pkg/lvm1/arena"
	"github.com/lvmcore/lvmcore/pkg/lvm1/layout"
	"github.com/lvmcore/lvmcore/pkg/option"
)

// buildPV returns an in-memory device laid out as a single-PV VG named
// "vg0", with one live LV of 4 extents, all allocated to it.
func buildPV(t *testing.T) *devscan.MemDevice {
	t.Helper()

	const (
		pvBase    = 0
		vgBase    = layout.PVDiskSize
		uuidBase  = vgBase + layout.VGDiskSize
		lvBase    = uuidBase + layout.NameLen // 1 uuid entry
		peBase    = lvBase + layout.LVDiskSize
		peTotal   = 4
		sizeBytes = peBase + peTotal*layout.PEDiskSize
	)

	dev := devscan.NewMemDevice("test0", sizeBytes)

	pvd := layout.PVDisk{
		ID:      layout.Magic,
		Version: layout.Version1,
		PVOnDisk: layout.Region{Base: pvBase, Size: layout.PVDiskSize},
		VGOnDisk: layout.Region{Base: vgBase, Size: layout.VGDiskSize},
		PVUUIDListOnDisk: layout.Region{Base: uuidBase, Size: layout.NameLen},
		LVOnDisk:         layout.Region{Base: lvBase, Size: layout.LVDiskSize},
		PEOnDisk:         layout.Region{Base: peBase, Size: peTotal * layout.PEDiskSize},
		PVSize:           1000,
		LVCur:            1,
		PESize:           8,
		PETotal:          peTotal,
		PEAllocated:      peTotal,
		PEStart:          100,
	}
	require.NoError(t, pvd.SetVGName("vg0"))
	require.NoError(t, pvd.SetPVUUID("pv-uuid-0000"))
	raw, err := pvd.Marshal()
	require.NoError(t, err)
	require.NoError(t, dev.WriteAt(context.Background(), pvBase, raw))

	vgd := layout.VGDisk{
		VGNumber: 0,
		LVMax:    1,
		LVCur:    1,
		PVMax:    1,
		PVCur:    1,
		PESize:   8,
		PETotal:  peTotal,
		PEAllocated: peTotal,
	}
	vraw, err := vgd.Marshal()
	require.NoError(t, err)
	require.NoError(t, dev.WriteAt(context.Background(), vgBase, vraw))

	var uuidBuf [layout.NameLen]byte
	require.NoError(t, layout.SetFixedString(uuidBuf[:], "pv-uuid-0000"))
	require.NoError(t, dev.WriteAt(context.Background(), uuidBase, uuidBuf[:]))

	lvd := layout.LVDisk{LVSize: peTotal * 8, LVAllocatedLE: peTotal}
	require.NoError(t, lvd.SetLVName("lvol0"))
	lraw, err := lvd.Marshal()
	require.NoError(t, err)
	require.NoError(t, dev.WriteAt(context.Background(), lvBase, lraw))

	pes := make([]layout.PEDisk, peTotal)
	for i := range pes {
		pes[i] = layout.PEDisk{LVNum: 1, LENum: uint16(i)}
	}
	require.NoError(t, dev.WriteAt(context.Background(), peBase, layout.MarshalPEMap(pes)))

	return dev
}

func TestReadDisk_RoundTrip(t *testing.T) {
	dev := buildPV(t)
	pv, err := ReadDisk(context.Background(), dev, arena.New())
	require.NoError(t, err)
	require.NotNil(t, pv)

	assert.False(t, pv.IsOrphan())
	assert.Equal(t, "vg0", pv.PVD.VGNameString())
	assert.Equal(t, uint32(1), pv.VGD.LVCur)
	require.Len(t, pv.UUIDs, 1)
	assert.Equal(t, "pv-uuid-0000", pv.UUIDs[0])
	require.Len(t, pv.LVs, 1)
	assert.Equal(t, "lvol0", pv.LVs[0].LVNameString())
	require.Len(t, pv.PEs, 4)
	assert.Equal(t, uint16(1), pv.PEs[0].LVNum)
}

func TestReadDisk_BadMagicIsRecoverable(t *testing.T) {
	dev := devscan.NewMemDevice("blank", layout.PVDiskSize)
	pv, err := ReadDisk(context.Background(), dev, arena.New())
	require.NoError(t, err)
	assert.Nil(t, pv)
}

func TestReadDisk_WrongExpectedVGNameIsRejected(t *testing.T) {
	dev := buildPV(t)
	pv, err := ReadDisk(context.Background(), dev, arena.New(), option.WithExpectedVGName("other-vg"))
	require.NoError(t, err)
	assert.Nil(t, pv)
}

func TestReadDisk_MatchingExpectedVGNameSucceeds(t *testing.T) {
	dev := buildPV(t)
	pv, err := ReadDisk(context.Background(), dev, arena.New(), option.WithExpectedVGName("vg0"))
	require.NoError(t, err)
	require.NotNil(t, pv)
}

func TestReadDisk_VersionTwoMigratesToOne(t *testing.T) {
	dev := buildPV(t)
	raw := make([]byte, layout.PVDiskSize)
	require.NoError(t, dev.ReadAt(context.Background(), 0, raw))
	var pvd layout.PVDisk
	require.NoError(t, pvd.Unmarshal(raw))

	pvd.Version = layout.Version2
	origPEBase := pvd.PEOnDisk.Base
	pvd.PEStart = (origPEBase / layout.SectorSize) + 1
	nraw, err := pvd.Marshal()
	require.NoError(t, err)
	require.NoError(t, dev.WriteAt(context.Background(), 0, nraw))

	pv, err := ReadDisk(context.Background(), dev, arena.New())
	require.NoError(t, err)
	require.NotNil(t, pv)
	assert.Equal(t, layout.Version1, pv.PVD.Version)
}

func TestWriteAllPVD_RoundTrip(t *testing.T) {
	dev := buildPV(t)
	pv, err := ReadDisk(context.Background(), dev, arena.New())
	require.NoError(t, err)

	pv.LVs[0].LVStatus = 7
	require.NoError(t, WriteAllPVD(context.Background(), []*PhysicalVolume{pv}))

	reread, err := ReadDisk(context.Background(), dev, arena.New())
	require.NoError(t, err)
	require.Len(t, reread.LVs, 1)
	assert.Equal(t, uint32(7), reread.LVs[0].LVStatus)
}

func TestWritePVDs_WritesFullMetadataRegion(t *testing.T) {
	dev := buildPV(t)
	pv, err := ReadDisk(context.Background(), dev, arena.New())
	require.NoError(t, err)

	pv.LVs[0].LVStatus = 9
	require.NoError(t, WritePVDs(context.Background(), []*PhysicalVolume{pv}))

	reread, err := ReadDisk(context.Background(), dev, arena.New())
	require.NoError(t, err)
	require.Len(t, reread.LVs, 1)
	assert.Equal(t, uint32(9), reread.LVs[0].LVStatus)
}

func TestReadPVsInVG_CollectsOnlyMatchingOrphansExcluded(t *testing.T) {
	member := buildPV(t)
	orphan := devscan.NewMemDevice("orphan", layout.PVDiskSize)
	{
		orphanPVD := layout.PVDisk{ID: layout.Magic, Version: layout.Version1}
		raw, err := orphanPVD.Marshal()
		require.NoError(t, err)
		require.NoError(t, orphan.WriteAt(context.Background(), 0, raw))
	}
	otherVG := buildPV(t)
	{
		raw := make([]byte, layout.PVDiskSize)
		require.NoError(t, otherVG.ReadAt(context.Background(), 0, raw))
		var pvd layout.PVDisk
		require.NoError(t, pvd.Unmarshal(raw))
		require.NoError(t, pvd.SetVGName("other-vg"))
		nraw, err := pvd.Marshal()
		require.NoError(t, err)
		require.NoError(t, otherVG.WriteAt(context.Background(), 0, nraw))
	}

	iter := devscan.NewSliceIterator(member, orphan, otherVG)
	found, err := ReadPVsInVG(context.Background(), iter, "vg0", arena.New())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "vg0", found[0].PVD.VGNameString())
}

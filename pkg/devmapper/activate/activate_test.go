package activate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvmcore/lvmcore/pkg/devmapper/dmtask"
	"github.com/lvmcore/lvmcore/pkg/fsnotify"
	"github.com/lvmcore/lvmcore/pkg/metadata"
)

type namedDevice struct{ name string }

func (n namedDevice) Name() string { return n.name }

func testVG() (*metadata.VolumeGroup, *metadata.LogicalVolume) {
	pv := &metadata.PhysicalVolume{
		Device:  namedDevice{"/dev/sdb"},
		UUID:    "uuid-0",
		PETotal: 100,
		PESize:  8,
		PEStart: 384,
	}
	lv := &metadata.LogicalVolume{Name: "data", Number: 0}
	vg := &metadata.VolumeGroup{
		Name:   "vg0",
		PESize: 8,
		PVs:    []*metadata.PhysicalVolume{pv},
		LVs:    []*metadata.LogicalVolume{lv},
	}
	lv.VG = vg
	metadata.SetSegmentsForTest(lv, []metadata.Segment{
		{LE: 0, Len: 10, Stripes: 1, Areas: []metadata.Area{{PV: pv, StartPE: 0}}},
	})
	return vg, lv
}

func namer(pv *metadata.PhysicalVolume) string {
	return pv.Device.Name()
}

func newTestEngine() (*Engine, *dmtask.FakeFactory, *fsnotify.RecordingNotifier) {
	factory := dmtask.NewFakeFactory()
	notifier := &fsnotify.RecordingNotifier{}
	engine := NewEngine(factory, notifier, namer)
	return engine, factory, notifier
}

func TestDeviceName(t *testing.T) {
	assert.Equal(t, "vg0_data", deviceName("vg0", "data"))
}

func TestActivate_CreatesDeviceAndNotifies(t *testing.T) {
	engine, factory, notifier := newTestEngine()
	vg, lv := testVG()

	require.NoError(t, engine.Activate(vg, lv))

	assert.True(t, factory.Exists("vg0_data"))
	table := factory.ActiveTable("vg0_data")
	require.Len(t, table, 1)
	assert.Equal(t, "linear", table[0].Type)
	assert.Equal(t, "/dev/sdb 384", table[0].Params)

	require.Len(t, notifier.Events, 1)
	assert.True(t, notifier.Events[0].Add)
	assert.Equal(t, "vg0", notifier.Events[0].VGName)
	assert.Equal(t, "data", notifier.Events[0].LVName)
}

func TestActivate_TwiceFails(t *testing.T) {
	engine, _, _ := newTestEngine()
	vg, lv := testVG()

	require.NoError(t, engine.Activate(vg, lv))
	assert.Error(t, engine.Activate(vg, lv))
}

func TestDeactivate_RemovesDeviceAndNotifies(t *testing.T) {
	engine, factory, notifier := newTestEngine()
	vg, lv := testVG()

	require.NoError(t, engine.Activate(vg, lv))
	require.NoError(t, engine.Deactivate(vg, lv))

	assert.False(t, factory.Exists("vg0_data"))
	require.Len(t, notifier.Events, 2)
	assert.False(t, notifier.Events[1].Add)
}

func TestDeactivate_NotifiesEvenWhenDeviceAlreadyAbsent(t *testing.T) {
	engine, factory, notifier := newTestEngine()
	vg, lv := testVG()

	require.NoError(t, engine.Activate(vg, lv))
	require.NoError(t, engine.Deactivate(vg, lv))
	require.False(t, factory.Exists("vg0_data"))

	// The device is already gone, so the REMOVE task fails and its error
	// is returned; fs_del_lv must still be called.
	err := engine.Deactivate(vg, lv)
	assert.Error(t, err)
	require.Len(t, notifier.Events, 3, "DelLV must be notified on both deactivate calls")
	assert.False(t, notifier.Events[1].Add)
	assert.False(t, notifier.Events[2].Add)
}

func TestActive_ReflectsKernelState(t *testing.T) {
	engine, _, _ := newTestEngine()
	vg, lv := testVG()

	active, err := engine.Active(vg.Name, lv)
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, engine.Activate(vg, lv))

	active, err = engine.Active(vg.Name, lv)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestReactivate_ResumesEvenWhenReloadFails(t *testing.T) {
	engine, factory, _ := newTestEngine()
	vg, lv := testVG()
	require.NoError(t, engine.Activate(vg, lv))

	// Force the reload stage to fail by giving the LV a broken segment
	// (zero stripes), while leaving suspend/resume unaffected.
	metadata.SetSegmentsForTest(lv, []metadata.Segment{
		{LE: 0, Len: 10, Stripes: 0, Areas: nil},
	})

	err := engine.Reactivate(vg, lv)
	assert.Error(t, err)
	assert.True(t, factory.Exists("vg0_data"), "device must still exist: resume always runs after a successful suspend")
}

func TestReactivate_SwapsTableOnSuccess(t *testing.T) {
	engine, factory, _ := newTestEngine()
	vg, lv := testVG()
	require.NoError(t, engine.Activate(vg, lv))

	pv2 := vg.PVs[0]
	metadata.SetSegmentsForTest(lv, []metadata.Segment{
		{LE: 0, Len: 20, Stripes: 1, Areas: []metadata.Area{{PV: pv2, StartPE: 5}}},
	})

	require.NoError(t, engine.Reactivate(vg, lv))

	table := factory.ActiveTable("vg0_data")
	require.Len(t, table, 1)
	assert.Equal(t, uint64(20*8), table[0].LengthSector)
}

func TestActivateAll_SkipsAlreadyActive(t *testing.T) {
	engine, factory, _ := newTestEngine()
	vg, _ := testVG()

	n := engine.ActivateAll(vg)
	assert.Equal(t, 1, n)
	assert.True(t, factory.Exists("vg0_data"))

	n = engine.ActivateAll(vg)
	assert.Equal(t, 0, n)
}

func TestDeactivateAll_OnlyActiveOnes(t *testing.T) {
	engine, _, _ := newTestEngine()
	vg, lv := testVG()

	assert.Equal(t, 0, engine.DeactivateAll(vg))

	require.NoError(t, engine.Activate(vg, lv))
	assert.Equal(t, 1, engine.DeactivateAll(vg))
}

func TestCountActive(t *testing.T) {
	engine, _, _ := newTestEngine()
	vg, lv := testVG()

	assert.Equal(t, 0, engine.CountActive(vg))
	require.NoError(t, engine.Activate(vg, lv))
	assert.Equal(t, 1, engine.CountActive(vg))
}

func TestCountOpened_AndExactlyOneQuirk(t *testing.T) {
	engine, factory, _ := newTestEngine()
	vg, lv := testVG()
	require.NoError(t, engine.Activate(vg, lv))

	factory.SetOpenCount("vg0_data", 2)
	assert.Equal(t, 1, engine.CountOpened(vg))
	assert.Equal(t, 0, engine.CountOpenedExactlyOne(vg), "opened twice must not count under the preserved ==1 quirk")

	factory.SetOpenCount("vg0_data", 1)
	assert.Equal(t, 1, engine.CountOpened(vg))
	assert.Equal(t, 1, engine.CountOpenedExactlyOne(vg))
}

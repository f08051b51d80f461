package dmtask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runTask(t *testing.T, f *FakeFactory, name string, cmd Command, rows ...TargetRow) Task {
	t.Helper()
	task, err := f.NewTask(name, cmd)
	require.NoError(t, err)
	for _, r := range rows {
		require.NoError(t, task.AddTarget(r))
	}
	require.NoError(t, task.Run())
	return task
}

func TestFakeFactory_CreateThenRemove(t *testing.T) {
	f := NewFakeFactory()
	row := TargetRow{StartSector: 0, LengthSector: 100, Type: "linear", Params: "/dev/x 0"}

	runTask(t, f, "vg0-lv0", Create, row)
	assert.True(t, f.Exists("vg0-lv0"))
	assert.Equal(t, []TargetRow{row}, f.ActiveTable("vg0-lv0"))

	task, err := f.NewTask("vg0-lv0", Remove)
	require.NoError(t, err)
	require.NoError(t, task.Run())
	assert.False(t, f.Exists("vg0-lv0"))
}

func TestFakeFactory_CreateTwiceFails(t *testing.T) {
	f := NewFakeFactory()
	row := TargetRow{LengthSector: 1, Type: "linear", Params: "x"}
	runTask(t, f, "dup", Create, row)

	task, err := f.NewTask("dup", Create)
	require.NoError(t, err)
	require.NoError(t, task.AddTarget(row))
	assert.Error(t, task.Run())
}

func TestFakeFactory_ReactivateSwapsTableOnResume(t *testing.T) {
	f := NewFakeFactory()
	oldRow := TargetRow{LengthSector: 10, Type: "linear", Params: "old"}
	newRow := TargetRow{LengthSector: 20, Type: "linear", Params: "new"}
	runTask(t, f, "lv", Create, oldRow)

	runTask(t, f, "lv", Suspend)
	runTask(t, f, "lv", Reload, newRow)
	assert.Equal(t, []TargetRow{oldRow}, f.ActiveTable("lv")) // not yet swapped

	runTask(t, f, "lv", Resume)
	assert.Equal(t, []TargetRow{newRow}, f.ActiveTable("lv"))
}

func TestFakeFactory_InfoOnMissingDeviceReportsAbsent(t *testing.T) {
	f := NewFakeFactory()
	task, err := f.NewTask("ghost", Info)
	require.NoError(t, err)
	require.NoError(t, task.Run())
	info, err := task.Info()
	require.NoError(t, err)
	assert.False(t, info.Exists)
}

func TestFakeFactory_InfoReportsOpenCount(t *testing.T) {
	f := NewFakeFactory()
	runTask(t, f, "lv", Create, TargetRow{LengthSector: 1, Type: "linear", Params: "x"})
	f.SetOpenCount("lv", 2)

	task, err := f.NewTask("lv", Info)
	require.NoError(t, err)
	require.NoError(t, task.Run())
	info, err := task.Info()
	require.NoError(t, err)
	assert.Equal(t, int32(2), info.OpenCount)
}

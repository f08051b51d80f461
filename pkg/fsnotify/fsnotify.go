// Package fsnotify is the filesystem-node notification collaborator
// spec §1 names (fs_add_lv/fs_del_lv): after a successful activation,
// and after every deactivation attempt, something outside the CORE
// must create or remove the /dev entry a mapped LV is reachable through. This package specifies
// only the interface and provides test/real implementations of it.
package fsnotify

// Notifier is told about an LV's activation-state transitions so it
// can add or remove the corresponding device node.
type Notifier interface {
	// AddLV is called once an LV has been successfully created/active
	// in the kernel.
	AddLV(vgName, lvName string, major, minor uint32) error
	// DelLV is called after every deactivation attempt, whether or not
	// the kernel removal succeeded.
	DelLV(vgName, lvName string) error
}

// NoopNotifier discards every notification. The default for callers
// that manage their own /dev population (e.g. udev).
type NoopNotifier struct{}

func (NoopNotifier) AddLV(vgName, lvName string, major, minor uint32) error { return nil }
func (NoopNotifier) DelLV(vgName, lvName string) error                      { return nil }

// Event records one notification, for test assertions.
type Event struct {
	Add            bool
	VGName, LVName string
	Major, Minor   uint32
}

// RecordingNotifier records every call it receives instead of acting
// on it, for activation-engine tests.
type RecordingNotifier struct {
	Events []Event
}

func (r *RecordingNotifier) AddLV(vgName, lvName string, major, minor uint32) error {
	r.Events = append(r.Events, Event{Add: true, VGName: vgName, LVName: lvName, Major: major, Minor: minor})
	return nil
}

func (r *RecordingNotifier) DelLV(vgName, lvName string) error {
	r.Events = append(r.Events, Event{Add: false, VGName: vgName, LVName: lvName})
	return nil
}

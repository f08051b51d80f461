package dmtask

import (
	"fmt"
	"sync"
)

// dmMajor is the fixed major number the kernel assigns every
// device-mapper device, matching /proc/devices on a real system.
const dmMajor = 253

// deviceState is one simulated kernel device-mapper device.
type deviceState struct {
	exists        bool
	suspended     bool
	openCount     int32
	minor         uint32
	activeTable   []TargetRow
	inactiveTable []TargetRow
}

// FakeFactory is an in-memory Factory standing in for the kernel
// device-mapper control device in tests. It implements exactly the
// absent -> active <-> suspended -> removed state machine spec §5
// names, so activation-engine tests can assert on kernel-visible
// effects without root or a real /dev/mapper/control.
type FakeFactory struct {
	mu       sync.Mutex
	devices  map[string]*deviceState
	nextMinor uint32
}

// NewFakeFactory returns an empty FakeFactory.
func NewFakeFactory() *FakeFactory {
	return &FakeFactory{devices: make(map[string]*deviceState)}
}

// SetOpenCount lets a test simulate a device being held open by a
// mounted filesystem or another process.
func (f *FakeFactory) SetOpenCount(name string, n int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.devices[name]; ok {
		d.openCount = n
	}
}

// Exists reports whether name is currently present, for test
// assertions.
func (f *FakeFactory) Exists(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.devices[name]
	return ok && d.exists
}

// ActiveTable returns the table currently live for name, for test
// assertions.
func (f *FakeFactory) ActiveTable(name string) []TargetRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.devices[name]
	if !ok {
		return nil
	}
	return append([]TargetRow(nil), d.activeTable...)
}

func (f *FakeFactory) NewTask(name string, cmd Command) (Task, error) {
	return &fakeTask{factory: f, name: name, cmd: cmd}, nil
}

type fakeTask struct {
	factory *FakeFactory
	name    string
	cmd     Command
	targets []TargetRow
	ran     bool
}

func (t *fakeTask) AddTarget(row TargetRow) error {
	if t.cmd != Create && t.cmd != Reload {
		return fmt.Errorf("dmtask: AddTarget invalid for %s task", t.cmd)
	}
	t.targets = append(t.targets, row)
	return nil
}

func (t *fakeTask) Run() error {
	f := t.factory
	f.mu.Lock()
	defer f.mu.Unlock()

	d := f.devices[t.name]

	switch t.cmd {
	case Create:
		if d != nil && d.exists {
			return fmt.Errorf("dmtask: device %q already exists", t.name)
		}
		f.nextMinor++
		f.devices[t.name] = &deviceState{exists: true, activeTable: t.targets, minor: f.nextMinor}
	case Reload:
		if d == nil || !d.exists {
			return fmt.Errorf("dmtask: device %q does not exist", t.name)
		}
		d.inactiveTable = t.targets
	case Suspend:
		if d == nil || !d.exists {
			return fmt.Errorf("dmtask: device %q does not exist", t.name)
		}
		d.suspended = true
	case Resume:
		if d == nil || !d.exists {
			return fmt.Errorf("dmtask: device %q does not exist", t.name)
		}
		if d.inactiveTable != nil {
			d.activeTable = d.inactiveTable
			d.inactiveTable = nil
		}
		d.suspended = false
	case Remove:
		if d == nil || !d.exists {
			return fmt.Errorf("dmtask: device %q does not exist", t.name)
		}
		delete(f.devices, t.name)
	case Info:
		// Querying a nonexistent device is not an error; Info()
		// reports Exists == false.
	}
	t.ran = true
	return nil
}

func (t *fakeTask) Info() (DeviceInfo, error) {
	if t.cmd != Info {
		return DeviceInfo{}, fmt.Errorf("dmtask: Info invalid for %s task", t.cmd)
	}
	if !t.ran {
		return DeviceInfo{}, fmt.Errorf("dmtask: Info called before Run")
	}
	f := t.factory
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.devices[t.name]
	if !ok || !d.exists {
		return DeviceInfo{Exists: false}, nil
	}
	return DeviceInfo{Exists: true, Suspended: d.suspended, OpenCount: d.openCount, Major: dmMajor, Minor: d.minor}, nil
}

func (t *fakeTask) Destroy() {}

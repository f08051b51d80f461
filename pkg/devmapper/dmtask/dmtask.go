// Package dmtask is the device-mapper task collaborator spec §6.3
// names: dm_task_create/dm_task_set_name/dm_task_add_target/
// dm_task_run/dm_task_get_info/dm_task_destroy. A Task is short-lived
// and owned strictly by the operation that creates it — Destroy must
// run on every exit path, success or failure.
package dmtask

import "fmt"

// Command selects which device-mapper operation a Task performs.
// Grounded on the DM_DEVICE_* task types original_source's
// dm_task_create switches on.
type Command int

const (
	Create Command = iota
	Reload
	Suspend
	Resume
	Remove
	Info
)

func (c Command) String() string {
	switch c {
	case Create:
		return "create"
	case Reload:
		return "reload"
	case Suspend:
		return "suspend"
	case Resume:
		return "resume"
	case Remove:
		return "remove"
	case Info:
		return "info"
	default:
		return fmt.Sprintf("dmtask.Command(%d)", int(c))
	}
}

// TargetRow is one device-mapper table row: a sector range and the
// target type's parameter string. Grounded on dm_task_add_target's
// (start, length, target_type, params) signature.
type TargetRow struct {
	StartSector  uint64
	LengthSector uint64
	Type         string
	Params       string
}

// DeviceInfo mirrors dm_task_get_info's dm_info: whether the device
// currently exists in the kernel and, if so, its open count.
type DeviceInfo struct {
	Exists       bool
	Suspended    bool
	OpenCount    int32
	Major, Minor uint32
}

// Task drives one device-mapper operation against one named device.
// Every Task must be Destroyed exactly once.
type Task interface {
	// AddTarget appends one table row. Valid only for Create and
	// Reload tasks.
	AddTarget(row TargetRow) error
	// Run executes the task against the kernel (or the fake).
	Run() error
	// Info returns the device's current kernel-visible state. Valid
	// only for Info tasks, after Run.
	Info() (DeviceInfo, error)
	// Destroy releases the task. Safe to call more than once.
	Destroy()
}

// Factory creates a Task bound to one device name and command.
// Grounded on dm_task_create + dm_task_set_name taken together.
type Factory interface {
	NewTask(deviceName string, cmd Command) (Task, error)
}

// Package activate is the activation engine (spec component G): it
// drives the create / reload / suspend / resume / remove lifecycle of
// a mapped LV and the batch operations over a whole VG.
//
// Grounded on lv_info/lv_active/lv_open_count/lv_activate/
// lv_reactivate/lv_deactivate/activate_lvs_in_vg/deactivate_lvs_in_vg/
// lvs_in_vg_activated/lvs_in_vg_opened in
// original_source/lib/activate/activate.c.
package activate

import (
	"fmt"

	"github.com/lvmcore/lvmcore/pkg/devmapper/dmtask"
	"github.com/lvmcore/lvmcore/pkg/devmapper/target"
	"github.com/lvmcore/lvmcore/pkg/fsnotify"
	"github.com/lvmcore/lvmcore/pkg/lvmerr"
	"github.com/lvmcore/lvmcore/pkg/metadata"
	"github.com/lvmcore/lvmcore/pkg/option"
)

// Engine drives device-mapper state transitions for LVs, using a
// dmtask.Factory to issue tasks and a fsnotify.Notifier to announce
// /dev changes. It holds no per-LV state of its own; every operation
// takes the VG and LV it concerns explicitly.
type Engine struct {
	Factory  dmtask.Factory
	Notifier fsnotify.Notifier
	Namer    target.DeviceNamer
	opts     option.ActivateOptions
}

// NewEngine builds an Engine. namer resolves a segment area's PV to
// the device-mapper target parameter it should reference; notifier
// may be fsnotify.NoopNotifier{} if the caller lets udev populate
// /dev itself.
func NewEngine(factory dmtask.Factory, notifier fsnotify.Notifier, namer target.DeviceNamer, opts ...option.ActivateOption) *Engine {
	return &Engine{
		Factory:  factory,
		Notifier: notifier,
		Namer:    namer,
		opts:     option.NewActivateOptions(opts...),
	}
}

// deviceName is the kernel-visible dm device name for an LV. Grounded
// on _build_lv_name's "%s_%s" format.
func deviceName(vgName, lvName string) string {
	return fmt.Sprintf("%s_%s", vgName, lvName)
}

func (e *Engine) withTask(name string, cmd dmtask.Command, fn func(dmtask.Task) error) error {
	task, err := e.Factory.NewTask(name, cmd)
	if err != nil {
		return fmt.Errorf("%w: %v", lvmerr.ErrState, err)
	}
	defer task.Destroy()
	return fn(task)
}

// Info returns the kernel-visible state of lv.
func (e *Engine) Info(vgName string, lv *metadata.LogicalVolume) (dmtask.DeviceInfo, error) {
	var info dmtask.DeviceInfo
	err := e.withTask(deviceName(vgName, lv.Name), dmtask.Info, func(task dmtask.Task) error {
		if err := task.Run(); err != nil {
			return fmt.Errorf("%w: %v", lvmerr.ErrState, err)
		}
		var err error
		info, err = task.Info()
		return err
	})
	return info, err
}

// Active reports whether lv currently exists in the kernel.
func (e *Engine) Active(vgName string, lv *metadata.LogicalVolume) (bool, error) {
	info, err := e.Info(vgName, lv)
	if err != nil {
		return false, err
	}
	return info.Exists, nil
}

// OpenCount returns how many times lv is currently held open.
func (e *Engine) OpenCount(vgName string, lv *metadata.LogicalVolume) (int32, error) {
	info, err := e.Info(vgName, lv)
	if err != nil {
		return 0, err
	}
	return info.OpenCount, nil
}

func (e *Engine) addTargets(task dmtask.Task, vg *metadata.VolumeGroup, lv *metadata.LogicalVolume) error {
	extentSize := uint64(vg.PESize)
	for _, seg := range lv.Segments() {
		row, err := target.EmitTarget(seg, extentSize, e.Namer,
			option.WithStripedWireQuirk(e.opts.StripedWireQuirk),
			option.WithChunkSizeSectors(e.opts.ChunkSizeSectors))
		if err != nil {
			return err
		}
		if err := task.AddTarget(row); err != nil {
			return fmt.Errorf("%w: %v", lvmerr.ErrState, err)
		}
	}
	return nil
}

// Activate creates lv as a mapped device and, on success, notifies
// the filesystem-node collaborator. Grounded on lv_activate (_load
// with DM_DEVICE_CREATE, then fs_add_lv).
func (e *Engine) Activate(vg *metadata.VolumeGroup, lv *metadata.LogicalVolume) error {
	name := deviceName(vg.Name, lv.Name)
	var info dmtask.DeviceInfo
	err := e.withTask(name, dmtask.Create, func(task dmtask.Task) error {
		if err := e.addTargets(task, vg, lv); err != nil {
			return err
		}
		if err := task.Run(); err != nil {
			return fmt.Errorf("%w: %v", lvmerr.ErrState, err)
		}
		e.opts.Logger.Verbose("logical volume activated", "vg", vg.Name, "lv", lv.Name)
		return nil
	})
	if err != nil {
		e.opts.Logger.Error(err, "unable to activate logical volume", "vg", vg.Name, "lv", lv.Name)
		return err
	}

	if e.Notifier != nil {
		info, _ = e.Info(vg.Name, lv) // best-effort major/minor for the node
		if err := e.Notifier.AddLV(vg.Name, lv.Name, info.Major, info.Minor); err != nil {
			return fmt.Errorf("%w: %v", lvmerr.ErrIO, err)
		}
	}
	return nil
}

// Reactivate suspends lv, reloads its table from the current segment
// list, and resumes it. Grounded on lv_reactivate: if suspend fails
// the whole operation aborts; resume is attempted unconditionally
// once suspend has succeeded, even if reload failed, and its failure
// takes priority over a reload failure in the returned error.
func (e *Engine) Reactivate(vg *metadata.VolumeGroup, lv *metadata.LogicalVolume) error {
	name := deviceName(vg.Name, lv.Name)

	if err := e.withTask(name, dmtask.Suspend, func(task dmtask.Task) error {
		if err := task.Run(); err != nil {
			return fmt.Errorf("%w: %v", lvmerr.ErrState, err)
		}
		return nil
	}); err != nil {
		e.opts.Logger.Error(err, "unable to suspend logical volume", "vg", vg.Name, "lv", lv.Name)
		return err
	}

	reloadErr := e.withTask(name, dmtask.Reload, func(task dmtask.Task) error {
		if err := e.addTargets(task, vg, lv); err != nil {
			return err
		}
		if err := task.Run(); err != nil {
			return fmt.Errorf("%w: %v", lvmerr.ErrState, err)
		}
		return nil
	})
	if reloadErr != nil {
		e.opts.Logger.Error(reloadErr, "unable to reload logical volume", "vg", vg.Name, "lv", lv.Name)
	}

	resumeErr := e.withTask(name, dmtask.Resume, func(task dmtask.Task) error {
		if err := task.Run(); err != nil {
			return fmt.Errorf("%w: %v", lvmerr.ErrState, err)
		}
		return nil
	})
	if resumeErr != nil {
		e.opts.Logger.Error(resumeErr, "unable to resume logical volume", "vg", vg.Name, "lv", lv.Name)
		return resumeErr
	}

	return reloadErr
}

// Deactivate removes lv's mapped device and notifies the
// filesystem-node collaborator unconditionally, whether or not the
// REMOVE task succeeded. Grounded on lv_deactivate: fs_del_lv runs
// regardless of the kernel removal's outcome, so deactivating an
// already-absent device still notifies and is idempotent.
func (e *Engine) Deactivate(vg *metadata.VolumeGroup, lv *metadata.LogicalVolume) error {
	name := deviceName(vg.Name, lv.Name)
	removeErr := e.withTask(name, dmtask.Remove, func(task dmtask.Task) error {
		if err := task.Run(); err != nil {
			return fmt.Errorf("%w: %v", lvmerr.ErrState, err)
		}
		return nil
	})
	if removeErr != nil {
		e.opts.Logger.Error(removeErr, "unable to deactivate logical volume", "vg", vg.Name, "lv", lv.Name)
	}

	if e.Notifier != nil {
		if err := e.Notifier.DelLV(vg.Name, lv.Name); err != nil {
			if removeErr == nil {
				return fmt.Errorf("%w: %v", lvmerr.ErrIO, err)
			}
			e.opts.Logger.Error(err, "unable to notify filesystem of logical volume removal", "vg", vg.Name, "lv", lv.Name)
		}
	}
	return removeErr
}

// ActivateAll activates every currently-inactive LV in vg, returning
// how many it newly activated. A per-LV failure is logged and does
// not abort the batch, matching activate_lvs_in_vg's best-effort
// count accumulation.
func (e *Engine) ActivateAll(vg *metadata.VolumeGroup) int {
	count := 0
	for _, lv := range vg.LVs {
		active, err := e.Active(vg.Name, lv)
		if err != nil || active {
			continue
		}
		if err := e.Activate(vg, lv); err == nil {
			count++
		}
	}
	return count
}

// DeactivateAll deactivates every currently-active LV in vg, returning
// how many it deactivated. Grounded on deactivate_lvs_in_vg.
func (e *Engine) DeactivateAll(vg *metadata.VolumeGroup) int {
	count := 0
	for _, lv := range vg.LVs {
		active, err := e.Active(vg.Name, lv)
		if err != nil || !active {
			continue
		}
		if err := e.Deactivate(vg, lv); err == nil {
			count++
		}
	}
	return count
}

// CountActive returns how many of vg's LVs are currently active.
// Grounded on lvs_in_vg_activated.
func (e *Engine) CountActive(vg *metadata.VolumeGroup) int {
	count := 0
	for _, lv := range vg.LVs {
		if active, err := e.Active(vg.Name, lv); err == nil && active {
			count++
		}
	}
	return count
}

// CountOpened returns how many of vg's LVs currently have a nonzero
// open count. This is the corrected form of lvs_in_vg_opened; use
// CountOpenedExactlyOne for byte-for-byte parity with the original's
// comparison, open count bug included.
func (e *Engine) CountOpened(vg *metadata.VolumeGroup) int {
	count := 0
	for _, lv := range vg.LVs {
		if n, err := e.OpenCount(vg.Name, lv); err == nil && n >= 1 {
			count++
		}
	}
	return count
}

// CountOpenedExactlyOne reproduces lvs_in_vg_opened's exact
// `open_count == 1` comparison: an LV opened twice (e.g. mounted
// read-write and scanned by a second tool concurrently) is not
// counted. Kept for parity with the historical binary; new callers
// should prefer CountOpened.
func (e *Engine) CountOpenedExactlyOne(vg *metadata.VolumeGroup) int {
	count := 0
	for _, lv := range vg.LVs {
		if n, err := e.OpenCount(vg.Name, lv); err == nil && n == 1 {
			count++
		}
	}
	return count
}

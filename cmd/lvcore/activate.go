//go:build linux

package main

import (
	"fmt"
	"os"

	"github.com/lvmcore/lvmcore/pkg/devmapper/activate"
	"github.com/lvmcore/lvmcore/pkg/devmapper/dmtask"
	"github.com/lvmcore/lvmcore/pkg/fsnotify"
	"github.com/lvmcore/lvmcore/pkg/metadata"
	"github.com/lvmcore/lvmcore/pkg/option"
)

// newEngine wires the real device-mapper ioctl backend and a mknod
// filesystem notifier rooted at /dev, which creates nodes as
// /dev/<vg>/<lv>.
func newEngine(opts ...option.ActivateOption) (*activate.Engine, error) {
	factory, err := dmtask.OpenLinuxFactory()
	if err != nil {
		return nil, fmt.Errorf("open device-mapper control device: %w", err)
	}
	notifier := fsnotify.NewMknodNotifier("/dev")
	namer := func(pv *metadata.PhysicalVolume) string { return pv.Device.Name() }
	return activate.NewEngine(factory, notifier, namer, opts...), nil
}

func findLV(vg *metadata.VolumeGroup, name string) *metadata.LogicalVolume {
	for _, lv := range vg.LVs {
		if lv.Name == name {
			return lv
		}
	}
	return nil
}

func runActivate()   { runSingleLVCommand("activate", "activate a single logical volume", (*activate.Engine).Activate) }
func runDeactivate() { runSingleLVCommand("deactivate", "deactivate a single logical volume", (*activate.Engine).Deactivate) }

func runSingleLVCommand(name, description string, op func(*activate.Engine, *metadata.VolumeGroup, *metadata.LogicalVolume) error) {
	u := newUsage(description)
	dir := u.AddStringOption("d", "dir", "/dev", "directory to scan for physical volumes", "", nil)
	vgName := u.AddStringOption("", "vg", "", "volume group name", "", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "print verbose output", "", nil)
	help := u.AddBooleanOption("h", "help", false, "show this help message", "", nil)
	lvName := u.AddArgument(1, "lv-name", "logical volume name", "")
	if !u.Parse() {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}
	if *help {
		u.PrintUsage()
		return
	}
	if *vgName == "" {
		fail("%s requires --vg", name)
	}
	if lvName == nil || *lvName == "" {
		fail("%s requires a logical volume name argument", name)
	}

	log := newLogger(*verbose)
	vg, err := buildVG(*dir, *vgName, log)
	if err != nil {
		fail("%s failed: %v", name, err)
	}
	lv := findLV(vg, *lvName)
	if lv == nil {
		fail("logical volume %q not found in volume group %q", *lvName, *vgName)
	}

	engine, err := newEngine(option.WithActivateLogger(log))
	if err != nil {
		fail("%s failed: %v", name, err)
	}
	if err := op(engine, vg, lv); err != nil {
		fail("%s failed: %v", name, err)
	}
	fmt.Printf("%s/%s %sd\n", *vgName, *lvName, name)
}

func runActivateAll() {
	runBatchLVCommand("activate-all", "activated", "activate every inactive LV in a volume group", (*activate.Engine).ActivateAll)
}
func runDeactivateAll() {
	runBatchLVCommand("deactivate-all", "deactivated", "deactivate every active LV in a volume group", (*activate.Engine).DeactivateAll)
}

func runBatchLVCommand(name, verbPast, description string, op func(*activate.Engine, *metadata.VolumeGroup) int) {
	u := newUsage(description)
	dir := u.AddStringOption("d", "dir", "/dev", "directory to scan for physical volumes", "", nil)
	vgName := u.AddStringOption("", "vg", "", "volume group name", "", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "print verbose output", "", nil)
	help := u.AddBooleanOption("h", "help", false, "show this help message", "", nil)
	if !u.Parse() {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}
	if *help {
		u.PrintUsage()
		return
	}
	if *vgName == "" {
		fail("%s requires --vg", name)
	}

	log := newLogger(*verbose)
	var vg *metadata.VolumeGroup
	err := scanWithProgress(fmt.Sprintf("scanning for volume group %s", *vgName), func() error {
		var buildErr error
		vg, buildErr = buildVG(*dir, *vgName, log)
		return buildErr
	})
	if err != nil {
		fail("%s failed: %v", name, err)
	}

	engine, err := newEngine(option.WithActivateLogger(log))
	if err != nil {
		fail("%s failed: %v", name, err)
	}

	var count int
	err = scanWithProgress(name, func() error {
		count = op(engine, vg)
		return nil
	})
	if err != nil {
		fail("%s failed: %v", name, err)
	}
	fmt.Printf("%d logical volume(s) %s\n", count, verbPast)
}

//go:build linux

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lvmcore/lvmcore/pkg/logging"
	"github.com/lvmcore/lvmcore/pkg/lvm1/arena"
	"github.com/lvmcore/lvmcore/pkg/lvm1/diskrep"
	"github.com/lvmcore/lvmcore/pkg/metadata"
	"github.com/lvmcore/lvmcore/pkg/option"
)

// buildVG scans dir for PVs belonging to vgName and reconstructs the
// in-core graph. Shared by report, activate, and deactivate.
func buildVG(dir, vgName string, log *logging.Logger) (*metadata.VolumeGroup, error) {
	ar := arena.New()
	it, err := openDirIterator(dir)
	if err != nil {
		return nil, err
	}
	pvs, err := diskrep.ReadPVsInVG(context.Background(), it, vgName, ar, option.WithReadLogger(log))
	if err != nil {
		return nil, err
	}
	if len(pvs) == 0 {
		return nil, fmt.Errorf("no physical volumes found for volume group %q under %s", vgName, dir)
	}
	return metadata.BuildVG(pvs)
}

func runReport() {
	u := newUsage("print the reconstructed VG/LV/segment graph")
	dir := u.AddStringOption("d", "dir", "/dev", "directory to scan for physical volumes", "", nil)
	vgName := u.AddStringOption("", "vg", "", "volume group name to report on", "", nil)
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
		fail("report requires --vg")
	}

	log := newLogger(*verbose)
	vg, err := buildVG(*dir, *vgName, log)
	if err != nil {
		fail("report failed: %v", err)
	}

	printVGReport(vg)
}

func printVGReport(vg *metadata.VolumeGroup) {
	width := terminalWidth()
	rule := strings.Repeat("-", min(width, 72))

	fmt.Printf("Volume Group: %s\n", vg.Name)
	fmt.Printf("  Extent size: %d sectors\n", vg.PESize)
	fmt.Printf("  Physical volumes: %d\n", len(vg.PVs))
	for _, pv := range vg.PVs {
		fmt.Printf("    %-20s uuid=%-36s pe_total=%-6d pe_start=%d\n",
			pv.Device.Name(), pv.UUID, pv.PETotal, pv.PEStart)
	}

	fmt.Println(rule)
	fmt.Printf("Logical volumes: %d\n", len(vg.LVs))
	for _, lv := range vg.LVs {
		fmt.Printf("  %s  (%d extents, %d segments)\n", lv.Name, lv.AllocatedLE, len(lv.Segments()))
		for _, seg := range lv.Segments() {
			areas := make([]string, 0, len(seg.Areas))
			for _, a := range seg.Areas {
				areas = append(areas, fmt.Sprintf("%s:%d", a.PV.Device.Name(), a.StartPE))
			}
			fmt.Printf("    LE %-6d len %-6d stripes %-2d -> %s\n",
				seg.LE, seg.Len, seg.Stripes, strings.Join(areas, ", "))
		}
	}
}

//go:build linux

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/theckman/yacspin"

	"github.com/lvmcore/lvmcore/pkg/lvm1/arena"
	"github.com/lvmcore/lvmcore/pkg/lvm1/diskrep"
	"github.com/lvmcore/lvmcore/pkg/option"
)

func newScanSpinner(message string) *yacspin.Spinner {
	cfg := yacspin.Config{
		Frequency:       100 * time.Millisecond,
		CharSet:         yacspin.CharSets[9],
		Suffix:          " ",
		Message:         message,
		StopCharacter:   "✓",
		StopMessage:     message + " done",
		StopColors:      []string{"fgGreen"},
	}
	spinner, err := yacspin.New(cfg)
	if err != nil {
		return nil
	}
	return spinner
}

// scanWithProgress runs fn, showing a spinner only when stdout is a
// terminal; piped output gets a single plain status line instead.
func scanWithProgress(message string, fn func() error) error {
	if !isTerminal(os.Stdout) {
		fmt.Println(message + "...")
		err := fn()
		if err != nil {
			fmt.Println(message + ": failed")
		} else {
			fmt.Println(message + ": done")
		}
		return err
	}

	spinner := newScanSpinner(message)
	if spinner == nil {
		return fn()
	}
	_ = spinner.Start()
	err := fn()
	if err != nil {
		_ = spinner.StopFail()
	} else {
		_ = spinner.Stop()
	}
	return err
}

func runScan() {
	u := newUsage("list physical volumes found under a device directory")
	dir := u.AddStringOption("d", "dir", "/dev", "directory to scan for physical volumes", "", nil)
	vgName := u.AddStringOption("", "vg", "", "restrict results to this volume group name", "", nil)
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

	log := newLogger(*verbose)
	ar := arena.New()
	defer ar.Discard()

	var found []*diskrep.PhysicalVolume
	err := scanWithProgress(fmt.Sprintf("scanning %s", *dir), func() error {
		it, err := openDirIterator(*dir)
		if err != nil {
			return err
		}
		pvs, err := diskrep.ReadPVsInVG(context.Background(), it, *vgName, ar, option.WithReadLogger(log))
		if err != nil {
			return err
		}
		found = pvs
		return nil
	})
	if err != nil {
		fail("scan failed: %v", err)
	}

	if len(found) == 0 {
		fmt.Println("no physical volumes found")
		return
	}
	for _, pv := range found {
		fmt.Printf("%-20s vg=%-16s pe_total=%-8d pe_size=%d\n",
			pv.Device.Name(), pv.PVD.VGNameString(), pv.VGD.PETotal, pv.VGD.PESize)
	}
}

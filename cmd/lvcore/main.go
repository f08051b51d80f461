//go:build linux

// lvcore is the CLI front end for the volume-manager core: scan a
// directory of block devices for physical volumes belonging to a
// volume group, report the reconstructed VG/LV/segment graph, and
// drive the activation engine.
package main

import (
	"fmt"
	"os"

	"github.com/bgrewell/usage"

	"github.com/lvmcore/lvmcore/pkg/logging"
)

const appName = "lvcore"

func newUsage(description string) *usage.Usage {
	return usage.NewUsage(
		usage.WithApplicationName(appName),
		usage.WithApplicationDescription(description),
	)
}

func newLogger(verbose bool) *logging.Logger {
	level := logging.LevelVerbose - 1 // quiet by default: only errors
	if verbose {
		level = logging.LevelVeryVerbose
	}
	return logging.NewLogger(logging.NewSimpleLogger(os.Stderr, level, isTerminal(os.Stderr)))
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "lvcore: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		printTopUsage()
		os.Exit(1)
	}

	sub := os.Args[1]
	os.Args = append([]string{os.Args[0]}, os.Args[2:]...)

	switch sub {
	case "scan":
		runScan()
	case "report":
		runReport()
	case "activate":
		runActivate()
	case "activate-all":
		runActivateAll()
	case "deactivate":
		runDeactivate()
	case "deactivate-all":
		runDeactivateAll()
	case "-h", "--help", "help":
		printTopUsage()
	default:
		fmt.Fprintf(os.Stderr, "lvcore: unknown command %q\n\n", sub)
		printTopUsage()
		os.Exit(1)
	}
}

func printTopUsage() {
	fmt.Println(`lvcore - user-space volume manager core

Usage:
  lvcore <command> [flags]

Commands:
  scan             list physical volumes found under a device directory
  report           print the reconstructed VG/LV/segment graph
  activate         activate a single logical volume
  deactivate       deactivate a single logical volume
  activate-all     activate every inactive LV in a volume group
  deactivate-all   deactivate every active LV in a volume group

Run "lvcore <command> -h" for command-specific flags.`)
}

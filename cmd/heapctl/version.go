package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/arena"
)

// Set with -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// resolvedVersion prefers the linker-stamped version, then the module version
// recorded by go install, then "dev". Both `version` and --version use it.
func resolvedVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return version
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and arena defaults",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("heapctl %s\n", resolvedVersion())
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s (%s, %s/%s)\n", date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Printf("  arena:  capacity %d, max %d\n", arena.DefaultCapacity, uint64(arena.MaxCapacity))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

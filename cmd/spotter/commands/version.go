package commands

import (
	"fmt"
	"runtime"

	"github.com/roasbeef/spotter/internal/build"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Args:  cobra.NoArgs,

	// Version needs no config, logging or state.
	PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
	PersistentPostRunE: func(*cobra.Command, []string) error { return nil },

	Run: runVersion,
}

// runVersion prints the version and build information.
func runVersion(cmd *cobra.Command, args []string) {
	fmt.Printf("%s version %s go=%s\n", build.AppName, build.Version,
		runtime.Version())
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trungvq/workmate/internal/ui"
)

// Version information, set at build time.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Thông tin phiên bản",
	Run: func(cmd *cobra.Command, args []string) {
		renderer := ui.NewRenderer()
		fmt.Println(renderer.System(fmt.Sprintf("workmate %s (commit %s, built %s)", Version, GitCommit, BuildDate)))
	},
}

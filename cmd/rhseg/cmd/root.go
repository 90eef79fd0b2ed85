package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "rhseg",
	Short: "recursive hierarchical image segmentation",
	Long: `rhseg segments a multi-band raster into a hierarchy of regions:
	- write a build settings file with 'rhseg config',
	- run a segmentation with 'rhseg run',
	- inspect an emitted hierarchy snapshot with 'rhseg inspect'.`,
}

// Execute adds all child commands to the root command and runs it. Called
// once from main.main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

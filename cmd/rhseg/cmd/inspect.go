package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arl/rhseg/rhseg"
)

// inspectCmd represents the inspect command.
var inspectCmd = &cobra.Command{
	Use:   "inspect SNAPSHOT",
	Short: "show info about an emitted hierarchy",
	Long: `Read a hierarchy snapshot log and print, for each snapshot,
its region count, max_threshold, and region table summary.`,
	Args: cobra.ExactArgs(1),
	Run:  doInspect,
}

func init() {
	RootCmd.AddCommand(inspectCmd)
}

func doInspect(cmd *cobra.Command, args []string) {
	f, err := os.Open(args[0])
	check(err)
	defer f.Close()

	snaps, err := rhseg.ReadHierarchy(f)
	check(err)

	fmt.Printf("%d snapshot(s) in %s\n", len(snaps), args[0])
	for i, s := range snaps {
		fmt.Printf("[%d] dims=%dx%dx%d regions=%d max_threshold=%v recursion_mask=%v\n",
			i, s.Dims.Cols, s.Dims.Rows, s.Dims.Slices, s.NumRegions, s.MaxThreshold, s.RecursionMask)
		for _, r := range s.Regions {
			fmt.Printf("    region %d: npix=%d nghbrs=%d\n", r.Label, r.Npix, len(r.Nghbrs))
		}
	}
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/arl/rhseg/config"
	"github.com/arl/rhseg/pixel"
	"github.com/arl/rhseg/raster"
	"github.com/arl/rhseg/rhctx"
	"github.com/arl/rhseg/rhseg"
)

var (
	runCfgVal   string
	runInputVal string
	runOutVal   string
	runSeedVal  int64
)

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run a segmentation",
	Long: `Load a raster and build settings, run the segmentation, and write
the resulting hierarchy snapshots to --out.`,
	Run: doRun,
}

func init() {
	RootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runCfgVal, "config", "rhseg.yml", "build settings")
	runCmd.Flags().StringVar(&runInputVal, "input", "", "input raster file (required)")
	runCmd.Flags().StringVar(&runOutVal, "out", "hierarchy.rhseg", "hierarchy snapshot output file")
	runCmd.Flags().Int64Var(&runSeedVal, "seed", 1, "first-merge candidate shuffle seed (unused when random_init_seed_flag is set)")
}

func doRun(cmd *cobra.Command, args []string) {
	if runInputVal == "" {
		check(fmt.Errorf("--input is required"))
	}

	var p config.Params
	check(unmarshalYAMLFile(runCfgVal, &p))

	raw, stats, err := (raster.FlatFile{Path: runInputVal}).Load()
	check(err)

	p.Ncols, p.Nrows, p.Nslices = raw.Dims.Cols, raw.Dims.Rows, raw.Dims.Slices
	p.Nbands = len(raw.Bands)

	p.BandMean = make([]float32, len(stats))
	for i, s := range stats {
		p.BandMean[i] = s.Mean
	}

	p, err = config.Defaults(p)
	check(err)
	check(p.Validate(raw.EdgeValue != nil))

	store, err := pixel.Build(raw, stats, p.NormInd)
	check(err)

	if err := os.MkdirAll(filepath.Dir(runOutVal), 0755); err != nil && !os.IsNotExist(err) {
		check(err)
	}
	out, err := os.Create(runOutVal)
	check(err)
	defer out.Close()

	hier := rhseg.NewHierarchy(out)
	ctx := rhctx.New(true)

	seed := runSeedVal
	if p.RandomInitSeedFlag {
		seed = time.Now().UnixNano()
	}
	driver := rhseg.NewDriver(ctx, store, &p, hier, seed)
	table, err := driver.Run()
	check(err)

	for _, msg := range ctx.Messages() {
		fmt.Println(msg)
	}
	fmt.Printf("final region count: %d, %d snapshots written to %s\n",
		table.NumActive(), hier.Count(), runOutVal)
}

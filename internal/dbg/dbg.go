// Command dbg runs one tiny, synthetic segmentation end to end and dumps
// the build context's log — a scratch harness for exercising the driver by
// hand, mirroring the teacher's internal/dbg (a one-off navmesh query
// smoke test) in shape: no flags, no tests, just a fixed scenario and
// printed diagnostics.
package main

import (
	"fmt"
	"log"

	"github.com/arl/rhseg/config"
	"github.com/arl/rhseg/pixel"
	"github.com/arl/rhseg/rhctx"
	"github.com/arl/rhseg/rhseg"
)

func check(err error) {
	if err != nil {
		log.Fatalln(err)
	}
}

func main() {
	dims := pixel.Dims{Cols: 8, Rows: 8}
	band := make([]float32, dims.Size())
	for i := range band {
		col, row, _ := dims.Coords(i)
		if col < 4 && row < 4 {
			band[i] = 0
		} else if col >= 4 && row < 4 {
			band[i] = 10
		} else if col < 4 && row >= 4 {
			band[i] = 20
		} else {
			band[i] = 30
		}
	}

	raw := pixel.Raw{Dims: dims, Bands: [][]float32{band}}
	stats := []pixel.BandStats{{Min: 0, Max: 30, Mean: 15, Var: 150}}

	p := config.Example()
	p.Ncols, p.Nrows, p.Nbands = dims.Cols, dims.Rows, 1
	p.MinNregions = 4
	p.ConvNregions = 4
	p.MaxNregionsMem = 16
	p.BandMean = []float32{stats[0].Mean}

	p, err := config.Defaults(p)
	check(err)
	check(p.Validate(false))

	store, err := pixel.Build(raw, stats, p.NormInd)
	check(err)

	ctx := rhctx.New(true)
	driver := rhseg.NewDriver(ctx, store, &p, nil, 1)
	table, err := driver.Run()
	check(err)

	fmt.Println("final region count:", table.NumActive())
	for _, msg := range ctx.Messages() {
		fmt.Println(msg)
	}
}

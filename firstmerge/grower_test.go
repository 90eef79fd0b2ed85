package firstmerge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arl/rhseg/config"
	"github.com/arl/rhseg/pixel"
	"github.com/arl/rhseg/region"
	"github.com/arl/rhseg/rhctx"
)

// solidStore builds a single-band 4x4 store split into two distinct flat
// halves (left half value 0, right half value 100), so a threshold-0
// first-merge run should produce exactly two regions.
func solidStore(t *testing.T) *pixel.Store {
	t.Helper()
	d := pixel.Dims{Cols: 4, Rows: 4}
	vals := make([]float32, d.Size())
	for i := range vals {
		col, _, _ := d.Coords(i)
		if col >= 2 {
			vals[i] = 100
		}
	}
	raw := pixel.Raw{Dims: d, Bands: [][]float32{vals}}
	s, err := pixel.Build(raw, []pixel.BandStats{{}}, config.NormNone)
	require.NoError(t, err)
	return s
}

func TestGrowProducesOneRegionPerFlatArea(t *testing.T) {
	store := solidStore(t)
	tbl := region.NewTable(1, false, false, false)
	p := &config.Params{Conn: config.Conn4, DissimCrit: 1, InitialMergeNpix: 1000}
	ctx := rhctx.New(false)

	Grow(ctx, store, tbl, p, 0, 1, pixel.WholeImage(store.Dims()))

	assert.Equal(t, 2, tbl.NumActive())
	for i := 0; i < store.NumPixels(); i++ {
		assert.NotZero(t, store.RegionLabel(i))
	}
}

func TestGrowAssignsEveryMaskedPixel(t *testing.T) {
	store := solidStore(t)
	tbl := region.NewTable(1, false, false, false)
	p := &config.Params{Conn: config.Conn8, InitialMergeNpix: 1000}
	ctx := rhctx.New(false)

	Grow(ctx, store, tbl, p, 0, 42, pixel.WholeImage(store.Dims()))

	total := 0
	tbl.Active(func(c *region.Class) { total += int(c.Npix) })
	assert.Equal(t, store.NumPixels(), total)
}

func TestGrowMarksInitialMergeFlagAboveThreshold(t *testing.T) {
	store := solidStore(t)
	tbl := region.NewTable(1, false, false, false)
	p := &config.Params{Conn: config.Conn4, DissimCrit: 1, InitialMergeNpix: 4}
	ctx := rhctx.New(false)

	Grow(ctx, store, tbl, p, 0, 7, pixel.WholeImage(store.Dims()))

	tbl.Active(func(c *region.Class) {
		assert.True(t, c.InitialMergeFlag, "region %d has %d pixels", c.Label, c.Npix)
	})
}

func TestGrowIsDeterministicForAFixedSeed(t *testing.T) {
	store1 := solidStore(t)
	store2 := solidStore(t)
	tbl1 := region.NewTable(1, false, false, false)
	tbl2 := region.NewTable(1, false, false, false)
	p := &config.Params{Conn: config.Conn4, InitialMergeNpix: 1000}
	ctx := rhctx.New(false)

	Grow(ctx, store1, tbl1, p, 0, 99, pixel.WholeImage(store1.Dims()))
	Grow(ctx, store2, tbl2, p, 0, 99, pixel.WholeImage(store2.Dims()))

	for i := 0; i < store1.NumPixels(); i++ {
		assert.Equal(t, store1.RegionLabel(i) == 0, store2.RegionLabel(i) == 0)
	}
	assert.Equal(t, tbl1.NumActive(), tbl2.NumActive())
}

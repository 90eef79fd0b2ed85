package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arl/rhseg/config"
	"github.com/arl/rhseg/pixel"
)

func twoRegionStore(t *testing.T) (*pixel.Store, *Table) {
	t.Helper()
	d := pixel.Dims{Cols: 4, Rows: 1}
	raw := pixel.Raw{Dims: d, Bands: [][]float32{{0, 0, 0, 0}}}
	store, err := pixel.Build(raw, []pixel.BandStats{{}}, config.NormNone)
	require.NoError(t, err)

	tbl := NewTable(1, false, false, false)
	left := tbl.Create()
	right := tbl.Create()
	store.SetRegionLabel(0, left.Label)
	store.SetRegionLabel(1, left.Label)
	store.SetRegionLabel(2, right.Label)
	store.SetRegionLabel(3, right.Label)
	left.Npix, right.Npix = 2, 2
	return store, tbl
}

func TestLinkNeighborsPopulatesMutualAdjacency(t *testing.T) {
	store, tbl := twoRegionStore(t)
	err := LinkNeighbors(store, tbl, config.Conn4, pixel.WholeImage(store.Dims()))
	require.NoError(t, err)

	left, right := tbl.Get(1), tbl.Get(2)
	assert.True(t, left.IsNeighbor(right.Label))
	assert.True(t, right.IsNeighbor(left.Label))
	assert.True(t, tbl.CheckNeighbors())
}

func TestLinkNeighborsRespectsWindowBoundary(t *testing.T) {
	store, tbl := twoRegionStore(t)
	win := pixel.Window{ColHi: 2, RowHi: 1, SliceHi: 1} // only the left region's pixels
	err := LinkNeighbors(store, tbl, config.Conn4, win)
	require.NoError(t, err)

	left, right := tbl.Get(1), tbl.Get(2)
	assert.False(t, left.IsNeighbor(right.Label))
	assert.False(t, right.IsNeighbor(left.Label))
}

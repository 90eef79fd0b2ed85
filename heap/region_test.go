package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arl/rhseg/region"
)

func TestRegionHeapOrdering(t *testing.T) {
	tbl := setupTable(3)
	h := NewRegionHeap(tbl)
	c1, c2, c3 := tbl.Get(1), tbl.Get(2), tbl.Get(3)
	c1.BestRegionDissim, c1.Npix = 3, 1
	c2.BestRegionDissim, c2.Npix = 1, 1
	c3.BestRegionDissim, c3.Npix = 1, 5

	h.Insert(1)
	h.Insert(2)
	h.Insert(3)

	assert.True(t, h.Valid())
	assert.Equal(t, uint32(3), h.Top())
}

func TestBestRegionInitRecordsMutualMinimum(t *testing.T) {
	tbl := setupTable(3)
	c1, c2, c3 := tbl.Get(1), tbl.Get(2), tbl.Get(3)
	dissim := func(a, b *region.Class) float32 {
		switch {
		case (a.Label == 1 && b.Label == 2) || (a.Label == 2 && b.Label == 1):
			return 10
		case (a.Label == 1 && b.Label == 3) || (a.Label == 3 && b.Label == 1):
			return 2
		default:
			return 7
		}
	}
	BestRegionInit(tbl, []*region.Class{c1, c2, c3}, dissim)

	assert.Equal(t, float32(2), c1.BestRegionDissim)
	assert.True(t, c1.IsBestRegion(3))
	assert.Equal(t, float32(2), c3.BestRegionDissim)
	assert.True(t, c3.IsBestRegion(1))
	assert.Equal(t, float32(7), c2.BestRegionDissim)
	assert.True(t, c2.IsBestRegion(3))
}

func TestBestRegionInitRecordsTies(t *testing.T) {
	tbl := setupTable(3)
	c1, c2, c3 := tbl.Get(1), tbl.Get(2), tbl.Get(3)
	dissim := func(a, b *region.Class) float32 { return 5 }
	BestRegionInit(tbl, []*region.Class{c1, c2, c3}, dissim)

	assert.Len(t, c1.BestRegionLabels, 2)
	assert.True(t, c1.IsBestRegion(2))
	assert.True(t, c1.IsBestRegion(3))
}

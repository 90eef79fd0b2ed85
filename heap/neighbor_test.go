package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arl/rhseg/region"
)

func setupTable(n int) *region.Table {
	t := region.NewTable(1, false, false, false)
	for i := 0; i < n; i++ {
		t.Create()
	}
	return t
}

func TestNeighborHeapOrdersByDissimThenNpixThenLabel(t *testing.T) {
	tbl := setupTable(3)
	h := NewNeighborHeap(tbl)

	c1, c2, c3 := tbl.Get(1), tbl.Get(2), tbl.Get(3)
	c1.BestNghbrDissim, c1.Npix = 5, 10
	c2.BestNghbrDissim, c2.Npix = 2, 10
	c3.BestNghbrDissim, c3.Npix = 2, 20

	h.Insert(1)
	h.Insert(2)
	h.Insert(3)

	assert.True(t, h.Valid())
	// c3 ties c2 on dissim but has larger npix, so it wins the tie.
	assert.Equal(t, uint32(3), h.Top())
}

func TestNeighborHeapRemoveAtPreservesShape(t *testing.T) {
	tbl := setupTable(5)
	h := NewNeighborHeap(tbl)
	for i := uint32(1); i <= 5; i++ {
		tbl.Get(i).BestNghbrDissim = float32(5 - i)
		h.Insert(i)
	}
	assert.True(t, h.Valid())

	h.Remove(3)
	assert.True(t, h.Valid())
	assert.Equal(t, 4, h.Len())
	assert.Equal(t, region.NoHeapPos, tbl.Get(3).NghbrHeapPos)
}

func TestNeighborHeapUpdateRestoresOrder(t *testing.T) {
	tbl := setupTable(3)
	h := NewNeighborHeap(tbl)
	for i := uint32(1); i <= 3; i++ {
		tbl.Get(i).BestNghbrDissim = float32(i)
		h.Insert(i)
	}
	top := h.Top()
	tbl.Get(top).BestNghbrDissim = 1000
	h.Update(top)
	assert.True(t, h.Valid())
	assert.NotEqual(t, top, h.Top())
}

func TestNeighborHeapBringToTop(t *testing.T) {
	tbl := setupTable(3)
	h := NewNeighborHeap(tbl)
	for i := uint32(1); i <= 3; i++ {
		tbl.Get(i).BestNghbrDissim = 0
		h.Insert(i)
	}
	h.BringToTop(3)
	assert.Equal(t, uint32(3), h.Top())
	// BringToTop does not re-validate: with dissim and npix all tied, the
	// label tie-break ranks label 2 ahead of label 3, so the forced root
	// leaves the heap outside its tuple order.
	assert.False(t, h.Valid())
}

func TestNeighborHeapRebuild(t *testing.T) {
	tbl := setupTable(4)
	h := NewNeighborHeap(tbl)
	for i := uint32(1); i <= 4; i++ {
		tbl.Get(i).BestNghbrDissim = float32(4 - i)
		h.Insert(i)
	}
	// scramble one key without going through Update, then rebuild.
	tbl.Get(1).BestNghbrDissim = -100
	h.Rebuild()
	assert.True(t, h.Valid())
}

package heap

import (
	"math"

	"github.com/arl/assertgo"

	"github.com/arl/rhseg/region"
)

// RegionHeap is the non-spatial analogue of NeighborHeap, keyed by
// BestRegionDissim (spec section 4.F). Only regions with Npix >= min_npixels
// are ever eligible to sit in it (spec section 3 invariant 6).
type RegionHeap struct {
	table *region.Table
	items []uint32
}

func NewRegionHeap(t *region.Table) *RegionHeap {
	return &RegionHeap{table: t}
}

func (h *RegionHeap) Len() int { return len(h.items) }

func (h *RegionHeap) less(i, j int) bool {
	a := h.table.Get(h.items[i])
	b := h.table.Get(h.items[j])
	if a.BestRegionDissim != b.BestRegionDissim {
		return a.BestRegionDissim < b.BestRegionDissim
	}
	if a.Npix != b.Npix {
		return a.Npix > b.Npix
	}
	return a.Label < b.Label
}

func (h *RegionHeap) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.table.Get(h.items[i]).RegionHeapPos = i
	h.table.Get(h.items[j]).RegionHeapPos = j
}

func (h *RegionHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			break
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *RegionHeap) siftDown(i int) {
	n := len(h.items)
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < n && h.less(left, smallest) {
			smallest = left
		}
		if right < n && h.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}

func (h *RegionHeap) Insert(label uint32) {
	c := h.table.Get(label)
	c.RegionHeapPos = len(h.items)
	h.items = append(h.items, label)
	h.siftUp(c.RegionHeapPos)
}

func (h *RegionHeap) RemoveAt(pos int) {
	assert.True(pos >= 0 && pos < len(h.items), "region heap: index out of range")
	n := len(h.items) - 1
	h.table.Get(h.items[pos]).RegionHeapPos = region.NoHeapPos
	if pos != n {
		h.items[pos] = h.items[n]
		h.table.Get(h.items[pos]).RegionHeapPos = pos
	}
	h.items = h.items[:n]
	if pos < n {
		h.siftUp(pos)
		h.siftDown(pos)
	}
}

func (h *RegionHeap) Remove(label uint32) {
	c := h.table.Get(label)
	if c == nil || c.RegionHeapPos == region.NoHeapPos {
		return
	}
	h.RemoveAt(c.RegionHeapPos)
}

func (h *RegionHeap) UpdateAt(pos int) {
	h.siftUp(pos)
	h.siftDown(pos)
}

func (h *RegionHeap) Update(label uint32) {
	c := h.table.Get(label)
	if c == nil || c.RegionHeapPos == region.NoHeapPos {
		return
	}
	h.UpdateAt(c.RegionHeapPos)
}

func (h *RegionHeap) Rebuild() {
	for i := len(h.items)/2 - 1; i >= 0; i-- {
		h.siftDown(i)
	}
}

// Items returns a copy of the heap's current label membership, in heap-array
// (not sorted) order.
func (h *RegionHeap) Items() []uint32 {
	return append([]uint32(nil), h.items...)
}

func (h *RegionHeap) Top() uint32 {
	if len(h.items) == 0 {
		return 0
	}
	return h.items[0]
}

// BestRegionInit performs the triangular initialization of spec section
// 4.F: for every eligible region at heap index i, compare against every
// eligible region at index > i, recording the mutual minimum dissimilarity
// (and tied-label set) on both sides. eligible must already be filtered to
// Npix >= min_npixels.
func BestRegionInit(t *region.Table, eligible []*region.Class, dissim func(a, b *region.Class) float32) {
	for _, c := range eligible {
		c.BestRegionDissim = float32(math.Inf(1))
		c.BestRegionLabels = map[uint32]struct{}{}
	}
	for i := 0; i < len(eligible); i++ {
		a := eligible[i]
		for j := i + 1; j < len(eligible); j++ {
			b := eligible[j]
			d := dissim(a, b)
			recordMutual(a, b, d)
		}
	}
}

func recordMutual(a, b *region.Class, d float32) {
	switch {
	case d < a.BestRegionDissim:
		a.BestRegionDissim = d
		a.BestRegionLabels = map[uint32]struct{}{b.Label: {}}
	case d == a.BestRegionDissim:
		a.BestRegionLabels[b.Label] = struct{}{}
	}
	switch {
	case d < b.BestRegionDissim:
		b.BestRegionDissim = d
		b.BestRegionLabels = map[uint32]struct{}{a.Label: {}}
	case d == b.BestRegionDissim:
		b.BestRegionLabels[a.Label] = struct{}{}
	}
}

func (h *RegionHeap) Valid() bool {
	n := len(h.items)
	for i := 0; i < n; i++ {
		left, right := 2*i+1, 2*i+2
		if left < n && h.less(left, i) {
			return false
		}
		if right < n && h.less(right, i) {
			return false
		}
	}
	return true
}

// Package heap implements the two interlocking priority heaps of spec
// section 4.E/4.F: the neighbor heap (best spatially-adjacent merge) and
// the region heap (best overall-spectral-cluster merge).
//
// Both are array-backed binary heaps storing region labels, with a
// back-pointer (the region's own heap-position field) kept in sync on every
// swap — the same bubbleUp/trickleDown shape as the teacher's
// detour.DtNodeQueue, generalized from a fixed "smaller total wins" order to
// the tuple order spec section 4.E specifies, and from a pop-only queue to
// one supporting update-in-place and a targeted bring-to-top.
package heap

import (
	"github.com/arl/assertgo"

	"github.com/arl/rhseg/region"
)

// NeighborHeap is a max-heap (in "urgency", i.e. a min-heap of dissimilarity)
// ordered per spec section 4.E: smallest best_nghbr_dissim wins; ties break
// toward larger nghbr_heap_npix, then smaller label.
type NeighborHeap struct {
	table *region.Table
	items []uint32 // labels
}

// NewNeighborHeap returns an empty heap backed by t.
func NewNeighborHeap(t *region.Table) *NeighborHeap {
	return &NeighborHeap{table: t}
}

func (h *NeighborHeap) Len() int { return len(h.items) }

// less reports whether the region at heap index i is strictly "more urgent"
// (i.e. should sit closer to the root) than the region at index j, per the
// ordering relation of spec section 4.E.
func (h *NeighborHeap) less(i, j int) bool {
	a := h.table.Get(h.items[i])
	b := h.table.Get(h.items[j])
	if a.BestNghbrDissim != b.BestNghbrDissim {
		return a.BestNghbrDissim < b.BestNghbrDissim
	}
	if a.NghbrHeapNpix != b.NghbrHeapNpix {
		return a.NghbrHeapNpix > b.NghbrHeapNpix
	}
	return a.Label < b.Label
}

func (h *NeighborHeap) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.table.Get(h.items[i]).NghbrHeapPos = i
	h.table.Get(h.items[j]).NghbrHeapPos = j
}

func (h *NeighborHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			break
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *NeighborHeap) siftDown(i int) {
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

// Insert adds label to the heap, snapshotting its current Npix into
// NghbrHeapNpix (spec section 4.E: the snapshot "may lag behind npix").
func (h *NeighborHeap) Insert(label uint32) {
	c := h.table.Get(label)
	c.NghbrHeapNpix = c.Npix
	c.NghbrHeapPos = len(h.items)
	h.items = append(h.items, label)
	h.siftUp(c.NghbrHeapPos)
}

// RemoveAt removes the region currently at heap index pos.
func (h *NeighborHeap) RemoveAt(pos int) {
	assert.True(pos >= 0 && pos < len(h.items), "neighbor heap: index out of range")
	n := len(h.items) - 1
	h.table.Get(h.items[pos]).NghbrHeapPos = region.NoHeapPos
	if pos != n {
		h.items[pos] = h.items[n]
		h.table.Get(h.items[pos]).NghbrHeapPos = pos
	}
	h.items = h.items[:n]
	if pos < n {
		h.siftUp(pos)
		h.siftDown(pos)
	}
}

// Remove removes label from wherever it currently sits.
func (h *NeighborHeap) Remove(label uint32) {
	c := h.table.Get(label)
	if c == nil || c.NghbrHeapPos == region.NoHeapPos {
		return
	}
	h.RemoveAt(c.NghbrHeapPos)
}

// UpdateAt restores heap order after the region at pos had its key (best
// neighbor dissimilarity or its npix snapshot) change externally: sift up
// then down until stable (spec section 4.E).
func (h *NeighborHeap) UpdateAt(pos int) {
	h.siftUp(pos)
	h.siftDown(pos)
}

// Update re-snapshots label's Npix and restores heap order for it.
func (h *NeighborHeap) Update(label uint32) {
	c := h.table.Get(label)
	if c == nil || c.NghbrHeapPos == region.NoHeapPos {
		return
	}
	c.NghbrHeapNpix = c.Npix
	h.UpdateAt(c.NghbrHeapPos)
}

// BringToTop forces label, whose key already ties the current top's key,
// to heap index 0 by repeated parent-swap rather than a full sift (spec
// section 4.E). Callers must only invoke this when label is already tied
// for best; it does not re-validate ordering against non-tied neighbors.
func (h *NeighborHeap) BringToTop(label uint32) {
	c := h.table.Get(label)
	if c == nil || c.NghbrHeapPos == region.NoHeapPos {
		return
	}
	i := c.NghbrHeapPos
	for i > 0 {
		parent := (i - 1) / 2
		h.swap(i, parent)
		i = parent
	}
}

// Rebuild re-heapifies the whole array in O(n), for recovery after a batch
// of external mutations (spec section 7 category 3 fallback).
func (h *NeighborHeap) Rebuild() {
	for i := len(h.items)/2 - 1; i >= 0; i-- {
		h.siftDown(i)
	}
}

// Items returns a copy of the heap's current label membership, in heap-array
// (not sorted) order. Used by the merge engine when a maintenance pass needs
// to scan every heap-eligible region rather than just the top.
func (h *NeighborHeap) Items() []uint32 {
	return append([]uint32(nil), h.items...)
}

// Top returns the label at the root, or 0 if the heap is empty.
func (h *NeighborHeap) Top() uint32 {
	if len(h.items) == 0 {
		return 0
	}
	return h.items[0]
}

// Valid reports whether the heap-shape invariant (spec section 8: node key
// at i is at least as urgent as its children) holds for every node. Used by
// tests and by the category-3 recovery path.
func (h *NeighborHeap) Valid() bool {
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

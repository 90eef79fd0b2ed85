package pixel

import (
	"github.com/arl/gogeo/f32/d3"

	"github.com/arl/rhseg/config"
)

// Window is a half-open axis-aligned sub-range of a Store's coordinate
// space: the recursive driver's sub-window of spec section 4.J. Bounds are
// [Lo, Hi) along each axis.
type Window struct {
	ColLo, ColHi     int
	RowLo, RowHi     int
	SliceLo, SliceHi int
}

// WholeImage returns the Window covering every pixel of a store with the
// given Dims.
func WholeImage(d Dims) Window {
	rows, slices := d.Rows, d.Slices
	if rows == 0 {
		rows = 1
	}
	if slices == 0 {
		slices = 1
	}
	return Window{ColHi: d.Cols, RowHi: rows, SliceHi: slices}
}

// Contains reports whether pixel i of a store shaped d falls within w.
func (w Window) Contains(d Dims, i int) bool {
	c, r, s := d.Coords(i)
	return c >= w.ColLo && c < w.ColHi && r >= w.RowLo && r < w.RowHi && s >= w.SliceLo && s < w.SliceHi
}

// Size returns the pixel count of the window.
func (w Window) Size() int {
	return (w.ColHi - w.ColLo) * (w.RowHi - w.RowLo) * (w.SliceHi - w.SliceLo)
}

// Split halves w along axis (0=col, 1=row, 2=slice), returning the low and
// high sub-windows and the coordinate at which they meet (spec section
// 4.J's "partition ... by halving").
func (w Window) Split(axis int) (lo, hi Window, splitIndex int) {
	lo, hi = w, w
	switch axis {
	case 0:
		mid := w.ColLo + (w.ColHi-w.ColLo+1)/2
		lo.ColHi, hi.ColLo = mid, mid
		splitIndex = mid
	case 1:
		mid := w.RowLo + (w.RowHi-w.RowLo+1)/2
		lo.RowHi, hi.RowLo = mid, mid
		splitIndex = mid
	case 2:
		mid := w.SliceLo + (w.SliceHi-w.SliceLo+1)/2
		lo.SliceHi, hi.SliceLo = mid, mid
		splitIndex = mid
	}
	return
}

// Bounds returns w as a 3-D bounding box, for the recursive driver's debug
// logging and (eventually) any spatial-collaborator geometry exchange.
func (w Window) Bounds() d3.Rectangle {
	return d3.Rect(
		float32(w.ColLo), float32(w.RowLo), float32(w.SliceLo),
		float32(w.ColHi), float32(w.RowHi), float32(w.SliceHi),
	)
}

// Bounds returns the store's full coordinate extent as a 3-D bounding box.
func (s *Store) Bounds() d3.Rectangle {
	return WholeImage(s.dims).Bounds()
}

// NeighborsWithin is Neighbors filtered to only those neighbors that also
// fall within win — the leaf sub-window first-merge and neighbor-linking
// passes of spec section 4.J never cross an unresolved recursion seam.
func (s *Store) NeighborsWithin(i int, conn config.ConnType, win Window, dst []int) []int {
	dst = s.Neighbors(i, conn, dst)
	out := dst[:0]
	for _, j := range dst {
		if win.Contains(s.dims, j) {
			out = append(out, j)
		}
	}
	return out
}

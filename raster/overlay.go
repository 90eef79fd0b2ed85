package raster

import (
	"fmt"

	"github.com/arl/gobj"

	"github.com/arl/rhseg/pixel"
)

// LoadOverlay reads an OBJ-format region-map overlay mesh and point-samples
// it onto a dims-shaped grid, one label per polygon in file order. This is
// the debugging/visualization aid named in spec section 6's "optional
// region-map input": a region-map initializer external to the core
// algorithm, letting a caller seed first-merge from a hand-authored or
// externally-segmented region layout instead of growing from scratch. It
// never feeds the dissimilarity kernel directly.
func LoadOverlay(path string, dims pixel.Dims) ([]uint32, error) {
	of, err := gobj.Load(path)
	if err != nil {
		return nil, fmt.Errorf("raster: load overlay %s: %w", path, err)
	}

	bb := of.AABB()
	spanX, spanY := bb.MaxX-bb.MinX, bb.MaxY-bb.MinY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}

	labels := make([]uint32, dims.Size())
	rows := dims.Rows
	if rows == 0 {
		rows = 1
	}
	for pidx, poly := range of.Polys() {
		pbb := poly.AABB()
		c0 := int((pbb.MinX - bb.MinX) / spanX * float64(dims.Cols))
		c1 := int((pbb.MaxX - bb.MinX) / spanX * float64(dims.Cols))
		r0 := int((pbb.MinY - bb.MinY) / spanY * float64(rows))
		r1 := int((pbb.MaxY - bb.MinY) / spanY * float64(rows))
		label := uint32(pidx + 1)
		for col := clamp(c0, 0, dims.Cols-1); col <= clamp(c1, 0, dims.Cols-1); col++ {
			for row := clamp(r0, 0, rows-1); row <= clamp(r1, 0, rows-1); row++ {
				labels[dims.Index(col, row, 0)] = label
			}
		}
	}
	return labels, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

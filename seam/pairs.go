// Package seam implements the RHSeg artifact-elimination pass of spec
// section 4.I: when the recursive driver concatenates two sibling
// sub-windows back into one frame, the pixels that straddle the join (the
// "seam") are re-examined so a region the window split arbitrarily in two
// can be reunited, while a genuine image edge sitting on the seam still
// suppresses the merge.
//
// Grounded on the teacher's recast.mergeAndFilterRegions loop shape (same
// as package merge draws on), narrowed here to a seam-local neighbor-merge
// loop gated by an edge threshold rather than a region-size threshold.
package seam

import "github.com/arl/rhseg/pixel"

// Pair is one directly-across pixel pair straddling a recursion-level join,
// at some depth into the seam_size-wide band: P on the low side of the
// split, Q on the high side.
type Pair struct {
	P, Q int
}

// BuildPairs enumerates every directly-across pixel pair inside the
// seam_size-wide band straddling the join at coordinate splitIndex along
// axis (0=col, 1=row, 2=slice), per spec section 4.I: "one entry per pixel
// inside the seam_size-wide band on each side". seamSize/2 gives the band
// depth on each side (config.Params.SeamSize, derived in config.Defaults);
// at depth d (0-based, 0 being the boundary itself) the pixel at
// splitIndex-1-d is paired with the pixel at splitIndex+d, mirroring
// do_region_init.cc's seam_region_classes_init, which walks the same
// seam_size/2-wide index band but only ever links a position to the pixel
// directly across the split at the same depth. Depths that would fall
// outside the window are simply skipped (the band clips at the image
// boundary rather than failing).
func BuildPairs(dims pixel.Dims, axis, splitIndex, seamSize int) []Pair {
	rows, slices := dims.Rows, dims.Slices
	if rows == 0 {
		rows = 1
	}
	if slices == 0 {
		slices = 1
	}
	depth := seamSize / 2
	if depth < 1 {
		depth = 1
	}

	var pairs []Pair
	switch axis {
	case 0:
		if splitIndex <= 0 || splitIndex >= dims.Cols {
			return nil
		}
		for s := 0; s < slices; s++ {
			for r := 0; r < rows; r++ {
				for d := 0; d < depth; d++ {
					lo, hi := splitIndex-1-d, splitIndex+d
					if lo < 0 || hi >= dims.Cols {
						break
					}
					pairs = append(pairs, Pair{P: dims.Index(lo, r, s), Q: dims.Index(hi, r, s)})
				}
			}
		}
	case 1:
		if splitIndex <= 0 || splitIndex >= rows {
			return nil
		}
		for s := 0; s < slices; s++ {
			for c := 0; c < dims.Cols; c++ {
				for d := 0; d < depth; d++ {
					lo, hi := splitIndex-1-d, splitIndex+d
					if lo < 0 || hi >= rows {
						break
					}
					pairs = append(pairs, Pair{P: dims.Index(c, lo, s), Q: dims.Index(c, hi, s)})
				}
			}
		}
	case 2:
		if splitIndex <= 0 || splitIndex >= slices {
			return nil
		}
		for r := 0; r < rows; r++ {
			for c := 0; c < dims.Cols; c++ {
				for d := 0; d < depth; d++ {
					lo, hi := splitIndex-1-d, splitIndex+d
					if lo < 0 || hi >= slices {
						break
					}
					pairs = append(pairs, Pair{P: dims.Index(c, r, lo), Q: dims.Index(c, r, hi)})
				}
			}
		}
	}
	return pairs
}

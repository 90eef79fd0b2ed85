// Package pixel is the read-only-after-construction pixel store (spec
// section 4.A): normalized per-band values, optional local standard
// deviation and edge fields, masks, and the single mutable field — each
// pixel's current region-class label.
//
// Modeled on the teacher's recast.Heightfield/CompactHeightfield: a flat,
// linearly-addressed array of per-cell data built once from raw input, plus
// a small set of per-cell accessor methods the rest of the engine calls
// instead of indexing slices directly.
package pixel

import (
	"fmt"
	"math"

	"github.com/arl/rhseg/config"
)

// Dims is the shape of the raster: 1-D, 2-D or 3-D depending on which of
// Rows/Slices is > 1.
type Dims struct {
	Cols, Rows, Slices int
}

// Size returns the total pixel count.
func (d Dims) Size() int {
	r, s := d.Rows, d.Slices
	if r == 0 {
		r = 1
	}
	if s == 0 {
		s = 1
	}
	return d.Cols * r * s
}

// Index converts (col, row, slice) coordinates to a linear index.
func (d Dims) Index(col, row, slice int) int {
	r := d.Rows
	if r == 0 {
		r = 1
	}
	return slice*d.Cols*r + row*d.Cols + col
}

// Coords converts a linear index back to (col, row, slice).
func (d Dims) Coords(i int) (col, row, slice int) {
	r := d.Rows
	if r == 0 {
		r = 1
	}
	plane := d.Cols * r
	slice = i / plane
	rem := i % plane
	row = rem / d.Cols
	col = rem % d.Cols
	return
}

// Store holds the normalized, band-major pixel data for one raster (or one
// recursive sub-window of one). Everything but RegionLabel is immutable once
// built.
type Store struct {
	dims   Dims
	nbands int

	// bands[b][i] is the normalized value of band b at pixel i.
	bands [][]float32
	// localStdDev[b][i], present only when StdDevImage is set.
	localStdDev [][]float32
	// edgeValue[i], present only when an edge image was supplied.
	edgeValue []float32
	edgeMask  []bool

	mask   []bool
	labels []uint32

	scale, offset []float32
}

// BandStats is the per-band min/max/mean the raster loader (spec section 6,
// external collaborator) must supply so Build can derive normalization
// scale/offset once, up front.
type BandStats struct {
	Min, Max, Mean, Var float32
}

// Raw is the unnormalized input the loader hands to Build: one []float32 per
// band, row-major/slice-major per Dims, plus optional mask/edge/std-dev
// planes the loader may or may not have produced.
type Raw struct {
	Dims  Dims
	Bands [][]float32

	Mask        []bool    // nil => every pixel good
	EdgeValue   []float32 // nil => no edge image
	EdgeMask    []bool    // nil, implied true wherever EdgeValue != nil
	LocalStdDev [][]float32
}

// Build normalizes raw per the configured NormMode and returns an immutable
// Store. Scale/offset are computed once from the supplied BandStats (the
// "static per-band scale/offset computed once from global mean/variance"
// of spec section 4.A), never recomputed per-pixel.
func Build(raw Raw, stats []BandStats, mode config.NormMode) (*Store, error) {
	n := raw.Dims.Size()
	nb := len(raw.Bands)
	if nb == 0 {
		return nil, fmt.Errorf("pixel: no bands supplied")
	}
	if len(stats) != nb {
		return nil, fmt.Errorf("pixel: band stats count %d != band count %d", len(stats), nb)
	}
	for b, band := range raw.Bands {
		if len(band) != n {
			return nil, fmt.Errorf("pixel: band %d has %d samples, want %d", b, len(band), n)
		}
	}

	s := &Store{
		dims:   raw.Dims,
		nbands: nb,
		bands:  make([][]float32, nb),
		mask:   raw.Mask,
		labels: make([]uint32, n),
		scale:  make([]float32, nb),
		offset: make([]float32, nb),
	}
	if s.mask == nil {
		s.mask = make([]bool, n)
		for i := range s.mask {
			s.mask[i] = true
		}
	}

	computeScaleOffset(stats, mode, s.scale, s.offset)

	for b := range raw.Bands {
		normed := make([]float32, n)
		sc, off := s.scale[b], s.offset[b]
		for i, v := range raw.Bands[b] {
			normed[i] = (v - off) * sc
		}
		s.bands[b] = normed
	}

	if raw.LocalStdDev != nil {
		s.localStdDev = raw.LocalStdDev
	}
	if raw.EdgeValue != nil {
		s.edgeValue = raw.EdgeValue
		s.edgeMask = raw.EdgeMask
		if s.edgeMask == nil {
			s.edgeMask = make([]bool, n)
			for i := range s.edgeMask {
				s.edgeMask[i] = true
			}
		}
	}

	return s, nil
}

// computeScaleOffset derives a per-band (scale, offset) pair from global
// band statistics according to the selected normalization mode:
//   - none: scale=1, offset=0 (pass-through).
//   - per-band: each band normalized by its own mean/stddev.
//   - across-band: every band shares one scale/offset derived from the
//     aggregate mean/variance across all bands, so relative band magnitudes
//     are preserved (spec section 4.A).
func computeScaleOffset(stats []BandStats, mode config.NormMode, scale, offset []float32) {
	switch mode {
	case config.NormPerBand:
		for b, st := range stats {
			sd := sqrtf(st.Var)
			if sd == 0 {
				scale[b], offset[b] = 1, 0
				continue
			}
			scale[b] = 1 / sd
			offset[b] = st.Mean
		}
	case config.NormAcrossBand:
		var meanSum, varSum float32
		for _, st := range stats {
			meanSum += st.Mean
			varSum += st.Var
		}
		n := float32(len(stats))
		sd := sqrtf(varSum / n)
		if sd == 0 {
			sd = 1
		}
		for b := range stats {
			scale[b] = 1 / sd
			offset[b] = meanSum / n
		}
	default: // NormNone
		for b := range stats {
			scale[b], offset[b] = 1, 0
		}
	}
}

func sqrtf(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(v)))
}

func (s *Store) Dims() Dims  { return s.dims }
func (s *Store) NumBands() int { return s.nbands }
func (s *Store) NumPixels() int { return len(s.labels) }

func (s *Store) Mask(i int) bool { return s.mask[i] }

func (s *Store) Value(i, band int) float32 { return s.bands[band][i] }

func (s *Store) HasLocalStdDev() bool { return s.localStdDev != nil }

func (s *Store) LocalStdDev(i, band int) float32 {
	if s.localStdDev == nil {
		return 0
	}
	return s.localStdDev[band][i]
}

func (s *Store) HasEdge() bool { return s.edgeValue != nil }

func (s *Store) EdgeMask(i int) bool {
	if s.edgeMask == nil {
		return false
	}
	return s.edgeMask[i]
}

func (s *Store) EdgeValue(i int) float32 {
	if s.edgeValue == nil {
		return -1
	}
	return s.edgeValue[i]
}

func (s *Store) RegionLabel(i int) uint32 { return s.labels[i] }

func (s *Store) SetRegionLabel(i int, l uint32) { s.labels[i] = l }

// Package region implements the region-class data model of spec section
// 4.B: per-class aggregate statistics, neighbor bookkeeping, best-neighbor
// and best-region tie sets, and the merge_in/recompute operations the merge
// engine drives.
//
// Regions live in a single flat Table keyed by label, exactly as the
// teacher's recast.Region table does for its watershed regions — neighbor
// sets hold labels, never pointers, so merge bookkeeping can't create
// reference cycles (spec section 9, design note on cyclic graphs).
package region

import (
	"math"

	"github.com/arl/rhseg/internal/f32x"
)

// NoHeapPos is the sentinel NghbrHeapPos/RegionHeapPos value meaning "not
// currently in that heap" (spec section 3, invariant 5).
const NoHeapPos = -1

// Class is one region-class: a (possibly spatially disconnected) set of
// pixels sharing spectral statistics. Label is immutable once created;
// every other field mutates as first-merge and the merge engine run.
type Class struct {
	Active bool
	Label  uint32
	Npix   uint32

	Sum            []float32
	SumSq          []float32 // allocated only when RegionSumSqFlag
	SumXLogX       []float32 // allocated only when RegionSumXLogXFlag
	SumLocalStdDev []float32 // allocated only when the store carries local std-dev

	MaxEdgeValue float32

	Nghbrs map[uint32]struct{}

	BestNghbrLabels map[uint32]struct{}
	BestNghbrDissim float32
	NghbrHeapPos    int
	NghbrHeapNpix   uint32 // snapshot taken at last heap insert/update

	BestRegionLabels map[uint32]struct{}
	BestRegionDissim float32
	RegionHeapPos    int

	MergeTargetLabel uint32
	MergeThreshold   float32

	InitialMergeFlag     bool
	SeamFlag             bool
	MergedFlag           bool
	LargeNghbrMergedFlag bool

	SeamNeighborMap map[uint32]*Seam

	// Opaque bookkeeping for the connected-component collaborator (spec
	// section 3); this module never interprets these, only carries them
	// through merges so the collaborator sees consistent data post-merge.
	RegionObjectsSet map[uint32]struct{}
	NbRegionObjects  int
	BoundaryNpix     uint32
}

// newClass returns an inactive prototype for label l, with nbands-sized
// accumulators. sumSq/sumXLogX/localStdDev control which optional
// accumulators get allocated (spec section 3: "allocated only when needed").
func newClass(l uint32, nbands int, sumSq, sumXLogX, localStdDev bool) *Class {
	c := &Class{
		Label:           l,
		Sum:             make([]float32, nbands),
		Nghbrs:          make(map[uint32]struct{}),
		BestNghbrLabels: make(map[uint32]struct{}),
		BestRegionLabels: make(map[uint32]struct{}),
		NghbrHeapPos:    NoHeapPos,
		RegionHeapPos:   NoHeapPos,
		BestNghbrDissim: float32(math.Inf(1)),
		BestRegionDissim: float32(math.Inf(1)),
	}
	if sumSq {
		c.SumSq = make([]float32, nbands)
	}
	if sumXLogX {
		c.SumXLogX = make([]float32, nbands)
	}
	if localStdDev {
		c.SumLocalStdDev = make([]float32, nbands)
	}
	return c
}

// Clear resets c to its inactive prototype state but does NOT clear Label
// (spec section 4.B).
func (c *Class) Clear() {
	label := c.Label
	nbands := len(c.Sum)
	hadSumSq := c.SumSq != nil
	hadSumXLogX := c.SumXLogX != nil
	hadStdDev := c.SumLocalStdDev != nil
	*c = *newClass(label, nbands, hadSumSq, hadSumXLogX, hadStdDev)
}

// PartialClear resets only the transient fields the merge engine recomputes
// every stage: best-neighbor/best-region tie sets, heap positions, merge
// threshold, and region-objects bookkeeping. Aggregate statistics and
// neighbor sets survive.
func (c *Class) PartialClear() {
	c.BestNghbrLabels = make(map[uint32]struct{})
	c.BestNghbrDissim = float32(math.Inf(1))
	c.NghbrHeapPos = NoHeapPos
	c.BestRegionLabels = make(map[uint32]struct{})
	c.BestRegionDissim = float32(math.Inf(1))
	c.RegionHeapPos = NoHeapPos
	c.MergeThreshold = 0
	c.RegionObjectsSet = nil
	c.NbRegionObjects = 0
}

// Mean returns the per-pixel mean of band b.
func (c *Class) Mean(b int) float32 {
	if c.Npix == 0 {
		return 0
	}
	return c.Sum[b] / float32(c.Npix)
}

// MeanStdDev returns the per-band running mean of per-pixel local std-dev
// (sum_local_stddev / npix), used by Class.StdDev and by the dissimilarity
// kernel's std-dev augmentation.
func (c *Class) MeanStdDev(b int) float32 {
	if c.Npix == 0 || c.SumLocalStdDev == nil {
		return 0
	}
	return c.SumLocalStdDev[b] / float32(c.Npix)
}

// StdDev implements spec section 4.B's blended standard deviation: below 9
// pixels, ramp between the running per-pixel std-dev mean and the
// bias-corrected sample std-dev; at or above 9 pixels, the sample std-dev
// alone. When meanNormStdDev is set, scale the result by npix*sigma/sum
// ("mean-normalized std-dev" mode — spec section 9 Open Question 2).
func (c *Class) StdDev(b int, meanNormStdDev bool) float32 {
	n := float32(c.Npix)
	if n == 0 {
		return 0
	}
	mean := c.Mean(b)
	var sampleSD float32
	if c.SumSq != nil && c.Npix > 1 {
		variance := c.SumSq[b]/n - mean*mean
		if variance < 0 {
			variance = 0
		}
		// Bias correction: n/(n-1).
		sampleSD = f32x.Sqrt(variance * n / (n - 1))
	}

	var sd float32
	if c.Npix < 9 {
		f := (9 - n) / 9
		sd = f*c.MeanStdDev(b) + (1-f)*sampleSD
	} else {
		sd = sampleSD
	}

	if meanNormStdDev && c.Sum[b] != 0 {
		sd = n * sd / c.Sum[b]
	}
	return sd
}

// IsNeighbor reports whether label is a spatial neighbor of c.
func (c *Class) IsNeighbor(label uint32) bool {
	_, ok := c.Nghbrs[label]
	return ok
}

// IsBestNeighbor reports whether label is tied for c's best spatial merge
// partner.
func (c *Class) IsBestNeighbor(label uint32) bool {
	_, ok := c.BestNghbrLabels[label]
	return ok
}

// IsBestRegion reports whether label is tied for c's best non-spatial merge
// partner.
func (c *Class) IsBestRegion(label uint32) bool {
	_, ok := c.BestRegionLabels[label]
	return ok
}

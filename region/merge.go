package region

import (
	"math"

	"github.com/arl/rhseg/internal/f32x"
)

// MergeIn folds other into c: precondition c.Npix >= other.Npix (the
// absorber-ordering invariant the merge engine enforces before calling
// this, spec section 4.H). Accumulators are summed, MaxEdgeValue is
// maxed, neighbor sets are unioned (with both labels erased from the
// union), other is deactivated, and every region that neighbored other is
// relinked to point at c instead (spec section 4.B).
func (c *Class) MergeIn(t *Table, other *Class, threshold float32, lastStage bool) {
	for b := range c.Sum {
		c.Sum[b] += other.Sum[b]
	}
	if c.SumSq != nil && other.SumSq != nil {
		for b := range c.SumSq {
			c.SumSq[b] += other.SumSq[b]
		}
	}
	if c.SumXLogX != nil && other.SumXLogX != nil {
		for b := range c.SumXLogX {
			c.SumXLogX[b] += other.SumXLogX[b]
		}
	}
	if c.SumLocalStdDev != nil && other.SumLocalStdDev != nil {
		for b := range c.SumLocalStdDev {
			c.SumLocalStdDev[b] += other.SumLocalStdDev[b]
		}
	}
	c.Npix += other.Npix
	c.MaxEdgeValue = f32x.Max(c.MaxEdgeValue, other.MaxEdgeValue)

	for nb := range other.Nghbrs {
		if nb == c.Label {
			continue
		}
		c.Nghbrs[nb] = struct{}{}
	}
	delete(c.Nghbrs, c.Label)
	delete(c.Nghbrs, other.Label)

	other.Active = false
	other.MergeTargetLabel = c.Label
	c.MergeThreshold = threshold
	c.InitialMergeFlag = c.InitialMergeFlag || other.InitialMergeFlag
	c.SeamFlag = c.SeamFlag || other.SeamFlag
	c.MergedFlag = true
	_ = lastStage // carried for callers that branch on it; no local effect

	// Relink every region that neighbored `other` to neighbor `c` instead,
	// propagating the same replacement into that region's best-neighbor tie
	// set (spec section 4.B).
	for nb := range other.Nghbrs {
		if nb == c.Label || nb == other.Label {
			continue
		}
		n := t.Get(nb)
		if n == nil || !n.Active {
			continue
		}
		delete(n.Nghbrs, other.Label)
		if n.Label != c.Label {
			n.Nghbrs[c.Label] = struct{}{}
		}
		if _, ok := n.BestNghbrLabels[other.Label]; ok {
			delete(n.BestNghbrLabels, other.Label)
			if n.Label != c.Label {
				n.BestNghbrLabels[c.Label] = struct{}{}
			}
		}
	}
}

// RecomputeBestNeighbor recomputes c's best-neighbor tie set by comparing
// against every current spatial neighbor, using dissim as the pairwise
// dissimilarity function (injected so this package stays independent of the
// dissim package's Params type — spec section 9 design note on a pure,
// explicit-parameter kernel).
func (c *Class) RecomputeBestNeighbor(t *Table, dissim func(a, b *Class) float32) {
	c.BestNghbrLabels = make(map[uint32]struct{})
	best := float32(math.Inf(1))
	for nb := range c.Nghbrs {
		n := t.Get(nb)
		if n == nil || !n.Active {
			continue
		}
		d := dissim(c, n)
		switch {
		case d < best:
			best = d
			c.BestNghbrLabels = map[uint32]struct{}{nb: {}}
		case d == best:
			c.BestNghbrLabels[nb] = struct{}{}
		}
	}
	c.BestNghbrDissim = best
}

// RecomputeBestRegion recomputes c's best-region tie set against candidates
// (every other region-heap-eligible region), symmetrically updating each
// candidate's own best-region bookkeeping too (spec section 4.F's
// triangular initialization/maintenance).
func (c *Class) RecomputeBestRegion(t *Table, candidates []*Class, dissim func(a, b *Class) float32) {
	c.BestRegionLabels = make(map[uint32]struct{})
	best := float32(math.Inf(1))
	for _, o := range candidates {
		if o.Label == c.Label || !o.Active {
			continue
		}
		d := dissim(c, o)
		switch {
		case d < best:
			best = d
			c.BestRegionLabels = map[uint32]struct{}{o.Label: {}}
		case d == best:
			c.BestRegionLabels[o.Label] = struct{}{}
		}
		// Symmetric update of the candidate's side.
		if d < o.BestRegionDissim {
			o.BestRegionDissim = d
			o.BestRegionLabels = map[uint32]struct{}{c.Label: {}}
		} else if d == o.BestRegionDissim {
			o.BestRegionLabels[c.Label] = struct{}{}
		}
	}
	c.BestRegionDissim = best
}

// PickBestNeighborLabel returns the label, among c's tied best-neighbor set,
// whose region has (largest Npix, then smallest label) — the deterministic
// tie-break spec section 4.B/4.H require.
func (c *Class) PickBestNeighborLabel(t *Table) uint32 {
	return pickTieBreak(t, c.BestNghbrLabels)
}

// PickBestRegionLabel is PickBestNeighborLabel's non-spatial analogue.
func (c *Class) PickBestRegionLabel(t *Table) uint32 {
	return pickTieBreak(t, c.BestRegionLabels)
}

func pickTieBreak(t *Table, set map[uint32]struct{}) uint32 {
	var best uint32
	var bestNpix uint32
	first := true
	for l := range set {
		o := t.Get(l)
		if o == nil {
			continue
		}
		if first || o.Npix > bestNpix || (o.Npix == bestNpix && l < best) {
			best, bestNpix, first = l, o.Npix, false
		}
	}
	return best
}

// Package merge implements the merge engine of spec section 4.H: the
// two-heap decision rule that alternates region merges (spectral
// clustering) and neighbor merges (spatial adjacency), driving a region
// table down toward a convergence target while tracking the monotonic
// max_threshold accumulator.
//
// Grounded on the teacher's recast.mergeAndFilterRegions (recast/region.go):
// the same "pick a candidate off a work queue, absorb the smaller into the
// larger, patch up neighbor bookkeeping, repeat until the queue stops
// yielding progress" shape, generalized from a single FIFO queue of
// too-small regions to the two-heap priority scheme spec section 4.E/4.F
// specify, and from recast's one-way region-into-neighbor absorption to the
// size/label absorber-ordering rule spec section 4.H adds.
package merge

import (
	"github.com/arl/rhseg/config"
	"github.com/arl/rhseg/dissim"
	"github.com/arl/rhseg/heap"
	"github.com/arl/rhseg/internal/f32x"
	"github.com/arl/rhseg/region"
	"github.com/arl/rhseg/rhctx"
)

// Engine owns the two heaps over a region table and runs merge stages
// against it. One Engine is built per recursion-level pass (leaf first-merge
// output, post-seam concatenated window, or the root), per spec section
// 4.J's "leaves first" control flow.
type Engine struct {
	ctx   *rhctx.Context
	table *region.Table
	p     *config.Params

	nh *heap.NeighborHeap
	rh *heap.RegionHeap

	maxThreshold float32
	nregions     int
}

// NewEngine builds an Engine over every currently-active region in t,
// computing each region's best-neighbor and (for heap-eligible regions)
// best-region tie sets from scratch and populating both heaps (spec section
// 4.E/4.F initialization).
func NewEngine(ctx *rhctx.Context, t *region.Table, p *config.Params) *Engine {
	e := &Engine{
		ctx:   ctx,
		table: t,
		p:     p,
		nh:    heap.NewNeighborHeap(t),
		rh:    heap.NewRegionHeap(t),
	}
	e.rebuildHeaps()
	e.nregions = t.NumActive()
	return e
}

func (e *Engine) rebuildHeaps() {
	var eligible []*region.Class
	e.table.Active(func(c *region.Class) {
		c.RecomputeBestNeighbor(e.table, e.neighborDissim)
		if uint32(e.p.MinNpixels) <= c.Npix {
			eligible = append(eligible, c)
		}
	})
	e.table.Active(func(c *region.Class) { e.nh.Insert(c.Label) })
	heap.BestRegionInit(e.table, eligible, e.regionDissim)
	for _, c := range eligible {
		e.rh.Insert(c.Label)
	}
}

// NumRegions returns the current count of active regions.
func (e *Engine) NumRegions() int { return e.nregions }

// MaxThreshold returns the running max_threshold accumulator.
func (e *Engine) MaxThreshold() float32 { return e.maxThreshold }

// SeedMaxThreshold sets the starting max_threshold, used by the recursive
// driver to carry the accumulator forward from a child window into its
// parent (spec section 5: "a global max_threshold monotonically
// increases").
func (e *Engine) SeedMaxThreshold(v float32) {
	if v > e.maxThreshold {
		e.maxThreshold = v
	}
}

// Table returns the region table this engine operates on.
func (e *Engine) Table() *region.Table { return e.table }

func (e *Engine) stats(c *region.Class) dissim.Stats {
	return dissim.Stats{
		Npix:             c.Npix,
		Sum:              c.Sum,
		SumLocalStdDev:   c.SumLocalStdDev,
		MaxEdgeValue:     c.MaxEdgeValue,
		InitialMergeFlag: c.InitialMergeFlag,
		SeamFlag:         c.SeamFlag,
	}
}

// neighborDissim is the accelerated form the neighbor heap path always uses
// (spec section 4.D: merge_accel only ever applies there).
func (e *Engine) neighborDissim(a, b *region.Class) float32 {
	return dissim.Dissimilarity(e.stats(a), e.stats(b), e.p, true)
}

func (e *Engine) regionDissim(a, b *region.Class) float32 {
	return dissim.Dissimilarity(e.stats(a), e.stats(b), e.p, false)
}

// RunStage runs merges until nregions drops to or below convergeNregions or
// no eligible merge remains, invoking onMerge (if non-nil) after every
// completed merge so a caller can check hierarchy output triggers (spec
// section 4.H/4.K). lastStage gates the large_nghbr_merged_flag early
// return that caps the final stage's neighbor-merge pass.
func (e *Engine) RunStage(lastStage bool, convergeNregions int, onMerge func(nregions int, maxThreshold float32)) error {
	e.ctx.StartTimer(rhctx.TimerMergeEngine)
	defer e.ctx.StopTimer(rhctx.TimerMergeEngine)

	for e.nregions > convergeNregions {
		did, err := e.step(lastStage)
		if err != nil {
			return err
		}
		if !did {
			return nil
		}
		if onMerge != nil {
			onMerge(e.nregions, e.maxThreshold)
		}
	}
	return nil
}

// step executes the decision rule at the top of spec section 4.H's loop
// once, returning whether a merge happened.
func (e *Engine) step(lastStage bool) (bool, error) {
	top := e.cleanRegionHeapTop()
	nbTop := e.cleanNeighborHeapTop()

	if top != nil && e.rh.Len() >= 2 && e.p.SpclustWght > 0 {
		lhs := top.BestRegionDissim / e.p.SpclustWght
		rhs := e.maxThreshold
		if nbTop != nil && nbTop.BestNghbrDissim > rhs {
			rhs = nbTop.BestNghbrDissim
		}
		if lhs <= rhs {
			return e.doRegionMerge(top)
		}
	}
	if nbTop != nil {
		return e.doNeighborMerge(nbTop, lastStage)
	}
	return false, nil
}

// cleanRegionHeapTop pops any stale (deactivated) entries off the region
// heap's root, self-correcting per spec section 7 category 3, and returns
// the first genuinely active top it finds (or nil if the heap empties out).
func (e *Engine) cleanRegionHeapTop() *region.Class {
	for e.rh.Len() > 0 {
		label := e.rh.Top()
		c := e.table.Get(label)
		if c != nil && c.Active {
			return c
		}
		e.rh.Remove(label)
		e.ctx.Correction("region heap top %d was inactive, removed", label)
	}
	return nil
}

func (e *Engine) cleanNeighborHeapTop() *region.Class {
	for e.nh.Len() > 0 {
		label := e.nh.Top()
		c := e.table.Get(label)
		if c != nil && c.Active {
			return c
		}
		e.nh.Remove(label)
		e.ctx.Correction("neighbor heap top %d was inactive, removed", label)
	}
	return nil
}

// doRegionMerge performs the spectral-clustering merge branch of spec
// section 4.H.
func (e *Engine) doRegionMerge(top *region.Class) (bool, error) {
	bLabel := top.PickBestRegionLabel(e.table)
	if bLabel == 0 {
		e.rh.Remove(top.Label)
		e.ctx.Correction("region %d had an empty best-region set, removed", top.Label)
		return true, nil
	}
	b := e.table.Get(bLabel)
	if b == nil || !b.Active {
		e.ctx.Correction("region %d best-region partner %d was stale, recomputing", top.Label, bLabel)
		e.recomputeRegionCandidate(top)
		return true, nil
	}

	threshold := top.BestRegionDissim
	a, absorbed := orderAbsorber(top, b)
	e.performMerge(a, absorbed, threshold, false)
	return true, nil
}

// doNeighborMerge performs the spatial-adjacency merge branch of spec
// section 4.H, including the last-stage large_nghbr_merged_flag early
// return.
func (e *Engine) doNeighborMerge(top *region.Class, lastStage bool) (bool, error) {
	bLabel := top.PickBestNeighborLabel(e.table)
	if bLabel == 0 {
		e.nh.Remove(top.Label)
		e.ctx.Correction("region %d had an empty best-neighbor set, removed", top.Label)
		return true, nil
	}
	b := e.table.Get(bLabel)
	if b == nil || !b.Active {
		e.ctx.Correction("region %d best-neighbor partner %d was stale, recomputing", top.Label, bLabel)
		top.RecomputeBestNeighbor(e.table, e.neighborDissim)
		top.NghbrHeapNpix = top.Npix
		e.nh.Update(top.Label)
		return true, nil
	}

	threshold := top.BestNghbrDissim
	a, absorbed := orderAbsorber(top, b)

	minN := uint32(e.p.MinNpixels)
	bothLarge := a.Npix >= minN && absorbed.Npix >= minN
	if lastStage && bothLarge && (a.LargeNghbrMergedFlag || absorbed.LargeNghbrMergedFlag) {
		return false, nil
	}

	e.performMerge(a, absorbed, threshold, lastStage)
	a.LargeNghbrMergedFlag = true
	return true, nil
}

// orderAbsorber applies spec section 4.H's ordering rule: the
// larger-npix-or-smaller-label region absorbs.
func orderAbsorber(a, b *region.Class) (absorber, absorbed *region.Class) {
	if b.Npix > a.Npix || (b.Npix == a.Npix && b.Label < a.Label) {
		return b, a
	}
	return a, b
}

// performMerge folds absorbed into a, updates max_threshold and nregions,
// and refreshes every heap bookkeeping the merge invalidated (spec section
// 4.H's "merge-set checkpoint").
func (e *Engine) performMerge(a, absorbed *region.Class, threshold float32, lastStage bool) {
	e.nh.Remove(a.Label)
	e.nh.Remove(absorbed.Label)
	e.rh.Remove(a.Label)
	e.rh.Remove(absorbed.Label)

	removedLabel := absorbed.Label
	a.MergeIn(e.table, absorbed, threshold, lastStage)

	e.maxThreshold = f32x.Max(e.maxThreshold, threshold)
	e.nregions--

	e.refreshNeighborHeap(a)
	e.refreshRegionHeap(a, removedLabel)
}

// refreshNeighborHeap recomputes best-neighbor for the absorber and every
// region that now neighbors it (spec section 4.H's update_nghbrs_set),
// reinserting or re-sifting each one.
func (e *Engine) refreshNeighborHeap(a *region.Class) {
	affected := make(map[uint32]struct{}, len(a.Nghbrs)+1)
	affected[a.Label] = struct{}{}
	for nb := range a.Nghbrs {
		affected[nb] = struct{}{}
	}
	for label := range affected {
		c := e.table.Get(label)
		if c == nil || !c.Active {
			continue
		}
		c.RecomputeBestNeighbor(e.table, e.neighborDissim)
		if c.NghbrHeapPos == region.NoHeapPos {
			e.nh.Insert(c.Label)
		} else {
			c.NghbrHeapNpix = c.Npix
			e.nh.Update(c.Label)
		}
	}
}

// refreshRegionHeap updates a's region-heap membership (it may have just
// crossed min_npixels, or dropped below it — never, since merges only grow
// npix, but the check stays symmetric with refreshNeighborHeap's shape) and
// recomputes best-region for every heap-eligible region that was tied to
// the label the merge just removed (spec section 4.H's update_regions_set /
// removed_regions_set).
func (e *Engine) refreshRegionHeap(a *region.Class, removedLabel uint32) {
	eligible := a.Npix >= uint32(e.p.MinNpixels)
	inHeap := a.RegionHeapPos != region.NoHeapPos

	switch {
	case eligible && !inHeap:
		e.insertRegionCandidate(a)
	case !eligible && inHeap:
		e.rh.Remove(a.Label)
	}

	var stale []uint32
	for _, label := range e.rh.Items() {
		if label == a.Label {
			continue
		}
		c := e.table.Get(label)
		if c == nil || !c.Active {
			continue
		}
		if c.IsBestRegion(removedLabel) {
			stale = append(stale, label)
		}
	}
	if eligible && a.RegionHeapPos != region.NoHeapPos {
		stale = append(stale, a.Label)
	}
	for _, label := range stale {
		if c := e.table.Get(label); c != nil && c.Active {
			e.recomputeRegionCandidate(c)
		}
	}

	// RecomputeBestRegion's symmetric update (region/merge.go) rewrites
	// BestRegionDissim on every candidate it compares against, not just the
	// one e.rh.Update was called for above — a candidate elsewhere in the
	// heap can end up keyed lower than its parent without ever being
	// sifted. Detect that drift here rather than trust the incremental
	// updates stayed consistent, and pay the O(n) Rebuild only when they
	// didn't (spec section 7 category 3).
	if !e.rh.Valid() {
		e.rh.Rebuild()
		e.ctx.Correction("region heap invariant drifted after merge, rebuilt")
	}
}

func (e *Engine) regionHeapCandidates(exclude uint32) []*region.Class {
	var out []*region.Class
	for _, label := range e.rh.Items() {
		if label == exclude {
			continue
		}
		if c := e.table.Get(label); c != nil && c.Active {
			out = append(out, c)
		}
	}
	return out
}

func (e *Engine) insertRegionCandidate(c *region.Class) {
	c.RecomputeBestRegion(e.table, e.regionHeapCandidates(c.Label), e.regionDissim)
	e.rh.Insert(c.Label)
}

func (e *Engine) recomputeRegionCandidate(c *region.Class) {
	c.RecomputeBestRegion(e.table, e.regionHeapCandidates(c.Label), e.regionDissim)
	e.rh.Update(c.Label)
}

// Valid reports whether both heaps currently satisfy the shape invariant of
// spec section 8 (used by tests).
func (e *Engine) Valid() bool {
	return e.nh.Valid() && e.rh.Valid()
}

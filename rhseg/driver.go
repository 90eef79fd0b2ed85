// Package rhseg implements the recursive driver and hierarchy emitter of
// spec sections 4.J and 4.K: the top-level orchestration that ties the
// pixel store, first-merge grower, merge engine, and seam engine together
// into a full HSWO/HSEG/RHSEG run.
//
// Grounded on the teacher's top-level recast.go (the package-level
// BuildSoloNavMesh/BuildTiledNavMesh functions that sequence
// heightfield-build -> region-build -> contour-build -> mesh-build): one
// exported entry point per run mode, a *rhctx.Context threaded through
// every stage, and early return on the first stage error.
package rhseg

import (
	"fmt"

	"github.com/arl/rhseg/config"
	"github.com/arl/rhseg/firstmerge"
	"github.com/arl/rhseg/internal/f32x"
	"github.com/arl/rhseg/merge"
	"github.com/arl/rhseg/pixel"
	"github.com/arl/rhseg/region"
	"github.com/arl/rhseg/rhctx"
	"github.com/arl/rhseg/seam"
)

// Driver runs one segmentation over a pixel store, per the configured
// ProgramMode. HSWO/HSEG both run a single-window merge to convergence
// (RnbLevels is 0 for them — the recursive split only engages for RHSEG,
// per spec section 4.L's "smallest depth at which sub-window pixel count
// fits MAX_NREGIONS"); RHSEG recurses per spec section 4.J.
type Driver struct {
	ctx   *rhctx.Context
	store *pixel.Store
	p     *config.Params
	hier  *Hierarchy
	seed  int64
}

// NewDriver returns a Driver that will write every triggered hierarchy
// snapshot into hier. seed seeds first-merge's candidate shuffle; pass a
// fixed constant for reproducible runs (p.RandomInitSeedFlag selects
// between the two at the caller's level, per spec section 4.G).
func NewDriver(ctx *rhctx.Context, store *pixel.Store, p *config.Params, hier *Hierarchy, seed int64) *Driver {
	return &Driver{ctx: ctx, store: store, p: p, hier: hier, seed: seed}
}

// Run drives the full segmentation and returns the final region table.
func (d *Driver) Run() (*region.Table, error) {
	if d.store.NumPixels() == 0 {
		return nil, ErrEmptyStore
	}

	root := pixel.WholeImage(d.store.Dims())
	table, maxThreshold, err := d.build(root, 0)
	if err != nil {
		return nil, fmt.Errorf("rhseg: build: %w", err)
	}

	d.ctx.StartTimer(rhctx.TimerRecursionLevel)
	defer d.ctx.StopTimer(rhctx.TimerRecursionLevel)

	eng := merge.NewEngine(d.ctx, table, d.p)
	eng.SeedMaxThreshold(maxThreshold)
	trig := merge.NewTriggers(d.p)

	if d.hier != nil && trig.Check(eng.NumRegions(), eng.MaxThreshold()) {
		d.hier.Emit(d.store, table, eng.NumRegions(), eng.MaxThreshold(), d.p.RecursionMask)
	}
	err = eng.RunStage(true, d.p.ConvNregions, func(nregions int, mt float32) {
		if d.hier != nil && trig.Check(nregions, mt) {
			d.hier.Emit(d.store, table, nregions, mt, d.p.RecursionMask)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("rhseg: root convergence: %w", err)
	}
	if d.hier != nil {
		if ferr := d.hier.Flush(); ferr != nil {
			d.ctx.Warningf("hierarchy flush failed: %v", ferr)
		}
	}
	d.ctx.Progressf("rhseg: converged to %d regions, max_threshold=%v", eng.NumRegions(), eng.MaxThreshold())
	return table, nil
}

// build processes window win at recursion level (spec section 4.J, "leaves
// first"): at the deepest configured level it runs first-merge and merges
// the window down to min_nregions in isolation; going up, it joins sibling
// windows into one table, rebuilds neighbor sets and runs the seam engine
// across the shared seam, then continues merging toward min_nregions
// again. It returns the window's table (in its own label namespace at leaf
// level, renumbered into a shared namespace at every join) and the running
// max_threshold.
func (d *Driver) build(win pixel.Window, level int) (*region.Table, float32, error) {
	if level >= len(d.p.RecursionMask) {
		return d.buildLeaf(win)
	}
	axes := splitAxes(d.p.RecursionMask[level])
	if len(axes) == 0 {
		return d.build(win, level+1)
	}
	// A mask entry may name more than one axis at once (the image is square
	// enough that two dimensions tie for largest) — split along each named
	// axis in turn, all children recursing at level+1, so a multi-axis
	// entry still consumes exactly one mask level.
	return d.buildSplit(win, level, axes)
}

// buildSplit splits win along axes[0], recurses into both halves (splitting
// them further along any remaining axes before descending to level+1), joins
// the results, and runs the seam engine across the axes[0] boundary.
func (d *Driver) buildSplit(win pixel.Window, level int, axes []int) (*region.Table, float32, error) {
	axis, rest := axes[0], axes[1:]
	lo, hi, splitIndex := win.Split(axis)

	loTable, loMax, err := d.buildHalf(lo, level, rest)
	if err != nil {
		return nil, 0, err
	}
	hiTable, hiMax, err := d.buildHalf(hi, level, rest)
	if err != nil {
		return nil, 0, err
	}

	parent := joinTables(d.store, d.p, []childWindow{{lo, loTable}, {hi, hiTable}})
	maxThreshold := f32x.Max(loMax, hiMax)

	pairs := seam.BuildPairs(d.store.Dims(), axis, splitIndex, d.p.SeamSize)
	if err := linkSeamNeighbors(d.store, parent, pairs); err != nil {
		return nil, 0, err
	}
	touched := seam.Contribute(d.store, parent, pairs)
	seam.Run(d.ctx, parent, d.p, touched)

	// joinTables relabels and relinks every active class from both halves at
	// once; confirm the bulk rewrite left every Nghbrs edge symmetric (spec
	// section 3 invariant 1) rather than trusting it silently, and repair in
	// place if it didn't.
	if !parent.CheckNeighbors() {
		parent.RepairNeighbors(d.ctx)
	}

	eng := merge.NewEngine(d.ctx, parent, d.p)
	eng.SeedMaxThreshold(maxThreshold)
	if err := eng.RunStage(false, d.p.MinNregions, nil); err != nil {
		return nil, 0, err
	}
	d.ctx.Progressf("rhseg: joined level %d (axis %d) into %d regions", level, axis, eng.NumRegions())
	return parent, eng.MaxThreshold(), nil
}

// buildHalf continues splitting a half-window along any remaining axes of
// the current mask entry before descending to the next recursion level.
func (d *Driver) buildHalf(win pixel.Window, level int, rest []int) (*region.Table, float32, error) {
	if len(rest) == 0 {
		return d.build(win, level+1)
	}
	return d.buildSplit(win, level, rest)
}

func (d *Driver) buildLeaf(win pixel.Window) (*region.Table, float32, error) {
	t := region.NewTable(d.p.Nbands, d.p.RegionSumSqFlag, d.p.RegionSumXLogXFlag, d.store.HasLocalStdDev())
	firstmerge.Grow(d.ctx, d.store, t, d.p, 0, windowSeed(d.seed, win), win)
	if err := region.LinkNeighbors(d.store, t, d.p.Conn, win); err != nil {
		return nil, 0, err
	}
	eng := merge.NewEngine(d.ctx, t, d.p)
	if err := eng.RunStage(false, d.p.MinNregions, nil); err != nil {
		return nil, 0, err
	}
	return t, eng.MaxThreshold(), nil
}

// splitAxes returns the axes (0=col, 1=row, 2=slice) a recursion-mask level
// splits, in a fixed order. A level can name more than one axis at once.
func splitAxes(split [3]bool) []int {
	var axes []int
	if split[0] {
		axes = append(axes, 0)
	}
	if split[1] {
		axes = append(axes, 1)
	}
	if split[2] {
		axes = append(axes, 2)
	}
	return axes
}

// windowSeed derives a deterministic, window-specific seed from the run's
// base seed so sibling leaf windows don't all shuffle identically, without
// ever reading the wall clock (spec section 5).
func windowSeed(base int64, win pixel.Window) int64 {
	h := base
	h = h*1000003 + int64(win.ColLo)
	h = h*1000003 + int64(win.RowLo)
	h = h*1000003 + int64(win.SliceLo)
	return h
}

// linkSeamNeighbors records a genuine spatial Nghbrs entry between every
// pair of distinct active regions straddling a join (spec section 4.J's
// "rebuild neighbor sets across the shared seam"), independent of the
// edge-gated seam_neighbor_map bookkeeping seam.Contribute performs.
func linkSeamNeighbors(store *pixel.Store, t *region.Table, pairs []seam.Pair) error {
	d := store.Dims()
	for _, pr := range pairs {
		if !store.Mask(pr.P) || !store.Mask(pr.Q) {
			continue
		}
		// Only the innermost pair of each seam line is spatially adjacent;
		// deeper band pairs sit 3, 5, ... pixels apart.
		pc, prow, ps := d.Coords(pr.P)
		qc, qrow, qs := d.Coords(pr.Q)
		if (qc-pc)+(qrow-prow)+(qs-ps) != 1 {
			continue
		}
		a, err := t.Resolve(store.RegionLabel(pr.P))
		if err != nil {
			continue
		}
		b, err := t.Resolve(store.RegionLabel(pr.Q))
		if err != nil {
			continue
		}
		if a.Label == b.Label {
			continue
		}
		a.Nghbrs[b.Label] = struct{}{}
		b.Nghbrs[a.Label] = struct{}{}
	}
	return nil
}

// Package firstmerge implements the seeded fast initial pass of spec
// section 4.G: a Muerlle-Allen-style region grower that folds unmasked
// pixels into zero-threshold (or low-threshold) regions before the merge
// engine ever runs, so the engine starts from a manageable number of
// regions instead of one per pixel.
package firstmerge

import (
	"math/rand"
	"sort"

	"github.com/arl/rhseg/config"
	"github.com/arl/rhseg/dissim"
	"github.com/arl/rhseg/internal/f32x"
	"github.com/arl/rhseg/pixel"
	"github.com/arl/rhseg/region"
	"github.com/arl/rhseg/rhctx"
)

// Grow runs first-merge region growing over every unmasked, unlabeled pixel
// in store, creating and populating classes in t. threshold is T0 (spec
// section 4.G), typically 0. seed selects the per-pixel candidate shuffle:
// callers pass a fixed constant when p.RandomInitSeedFlag is false and a
// caller-derived seed (e.g. from time) when true — Grow itself never reads
// the wall clock, keeping the engine free of hidden time-of-day state (spec
// section 5).
func Grow(ctx *rhctx.Context, store *pixel.Store, t *region.Table, p *config.Params, threshold float32, seed int64, win pixel.Window) {
	ctx.StartTimer(rhctx.TimerFirstMerge)
	defer ctx.StopTimer(rhctx.TimerFirstMerge)

	rng := rand.New(rand.NewSource(seed))
	n := store.NumPixels()
	assigned := make([]bool, n)

	var nbrBuf []int
	for start := 0; start < n; start++ {
		if assigned[start] || !store.Mask(start) || !win.Contains(store.Dims(), start) {
			continue
		}
		growOne(store, t, p, threshold, rng, start, win, assigned, &nbrBuf)
	}

	markInitialMergeFlags(t, p.InitialMergeNpix)
	ctx.Progressf("first-merge: %d regions from %d window pixels", t.NumActive(), win.Size())
}

// growOne grows a single region starting at seed pixel `start`, per the
// four-step algorithm of spec section 4.G.
func growOne(store *pixel.Store, t *region.Table, p *config.Params, threshold float32, rng *rand.Rand, start int, win pixel.Window, assigned []bool, nbrBuf *[]int) {
	c := t.Create()
	absorb(store, c, start)
	assigned[start] = true
	store.SetRegionLabel(start, c.Label)

	pending := pendingSet{}
	enqueueUnassigned(store, p, start, win, assigned, pending, nbrBuf)

	for {
		cand := pending.shuffled(rng)
		if len(cand) == 0 {
			return // no candidate meets threshold (or none remain): stop growing (spec section 4.G step 4).
		}
		for _, q := range cand {
			if assigned[q] {
				pending.remove(q)
				continue
			}
			d := pixelRegionDissimilarity(store, c, q, p)
			pending.remove(q)
			if d <= threshold {
				absorb(store, c, q)
				assigned[q] = true
				store.SetRegionLabel(q, c.Label)
				enqueueUnassigned(store, p, q, win, assigned, pending, nbrBuf)
			}
		}
	}
}

// pendingSet is the per-region candidate pixel set of spec section 4.G step
// 1's "neighbor-pixel set", collapsing into nothing once a region stops
// growing.
type pendingSet map[int]struct{}

func (s pendingSet) add(i int)    { s[i] = struct{}{} }
func (s pendingSet) remove(i int) { delete(s, i) }

// shuffled returns a randomized ordering of the pending pixels (spec
// section 4.G step 2). A fresh slice is produced each round since pending
// membership changes between rounds.
func (s pendingSet) shuffled(rng *rand.Rand) []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Ints(out) // map order varies run to run; shuffle from a fixed order
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func enqueueUnassigned(store *pixel.Store, p *config.Params, i int, win pixel.Window, assigned []bool, pending pendingSet, buf *[]int) {
	*buf = (*buf)[:0]
	*buf = store.NeighborsWithin(i, p.Conn, win, *buf)
	for _, nb := range *buf {
		if !assigned[nb] && store.Mask(nb) {
			pending.add(nb)
		}
	}
}

// absorb folds pixel i's per-band values (and, when present, local std-dev
// and edge value) into region c.
func absorb(store *pixel.Store, c *region.Class, i int) {
	for b := 0; b < len(c.Sum); b++ {
		v := store.Value(i, b)
		c.Sum[b] += v
		if c.SumSq != nil {
			c.SumSq[b] += v * v
		}
		if c.SumXLogX != nil && v > 0 {
			c.SumXLogX[b] += v * f32x.Log(v)
		}
		if c.SumLocalStdDev != nil && store.HasLocalStdDev() {
			c.SumLocalStdDev[b] += store.LocalStdDev(i, b)
		}
	}
	c.Npix++
	if store.HasEdge() && store.EdgeMask(i) {
		if ev := store.EdgeValue(i); ev > c.MaxEdgeValue {
			c.MaxEdgeValue = ev
		}
	}
}

// pixelRegionDissimilarity computes the edge-weighted (when applicable)
// pixel-to-region dissimilarity of spec section 4.G step 3.
func pixelRegionDissimilarity(store *pixel.Store, c *region.Class, i int, p *config.Params) float32 {
	values := make([]float32, len(c.Sum))
	for b := range values {
		values[b] = store.Value(i, b)
	}
	hasEdge := store.HasEdge() && p.EdgeThreshold > 0
	var edgeValue float32
	if hasEdge {
		edgeValue = store.EdgeValue(i)
	}
	pixStats := dissim.PixelStats(values, edgeValue, hasEdge)
	regStats := dissim.Stats{
		Npix:             c.Npix,
		Sum:              c.Sum,
		SumLocalStdDev:   c.SumLocalStdDev,
		MaxEdgeValue:     c.MaxEdgeValue,
		InitialMergeFlag: c.InitialMergeFlag,
		SeamFlag:         c.SeamFlag,
	}
	return dissim.Dissimilarity(pixStats, regStats, p, false)
}

// markInitialMergeFlags sets InitialMergeFlag on every region whose Npix
// reached initialMergeNpix after first-merge (spec section 4.G post-pass).
func markInitialMergeFlags(t *region.Table, initialMergeNpix int) {
	t.Active(func(c *region.Class) {
		if int(c.Npix) >= initialMergeNpix {
			c.InitialMergeFlag = true
		}
	})
}

package seam

import (
	"math"

	"github.com/arl/rhseg/config"
	"github.com/arl/rhseg/region"
	"github.com/arl/rhseg/rhctx"
)

// Contribute builds the seam index view over pairs and accumulates a
// RegionSeam contribution into both sides' seam_neighbor_map wherever the
// two pixels resolve to different active regions (spec section 4.I). It
// returns the set of region labels touched, the seed for Run.
func Contribute(store storeView, t *region.Table, pairs []Pair) map[uint32]struct{} {
	touched := map[uint32]struct{}{}
	for _, pr := range pairs {
		if !store.Mask(pr.P) || !store.Mask(pr.Q) {
			continue
		}
		lp, err := t.Resolve(store.RegionLabel(pr.P))
		if err != nil {
			continue
		}
		lq, err := t.Resolve(store.RegionLabel(pr.Q))
		if err != nil {
			continue
		}
		if lp.Label == lq.Label {
			continue
		}

		var edgeVal float32
		if store.HasEdge() {
			var sum float32
			var n int
			if store.EdgeMask(pr.P) {
				sum += store.EdgeValue(pr.P)
				n++
			}
			if store.EdgeMask(pr.Q) {
				sum += store.EdgeValue(pr.Q)
				n++
			}
			if n > 0 {
				edgeVal = sum / float32(n)
			}
		}

		lp.AddSeamContribution(lq.Label, edgeVal)
		lq.AddSeamContribution(lp.Label, edgeVal)
		lp.SeamFlag = true
		lq.SeamFlag = true
		touched[lp.Label] = struct{}{}
		touched[lq.Label] = struct{}{}
	}
	return touched
}

// storeView is the narrow slice of pixel.Store Contribute needs, declared
// locally so this package doesn't import pixel just for a handful of
// accessor methods already satisfied by *pixel.Store's method set.
type storeView interface {
	Mask(i int) bool
	RegionLabel(i int) uint32
	HasEdge() bool
	EdgeMask(i int) bool
	EdgeValue(i int) float32
}

// Run executes the gated seam-merge loop of spec section 4.I over the
// regions touched by a prior Contribute call: repeatedly find the touched
// region whose best seam partner has the lowest average accumulated edge
// value, and merge the pair as long as that value is at or below
// p.SeamEdgeThreshold. Unlike the main merge engine, the ordering key here
// is seam edge evidence, not spectral dissimilarity — low edge evidence
// across a seam means the window split one region in two; real image edges
// on the seam keep the pair apart.
func Run(ctx *rhctx.Context, t *region.Table, p *config.Params, touched map[uint32]struct{}) {
	ctx.StartTimer(rhctx.TimerSeamEngine)
	defer ctx.StopTimer(rhctx.TimerSeamEngine)

	active := map[uint32]struct{}{}
	for label := range touched {
		if c, err := t.Resolve(label); err == nil {
			active[c.Label] = struct{}{}
		}
	}

	merges := 0
	for {
		aLabel, bLabel, value, ok := pickBest(t, active)
		if !ok || value > p.SeamEdgeThreshold {
			break
		}
		a, b := t.Get(aLabel), t.Get(bLabel)
		absorber, absorbed := a, b
		if b.Npix > a.Npix || (b.Npix == a.Npix && b.Label < a.Label) {
			absorber, absorbed = b, a
		}
		mergeSeam(t, absorber, absorbed, value)
		delete(active, absorbed.Label)
		active[absorber.Label] = struct{}{}
		merges++
	}
	ctx.Progressf("seam engine: %d merges across %d touched regions", merges, len(touched))
}

// pickBest scans every active touched region's seam_neighbor_map for the
// globally smallest average edge value, breaking ties toward the smaller
// region label (spec section 4.I's heap-ordering analogue).
func pickBest(t *region.Table, active map[uint32]struct{}) (a, b uint32, value float32, ok bool) {
	value = float32(math.Inf(1))
	for label := range active {
		c := t.Get(label)
		if c == nil || !c.Active {
			continue
		}
		for partner, s := range c.SeamNeighborMap {
			o := t.Get(partner)
			if o == nil || !o.Active || o.Label == c.Label || s.PixCount == 0 {
				continue
			}
			avg := s.SumEdge / float32(s.PixCount)
			if !ok || avg < value || (avg == value && label < a) {
				value, a, b, ok = avg, label, partner, true
			}
		}
	}
	return
}

// mergeSeam folds absorbed's seam_neighbor_map into absorber's (union,
// relinking any third region's entry pointing at absorbed), then performs
// the ordinary region-class merge so the seam graph and the main region
// graph stay mutually consistent.
func mergeSeam(t *region.Table, absorber, absorbed *region.Class, threshold float32) {
	if absorbed.SeamNeighborMap != nil {
		if absorber.SeamNeighborMap == nil {
			absorber.SeamNeighborMap = map[uint32]*region.Seam{}
		}
		for label, s := range absorbed.SeamNeighborMap {
			if label == absorber.Label {
				continue
			}
			if existing, ok := absorber.SeamNeighborMap[label]; ok {
				existing.Add(*s)
			} else {
				cp := *s
				absorber.SeamNeighborMap[label] = &cp
			}
		}
	}
	delete(absorber.SeamNeighborMap, absorbed.Label)

	for label := range absorbed.SeamNeighborMap {
		if label == absorber.Label {
			continue
		}
		other := t.Get(label)
		if other == nil || !other.Active || other.SeamNeighborMap == nil {
			continue
		}
		if s, ok := other.SeamNeighborMap[absorbed.Label]; ok {
			delete(other.SeamNeighborMap, absorbed.Label)
			if existing, ok2 := other.SeamNeighborMap[absorber.Label]; ok2 {
				existing.Add(*s)
			} else {
				other.SeamNeighborMap[absorber.Label] = s
			}
		}
	}

	absorber.MergeIn(t, absorbed, threshold, false)
}

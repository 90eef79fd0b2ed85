// Package dissim implements the ten-criterion dissimilarity kernel of spec
// section 4.D: base per-band criteria, optional standard-deviation
// augmentation, edge-image modulation, and small-region acceleration.
//
// The kernel is a pure function of two Stats snapshots and an explicit
// Params bundle (spec section 9 design note: no global params — the
// teacher's recast analog is a dissimilarity-free geometry library, so this
// package's shape is new, but it keeps the same "explicit parameter struct,
// no method receiver on shared state" discipline recast.Config/BuildSettings
// follow).
package dissim

import (
	"math"

	"github.com/arl/rhseg/config"
	"github.com/arl/rhseg/internal/f32x"
)

// Stats is the minimal region snapshot the kernel needs: per-band sums
// (from which it derives means), npix, max edge value, and the two flags
// that gate edge modulation's "initial merge interior" special case.
type Stats struct {
	Npix             uint32
	Sum              []float32
	SumLocalStdDev   []float32 // nil if std-dev augmentation disabled
	MaxEdgeValue     float32
	InitialMergeFlag bool
	SeamFlag         bool
}

func (s Stats) mean(b int) float32 {
	if s.Npix == 0 {
		return 0
	}
	return s.Sum[b] / float32(s.Npix)
}

func (s Stats) stdDevMean(b int) float32 {
	if s.Npix == 0 || s.SumLocalStdDev == nil {
		return 0
	}
	return s.SumLocalStdDev[b] / float32(s.Npix)
}

// Dissimilarity computes d(a, b) per spec section 4.D: the selected base
// criterion, optional std-dev augmentation, edge modulation, and merge-accel
// acceleration (accel only applies when accel is true — callers pass true
// only from the neighbor-heap path, per spec section 4.D).
func Dissimilarity(a, b Stats, p *config.Params, accel bool) float32 {
	result := baseCriterion(a, b, p.DissimCrit, p)

	if p.StdDevImage && p.DissimCrit != 5 && p.DissimCrit != 9 && a.SumLocalStdDev != nil && b.SumLocalStdDev != nil {
		sdResult := baseCriterionStdDev(a, b, p.DissimCrit, p)
		result += p.StdDevWght * sdResult
	}

	bothInitialInterior := a.InitialMergeFlag && b.InitialMergeFlag && !a.SeamFlag && !b.SeamFlag
	if bothInitialInterior {
		if p.SpclustWght > 0 {
			result /= p.SpclustWght
		}
	} else if p.EdgeWght > 0 {
		result *= edgeFactor(a, b, p)
	}

	if p.MergeAccelFlag && accel && p.MinNpixels > 0 {
		result *= accelFactor(a.Npix, b.Npix, p.MinNpixels)
	}

	if f32x.IsDegenerate(result) {
		return float32(math.Inf(1))
	}
	return f32x.SnapSmall(result)
}

// edgeFactor implements the edge-modulation formula of spec section 4.D.
func edgeFactor(a, b Stats, p *config.Params) float32 {
	e := f32x.Max(a.MaxEdgeValue, b.MaxEdgeValue)
	if e < 0 {
		if p.EdgeDissimOption == config.EdgeMergeEnhance {
			e = p.MaxEdge
		} else {
			e = p.MinEdge
		}
	}
	denom := p.MaxEdge - p.MinEdge
	var ratio float32
	if denom != 0 {
		ratio = (e - p.MinEdge) / denom
	}
	f := powf(ratio, p.EdgePower)
	f = (1 - p.EdgeWght) + p.EdgeWght*f
	if p.EdgeDissimOption == config.EdgeMergeSuppress && p.SpclustWght > 0 {
		f = (p.SpclustWght + (1-p.SpclustWght)*f) / p.SpclustWght
	}
	return f
}

// accelFactor implements the small-region acceleration of spec section 4.D:
// when either region is smaller than min_npixels, scale the result down so
// small regions merge more readily in the neighbor-heap pass.
func accelFactor(npix1, npix2 uint32, minNpixels int) float32 {
	n1p := minUint32(npix1, uint32(minNpixels))
	n2p := minUint32(npix2, uint32(minNpixels))
	if n1p == uint32(minNpixels) && n2p == uint32(minNpixels) {
		return 1 // neither region is small; acceleration is a no-op
	}
	m := maxUint32(n1p, n2p)
	num := 2 * float32(n1p) * float32(n2p)
	den := float32(m) * float32(n1p+n2p)
	if den == 0 {
		return 1
	}
	return f32x.Sqrt(num / den)
}

func minUint32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func maxUint32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// powf is float32 exponentiation computed as exp(exp*log(base)); both the
// log (f32x.Log) and the exp (math.Exp) are evaluated in float64 and rounded
// back to float32.
func powf(base, exp float32) float32 {
	if base <= 0 {
		return 0
	}
	return expf(exp * f32x.Log(base))
}

func expf(v float32) float32 {
	return float32(math.Exp(float64(v)))
}

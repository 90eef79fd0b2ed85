package dissim

import (
	"math"

	"github.com/arl/rhseg/config"
	"github.com/arl/rhseg/internal/f32x"
)

// baseCriterion evaluates the per-band contribution table of spec section
// 4.D for the selected criterion, using region means.
func baseCriterion(a, b Stats, crit int, p *config.Params) float32 {
	return evalCriterion(a, b, crit, p, func(s Stats, band int) float32 { return s.mean(band) })
}

// baseCriterionStdDev evaluates the same table using per-band std-devs in
// place of means, for the optional augmentation term (spec section 4.D;
// criteria 5 and 9 never reach this — Dissimilarity guards the call).
func baseCriterionStdDev(a, b Stats, crit int, p *config.Params) float32 {
	return evalCriterion(a, b, crit, p, func(s Stats, band int) float32 { return s.stdDevMean(band) })
}

// evalCriterion is shared machinery between the mean-based and
// std-dev-based evaluations: both use the identical per-criterion formula,
// differing only in which per-band scalar feeds it.
func evalCriterion(a, b Stats, crit int, p *config.Params, value func(Stats, int) float32) float32 {
	n := len(a.Sum)
	n1, n2 := float32(a.Npix), float32(b.Npix)

	switch crit {
	case 1: // 1-norm
		var sum float32
		for i := 0; i < n; i++ {
			sum += f32x.Abs(value(a, i) - value(b, i))
		}
		return sum

	case 2: // 2-norm
		var sum float32
		for i := 0; i < n; i++ {
			d := value(a, i) - value(b, i)
			sum += d * d
		}
		return f32x.Sqrt(sum)

	case 3: // infinity-norm
		var m float32
		for i := 0; i < n; i++ {
			d := f32x.Abs(value(a, i) - value(b, i))
			if d > m {
				m = d
			}
		}
		return m

	case 4: // SAM
		return sam(a, b, value)

	case 5: // SID
		return sid(a, b)

	case 6: // band-sum MSE
		var sum float32
		for i := 0; i < n; i++ {
			d := value(a, i) - value(b, i)
			sum += d * d
		}
		return mseTail(sum, n1, n2)

	case 7: // band-max MSE
		var m float32
		for i := 0; i < n; i++ {
			d := value(a, i) - value(b, i)
			sq := d * d
			if sq > m {
				m = sq
			}
		}
		return mseTail(m, n1, n2)

	case 8: // normalized vector distance
		s := sam(a, b, value)
		ratio := f32x.Min(n1/n2, n2/n1)
		return 1 - ratio*(1-s/halfPi)

	case 9: // entropy
		return entropy(a, b, p)

	case 10: // SAR speckle
		var sum float32
		for i := 0; i < n; i++ {
			m1, m2 := value(a, i), value(b, i)
			denom := n1*m1 + n2*m2
			if denom != 0 {
				sum += f32x.Abs(m1-m2) / denom
			}
		}
		return sum * f32x.Sqrt(n1*n2*(n1+n2))

	default:
		return float32(math.Inf(1))
	}
}

const halfPi = 1.5707963267948966

// sam computes the spectral angle (criterion 4's core, reused unmodified by
// criterion 8): acos(dot / sqrt(||a||^2 * ||b||^2)).
func sam(a, b Stats, value func(Stats, int) float32) float32 {
	n := len(a.Sum)
	var dot, na, nb float32
	for i := 0; i < n; i++ {
		va, vb := value(a, i), value(b, i)
		dot += va * vb
		na += va * va
		nb += vb * vb
	}
	denom := f32x.Sqrt(na * nb)
	if denom == 0 {
		return 0
	}
	return f32x.Acos(dot / denom)
}

// sid computes the symmetric Kullback-Leibler "spectral information
// divergence" of spec section 4.D criterion 5: per-band probability
// vectors m/norm, summed symmetric KL.
func sid(a, b Stats) float32 {
	n := len(a.Sum)
	var norm1, norm2 float32
	for i := 0; i < n; i++ {
		norm1 += a.mean(i)
		norm2 += b.mean(i)
	}
	if norm1 == 0 || norm2 == 0 {
		return 0
	}
	var sum float32
	for i := 0; i < n; i++ {
		p1 := a.mean(i) / norm1
		p2 := b.mean(i) / norm2
		if p1 <= 0 || p2 <= 0 {
			continue
		}
		sum += p1*f32x.Log(p1/p2) + p2*f32x.Log(p2/p1)
	}
	return sum
}

// mseTail applies the n1*n2/(n1+n2) scaling and (build-policy) sqrt tail
// shared by criteria 6 and 7.
func mseTail(sum, n1, n2 float32) float32 {
	denom := n1 + n2
	if denom == 0 {
		return 0
	}
	v := sum * n1 * n2 / denom
	if MSESqrtPolicy {
		return f32x.Sqrt(v)
	}
	return v
}

// MSESqrtPolicy mirrors the source's compile-time MSE_SQRT build policy
// (spec section 4.D, criteria 6/7): when true, the MSE tail is square
// rooted. Exposed as a package variable (not a config.Params field) because
// it is a build-wide numerical-convention choice, the same footing the
// source gives it, not a per-run tuning knob.
var MSESqrtPolicy = false

// entropy implements criterion 9 of spec section 4.D: a symmetrized
// per-band entropy difference, divided by the dataset-wide per-band mean
// (p.BandMean) when p.NormInd selects no normalization — mirroring
// region_class.cc's calc_region_dissim, which divides by the region's
// meanval[band] (itself just a copy of oparams.meanval[band], the global
// per-band mean) exactly when params.normind == 1 ("No Normalization").
func entropy(a, b Stats, p *config.Params) float32 {
	n := len(a.Sum)
	var sum float32
	for i := 0; i < n; i++ {
		s1, s2 := a.Sum[i], b.Sum[i]
		if s1 <= 0 || s2 <= 0 {
			continue
		}
		n1, n2 := float32(a.Npix), float32(b.Npix)
		combined := s1 + s2
		m1, m2 := a.mean(i), b.mean(i)
		e := s1*f32x.Log(m1) + s2*f32x.Log(m2) - combined*f32x.Log(combined/(n1+n2))
		if p.NormInd == config.NormNone && i < len(p.BandMean) && p.BandMean[i] != 0 {
			e /= p.BandMean[i]
		}
		sum += e
	}
	return sum
}

package dissim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arl/rhseg/config"
)

func baseParams() *config.Params {
	return &config.Params{
		DissimCrit:  1,
		MinNpixels:  9,
		SpclustWght: 0.5,
	}
}

func TestDissimilarityZeroForIdenticalStats(t *testing.T) {
	p := baseParams()
	a := Stats{Npix: 10, Sum: []float32{10, 20}}
	b := Stats{Npix: 10, Sum: []float32{10, 20}}
	got := Dissimilarity(a, b, p, false)
	assert.InDelta(t, 0, got, 1e-5)
}

func TestDissimilaritySymmetric(t *testing.T) {
	p := baseParams()
	a := Stats{Npix: 4, Sum: []float32{4, 8}}
	b := Stats{Npix: 6, Sum: []float32{12, 6}}
	require.Equal(t, Dissimilarity(a, b, p, false), Dissimilarity(b, a, p, false))
}

func TestDissimilarityPositiveForDistinctStats(t *testing.T) {
	p := baseParams()
	a := Stats{Npix: 4, Sum: []float32{0, 0}}
	b := Stats{Npix: 4, Sum: []float32{40, 40}}
	got := Dissimilarity(a, b, p, false)
	assert.Greater(t, got, float32(0))
}

func TestAccelFactorNoopWhenBothAtOrAboveMin(t *testing.T) {
	got := accelFactor(9, 20, 9)
	assert.Equal(t, float32(1), got)
}

func TestAccelFactorShrinksForSmallRegions(t *testing.T) {
	got := accelFactor(2, 9, 9)
	assert.Less(t, got, float32(1))
	assert.Greater(t, got, float32(0))
}

func TestEntropyCriterionDividesByGlobalBandMeanWhenNormNone(t *testing.T) {
	p := &config.Params{DissimCrit: 9, NormInd: config.NormNone, BandMean: []float32{4}}
	a := Stats{Npix: 2, Sum: []float32{4}}
	b := Stats{Npix: 2, Sum: []float32{8}}

	got := entropy(a, b, p)

	p2 := &config.Params{DissimCrit: 9, NormInd: config.NormNone, BandMean: []float32{1}}
	gotScaledMean := entropy(a, b, p2)

	// Dividing by a larger global band mean must shrink the result.
	assert.Less(t, got, gotScaledMean)
}

func TestEntropyCriterionSkipsGlobalMeanNormalizationForPerBand(t *testing.T) {
	pNone := &config.Params{DissimCrit: 9, NormInd: config.NormPerBand, BandMean: []float32{4}}
	pOther := &config.Params{DissimCrit: 9, NormInd: config.NormPerBand, BandMean: []float32{1}}
	a := Stats{Npix: 2, Sum: []float32{4}}
	b := Stats{Npix: 2, Sum: []float32{8}}

	// BandMean must be ignored entirely once normalization isn't NormNone.
	assert.Equal(t, entropy(a, b, pNone), entropy(a, b, pOther))
}

func TestDissimilarityZeroEdgeRangeIsNotNaN(t *testing.T) {
	p := baseParams()
	p.EdgeWght = 1
	p.MaxEdge, p.MinEdge = 0, 0 // denom == 0 path; still must not return NaN
	a := Stats{Npix: 1, Sum: []float32{1}, MaxEdgeValue: 1}
	b := Stats{Npix: 1, Sum: []float32{2}, MaxEdgeValue: 1}
	got := Dissimilarity(a, b, p, false)
	assert.False(t, math.IsNaN(float64(got)))
}

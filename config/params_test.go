package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsRejectsBadConnType(t *testing.T) {
	_, err := Defaults(Params{Conn: ConnType(99)})
	assert.ErrorIs(t, err, ErrBadConnType)
}

func TestDefaultsDerivesMaxNbDirAndDimensions(t *testing.T) {
	p, err := Defaults(Params{Conn: Conn8, Ncols: 10, Nrows: 10, Nslices: 1})
	require.NoError(t, err)
	assert.Equal(t, 8, p.MaxNbDir)
	assert.Equal(t, 2, p.NbDimensions)
	assert.Equal(t, 4, p.SeamSize)
}

func TestDefaultsFillsMinNpixelsDefault(t *testing.T) {
	p, err := Defaults(Params{Conn: Conn4, Ncols: 4})
	require.NoError(t, err)
	assert.Equal(t, defaultMinNpixels, p.MinNpixels)
}

func TestDefaultsRejectsMinNpixelsAboveSpclustMax(t *testing.T) {
	_, err := Defaults(Params{Conn: Conn4, Ncols: 4, MinNpixels: 100, SpclustMax: 10})
	assert.ErrorIs(t, err, ErrInconsistent)
}

func TestNeedsSumSqPerCriterion(t *testing.T) {
	assert.True(t, needsSumSq(2))
	assert.True(t, needsSumSq(8))
	assert.False(t, needsSumSq(1))
	assert.True(t, needsSumXLogX(9))
	assert.False(t, needsSumXLogX(1))
}

func TestDeriveRecursionLevelsNoneNeededWhenUnderBudget(t *testing.T) {
	level, mask := deriveRecursionLevels(10, 10, 1, 1000)
	assert.Equal(t, 0, level)
	assert.Empty(t, mask)
}

func TestDeriveRecursionLevelsSplitsLargestDimension(t *testing.T) {
	level, mask := deriveRecursionLevels(100, 10, 1, 50)
	require.Greater(t, level, 0)
	// col count (100) dwarfs rows (10), so the first four levels split only
	// cols (100 -> 50 -> 25 -> 13 -> 7); once cols drop below rows the fifth
	// level splits rows (10 -> 5), and 7x5 fits the budget of 50.
	require.Equal(t, 5, level)
	for _, split := range mask[:4] {
		assert.True(t, split[0])
		assert.False(t, split[1])
		assert.False(t, split[2])
	}
	assert.Equal(t, [3]bool{false, true, false}, mask[4])
}

func TestDeriveRecursionLevelsSplitsTiedDimensionsTogether(t *testing.T) {
	_, mask := deriveRecursionLevels(100, 100, 1, 50)
	require.NotEmpty(t, mask)
	assert.True(t, mask[0][0])
	assert.True(t, mask[0][1])
	assert.False(t, mask[0][2])
}

func TestDeriveRecursionLevelsConvergesEventually(t *testing.T) {
	cols, rows, _ := 100, 100, 1
	level, mask := deriveRecursionLevels(cols, rows, 1, 50)
	// Replaying the mask by halving should end at or under budget.
	c, r := cols, rows
	for _, split := range mask {
		if split[0] {
			c = (c + 1) / 2
		}
		if split[1] {
			r = (r + 1) / 2
		}
	}
	assert.LessOrEqual(t, c*r, 50)
	assert.Greater(t, level, 0)
}

func TestDeriveIOLevelsHalvesUntilUnderBudget(t *testing.T) {
	level := deriveIOLevels(1000, 100)
	assert.Greater(t, level, 0)
	remaining := 1000
	for i := 0; i < level; i++ {
		remaining = (remaining + 1) / 2
	}
	assert.LessOrEqual(t, remaining, 100)
}

func TestValidateRejectsOutOfRangeCriterion(t *testing.T) {
	p := &Params{DissimCrit: 0, SpclustWght: 0.5, MinNregions: 2, ConvNregions: 1, Ncols: 1, Nbands: 1}
	assert.ErrorIs(t, p.Validate(false), ErrBadCriterion)
}

func TestValidateRequiresEdgeImageForRHSEGWithEdgeWeight(t *testing.T) {
	p := &Params{
		ProgramMode: RHSEG, DissimCrit: 1, EdgeWght: 1, SpclustWght: 0.5,
		MinNregions: 2, ConvNregions: 1, Ncols: 1, Nbands: 1,
	}
	assert.ErrorIs(t, p.Validate(false), ErrMissingEdge)
	assert.NoError(t, p.Validate(true))
}

func TestValidateRejectsConvNregionsAboveMinNregions(t *testing.T) {
	p := &Params{DissimCrit: 1, SpclustWght: 0.5, MinNregions: 5, ConvNregions: 10, Ncols: 1, Nbands: 1}
	assert.ErrorIs(t, p.Validate(false), ErrInconsistent)
}

func TestValidateRequiresBandMeanForEntropyCriterionWithNoNormalization(t *testing.T) {
	p := &Params{
		DissimCrit: 9, NormInd: NormNone, SpclustWght: 0.5,
		MinNregions: 2, ConvNregions: 1, Ncols: 1, Nbands: 2,
	}
	assert.ErrorIs(t, p.Validate(false), ErrInconsistent)

	p.BandMean = []float32{1, 2}
	assert.NoError(t, p.Validate(false))
}

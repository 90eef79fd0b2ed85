package seam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arl/rhseg/pixel"
)

func TestBuildPairsColAxis(t *testing.T) {
	d := pixel.Dims{Cols: 4, Rows: 2}
	pairs := BuildPairs(d, 0, 2, 2) // seamSize 2 -> depth 1, same as the immediate boundary line
	assert.Len(t, pairs, 2)         // one pair per row
	for _, pr := range pairs {
		pc, _, _ := d.Coords(pr.P)
		qc, _, _ := d.Coords(pr.Q)
		assert.Equal(t, 1, pc)
		assert.Equal(t, 2, qc)
	}
}

func TestBuildPairsRowAxis(t *testing.T) {
	d := pixel.Dims{Cols: 3, Rows: 4}
	pairs := BuildPairs(d, 1, 2, 2)
	assert.Len(t, pairs, 3) // one pair per column
}

func TestBuildPairsRejectsBoundarySplit(t *testing.T) {
	d := pixel.Dims{Cols: 4, Rows: 1}
	assert.Nil(t, BuildPairs(d, 0, 0, 2))
	assert.Nil(t, BuildPairs(d, 0, 4, 2))
}

func TestBuildPairs3DSliceAxis(t *testing.T) {
	d := pixel.Dims{Cols: 2, Rows: 2, Slices: 4}
	pairs := BuildPairs(d, 2, 2, 2)
	assert.Len(t, pairs, 4) // one pair per (col,row) combination
}

func TestBuildPairsWidensWithSeamSize(t *testing.T) {
	d := pixel.Dims{Cols: 4, Rows: 2}
	pairs := BuildPairs(d, 0, 2, 4) // seamSize 4 -> depth 2, band reaches cols 0..3
	assert.Len(t, pairs, 4)         // 2 depths * 2 rows

	var gotDepth0, gotDepth1 int
	for _, pr := range pairs {
		pc, _, _ := d.Coords(pr.P)
		qc, _, _ := d.Coords(pr.Q)
		switch {
		case pc == 1 && qc == 2:
			gotDepth0++
		case pc == 0 && qc == 3:
			gotDepth1++
		default:
			t.Fatalf("unexpected pair P col=%d Q col=%d", pc, qc)
		}
	}
	assert.Equal(t, 2, gotDepth0)
	assert.Equal(t, 2, gotDepth1)
}

func TestBuildPairsClipsBandAtImageBoundary(t *testing.T) {
	d := pixel.Dims{Cols: 2, Rows: 1}
	// seamSize 4 -> depth 2, but depth 1 (lo=-1) falls outside the image.
	pairs := BuildPairs(d, 0, 1, 4)
	require.Len(t, pairs, 1)
	pc, _, _ := d.Coords(pairs[0].P)
	qc, _, _ := d.Coords(pairs[0].Q)
	assert.Equal(t, 0, pc)
	assert.Equal(t, 1, qc)
}

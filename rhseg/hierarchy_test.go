package rhseg

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arl/rhseg/pixel"
)

func TestHierarchyRoundTripsThroughGob(t *testing.T) {
	var buf bytes.Buffer
	h := NewHierarchy(&buf)

	snap := Snapshot{
		Dims:          pixel.Dims{Cols: 2, Rows: 2},
		Labels:        []uint32{1, 1, 2, 2},
		Regions:       []RegionStats{{Label: 1, Npix: 2}, {Label: 2, Npix: 2}},
		NumRegions:    2,
		MaxThreshold:  1.5,
		RecursionMask: [][3]bool{{true, false, false}},
	}
	require.NoError(t, h.WriteSnapshot(snap))
	require.NoError(t, h.Flush())
	assert.Equal(t, 1, h.Count())

	got, err := ReadHierarchy(&buf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, snap.Dims, got[0].Dims)
	assert.Equal(t, snap.Labels, got[0].Labels)
	assert.Equal(t, snap.NumRegions, got[0].NumRegions)
	assert.Equal(t, snap.MaxThreshold, got[0].MaxThreshold)
	assert.Equal(t, snap.RecursionMask, got[0].RecursionMask)
}

func TestHierarchyAppendsMultipleSnapshotsInOrder(t *testing.T) {
	var buf bytes.Buffer
	h := NewHierarchy(&buf)

	for n := 5; n >= 1; n-- {
		require.NoError(t, h.WriteSnapshot(Snapshot{NumRegions: n}))
	}
	require.NoError(t, h.Flush())

	got, err := ReadHierarchy(&buf)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, s := range got {
		assert.Equal(t, 5-i, s.NumRegions)
	}
}

func TestNilHierarchyEmitIsNoop(t *testing.T) {
	var h *Hierarchy
	assert.NotPanics(t, func() { h.Emit(nil, nil, 0, 0, nil) })
	assert.Equal(t, 0, h.Count())
	assert.NoError(t, h.Flush())
}

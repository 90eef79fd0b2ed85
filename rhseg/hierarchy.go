package rhseg

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/arl/rhseg/pixel"
	"github.com/arl/rhseg/region"
)

// RegionStats is one region's per-snapshot statistics (spec section 4.K):
// everything a downstream consumer needs to reconstruct the region table at
// the moment of emission, without needing the live heaps or dissimilarity
// kernel.
type RegionStats struct {
	Label  uint32
	Npix   uint32
	Sum    []float32
	SumSq  []float32 // nil when the run didn't track it
	SumXLogX []float32
	SumLocalStdDev []float32
	MaxEdgeValue float32
	MergeThreshold float32
	Nghbrs       []uint32
	RegionObjects []uint32
	NbRegionObjects int
	BoundaryNpix    uint32
}

// Snapshot is one emitted hierarchy level: the full pixel-to-label map at
// the moment of emission, per-region statistics, and the scalar summary
// (spec section 4.K). Snapshots are independent — Labels is a fresh copy,
// never a diff against a prior snapshot.
type Snapshot struct {
	Dims         pixel.Dims
	Labels       []uint32
	Regions      []RegionStats
	NumRegions   int
	MaxThreshold float32

	// RecursionMask records, per recursion level, which axes the driver
	// split to reach this run's window layout (spec section 4.L/4.J),
	// carried alongside each snapshot so "rhseg inspect" can report it
	// without needing the original params file.
	RecursionMask [][3]bool
}

func snapshotOf(store *pixel.Store, t *region.Table, nregions int, maxThreshold float32, recursionMask [][3]bool) Snapshot {
	labels := make([]uint32, store.NumPixels())
	for i := range labels {
		if store.Mask(i) {
			if c, err := t.Resolve(store.RegionLabel(i)); err == nil {
				labels[i] = c.Label
			}
		}
	}

	var regions []RegionStats
	t.Active(func(c *region.Class) {
		regions = append(regions, RegionStats{
			Label:           c.Label,
			Npix:            c.Npix,
			Sum:             append([]float32(nil), c.Sum...),
			SumSq:           append([]float32(nil), c.SumSq...),
			SumXLogX:        append([]float32(nil), c.SumXLogX...),
			SumLocalStdDev:  append([]float32(nil), c.SumLocalStdDev...),
			MaxEdgeValue:    c.MaxEdgeValue,
			MergeThreshold:  c.MergeThreshold,
			Nghbrs:          labelSet(c.Nghbrs),
			RegionObjects:   labelSet(c.RegionObjectsSet),
			NbRegionObjects: c.NbRegionObjects,
			BoundaryNpix:    c.BoundaryNpix,
		})
	})

	return Snapshot{
		Dims:          store.Dims(),
		Labels:        labels,
		Regions:       regions,
		NumRegions:    nregions,
		MaxThreshold:  maxThreshold,
		RecursionMask: recursionMask,
	}
}

func labelSet(m map[uint32]struct{}) []uint32 {
	if len(m) == 0 {
		return nil
	}
	out := make([]uint32, 0, len(m))
	for l := range m {
		out = append(out, l)
	}
	return out
}

// Hierarchy is the append-only snapshot log of spec section 4.K, written
// through a gob.Encoder over the supplied writer. Grounded on the output
// sink contract of spec section 6 ("must be able to serialize pixel-label
// maps... losslessly round-trippable by its own reader") — gob is the
// stdlib choice here since no pack dependency (protobuf, msgpack, etc.)
// is otherwise motivated for this module, and gob's self-describing
// streaming encoder is exactly the "append one record, never rewrite a
// prior one" shape this log needs.
type Hierarchy struct {
	w   *bufio.Writer
	enc *gob.Encoder
	n   int
}

// NewHierarchy wraps w as an append-only snapshot log.
func NewHierarchy(w io.Writer) *Hierarchy {
	bw := bufio.NewWriter(w)
	return &Hierarchy{w: bw, enc: gob.NewEncoder(bw)}
}

// Emit builds a Snapshot from the current store/table state and appends it
// to the log. It neither returns nor logs an encode error: a failed write
// drops that one snapshot (Count does not include it) and the driver keeps
// merging.
func (h *Hierarchy) Emit(store *pixel.Store, t *region.Table, nregions int, maxThreshold float32, recursionMask [][3]bool) {
	if h == nil {
		return
	}
	snap := snapshotOf(store, t, nregions, maxThreshold, recursionMask)
	if err := h.enc.Encode(&snap); err != nil {
		return
	}
	h.n++
}

// WriteSnapshot appends an already-built Snapshot, for callers (e.g. the
// sink package's Writer adapter) that assembled one outside Emit's usual
// live-engine-state path.
func (h *Hierarchy) WriteSnapshot(snap Snapshot) error {
	if h == nil {
		return fmt.Errorf("rhseg: nil Hierarchy")
	}
	if err := h.enc.Encode(&snap); err != nil {
		return fmt.Errorf("rhseg: encode snapshot: %w", err)
	}
	h.n++
	return nil
}

// Flush pushes any buffered snapshot bytes to the underlying writer. Callers
// must call it once after the run completes (and after each Emit if the
// writer is itself unbuffered and snapshots must survive a crash mid-run).
func (h *Hierarchy) Flush() error {
	if h == nil {
		return nil
	}
	return h.w.Flush()
}

// Count returns the number of snapshots emitted so far.
func (h *Hierarchy) Count() int {
	if h == nil {
		return 0
	}
	return h.n
}

// ReadHierarchy decodes every snapshot appended by a Hierarchy, in order —
// the "own reader" half of the append-only log contract.
func ReadHierarchy(r io.Reader) ([]Snapshot, error) {
	dec := gob.NewDecoder(r)
	var out []Snapshot
	for {
		var s Snapshot
		err := dec.Decode(&s)
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, fmt.Errorf("rhseg: decode snapshot %d: %w", len(out), err)
		}
		out = append(out, s)
	}
	return out, nil
}

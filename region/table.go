package region

import (
	"fmt"

	"github.com/arl/assertgo"

	"github.com/arl/rhseg/rhctx"
)

// Table is the flat, label-indexed set of region classes a segmentation run
// operates on. Labels are 1-based; Table stores them at index label-1, same
// as the teacher's recast region slice indexed by region ID.
type Table struct {
	classes     []*Class
	nbands      int
	sumSq       bool
	sumXLogX    bool
	localStdDev bool
}

// NewTable returns an empty table. sumSq/sumXLogX/localStdDev mirror
// config.Params.RegionSumSqFlag/RegionSumXLogXFlag and whether the pixel
// store carries a local-std-dev plane, and decide which optional
// accumulators every class in this table allocates.
func NewTable(nbands int, sumSq, sumXLogX, localStdDev bool) *Table {
	assert.True(nbands > 0, "region: table needs at least one band")
	return &Table{nbands: nbands, sumSq: sumSq, sumXLogX: sumXLogX, localStdDev: localStdDev}
}

// Create allocates and returns a fresh active Class with the next label.
func (t *Table) Create() *Class {
	label := uint32(len(t.classes) + 1)
	c := newClass(label, t.nbands, t.sumSq, t.sumXLogX, t.localStdDev)
	c.Active = true
	t.classes = append(t.classes, c)
	return c
}

// Get returns the Class for label, or nil if label was never created.
func (t *Table) Get(label uint32) *Class {
	if label == 0 || int(label) > len(t.classes) {
		return nil
	}
	return t.classes[label-1]
}

// Len returns the total number of labels ever created (active + inactive).
func (t *Table) Len() int { return len(t.classes) }

// NumActive returns the count of currently-active classes.
func (t *Table) NumActive() int {
	n := 0
	for _, c := range t.classes {
		if c.Active {
			n++
		}
	}
	return n
}

// Active calls fn for every currently-active class.
func (t *Table) Active(fn func(*Class)) {
	for _, c := range t.classes {
		if c.Active {
			fn(c)
		}
	}
}

// Resolve follows MergeTargetLabel chains starting at label until it reaches
// an active class, per spec section 3 invariant 2. It bounds the walk at
// Table.Len()+1 steps (one more than the invariant's own N) and reports an
// error once that bound is exceeded, signalling a merge-target cycle (spec section 7
// category 3) rather than looping forever.
func (t *Table) Resolve(label uint32) (*Class, error) {
	seen := 0
	max := t.Len() + 1
	for {
		c := t.Get(label)
		if c == nil {
			return nil, fmt.Errorf("region: label %d does not exist", label)
		}
		if c.Active {
			return c, nil
		}
		label = c.MergeTargetLabel
		seen++
		if seen > max {
			return nil, fmt.Errorf("region: merge-target cycle resolving from label %d", c.Label)
		}
	}
}

// CheckNeighbors validates spec section 3 invariant 1: for every active
// class A and every b in A.Nghbrs, B is active and A.Label is in B.Nghbrs.
func (t *Table) CheckNeighbors() bool {
	ok := true
	t.Active(func(a *Class) {
		for nb := range a.Nghbrs {
			b := t.Get(nb)
			if b == nil || !b.Active {
				ok = false
				return
			}
			if !b.IsNeighbor(a.Label) {
				ok = false
			}
		}
	})
	return ok
}

// RepairNeighbors restores spec section 3 invariant 1 (every Nghbrs edge
// symmetric) by adding back every missing reverse link, logging one
// category-3 self-correction per asymmetry found through ctx. It is the
// production counterpart to CheckNeighbors: callers that mutate Nghbrs in
// bulk (the recursive driver's window joins relabel and relink every active
// class at once) run this afterward rather than trusting the bulk rewrite
// got every edge right. It returns the number of edges it restored.
func (t *Table) RepairNeighbors(ctx *rhctx.Context) int {
	repaired := 0
	t.Active(func(a *Class) {
		for nb := range a.Nghbrs {
			b := t.Get(nb)
			if b == nil || !b.Active {
				delete(a.Nghbrs, nb)
				ctx.Correction("region %d neighbor link to inactive/missing %d dropped", a.Label, nb)
				repaired++
				continue
			}
			if !b.IsNeighbor(a.Label) {
				b.Nghbrs[a.Label] = struct{}{}
				ctx.Correction("region %d neighbor link to %d was asymmetric, restored", a.Label, b.Label)
				repaired++
			}
		}
	})
	return repaired
}

// PixelsConserved reports whether active-region pixel counts plus the
// supplied masked-pixel count equal totalPixels (spec section 8).
func (t *Table) PixelsConserved(maskedPixelCount, totalPixels int) bool {
	sum := maskedPixelCount
	t.Active(func(c *Class) { sum += int(c.Npix) })
	return sum == totalPixels
}

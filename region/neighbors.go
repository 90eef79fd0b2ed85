package region

import (
	"github.com/arl/rhseg/config"
	"github.com/arl/rhseg/pixel"
)

// LinkNeighbors scans every unmasked pixel of win and records a mutual
// Nghbrs entry between the active regions of any two spatially-adjacent
// pixels with different labels (spec section 4.B). Called once after
// first-merge populates a window's per-pixel labels; never crosses win's
// boundary, since an unprocessed sibling window's labels aren't
// meaningful yet — the recursive driver links across a seam separately,
// once both sides have been joined into one table.
func LinkNeighbors(store *pixel.Store, t *Table, conn config.ConnType, win pixel.Window) error {
	var buf []int
	n := store.NumPixels()
	for i := 0; i < n; i++ {
		if !store.Mask(i) || !win.Contains(store.Dims(), i) {
			continue
		}
		li := store.RegionLabel(i)
		if li == 0 {
			continue
		}
		ci, err := t.Resolve(li)
		if err != nil {
			return err
		}
		buf = store.NeighborsWithin(i, conn, win, buf[:0])
		for _, j := range buf {
			if !store.Mask(j) {
				continue
			}
			lj := store.RegionLabel(j)
			if lj == 0 || lj == li {
				continue
			}
			cj, err := t.Resolve(lj)
			if err != nil {
				return err
			}
			if cj.Label == ci.Label {
				continue
			}
			ci.Nghbrs[cj.Label] = struct{}{}
			cj.Nghbrs[ci.Label] = struct{}{}
		}
	}
	return nil
}

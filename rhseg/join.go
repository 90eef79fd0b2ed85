package rhseg

import (
	"github.com/arl/rhseg/config"
	"github.com/arl/rhseg/pixel"
	"github.com/arl/rhseg/region"
)

// childWindow pairs a sub-window with the region table first-merge/merge
// built for it in isolation, the unit joinTables combines.
type childWindow struct {
	win   pixel.Window
	table *region.Table
}

// joinTables renumbers every active class of each child's table into one
// fresh, shared-namespace parent table, then rewrites store's per-pixel
// labels over each child's window to match — the atomic relabeling of spec
// section 5 ("sub-windows conceptually independent ... labels renumbered
// into parent-global namespace at join"). Aggregate statistics, neighbor
// sets, and any seam bookkeeping a child already carries (from its own,
// deeper join) all carry over; only heap bookkeeping is dropped, since the
// caller always builds a fresh merge.Engine over the joined table.
func joinTables(store *pixel.Store, p *config.Params, children []childWindow) *region.Table {
	parent := region.NewTable(p.Nbands, p.RegionSumSqFlag, p.RegionSumXLogXFlag, store.HasLocalStdDev())

	relabels := make([]map[uint32]uint32, len(children))
	for ci, ch := range children {
		rl := make(map[uint32]uint32)
		ch.table.Active(func(c *region.Class) {
			nc := parent.Create()
			copyClassStats(nc, c)
			rl[c.Label] = nc.Label
		})
		relabels[ci] = rl
	}

	for ci, ch := range children {
		rl := relabels[ci]
		ch.table.Active(func(c *region.Class) {
			nc := parent.Get(rl[c.Label])
			for nb := range c.Nghbrs {
				if newNb, ok := rl[nb]; ok {
					nc.Nghbrs[newNb] = struct{}{}
				}
			}
			if c.SeamNeighborMap != nil {
				nc.SeamNeighborMap = make(map[uint32]*region.Seam, len(c.SeamNeighborMap))
				for nb, s := range c.SeamNeighborMap {
					if newNb, ok := rl[nb]; ok {
						cp := *s
						nc.SeamNeighborMap[newNb] = &cp
					}
				}
			}
		})
		relabelWindowPixels(store, ch.win, ch.table, rl)
	}

	return parent
}

// copyClassStats copies the permanent, merge-engine-independent state of a
// child's active class into a freshly created parent class. Transient
// bookkeeping (best-neighbor/region tie sets, heap positions) is left at
// its Create-time default, since the caller always rebuilds that state with
// a fresh merge.Engine over the joined table.
func copyClassStats(dst, src *region.Class) {
	dst.Npix = src.Npix
	copy(dst.Sum, src.Sum)
	if dst.SumSq != nil && src.SumSq != nil {
		copy(dst.SumSq, src.SumSq)
	}
	if dst.SumXLogX != nil && src.SumXLogX != nil {
		copy(dst.SumXLogX, src.SumXLogX)
	}
	if dst.SumLocalStdDev != nil && src.SumLocalStdDev != nil {
		copy(dst.SumLocalStdDev, src.SumLocalStdDev)
	}
	dst.MaxEdgeValue = src.MaxEdgeValue
	dst.MergeThreshold = src.MergeThreshold
	dst.InitialMergeFlag = src.InitialMergeFlag
	dst.SeamFlag = src.SeamFlag
	dst.MergedFlag = src.MergedFlag
	dst.LargeNghbrMergedFlag = src.LargeNghbrMergedFlag
	dst.RegionObjectsSet = src.RegionObjectsSet
	dst.NbRegionObjects = src.NbRegionObjects
	dst.BoundaryNpix = src.BoundaryNpix
}

// relabelWindowPixels rewrites store's per-pixel region label over every
// unmasked pixel of win from its child-local label to the renumbered parent
// label, resolving merge-target chains first so a pixel whose original
// first-merge region has since been absorbed still lands on the right
// parent class.
func relabelWindowPixels(store *pixel.Store, win pixel.Window, child *region.Table, relabel map[uint32]uint32) {
	d := store.Dims()
	for col := win.ColLo; col < win.ColHi; col++ {
		for row := win.RowLo; row < win.RowHi; row++ {
			for slice := win.SliceLo; slice < win.SliceHi; slice++ {
				i := d.Index(col, row, slice)
				if !store.Mask(i) {
					continue
				}
				old := store.RegionLabel(i)
				if old == 0 {
					continue
				}
				c, err := child.Resolve(old)
				if err != nil {
					continue
				}
				if newLabel, ok := relabel[c.Label]; ok {
					store.SetRegionLabel(i, newLabel)
				}
			}
		}
	}
}

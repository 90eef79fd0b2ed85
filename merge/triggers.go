package merge

import (
	"sort"

	"github.com/arl/rhseg/config"
)

// Triggers tracks spec section 4.H's three hierarchy output trigger modes:
// a descending sequence of region-count targets, an ascending sequence of
// max_threshold targets, or a single chk_nregions cutoff after which every
// subsequent merge emits. The three modes are not mutually exclusive — a
// configuration may set any combination, and Check fires if any of them is
// satisfied.
type Triggers struct {
	nregionTargets   []int
	thresholdTargets []float32
	chkNregions      int
	chkActive        bool
}

// NewTriggers builds a Triggers from the relevant Params fields. Targets are
// sorted into the order Check expects to consume them in.
func NewTriggers(p *config.Params) *Triggers {
	nr := append([]int(nil), p.HsegOutNregions...)
	sort.Sort(sort.Reverse(sort.IntSlice(nr)))
	th := append([]float32(nil), p.HsegOutThresholds...)
	sort.Slice(th, func(i, j int) bool { return th[i] < th[j] })
	return &Triggers{nregionTargets: nr, thresholdTargets: th, chkNregions: p.ChkNregions}
}

// Check reports whether a hierarchy snapshot should be emitted given the
// current region count and max_threshold, consuming any targets just
// crossed and latching the chk_nregions continuous mode permanently once
// its cutoff is reached.
func (tr *Triggers) Check(nregions int, maxThreshold float32) bool {
	fired := false
	for len(tr.nregionTargets) > 0 && nregions <= tr.nregionTargets[0] {
		tr.nregionTargets = tr.nregionTargets[1:]
		fired = true
	}
	for len(tr.thresholdTargets) > 0 && maxThreshold >= tr.thresholdTargets[0] {
		tr.thresholdTargets = tr.thresholdTargets[1:]
		fired = true
	}
	if tr.chkNregions > 0 && nregions <= tr.chkNregions {
		tr.chkActive = true
	}
	return fired || tr.chkActive
}

package config

import "errors"

// Sentinel configuration errors (spec section 7, category 1). These always
// fail the whole run at setup; they are never self-corrected.
var (
	ErrBadConnType    = errors.New("unsupported connectivity type")
	ErrBadCriterion   = errors.New("dissimilarity criterion out of range")
	ErrInconsistent   = errors.New("inconsistent configuration")
	ErrMissingEdge    = errors.New("edge image required but not supplied")
)

// Validate checks the categories of misconfiguration spec section 7.1 calls
// out explicitly: an out-of-range criterion, a mode that requires an input
// the caller didn't wire up, and internally inconsistent bounds. It assumes
// Defaults has already been run (MinNpixels/MaxNbDir etc. populated).
func (p *Params) Validate(hasEdgeImage bool) error {
	if p.DissimCrit < 1 || p.DissimCrit > 10 {
		return ErrBadCriterion
	}
	if p.ProgramMode == RHSEG && p.EdgeWght > 0 && !hasEdgeImage {
		return ErrMissingEdge
	}
	if p.SpclustWght < 0 || p.SpclustWght > 1 {
		return ErrInconsistent
	}
	if p.MinNregions <= 0 || p.ConvNregions <= 0 {
		return ErrInconsistent
	}
	if p.ConvNregions > p.MinNregions {
		return ErrInconsistent
	}
	if p.Ncols <= 0 || p.Nbands <= 0 {
		return ErrInconsistent
	}
	if p.DissimCrit == 9 && p.NormInd == NormNone && len(p.BandMean) != p.Nbands {
		return ErrInconsistent
	}
	return nil
}

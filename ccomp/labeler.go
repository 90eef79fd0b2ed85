// Package ccomp defines the connected-component external collaborator of
// spec section 6: given a labelled region table and a connectivity scheme,
// it would deliver per-class region_objects_set, nb_region_objects, and
// boundary_npix. No production backend ships (spec's Non-goals) — this
// module's own RegionClass already carries those fields as opaque
// bookkeeping it never interprets, ready for whatever Labeler a caller
// wires in.
package ccomp

import (
	"github.com/arl/rhseg/config"
	"github.com/arl/rhseg/pixel"
	"github.com/arl/rhseg/region"
)

// Labeler computes connected-component bookkeeping over a converged region
// table and writes it back onto each active Class: RegionObjectsSet,
// NbRegionObjects, BoundaryNpix.
type Labeler interface {
	Label(store *pixel.Store, t *region.Table, conn config.ConnType) error
}

package rhseg

import (
	"errors"

	"github.com/arl/rhseg/config"
)

// Sentinel errors for the driver/resource-level failures of spec section 7
// categories 1-2 that aren't already covered by config.Validate's checks.
// ErrBadCriterion is re-exported from config rather than duplicated, since
// it names the same condition at the same severity.
var (
	ErrBadCriterion      = config.ErrBadCriterion
	ErrMissingEdgeImage  = errors.New("rhseg: edge image required but raster.Raw carries none")
	ErrDimensionMismatch = errors.New("rhseg: raster dimensions do not match declared band shape")
	ErrAllocation        = errors.New("rhseg: could not allocate region table or pixel store for the requested image size")
	ErrEmptyStore        = errors.New("rhseg: pixel store has no pixels to segment")
)

// Package config holds the explicit parameter bundle threaded through every
// engine operation (the dissimilarity kernel, the two heaps, the merge and
// seam engines, and the recursive driver), and derives the values of
// spec section 4.L (maxnbdir, recursion depth, seam size, ...) from an image's
// shape and a handful of user-supplied knobs.
//
// Modeled on recast.Config/recast.BuildSettings (the teacher's build-time
// parameter struct): one struct, no package-level state, a Defaults
// constructor, and a Validate pass run once at setup.
package config

import "fmt"

// ProgramMode selects which of the three driver strategies runs.
type ProgramMode int

const (
	HSWO ProgramMode = iota
	HSEG
	RHSEG
)

func (m ProgramMode) String() string {
	switch m {
	case HSWO:
		return "HSWO"
	case HSEG:
		return "HSEG"
	case RHSEG:
		return "RHSEG"
	default:
		return "unknown"
	}
}

// NormMode selects the per-band normalization applied by the pixel store.
type NormMode int

const (
	NormNone NormMode = iota
	NormAcrossBand
	NormPerBand
)

// EdgeDissimOption selects how edge evidence modulates dissimilarity.
type EdgeDissimOption int

const (
	// EdgeMergeEnhance: low edge value *lowers* the barrier to merging.
	EdgeMergeEnhance EdgeDissimOption = 1
	// EdgeMergeSuppress: high edge value *raises* the barrier to merging.
	EdgeMergeSuppress EdgeDissimOption = 2
)

// ConnType enumerates the permitted neighbor-connectivity schemes. 2-D modes
// carry 4, 8, 12, 20 or 24 directions (diagonal and second-ring variants);
// 3-D modes carry 6, 18 or 26.
type ConnType int

const (
	Conn4 ConnType = iota
	Conn8
	Conn12
	Conn20
	Conn24
	Conn6_3D
	Conn18_3D
	Conn26_3D
)

// Params is the full parameter bundle of spec section 6 "Parameter source".
// It is passed by pointer into every engine operation; nothing in this
// module keeps a package-level copy (spec section 9, design note on global
// params/oparams).
type Params struct {
	ProgramMode ProgramMode

	// Image shape, filled in from the raster loader.
	Ncols, Nrows, Nslices int
	Nbands                int

	NormInd NormMode
	Conn    ConnType

	DissimCrit int // 1..10

	SpclustWght              float32
	SpclustMin, SpclustMax   int
	MinNregions, ConvNregions int
	ChkNregions              int

	HsegOutNregions   []int
	HsegOutThresholds []float32

	EdgeThreshold    float32
	EdgePower        float32
	EdgeWght         float32
	EdgeDissimOption EdgeDissimOption
	MinEdge, MaxEdge float32

	SeamEdgeThreshold float32

	InitialMergeNpix   int
	RandomInitSeedFlag bool
	SortFlag           bool
	MergeAccelFlag     bool
	StdDevWght         float32
	StdDevImage        bool
	MeanNormStdDev     bool // runtime flag; compile-time MEAN_NORM_STD_DEV in the source

	RnbLevels, IonbLevels int

	MaxNregionsMem int // MAX_NREGIONS budget driving RnbLevels derivation
	MaxNpixelsMem  int // MAX_NPIXELS budget driving IonbLevels derivation

	// BandMean is the dataset-wide per-band mean (oparams.meanval in the
	// source), computed once from the raster loader's BandStats and carried
	// unchanged through every region class's lifetime. Criterion 9 divides
	// by it when NormInd is NormNone.
	BandMean []float32

	// Derived, computed by Defaults; not user-set.
	MaxNbDir              int
	NbDimensions           int
	SeamSize               int
	MinNpixels             int
	RegionSumSqFlag        bool
	RegionSumXLogXFlag     bool
	RecursionMask          [][3]bool // per level: cols/rows/slices split?
}

// maxnbdirTable maps the five accepted 2-D connectivity values (4, 8, 12, 20
// and 24 directions) and the three accepted 3-D values (6, 18 and 26) to
// their direction count; Defaults rejects every other ConnType.
var maxnbdirTable = map[ConnType]int{
	Conn4: 4, Conn8: 8, Conn12: 12, Conn20: 20, Conn24: 24,
	Conn6_3D: 6, Conn18_3D: 18, Conn26_3D: 26,
}

// Defaults derives every value of spec section 4.L from the image shape and
// the caller-supplied Params, returning a fully-populated copy. It does not
// mutate p.
func Defaults(p Params) (Params, error) {
	out := p

	dir, ok := maxnbdirTable[p.Conn]
	if !ok {
		return out, fmt.Errorf("config: invalid connectivity type %v: %w", p.Conn, ErrBadConnType)
	}
	out.MaxNbDir = dir

	nd := 0
	if p.Ncols > 1 {
		nd++
	}
	if p.Nrows > 1 {
		nd++
	}
	if p.Nslices > 1 {
		nd++
	}
	out.NbDimensions = nd

	switch nd {
	case 1:
		out.SeamSize = 8
	case 2:
		out.SeamSize = 4
	default:
		out.SeamSize = 2
	}

	if out.MinNpixels <= 0 {
		out.MinNpixels = defaultMinNpixels
	}
	if out.SpclustMax > 0 && out.MinNpixels > out.SpclustMax {
		return out, fmt.Errorf("config: min_npixels %d exceeds spclust_max %d: %w", out.MinNpixels, out.SpclustMax, ErrInconsistent)
	}

	out.RegionSumSqFlag = needsSumSq(p.DissimCrit)
	out.RegionSumXLogXFlag = needsSumXLogX(p.DissimCrit)

	if p.MaxNregionsMem <= 0 {
		out.MaxNregionsMem = defaultMaxNregions
	}
	if p.MaxNpixelsMem <= 0 {
		out.MaxNpixelsMem = defaultMaxNpixels
	}

	npix := p.Ncols * maxInt(p.Nrows, 1) * maxInt(p.Nslices, 1)
	if p.ProgramMode == RHSEG {
		out.RnbLevels, out.RecursionMask = deriveRecursionLevels(p.Ncols, p.Nrows, p.Nslices, out.MaxNregionsMem)
	} else {
		out.RnbLevels, out.RecursionMask = 0, nil // HSWO/HSEG run a single window
	}
	out.IonbLevels = deriveIOLevels(npix, out.MaxNpixelsMem)

	return out, nil
}

const (
	defaultMinNpixels  = 9
	defaultMaxNregions = 1 << 16
	defaultMaxNpixels  = 1 << 22
)

func needsSumSq(crit int) bool {
	switch crit {
	case 2, 4, 6, 7, 8:
		return true
	default:
		return false
	}
}

func needsSumXLogX(crit int) bool {
	return crit == 9
}

// deriveRecursionLevels finds the smallest recursion depth at which every
// leaf sub-window's pixel count is <= maxNregions, halving the largest
// remaining dimension at each level so the deepest window stays as balanced
// as possible. It returns the per-level split mask (cols, rows, slices).
func deriveRecursionLevels(ncols, nrows, nslices, maxNregions int) (int, [][3]bool) {
	cols, rows, slices := maxInt(ncols, 1), maxInt(nrows, 1), maxInt(nslices, 1)
	var mask [][3]bool
	level := 0
	for cols*rows*slices > maxNregions {
		var split [3]bool
		// Split the largest dimension(s) first, mirroring the teacher's
		// tile-size derivation (recast.CalcGridSize) which balances grid
		// cells across both axes rather than favoring one.
		largest := maxInt(cols, maxInt(rows, slices))
		if cols == largest && cols > 1 {
			cols = (cols + 1) / 2
			split[0] = true
		}
		if rows == largest && rows > 1 {
			rows = (rows + 1) / 2
			split[1] = true
		}
		if slices == largest && slices > 1 {
			slices = (slices + 1) / 2
			split[2] = true
		}
		if !split[0] && !split[1] && !split[2] {
			// Degenerate: nothing left to split but budget still exceeded.
			break
		}
		mask = append(mask, split)
		level++
		if level > 64 {
			break // pathological input guard
		}
	}
	return level, mask
}

// deriveIOLevels finds the depth at which a window's pixel count first fits
// within maxNpixels, assuming each level halves total pixel count (the same
// assumption deriveRecursionLevels makes per-axis).
func deriveIOLevels(totalPixels, maxNpixels int) int {
	level := 0
	remaining := totalPixels
	for remaining > maxNpixels {
		remaining = (remaining + 1) / 2
		level++
		if level > 64 {
			break
		}
	}
	return level
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

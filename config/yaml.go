package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"
)

// file is the on-disk shape of a params YAML file, mirroring the teacher's
// recast.BuildSettings / cmd/recast "recast.yml": plain exported fields,
// yaml.v2 tags, read by Load and written by Save. The CLI's "config" and
// "run" subcommands do not go through it: they marshal Params directly.
type file struct {
	ProgramMode        string    `yaml:"program_mode"`
	DissimCrit         int       `yaml:"dissim_crit"`
	NormInd            string    `yaml:"normind"`
	ConnType           string    `yaml:"conn_type"`
	SpclustWght        float32   `yaml:"spclust_wght"`
	SpclustMin         int       `yaml:"spclust_min"`
	SpclustMax         int       `yaml:"spclust_max"`
	MinNregions        int       `yaml:"min_nregions"`
	ConvNregions       int       `yaml:"conv_nregions"`
	ChkNregions        int       `yaml:"chk_nregions"`
	HsegOutNregions    []int     `yaml:"hseg_out_nregions,omitempty"`
	HsegOutThresholds  []float32 `yaml:"hseg_out_thresholds,omitempty"`
	EdgeThreshold      float32   `yaml:"edge_threshold"`
	EdgePower          float32   `yaml:"edge_power"`
	EdgeWght           float32   `yaml:"edge_wght"`
	EdgeDissimOption   string    `yaml:"edge_dissim_option"`
	MinEdge            float32   `yaml:"min_edge"`
	MaxEdge            float32   `yaml:"max_edge"`
	SeamEdgeThreshold  float32   `yaml:"seam_edge_threshold"`
	InitialMergeNpix   int       `yaml:"initial_merge_npix"`
	RandomInitSeedFlag bool      `yaml:"random_init_seed_flag"`
	SortFlag           bool      `yaml:"sort_flag"`
	MergeAccelFlag     bool      `yaml:"merge_accel_flag"`
	StdDevWght         float32   `yaml:"std_dev_wght"`
	StdDevImage        bool      `yaml:"std_dev_image"`
	MeanNormStdDev     bool      `yaml:"mean_norm_std_dev"`
	MinNpixels         int       `yaml:"min_npixels"`
	RnbLevels          int       `yaml:"rnb_levels"`
	IonbLevels         int       `yaml:"ionb_levels"`
}

// Default returns a Params pre-filled with the same kind of sane defaults
// DefaultSettings() gives the teacher's tile-mesh sample: a runnable
// configuration that still needs the image shape filled in before Defaults
// derives the rest.
func Default() Params {
	return Params{
		ProgramMode:        HSEG,
		DissimCrit:         2,
		NormInd:            NormNone,
		Conn:               Conn8,
		SpclustWght:        0.2,
		SpclustMin:         0,
		SpclustMax:         1 << 20,
		MinNregions:        2,
		ConvNregions:       1,
		ChkNregions:        0,
		EdgeThreshold:      0,
		EdgePower:          1,
		EdgeWght:           0,
		EdgeDissimOption:   EdgeMergeSuppress,
		MinEdge:            0,
		MaxEdge:            1,
		SeamEdgeThreshold:  0,
		InitialMergeNpix:   20,
		RandomInitSeedFlag: false,
		SortFlag:           true,
		MergeAccelFlag:     true,
		StdDevWght:         0,
		StdDevImage:        false,
		MeanNormStdDev:     false,
		MinNpixels:         defaultMinNpixels,
	}
}

// Save writes p to w as YAML, in the file shape Load reads back.
func Save(w io.Writer, p Params) error {
	f := toFile(p)
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(f)
}

// SaveFile is a convenience wrapper over Save for a path on disk.
func SaveFile(path string, p Params) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", path, err)
	}
	defer f.Close()
	return Save(f, p)
}

// Load reads a YAML params file from r.
func Load(r io.Reader) (Params, error) {
	var f file
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&f); err != nil {
		return Params{}, fmt.Errorf("config: decode: %w", err)
	}
	return fromFile(f), nil
}

// LoadFile is a convenience wrapper over Load for a path on disk.
func LoadFile(path string) (Params, error) {
	r, err := os.Open(path)
	if err != nil {
		return Params{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer r.Close()
	return Load(r)
}

func toFile(p Params) file {
	return file{
		ProgramMode:        p.ProgramMode.String(),
		DissimCrit:         p.DissimCrit,
		NormInd:            normModeString(p.NormInd),
		ConnType:           connTypeString(p.Conn),
		SpclustWght:        p.SpclustWght,
		SpclustMin:         p.SpclustMin,
		SpclustMax:         p.SpclustMax,
		MinNregions:        p.MinNregions,
		ConvNregions:       p.ConvNregions,
		ChkNregions:        p.ChkNregions,
		HsegOutNregions:    p.HsegOutNregions,
		HsegOutThresholds:  p.HsegOutThresholds,
		EdgeThreshold:      p.EdgeThreshold,
		EdgePower:          p.EdgePower,
		EdgeWght:           p.EdgeWght,
		EdgeDissimOption:   edgeOptString(p.EdgeDissimOption),
		MinEdge:            p.MinEdge,
		MaxEdge:            p.MaxEdge,
		SeamEdgeThreshold:  p.SeamEdgeThreshold,
		InitialMergeNpix:   p.InitialMergeNpix,
		RandomInitSeedFlag: p.RandomInitSeedFlag,
		SortFlag:           p.SortFlag,
		MergeAccelFlag:     p.MergeAccelFlag,
		StdDevWght:         p.StdDevWght,
		StdDevImage:        p.StdDevImage,
		MeanNormStdDev:     p.MeanNormStdDev,
		MinNpixels:         p.MinNpixels,
		RnbLevels:          p.RnbLevels,
		IonbLevels:         p.IonbLevels,
	}
}

func fromFile(f file) Params {
	return Params{
		ProgramMode:        parseProgramMode(f.ProgramMode),
		DissimCrit:         f.DissimCrit,
		NormInd:            parseNormMode(f.NormInd),
		Conn:               parseConnType(f.ConnType),
		SpclustWght:        f.SpclustWght,
		SpclustMin:         f.SpclustMin,
		SpclustMax:         f.SpclustMax,
		MinNregions:        f.MinNregions,
		ConvNregions:       f.ConvNregions,
		ChkNregions:        f.ChkNregions,
		HsegOutNregions:    f.HsegOutNregions,
		HsegOutThresholds:  f.HsegOutThresholds,
		EdgeThreshold:      f.EdgeThreshold,
		EdgePower:          f.EdgePower,
		EdgeWght:           f.EdgeWght,
		EdgeDissimOption:   parseEdgeOpt(f.EdgeDissimOption),
		MinEdge:            f.MinEdge,
		MaxEdge:            f.MaxEdge,
		SeamEdgeThreshold:  f.SeamEdgeThreshold,
		InitialMergeNpix:   f.InitialMergeNpix,
		RandomInitSeedFlag: f.RandomInitSeedFlag,
		SortFlag:           f.SortFlag,
		MergeAccelFlag:     f.MergeAccelFlag,
		StdDevWght:         f.StdDevWght,
		StdDevImage:        f.StdDevImage,
		MeanNormStdDev:     f.MeanNormStdDev,
		MinNpixels:         f.MinNpixels,
		RnbLevels:          f.RnbLevels,
		IonbLevels:         f.IonbLevels,
	}
}

func normModeString(m NormMode) string {
	switch m {
	case NormAcrossBand:
		return "across-band"
	case NormPerBand:
		return "per-band"
	default:
		return "none"
	}
}

func parseNormMode(s string) NormMode {
	switch s {
	case "across-band":
		return NormAcrossBand
	case "per-band":
		return NormPerBand
	default:
		return NormNone
	}
}

func connTypeString(c ConnType) string {
	names := map[ConnType]string{
		Conn4: "4", Conn8: "8", Conn12: "12", Conn20: "20", Conn24: "24",
		Conn6_3D: "6-3d", Conn18_3D: "18-3d", Conn26_3D: "26-3d",
	}
	if s, ok := names[c]; ok {
		return s
	}
	return "8"
}

func parseConnType(s string) ConnType {
	switch s {
	case "4":
		return Conn4
	case "12":
		return Conn12
	case "20":
		return Conn20
	case "24":
		return Conn24
	case "6-3d":
		return Conn6_3D
	case "18-3d":
		return Conn18_3D
	case "26-3d":
		return Conn26_3D
	default:
		return Conn8
	}
}

func edgeOptString(o EdgeDissimOption) string {
	if o == EdgeMergeEnhance {
		return "merge-enhance"
	}
	return "merge-suppress"
}

func parseEdgeOpt(s string) EdgeDissimOption {
	if s == "merge-enhance" {
		return EdgeMergeEnhance
	}
	return EdgeMergeSuppress
}

func parseProgramMode(s string) ProgramMode {
	switch s {
	case "HSWO":
		return HSWO
	case "RHSEG":
		return RHSEG
	default:
		return HSEG
	}
}

package config

// Example returns a Params prefilled with the defaults the "rhseg config"
// CLI command writes out for a user to edit. It sets only the fields a user
// is expected to tune; image-shape-derived fields (MaxNbDir, RecursionMask,
// etc.) are left zero for Defaults to fill in once the raster is loaded.
func Example() Params {
	return Params{
		ProgramMode: RHSEG,
		NormInd:     NormPerBand,
		Conn:        Conn8,

		DissimCrit: 1,

		SpclustWght:  0.5,
		SpclustMin:   1,
		SpclustMax:   100000,
		MinNregions:  1000,
		ConvNregions: 100,
		ChkNregions:  0,

		EdgeThreshold:    0,
		EdgePower:        1,
		EdgeWght:         0,
		EdgeDissimOption: EdgeMergeSuppress,

		SeamEdgeThreshold: 0,

		InitialMergeNpix:   1,
		RandomInitSeedFlag: false,
		SortFlag:           true,
		MergeAccelFlag:     true,
		StdDevWght:         0,

		MaxNregionsMem: 1 << 16,
		MaxNpixelsMem:  1 << 22,
	}
}

package dissim

// PixelStats builds a one-pixel Stats snapshot so a pixel can be compared
// against a growing region with the same Dissimilarity kernel the merge
// engine uses (spec section 4.G: "compute pixel-region dissimilarity,
// edge-weighted form when an edge image is present").
func PixelStats(values []float32, edgeValue float32, hasEdge bool) Stats {
	s := Stats{Npix: 1, Sum: values}
	if hasEdge {
		s.MaxEdgeValue = edgeValue
	} else {
		s.MaxEdgeValue = -1
	}
	return s
}

package region

// Seam is the pair-wise seam statistics of spec section 4.C: how many
// pixels were sampled at a processing-window seam between two regions, and
// the sum of edge-image values at those pixels. Both sides of a seam pair
// keep their own Seam entry, mirroring a RegionClass's seam_neighbor_map.
type Seam struct {
	PixCount uint32
	SumEdge  float32
}

// Add accumulates other's counts into s, the seam analogue of RegionClass's
// merge-time accumulator addition.
func (s *Seam) Add(other Seam) {
	s.PixCount += other.PixCount
	s.SumEdge += other.SumEdge
}

// AddSeamContribution records one seam pixel (with the given edge value)
// between c and neighbor label nb, creating the map entry on first contact.
func (c *Class) AddSeamContribution(nb uint32, edgeValue float32) {
	if c.SeamNeighborMap == nil {
		c.SeamNeighborMap = make(map[uint32]*Seam)
	}
	s, ok := c.SeamNeighborMap[nb]
	if !ok {
		s = &Seam{}
		c.SeamNeighborMap[nb] = s
	}
	s.Add(Seam{PixCount: 1, SumEdge: edgeValue})
}

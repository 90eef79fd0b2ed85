package pixel

import "github.com/arl/rhseg/config"

// offset2D is a (dcol, drow) step.
type offset2D struct{ dc, dr int }

// offsets2D returns the direction set for a 2-D connectivity type, ordered
// nearest-first so first-merge's dissimilarity-ties-by-candidate-order
// behavior (spec section 4.G) is deterministic for a fixed PRNG seed.
func offsets2D(c config.ConnType) []offset2D {
	four := []offset2D{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diag := []offset2D{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	ring2 := []offset2D{{2, 0}, {-2, 0}, {0, 2}, {0, -2}}
	ring2diag := []offset2D{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}

	switch c {
	case config.Conn4:
		return four
	case config.Conn8:
		return append(append([]offset2D{}, four...), diag...)
	case config.Conn12:
		return append(append(append([]offset2D{}, four...), diag...), ring2...)
	case config.Conn20:
		out := append(append([]offset2D{}, four...), diag...)
		out = append(out, ring2...)
		return append(out, ring2diag...)
	case config.Conn24:
		out := append(append([]offset2D{}, four...), diag...)
		out = append(out, ring2...)
		out = append(out, ring2diag...)
		return append(out, offset2D{2, 2}, offset2D{2, -2}, offset2D{-2, 2}, offset2D{-2, -2})
	default:
		return append(append([]offset2D{}, four...), diag...)
	}
}

type offset3D struct{ dc, dr, ds int }

func offsets3D(c config.ConnType) []offset3D {
	face := []offset3D{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	edge := []offset3D{
		{1, 1, 0}, {1, -1, 0}, {-1, 1, 0}, {-1, -1, 0},
		{1, 0, 1}, {1, 0, -1}, {-1, 0, 1}, {-1, 0, -1},
		{0, 1, 1}, {0, 1, -1}, {0, -1, 1}, {0, -1, -1},
	}
	corner := []offset3D{
		{1, 1, 1}, {1, 1, -1}, {1, -1, 1}, {1, -1, -1},
		{-1, 1, 1}, {-1, 1, -1}, {-1, -1, 1}, {-1, -1, -1},
	}
	switch c {
	case config.Conn6_3D:
		return face
	case config.Conn18_3D:
		return append(append([]offset3D{}, face...), edge...)
	default: // Conn26_3D
		out := append(append([]offset3D{}, face...), edge...)
		return append(out, corner...)
	}
}

// Neighbors appends the in-bounds pixel indices adjacent to i (per the
// configured connectivity) to dst and returns the extended slice. dst may be
// nil; callers that call this in a hot loop should reuse a buffer.
func (s *Store) Neighbors(i int, conn config.ConnType, dst []int) []int {
	col, row, slice := s.dims.Coords(i)
	if s.dims.Slices > 1 {
		for _, o := range offsets3D(conn) {
			nc, nr, ns := col+o.dc, row+o.dr, slice+o.ds
			if s.inBounds3D(nc, nr, ns) {
				dst = append(dst, s.dims.Index(nc, nr, ns))
			}
		}
		return dst
	}
	for _, o := range offsets2D(conn) {
		nc, nr := col+o.dc, row+o.dr
		if s.inBounds2D(nc, nr) {
			dst = append(dst, s.dims.Index(nc, nr, 0))
		}
	}
	return dst
}

func (s *Store) inBounds2D(c, r int) bool {
	rows := s.dims.Rows
	if rows == 0 {
		rows = 1
	}
	return c >= 0 && c < s.dims.Cols && r >= 0 && r < rows
}

func (s *Store) inBounds3D(c, r, sl int) bool {
	rows := s.dims.Rows
	if rows == 0 {
		rows = 1
	}
	return c >= 0 && c < s.dims.Cols && r >= 0 && r < rows && sl >= 0 && sl < s.dims.Slices
}

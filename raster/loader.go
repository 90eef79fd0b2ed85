// Package raster is the pixel-load external collaborator of spec section 6:
// it turns some on-disk representation into a pixel.Raw plus per-band
// statistics, the only two things pixel.Build needs. Production raster
// formats are out of scope (spec's Non-goals, "raster decoding... remains an
// external collaborator"); this package ships the Loader interface plus one
// minimal, self-describing flat-file implementation so the CLI is runnable
// end to end without a production imaging stack.
package raster

import (
	"bufio"
	"fmt"
	"os"

	"github.com/arl/rhseg/pixel"
)

// Loader delivers the inputs pixel.Build needs: raw per-band samples plus
// optional mask/edge/std-dev planes, and the per-band statistics used to
// derive normalization scale/offset.
type Loader interface {
	Load() (pixel.Raw, []pixel.BandStats, error)
}

// FlatFile is the minimal default Loader: a plain-text format with a
// "cols rows slices nbands" header line followed by nbands planes of
// cols*rows*slices whitespace-separated float32 samples, band-major. It
// carries no mask, edge, or local-std-dev plane — callers needing those
// inputs supply their own Loader.
type FlatFile struct {
	Path string
}

// Load reads the file named by f.Path.
func (f FlatFile) Load() (pixel.Raw, []pixel.BandStats, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return pixel.Raw{}, nil, fmt.Errorf("raster: open %s: %w", f.Path, err)
	}
	defer file.Close()

	r := bufio.NewReaderSize(file, 1<<20)
	var cols, rows, slices, nbands int
	if _, err := fmt.Fscan(r, &cols, &rows, &slices, &nbands); err != nil {
		return pixel.Raw{}, nil, fmt.Errorf("raster: %s: reading header: %w", f.Path, err)
	}
	if cols <= 0 || nbands <= 0 {
		return pixel.Raw{}, nil, fmt.Errorf("raster: %s: invalid header %dx%dx%d, %d bands", f.Path, cols, rows, slices, nbands)
	}

	dims := pixel.Dims{Cols: cols, Rows: rows, Slices: slices}
	n := dims.Size()

	bands := make([][]float32, nbands)
	stats := make([]pixel.BandStats, nbands)
	for b := 0; b < nbands; b++ {
		band := make([]float32, n)
		var sum, sumSq float64
		min32, max32 := float32(0), float32(0)
		for i := 0; i < n; i++ {
			var v float32
			if _, err := fmt.Fscan(r, &v); err != nil {
				return pixel.Raw{}, nil, fmt.Errorf("raster: %s: band %d sample %d: %w", f.Path, b, i, err)
			}
			band[i] = v
			sum += float64(v)
			sumSq += float64(v) * float64(v)
			if i == 0 || v < min32 {
				min32 = v
			}
			if i == 0 || v > max32 {
				max32 = v
			}
		}
		mean := float32(sum / float64(n))
		variance := float32(sumSq/float64(n)) - mean*mean
		if variance < 0 {
			variance = 0
		}
		bands[b] = band
		stats[b] = pixel.BandStats{Min: min32, Max: max32, Mean: mean, Var: variance}
	}

	return pixel.Raw{Dims: dims, Bands: bands}, stats, nil
}

package measure

import mkcore "github.com/go-astro/mkcore"

// SkyMode names how a sky or sky-noise dataset is laid out relative to
// the values image (spec §6): a single scalar, one value per output tile
// of a coarser tessellation, or one value per pixel.
type SkyMode int

const (
	SkyScalar SkyMode = iota
	SkyPerTile
	SkyPerPixel
)

// SkyDataset is the optional per-pixel sky or sky-noise collaborator
// (spec §6). IsVariance distinguishes a noise image (needs squaring) from
// a variance image (already squared).
type SkyDataset struct {
	Mode       SkyMode
	Scalar     float64
	PerPixel   *mkcore.PixelArray
	TileValues []float64
	TileShape  []int
	ParentShape []int
	IsVariance bool
}

// ValueAt returns the dataset's value at the parent linear offset off,
// whose N-D coordinate is coord.
func (s *SkyDataset) ValueAt(off int, coord []int) float64 {
	switch s.Mode {
	case SkyScalar:
		return s.Scalar
	case SkyPerPixel:
		return s.PerPixel.Data[off]
	case SkyPerTile:
		idx := s.tileIndex(coord)
		return s.TileValues[idx]
	default:
		return 0
	}
}

func (s *SkyDataset) tileIndex(coord []int) int {
	n := len(s.TileShape)
	tilesPerAxis := make([]int, n)
	for d := 0; d < n; d++ {
		tilesPerAxis[d] = (s.ParentShape[d] + s.TileShape[d] - 1) / s.TileShape[d]
	}
	idx := 0
	for d := 0; d < n; d++ {
		tCoord := coord[d] / s.TileShape[d]
		idx = idx*tilesPerAxis[d] + tCoord
	}
	return idx
}

// Variance returns the propagated variance contribution of this dataset's
// reading at (off, coord): the reading squared when it is a noise image,
// or the reading itself when it is already a variance image.
func (s *SkyDataset) Variance(off int, coord []int) float64 {
	val := s.ValueAt(off, coord)
	if s.IsVariance {
		return val
	}
	return val * val
}

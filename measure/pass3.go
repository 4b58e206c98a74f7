package measure

import mkcore "github.com/go-astro/mkcore"

// SpectrumRow is one row of the per-slice spectrum table for a 3-D label
// (spec §3/§4.7 pass 3).
type SpectrumRow struct {
	SliceIndex      int
	CountInLabel    int
	SumInLabel      float64
	ErrorInSum      float64
	ProjectedSum    float64
	ProjectedError  float64
	OtherLabelCount int
	OtherLabelSum   float64
	OtherLabelError float64
}

// Spectrum builds one SpectrumRow per slowest-axis slice spanned by
// objTile, folding the label's 2-D projection footprint (proj, produced
// by pass 1) across every slice. WCS coordinates for each slice are
// computed once at pipeline start and attached by the caller, not here
// (spec §4.7: "Slice WCS is computed once at pipeline start and shared
// across labels").
func Spectrum(objLabel int, objTile mkcore.Tile, proj *projBitmap, values, labels *mkcore.PixelArray, skyNoise *SkyDataset) []SpectrumRow {
	if len(objTile.Extents) != 3 {
		return nil
	}

	footprint := make([][2]int, 0, objTile.Extents[1]*objTile.Extents[2])
	for ry := 0; ry < proj.dims[0]; ry++ {
		for rx := 0; rx < proj.dims[1]; rx++ {
			if proj.bits[ry*proj.dims[1]+rx] {
				footprint = append(footprint, [2]int{ry, rx})
			}
		}
	}

	rows := make([]SpectrumRow, 0, objTile.Extents[0])
	for s := 0; s < objTile.Extents[0]; s++ {
		absS := objTile.Origin[0] + s
		row := SpectrumRow{SliceIndex: absS}

		for _, cell := range footprint {
			absY := objTile.Origin[1] + cell[0]
			absX := objTile.Origin[2] + cell[1]
			coord := []int{absS, absY, absX}
			off := values.LinearIndex(coord)

			val := values.Data[off]
			if values.Blank.IsBlank(values.DType, val) {
				continue
			}

			row.ProjectedSum += val
			if skyNoise != nil {
				row.ProjectedError += skyNoise.Variance(off, coord)
			}

			if int(labels.Data[off]) == objLabel {
				row.CountInLabel++
				row.SumInLabel += val
				if skyNoise != nil {
					row.ErrorInSum += skyNoise.Variance(off, coord)
				}
			} else {
				row.OtherLabelCount++
				row.OtherLabelSum += val
				if skyNoise != nil {
					row.OtherLabelError += skyNoise.Variance(off, coord)
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

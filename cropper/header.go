package cropper

import mkcore "github.com/go-astro/mkcore"

// UpdateReferencePixel rewrites a CRPIX-style reference pixel to account
// for a clip offset (spec §4.6: "update coordinate-reference-pixel
// metadata by subtracting the clipped offset").
func UpdateReferencePixel(crpix []float64, offset []int) []float64 {
	out := make([]float64, len(crpix))
	for d, v := range crpix {
		out[d] = v - float64(offset[d])
	}
	return out
}

// SortedPolygon returns poly reordered counter-clockwise when the request
// asked for it, warning (via mkcore.NumericalWarning) rather than failing
// on a concave ring (spec §9 Open Question decision).
func SortedPolygon(poly [][2]float64, sort bool) ([][2]float64, *mkcore.NumericalWarning, error) {
	if !sort || len(poly) == 0 {
		return poly, nil, nil
	}
	verts := make([]mkcore.Point2D, len(poly))
	for i, p := range poly {
		verts[i] = mkcore.Point2D{X: p[0], Y: p[1]}
	}
	perm, warn, err := mkcore.SortCCW(verts)
	if err != nil {
		return nil, nil, err
	}
	out := make([][2]float64, len(poly))
	for i, p := range perm {
		out[i] = poly[p]
	}
	var w *mkcore.NumericalWarning
	if warn {
		w = &mkcore.NumericalWarning{Op: "SortedPolygon", Msg: "concave polygon has no unique CCW ordering"}
	}
	return out, w, nil
}

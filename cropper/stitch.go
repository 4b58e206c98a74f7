package cropper

import (
	"math"
	"strconv"

	mkcore "github.com/go-astro/mkcore"
)

// applyPolygonMask blanks pixels outside (or, if keepOutside, inside) the
// polygon, in the output array's own pixel frame; poly vertices are given
// in the same 1-based frame as the original request, outOrigin is the
// output's 0-based offset into that frame (spec §4.4/§4.6: "apply the
// optional polygon mask (inside or outside)").
func applyPolygonMask(out *mkcore.PixelArray, poly [][2]float64, outOrigin []int, keepOutside bool) {
	verts := make([]mkcore.Point2D, len(poly))
	for i, p := range poly {
		verts[i] = mkcore.Point2D{X: p[0], Y: p[1]}
	}

	ny, nx := out.Shape[0], out.Shape[1]
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			absX := float64(outOrigin[1]+x) + 1
			absY := float64(outOrigin[0]+y) + 1
			inside, err := mkcore.PointInPolygon(verts, mkcore.Point2D{X: absX, Y: absY})
			if err != nil {
				return
			}
			if inside == keepOutside {
				off := y*nx + x
				blankOne(out, off)
			}
		}
	}
}

func blankOne(a *mkcore.PixelArray, off int) {
	if a.DType.IsFloat() {
		a.Data[off] = math.NaN()
		return
	}
	if a.Blank.Registered {
		a.Data[off] = a.Blank.Value
	}
}

// centerFilled implements spec §4.6's "center-filled check": a
// configurable odd-width cube (defaulting to 1) at the output's geometric
// center must contain at least one non-blank pixel.
func centerFilled(out *mkcore.PixelArray, boxWidth int) bool {
	if boxWidth <= 0 {
		boxWidth = 1
	}
	half := boxWidth / 2
	n := out.NDim()
	center := make([]int, n)
	for d := 0; d < n; d++ {
		center[d] = out.Shape[d] / 2
	}

	found := false
	var walk func(d int, coord []int)
	walk = func(d int, coord []int) {
		if found {
			return
		}
		if d == n {
			off := out.LinearIndex(coord)
			if !out.IsBlankAt(off) {
				found = true
			}
			return
		}
		for delta := -half; delta <= half; delta++ {
			c := center[d] + delta
			if c < 0 || c >= out.Shape[d] {
				continue
			}
			coord[d] = c
			walk(d+1, coord)
			if found {
				return
			}
		}
	}
	walk(0, make([]int, n))
	return found
}

// AutoName derives an output filename when the request carried none (spec
// §4.6: "named by either a user-provided filename, a catalog column, or an
// auto-derived name").
func AutoName(requestIndex int) string {
	return "crop_" + strconv.Itoa(requestIndex+1) + ".fits"
}

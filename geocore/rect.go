// Package geocore implements the celestial geometry used by the cropper's
// celestial mode (spec §4.3): corner derivation from center+width,
// point-in-rectangle testing on a locally spherical sky, and
// rectangle-rectangle overlap. Declination changes along great circles;
// right ascension does not. Every operation assumes the image's
// coordinate system is aligned with celestial axes.
package geocore

import (
	"math"

	"github.com/soniakeys/unit"
)

// Deg wraps a degree value into a unit.Angle, the same role go-gsf's
// inline `deg2rad` constant plays in geo.go, but expressed as a real type
// instead of a bare float64 multiplied by a magic constant.
func Deg(d float64) unit.Angle { return unit.AngleFromDeg(d) }

// Rect is a sky rectangle described by its maximum-RA reference corner
// (R0, D0) in degrees and its angular extents (Sx, Sy) in degrees
// (spec §4.3).
type Rect struct {
	R0, D0 float64
	Sx, Sy float64
}

// Corners holds the four (2-D) or eight (3-D) corners of a rectangle
// derived from a center and half-widths.
type Corners struct {
	RA  []float64
	Dec []float64
}

// DeriveCorners computes the corners of a rectangle centered at (r, d)
// degrees with half-widths (hx, hy) degrees, applying the declination
// correction `hx/cos(d +/- hy)` spec §4.3 requires so the rectangle keeps
// a constant angular width as seen from the pole.
func DeriveCorners(r, d, hx, hy float64) Corners {
	hxRad := Deg(hx).Rad()
	hyRad := Deg(hy).Rad()
	dRad := Deg(d).Rad()

	signs := []float64{-1, 1}
	ra := make([]float64, 0, 4)
	dec := make([]float64, 0, 4)
	for _, sx := range signs {
		for _, sy := range signs {
			dd := dRad + sy*hyRad
			rr := r + sx*(hxRad*180/math.Pi)/math.Cos(dd)
			ra = append(ra, rr)
			dec = append(dec, d+sy*hy)
		}
	}
	return Corners{RA: ra, Dec: dec}
}

// ReferenceCorner returns the Rect whose reference corner is the
// maximum-RA corner of a center+half-width rectangle, as
// PointInRect/Overlap require.
func ReferenceCorner(r, d, hx, hy float64) Rect {
	c := DeriveCorners(r, d, hx, hy)
	r0 := c.RA[0]
	for _, v := range c.RA {
		if v > r0 {
			r0 = v
		}
	}
	return Rect{R0: r0, D0: d - hy, Sx: 2 * hx, Sy: 2 * hy}
}

// PointInRect implements the branch structure of spec §4.3: southern,
// non-crossing, and equator-crossing cases each use a different
// RA-acceptance window, corrected for the convergence of right ascension
// toward the poles.
func PointInRect(rect Rect, rp, dp float64) bool {
	if dp < rect.D0 || dp > rect.D0+rect.Sy {
		return false
	}

	deg2rad := math.Pi / 180.0

	if dp <= 0 {
		n := rect.Sx * (1 - math.Cos((dp-rect.D0)*deg2rad)) / 2
		return rp >= rect.R0-rect.Sx+n && rp <= rect.R0-n
	}

	if rect.D0*(rect.D0+rect.Sy) > 0 {
		n := rect.Sx * (1/math.Cos((dp-rect.D0)*deg2rad) - 1) / 2
		return rp >= rect.R0-rect.Sx-n && rp <= rect.R0+n
	}

	re := rect.R0 - rect.Sx*(1-math.Cos(rect.D0*deg2rad))/2
	sre := rect.Sx * math.Cos(rect.D0*deg2rad)
	n := sre * (1/math.Cos(dp*deg2rad) - 1) / 2
	return rp >= re-sre-n && rp <= re+n
}

// corners4 returns the four corners of rect as (ra, dec) pairs.
func corners4(rect Rect) [][2]float64 {
	return [][2]float64{
		{rect.R0, rect.D0},
		{rect.R0 - rect.Sx, rect.D0},
		{rect.R0, rect.D0 + rect.Sy},
		{rect.R0 - rect.Sx, rect.D0 + rect.Sy},
	}
}

// Overlap tests whether two sky rectangles overlap: it holds iff any
// corner of a lies inside b or any corner of b lies inside a (spec §4.3).
// This is a safe over-approximation for rectangles small compared to the
// sphere's radius, which the cropper's use satisfies.
func Overlap(a, b Rect) bool {
	for _, c := range corners4(a) {
		if PointInRect(b, c[0], c[1]) {
			return true
		}
	}
	for _, c := range corners4(b) {
		if PointInRect(a, c[0], c[1]) {
			return true
		}
	}
	return false
}

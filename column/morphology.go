package column

import "math"

// Morphology is the second-order shape derivation of spec §4.9: semi-major
// and semi-minor axis lengths and position angle from the shifted second
// moments pass 1 accumulates (Vxx, Vyy, Vxy), normalized by the flux
// weight sum.
type Morphology struct {
	SemiMajor     float64
	SemiMinor     float64
	PositionAngle float64 // degrees, east of north convention deferred to the WCS layer
}

// DeriveMorphology turns the raw (sumwht-normalized) second moments into
// semi-major/semi-minor axis lengths and a position angle, following the
// standard eigen-decomposition of the 2x2 moment matrix
// [[ixx, ixy], [ixy, iyy]]. vxx/vyy/vxy are the shifted second moments
// (pass 1's shift trick); vAxisX/vAxisY are the corresponding *unshifted*
// first moments (measure.VAxis) and shiftX/shiftY the per-axis shift
// origin pass 1 recorded, so the mean can be put back into the same
// shifted coordinate system before its square is subtracted out (spec
// §4.9: "xx = Σv(x−s)²/Σv − (x̄−s)²").
func DeriveMorphology(vxx, vyy, vxy, sumWht, vAxisX, vAxisY, shiftX, shiftY float64) Morphology {
	if sumWht == 0 {
		return Morphology{SemiMajor: math.NaN(), SemiMinor: math.NaN(), PositionAngle: math.NaN()}
	}
	xBarShifted := vAxisX/sumWht + 1 - shiftX
	yBarShifted := vAxisY/sumWht + 1 - shiftY

	ixx := vxx/sumWht - xBarShifted*xBarShifted
	iyy := vyy/sumWht - yBarShifted*yBarShifted
	ixy := vxy/sumWht - xBarShifted*yBarShifted

	trace := ixx + iyy
	diff := ixx - iyy
	disc := math.Sqrt(diff*diff/4 + ixy*ixy)

	lambda1 := trace/2 + disc
	lambda2 := trace/2 - disc
	if lambda2 < 0 {
		lambda2 = 0
	}

	pa := 0.5 * math.Atan2(2*ixy, diff)

	return Morphology{
		SemiMajor:     math.Sqrt(lambda1),
		SemiMinor:     math.Sqrt(lambda2),
		PositionAngle: pa * 180 / math.Pi,
	}
}

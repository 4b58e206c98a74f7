package column

import (
	"math"

	"github.com/go-astro/mkcore/measure"
)

// RowContext carries everything a row needs beyond the raw vector itself:
// identity bookkeeping, the zeropoint/cps-correction constants, and the
// resolved world coordinate (catalog.Build fills it for each object row
// with one ImgToWorld call per row).
type RowContext struct {
	Label            int
	HostObjectID     int
	SubLabelWithin   int
	NumSubLabels     int
	Vec              *measure.RawVector
	NDim             int
	Zeropoint        float64
	CPSCorr          float64
	SBNSigma         float64
	SBArea           float64
	World            []float64 // resolved RA/Dec[,spectral], nil if not requested
}

// MaterializeRow emits one output row: a map keyed by column name, values
// as float64 (identity columns that are conceptually integer-valued are
// still floats here; the table writer narrows on write, same as the
// teacher's schema-driven attribute conversion).
func MaterializeRow(cols []Column, ctx RowContext) map[string]float64 {
	row := make(map[string]float64, len(cols))
	for _, c := range cols {
		switch c.Kind {
		case KindIdentifier:
			emitIdentifier(row, c, ctx)
		case KindArea:
			emitArea(row, c, ctx)
		case KindCenter:
			emitCenter(row, c, ctx)
		case KindBrightness:
			emitBrightness(row, c, ctx)
		case KindMorphology:
			emitMorphology(row, c, ctx)
		case KindUpperLimit:
			emitUpperLimit(row, c, ctx)
		case KindSigmaClip:
			emitSigmaClip(row, c, ctx)
		case KindSurfaceBrightness:
			emitSurfaceBrightness(row, c, ctx)
		case KindWorldCoordinate:
			emitWorldCoordinate(row, c, ctx)
		}
	}
	return row
}

func emitIdentifier(row map[string]float64, c Column, ctx RowContext) {
	switch c.Name {
	case "LABEL":
		row[c.Name] = float64(ctx.Label)
	case "HOST_OBJECT_ID":
		row[c.Name] = float64(ctx.HostObjectID)
	case "SUB_LABEL":
		row[c.Name] = float64(ctx.SubLabelWithin)
	case "NUM_SUB_LABELS":
		row[c.Name] = float64(ctx.NumSubLabels)
	}
}

// emitArea materializes the "area" column family (spec §4.9: "emit
// numall, num, numall_xy, num_xy, sub-label numall, per-axis coordinate
// extrema (1-based FITS convention)").
func emitArea(row map[string]float64, c Column, ctx RowContext) {
	v := ctx.Vec
	row["NUMALL"] = v.Get(measure.NumAll)
	row["NUM"] = v.Get(measure.Num)
	row["NUMALL_XY"] = v.Get(measure.NumAllXY)
	row["NUM_XY"] = v.Get(measure.NumXY)
	for d := 0; d < ctx.NDim; d++ {
		row[axisSuffix("MIN", d)] = v.Get(measure.CoordMinSlot(d)) + 1
		row[axisSuffix("MAX", d)] = v.Get(measure.CoordMaxSlot(d)) + 1
	}
}

// emitCenter materializes flux-weighted centers with a geometric-center
// fallback when sumwht is 0 (spec §4.9 "Center columns").
func emitCenter(row map[string]float64, c Column, ctx RowContext) {
	v := ctx.Vec
	wht := v.Get(measure.SumWht)
	numAll := v.Get(measure.NumAll)
	for d := 0; d < ctx.NDim; d++ {
		var center float64
		if wht != 0 {
			center = v.Get(measure.VAxis(d)) / wht
		} else if numAll != 0 {
			center = v.Get(measure.SumCoordSlot(d)) / numAll
		} else {
			center = math.NaN()
		}
		row[axisSuffix("CENTER", d)] = center + 1
	}
}

func axisSuffix(base string, d int) string {
	names := []string{"_X", "_Y", "_Z"}
	return base + names[d]
}

// emitBrightness materializes flux, magnitude, brightness/magnitude
// error, and signal-to-noise (spec §4.9: brightness columns).
//
// BRIGHTNESS/MAGNITUDE carry no counts-per-second correction: cps_corr
// only enters the S/N formula. For a clump, brightness is the raw sum
// less the average river contribution over the clump's own area (spec
// §4.9 "subtracted of an average-river-sum for sub-labels"; spec §8
// scenario 4: `16·5 − (river_sum/river_area)·16`).
func emitBrightness(row map[string]float64, c Column, ctx RowContext) {
	v := ctx.Vec
	sum := v.Get(measure.SumValue)
	variance := v.Get(measure.SumVar)
	num := v.Get(measure.Num)
	numAll := v.Get(measure.NumAll)
	riverArea := v.Get(measure.RiverArea)

	riverMean := 0.0
	if riverArea > 0 {
		riverMean = v.Get(measure.RiverSum) / riverArea
	}

	brightness := sum
	if riverArea > 0 {
		brightness -= riverMean * numAll
	}

	cpsCorr := ctx.CPSCorr
	if cpsCorr <= 0 {
		cpsCorr = 1
	}
	mean := 0.0
	if num > 0 {
		mean = sum / num
	}
	sn := math.NaN()
	if variance > 0 && num > 0 {
		sn = math.Sqrt(1/cpsCorr) * (mean - riverMean) / math.Sqrt(variance)
	}

	switch c.Name {
	case "BRIGHTNESS":
		row[c.Name] = brightness
	case "BRIGHTNESS_ERR":
		row[c.Name] = math.Sqrt(variance)
	case "MAGNITUDE":
		if brightness <= 0 {
			row[c.Name] = math.NaN()
			break
		}
		row[c.Name] = ctx.Zeropoint - 2.5*math.Log10(brightness)
	case "MAGNITUDE_ERR":
		if sn == 0 || math.IsNaN(sn) {
			row[c.Name] = math.NaN()
			break
		}
		row[c.Name] = 2.5 / (sn * math.Log(10))
	case "SN":
		row[c.Name] = sn
	}
}

// emitMorphology materializes the second-order shape columns.
func emitMorphology(row map[string]float64, c Column, ctx RowContext) {
	v := ctx.Vec
	ax := measure.AxisX(ctx.NDim)
	ay := measure.AxisY(ctx.NDim)
	m := DeriveMorphology(
		v.Get(measure.Vxx), v.Get(measure.Vyy), v.Get(measure.Vxy), v.Get(measure.SumWht),
		v.Get(measure.VAxis(ax)), v.Get(measure.VAxis(ay)),
		v.Get(measure.ShiftSlot(ax)), v.Get(measure.ShiftSlot(ay)),
	)
	switch c.Name {
	case "SEMIMAJOR":
		row[c.Name] = m.SemiMajor
	case "SEMIMINOR":
		row[c.Name] = m.SemiMinor
	case "POSITIONANGLE":
		row[c.Name] = m.PositionAngle
	case "MORPHOLOGY", "CLUMPSGEOZ":
		row["SEMIMAJOR"] = m.SemiMajor
		row["SEMIMINOR"] = m.SemiMinor
		row["POSITIONANGLE"] = m.PositionAngle
	}
}

// emitUpperLimit reads the L8 summary out of the raw vector's
// upper-limit slots (spec §4.9: "Upper-limit columns: read from 4.8's
// per-label summary").
func emitUpperLimit(row map[string]float64, c Column, ctx RowContext) {
	v := ctx.Vec
	row["UL_SIGMA_CLIPPED"] = v.Get(measure.ULSigmaClipped)
	row["UL_BRIGHTNESS"] = v.Get(measure.ULBrightness)
	row["UL_QUANTILE"] = v.Get(measure.ULQuantile)
	row["UL_SKEWNESS"] = v.Get(measure.ULSkewness)
	row["UL_ACCEPTED"] = v.Get(measure.ULAccepted)
}

// emitSigmaClip reads the L7 pass-2 summary.
func emitSigmaClip(row map[string]float64, c Column, ctx RowContext) {
	v := ctx.Vec
	row["SIGCLIP_N"] = v.Get(measure.SigmaClipN)
	row["SIGCLIP_MEAN"] = v.Get(measure.SigmaClipMean)
	row["SIGCLIP_MEDIAN"] = v.Get(measure.SigmaClipMedian)
	row["SIGCLIP_STD"] = v.Get(measure.SigmaClipStd)
}

// emitSurfaceBrightness materializes the surface-brightness-limit column
// family restored from original_source (`columns.c`): the area needed at
// nsigma to be trusted, sb_lim = zeropoint - 2.5*log10(nsigma*sky_noise*
// sqrt(area)/area).
func emitSurfaceBrightness(row map[string]float64, c Column, ctx RowContext) {
	v := ctx.Vec
	skyNoise := math.Sqrt(v.Get(measure.SumVar) / math.Max(v.Get(measure.Num), 1))
	area := ctx.SBArea
	if area <= 0 {
		area = v.Get(measure.NumAll)
	}
	nsigma := ctx.SBNSigma
	if nsigma == 0 {
		nsigma = 3
	}
	if area <= 0 || skyNoise <= 0 {
		row["SB_LIM"] = math.NaN()
		return
	}
	row["SB_LIM"] = ctx.Zeropoint - 2.5*math.Log10(nsigma*skyNoise*math.Sqrt(area)/area)
}

// emitWorldCoordinate copies the resolved world coordinate into the row;
// catalog.Build resolves ctx.World per object row, and a nil ctx.World
// (as for clump rows) yields NaN RA/DEC.
func emitWorldCoordinate(row map[string]float64, c Column, ctx RowContext) {
	if ctx.World == nil {
		row["RA"] = math.NaN()
		row["DEC"] = math.NaN()
		return
	}
	row["RA"] = ctx.World[0]
	row["DEC"] = ctx.World[1]
	if len(ctx.World) > 2 {
		row["Z"] = ctx.World[2]
	}
}

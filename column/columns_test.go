package column

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-astro/mkcore/measure"
)

func TestEmitAreaMatchesRawVector(t *testing.T) {
	v := measure.NewRawVector()
	v.Add(measure.NumAll, 10)
	v.Add(measure.Num, 9)
	v.Set(measure.CoordMinSlot(0), 2)
	v.Set(measure.CoordMaxSlot(0), 5)
	v.Set(measure.CoordMinSlot(1), 1)
	v.Set(measure.CoordMaxSlot(1), 4)

	row := MaterializeRow([]Column{{Name: "AREA", Kind: KindArea}}, RowContext{Vec: v, NDim: 2})
	require.Equal(t, 10.0, row["NUMALL"])
	require.Equal(t, 9.0, row["NUM"])
	require.Equal(t, 3.0, row["MIN_X"])
	require.Equal(t, 6.0, row["MAX_X"])
}

func TestEmitCenterFallsBackToGeometricWhenWeightIsZero(t *testing.T) {
	v := measure.NewRawVector()
	v.Add(measure.NumAll, 4)
	v.Add(measure.SumCoordSlot(0), 8)
	v.Add(measure.SumCoordSlot(1), 12)

	row := MaterializeRow([]Column{{Name: "CENTER", Kind: KindCenter}}, RowContext{Vec: v, NDim: 2})
	require.Equal(t, 8.0/4.0+1, row["CENTER_X"])
	require.Equal(t, 12.0/4.0+1, row["CENTER_Y"])
}

func TestEmitBrightnessMagnitudeNegativeFluxIsNaN(t *testing.T) {
	v := measure.NewRawVector()
	v.Add(measure.SumValue, -5)

	row := MaterializeRow([]Column{{Name: "MAGNITUDE", Kind: KindBrightness}}, RowContext{Vec: v, CPSCorr: 1, Zeropoint: 25})
	require.True(t, math.IsNaN(row["MAGNITUDE"]))
}

// TestEmitBrightnessSubtractsRiverMeanOverClumpArea is the spec §8
// scenario 4 clump case: a uniform-background object split into two
// 16-pixel clumps by a river. Each clump's raw sum equals the river's
// per-pixel mean times its own area, so once the river contribution is
// subtracted the net brightness is zero (no excess signal over the
// shared background).
func TestEmitBrightnessSubtractsRiverMeanOverClumpArea(t *testing.T) {
	v := measure.NewRawVector()
	v.Add(measure.SumValue, 80) // 16 px * 5.0
	v.Set(measure.NumAll, 16)
	v.Set(measure.RiverArea, 4)
	v.Set(measure.RiverSum, 20) // riverMean = 5.0

	row := MaterializeRow([]Column{{Name: "BRIGHTNESS", Kind: KindBrightness}}, RowContext{Vec: v, CPSCorr: 1, Zeropoint: 25})
	require.InDelta(t, 0, row["BRIGHTNESS"], 1e-9)
}

func TestEmitBrightnessErrAndSN(t *testing.T) {
	v := measure.NewRawVector()
	v.Add(measure.SumValue, 40)
	v.Set(measure.Num, 10)
	v.Set(measure.SumVar, 4) // variance

	cols := []Column{
		{Name: "BRIGHTNESS_ERR", Kind: KindBrightness},
		{Name: "SN", Kind: KindBrightness},
		{Name: "MAGNITUDE_ERR", Kind: KindBrightness},
	}
	row := MaterializeRow(cols, RowContext{Vec: v, CPSCorr: 1, Zeropoint: 25})

	require.InDelta(t, 2, row["BRIGHTNESS_ERR"], 1e-9) // sqrt(4)
	// mean = 40/10 = 4, riverMean = 0 (no river), cps_corr = 1.
	wantSN := 4.0 / 2.0
	require.InDelta(t, wantSN, row["SN"], 1e-9)
	require.InDelta(t, 2.5/(wantSN*math.Log(10)), row["MAGNITUDE_ERR"], 1e-9)
}

func TestEmitBrightnessSNAppliesCPSCorrection(t *testing.T) {
	v := measure.NewRawVector()
	v.Add(measure.SumValue, 40)
	v.Set(measure.Num, 10)
	v.Set(measure.SumVar, 4)

	row := MaterializeRow([]Column{{Name: "SN", Kind: KindBrightness}}, RowContext{Vec: v, CPSCorr: 0.25, Zeropoint: 25})
	// sqrt(1/0.25) * (4-0) / sqrt(4) = 2 * 4 / 2 = 4
	require.InDelta(t, 4, row["SN"], 1e-9)
}

func TestEmitMorphologyCircularSourceHasEqualAxes(t *testing.T) {
	v := measure.NewRawVector()
	v.Set(measure.Vxx, 100)
	v.Set(measure.Vyy, 100)
	v.Set(measure.Vxy, 0)
	v.Set(measure.SumWht, 10)
	// Shift cancels pass 1's "+1" FITS-style offset (x = coord+1-shift) so
	// the flux-weighted mean sits at the shift origin, in shifted-moment
	// coordinates the source is centered and Vxx/Vyy/Vxy above already are
	// the mean-subtracted second moments.
	v.Set(measure.Shift0, 1)
	v.Set(measure.Shift1, 1)

	row := MaterializeRow([]Column{{Name: "MORPHOLOGY", Kind: KindMorphology}}, RowContext{Vec: v, NDim: 2})
	require.InDelta(t, row["SEMIMAJOR"], row["SEMIMINOR"], 1e-9)
	// Normalized second moments are 100/10 = 10; the axis is their square root.
	require.InDelta(t, math.Sqrt(10), row["SEMIMAJOR"], 1e-9)
}

// TestEmitMorphologySubtractsOffCenterMean is the direct regression for
// the mean-offset term: a source whose flux-weighted center is away from
// the shift origin must have its second moments corrected, not just the
// raw Vxx/Vyy/Vxy normalized by sumwht.
func TestEmitMorphologySubtractsOffCenterMean(t *testing.T) {
	v := measure.NewRawVector()
	// A single pixel of weight 10 sitting at shifted coordinate (3,3):
	// Vxx = Vyy = Vxy = 10*3*3 = 90, VAxis = 10*coord, Shift = 1 so the
	// shifted coordinate equals coord+1-1 = coord = 3 when VAxis/sumwht=3.
	v.Set(measure.Vxx, 90)
	v.Set(measure.Vyy, 90)
	v.Set(measure.Vxy, 90)
	v.Set(measure.SumWht, 10)
	v.Set(measure.VAxis1, 30) // axisX for NDim=2 is 1
	v.Set(measure.VAxis0, 30) // axisY for NDim=2 is 0
	v.Set(measure.Shift0, 1)
	v.Set(measure.Shift1, 1)

	row := MaterializeRow([]Column{{Name: "MORPHOLOGY", Kind: KindMorphology}}, RowContext{Vec: v, NDim: 2})
	// A single point mass has zero spread once its own mean is subtracted.
	require.InDelta(t, 0, row["SEMIMAJOR"], 1e-9)
	require.InDelta(t, 0, row["SEMIMINOR"], 1e-9)
}

func TestNeedFlagsForAreaCoversExtrema(t *testing.T) {
	f := needFlagsFor(Column{Kind: KindArea})
	require.True(t, f.Has(measure.NumAll))
	require.True(t, f.Has(measure.CoordMinSlot(0)))
	require.True(t, f.Has(measure.CoordMaxSlot(2)))
}

func TestUnionNeedsCombinesAcrossColumns(t *testing.T) {
	cols := []Column{
		{Kind: KindArea, Need: needFlagsFor(Column{Kind: KindArea})},
		{Kind: KindUpperLimit, Need: needFlagsFor(Column{Kind: KindUpperLimit})},
	}
	u := UnionNeeds(cols)
	require.True(t, u.Has(measure.NumAll))
	require.True(t, u.Has(measure.ULBrightness))
}

package catalog

import (
	"testing"

	mkcore "github.com/go-astro/mkcore"
	"github.com/go-astro/mkcore/measure"
	"github.com/stretchr/testify/require"
)

// buildTwoObjectScene lays out a 6x6 label image with two 2x2 square
// objects and a constant-valued values image, no clumps.
func buildTwoObjectScene(t *testing.T) (values, labels *mkcore.PixelArray) {
	t.Helper()
	shape := []int{6, 6}
	values = mkcore.NewPixelArray(shape, mkcore.DTypeFloat32)
	labels = mkcore.NewPixelArray(shape, mkcore.DTypeInt32)
	for i := range values.Data {
		values.Data[i] = 2
	}
	// object 1 at rows 0-1, cols 0-1; object 2 at rows 3-4, cols 3-4.
	set := func(r, c, lab int) {
		off := r*6 + c
		labels.Data[off] = float64(lab)
	}
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			set(r, c, 1)
		}
	}
	for r := 3; r < 5; r++ {
		for c := 3; c < 5; c++ {
			set(r, c, 2)
		}
	}
	return values, labels
}

func TestBuildObjectOnlyScene(t *testing.T) {
	values, labels := buildTwoObjectScene(t)

	res, err := Build(Config{
		Values:     values,
		Labels:     labels,
		NumWorkers: 2,
		ColumnList: "LABEL,AREA,CENTER,BRIGHTNESS(zeropoint=25)",
		Zeropoint:  25,
	})
	require.NoError(t, err)
	require.Len(t, res.ObjectRows, 2)

	row1 := res.ObjectRows[0]
	require.Equal(t, float64(4), row1["NUMALL"])
	require.Equal(t, float64(8), row1["BRIGHTNESS"])
	require.Empty(t, res.ClumpRows)
}

func TestBuildClumpedObjectBookkeeping(t *testing.T) {
	values, labels := buildTwoObjectScene(t)
	subLabels := mkcore.NewPixelArray(labels.Shape, mkcore.DTypeInt32)
	// split object 1's four pixels into two sub-labels, first-seen order
	// row-major: (0,0)->sub 5, (0,1)->sub 5, (1,0)->sub 3, (1,1)->sub 3.
	subLabels.Data[0*6+0] = 5
	subLabels.Data[0*6+1] = 5
	subLabels.Data[1*6+0] = 3
	subLabels.Data[1*6+1] = 3

	res, err := Build(Config{
		Values:     values,
		Labels:     labels,
		SubLabels:  subLabels,
		NumWorkers: 2,
		ColumnList: "LABEL,HOST_OBJECT_ID,SUB_LABEL,AREA",
		Zeropoint:  25,
	})
	require.NoError(t, err)
	require.Len(t, res.ClumpRows, 2)

	for _, row := range res.ClumpRows {
		require.Equal(t, float64(1), row["HOST_OBJECT_ID"])
		require.Equal(t, float64(2), row["NUMALL"])
	}
}

func TestBuildKeepIntegerIDsEmitsDegenerateRow(t *testing.T) {
	values, labels := buildTwoObjectScene(t)
	// relabel so only label 1 and label 3 exist, leaving label 2 a gap.
	for i, v := range labels.Data {
		if v == 2 {
			labels.Data[i] = 3
		}
	}

	res, err := Build(Config{
		Values:        values,
		Labels:        labels,
		NumWorkers:    1,
		InBetweenInts: true,
		ColumnList:    "LABEL,AREA",
	})
	require.NoError(t, err)
	require.Len(t, res.ObjectRows, 3)
	require.Equal(t, float64(0), res.ObjectRows[1]["NUMALL"])
}

func TestSigmaClipColumnPopulatesSummary(t *testing.T) {
	values, labels := buildTwoObjectScene(t)

	res, err := Build(Config{
		Values:     values,
		Labels:     labels,
		NumWorkers: 1,
		ColumnList: "LABEL,SIGMACLIP",
		SigmaClip:  measure.SigmaClipConfig{Multiple: 3, Tolerance: 5},
	})
	require.NoError(t, err)
	require.Equal(t, float64(2), res.ObjectRows[0]["SIGCLIP_MEAN"])
}

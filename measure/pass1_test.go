package measure

import (
	"testing"

	mkcore "github.com/go-astro/mkcore"
	"github.com/stretchr/testify/require"
)

func buildLabeled10x10(t *testing.T) (*mkcore.PixelArray, *mkcore.PixelArray) {
	t.Helper()
	labels := mkcore.NewPixelArray([]int{10, 10}, mkcore.DTypeInt32)
	values := mkcore.NewPixelArray([]int{10, 10}, mkcore.DTypeFloat32)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			off := y*10 + x
			values.Data[off] = 1.0
			switch {
			case x+y <= 3:
				labels.Data[off] = 1
			case x+y >= 15:
				labels.Data[off] = 2
			}
		}
	}
	return labels, values
}

func TestAccumulateAreaMatchesPixelCount(t *testing.T) {
	labels, values := buildLabeled10x10(t)
	idx, err := mkcore.BuildLabelIndex(labels, mkcore.BuildLabelIndexOptions{})
	require.NoError(t, err)

	tile, ok := idx.TileFor(1)
	require.True(t, ok)

	res := Accumulate(1, tile, AccumulateOptions{Values: values, Labels: labels})
	require.Equal(t, float64(10), res.Object.Get(NumAll))
	require.Equal(t, float64(10), res.Object.Get(Num))
}

func TestAccumulateFluxWeightedCenterInsideTile(t *testing.T) {
	labels, values := buildLabeled10x10(t)
	idx, err := mkcore.BuildLabelIndex(labels, mkcore.BuildLabelIndexOptions{})
	require.NoError(t, err)

	tile, _ := idx.TileFor(2)
	res := Accumulate(2, tile, AccumulateOptions{Values: values, Labels: labels})

	wht := res.Object.Get(SumWht)
	require.Greater(t, wht, 0.0)

	cx := res.Object.Get(VAxis(1)) / wht
	require.GreaterOrEqual(t, cx, float64(tile.Origin[1]))
	require.LessOrEqual(t, cx, float64(tile.Origin[1]+tile.Extents[1]-1))
}

package mkcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubviewRejectsOutOfBounds(t *testing.T) {
	a := NewPixelArray([]int{10, 10}, DTypeFloat64)
	_, err := Subview(a, []int{5, 5}, []int{6, 6})
	require.Error(t, err)
}

func TestIterRunsRowMajor(t *testing.T) {
	a := NewPixelArray([]int{4, 5}, DTypeFloat64)
	for i := range a.Data {
		a.Data[i] = float64(i)
	}
	tile, err := Subview(a, []int{1, 1}, []int{2, 3})
	require.NoError(t, err)

	runs := tile.IterRuns()
	require.Len(t, runs, 2)
	require.Equal(t, 3, runs[0].Length)

	var got []float64
	for _, r := range runs {
		for k := 0; k < r.Length; k++ {
			got = append(got, a.Data[r.Start+k])
		}
	}
	require.Equal(t, []float64{6, 7, 8, 11, 12, 13}, got)
}

func TestFullArrayTileCoversEverything(t *testing.T) {
	a := NewPixelArray([]int{3, 3}, DTypeFloat64)
	tile := FullArrayTile(a)
	require.Equal(t, a.Len(), tile.Volume())
}

package measure

import (
	"testing"

	mkcore "github.com/go-astro/mkcore"
	"github.com/stretchr/testify/require"
)

// buildRiverScene builds the spec's clump/river scenario: one object
// covering a 10x10 image, two 4x4 clumps separated by a single row of
// river (sub-label -1), uniform value 5.0.
func buildRiverScene(t *testing.T) (labels, subLabels, values *mkcore.PixelArray) {
	t.Helper()
	labels = mkcore.NewPixelArray([]int{10, 10}, mkcore.DTypeInt32)
	subLabels = mkcore.NewPixelArray([]int{10, 10}, mkcore.DTypeInt32)
	values = mkcore.NewPixelArray([]int{10, 10}, mkcore.DTypeFloat32)

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			off := y*10 + x
			labels.Data[off] = 1
			values.Data[off] = 5.0
			switch {
			case y <= 3 && x <= 3:
				subLabels.Data[off] = 1
			case y == 4 && x <= 3:
				subLabels.Data[off] = -1
			case y >= 5 && y <= 8 && x <= 3:
				subLabels.Data[off] = 2
			}
		}
	}
	return labels, subLabels, values
}

func TestRiverAdjacencySumsMatchAdjacentCellsOnly(t *testing.T) {
	labels, subLabels, values := buildRiverScene(t)
	tile := mkcore.FullArrayTile(labels)

	relabel := map[int]int{1: 1, 2: 2}
	res := Accumulate(1, tile, AccumulateOptions{
		Values:    values,
		Labels:    labels,
		SubLabels: subLabels,
		Relabel:   relabel,
	})

	c1 := res.Clumps[1]
	c2 := res.Clumps[2]

	require.Equal(t, float64(16), c1.Get(NumAll))
	require.Equal(t, float64(16), c2.Get(NumAll))

	require.Equal(t, float64(4), c1.Get(RiverArea))
	require.Equal(t, float64(20), c1.Get(RiverSum))
	require.Equal(t, float64(4), c2.Get(RiverArea))
	require.Equal(t, float64(20), c2.Get(RiverSum))
}

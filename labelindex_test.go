package mkcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildLabelIndexBoundingTiles(t *testing.T) {
	labels := NewPixelArray([]int{10, 10}, DTypeInt32)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			off := y*10 + x
			switch {
			case x+y <= 3:
				labels.Data[off] = 1
			case x+y >= 15:
				labels.Data[off] = 2
			}
		}
	}

	idx, err := BuildLabelIndex(labels, BuildLabelIndexOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, idx.MaxLabel)

	t1, ok := idx.TileFor(1)
	require.True(t, ok)
	require.LessOrEqual(t, t1.Volume(), 16)

	t2, ok := idx.TileFor(2)
	require.True(t, ok)
	require.LessOrEqual(t, t2.Volume(), 16)
}

func TestBuildLabelIndexRejectsZeroObjects(t *testing.T) {
	labels := NewPixelArray([]int{4, 4}, DTypeInt32)
	_, err := BuildLabelIndex(labels, BuildLabelIndexOptions{})
	require.Error(t, err)
}

func TestBuildLabelIndexKeepIntegerIDs(t *testing.T) {
	labels := NewPixelArray([]int{4, 4}, DTypeInt32)
	labels.Data[0] = 3
	idx, err := BuildLabelIndex(labels, BuildLabelIndexOptions{KeepIntegerIDs: true})
	require.NoError(t, err)

	_, present := idx.TileFor(1)
	require.False(t, present)
	_, present = idx.TileFor(3)
	require.True(t, present)
}

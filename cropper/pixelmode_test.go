package cropper

import (
	"math"
	"testing"

	mkcore "github.com/go-astro/mkcore"
	"github.com/stretchr/testify/require"
)

func buildInput(t *testing.T) *mkcore.PixelArray {
	t.Helper()
	img := mkcore.NewPixelArray([]int{20, 20}, mkcore.DTypeFloat32)
	for i := range img.Data {
		img.Data[i] = float64(i)
	}
	return img
}

func TestParseSectionGrammar(t *testing.T) {
	secs, err := ParseSection("5:10,*,*-2")
	require.NoError(t, err)
	require.Equal(t, AxisSection{Lo: 5, Hi: 10}, secs[0])
	require.True(t, secs[1].Full)
	require.Equal(t, 2, secs[2].Shrink)
}

func TestCropPixelModeSectionWithinBounds(t *testing.T) {
	input := buildInput(t)
	req := CropRequest{Mode: ModePixel, Section: "5:10,5:10"}
	outs, err := CropPixelMode([]CropRequest{req}, input, Options{})
	require.NoError(t, err)
	require.Len(t, outs, 1)
	require.Equal(t, []int{6, 6}, outs[0].Image.Shape)
}

func TestCropPixelModeOutOfBoundsNoBlankClips(t *testing.T) {
	input := buildInput(t)
	req := CropRequest{Mode: ModePixel, CenterPixel: []float64{1, 1}, WidthPixels: []int{11, 11}}
	outs, err := CropPixelMode([]CropRequest{req}, input, Options{NoBlank: true})
	require.NoError(t, err)
	require.Len(t, outs, 1)
	require.Less(t, outs[0].Image.Shape[0], 11)
}

func TestCropPixelModeOutOfBoundsKeepsBlankBorder(t *testing.T) {
	input := buildInput(t)
	req := CropRequest{Mode: ModePixel, CenterPixel: []float64{1, 1}, WidthPixels: []int{11, 11}}
	outs, err := CropPixelMode([]CropRequest{req}, input, Options{})
	require.NoError(t, err)
	require.Len(t, outs, 1)
	require.Equal(t, []int{11, 11}, outs[0].Image.Shape)
	require.True(t, math.IsNaN(outs[0].Image.Data[0]))
}

func TestNormalizeWidthIncrementsEven(t *testing.T) {
	require.Equal(t, 11, NormalizeWidth(10))
	require.Equal(t, 11, NormalizeWidth(11))
}

func TestInferModeFromCelestialFields(t *testing.T) {
	req := CropRequest{CenterCelestial: []float64{10, 20}}
	require.Equal(t, ModeCelestial, InferMode(req))

	req2 := CropRequest{CenterPixel: []float64{5, 5}}
	require.Equal(t, ModePixel, InferMode(req2))
}

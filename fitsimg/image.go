// Package fitsimg implements the external on-disk image-container
// collaborator spec §1 keeps opaque: reading and writing FITS images
// into/from mkcore.PixelArray, using github.com/astrogo/fitsio.
package fitsimg

import (
	"errors"
	"io"

	"github.com/astrogo/fitsio"

	mkcore "github.com/go-astro/mkcore"
)

var ErrNoImageHDU = errors.New("fitsimg: primary HDU is not an image")
var ErrUnsupportedBitpix = errors.New("fitsimg: unsupported BITPIX for catalog input")

// Open reads the primary image HDU of r into a PixelArray, promoting every
// element type to Float64 (spec §3: "catalog inputs are promoted to a
// uniform floating type before measurement").
func Open(r io.ReadSeeker) (*mkcore.PixelArray, *fitsio.Header, error) {
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, nil, mkcore.NewRuntimeIOError("fitsimg.Open", "", err)
	}
	defer f.Close()

	hdu := f.HDU(0)
	img, ok := hdu.(fitsio.Image)
	if !ok {
		return nil, nil, mkcore.NewRuntimeIOError("fitsimg.Open", "", ErrNoImageHDU)
	}

	axes := img.Header().Axes()
	shape := reverseAxes(axes)

	n := 1
	for _, s := range shape {
		n *= s
	}

	data := make([]float64, n)
	if err := img.Read(&data); err != nil {
		return nil, nil, mkcore.NewRuntimeIOError("fitsimg.Open", "", err)
	}

	arr := mkcore.NewPixelArray(shape, mkcore.DTypeFloat64)
	copy(arr.Data, data)
	return arr, img.Header(), nil
}

// Save writes arr as a single-HDU FITS float64 image to w, copying every
// card in extraCards into the primary header. mkcrop passes only the
// crop's ICF provenance keys: no WCS cards reach the output, and
// cropper.UpdateReferencePixel has no caller.
func Save(w io.Writer, arr *mkcore.PixelArray, extraCards []fitsio.Card) error {
	f, err := fitsio.Create(w)
	if err != nil {
		return mkcore.NewRuntimeIOError("fitsimg.Save", "", err)
	}
	defer f.Close()

	axes := reverseAxes(arr.Shape)
	img := fitsio.NewImage(-64, axes)
	defer img.Close()

	for _, c := range extraCards {
		if err := img.Header().Append(c); err != nil {
			return mkcore.NewRuntimeIOError("fitsimg.Save", "", err)
		}
	}

	if err := img.Write(arr.Data); err != nil {
		return mkcore.NewRuntimeIOError("fitsimg.Save", "", err)
	}
	return f.Write(img)
}

// reverseAxes converts between FITS' fastest-first NAXISn ordering and
// PixelArray's row-major (slowest-first) Shape convention.
func reverseAxes(axes []int) []int {
	out := make([]int, len(axes))
	for i, a := range axes {
		out[len(axes)-1-i] = a
	}
	return out
}

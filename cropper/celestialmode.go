package cropper

import (
	mkcore "github.com/go-astro/mkcore"
	"github.com/go-astro/mkcore/geocore"
)

// Input is one celestial-mode input image: its pixel array, WCS handle,
// and a human name used in the stitched output's provenance headers.
type Input struct {
	Name   string
	Image  *mkcore.PixelArray
	Handle mkcore.WCSHandle
}

// inputSkyRect derives the input's own celestial footprint by converting
// its four corner pixels to world coordinates and taking the RA/Dec span,
// then building a geocore.Rect the same way a request's center+width
// would (spec §4.3's corner-derivation model, applied to an existing image
// instead of a requested crop).
func inputSkyRect(in Input, wcs mkcore.WCS) (geocore.Rect, error) {
	ny, nx := in.Image.Shape[0], in.Image.Shape[1]
	corners := []mkcore.Point{
		{1, 1},
		{1, float64(nx)},
		{float64(ny), 1},
		{float64(ny), float64(nx)},
	}
	world, err := wcs.ImgToWorld(in.Handle, corners)
	if err != nil {
		return geocore.Rect{}, mkcore.NewRuntimeIOError("inputSkyRect", in.Name, err)
	}

	minRA, maxRA := world[0][0], world[0][0]
	minDec, maxDec := world[0][1], world[0][1]
	for _, w := range world[1:] {
		if w[0] < minRA {
			minRA = w[0]
		}
		if w[0] > maxRA {
			maxRA = w[0]
		}
		if w[1] < minDec {
			minDec = w[1]
		}
		if w[1] > maxDec {
			maxDec = w[1]
		}
	}
	return geocore.Rect{R0: maxRA, D0: minDec, Sx: maxRA - minRA, Sy: maxDec - minDec}, nil
}

// CropCelestialMode implements spec §4.6's celestial-mode algorithm:
// derive each request's sky rectangle, test overlap against every input,
// project the request center through each overlapping input's
// world-to-pixel transform, and stitch the copies into one output.
func CropCelestialMode(requests []CropRequest, inputs []Input, wcs mkcore.WCS, opts Options) ([]*CropOutput, error) {
	if ac, ok := wcs.(mkcore.AlignmentChecker); ok {
		for _, in := range inputs {
			if err := mkcore.CheckAlignment(ac, in.Handle); err != nil {
				return nil, err
			}
		}
	}

	outs := make([]*CropOutput, 0, len(requests))
	for i, req := range requests {
		out, err := cropOneCelestialRequest(req, inputs, wcs, opts)
		if err != nil {
			return nil, err
		}
		if out != nil {
			if out.Name == "" {
				out.Name = AutoName(i)
			}
			outs = append(outs, out)
		}
	}
	return outs, nil
}

func cropOneCelestialRequest(req CropRequest, inputs []Input, wcs mkcore.WCS, opts Options) (*CropOutput, error) {
	ra, dec := req.CenterCelestial[0], req.CenterCelestial[1]
	hx, hy := req.WidthDegrees[0]/2, req.WidthDegrees[1]/2
	reqRect := geocore.ReferenceCorner(ra, dec, hx, hy)

	var out *mkcore.PixelArray
	headers := map[string]string{}
	anyOverlap := false
	var outShape []int
	var outOrigin []int

	for _, in := range inputs {
		inRect, err := inputSkyRect(in, wcs)
		if err != nil {
			return nil, err
		}
		if !geocore.Overlap(reqRect, inRect) {
			continue
		}

		centerPix, err := wcs.WorldToImg(in.Handle, []mkcore.Point{{ra, dec}})
		if err != nil {
			return nil, mkcore.NewRuntimeIOError("cropOneCelestialRequest", in.Name, err)
		}
		pixelScale := []float64{inRect.Sy / float64(in.Image.Shape[0]), inRect.Sx / float64(in.Image.Shape[1])}
		widthPixels := estimateWidthPixels(req.WidthDegrees, pixelScale)

		pixReq := CropRequest{
			CenterPixel: centerPix[0],
			WidthPixels: widthPixels,
			Name:        req.Name,
		}
		requestedRect, err := ResolvePixelRect(pixReq, in.Image.NDim())
		if err != nil {
			return nil, err
		}

		if out == nil {
			outShape = requestedRect.Extents
			outOrigin = requestedRect.Origin
			out = mkcore.NewPixelArray(outShape, in.Image.DType)
			out.Blank = in.Image.Blank
			fillBlank(out)
		}

		clipped, offset, ok := Intersect(requestedRect, in.Image.Shape)
		if !ok {
			continue
		}
		copyRect(out, in.Image, clipped, offset, outOrigin)
		headers["ICANFN"+itoa(len(headers))] = in.Name + " " + formatRange(clipped)
		anyOverlap = true
	}

	if !anyOverlap {
		return nil, nil
	}

	if len(req.CelestialPolygon) > 0 {
		applyPolygonMask(out, req.CelestialPolygon, outOrigin, req.PolygonKeepOutside)
	}

	if !centerFilled(out, opts.CheckCenterBoxWidth) && !opts.KeepBlankCenter {
		return nil, nil
	}

	return &CropOutput{Name: req.Name, Image: out, Headers: headers}, nil
}

// estimateWidthPixels converts a requested angular width to a pixel count.
// The core never computes a WCS Jacobian itself (spec §1 keeps WCS math
// opaque beyond img_to_world/world_to_img), so this takes the nominal
// pixel scale the caller resolved from the input's own WCS handle and
// falls back to a conservative 1 arcsec/pixel guess only when none was
// supplied, rounding up to the odd-width invariant (spec §3).
func estimateWidthPixels(widthDegrees []float64, pixelScaleDegrees []float64) []int {
	out := make([]int, len(widthDegrees))
	for d := range widthDegrees {
		scale := pixelScaleDegrees[d]
		if scale <= 0 {
			scale = 1.0 / 3600.0
		}
		w := NormalizeWidth(int(widthDegrees[d] / scale))
		if w < 3 {
			w = 3
		}
		out[d] = w
	}
	return out
}

package cropper

import (
	"math"

	mkcore "github.com/go-astro/mkcore"
)

// PixelRect is a first-pixel/extents rectangle in 0-based pixel
// coordinates, the common currency between section resolution,
// intersection, and the stitching copy loop.
type PixelRect struct {
	Origin  []int
	Extents []int
}

// ResolvePixelRect turns a pixel-mode request into the requested (possibly
// out-of-bounds) rectangle, before intersection with any input (spec §4.6
// "resolve (center+width | explicit section | polygon) to a first-pixel /
// last-pixel rectangle").
func ResolvePixelRect(req CropRequest, ndim int) (PixelRect, error) {
	switch {
	case req.Section != "":
		secs, err := ParseSection(req.Section)
		if err != nil {
			return PixelRect{}, err
		}
		origin := make([]int, len(secs))
		extents := make([]int, len(secs))
		for d, s := range secs {
			if s.Full {
				return PixelRect{}, mkcore.NewContractError("ResolvePixelRect", errNeedsInputShape(d))
			}
			origin[d] = s.Lo - 1
			extents[d] = s.Hi - s.Lo + 1
		}
		return PixelRect{Origin: origin, Extents: extents}, nil

	case len(req.CenterPixel) > 0:
		origin := make([]int, ndim)
		extents := make([]int, ndim)
		for d := 0; d < ndim; d++ {
			w := NormalizeWidth(req.WidthPixels[d])
			half := w / 2
			origin[d] = int(req.CenterPixel[d]) - 1 - half
			extents[d] = w
		}
		return PixelRect{Origin: origin, Extents: extents}, nil

	case len(req.PixelPolygon) > 0:
		return boundingRectOfPolygon(req.PixelPolygon), nil

	default:
		return PixelRect{}, mkcore.NewContractError("ResolvePixelRect", errNoRequestKind())
	}
}

// ResolvePixelRectWithShape resolves a '*' section against inputShape
// before falling back to ResolvePixelRect for the non-full axes.
func ResolvePixelRectWithShape(req CropRequest, inputShape []int) (PixelRect, error) {
	if req.Section == "" {
		return ResolvePixelRect(req, len(inputShape))
	}
	secs, err := ParseSection(req.Section)
	if err != nil {
		return PixelRect{}, err
	}
	origin := make([]int, len(secs))
	extents := make([]int, len(secs))
	for d, s := range secs {
		switch {
		case s.Full && s.Grow > 0:
			origin[d] = -s.Grow
			extents[d] = inputShape[d] + 2*s.Grow
		case s.Full && s.Shrink > 0:
			origin[d] = s.Shrink
			extents[d] = inputShape[d] - 2*s.Shrink
		case s.Full:
			origin[d] = 0
			extents[d] = inputShape[d]
		default:
			origin[d] = s.Lo - 1
			extents[d] = s.Hi - s.Lo + 1
		}
	}
	return PixelRect{Origin: origin, Extents: extents}, nil
}

func boundingRectOfPolygon(poly [][2]float64) PixelRect {
	minX, minY := poly[0][0], poly[0][1]
	maxX, maxY := poly[0][0], poly[0][1]
	for _, p := range poly {
		if p[0] < minX {
			minX = p[0]
		}
		if p[0] > maxX {
			maxX = p[0]
		}
		if p[1] < minY {
			minY = p[1]
		}
		if p[1] > maxY {
			maxY = p[1]
		}
	}
	return PixelRect{
		Origin:  []int{int(minY) - 1, int(minX) - 1},
		Extents: []int{int(maxY-minY) + 1, int(maxX-minX) + 1},
	}
}

func errNeedsInputShape(d int) error {
	return mkcore.ErrShapeMismatch
}

func errNoRequestKind() error {
	return mkcore.ErrShapeMismatch
}

// Intersect clips rect against an array of shape parentShape, returning
// the clipped rectangle and the offset that was subtracted from rect's
// origin (needed to update coordinate-reference-pixel metadata), and
// false when the intersection is empty.
func Intersect(rect PixelRect, parentShape []int) (clipped PixelRect, offset []int, ok bool) {
	n := len(parentShape)
	clipped = PixelRect{Origin: make([]int, n), Extents: make([]int, n)}
	offset = make([]int, n)
	for d := 0; d < n; d++ {
		lo := rect.Origin[d]
		hi := rect.Origin[d] + rect.Extents[d]
		if lo < 0 {
			lo = 0
		}
		if hi > parentShape[d] {
			hi = parentShape[d]
		}
		if hi <= lo {
			return PixelRect{}, nil, false
		}
		clipped.Origin[d] = lo
		clipped.Extents[d] = hi - lo
		offset[d] = lo - rect.Origin[d]
	}
	return clipped, offset, true
}

// CropOutput is one materialized crop: the output array plus the header
// metadata the cropper must propagate (spec §4.6 "write per-output
// headers recording the source range").
type CropOutput struct {
	Name    string
	Image   *mkcore.PixelArray
	Headers map[string]string
}

// CropPixelMode implements spec §4.6's pixel-mode algorithm for one input
// array against a list of requests.
func CropPixelMode(requests []CropRequest, input *mkcore.PixelArray, opts Options) ([]*CropOutput, error) {
	outs := make([]*CropOutput, 0, len(requests))
	for i, req := range requests {
		out, err := cropOnePixelRequest(req, input, opts)
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

func cropOnePixelRequest(req CropRequest, input *mkcore.PixelArray, opts Options) (*CropOutput, error) {
	requested, err := ResolvePixelRectWithShape(req, input.Shape)
	if err != nil {
		return nil, err
	}
	clipped, offset, ok := Intersect(requested, input.Shape)
	if !ok {
		if opts.KeepBlankCenter {
			out := allocateBlank(requested, input)
			return &CropOutput{Name: req.Name, Image: out, Headers: sourceRangeHeader(requested, requested)}, nil
		}
		return nil, nil
	}

	outShape := requested.Extents
	outOrigin := requested.Origin
	if opts.NoBlank {
		outShape = clipped.Extents
		outOrigin = clipped.Origin
	}

	out := mkcore.NewPixelArray(outShape, input.DType)
	out.Blank = input.Blank
	fillBlank(out)
	copyRect(out, input, clipped, offset, outOrigin)

	if len(req.PixelPolygon) > 0 {
		applyPolygonMask(out, req.PixelPolygon, outOrigin, req.PolygonKeepOutside)
	}

	if !centerFilled(out, opts.CheckCenterBoxWidth) && !opts.KeepBlankCenter {
		return nil, nil
	}

	return &CropOutput{Name: req.Name, Image: out, Headers: sourceRangeHeader(clipped, requested)}, nil
}

func allocateBlank(rect PixelRect, input *mkcore.PixelArray) *mkcore.PixelArray {
	out := mkcore.NewPixelArray(rect.Extents, input.DType)
	out.Blank = input.Blank
	fillBlank(out)
	return out
}

func fillBlank(a *mkcore.PixelArray) {
	if a.DType.IsFloat() {
		for i := range a.Data {
			a.Data[i] = math.NaN()
		}
		return
	}
	if a.Blank.Registered {
		for i := range a.Data {
			a.Data[i] = a.Blank.Value
		}
	}
}

// copyRect copies the clipped region of input into out, where outOrigin is
// out's position in input's coordinate frame (so dst = src - outOrigin).
func copyRect(out, input *mkcore.PixelArray, clipped PixelRect, offset, outOrigin []int) {
	n := len(clipped.Extents)
	srcShape := input.Shape
	srcStrides := input.Strides()
	dstStrides := out.Strides()

	total := 1
	for _, e := range clipped.Extents {
		total *= e
	}
	rel := make([]int, n)
	for k := 0; k < total; k++ {
		decomposeRowMajor(k, clipped.Extents, rel)
		srcOff, dstOff := 0, 0
		for d := 0; d < n; d++ {
			srcCoord := clipped.Origin[d] + rel[d]
			dstCoord := srcCoord - outOrigin[d]
			srcOff += srcCoord * srcStrides[d]
			dstOff += dstCoord * dstStrides[d]
		}
		_ = srcShape
		out.Data[dstOff] = input.Data[srcOff]
	}
}

func decomposeRowMajor(rel int, extents []int, out []int) {
	rem := rel
	for d := len(extents) - 1; d >= 0; d-- {
		out[d] = rem % extents[d]
		rem /= extents[d]
	}
}

func sourceRangeHeader(clipped, requested PixelRect) map[string]string {
	return map[string]string{
		"ICF1PIX": formatRange(clipped),
		"ICFNPIX": formatRange(requested),
	}
}

func formatRange(r PixelRect) string {
	s := ""
	for d := range r.Origin {
		if d > 0 {
			s += ","
		}
		s += itoa(r.Origin[d]+1) + ":" + itoa(r.Origin[d]+r.Extents[d])
	}
	return s
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

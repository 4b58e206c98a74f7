package fitsimg

import (
	"errors"
	"math"

	mkcore "github.com/go-astro/mkcore"
)

// LinearWCS implements mkcore.WCS with the CD-matrix linear tangent-plane
// approximation (RA/Dec = CRVAL + CD*(pixel-CRPIX)), grounded on
// observerly/skysolve's PixelToEquatorialCoordinate. This is a local
// linear approximation, not a full spherical TAN projection: spec §1
// keeps WCS math behind an opaque collaborator interface, and the core
// never assumes more about the transform than "pixel in, world out,
// batched, invertible near the reference point".
type LinearWCS struct{}

var ErrNotLinearWCSCards = errors.New("fitsimg: handle is not a LinearWCSCards")

// ImgToWorld converts each pixel point to (RA, Dec) via the handle's CD
// matrix and reference pixel/value.
func (LinearWCS) ImgToWorld(handle mkcore.WCSHandle, points []mkcore.Point) ([]mkcore.Point, error) {
	cards, ok := handle.(LinearWCSCards)
	if !ok {
		return nil, mkcore.NewContractError("LinearWCS.ImgToWorld", ErrNotLinearWCSCards)
	}
	out := make([]mkcore.Point, len(points))
	for i, p := range points {
		dx := p[0] - cards.CRPIX1
		dy := p[1] - cards.CRPIX2
		ra := cards.CRVAL1 + cards.CD11*dx + cards.CD12*dy
		dec := cards.CRVAL2 + cards.CD21*dx + cards.CD22*dy
		out[i] = mkcore.Point{ra, dec}
	}
	return out, nil
}

// WorldToImg inverts ImgToWorld by solving the 2x2 CD-matrix system.
func (LinearWCS) WorldToImg(handle mkcore.WCSHandle, points []mkcore.Point) ([]mkcore.Point, error) {
	cards, ok := handle.(LinearWCSCards)
	if !ok {
		return nil, mkcore.NewContractError("LinearWCS.WorldToImg", ErrNotLinearWCSCards)
	}
	det := cards.CD11*cards.CD22 - cards.CD12*cards.CD21
	if det == 0 || math.IsNaN(det) {
		return nil, mkcore.NewContractError("LinearWCS.WorldToImg", errors.New("singular CD matrix"))
	}
	out := make([]mkcore.Point, len(points))
	for i, p := range points {
		dra := p[0] - cards.CRVAL1
		ddec := p[1] - cards.CRVAL2
		dx := (cards.CD22*dra - cards.CD12*ddec) / det
		dy := (cards.CD11*ddec - cards.CD21*dra) / det
		out[i] = mkcore.Point{dx + cards.CRPIX1, dy + cards.CRPIX2}
	}
	return out, nil
}

// AlignedAxes reports true for any LinearWCSCards handle and false for
// any other handle type: LinearWCSCards carries no axis-order metadata
// beyond RA-then-Dec, which this adapter always assumes.
func (LinearWCS) AlignedAxes(handle mkcore.WCSHandle) bool {
	_, ok := handle.(LinearWCSCards)
	return ok
}

package fitsimg

import (
	"github.com/astrogo/fitsio"
)

// LinearWCSCards extracts the CRPIX/CRVAL/CD-matrix cards a simple linear
// (TAN-plane-approximation) WCS needs from a FITS header. Cards absent
// from the header take these defaults: CRPIX 1, CRVAL 0, and a 2x2
// identity CD matrix, so a WCS-less input maps pixel p to world p-1.
type LinearWCSCards struct {
	CRPIX1, CRPIX2 float64
	CRVAL1, CRVAL2 float64
	CD11, CD12     float64
	CD21, CD22     float64
}

// ExtractLinearWCS reads the eight linear-WCS keywords from hdr, falling
// back to CDELT1/CDELT2 on the diagonal when no CD matrix is present (the
// common simple-imaging-WCS convention FITS readers accept as a CD proxy).
func ExtractLinearWCS(hdr *fitsio.Header) LinearWCSCards {
	get := func(name string, def float64) float64 {
		card := hdr.Get(name)
		if card == nil {
			return def
		}
		v, ok := toFloat(card.Value)
		if !ok {
			return def
		}
		return v
	}

	cd11, cd12 := get("CD1_1", 0), get("CD1_2", 0)
	cd21, cd22 := get("CD2_1", 0), get("CD2_2", 0)
	if cd11 == 0 && cd12 == 0 && cd21 == 0 && cd22 == 0 {
		cd11 = get("CDELT1", 1)
		cd22 = get("CDELT2", 1)
	}

	return LinearWCSCards{
		CRPIX1: get("CRPIX1", 1),
		CRPIX2: get("CRPIX2", 1),
		CRVAL1: get("CRVAL1", 0),
		CRVAL2: get("CRVAL2", 0),
		CD11:   cd11,
		CD12:   cd12,
		CD21:   cd21,
		CD22:   cd22,
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

// DateObs reads the DATE-OBS keyword as a plain string, or "" if absent.
func DateObs(hdr *fitsio.Header) string {
	card := hdr.Get("DATE-OBS")
	if card == nil {
		return ""
	}
	s, _ := card.Value.(string)
	return s
}

// Package cropper implements the cropper core (spec §4.6, L6):
// pixel-mode and celestial-mode crop orchestration, per-request
// stitching from zero or more inputs, polygon masking, and coordinate
// header propagation.
package cropper

import (
	"strconv"
	"strings"

	mkcore "github.com/go-astro/mkcore"
)

// Mode selects pixel-coordinate or celestial-coordinate crop requests
// (spec §3 "Crop request").
type Mode int

const (
	ModeUnset Mode = iota
	ModePixel
	ModeCelestial
)

// AxisSection is one axis of the explicit-section grammar `lo:hi`, `*`,
// `*+k`, `*-k` (spec §6 `section` parameter).
type AxisSection struct {
	Full  bool // '*' alone: the whole axis
	Lo    int  // 1-based, inclusive; ignored when Full
	Hi    int  // 1-based, inclusive; ignored when Full
	Grow  int  // '*+k': grow the full axis symmetrically by k on each side
	Shrink int // '*-k': shrink the full axis symmetrically by k on each side
}

// ParseSection parses one comma-separated axis spec list, e.g.
// "100:200,*,*-5", into per-axis AxisSection values. Grounded on go-gsf
// `decode/params.go`'s small hand-rolled string-splitting parsers
// (`parse_reftime`): split on the delimiter, switch on prefix, no
// external parser needed for a grammar this small.
func ParseSection(s string) ([]AxisSection, error) {
	parts := strings.Split(s, ",")
	out := make([]AxisSection, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		sec, err := parseAxisSection(p)
		if err != nil {
			return nil, mkcore.NewContractError("ParseSection", err)
		}
		out[i] = sec
	}
	return out, nil
}

func parseAxisSection(p string) (AxisSection, error) {
	switch {
	case p == "*":
		return AxisSection{Full: true}, nil
	case strings.HasPrefix(p, "*+"):
		k, err := strconv.Atoi(p[2:])
		if err != nil {
			return AxisSection{}, err
		}
		return AxisSection{Full: true, Grow: k}, nil
	case strings.HasPrefix(p, "*-"):
		k, err := strconv.Atoi(p[2:])
		if err != nil {
			return AxisSection{}, err
		}
		return AxisSection{Full: true, Shrink: k}, nil
	default:
		lohi := strings.SplitN(p, ":", 2)
		if len(lohi) != 2 {
			return AxisSection{}, errInvalidSection(p)
		}
		lo, err := strconv.Atoi(lohi[0])
		if err != nil {
			return AxisSection{}, err
		}
		hi, err := strconv.Atoi(lohi[1])
		if err != nil {
			return AxisSection{}, err
		}
		return AxisSection{Lo: lo, Hi: hi}, nil
	}
}

func errInvalidSection(p string) error {
	return &sectionError{p}
}

type sectionError struct{ raw string }

func (e *sectionError) Error() string { return "invalid section spec: " + e.raw }

// CropRequest is one tagged crop request (spec §3): pixel-mode
// (center+width, explicit section, or polygon) or celestial-mode
// (center+width_degrees or polygon).
type CropRequest struct {
	Mode Mode
	Name string // output filename, catalog column, or empty for auto-derivation

	CenterPixel []float64 // pixel-mode center
	WidthPixels []int     // pixel-mode width, odd (spec §3: even is incremented)
	Section     string    // pixel-mode explicit section, ParseSection grammar
	PixelPolygon [][2]float64

	CenterCelestial []float64 // RA, Dec[, spectral]
	WidthDegrees    []float64
	CelestialPolygon [][2]float64

	PolygonKeepOutside bool
	PolygonSort        bool
}

// Options are the cropper-wide knobs of spec §6's `CropperParams`.
type Options struct {
	NoBlank             bool
	KeepBlankCenter     bool
	ZeroIsNotBlank      bool
	CheckCenterBoxWidth int
	// CheckCenterDump is carried on Options but not read by
	// CropPixelMode or CropCelestialMode; no center-box dump is written.
	CheckCenterDump bool
}

// InferMode restores the original's `--mode` auto-detection (`ui.c`,
// SPEC_FULL "Supplemented features"): when neither mode was set
// explicitly, celestial coordinates imply celestial mode and pixel
// coordinates/section imply pixel mode.
func InferMode(req CropRequest) Mode {
	if req.Mode != ModeUnset {
		return req.Mode
	}
	if len(req.CenterCelestial) > 0 || len(req.WidthDegrees) > 0 || len(req.CelestialPolygon) > 0 {
		return ModeCelestial
	}
	return ModePixel
}

// NormalizeWidth increments an even pixel width to the next odd integer
// (spec §3: "Width is an odd integer number of pixels per axis; if the
// user supplies an even integer it is incremented").
func NormalizeWidth(w int) int {
	if w%2 == 0 {
		return w + 1
	}
	return w
}

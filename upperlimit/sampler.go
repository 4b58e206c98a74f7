package upperlimit

import (
	"math"
	"sync"

	mkcore "github.com/go-astro/mkcore"
	"github.com/go-astro/mkcore/measure"
	"gonum.org/v1/gonum/stat"
)

// MinSamples is the minimum accepted random-footprint count (spec §6/§8):
// num_samples < 20 is a ContractError.
const MinSamples = 20

// Footprint is the shape of the label being placed: a bounding extent
// plus, for sub-labels, an optional member mask narrower than the
// rectangle (spec §4.8).
type Footprint struct {
	Shape []int
	Mask  []bool // nil means every cell in Shape is a member
}

func (f Footprint) member(relOff int) bool {
	if f.Mask == nil {
		return true
	}
	return f.Mask[relOff]
}

// Config configures one label's random-placement sampling pass.
type Config struct {
	Values     *mkcore.PixelArray
	Labels     *mkcore.PixelArray
	Mask       *mkcore.PixelArray // optional, non-zero means forbidden
	Footprint  Footprint
	Label      int
	N          int
	Range      []int // optional per-axis placement window width
	OwnOrigin  []int // label's own bounding tile origin, for centering Range
	MasterSeed uint64
	SigmaClip  measure.SigmaClipConfig
	NSigma     float64
	// WarnNarrowRange, if non-nil, is invoked at most once process-wide
	// when the narrowed placement range is smaller than twice the tile
	// extent (spec §4.8 step 2).
	WarnNarrowRange *sync.Once
	WarnFunc        func(string)
}

// Result is the per-label upper-limit summary (spec §4.8 step 4/5).
type Result struct {
	Accepted     int
	SigmaClipped float64
	Brightness   float64
	Quantile     float64
	Skewness     float64
}

// DebugRow records one drawn random position (accepted or rejected) when
// the caller has matched this label against a configured debug target
// (spec §4.8 "Optional per-label debug table").
type DebugRow struct {
	Origin []int
	Sum    float64 // NaN for rejections
}

func placementRange(imageShape []int, footprintShape []int, rangeWidth []int, ownOrigin []int, warnOnce *sync.Once, warnFn func(string)) [][2]int {
	n := len(imageShape)
	out := make([][2]int, n)
	for d := 0; d < n; d++ {
		lo := 0
		hi := imageShape[d] - footprintShape[d] - 1
		if rangeWidth != nil && rangeWidth[d] > 0 {
			half := rangeWidth[d] / 2
			center := ownOrigin[d]
			wlo := center - half
			whi := center + half
			if wlo < lo {
				whi += lo - wlo
				wlo = lo
			}
			if whi > hi {
				wlo -= whi - hi
				whi = hi
			}
			if wlo < lo {
				wlo = lo
			}
			if whi > hi {
				whi = hi
			}
			if whi-wlo < 2*footprintShape[d] && warnOnce != nil && warnFn != nil {
				warnOnce.Do(func() {
					warnFn("upper-limit: narrowed random-placement range is smaller than twice the footprint extent")
				})
			}
			lo, hi = wlo, whi
		}
		out[d] = [2]int{lo, hi}
	}
	return out
}

// tryPlace reports whether the footprint placed at origin is free of
// blank pixels, masked pixels, and pixels labeled with any label other
// than cfg.Label, and if so returns the sum of values inside it.
func tryPlace(cfg Config, origin []int) (sum float64, ok bool) {
	n := len(origin)
	relExtents := cfg.Footprint.Shape
	volume := 1
	for _, e := range relExtents {
		volume *= e
	}

	coord := make([]int, n)
	for rel := 0; rel < volume; rel++ {
		decomposeRowMajor(rel, relExtents, coord)
		if !cfg.Footprint.member(rel) {
			continue
		}
		abs := make([]int, n)
		for d := 0; d < n; d++ {
			abs[d] = origin[d] + coord[d]
		}
		off := cfg.Values.LinearIndex(abs)

		if cfg.Values.Blank.IsBlank(cfg.Values.DType, cfg.Values.Data[off]) {
			return 0, false
		}
		if cfg.Mask != nil && cfg.Mask.Data[off] != 0 {
			return 0, false
		}
		lab := int(cfg.Labels.Data[off])
		if lab != 0 && lab != cfg.Label {
			return 0, false
		}
		sum += cfg.Values.Data[off]
	}
	return sum, true
}

func decomposeRowMajor(rel int, extents []int, out []int) {
	rem := rel
	for d := len(extents) - 1; d >= 0; d-- {
		out[d] = rem % extents[d]
		rem /= extents[d]
	}
}

// Sample draws random placements until cfg.N are accepted or 10*cfg.N
// placements have failed (spec §4.8 step 3), then summarizes with
// sigma-clipping (step 4) or emits NaN throughout if acceptance falls
// short (step 5). debugMatch, when true, additionally returns every
// drawn position (accepted or not) in a side table.
func Sample(cfg Config, debugMatch bool) (Result, []DebugRow) {
	rng := NewStream(cfg.MasterSeed, cfg.Label)
	ranges := placementRange(cfg.Labels.Shape, cfg.Footprint.Shape, cfg.Range, cfg.OwnOrigin, cfg.WarnNarrowRange, cfg.WarnFunc)

	maxFailed := cfg.N * 10
	accepted := make([]float64, 0, cfg.N)
	var debug []DebugRow
	if debugMatch {
		debug = make([]DebugRow, 0, cfg.N+maxFailed)
	}

	failed := 0
	for len(accepted) < cfg.N && failed < maxFailed {
		origin := make([]int, len(ranges))
		for d, r := range ranges {
			if r[1] < r[0] {
				origin[d] = r[0]
				continue
			}
			origin[d] = r[0] + rng.IntN(r[1]-r[0]+1)
		}
		sum, ok := tryPlace(cfg, origin)
		if ok {
			accepted = append(accepted, sum)
			if debugMatch {
				debug = append(debug, DebugRow{Origin: append([]int(nil), origin...), Sum: sum})
			}
		} else {
			failed++
			if debugMatch {
				debug = append(debug, DebugRow{Origin: append([]int(nil), origin...), Sum: math.NaN()})
			}
		}
	}

	if len(accepted) < cfg.N {
		return Result{Accepted: len(accepted), SigmaClipped: math.NaN(), Brightness: math.NaN(), Quantile: math.NaN(), Skewness: math.NaN()}, debug
	}

	clip := measure.SigmaClip(append([]float64(nil), accepted...), cfg.SigmaClip)
	labelSum := ownSum(cfg)
	sorted := append([]float64(nil), accepted...)
	sortFloats(sorted)
	q := stat.CDF(labelSum, stat.Empirical, sorted)

	skew := math.NaN()
	if clip.Std > 0 {
		skew = (clip.Mean - clip.Median) / clip.Std
	}

	return Result{
		Accepted:     len(accepted),
		SigmaClipped: clip.Std,
		Brightness:   cfg.NSigma * clip.Std,
		Quantile:     q,
		Skewness:     skew,
	}, debug
}

// ownSum sums the label's own footprint in place (its real position, not
// a random one) for the empirical-quantile comparison of step 4.
func ownSum(cfg Config) float64 {
	sum := 0.0
	for off, v := range cfg.Values.Data {
		if int(cfg.Labels.Data[off]) != cfg.Label {
			continue
		}
		if cfg.Values.Blank.IsBlank(cfg.Values.DType, v) {
			continue
		}
		sum += v
	}
	return sum
}

func sortFloats(xs []float64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

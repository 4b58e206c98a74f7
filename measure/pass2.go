package measure

import (
	"math"
	"sort"

	mkcore "github.com/go-astro/mkcore"
	"gonum.org/v1/gonum/stat"
)

// SigmaClipConfig is the two-element sigma-clip parameter of spec §4.7:
// Multiple is the clipping threshold in standard deviations; Tolerance
// selects the termination mode. Tolerance < 1 means "iterate until the
// relative change of successive standard deviations, |prev-std|/std, is
// less than Tolerance";
// Tolerance >= 1 means "perform exactly that many iterations" (truncated
// to an integer).
type SigmaClipConfig struct {
	Multiple  float64
	Tolerance float64
}

// SigmaClipResult is the {accepted count, median, mean, std} summary of
// the final kept set (spec §4.7).
type SigmaClipResult struct {
	N      int
	Median float64
	Mean   float64
	Std    float64
}

// SigmaClip iteratively rejects samples more than cfg.Multiple standard
// deviations from the mean, stopping either once the relative change of
// successive standard deviations falls below cfg.Tolerance, or after
// exactly int(cfg.Tolerance) iterations when cfg.Tolerance >= 1. buf
// itself is not modified (each iteration filters into a fresh slice and
// only that final kept set is sorted), so the caller can reuse it.
func SigmaClip(buf []float64, cfg SigmaClipConfig) SigmaClipResult {
	if len(buf) == 0 {
		return SigmaClipResult{Median: math.NaN(), Mean: math.NaN(), Std: math.NaN()}
	}

	kept := buf
	prevStd := math.NaN()
	exactIters := cfg.Tolerance >= 1

	iterations := 0
	maxIterations := 100
	if exactIters {
		maxIterations = int(cfg.Tolerance)
	}

	for iterations < maxIterations {
		mean := stat.Mean(kept, nil)
		std := stat.StdDev(kept, nil)

		if !exactIters && iterations > 0 && !math.IsNaN(prevStd) {
			if std == 0 || math.Abs(prevStd-std)/std < cfg.Tolerance {
				break
			}
		}
		prevStd = std

		next := kept[:0:0]
		lo := mean - cfg.Multiple*std
		hi := mean + cfg.Multiple*std
		for _, v := range kept {
			if v >= lo && v <= hi {
				next = append(next, v)
			}
		}
		if len(next) == len(kept) || len(next) == 0 {
			kept = next
			iterations++
			break
		}
		kept = next
		iterations++
	}

	if len(kept) == 0 {
		return SigmaClipResult{Median: math.NaN(), Mean: math.NaN(), Std: math.NaN()}
	}

	sort.Float64s(kept)
	return SigmaClipResult{
		N:      len(kept),
		Median: stat.Quantile(0.5, stat.Empirical, kept, nil),
		Mean:   stat.Mean(kept, nil),
		Std:    stat.StdDev(kept, nil),
	}
}

// GatherFinite gathers label's finite pixel values into buf (truncated
// and reused across labels; append grows it as needed).
func GatherFinite(labelValue int, tile mkcore.Tile, labels, values *mkcore.PixelArray, buf []float64) []float64 {
	buf = buf[:0]
	for _, run := range tile.IterRuns() {
		for k := 0; k < run.Length; k++ {
			off := run.Start + k
			if int(labels.Data[off]) != labelValue {
				continue
			}
			v := values.Data[off]
			if values.Blank.IsBlank(values.DType, v) {
				continue
			}
			buf = append(buf, v)
		}
	}
	return buf
}

// Median computes the median of buf (sorted in place); NaN for an empty
// buffer (spec §4.7: "An empty label emits NaN for order-statistic
// columns").
func Median(buf []float64) float64 {
	if len(buf) == 0 {
		return math.NaN()
	}
	sort.Float64s(buf)
	return stat.Quantile(0.5, stat.Empirical, buf, nil)
}

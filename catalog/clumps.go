package catalog

import (
	"sync"

	mkcore "github.com/go-astro/mkcore"
	"github.com/go-astro/mkcore/measure"
	"github.com/go-astro/mkcore/upperlimit"
)

// clumpAppender collects (start, slots) blocks from every worker under a
// brief mutex and flushes them into the final dense clump-row slice once
// the dispatcher barrier has passed — the blocks themselves never
// overlap (each was claimed from the shared allocator), so the mutex only
// guards the bookkeeping slice, not the measurement work itself.
type clumpAppender struct {
	mu     sync.Mutex
	blocks []clumpBlock
}

type clumpBlock struct {
	start int
	slots []clumpSlot
}

func (c *clumpAppender) append(start int, slots []clumpSlot) {
	c.mu.Lock()
	c.blocks = append(c.blocks, clumpBlock{start: start, slots: slots})
	c.mu.Unlock()
}

func (c *clumpAppender) flushInto(dest []clumpSlot) {
	for _, b := range c.blocks {
		copy(dest[b.start:b.start+len(b.slots)], b.slots)
	}
}

// debugAppender guards the shared debug-row slice the same way.
type debugAppender struct {
	mu sync.Mutex
}

func (d *debugAppender) append(dst *[]upperlimit.DebugRow, rows []upperlimit.DebugRow) {
	d.mu.Lock()
	*dst = append(*dst, rows...)
	d.mu.Unlock()
}

// sampleUpperLimit runs the L8 sampler for one label and folds its
// summary into the label's raw vector's UL* slots (spec §4.8/§4.9).
func sampleUpperLimit(cfg Config, label int, tile mkcore.Tile, vec *measure.RawVector) []upperlimit.DebugRow {
	ul := cfg.UpperLimit
	debugMatch := ul.DebugLabel != nil && ul.DebugLabel[0] == label

	sCfg := upperlimit.Config{
		Values:     cfg.Values,
		Labels:     cfg.Labels,
		Mask:       ul.Mask,
		Footprint:  upperlimit.Footprint{Shape: append([]int(nil), tile.Extents...)},
		Label:      label,
		N:          ul.NumSamples,
		Range:      ul.Range,
		OwnOrigin:  append([]int(nil), tile.Origin...),
		MasterSeed: cfg.MasterSeed,
		SigmaClip:  ul.SigmaClip,
		NSigma:     ul.NSigma,
	}

	res, debug := upperlimit.Sample(sCfg, debugMatch)
	vec.Set(measure.ULSigmaClipped, res.SigmaClipped)
	vec.Set(measure.ULBrightness, res.Brightness)
	vec.Set(measure.ULQuantile, res.Quantile)
	vec.Set(measure.ULSkewness, res.Skewness)
	vec.Set(measure.ULAccepted, float64(res.Accepted))

	if !debugMatch {
		return nil
	}
	return debug
}

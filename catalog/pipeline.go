// Package catalog wires the measurement kernels (measure, L7), the
// upper-limit sampler (upperlimit, L8), and the column driver (column, L9)
// into the end-to-end catalog-builder pipeline: parallel per-label
// measurement over the dispatcher (L5), followed by column
// materialization into object and clump tables.
package catalog

import (
	"math"

	mkcore "github.com/go-astro/mkcore"
	"github.com/go-astro/mkcore/column"
	"github.com/go-astro/mkcore/measure"
	"github.com/go-astro/mkcore/upperlimit"
)

// globalClumpRowKey is the single shared counter key passed to the
// object-row allocator: every worker claims its object's block of clump
// rows from one running total, guarded by the allocator's brief mutex
// (spec §4.5 "per-object mutex... taken briefly and released before any
// further work"), rather than a sequential pre-pass over every object's
// relabel table.
const globalClumpRowKey = -1

// UpperLimitConfig configures the L8 sampler for every label in the pass
// (spec §6 `upper_limit` parameter group).
type UpperLimitConfig struct {
	NumSamples int
	Range      []int
	NSigma     float64
	SigmaClip  measure.SigmaClipConfig
	Mask       *mkcore.PixelArray
	DebugLabel *[2]int // (object_id, sub_label); nil disables the debug table
}

// Config is the catalog builder's parameter struct (spec §6
// `CatalogParams`).
type Config struct {
	Values    *mkcore.PixelArray
	Labels    *mkcore.PixelArray
	SubLabels *mkcore.PixelArray // optional
	Sky       *measure.SkyDataset
	SkyNoise  *measure.SkyDataset

	NumWorkers    int
	MasterSeed    uint64
	ColumnList    string
	Zeropoint     float64
	CPSCorr       float64
	SigmaClip     measure.SigmaClipConfig
	UpperLimit    *UpperLimitConfig
	InBetweenInts bool
	SBNSigma      float64
	SBArea        float64

	WCS       mkcore.WCS
	WCSHandle mkcore.WCSHandle
}

// Result holds both output tables plus the optional debug table (spec
// §4.8's per-label debug table, when cfg.UpperLimit.DebugLabel matched).
type Result struct {
	Columns    []column.Column
	ObjectRows []map[string]float64
	ClumpRows  []map[string]float64
	DebugRows  []upperlimit.DebugRow
}

// clumpSlot is the bookkeeping a worker fills in per clump row before
// column materialization.
type clumpSlot struct {
	vec      *measure.RawVector
	host     int
	subLabel int
}

// Build runs the full catalog pass: parse the column list, accumulate
// pass 1 (and pass 2 when a sigma-clip column is requested) per label
// across the dispatcher, sample upper limits where requested, then
// materialize both output tables. The per-slice spectrum pass
// (measure.Spectrum) is not run here.
func Build(cfg Config) (*Result, error) {
	if cfg.UpperLimit != nil && cfg.UpperLimit.NumSamples < upperlimit.MinSamples {
		return nil, mkcore.NewContractError("Build", mkcore.ErrSampleCount)
	}

	idx, err := mkcore.BuildLabelIndex(cfg.Labels, mkcore.BuildLabelIndexOptions{KeepIntegerIDs: cfg.InBetweenInts})
	if err != nil {
		return nil, err
	}

	cols, err := column.ParseColumnList(cfg.ColumnList)
	if err != nil {
		return nil, err
	}
	needs := column.UnionNeeds(cols)
	wantMoments := needs.Has(measure.Vxx) || needs.Has(measure.Vyy) || needs.Has(measure.Vxy)
	wantSigmaClip := needs.Has(measure.SigmaClipN)
	wantUpperLimit := needs.Has(measure.ULBrightness) && cfg.UpperLimit != nil

	labels := idx.Labels()
	rowIndex := make(map[int]int, len(labels))
	for i, l := range labels {
		rowIndex[l] = i
	}

	if cfg.SubLabels != nil {
		buildRelabelTables(idx, cfg.Labels, cfg.SubLabels, labels)
	}

	objectVecs := make([]*measure.RawVector, len(labels))
	objectNumSub := make([]int, len(labels))
	allocator := mkcore.NewObjectRowAllocator()

	var clumpsMu clumpAppender
	var debugRows []upperlimit.DebugRow
	var debugMu debugAppender

	dispatcher := &mkcore.Dispatcher{NumWorkers: cfg.NumWorkers}
	runErr := dispatcher.Run(labels, func(wc *mkcore.WorkerContext, part mkcore.Partition) error {
		buf := make([]float64, 0, 256)
		for _, label := range part.Items {
			tile, present := idx.TileFor(label)
			rowIdx := rowIndex[label]
			if !present {
				objectVecs[rowIdx] = measure.NewRawVector()
				continue
			}
			relabel := idx.RelabelTables[label]

			res := measure.Accumulate(label, tile, measure.AccumulateOptions{
				Values:      cfg.Values,
				Labels:      cfg.Labels,
				SubLabels:   cfg.SubLabels,
				Relabel:     relabel,
				Sky:         cfg.Sky,
				SkyNoise:    cfg.SkyNoise,
				WantMoments: wantMoments,
			})

			if wantSigmaClip {
				buf = measure.GatherFinite(label, tile, cfg.Labels, cfg.Values, buf)
				sc := measure.SigmaClip(buf, cfg.SigmaClip)
				res.Object.Set(measure.SigmaClipN, float64(sc.N))
				res.Object.Set(measure.SigmaClipMean, sc.Mean)
				res.Object.Set(measure.SigmaClipMedian, sc.Median)
				res.Object.Set(measure.SigmaClipStd, sc.Std)
			}

			if wantUpperLimit {
				dr := sampleUpperLimit(cfg, label, tile, res.Object)
				if dr != nil {
					debugMu.append(&debugRows, dr)
				}
			}

			objectVecs[rowIdx] = res.Object
			objectNumSub[rowIdx] = len(relabel)

			if res.Clumps != nil && len(relabel) > 0 {
				start := allocator.Claim(globalClumpRowKey, len(relabel))
				slots := make([]clumpSlot, len(relabel))
				for sub, dense := range relabel {
					slots[dense-1] = clumpSlot{vec: res.Clumps[dense], host: label, subLabel: sub}
				}
				clumpsMu.append(start, slots)
			}
		}
		return nil
	})
	if runErr != nil {
		return nil, runErr
	}

	totalClumps := allocator.Claim(globalClumpRowKey, 0)
	clumpVecs := make([]clumpSlot, totalClumps)
	clumpsMu.flushInto(clumpVecs)

	objectRows := make([]map[string]float64, len(labels))
	for i, label := range labels {
		var world []float64
		if cfg.WCS != nil {
			world = resolveWorldCenter(cfg, objectVecs[i])
		}
		ctx := column.RowContext{
			Label:          label,
			HostObjectID:   label,
			SubLabelWithin: 0,
			NumSubLabels:   objectNumSub[i],
			Vec:            objectVecs[i],
			NDim:           cfg.Values.NDim(),
			Zeropoint:      cfg.Zeropoint,
			CPSCorr:        cpsCorrOrDefault(cfg),
			SBNSigma:       cfg.SBNSigma,
			SBArea:         cfg.SBArea,
			World:          world,
		}
		objectRows[i] = column.MaterializeRow(cols, ctx)
	}

	clumpRows := make([]map[string]float64, totalClumps)
	for i, slot := range clumpVecs {
		if slot.vec == nil {
			continue
		}
		ctx := column.RowContext{
			Label:          slot.subLabel,
			HostObjectID:   slot.host,
			SubLabelWithin: indexOfSubLabel(idx, slot.host, slot.subLabel),
			Vec:            slot.vec,
			NDim:           cfg.Values.NDim(),
			Zeropoint:      cfg.Zeropoint,
			CPSCorr:        cpsCorrOrDefault(cfg),
			SBNSigma:       cfg.SBNSigma,
			SBArea:         cfg.SBArea,
		}
		clumpRows[i] = column.MaterializeRow(cols, ctx)
	}

	return &Result{Columns: cols, ObjectRows: objectRows, ClumpRows: clumpRows, DebugRows: debugRows}, nil
}

func indexOfSubLabel(idx *mkcore.LabelIndex, host, sub int) int {
	relabel := idx.RelabelTables[host]
	return relabel[sub]
}

// cpsCorrOrDefault returns cfg.CPSCorr, or 1 (no correction) when it is
// zero. The value is never derived from the sky-noise dataset.
func cpsCorrOrDefault(cfg Config) float64 {
	if cfg.CPSCorr == 0 {
		return 1
	}
	return cfg.CPSCorr
}

func resolveWorldCenter(cfg Config, v *measure.RawVector) []float64 {
	wht := v.Get(measure.SumWht)
	n := cfg.Values.NDim()
	pix := make(mkcore.Point, n)
	for d := 0; d < n; d++ {
		if wht != 0 {
			pix[d] = v.Get(measure.VAxis(d))/wht + 1
		} else {
			pix[d] = math.NaN()
		}
	}
	world, err := cfg.WCS.ImgToWorld(cfg.WCSHandle, []mkcore.Point{pix})
	if err != nil || len(world) == 0 {
		return nil
	}
	return world[0]
}

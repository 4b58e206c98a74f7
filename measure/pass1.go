package measure

import (
	mkcore "github.com/go-astro/mkcore"
)

// projBitmap tracks, within one label's tile, which (axis1,axis2)
// projection cells have already been counted — the "first seen at this
// (x,y)" test spec §4.7 requires for numall_xy/num_xy and for folding the
// 3-D spectrum pass's footprint (spec §4.7 pass 3).
type projBitmap struct {
	dims []int
	bits []bool
}

func newProjBitmap(tile mkcore.Tile) *projBitmap {
	n := len(tile.Extents)
	var dims []int
	if n == 3 {
		dims = []int{tile.Extents[1], tile.Extents[2]}
	} else {
		dims = append([]int(nil), tile.Extents...)
	}
	size := 1
	for _, d := range dims {
		size *= d
	}
	return &projBitmap{dims: dims, bits: make([]bool, size)}
}

func (b *projBitmap) key(relCoord []int) int {
	if len(b.dims) == 2 && len(relCoord) == 3 {
		return relCoord[1]*b.dims[1] + relCoord[2]
	}
	idx := 0
	for d, dim := range b.dims {
		idx = idx*dim + relCoord[d]
	}
	return idx
}

// MarkFirstSeen reports whether relCoord's projection cell has not yet
// been visited, marking it visited as a side effect.
func (b *projBitmap) MarkFirstSeen(relCoord []int) bool {
	k := b.key(relCoord)
	if b.bits[k] {
		return false
	}
	b.bits[k] = true
	return true
}

// Bitmap exposes the folded OR of the per-slice projection, consumed by
// the spectrum pass (pass 3) to enumerate the label's 2-D footprint.
func (b *projBitmap) Bitmap() *projBitmap { return b }

// PassOneResult holds the object's raw vector and, when a sub-label
// dataset is configured, one raw vector per dense clump index.
type PassOneResult struct {
	Object     *RawVector
	ObjectProj *projBitmap
	Clumps     map[int]*RawVector
}

// AccumulateOptions configures the single-pass accumulation (spec §4.7).
type AccumulateOptions struct {
	Values       *mkcore.PixelArray
	Labels       *mkcore.PixelArray
	SubLabels    *mkcore.PixelArray // optional
	Relabel      map[int]int        // sparse sub-label -> dense clump index, for this object
	Sky          *SkyDataset        // optional
	SkyNoise     *SkyDataset        // optional
	WantMoments  bool               // second moments requested by some column
}

// Accumulate runs pass 1 for a single object label over objTile, returning
// its raw vector, projection bitmap, and (if a sub-label dataset is
// configured) one raw vector per clump plus river-adjacency sums folded
// into RiverSum/RiverArea of the clump(s) adjacent to each river pixel.
func Accumulate(objLabel int, objTile mkcore.Tile, opts AccumulateOptions) *PassOneResult {
	n := len(objTile.Extents)
	obj := NewRawVector()
	proj := newProjBitmap(objTile)

	var shift [3]float64
	if opts.WantMoments {
		for d := 0; d < n; d++ {
			shift[d] = float64(objTile.Origin[d]+1)
			obj.Set(ShiftSlot(d), shift[d])
		}
	}

	var clumps map[int]*RawVector
	if opts.SubLabels != nil {
		clumps = make(map[int]*RawVector, len(opts.Relabel))
		for _, dense := range opts.Relabel {
			clumps[dense] = NewRawVector()
			for d := 0; d < n; d++ {
				clumps[dense].Set(ShiftSlot(d), shift[d])
			}
		}
	}

	runs := objTile.IterRuns()
	for _, run := range runs {
		for k := 0; k < run.Length; k++ {
			off := run.Start + k
			if int(opts.Labels.Data[off]) != objLabel {
				continue
			}
			coord := mkcore.CoordOf(off, objTile.ParentShape)
			relCoord := make([]int, n)
			for d := 0; d < n; d++ {
				relCoord[d] = coord[d] - objTile.Origin[d]
			}

			obj.Add(NumAll, 1)
			firstSeen := proj.MarkFirstSeen(relCoord)
			if firstSeen {
				obj.Add(NumAllXY, 1)
			}

			val := opts.Values.Data[off]
			blank := opts.Values.Blank.IsBlank(opts.Values.DType, val)
			if !blank {
				accumulateFinite(obj, val, coord, shift, off, opts, firstSeen, n)
			}

			if opts.SubLabels != nil {
				sub := int(opts.SubLabels.Data[off])
				if sub > 0 {
					if dense, ok := opts.Relabel[sub]; ok {
						c := clumps[dense]
						c.Add(NumAll, 1)
						if firstSeen {
							c.Add(NumAllXY, 1)
						}
						if !blank {
							accumulateFinite(c, val, coord, shift, off, opts, firstSeen, n)
						}
					}
				} else if sub < 0 {
					accumulateRiverAdjacency(clumps, opts, coord, off, val, blank)
				}
			}
		}
	}

	return &PassOneResult{Object: obj, ObjectProj: proj, Clumps: clumps}
}

func accumulateFinite(v *RawVector, val float64, coord []int, shift [3]float64, off int, opts AccumulateOptions, firstSeen bool, n int) {
	v.Add(Num, 1)
	v.Add(SumValue, val)
	v.Add(SumValue2, val*val)
	if firstSeen {
		v.Add(NumXY, 1)
	}

	if val < v.Get(ValueMin) {
		v.Set(ValueMin, val)
		for d := 0; d < n; d++ {
			v.Set(ValueMinPosSlot(d), float64(coord[d]))
		}
	}
	if val > v.Get(ValueMax) {
		v.Set(ValueMax, val)
		for d := 0; d < n; d++ {
			v.Set(ValueMaxPosSlot(d), float64(coord[d]))
		}
	}
	for d := 0; d < n; d++ {
		c := float64(coord[d])
		if c < v.Get(CoordMinSlot(d)) {
			v.Set(CoordMinSlot(d), c)
		}
		if c > v.Get(CoordMaxSlot(d)) {
			v.Set(CoordMaxSlot(d), c)
		}
		v.Add(SumCoordSlot(d), c)
	}

	if opts.Sky != nil {
		v.Add(SumSky, opts.Sky.ValueAt(off, coord))
		v.Add(NumSky, 1)
	}
	if opts.SkyNoise != nil {
		variance := opts.SkyNoise.Variance(off, coord)
		v.Add(SumVar, variance)
		v.Add(SumValuePlusVar, val+variance)
	}

	if val > 0 {
		v.Add(NumWht, 1)
		v.Add(SumWht, val)
		for d := 0; d < n; d++ {
			v.Add(VAxis(d), val*float64(coord[d]))
		}
		if opts.WantMoments {
			x := float64(coord[AxisX(n)]) + 1 - shift[AxisX(n)]
			y := float64(coord[AxisY(n)]) + 1 - shift[AxisY(n)]
			v.Add(Vxx, val*x*x)
			v.Add(Vyy, val*y*y)
			v.Add(Vxy, val*x*y)
		}
	}
}

// AxisX/AxisY pick the 2-D image-plane axes out of an N-D coordinate: for
// a 2-D array, axes 0 and 1; for a 3-D cube, axes 1 and 2 (axis 0 is the
// spectral/slice axis consumed separately by the spectrum pass). Exported
// so the column driver (L9) can read the same shifted first moment the
// morphology derivation needs to subtract out (spec §4.9).
func AxisX(n int) int {
	if n == 3 {
		return 2
	}
	return 1
}

func AxisY(n int) int {
	if n == 3 {
		return 1
	}
	return 0
}

// accumulateRiverAdjacency inspects the 2N-connected neighbors of a river
// pixel (negative sub-label) and, for each neighbor that shares the
// object's label but carries a distinct positive sub-label, folds the
// river pixel's value into that clump's river sums (spec §4.7).
func accumulateRiverAdjacency(clumps map[int]*RawVector, opts AccumulateOptions, coord []int, off int, val float64, blank bool) {
	if blank {
		return
	}
	n := len(coord)
	seen := make(map[int]bool)
	for d := 0; d < n; d++ {
		for _, delta := range []int{-1, 1} {
			neigh := append([]int(nil), coord...)
			neigh[d] += delta
			if neigh[d] < 0 || neigh[d] >= opts.Labels.Shape[d] {
				continue
			}
			noff := opts.Labels.LinearIndex(neigh)
			if int(opts.Labels.Data[noff]) != int(opts.Labels.Data[off]) {
				continue
			}
			nsub := int(opts.SubLabels.Data[noff])
			if nsub <= 0 {
				continue
			}
			dense, ok := opts.Relabel[nsub]
			if !ok || seen[dense] {
				continue
			}
			seen[dense] = true
			c := clumps[dense]
			c.Add(RiverSum, val)
			c.Add(RiverArea, 1)
		}
	}
}

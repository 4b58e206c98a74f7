package mkcore

import (
	"sort"

	"github.com/samber/lo"
)

// LabelIndex maps each label value (1..Nl) to its minimum bounding Tile,
// built by one pass over the label image (spec §4.2).
type LabelIndex struct {
	MaxLabel int
	tiles    map[int]Tile
	present  map[int]bool
	// RelabelTables holds, per parent object id, a dense renumbering of
	// sparse sub-labels from 1..Ns within that parent, preserving
	// first-seen order.
	RelabelTables map[int]map[int]int
}

// BuildLabelIndexOptions controls degenerate-tile handling (spec §4.2).
type BuildLabelIndexOptions struct {
	// KeepIntegerIDs emits a zero-extent degenerate tile for a label with
	// no pixels instead of dropping it.
	KeepIntegerIDs bool
	// NumLabels, when > 0, is trusted in place of a recomputed maximum
	// (spec §6: a `num_labels` metadata entry, when present, is trusted).
	NumLabels int
}

// BuildLabelIndex scans labels once, tracking per-label min/max coordinate
// in each axis. labels must have integer DType.
func BuildLabelIndex(labels *PixelArray, opts BuildLabelIndexOptions) (*LabelIndex, error) {
	if !labels.DType.IsInteger() {
		return nil, NewContractError("BuildLabelIndex", ErrNonIntegerLabel)
	}

	type bounds struct {
		min, max []int
		seen     bool
	}
	acc := make(map[int]*bounds)

	strides := labels.Strides()
	n := labels.NDim()
	maxSeen := 0

	for off, v := range labels.Data {
		lab := int(v)
		if lab <= 0 {
			continue
		}
		if lab > maxSeen {
			maxSeen = lab
		}
		b, ok := acc[lab]
		if !ok {
			b = &bounds{min: make([]int, n), max: make([]int, n)}
			acc[lab] = b
		}
		coord := offsetToCoord(off, strides, labels.Shape)
		if !b.seen {
			copy(b.min, coord)
			copy(b.max, coord)
			b.seen = true
		} else {
			for d := 0; d < n; d++ {
				if coord[d] < b.min[d] {
					b.min[d] = coord[d]
				}
				if coord[d] > b.max[d] {
					b.max[d] = coord[d]
				}
			}
		}
	}

	maxLabel := maxSeen
	if opts.NumLabels > 0 {
		maxLabel = opts.NumLabels
	}
	if maxLabel == 0 {
		return nil, NewContractError("BuildLabelIndex", ErrZeroObjects)
	}

	idx := &LabelIndex{
		MaxLabel:      maxLabel,
		tiles:         make(map[int]Tile),
		present:       make(map[int]bool),
		RelabelTables: make(map[int]map[int]int),
	}

	for lab := 1; lab <= maxLabel; lab++ {
		b, ok := acc[lab]
		if !ok || !b.seen {
			if opts.KeepIntegerIDs {
				idx.tiles[lab] = Tile{
					Origin:      make([]int, n),
					Extents:     make([]int, n),
					ParentShape: append([]int(nil), labels.Shape...),
				}
				idx.present[lab] = false
			}
			continue
		}
		extents := make([]int, n)
		for d := 0; d < n; d++ {
			extents[d] = b.max[d] - b.min[d] + 1
		}
		idx.tiles[lab] = Tile{Origin: b.min, Extents: extents, ParentShape: append([]int(nil), labels.Shape...)}
		idx.present[lab] = true
	}

	return idx, nil
}

func offsetToCoord(off int, strides, shape []int) []int {
	coord := make([]int, len(shape))
	rem := off
	for d := 0; d < len(shape); d++ {
		coord[d] = rem / strides[d]
		rem = rem % strides[d]
	}
	return coord
}

// TileFor returns the bounding tile for label, and whether the label has
// any pixels (false for a degenerate kept-integer-id row).
func (idx *LabelIndex) TileFor(label int) (Tile, bool) {
	t, ok := idx.tiles[label]
	if !ok {
		return Tile{}, false
	}
	return t, idx.present[label]
}

// Labels returns the labels present in index order (ascending), including
// degenerate rows when KeepIntegerIDs produced them.
func (idx *LabelIndex) Labels() []int {
	out := make([]int, 0, len(idx.tiles))
	for lab := range idx.tiles {
		out = append(out, lab)
	}
	out = lo.Uniq(out)
	sort.Ints(out)
	return out
}

// TilesInIndexOrder yields (label, tile) pairs in ascending label order
// (spec §4.2).
func (idx *LabelIndex) TilesInIndexOrder() []struct {
	Label int
	Tile  Tile
} {
	labels := idx.Labels()
	out := make([]struct {
		Label int
		Tile  Tile
	}, 0, len(labels))
	for _, lab := range labels {
		out = append(out, struct {
			Label int
			Tile  Tile
		}{Label: lab, Tile: idx.tiles[lab]})
	}
	return out
}

// BuildRelabelTable computes a dense 1..Ns relabel table for the
// sub-labels observed within a single parent object's footprint,
// preserving first-seen order, and stores it under parentID.
func (idx *LabelIndex) BuildRelabelTable(parentID int, firstSeenSubLabels []int) map[int]int {
	table := make(map[int]int, len(firstSeenSubLabels))
	next := 1
	for _, sub := range firstSeenSubLabels {
		if sub <= 0 {
			continue
		}
		if _, ok := table[sub]; !ok {
			table[sub] = next
			next++
		}
	}
	idx.RelabelTables[parentID] = table
	return table
}

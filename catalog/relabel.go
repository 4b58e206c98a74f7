package catalog

import mkcore "github.com/go-astro/mkcore"

// buildRelabelTables scans each object's tile once, collecting its
// sub-label pixels' values in first-seen row-major order, and registers a
// dense 1..Ns relabel table for the object via idx.BuildRelabelTable (spec
// §4.2's "first-seen order" requirement). Run sequentially, before the
// dispatcher pass, since LabelIndex.RelabelTables is an unsynchronized map.
func buildRelabelTables(idx *mkcore.LabelIndex, labels, subLabels *mkcore.PixelArray, objectLabels []int) {
	for _, obj := range objectLabels {
		tile, present := idx.TileFor(obj)
		if !present {
			idx.BuildRelabelTable(obj, nil)
			continue
		}

		var firstSeen []int
		seen := make(map[int]bool)
		for _, run := range tile.IterRuns() {
			for off := run.Start; off < run.Start+run.Length; off++ {
				if int(labels.Data[off]) != obj {
					continue
				}
				sub := int(subLabels.Data[off])
				if sub <= 0 || seen[sub] {
					continue
				}
				seen[sub] = true
				firstSeen = append(firstSeen, sub)
			}
		}
		idx.BuildRelabelTable(obj, firstSeen)
	}
}

// Package store writes the catalog builder's object and clump tables to a
// TileDB array, the external on-disk table-format collaborator spec §1
// keeps opaque behind the column driver's output rows.
package store

import (
	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// ArrayOpen opens the TileDB array at uri in mode, closing the array's own
// resources on failure.
func ArrayOpen(ctx *tiledb.Context, uri string, mode tiledb.QueryType) (*tiledb.Array, error) {
	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return nil, err
	}
	if err := array.Open(mode); err != nil {
		array.Free()
		return nil, err
	}
	return array, nil
}

// AddFilters sequentially appends compression filters to a filter list.
func AddFilters(filterList *tiledb.FilterList, filters ...*tiledb.Filter) error {
	for _, f := range filters {
		if err := filterList.AddFilter(f); err != nil {
			return err
		}
	}
	return nil
}

// ZstdFilter builds a Zstandard compression filter at the given level.
func ZstdFilter(ctx *tiledb.Context, level int32) (*tiledb.Filter, error) {
	filt, err := tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_ZSTD)
	if err != nil {
		return nil, err
	}
	if err := filt.SetOption(tiledb.TILEDB_COMPRESSION_LEVEL, level); err != nil {
		filt.Free()
		return nil, err
	}
	return filt, nil
}

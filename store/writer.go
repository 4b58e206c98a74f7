package store

import (
	"errors"
	"sort"

	tiledb "github.com/TileDB-Inc/TileDB-Go"

	"github.com/go-astro/mkcore/column"
)

var ErrWriteTable = errors.New("store: error writing catalog table")

// WriteTable creates (or overwrites) a dense TileDB array at uri and
// writes rows, one float64 attribute buffer per column, in row-index
// order — the same "build column-major attribute buffers, set one data
// buffer per struct field, submit a single query" shape as go-gsf
// `tiledb.go`'s setStructFieldBuffers, generalized from reflected struct
// fields to a column.Column-driven row-map.
func WriteTable(ctx *tiledb.Context, uri string, cols []column.Column, rows []map[string]float64) error {
	schema, err := BuildRowSchema(ctx, cols, len(rows))
	if err != nil {
		return errors.Join(ErrWriteTable, err)
	}
	defer schema.Free()

	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return errors.Join(ErrWriteTable, err)
	}
	defer array.Free()

	if err := array.Create(schema); err != nil {
		return errors.Join(ErrWriteTable, err)
	}

	if err := array.Open(tiledb.TILEDB_WRITE); err != nil {
		return errors.Join(ErrWriteTable, err)
	}
	defer array.Close()

	query, err := tiledb.NewQuery(ctx, array)
	if err != nil {
		return errors.Join(ErrWriteTable, err)
	}
	defer query.Free()

	if err := query.SetLayout(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return errors.Join(ErrWriteTable, err)
	}

	numRows := len(rows)
	if numRows < 1 {
		numRows = 1
	}
	subarray, err := array.NewSubarray()
	if err != nil {
		return errors.Join(ErrWriteTable, err)
	}
	defer subarray.Free()
	if err := subarray.SetSubArray([]int64{0, int64(numRows) - 1}); err != nil {
		return errors.Join(ErrWriteTable, err)
	}
	if err := query.SetSubarray(subarray); err != nil {
		return errors.Join(ErrWriteTable, err)
	}

	for _, c := range cols {
		buf := make([]float64, len(rows))
		for i, row := range rows {
			buf[i] = row[c.Name]
		}
		if _, err := query.SetDataBuffer(c.Name, buf); err != nil {
			return errors.Join(ErrWriteTable, err, errors.New(c.Name))
		}
	}

	if err := query.Submit(); err != nil {
		return errors.Join(ErrWriteTable, err)
	}
	return query.Finalize()
}

// SortedColumnNames returns cols' names in a stable, alphabetic order —
// used by callers that need a deterministic attribute listing (e.g. for a
// companion CSV export) independent of the column-list parse order.
func SortedColumnNames(cols []column.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	sort.Strings(names)
	return names
}

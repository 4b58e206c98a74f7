package store

import (
	"errors"

	tiledb "github.com/TileDB-Inc/TileDB-Go"

	"github.com/go-astro/mkcore/column"
)

var ErrBuildSchema = errors.New("store: error building catalog row schema")

const rowDimName = "ROW_ID"

// BuildRowSchema returns a dense TileDB array schema with one dimension
// ("ROW_ID", 0..numRows-1) and one float64 attribute per column, mirroring
// go-gsf's "one struct field becomes one attribute" schema-building shape
// (schema.go's schemaAttrs) but driven by a resolved column.Column list
// instead of reflection over a sensor-specific struct.
func BuildRowSchema(ctx *tiledb.Context, cols []column.Column, numRows int) (*tiledb.ArraySchema, error) {
	if numRows < 1 {
		numRows = 1
	}

	domain, err := tiledb.NewDomain(ctx)
	if err != nil {
		return nil, errors.Join(ErrBuildSchema, err)
	}
	defer domain.Free()

	tileSize := uint64(50000)
	if uint64(numRows) < tileSize {
		tileSize = uint64(numRows)
	}

	dim, err := tiledb.NewDimension(ctx, rowDimName, tiledb.TILEDB_INT64, []int64{0, int64(numRows) - 1}, tileSize)
	if err != nil {
		return nil, errors.Join(ErrBuildSchema, err)
	}
	defer dim.Free()

	dimFilters, err := tiledb.NewFilterList(ctx)
	if err != nil {
		return nil, errors.Join(ErrBuildSchema, err)
	}
	defer dimFilters.Free()

	zstd, err := ZstdFilter(ctx, 16)
	if err != nil {
		return nil, errors.Join(ErrBuildSchema, err)
	}
	defer zstd.Free()

	if err := AddFilters(dimFilters, zstd); err != nil {
		return nil, errors.Join(ErrBuildSchema, err)
	}
	if err := dim.SetFilterList(dimFilters); err != nil {
		return nil, errors.Join(ErrBuildSchema, err)
	}

	if err := domain.AddDimensions(dim); err != nil {
		return nil, errors.Join(ErrBuildSchema, err)
	}

	schema, err := tiledb.NewArraySchema(ctx, tiledb.TILEDB_DENSE)
	if err != nil {
		return nil, errors.Join(ErrBuildSchema, err)
	}
	if err := schema.SetDomain(domain); err != nil {
		return nil, errors.Join(ErrBuildSchema, err)
	}
	if err := schema.SetCellOrder(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return nil, errors.Join(ErrBuildSchema, err)
	}
	if err := schema.SetTileOrder(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return nil, errors.Join(ErrBuildSchema, err)
	}

	for _, c := range cols {
		if err := addRowAttribute(ctx, schema, c); err != nil {
			return nil, errors.Join(ErrBuildSchema, err)
		}
	}

	if err := schema.Check(); err != nil {
		return nil, errors.Join(ErrBuildSchema, err)
	}
	return schema, nil
}

func addRowAttribute(ctx *tiledb.Context, schema *tiledb.ArraySchema, c column.Column) error {
	attrFilts, err := tiledb.NewFilterList(ctx)
	if err != nil {
		return err
	}
	defer attrFilts.Free()

	zstd, err := ZstdFilter(ctx, 9)
	if err != nil {
		return err
	}
	defer zstd.Free()

	if err := AddFilters(attrFilts, zstd); err != nil {
		return err
	}

	attr, err := tiledb.NewAttribute(ctx, c.Name, tiledb.TILEDB_FLOAT64)
	if err != nil {
		return err
	}
	defer attr.Free()

	if err := attr.SetFilterList(attrFilts); err != nil {
		return err
	}
	return schema.AddAttributes(attr)
}

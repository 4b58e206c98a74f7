package column

import (
	mkcore "github.com/go-astro/mkcore"
)

// WorldCoordinateBatch stages per-row pixel-space centers for every row
// that needs a world-coordinate column, then converts them in one batched
// WCS call rather than one call per row (spec §4.9: "stage all per-row
// (X,Y[,Z]) values in a single vector, then call the external WCS
// transform in one batched invocation per column group").
type WorldCoordinateBatch struct {
	handle mkcore.WCSHandle
	wcs    mkcore.WCS
	staged []mkcore.Point
	rows   []int // row index each staged point belongs to, parallel to staged
}

// NewWorldCoordinateBatch prepares an empty batch against handle.
func NewWorldCoordinateBatch(wcs mkcore.WCS, handle mkcore.WCSHandle) *WorldCoordinateBatch {
	return &WorldCoordinateBatch{handle: handle, wcs: wcs}
}

// Stage records row's pixel-space center for later conversion.
func (b *WorldCoordinateBatch) Stage(row int, pixel mkcore.Point) {
	b.staged = append(b.staged, pixel)
	b.rows = append(b.rows, row)
}

// Resolve runs the single batched ImgToWorld call and returns a
// row-index-keyed map of world coordinates.
func (b *WorldCoordinateBatch) Resolve() (map[int]mkcore.Point, error) {
	if len(b.staged) == 0 {
		return map[int]mkcore.Point{}, nil
	}
	world, err := b.wcs.ImgToWorld(b.handle, b.staged)
	if err != nil {
		return nil, mkcore.NewRuntimeIOError("WorldCoordinateBatch.Resolve", "wcs", err)
	}
	out := make(map[int]mkcore.Point, len(world))
	for i, row := range b.rows {
		out[row] = world[i]
	}
	return out, nil
}

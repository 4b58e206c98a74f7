// Package search recursively trawls a local path or object-store URI for
// FITS input files, using TileDB's VFS layer so both are handled by the
// same code path (spec SPEC_FULL domain-stack: `-trawl` batch mode).
package search

import (
	"path/filepath"
	"sort"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// trawl recursively matches pattern against the basename of every file
// under uri, descending into every subdirectory VFS reports.
func trawl(vfs *tiledb.VFS, pattern string, uri string, items []string) ([]string, error) {
	dirs, files, err := vfs.List(uri)
	if err != nil {
		return items, err
	}

	for _, file := range files {
		match, err := filepath.Match(pattern, filepath.Base(file))
		if err != nil {
			return items, err
		}
		if match {
			items = append(items, file)
		}
	}

	for _, dir := range dirs {
		items, err = trawl(vfs, pattern, dir, items)
		if err != nil {
			return items, err
		}
	}

	return items, nil
}

// fitsExtensions lists the basename suffixes trawl treats as FITS inputs.
var fitsExtensions = []string{"*.fits", "*.fit", "*.fits.fz"}

// FindFITS recursively searches uri (a local path or any URI scheme
// TileDB's VFS supports, e.g. `s3://bucket/prefix`) for FITS files.
// configURI, when non-empty, points at a TileDB config file carrying the
// object-store credentials the search needs.
func FindFITS(uri string, configURI string) ([]string, error) {
	config, err := resolveConfig(configURI)
	if err != nil {
		return nil, err
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return nil, err
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		return nil, err
	}
	defer vfs.Free()

	items := make([]string, 0)
	for _, pattern := range fitsExtensions {
		items, err = trawl(vfs, pattern, uri, items)
		if err != nil {
			return nil, err
		}
	}
	return dedupSorted(items), nil
}

func resolveConfig(configURI string) (*tiledb.Config, error) {
	if configURI == "" {
		return tiledb.NewConfig()
	}
	return tiledb.LoadConfig(configURI)
}

// dedupSorted removes duplicate matches that arise when an input's
// basename satisfies more than one extension pattern (e.g. "*.fits" and
// no conflicting pattern, but kept generic for future extensions).
func dedupSorted(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	sort.Strings(out)
	return out
}

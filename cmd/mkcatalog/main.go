// Command mkcatalog runs the labeled-image catalog builder (spec §1.2):
// given a values image and a label image (plus optional sub-label, sky
// and sky-noise images), it emits an object table and, when sub-labels
// are present, a companion clump table.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/alitto/pond"
	tiledb "github.com/TileDB-Inc/TileDB-Go"
	"github.com/urfave/cli/v2"

	mkcore "github.com/go-astro/mkcore"
	"github.com/go-astro/mkcore/catalog"
	"github.com/go-astro/mkcore/fitsimg"
	"github.com/go-astro/mkcore/measure"
	"github.com/go-astro/mkcore/search"
	"github.com/go-astro/mkcore/store"
)

// openValues opens a FITS image as a values/labels input, failing with
// the spec §7 RuntimeIOError if the path cannot be read.
func openValues(path string) (*mkcore.PixelArray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, mkcore.NewRuntimeIOError("mkcatalog.open", path, err)
	}
	defer f.Close()
	arr, _, err := fitsimg.Open(f)
	return arr, err
}

// catalogOne runs the full pipeline against one set of inputs and writes
// the resulting object/clump tables to outURI via the TileDB collaborator
// (store package, spec §6 persisted-state layout).
func catalogOne(valuesPath, labelsPath, subLabelsPath, columnList, outURI string, zeropoint float64, seed uint64, numWorkers int) error {
	values, err := openValues(valuesPath)
	if err != nil {
		return err
	}
	labels, err := openValues(labelsPath)
	if err != nil {
		return err
	}
	// fitsimg.Open stores every image as float64; the label index accepts
	// only integer element types, so the label images are tagged as int32.
	labels.DType = mkcore.DTypeInt32

	var subLabels *mkcore.PixelArray
	if subLabelsPath != "" {
		subLabels, err = openValues(subLabelsPath)
		if err != nil {
			return err
		}
		subLabels.DType = mkcore.DTypeInt32
	}

	cfg := catalog.Config{
		Values:     values,
		Labels:     labels,
		SubLabels:  subLabels,
		NumWorkers: numWorkers,
		MasterSeed: seed,
		ColumnList: columnList,
		Zeropoint:  zeropoint,
		SigmaClip:  measure.SigmaClipConfig{Multiple: 3, Tolerance: 0.1},
	}
	if cfg.NumWorkers < 1 {
		cfg.NumWorkers = runtime.NumCPU()
	}

	result, err := catalog.Build(cfg)
	if err != nil {
		return err
	}

	config, err := tiledb.NewConfig()
	if err != nil {
		return err
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return err
	}
	defer ctx.Free()

	if err := store.WriteTable(ctx, outURI+"-objects", result.Columns, result.ObjectRows); err != nil {
		return err
	}
	if len(result.ClumpRows) > 0 {
		if err := store.WriteTable(ctx, outURI+"-clumps", result.Columns, result.ClumpRows); err != nil {
			return err
		}
	}
	log.Println("wrote", outURI+"-objects")
	return nil
}

// catalogTrawl recursively finds FITS value images under uri and, for
// each, expects a sibling "<name>_seg<ext>" label image, building one
// catalog per pair across a fixed worker pool (spec SPEC_FULL batch
// mode), cancellable via Ctrl+C.
func catalogTrawl(uri, configURI, labelSuffix, columnList, outdirURI string, zeropoint float64, seed uint64, numWorkers int) error {
	items, err := search.FindFITS(uri, configURI)
	if err != nil {
		return err
	}
	log.Println("number of FITS inputs to catalog:", len(items))

	ctxCancel, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n := runtime.NumCPU() * 2
	pool := pond.New(n, 0, pond.MinWorkers(n), pond.Context(ctxCancel))
	defer pool.StopAndWait()

	for _, name := range items {
		valuesPath := name
		ext := filepath.Ext(valuesPath)
		labelsPath := strings.TrimSuffix(valuesPath, ext) + labelSuffix + ext
		outURI := filepath.Join(outdirURI, strings.TrimSuffix(filepath.Base(valuesPath), ext))
		pool.Submit(func() {
			if err := catalogOne(valuesPath, labelsPath, "", columnList, outURI, zeropoint, seed, numWorkers); err != nil {
				log.Println("error cataloging", valuesPath, ":", err)
			}
		})
	}
	return nil
}

func main() {
	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name: "catalog",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "values", Required: true, Usage: "Path to the values image."},
					&cli.StringFlag{Name: "labels", Required: true, Usage: "Path to the label image."},
					&cli.StringFlag{Name: "sub-labels", Usage: "Path to the optional sub-label (clump) image."},
					&cli.StringFlag{Name: "columns", Value: "LABEL,AREA,CENTER,BRIGHTNESS", Usage: "Comma-separated column-list string."},
					&cli.StringFlag{Name: "out-uri", Required: true, Usage: "URI prefix for the output TileDB tables."},
					&cli.Float64Flag{Name: "zeropoint", Usage: "Magnitude zeropoint."},
					&cli.Uint64Flag{Name: "seed", Usage: "Master PRNG seed (spec §4.8)."},
					&cli.IntFlag{Name: "workers", Usage: "Worker-pool size; defaults to NumCPU."},
				},
				Action: func(cCtx *cli.Context) error {
					return catalogOne(
						cCtx.String("values"),
						cCtx.String("labels"),
						cCtx.String("sub-labels"),
						cCtx.String("columns"),
						cCtx.String("out-uri"),
						cCtx.Float64("zeropoint"),
						cCtx.Uint64("seed"),
						cCtx.Int("workers"),
					)
				},
			},
			{
				Name: "catalog-trawl",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "uri", Usage: "URI or pathname to a directory containing FITS value images."},
					&cli.StringFlag{Name: "config-uri", Usage: "URI or pathname to a TileDB config file."},
					&cli.StringFlag{Name: "label-suffix", Value: "_seg", Usage: "Suffix distinguishing a value image's sibling label image."},
					&cli.StringFlag{Name: "columns", Value: "LABEL,AREA,CENTER,BRIGHTNESS", Usage: "Comma-separated column-list string."},
					&cli.StringFlag{Name: "outdir-uri", Usage: "URI or pathname to an output directory."},
					&cli.Float64Flag{Name: "zeropoint", Usage: "Magnitude zeropoint."},
					&cli.Uint64Flag{Name: "seed", Usage: "Master PRNG seed (spec §4.8)."},
					&cli.IntFlag{Name: "workers", Usage: "Worker-pool size; defaults to NumCPU."},
				},
				Action: func(cCtx *cli.Context) error {
					return catalogTrawl(
						cCtx.String("uri"),
						cCtx.String("config-uri"),
						cCtx.String("label-suffix"),
						cCtx.String("columns"),
						cCtx.String("outdir-uri"),
						cCtx.Float64("zeropoint"),
						cCtx.Uint64("seed"),
						cCtx.Int("workers"),
					)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

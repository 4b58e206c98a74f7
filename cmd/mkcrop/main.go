// Command mkcrop crops one rectangular pixel-mode region (a section
// string, or a center and width) out of each FITS input. It offers no
// celestial-coordinate or polygon crops; those exist only in the
// cropper package.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	"github.com/alitto/pond"
	"github.com/astrogo/fitsio"
	"github.com/urfave/cli/v2"

	"github.com/go-astro/mkcore/cropper"
	"github.com/go-astro/mkcore/fitsimg"
	"github.com/go-astro/mkcore/search"
)

// cropOne handles a single FITS input end to end: read, resolve mode,
// crop, write one output per request.
func cropOne(inURI, section string, centerPixel []float64, widthPixels []int, outdirURI string, noBlank bool) error {
	f, err := os.Open(inURI)
	if err != nil {
		return err
	}
	defer f.Close()

	img, hdr, err := fitsimg.Open(f)
	if err != nil {
		return err
	}

	req := cropper.CropRequest{
		Mode:        cropper.ModePixel,
		Section:     section,
		CenterPixel: centerPixel,
		WidthPixels: widthPixels,
	}
	if section == "" && len(centerPixel) == 0 {
		req.Mode = cropper.ModeUnset
	}

	outs, err := cropper.CropPixelMode([]cropper.CropRequest{req}, img, cropper.Options{NoBlank: noBlank})
	if err != nil {
		return err
	}

	dir := outdirURI
	if dir == "" {
		dir, _ = filepath.Split(inURI)
	}
	_ = hdr

	for i, out := range outs {
		outName := out.Name
		if outName == "" {
			outName = cropper.AutoName(i)
		}
		outPath := filepath.Join(dir, outName)
		wf, err := os.Create(outPath)
		if err != nil {
			return err
		}
		cards := make([]fitsio.Card, 0, len(out.Headers))
		for name, val := range out.Headers {
			cards = append(cards, fitsio.Card{Name: name, Value: val})
		}
		err = fitsimg.Save(wf, out.Image, cards)
		wf.Close()
		if err != nil {
			return err
		}
		log.Println("wrote", outPath)
	}
	return nil
}

// cropTrawl recursively finds FITS inputs under uri and crops each with
// the same parameters, spreading the work across a fixed worker pool
// (spec SPEC_FULL batch mode), cancellable via Ctrl+C.
func cropTrawl(uri, configURI, outdirURI, section string, centerPixel []float64, widthPixels []int, noBlank bool) error {
	items, err := search.FindFITS(uri, configURI)
	if err != nil {
		return err
	}
	log.Println("number of FITS inputs to crop:", len(items))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n := runtime.NumCPU() * 2
	pool := pond.New(n, 0, pond.MinWorkers(n), pond.Context(ctx))
	defer pool.StopAndWait()

	for _, name := range items {
		item := name
		pool.Submit(func() {
			if err := cropOne(item, section, centerPixel, widthPixels, outdirURI, noBlank); err != nil {
				log.Println("error cropping", item, ":", err)
			}
		})
	}
	return nil
}

func main() {
	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name: "crop",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in-uri", Usage: "URI or pathname to a FITS input."},
					&cli.StringFlag{Name: "outdir-uri", Usage: "URI or pathname to an output directory."},
					&cli.StringFlag{Name: "section", Usage: "Pixel-mode section string (lo:hi,*,*+k,*-k)."},
					&cli.Float64SliceFlag{Name: "center-pixel", Usage: "Crop center in pixel coordinates."},
					&cli.IntSliceFlag{Name: "width-pixels", Usage: "Crop width in pixels, per axis."},
					&cli.BoolFlag{Name: "no-blank", Usage: "Clip to the input instead of padding with blank."},
				},
				Action: func(cCtx *cli.Context) error {
					return cropOne(
						cCtx.String("in-uri"),
						cCtx.String("section"),
						cCtx.Float64Slice("center-pixel"),
						cCtx.IntSlice("width-pixels"),
						cCtx.String("outdir-uri"),
						cCtx.Bool("no-blank"),
					)
				},
			},
			{
				Name: "crop-trawl",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "uri", Usage: "URI or pathname to a directory containing FITS files."},
					&cli.StringFlag{Name: "config-uri", Usage: "URI or pathname to a TileDB config file."},
					&cli.StringFlag{Name: "outdir-uri", Usage: "URI or pathname to an output directory."},
					&cli.StringFlag{Name: "section", Usage: "Pixel-mode section string (lo:hi,*,*+k,*-k)."},
					&cli.Float64SliceFlag{Name: "center-pixel", Usage: "Crop center in pixel coordinates."},
					&cli.IntSliceFlag{Name: "width-pixels", Usage: "Crop width in pixels, per axis."},
					&cli.BoolFlag{Name: "no-blank", Usage: "Clip to the input instead of padding with blank."},
				},
				Action: func(cCtx *cli.Context) error {
					return cropTrawl(
						cCtx.String("uri"),
						cCtx.String("config-uri"),
						cCtx.String("outdir-uri"),
						cCtx.String("section"),
						cCtx.Float64Slice("center-pixel"),
						cCtx.IntSlice("width-pixels"),
						cCtx.Bool("no-blank"),
					)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

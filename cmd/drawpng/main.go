// Command drawpng renders a saved drawing to a PNG file without a window.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"vecdraw/internal/codec"
	"vecdraw/internal/config"
	"vecdraw/internal/logging"
	"vecdraw/internal/render"
	"vecdraw/internal/scene"
	"vecdraw/pkg/colorutil"
)

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "drawpng: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stderr io.Writer) error {
	def := config.Default()

	fs := flag.NewFlagSet("drawpng", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", "Drawing file (JSON)")
	out := fs.String("out", "", "Output PNG path")
	width := fs.Int("width", def.CanvasWidth, "Image width in pixels")
	height := fs.Int("height", def.CanvasHeight, "Image height in pixels")
	background := fs.String("background", "black", "Background color name")
	level := fs.String("log", "warn", "Log level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *in == "" || *out == "" {
		fs.Usage()
		return errors.New("usage: drawpng -in drawing.json -out drawing.png [-width 800] [-height 600]")
	}
	if *width <= 0 || *height <= 0 {
		return fmt.Errorf("invalid size %dx%d", *width, *height)
	}
	bg, ok := colorutil.Named(*background)
	if !ok {
		return fmt.Errorf("unknown color %q", *background)
	}
	if err := logging.Setup(stderr, *level); err != nil {
		return err
	}

	res, err := codec.ReadFile(*in)
	if err != nil {
		return err
	}
	for _, s := range res.Skipped {
		fmt.Fprintf(stderr, "skipped record %d: %v\n", s.Index, s.Err)
	}

	layer := render.NewLayer()
	layer.Background = bg
	codec.Apply(scene.NewRegistry(layer), res)

	var buf bytes.Buffer
	if err := layer.WritePNG(&buf, *width, *height); err != nil {
		return err
	}
	if err := os.WriteFile(*out, buf.Bytes(), 0644); err != nil {
		return err
	}
	logging.Logger().Info("rendered", "in", *in, "out", *out, "shapes", len(res.Shapes))
	return nil
}

package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRendersDrawing(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "drawing.json")
	out := filepath.Join(dir, "drawing.png")
	require.NoError(t, os.WriteFile(in, []byte(`[
		{"type": "Rectangle", "x": 10, "y": 10, "width": 30, "height": 20, "fill_color": [255, 0, 0]},
		{"type": "Star", "x": 0, "y": 0}
	]`), 0644))

	var stderr bytes.Buffer
	require.NoError(t, run([]string{"-in", in, "-out", out, "-width", "64", "-height", "48"}, &stderr))
	assert.Contains(t, stderr.String(), "skipped record 1")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())

	r, g, b, _ := img.At(25, 20).RGBA()
	assert.Equal(t, uint32(0xFFFF), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(0), b)
}

func TestRunRequiresPaths(t *testing.T) {
	var stderr bytes.Buffer
	assert.Error(t, run([]string{"-in", "x.json"}, &stderr))
	assert.Error(t, run([]string{"-in", "x.json", "-out", "y.png", "-width", "0"}, &stderr))
	assert.Error(t, run([]string{"-in", "x.json", "-out", "y.png", "-background", "nosuch"}, &stderr))
}

func TestRunMissingInput(t *testing.T) {
	dir := t.TempDir()
	var stderr bytes.Buffer
	err := run([]string{"-in", filepath.Join(dir, "none.json"), "-out", filepath.Join(dir, "o.png")}, &stderr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

package render

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecdraw/internal/scene"
	"vecdraw/internal/shape"
	"vecdraw/pkg/colorutil"
	"vecdraw/pkg/geometry"
)

var red = colorutil.RGB{R: 255}

func rgbAt(img image.Image, x, y int) colorutil.RGB {
	r, g, b, _ := img.At(x, y).RGBA()
	return colorutil.RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

func TestLayerIsSceneSurface(t *testing.T) {
	layer := NewLayer()
	changes := 0
	layer.OnChange = func() { changes++ }
	reg := scene.NewRegistry(layer)

	a := reg.Add(shape.Default(shape.KindRectangle, red))
	b := reg.Add(shape.Default(shape.KindLine, red))
	assert.Equal(t, 2, layer.Len())
	assert.Positive(t, changes)

	layer.Select(b.Handle, a.Handle)
	assert.Equal(t, []*scene.Entry{a, b}, reg.Selected())

	layer.Toggle(a.Handle)
	assert.Equal(t, []*scene.Entry{b}, reg.Selected())
	assert.False(t, layer.IsSelected(a.Handle))

	reg.Remove(b)
	assert.Equal(t, 1, layer.Len())
	assert.Empty(t, reg.Selected())

	reg.Clear()
	assert.Equal(t, 0, layer.Len())
}

func TestItemMirrorsPlacement(t *testing.T) {
	layer := NewLayer()
	reg := scene.NewRegistry(layer)
	eng := scene.NewEngine(reg)
	e := reg.Add(shape.Default(shape.KindRectangle, red))
	reg.SetPosition(e, geometry.NewPoint2D(10, 20))
	eng.Rotate([]*scene.Entry{e}, 90)

	it := e.Handle.(*Item)
	assert.Equal(t, e.Placement, it.placement)
	assert.InDelta(t, e.Center().X, it.BoundingCenter().X, 1e-9)
	assert.InDelta(t, e.Center().Y, it.BoundingCenter().Y, 1e-9)
	assert.InDelta(t, 60, it.Bounds().Width, 1e-9)
}

func TestImagePaintsShapes(t *testing.T) {
	layer := NewLayer()
	reg := scene.NewRegistry(layer)
	eng := scene.NewEngine(reg)
	e := reg.Add(shape.Default(shape.KindRectangle, red))

	img, err := layer.Image(400, 300, 1)
	require.NoError(t, err)
	assert.Equal(t, red, rgbAt(img, 100, 80))
	assert.Equal(t, colorutil.Black, rgbAt(img, 10, 10))
	assert.Equal(t, colorutil.Black, rgbAt(img, 100, 40))

	eng.Rotate([]*scene.Entry{e}, 90)
	img, err = layer.Image(400, 300, 1)
	require.NoError(t, err)
	assert.Equal(t, red, rgbAt(img, 100, 40))

	reg.SetPosition(e, geometry.NewPoint2D(200, 0))
	img, err = layer.Image(400, 300, 1)
	require.NoError(t, err)
	assert.Equal(t, red, rgbAt(img, 300, 80))
	assert.Equal(t, colorutil.Black, rgbAt(img, 100, 80))
}

func TestWritePNG(t *testing.T) {
	layer := NewLayer()
	reg := scene.NewRegistry(layer)
	for _, k := range shape.Kinds {
		reg.Add(shape.Default(k, colorutil.White))
	}
	layer.Select(reg.All()[0].Handle)

	var buf bytes.Buffer
	require.NoError(t, layer.WritePNG(&buf, 320, 240))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 320, 240), img.Bounds())
}

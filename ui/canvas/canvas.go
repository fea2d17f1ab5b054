// Package canvas provides the drawing surface widget with zoom, selection
// and dragging.
package canvas

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"vecdraw/internal/interact"
	"vecdraw/internal/logging"
	"vecdraw/internal/render"
	"vecdraw/internal/scene"
	"vecdraw/pkg/colorutil"
	"vecdraw/pkg/geometry"
)

const (
	minZoom  = 0.25
	maxZoom  = 8.0
	zoomStep = 1.25
)

// DrawingCanvas shows a render.Layer and turns pointer input into
// selection changes and drags.
type DrawingCanvas struct {
	widget.BaseWidget

	layer *render.Layer
	reg   *scene.Registry

	// Scene area shown, in scene units
	sceneSize fyne.Size

	// Display state
	raster *fynecanvas.Raster
	band   *fynecanvas.Rectangle
	zoom   float64

	// Interaction state
	dragger interact.Dragger
	rubber  interact.Band
	toggle  bool

	// Container
	scroll  *zoomScroll
	content *drawingContent

	// Callbacks
	onZoomChange func(zoom float64)
	onMoved      func()
	onSelect     func(selected int)
}

// zoomScroll is a scroll container that uses the wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *DrawingCanvas
}

func newZoomScroll(content fyne.CanvasObject, dc *DrawingCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: dc}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

// drawingContent holds the raster and receives pointer events.
type drawingContent struct {
	widget.BaseWidget
	canvas *DrawingCanvas
}

var (
	_ desktop.Mouseable = (*drawingContent)(nil)
	_ fyne.Draggable    = (*drawingContent)(nil)
	_ fyne.Scrollable   = (*drawingContent)(nil)
)

func newDrawingContent(dc *DrawingCanvas) *drawingContent {
	c := &drawingContent{canvas: dc}
	c.ExtendBaseWidget(c)
	return c
}

func (c *drawingContent) CreateRenderer() fyne.WidgetRenderer {
	return &drawingContentRenderer{content: c}
}

func (c *drawingContent) MinSize() fyne.Size {
	return c.canvas.raster.MinSize()
}

// MouseDown selects the shape under the pointer and starts a drag, or
// starts a rubber band on empty canvas.
func (c *drawingContent) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	dc := c.canvas
	p := dc.toScene(ev.Position)
	dc.toggle = ev.Modifier&(fyne.KeyModifierShift|fyne.KeyModifierControl) != 0

	hit := dc.reg.HitTest(p)
	if hit == nil {
		if !dc.toggle {
			dc.layer.ClearSelection()
		}
		dc.rubber.Begin(p)
		dc.selectionChanged()
		return
	}

	switch {
	case dc.toggle:
		dc.layer.Toggle(hit.Handle)
	case !dc.layer.IsSelected(hit.Handle):
		dc.layer.Select(hit.Handle)
	}
	dc.selectionChanged()
	if dc.layer.IsSelected(hit.Handle) {
		dc.dragger.Begin(dc.reg, hit, p)
	}
}

func (c *drawingContent) MouseUp(*desktop.MouseEvent) {
	c.finishGesture()
}

func (c *drawingContent) Dragged(ev *fyne.DragEvent) {
	dc := c.canvas
	p := dc.toScene(ev.Position)
	switch {
	case dc.dragger.State() == interact.Dragging:
		dc.dragger.Move(p)
	case dc.rubber.Active():
		dc.rubber.Move(p)
		c.Refresh()
	}
}

func (c *drawingContent) DragEnd() {
	c.finishGesture()
}

func (c *drawingContent) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		c.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		c.canvas.ZoomOut()
	}
}

func (c *drawingContent) finishGesture() {
	dc := c.canvas
	if dc.dragger.End() && dc.onMoved != nil {
		dc.onMoved()
	}
	if dc.rubber.Active() {
		var hs []scene.Handle
		for _, e := range dc.rubber.End(dc.reg) {
			hs = append(hs, e.Handle)
		}
		if dc.toggle {
			dc.layer.AddToSelection(hs...)
		} else {
			dc.layer.Select(hs...)
		}
		dc.selectionChanged()
		c.Refresh()
	}
}

type drawingContentRenderer struct {
	content *drawingContent
}

func (r *drawingContentRenderer) Layout(size fyne.Size) {
	r.content.canvas.raster.Resize(size)
	r.layoutBand()
}

func (r *drawingContentRenderer) layoutBand() {
	dc := r.content.canvas
	if !dc.rubber.Active() {
		dc.band.Hide()
		return
	}
	rect := dc.rubber.Rect()
	z := float32(dc.zoom)
	dc.band.Move(fyne.NewPos(float32(rect.X)*z, float32(rect.Y)*z))
	dc.band.Resize(fyne.NewSize(float32(rect.Width)*z, float32(rect.Height)*z))
	dc.band.Show()
}

func (r *drawingContentRenderer) MinSize() fyne.Size {
	return r.content.canvas.raster.MinSize()
}

func (r *drawingContentRenderer) Refresh() {
	r.layoutBand()
	r.content.canvas.band.Refresh()
	r.content.canvas.raster.Refresh()
}

func (r *drawingContentRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.content.canvas.raster, r.content.canvas.band}
}

func (r *drawingContentRenderer) Destroy() {}

// NewDrawingCanvas creates a canvas showing layer, whose shapes live in
// reg. width and height give the scene area in scene units.
func NewDrawingCanvas(layer *render.Layer, reg *scene.Registry, width, height int) *DrawingCanvas {
	dc := &DrawingCanvas{
		layer:     layer,
		reg:       reg,
		sceneSize: fyne.NewSize(float32(width), float32(height)),
		zoom:      1.0,
	}

	dc.raster = fynecanvas.NewRaster(dc.draw)
	dc.raster.ScaleMode = fynecanvas.ImageScaleSmooth
	dc.raster.SetMinSize(dc.sceneSize)

	dc.band = fynecanvas.NewRectangle(color.Transparent)
	dc.band.StrokeColor = colorutil.LightBlue.NRGBA(0xFF)
	dc.band.StrokeWidth = 1
	dc.band.FillColor = colorutil.LightBlue.NRGBA(0x30)
	dc.band.Hide()

	dc.content = newDrawingContent(dc)
	dc.scroll = newZoomScroll(dc.content, dc)

	layer.OnChange = dc.raster.Refresh

	dc.ExtendBaseWidget(dc)
	return dc
}

func (dc *DrawingCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(dc.scroll)
}

// Container returns the canvas container for embedding in layouts.
func (dc *DrawingCanvas) Container() fyne.CanvasObject {
	return dc.scroll
}

// SetZoom sets the zoom level.
func (dc *DrawingCanvas) SetZoom(zoom float64) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	dc.zoom = zoom
	dc.raster.SetMinSize(fyne.NewSize(dc.sceneSize.Width*float32(zoom), dc.sceneSize.Height*float32(zoom)))
	dc.content.Refresh()
	dc.scroll.scroll.Refresh()
	if dc.onZoomChange != nil {
		dc.onZoomChange(zoom)
	}
}

// GetZoom returns the current zoom level.
func (dc *DrawingCanvas) GetZoom() float64 {
	return dc.zoom
}

// ZoomIn increases the zoom level.
func (dc *DrawingCanvas) ZoomIn() {
	dc.SetZoom(dc.zoom * zoomStep)
}

// ZoomOut decreases the zoom level.
func (dc *DrawingCanvas) ZoomOut() {
	dc.SetZoom(dc.zoom / zoomStep)
}

// OnZoomChange sets a callback for zoom changes.
func (dc *DrawingCanvas) OnZoomChange(callback func(zoom float64)) {
	dc.onZoomChange = callback
}

// OnMoved sets a callback for completed drags that moved shapes.
func (dc *DrawingCanvas) OnMoved(callback func()) {
	dc.onMoved = callback
}

// OnSelect sets a callback for selection changes made with the pointer.
func (dc *DrawingCanvas) OnSelect(callback func(selected int)) {
	dc.onSelect = callback
}

// Refresh redraws the canvas.
func (dc *DrawingCanvas) Refresh() {
	dc.raster.Refresh()
	dc.BaseWidget.Refresh()
}

func (dc *DrawingCanvas) selectionChanged() {
	if dc.onSelect != nil {
		dc.onSelect(len(dc.layer.CurrentSelection()))
	}
}

func (dc *DrawingCanvas) toScene(pos fyne.Position) geometry.Point2D {
	return geometry.NewPoint2D(float64(pos.X)/dc.zoom, float64(pos.Y)/dc.zoom)
}

// pixelScale returns device pixels per scene unit for a raster drawn w
// pixels wide. The raster may be stretched past the scene by the scroll
// container, so the scale comes from the zoom and the device scale only,
// matching toScene.
func (dc *DrawingCanvas) pixelScale(w int) float64 {
	device := 1.0
	if width := dc.raster.Size().Width; width > 0 {
		device = float64(w) / float64(width)
	}
	return dc.zoom * device
}

// draw is the raster drawing function. w and h are in device pixels. Area
// past the scene is left as background.
func (dc *DrawingCanvas) draw(w, h int) image.Image {
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	img, err := dc.layer.Image(w, h, dc.pixelScale(w))
	if err != nil {
		logging.Logger().Error("render canvas", "err", err)
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}
	return img
}

package render

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/gogpu/gg"

	"vecdraw/internal/logging"
	"vecdraw/internal/shape"
	"vecdraw/pkg/colorutil"
	"vecdraw/pkg/geometry"
)

// Selection outline style.
var (
	selectionColor = colorutil.Gold
	selectionDash  = []float64{5, 3}
)

// Draw paints the background and every item onto dc, bottom to top.
func (l *Layer) Draw(dc *gg.Context) error {
	dc.ClearWithColor(gg.RGB(unit(l.Background.R), unit(l.Background.G), unit(l.Background.B)))
	for _, it := range l.items {
		if err := it.draw(dc); err != nil {
			return err
		}
	}
	return nil
}

// DrawSelection outlines the selected items.
func (l *Layer) DrawSelection(dc *gg.Context) error {
	for _, it := range l.items {
		if _, ok := l.selected[it]; !ok {
			continue
		}
		if err := drawOutline(dc, it.Bounds()); err != nil {
			return err
		}
	}
	return nil
}

// Image rasterizes the layer with its selection at width x height pixels.
// zoom maps scene units to pixels.
func (l *Layer) Image(width, height int, zoom float64) (image.Image, error) {
	dc := gg.NewContext(width, height)
	defer dc.Close()
	dc.Scale(zoom, zoom)
	if err := l.Draw(dc); err != nil {
		return nil, err
	}
	if err := l.DrawSelection(dc); err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// WritePNG rasterizes the layer at one pixel per scene unit and writes it
// as PNG. Selection outlines are not drawn.
func (l *Layer) WritePNG(w io.Writer, width, height int) error {
	dc := gg.NewContext(width, height)
	defer dc.Close()
	if err := l.Draw(dc); err != nil {
		return err
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	logging.Logger().Debug("png written", "width", width, "height", height, "items", len(l.items))
	return nil
}

func (it *Item) draw(dc *gg.Context) error {
	alpha := it.shape.Style.Alpha
	center := it.shape.Geometry.Bounds().Center()
	p := it.placement

	dc.Push()
	defer dc.Pop()
	dc.Translate(p.X+center.X, p.Y+center.Y)
	dc.Rotate(p.Rotation * math.Pi / 180)
	dc.Scale(p.Scale, p.Scale)
	dc.Translate(-center.X, -center.Y)

	switch g := it.shape.Geometry.(type) {
	case *shape.Rectangle:
		dc.DrawRectangle(g.X, g.Y, g.Width, g.Height)
		return it.fillAndStroke(dc, alpha)
	case *shape.Ellipse:
		dc.DrawEllipse(g.X+g.Width/2, g.Y+g.Height/2, g.Width/2, g.Height/2)
		return it.fillAndStroke(dc, alpha)
	case *shape.Square:
		r := g.Rect()
		dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
		return it.fillAndStroke(dc, alpha)
	case *shape.Line:
		dc.MoveTo(g.X, g.Y)
		dc.LineTo(g.X2, g.Y2)
		return it.strokePath(dc, alpha)
	case *shape.Polygon:
		if len(g.Vertices) > 0 {
			dc.MoveTo(g.Vertices[0].X, g.Vertices[0].Y)
			for _, v := range g.Vertices[1:] {
				dc.LineTo(v.X, v.Y)
			}
			dc.ClosePath()
		}
		if err := it.fillAndStroke(dc, alpha); err != nil {
			return err
		}
		for _, s := range g.Lines {
			dc.MoveTo(s.Start.X, s.Start.Y)
			dc.LineTo(s.End.X, s.End.Y)
		}
		return it.strokePath(dc, alpha)
	default:
		panic(fmt.Sprintf("render: unhandled geometry %T", g))
	}
}

func (it *Item) fillAndStroke(dc *gg.Context, alpha uint8) error {
	setColor(dc, it.fill, alpha)
	if err := dc.FillPreserve(); err != nil {
		return fmt.Errorf("fill: %w", err)
	}
	return it.strokePath(dc, alpha)
}

func (it *Item) strokePath(dc *gg.Context, alpha uint8) error {
	if it.strokeWidth <= 0 {
		dc.ClearPath()
		return nil
	}
	setColor(dc, it.stroke, alpha)
	dc.SetLineWidth(it.strokeWidth)
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("stroke: %w", err)
	}
	return nil
}

func drawOutline(dc *gg.Context, r geometry.Rect) error {
	const pad = 3
	dc.DrawRectangle(r.X-pad, r.Y-pad, r.Width+2*pad, r.Height+2*pad)
	setColor(dc, selectionColor, 255)
	dc.SetLineWidth(1)
	dc.SetDash(selectionDash...)
	defer dc.SetDash()
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("selection outline: %w", err)
	}
	return nil
}

func setColor(dc *gg.Context, c colorutil.RGB, alpha uint8) {
	dc.SetRGBA(unit(c.R), unit(c.G), unit(c.B), unit(alpha))
}

func unit(v uint8) float64 {
	return float64(v) / 255
}

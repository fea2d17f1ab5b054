package shape

import (
	"fmt"

	"vecdraw/pkg/geometry"
)

// Geometry is the kind-specific local geometry of a shape. The set of
// implementations is closed: Rectangle, Ellipse, Square, Line and Polygon.
// Code that switches on the concrete type panics on anything else.
type Geometry interface {
	Kind() Kind

	// Bounds returns the local axis-aligned bounding box. Its center is
	// the pivot for placement rotation and scale.
	Bounds() geometry.Rect

	// Contains reports whether the local point hits the shape. Open
	// shapes (lines) use tolerance as the hit distance.
	Contains(p geometry.Point2D, tolerance float64) bool

	Validate() error

	clone() Geometry
}

// Rectangle is an axis-aligned box with its top-left corner at X, Y.
type Rectangle struct {
	X, Y          float64
	Width, Height float64
}

func (r *Rectangle) Kind() Kind { return KindRectangle }

func (r *Rectangle) Bounds() geometry.Rect {
	return geometry.NewRect(r.X, r.Y, r.Width, r.Height)
}

func (r *Rectangle) Contains(p geometry.Point2D, _ float64) bool {
	return r.Bounds().Contains(p)
}

func (r *Rectangle) Validate() error {
	return validateBox("rectangle", r.X, r.Y, r.Width, r.Height)
}

func (r *Rectangle) clone() Geometry { c := *r; return &c }

// Ellipse is the ellipse inscribed in the box at X, Y.
type Ellipse struct {
	X, Y          float64
	Width, Height float64
}

func (e *Ellipse) Kind() Kind { return KindEllipse }

func (e *Ellipse) Bounds() geometry.Rect {
	return geometry.NewRect(e.X, e.Y, e.Width, e.Height)
}

func (e *Ellipse) Contains(p geometry.Point2D, _ float64) bool {
	return geometry.PointInEllipse(p, e.Bounds())
}

func (e *Ellipse) Validate() error {
	return validateBox("ellipse", e.X, e.Y, e.Width, e.Height)
}

func (e *Ellipse) clone() Geometry { c := *e; return &c }

// Square is a box whose sides are equal. Size is fixed at construction;
// resizing happens through the placement scale only.
type Square struct {
	X, Y float64
	Size float64
}

func (s *Square) Kind() Kind { return KindSquare }

// Rect returns the square as rectangle geometry.
func (s *Square) Rect() Rectangle {
	return Rectangle{X: s.X, Y: s.Y, Width: s.Size, Height: s.Size}
}

func (s *Square) Bounds() geometry.Rect {
	r := s.Rect()
	return r.Bounds()
}

func (s *Square) Contains(p geometry.Point2D, _ float64) bool {
	return s.Bounds().Contains(p)
}

func (s *Square) Validate() error {
	return validateBox("square", s.X, s.Y, s.Size, s.Size)
}

func (s *Square) clone() Geometry { c := *s; return &c }

// Line is a segment from X, Y to X2, Y2.
type Line struct {
	X, Y   float64
	X2, Y2 float64
}

func (l *Line) Kind() Kind { return KindLine }

// Start returns the first end point.
func (l *Line) Start() geometry.Point2D { return geometry.NewPoint2D(l.X, l.Y) }

// End returns the second end point.
func (l *Line) End() geometry.Point2D { return geometry.NewPoint2D(l.X2, l.Y2) }

func (l *Line) Bounds() geometry.Rect {
	return geometry.BoundingBox([]geometry.Point2D{l.Start(), l.End()})
}

func (l *Line) Contains(p geometry.Point2D, tolerance float64) bool {
	return geometry.DistanceToSegment(p, l.Start(), l.End()) <= tolerance
}

func (l *Line) Validate() error {
	if !geometry.IsFinite(l.X, l.Y, l.X2, l.Y2) {
		return fmt.Errorf("%w: line has non-finite coordinates", ErrInvalidGeometry)
	}
	return nil
}

func (l *Line) clone() Geometry { c := *l; return &c }

// Segment is an auxiliary line drawn with a polygon.
type Segment struct {
	Start geometry.Point2D
	End   geometry.Point2D
}

// Polygon is a closed outline with auxiliary annotation lines. The lines
// move, rotate and scale with the polygon but do not affect its bounds.
type Polygon struct {
	Vertices []geometry.Point2D
	Lines    []Segment
}

func (p *Polygon) Kind() Kind { return KindPolygon }

func (p *Polygon) Bounds() geometry.Rect {
	return geometry.BoundingBox(p.Vertices)
}

func (p *Polygon) Contains(pt geometry.Point2D, tolerance float64) bool {
	if geometry.PointInPolygon(pt, p.Vertices) {
		return true
	}
	for _, s := range p.Lines {
		if geometry.DistanceToSegment(pt, s.Start, s.End) <= tolerance {
			return true
		}
	}
	return false
}

func (p *Polygon) Validate() error {
	if len(p.Vertices) < 3 {
		return fmt.Errorf("%w: polygon needs at least 3 vertices, got %d", ErrInvalidGeometry, len(p.Vertices))
	}
	for _, v := range p.Vertices {
		if !v.IsFinite() {
			return fmt.Errorf("%w: polygon has non-finite vertex", ErrInvalidGeometry)
		}
	}
	for _, s := range p.Lines {
		if !s.Start.IsFinite() || !s.End.IsFinite() {
			return fmt.Errorf("%w: polygon line has non-finite end point", ErrInvalidGeometry)
		}
	}
	return nil
}

// Line returns the auxiliary line at index.
func (p *Polygon) Line(index int) (Segment, error) {
	if index < 0 || index >= len(p.Lines) {
		return Segment{}, fmt.Errorf("%w: %d of %d", ErrLineIndex, index, len(p.Lines))
	}
	return p.Lines[index], nil
}

// SetLine replaces the end points of the auxiliary line at index.
func (p *Polygon) SetLine(index int, start, end geometry.Point2D) error {
	if index < 0 || index >= len(p.Lines) {
		return fmt.Errorf("%w: %d of %d", ErrLineIndex, index, len(p.Lines))
	}
	p.Lines[index] = Segment{Start: start, End: end}
	return nil
}

// AddLine appends an auxiliary line and returns its index.
func (p *Polygon) AddLine(start, end geometry.Point2D) int {
	p.Lines = append(p.Lines, Segment{Start: start, End: end})
	return len(p.Lines) - 1
}

func (p *Polygon) clone() Geometry {
	return &Polygon{
		Vertices: append([]geometry.Point2D(nil), p.Vertices...),
		Lines:    append([]Segment(nil), p.Lines...),
	}
}

func validateBox(name string, x, y, w, h float64) error {
	if !geometry.IsFinite(x, y, w, h) {
		return fmt.Errorf("%w: %s has non-finite values", ErrInvalidGeometry, name)
	}
	if w < 0 || h < 0 {
		return fmt.Errorf("%w: %s has negative size %vx%v", ErrInvalidGeometry, name, w, h)
	}
	return nil
}

// Package shape defines the primitive shapes of a drawing: their local
// geometry, their style and their group membership.
package shape

import (
	"errors"
	"fmt"

	"vecdraw/pkg/colorutil"
	"vecdraw/pkg/geometry"
)

// Kind identifies the primitive variant of a shape.
type Kind int

const (
	KindRectangle Kind = iota
	KindEllipse
	KindSquare
	KindLine
	KindPolygon
)

// Kinds lists every kind in toolbar order.
var Kinds = []Kind{KindRectangle, KindEllipse, KindSquare, KindLine, KindPolygon}

func (k Kind) String() string {
	switch k {
	case KindRectangle:
		return "Rectangle"
	case KindEllipse:
		return "Ellipse"
	case KindSquare:
		return "Square"
	case KindLine:
		return "Line"
	case KindPolygon:
		return "Polygon"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind returns the kind with the given name. The "...Shape" names
// written by older files are accepted as aliases.
func ParseKind(name string) (Kind, bool) {
	switch name {
	case "Rectangle", "RectangleShape":
		return KindRectangle, true
	case "Ellipse", "EllipseShape":
		return KindEllipse, true
	case "Square", "SquareShape":
		return KindSquare, true
	case "Line", "LineShape":
		return KindLine, true
	case "Polygon", "PolygonShape", "PolygonWithLines":
		return KindPolygon, true
	}
	return 0, false
}

var (
	// ErrInvalidGeometry is returned when geometry fails validation.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrLineIndex is returned for an auxiliary line index out of range.
	ErrLineIndex = errors.New("line index out of range")
)

// GroupID identifies a group. The empty value means ungrouped.
type GroupID string

// Style holds the presentation attributes shared by every kind.
type Style struct {
	Fill        colorutil.RGB
	Border      colorutil.RGB
	StrokeWidth float64
	Alpha       uint8
}

// DefaultStyle returns the style applied at construction.
func DefaultStyle(fill colorutil.RGB) Style {
	return Style{
		Fill:        fill,
		Border:      colorutil.White,
		StrokeWidth: 2,
		Alpha:       255,
	}
}

// Shape is one primitive of a drawing. Geometry is always in the shape's
// local frame; placement lives on the scene entry.
type Shape struct {
	Geometry Geometry
	Style    Style
	GroupID  GroupID
}

// Kind returns the kind of the shape's geometry.
func (s *Shape) Kind() Kind {
	return s.Geometry.Kind()
}

// Grouped reports whether the shape belongs to a group.
func (s *Shape) Grouped() bool {
	return s.GroupID != ""
}

// Clone returns a deep copy of the shape.
func (s *Shape) Clone() *Shape {
	c := *s
	c.Geometry = s.Geometry.clone()
	return &c
}

// Validate checks the shape's geometry and style.
func (s *Shape) Validate() error {
	if s.Geometry == nil {
		return fmt.Errorf("%w: missing geometry", ErrInvalidGeometry)
	}
	if err := s.Geometry.Validate(); err != nil {
		return err
	}
	if s.Style.StrokeWidth < 0 || !geometry.IsFinite(s.Style.StrokeWidth) {
		return fmt.Errorf("%w: stroke width %v", ErrInvalidGeometry, s.Style.StrokeWidth)
	}
	return nil
}

func newShape(g Geometry, fill colorutil.RGB) *Shape {
	return &Shape{Geometry: g, Style: DefaultStyle(fill)}
}

// NewRectangle creates a rectangle with its top-left corner at (x, y).
func NewRectangle(x, y, w, h float64, fill colorutil.RGB) *Shape {
	return newShape(&Rectangle{X: x, Y: y, Width: w, Height: h}, fill)
}

// NewEllipse creates an ellipse inscribed in the given box.
func NewEllipse(x, y, w, h float64, fill colorutil.RGB) *Shape {
	return newShape(&Ellipse{X: x, Y: y, Width: w, Height: h}, fill)
}

// NewSquare creates a square with the given side length.
func NewSquare(x, y, size float64, fill colorutil.RGB) *Shape {
	return newShape(&Square{X: x, Y: y, Size: size}, fill)
}

// NewLine creates a line from (x1, y1) to (x2, y2).
func NewLine(x1, y1, x2, y2 float64, fill colorutil.RGB) *Shape {
	return newShape(&Line{X: x1, Y: y1, X2: x2, Y2: y2}, fill)
}

// NewPolygon creates a closed polygon with optional auxiliary lines.
func NewPolygon(vertices []geometry.Point2D, lines []Segment, fill colorutil.RGB) *Shape {
	p := &Polygon{
		Vertices: append([]geometry.Point2D(nil), vertices...),
		Lines:    append([]Segment(nil), lines...),
	}
	return newShape(p, fill)
}

// Default returns the shape added by the toolbar for kind.
func Default(kind Kind, fill colorutil.RGB) *Shape {
	switch kind {
	case KindRectangle:
		return NewRectangle(50, 50, 100, 60, fill)
	case KindEllipse:
		return NewEllipse(60, 60, 100, 60, fill)
	case KindSquare:
		return NewSquare(70, 70, 80, fill)
	case KindLine:
		return NewLine(100, 100, 200, 200, fill)
	case KindPolygon:
		s := NewPolygon(
			[]geometry.Point2D{{X: 100, Y: 0}, {X: -100, Y: 0}, {X: -40, Y: -40}, {X: 70, Y: -40}},
			[]Segment{{Start: geometry.Point2D{X: -100, Y: 20}, End: geometry.Point2D{X: 50, Y: 50}}},
			colorutil.LightBlue,
		)
		s.Style.Border = colorutil.Blue
		return s
	default:
		panic(fmt.Sprintf("shape: unhandled kind %v", kind))
	}
}

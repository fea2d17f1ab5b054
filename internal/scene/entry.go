// Package scene holds the placed shapes of a drawing and the group engine
// that applies bulk edits to them.
package scene

import (
	"math"

	"vecdraw/internal/shape"
	"vecdraw/pkg/colorutil"
	"vecdraw/pkg/geometry"
)

// Handle is the visual item that renders one entry. Handles are owned by
// the Surface that created them; entries only reference them.
type Handle interface {
	SetFill(c colorutil.RGB)
	SetStroke(c colorutil.RGB, width float64)
	SetRotation(degrees float64)
	SetScale(factor float64)
	SetPosition(x, y float64)

	// BoundingCenter returns the center of the item's bounds in scene
	// coordinates. It must equal the entry's Center while in sync.
	BoundingCenter() geometry.Point2D

	Remove()
}

// Surface creates visual items and reports which of them are selected.
type Surface interface {
	Create(s *shape.Shape) Handle
	CurrentSelection() []Handle
}

// Entry pairs a shape with its placement and its visual item.
type Entry struct {
	ID        uint64
	Shape     *shape.Shape
	Placement geometry.Placement
	Handle    Handle
}

// LocalBounds returns the untransformed bounds of the shape.
func (e *Entry) LocalBounds() geometry.Rect {
	return e.Shape.Geometry.Bounds()
}

// Bounds returns the scene-space bounding box of the placed shape.
func (e *Entry) Bounds() geometry.Rect {
	return e.Placement.MapRect(e.LocalBounds())
}

// Center returns the scene-space pivot of the entry. Rotation and scale
// never move it; only translation does.
func (e *Entry) Center() geometry.Point2D {
	return e.LocalBounds().Center().Add(e.Placement.Position())
}

// Transform returns the local-to-scene matrix of the entry.
func (e *Entry) Transform() geometry.AffineTransform {
	return e.Placement.Matrix(e.LocalBounds().Center())
}

// Contains reports whether the scene point hits the placed shape.
// tolerance is in scene units.
func (e *Entry) Contains(p geometry.Point2D, tolerance float64) bool {
	inv, ok := e.Transform().Inverse()
	if !ok {
		return false
	}
	return e.Shape.Geometry.Contains(inv.Apply(p), tolerance/e.Placement.Scale)
}

// syncStyle pushes the shape's colors to the visual item. Lines have no
// interior, so their fill color is drawn as the stroke.
func (e *Entry) syncStyle() {
	st := e.Shape.Style
	switch e.Shape.Geometry.(type) {
	case *shape.Line:
		e.Handle.SetStroke(st.Fill, st.StrokeWidth)
	case *shape.Rectangle, *shape.Ellipse, *shape.Square, *shape.Polygon:
		e.Handle.SetFill(st.Fill)
		e.Handle.SetStroke(st.Border, st.StrokeWidth)
	default:
		panic("scene: unhandled geometry type")
	}
}

func (e *Entry) syncPlacement() {
	e.Handle.SetPosition(e.Placement.X, e.Placement.Y)
	e.Handle.SetRotation(e.Placement.Rotation)
	e.Handle.SetScale(e.Placement.Scale)
}

// centerTolerance is how far a handle's bounding center may stray from its
// entry's center, relative to the entry's size, before the placement is
// pushed again.
const centerTolerance = 1e-6

// inSync reports whether the visual item agrees with the entry's center.
func (e *Entry) inSync() bool {
	b := e.Bounds()
	limit := centerTolerance * math.Max(1, math.Max(b.Width, b.Height))
	return e.Handle.BoundingCenter().Distance(e.Center()) <= limit
}

// nopHandle is used when the registry has no surface attached. It carries
// the entry id so distinct handles never compare equal.
type nopHandle struct {
	id    uint64
	local geometry.Point2D
	x, y  float64
}

func (h *nopHandle) SetFill(colorutil.RGB)            {}
func (h *nopHandle) SetStroke(colorutil.RGB, float64) {}
func (h *nopHandle) SetRotation(float64)              {}
func (h *nopHandle) SetScale(float64)                 {}
func (h *nopHandle) SetPosition(x, y float64)         { h.x, h.y = x, y }
func (h *nopHandle) BoundingCenter() geometry.Point2D { return h.local.Add(geometry.NewPoint2D(h.x, h.y)) }
func (h *nopHandle) Remove()                          {}

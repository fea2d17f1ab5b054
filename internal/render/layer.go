// Package render keeps the visual items of a drawing and rasterizes them.
package render

import (
	"slices"

	"vecdraw/internal/scene"
	"vecdraw/internal/shape"
	"vecdraw/pkg/colorutil"
	"vecdraw/pkg/geometry"
)

// Item is the visual state of one shape. It mirrors what the scene pushes
// through the scene.Handle methods.
type Item struct {
	layer *Layer
	shape *shape.Shape

	fill        colorutil.RGB
	stroke      colorutil.RGB
	strokeWidth float64
	placement   geometry.Placement
}

var _ scene.Handle = (*Item)(nil)

func (it *Item) SetFill(c colorutil.RGB) {
	it.fill = c
	it.layer.changed()
}

func (it *Item) SetStroke(c colorutil.RGB, width float64) {
	it.stroke = c
	it.strokeWidth = width
	it.layer.changed()
}

func (it *Item) SetRotation(degrees float64) {
	it.placement.Rotation = degrees
	it.layer.changed()
}

func (it *Item) SetScale(factor float64) {
	it.placement.Scale = factor
	it.layer.changed()
}

func (it *Item) SetPosition(x, y float64) {
	it.placement.X = x
	it.placement.Y = y
	it.layer.changed()
}

// BoundingCenter returns the scene-space center of the item.
func (it *Item) BoundingCenter() geometry.Point2D {
	return it.Bounds().Center()
}

// Bounds returns the scene-space bounding box of the item.
func (it *Item) Bounds() geometry.Rect {
	return it.placement.MapRect(it.shape.Geometry.Bounds())
}

// Remove detaches the item from its layer.
func (it *Item) Remove() {
	it.layer.remove(it)
}

// Layer is the set of visual items of a drawing in paint order. It also
// tracks which items are selected.
type Layer struct {
	items    []*Item
	selected map[*Item]struct{}

	// Background fills the raster before items are painted.
	Background colorutil.RGB

	// OnChange is called after any visual change.
	OnChange func()
}

var _ scene.Surface = (*Layer)(nil)

// NewLayer creates an empty layer with a black background.
func NewLayer() *Layer {
	return &Layer{
		selected:   make(map[*Item]struct{}),
		Background: colorutil.Black,
	}
}

// Create adds a visual item for s on top of the others.
func (l *Layer) Create(s *shape.Shape) scene.Handle {
	it := &Item{
		layer:     l,
		shape:     s,
		placement: geometry.IdentityPlacement(),
	}
	l.items = append(l.items, it)
	l.changed()
	return it
}

// Len returns the number of items.
func (l *Layer) Len() int {
	return len(l.items)
}

// CurrentSelection returns the selected items in paint order.
func (l *Layer) CurrentSelection() []scene.Handle {
	var out []scene.Handle
	for _, it := range l.items {
		if _, ok := l.selected[it]; ok {
			out = append(out, it)
		}
	}
	return out
}

// IsSelected reports whether h is selected.
func (l *Layer) IsSelected(h scene.Handle) bool {
	it, ok := h.(*Item)
	if !ok {
		return false
	}
	_, sel := l.selected[it]
	return sel
}

// Select replaces the selection with hs.
func (l *Layer) Select(hs ...scene.Handle) {
	clear(l.selected)
	l.AddToSelection(hs...)
}

// AddToSelection selects hs in addition to the current selection.
func (l *Layer) AddToSelection(hs ...scene.Handle) {
	for _, h := range hs {
		if it, ok := h.(*Item); ok && it.layer == l {
			l.selected[it] = struct{}{}
		}
	}
	l.changed()
}

// Toggle flips the selection state of h.
func (l *Layer) Toggle(h scene.Handle) {
	it, ok := h.(*Item)
	if !ok || it.layer != l {
		return
	}
	if _, sel := l.selected[it]; sel {
		delete(l.selected, it)
	} else {
		l.selected[it] = struct{}{}
	}
	l.changed()
}

// ClearSelection deselects everything.
func (l *Layer) ClearSelection() {
	if len(l.selected) == 0 {
		return
	}
	clear(l.selected)
	l.changed()
}

func (l *Layer) remove(it *Item) {
	i := slices.Index(l.items, it)
	if i < 0 {
		return
	}
	l.items = slices.Delete(l.items, i, i+1)
	delete(l.selected, it)
	l.changed()
}

func (l *Layer) changed() {
	if l.OnChange != nil {
		l.OnChange()
	}
}

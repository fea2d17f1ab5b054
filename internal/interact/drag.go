// Package interact turns pointer gestures into scene edits.
package interact

import (
	"vecdraw/internal/scene"
	"vecdraw/internal/shape"
	"vecdraw/pkg/geometry"
)

// State is the phase of a drag gesture.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Dragger moves the pressed entry, or its whole group, with the pointer.
// Every move is computed from the positions captured at press time, so
// positions never accumulate rounding drift.
type Dragger struct {
	state   State
	reg     *scene.Registry
	clicked *scene.Entry
	group   shape.GroupID
	origin  geometry.Point2D
	start   map[*scene.Entry]geometry.Placement
	moved   bool
}

// State returns the current phase.
func (d *Dragger) State() State {
	return d.state
}

// Clicked returns the entry the gesture started on, or nil when idle.
func (d *Dragger) Clicked() *scene.Entry {
	return d.clicked
}

// Begin starts a drag on clicked at the scene point pointer. A nil entry
// leaves the dragger idle and reports false.
func (d *Dragger) Begin(reg *scene.Registry, clicked *scene.Entry, pointer geometry.Point2D) bool {
	d.reset()
	if reg == nil || clicked == nil || !reg.Has(clicked) {
		return false
	}
	d.state = Dragging
	d.reg = reg
	d.clicked = clicked
	d.group = clicked.Shape.GroupID
	d.origin = pointer
	for _, e := range reg.All() {
		d.start[e] = e.Placement
	}
	return true
}

// Move places the dragged entries at their start positions plus the
// pointer offset from the press point.
func (d *Dragger) Move(pointer geometry.Point2D) {
	if d.state != Dragging {
		return
	}
	delta := pointer.Sub(d.origin)
	for _, e := range d.targets() {
		start, ok := d.start[e]
		if !ok {
			continue
		}
		d.reg.SetPosition(e, start.Translated(delta).Position())
	}
	if delta != (geometry.Point2D{}) {
		d.moved = true
	}
}

// End finishes the gesture and reports whether anything moved.
func (d *Dragger) End() bool {
	moved := d.state == Dragging && d.moved
	d.reset()
	return moved
}

// Cancel restores the captured positions and ends the gesture.
func (d *Dragger) Cancel() {
	if d.state == Dragging {
		for _, e := range d.targets() {
			if start, ok := d.start[e]; ok {
				d.reg.SetPosition(e, start.Position())
			}
		}
	}
	d.reset()
}

func (d *Dragger) targets() []*scene.Entry {
	if d.group != "" {
		return d.reg.Members(d.group)
	}
	if d.reg.Has(d.clicked) {
		return []*scene.Entry{d.clicked}
	}
	return nil
}

func (d *Dragger) reset() {
	d.state = Idle
	d.reg = nil
	d.clicked = nil
	d.group = ""
	d.origin = geometry.Point2D{}
	d.start = make(map[*scene.Entry]geometry.Placement)
	d.moved = false
}

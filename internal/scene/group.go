package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"vecdraw/internal/logging"
	"vecdraw/internal/shape"
	"vecdraw/pkg/colorutil"
)

// ErrInvalidScale is returned for a scale factor that is not a positive
// finite number.
var ErrInvalidScale = errors.New("scale factor must be positive")

// Engine applies bulk edits to a selection, broadcasting them to every
// member of each group the selection touches.
type Engine struct {
	reg *Registry

	// NewID returns a fresh group id. Defaults to a random UUID.
	NewID func() shape.GroupID
}

// NewEngine creates an engine operating on reg.
func NewEngine(reg *Registry) *Engine {
	return &Engine{
		reg:   reg,
		NewID: func() shape.GroupID { return shape.GroupID(uuid.NewString()) },
	}
}

// Resolve returns the selection plus every member of every group it
// touches, without duplicates, in registry order.
func (g *Engine) Resolve(sel []*Entry) []*Entry {
	seen := make(map[*Entry]struct{}, len(sel))
	var out []*Entry
	add := func(e *Entry) {
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	groups := make(map[shape.GroupID]struct{})
	for _, e := range sel {
		if !g.reg.Has(e) {
			continue
		}
		add(e)
		if e.Shape.Grouped() {
			groups[e.Shape.GroupID] = struct{}{}
		}
	}
	for id := range groups {
		for _, m := range g.reg.Members(id) {
			add(m)
		}
	}
	sortByID(out)
	return out
}

// Recolor sets the fill color of every affected entry. Lines show the new
// color on their stroke.
func (g *Engine) Recolor(sel []*Entry, c colorutil.RGB) int {
	affected := g.Resolve(sel)
	for _, e := range affected {
		e.Shape.Style.Fill = c
		e.syncStyle()
	}
	if len(affected) > 0 {
		logging.Logger().Info("recolored", "shapes", len(affected), "color", c.Hex())
	}
	return len(affected)
}

// Rotate adds degrees to the rotation of every affected entry, once each.
func (g *Engine) Rotate(sel []*Entry, degrees float64) int {
	affected := g.Resolve(sel)
	for _, e := range affected {
		e.Placement.Rotation += degrees
		e.Handle.SetRotation(e.Placement.Rotation)
	}
	if len(affected) > 0 {
		logging.Logger().Info("rotated", "shapes", len(affected), "degrees", degrees)
	}
	return len(affected)
}

// Scale multiplies the placement scale of every affected entry by factor.
// Scaling pivots on each shape's own center, so the center never moves.
// An invalid factor changes nothing.
func (g *Engine) Scale(sel []*Entry, factor float64) (int, error) {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidScale, factor)
	}
	affected := g.Resolve(sel)
	for _, e := range affected {
		if s := e.Placement.Scale * factor; !(s > 0) || math.IsInf(s, 0) {
			return 0, fmt.Errorf("%w: %v times %v is out of range", ErrInvalidScale, e.Placement.Scale, factor)
		}
	}
	for _, e := range affected {
		e.Placement.Scale *= factor
		e.Handle.SetScale(e.Placement.Scale)
		if !e.inSync() {
			logging.Logger().Warn("visual item out of sync, resyncing", "entry", e.ID)
			e.syncPlacement()
		}
	}
	if len(affected) > 0 {
		logging.Logger().Info("scaled", "shapes", len(affected), "factor", factor)
	}
	return len(affected), nil
}

// Group assigns one fresh id to every selected entry, merging any groups
// they belonged to. It reports false when the selection is empty.
func (g *Engine) Group(sel []*Entry) (shape.GroupID, bool) {
	var members []*Entry
	for _, e := range sel {
		if g.reg.Has(e) {
			members = append(members, e)
		}
	}
	if len(members) == 0 {
		return "", false
	}
	id := g.NewID()
	for _, e := range members {
		g.reg.setGroup(e, id)
	}
	logging.Logger().Info("grouped", "shapes", len(members), "group", string(id), "groups", g.reg.Groups())
	return id, true
}

// Ungroup clears the group id of the selected entries only. Other members
// of their groups keep the id.
func (g *Engine) Ungroup(sel []*Entry) int {
	n := 0
	for _, e := range sel {
		if !g.reg.Has(e) || !e.Shape.Grouped() {
			continue
		}
		g.reg.setGroup(e, "")
		n++
	}
	if n > 0 {
		logging.Logger().Info("ungrouped", "shapes", n)
	}
	return n
}

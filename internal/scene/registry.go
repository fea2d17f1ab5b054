package scene

import (
	"cmp"
	"slices"

	"vecdraw/internal/logging"
	"vecdraw/internal/shape"
	"vecdraw/pkg/geometry"
)

// HitTolerance is the distance in scene units within which a click hits a
// line or an auxiliary polygon line.
const HitTolerance = 4.0

// Registry is the ordered set of placed shapes in a drawing. Order is
// insertion order, which is also the z-order and the save order.
type Registry struct {
	surface Surface

	entries  []*Entry
	byHandle map[Handle]*Entry

	// Group index: members of each non-empty group id.
	groups map[shape.GroupID]map[*Entry]struct{}

	nextID uint64
}

// NewRegistry creates an empty registry. Visual items are created through
// surface; a nil surface gives entries inert handles.
func NewRegistry(surface Surface) *Registry {
	return &Registry{
		surface:  surface,
		byHandle: make(map[Handle]*Entry),
		groups:   make(map[shape.GroupID]map[*Entry]struct{}),
	}
}

// Add appends s with an identity placement.
func (r *Registry) Add(s *shape.Shape) *Entry {
	return r.AddPlaced(s, geometry.IdentityPlacement())
}

// AddPlaced appends s with the given placement, creating its visual item.
func (r *Registry) AddPlaced(s *shape.Shape, p geometry.Placement) *Entry {
	r.nextID++
	e := &Entry{ID: r.nextID, Shape: s, Placement: p}
	if r.surface != nil {
		e.Handle = r.surface.Create(s)
	} else {
		e.Handle = &nopHandle{id: e.ID, local: e.LocalBounds().Center()}
	}
	e.syncStyle()
	e.syncPlacement()

	r.entries = append(r.entries, e)
	r.byHandle[e.Handle] = e
	r.index(e)

	logging.Logger().Debug("shape added", "id", e.ID, "kind", s.Kind().String(), "group", string(s.GroupID))
	return e
}

// Remove deletes e and its visual item. Removing an entry that is not in
// the registry does nothing.
func (r *Registry) Remove(e *Entry) {
	if !r.Has(e) {
		return
	}
	r.unindex(e)
	delete(r.byHandle, e.Handle)
	if i := slices.Index(r.entries, e); i >= 0 {
		r.entries = slices.Delete(r.entries, i, i+1)
	}
	e.Handle.Remove()
}

// Clear removes every entry.
func (r *Registry) Clear() {
	for _, e := range r.entries {
		e.Handle.Remove()
	}
	r.entries = nil
	r.byHandle = make(map[Handle]*Entry)
	r.groups = make(map[shape.GroupID]map[*Entry]struct{})
}

// Has reports whether e is in the registry.
func (r *Registry) Has(e *Entry) bool {
	return e != nil && r.Find(e.Handle) == e
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// All returns the entries in order.
func (r *Registry) All() []*Entry {
	return slices.Clone(r.entries)
}

// Find returns the entry owning h, or nil.
func (r *Registry) Find(h Handle) *Entry {
	return r.byHandle[h]
}

// Selected returns the entries whose visual items are selected on the
// surface, in registry order.
func (r *Registry) Selected() []*Entry {
	if r.surface == nil {
		return nil
	}
	var sel []*Entry
	for _, h := range r.surface.CurrentSelection() {
		if e := r.Find(h); e != nil {
			sel = append(sel, e)
		}
	}
	sortByID(sel)
	return slices.Compact(sel)
}

// Members returns the entries carrying id, in registry order. The empty id
// has no members.
func (r *Registry) Members(id shape.GroupID) []*Entry {
	set := r.groups[id]
	if len(set) == 0 {
		return nil
	}
	out := make([]*Entry, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	sortByID(out)
	return out
}

// Groups returns the number of distinct non-empty group ids in use.
func (r *Registry) Groups() int {
	return len(r.groups)
}

// HitTest returns the topmost entry containing the scene point p, or nil.
func (r *Registry) HitTest(p geometry.Point2D) *Entry {
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].Contains(p, HitTolerance) {
			return r.entries[i]
		}
	}
	return nil
}

// Within returns the entries whose scene bounds intersect area, in order.
func (r *Registry) Within(area geometry.Rect) []*Entry {
	area = area.Normalize()
	var out []*Entry
	for _, e := range r.entries {
		if e.Bounds().Intersects(area) {
			out = append(out, e)
		}
	}
	return out
}

// SetPosition moves e so its placement translation is pos.
func (r *Registry) SetPosition(e *Entry, pos geometry.Point2D) {
	e.Placement.X = pos.X
	e.Placement.Y = pos.Y
	e.Handle.SetPosition(pos.X, pos.Y)
}

// Bounds returns the union of all scene bounds, or an empty rect.
func (r *Registry) Bounds() geometry.Rect {
	var out geometry.Rect
	for i, e := range r.entries {
		if i == 0 {
			out = e.Bounds()
			continue
		}
		out = out.Union(e.Bounds())
	}
	return out
}

func (r *Registry) setGroup(e *Entry, id shape.GroupID) {
	if e.Shape.GroupID == id {
		return
	}
	r.unindex(e)
	e.Shape.GroupID = id
	r.index(e)
}

func (r *Registry) index(e *Entry) {
	id := e.Shape.GroupID
	if id == "" {
		return
	}
	set := r.groups[id]
	if set == nil {
		set = make(map[*Entry]struct{})
		r.groups[id] = set
	}
	set[e] = struct{}{}
}

func (r *Registry) unindex(e *Entry) {
	id := e.Shape.GroupID
	set := r.groups[id]
	if set == nil {
		return
	}
	delete(set, e)
	if len(set) == 0 {
		delete(r.groups, id)
	}
}

// Entry ids grow with insertion, so id order is registry order.
func sortByID(es []*Entry) {
	slices.SortFunc(es, func(a, b *Entry) int { return cmp.Compare(a.ID, b.ID) })
}

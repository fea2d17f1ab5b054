package scene

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecdraw/internal/shape"
	"vecdraw/pkg/colorutil"
	"vecdraw/pkg/geometry"
)

type fakeHandle struct {
	fill        colorutil.RGB
	stroke      colorutil.RGB
	strokeWidth float64
	rotation    float64
	scale       float64
	x, y        float64
	local       geometry.Point2D
	removed     int
}

func (h *fakeHandle) SetFill(c colorutil.RGB)              { h.fill = c }
func (h *fakeHandle) SetStroke(c colorutil.RGB, w float64) { h.stroke, h.strokeWidth = c, w }
func (h *fakeHandle) SetRotation(d float64)                { h.rotation = d }
func (h *fakeHandle) SetScale(f float64)                   { h.scale = f }
func (h *fakeHandle) SetPosition(x, y float64)             { h.x, h.y = x, y }
func (h *fakeHandle) BoundingCenter() geometry.Point2D     { return h.local.Add(geometry.NewPoint2D(h.x, h.y)) }
func (h *fakeHandle) Remove()                              { h.removed++ }

type fakeSurface struct {
	selected []Handle
}

func (s *fakeSurface) Create(sh *shape.Shape) Handle {
	return &fakeHandle{local: sh.Geometry.Bounds().Center()}
}
func (s *fakeSurface) CurrentSelection() []Handle { return s.selected }

func (s *fakeSurface) selectEntries(es ...*Entry) {
	s.selected = nil
	for _, e := range es {
		s.selected = append(s.selected, e.Handle)
	}
}

func newTestScene() (*Registry, *Engine, *fakeSurface) {
	surf := &fakeSurface{}
	reg := NewRegistry(surf)
	eng := NewEngine(reg)
	n := 0
	eng.NewID = func() shape.GroupID {
		n++
		return shape.GroupID(fmt.Sprintf("g%d", n))
	}
	return reg, eng, surf
}

func rect() *shape.Shape {
	return shape.Default(shape.KindRectangle, colorutil.White)
}

// A, B grouped under g1; C ungrouped.
func groupedTrio(t *testing.T) (*Registry, *Engine, [3]*Entry) {
	reg, eng, _ := newTestScene()
	a, b, c := reg.Add(rect()), reg.Add(rect()), reg.Add(rect())
	id, ok := eng.Group([]*Entry{a, b})
	require.True(t, ok)
	require.Equal(t, shape.GroupID("g1"), id)
	return reg, eng, [3]*Entry{a, b, c}
}

func TestAddSyncsHandle(t *testing.T) {
	reg, _, _ := newTestScene()
	e := reg.Add(rect())
	h := e.Handle.(*fakeHandle)

	assert.Equal(t, uint64(1), e.ID)
	assert.Equal(t, colorutil.White, h.fill)
	assert.Equal(t, colorutil.White, h.stroke)
	assert.Equal(t, 2.0, h.strokeWidth)
	assert.Equal(t, 1.0, h.scale)
	assert.Same(t, e, reg.Find(h))
}

func TestRemoveTwiceIsNoop(t *testing.T) {
	reg, _, _ := newTestScene()
	a := reg.Add(rect())
	b := reg.Add(rect())

	reg.Remove(a)
	reg.Remove(a)

	assert.Equal(t, 1, a.Handle.(*fakeHandle).removed)
	assert.Equal(t, []*Entry{b}, reg.All())
	assert.False(t, reg.Has(a))
}

func TestRemoveMaintainsGroupIndex(t *testing.T) {
	reg, _, es := groupedTrio(t)
	reg.Remove(es[0])
	assert.Equal(t, []*Entry{es[1]}, reg.Members("g1"))

	reg.Remove(es[1])
	assert.Empty(t, reg.Members("g1"))
	assert.Equal(t, 0, reg.Groups())
}

func TestClear(t *testing.T) {
	reg, _, es := groupedTrio(t)
	reg.Clear()
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, 0, reg.Groups())
	for _, e := range es {
		assert.Equal(t, 1, e.Handle.(*fakeHandle).removed)
	}
}

func TestSelectedFollowsRegistryOrder(t *testing.T) {
	reg, _, surf := newTestScene()
	a, b, c := reg.Add(rect()), reg.Add(rect()), reg.Add(rect())
	surf.selectEntries(c, a, c)
	assert.Equal(t, []*Entry{a, c}, reg.Selected())
	_ = b
}

func TestResolve(t *testing.T) {
	_, eng, es := groupedTrio(t)
	a, b, c := es[0], es[1], es[2]

	assert.Equal(t, []*Entry{a, b}, eng.Resolve([]*Entry{b}))
	assert.Equal(t, []*Entry{a, b, c}, eng.Resolve([]*Entry{c, a}))
	assert.Equal(t, []*Entry{c}, eng.Resolve([]*Entry{c}))
	assert.Empty(t, eng.Resolve(nil))
}

func TestRotateBroadcastsToGroup(t *testing.T) {
	_, eng, es := groupedTrio(t)
	a, b, c := es[0], es[1], es[2]

	n := eng.Rotate([]*Entry{a}, 15)
	assert.Equal(t, 2, n)
	assert.Equal(t, 15.0, a.Placement.Rotation)
	assert.Equal(t, 15.0, b.Placement.Rotation)
	assert.Equal(t, 0.0, c.Placement.Rotation)
	assert.Equal(t, 15.0, b.Handle.(*fakeHandle).rotation)
}

func TestRotateAppliesOncePerMember(t *testing.T) {
	_, eng, es := groupedTrio(t)
	a, b := es[0], es[1]

	eng.Rotate([]*Entry{a, b, a}, 15)
	assert.Equal(t, 15.0, a.Placement.Rotation)
	assert.Equal(t, 15.0, b.Placement.Rotation)
}

func TestUngroupedSelectionIsNotAGroup(t *testing.T) {
	reg, eng, _ := newTestScene()
	a, b := reg.Add(rect()), reg.Add(rect())
	eng.Rotate([]*Entry{a}, -15)
	assert.Equal(t, -15.0, a.Placement.Rotation)
	assert.Equal(t, 0.0, b.Placement.Rotation)
}

func TestUngroupIsLocalToSelection(t *testing.T) {
	// Ungroup only touches the selected entries while Rotate and Scale
	// reach the whole group.
	reg, eng, es := groupedTrio(t)
	a, b := es[0], es[1]

	assert.Equal(t, 1, eng.Ungroup([]*Entry{a}))
	assert.False(t, a.Shape.Grouped())
	assert.Equal(t, shape.GroupID("g1"), b.Shape.GroupID)
	assert.Equal(t, []*Entry{b}, reg.Members("g1"))

	eng.Rotate([]*Entry{a}, 15)
	assert.Equal(t, 0.0, b.Placement.Rotation)
}

func TestScaleBroadcastsAndKeepsCenter(t *testing.T) {
	_, eng, es := groupedTrio(t)
	a, b, c := es[0], es[1], es[2]
	center := a.Bounds().Center()

	n, err := eng.Scale([]*Entry{b}, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2.0, a.Placement.Scale)
	assert.Equal(t, 2.0, b.Placement.Scale)
	assert.Equal(t, 1.0, c.Placement.Scale)

	got := a.Bounds()
	assert.InDelta(t, center.X, got.Center().X, 1e-9)
	assert.InDelta(t, center.Y, got.Center().Y, 1e-9)
	assert.InDelta(t, 200, got.Width, 1e-9)
	assert.InDelta(t, 120, got.Height, 1e-9)
}

func TestScaleOneIsStable(t *testing.T) {
	reg, eng, _ := newTestScene()
	e := reg.Add(shape.Default(shape.KindPolygon, colorutil.White))
	eng.Rotate([]*Entry{e}, 33)
	_, err := eng.Scale([]*Entry{e}, 1.7)
	require.NoError(t, err)

	geom := *e.Shape.Geometry.(*shape.Polygon)
	verts := append([]geometry.Point2D(nil), geom.Vertices...)
	place := e.Placement

	for range 50 {
		_, err := eng.Scale([]*Entry{e}, 1.0)
		require.NoError(t, err)
	}
	assert.Equal(t, place, e.Placement)
	assert.Equal(t, verts, e.Shape.Geometry.(*shape.Polygon).Vertices)
}

func TestScaleRejectsInvalidFactor(t *testing.T) {
	_, eng, es := groupedTrio(t)
	for _, f := range []float64{0, -1} {
		n, err := eng.Scale([]*Entry{es[0]}, f)
		assert.ErrorIs(t, err, ErrInvalidScale)
		assert.Zero(t, n)
	}
	assert.Equal(t, 1.0, es[0].Placement.Scale)
	assert.Equal(t, 1.0, es[1].Placement.Scale)
}

func TestScaleRejectsOverflowingProduct(t *testing.T) {
	_, eng, es := groupedTrio(t)
	_, err := eng.Scale([]*Entry{es[2]}, 1e300)
	require.NoError(t, err)

	n, err := eng.Scale([]*Entry{es[0], es[2]}, 1e10)
	assert.ErrorIs(t, err, ErrInvalidScale)
	assert.Zero(t, n)
	assert.Equal(t, 1.0, es[0].Placement.Scale)
	assert.Equal(t, 1.0, es[1].Placement.Scale)
	assert.Equal(t, 1e300, es[2].Placement.Scale)
}

func TestScaleResyncsStaleHandle(t *testing.T) {
	reg, eng, _ := newTestScene()
	e := reg.Add(rect())
	reg.SetPosition(e, geometry.NewPoint2D(30, 40))
	h := e.Handle.(*fakeHandle)
	h.x, h.y = 999, 999

	_, err := eng.Scale([]*Entry{e}, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 30.0, h.x)
	assert.Equal(t, 40.0, h.y)
	assert.InDelta(t, e.Center().X, h.BoundingCenter().X, 1e-9)
	assert.InDelta(t, e.Center().Y, h.BoundingCenter().Y, 1e-9)
}

func TestNopHandleTracksPosition(t *testing.T) {
	reg := NewRegistry(nil)
	e := reg.Add(rect())
	reg.SetPosition(e, geometry.NewPoint2D(-10, 25))
	assert.True(t, e.inSync())
	assert.Equal(t, e.Center(), e.Handle.BoundingCenter())
}

func TestRecolorLineUsesStroke(t *testing.T) {
	reg, eng, _ := newTestScene()
	line := reg.Add(shape.Default(shape.KindLine, colorutil.White))
	red := colorutil.RGB{R: 255}

	assert.Equal(t, 1, eng.Recolor([]*Entry{line}, red))
	h := line.Handle.(*fakeHandle)
	assert.Equal(t, red, line.Shape.Style.Fill)
	assert.Equal(t, red, h.stroke)
}

func TestRecolorGroup(t *testing.T) {
	_, eng, es := groupedTrio(t)
	gold := colorutil.Gold
	assert.Equal(t, 2, eng.Recolor([]*Entry{es[1]}, gold))
	assert.Equal(t, gold, es[0].Handle.(*fakeHandle).fill)
	assert.Equal(t, colorutil.White, es[2].Shape.Style.Fill)
}

func TestEmptySelectionIsNoop(t *testing.T) {
	reg, eng, es := groupedTrio(t)

	assert.Zero(t, eng.Rotate(nil, 15))
	n, err := eng.Scale(nil, 2)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, eng.Recolor(nil, colorutil.Gold))
	_, ok := eng.Group(nil)
	assert.False(t, ok)
	assert.Zero(t, eng.Ungroup(nil))

	for _, e := range es {
		assert.Equal(t, geometry.IdentityPlacement(), e.Placement)
		assert.Equal(t, colorutil.White, e.Shape.Style.Fill)
	}
	assert.Len(t, reg.Members("g1"), 2)
}

func TestGroupMergesGroups(t *testing.T) {
	reg, eng, es := groupedTrio(t)
	d := reg.Add(rect())
	e := reg.Add(rect())
	_, ok := eng.Group([]*Entry{d, e})
	require.True(t, ok)

	id, ok := eng.Group([]*Entry{es[0], d})
	require.True(t, ok)
	assert.Equal(t, shape.GroupID("g3"), id)
	assert.Equal(t, []*Entry{es[0], d}, reg.Members(id))
	assert.Equal(t, []*Entry{es[1]}, reg.Members("g1"))
	assert.Equal(t, []*Entry{e}, reg.Members("g2"))
}

func TestGroupDefaultIDsAreUnique(t *testing.T) {
	reg := NewRegistry(nil)
	eng := NewEngine(reg)
	a := reg.Add(rect())
	id1, _ := eng.Group([]*Entry{a})
	id2, _ := eng.Group([]*Entry{a})
	assert.NotEqual(t, id1, id2)
	assert.Len(t, string(id1), 36)
}

func TestHitTest(t *testing.T) {
	reg, _, _ := newTestScene()
	bottom := reg.Add(rect())
	top := reg.Add(shape.Default(shape.KindSquare, colorutil.White))

	assert.Same(t, top, reg.HitTest(geometry.NewPoint2D(100, 100)))
	assert.Same(t, bottom, reg.HitTest(geometry.NewPoint2D(55, 55)))
	assert.Nil(t, reg.HitTest(geometry.NewPoint2D(400, 400)))

	reg.SetPosition(bottom, geometry.NewPoint2D(300, 300))
	assert.Same(t, bottom, reg.HitTest(geometry.NewPoint2D(355, 355)))
	assert.Equal(t, 300.0, bottom.Handle.(*fakeHandle).x)
}

func TestHitTestRotatedLine(t *testing.T) {
	reg, eng, _ := newTestScene()
	line := reg.Add(shape.NewLine(0, 0, 100, 0, colorutil.White))
	eng.Rotate([]*Entry{line}, 90)

	assert.Same(t, line, reg.HitTest(geometry.NewPoint2D(50, 40)))
	assert.Nil(t, reg.HitTest(geometry.NewPoint2D(90, 0)))
}

func TestWithin(t *testing.T) {
	reg, _, _ := newTestScene()
	a := reg.Add(rect())
	b := reg.Add(shape.NewRectangle(500, 500, 10, 10, colorutil.White))
	assert.Equal(t, []*Entry{a}, reg.Within(geometry.NewRect(0, 0, 60, 60)))
	assert.Equal(t, []*Entry{a, b}, reg.Within(geometry.NewRect(600, 600, -600, -600)))
}

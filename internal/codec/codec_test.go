package codec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecdraw/internal/scene"
	"vecdraw/internal/shape"
	"vecdraw/pkg/colorutil"
	"vecdraw/pkg/geometry"
)

func roundTrip(t *testing.T, reg *scene.Registry) *scene.Registry {
	t.Helper()
	data, err := Marshal(Encode(reg.All()))
	require.NoError(t, err)
	records, err := Unmarshal(data)
	require.NoError(t, err)
	res, err := Decode(records)
	require.NoError(t, err)
	require.Empty(t, res.Skipped)

	fresh := scene.NewRegistry(nil)
	Apply(fresh, res)
	return fresh
}

func TestRoundTripEveryKind(t *testing.T) {
	reg := scene.NewRegistry(nil)
	eng := scene.NewEngine(reg)
	for i, k := range shape.Kinds {
		e := reg.Add(shape.Default(k, colorutil.RGB{R: uint8(10 * i), G: 20, B: 30}))
		reg.SetPosition(e, geometry.NewPoint2D(float64(i)*12.5, -3.25))
		eng.Rotate([]*scene.Entry{e}, 15*float64(i+1))
		_, err := eng.Scale([]*scene.Entry{e}, 1.1)
		require.NoError(t, err)
	}
	all := reg.All()
	eng.Group(all[1:3])

	got := roundTrip(t, reg).All()
	require.Len(t, got, len(all))
	for i, want := range all {
		g := got[i]
		assert.Equal(t, want.Shape.Kind(), g.Shape.Kind())
		assert.Equal(t, want.Shape.Geometry, g.Shape.Geometry)
		assert.Equal(t, want.Shape.Style, g.Shape.Style)
		assert.Equal(t, want.Shape.GroupID, g.Shape.GroupID)
		assert.InDelta(t, want.Placement.X, g.Placement.X, 1e-6)
		assert.InDelta(t, want.Placement.Y, g.Placement.Y, 1e-6)
		assert.InDelta(t, want.Placement.Rotation, g.Placement.Rotation, 1e-6)
		assert.InDelta(t, want.Placement.Scale, g.Placement.Scale, 1e-6)
	}
}

func TestGroupedRectangleScenario(t *testing.T) {
	reg := scene.NewRegistry(nil)
	eng := scene.NewEngine(reg)
	e := reg.Add(shape.NewRectangle(50, 50, 100, 60, colorutil.White))
	id, ok := eng.Group([]*scene.Entry{e})
	require.True(t, ok)

	got := roundTrip(t, reg).All()
	require.Len(t, got, 1)
	assert.Equal(t, shape.KindRectangle, got[0].Shape.Kind())
	assert.Equal(t, id, got[0].Shape.GroupID)
	assert.Equal(t, &shape.Rectangle{X: 50, Y: 50, Width: 100, Height: 60}, got[0].Shape.Geometry)
}

func TestRoundTripPreservesGroupMembership(t *testing.T) {
	reg := scene.NewRegistry(nil)
	eng := scene.NewEngine(reg)
	a := reg.Add(shape.Default(shape.KindEllipse, colorutil.White))
	b := reg.Add(shape.Default(shape.KindLine, colorutil.White))
	reg.Add(shape.Default(shape.KindSquare, colorutil.White))
	id, _ := eng.Group([]*scene.Entry{a, b})

	fresh := roundTrip(t, reg)
	members := fresh.Members(id)
	require.Len(t, members, 2)
	assert.Equal(t, shape.KindEllipse, members[0].Shape.Kind())
	assert.Equal(t, shape.KindLine, members[1].Shape.Kind())
}

func TestEncodeWritesNullGroup(t *testing.T) {
	reg := scene.NewRegistry(nil)
	reg.Add(shape.Default(shape.KindSquare, colorutil.White))
	data, err := Marshal(Encode(reg.All()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"group_id": null`)
	assert.Contains(t, string(data), `"size": 80`)
	assert.Contains(t, string(data), "\n  {\n    \"type\": \"Square\"")
}

func TestMarshalEmpty(t *testing.T) {
	data, err := Marshal(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestDecodeSkipsUnknownKinds(t *testing.T) {
	records, err := Unmarshal([]byte(`[
		{"type": "Triangle", "x": 0, "y": 0},
		{"type": "Line", "x": 1, "y": 2, "x2": 3, "y2": 4, "fill_color": [255, 0, 0]}
	]`))
	require.NoError(t, err)

	res, err := Decode(records)
	require.NoError(t, err)
	require.Len(t, res.Shapes, 1)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 0, res.Skipped[0].Index)
	assert.Equal(t, "Triangle", res.Skipped[0].Type)
	assert.ErrorIs(t, res.Skipped[0].Err, ErrUnknownKind)

	s := res.Shapes[0].Shape
	assert.Equal(t, &shape.Line{X: 1, Y: 2, X2: 3, Y2: 4}, s.Geometry)
	assert.Equal(t, colorutil.RGB{R: 255}, s.Style.Fill)
	assert.Equal(t, geometry.IdentityPlacement(), res.Shapes[0].Placement)
}

func TestDecodeFailsWholeOnInvalidRecord(t *testing.T) {
	for name, doc := range map[string]string{
		"missing height":  `[{"type": "Rectangle", "x": 0, "y": 0, "width": 5}]`,
		"negative width":  `[{"type": "Ellipse", "x": 0, "y": 0, "width": -5, "height": 2}]`,
		"zero scale":      `[{"type": "Square", "x": 0, "y": 0, "size": 5, "scale": 0}]`,
		"two vertices":    `[{"type": "Polygon", "x": 0, "y": 0, "vertices": [[0,0],[1,1]]}]`,
		"line without x2": `[{"type": "Line", "x": 0, "y": 0, "y2": 3}]`,
	} {
		t.Run(name, func(t *testing.T) {
			records, err := Unmarshal([]byte(`[{"type": "Square", "x": 0, "y": 0, "size": 1}, ` + doc[1:]))
			require.NoError(t, err)
			res, err := Decode(records)
			assert.ErrorIs(t, err, ErrInvalidRecord)
			assert.Empty(t, res.Shapes)
		})
	}
}

func TestDecodeLegacyFormat(t *testing.T) {
	records, err := Unmarshal([]byte(`[
		{"type": "SquareShape", "x": 70, "y": 70, "width": 80, "rotation": 30, "scale_x": 1.5,
		 "fill_color": [1, 2, 3], "border_color": [4, 5, 6], "group_id": 140230},
		{"type": "RectangleShape", "x": 10, "y": 20, "width": 5, "height": 6, "rotation": 0,
		 "scale_x": 1, "fill_color": [0, 0, 0], "border_color": [0, 0, 0], "group_id": null}
	]`))
	require.NoError(t, err)

	res, err := Decode(records)
	require.NoError(t, err)
	require.Len(t, res.Shapes, 2)

	sq := res.Shapes[0]
	assert.Equal(t, &shape.Square{X: 70, Y: 70, Size: 80}, sq.Shape.Geometry)
	assert.Equal(t, shape.GroupID("140230"), sq.Shape.GroupID)
	assert.Equal(t, colorutil.RGB{R: 4, G: 5, B: 6}, sq.Shape.Style.Border)
	assert.Equal(t, geometry.Placement{X: 70, Y: 70, Rotation: 30, Scale: 1.5}, sq.Placement)

	assert.False(t, res.Shapes[1].Shape.Grouped())
}

func TestDecodeOptionalFieldsDefault(t *testing.T) {
	records, err := Unmarshal([]byte(`[{"type": "Ellipse", "x": 1, "y": 1, "width": 2, "height": 3}]`))
	require.NoError(t, err)
	res, err := Decode(records)
	require.NoError(t, err)
	st := res.Shapes[0].Shape.Style
	assert.Equal(t, shape.DefaultStyle(colorutil.White), st)
}

func TestGroupRef(t *testing.T) {
	var g GroupRef
	require.NoError(t, g.UnmarshalJSON([]byte(`"abc"`)))
	assert.Equal(t, GroupRef("abc"), g)
	require.NoError(t, g.UnmarshalJSON([]byte(`42`)))
	assert.Equal(t, GroupRef("42"), g)
	require.NoError(t, g.UnmarshalJSON([]byte(`null`)))
	assert.Equal(t, GroupRef(""), g)
	assert.Error(t, g.UnmarshalJSON([]byte(`true`)))
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drawing.json")
	reg := scene.NewRegistry(nil)
	reg.Add(shape.Default(shape.KindPolygon, colorutil.White))
	require.NoError(t, WriteFile(path, Encode(reg.All())))

	res, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, res.Shapes, 1)
	p := res.Shapes[0].Shape.Geometry.(*shape.Polygon)
	assert.Len(t, p.Vertices, 4)
	assert.Len(t, p.Lines, 1)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not": "an array"}`), 0644))
	_, err = ReadFile(bad)
	assert.Error(t, err)
}

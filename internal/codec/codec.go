package codec

import (
	"errors"
	"fmt"

	"vecdraw/internal/logging"
	"vecdraw/internal/scene"
	"vecdraw/internal/shape"
	"vecdraw/pkg/colorutil"
	"vecdraw/pkg/geometry"
)

var (
	// ErrUnknownKind marks a record whose type is not a known shape kind.
	// Such records are skipped.
	ErrUnknownKind = errors.New("unknown shape kind")

	// ErrInvalidRecord is returned when a record has missing or invalid
	// geometry or placement. It fails the whole decode.
	ErrInvalidRecord = errors.New("invalid record")
)

// Placed is a decoded shape with its placement.
type Placed struct {
	Shape     *shape.Shape
	Placement geometry.Placement
}

// Skip describes a record that was not decoded.
type Skip struct {
	Index int
	Type  string
	Err   error
}

// Result is the outcome of a decode. Shapes are in record order.
type Result struct {
	Shapes  []Placed
	Skipped []Skip
}

// Encode converts entries to records, in order.
func Encode(entries []*scene.Entry) []Record {
	out := make([]Record, 0, len(entries))
	for _, e := range entries {
		out = append(out, encodeEntry(e))
	}
	return out
}

func encodeEntry(e *scene.Entry) Record {
	s := e.Shape
	r := Record{
		Type:        s.Kind().String(),
		PosX:        ptr(e.Placement.X),
		PosY:        ptr(e.Placement.Y),
		Rotation:    e.Placement.Rotation,
		Scale:       ptr(e.Placement.Scale),
		FillColor:   ptr(s.Style.Fill),
		BorderColor: ptr(s.Style.Border),
		StrokeWidth: ptr(s.Style.StrokeWidth),
		Alpha:       ptr(s.Style.Alpha),
		GroupID:     GroupRef(s.GroupID),
	}
	switch g := s.Geometry.(type) {
	case *shape.Rectangle:
		r.X, r.Y = g.X, g.Y
		r.Width, r.Height = ptr(g.Width), ptr(g.Height)
	case *shape.Ellipse:
		r.X, r.Y = g.X, g.Y
		r.Width, r.Height = ptr(g.Width), ptr(g.Height)
	case *shape.Square:
		r.X, r.Y = g.X, g.Y
		r.Size = ptr(g.Size)
	case *shape.Line:
		r.X, r.Y = g.X, g.Y
		r.X2, r.Y2 = ptr(g.X2), ptr(g.Y2)
	case *shape.Polygon:
		r.Vertices = make([][2]float64, len(g.Vertices))
		for i, v := range g.Vertices {
			r.Vertices[i] = [2]float64{v.X, v.Y}
		}
		for _, l := range g.Lines {
			r.Lines = append(r.Lines, [2][2]float64{{l.Start.X, l.Start.Y}, {l.End.X, l.End.Y}})
		}
	default:
		panic(fmt.Sprintf("codec: unhandled geometry %T", g))
	}
	return r
}

// Decode rebuilds shapes from records. Records of unknown kind are skipped
// and listed in the result. Any other invalid record fails the decode and
// nothing is returned.
func Decode(records []Record) (Result, error) {
	var res Result
	for i := range records {
		rec := &records[i]
		p, err := decodeRecord(rec)
		if errors.Is(err, ErrUnknownKind) {
			logging.Logger().Warn("skipping record", "index", i, "type", rec.Type)
			res.Skipped = append(res.Skipped, Skip{Index: i, Type: rec.Type, Err: err})
			continue
		}
		if err != nil {
			return Result{}, fmt.Errorf("record %d: %w", i, err)
		}
		res.Shapes = append(res.Shapes, p)
	}
	return res, nil
}

func decodeRecord(r *Record) (Placed, error) {
	kind, ok := shape.ParseKind(r.Type)
	if !ok {
		return Placed{}, fmt.Errorf("%w: %q", ErrUnknownKind, r.Type)
	}

	fill := colorutil.White
	if r.FillColor != nil {
		fill = *r.FillColor
	}

	var s *shape.Shape
	switch kind {
	case shape.KindRectangle, shape.KindEllipse:
		if r.Width == nil || r.Height == nil {
			return Placed{}, fmt.Errorf("%w: %s needs width and height", ErrInvalidRecord, kind)
		}
		if kind == shape.KindRectangle {
			s = shape.NewRectangle(r.X, r.Y, *r.Width, *r.Height, fill)
		} else {
			s = shape.NewEllipse(r.X, r.Y, *r.Width, *r.Height, fill)
		}
	case shape.KindSquare:
		size := r.Size
		if size == nil {
			size = r.Width
		}
		if size == nil {
			return Placed{}, fmt.Errorf("%w: square needs size", ErrInvalidRecord)
		}
		s = shape.NewSquare(r.X, r.Y, *size, fill)
	case shape.KindLine:
		if r.X2 == nil || r.Y2 == nil {
			return Placed{}, fmt.Errorf("%w: line needs x2 and y2", ErrInvalidRecord)
		}
		s = shape.NewLine(r.X, r.Y, *r.X2, *r.Y2, fill)
	case shape.KindPolygon:
		verts := make([]geometry.Point2D, len(r.Vertices))
		for i, v := range r.Vertices {
			verts[i] = geometry.NewPoint2D(v[0], v[1])
		}
		lines := make([]shape.Segment, len(r.Lines))
		for i, l := range r.Lines {
			lines[i] = shape.Segment{
				Start: geometry.NewPoint2D(l[0][0], l[0][1]),
				End:   geometry.NewPoint2D(l[1][0], l[1][1]),
			}
		}
		s = shape.NewPolygon(verts, lines, fill)
	default:
		panic(fmt.Sprintf("codec: unhandled kind %v", kind))
	}

	if r.BorderColor != nil {
		s.Style.Border = *r.BorderColor
	}
	if r.StrokeWidth != nil {
		s.Style.StrokeWidth = *r.StrokeWidth
	}
	if r.Alpha != nil {
		s.Style.Alpha = *r.Alpha
	}
	s.GroupID = shape.GroupID(r.GroupID)

	if err := s.Validate(); err != nil {
		return Placed{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	p, err := decodePlacement(r)
	if err != nil {
		return Placed{}, err
	}
	return Placed{Shape: s, Placement: p}, nil
}

func decodePlacement(r *Record) (geometry.Placement, error) {
	p := geometry.IdentityPlacement()
	p.Rotation = r.Rotation
	switch {
	case r.Scale != nil:
		p.Scale = *r.Scale
	case r.ScaleX != nil:
		p.Scale = *r.ScaleX
	}
	if r.PosX != nil {
		p.X = *r.PosX
	}
	if r.PosY != nil {
		p.Y = *r.PosY
	}
	if r.legacy() {
		p.X, p.Y = r.X, r.Y
	}
	if !p.IsValid() {
		return p, fmt.Errorf("%w: placement %+v", ErrInvalidRecord, p)
	}
	return p, nil
}

// Apply adds the decoded shapes to reg in order and returns the new entries.
func Apply(reg *scene.Registry, res Result) []*scene.Entry {
	out := make([]*scene.Entry, 0, len(res.Shapes))
	for _, p := range res.Shapes {
		out = append(out, reg.AddPlaced(p.Shape, p.Placement))
	}
	return out
}

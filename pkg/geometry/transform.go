package geometry

import "math"

// AffineTransform represents a 2x3 affine transformation matrix.
// [a b tx]
// [c d ty]
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

// Identity returns the identity transform.
func Identity() AffineTransform {
	return AffineTransform{A: 1, D: 1}
}

// Translation returns a translation transform.
func Translation(tx, ty float64) AffineTransform {
	return AffineTransform{A: 1, D: 1, TX: tx, TY: ty}
}

// Rotation returns a rotation transform around the origin.
func Rotation(radians float64) AffineTransform {
	cos := math.Cos(radians)
	sin := math.Sin(radians)
	return AffineTransform{A: cos, B: -sin, C: sin, D: cos}
}

// Scale returns a scaling transform.
func Scale(sx, sy float64) AffineTransform {
	return AffineTransform{A: sx, D: sy}
}

// Apply applies the transform to a point.
func (t AffineTransform) Apply(p Point2D) Point2D {
	return Point2D{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// Compose returns this transform composed with another (this * other).
func (t AffineTransform) Compose(other AffineTransform) AffineTransform {
	return AffineTransform{
		A:  t.A*other.A + t.B*other.C,
		B:  t.A*other.B + t.B*other.D,
		TX: t.A*other.TX + t.B*other.TY + t.TX,
		C:  t.C*other.A + t.D*other.C,
		D:  t.C*other.B + t.D*other.D,
		TY: t.C*other.TX + t.D*other.TY + t.TY,
	}
}

// Inverse returns the inverse transform, if it exists.
func (t AffineTransform) Inverse() (AffineTransform, bool) {
	det := t.A*t.D - t.B*t.C
	if math.Abs(det) < 1e-10 {
		return AffineTransform{}, false
	}

	invDet := 1.0 / det
	return AffineTransform{
		A:  t.D * invDet,
		B:  -t.B * invDet,
		TX: (t.B*t.TY - t.D*t.TX) * invDet,
		C:  -t.C * invDet,
		D:  t.A * invDet,
		TY: (t.C*t.TX - t.A*t.TY) * invDet,
	}, true
}

// Placement is the transform layered on top of a shape's local geometry:
// a translation, a rotation in degrees and a uniform scale factor. Rotation
// and scale pivot on the local bounding-box center, so neither moves it.
type Placement struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
	Scale    float64 `json:"scale"`
}

// IdentityPlacement returns a placement that leaves geometry unchanged.
func IdentityPlacement() Placement {
	return Placement{Scale: 1}
}

// Position returns the translation component.
func (p Placement) Position() Point2D {
	return Point2D{X: p.X, Y: p.Y}
}

// Translated returns the placement moved by delta.
func (p Placement) Translated(delta Point2D) Placement {
	p.X += delta.X
	p.Y += delta.Y
	return p
}

// Matrix returns the local-to-scene transform for geometry whose local
// bounding-box center is origin.
func (p Placement) Matrix(origin Point2D) AffineTransform {
	return Translation(p.X+origin.X, p.Y+origin.Y).
		Compose(Rotation(p.Rotation * math.Pi / 180)).
		Compose(Scale(p.Scale, p.Scale)).
		Compose(Translation(-origin.X, -origin.Y))
}

// Apply maps a local point to scene space: scale and rotate about origin,
// then translate. It agrees with Matrix(origin).Apply.
func (p Placement) Apply(origin, pt Point2D) Point2D {
	if p.Scale != 1 {
		pt = origin.Add(pt.Sub(origin).Scale(p.Scale))
	}
	return pt.RotateAbout(p.Rotation, origin).Add(p.Position())
}

// MapRect returns the scene-space bounding box of a local rectangle.
func (p Placement) MapRect(local Rect) Rect {
	origin := local.Center()
	corners := local.Corners()
	for i, c := range corners {
		corners[i] = p.Apply(origin, c)
	}
	return BoundingBox(corners)
}

// IsValid reports whether all fields are finite and the scale is positive.
func (p Placement) IsValid() bool {
	return IsFinite(p.X, p.Y, p.Rotation, p.Scale) && p.Scale > 0
}

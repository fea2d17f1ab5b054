package interact

import (
	"vecdraw/internal/scene"
	"vecdraw/pkg/geometry"
)

// Band is a rubber-band selection rectangle dragged out on empty canvas.
type Band struct {
	active bool
	from   geometry.Point2D
	to     geometry.Point2D
}

// Begin anchors the band at p.
func (b *Band) Begin(p geometry.Point2D) {
	b.active = true
	b.from, b.to = p, p
}

// Move stretches the band to p.
func (b *Band) Move(p geometry.Point2D) {
	if b.active {
		b.to = p
	}
}

// Active reports whether a band is being dragged.
func (b *Band) Active() bool {
	return b.active
}

// Rect returns the normalized band rectangle.
func (b *Band) Rect() geometry.Rect {
	return geometry.NewRect(b.from.X, b.from.Y, b.to.X-b.from.X, b.to.Y-b.from.Y).Normalize()
}

// minBand is the smallest extent, in scene units, that counts as a band
// rather than a click.
const minBand = 2.0

// End finishes the band and returns the entries it touches. A band smaller
// than minBand in both directions selects nothing.
func (b *Band) End(reg *scene.Registry) []*scene.Entry {
	if !b.active {
		return nil
	}
	b.active = false
	r := b.Rect()
	if r.Width < minBand && r.Height < minBand {
		return nil
	}
	return reg.Within(r)
}

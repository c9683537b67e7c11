package geometry

import (
	"fmt"
	"math"
)

// BoxSize is the encoded size of a Box (four float64).
const BoxSize = 32

// Box is an axis-aligned 2D extent.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// EmptyBox returns the identity element for Extend and Union.
func EmptyBox() Box {
	return Box{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
}

// IsEmpty reports whether b covers no point.
func (b Box) IsEmpty() bool {
	return !(b.MinX <= b.MaxX && b.MinY <= b.MaxY)
}

// Extend grows b to cover (x, y). Non-finite ordinates are ignored.
func (b *Box) Extend(x, y float64) {
	if !isFinite(x) || !isFinite(y) {
		return
	}
	b.MinX = math.Min(b.MinX, x)
	b.MinY = math.Min(b.MinY, y)
	b.MaxX = math.Max(b.MaxX, x)
	b.MaxY = math.Max(b.MaxY, y)
}

// Union returns the smallest box covering b and o.
func (b Box) Union(o Box) Box {
	if o.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return o
	}
	return Box{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// Intersects reports whether b and o share at least one point.
func (b Box) Intersects(o Box) bool {
	if b.IsEmpty() || o.IsEmpty() {
		return false
	}
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX && b.MinY <= o.MaxY && o.MinY <= b.MaxY
}

// Contains reports whether (x, y) lies inside or on the boundary of b.
func (b Box) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

func (b Box) String() string {
	if b.IsEmpty() {
		return "BOX EMPTY"
	}
	return fmt.Sprintf("BOX(%g %g, %g %g)", b.MinX, b.MinY, b.MaxX, b.MaxY)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

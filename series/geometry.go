package series

import (
	"math"
	"slices"
	"sync/atomic"
)

// Point2D is a point in image coordinates.
type Point2D struct {
	X float32
	Y float32
}

// Distance returns the Euclidean distance to q.
func (p Point2D) Distance(q Point2D) float64 {
	return math.Hypot(float64(p.X-q.X), float64(p.Y-q.Y))
}

// Line2D is a polyline.
type Line2D []Point2D

// Clone returns a copy of the polyline.
func (l Line2D) Clone() Line2D {
	return slices.Clone(l)
}

// Length returns the summed segment lengths.
func (l Line2D) Length() float64 {
	var total float64
	for i := 1; i < len(l); i++ {
		total += l[i-1].Distance(l[i])
	}

	return total
}

// PointAt returns the point at fractional arc length pos in [0, 1], interpolating between
// vertices. An empty line returns false.
func (l Line2D) PointAt(pos float64) (Point2D, bool) {
	switch len(l) {
	case 0:
		return Point2D{}, false
	case 1:
		return l[0], true
	}

	pos = max(0, min(1, pos))
	target := pos * l.Length()
	var walked float64
	for i := 1; i < len(l); i++ {
		seg := l[i-1].Distance(l[i])
		if walked+seg >= target && seg > 0 {
			f := float32((target - walked) / seg)

			return Point2D{
				X: l[i-1].X + f*(l[i].X-l[i-1].X),
				Y: l[i-1].Y + f*(l[i].Y-l[i-1].Y),
			}, true
		}
		walked += seg
	}

	return l[len(l)-1], true
}

// Pixel is an integer image coordinate.
type Pixel struct {
	X uint32
	Y uint32
}

// Mask2D is a set of pixels.
type Mask2D []Pixel

// Clone returns a copy of the mask.
func (m Mask2D) Clone() Mask2D {
	return slices.Clone(m)
}

// Area returns the number of pixels.
func (m Mask2D) Area() int {
	return len(m)
}

// ImageSize is the pixel extent the geometry of a ragged series refers to.
// A zero value means unknown.
type ImageSize struct {
	Width  int
	Height int
}

// EntityID identifies one geometric entity independently of its storage position.
// The zero value is never assigned.
type EntityID uint64

var lastEntityID atomic.Uint64

// NewEntityID returns a process-unique entity identifier.
func NewEntityID() EntityID {
	return EntityID(lastEntityID.Add(1))
}

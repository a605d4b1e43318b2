package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// Rect is an axis-aligned rectangle in page space.
// The origin is the top-left corner of the page and Y grows downward,
// so X0 <= X1 and Y0 <= Y1 for every normalized rect.
type Rect struct {
	X0, Y0 float64
	X1, Y1 float64
}

// NewRect creates a normalized rect from two opposite corners.
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{
		X0: math.Min(x0, x1),
		Y0: math.Min(y0, y1),
		X1: math.Max(x0, x1),
		Y1: math.Max(y0, y1),
	}
}

// RectFromSlice builds a rect from a 4-element [x0 y0 x1 y1] slice.
// It returns false when the slice has the wrong length.
func RectFromSlice(v []float64) (Rect, bool) {
	if len(v) != 4 {
		return Rect{}, false
	}
	return NewRect(v[0], v[1], v[2], v[3]), true
}

// Width returns the horizontal extent
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the vertical extent
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// Slice returns the rect as [x0 y0 x1 y1].
func (r Rect) Slice() []float64 {
	return []float64{r.X0, r.Y0, r.X1, r.Y1}
}

// Contains reports whether other lies inside r, allowing eps of rounding slack.
func (r Rect) Contains(other Rect, eps float64) bool {
	return other.X0 >= r.X0-eps && other.Y0 >= r.Y0-eps &&
		other.X1 <= r.X1+eps && other.Y1 <= r.Y1+eps
}

// Intersects checks if two rects intersect
func (r Rect) Intersects(other Rect) bool {
	return !(r.X1 < other.X0 ||
		r.X0 > other.X1 ||
		r.Y1 < other.Y0 ||
		r.Y0 > other.Y1)
}

// Intersection returns the intersection of two rects
func (r Rect) Intersection(other Rect) Rect {
	if !r.Intersects(other) {
		return Rect{}
	}
	return Rect{
		X0: math.Max(r.X0, other.X0),
		Y0: math.Max(r.Y0, other.Y0),
		X1: math.Min(r.X1, other.X1),
		Y1: math.Min(r.Y1, other.Y1),
	}
}

// Union returns the smallest rect covering both rects
func (r Rect) Union(other Rect) Rect {
	return Rect{
		X0: math.Min(r.X0, other.X0),
		Y0: math.Min(r.Y0, other.Y0),
		X1: math.Max(r.X1, other.X1),
		Y1: math.Max(r.Y1, other.Y1),
	}
}

// UnionAll returns the union of a list of rects. The zero Rect is returned
// for an empty list.
func UnionAll(rects []Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	u := rects[0]
	for _, r := range rects[1:] {
		u = u.Union(r)
	}
	return u
}

// Close reports whether each of the four coordinate deltas between r and
// other is at most tol. The relation is symmetric.
func (r Rect) Close(other Rect, tol float64) bool {
	return math.Abs(r.X0-other.X0) <= tol &&
		math.Abs(r.Y0-other.Y0) <= tol &&
		math.Abs(r.X1-other.X1) <= tol &&
		math.Abs(r.Y1-other.Y1) <= tol
}

// Expand grows the rect by margin on all sides
func (r Rect) Expand(margin float64) Rect {
	return Rect{
		X0: r.X0 - margin,
		Y0: r.Y0 - margin,
		X1: r.X1 + margin,
		Y1: r.Y1 + margin,
	}
}

// Inset shrinks the rect by padding on all sides.
// The result may be degenerate; check IsDegenerate.
func (r Rect) Inset(padding float64) Rect {
	return r.Expand(-padding)
}

// IsDegenerate returns true if the rect has zero, negative or NaN extent
func (r Rect) IsDegenerate() bool {
	return !(r.Width() > 0 && r.Height() > 0)
}

// MarshalJSON encodes the rect as [x0, y0, x1, y1].
func (r Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Slice())
}

// UnmarshalJSON decodes a [x0, y0, x1, y1] array.
func (r *Rect) UnmarshalJSON(b []byte) error {
	var v []float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	rect, ok := RectFromSlice(v)
	if !ok {
		return fmt.Errorf("rect: want 4 coordinates, got %d", len(v))
	}
	*r = rect
	return nil
}

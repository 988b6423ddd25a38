package tooltip

import "hovercard/internal/model"

// DefaultOffset is how far above the anchor's top edge the overlay starts.
const DefaultOffset = 10

// Point is an absolute overlay position in the anchor's coordinate space.
type Point struct {
	Top, Left int
}

// Position places the overlay's left edge at the horizontal centre of r and
// its top edge offset above r.
func Position(r model.Rect, offset int) Point {
	return Point{
		Top:  r.Top - offset,
		Left: r.Left + (r.Right-r.Left)/2,
	}
}

package gfx

import "image"

// Rect represents a rectangle in surface coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether the point lies inside [X, X+Width) x [Y, Y+Height).
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Intersects reports whether two rectangles overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.Width &&
		r.X+r.Width > o.X &&
		r.Y < o.Y+o.Height &&
		r.Y+r.Height > o.Y
}

// Image converts to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// FromImage converts an image.Rectangle.
func FromImage(r image.Rectangle) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Union returns the bounding rectangle of rects, ignoring empty ones.
func Union(rects []Rect) (Rect, bool) {
	var out Rect
	found := false
	for _, r := range rects {
		if r.Empty() {
			continue
		}
		if !found {
			out = r
			found = true
			continue
		}
		minX, minY := min(out.X, r.X), min(out.Y, r.Y)
		maxX := max(out.X+out.Width, r.X+r.Width)
		maxY := max(out.Y+out.Height, r.Y+r.Height)
		out = Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
	}
	return out, found
}

// Centered returns a width x height rectangle centred in a screen of the
// given size.
func Centered(width, height, screenWidth, screenHeight int) Rect {
	return Rect{
		X:      (screenWidth - width) / 2,
		Y:      (screenHeight - height) / 2,
		Width:  width,
		Height: height,
	}
}

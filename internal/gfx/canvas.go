// Package gfx is the small painting facade the shell's surfaces draw
// through: a clipped canvas over any draw.Image, text faces, icon loading
// and wallpaper scaling.
package gfx

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// ARGB converts a 0xAARRGGBB literal into a colour.
func ARGB(v uint32) color.NRGBA {
	return color.NRGBA{
		A: uint8(v >> 24),
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}
}

// Canvas paints into a destination image, honouring an optional clip
// rectangle.
type Canvas struct {
	dst  draw.Image
	clip image.Rectangle
}

// NewCanvas wraps dst. The clip starts as dst's bounds.
func NewCanvas(dst draw.Image) *Canvas {
	return &Canvas{dst: dst, clip: dst.Bounds()}
}

// Bounds returns the destination bounds.
func (c *Canvas) Bounds() image.Rectangle { return c.dst.Bounds() }

// Image returns the destination image.
func (c *Canvas) Image() draw.Image { return c.dst }

// Clip restricts painting to the bounding box of rects. With no non-empty
// rect the clip is reset to the full surface.
func (c *Canvas) Clip(rects ...Rect) {
	u, ok := Union(rects)
	if !ok {
		c.clip = c.dst.Bounds()
		return
	}
	c.clip = u.Image().Intersect(c.dst.Bounds())
}

// ResetClip removes any clip.
func (c *Canvas) ResetClip() { c.clip = c.dst.Bounds() }

// ClipRect returns the current clip.
func (c *Canvas) ClipRect() Rect { return FromImage(c.clip) }

// target returns a draw.Image whose bounds are the clip, so every draw call
// below is clipped by the standard library's own bounds intersection.
func (c *Canvas) target() draw.Image {
	if c.clip == c.dst.Bounds() {
		return c.dst
	}
	if s, ok := c.dst.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		if sub, ok := s.SubImage(c.clip).(draw.Image); ok {
			return sub
		}
	}
	return clipped{Image: c.dst, r: c.clip}
}

// Fill replaces the pixels of r with col.
func (c *Canvas) Fill(r Rect, col color.Color) {
	draw.Draw(c.target(), r.Image(), image.NewUniform(col), image.Point{}, draw.Src)
}

// Blend paints col over r.
func (c *Canvas) Blend(r Rect, col color.Color) {
	draw.Draw(c.target(), r.Image(), image.NewUniform(col), image.Point{}, draw.Over)
}

// Tile repeats img across the whole surface.
func (c *Canvas) Tile(img image.Image) {
	b := img.Bounds()
	if b.Empty() {
		return
	}
	dst := c.target()
	full := c.dst.Bounds()
	for y := full.Min.Y; y < full.Max.Y; y += b.Dy() {
		for x := full.Min.X; x < full.Max.X; x += b.Dx() {
			r := image.Rect(x, y, x+b.Dx(), y+b.Dy())
			draw.Draw(dst, r, img, b.Min, draw.Src)
		}
	}
}

// VerticalGradient paints a top-to-bottom linear gradient over r.
func (c *Canvas) VerticalGradient(r Rect, top, bottom color.NRGBA) {
	if r.Empty() {
		return
	}
	dst := c.target()
	for i := 0; i < r.Height; i++ {
		t := 0.0
		if r.Height > 1 {
			t = float64(i) / float64(r.Height-1)
		}
		col := color.NRGBA{
			R: lerp8(top.R, bottom.R, t),
			G: lerp8(top.G, bottom.G, t),
			B: lerp8(top.B, bottom.B, t),
			A: lerp8(top.A, bottom.A, t),
		}
		row := image.Rect(r.X, r.Y+i, r.X+r.Width, r.Y+i+1)
		draw.Draw(dst, row, image.NewUniform(col), image.Point{}, draw.Over)
	}
}

// DrawImage composites img with its top-left corner at (x, y). alpha scales
// the image's own opacity; 1 paints it unchanged.
func (c *Canvas) DrawImage(img image.Image, x, y int, alpha float64) {
	if img == nil || alpha <= 0 {
		return
	}
	b := img.Bounds()
	r := image.Rect(x, y, x+b.Dx(), y+b.Dy())
	if alpha >= 1 {
		draw.Draw(c.target(), r, img, b.Min, draw.Over)
		return
	}
	mask := image.NewUniform(color.Alpha{A: uint8(alpha * 255)})
	draw.DrawMask(c.target(), r, img, b.Min, mask, image.Point{}, draw.Over)
}

// DrawImageScaled composites img scaled to fill r.
func (c *Canvas) DrawImageScaled(img image.Image, r Rect, alpha float64) {
	if img == nil || r.Empty() {
		return
	}
	if b := img.Bounds(); b.Dx() == r.Width && b.Dy() == r.Height {
		c.DrawImage(img, r.X, r.Y, alpha)
		return
	}
	scaled := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	c.DrawImage(scaled, r.X, r.Y, alpha)
}

// RoundedRect paints col over r with corners of the given radius.
func (c *Canvas) RoundedRect(r Rect, radius int, col color.Color) {
	if r.Empty() {
		return
	}
	mask := image.NewAlpha(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			if insideRounded(x, y, r.Width, r.Height, radius) {
				mask.SetAlpha(x, y, color.Alpha{A: 0xff})
			}
		}
	}
	draw.DrawMask(c.target(), r.Image(), image.NewUniform(col), image.Point{}, mask, image.Point{}, draw.Over)
}

func insideRounded(x, y, w, h, radius int) bool {
	if radius <= 0 {
		return true
	}
	cx, cy := -1, -1
	switch {
	case x < radius && y < radius:
		cx, cy = radius, radius
	case x >= w-radius && y < radius:
		cx, cy = w-radius-1, radius
	case x < radius && y >= h-radius:
		cx, cy = radius, h-radius-1
	case x >= w-radius && y >= h-radius:
		cx, cy = w-radius-1, h-radius-1
	default:
		return true
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= radius*radius
}

func lerp8(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}

// clipped narrows the visible bounds of a draw.Image that cannot produce
// sub-images.
type clipped struct {
	draw.Image
	r image.Rectangle
}

func (c clipped) Bounds() image.Rectangle { return c.r }

func (c clipped) Set(x, y int, col color.Color) {
	if image.Pt(x, y).In(c.r) {
		c.Image.Set(x, y, col)
	}
}

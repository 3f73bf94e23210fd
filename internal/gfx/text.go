package gfx

import (
	"image"
	"image/color"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Align selects horizontal text alignment inside a box.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

const ellipsis = "…"

type faceKey struct {
	bold bool
	size float64
}

var (
	facesMu sync.Mutex
	faces   = map[faceKey]font.Face{}
)

// Face returns a Go font face at the given pixel size. Faces are cached and
// shared. If the embedded font cannot be parsed the fixed 7x13 face is used.
func Face(bold bool, size float64) font.Face {
	facesMu.Lock()
	defer facesMu.Unlock()

	key := faceKey{bold: bold, size: size}
	if f, ok := faces[key]; ok {
		return f
	}

	data := goregular.TTF
	if bold {
		data = gobold.TTF
	}
	var face font.Face = basicfont.Face7x13
	if parsed, err := opentype.Parse(data); err == nil {
		if f, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		}); err == nil {
			face = f
		}
	}
	faces[key] = face
	return face
}

// TextWidth returns the advance width of s in pixels.
func TextWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// Ellipsize shortens s so it fits in width pixels, appending an ellipsis
// when anything was cut.
func Ellipsize(face font.Face, s string, width int) string {
	if width <= 0 {
		return ""
	}
	if TextWidth(face, s) <= width {
		return s
	}
	runes := []rune(s)
	for n := len(runes) - 1; n > 0; n-- {
		candidate := strings.TrimRight(string(runes[:n]), " ") + ellipsis
		if TextWidth(face, candidate) <= width {
			return candidate
		}
	}
	return ""
}

// Text draws s with its top-left corner at (x, y).
func (c *Canvas) Text(face font.Face, x, y int, s string, col color.Color) {
	if s == "" {
		return
	}
	d := font.Drawer{
		Dst:  c.target(),
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

// TextBox draws a single line of s aligned inside r, truncated with an
// ellipsis when it does not fit.
func (c *Canvas) TextBox(face font.Face, r Rect, s string, col color.Color, align Align) {
	s = Ellipsize(face, s, r.Width)
	w := TextWidth(face, s)
	x := r.X
	switch align {
	case AlignCenter:
		x = r.X + (r.Width-w)/2
	case AlignRight:
		x = r.X + r.Width - w
	}
	c.Text(face, x, r.Y, s, col)
}

// ShadowTextBox draws TextBox with a dark drop shadow offset by one pixel.
func (c *Canvas) ShadowTextBox(face font.Face, r Rect, s string, col color.Color, align Align) {
	shadow := r
	shadow.X++
	shadow.Y++
	c.TextBox(face, shadow, s, color.NRGBA{A: 0xc0}, align)
	c.TextBox(face, r, s, col, align)
}

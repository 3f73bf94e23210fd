package wallpaper

import (
	"image"
	"image/color"
	"time"

	"github.com/disintegration/imaging"

	"github.com/1broseidon/deskbar/internal/gfx"
)

// Icon geometry.
const (
	IconWidth     = 100
	IconHeight    = 80
	IconImageSize = 48

	labelGap    = 5
	labelHeight = 15
)

const bounceDuration = 500 * time.Millisecond

// Icon is one desktop launcher.
type Icon struct {
	Name    string
	Command string

	image     image.Image
	highlight image.Image
	hovered   bool

	// position from the most recent layout pass
	x, y int
}

func newIcon(name, command string, img image.Image) *Icon {
	return &Icon{
		Name:      name,
		Command:   command,
		image:     img,
		highlight: tint(img, gfx.ARGB(0xFF8ED8FF), 0.3),
	}
}

// tint mixes col into every visible pixel of img.
func tint(img image.Image, col color.NRGBA, amount float64) image.Image {
	if img == nil {
		return nil
	}
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a)*(1-amount) + float64(b)*amount + 0.5)
	}
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		if c.A == 0 {
			return c
		}
		return color.NRGBA{R: mix(c.R, col.R), G: mix(c.G, col.G), B: mix(c.B, col.B), A: c.A}
	})
}

// Hovered reports whether the pointer is over the icon.
func (i *Icon) Hovered() bool { return i.hovered }

// Position returns where the icon was last laid out.
func (i *Icon) Position() image.Point { return image.Pt(i.x, i.y) }

func (i *Icon) bounds() gfx.Rect {
	return gfx.Rect{X: i.x, Y: i.y, Width: IconWidth, Height: IconHeight}
}

// draw paints the icon at (x, y). age is the time since the icon was
// launched, or negative when it is not animating.
func (i *Icon) draw(c *gfx.Canvas, x, y int, age time.Duration) {
	i.x, i.y = x, y

	label := gfx.Rect{X: x, Y: y + IconImageSize + labelGap, Width: IconWidth, Height: labelHeight}
	c.ShadowTextBox(gfx.Face(false, 13), label, i.Name, color.White, gfx.AlignCenter)

	pad := (IconWidth - IconImageSize) / 2
	img := i.image
	if i.hovered {
		img = i.highlight
	}
	c.DrawImageScaled(img, gfx.Rect{X: x + pad, Y: y, Width: IconImageSize, Height: IconImageSize}, 1)

	if age >= 0 && age < bounceDuration {
		t := age.Seconds()
		scale := 1 + t/0.8
		size := int(float64(IconImageSize) * scale)
		shift := (IconImageSize - size) / 2
		alpha := 1 - t/bounceDuration.Seconds()
		c.DrawImageScaled(img, gfx.Rect{X: x + pad + shift, Y: y, Width: size, Height: size}, alpha)
	}
}

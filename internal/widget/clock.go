package widget

import (
	"github.com/1broseidon/deskbar/internal/event"
	"github.com/1broseidon/deskbar/internal/gfx"
)

const textYOffset = 4

// Clock shows the wall-clock time.
type Clock struct {
	Base
	hovered bool
}

func NewClock() *Clock { return &Clock{} }

func (c *Clock) Width() int { return 80 }

func (c *Clock) Draw(ctx *DrawContext, offset, _ int) {
	r := gfx.Rect{X: offset, Y: textYOffset, Width: c.Width(), Height: ctx.Height - textYOffset}
	ctx.Canvas.TextBox(gfx.Face(true, 16), r, ctx.Now.Format("15:04:05"), colorFor(c.hovered), gfx.AlignLeft)
}

func (c *Clock) FocusEnter() { c.hovered = true }
func (c *Clock) FocusLeave() { c.hovered = false }

// Date shows the weekday above the month and day.
type Date struct {
	Base
}

func NewDate() *Date { return &Date{} }

func (d *Date) Width() int { return 70 }

func (d *Date) Draw(ctx *DrawContext, offset, _ int) {
	small := gfx.Face(false, 9)
	bold := gfx.Face(true, 9)
	line := small.Metrics().Height.Ceil()
	top := gfx.Rect{X: offset, Y: textYOffset, Width: d.Width(), Height: line}
	bottom := gfx.Rect{X: offset, Y: textYOffset + line, Width: d.Width(), Height: line}
	ctx.Canvas.TextBox(small, top, ctx.Now.Format("Monday"), TextColor, gfx.AlignCenter)
	ctx.Canvas.TextBox(bold, bottom, ctx.Now.Format("Jan _2"), TextColor, gfx.AlignCenter)
}

// Logout is an icon button that ends the session.
type Logout struct {
	host    Host
	hovered bool
}

func NewLogout(host Host) *Logout { return &Logout{host: host} }

func (l *Logout) Width() int { return 28 }

func (l *Logout) Draw(ctx *DrawContext, offset, _ int) {
	icon := ctx.Icons.Get("system-shutdown", 24)
	ctx.Canvas.DrawImage(icon, offset+2, 1, 1)
	if l.hovered {
		ctx.Canvas.Blend(gfx.Rect{X: offset + 2, Y: 1, Width: 24, Height: 24}, gfx.ARGB(0x508ED8FF))
	}
}

func (l *Logout) FocusEnter() { l.hovered = true }
func (l *Logout) FocusLeave() { l.hovered = false }

func (l *Logout) MouseAction(ev event.Mouse) bool {
	if ev.Command == event.MouseClick {
		l.host.EndSession()
	}
	return false
}

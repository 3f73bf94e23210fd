// Package widget implements the panel's widgets and the horizontal layout
// they share.
package widget

import (
	"errors"
	"image/color"
	"time"

	"github.com/1broseidon/deskbar/internal/event"
	"github.com/1broseidon/deskbar/internal/gfx"
	"github.com/1broseidon/deskbar/internal/menu"
)

// Flexible is the width sentinel for a widget that consumes the space left
// over by every other widget.
const Flexible = -1

// ErrMultipleFlexible is returned when more than one widget asks for the
// remaining space.
var ErrMultipleFlexible = errors.New("widget: at most one flexible-width widget is supported")

// Shared colours.
var (
	TextColor      = gfx.ARGB(0xFFE6E6E6)
	HighlightColor = gfx.ARGB(0xFF8ED8FF)
)

// Widget is one element of the panel strip.
type Widget interface {
	// Width returns the fixed width in pixels, or Flexible.
	Width() int
	// Draw paints the widget at offset. remaining is the right edge of the
	// flexible slot for a flexible widget and zero otherwise.
	Draw(ctx *DrawContext, offset, remaining int)
	FocusEnter()
	FocusLeave()
	// MouseAction handles an event aimed at the focused widget and reports
	// whether the widget needs a repaint.
	MouseAction(ev event.Mouse) bool
}

// DrawContext carries what a widget needs to paint itself.
type DrawContext struct {
	Canvas *gfx.Canvas
	Height int
	Now    time.Time
	Icons  *gfx.Icons
}

// Host is the set of shell actions widgets may trigger.
type Host interface {
	FocusWindow(wid uint32)
	StartMove(wid uint32)
	EndSession()
	Launch(command string, terminal bool)
	// OpenMenu shows items anchored at (x, y) on the panel and calls
	// onSelect with the chosen action. It reports false when another menu
	// is already open.
	OpenMenu(prompt string, items []menu.MenuItem, x, y int, onSelect func(action string)) bool
}

// Base provides no-op focus and mouse handling for embedding.
type Base struct{}

func (Base) FocusEnter() {}
func (Base) FocusLeave() {}
func (Base) MouseAction(event.Mouse) bool { return false }

func colorFor(hovered bool) color.NRGBA {
	if hovered {
		return HighlightColor
	}
	return TextColor
}

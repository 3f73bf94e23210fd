// Package alttab implements the window switcher: the tab state machine and
// the popup that shows the window currently selected.
package alttab

import (
	"image/color"

	"github.com/1broseidon/deskbar/internal/event"
	"github.com/1broseidon/deskbar/internal/gfx"
	"github.com/1broseidon/deskbar/internal/windows"
)

// Overlay geometry.
const (
	Width  = 300
	Height = 115

	iconSize = 48
	radius   = 10
)

var (
	overlayColor = color.NRGBA{A: 0xb3}
	nameColor    = gfx.ARGB(0xFFFFFFFF)
)

// State is the tab state machine. The zero value is idle.
type State struct {
	tabbing bool
	index   int
}

// Tabbing reports whether a switch is in progress.
func (s *State) Tabbing() bool { return s.tabbing }

// Index returns the selected z-order index, or -1 when idle.
func (s *State) Index() int {
	if !s.tabbing {
		return -1
	}
	return s.index
}

// Press handles a Tab key-down with Alt held over count windows. Tab steps
// down the stacking order and Shift+Tab steps up, wrapping at both ends.
// The first press starts one step away from the topmost window. It returns
// the new index, or -1 when there is nothing to switch to.
func (s *State) Press(count int, shift bool) int {
	if count <= 0 {
		s.Reset()
		return -1
	}
	dir := -1
	if shift {
		dir = 1
	}
	if !s.tabbing {
		s.tabbing = true
		s.index = count - 1 + dir
	} else {
		s.index += dir
	}
	switch {
	case s.index < 0:
		s.index = count - 1
	case s.index >= count:
		s.index = 0
	}
	return s.index
}

// Finish ends the switch and returns the index to focus. ok is false when
// no switch was in progress.
func (s *State) Finish() (index int, ok bool) {
	if !s.tabbing {
		return -1, false
	}
	index = s.index
	s.Reset()
	return index, true
}

// Reset returns to idle without choosing a window.
func (s *State) Reset() {
	s.tabbing = false
	s.index = -1
}

// IsRelease reports whether k is the Alt release that ends a switch: Alt
// itself, or a bare key-up with no keycode, with nothing left held.
func IsRelease(k event.Key) bool {
	if k.Down() || k.Modifiers != 0 {
		return false
	}
	return k.Keycode == event.KeyNone || k.Keycode == event.KeyLeftAlt
}

// Draw paints the selected window onto the overlay canvas.
func Draw(c *gfx.Canvas, icons *gfx.Icons, w windows.Window) {
	c.ResetClip()
	full := gfx.Rect{Width: Width, Height: Height}
	c.Fill(full, color.Transparent)
	c.RoundedRect(full, radius, overlayColor)

	if icons != nil {
		img := icons.Get(w.Icon, iconSize)
		c.DrawImage(img, (Width-iconSize)/2, 15, 1)
	}
	name := gfx.Rect{X: 10, Y: 75, Width: Width - 20, Height: 25}
	c.ShadowTextBox(gfx.Face(true, 14), name, w.Name, nameColor, gfx.AlignCenter)
}

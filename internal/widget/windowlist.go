package widget

import (
	"github.com/1broseidon/deskbar/internal/event"
	"github.com/1broseidon/deskbar/internal/gfx"
	"github.com/1broseidon/deskbar/internal/menu"
	"github.com/1broseidon/deskbar/internal/windows"
)

const (
	maxTileWidth  = 150
	minLabelTile  = 50
	iconOnlyTile  = 28
	tileIconWidth = 24
	tileTextY     = 5

	actionMove = "move"
)

var (
	gradientTop    = gfx.ARGB(0xB248A7FF)
	gradientBottom = gfx.ARGB(0x0048A7FF)
)

// WindowList shows one tile per open window in the flexible slot.
type WindowList struct {
	host    Host
	list    func() []windows.Window
	hovered uint32 // 0 when nothing is hovered
	offset  int
	unit    int
}

// NewWindowList shows the windows returned by list, in that order.
func NewWindowList(host Host, list func() []windows.Window) *WindowList {
	return &WindowList{host: host, list: list}
}

func (w *WindowList) Width() int { return Flexible }

// TileWidth returns the per-window tile width for the space available.
func TileWidth(available, count int) int {
	if count <= 0 {
		return 0
	}
	unit := min(available/count, maxTileWidth)
	if unit < minLabelTile {
		unit = iconOnlyTile
	}
	return unit
}

// Hovered returns the id of the hovered window, or 0.
func (w *WindowList) Hovered() uint32 { return w.hovered }

func (w *WindowList) Draw(ctx *DrawContext, offset, remaining int) {
	list := w.list()
	w.offset = offset
	if len(list) == 0 {
		return
	}
	w.unit = TileWidth(remaining-offset, len(list))
	face := gfx.Face(false, 13)

	x := offset
	for _, win := range list {
		if win.Active() {
			ctx.Canvas.VerticalGradient(gfx.Rect{X: x, Y: 0, Width: w.unit, Height: ctx.Height}, gradientTop, gradientBottom)
		}
		ctx.Canvas.DrawImage(ctx.Icons.Get(win.Icon, tileIconWidth), x+2, 0, 1)
		if w.unit > iconOnlyTile {
			r := gfx.Rect{X: x + 28, Y: tileTextY, Width: w.unit - 30, Height: ctx.Height - tileTextY}
			ctx.Canvas.TextBox(face, r, win.Name, colorFor(w.hovered == win.ID), gfx.AlignLeft)
		}
		x += w.unit
	}
}

func (w *WindowList) FocusEnter() {}

func (w *WindowList) FocusLeave() { w.hovered = 0 }

// MouseAction maps the pointer onto a tile using the geometry of the last
// draw. Click focuses the tile's window; the right button offers a move.
func (w *WindowList) MouseAction(ev event.Mouse) bool {
	list := w.list()
	if len(list) == 0 || w.unit <= 0 {
		return false
	}
	previous := w.hovered
	index := (ev.X - w.offset) / w.unit
	if ev.X < w.offset || index >= len(list) {
		w.hovered = 0
		return w.hovered != previous
	}

	wid := list[index].ID
	w.hovered = wid
	switch {
	case ev.Command == event.MouseClick:
		w.host.FocusWindow(wid)
	case ev.Buttons&event.ButtonRight != 0:
		items := []menu.MenuItem{{Label: "Move", Icon: "transform-move", Action: actionMove}}
		w.host.OpenMenu("Window", items, ev.X, 0, func(action string) {
			if action == actionMove {
				w.host.StartMove(wid)
			}
		})
	}
	return w.hovered != previous
}

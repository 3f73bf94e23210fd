package widget

import (
	"strings"

	"github.com/1broseidon/deskbar/internal/event"
	"github.com/1broseidon/deskbar/internal/gfx"
	"github.com/1broseidon/deskbar/internal/menu"
)

// Menu action encodings understood by AppMenu.
const (
	ActionLogout = "logout"
	execPrefix   = "exec:"
)

// ExecAction encodes a shell command as a menu action.
func ExecAction(command string) string { return execPrefix + command }

// AppMenu is the "Applications" button that opens the launcher menu.
type AppMenu struct {
	host    Host
	items   []menu.MenuItem
	hovered bool
}

// NewAppMenu creates the button for the given menu tree.
func NewAppMenu(host Host, items []menu.MenuItem) *AppMenu {
	return &AppMenu{host: host, items: items}
}

func (a *AppMenu) Width() int { return 140 }

func (a *AppMenu) Draw(ctx *DrawContext, offset, _ int) {
	r := gfx.Rect{X: offset + 10, Y: textYOffset, Width: a.Width() - 20, Height: ctx.Height - textYOffset}
	ctx.Canvas.TextBox(gfx.Face(true, 14), r, "Applications", colorFor(a.hovered), gfx.AlignLeft)
}

func (a *AppMenu) FocusEnter() { a.hovered = true }
func (a *AppMenu) FocusLeave() { a.hovered = false }

// Activate opens the menu at the panel's left edge. It reports false when a
// menu is already open.
func (a *AppMenu) Activate() bool {
	return a.host.OpenMenu("Applications", a.items, 0, 0, a.run)
}

func (a *AppMenu) run(action string) {
	switch {
	case action == ActionLogout:
		a.host.EndSession()
	case strings.HasPrefix(action, execPrefix):
		if cmd := strings.TrimSpace(strings.TrimPrefix(action, execPrefix)); cmd != "" {
			a.host.Launch(cmd, false)
		}
	}
}

func (a *AppMenu) MouseAction(ev event.Mouse) bool {
	if ev.Command == event.MouseClick {
		a.Activate()
	}
	return false
}

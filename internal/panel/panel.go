// Package panel drives the top-of-screen strip: widget layout, pointer
// focus tracking, popup menus and the slide-away toggle.
package panel

import (
	"errors"
	"image"
	"log/slog"
	"time"

	"github.com/1broseidon/deskbar/internal/event"
	"github.com/1broseidon/deskbar/internal/gfx"
	"github.com/1broseidon/deskbar/internal/menu"
	"github.com/1broseidon/deskbar/internal/widget"
)

// DefaultHeight is the panel height in pixels.
const DefaultHeight = 28

var backgroundColor = gfx.ARGB(0xFF2C2F33)

// MenuOpener starts a popup menu and returns its id. The result arrives
// later as an event.MenuClosed with that id.
type MenuOpener interface {
	Open(prompt string, items []menu.MenuItem, at menu.Anchor) string
}

// Options configures a Panel.
type Options struct {
	Height int
	// Background is tiled behind the widgets; nil paints a flat colour.
	Background image.Image
	SlideDelay time.Duration
	Icons      *gfx.Icons
	Menus      MenuOpener
	Logger     *slog.Logger

	Now   func() time.Time
	Sleep func(time.Duration)
}

// Panel owns the widget strip and its surface.
type Panel struct {
	surface gfx.Surface
	widgets []widget.Widget
	focused int // index into widgets, -1 when none

	height     int
	background image.Image
	slideDelay time.Duration
	visible    bool

	icons  *gfx.Icons
	opener MenuOpener
	menus  map[string]func(action string)
	logger *slog.Logger

	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a panel over surface. More than one flexible widget is
// rejected with widget.ErrMultipleFlexible.
func New(surface gfx.Surface, widgets []widget.Widget, opts Options) (*Panel, error) {
	if err := widget.Validate(widgets); err != nil {
		return nil, err
	}
	p := &Panel{
		surface:    surface,
		widgets:    widgets,
		focused:    -1,
		height:     opts.Height,
		background: opts.Background,
		slideDelay: opts.SlideDelay,
		visible:    true,
		icons:      opts.Icons,
		opener:     opts.Menus,
		menus:      map[string]func(string){},
		logger:     opts.Logger,
		now:        opts.Now,
		sleep:      opts.Sleep,
	}
	if p.height <= 0 {
		p.height = DefaultHeight
	}
	if p.icons == nil {
		p.icons = gfx.NewIcons(nil, p.logger)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.sleep == nil {
		p.sleep = time.Sleep
	}
	return p, nil
}

func (p *Panel) Surface() gfx.Surface { return p.surface }

func (p *Panel) Height() int { return p.height }

// Visible reports whether the panel is on screen.
func (p *Panel) Visible() bool { return p.visible }

// Focused returns the focused widget, or nil.
func (p *Panel) Focused() widget.Widget {
	if p.focused < 0 {
		return nil
	}
	return p.widgets[p.focused]
}

func (p *Panel) width() int {
	w, _ := p.surface.Size()
	return w
}

// Draw repaints every widget and publishes the frame.
func (p *Panel) Draw() {
	p.paint()
	if err := p.surface.Flip(); err != nil {
		p.logger.Warn("panel flip failed", "err", err)
	}
}

func (p *Panel) paint() {
	canvas := p.surface.Canvas()
	canvas.ResetClip()
	if p.background != nil {
		canvas.Tile(p.background)
	} else {
		canvas.Fill(gfx.FromImage(canvas.Bounds()), backgroundColor)
	}

	ctx := &widget.DrawContext{Canvas: canvas, Height: p.height, Now: p.now(), Icons: p.icons}
	total := p.width()
	for i, e := range widget.Layout(p.widgets, total) {
		p.widgets[i].Draw(ctx, e.Start, widget.Remaining(p.widgets, i, total))
	}
}

// DispatchMouse routes a pointer event to the widget under it, moving focus
// when the pointer crosses into a different widget.
func (p *Panel) DispatchMouse(ev event.Mouse) {
	redraw := false
	outside := ev.Y < 0 || ev.Y >= p.height
	switch {
	case ev.Command == event.MouseLeave || outside:
		if p.focused >= 0 {
			p.widgets[p.focused].FocusLeave()
			p.focused = -1
			redraw = true
		}
	default:
		under := widget.HitTest(p.widgets, p.width(), ev.X)
		if under != p.focused {
			if p.focused >= 0 {
				p.widgets[p.focused].FocusLeave()
				redraw = true
			}
			p.focused = under
			if p.focused >= 0 {
				p.widgets[p.focused].FocusEnter()
				redraw = true
			}
		} else if under >= 0 {
			redraw = p.widgets[under].MouseAction(ev)
		}
	}
	if redraw {
		p.Draw()
	}
}

// ToggleVisibility slides the panel off the top edge, or back, one pixel
// per step. It blocks for the whole slide.
func (p *Panel) ToggleVisibility() {
	if p.visible {
		for i := 1; i < p.height; i++ {
			p.surface.Move(0, -i)
			p.sleep(p.slideDelay)
		}
		p.visible = false
		return
	}
	for i := p.height - 1; i >= 0; i-- {
		p.surface.Move(0, -i)
		p.sleep(p.slideDelay)
	}
	p.visible = true
}

// Resize asks for a new panel width after a display geometry change.
func (p *Panel) Resize(width int) {
	p.surface.Resize(width, p.height)
}

// FinishResize completes a resize offer for the panel surface.
func (p *Panel) FinishResize(width, height int) {
	if err := p.surface.AcceptResize(width, height); err != nil {
		p.logger.Warn("panel resize failed", "width", width, "height", height, "err", err)
		return
	}
	p.Draw()
	p.surface.ResizeDone()
	if err := p.surface.Flip(); err != nil {
		p.logger.Warn("panel flip failed", "err", err)
	}
}

// OpenMenu shows items x pixels from the left, y pixels below the panel.
// Only one menu may be open at a time.
func (p *Panel) OpenMenu(prompt string, items []menu.MenuItem, x, y int, onSelect func(string)) bool {
	if len(p.menus) > 0 || p.opener == nil {
		return false
	}
	id := p.opener.Open(prompt, items, menu.Anchor{X: x, Y: p.height + y})
	p.menus[id] = onSelect
	return true
}

// MenuOpen reports whether a menu is showing.
func (p *Panel) MenuOpen() bool { return len(p.menus) > 0 }

// MenuClosed runs the selection callback of a menu this panel opened. It
// reports false for ids the panel does not own.
func (p *Panel) MenuClosed(ev event.MenuClosed) bool {
	onSelect, ok := p.menus[ev.ID]
	if !ok {
		return false
	}
	delete(p.menus, ev.ID)
	switch {
	case errors.Is(ev.Err, menu.ErrCancelled):
	case ev.Err != nil:
		p.logger.Warn("menu failed", "err", ev.Err)
	case ev.Action != "" && onSelect != nil:
		onSelect(ev.Action)
	}
	return true
}

// Raise puts the panel back on top of the stack.
func (p *Panel) Raise() { p.surface.SetStack(gfx.StackTop) }

// Close releases the panel surface.
func (p *Panel) Close() { p.surface.Close() }

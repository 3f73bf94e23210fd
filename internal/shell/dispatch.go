package shell

import (
	"context"
	"fmt"

	"github.com/1broseidon/deskbar/internal/alttab"
	"github.com/1broseidon/deskbar/internal/event"
	"github.com/1broseidon/deskbar/internal/gfx"
	"github.com/1broseidon/deskbar/internal/runner"
)

// Run handles messages one at a time until the session ends, ctx is
// cancelled or msgs is closed.
func (d *Dispatcher) Run(ctx context.Context, msgs <-chan event.Message) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := d.Handle(msg); err != nil {
				return err
			}
		}
	}
}

// Handle applies one message. It returns ErrSessionEnded after the session
// has been torn down; every other message kind returns nil.
func (d *Dispatcher) Handle(msg event.Message) error {
	switch m := msg.(type) {
	case event.SessionEnd:
		return d.endSession()
	case event.Welcome:
		d.session.Width, d.session.Height = m.Width, m.Height
		d.panel.Resize(m.Width)
		d.wallpaper.Resize(m.Width, m.Height)
	case event.ResizeOffer:
		switch m.WID {
		case d.panel.Surface().ID():
			d.panel.FinishResize(m.Width, m.Height)
		case d.wallpaper.Surface().ID():
			d.wallpaper.FinishResize(m.Width, m.Height)
		}
	case event.Mouse:
		switch m.WID {
		case d.panel.Surface().ID():
			d.panel.DispatchMouse(m)
		case d.wallpaper.Surface().ID():
			d.wallpaper.DispatchMouse(m)
		}
	case event.Key:
		d.handleKey(m)
	case event.Notify:
		d.refreshWindows()
	case event.TimerTick:
		d.tick(m)
	case event.FocusChange:
		d.logger.Debug("focus change", "wid", m.WID, "focused", m.Focused)
	case event.MenuClosed:
		if !d.panel.MenuClosed(m) {
			d.logger.Debug("menu result for unknown menu", "id", m.ID)
		}
	case event.ReloadWallpaper:
		d.wallpaper.AnimateNew()
	case event.Restack:
		d.restack()
	case event.Control:
		d.handleControl(m)
	default:
		d.logger.Debug("ignoring message", "type", fmt.Sprintf("%T", msg))
	}
	if d.session.ending {
		return d.endSession()
	}
	return nil
}

func (d *Dispatcher) tick(m event.TimerTick) {
	now := m.Now
	if now.IsZero() {
		now = d.now()
	}
	if sec := now.Unix(); sec != d.session.lastSecond {
		d.session.lastSecond = sec
		if n, err := d.reap(); err != nil {
			d.logger.Debug("reap failed", "err", err)
		} else if n > 0 {
			d.logger.Debug("reaped children", "count", n)
		}
		d.panel.Draw()
	}
	if d.wallpaper.Animating() {
		d.wallpaper.Animate()
	}
}

func (d *Dispatcher) restack() {
	d.wallpaper.Lower()
	d.panel.Raise()
	d.bindKeys()
}

func (d *Dispatcher) endSession() error {
	d.session.ending = false
	d.closeTab()
	d.closeRunner()
	d.panel.Close()
	d.wallpaper.Close()
	if d.pidFile != nil {
		if err := d.pidFile.Remove(); err != nil {
			d.logger.Warn("failed to remove pid file", "err", err)
		}
	}
	d.logger.Info("session ended")
	return ErrSessionEnded
}

func (d *Dispatcher) handleKey(k event.Key) {
	if d.session.runner != nil {
		d.runnerKey(k)
		return
	}
	if !k.Down() {
		if d.session.Tab.Tabbing() && alttab.IsRelease(k) {
			d.finishTab()
		}
		return
	}
	switch {
	case d.binds.runner.Matches(k):
		d.openRunner()
	case d.binds.appMenu.Matches(k):
		if !d.appMenu.Activate() {
			d.logger.Debug("menu already open")
		}
	case d.binds.terminal.Matches(k):
		d.Launch("", true)
	case d.binds.togglePanel.Matches(k):
		d.panel.ToggleVisibility()
	case d.binds.altTabReverse.Matches(k):
		d.pressTab(true)
	case d.binds.altTab.Matches(k):
		d.pressTab(k.Modifiers&(event.ModLeftShift|event.ModRightShift) != 0)
	}
}

func (d *Dispatcher) pressTab(shift bool) {
	count := d.session.Directory.Len()
	first := !d.session.Tab.Tabbing()
	if d.session.Tab.Press(count, shift) < 0 {
		d.closeTab()
		return
	}
	if first {
		r := gfx.Centered(alttab.Width, alttab.Height, d.session.Width, d.session.Height)
		s, err := d.display.NewSurface(gfx.KindOverlay, r)
		if err != nil {
			d.logger.Warn("failed to create alt-tab overlay", "err", err)
			d.session.Tab.Reset()
			return
		}
		d.session.tabSurface = s
		if err := d.display.GrabKeyboard(s.ID()); err != nil {
			d.logger.Warn("failed to grab keyboard", "err", err)
		}
	}
	d.drawTab()
}

func (d *Dispatcher) drawTab() {
	s := d.session.tabSurface
	z := d.session.Directory.ZOrder
	i := d.session.Tab.Index()
	if s == nil || i < 0 || i >= len(z) {
		return
	}
	alttab.Draw(s.Canvas(), d.icons, z[i])
	if err := s.Flip(); err != nil {
		d.logger.Warn("alt-tab flip failed", "err", err)
	}
}

func (d *Dispatcher) finishTab() {
	i, ok := d.session.Tab.Finish()
	d.closeTab()
	z := d.session.Directory.ZOrder
	if ok && i >= 0 && i < len(z) {
		d.FocusWindow(z[i].ID)
	}
}

func (d *Dispatcher) closeTab() {
	d.session.Tab.Reset()
	if d.session.tabSurface == nil {
		return
	}
	d.session.tabSurface.Close()
	d.session.tabSurface = nil
	d.display.UngrabKeyboard()
}

func (d *Dispatcher) openRunner() {
	if d.session.runner != nil {
		return
	}
	d.closeTab()
	r := gfx.Centered(runner.Width, runner.Height, d.session.Width, d.session.Height)
	s, err := d.display.NewSurface(gfx.KindOverlay, r)
	if err != nil {
		d.logger.Warn("failed to create runner overlay", "err", err)
		return
	}
	d.session.runner = runner.New(d.bins())
	d.session.runnerSurface = s
	if err := d.display.GrabKeyboard(s.ID()); err != nil {
		d.logger.Warn("failed to grab keyboard", "err", err)
	}
	d.drawRunner()
}

func (d *Dispatcher) drawRunner() {
	d.session.runner.Draw(d.session.runnerSurface.Canvas(), d.icons)
	if err := d.session.runnerSurface.Flip(); err != nil {
		d.logger.Warn("runner flip failed", "err", err)
	}
}

func (d *Dispatcher) runnerKey(k event.Key) {
	res := d.session.runner.HandleKey(k)
	switch res.Action {
	case runner.Redraw:
		d.drawRunner()
	case runner.Close:
		d.closeRunner()
	case runner.Launch:
		d.closeRunner()
		d.Launch(res.Command, res.Terminal)
	}
}

func (d *Dispatcher) closeRunner() {
	if d.session.runner == nil {
		return
	}
	d.session.runnerSurface.Close()
	d.session.runner = nil
	d.session.runnerSurface = nil
	d.display.UngrabKeyboard()
}

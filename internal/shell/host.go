package shell

import "github.com/1broseidon/deskbar/internal/menu"

// FocusWindow activates wid on the server.
func (d *Dispatcher) FocusWindow(wid uint32) {
	if err := d.display.FocusWindow(wid); err != nil {
		d.logger.Warn("failed to focus window", "wid", wid, "err", err)
	}
}

// StartMove hands wid to the server for an interactive move.
func (d *Dispatcher) StartMove(wid uint32) {
	if err := d.display.StartMove(wid); err != nil {
		d.logger.Warn("failed to start move", "wid", wid, "err", err)
	}
}

// EndSession asks every client to close and ends this session once the
// current message has been handled.
func (d *Dispatcher) EndSession() {
	if err := d.display.EndSession(); err != nil {
		d.logger.Warn("failed to request session end", "err", err)
	}
	d.session.ending = true
}

// Launch starts command detached, in a terminal when inTerminal is set.
func (d *Dispatcher) Launch(command string, inTerminal bool) {
	if err := d.launcher.Launch(command, inTerminal); err != nil {
		d.logger.Warn("launch failed", "command", command, "err", err)
	}
}

func (d *Dispatcher) OpenMenu(prompt string, items []menu.MenuItem, x, y int, onSelect func(action string)) bool {
	return d.panel.OpenMenu(prompt, items, x, y, onSelect)
}

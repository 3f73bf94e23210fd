package shell

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/1broseidon/deskbar/internal/event"
	"github.com/1broseidon/deskbar/internal/ipc"
	"github.com/1broseidon/deskbar/internal/mixer"
)

func (d *Dispatcher) handleControl(c event.Control) {
	data, err := d.control(c)
	if err != nil {
		d.logger.Debug("control command failed", "command", c.Command, "err", err)
	}
	if c.Reply != nil {
		c.Reply <- event.ControlReply{Data: data, Err: err}
	}
}

func (d *Dispatcher) control(c event.Control) (any, error) {
	switch ipc.CommandType(c.Command) {
	case ipc.CommandGetStatus:
		return d.Status(), nil
	case ipc.CommandListWindows:
		return d.WindowList(), nil
	case ipc.CommandFocusWindow:
		id, err := strconv.ParseUint(c.Args[ipc.ArgWindowID], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid window id %q", c.Args[ipc.ArgWindowID])
		}
		if _, ok := d.session.Directory.Find(uint32(id)); !ok {
			return nil, fmt.Errorf("no such window: %d", id)
		}
		return nil, d.display.FocusWindow(uint32(id))
	case ipc.CommandLaunch:
		command := c.Args[ipc.ArgCommand]
		terminal := c.Args[ipc.ArgTerminal] == "true"
		if strings.TrimSpace(command) == "" && !terminal {
			return nil, fmt.Errorf("launch: empty command")
		}
		return nil, d.launcher.Launch(command, terminal)
	case ipc.CommandReloadWallpaper:
		d.wallpaper.AnimateNew()
		return nil, nil
	case ipc.CommandRestack:
		d.restack()
		return nil, nil
	case ipc.CommandTogglePanel:
		d.panel.ToggleVisibility()
		return nil, nil
	case ipc.CommandLogout:
		d.EndSession()
		return nil, nil
	}
	return nil, fmt.Errorf("unknown command: %s", c.Command)
}

// Status reports the session state.
func (d *Dispatcher) Status() ipc.StatusData {
	s := ipc.StatusData{
		PID:          os.Getpid(),
		WindowCount:  d.session.Directory.Len(),
		PanelVisible: d.panel.Visible(),
		Tabbing:      d.session.Tab.Tabbing(),
		RunnerOpen:   d.session.runner != nil,
		MenuOpen:     d.panel.MenuOpen(),
		ScreenWidth:  d.session.Width,
		ScreenHeight: d.session.Height,
		Volume:       mixer.ToPercent(d.volume.Level()),
		Muted:        d.volume.Muted(),
	}
	if !d.session.started.IsZero() {
		s.UptimeSeconds = int64(d.now().Sub(d.session.started).Seconds())
	}
	if d.source != nil {
		s.Wallpaper = d.source()
	}
	return s
}

// WindowList returns the windows in panel order.
func (d *Dispatcher) WindowList() ipc.WindowsData {
	out := ipc.WindowsData{Windows: make([]ipc.WindowInfo, 0, d.session.Directory.Len())}
	for _, w := range d.session.Directory.Sorted {
		out.Windows = append(out.Windows, ipc.WindowInfo{
			ID:     w.ID,
			Name:   w.Name,
			Icon:   w.Icon,
			Active: w.Active(),
		})
	}
	return out
}

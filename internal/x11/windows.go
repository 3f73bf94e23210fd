package x11

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/deskbar/internal/event"
	"github.com/1broseidon/deskbar/internal/windows"
)

// Source indication for EWMH client messages: pager/direct action.
const sourceIndication = 2

// _NET_WM_MOVERESIZE direction for a keyboard-less move.
const moveResizeMove = 8

// Windows returns the managed application windows in bottom-to-top
// stacking order. Docks, desktops and our own surfaces are left out.
func (c *Connection) Windows() ([]windows.Window, error) {
	clients, err := ewmh.ClientListStackingGet(c.XUtil)
	if err != nil {
		clients, err = ewmh.ClientListGet(c.XUtil)
		if err != nil {
			return nil, fmt.Errorf("failed to get client list: %w", err)
		}
	}
	active, _ := ewmh.ActiveWindowGet(c.XUtil)

	out := make([]windows.Window, 0, len(clients))
	for _, id := range clients {
		if !c.isNormalWindow(id) {
			continue
		}
		w := windows.Window{ID: uint32(id), Name: c.windowName(id)}
		if class, err := icccm.WmClassGet(c.XUtil, id); err == nil {
			w.Icon = class.Instance
		}
		if id == active {
			w.Flags |= windows.FlagActive
		}
		c.watchClient(id)
		out = append(out, w)
	}
	c.pruneWatches(clients)
	return out, nil
}

func (c *Connection) windowName(id xproto.Window) string {
	if name, err := ewmh.WmNameGet(c.XUtil, id); err == nil && name != "" {
		return name
	}
	if name, err := icccm.WmNameGet(c.XUtil, id); err == nil {
		return name
	}
	return ""
}

// isNormalWindow checks if a window is a normal application window
func (c *Connection) isNormalWindow(id xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, id)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP", "_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH", "_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return len(types) == 0
}

// watchClient subscribes to title changes on a client window so the panel
// can follow renames.
func (c *Connection) watchClient(id xproto.Window) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watched[id] {
		return
	}
	if err := xwindow.New(c.XUtil, id).Listen(xproto.EventMaskPropertyChange, xproto.EventMaskStructureNotify); err != nil {
		return
	}
	c.watched[id] = true
	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil {
			return
		}
		if name == "_NET_WM_NAME" || name == "WM_NAME" {
			c.post(event.Notify{})
		}
	}).Connect(c.XUtil, id)
	xevent.DestroyNotifyFun(func(*xgbutil.XUtil, xevent.DestroyNotifyEvent) {
		c.forget(id)
	}).Connect(c.XUtil, id)
}

// forget drops a client's callbacks and its watched entry.
func (c *Connection) forget(id xproto.Window) {
	c.mu.Lock()
	delete(c.watched, id)
	c.mu.Unlock()
	xevent.Detach(c.XUtil, id)
}

// pruneWatches forgets clients that are no longer in the client list.
func (c *Connection) pruneWatches(clients []xproto.Window) {
	c.mu.Lock()
	stale := staleWatches(c.watched, clients)
	c.mu.Unlock()
	for _, id := range stale {
		c.forget(id)
	}
}

// staleWatches returns the watched windows missing from live.
func staleWatches(watched map[xproto.Window]bool, live []xproto.Window) []xproto.Window {
	alive := make(map[xproto.Window]bool, len(live))
	for _, id := range live {
		alive[id] = true
	}
	var stale []xproto.Window
	for id := range watched {
		if !alive[id] {
			stale = append(stale, id)
		}
	}
	slices.Sort(stale)
	return stale
}

// FocusWindow activates and raises a window using _NET_ACTIVE_WINDOW.
func (c *Connection) FocusWindow(id uint32) error {
	return c.sendRootMessage(xproto.Window(id), "_NET_ACTIVE_WINDOW", sourceIndication, 0, 0, 0, 0)
}

// StartMove hands a window to the window manager for an interactive move
// starting at the pointer.
func (c *Connection) StartMove(id uint32) error {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return fmt.Errorf("failed to query pointer: %w", err)
	}
	return c.sendRootMessage(xproto.Window(id), "_NET_WM_MOVERESIZE",
		uint32(pointer.RootX), uint32(pointer.RootY), moveResizeMove, 1, sourceIndication)
}

// sendRootMessage sends an EWMH client message about win to the root
// window. The message is built by hand because the xgbutil ewmh request
// helpers panic on this library version.
func (c *Connection) sendRootMessage(win xproto.Window, atom string, data ...uint32) error {
	atomReply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len(atom)), atom).Reply()
	if err != nil {
		return fmt.Errorf("failed to intern %s: %w", atom, err)
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   atomReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New(data),
	}
	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// EndSession asks the window manager to close every client window
// politely.
func (c *Connection) EndSession() error {
	list, err := c.Windows()
	if err != nil {
		return err
	}
	for _, w := range list {
		if err := c.sendRootMessage(xproto.Window(w.ID), "_NET_CLOSE_WINDOW", 0, sourceIndication, 0, 0, 0); err != nil {
			c.logger.Warn("failed to close window", "window", w.ID, "err", err)
		}
	}
	return nil
}

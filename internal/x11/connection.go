// Package x11 is the display backend: it creates the shell's surfaces,
// answers window directory queries and turns X events into shell messages.
package x11

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/deskbar/internal/event"
	"github.com/1broseidon/deskbar/internal/hotkeys"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	post    func(event.Message)
	logger  *slog.Logger
	hotkeys *hotkeys.Handler

	mu        sync.Mutex
	grabWin   xproto.Window
	grabOwner uint32
	watched   map[xproto.Window]bool
}

// NewConnection connects to the X server named by $DISPLAY. Every event the
// shell cares about is handed to post from the event loop goroutine.
func NewConnection(post func(event.Message), logger *slog.Logger) (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Initialize keybind module (required for global hotkeys)
	keybind.Initialize(xu)

	c := &Connection{
		XUtil:   xu,
		Root:    xu.RootWin(),
		post:    post,
		logger:  logger,
		watched: map[xproto.Window]bool{},
	}
	c.hotkeys = hotkeys.NewHandler(xu, logger)
	if err := c.watchRoot(); err != nil {
		xu.Conn().Close()
		return nil, err
	}
	return c, nil
}

func (c *Connection) watchRoot() error {
	root := xwindow.New(c.XUtil, c.Root)
	if err := root.Listen(xproto.EventMaskPropertyChange, xproto.EventMaskStructureNotify); err != nil {
		return fmt.Errorf("failed to listen on root window: %w", err)
	}
	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil {
			return
		}
		switch name {
		case "_NET_CLIENT_LIST_STACKING", "_NET_CLIENT_LIST", "_NET_ACTIVE_WINDOW":
			c.post(event.Notify{})
		}
	}).Connect(c.XUtil, c.Root)
	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		c.post(event.Welcome{Width: int(ev.Width), Height: int(ev.Height)})
	}).Connect(c.XUtil, c.Root)
	return nil
}

// Screen returns the size of the primary monitor, falling back to the root
// window geometry when RandR has nothing to say.
func (c *Connection) Screen() (width, height int) {
	if mon, err := c.PrimaryMonitor(); err == nil {
		return mon.Width, mon.Height
	}
	s := c.XUtil.Screen()
	return int(s.WidthInPixels), int(s.HeightInPixels)
}

// Welcome posts the current screen geometry, as the server would after a
// change.
func (c *Connection) Welcome() {
	w, h := c.Screen()
	c.post(event.Welcome{Width: w, Height: h})
}

// EventLoop runs the X event loop until the connection closes.
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	xevent.Quit(c.XUtil)
	c.XUtil.Conn().Close()
}

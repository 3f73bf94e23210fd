package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/deskbar/internal/config"
	"github.com/1broseidon/deskbar/internal/event"
	"github.com/1broseidon/deskbar/internal/hotkeys"
)

// X pointer buttons.
const (
	xButtonLeft       = 1
	xButtonMiddle     = 2
	xButtonRight      = 3
	xButtonScrollUp   = 4
	xButtonScrollDown = 5
)

func buttonBit(detail xproto.Button) uint32 {
	switch detail {
	case xButtonLeft:
		return event.ButtonLeft
	case xButtonMiddle:
		return event.ButtonMiddle
	case xButtonRight:
		return event.ButtonRight
	case xButtonScrollUp:
		return event.ButtonScrollUp
	case xButtonScrollDown:
		return event.ButtonScrollDown
	}
	return 0
}

// buttonPress reports a press. Scroll wheel clicks only ever press.
func buttonPress(wid uint32, detail xproto.Button, x, y int) event.Mouse {
	return event.Mouse{WID: wid, X: x, Y: y, Command: event.MouseDown, Buttons: buttonBit(detail)}
}

// buttonRelease turns the release of a left press into a click.
func buttonRelease(wid uint32, detail xproto.Button, x, y int) (event.Mouse, bool) {
	if detail != xButtonLeft {
		return event.Mouse{}, false
	}
	return event.Mouse{WID: wid, X: x, Y: y, Command: event.MouseClick}, true
}

func motion(wid uint32, state uint16, x, y int) event.Mouse {
	m := event.Mouse{WID: wid, X: x, Y: y, Command: event.MouseMove}
	if state&xproto.ButtonMask1 != 0 {
		m.Command = event.MouseDrag
		m.Buttons = event.ButtonLeft
	}
	return m
}

// modifiers maps an X modifier state to shell modifier bits.
func modifiers(state uint16) uint32 {
	var mods uint32
	if state&xproto.ModMaskControl != 0 {
		mods |= event.ModLeftCtrl
	}
	if state&xproto.ModMaskShift != 0 {
		mods |= event.ModLeftShift
	}
	if state&xproto.ModMask1 != 0 {
		mods |= event.ModLeftAlt
	}
	if state&xproto.ModMask4 != 0 {
		mods |= event.ModLeftSuper
	}
	return mods
}

// keyEvent builds a shell key event from a keysym name and the X modifier
// state, which X reports as it was before the key. A modifier key applies
// its own bit so Modifiers describe the state after the event.
func keyEvent(wid uint32, name string, state uint16, down bool) event.Key {
	k := event.Key{WID: wid, Action: event.KeyUp, Modifiers: modifiers(state)}
	if down {
		k.Action = event.KeyDown
	}
	if code, ok := hotkeys.Keycode(name); ok {
		k.Keycode = code
		if r, ok := hotkeys.Printable(name); ok {
			k.Rune = r
		}
	}
	if bit := hotkeys.ModifierKey(k.Keycode); bit != 0 {
		// Right-hand modifiers share the left-hand X masks.
		if bit&(event.ModRightCtrl|event.ModRightShift|event.ModRightAlt|event.ModRightSuper) != 0 {
			bit >>= 4
		}
		if down {
			k.Modifiers |= bit
		} else {
			k.Modifiers &^= bit
		}
	}
	return k
}

func (c *Connection) translateKey(wid uint32, detail xproto.Keycode, state uint16, down bool) event.Key {
	name := keybind.LookupString(c.XUtil, state, detail)
	c.mu.Lock()
	if c.grabOwner != 0 {
		wid = c.grabOwner
	}
	c.mu.Unlock()
	return keyEvent(wid, name, state, down)
}

// BindKeys registers the shell's global shortcuts. Every binding is
// delivered as an event.Key; matching them to actions is up to the
// dispatcher. Calling it again replaces the previous bindings.
func (c *Connection) BindKeys(binds config.Keybinds) error {
	c.hotkeys.Reset()
	stolen := []string{binds.Terminal, binds.Runner, binds.AppMenu, binds.TogglePanel, binds.AltTab, binds.AltTabReverse}
	for _, spec := range stolen {
		if spec == "" {
			continue
		}
		if err := c.bind(spec, true); err != nil {
			return err
		}
	}
	if binds.AltRelease != "" {
		if err := c.bind(binds.AltRelease, false); err != nil {
			return err
		}
	}
	return nil
}

func (c *Connection) bind(spec string, steal bool) error {
	root := uint32(c.Root)
	return c.hotkeys.Bind(spec, steal,
		func(ev xevent.KeyPressEvent) {
			c.post(c.translateKey(root, ev.Detail, ev.State, true))
		},
		func(ev xevent.KeyReleaseEvent) {
			c.post(c.translateKey(root, ev.Detail, ev.State, false))
		})
}

// GrabKeyboard sends every key event to owner until UngrabKeyboard. Key
// events arrive with owner as their WID.
func (c *Connection) GrabKeyboard(owner uint32) error {
	xu := c.XUtil
	if err := c.ensureGrabWindow(); err != nil {
		return err
	}

	grab := func() (*xproto.GrabKeyboardReply, error) {
		return xproto.GrabKeyboard(
			xu.Conn(),
			false,                  // owner_events (report events to grab_window)
			c.Root,                 // grab_window (must be viewable)
			xproto.TimeCurrentTime, // time
			xproto.GrabModeAsync,   // pointer_mode
			xproto.GrabModeAsync,   // keyboard_mode
		).Reply()
	}

	reply, err := grab()
	if err != nil {
		return err
	}
	// A global hotkey press leaves the keyboard grabbed by this client;
	// release it and retry.
	if reply.Status == xproto.GrabStatusAlreadyGrabbed {
		xproto.UngrabKeyboard(xu.Conn(), xproto.TimeCurrentTime)
		if reply, err = grab(); err != nil {
			return err
		}
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("keyboard grab failed with status %d", reply.Status)
	}

	c.mu.Lock()
	c.grabOwner = owner
	c.mu.Unlock()
	xevent.RedirectKeyEvents(xu, c.grabWin)
	return nil
}

// UngrabKeyboard releases a grab taken by GrabKeyboard.
func (c *Connection) UngrabKeyboard() {
	xproto.UngrabKeyboard(c.XUtil.Conn(), xproto.TimeCurrentTime)
	xevent.RedirectKeyEvents(c.XUtil, 0)
	c.mu.Lock()
	c.grabOwner = 0
	c.mu.Unlock()
}

func (c *Connection) ensureGrabWindow() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.grabWin != 0 {
		return nil
	}

	conn := c.XUtil.Conn()
	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return err
	}

	// InputOnly window that never draws anything; used solely as a safe target
	// for key event callbacks while the keyboard is grabbed.
	err = xproto.CreateWindowChecked(
		conn,
		0, // depth (must be 0 for InputOnly)
		wid,
		c.Root,
		0, 0, // x, y
		1, 1, // width, height
		0, // border_width
		xproto.WindowClassInputOnly,
		xproto.Visualid(0), // CopyFromParent
		xproto.CwEventMask,
		[]uint32{uint32(xproto.EventMaskKeyPress | xproto.EventMaskKeyRelease)},
	).Check()
	if err != nil {
		return err
	}
	xproto.MapWindow(conn, wid)

	xevent.KeyPressFun(func(_ *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		c.post(c.translateKey(uint32(wid), ev.Detail, ev.State, true))
	}).Connect(c.XUtil, wid)
	xevent.KeyReleaseFun(func(_ *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
		c.post(c.translateKey(uint32(wid), ev.Detail, ev.State, false))
	}).Connect(c.XUtil, wid)

	c.grabWin = wid
	return nil
}

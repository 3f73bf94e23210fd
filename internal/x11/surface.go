package x11

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/deskbar/internal/event"
	"github.com/1broseidon/deskbar/internal/gfx"
)

const surfaceEvents = xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskEnterWindow |
	xproto.EventMaskLeaveWindow |
	xproto.EventMaskStructureNotify |
	xproto.EventMaskFocusChange |
	xproto.EventMaskKeyPress |
	xproto.EventMaskKeyRelease

// Surface is a gfx.Surface backed by an X window. Painting goes to an
// in-memory buffer; Flip uploads it as the window background.
type Surface struct {
	conn *Connection
	win  *xwindow.Window
	kind gfx.SurfaceKind

	width, height int
	back          *image.RGBA
	canvas        *gfx.Canvas
	ximg          *xgraphics.Image

	// owned by the event loop goroutine
	pressed    uint32
	configured image.Point
}

// NewSurface creates and maps a window of the given kind at r.
func (c *Connection) NewSurface(kind gfx.SurfaceKind, r gfx.Rect) (gfx.Surface, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window: %w", err)
	}

	mask := xproto.CwBackPixel | xproto.CwEventMask
	values := []uint32{0, surfaceEvents}
	if kind == gfx.KindOverlay {
		mask = xproto.CwBackPixel | xproto.CwOverrideRedirect | xproto.CwEventMask
		values = []uint32{0, 1, surfaceEvents}
	}
	if err := win.CreateChecked(c.Root, r.X, r.Y, r.Width, r.Height, mask, values...); err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	s := &Surface{conn: c, win: win, kind: kind, configured: image.Pt(r.Width, r.Height)}
	s.allocate(r.Width, r.Height)
	if err := s.describe(); err != nil {
		win.Destroy()
		return nil, err
	}
	s.connectEvents()
	win.Map()
	if kind == gfx.KindPanel {
		// Some window managers re-place docks when they map.
		win.Move(r.X, r.Y)
	}
	return s, nil
}

func (s *Surface) describe() error {
	xu := s.conn.XUtil
	id := s.win.Id
	if err := icccm.WmClassSet(xu, id, &icccm.WmClass{Instance: "deskbar", Class: "Deskbar"}); err != nil {
		return fmt.Errorf("failed to set WM_CLASS: %w", err)
	}
	switch s.kind {
	case gfx.KindPanel:
		if err := ewmh.WmWindowTypeSet(xu, id, []string{"_NET_WM_WINDOW_TYPE_DOCK"}); err != nil {
			return fmt.Errorf("failed to set window type: %w", err)
		}
		if err := ewmh.WmStateSet(xu, id, []string{"_NET_WM_STATE_STICKY", "_NET_WM_STATE_ABOVE"}); err != nil {
			return fmt.Errorf("failed to set window state: %w", err)
		}
		s.reserveStrut()
		return ewmh.WmNameSet(xu, id, "deskbar panel")
	case gfx.KindDesktop:
		if err := ewmh.WmWindowTypeSet(xu, id, []string{"_NET_WM_WINDOW_TYPE_DESKTOP"}); err != nil {
			return fmt.Errorf("failed to set window type: %w", err)
		}
		if err := ewmh.WmStateSet(xu, id, []string{"_NET_WM_STATE_STICKY", "_NET_WM_STATE_BELOW"}); err != nil {
			return fmt.Errorf("failed to set window state: %w", err)
		}
		return ewmh.WmNameSet(xu, id, "deskbar desktop")
	}
	return nil
}

// reserveStrut keeps maximised windows clear of the panel.
func (s *Surface) reserveStrut() {
	xu := s.conn.XUtil
	strut := &ewmh.WmStrutPartial{
		Top:       uint(s.height),
		TopStartX: 0,
		TopEndX:   uint(max(s.width-1, 0)),
	}
	if err := ewmh.WmStrutPartialSet(xu, s.win.Id, strut); err != nil {
		s.conn.logger.Warn("failed to set panel strut", "err", err)
	}
	if err := ewmh.WmStrutSet(xu, s.win.Id, &ewmh.WmStrut{Top: uint(s.height)}); err != nil {
		s.conn.logger.Warn("failed to set panel strut", "err", err)
	}
}

func (s *Surface) allocate(width, height int) {
	s.width, s.height = width, height
	s.back = image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	s.canvas = gfx.NewCanvas(s.back)
	if s.ximg != nil {
		s.ximg.Destroy()
		s.ximg = nil
	}
}

func (s *Surface) connectEvents() {
	xu := s.conn.XUtil
	wid := uint32(s.win.Id)
	post := s.conn.post

	xevent.ButtonPressFun(func(_ *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		s.pressed |= buttonBit(ev.Detail)
		post(buttonPress(wid, ev.Detail, int(ev.EventX), int(ev.EventY)))
	}).Connect(xu, s.win.Id)
	xevent.ButtonReleaseFun(func(_ *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		bit := buttonBit(ev.Detail)
		if s.pressed&bit == 0 {
			return
		}
		s.pressed &^= bit
		if m, ok := buttonRelease(wid, ev.Detail, int(ev.EventX), int(ev.EventY)); ok {
			post(m)
		}
	}).Connect(xu, s.win.Id)
	xevent.MotionNotifyFun(func(_ *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		post(motion(wid, ev.State, int(ev.EventX), int(ev.EventY)))
	}).Connect(xu, s.win.Id)
	xevent.LeaveNotifyFun(func(_ *xgbutil.XUtil, ev xevent.LeaveNotifyEvent) {
		post(event.Mouse{WID: wid, X: int(ev.EventX), Y: int(ev.EventY), Command: event.MouseLeave})
	}).Connect(xu, s.win.Id)
	xevent.EnterNotifyFun(func(_ *xgbutil.XUtil, ev xevent.EnterNotifyEvent) {
		post(event.Mouse{WID: wid, X: int(ev.EventX), Y: int(ev.EventY), Command: event.MouseEnter})
	}).Connect(xu, s.win.Id)
	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		size := image.Pt(int(ev.Width), int(ev.Height))
		if size == s.configured {
			return
		}
		s.configured = size
		post(event.ResizeOffer{WID: wid, Width: size.X, Height: size.Y})
	}).Connect(xu, s.win.Id)
	xevent.FocusInFun(func(*xgbutil.XUtil, xevent.FocusInEvent) {
		post(event.FocusChange{WID: wid, Focused: true})
	}).Connect(xu, s.win.Id)
	xevent.FocusOutFun(func(*xgbutil.XUtil, xevent.FocusOutEvent) {
		post(event.FocusChange{WID: wid, Focused: false})
	}).Connect(xu, s.win.Id)
	xevent.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		post(s.conn.translateKey(wid, ev.Detail, ev.State, true))
	}).Connect(xu, s.win.Id)
	xevent.KeyReleaseFun(func(xu *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
		post(s.conn.translateKey(wid, ev.Detail, ev.State, false))
	}).Connect(xu, s.win.Id)
}

func (s *Surface) ID() uint32 { return uint32(s.win.Id) }

func (s *Surface) Size() (int, int) { return s.width, s.height }

func (s *Surface) Canvas() *gfx.Canvas { return s.canvas }

// Flip uploads the back buffer and makes it the window background.
func (s *Surface) Flip() error {
	if s.width <= 0 || s.height <= 0 {
		return nil
	}
	if s.ximg == nil {
		s.ximg = xgraphics.New(s.conn.XUtil, image.Rect(0, 0, s.width, s.height))
		if err := s.ximg.XSurfaceSet(s.win.Id); err != nil {
			s.ximg.Destroy()
			s.ximg = nil
			return fmt.Errorf("failed to create pixmap: %w", err)
		}
	}
	rgbaToBGRA(s.ximg.Pix, s.back.Pix)
	s.ximg.XDraw()
	s.ximg.XPaint(s.win.Id)
	return nil
}

// rgbaToBGRA copies premultiplied RGBA pixels into the BGRA layout
// xgraphics uses.
func rgbaToBGRA(dst, src []uint8) {
	n := min(len(dst), len(src))
	for i := 0; i+3 < n; i += 4 {
		dst[i+0] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i+0]
		dst[i+3] = src[i+3]
	}
}

func (s *Surface) Move(x, y int) { s.win.Move(x, y) }

// Resize asks the server for new dimensions. The ConfigureNotify that
// follows arrives as an event.ResizeOffer; asking for the current size
// does nothing.
func (s *Surface) Resize(width, height int) {
	if width == s.width && height == s.height {
		return
	}
	s.win.Resize(width, height)
}

// AcceptResize reallocates the back buffer for the new size.
func (s *Surface) AcceptResize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	s.allocate(width, height)
	return nil
}

// ResizeDone finishes a resize. Docks refresh their reserved strut.
func (s *Surface) ResizeDone() {
	if s.kind == gfx.KindPanel {
		s.reserveStrut()
	}
}

func (s *Surface) SetStack(order gfx.StackOrder) {
	if order == gfx.StackBottom {
		s.win.Stack(xproto.StackModeBelow)
		return
	}
	s.win.Stack(xproto.StackModeAbove)
}

// Close destroys the window and its pixmap.
func (s *Surface) Close() {
	if s.ximg != nil {
		s.ximg.Destroy()
		s.ximg = nil
	}
	s.win.Destroy()
}

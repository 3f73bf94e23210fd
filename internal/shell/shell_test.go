package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/1broseidon/deskbar/internal/config"
	"github.com/1broseidon/deskbar/internal/event"
	"github.com/1broseidon/deskbar/internal/gfx"
	"github.com/1broseidon/deskbar/internal/hotkeys"
	"github.com/1broseidon/deskbar/internal/ipc"
	"github.com/1broseidon/deskbar/internal/menu"
	"github.com/1broseidon/deskbar/internal/pidfile"
	"github.com/1broseidon/deskbar/internal/widget"
	"github.com/1broseidon/deskbar/internal/windows"
)

const (
	screenW = 800
	screenH = 600
)

type fakeDisplay struct {
	surfaces []*gfx.MemorySurface
	kinds    []gfx.SurfaceKind
	wins     []windows.Window
	focused  []uint32
	moved    []uint32
	ended    int
	binds    int
	grabs    []uint32
	ungrabs  int
}

func (f *fakeDisplay) Screen() (int, int) { return screenW, screenH }

func (f *fakeDisplay) NewSurface(kind gfx.SurfaceKind, r gfx.Rect) (gfx.Surface, error) {
	s := gfx.NewMemorySurface(uint32(100+len(f.surfaces)), r.Width, r.Height)
	s.X, s.Y = r.X, r.Y
	f.surfaces = append(f.surfaces, s)
	f.kinds = append(f.kinds, kind)
	return s, nil
}

func (f *fakeDisplay) Windows() ([]windows.Window, error) { return f.wins, nil }

func (f *fakeDisplay) FocusWindow(wid uint32) error {
	f.focused = append(f.focused, wid)
	return nil
}

func (f *fakeDisplay) StartMove(wid uint32) error {
	f.moved = append(f.moved, wid)
	return nil
}

func (f *fakeDisplay) EndSession() error {
	f.ended++
	return nil
}

func (f *fakeDisplay) BindKeys(config.Keybinds) error {
	f.binds++
	return nil
}

func (f *fakeDisplay) GrabKeyboard(owner uint32) error {
	f.grabs = append(f.grabs, owner)
	return nil
}

func (f *fakeDisplay) UngrabKeyboard() { f.ungrabs++ }

// last returns the most recently created surface.
func (f *fakeDisplay) last() *gfx.MemorySurface { return f.surfaces[len(f.surfaces)-1] }

type launch struct {
	command  string
	terminal bool
}

type fakeLauncher struct{ launches []launch }

func (l *fakeLauncher) Launch(command string, terminal bool) error {
	l.launches = append(l.launches, launch{command, terminal})
	return nil
}

type fakeMenus struct{ opened []string }

func (m *fakeMenus) Open(prompt string, _ []menu.MenuItem, _ menu.Anchor) string {
	m.opened = append(m.opened, prompt)
	return fmt.Sprintf("menu-%d", len(m.opened))
}

type harness struct {
	d        *Dispatcher
	display  *fakeDisplay
	launcher *fakeLauncher
	menus    *fakeMenus
	pid      *pidfile.File
	reaps    int
	now      time.Time
}

func newHarness(t *testing.T, wins ...windows.Window) *harness {
	t.Helper()
	h := &harness{
		display:  &fakeDisplay{wins: wins},
		launcher: &fakeLauncher{},
		menus:    &fakeMenus{},
		pid:      pidfile.New(filepath.Join(t.TempDir(), "deskbar.pid")),
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	d, err := New(Options{
		Config:   config.DefaultConfig(),
		Display:  h.display,
		Launcher: h.launcher,
		Menus:    h.menus,
		Icons:    gfx.NewIcons([]string{t.TempDir()}, nil),
		Desktop:  []config.DesktopEntry{{Icon: "utilities-terminal", Command: "xterm", Label: "Terminal"}},
		PIDFile:  h.pid,
		Bins:     func() []string { return []string{"ls", "ln", "cat"} },
		Reap: func() (int, error) {
			h.reaps++
			return 0, nil
		},
		Now:   func() time.Time { return h.now },
		Sleep: func(time.Duration) {},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	h.d = d
	return h
}

func (h *harness) handle(t *testing.T, msg event.Message) {
	t.Helper()
	if err := h.d.Handle(msg); err != nil {
		t.Fatalf("Handle(%T): %v", msg, err)
	}
}

func (h *harness) panelSurface() *gfx.MemorySurface {
	return h.d.Panel().Surface().(*gfx.MemorySurface)
}

func (h *harness) wallSurface() *gfx.MemorySurface {
	return h.d.Wallpaper().Surface().(*gfx.MemorySurface)
}

func keyDown(code uint32, mods uint32) event.Key {
	return event.Key{Action: event.KeyDown, Keycode: code, Modifiers: mods}
}

func char(r rune) event.Key {
	return event.Key{Action: event.KeyDown, Keycode: uint32(r), Rune: r}
}

var altRelease = event.Key{Action: event.KeyUp, Keycode: event.KeyLeftAlt}

func threeWindows() []windows.Window {
	return []windows.Window{
		{ID: 1, Name: "zsh"},
		{ID: 2, Name: "Editor"},
		{ID: 3, Name: "browser", Flags: windows.FlagActive},
	}
}

func TestStart(t *testing.T) {
	h := newHarness(t, threeWindows()...)

	if got := h.display.kinds; len(got) != 2 || got[0] != gfx.KindDesktop || got[1] != gfx.KindPanel {
		t.Fatalf("surface kinds = %v, want desktop then panel", got)
	}
	if s := h.wallSurface(); s.Stack != gfx.StackBottom || s.Flips == 0 {
		t.Fatalf("wallpaper stack=%v flips=%d", s.Stack, s.Flips)
	}
	if s := h.panelSurface(); s.Stack != gfx.StackTop || s.Flips == 0 {
		t.Fatalf("panel stack=%v flips=%d", s.Stack, s.Flips)
	}
	if w, _ := h.panelSurface().Size(); w != screenW {
		t.Fatalf("panel width = %d, want %d", w, screenW)
	}
	if h.display.binds != 1 {
		t.Fatalf("binds = %d, want 1", h.display.binds)
	}
	if h.d.Session().Directory.Len() != 3 {
		t.Fatalf("directory = %+v", h.d.Session().Directory)
	}
	pid, err := h.pid.Read()
	if err != nil || pid != os.Getpid() {
		t.Fatalf("pid file = %d, %v", pid, err)
	}
}

func TestAltTab_CycleAndFocus(t *testing.T) {
	h := newHarness(t, threeWindows()...)
	alt := event.ModLeftAlt

	h.handle(t, keyDown(event.KeyTab, alt))
	if got := h.d.Session().Tab.Index(); got != 1 {
		t.Fatalf("first Tab index = %d, want 1", got)
	}
	overlay := h.display.last()
	if len(h.display.surfaces) != 3 || h.display.kinds[2] != gfx.KindOverlay {
		t.Fatalf("expected an overlay surface, got kinds %v", h.display.kinds)
	}
	if overlay.X != (screenW-300)/2 || overlay.Y != (screenH-115)/2 {
		t.Fatalf("overlay at %d,%d, want centred", overlay.X, overlay.Y)
	}
	if len(h.display.grabs) != 1 || h.display.grabs[0] != overlay.WID {
		t.Fatalf("grabs = %v, want [%d]", h.display.grabs, overlay.WID)
	}

	h.handle(t, keyDown(event.KeyTab, alt))
	h.handle(t, keyDown(event.KeyTab, alt))
	if got := h.d.Session().Tab.Index(); got != 2 {
		t.Fatalf("after wrap index = %d, want 2", got)
	}
	h.handle(t, keyDown(event.KeyTab, alt|event.ModLeftShift))
	if got := h.d.Session().Tab.Index(); got != 0 {
		t.Fatalf("after Shift+Tab index = %d, want 0", got)
	}
	if len(h.display.surfaces) != 3 {
		t.Fatalf("overlay must be created once, have %d surfaces", len(h.display.surfaces))
	}

	// A key-up with Alt still held does not finish.
	h.handle(t, event.Key{Action: event.KeyUp, Keycode: event.KeyTab, Modifiers: alt})
	if !h.d.Session().Tab.Tabbing() {
		t.Fatalf("tabbing ended before Alt was released")
	}

	h.handle(t, altRelease)
	if h.d.Session().Tab.Tabbing() {
		t.Fatalf("still tabbing after Alt release")
	}
	if !overlay.Closed || h.display.ungrabs != 1 {
		t.Fatalf("overlay closed=%v ungrabs=%d", overlay.Closed, h.display.ungrabs)
	}
	if len(h.display.focused) != 1 || h.display.focused[0] != 1 {
		t.Fatalf("focused = %v, want [1]", h.display.focused)
	}
}

func TestAltTab_NoWindows(t *testing.T) {
	h := newHarness(t)
	h.handle(t, keyDown(event.KeyTab, event.ModLeftAlt))
	if h.d.Session().Tab.Tabbing() || len(h.display.surfaces) != 2 {
		t.Fatalf("tabbing with no windows: surfaces=%d", len(h.display.surfaces))
	}
	h.handle(t, altRelease)
	if len(h.display.focused) != 0 {
		t.Fatalf("focused = %v", h.display.focused)
	}
}

func TestRunner_CompleteAndLaunch(t *testing.T) {
	h := newHarness(t, threeWindows()...)

	h.handle(t, keyDown(event.KeyF2, event.ModLeftAlt))
	if !h.d.Status().RunnerOpen {
		t.Fatalf("runner not open")
	}
	overlay := h.display.last()
	if overlay.X != (screenW-400)/2 {
		t.Fatalf("runner overlay x = %d", overlay.X)
	}

	h.handle(t, char('l'))
	if got := h.d.Session().runner.Complete; got != "n" {
		t.Fatalf("completion = %q, want %q", got, "n")
	}

	// The runner is modal: Alt+Tab goes to it rather than the switcher.
	h.handle(t, keyDown(event.KeyTab, event.ModLeftAlt))
	if h.d.Session().Tab.Tabbing() {
		t.Fatalf("alt-tab started while the runner was open")
	}

	h.handle(t, keyDown(event.KeyEnter, event.ModLeftShift))
	if !overlay.Closed || h.d.Status().RunnerOpen {
		t.Fatalf("runner still open after Enter")
	}
	if len(h.launcher.launches) != 1 || h.launcher.launches[0] != (launch{"ln", true}) {
		t.Fatalf("launches = %+v", h.launcher.launches)
	}
	if h.display.ungrabs != 1 {
		t.Fatalf("ungrabs = %d, want 1", h.display.ungrabs)
	}
}

func TestRunner_TypesPunctuationKeysyms(t *testing.T) {
	h := newHarness(t)
	h.handle(t, keyDown(event.KeyF2, event.ModLeftAlt))

	for _, name := range []string{"period", "slash", "x", "minus", "t", "space", "minus", "minus", "a", "equal", "underscore"} {
		code, ok := hotkeys.Keycode(name)
		if !ok {
			t.Fatalf("no keycode for keysym %q", name)
		}
		r, _ := hotkeys.Printable(name)
		h.handle(t, event.Key{Action: event.KeyDown, Keycode: code, Rune: r})
	}
	if got := h.d.Session().runner.Data; got != "./x-t --a=_" {
		t.Fatalf("typed = %q", got)
	}

	h.handle(t, keyDown(event.KeyEnter, 0))
	if len(h.launcher.launches) != 1 || h.launcher.launches[0] != (launch{"./x-t --a=_", false}) {
		t.Fatalf("launches = %+v", h.launcher.launches)
	}
}

func TestRunner_EscapeClosesWithoutLaunch(t *testing.T) {
	h := newHarness(t)
	h.handle(t, keyDown(event.KeyF2, event.ModLeftAlt))
	h.handle(t, char('c'))
	h.handle(t, keyDown(event.KeyEscape, 0))
	if h.d.Status().RunnerOpen || len(h.launcher.launches) != 0 {
		t.Fatalf("escape: open=%v launches=%v", h.d.Status().RunnerOpen, h.launcher.launches)
	}
}

func TestGlobalKeybinds(t *testing.T) {
	h := newHarness(t)

	h.handle(t, keyDown('t', event.ModLeftCtrl|event.ModLeftAlt))
	if len(h.launcher.launches) != 1 || h.launcher.launches[0] != (launch{"", true}) {
		t.Fatalf("terminal launches = %+v", h.launcher.launches)
	}

	h.handle(t, keyDown(event.KeyF11, event.ModLeftCtrl))
	if h.d.Panel().Visible() {
		t.Fatalf("panel still visible after toggle")
	}
	h.handle(t, keyDown(event.KeyF11, event.ModLeftCtrl))
	if !h.d.Panel().Visible() {
		t.Fatalf("panel hidden after second toggle")
	}

	h.handle(t, keyDown(event.KeyF1, event.ModLeftAlt))
	if len(h.menus.opened) != 1 || h.menus.opened[0] != "Applications" {
		t.Fatalf("menus = %v", h.menus.opened)
	}
	// A second Alt+F1 while the menu is up is ignored.
	h.handle(t, keyDown(event.KeyF1, event.ModLeftAlt))
	if len(h.menus.opened) != 1 {
		t.Fatalf("menus = %v", h.menus.opened)
	}

	h.handle(t, event.MenuClosed{ID: "menu-1", Action: widget.ExecAction("gimp")})
	if got := h.launcher.launches[len(h.launcher.launches)-1]; got != (launch{"gimp", false}) {
		t.Fatalf("menu launch = %+v", got)
	}
	if h.d.Panel().MenuOpen() {
		t.Fatalf("menu still marked open")
	}
}

func TestMouseRouting(t *testing.T) {
	h := newHarness(t)
	panelID, wallID := h.panelSurface().WID, h.wallSurface().WID

	before := h.wallSurface().Flips
	// Hover then click the only desktop icon.
	h.handle(t, event.Mouse{WID: wallID, X: 30, Y: 60, Command: event.MouseMove})
	h.handle(t, event.Mouse{WID: wallID, X: 30, Y: 60, Command: event.MouseClick})
	if len(h.launcher.launches) != 1 || h.launcher.launches[0] != (launch{"xterm", false}) {
		t.Fatalf("icon launches = %+v", h.launcher.launches)
	}
	if h.wallSurface().Flips == before {
		t.Fatalf("wallpaper not repainted on hover")
	}
	if h.d.Panel().Focused() != nil {
		t.Fatalf("desktop events leaked into the panel")
	}

	h.handle(t, event.Mouse{WID: panelID, X: 5, Y: 5, Command: event.MouseMove})
	if h.d.Panel().Focused() == nil {
		t.Fatalf("panel did not take focus")
	}
}

func TestLogoutWidgetEndsSession(t *testing.T) {
	h := newHarness(t)
	panelID := h.panelSurface().WID

	h.handle(t, event.Mouse{WID: panelID, X: screenW - 10, Y: 5, Command: event.MouseMove})
	err := h.d.Handle(event.Mouse{WID: panelID, X: screenW - 10, Y: 5, Command: event.MouseClick})
	if !errors.Is(err, ErrSessionEnded) {
		t.Fatalf("Handle = %v, want ErrSessionEnded", err)
	}
	if h.display.ended != 1 {
		t.Fatalf("session end requests = %d", h.display.ended)
	}
	if !h.panelSurface().Closed || !h.wallSurface().Closed {
		t.Fatalf("surfaces not closed")
	}
}

func TestSessionEnd(t *testing.T) {
	h := newHarness(t, threeWindows()...)
	h.handle(t, keyDown(event.KeyTab, event.ModLeftAlt))
	overlay := h.display.last()

	if err := h.d.Handle(event.SessionEnd{}); !errors.Is(err, ErrSessionEnded) {
		t.Fatalf("Handle = %v, want ErrSessionEnded", err)
	}
	if !overlay.Closed || !h.panelSurface().Closed || !h.wallSurface().Closed {
		t.Fatalf("overlay=%v panel=%v wallpaper=%v", overlay.Closed, h.panelSurface().Closed, h.wallSurface().Closed)
	}
	if _, err := os.Stat(h.pid.Path()); !os.IsNotExist(err) {
		t.Fatalf("pid file still present: %v", err)
	}
}

func TestRun_StopsOnSessionEnd(t *testing.T) {
	h := newHarness(t)
	msgs := make(chan event.Message, 3)
	msgs <- event.Notify{}
	msgs <- event.FocusChange{WID: 1, Focused: true}
	msgs <- event.SessionEnd{}
	if err := h.d.Run(context.Background(), msgs); !errors.Is(err, ErrSessionEnded) {
		t.Fatalf("Run = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h2 := newHarness(t)
	if err := h2.d.Run(ctx, make(chan event.Message)); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run with cancelled ctx = %v", err)
	}
}

func TestTimerTick_ReapsOncePerSecond(t *testing.T) {
	h := newHarness(t)
	base := h.now
	flips := h.panelSurface().Flips

	h.handle(t, event.TimerTick{Now: base})
	h.handle(t, event.TimerTick{Now: base.Add(400 * time.Millisecond)})
	if h.reaps != 1 {
		t.Fatalf("reaps = %d, want 1", h.reaps)
	}
	if h.panelSurface().Flips != flips+1 {
		t.Fatalf("panel redraws = %d, want 1", h.panelSurface().Flips-flips)
	}
	h.handle(t, event.TimerTick{Now: base.Add(time.Second)})
	if h.reaps != 2 {
		t.Fatalf("reaps = %d, want 2", h.reaps)
	}
}

func TestReloadWallpaperAnimatesOnTicks(t *testing.T) {
	h := newHarness(t)
	h.handle(t, event.ReloadWallpaper{})
	if !h.d.Wallpaper().Fading() {
		t.Fatalf("no cross-fade after reload")
	}
	h.now = h.now.Add(time.Second)
	h.handle(t, event.TimerTick{Now: h.now})
	if h.d.Wallpaper().Animating() {
		t.Fatalf("cross-fade still running after 1s")
	}
}

func TestNotifyAndRestack(t *testing.T) {
	h := newHarness(t)
	h.display.wins = threeWindows()
	h.handle(t, event.Notify{})

	sorted := h.d.Session().Directory.Sorted
	if len(sorted) != 3 || sorted[0].Name != "browser" || sorted[2].Name != "zsh" {
		t.Fatalf("sorted = %+v", sorted)
	}

	h.panelSurface().SetStack(gfx.StackBottom)
	h.wallSurface().SetStack(gfx.StackTop)
	h.handle(t, event.Restack{})
	if h.panelSurface().Stack != gfx.StackTop || h.wallSurface().Stack != gfx.StackBottom {
		t.Fatalf("restack: panel=%v wallpaper=%v", h.panelSurface().Stack, h.wallSurface().Stack)
	}
	if h.display.binds != 2 {
		t.Fatalf("binds = %d, want 2", h.display.binds)
	}
}

func TestWelcomeAndResizeOffer(t *testing.T) {
	h := newHarness(t)
	h.handle(t, event.Welcome{Width: 1024, Height: 768})
	if p := h.panelSurface().Pending; p.X != 1024 || p.Y != 28 {
		t.Fatalf("panel resize request = %v", p)
	}
	if p := h.wallSurface().Pending; p.X != 1024 || p.Y != 768 {
		t.Fatalf("wallpaper resize request = %v", p)
	}

	h.handle(t, event.ResizeOffer{WID: h.panelSurface().WID, Width: 1024, Height: 28})
	h.handle(t, event.ResizeOffer{WID: h.wallSurface().WID, Width: 1024, Height: 768})
	if w, _ := h.panelSurface().Size(); w != 1024 || h.panelSurface().Done != 1 {
		t.Fatalf("panel width=%d done=%d", w, h.panelSurface().Done)
	}
	if w, ht := h.wallSurface().Size(); w != 1024 || ht != 768 || h.wallSurface().Done != 1 {
		t.Fatalf("wallpaper %dx%d done=%d", w, ht, h.wallSurface().Done)
	}
}

func control(t *testing.T, h *harness, cmd ipc.CommandType, args map[string]string) event.ControlReply {
	t.Helper()
	reply := make(chan event.ControlReply, 1)
	h.handle(t, event.Control{Command: string(cmd), Args: args, Reply: reply})
	select {
	case r := <-reply:
		return r
	default:
		t.Fatalf("%s: no reply", cmd)
		return event.ControlReply{}
	}
}

func TestControl(t *testing.T) {
	h := newHarness(t, threeWindows()...)

	r := control(t, h, ipc.CommandGetStatus, nil)
	status, ok := r.Data.(ipc.StatusData)
	if r.Err != nil || !ok {
		t.Fatalf("status reply = %+v", r)
	}
	if status.WindowCount != 3 || !status.PanelVisible || status.ScreenWidth != screenW {
		t.Fatalf("status = %+v", status)
	}

	r = control(t, h, ipc.CommandListWindows, nil)
	list := r.Data.(ipc.WindowsData)
	if len(list.Windows) != 3 || list.Windows[0].ID != 3 || !list.Windows[0].Active {
		t.Fatalf("windows = %+v", list)
	}

	if r = control(t, h, ipc.CommandFocusWindow, map[string]string{ipc.ArgWindowID: "2"}); r.Err != nil {
		t.Fatalf("focus: %v", r.Err)
	}
	if r = control(t, h, ipc.CommandFocusWindow, map[string]string{ipc.ArgWindowID: "99"}); r.Err == nil {
		t.Fatalf("focus of unknown window succeeded")
	}
	if len(h.display.focused) != 1 || h.display.focused[0] != 2 {
		t.Fatalf("focused = %v", h.display.focused)
	}

	if r = control(t, h, ipc.CommandLaunch, map[string]string{ipc.ArgCommand: "top", ipc.ArgTerminal: "true"}); r.Err != nil {
		t.Fatalf("launch: %v", r.Err)
	}
	if r = control(t, h, ipc.CommandLaunch, map[string]string{ipc.ArgCommand: " "}); r.Err == nil {
		t.Fatalf("empty launch succeeded")
	}
	if len(h.launcher.launches) != 1 || h.launcher.launches[0] != (launch{"top", true}) {
		t.Fatalf("launches = %+v", h.launcher.launches)
	}

	control(t, h, ipc.CommandTogglePanel, nil)
	if h.d.Panel().Visible() {
		t.Fatalf("panel visible after TOGGLE_PANEL")
	}

	if r = control(t, h, "TILE", nil); r.Err == nil {
		t.Fatalf("unknown command succeeded")
	}
}

func TestControl_LogoutEndsSession(t *testing.T) {
	h := newHarness(t)
	reply := make(chan event.ControlReply, 1)
	err := h.d.Handle(event.Control{Command: string(ipc.CommandLogout), Reply: reply})
	if !errors.Is(err, ErrSessionEnded) {
		t.Fatalf("Handle = %v", err)
	}
	if r := <-reply; r.Err != nil {
		t.Fatalf("logout reply = %v", r.Err)
	}
}

func TestMenuItems(t *testing.T) {
	items := MenuItems([]config.AppEntry{
		{Label: "Games", Submenu: []config.AppEntry{{Label: "Chess", Command: "xboard"}}},
		{Divider: true},
		{Label: "Log Out", Logout: true},
	})
	if len(items) != 3 {
		t.Fatalf("items = %+v", items)
	}
	if !items[0].IsParent() || items[0].Submenu[0].Action != widget.ExecAction("xboard") {
		t.Fatalf("submenu = %+v", items[0])
	}
	if !items[1].IsDivider {
		t.Fatalf("divider = %+v", items[1])
	}
	if items[2].Action != widget.ActionLogout {
		t.Fatalf("logout = %+v", items[2])
	}
}

func TestNew_RejectsBadKeybind(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Keybinds.Runner = "Hyper-F2"
	_, err := New(Options{Config: cfg, Display: &fakeDisplay{}, Launcher: &fakeLauncher{}})
	if err == nil {
		t.Fatalf("expected keybind error")
	}
}

// Package shell is the session core: it owns the panel, the desktop and
// the transient overlays, and routes every inbound message to the one
// controller it concerns.
package shell

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"time"

	"github.com/1broseidon/deskbar/internal/alttab"
	"github.com/1broseidon/deskbar/internal/config"
	"github.com/1broseidon/deskbar/internal/gfx"
	"github.com/1broseidon/deskbar/internal/hotkeys"
	"github.com/1broseidon/deskbar/internal/menu"
	"github.com/1broseidon/deskbar/internal/mixer"
	"github.com/1broseidon/deskbar/internal/panel"
	"github.com/1broseidon/deskbar/internal/pidfile"
	"github.com/1broseidon/deskbar/internal/runner"
	"github.com/1broseidon/deskbar/internal/wallpaper"
	"github.com/1broseidon/deskbar/internal/widget"
	"github.com/1broseidon/deskbar/internal/windows"
)

// ErrSessionEnded is returned once a session end has been handled and the
// shell's surfaces are gone.
var ErrSessionEnded = errors.New("session ended")

// Display is the windowing backend the dispatcher drives.
type Display interface {
	Screen() (width, height int)
	NewSurface(kind gfx.SurfaceKind, r gfx.Rect) (gfx.Surface, error)
	Windows() ([]windows.Window, error)
	FocusWindow(wid uint32) error
	StartMove(wid uint32) error
	EndSession() error
	BindKeys(binds config.Keybinds) error
	// GrabKeyboard routes every key event to owner until UngrabKeyboard.
	GrabKeyboard(owner uint32) error
	UngrabKeyboard()
}

// Launcher starts user commands without waiting for them.
type Launcher interface {
	Launch(command string, inTerminal bool) error
}

// Options configures a Dispatcher. Display, Launcher and Config are
// required.
type Options struct {
	Config   *config.Config
	Display  Display
	Launcher Launcher
	Menus    panel.MenuOpener
	Mixer    mixer.Mixer
	Icons    *gfx.Icons

	// Desktop is the launcher icon list shown on the wallpaper.
	Desktop []config.DesktopEntry
	// Wallpaper returns the current wallpaper image path.
	Wallpaper       func() string
	PanelBackground image.Image

	PIDFile *pidfile.File
	// Bins lists the executables offered by the runner. It is called each
	// time the runner opens.
	Bins func() []string
	Reap func() (int, error)

	Logger *slog.Logger
	Now    func() time.Time
	Sleep  func(time.Duration)
}

// Session is the state shared by the message handlers.
type Session struct {
	Directory windows.Directory
	Tab       alttab.State
	Width     int
	Height    int

	tabSurface    gfx.Surface
	runner        *runner.Runner
	runnerSurface gfx.Surface
	lastSecond    int64
	started       time.Time
	ending        bool
}

type bindings struct {
	terminal      hotkeys.Combo
	runner        hotkeys.Combo
	appMenu       hotkeys.Combo
	togglePanel   hotkeys.Combo
	altTab        hotkeys.Combo
	altTabReverse hotkeys.Combo
}

func parseBindings(k config.Keybinds) (bindings, error) {
	var b bindings
	for _, e := range []struct {
		spec string
		dst  *hotkeys.Combo
	}{
		{k.Terminal, &b.terminal},
		{k.Runner, &b.runner},
		{k.AppMenu, &b.appMenu},
		{k.TogglePanel, &b.togglePanel},
		{k.AltTab, &b.altTab},
		{k.AltTabReverse, &b.altTabReverse},
	} {
		if e.spec == "" {
			continue
		}
		c, err := hotkeys.Parse(e.spec)
		if err != nil {
			return bindings{}, err
		}
		*e.dst = c
	}
	return b, nil
}

// Dispatcher routes messages to the panel, the wallpaper, the alt-tab
// switcher and the runner. All of its methods run on the loop goroutine.
type Dispatcher struct {
	cfg      *config.Config
	display  Display
	launcher Launcher
	menus    panel.MenuOpener
	mixer    mixer.Mixer
	icons    *gfx.Icons
	desktop  []config.DesktopEntry
	source   func() string
	panelBg  image.Image
	pidFile  *pidfile.File
	bins     func() []string
	reap     func() (int, error)
	logger   *slog.Logger
	now      func() time.Time
	sleep    func(time.Duration)

	binds     bindings
	panel     *panel.Panel
	wallpaper *wallpaper.Wallpaper
	appMenu   *widget.AppMenu
	volume    *widget.Volume
	session   Session
}

// New creates a dispatcher. Nothing is shown until Start.
func New(opts Options) (*Dispatcher, error) {
	if opts.Config == nil || opts.Display == nil || opts.Launcher == nil {
		return nil, fmt.Errorf("shell: config, display and launcher are required")
	}
	binds, err := parseBindings(opts.Config.Keybinds)
	if err != nil {
		return nil, fmt.Errorf("keybinds: %w", err)
	}
	d := &Dispatcher{
		cfg:      opts.Config,
		display:  opts.Display,
		launcher: opts.Launcher,
		menus:    opts.Menus,
		mixer:    opts.Mixer,
		icons:    opts.Icons,
		desktop:  opts.Desktop,
		source:   opts.Wallpaper,
		panelBg:  opts.PanelBackground,
		pidFile:  opts.PIDFile,
		bins:     opts.Bins,
		reap:     opts.Reap,
		logger:   opts.Logger,
		now:      opts.Now,
		sleep:    opts.Sleep,
		binds:    binds,
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.mixer == nil {
		d.mixer = &mixer.Memory{}
	}
	if d.icons == nil {
		d.icons = gfx.NewIcons(opts.Config.IconDirs, d.logger)
	}
	if d.bins == nil {
		d.bins = func() []string { return runner.ScanPath(os.Getenv("PATH")) }
	}
	if d.reap == nil {
		d.reap = func() (int, error) { return 0, nil }
	}
	d.session.Tab.Reset()
	return d, nil
}

// Session returns the current session state.
func (d *Dispatcher) Session() *Session { return &d.session }

// Panel returns the panel controller once started.
func (d *Dispatcher) Panel() *panel.Panel { return d.panel }

// Wallpaper returns the desktop controller once started.
func (d *Dispatcher) Wallpaper() *wallpaper.Wallpaper { return d.wallpaper }

// Start creates the desktop and the panel, registers the global keybinds,
// builds the window lists and writes the PID file.
func (d *Dispatcher) Start() error {
	w, h := d.display.Screen()
	d.session.Width, d.session.Height = w, h
	d.session.started = d.now()

	wallSurface, err := d.display.NewSurface(gfx.KindDesktop, gfx.Rect{Width: w, Height: h})
	if err != nil {
		return fmt.Errorf("failed to create desktop surface: %w", err)
	}
	d.wallpaper = wallpaper.New(wallSurface, d.desktop, wallpaper.Options{
		Source:   d.source,
		Icons:    d.icons,
		Launcher: d,
		Logger:   d.logger.With("component", "wallpaper"),
		Now:      d.now,
	})
	d.wallpaper.Lower()
	d.wallpaper.Draw(nil)

	height := d.cfg.Panel.Height
	if height <= 0 {
		height = panel.DefaultHeight
	}
	panelSurface, err := d.display.NewSurface(gfx.KindPanel, gfx.Rect{Width: w, Height: height})
	if err != nil {
		d.wallpaper.Close()
		return fmt.Errorf("failed to create panel surface: %w", err)
	}

	d.appMenu = widget.NewAppMenu(d, MenuItems(d.cfg.Applications))
	d.volume = widget.NewVolume(d.mixer, d.logger.With("component", "volume"))
	widgets := []widget.Widget{
		d.appMenu,
		widget.NewWindowList(d, func() []windows.Window { return d.session.Directory.Sorted }),
		d.volume,
		widget.NewDate(),
		widget.NewClock(),
		widget.NewLogout(d),
	}
	d.panel, err = panel.New(panelSurface, widgets, panel.Options{
		Height:     height,
		Background: d.panelBg,
		SlideDelay: d.cfg.Panel.SlideStepDelay,
		Icons:      d.icons,
		Menus:      d.menus,
		Logger:     d.logger.With("component", "panel"),
		Now:        d.now,
		Sleep:      d.sleep,
	})
	if err != nil {
		panelSurface.Close()
		d.wallpaper.Close()
		return err
	}
	d.panel.Raise()

	d.bindKeys()
	d.refreshWindows()

	if d.pidFile != nil {
		if err := d.pidFile.Write(os.Getpid()); err != nil {
			return fmt.Errorf("failed to write pid file: %w", err)
		}
	}
	d.logger.Info("shell started", "width", w, "height", h, "icons", len(d.desktop))
	return nil
}

func (d *Dispatcher) bindKeys() {
	if err := d.display.BindKeys(d.cfg.Keybinds); err != nil {
		d.logger.Warn("failed to register keybinds", "err", err)
	}
}

func (d *Dispatcher) refreshWindows() {
	list, err := d.display.Windows()
	if err != nil {
		d.logger.Warn("failed to list windows", "err", err)
		return
	}
	d.session.Directory = windows.NewDirectory(list)
	if d.session.Tab.Tabbing() {
		d.drawTab()
	}
	d.panel.Draw()
}

// MenuItems converts configured application entries into a menu tree.
func MenuItems(entries []config.AppEntry) []menu.MenuItem {
	items := make([]menu.MenuItem, 0, len(entries))
	for _, e := range entries {
		item := menu.MenuItem{Label: e.Label, Icon: e.Icon}
		switch {
		case e.Divider:
			item = menu.MenuItem{IsDivider: true}
		case e.Logout:
			item.Action = widget.ActionLogout
		case len(e.Submenu) > 0:
			item.Submenu = MenuItems(e.Submenu)
		default:
			item.Action = widget.ExecAction(e.Command)
		}
		items = append(items, item)
	}
	return items
}

package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// PanelConfig controls the top panel.
type PanelConfig struct {
	Height int `yaml:"height"`
	// Background is an optional image tiled behind the widgets.
	Background     string        `yaml:"background"`
	SlideStepDelay time.Duration `yaml:"slide_step_delay"`
}

// Keybinds holds the key sequence for each global shortcut, written the way
// xgbutil's keybind package parses them ("Control-Mod1-t").
type Keybinds struct {
	Terminal      string `yaml:"terminal"`
	Runner        string `yaml:"runner"`
	AppMenu       string `yaml:"app_menu"`
	TogglePanel   string `yaml:"toggle_panel"`
	AltTab        string `yaml:"alt_tab"`
	AltTabReverse string `yaml:"alt_tab_reverse"`
	// AltRelease is bound without grabbing so tabbing can finish on Alt up.
	AltRelease string `yaml:"alt_release"`
}

// Config is the shell configuration.
type Config struct {
	LogLevel     string        `yaml:"log_level"`
	Terminal     string        `yaml:"terminal"`
	Shell        string        `yaml:"shell"`
	MenuBackend  string        `yaml:"menu_backend"`
	Mixer        string        `yaml:"mixer"`
	MixerControl string        `yaml:"mixer_control"`
	TickInterval time.Duration `yaml:"tick_interval"`

	Panel    PanelConfig `yaml:"panel"`
	IconDirs []string    `yaml:"icon_dirs"`

	DesktopFile       string `yaml:"desktop_file"`
	DesktopFallback   string `yaml:"desktop_fallback"`
	WallpaperConf     string `yaml:"wallpaper_conf"`
	WallpaperFallback string `yaml:"wallpaper_fallback"`

	// PIDFile defaults to deskbar.pid in the runtime directory when empty.
	PIDFile string `yaml:"pid_file"`

	Keybinds     Keybinds   `yaml:"keybinds"`
	Applications []AppEntry `yaml:"applications"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "info",
		Terminal:     "x-terminal-emulator",
		Shell:        "/bin/sh",
		MenuBackend:  "auto",
		Mixer:        "amixer",
		MixerControl: "Master",
		TickInterval: 50 * time.Millisecond,
		Panel: PanelConfig{
			Height:         28,
			SlideStepDelay: 10 * time.Millisecond,
		},
		DesktopFile:       "~/.desktop",
		DesktopFallback:   "/etc/default.desktop",
		WallpaperConf:     "~/.desktop.conf",
		WallpaperFallback: "/usr/share/wallpapers/default",
		Keybinds: Keybinds{
			Terminal:      "Control-Mod1-t",
			Runner:        "Mod1-F2",
			AppMenu:       "Mod1-F1",
			TogglePanel:   "Control-F11",
			AltTab:        "Mod1-Tab",
			AltTabReverse: "Mod1-Shift-Tab",
			AltRelease:    "Alt_L",
		},
		Applications: DefaultApplications(),
	}
}

// DefaultApplications is the applications menu used when none is configured.
func DefaultApplications() []AppEntry {
	return []AppEntry{
		{Label: "Accessories", Submenu: []AppEntry{
			{Label: "Calculator", Icon: "accessories-calculator", Command: "gnome-calculator"},
			{Label: "File Browser", Icon: "system-file-manager", Command: "xdg-open ~"},
			{Label: "Terminal", Icon: "utilities-terminal", Command: "x-terminal-emulator"},
			{Label: "Text Editor", Icon: "accessories-text-editor", Command: "x-terminal-emulator -e vi"},
		}},
		{Label: "Graphics", Submenu: []AppEntry{
			{Label: "Image Viewer", Icon: "image-viewer", Command: "xdg-open ~/Pictures"},
		}},
		{Label: "Settings", Submenu: []AppEntry{
			{Label: "Reload Wallpaper", Icon: "preferences-desktop-wallpaper", Command: "deskbar reload-wallpaper"},
		}},
		{Divider: true},
		{Label: "Help", Icon: "help-browser", Command: "xdg-open man:deskbar"},
		{Label: "Log Out", Icon: "system-log-out", Logout: true},
	}
}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the configuration for values the shell cannot run with.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: %s", strings.Join(validLogLevels, ", "))}
	}
	if strings.TrimSpace(c.Terminal) == "" {
		return &ValidationError{Path: "terminal", Err: fmt.Errorf("terminal is required")}
	}
	if strings.TrimSpace(c.Shell) == "" {
		return &ValidationError{Path: "shell", Err: fmt.Errorf("shell is required")}
	}
	switch c.MenuBackend {
	case "auto", "rofi", "fuzzel", "dmenu", "wofi":
	default:
		return &ValidationError{Path: "menu_backend", Err: fmt.Errorf("menu_backend must be one of: auto, rofi, fuzzel, dmenu, wofi")}
	}
	switch c.Mixer {
	case "amixer", "none":
	default:
		return &ValidationError{Path: "mixer", Err: fmt.Errorf("mixer must be one of: amixer, none")}
	}
	if c.TickInterval <= 0 {
		return &ValidationError{Path: "tick_interval", Err: fmt.Errorf("tick_interval must be > 0")}
	}
	if c.Panel.Height <= 0 {
		return &ValidationError{Path: "panel.height", Err: fmt.Errorf("height must be > 0")}
	}
	if c.Panel.SlideStepDelay < 0 {
		return &ValidationError{Path: "panel.slide_step_delay", Err: fmt.Errorf("slide_step_delay must be >= 0")}
	}
	for _, bind := range []struct{ path, value string }{
		{"keybinds.terminal", c.Keybinds.Terminal},
		{"keybinds.runner", c.Keybinds.Runner},
		{"keybinds.app_menu", c.Keybinds.AppMenu},
		{"keybinds.toggle_panel", c.Keybinds.TogglePanel},
		{"keybinds.alt_tab", c.Keybinds.AltTab},
		{"keybinds.alt_tab_reverse", c.Keybinds.AltTabReverse},
		{"keybinds.alt_release", c.Keybinds.AltRelease},
	} {
		if strings.TrimSpace(bind.value) == "" {
			return &ValidationError{Path: bind.path, Err: fmt.Errorf("key sequence must not be empty")}
		}
	}
	if err := validateEntries(c.Applications, "applications"); err != nil {
		return err
	}
	return nil
}

func validateEntries(entries []AppEntry, path string) error {
	for i, e := range entries {
		at := fmt.Sprintf("%s[%d]", path, i)
		if e.Divider {
			continue
		}
		if strings.TrimSpace(e.Label) == "" {
			return &ValidationError{Path: path, Err: fmt.Errorf("%s: label is required", at)}
		}
		actions := 0
		if e.Command != "" {
			actions++
		}
		if e.Logout {
			actions++
		}
		if len(e.Submenu) > 0 {
			actions++
		}
		if actions != 1 {
			return &ValidationError{Path: path, Err: fmt.Errorf("%s (%s): exactly one of command, logout or submenu is required", at, e.Label)}
		}
		if err := validateEntries(e.Submenu, path); err != nil {
			return err
		}
	}
	return nil
}

// ValidationError ties a validation failure to a YAML key path.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

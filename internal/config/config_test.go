package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Panel.Height != 28 {
		t.Fatalf("expected panel height 28, got %d", cfg.Panel.Height)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" {
		t.Fatalf("expected no file, got %q", res.File)
	}
	if res.Config.Terminal != "x-terminal-emulator" {
		t.Fatalf("unexpected terminal %q", res.Config.Terminal)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "# empty\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Config.Applications) != len(DefaultApplications()) {
		t.Fatalf("expected default applications")
	}
}

func TestLoadFromPath_Overlay(t *testing.T) {
	data := strings.Join([]string{
		"terminal: kitty",
		"mixer: none",
		"tick_interval: 20ms",
		"panel:",
		"  slide_step_delay: 0s",
		"keybinds:",
		"  runner: Mod4-r",
		"",
	}, "\n")
	path := writeFile(t, t.TempDir(), "config.yaml", data)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Terminal != "kitty" || cfg.Mixer != "none" {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
	if cfg.TickInterval != 20*time.Millisecond {
		t.Fatalf("tick_interval = %v", cfg.TickInterval)
	}
	if cfg.Panel.Height != 28 || cfg.Panel.SlideStepDelay != 0 {
		t.Fatalf("panel = %+v", cfg.Panel)
	}
	if cfg.Keybinds.Runner != "Mod4-r" || cfg.Keybinds.AltTab != "Mod1-Tab" {
		t.Fatalf("keybinds = %+v", cfg.Keybinds)
	}
	if src, ok := res.Sources["keybinds.runner"]; !ok || src.Line != 7 {
		t.Fatalf("expected source for keybinds.runner at line 7, got %+v", src)
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "panel_height: 30\n")
	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected unknown key to be rejected")
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "log_level: info\nmenu_backend: zenity\n")
	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "menu_backend" || verr.Source.Line != 2 {
		t.Fatalf("unexpected error %+v", verr)
	}
	if !strings.Contains(err.Error(), ":2:") {
		t.Fatalf("error should carry the line: %v", err)
	}
}

func TestLoadFromPath_Applications(t *testing.T) {
	data := strings.Join([]string{
		"applications:",
		"  - label: Terminal",
		"    icon: utilities-terminal",
		"    command: kitty",
		"  - \"---\"",
		"  - label: Games",
		"    submenu:",
		"      - label: Chess",
		"        command: xboard",
		"  - label: Leave",
		"    logout: true",
		"",
	}, "\n")
	path := writeFile(t, t.TempDir(), "config.yaml", data)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	apps := res.Config.Applications
	if len(apps) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(apps))
	}
	if !apps[1].Divider {
		t.Fatalf("expected divider, got %+v", apps[1])
	}
	if len(apps[2].Submenu) != 1 || apps[2].Submenu[0].Command != "xboard" {
		t.Fatalf("submenu = %+v", apps[2].Submenu)
	}
	if !apps[3].Logout {
		t.Fatalf("expected logout entry")
	}
}

func TestLoadFromPath_ApplicationNeedsOneAction(t *testing.T) {
	data := "applications:\n  - label: Both\n    command: xterm\n    logout: true\n"
	path := writeFile(t, t.TempDir(), "config.yaml", data)
	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected error for entry with two actions")
	}
}

func TestLoadFromPath_ApplicationUnknownKey(t *testing.T) {
	data := "applications:\n  - label: X\n    cmd: xterm\n"
	path := writeFile(t, t.TempDir(), "config.yaml", data)
	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected unknown application key to be rejected")
	}
}

func TestParseDesktopList(t *testing.T) {
	input := "# icons\napplications-terminal,x-terminal-emulator,Terminal\n\nfolder,xdg-open ~,Files, and more\n"
	entries, err := ParseDesktopList(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].Command != "xdg-open ~" || entries[1].Label != "Files, and more" {
		t.Fatalf("unexpected entry %+v", entries[1])
	}
}

func TestParseDesktopList_Malformed(t *testing.T) {
	_, err := ParseDesktopList(strings.NewReader("ok,cmd,Label\nbroken,line\n"))
	if !errors.Is(err, ErrMalformedDesktopLine) {
		t.Fatalf("expected ErrMalformedDesktopLine, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("error should name the line: %v", err)
	}
}

func TestLoadDesktopList_Fallback(t *testing.T) {
	dir := t.TempDir()
	fallback := writeFile(t, dir, "default.desktop", "folder,xdg-open ~,Home\n")

	entries, used, err := LoadDesktopList(filepath.Join(dir, "missing"), fallback)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if used != fallback || len(entries) != 1 {
		t.Fatalf("used %q entries %+v", used, entries)
	}

	primary := writeFile(t, dir, "user.desktop", "a,b,c\nd,e,f\n")
	entries, used, err = LoadDesktopList(primary, fallback)
	if err != nil || used != primary || len(entries) != 2 {
		t.Fatalf("primary not preferred: %q %+v %v", used, entries, err)
	}
}

func TestWallpaperPath(t *testing.T) {
	dir := t.TempDir()
	if got := WallpaperPath(filepath.Join(dir, "missing.conf"), "/fallback"); got != "/fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	conf := writeFile(t, dir, "desktop.conf", "# wallpaper\nwallpaper=/srv/walls/sea.png\n")
	if got := WallpaperPath(conf, "/fallback"); got != "/srv/walls/sea.png" {
		t.Fatalf("got %q", got)
	}
	empty := writeFile(t, dir, "other.conf", "theme=dark\n")
	if got := WallpaperPath(empty, "/fallback"); got != "/fallback" {
		t.Fatalf("expected fallback for missing key, got %q", got)
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	if got := ExpandHome("~/.desktop"); got != "/home/tester/.desktop" {
		t.Fatalf("got %q", got)
	}
	if got := ExpandHome("/etc/x"); got != "/etc/x" {
		t.Fatalf("got %q", got)
	}
}

package hotkeys

import (
	"testing"

	"github.com/1broseidon/deskbar/internal/config"
	"github.com/1broseidon/deskbar/internal/event"
)

func TestParse(t *testing.T) {
	tests := []struct {
		spec string
		want Combo
	}{
		{spec: "Control-Mod1-t", want: Combo{Keycode: 't', Modifiers: event.ModLeftCtrl | event.ModLeftAlt}},
		{spec: "Mod1-F2", want: Combo{Keycode: event.KeyF2, Modifiers: event.ModLeftAlt}},
		{spec: "Control-F11", want: Combo{Keycode: event.KeyF11, Modifiers: event.ModLeftCtrl}},
		{spec: "Mod1-Shift-Tab", want: Combo{Keycode: event.KeyTab, Modifiers: event.ModLeftAlt | event.ModLeftShift}},
		{spec: "Alt_L", want: Combo{Keycode: event.KeyLeftAlt}},
		{spec: "super-T", want: Combo{Keycode: 't', Modifiers: event.ModLeftSuper}},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := Parse(tt.spec)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			tt.want.Spec = tt.spec
			if got != tt.want {
				t.Fatalf("Parse = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestKeycode_Printable(t *testing.T) {
	tests := []struct {
		name string
		want rune
	}{
		{"a", 'a'},
		{"1", '1'},
		{"space", ' '},
		{"minus", '-'},
		{"period", '.'},
		{"slash", '/'},
		{"underscore", '_'},
		{"equal", '='},
		{"asciitilde", '~'},
		{"KP_Subtract", '-'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := Keycode(tt.name)
			if !ok || code != uint32(tt.want) {
				t.Fatalf("Keycode(%q) = %d, %v; want %d", tt.name, code, ok, tt.want)
			}
			r, ok := Printable(tt.name)
			if !ok || r != tt.want {
				t.Fatalf("Printable(%q) = %q, %v", tt.name, r, ok)
			}
		})
	}

	for _, name := range []string{"Return", "Tab", "F2", "Alt_L", "Caps_Lock"} {
		if r, ok := Printable(name); ok {
			t.Fatalf("Printable(%q) = %q, want none", name, r)
		}
	}
	if c, err := Parse("Control-minus"); err != nil || c.Keycode != '-' {
		t.Fatalf("Parse(Control-minus) = %+v, %v", c, err)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, spec := range []string{"", "Mod1-", "Hyper-t", "Mod1-NoSuchKey"} {
		if _, err := Parse(spec); err == nil {
			t.Fatalf("Parse(%q) should fail", spec)
		}
	}
}

func TestParse_DefaultKeybinds(t *testing.T) {
	k := config.DefaultConfig().Keybinds
	for _, spec := range []string{k.Terminal, k.Runner, k.AppMenu, k.TogglePanel, k.AltTab, k.AltTabReverse, k.AltRelease} {
		if _, err := Parse(spec); err != nil {
			t.Fatalf("default keybind %q: %v", spec, err)
		}
	}
}

func TestMatches(t *testing.T) {
	terminal, _ := Parse("Control-Mod1-t")
	altTab, _ := Parse("Mod1-Tab")

	down := func(code, mods uint32) event.Key {
		return event.Key{Action: event.KeyDown, Keycode: code, Modifiers: mods}
	}
	if !terminal.Matches(down('t', event.ModLeftCtrl|event.ModLeftAlt)) {
		t.Fatalf("Ctrl+Alt+t should match")
	}
	if !terminal.Matches(down('T', event.ModLeftCtrl|event.ModLeftAlt|event.ModLeftShift)) {
		t.Fatalf("upper case with extra shift should match")
	}
	if terminal.Matches(down('t', event.ModLeftAlt)) {
		t.Fatalf("missing ctrl should not match")
	}
	if !altTab.Matches(down(event.KeyTab, event.ModLeftAlt|event.ModLeftShift)) {
		t.Fatalf("Alt+Shift+Tab should match the Alt+Tab combo")
	}
}

func TestModifierKey(t *testing.T) {
	if ModifierKey(event.KeyLeftAlt) != event.ModLeftAlt {
		t.Fatalf("Alt_L should control the left alt bit")
	}
	if ModifierKey('a') != 0 {
		t.Fatalf("letters are not modifiers")
	}
}

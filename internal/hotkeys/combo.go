package hotkeys

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/1broseidon/deskbar/internal/event"
)

// Combo is a parsed key sequence such as "Control-Mod1-t", expressed in
// shell keycodes and modifier bits.
type Combo struct {
	Spec      string
	Keycode   uint32
	Modifiers uint32
}

var modifierNames = map[string]uint32{
	"control": event.ModLeftCtrl,
	"ctrl":    event.ModLeftCtrl,
	"shift":   event.ModLeftShift,
	"mod1":    event.ModLeftAlt,
	"alt":     event.ModLeftAlt,
	"mod4":    event.ModLeftSuper,
	"super":   event.ModLeftSuper,
}

// keyNames maps X keysym names to shell keycodes.
var keyNames = map[string]uint32{
	"Tab":          event.KeyTab,
	"ISO_Left_Tab": event.KeyTab,
	"Return":       event.KeyEnter,
	"KP_Enter":     event.KeyEnter,
	"BackSpace":    event.KeyBackspace,
	"Escape":       event.KeyEscape,
	"Delete":       event.KeyDelete,
	"Control_L":    event.KeyLeftCtrl,
	"Control_R":    event.KeyRightCtrl,
	"Shift_L":      event.KeyLeftShift,
	"Shift_R":      event.KeyRightShift,
	"Alt_L":        event.KeyLeftAlt,
	"Alt_R":        event.KeyRightAlt,
	"Super_L":      event.KeyLeftSuper,
	"Super_R":      event.KeyRightSuper,
	"Up":           event.KeyArrowUp,
	"Down":         event.KeyArrowDown,
	"Left":         event.KeyArrowLeft,
	"Right":        event.KeyArrowRight,
}

// printableNames maps the keysym names X uses for punctuation to their
// characters.
var printableNames = map[string]rune{
	"space":        ' ',
	"exclam":       '!',
	"quotedbl":     '"',
	"numbersign":   '#',
	"dollar":       '$',
	"percent":      '%',
	"ampersand":    '&',
	"apostrophe":   '\'',
	"parenleft":    '(',
	"parenright":   ')',
	"asterisk":     '*',
	"plus":         '+',
	"comma":        ',',
	"minus":        '-',
	"period":       '.',
	"slash":        '/',
	"colon":        ':',
	"semicolon":    ';',
	"less":         '<',
	"equal":        '=',
	"greater":      '>',
	"question":     '?',
	"at":           '@',
	"bracketleft":  '[',
	"backslash":    '\\',
	"bracketright": ']',
	"asciicircum":  '^',
	"underscore":   '_',
	"grave":        '`',
	"braceleft":    '{',
	"bar":          '|',
	"braceright":   '}',
	"asciitilde":   '~',
	"KP_Add":       '+',
	"KP_Subtract":  '-',
	"KP_Multiply":  '*',
	"KP_Divide":    '/',
	"KP_Decimal":   '.',
}

func init() {
	for i := 0; i < 12; i++ {
		keyNames[fmt.Sprintf("F%d", i+1)] = event.KeyF1 + uint32(i)
	}
	for i := 0; i < 10; i++ {
		printableNames[fmt.Sprintf("KP_%d", i)] = rune('0' + i)
	}
}

// Printable returns the character a keysym name types, if any.
func Printable(name string) (rune, bool) {
	if r, ok := printableNames[name]; ok {
		return r, true
	}
	if r, size := utf8.DecodeRuneInString(name); size == len(name) && unicode.IsPrint(r) {
		return r, true
	}
	return 0, false
}

// Keycode translates an X keysym name into a shell keycode. Printable
// keys map to their code point. Unknown names report false.
func Keycode(name string) (uint32, bool) {
	if code, ok := keyNames[name]; ok {
		return code, true
	}
	if r, ok := Printable(name); ok {
		return uint32(r), true
	}
	return 0, false
}

// ModifierKey returns the modifier bit a modifier keycode controls, or 0.
func ModifierKey(keycode uint32) uint32 {
	switch keycode {
	case event.KeyLeftCtrl:
		return event.ModLeftCtrl
	case event.KeyLeftShift:
		return event.ModLeftShift
	case event.KeyLeftAlt:
		return event.ModLeftAlt
	case event.KeyLeftSuper:
		return event.ModLeftSuper
	case event.KeyRightCtrl:
		return event.ModRightCtrl
	case event.KeyRightShift:
		return event.ModRightShift
	case event.KeyRightAlt:
		return event.ModRightAlt
	case event.KeyRightSuper:
		return event.ModRightSuper
	}
	return 0
}

// Parse reads an xgbutil-style key sequence: modifiers and a key name
// joined by '-'.
func Parse(spec string) (Combo, error) {
	parts := strings.Split(spec, "-")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return Combo{}, fmt.Errorf("invalid key sequence %q", spec)
	}
	c := Combo{Spec: spec}
	for _, p := range parts[:len(parts)-1] {
		mod, ok := modifierNames[strings.ToLower(p)]
		if !ok {
			return Combo{}, fmt.Errorf("invalid key sequence %q: unknown modifier %q", spec, p)
		}
		c.Modifiers |= mod
	}
	key := parts[len(parts)-1]
	code, ok := Keycode(key)
	if !ok {
		return Combo{}, fmt.Errorf("invalid key sequence %q: unknown key %q", spec, key)
	}
	if r := rune(code); r < utf8.RuneSelf && r >= 'A' && r <= 'Z' {
		code = uint32(r - 'A' + 'a')
	}
	c.Keycode = code
	return c, nil
}

// Matches reports whether k is this combination: the same key with at
// least the combination's modifiers held. Letters match in either case.
func (c Combo) Matches(k event.Key) bool {
	code := k.Keycode
	if code >= 'A' && code <= 'Z' {
		code = code - 'A' + 'a'
	}
	return code == c.Keycode && k.Has(c.Modifiers)
}

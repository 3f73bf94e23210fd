// Package menu shows the shell's popup menus through an external dmenu-style
// picker (rofi, fuzzel, wofi or dmenu).
package menu

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user dismisses a menu without choosing.
var ErrCancelled = errors.New("menu cancelled")

// Item is one row handed to a picker.
type Item struct {
	Label     string
	Action    string
	Icon      string
	IsDivider bool
	IsHeader  bool
}

// Anchor positions a menu relative to the screen's top-left corner.
type Anchor struct {
	X, Y int
}

// Capabilities describes what a picker supports.
type Capabilities struct {
	Icons         bool
	Markup        bool
	NonSelectable bool
	IndexOutput   bool
	Positioning   bool
}

// Backend shows a list of items and returns the chosen one.
type Backend interface {
	Show(prompt string, items []Item, at Anchor) (Item, error)
	Capabilities() Capabilities
}

var pickers = []string{"rofi", "fuzzel", "wofi", "dmenu"}

// DetectBackend returns the first picker found in PATH.
func DetectBackend() (string, error) {
	for _, name := range pickers {
		if _, err := exec.LookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no menu backend found in PATH (looked for: %s)", strings.Join(pickers, ", "))
}

// NewBackend creates a picker by name. "auto" and "" detect one.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := DetectBackend()
		if err != nil {
			return nil, err
		}
		name = detected
	}

	var b *picker
	switch name {
	case "rofi":
		b = newRofi()
	case "fuzzel":
		b = newFuzzel()
	case "wofi":
		b = newWofi()
	case "dmenu":
		b = newDmenu()
	default:
		return nil, fmt.Errorf("unknown menu backend: %q (expected: auto, %s)", name, strings.Join(pickers, ", "))
	}
	if _, err := exec.LookPath(b.command); err != nil {
		return nil, fmt.Errorf("menu backend %q not found in PATH", b.command)
	}
	return b, nil
}

// Package windows holds the shell's read-only view of the application
// windows reported by the display server.
package windows

import (
	"sort"
	"strings"
)

// FlagActive marks the window that currently has focus.
const FlagActive uint32 = 1 << 0

// Window is one advertised application window.
type Window struct {
	ID    uint32
	Name  string
	Icon  string // icon hint, usually the WM_CLASS instance
	Flags uint32
}

// Active reports whether the window carries the active flag.
func (w Window) Active() bool { return w.Flags&FlagActive != 0 }

// Directory holds both derived views of the window set. It is rebuilt
// wholesale on every change notification.
type Directory struct {
	// ZOrder is bottom-to-top stacking order, used for alt-tab traversal.
	ZOrder []Window
	// Sorted is the panel display order: by name, then by id.
	Sorted []Window
}

// NewDirectory builds both views from a stacking-ordered list.
func NewDirectory(zorder []Window) Directory {
	z := make([]Window, len(zorder))
	copy(z, zorder)
	return Directory{ZOrder: z, Sorted: SortByName(z)}
}

// Len returns the number of windows.
func (d Directory) Len() int { return len(d.ZOrder) }

// Find returns the window with the given id.
func (d Directory) Find(id uint32) (Window, bool) {
	for _, w := range d.ZOrder {
		if w.ID == id {
			return w, true
		}
	}
	return Window{}, false
}

// SortByName returns a copy of list ordered case-insensitively by name,
// breaking ties by id so the order is stable across rebuilds.
func SortByName(list []Window) []Window {
	out := make([]Window, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out
}

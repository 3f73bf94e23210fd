// Package runner implements the Alt+F2 run dialog: a one-line entry that
// completes against the executables on PATH.
package runner

import (
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/1broseidon/deskbar/internal/event"
	"github.com/1broseidon/deskbar/internal/gfx"
)

// Overlay geometry.
const (
	Width    = 400
	Height   = 115
	iconSize = 32
)

var (
	backgroundColor = color.NRGBA{A: 0xb3}
	fieldColor      = gfx.ARGB(0xFF1E2124)
	textColor       = gfx.ARGB(0xFFFFFFFF)
	completeColor   = gfx.ARGB(0xFF8A8F98)
)

// Action is what the shell should do after a key.
type Action int

const (
	None Action = iota
	Redraw
	Close
	Launch
)

// Result is the outcome of HandleKey. Command and Terminal are set for
// Launch.
type Result struct {
	Action   Action
	Command  string
	Terminal bool
}

// Runner is the dialog state: the typed text, the suggested suffix, and
// whether the text names a known executable.
type Runner struct {
	Data      string
	Complete  string
	Completed bool

	bins []string
}

// New creates a runner completing against bins.
func New(bins []string) *Runner {
	sorted := slices.Clone(bins)
	slices.Sort(sorted)
	return &Runner{bins: slices.Compact(sorted)}
}

// ScanPath lists the executable files in every directory of a PATH-style
// list. Unreadable directories are skipped.
func ScanPath(path string) []string {
	var bins []string
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			info, err := e.Info()
			if err != nil {
				continue
			}
			if e.Type()&os.ModeSymlink != 0 {
				if info, err = os.Stat(filepath.Join(dir, e.Name())); err != nil {
					continue
				}
			}
			if info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0 {
				bins = append(bins, e.Name())
			}
		}
	}
	slices.Sort(bins)
	return slices.Compact(bins)
}

// Bins returns the sorted executable names.
func (r *Runner) Bins() []string { return r.bins }

// TryComplete sets Complete to the rest of the first executable, in sort
// order, that starts with Data. Completed reports whether one was found.
func (r *Runner) TryComplete() {
	r.Complete = ""
	r.Completed = false
	if r.Data == "" {
		return
	}
	i, _ := slices.BinarySearch(r.bins, r.Data)
	if i < len(r.bins) && strings.HasPrefix(r.bins[i], r.Data) {
		r.Complete = r.bins[i][len(r.Data):]
		r.Completed = true
	}
}

// Program is the first word of the command Enter would run.
func (r *Runner) Program() string {
	fields := strings.Fields(r.Data + r.Complete)
	if len(fields) == 0 {
		return ""
	}
	return filepath.Base(fields[0])
}

// HandleKey applies a key event. Only key presses do anything.
func (r *Runner) HandleKey(k event.Key) Result {
	if !k.Down() {
		return Result{}
	}
	switch k.Keycode {
	case event.KeyNone:
		return Result{}
	case event.KeyEscape:
		return Result{Action: Close}
	case event.KeyDelete:
		r.Complete = ""
		r.Completed = false
		return Result{Action: Redraw}
	case event.KeyEnter:
		if r.Data == "" {
			return Result{Action: Close}
		}
		return Result{
			Action:   Launch,
			Command:  r.Data + r.Complete,
			Terminal: k.Modifiers&(event.ModLeftShift|event.ModRightShift) != 0,
		}
	case event.KeyBackspace:
		if r.Data != "" {
			_, size := utf8.DecodeLastRuneInString(r.Data)
			r.Data = r.Data[:len(r.Data)-size]
		}
		r.TryComplete()
		return Result{Action: Redraw}
	}
	if k.Rune < ' ' || k.Rune == utf8.RuneError {
		return Result{}
	}
	r.Data += string(k.Rune)
	r.TryComplete()
	return Result{Action: Redraw}
}

// Draw paints the dialog onto the overlay canvas. The completed program's
// icon is shown when icons is not nil.
func (r *Runner) Draw(c *gfx.Canvas, icons *gfx.Icons) {
	c.ResetClip()
	full := gfx.Rect{Width: Width, Height: Height}
	c.Fill(full, color.Transparent)
	c.RoundedRect(full, 10, backgroundColor)

	if r.Completed && icons != nil {
		c.DrawImage(icons.Get(r.Program(), iconSize), Width-20-iconSize, 10, 1)
	}

	title := gfx.Rect{X: 20, Y: 15, Width: Width - 40 - iconSize, Height: 20}
	c.ShadowTextBox(gfx.Face(true, 14), title, "Run Application", textColor, gfx.AlignLeft)

	field := gfx.Rect{X: 20, Y: 50, Width: Width - 40, Height: 30}
	c.RoundedRect(field, 4, fieldColor)

	face := gfx.Face(false, 14)
	x, y := field.X+8, field.Y+7
	c.Text(face, x, y, r.Data, textColor)
	x += gfx.TextWidth(face, r.Data)
	c.Text(face, x, y, r.Complete, completeColor)
	c.Fill(gfx.Rect{X: x, Y: y, Width: 1, Height: 16}, textColor)
}

package menu

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

type pickerKind int

const (
	kindRofi pickerKind = iota
	kindFuzzel
	kindWofi
	kindDmenu
)

// picker drives any of the dmenu-compatible programs over stdin/stdout.
type picker struct {
	command string
	kind    pickerKind
	caps    Capabilities
}

func newRofi() *picker {
	return &picker{command: "rofi", kind: kindRofi, caps: Capabilities{
		Icons: true, Markup: true, NonSelectable: true, IndexOutput: true, Positioning: true,
	}}
}

func newFuzzel() *picker {
	return &picker{command: "fuzzel", kind: kindFuzzel, caps: Capabilities{Icons: true, IndexOutput: true}}
}

func newWofi() *picker {
	return &picker{command: "wofi", kind: kindWofi, caps: Capabilities{Icons: true, Markup: true}}
}

func newDmenu() *picker {
	return &picker{command: "dmenu", kind: kindDmenu}
}

func (p *picker) Capabilities() Capabilities { return p.caps }

func (p *picker) Show(prompt string, items []Item, at Anchor) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("menu: no items to show")
	}
	shown := make([]Item, len(items))
	copy(shown, items)

	cmd := exec.Command(p.command, p.args(prompt, at)...)
	cmd.Stdin = strings.NewReader(p.input(shown))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	selection := strings.TrimSpace(string(out))
	if err != nil {
		if selection == "" && cancelled(err) {
			return Item{}, ErrCancelled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Item{}, fmt.Errorf("%s failed: %s", p.command, msg)
		}
		return Item{}, fmt.Errorf("%s failed: %w", p.command, err)
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}
	return p.parse(selection, shown)
}

func (p *picker) args(prompt string, at Anchor) []string {
	var args []string
	switch p.kind {
	case kindRofi:
		args = []string{"-dmenu", "-i", "-format", "i", "-no-custom", "-markup-rows", "-show-icons"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		// location 1 is the top-left corner; offsets place the menu under
		// the panel element that opened it.
		args = append(args,
			"-location", "1",
			"-xoffset", strconv.Itoa(at.X),
			"-yoffset", strconv.Itoa(at.Y),
		)
	case kindFuzzel:
		args = []string{"--dmenu", "--index"}
		if prompt != "" {
			args = append(args, "--prompt", prompt+" ")
		}
	case kindWofi:
		args = []string{"--dmenu", "--allow-markup", "--allow-images"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
	case kindDmenu:
		args = []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
	}
	return args
}

// input renders one line per item. Pickers that answer with the chosen text
// get duplicate labels numbered so the answer stays unambiguous.
func (p *picker) input(items []Item) string {
	if !p.caps.IndexOutput {
		seen := map[string]int{}
		for i := range items {
			if items[i].IsDivider || items[i].IsHeader {
				continue
			}
			key := cleanLabel(items[i].Label)
			if n := seen[key]; n > 0 {
				items[i].Label = fmt.Sprintf("%s (%d)", key, n+1)
			}
			seen[key]++
		}
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, p.line(item))
	}
	return strings.Join(lines, "\n")
}

func (p *picker) line(item Item) string {
	text := cleanLabel(item.Label)
	if p.caps.Markup {
		text = html.EscapeString(text)
		switch {
		case item.IsHeader:
			text = "<b>" + text + "</b>"
		case item.IsDivider:
			text = "<span foreground='#666666'>" + text + "</span>"
		}
	}
	if p.kind != kindRofi {
		return text
	}

	// rofi row properties: one NUL, then key\x1fvalue pairs joined by \x1f.
	var props []string
	if item.IsHeader || item.IsDivider {
		props = append(props, "nonselectable", "true")
	}
	if item.Icon != "" {
		props = append(props, "icon", cleanField(item.Icon))
	}
	if len(props) == 0 {
		return text
	}
	return text + "\x00" + strings.Join(props, "\x1f")
}

func (p *picker) parse(selection string, items []Item) (Item, error) {
	if p.caps.IndexOutput {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(items) {
				return Item{}, fmt.Errorf("menu: index %d out of range", idx)
			}
			return items[idx], nil
		}
	}
	for _, item := range items {
		if cleanLabel(item.Label) == selection {
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("menu: unknown selection %q", selection)
}

func cleanLabel(label string) string {
	return strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(label))
}

func cleanField(value string) string {
	return strings.TrimSpace(strings.NewReplacer("\x00", " ", "\x1f", " ", "\r", " ", "\n", " ").Replace(value))
}

func cancelled(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	default:
		return false
	}
}

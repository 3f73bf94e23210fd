package menu

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/deskbar/internal/event"
)

type fakeBackend struct {
	responses []func(items []Item) (Item, error)
	prompts   []string
	calls     int
}

func (f *fakeBackend) Show(prompt string, items []Item, _ Anchor) (Item, error) {
	f.prompts = append(f.prompts, prompt)
	if f.calls >= len(f.responses) {
		return Item{}, ErrCancelled
	}
	resp := f.responses[f.calls]
	f.calls++
	return resp(items)
}

func (f *fakeBackend) Capabilities() Capabilities { return Capabilities{} }

func pick(label string) func([]Item) (Item, error) {
	return func(items []Item) (Item, error) {
		for _, it := range items {
			if strings.HasPrefix(it.Label, label) {
				return it, nil
			}
		}
		return Item{}, errors.New("no item " + label)
	}
}

func cancel(items []Item) (Item, error) { return Item{}, ErrCancelled }

func containsArgs(args []string, pair ...string) bool {
	for i := 0; i+len(pair) <= len(args); i++ {
		match := true
		for j := range pair {
			if args[i+j] != pair[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func TestRofiArgs_Anchor(t *testing.T) {
	args := newRofi().args("Applications", Anchor{X: 140, Y: 28})
	if !containsArgs(args, "-format", "i") {
		t.Fatalf("expected index output, got %v", args)
	}
	if !containsArgs(args, "-p", "Applications") {
		t.Fatalf("expected prompt, got %v", args)
	}
	if !containsArgs(args, "-xoffset", "140") || !containsArgs(args, "-yoffset", "28") {
		t.Fatalf("expected anchor offsets, got %v", args)
	}
}

func TestRofiLine_Properties(t *testing.T) {
	p := newRofi()
	got := p.line(Item{Label: "Files & more", Icon: "folder"})
	want := "Files &amp; more\x00icon\x1ffolder"
	if got != want {
		t.Fatalf("line = %q, want %q", got, want)
	}
	div := p.line(Item{Label: "--", IsDivider: true})
	if !strings.Contains(div, "nonselectable\x1ftrue") {
		t.Fatalf("divider should be non-selectable: %q", div)
	}
}

func TestDmenuInput_DisambiguatesDuplicates(t *testing.T) {
	p := newDmenu()
	items := []Item{{Label: "xterm"}, {Label: "xterm"}, {Label: "top"}}
	input := p.input(items)
	if input != "xterm\nxterm (2)\ntop" {
		t.Fatalf("input = %q", input)
	}
	got, err := p.parse("xterm (2)", items)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Label != "xterm (2)" {
		t.Fatalf("parse picked %q", got.Label)
	}
}

func TestIndexParse(t *testing.T) {
	p := newFuzzel()
	items := []Item{{Label: "a", Action: "A"}, {Label: "b", Action: "B"}}
	got, err := p.parse("1", items)
	if err != nil || got.Action != "B" {
		t.Fatalf("parse(1) = %+v, %v", got, err)
	}
	if _, err := p.parse("7", items); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestNewBackend_Unknown(t *testing.T) {
	if _, err := NewBackend("zenity"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestTree_Submenu(t *testing.T) {
	items := []MenuItem{
		{Label: "Terminal", Action: "exec:xterm"},
		{Label: "Games", Submenu: []MenuItem{
			{Label: "Chess", Action: "exec:xboard"},
		}},
	}
	fb := &fakeBackend{responses: []func([]Item) (Item, error){pick("Games"), pick("Chess")}}
	action, err := NewTree(fb, "Applications", items, Anchor{}).Show()
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if action != "exec:xboard" {
		t.Fatalf("action = %q", action)
	}
	if len(fb.prompts) != 2 || fb.prompts[1] != "Games" {
		t.Fatalf("prompts = %v", fb.prompts)
	}
}

func TestTree_BackReturnsToParent(t *testing.T) {
	items := []MenuItem{
		{Label: "Terminal", Action: "exec:xterm"},
		{Label: "Games", Submenu: []MenuItem{{Label: "Chess", Action: "exec:xboard"}}},
	}
	fb := &fakeBackend{responses: []func([]Item) (Item, error){pick("Games"), pick("← Back"), pick("Terminal")}}
	action, err := NewTree(fb, "Applications", items, Anchor{}).Show()
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if action != "exec:xterm" {
		t.Fatalf("action = %q", action)
	}
}

func TestTree_DividerReprompts(t *testing.T) {
	items := []MenuItem{
		{Label: "Terminal", Action: "exec:xterm"},
		{IsDivider: true},
		{Label: "Logout", Action: "logout"},
	}
	fb := &fakeBackend{responses: []func([]Item) (Item, error){pick("────"), pick("Logout")}}
	action, err := NewTree(fb, "Applications", items, Anchor{}).Show()
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if action != "logout" || fb.calls != 2 {
		t.Fatalf("action = %q after %d calls", action, fb.calls)
	}
}

func TestTree_Cancel(t *testing.T) {
	fb := &fakeBackend{responses: []func([]Item) (Item, error){cancel}}
	_, err := NewTree(fb, "Window", []MenuItem{{Label: "Move", Action: "move"}}, Anchor{}).Show()
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestPresenter_PostsResult(t *testing.T) {
	got := make(chan event.MenuClosed, 1)
	post := func(msg event.Message) { got <- msg.(event.MenuClosed) }
	fb := &fakeBackend{responses: []func([]Item) (Item, error){pick("Move")}}
	p := NewPresenter(fb, post)
	id := p.Open("Window", []MenuItem{{Label: "Move", Action: "move"}}, Anchor{X: 10})
	if id == "" {
		t.Fatalf("expected an id")
	}

	select {
	case msg := <-got:
		if msg.ID != id || msg.Action != "move" || msg.Err != nil {
			t.Fatalf("unexpected result %+v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("menu result never posted")
	}
}

package runner

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/1broseidon/deskbar/internal/event"
	"github.com/1broseidon/deskbar/internal/gfx"
)

func press(r rune) event.Key {
	return event.Key{Action: event.KeyDown, Keycode: uint32(r), Rune: r}
}

func typeText(r *Runner, s string) {
	for _, c := range s {
		r.HandleKey(press(c))
	}
}

func TestTryComplete_FirstInSortOrderWins(t *testing.T) {
	r := New([]string{"ls", "ln", "cat"})
	typeText(r, "l")
	if r.Complete != "n" {
		t.Fatalf("Complete = %q, want %q", r.Complete, "n")
	}
	typeText(r, "s")
	if r.Complete != "" || r.Data != "ls" {
		t.Fatalf("Data=%q Complete=%q", r.Data, r.Complete)
	}
}

func TestTryComplete(t *testing.T) {
	bins := []string{"firefox", "find", "fish", "gimp"}
	tests := []struct {
		data string
		want string
	}{
		{data: "", want: ""},
		{data: "f", want: "ind"},
		{data: "fir", want: "efox"},
		{data: "fis", want: "h"},
		{data: "g", want: "imp"},
		{data: "x", want: ""},
		{data: "gimp2", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			r := New(bins)
			r.Data = tt.data
			r.TryComplete()
			if r.Complete != tt.want {
				t.Fatalf("Complete = %q, want %q", r.Complete, tt.want)
			}
		})
	}
}

func TestHandleKey(t *testing.T) {
	r := New([]string{"xterm", "xclock"})
	typeText(r, "xt")
	if r.Complete != "erm" {
		t.Fatalf("Complete = %q", r.Complete)
	}

	if res := r.HandleKey(event.Key{Action: event.KeyDown, Keycode: event.KeyBackspace}); res.Action != Redraw {
		t.Fatalf("backspace = %+v", res)
	}
	if r.Data != "x" || r.Complete != "clock" {
		t.Fatalf("after backspace Data=%q Complete=%q", r.Data, r.Complete)
	}

	r.HandleKey(event.Key{Action: event.KeyDown, Keycode: event.KeyDelete})
	if r.Data != "x" || r.Complete != "" {
		t.Fatalf("delete should only clear the completion: Data=%q Complete=%q", r.Data, r.Complete)
	}

	if res := r.HandleKey(event.Key{Action: event.KeyUp, Keycode: 'a', Rune: 'a'}); res.Action != None || r.Data != "x" {
		t.Fatalf("key release should be ignored")
	}
	if res := r.HandleKey(event.Key{Action: event.KeyDown}); res.Action != None {
		t.Fatalf("empty key should be ignored")
	}
}

func TestHandleKey_Enter(t *testing.T) {
	r := New([]string{"htop"})
	typeText(r, "ht")
	res := r.HandleKey(event.Key{Action: event.KeyDown, Keycode: event.KeyEnter})
	if res != (Result{Action: Launch, Command: "htop"}) {
		t.Fatalf("enter = %+v", res)
	}

	res = r.HandleKey(event.Key{Action: event.KeyDown, Keycode: event.KeyEnter, Modifiers: event.ModLeftShift})
	if res != (Result{Action: Launch, Command: "htop", Terminal: true}) {
		t.Fatalf("shift+enter = %+v", res)
	}

	empty := New(nil)
	if res := empty.HandleKey(event.Key{Action: event.KeyDown, Keycode: event.KeyEnter}); res.Action != Close {
		t.Fatalf("enter on empty input = %+v", res)
	}
	if res := empty.HandleKey(event.Key{Action: event.KeyDown, Keycode: event.KeyEscape}); res.Action != Close {
		t.Fatalf("escape = %+v", res)
	}
}

func TestScanPath(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	write := func(dir, name string, mode os.FileMode) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), mode); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write(a, "zed", 0o755)
	write(a, "notes.txt", 0o644)
	write(b, "alpha", 0o755)
	write(b, "zed", 0o755)
	if err := os.Mkdir(filepath.Join(b, "subdir"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Symlink(filepath.Join(b, "alpha"), filepath.Join(a, "beta")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	path := a + string(os.PathListSeparator) + filepath.Join(a, "missing") + string(os.PathListSeparator) + b
	got := ScanPath(path)
	want := []string{"alpha", "beta", "zed"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ScanPath = %v, want %v", got, want)
	}
}

func TestDraw(t *testing.T) {
	s := gfx.NewMemorySurface(1, Width, Height)
	r := New([]string{"xterm"})
	typeText(r, "x")
	r.Draw(s.Canvas(), nil)
	if _, _, _, a := s.Image().At(Width/2, 100).RGBA(); a == 0 {
		t.Fatalf("dialog background not painted")
	}
}

func TestCompletedFlag(t *testing.T) {
	r := New([]string{"ls", "ln", "xterm"})
	if r.Completed {
		t.Fatalf("completed before typing")
	}
	typeText(r, "x")
	if !r.Completed || r.Program() != "xterm" {
		t.Fatalf("after x: completed=%v program=%q", r.Completed, r.Program())
	}
	typeText(r, "q")
	if r.Completed {
		t.Fatalf("xq should not complete")
	}
	r.HandleKey(press('\b'))
	r.HandleKey(event.Key{Action: event.KeyDown, Keycode: event.KeyDelete})
	if r.Completed || r.Complete != "" {
		t.Fatalf("delete should drop the completion: %+v", r)
	}

	exact := New([]string{"ls"})
	typeText(exact, "ls -la /tmp")
	if exact.Completed {
		t.Fatalf("arguments do not name an executable")
	}
	exact = New([]string{"ls"})
	typeText(exact, "ls")
	if !exact.Completed || exact.Complete != "" || exact.Program() != "ls" {
		t.Fatalf("exact match: %+v program=%q", exact, exact.Program())
	}
}

func TestDraw_CompletedIcon(t *testing.T) {
	icons := gfx.NewIcons([]string{t.TempDir()}, nil)
	x, y := Width-20-iconSize/2, 10+iconSize/2

	r := New([]string{"xterm"})
	s := gfx.NewMemorySurface(1, Width, Height)
	typeText(r, "q")
	r.Draw(s.Canvas(), icons)
	if red, _, _, _ := s.Image().At(x, y).RGBA(); red != 0 {
		t.Fatalf("icon drawn without a completion")
	}

	r = New([]string{"xterm"})
	s = gfx.NewMemorySurface(1, Width, Height)
	typeText(r, "x")
	r.Draw(s.Canvas(), icons)
	if red, _, _, _ := s.Image().At(x, y).RGBA(); red == 0 {
		t.Fatalf("completed program icon not drawn")
	}
}

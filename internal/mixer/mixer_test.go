package mixer

import (
	"errors"
	"strings"
	"testing"
)

func TestPercentRoundTrip(t *testing.T) {
	for pct := 0; pct <= 100; pct++ {
		if got := ToPercent(FromPercent(pct)); got != pct {
			t.Fatalf("ToPercent(FromPercent(%d)) = %d", pct, got)
		}
	}
	if FromPercent(150) != MaxLevel || FromPercent(-3) != 0 {
		t.Fatalf("FromPercent must clamp")
	}
}

func TestAmixerVolumeParsesPercent(t *testing.T) {
	a := NewAmixer("")
	var gotArgs []string
	a.run = func(args ...string) ([]byte, error) {
		gotArgs = args
		return []byte("Simple mixer control 'Master',0\n  Front Left: Playback 40000 [62%] [on]\n"), nil
	}

	level, err := a.Volume()
	if err != nil {
		t.Fatalf("Volume: %v", err)
	}
	if ToPercent(level) != 62 {
		t.Fatalf("level = %#x (%d%%), want 62%%", level, ToPercent(level))
	}
	if strings.Join(gotArgs, " ") != "-M get Master" {
		t.Fatalf("args = %v", gotArgs)
	}
}

func TestAmixerSetVolume(t *testing.T) {
	a := NewAmixer("PCM")
	var gotArgs []string
	a.run = func(args ...string) ([]byte, error) {
		gotArgs = args
		return nil, nil
	}
	if err := a.SetVolume(MaxLevel / 2); err != nil {
		t.Fatalf("SetVolume: %v", err)
	}
	if strings.Join(gotArgs, " ") != "-q -M set PCM 50%" {
		t.Fatalf("args = %v", gotArgs)
	}
}

func TestAmixerVolumeErrors(t *testing.T) {
	a := NewAmixer("Master")
	a.run = func(args ...string) ([]byte, error) { return []byte("no numbers here"), nil }
	if _, err := a.Volume(); err == nil {
		t.Fatalf("expected parse error")
	}

	a.run = func(args ...string) ([]byte, error) { return nil, errors.New("boom") }
	if _, err := a.Volume(); err == nil {
		t.Fatalf("expected run error")
	}
}

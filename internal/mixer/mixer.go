// Package mixer reads and writes the master output volume.
//
// Levels use the full unsigned 32-bit range: 0 is silent and 0xFFFFFFFF is
// full volume.
package mixer

import (
	"bytes"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// MaxLevel is full volume.
const MaxLevel uint32 = 0xFFFFFFFF

// Mixer is an output volume device.
type Mixer interface {
	Volume() (uint32, error)
	SetVolume(level uint32) error
}

// New returns the mixer named by kind ("amixer" or "none").
func New(kind, control string) (Mixer, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "amixer":
		if _, err := exec.LookPath("amixer"); err != nil {
			return nil, fmt.Errorf("mixer backend %q not found in PATH", "amixer")
		}
		return NewAmixer(control), nil
	case "none":
		return &Memory{}, nil
	default:
		return nil, fmt.Errorf("unknown mixer: %q (expected: amixer, none)", kind)
	}
}

// Memory is a mixer that only remembers the last level written.
type Memory struct {
	Level uint32
}

func (m *Memory) Volume() (uint32, error) { return m.Level, nil }

func (m *Memory) SetVolume(level uint32) error {
	m.Level = level
	return nil
}

// Amixer drives an ALSA simple control through the amixer command.
type Amixer struct {
	control string
	run     func(args ...string) ([]byte, error)
}

// NewAmixer creates an amixer-backed mixer for control (default "Master").
func NewAmixer(control string) *Amixer {
	if strings.TrimSpace(control) == "" {
		control = "Master"
	}
	return &Amixer{control: control, run: runAmixer}
}

func runAmixer(args ...string) ([]byte, error) {
	cmd := exec.Command("amixer", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("amixer failed: %s", msg)
		}
		return nil, fmt.Errorf("amixer failed: %w", err)
	}
	return out, nil
}

var percentPattern = regexp.MustCompile(`\[(\d{1,3})%\]`)

func (a *Amixer) Volume() (uint32, error) {
	out, err := a.run("-M", "get", a.control)
	if err != nil {
		return 0, err
	}
	m := percentPattern.FindSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("amixer: no volume for control %q", a.control)
	}
	pct, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, fmt.Errorf("amixer: bad volume %q: %w", m[1], err)
	}
	return FromPercent(pct), nil
}

func (a *Amixer) SetVolume(level uint32) error {
	_, err := a.run("-q", "-M", "set", a.control, strconv.Itoa(ToPercent(level))+"%")
	return err
}

// FromPercent maps 0..100 onto the level range.
func FromPercent(pct int) uint32 {
	pct = max(0, min(pct, 100))
	return uint32(uint64(pct) * uint64(MaxLevel) / 100)
}

// ToPercent maps a level onto 0..100, rounding to nearest.
func ToPercent(level uint32) int {
	return int((uint64(level)*100 + uint64(MaxLevel)/2) / uint64(MaxLevel))
}

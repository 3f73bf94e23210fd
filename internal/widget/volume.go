package widget

import (
	"log/slog"

	"github.com/1broseidon/deskbar/internal/event"
	"github.com/1broseidon/deskbar/internal/mixer"
)

// Volume levels and icon tier thresholds.
const (
	VolumeStep    uint32 = 0x10000000
	VolumeCeiling uint32 = 0xF0000000

	volumeUpLimit   uint32 = 0xE0000000
	volumeDownLimit uint32 = 0x20000000

	tierMute   uint32 = 10
	tierLow    uint32 = 0x547ae147
	tierMedium uint32 = 0xa8f5c28e
)

// Volume controls the master output level: click toggles mute, the scroll
// wheel steps the level.
type Volume struct {
	Base
	mixer    mixer.Mixer
	logger   *slog.Logger
	level    uint32
	muted    bool
	previous uint32
}

// NewVolume reads the current level from m. A read failure starts the
// widget at zero.
func NewVolume(m mixer.Mixer, logger *slog.Logger) *Volume {
	if logger == nil {
		logger = slog.Default()
	}
	v := &Volume{mixer: m, logger: logger}
	level, err := m.Volume()
	if err != nil {
		logger.Warn("failed to read mixer volume", "err", err)
	}
	v.level = level
	return v
}

func (v *Volume) Width() int { return 28 }

// Level returns the current level.
func (v *Volume) Level() uint32 { return v.level }

// Muted reports whether the widget is muted.
func (v *Volume) Muted() bool { return v.muted }

// IconName returns the icon tier for the current level.
func (v *Volume) IconName() string {
	switch {
	case v.level < tierMute:
		return "audio-volume-muted"
	case v.level < tierLow:
		return "audio-volume-low"
	case v.level < tierMedium:
		return "audio-volume-medium"
	default:
		return "audio-volume-high"
	}
}

func (v *Volume) Draw(ctx *DrawContext, offset, _ int) {
	ctx.Canvas.DrawImage(ctx.Icons.Get(v.IconName(), 24), offset, 0, 1)
}

// Up raises the level by one step, clamping at VolumeCeiling.
func (v *Volume) Up() {
	if v.level >= volumeUpLimit {
		v.level = VolumeCeiling
	} else {
		v.level += VolumeStep
	}
	v.push()
}

// Down lowers the level by one step, clamping at zero.
func (v *Volume) Down() {
	if v.level < volumeDownLimit {
		v.level = 0
	} else {
		v.level -= VolumeStep
	}
	v.push()
}

// ToggleMute saves the level and silences output, or restores the saved
// level.
func (v *Volume) ToggleMute() {
	if v.muted {
		v.muted = false
		v.level = v.previous
	} else {
		v.muted = true
		v.previous = v.level
		v.level = 0
	}
	v.push()
}

func (v *Volume) push() {
	if err := v.mixer.SetVolume(v.level); err != nil {
		v.logger.Warn("failed to set mixer volume", "level", v.level, "err", err)
	}
}

func (v *Volume) MouseAction(ev event.Mouse) bool {
	if ev.Command == event.MouseClick {
		v.ToggleMute()
		return true
	}
	switch {
	case ev.Buttons&event.ButtonScrollUp != 0:
		v.Up()
		return true
	case ev.Buttons&event.ButtonScrollDown != 0:
		v.Down()
		return true
	}
	return false
}

// Package event defines the messages the shell receives from the display
// server and from its own control surfaces.
package event

import "time"

// Message is one inbound protocol message. The dispatcher type-switches on
// the concrete value.
type Message interface {
	isMessage()
}

// SessionEnd asks every client to exit.
type SessionEnd struct{}

// Notify reports that the set of open windows changed.
type Notify struct{}

// TimerTick is delivered periodically to drive clocks and animations.
type TimerTick struct {
	Now time.Time
}

// Welcome carries new display geometry.
type Welcome struct {
	Width  int
	Height int
}

// ResizeOffer is the server's answer to a resize request on one of our
// surfaces.
type ResizeOffer struct {
	WID    uint32
	Width  int
	Height int
}

// FocusChange reports a focus gain or loss on one of our surfaces.
type FocusChange struct {
	WID     uint32
	Focused bool
}

// ReloadWallpaper starts a cross-fade to the configured wallpaper.
type ReloadWallpaper struct{}

// Restack re-asserts the stacking order of our surfaces and re-registers
// keybinds.
type Restack struct{}

// MenuClosed reports the outcome of an asynchronous menu.
type MenuClosed struct {
	ID     string
	Action string
	Err    error
}

// Control is a request arriving from the IPC socket. The dispatcher answers
// on Reply exactly once.
type Control struct {
	Command string
	Args    map[string]string
	Reply   chan<- ControlReply
}

// ControlReply answers a Control message.
type ControlReply struct {
	Data any
	Err  error
}

func (SessionEnd) isMessage() {}
func (Notify) isMessage() {}
func (TimerTick) isMessage() {}
func (Key) isMessage() {}
func (Welcome) isMessage() {}
func (ResizeOffer) isMessage() {}
func (Mouse) isMessage() {}
func (FocusChange) isMessage() {}
func (ReloadWallpaper) isMessage() {}
func (Restack) isMessage() {}
func (MenuClosed) isMessage() {}
func (Control) isMessage() {}

package event

// MouseCommand classifies a pointer event.
type MouseCommand int

const (
	MouseClick MouseCommand = iota
	MouseDrag
	MouseRaise
	MouseDown
	MouseMove
	MouseLeave
	MouseEnter
)

func (c MouseCommand) String() string {
	switch c {
	case MouseClick:
		return "click"
	case MouseDrag:
		return "drag"
	case MouseRaise:
		return "raise"
	case MouseDown:
		return "down"
	case MouseMove:
		return "move"
	case MouseLeave:
		return "leave"
	case MouseEnter:
		return "enter"
	default:
		return "unknown"
	}
}

// Mouse button bits.
const (
	ButtonLeft       uint32 = 0x01
	ButtonRight      uint32 = 0x02
	ButtonMiddle     uint32 = 0x04
	ButtonScrollUp   uint32 = 0x10
	ButtonScrollDown uint32 = 0x20
)

// Mouse is a pointer event in surface-local coordinates.
type Mouse struct {
	WID     uint32
	X, Y    int
	OldX    int
	OldY    int
	Command MouseCommand
	Buttons uint32
}

// KeyAction is key down or key up.
type KeyAction int

const (
	KeyDown KeyAction = iota + 1
	KeyUp
)

// Modifier bits. Only the left-hand modifiers are distinguished by the
// shell; the right-hand bits are reported for completeness.
const (
	ModLeftCtrl   uint32 = 0x01
	ModLeftShift  uint32 = 0x02
	ModLeftAlt    uint32 = 0x04
	ModLeftSuper  uint32 = 0x08
	ModRightCtrl  uint32 = 0x10
	ModRightShift uint32 = 0x20
	ModRightAlt   uint32 = 0x40
	ModRightSuper uint32 = 0x80
)

// Keycodes for the non-printing keys the shell cares about. Printable keys
// use their ASCII value as keycode.
const (
	KeyNone      uint32 = 0
	KeyBackspace uint32 = '\b'
	KeyTab       uint32 = '\t'
	KeyEnter     uint32 = '\n'
	KeyEscape    uint32 = 0x1b
	KeyDelete    uint32 = 0x7f

	KeyF1 uint32 = 1000 + iota
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyLeftCtrl
	KeyLeftShift
	KeyLeftAlt
	KeyLeftSuper
	KeyRightCtrl
	KeyRightShift
	KeyRightAlt
	KeyRightSuper
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
)

// Key is a keyboard event. Modifiers describe the state after the event has
// been applied, so releasing the last held modifier reports zero.
type Key struct {
	WID       uint32
	Action    KeyAction
	Keycode   uint32
	Rune      rune
	Modifiers uint32
}

// Down reports whether this is a key press.
func (k Key) Down() bool { return k.Action == KeyDown }

// Has reports whether all bits in mask are held.
func (k Key) Has(mask uint32) bool { return k.Modifiers&mask == mask }

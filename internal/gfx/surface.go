package gfx

import (
	"image"
	"image/draw"
)

// StackOrder selects where a surface sits relative to other windows.
type StackOrder int

const (
	StackTop StackOrder = iota
	StackBottom
)

func (s StackOrder) String() string {
	if s == StackBottom {
		return "bottom"
	}
	return "top"
}

// SurfaceKind selects how the window manager should treat a surface.
type SurfaceKind int

const (
	// KindPanel is a dock that reserves a strip along the top edge.
	KindPanel SurfaceKind = iota
	// KindDesktop sits below every other window.
	KindDesktop
	// KindOverlay is an unmanaged popup.
	KindOverlay
)

// Surface is an on-screen paintable window owned by the shell.
type Surface interface {
	ID() uint32
	Size() (width, height int)
	// Canvas returns the back buffer. It stays valid until the next
	// AcceptResize.
	Canvas() *Canvas
	// Flip publishes the back buffer.
	Flip() error
	Move(x, y int)
	// Resize asks the server for new dimensions; the server answers with a
	// resize offer that the owner completes through AcceptResize and
	// ResizeDone.
	Resize(width, height int)
	AcceptResize(width, height int) error
	ResizeDone()
	SetStack(order StackOrder)
	Close()
}

// MemorySurface is a Surface backed by an in-memory image. It records the
// calls made on it and is used wherever no display server is available.
type MemorySurface struct {
	WID     uint32
	X, Y    int
	Stack   StackOrder
	Flips   int
	Closed  bool
	Pending image.Point
	Moves   []image.Point
	Done    int

	img    *image.RGBA
	canvas *Canvas
}

// NewMemorySurface creates a width x height surface.
func NewMemorySurface(wid uint32, width, height int) *MemorySurface {
	s := &MemorySurface{WID: wid}
	s.reinit(width, height)
	return s
}

func (s *MemorySurface) reinit(width, height int) {
	s.img = image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	s.canvas = NewCanvas(s.img)
}

func (s *MemorySurface) ID() uint32 { return s.WID }

func (s *MemorySurface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *MemorySurface) Canvas() *Canvas { return s.canvas }

// Image returns the back buffer.
func (s *MemorySurface) Image() draw.Image { return s.img }

func (s *MemorySurface) Flip() error {
	s.Flips++
	return nil
}

func (s *MemorySurface) Move(x, y int) {
	s.X, s.Y = x, y
	s.Moves = append(s.Moves, image.Pt(x, y))
}

func (s *MemorySurface) Resize(width, height int) {
	s.Pending = image.Pt(width, height)
}

func (s *MemorySurface) AcceptResize(width, height int) error {
	s.reinit(width, height)
	return nil
}

func (s *MemorySurface) ResizeDone() { s.Done++ }

func (s *MemorySurface) SetStack(order StackOrder) { s.Stack = order }

func (s *MemorySurface) Close() { s.Closed = true }

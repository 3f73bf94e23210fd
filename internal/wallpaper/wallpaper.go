// Package wallpaper drives the desktop surface: the scaled background with
// its cross-fade on change, and the column grid of launcher icons.
package wallpaper

import (
	"image"
	"log/slog"
	"time"

	"github.com/1broseidon/deskbar/internal/config"
	"github.com/1broseidon/deskbar/internal/event"
	"github.com/1broseidon/deskbar/internal/gfx"
)

// Grid origin.
const (
	MarginX = 20
	MarginY = 50
)

const fadeDuration = time.Second

var fallbackColor = gfx.ARGB(0xFF1D3B53)

// Launcher runs an icon's command.
type Launcher interface {
	Launch(command string, terminal bool)
}

// Options configures a Wallpaper.
type Options struct {
	// Source returns the path of the wallpaper image to show.
	Source   func() string
	Icons    *gfx.Icons
	Launcher Launcher
	Logger   *slog.Logger
	Now      func() time.Time
}

// animated is anything with a start time in the animation table: the
// wallpaper itself while cross-fading, or an icon while bouncing.
type animated interface {
	bounds() gfx.Rect
}

type scaledImage struct {
	src  image.Image
	size image.Point
	img  image.Image
}

func (s *scaledImage) at(width, height int) image.Image {
	if s.src == nil {
		return nil
	}
	if s.img == nil || s.size != image.Pt(width, height) {
		s.img = gfx.Cover(s.src, width, height)
		s.size = image.Pt(width, height)
	}
	return s.img
}

// Wallpaper owns the desktop surface.
type Wallpaper struct {
	surface gfx.Surface
	icons   []*Icon
	focused *Icon

	background    scaledImage
	newBackground scaledImage
	animations    map[animated]time.Time

	source   func() string
	launcher Launcher
	logger   *slog.Logger
	now      func() time.Time
}

// New creates the desktop with one icon per entry and loads the current
// wallpaper.
func New(surface gfx.Surface, entries []config.DesktopEntry, opts Options) *Wallpaper {
	w := &Wallpaper{
		surface:    surface,
		animations: map[animated]time.Time{},
		source:     opts.Source,
		launcher:   opts.Launcher,
		logger:     opts.Logger,
		now:        opts.Now,
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if w.now == nil {
		w.now = time.Now
	}
	icons := opts.Icons
	if icons == nil {
		icons = gfx.NewIcons(nil, w.logger)
	}
	for _, e := range entries {
		w.icons = append(w.icons, newIcon(e.Label, e.Command, icons.Get(e.Icon, IconImageSize)))
	}
	w.background.src = w.load()
	return w
}

func (w *Wallpaper) Surface() gfx.Surface { return w.surface }

// Icons returns the desktop icons in layout order.
func (w *Wallpaper) Icons() []*Icon { return w.icons }

// Focused returns the hovered icon, or nil.
func (w *Wallpaper) Focused() *Icon { return w.focused }

// Animating reports whether any animation is in progress.
func (w *Wallpaper) Animating() bool { return len(w.animations) > 0 }

// Fading reports whether a wallpaper cross-fade is in progress.
func (w *Wallpaper) Fading() bool {
	_, ok := w.animations[w]
	return ok
}

func (w *Wallpaper) bounds() gfx.Rect {
	width, height := w.surface.Size()
	return gfx.Rect{Width: width, Height: height}
}

func (w *Wallpaper) load() image.Image {
	path := ""
	if w.source != nil {
		path = w.source()
	}
	if path != "" {
		img, err := gfx.LoadImage(path)
		if err == nil {
			return img
		}
		w.logger.Warn("wallpaper load failed, using solid colour", "path", path, "err", err)
	}
	return gfx.Solid(1, 1, fallbackColor)
}

// Layout walks the icon grid for a surface height pixels tall. Icons run
// down a column from (MarginX, MarginY); an icon that would pass the bottom
// edge starts a new column offset by the widest icon of the previous one.
// visit returns false to stop the walk.
func Layout(count, height int, visit func(i, x, y int) bool) {
	x, y := MarginX, MarginY
	lastWidth := 0
	for i := 0; i < count; i++ {
		if y > height-IconHeight {
			y = MarginY
			x += lastWidth
			lastWidth = 0
		}
		lastWidth = max(lastWidth, IconWidth)
		if !visit(i, x, y) {
			return
		}
		y += IconHeight
	}
}

// AnimateNew reloads the wallpaper and cross-fades to it.
func (w *Wallpaper) AnimateNew() {
	w.newBackground = scaledImage{src: w.load()}
	w.animations[w] = w.now()
}

// AddAnimation starts the launch bounce on icon.
func (w *Wallpaper) AddAnimation(icon *Icon) {
	w.animations[icon] = w.now()
}

// Animate advances every running animation by one frame. Bounces that have
// run their course are dropped afterwards; the cross-fade drops itself in
// Draw once complete.
func (w *Wallpaper) Animate() {
	clips := make([]gfx.Rect, 0, len(w.animations))
	for a := range w.animations {
		clips = append(clips, a.bounds())
	}
	w.Draw(clips)

	now := w.now()
	for a, start := range w.animations {
		if a == animated(w) {
			continue
		}
		if now.Sub(start) > bounceDuration {
			delete(w.animations, a)
		}
	}
}

// Draw repaints the desktop. With clips, painting is limited to them and
// to every running animation; with none the whole surface is painted.
func (w *Wallpaper) Draw(clips []gfx.Rect) {
	canvas := w.surface.Canvas()
	width, height := w.surface.Size()
	now := w.now()

	if len(clips) > 0 {
		all := append([]gfx.Rect{}, clips...)
		for a := range w.animations {
			all = append(all, a.bounds())
		}
		canvas.Clip(all...)
	} else {
		canvas.ResetClip()
	}

	full := gfx.Rect{Width: width, Height: height}
	canvas.Fill(full, fallbackColor)
	canvas.DrawImage(w.background.at(width, height), 0, 0, 1)

	finished := false
	if start, ok := w.animations[w]; ok {
		elapsed := now.Sub(start)
		next := w.newBackground.at(width, height)
		if elapsed >= fadeDuration {
			canvas.DrawImage(next, 0, 0, 1)
			w.background = w.newBackground
			w.newBackground = scaledImage{}
			finished = true
		} else {
			canvas.DrawImage(next, 0, 0, float64(elapsed)/float64(fadeDuration))
		}
	}

	Layout(len(w.icons), height, func(i, x, y int) bool {
		icon := w.icons[i]
		age := time.Duration(-1)
		if start, ok := w.animations[icon]; ok {
			age = now.Sub(start)
		}
		icon.draw(canvas, x, y, age)
		return true
	})

	if finished {
		delete(w.animations, w)
	}
	canvas.ResetClip()

	if err := w.surface.Flip(); err != nil {
		w.logger.Warn("wallpaper flip failed", "err", err)
	}
}

// IconAt returns the icon under (x, y), or nil. It refreshes the
// positions of the icons it walks past.
func (w *Wallpaper) IconAt(x, y int) *Icon {
	_, height := w.surface.Size()
	var hit *Icon
	Layout(len(w.icons), height, func(i, ix, iy int) bool {
		w.icons[i].x, w.icons[i].y = ix, iy
		if x >= ix && x < ix+IconWidth && y >= iy && y < iy+IconHeight {
			hit = w.icons[i]
			return false
		}
		return true
	})
	return hit
}

// DispatchMouse moves hover between icons and launches on click.
func (w *Wallpaper) DispatchMouse(ev event.Mouse) {
	_, height := w.surface.Size()
	var clips []gfx.Rect

	if (ev.Command == event.MouseLeave || ev.Y >= height) && w.focused != nil {
		w.focused.hovered = false
		clips = append(clips, w.focused.bounds())
		w.focused = nil
	} else {
		under := w.IconAt(ev.X, ev.Y)
		if under != w.focused {
			if w.focused != nil {
				w.focused.hovered = false
				clips = append(clips, w.focused.bounds())
			}
			w.focused = under
			if w.focused != nil {
				w.focused.hovered = true
				clips = append(clips, w.focused.bounds())
			}
		} else if under != nil && ev.Command == event.MouseClick {
			w.launch(under)
		}
	}
	if len(clips) > 0 {
		w.Draw(clips)
	}
}

func (w *Wallpaper) launch(icon *Icon) {
	w.AddAnimation(icon)
	if w.launcher != nil {
		w.launcher.Launch(icon.Command, false)
	}
}

// Resize asks for new desktop dimensions.
func (w *Wallpaper) Resize(width, height int) { w.surface.Resize(width, height) }

// FinishResize completes a resize offer for the desktop surface.
func (w *Wallpaper) FinishResize(width, height int) {
	if err := w.surface.AcceptResize(width, height); err != nil {
		w.logger.Warn("wallpaper resize failed", "width", width, "height", height, "err", err)
		return
	}
	w.Draw(nil)
	w.surface.ResizeDone()
	if err := w.surface.Flip(); err != nil {
		w.logger.Warn("wallpaper flip failed", "err", err)
	}
}

// Lower puts the desktop back at the bottom of the stack.
func (w *Wallpaper) Lower() { w.surface.SetStack(gfx.StackBottom) }

// Close releases the desktop surface.
func (w *Wallpaper) Close() { w.surface.Close() }

package gfx

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// DefaultIconDirs are searched in order for "<name>.png".
var DefaultIconDirs = []string{
	"~/.local/share/icons",
	"/usr/share/icons/hicolor/48x48/apps",
	"/usr/share/icons/hicolor/scalable/apps",
	"/usr/share/icons",
	"/usr/share/pixmaps",
}

// LoadImage decodes the image at path.
func LoadImage(path string) (image.Image, error) {
	img, err := imaging.Open(expandHome(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}
	return img, nil
}

// Cover scales img to cover a width x height area, cropping the overflow
// evenly on both sides.
func Cover(img image.Image, width, height int) image.Image {
	if img == nil || width <= 0 || height <= 0 {
		return img
	}
	return imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)
}

// Solid returns a width x height image filled with col.
func Solid(width, height int, col color.Color) image.Image {
	return imaging.New(max(width, 1), max(height, 1), col)
}

// Icons loads named icons from a search path and caches them per size.
type Icons struct {
	dirs   []string
	cache  map[string]image.Image
	logger *slog.Logger
}

// NewIcons creates an icon cache searching dirs, or DefaultIconDirs when
// dirs is empty.
func NewIcons(dirs []string, logger *slog.Logger) *Icons {
	if len(dirs) == 0 {
		dirs = DefaultIconDirs
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Icons{dirs: dirs, cache: map[string]image.Image{}, logger: logger}
}

// Get returns the icon called name scaled to size x size. Unknown icons
// yield a neutral placeholder so drawing never fails.
func (i *Icons) Get(name string, size int) image.Image {
	key := fmt.Sprintf("%s@%d", name, size)
	if img, ok := i.cache[key]; ok {
		return img
	}

	img := i.load(name)
	if img == nil {
		img = placeholder(size)
	} else if b := img.Bounds(); b.Dx() != size || b.Dy() != size {
		img = imaging.Resize(img, size, size, imaging.Lanczos)
	}
	i.cache[key] = img
	return img
}

func (i *Icons) load(name string) image.Image {
	if name == "" {
		return nil
	}
	var candidates []string
	if filepath.IsAbs(name) || strings.HasPrefix(name, "~/") {
		candidates = append(candidates, name)
	} else {
		for _, dir := range i.dirs {
			candidates = append(candidates, filepath.Join(expandHome(dir), name+".png"))
		}
	}
	for _, path := range candidates {
		if _, err := os.Stat(expandHome(path)); err != nil {
			continue
		}
		img, err := LoadImage(path)
		if err != nil {
			i.logger.Debug("icon decode failed", "path", path, "err", err)
			continue
		}
		return img
	}
	i.logger.Debug("icon not found", "name", name)
	return nil
}

func placeholder(size int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	c := NewCanvas(img)
	c.RoundedRect(Rect{X: 2, Y: 2, Width: size - 4, Height: size - 4}, size/6, ARGB(0xB0707880))
	return img
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

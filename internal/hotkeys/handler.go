package hotkeys

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Handler manages global keyboard shortcuts on the root window.
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler for the root window of xu.
func NewHandler(xu *xgbutil.XUtil, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})
	return &Handler{xu: xu, root: xu.RootWin(), logger: logger}
}

// Bind attaches callbacks to a key sequence. With steal the key is grabbed
// so no other client sees it; otherwise it passes through. release may be
// nil.
func (h *Handler) Bind(spec string, steal bool, press func(xevent.KeyPressEvent), release func(xevent.KeyReleaseEvent)) error {
	if _, err := Parse(spec); err != nil {
		return err
	}
	err := keybind.KeyPressFun(func(_ *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		press(ev)
	}).Connect(h.xu, h.root, spec, steal)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", spec, err)
	}
	if release == nil {
		return nil
	}
	err = keybind.KeyReleaseFun(func(_ *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
		release(ev)
	}).Connect(h.xu, h.root, spec, steal)
	if err != nil {
		return fmt.Errorf("failed to bind release of %s: %w", spec, err)
	}
	h.logger.Debug("hotkey bound", "keys", spec, "steal", steal)
	return nil
}

// Reset drops every binding so they can be registered again.
func (h *Handler) Reset() {
	keybind.Detach(h.xu, h.root)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}

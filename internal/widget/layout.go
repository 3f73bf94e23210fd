package widget

// Extent is the half-open horizontal span [Start, End) of a widget.
type Extent struct {
	Start int
	End   int
}

// Contains reports whether x falls inside the extent.
func (e Extent) Contains(x int) bool { return x >= e.Start && x < e.End }

// Validate rejects widget sets with more than one flexible widget.
func Validate(widgets []Widget) error {
	flexible := 0
	for _, w := range widgets {
		if w.Width() == Flexible {
			flexible++
		}
	}
	if flexible > 1 {
		return ErrMultipleFlexible
	}
	return nil
}

// Remaining returns the right edge of the flexible slot for the widget at
// index i: total minus the widths of every widget after it. It is zero for
// fixed-width widgets.
func Remaining(widgets []Widget, i, total int) int {
	if widgets[i].Width() != Flexible {
		return 0
	}
	after := 0
	for _, w := range widgets[i+1:] {
		if width := w.Width(); width != Flexible {
			after += width
		}
	}
	return total - after
}

// Layout computes each widget's extent for a surface total pixels wide.
// Fixed widgets occupy [offset, offset+width); the flexible widget occupies
// [offset, Remaining).
func Layout(widgets []Widget, total int) []Extent {
	out := make([]Extent, len(widgets))
	offset := 0
	for i, w := range widgets {
		if width := w.Width(); width != Flexible {
			out[i] = Extent{Start: offset, End: offset + width}
			offset += width
			continue
		}
		end := Remaining(widgets, i, total)
		out[i] = Extent{Start: offset, End: end}
		offset = end
	}
	return out
}

// HitTest returns the index of the first widget whose extent contains x,
// or -1.
func HitTest(widgets []Widget, total, x int) int {
	for i, e := range Layout(widgets, total) {
		if e.Contains(x) {
			return i
		}
	}
	return -1
}

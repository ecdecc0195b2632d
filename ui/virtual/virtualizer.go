package virtual

import (
	"log/slog"
)

// Container is the scroll container a Virtualizer measures.
type Container interface {
	ScrollOffset() int
	ViewportSize() (int, error)
}

// Options configures a Virtualizer.
type Options struct {
	Count    int
	Estimate EstimateFunc // nil means one unit per item
	Overscan int
}

type observer struct {
	id int
	fn func(Window)
}

// Virtualizer binds Compute to a live scroll container. It recomputes on
// scroll, resize and count changes and tells observers when the window
// changes. It is not safe for concurrent use; callers drive it from a
// single goroutine.
type Virtualizer struct {
	opts      Options
	offsets   *Offsets
	container Container

	window    Window
	observers []observer
	nextID    int
	closed    bool
}

// New creates an unattached Virtualizer. Its window is empty until Attach.
func New(opts Options) *Virtualizer {
	if opts.Estimate == nil {
		opts.Estimate = Fixed(1)
	}
	if opts.Overscan < 0 {
		opts.Overscan = 0
	}
	v := &Virtualizer{opts: opts}
	v.offsets = NewOffsets(opts.Count, opts.Estimate)
	v.window = Window{TotalSize: v.offsets.Total()}
	return v
}

// NewFixed creates a Virtualizer over uniformly sized items without
// building a prefix-sum table.
func NewFixed(count, size, overscan int) *Virtualizer {
	v := New(Options{Count: 0, Estimate: Fixed(size), Overscan: overscan})
	v.opts.Count = count
	v.offsets = FixedOffsets(count, size)
	v.window = Window{TotalSize: v.offsets.Total()}
	return v
}

// Attach binds the container and computes the first window.
func (v *Virtualizer) Attach(c Container) {
	if v.closed {
		return
	}
	v.container = c
	v.recompute("attach")
}

// Detach unbinds the container. The window becomes empty.
func (v *Virtualizer) Detach() {
	if v.closed {
		return
	}
	v.container = nil
	v.recompute("detach")
}

// SetCount changes the item count. Growth extends the offset table in
// place; shrinking rebuilds it.
func (v *Virtualizer) SetCount(n int) {
	if v.closed || n == v.opts.Count {
		return
	}
	if n < 0 {
		n = 0
	}
	switch {
	case n > v.opts.Count:
		v.offsets.Grow(n, v.opts.Estimate)
	case v.offsets.fixed > 0:
		v.offsets = FixedOffsets(n, v.offsets.fixed)
	default:
		v.offsets = NewOffsets(n, v.opts.Estimate)
	}
	v.opts.Count = n
	v.recompute("count")
}

// Count returns the current item count.
func (v *Virtualizer) Count() int { return v.opts.Count }

// NotifyScroll recomputes after the container scrolled.
func (v *Virtualizer) NotifyScroll() { v.recompute("scroll") }

// NotifyResize recomputes after the container was resized.
func (v *Virtualizer) NotifyResize() { v.recompute("resize") }

// Window returns the current window.
func (v *Virtualizer) Window() Window { return v.window }

// TotalSize returns the summed size of all items.
func (v *Virtualizer) TotalSize() int { return v.offsets.Total() }

// Offsets exposes the layout for hit testing.
func (v *Virtualizer) Offsets() *Offsets { return v.offsets }

// Observe registers fn to run on every window change, in registration
// order. The returned func unregisters it.
func (v *Virtualizer) Observe(fn func(Window)) (cancel func()) {
	if v.closed || fn == nil {
		return func() {}
	}
	id := v.nextID
	v.nextID++
	v.observers = append(v.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range v.observers {
			if o.id == id {
				v.observers = append(v.observers[:i], v.observers[i+1:]...)
				return
			}
		}
	}
}

// Close drops every observer and the container. Later calls are no-ops.
func (v *Virtualizer) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.observers = nil
	v.container = nil
	slog.Debug("virtualizer closed", "count", v.opts.Count)
}

// Closed reports whether Close was called.
func (v *Virtualizer) Closed() bool { return v.closed }

func (v *Virtualizer) recompute(reason string) {
	if v.closed {
		return
	}
	next := v.compute(reason)
	if next.Equal(v.window) {
		return
	}
	v.window = next
	for _, o := range v.observers {
		o.fn(next)
		if v.closed {
			return
		}
	}
}

func (v *Virtualizer) compute(reason string) Window {
	if v.container == nil {
		return Window{TotalSize: v.offsets.Total()}
	}
	vp, err := v.container.ViewportSize()
	if err != nil {
		slog.Debug("viewport measurement failed, keeping last window",
			"reason", reason, "err", err)
		w := v.window
		w.TotalSize = v.offsets.Total()
		return w
	}
	return ComputeOffsets(v.offsets, v.container.ScrollOffset(), vp, v.opts.Overscan)
}

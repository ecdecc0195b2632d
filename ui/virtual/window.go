package virtual

// Item is one entry of a Window: an index into the source with its
// position along the scroll axis.
type Item struct {
	Index int
	Start int
	Size  int
}

// End returns the offset just past the item.
func (it Item) End() int { return it.Start + it.Size }

// Window is the slice of items intersecting the viewport, widened by the
// overscan margin, plus the total size of every item.
type Window struct {
	Items     []Item
	TotalSize int
}

// Empty reports whether the window holds no items.
func (w Window) Empty() bool { return len(w.Items) == 0 }

// Range returns the half-open index range covered by the window.
func (w Window) Range() (first, last int) {
	if w.Empty() {
		return 0, 0
	}
	return w.Items[0].Index, w.Items[len(w.Items)-1].Index + 1
}

// Equal reports whether two windows cover the same items at the same
// positions.
func (w Window) Equal(o Window) bool {
	if w.TotalSize != o.TotalSize || len(w.Items) != len(o.Items) {
		return false
	}
	for i := range w.Items {
		if w.Items[i] != o.Items[i] {
			return false
		}
	}
	return true
}

// ClampOffset restricts offset to the scrollable range.
func ClampOffset(offset, viewport, total int) int {
	maxOff := total - viewport
	if maxOff < 0 {
		maxOff = 0
	}
	if offset > maxOff {
		offset = maxOff
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// Compute returns the window for count items sized by est.
func Compute(count int, est EstimateFunc, offset, viewport, overscan int) Window {
	return ComputeOffsets(NewOffsets(count, est), offset, viewport, overscan)
}

// ComputeOffsets returns the window over a prepared layout. The overscan
// margin is measured in multiples of the item under the scroll offset, so
// with a uniform size the window holds at most ceil(viewport/size) +
// 2*overscan items no matter how many items exist.
func ComputeOffsets(o *Offsets, offset, viewport, overscan int) Window {
	w := Window{TotalSize: o.Total()}
	if o.Count() == 0 || viewport <= 0 {
		return w
	}
	if overscan < 0 {
		overscan = 0
	}
	offset = ClampOffset(offset, viewport, w.TotalSize)

	anchor := o.IndexAt(offset)
	margin := overscan * o.Size(anchor)

	first := o.FirstStartAtOrAfter(offset - margin)
	if first > anchor {
		first = anchor
	}
	limit := offset + viewport + margin
	n := o.Count()
	for i := first; i < n && o.Start(i) < limit; i++ {
		w.Items = append(w.Items, Item{Index: i, Start: o.Start(i), Size: o.Size(i)})
	}
	return w
}

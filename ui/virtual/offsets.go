// Package virtual computes which slice of a long list intersects a
// scrolling viewport, so only that slice needs to be rendered.
package virtual

import "sort"

// EstimateFunc returns the size of item i along the scroll axis, in the
// same units as the viewport.
type EstimateFunc func(i int) int

// Fixed returns an EstimateFunc giving every item the same size.
func Fixed(size int) EstimateFunc {
	return func(int) int { return size }
}

// Offsets is the prefix sum of item sizes. A fixed size skips the table
// entirely, so a million uniform rows cost nothing to index.
type Offsets struct {
	fixed  int
	starts []int // len == count+1 when fixed == 0
}

// FixedOffsets lays out count items of the given size.
func FixedOffsets(count, size int) *Offsets {
	if size < 1 {
		size = 1
	}
	return &Offsets{fixed: size, starts: []int{0, count * size}}
}

// NewOffsets lays out count items sized by est. Sizes below 1 count as 1.
func NewOffsets(count int, est EstimateFunc) *Offsets {
	o := &Offsets{starts: make([]int, 1, count+1)}
	o.Grow(count, est)
	return o
}

// Count returns the number of laid out items.
func (o *Offsets) Count() int {
	if o.fixed > 0 {
		return o.starts[1] / o.fixed
	}
	return len(o.starts) - 1
}

// Grow extends the layout to count items. Existing offsets are kept, which
// is what makes appends cheap while output is streaming.
func (o *Offsets) Grow(count int, est EstimateFunc) {
	if o.fixed > 0 {
		if count > o.Count() {
			o.starts[1] = count * o.fixed
		}
		return
	}
	for i := len(o.starts) - 1; i < count; i++ {
		size := est(i)
		if size < 1 {
			size = 1
		}
		o.starts = append(o.starts, o.starts[i]+size)
	}
}

// Start returns the offset at which item i begins.
func (o *Offsets) Start(i int) int {
	if o.fixed > 0 {
		return i * o.fixed
	}
	return o.starts[i]
}

// Size returns the size of item i.
func (o *Offsets) Size(i int) int {
	if o.fixed > 0 {
		return o.fixed
	}
	return o.starts[i+1] - o.starts[i]
}

// End returns the offset just past item i.
func (o *Offsets) End(i int) int { return o.Start(i) + o.Size(i) }

// Total returns the summed size of all items.
func (o *Offsets) Total() int {
	if o.fixed > 0 {
		return o.starts[1]
	}
	return o.starts[len(o.starts)-1]
}

// IndexAt returns the item containing offset pos, clamped to the valid
// index range. It returns -1 when there are no items.
func (o *Offsets) IndexAt(pos int) int {
	n := o.Count()
	if n == 0 {
		return -1
	}
	if pos <= 0 {
		return 0
	}
	var i int
	if o.fixed > 0 {
		i = pos / o.fixed
	} else {
		// first item whose end is past pos
		i = sort.Search(n, func(k int) bool { return o.starts[k+1] > pos })
	}
	if i >= n {
		i = n - 1
	}
	return i
}

// FirstStartAtOrAfter returns the first item beginning at or after pos, or
// Count when none does.
func (o *Offsets) FirstStartAtOrAfter(pos int) int {
	n := o.Count()
	if pos <= 0 {
		return 0
	}
	if o.fixed > 0 {
		i := (pos + o.fixed - 1) / o.fixed
		if i > n {
			i = n
		}
		return i
	}
	return sort.Search(n, func(k int) bool { return o.starts[k] >= pos })
}

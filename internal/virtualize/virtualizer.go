// Package virtualize keeps a bounded window of row handles alive for a display list of
// any length, recycling handles that scroll out of view.
package virtualize

import (
	"math"
	"sort"
)

// Callbacks are the three hooks a rendering layer supplies. Cleanup must be idempotent:
// teardown may call it again on handles that were already cleaned when pooled.
type Callbacks[H any] struct {
	Create  func(index int) H
	Update  func(h H, index int)
	Cleanup func(h H)
}

// Change reports the indices that entered and left the live window, both ascending.
type Change struct {
	Enter []int
	Exit  []int
}

// Empty reports whether the window did not change.
func (c Change) Empty() bool { return len(c.Enter) == 0 && len(c.Exit) == 0 }

// Virtualizer maps display-list indices to live handles. Handles outside the window are
// moved to a recycle pool instead of being destroyed.
type Virtualizer[H any] struct {
	cb    Callbacks[H]
	live  map[int]H
	pool  []H
	first int
	last  int

	created int
}

// New returns an empty virtualizer.
func New[H any](cb Callbacks[H]) *Virtualizer[H] {
	return &Virtualizer[H]{cb: cb, live: make(map[int]H), last: -1}
}

// Range computes the inclusive window for a scroll position, widened by buffer rows on
// each side. last < first means nothing is visible.
func Range(length int, rowHeight, scrollOffset, viewportHeight float64, buffer int) (first, last int) {
	if length <= 0 || rowHeight <= 0 {
		return 0, -1
	}
	if buffer < 0 {
		buffer = 0
	}
	if scrollOffset < 0 {
		scrollOffset = 0
	}
	if viewportHeight < 0 {
		viewportHeight = 0
	}
	first = int(math.Floor(scrollOffset/rowHeight)) - buffer
	if first < 0 {
		first = 0
	}
	last = int(math.Floor((scrollOffset+viewportHeight)/rowHeight)) + buffer
	if last > length-1 {
		last = length - 1
	}
	return first, last
}

// UpdateWindow reconciles the live window with the scroll position.
func (v *Virtualizer[H]) UpdateWindow(length int, rowHeight, scrollOffset, viewportHeight float64, buffer int) Change {
	first, last := Range(length, rowHeight, scrollOffset, viewportHeight, buffer)
	return v.Reconcile(first, last)
}

// Reconcile makes exactly the indices in [first, last] live. Leaving handles are cleaned
// and pooled; entering indices reuse pooled handles before new ones are created.
func (v *Virtualizer[H]) Reconcile(first, last int) Change {
	var ch Change
	for idx, h := range v.live {
		if idx < first || idx > last {
			ch.Exit = append(ch.Exit, idx)
			v.release(h)
			delete(v.live, idx)
		}
	}
	sort.Ints(ch.Exit)

	for idx := first; idx <= last; idx++ {
		if _, ok := v.live[idx]; ok {
			continue
		}
		v.live[idx] = v.acquire(idx)
		ch.Enter = append(ch.Enter, idx)
	}
	v.first, v.last = first, last
	if last < first {
		v.first, v.last = 0, -1
	}
	return ch
}

func (v *Virtualizer[H]) release(h H) {
	if v.cb.Cleanup != nil {
		v.cb.Cleanup(h)
	}
	v.pool = append(v.pool, h)
}

func (v *Virtualizer[H]) acquire(idx int) H {
	var h H
	if n := len(v.pool); n > 0 {
		h = v.pool[n-1]
		var zero H
		v.pool[n-1] = zero
		v.pool = v.pool[:n-1]
	} else {
		if v.cb.Create != nil {
			h = v.cb.Create(idx)
		}
		v.created++
	}
	if v.cb.Update != nil {
		v.cb.Update(h, idx)
	}
	return h
}

// Rebind calls Update on every live handle. Use it after the display list was rebuilt
// so handles show the rows now at their indices.
func (v *Virtualizer[H]) Rebind() {
	if v.cb.Update == nil {
		return
	}
	for _, idx := range v.Live() {
		v.cb.Update(v.live[idx], idx)
	}
}

// Handle returns the live handle at index.
func (v *Virtualizer[H]) Handle(index int) (H, bool) {
	h, ok := v.live[index]
	return h, ok
}

// Live lists the live indices in ascending order.
func (v *Virtualizer[H]) Live() []int {
	out := make([]int, 0, len(v.live))
	for idx := range v.live {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// Window returns the current inclusive window; last < first when empty.
func (v *Virtualizer[H]) Window() (first, last int) { return v.first, v.last }

// Pooled is the number of handles waiting for reuse.
func (v *Virtualizer[H]) Pooled() int { return len(v.pool) }

// Created is the number of handles the factory has produced.
func (v *Virtualizer[H]) Created() int { return v.created }

// Teardown cleans every live and pooled handle and forgets them all.
func (v *Virtualizer[H]) Teardown() {
	for _, idx := range v.Live() {
		if v.cb.Cleanup != nil {
			v.cb.Cleanup(v.live[idx])
		}
	}
	if v.cb.Cleanup != nil {
		for _, h := range v.pool {
			v.cb.Cleanup(h)
		}
	}
	clear(v.live)
	v.pool = nil
	v.first, v.last = 0, -1
}

// ContentExtent is the scrollable height of count rows, whether materialized or not.
func ContentExtent(count int, rowHeight float64) float64 {
	if count <= 0 || rowHeight <= 0 {
		return 0
	}
	return float64(count) * rowHeight
}

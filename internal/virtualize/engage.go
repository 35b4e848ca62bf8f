package virtualize

import "math"

// AutoEngage decides whether virtualization should be on. It engages once the item
// count exceeds twice the viewport capacity and stays engaged until the count drops
// below one capacity, so counts near the threshold don't flip it back and forth.
type AutoEngage struct {
	engaged bool
}

// Capacity is how many whole rows fit in the viewport, at least 1.
func Capacity(viewportHeight, rowHeight float64) int {
	if rowHeight <= 0 || viewportHeight <= 0 {
		return 1
	}
	c := int(math.Floor(viewportHeight / rowHeight))
	if c < 1 {
		return 1
	}
	return c
}

// Evaluate updates and returns the engaged state for itemCount rows.
func (a *AutoEngage) Evaluate(itemCount, capacity int) bool {
	if capacity < 1 {
		capacity = 1
	}
	switch {
	case !a.engaged && itemCount > 2*capacity:
		a.engaged = true
	case a.engaged && itemCount < capacity:
		a.engaged = false
	}
	return a.engaged
}

// Engaged reports the last decision.
func (a *AutoEngage) Engaged() bool { return a.engaged }

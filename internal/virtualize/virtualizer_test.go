package virtualize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type view struct {
	serial  int
	index   int
	bound   bool
	cleaned int
	updates int
}

type recorder struct {
	serial int
	events []string
	views  []*view
}

func (r *recorder) callbacks() Callbacks[*view] {
	return Callbacks[*view]{
		Create: func(int) *view {
			r.serial++
			v := &view{serial: r.serial, index: -1}
			r.views = append(r.views, v)
			return v
		},
		Update: func(v *view, index int) {
			if v.bound {
				r.events = append(r.events, "update-without-cleanup")
			}
			v.index = index
			v.bound = true
			v.updates++
		},
		Cleanup: func(v *view) {
			v.bound = false
			v.index = -1
			v.cleaned++
		},
	}
}

func TestRangeFormula(t *testing.T) {
	first, last := Range(100, 20, 0, 200, 0)
	require.Equal(t, 0, first)
	require.Equal(t, 10, last)

	first, last = Range(100, 20, 410, 200, 2)
	require.Equal(t, 18, first)
	require.Equal(t, 32, last)

	first, last = Range(5, 20, 0, 400, 3)
	require.Equal(t, 0, first)
	require.Equal(t, 4, last)

	first, last = Range(0, 20, 0, 400, 3)
	require.Greater(t, first, last)
}

func TestScrollAFullScreenRecyclesEveryHandle(t *testing.T) {
	rec := &recorder{}
	v := New(rec.callbacks())

	ch := v.UpdateWindow(1000, 10, 0, 100, 0)
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, ch.Enter)
	require.Empty(t, ch.Exit)
	require.Equal(t, 11, v.Created())

	ch = v.UpdateWindow(1000, 10, 200, 100, 0)
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, ch.Exit)
	require.Equal(t, []int{20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30}, ch.Enter)
	require.Equal(t, 11, v.Created(), "every entering index reused a pooled handle")
	require.Zero(t, v.Pooled())
	for _, idx := range ch.Exit {
		_, ok := v.Handle(idx)
		require.False(t, ok)
	}
	for _, idx := range ch.Enter {
		h, ok := v.Handle(idx)
		require.True(t, ok)
		require.Equal(t, idx, h.index)
	}
	require.Empty(t, rec.events, "cleanup always runs before a handle is rebound")
}

func TestLiveWindowNeverExceedsRange(t *testing.T) {
	rec := &recorder{}
	v := New(rec.callbacks())
	for _, off := range []float64{0, 35, 37, 400, 9990, 5, 123.5, 0} {
		v.UpdateWindow(1000, 10, off, 95, 3)
		first, last := v.Window()
		require.LessOrEqual(t, len(v.Live()), last-first+1)
		for _, idx := range v.Live() {
			require.GreaterOrEqual(t, idx, first)
			require.LessOrEqual(t, idx, last)
		}
	}
	require.LessOrEqual(t, v.Created(), 9+1+6+1)
}

func TestPartialScrollOnlyMovesEdges(t *testing.T) {
	rec := &recorder{}
	v := New(rec.callbacks())
	v.UpdateWindow(100, 10, 0, 50, 1)
	ch := v.UpdateWindow(100, 10, 20, 50, 1)
	require.Equal(t, []int{0}, ch.Exit)
	require.Equal(t, []int{7, 8}, ch.Enter)

	ch = v.UpdateWindow(100, 10, 20, 50, 1)
	require.True(t, ch.Empty())
}

func TestShrinkingListEvicts(t *testing.T) {
	rec := &recorder{}
	v := New(rec.callbacks())
	v.UpdateWindow(50, 10, 0, 100, 0)
	ch := v.UpdateWindow(3, 10, 0, 100, 0)
	require.Equal(t, []int{3, 4, 5, 6, 7, 8, 9, 10}, ch.Exit)
	require.Equal(t, []int{0, 1, 2}, v.Live())
	require.Equal(t, 8, v.Pooled())

	ch = v.UpdateWindow(0, 10, 0, 100, 0)
	require.Equal(t, []int{0, 1, 2}, ch.Exit)
	require.Empty(t, v.Live())
}

func TestRebindUpdatesLiveHandles(t *testing.T) {
	rec := &recorder{}
	v := New(rec.callbacks())
	v.UpdateWindow(10, 1, 0, 2, 0)
	v.Rebind()
	for _, idx := range v.Live() {
		h, _ := v.Handle(idx)
		require.Equal(t, 2, h.updates)
	}
}

func TestTeardownCleansIdempotently(t *testing.T) {
	rec := &recorder{}
	v := New(rec.callbacks())
	v.UpdateWindow(100, 10, 0, 40, 0)
	v.UpdateWindow(100, 10, 30, 40, 0) // 0..2 exit, 5..7 reuse them
	require.Zero(t, v.Pooled())
	require.Equal(t, 5, v.Created())
	v.UpdateWindow(100, 10, 30, 10, 0) // 3..4 live, 5..7 pooled
	require.Equal(t, 3, v.Pooled())
	require.Equal(t, []int{3, 4}, v.Live())

	v.Teardown()
	require.Empty(t, v.Live())
	require.Zero(t, v.Pooled())
	for _, h := range rec.views {
		require.False(t, h.bound)
		require.GreaterOrEqual(t, h.cleaned, 1)
	}
	first, last := v.Window()
	require.Greater(t, first, last)
}

func TestNilCallbacksAreTolerated(t *testing.T) {
	v := New(Callbacks[int]{})
	ch := v.UpdateWindow(10, 1, 0, 3, 0)
	require.Equal(t, []int{0, 1, 2, 3}, ch.Enter)
	v.Teardown()
}

func TestAutoEngageHysteresis(t *testing.T) {
	var a AutoEngage
	capacity := Capacity(200, 20)
	require.Equal(t, 10, capacity)

	require.False(t, a.Evaluate(20, capacity), "exactly 2x stays off")
	require.True(t, a.Evaluate(21, capacity))
	require.True(t, a.Evaluate(15, capacity), "between 1x and 2x keeps the previous state")
	require.True(t, a.Evaluate(10, capacity))
	require.False(t, a.Evaluate(9, capacity))
	require.False(t, a.Evaluate(15, capacity))
	require.Equal(t, 1, Capacity(5, 20))
}

func TestContentExtent(t *testing.T) {
	require.Equal(t, 25000.0, ContentExtent(1000, 25))
	require.Zero(t, ContentExtent(0, 25))
}

package grid

import "github.com/stef-k/datagrid/internal/virtualize"

// Window is the row window a host attaches to the engine. *virtualize.Virtualizer
// satisfies it.
type Window interface {
	Reconcile(first, last int) virtualize.Change
	Rebind()
	Teardown()
}

// AttachWindow connects a row window. Any previous window is torn down.
func (e *Engine[R]) AttachWindow(w Window) {
	if e.window != nil && e.window != w {
		e.window.Teardown()
	}
	e.window = w
	if w != nil {
		e.reconcile()
	}
}

// Scroll records the scroll position and viewport height and reconciles the window.
func (e *Engine[R]) Scroll(offset, viewportHeight float64) virtualize.Change {
	e.scroll = offset
	e.viewport = viewportHeight
	if e.window == nil {
		return virtualize.Change{}
	}
	return e.reconcile()
}

// Virtualized reports whether the display list is windowed. Short lists materialize
// every row.
func (e *Engine[R]) Virtualized() bool { return e.auto.Engaged() }

// VisibleRange returns the inclusive display indices that should be materialized.
// Until the host reports a viewport height through Scroll the range is empty.
func (e *Engine[R]) VisibleRange() (first, last int) {
	if e.viewport <= 0 {
		return 0, -1
	}
	n := len(e.pipe.Display())
	if !e.auto.Evaluate(n, virtualize.Capacity(e.viewport, e.opts.RowHeight)) {
		return 0, n - 1
	}
	return virtualize.Range(n, e.opts.RowHeight, e.scroll, e.viewport, e.opts.Buffer)
}

// ContentExtent is the scrollable height of the display list.
func (e *Engine[R]) ContentExtent() float64 {
	return virtualize.ContentExtent(len(e.pipe.Display()), e.opts.RowHeight)
}

func (e *Engine[R]) reconcile() virtualize.Change {
	first, last := e.VisibleRange()
	return e.window.Reconcile(first, last)
}

package grid

import (
	"fmt"

	"github.com/stef-k/datagrid/internal/column"
	"github.com/stef-k/datagrid/internal/history"
	"github.com/stef-k/datagrid/internal/width"
)

// Layouts returns the sizing state of every column, in column order, for presets.
func (e *Engine[R]) Layouts() []*column.Layout {
	out := make([]*column.Layout, len(e.columns))
	for i, c := range e.columns {
		out[i] = &c.Layout
	}
	return out
}

// Resize resolves column widths for the available space.
func (e *Engine[R]) Resize(available float64) width.Widths {
	e.available = available
	return e.resolver.Resolve(e.Layouts(), available)
}

// Widths returns the last resolved widths.
func (e *Engine[R]) Widths() width.Widths { return e.resolver.Last() }

// Resolver exposes the width resolver, mainly for its OnResolved hook.
func (e *Engine[R]) Resolver() *width.Resolver { return e.resolver }

type sizing struct {
	Policy column.SizingPolicy
	Width  float64
}

// ResizeColumn pins a column to a fixed width, as a user drag would, and records the
// change for undo.
func (e *Engine[R]) ResizeColumn(columnID string, w float64) error {
	c, err := e.Column(columnID)
	if err != nil {
		return err
	}
	if w < 0 {
		return fmt.Errorf("%w: %s width %.0f", column.ErrInvalidWidth, columnID, w)
	}
	op := &history.PropertyChange[sizing]{
		Desc: "Resize " + c.Header,
		Old:  sizing{Policy: c.Policy, Width: c.Width},
		New:  sizing{Policy: column.Fixed, Width: c.Clamp(w)},
		Apply: func(s sizing) error {
			c.Policy = s.Policy
			c.Width = s.Width
			e.Resize(e.available)
			return nil
		},
	}
	if err := op.Redo(); err != nil {
		return err
	}
	e.history.Push(op)
	return nil
}

// SetColumnVisible shows or hides a column and records the change for undo.
func (e *Engine[R]) SetColumnVisible(columnID string, visible bool) error {
	c, err := e.Column(columnID)
	if err != nil {
		return err
	}
	if c.Visible == visible {
		return nil
	}
	desc := "Hide " + c.Header
	if visible {
		desc = "Show " + c.Header
	}
	op := &history.PropertyChange[bool]{
		Desc: desc,
		Old:  c.Visible,
		New:  visible,
		Apply: func(v bool) error {
			c.Visible = v
			e.Resize(e.available)
			e.Refresh()
			return nil
		},
	}
	if err := op.Redo(); err != nil {
		return err
	}
	e.history.Push(op)
	return nil
}

// VisibleColumns lists the visible columns in display order.
func (e *Engine[R]) VisibleColumns() []*column.Column[R] {
	out := make([]*column.Column[R], 0, len(e.columns))
	for _, c := range e.columns {
		if c.Visible {
			out = append(out, c)
		}
	}
	return out
}

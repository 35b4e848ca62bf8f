// Package grid ties the column model, data pipeline, width resolver, row window, undo
// history and edit state machine into one engine a rendering host drives.
package grid

import (
	"fmt"
	"log/slog"

	"github.com/stef-k/datagrid/internal/column"
	"github.com/stef-k/datagrid/internal/edit"
	"github.com/stef-k/datagrid/internal/history"
	"github.com/stef-k/datagrid/internal/pipeline"
	"github.com/stef-k/datagrid/internal/virtualize"
	"github.com/stef-k/datagrid/internal/width"
)

// Options configures an Engine. The zero value is usable: editing off, no paging,
// unbounded history, 1 px character cells.
type Options struct {
	Editing    bool
	RequireRow bool
	MultiSort  bool
	UndoLimit  int

	Paging   bool
	PageSize int

	RowHeight float64
	Buffer    int

	CharWidth   float64
	Affordances width.Affordances

	Logger *slog.Logger
}

// Engine is the tabular data engine over rows of type R. Rows are compared by
// identity, so R is normally a pointer type. It is not safe for concurrent use.
type Engine[R comparable] struct {
	opts Options
	log  *slog.Logger

	columns []*column.Column[R]
	byID    map[string]*column.Column[R]

	items []R
	pipe  *pipeline.Pipeline[R]

	search  string
	filters map[string]pipeline.Filter
	sort    pipeline.SortState
	page    int

	resolver  *width.Resolver
	available float64

	history *history.Stack
	editor  *edit.Editor[R]

	window   Window
	auto     virtualize.AutoEngage
	scroll   float64
	viewport float64

	// OnDisplayChanged runs after the display list was rebuilt.
	OnDisplayChanged func()
	// OnHistory receives every history event after the engine reacted to it.
	OnHistory func(history.Event)
	// OnCommitted runs after a cell edit was written through its setter.
	OnCommitted func(row R, col *column.Column[R])
	// OnRowsChanged runs after a row was inserted or removed, including by undo.
	OnRowsChanged func(row R, inserted bool)
}

// New validates the columns and returns an empty engine.
func New[R comparable](cols []*column.Column[R], opts Options) (*Engine[R], error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	byID := make(map[string]*column.Column[R], len(cols))
	for _, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("grid: nil column")
		}
		if err := c.Check(); err != nil {
			return nil, fmt.Errorf("grid: %w", err)
		}
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("grid: %w: %s", ErrDuplicateColumn, c.ID)
		}
		byID[c.ID] = c
	}
	if opts.RowHeight <= 0 {
		opts.RowHeight = 1
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 50
	}

	e := &Engine[R]{
		opts:     opts,
		log:      log,
		columns:  cols,
		byID:     byID,
		pipe:     pipeline.New(cols),
		filters:  make(map[string]pipeline.Filter),
		sort:     pipeline.SortState{Multi: opts.MultiSort},
		page:     1,
		resolver: width.NewResolver(opts.CharWidth, opts.Affordances, log),
		history:  history.New(opts.UndoLimit, log),
	}
	e.editor = edit.New[R](e.history, log)
	e.editor.SetEnabled(opts.Editing)
	e.editor.SetRequireRow(opts.RequireRow)
	e.editor.OnCommitted = func(row R, col *column.Column[R], _, _ any) {
		e.Refresh()
		if e.OnCommitted != nil {
			e.OnCommitted(row, col)
		}
	}
	e.history.OnChange = e.onHistory
	return e, nil
}

func (e *Engine[R]) onHistory(ev history.Event) {
	switch ev.Kind {
	case history.Undone, history.Redone:
		e.Refresh()
	}
	if e.OnHistory != nil {
		e.OnHistory(ev)
	}
}

// Columns returns the column set in display order.
func (e *Engine[R]) Columns() []*column.Column[R] { return e.columns }

// Column looks up a column by id.
func (e *Engine[R]) Column(id string) (*column.Column[R], error) {
	c, ok := e.byID[id]
	if !ok {
		return nil, unknownColumn(id, e.columnIDs())
	}
	return c, nil
}

func (e *Engine[R]) columnIDs() []string {
	ids := make([]string, len(e.columns))
	for i, c := range e.columns {
		ids[i] = c.ID
	}
	return ids
}

// History exposes the undo stack.
func (e *Engine[R]) History() *history.Stack { return e.history }

// Editor exposes the edit state machine.
func (e *Engine[R]) Editor() *edit.Editor[R] { return e.editor }

// SetItems replaces the row collection. History is cleared because recorded
// structural operations refer to the old collection.
func (e *Engine[R]) SetItems(items []R) {
	e.editor.CancelEdit()
	e.items = append([]R(nil), items...)
	e.history.Clear()
	e.editor.CollectionChanged(e.items)
	e.Refresh()
}

// Items returns the raw row collection in source order.
func (e *Engine[R]) Items() []R { return e.items }

// InsertAt inserts row at index without recording history.
func (e *Engine[R]) InsertAt(index int, row R) error {
	if index < 0 || index > len(e.items) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	var zero R
	e.items = append(e.items, zero)
	copy(e.items[index+1:], e.items[index:])
	e.items[index] = row
	e.rowsChanged(row, true)
	return nil
}

// RemoveAt removes the row at index without recording history.
func (e *Engine[R]) RemoveAt(index int) (R, error) {
	var zero R
	if index < 0 || index >= len(e.items) {
		return zero, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	row := e.items[index]
	e.items = append(e.items[:index], e.items[index+1:]...)
	e.rowsChanged(row, false)
	return row, nil
}

func (e *Engine[R]) rowsChanged(row R, inserted bool) {
	e.editor.CollectionChanged(e.items)
	e.Refresh()
	if e.OnRowsChanged != nil {
		e.OnRowsChanged(row, inserted)
	}
}

// InsertRow inserts row at index and records it for undo.
func (e *Engine[R]) InsertRow(index int, row R) error {
	if err := e.InsertAt(index, row); err != nil {
		return err
	}
	e.history.Push(&history.RowInserted[R]{Source: e, Row: row, Index: index})
	return nil
}

// AppendRow adds row at the end of the collection.
func (e *Engine[R]) AppendRow(row R) error {
	return e.InsertRow(len(e.items), row)
}

// RemoveRow removes row and records it for undo.
func (e *Engine[R]) RemoveRow(row R) error {
	idx := e.IndexOf(row)
	if idx < 0 {
		return ErrRowNotFound
	}
	if _, err := e.RemoveAt(idx); err != nil {
		return err
	}
	e.history.Push(&history.RowRemoved[R]{Source: e, Row: row, Index: idx})
	return nil
}

// IndexOf returns the source index of row, or -1.
func (e *Engine[R]) IndexOf(row R) int {
	for i, r := range e.items {
		if r == row {
			return i
		}
	}
	return -1
}

func (e *Engine[R]) query() pipeline.Query {
	return pipeline.Query{
		Search:  e.search,
		Filters: e.filters,
		Sort:    e.sort.Keys(),
		Page:    pipeline.Page{Enabled: e.opts.Paging, Number: e.page, Size: e.opts.PageSize},
	}
}

// Refresh recomputes the display list from the current items and query state and
// rebinds the row window.
func (e *Engine[R]) Refresh() {
	display := e.pipe.Compute(e.items, e.query())
	e.log.Debug("display recomputed", "items", len(e.items), "total", e.pipe.Total(), "shown", len(display))
	if e.window != nil {
		e.reconcile()
		e.window.Rebind()
	}
	if e.OnDisplayChanged != nil {
		e.OnDisplayChanged()
	}
}

// Display is the current ordered display list.
func (e *Engine[R]) Display() []R { return e.pipe.Display() }

// Total is the number of rows passing search and filters, before paging.
func (e *Engine[R]) Total() int { return e.pipe.Total() }

// Summary computes a column footer over the rows passing search and filters.
func (e *Engine[R]) Summary(columnID string) (column.Summary, error) {
	c, err := e.Column(columnID)
	if err != nil {
		return column.Summary{}, err
	}
	return column.Summarize(c, e.pipe.Filtered()), nil
}

// BeginEdit starts editing a cell.
func (e *Engine[R]) BeginEdit(row R, columnID string) (bool, error) {
	c, err := e.Column(columnID)
	if err != nil {
		return false, err
	}
	return e.editor.BeginEdit(row, c)
}

func (e *Engine[R]) SetPending(v any) error { return e.editor.SetPending(v) }
func (e *Engine[R]) CommitEdit() (column.Outcome, error) { return e.editor.CommitEdit() }
func (e *Engine[R]) CancelEdit() { e.editor.CancelEdit() }
func (e *Engine[R]) Valid() bool { return e.editor.Valid() }
func (e *Engine[R]) Errors() []edit.CellError[R] { return e.editor.Errors() }
func (e *Engine[R]) Undo() (bool, error) { return e.history.Undo() }
func (e *Engine[R]) Redo() (bool, error) { return e.history.Redo() }
func (e *Engine[R]) BeginBatch(desc string) { e.history.BeginBatch(desc) }
func (e *Engine[R]) EndBatch() error { return e.history.EndBatch() }

// CancelBatch unwinds the open batch and rebuilds the display list.
func (e *Engine[R]) CancelBatch() error {
	err := e.history.CancelBatch()
	e.Refresh()
	return err
}

// Teardown releases every row handle and drops history.
func (e *Engine[R]) Teardown() {
	e.editor.CancelEdit()
	if e.window != nil {
		e.window.Teardown()
		e.window = nil
	}
	e.history.Clear()
}

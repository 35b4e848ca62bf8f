// Package edit implements the cell edit lifecycle: begin, pending value, validation,
// commit through the column setter, and cancel.
package edit

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/stef-k/datagrid/internal/column"
	"github.com/stef-k/datagrid/internal/history"
)

// State of the editor.
type State int

const (
	Idle State = iota
	Editing
	Committing
	Cancelling
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Editing:
		return "editing"
	case Committing:
		return "committing"
	case Cancelling:
		return "cancelling"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var ErrNotEditing = errors.New("no cell is being edited")

// CellError holds the messages of the last failed validation of one cell.
type CellError[R comparable] struct {
	Row      R
	Column   string
	Messages []string
}

// Editor drives one active cell edit at a time and tracks validation errors for the
// whole grid.
type Editor[R comparable] struct {
	history *history.Stack
	log     *slog.Logger

	enabled    bool
	requireRow bool

	state    State
	row      R
	col      *column.Column[R]
	original any
	pending  any

	errs     []CellError[R]
	rowCount int
	valid    bool

	OnValidityChanged func(valid bool)
	OnCommitted       func(row R, col *column.Column[R], old, new any)
}

// New returns an idle editor with editing enabled. hist may be nil when edits need no
// undo entries.
func New[R comparable](hist *history.Stack, log *slog.Logger) *Editor[R] {
	if log == nil {
		log = slog.Default()
	}
	return &Editor[R]{history: hist, log: log, enabled: true, valid: true}
}

func (e *Editor[R]) SetEnabled(on bool) { e.enabled = on }
func (e *Editor[R]) Enabled() bool { return e.enabled }
func (e *Editor[R]) State() State { return e.state }

// SetRequireRow makes an empty collection invalid.
func (e *Editor[R]) SetRequireRow(on bool) {
	e.requireRow = on
	e.recompute()
}

// BeginEdit starts editing col on row. It reports false when the cell cannot be edited
// or when the previously active cell failed validation while being committed.
func (e *Editor[R]) BeginEdit(row R, col *column.Column[R]) (bool, error) {
	if !e.enabled || col == nil || !col.CanEdit() {
		return false, nil
	}
	switch e.state {
	case Committing, Cancelling:
		return false, nil
	case Editing:
		if e.row == row && e.col == col {
			return true, nil
		}
		out, err := e.CommitEdit()
		if err != nil {
			return false, err
		}
		if !out.Valid() {
			return false, nil
		}
	}
	e.row = row
	e.col = col
	e.original = col.Value(row)
	e.pending = e.original
	e.state = Editing
	return true, nil
}

// SetPending replaces the pending value of the active cell.
func (e *Editor[R]) SetPending(v any) error {
	if e.state != Editing {
		return ErrNotEditing
	}
	e.pending = v
	return nil
}

func (e *Editor[R]) Pending() any { return e.pending }
func (e *Editor[R]) Original() any { return e.original }

// Active returns the cell being edited.
func (e *Editor[R]) Active() (row R, col *column.Column[R], ok bool) {
	if e.state == Idle {
		var zero R
		return zero, nil, false
	}
	return e.row, e.col, true
}

// Validate runs the active column's validator on the pending value and records the
// outcome without committing.
func (e *Editor[R]) Validate() (column.Outcome, error) {
	if e.state != Editing {
		return column.Ok(), ErrNotEditing
	}
	out := e.check()
	e.record(out)
	return out, nil
}

func (e *Editor[R]) check() column.Outcome {
	if e.col.Validate == nil {
		return column.Ok()
	}
	return e.col.Validate(e.row, e.pending)
}

func (e *Editor[R]) record(out column.Outcome) {
	if out.Valid() {
		e.dropError(e.row, e.col.ID)
	} else {
		e.setError(e.row, e.col.ID, out.Errors)
	}
	e.recompute()
}

// CommitEdit validates the pending value and writes it through the column setter. A
// failed validation keeps the cell in Editing with its errors recorded. An undo entry
// is pushed only when the value changed. When the setter fails or panics the editor
// returns to Editing and nothing is recorded.
func (e *Editor[R]) CommitEdit() (column.Outcome, error) {
	if e.state != Editing {
		return column.Ok(), nil
	}
	e.state = Committing

	out := e.check()
	e.record(out)
	if !out.Valid() {
		e.state = Editing
		return out, nil
	}

	row, col, old, val := e.row, e.col, e.original, e.pending
	if err := e.set(row, col, val); err != nil {
		e.state = Editing
		e.log.Warn("cell setter failed", "column", col.ID, "err", err)
		return out, fmt.Errorf("set %s: %w", col.ID, err)
	}
	if !column.Equal(old, val) {
		if e.history != nil {
			e.history.Push(&history.CellEdit[R]{Row: row, Column: col, Old: old, New: val})
		}
		if e.OnCommitted != nil {
			e.OnCommitted(row, col, old, val)
		}
	}
	e.reset()
	return out, nil
}

func (e *Editor[R]) set(row R, col *column.Column[R], v any) error {
	defer func() {
		if r := recover(); r != nil {
			e.state = Editing
			panic(r)
		}
	}()
	return col.Set(row, v)
}

// CancelEdit discards the pending value and the cell's recorded error.
func (e *Editor[R]) CancelEdit() {
	if e.state != Editing {
		return
	}
	e.state = Cancelling
	e.dropError(e.row, e.col.ID)
	e.reset()
	e.recompute()
}

func (e *Editor[R]) reset() {
	var zero R
	e.row = zero
	e.col = nil
	e.original = nil
	e.pending = nil
	e.state = Idle
}

// CollectionChanged tells the editor the row set changed. Errors of rows that are gone
// are dropped, and an edit on a removed row is cancelled.
func (e *Editor[R]) CollectionChanged(rows []R) {
	present := make(map[R]struct{}, len(rows))
	for _, r := range rows {
		present[r] = struct{}{}
	}
	e.rowCount = len(rows)
	kept := e.errs[:0]
	for _, ce := range e.errs {
		if _, ok := present[ce.Row]; ok {
			kept = append(kept, ce)
		}
	}
	e.errs = kept
	if e.state == Editing {
		if _, ok := present[e.row]; !ok {
			e.CancelEdit()
		}
	}
	e.recompute()
}

// Valid reports the aggregate validity: rows are present when required and no cell
// has a recorded error.
func (e *Editor[R]) Valid() bool { return e.valid }

// Errors lists recorded cell errors in the order they were first recorded.
func (e *Editor[R]) Errors() []CellError[R] {
	return append([]CellError[R](nil), e.errs...)
}

// CellErrors returns the recorded messages for one cell.
func (e *Editor[R]) CellErrors(row R, columnID string) []string {
	for _, ce := range e.errs {
		if ce.Row == row && ce.Column == columnID {
			return ce.Messages
		}
	}
	return nil
}

func (e *Editor[R]) setError(row R, columnID string, msgs []string) {
	for i := range e.errs {
		if e.errs[i].Row == row && e.errs[i].Column == columnID {
			e.errs[i].Messages = msgs
			return
		}
	}
	e.errs = append(e.errs, CellError[R]{Row: row, Column: columnID, Messages: msgs})
}

func (e *Editor[R]) dropError(row R, columnID string) {
	for i := range e.errs {
		if e.errs[i].Row == row && e.errs[i].Column == columnID {
			e.errs = append(e.errs[:i], e.errs[i+1:]...)
			return
		}
	}
}

func (e *Editor[R]) recompute() {
	valid := len(e.errs) == 0 && (!e.requireRow || e.rowCount > 0)
	if valid == e.valid {
		return
	}
	e.valid = valid
	e.log.Debug("grid validity changed", "valid", valid)
	if e.OnValidityChanged != nil {
		e.OnValidityChanged(valid)
	}
}

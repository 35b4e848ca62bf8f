package history

import (
	"errors"
	"fmt"

	"github.com/stef-k/datagrid/internal/column"
)

// Batch groups operations into one undo step. Undo runs the children in reverse and
// Redo runs them forward; a failure part way rolls the already applied children back
// so the batch stays all-or-nothing.
type Batch struct {
	Desc string
	Ops  []Operation
}

func (b *Batch) Description() string { return b.Desc }

func (b *Batch) Undo() error {
	for i := len(b.Ops) - 1; i >= 0; i-- {
		if err := b.Ops[i].Undo(); err != nil {
			var errs []error
			for j := i + 1; j < len(b.Ops); j++ {
				if rerr := b.Ops[j].Redo(); rerr != nil {
					errs = append(errs, rerr)
				}
			}
			return errors.Join(append([]error{err}, errs...)...)
		}
	}
	return nil
}

func (b *Batch) Redo() error {
	for i, op := range b.Ops {
		if err := op.Redo(); err != nil {
			var errs []error
			for j := i - 1; j >= 0; j-- {
				if uerr := b.Ops[j].Undo(); uerr != nil {
					errs = append(errs, uerr)
				}
			}
			return errors.Join(append([]error{err}, errs...)...)
		}
	}
	return nil
}

// Children exposes the grouped operations.
func (b *Batch) Children() []Operation { return b.Ops }

// CellEdit is a committed value change of one cell.
type CellEdit[R any] struct {
	Row    R
	Column *column.Column[R]
	Old    any
	New    any
}

func (c *CellEdit[R]) Description() string {
	return fmt.Sprintf("Edit %s", c.Column.Header)
}

func (c *CellEdit[R]) Undo() error { return c.Column.Set(c.Row, c.Old) }
func (c *CellEdit[R]) Redo() error { return c.Column.Set(c.Row, c.New) }

// Rows returns the edited row.
func (c *CellEdit[R]) Rows() []R { return []R{c.Row} }

// RowCollection is a mutable ordered row source.
type RowCollection[R comparable] interface {
	InsertAt(index int, row R) error
	RemoveAt(index int) (R, error)
}

// ErrRowMismatch is returned when the row at a recorded index is not the recorded row.
var ErrRowMismatch = errors.New("row at index does not match recorded row")

// RowInserted records that Row was inserted at Index.
type RowInserted[R comparable] struct {
	Source RowCollection[R]
	Row    R
	Index  int
}

func (o *RowInserted[R]) Description() string { return "Insert row" }
func (o *RowInserted[R]) Undo() error { return removeExact(o.Source, o.Index, o.Row) }
func (o *RowInserted[R]) Redo() error { return o.Source.InsertAt(o.Index, o.Row) }
func (o *RowInserted[R]) Rows() []R { return []R{o.Row} }

// RowRemoved records that Row was removed from Index.
type RowRemoved[R comparable] struct {
	Source RowCollection[R]
	Row    R
	Index  int
}

func (o *RowRemoved[R]) Description() string { return "Delete row" }
func (o *RowRemoved[R]) Undo() error { return o.Source.InsertAt(o.Index, o.Row) }
func (o *RowRemoved[R]) Redo() error { return removeExact(o.Source, o.Index, o.Row) }
func (o *RowRemoved[R]) Rows() []R { return []R{o.Row} }

func removeExact[R comparable](rows RowCollection[R], index int, want R) error {
	got, err := rows.RemoveAt(index)
	if err != nil {
		return err
	}
	if got != want {
		if err := rows.InsertAt(index, got); err != nil {
			return errors.Join(ErrRowMismatch, err)
		}
		return fmt.Errorf("index %d: %w", index, ErrRowMismatch)
	}
	return nil
}

// PropertyChange records a change of a single value applied through Apply, such as a
// column width or visibility.
type PropertyChange[T any] struct {
	Desc  string
	Old   T
	New   T
	Apply func(T) error
}

func (p *PropertyChange[T]) Description() string { return p.Desc }
func (p *PropertyChange[T]) Undo() error { return p.Apply(p.Old) }
func (p *PropertyChange[T]) Redo() error { return p.Apply(p.New) }

// Func adapts a pair of closures into an Operation.
type Func struct {
	Desc     string
	UndoFunc func() error
	RedoFunc func() error
}

func (f Func) Description() string { return f.Desc }
func (f Func) Undo() error { return f.UndoFunc() }
func (f Func) Redo() error { return f.RedoFunc() }

// RowsOf collects the rows an operation touched, descending into batches. Operations
// that don't expose rows contribute nothing.
func RowsOf[R comparable](op Operation) []R {
	var out []R
	var walk func(Operation)
	walk = func(op Operation) {
		switch v := op.(type) {
		case *Batch:
			for _, c := range v.Ops {
				walk(c)
			}
		case interface{ Rows() []R }:
			out = append(out, v.Rows()...)
		}
	}
	walk(op)
	return out
}

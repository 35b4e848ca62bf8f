package edit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stef-k/datagrid/internal/column"
	"github.com/stef-k/datagrid/internal/history"
)

type rec struct {
	name string
	qty  float64
}

func nameCol() *column.Column[*rec] {
	return &column.Column[*rec]{
		Layout:   column.Layout{ID: "name", Header: "Name"},
		Editable: true,
		Get:      func(r *rec) any { return r.name },
		Set: func(r *rec, v any) error {
			r.name = v.(string)
			return nil
		},
		Validate: column.Rules[*rec](column.Required(), column.MaxLen(8)),
	}
}

func qtyCol() *column.Column[*rec] {
	return &column.Column[*rec]{
		Layout:   column.Layout{ID: "qty", Header: "Qty"},
		Editable: true,
		Get:      func(r *rec) any { return r.qty },
		Set: func(r *rec, v any) error {
			f, ok := column.ToFloat(v)
			if !ok {
				return errors.New("not a number")
			}
			r.qty = f
			return nil
		},
		Validate: column.Rules[*rec](column.Range(0, 100)),
	}
}

func TestCommitRecordsUndo(t *testing.T) {
	h := history.New(0, nil)
	e := New[*rec](h, nil)
	r := &rec{name: "apple"}
	col := nameCol()

	ok, err := e.BeginEdit(r, col)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Editing, e.State())
	require.Equal(t, "apple", e.Original())
	require.NoError(t, e.SetPending("pear"))

	out, err := e.CommitEdit()
	require.NoError(t, err)
	require.True(t, out.Valid())
	require.Equal(t, Idle, e.State())
	require.Equal(t, "pear", r.name)
	require.Equal(t, "Edit Name", h.UndoDescription())

	_, err = h.Undo()
	require.NoError(t, err)
	require.Equal(t, "apple", r.name)
	_, err = h.Redo()
	require.NoError(t, err)
	require.Equal(t, "pear", r.name)
}

func TestUnchangedCommitPushesNothing(t *testing.T) {
	h := history.New(0, nil)
	e := New[*rec](h, nil)
	r := &rec{name: "apple"}
	col := nameCol()
	var writes []any
	set := col.Set
	col.Set = func(r *rec, v any) error {
		writes = append(writes, v)
		return set(r, v)
	}
	committed := false
	e.OnCommitted = func(*rec, *column.Column[*rec], any, any) { committed = true }

	_, _ = e.BeginEdit(r, col)
	_, err := e.CommitEdit()
	require.NoError(t, err)
	require.Equal(t, []any{"apple"}, writes, "a valid commit always writes through the setter")
	require.False(t, h.CanUndo())
	require.False(t, committed)
	require.Equal(t, Idle, e.State())
}

func TestInvalidCommitStaysEditing(t *testing.T) {
	h := history.New(0, nil)
	e := New[*rec](h, nil)
	var flips []bool
	e.OnValidityChanged = func(v bool) { flips = append(flips, v) }
	r := &rec{name: "apple"}
	col := nameCol()

	_, _ = e.BeginEdit(r, col)
	_ = e.SetPending("much too long")
	out, err := e.CommitEdit()
	require.NoError(t, err)
	require.False(t, out.Valid())
	require.Equal(t, Editing, e.State())
	require.Equal(t, "apple", r.name)
	require.False(t, e.Valid())
	require.Equal(t, []string{"max 8 characters"}, e.CellErrors(r, "name"))

	_ = e.SetPending("kiwi")
	out, err = e.CommitEdit()
	require.NoError(t, err)
	require.True(t, out.Valid())
	require.True(t, e.Valid())
	require.Empty(t, e.Errors())
	require.Equal(t, []bool{false, true}, flips)
}

func TestCancelDiscardsPendingAndError(t *testing.T) {
	e := New[*rec](nil, nil)
	r := &rec{name: "apple"}
	_, _ = e.BeginEdit(r, nameCol())
	_ = e.SetPending("")
	out, _ := e.Validate()
	require.False(t, out.Valid())
	require.False(t, e.Valid())

	e.CancelEdit()
	require.Equal(t, Idle, e.State())
	require.Equal(t, "apple", r.name)
	require.True(t, e.Valid())
	require.ErrorIs(t, e.SetPending("x"), ErrNotEditing)
	_, _, ok := e.Active()
	require.False(t, ok)
}

func TestBeginEditRejections(t *testing.T) {
	e := New[*rec](nil, nil)
	r := &rec{}
	ro := nameCol()
	ro.ReadOnly = true
	ok, _ := e.BeginEdit(r, ro)
	require.False(t, ok)

	noEdit := nameCol()
	noEdit.Editable = false
	ok, _ = e.BeginEdit(r, noEdit)
	require.False(t, ok)

	e.SetEnabled(false)
	ok, _ = e.BeginEdit(r, nameCol())
	require.False(t, ok)
	require.Equal(t, Idle, e.State())
}

func TestBeginEditCommitsPreviousCell(t *testing.T) {
	h := history.New(0, nil)
	e := New[*rec](h, nil)
	a, b := &rec{name: "a"}, &rec{name: "b"}
	name := nameCol()

	_, _ = e.BeginEdit(a, name)
	_ = e.SetPending("aa")
	ok, err := e.BeginEdit(b, name)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "aa", a.name)
	row, _, _ := e.Active()
	require.Same(t, b, row)

	// the active edit is invalid, so moving on is refused
	_ = e.SetPending("")
	ok, err = e.BeginEdit(a, name)
	require.NoError(t, err)
	require.False(t, ok)
	row, _, _ = e.Active()
	require.Same(t, b, row)
	require.Equal(t, Editing, e.State())

	// beginning the same cell again is a no-op
	ok, _ = e.BeginEdit(b, name)
	require.True(t, ok)
	require.Equal(t, "", e.Pending())
}

func TestSetterErrorReturnsToEditing(t *testing.T) {
	h := history.New(0, nil)
	e := New[*rec](h, nil)
	r := &rec{qty: 1}
	col := qtyCol()
	col.Validate = nil
	_, _ = e.BeginEdit(r, col)
	_ = e.SetPending("abc")
	_, err := e.CommitEdit()
	require.Error(t, err)
	require.Equal(t, Editing, e.State())
	require.False(t, h.CanUndo())
	require.Equal(t, 1.0, r.qty)
}

func TestSetterPanicRestoresEditing(t *testing.T) {
	e := New[*rec](nil, nil)
	col := nameCol()
	col.Set = func(*rec, any) error { panic("setter exploded") }
	r := &rec{name: "x"}
	_, _ = e.BeginEdit(r, col)
	_ = e.SetPending("y")
	require.PanicsWithValue(t, "setter exploded", func() { _, _ = e.CommitEdit() })
	require.Equal(t, Editing, e.State())
	e.CancelEdit()
	require.Equal(t, Idle, e.State())
}

func TestRequireRowAndCollectionChanged(t *testing.T) {
	e := New[*rec](nil, nil)
	e.SetRequireRow(true)
	require.False(t, e.Valid())

	a, b := &rec{name: "a"}, &rec{name: "b"}
	e.CollectionChanged([]*rec{a, b})
	require.True(t, e.Valid())

	_, _ = e.BeginEdit(a, nameCol())
	_ = e.SetPending("")
	_, _ = e.CommitEdit()
	require.False(t, e.Valid())
	require.Len(t, e.Errors(), 1)

	// removing the invalid row drops its error and ends the edit
	e.CollectionChanged([]*rec{b})
	require.True(t, e.Valid())
	require.Empty(t, e.Errors())
	require.Equal(t, Idle, e.State())

	e.CollectionChanged(nil)
	require.False(t, e.Valid())
	e.SetRequireRow(false)
	require.True(t, e.Valid())
}

func TestOnCommitted(t *testing.T) {
	e := New[*rec](nil, nil)
	var got []any
	e.OnCommitted = func(r *rec, c *column.Column[*rec], old, new any) {
		got = append(got, c.ID, old, new)
	}
	r := &rec{qty: 2}
	_, _ = e.BeginEdit(r, qtyCol())
	_ = e.SetPending(5.0)
	_, err := e.CommitEdit()
	require.NoError(t, err)
	require.Equal(t, []any{"qty", 2.0, 5.0}, got)
	require.Equal(t, "committing", Committing.String())
}

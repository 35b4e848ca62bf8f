// Package history records undoable operations on a bounded two-stack history with
// batch grouping.
package history

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

var (
	ErrBatchNotOpen = errors.New("no batch is open")
	ErrBatchOpen    = errors.New("a batch is open")
)

// Operation is a reversible change.
type Operation interface {
	Description() string
	Undo() error
	Redo() error
}

// Entry is one slot of the undo or redo stack.
type Entry struct {
	ID uuid.UUID
	Op Operation
}

// EventKind says what happened to an entry.
type EventKind int

const (
	Pushed EventKind = iota
	Undone
	Redone
	Cleared
)

func (k EventKind) String() string {
	switch k {
	case Pushed:
		return "pushed"
	case Undone:
		return "undone"
	case Redone:
		return "redone"
	case Cleared:
		return "cleared"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is passed to Stack.OnChange after the stacks changed.
type Event struct {
	Kind  EventKind
	Entry Entry
}

// Stack is the undo/redo history. It is not safe for concurrent use.
type Stack struct {
	undo  []Entry
	redo  []Entry
	limit int

	batch *Batch
	depth int

	applying bool

	OnChange func(Event)

	log *slog.Logger
}

// New returns a history holding at most limit undo entries; limit <= 0 is unbounded.
func New(limit int, log *slog.Logger) *Stack {
	if log == nil {
		log = slog.Default()
	}
	return &Stack{limit: limit, log: log}
}

// Push records an already applied operation. Inside a batch the operation joins the
// batch. Pushes made while an undo or redo is being applied are dropped, so operations
// that re-enter through setters don't record themselves twice.
func (s *Stack) Push(op Operation) {
	if op == nil || s.applying {
		return
	}
	if s.depth > 0 {
		s.batch.Ops = append(s.batch.Ops, op)
		return
	}
	s.record(op)
}

func (s *Stack) record(op Operation) {
	e := Entry{ID: uuid.New(), Op: op}
	s.undo = append(s.undo, e)
	s.redo = nil
	s.trim()
	s.emit(Pushed, e)
}

// Undo reverts the newest entry. It reports false when there was nothing to undo. A
// failing operation stays on the undo stack.
func (s *Stack) Undo() (bool, error) {
	if s.depth > 0 {
		return false, ErrBatchOpen
	}
	n := len(s.undo)
	if n == 0 || s.applying {
		return false, nil
	}
	e := s.undo[n-1]
	if err := s.apply(e.Op.Undo); err != nil {
		return false, fmt.Errorf("undo %q: %w", e.Op.Description(), err)
	}
	s.undo = s.undo[:n-1]
	s.redo = append(s.redo, e)
	s.emit(Undone, e)
	return true, nil
}

// Redo re-applies the newest undone entry.
func (s *Stack) Redo() (bool, error) {
	if s.depth > 0 {
		return false, ErrBatchOpen
	}
	n := len(s.redo)
	if n == 0 || s.applying {
		return false, nil
	}
	e := s.redo[n-1]
	if err := s.apply(e.Op.Redo); err != nil {
		return false, fmt.Errorf("redo %q: %w", e.Op.Description(), err)
	}
	s.redo = s.redo[:n-1]
	s.undo = append(s.undo, e)
	s.trim()
	s.emit(Redone, e)
	return true, nil
}

func (s *Stack) apply(fn func() error) error {
	s.applying = true
	defer func() { s.applying = false }()
	return fn()
}

// Applying reports whether an undo or redo is running.
func (s *Stack) Applying() bool { return s.applying }

// BeginBatch opens a batch. Nested calls only deepen the current batch; the outer
// description wins.
func (s *Stack) BeginBatch(desc string) {
	if s.depth == 0 {
		s.batch = &Batch{Desc: desc}
		s.log.Debug("history batch begin", "desc", desc)
	}
	s.depth++
}

// EndBatch closes the innermost batch. When the outermost batch closes with at least
// one operation, it becomes a single undo entry.
func (s *Stack) EndBatch() error {
	if s.depth == 0 {
		return ErrBatchNotOpen
	}
	s.depth--
	if s.depth > 0 {
		return nil
	}
	b := s.batch
	s.batch = nil
	s.log.Debug("history batch end", "desc", b.Desc, "ops", len(b.Ops))
	if len(b.Ops) > 0 {
		s.record(b)
	}
	return nil
}

// CancelBatch closes the innermost batch. When the outermost batch is cancelled its
// operations are undone in reverse; every child is attempted and failures are joined.
func (s *Stack) CancelBatch() error {
	if s.depth == 0 {
		return ErrBatchNotOpen
	}
	s.depth--
	if s.depth > 0 {
		return nil
	}
	b := s.batch
	s.batch = nil
	s.log.Debug("history batch cancel", "desc", b.Desc, "ops", len(b.Ops))

	var errs []error
	_ = s.apply(func() error {
		for i := len(b.Ops) - 1; i >= 0; i-- {
			if err := b.Ops[i].Undo(); err != nil {
				errs = append(errs, fmt.Errorf("cancel %q: %w", b.Ops[i].Description(), err))
			}
		}
		return nil
	})
	return errors.Join(errs...)
}

// InBatch reports whether a batch is open.
func (s *Stack) InBatch() bool { return s.depth > 0 }

// Clear drops both stacks. An open batch is discarded without being undone.
func (s *Stack) Clear() {
	s.undo = nil
	s.redo = nil
	s.batch = nil
	s.depth = 0
	s.emit(Cleared, Entry{})
}

// SetLimit changes the bound and evicts the oldest entries that no longer fit.
func (s *Stack) SetLimit(n int) {
	s.limit = n
	s.trim()
}

// Limit returns the current bound.
func (s *Stack) Limit() int { return s.limit }

func (s *Stack) trim() {
	if s.limit <= 0 {
		return
	}
	if over := len(s.undo) - s.limit; over > 0 {
		s.undo = append([]Entry(nil), s.undo[over:]...)
	}
	if over := len(s.redo) - s.limit; over > 0 {
		s.redo = append([]Entry(nil), s.redo[over:]...)
	}
}

func (s *Stack) CanUndo() bool { return len(s.undo) > 0 }
func (s *Stack) CanRedo() bool { return len(s.redo) > 0 }

// UndoDescription describes the entry Undo would revert, or "".
func (s *Stack) UndoDescription() string {
	if len(s.undo) == 0 {
		return ""
	}
	return s.undo[len(s.undo)-1].Op.Description()
}

// RedoDescription describes the entry Redo would re-apply, or "".
func (s *Stack) RedoDescription() string {
	if len(s.redo) == 0 {
		return ""
	}
	return s.redo[len(s.redo)-1].Op.Description()
}

// Entries lists the undo stack, oldest first.
func (s *Stack) Entries() []Entry {
	return append([]Entry(nil), s.undo...)
}

// RedoEntries lists the redo stack, next-to-redo last.
func (s *Stack) RedoEntries() []Entry {
	return append([]Entry(nil), s.redo...)
}

func (s *Stack) emit(kind EventKind, e Entry) {
	if e.Op != nil {
		s.log.Debug("history", "event", kind, "entry", e.ID, "op", e.Op.Description(),
			"undo", len(s.undo), "redo", len(s.redo))
	} else {
		s.log.Debug("history", "event", kind)
	}
	if s.OnChange != nil {
		s.OnChange(Event{Kind: kind, Entry: e})
	}
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/stef-k/datagrid/internal/column"
	"github.com/stef-k/datagrid/internal/database"
	"github.com/stef-k/datagrid/internal/database/repository"
	"github.com/stef-k/datagrid/internal/grid"
	"github.com/stef-k/datagrid/internal/history"
)

// ErrInvalidGrid is returned by Save while cells hold validation errors.
var ErrInvalidGrid = errors.New("grid has validation errors")

// GridService loads records into a grid engine, tracks what the user changed, and
// writes the changes back in one transaction.
type GridService struct {
	DB         *sql.DB
	Records    *repository.RecordRepo
	Categories *repository.CategoryRepo
	Engine     *grid.Engine[Row]

	log *slog.Logger

	stored  map[string]struct{}
	dirty   map[Row]struct{}
	deleted map[string]Row
}

// SaveResult counts what Save wrote.
type SaveResult struct {
	Inserted int
	Updated  int
	Deleted  int
}

// NewGridService builds the records grid. The category list is read once to restrict
// the category column.
func NewGridService(ctx context.Context, db *sql.DB, opts grid.Options) (*GridService, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	cats := repository.NewCategoryRepo(db)
	names, err := cats.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	eng, err := grid.New(RecordColumns(names), opts)
	if err != nil {
		return nil, err
	}
	s := &GridService{
		DB:         db,
		Records:    repository.NewRecordRepo(db),
		Categories: cats,
		Engine:     eng,
		log:        log,
		stored:     make(map[string]struct{}),
		dirty:      make(map[Row]struct{}),
		deleted:    make(map[string]Row),
	}
	eng.OnCommitted = func(r Row, _ *column.Column[Row]) { s.markDirty(r) }
	eng.OnRowsChanged = s.rowsChanged
	eng.OnHistory = func(ev history.Event) {
		switch ev.Kind {
		case history.Undone, history.Redone:
			for _, r := range history.RowsOf[Row](ev.Entry.Op) {
				if eng.IndexOf(r) >= 0 {
					s.markDirty(r)
				}
			}
		}
	}
	return s, nil
}

// Load replaces the grid contents with the stored records matching f.
func (s *GridService) Load(ctx context.Context, f repository.RecordFilters) error {
	recs, err := s.Records.List(ctx, f)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	s.Install(recs)
	return nil
}

// Install replaces the grid contents with records already read from the store. Hosts
// that list records off the engine's thread hand the result back through Install.
func (s *GridService) Install(recs []repository.Record) {
	rows := make([]Row, len(recs))
	clear(s.stored)
	for i := range recs {
		rows[i] = &recs[i]
		s.stored[recs[i].ID] = struct{}{}
	}
	clear(s.dirty)
	clear(s.deleted)
	s.Engine.SetItems(rows)
	s.log.Debug("records loaded", "count", len(rows))
}

func (s *GridService) markDirty(r Row) { s.dirty[r] = struct{}{} }

func (s *GridService) rowsChanged(r Row, inserted bool) {
	if inserted {
		delete(s.deleted, r.ID)
		s.markDirty(r)
		return
	}
	delete(s.dirty, r)
	if _, ok := s.stored[r.ID]; ok {
		s.deleted[r.ID] = r
	}
}

// NewRecord appends a blank record in the first category and returns it.
func (s *GridService) NewRecord(ctx context.Context) (Row, error) {
	cat := ""
	if names, err := s.Categories.Names(ctx); err == nil && len(names) > 0 {
		cat = names[0]
	}
	r := &repository.Record{ID: uuid.NewString(), Name: "New item", Category: cat, Active: true}
	if err := s.Engine.AppendRow(r); err != nil {
		return nil, err
	}
	return r, nil
}

// DeleteRecord removes a row from the grid; Save deletes it from the store.
func (s *GridService) DeleteRecord(r Row) error {
	return s.Engine.RemoveRow(r)
}

// Dirty reports whether there are unsaved changes.
func (s *GridService) Dirty() bool {
	if len(s.deleted) > 0 {
		return true
	}
	for i, r := range s.Engine.Items() {
		if _, ok := s.dirty[r]; ok || r.Position != i {
			return true
		}
	}
	return false
}

// Save persists inserted, edited, moved and deleted rows in one transaction. It refuses
// to save while any cell holds a validation error.
func (s *GridService) Save(ctx context.Context) (SaveResult, error) {
	var res SaveResult
	if !s.Engine.Valid() {
		return res, ErrInvalidGrid
	}
	if _, _, editing := s.Engine.Editor().Active(); editing {
		out, err := s.Engine.CommitEdit()
		if err != nil {
			return res, err
		}
		if !out.Valid() {
			return res, ErrInvalidGrid
		}
	}

	items := s.Engine.Items()
	now := database.Now()
	stamped := make(map[Row]struct{})
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		repo := s.Records.WithTx(tx)
		for id := range s.deleted {
			if err := repo.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("delete %s: %w", id, err)
			}
			res.Deleted++
		}
		for i, r := range items {
			_, dirty := s.dirty[r]
			if !dirty && r.Position == i {
				continue
			}
			rec := *r
			rec.Position = i
			if _, edited := s.dirty[r]; edited {
				rec.UpdatedAt = now
				stamped[r] = struct{}{}
			}
			if _, ok := s.stored[r.ID]; ok {
				if err := repo.Update(ctx, rec); err != nil {
					return fmt.Errorf("update %s: %w", r.ID, err)
				}
				res.Updated++
			} else {
				rec.CreatedAt = now
				if err := repo.Insert(ctx, rec); err != nil {
					return fmt.Errorf("insert %s: %w", r.ID, err)
				}
				res.Inserted++
			}
		}
		return nil
	})
	if err != nil {
		return SaveResult{}, err
	}

	for i, r := range items {
		r.Position = i
		if _, ok := stamped[r]; ok {
			r.UpdatedAt = now
		}
		if _, ok := s.stored[r.ID]; !ok {
			r.CreatedAt = now
		}
		s.stored[r.ID] = struct{}{}
	}
	for id := range s.deleted {
		delete(s.stored, id)
	}
	clear(s.dirty)
	clear(s.deleted)
	s.log.Info("grid saved", "inserted", res.Inserted, "updated", res.Updated, "deleted", res.Deleted)
	return res, nil
}

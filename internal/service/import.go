package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/stef-k/datagrid/internal/database/repository"
)

// ImportResult summarises a CSV import.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []error
}

// CSV columns: name, category, quantity, price, active, notes
// price is dollars; active accepts yes/no. A first line starting with "name" is a
// header. Rows already present by name and category are skipped. Imported rows are
// appended to the grid as one undo step and persisted by Save.
func (s *GridService) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	res := ImportResult{}
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1

	existing := make(map[string]struct{})
	for _, row := range s.Engine.Items() {
		existing[dedupeKey(row.Name, row.Category)] = struct{}{}
	}
	cols := make(map[string]int)
	for i, c := range s.Engine.Columns() {
		cols[c.ID] = i
	}

	s.Engine.BeginBatch("Import CSV")
	defer func() { _ = s.Engine.EndBatch() }()

	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		line++
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if line == 1 && len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "name") {
			continue
		}
		if len(rec) < 5 { // name, category, quantity, price, active
			res.Errors = append(res.Errors, fmt.Errorf("line %d: expected at least 5 columns", line))
			continue
		}
		for len(rec) < 6 {
			rec = append(rec, "")
		}

		row := &repository.Record{ID: uuid.NewString()}
		fields := []struct{ id, text string }{
			{"name", rec[0]}, {"category", rec[1]}, {"quantity", rec[2]},
			{"price", rec[3]}, {"active", rec[4]}, {"notes", rec[5]},
		}
		var lineErr error
		for _, f := range fields {
			col := s.Engine.Columns()[cols[f.id]]
			v := col.ParseText(f.text)
			if col.Validate != nil {
				if out := col.Validate(row, v); !out.Valid() {
					lineErr = fmt.Errorf("line %d %s: %s", line, f.id, strings.Join(out.Errors, "; "))
					break
				}
			}
			if err := col.Set(row, v); err != nil {
				lineErr = fmt.Errorf("line %d %s: %w", line, f.id, err)
				break
			}
		}
		if lineErr != nil {
			res.Errors = append(res.Errors, lineErr)
			continue
		}

		key := dedupeKey(row.Name, row.Category)
		if _, dup := existing[key]; dup {
			res.Skipped++
			continue
		}
		if err := s.Engine.AppendRow(row); err != nil {
			return res, err
		}
		existing[key] = struct{}{}
		res.Imported++
	}
	return res, nil
}

func dedupeKey(name, category string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "\x00" + strings.ToLower(strings.TrimSpace(category))
}

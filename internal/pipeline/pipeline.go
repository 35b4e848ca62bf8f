// Package pipeline turns a raw row collection plus search, filter, sort and page state
// into the ordered display list.
package pipeline

import (
	"sort"
	"strings"

	"github.com/stef-k/datagrid/internal/column"
)

// Pipeline owns the display list. The list is rebuilt on every Compute and must be
// treated as read-only by callers.
type Pipeline[R any] struct {
	columns []*column.Column[R]
	byID    map[string]*column.Column[R]

	items    []R
	query    Query
	filtered []R
	display  []R
}

// New builds a pipeline over the given columns.
func New[R any](cols []*column.Column[R]) *Pipeline[R] {
	p := &Pipeline[R]{byID: make(map[string]*column.Column[R], len(cols))}
	p.SetColumns(cols)
	return p
}

// SetColumns replaces the column set used for value extraction.
func (p *Pipeline[R]) SetColumns(cols []*column.Column[R]) {
	p.columns = cols
	clear(p.byID)
	for _, c := range cols {
		p.byID[c.ID] = c
	}
}

// Compute rebuilds the display list: search, then per-column filters, then a stable
// sort, then the page slice. Value accessors are called directly; a panicking getter
// propagates to the caller.
func (p *Pipeline[R]) Compute(items []R, q Query) []R {
	p.items = items
	p.query = q

	rows := p.filter(items, q, "")
	p.sortRows(rows, q.Sort)
	p.filtered = rows
	p.display = paginate(rows, q.Page)
	return p.display
}

// Display returns the last computed display list.
func (p *Pipeline[R]) Display() []R { return p.display }

// Filtered returns the last searched, filtered and sorted rows before paging.
func (p *Pipeline[R]) Filtered() []R { return p.filtered }

// Total is the number of rows that survived search and filters.
func (p *Pipeline[R]) Total() int { return len(p.filtered) }

// PageCount is the number of pages for the last computed query.
func (p *Pipeline[R]) PageCount() int {
	if !p.query.Page.Enabled {
		return 1
	}
	return PageCount(len(p.filtered), p.query.Page.Size)
}

// DistinctValues lists the distinct display values of columnID across the rows that
// pass the search and every active filter except the column's own, so a filter popup
// offers the values still reachable under the other filters.
func (p *Pipeline[R]) DistinctValues(columnID string) []string {
	col, ok := p.byID[columnID]
	if !ok {
		return nil
	}
	rows := p.filtered
	if f, ok := p.query.Filters[columnID]; ok && f.Active() {
		rows = p.filter(p.items, p.query, columnID)
	}
	seen := make(map[string]struct{}, len(rows))
	out := make([]string, 0)
	for _, row := range rows {
		text := col.Text(row)
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return column.CompareValues(out[i], out[j]) < 0
	})
	return out
}

// filter applies search and column filters, skipping the filter of except.
func (p *Pipeline[R]) filter(items []R, q Query, except string) []R {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	type active struct {
		col *column.Column[R]
		f   Filter
	}
	var filters []active
	for id, f := range q.Filters {
		if id == except || !f.Active() {
			continue
		}
		col, ok := p.byID[id]
		if !ok {
			continue
		}
		filters = append(filters, active{col: col, f: f})
	}

	out := make([]R, 0, len(items))
	for _, row := range items {
		if search != "" && !p.matchesSearch(row, search) {
			continue
		}
		keep := true
		for _, a := range filters {
			if !a.f.matches(a.col.Text(row)) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}

func (p *Pipeline[R]) matchesSearch(row R, needle string) bool {
	for _, c := range p.columns {
		if !c.Visible || !c.Searchable {
			continue
		}
		if strings.Contains(strings.ToLower(c.Text(row)), needle) {
			return true
		}
	}
	return false
}

func (p *Pipeline[R]) sortRows(rows []R, keys []SortKey) {
	type bound struct {
		col  *column.Column[R]
		desc bool
	}
	var order []bound
	for _, k := range keys {
		col, ok := p.byID[k.Column]
		if !ok || !col.Sortable || k.Direction == None {
			continue
		}
		order = append(order, bound{col: col, desc: k.Direction == Descending})
	}
	if len(order) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, b := range order {
			c := b.col.CompareRows(rows[i], rows[j])
			if c == 0 {
				continue
			}
			if b.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// paginate slices [(n-1)*size, n*size) clamped to the available rows. Pages past the
// end are empty, never an error.
func paginate[R any](rows []R, pg Page) []R {
	if !pg.Enabled || pg.Size <= 0 {
		return rows
	}
	n := pg.Number
	if n < 1 {
		n = 1
	}
	// compare page indices first: (n-1)*size overflows for huge page numbers
	if n-1 >= PageCount(len(rows), pg.Size) || len(rows) == 0 {
		return rows[:0:0]
	}
	start := (n - 1) * pg.Size
	end := min(start+pg.Size, len(rows))
	return rows[start:end:end]
}

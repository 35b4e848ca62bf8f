package grid

import (
	"fmt"

	"github.com/stef-k/datagrid/internal/pipeline"
)

// SetSearch sets the free-text search and returns to the first page.
func (e *Engine[R]) SetSearch(s string) {
	e.search = s
	e.page = 1
	e.Refresh()
}

func (e *Engine[R]) Search() string { return e.search }

// SetFilter replaces the filter of one column. An inactive filter removes it.
func (e *Engine[R]) SetFilter(columnID string, f pipeline.Filter) error {
	c, err := e.Column(columnID)
	if err != nil {
		return err
	}
	if !c.Filterable {
		return fmt.Errorf("%w: %s", ErrNotFilterable, columnID)
	}
	if f.Active() {
		e.filters[columnID] = f
	} else {
		delete(e.filters, columnID)
	}
	e.page = 1
	e.Refresh()
	return nil
}

// Filter returns the active filter of a column.
func (e *Engine[R]) Filter(columnID string) (pipeline.Filter, bool) {
	f, ok := e.filters[columnID]
	return f, ok
}

// ClearFilters removes every column filter.
func (e *Engine[R]) ClearFilters() {
	clear(e.filters)
	e.page = 1
	e.Refresh()
}

// DistinctValues lists the values a column filter can offer under the other filters.
func (e *Engine[R]) DistinctValues(columnID string) ([]string, error) {
	c, err := e.Column(columnID)
	if err != nil {
		return nil, err
	}
	if !c.Filterable {
		return nil, fmt.Errorf("%w: %s", ErrNotFilterable, columnID)
	}
	return e.pipe.DistinctValues(columnID), nil
}

// ToggleSort cycles the sort direction of a column.
func (e *Engine[R]) ToggleSort(columnID string) (pipeline.Direction, error) {
	c, err := e.Column(columnID)
	if err != nil {
		return pipeline.None, err
	}
	if !c.Sortable {
		return pipeline.None, fmt.Errorf("%w: %s", ErrNotSortable, columnID)
	}
	d := e.sort.Toggle(columnID)
	e.Refresh()
	return d, nil
}

// SetSort replaces the sort keys.
func (e *Engine[R]) SetSort(keys ...pipeline.SortKey) error {
	for _, k := range keys {
		c, err := e.Column(k.Column)
		if err != nil {
			return err
		}
		if !c.Sortable {
			return fmt.Errorf("%w: %s", ErrNotSortable, k.Column)
		}
	}
	e.sort.Set(keys...)
	e.Refresh()
	return nil
}

func (e *Engine[R]) SortKeys() []pipeline.SortKey { return e.sort.Keys() }

// SortDirection is the direction of one column in the current sort.
func (e *Engine[R]) SortDirection(columnID string) pipeline.Direction {
	return e.sort.Direction(columnID)
}

// SetPaging turns paging on or off and sets the page size.
func (e *Engine[R]) SetPaging(enabled bool, size int) {
	e.opts.Paging = enabled
	if size > 0 {
		e.opts.PageSize = size
	}
	e.page = 1
	e.Refresh()
}

// SetPage moves to page n, 1-based. Pages past the end show no rows.
func (e *Engine[R]) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	e.page = n
	e.Refresh()
}

// NextPage advances unless already on the last page.
func (e *Engine[R]) NextPage() bool {
	if !e.opts.Paging || e.page >= e.PageCount() {
		return false
	}
	e.SetPage(e.page + 1)
	return true
}

// PrevPage steps back unless on the first page.
func (e *Engine[R]) PrevPage() bool {
	if !e.opts.Paging || e.page <= 1 {
		return false
	}
	e.SetPage(e.page - 1)
	return true
}

func (e *Engine[R]) Page() int      { return e.page }
func (e *Engine[R]) PageSize() int  { return e.opts.PageSize }
func (e *Engine[R]) Paging() bool   { return e.opts.Paging }
func (e *Engine[R]) PageCount() int { return e.pipe.PageCount() }

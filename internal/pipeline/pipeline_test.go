package pipeline

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stef-k/datagrid/internal/column"
)

type row struct {
	id    int
	name  string
	cat   string
	qty   int
	notes string
}

func columns() []*column.Column[*row] {
	mk := func(id string, get func(*row) any) *column.Column[*row] {
		return &column.Column[*row]{
			Layout: column.Layout{ID: id, Header: id, Visible: true, Sortable: true, Filterable: true, Searchable: true},
			Get:    get,
		}
	}
	notes := mk("notes", func(r *row) any { return r.notes })
	notes.Searchable = false
	return []*column.Column[*row]{
		mk("name", func(r *row) any { return r.name }),
		mk("cat", func(r *row) any { return r.cat }),
		mk("qty", func(r *row) any { return r.qty }),
		notes,
	}
}

func ids(rows []*row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.id
	}
	return out
}

func sample() []*row {
	return []*row{
		{id: 1, name: "Apple", cat: "fruit", qty: 3},
		{id: 2, name: "Carrot", cat: "veg", qty: 3},
		{id: 3, name: "banana", cat: "fruit", qty: 1},
		{id: 4, name: "Leek", cat: "veg", qty: 7, notes: "apple pairing"},
		{id: 5, name: "Cherry", cat: "fruit", qty: 3},
		{id: 6, name: "Basil", cat: "herb", qty: 1},
	}
}

func TestComputeEmpty(t *testing.T) {
	p := New(columns())
	out := p.Compute(nil, Query{Search: "x", Page: Page{Enabled: true, Number: 3, Size: 10}})
	require.Empty(t, out)
	require.Zero(t, p.Total())
	require.Equal(t, 1, p.PageCount())
}

func TestSearchAcrossSearchableColumns(t *testing.T) {
	p := New(columns())
	out := p.Compute(sample(), Query{Search: "  APP "})
	// row 4 only mentions apple in a non-searchable column
	require.Equal(t, []int{1}, ids(out))

	out = p.Compute(sample(), Query{Search: "fruit"})
	require.Equal(t, []int{1, 3, 5}, ids(out))
}

func TestHiddenColumnsAreNotSearched(t *testing.T) {
	cols := columns()
	cols[1].Visible = false // cat
	p := New(cols)
	require.Empty(t, p.Compute(sample(), Query{Search: "fruit"}))
}

func TestFiltersComposeAsIntersection(t *testing.T) {
	p := New(columns())
	items := sample()

	byCat := Filter{Values: []string{"fruit", "herb"}}
	byQty := Filter{Values: []string{"1"}}

	a := p.Compute(items, Query{Filters: map[string]Filter{"cat": byCat}})
	b := p.Compute(items, Query{Filters: map[string]Filter{"qty": byQty}})
	both := p.Compute(items, Query{Filters: map[string]Filter{"cat": byCat, "qty": byQty}})

	inB := map[int]bool{}
	for _, id := range ids(b) {
		inB[id] = true
	}
	var want []int
	for _, id := range ids(a) {
		if inB[id] {
			want = append(want, id)
		}
	}
	require.Equal(t, []int{3, 6}, want)
	require.Equal(t, want, ids(both))
}

func TestFilterContainsAndValues(t *testing.T) {
	p := New(columns())
	out := p.Compute(sample(), Query{Filters: map[string]Filter{
		"name": {Values: []string{"Carrot", "Cherry", "Apple"}, Contains: "C"},
	}})
	require.Equal(t, []int{2, 5}, ids(out))

	out = p.Compute(sample(), Query{Filters: map[string]Filter{"name": {Contains: "an"}}})
	require.Equal(t, []int{3}, ids(out))

	// inactive filters and unknown columns change nothing
	out = p.Compute(sample(), Query{Filters: map[string]Filter{"name": {Contains: "  "}, "nope": {Values: []string{"x"}}}})
	require.Len(t, out, 6)
}

func TestSortIsStable(t *testing.T) {
	p := New(columns())
	out := p.Compute(sample(), Query{Sort: []SortKey{{Column: "qty", Direction: Ascending}}})
	require.Equal(t, []int{3, 6, 1, 2, 5, 4}, ids(out))

	out = p.Compute(sample(), Query{Sort: []SortKey{{Column: "qty", Direction: Descending}}})
	require.Equal(t, []int{4, 1, 2, 5, 3, 6}, ids(out))
}

func TestMultiSortTieBreaksOnSecondKey(t *testing.T) {
	p := New(columns())
	out := p.Compute(sample(), Query{Sort: []SortKey{
		{Column: "qty", Direction: Ascending},
		{Column: "name", Direction: Descending},
	}})
	// qty 1: Basil, banana desc; qty 3: Cherry, Carrot, Apple desc
	require.Equal(t, []int{6, 3, 5, 2, 1, 4}, ids(out))
}

func TestSortIgnoresUnsortableColumns(t *testing.T) {
	cols := columns()
	cols[0].Sortable = false
	p := New(cols)
	out := p.Compute(sample(), Query{Sort: []SortKey{{Column: "name", Direction: Descending}, {Column: "ghost", Direction: Ascending}}})
	require.Equal(t, []int{1, 2, 3, 4, 5, 6}, ids(out))
}

func TestPaging(t *testing.T) {
	items := make([]*row, 100)
	for i := range items {
		items[i] = &row{id: i + 1, name: fmt.Sprintf("r%03d", i)}
	}
	p := New(columns())

	for _, tc := range []struct {
		page, size, wantLen, wantFirst int
	}{
		{1, 10, 10, 1},
		{10, 10, 10, 91},
		{11, 10, 0, 0},
		{4, 30, 10, 91},
		{0, 30, 30, 1},
		{99, 7, 0, 0},
		{math.MaxInt / 5, 10, 0, 0},
		{math.MaxInt, 3, 0, 0},
	} {
		out := p.Compute(items, Query{Page: Page{Enabled: true, Number: tc.page, Size: tc.size}})
		require.Len(t, out, tc.wantLen, "page %d size %d", tc.page, tc.size)
		if tc.wantLen > 0 {
			require.Equal(t, tc.wantFirst, out[0].id)
		}
		require.Equal(t, 100, p.Total())
	}
	require.Equal(t, 15, PageCount(100, 7))

	out := p.Compute(items, Query{Page: Page{Enabled: false, Number: 3, Size: 10}})
	require.Len(t, out, 100)
}

func TestDistinctValuesCascade(t *testing.T) {
	p := New(columns())
	q := Query{Filters: map[string]Filter{
		"cat": {Values: []string{"fruit"}},
		"qty": {Values: []string{"3"}},
	}}
	out := p.Compute(sample(), q)
	require.Equal(t, []int{1, 5}, ids(out))

	// cat's own filter is lifted; qty=3 still applies
	require.Equal(t, []string{"fruit", "veg"}, p.DistinctValues("cat"))
	// qty's own filter is lifted; cat=fruit still applies
	require.Equal(t, []string{"1", "3"}, p.DistinctValues("qty"))
	// name has no filter of its own, so the published filtered set is used
	require.Equal(t, []string{"Apple", "Cherry"}, p.DistinctValues("name"))
	require.Nil(t, p.DistinctValues("ghost"))
}

func TestSortStateSingleMode(t *testing.T) {
	var s SortState
	require.Equal(t, Ascending, s.Toggle("a"))
	require.Equal(t, Descending, s.Toggle("a"))
	require.Equal(t, Ascending, s.Toggle("b"))
	require.Equal(t, None, s.Direction("a"))
	require.Equal(t, []SortKey{{Column: "b", Direction: Ascending}}, s.Keys())
	s.Toggle("b")
	require.Equal(t, None, s.Toggle("b"))
	require.Empty(t, s.Keys())

	s.Set(SortKey{"a", Descending}, SortKey{"b", Ascending})
	require.Equal(t, []SortKey{{Column: "a", Direction: Descending}}, s.Keys())
}

func TestSortStateMultiMode(t *testing.T) {
	s := SortState{Multi: true}
	s.Toggle("a")
	s.Toggle("b")
	s.Toggle("a")
	require.Equal(t, []SortKey{{"a", Descending}, {"b", Ascending}}, s.Keys())
	s.Toggle("a")
	require.Equal(t, []SortKey{{"b", Ascending}}, s.Keys())

	s.Set(SortKey{"c", Ascending}, SortKey{"d", None}, SortKey{"c", Descending}, SortKey{"e", Descending})
	require.Equal(t, []SortKey{{"c", Ascending}, {"e", Descending}}, s.Keys())
	s.Clear()
	require.Empty(t, s.Keys())
}

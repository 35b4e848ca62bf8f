package pipeline

import "strings"

// Filter narrows rows by one column. Values is a set of accepted display values (any
// may match); Contains is a case-insensitive substring that must also match.
type Filter struct {
	Values   []string
	Contains string
}

// Active reports whether the filter constrains anything.
func (f Filter) Active() bool {
	return len(f.Values) > 0 || strings.TrimSpace(f.Contains) != ""
}

func (f Filter) matches(text string) bool {
	if len(f.Values) > 0 {
		found := false
		for _, v := range f.Values {
			if v == text {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if needle := strings.TrimSpace(f.Contains); needle != "" {
		return strings.Contains(strings.ToLower(text), strings.ToLower(needle))
	}
	return true
}

// Direction is a sort direction. None removes the column from the sort.
type Direction int

const (
	None Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return "none"
	}
}

// next cycles Ascending → Descending → None → Ascending.
func (d Direction) next() Direction {
	switch d {
	case None:
		return Ascending
	case Ascending:
		return Descending
	default:
		return None
	}
}

// SortKey orders rows by one column.
type SortKey struct {
	Column    string
	Direction Direction
}

// Page selects one slice of the filtered, sorted rows. Number is 1-based.
type Page struct {
	Enabled bool
	Number  int
	Size    int
}

// Query is the full view state the pipeline applies to a raw collection.
type Query struct {
	Search  string
	Filters map[string]Filter
	Sort    []SortKey
	Page    Page
}

// PageCount returns the number of pages needed for total rows; at least 1.
func PageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

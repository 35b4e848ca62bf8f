package grid

import (
	"errors"
	"fmt"

	"github.com/agnivade/levenshtein"
)

var (
	ErrUnknownColumn   = errors.New("unknown column")
	ErrDuplicateColumn = errors.New("duplicate column id")
	ErrNotSortable     = errors.New("column is not sortable")
	ErrNotFilterable   = errors.New("column is not filterable")
	ErrRowNotFound     = errors.New("row not found")
	ErrIndexOutOfRange = errors.New("row index out of range")
)

// unknownColumn wraps ErrUnknownColumn with the closest known id, if any is close
// enough to be a plausible typo.
func unknownColumn(id string, known []string) error {
	if s := suggest(id, known); s != "" {
		return fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownColumn, id, s)
	}
	return fmt.Errorf("%w %q", ErrUnknownColumn, id)
}

func suggest(id string, known []string) string {
	best, bestDist := "", -1
	for _, k := range known {
		d := levenshtein.ComputeDistance(id, k)
		if bestDist < 0 || d < bestDist {
			best, bestDist = k, d
		}
	}
	limit := len(id) / 2
	if limit < 2 {
		limit = 2
	}
	if bestDist < 0 || bestDist > limit {
		return ""
	}
	return best
}

package pipeline

// SortState tracks the sort descriptors a user builds up by clicking headers.
// In single mode it holds at most one key; in multi mode keys accumulate in the
// order they were first requested.
type SortState struct {
	Multi bool
	keys  []SortKey
}

// Toggle advances columnID through Ascending → Descending → None. Single mode also
// clears every other column's direction.
func (s *SortState) Toggle(columnID string) Direction {
	idx := s.index(columnID)
	cur := None
	if idx >= 0 {
		cur = s.keys[idx].Direction
	}
	next := cur.next()

	if !s.Multi {
		s.keys = s.keys[:0]
		if next != None {
			s.keys = append(s.keys, SortKey{Column: columnID, Direction: next})
		}
		return next
	}

	switch {
	case next == None:
		s.keys = append(s.keys[:idx], s.keys[idx+1:]...)
	case idx >= 0:
		s.keys[idx].Direction = next
	default:
		s.keys = append(s.keys, SortKey{Column: columnID, Direction: next})
	}
	return next
}

// Set replaces the descriptors. Keys with direction None are dropped; single mode
// keeps only the first remaining key.
func (s *SortState) Set(keys ...SortKey) {
	s.keys = s.keys[:0]
	for _, k := range keys {
		if k.Direction == None || s.index(k.Column) >= 0 {
			continue
		}
		s.keys = append(s.keys, k)
		if !s.Multi {
			break
		}
	}
}

// Clear removes every descriptor.
func (s *SortState) Clear() { s.keys = s.keys[:0] }

// Direction reports the current direction of columnID.
func (s *SortState) Direction(columnID string) Direction {
	if idx := s.index(columnID); idx >= 0 {
		return s.keys[idx].Direction
	}
	return None
}

// Keys returns a copy of the descriptors in priority order.
func (s *SortState) Keys() []SortKey {
	out := make([]SortKey, len(s.keys))
	copy(out, s.keys)
	return out
}

func (s *SortState) index(columnID string) int {
	for i, k := range s.keys {
		if k.Column == columnID {
			return i
		}
	}
	return -1
}

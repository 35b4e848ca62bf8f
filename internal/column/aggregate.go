package column

// Summary is a computed footer value. Ok is false when the column has no aggregate
// or no numeric values to summarize.
type Summary struct {
	Kind  Aggregate
	Value float64
	Ok    bool
}

// Summarize computes col's aggregate over rows. Count counts non-nil values; the
// numeric aggregates skip values that are not numbers.
func Summarize[R any](col *Column[R], rows []R) Summary {
	s := Summary{Kind: col.Aggregate}
	if col.Aggregate == AggregateNone {
		return s
	}
	var (
		n     int
		total float64
		lo    float64
		hi    float64
	)
	for _, row := range rows {
		v := col.Get(row)
		if v == nil {
			continue
		}
		if col.Aggregate == AggregateCount {
			n++
			continue
		}
		f, ok := ToFloat(v)
		if !ok {
			continue
		}
		if n == 0 || f < lo {
			lo = f
		}
		if n == 0 || f > hi {
			hi = f
		}
		total += f
		n++
	}
	switch col.Aggregate {
	case AggregateCount:
		s.Value, s.Ok = float64(n), true
	case AggregateSum:
		s.Value, s.Ok = total, true
	case AggregateAverage:
		if n > 0 {
			s.Value, s.Ok = total/float64(n), true
		}
	case AggregateMin:
		s.Value, s.Ok = lo, n > 0
	case AggregateMax:
		s.Value, s.Ok = hi, n > 0
	}
	return s
}

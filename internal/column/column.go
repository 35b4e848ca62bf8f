package column

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// SizingPolicy controls how a column's rendered width is derived.
type SizingPolicy int

const (
	// Fixed columns render at Width pixels, clamped into [MinWidth, MaxWidth].
	Fixed SizingPolicy = iota
	// AutoLegacy columns are sized by the host layer; the resolver skips them.
	AutoLegacy
	// FitToHeader columns are measured once from their header label.
	FitToHeader
	// Fill columns share leftover space proportionally to their star weight (Width).
	Fill
)

func (p SizingPolicy) String() string {
	switch p {
	case Fixed:
		return "fixed"
	case AutoLegacy:
		return "auto"
	case FitToHeader:
		return "fit-header"
	case Fill:
		return "fill"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy maps a layout-file policy name to a SizingPolicy.
func ParsePolicy(s string) (SizingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed", "":
		return Fixed, nil
	case "auto", "autolegacy", "auto-legacy":
		return AutoLegacy, nil
	case "fit-header", "fittoheader", "header":
		return FitToHeader, nil
	case "fill", "star":
		return Fill, nil
	default:
		return Fixed, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

var (
	ErrMissingID     = errors.New("column: missing id")
	ErrMissingGetter = errors.New("column: missing value getter")
	ErrMissingSetter = errors.New("column: editable column has no setter")
	ErrInvalidWidth  = errors.New("column: invalid width bounds")
	ErrUnknownPolicy = errors.New("column: unknown sizing policy")
)

// Layout is the identity and sizing half of a column. It carries no row type so the
// width resolver can work on any column set.
type Layout struct {
	ID       string
	Header   string
	Policy   SizingPolicy
	Width    float64 // pixels for Fixed, star weight for Fill
	MinWidth float64
	MaxWidth float64 // <= 0 means unbounded

	Sortable   bool
	Filterable bool
	Searchable bool
	Visible    bool

	// OnActualWidthChanged fires after the resolver writes a different actual width.
	OnActualWidthChanged func(l *Layout)

	actualWidth float64
	measured    float64
	hasMeasure  bool
}

// ActualWidth is the last width assigned by the width resolver (0 when unresolved).
func (l *Layout) ActualWidth() float64 { return l.actualWidth }

// SetActualWidth records a resolved width. The width resolver calls it, and hosts
// call it for AutoLegacy columns they size themselves.
func (l *Layout) SetActualWidth(w float64) {
	if w == l.actualWidth {
		return
	}
	l.actualWidth = w
	if l.OnActualWidthChanged != nil {
		l.OnActualWidthChanged(l)
	}
}

// Measured returns the cached header measurement for FitToHeader columns.
func (l *Layout) Measured() (float64, bool) { return l.measured, l.hasMeasure }

// SetMeasured caches a header measurement.
func (l *Layout) SetMeasured(w float64) {
	l.measured = w
	l.hasMeasure = true
}

// ForgetMeasure drops the cached header measurement so the next resolve remeasures.
func (l *Layout) ForgetMeasure() {
	l.measured = 0
	l.hasMeasure = false
}

// Max returns the upper bound, +Inf when unbounded.
func (l *Layout) Max() float64 {
	if l.MaxWidth <= 0 {
		return math.Inf(1)
	}
	return l.MaxWidth
}

// Clamp pins w into [MinWidth, MaxWidth].
func (l *Layout) Clamp(w float64) float64 {
	if w > l.Max() {
		w = l.Max()
	}
	if w < l.MinWidth {
		w = l.MinWidth
	}
	return w
}

// Aggregate selects the footer summary of a column.
type Aggregate int

const (
	AggregateNone Aggregate = iota
	AggregateSum
	AggregateAverage
	AggregateCount
	AggregateMin
	AggregateMax
)

func (a Aggregate) String() string {
	switch a {
	case AggregateSum:
		return "sum"
	case AggregateAverage:
		return "avg"
	case AggregateCount:
		return "count"
	case AggregateMin:
		return "min"
	case AggregateMax:
		return "max"
	default:
		return "none"
	}
}

// Column describes one column over rows of type R.
type Column[R any] struct {
	Layout

	Editable bool
	ReadOnly bool

	Get      func(row R) any
	Set      func(row R, value any) error
	Validate func(row R, candidate any) Outcome
	Format   func(value any) string
	Compare  func(a, b any) int
	// Parse converts typed text into a candidate value. Without it, or when it fails,
	// the text itself is the candidate and validation decides.
	Parse func(text string) (any, error)

	Aggregate Aggregate
}

// Check reports configuration errors. Hosts call it once when building the grid so that
// bad column definitions fail before any render pass.
func (c *Column[R]) Check() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrMissingID
	}
	if c.Get == nil {
		return fmt.Errorf("%w: %s", ErrMissingGetter, c.ID)
	}
	if c.Editable && !c.ReadOnly && c.Set == nil {
		return fmt.Errorf("%w: %s", ErrMissingSetter, c.ID)
	}
	if c.MinWidth < 0 {
		return fmt.Errorf("%w: %s min %.0f", ErrInvalidWidth, c.ID, c.MinWidth)
	}
	if c.MaxWidth > 0 && c.MinWidth > c.MaxWidth {
		return fmt.Errorf("%w: %s min %.0f > max %.0f", ErrInvalidWidth, c.ID, c.MinWidth, c.MaxWidth)
	}
	switch c.Policy {
	case Fixed:
		if c.Width < 0 {
			return fmt.Errorf("%w: %s fixed width %.0f (use auto sizing)", ErrInvalidWidth, c.ID, c.Width)
		}
	case AutoLegacy, FitToHeader, Fill:
	default:
		return fmt.Errorf("%w: %s %d", ErrUnknownPolicy, c.ID, int(c.Policy))
	}
	return nil
}

// CanEdit reports whether the column accepts edits.
func (c *Column[R]) CanEdit() bool {
	return c.Editable && !c.ReadOnly && c.Set != nil
}

// Value reads the cell value of row.
func (c *Column[R]) Value(row R) any {
	return c.Get(row)
}

// Text renders the cell value of row as display text.
func (c *Column[R]) Text(row R) string {
	return c.FormatValue(c.Get(row))
}

// FormatValue renders v using the column's formatter.
func (c *Column[R]) FormatValue(v any) string {
	if c.Format != nil {
		return c.Format(v)
	}
	return Text(v)
}

// ParseText turns editor input into a candidate value.
func (c *Column[R]) ParseText(text string) any {
	if c.Parse == nil {
		return text
	}
	v, err := c.Parse(text)
	if err != nil {
		return text
	}
	return v
}

// CompareRows orders two rows by this column's value.
func (c *Column[R]) CompareRows(a, b R) int {
	va, vb := c.Get(a), c.Get(b)
	if c.Compare != nil {
		return c.Compare(va, vb)
	}
	return CompareValues(va, vb)
}

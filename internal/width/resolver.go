// Package width resolves rendered column widths from mixed sizing policies.
package width

import (
	"log/slog"
	"math"

	"github.com/mattn/go-runewidth"

	"github.com/stef-k/datagrid/internal/column"
)

// Widths maps column IDs to resolved pixel widths. AutoLegacy and hidden columns are absent.
type Widths map[string]float64

// Total sums every resolved width.
func (w Widths) Total() float64 {
	var sum float64
	for _, v := range w {
		sum += v
	}
	return sum
}

// Affordances are the fixed pixel allowances added to a measured header.
type Affordances struct {
	Padding float64 // left + right cell padding
	Sort    float64 // sort direction glyph, sortable columns only
	Filter  float64 // filter button, filterable columns only
	Resize  float64 // resize grip
}

// DefaultAffordances match a one-cell-per-glyph terminal host.
var DefaultAffordances = Affordances{Padding: 2, Sort: 2, Filter: 2, Resize: 1}

// Resolver computes column widths. It is not safe for concurrent use; the engine
// drives it from a single logical thread.
type Resolver struct {
	// CharWidth is the pixel width of one terminal cell when estimating header text.
	CharWidth   float64
	Affordances Affordances

	// OnResolved runs after widths are written back to the columns.
	OnResolved func(Widths)

	log       *slog.Logger
	resolving bool
	last      Widths
}

// NewResolver returns a resolver for the given cell width.
func NewResolver(charWidth float64, aff Affordances, log *slog.Logger) *Resolver {
	if charWidth <= 0 {
		charWidth = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{CharWidth: charWidth, Affordances: aff, log: log}
}

// Measure estimates the width a FitToHeader column needs to show its header.
func (r *Resolver) Measure(l *column.Layout) float64 {
	label := l.Header
	if label == "" {
		label = l.ID
	}
	w := float64(runewidth.StringWidth(label))*r.CharWidth + r.Affordances.Padding + r.Affordances.Resize
	if l.Sortable {
		w += r.Affordances.Sort
	}
	if l.Filterable {
		w += r.Affordances.Filter
	}
	return w
}

// Remeasure drops cached header measurements so the next Resolve measures again.
func (r *Resolver) Remeasure(cols ...*column.Layout) {
	for _, c := range cols {
		c.ForgetMeasure()
	}
}

// Last returns the most recent result.
func (r *Resolver) Last() Widths { return r.last }

// Resolve assigns widths to the visible columns for the available space and writes them
// back through SetActualWidth. A call made while a resolve is already running (for
// example from a width-changed hook) returns the current result untouched.
func (r *Resolver) Resolve(cols []*column.Layout, available float64) Widths {
	if r.resolving {
		r.log.Debug("width resolve suppressed: already resolving")
		return r.last
	}
	r.resolving = true
	defer func() { r.resolving = false }()

	out := make(Widths, len(cols))
	var used float64
	var fills []*column.Layout
	for _, c := range cols {
		if !c.Visible {
			continue
		}
		switch c.Policy {
		case column.Fixed:
			w := c.Clamp(c.Width)
			out[c.ID] = w
			used += w
		case column.FitToHeader:
			m, ok := c.Measured()
			if !ok {
				m = r.Measure(c)
				c.SetMeasured(m)
			}
			w := c.Clamp(m)
			out[c.ID] = w
			used += w
		case column.Fill:
			fills = append(fills, c)
		case column.AutoLegacy:
			// sized by the host; its current extent still consumes space
			if aw := c.ActualWidth(); aw > 0 {
				used += aw
			} else {
				used += c.MinWidth
			}
		}
	}

	for i, w := range distribute(fills, available-used) {
		out[fills[i].ID] = w
	}

	r.last = out
	for _, c := range cols {
		if w, ok := out[c.ID]; ok {
			c.SetActualWidth(w)
		}
	}
	if r.OnResolved != nil {
		r.OnResolved(out)
	}
	return out
}

// weight is a Fill column's star weight; zero or negative weights count as 1.
func weight(c *column.Layout) float64 {
	if c.Width <= 0 || math.IsNaN(c.Width) {
		return 1
	}
	return c.Width
}

// distribute shares space among fill columns: every column starts at its minimum, then
// the surplus is split by weight. Columns that would pass their maximum are capped and
// leave the pool, and the rest is split again until nothing changes.
func distribute(fills []*column.Layout, space float64) []float64 {
	widths := make([]float64, len(fills))
	if len(fills) == 0 {
		return widths
	}
	surplus := space
	for i, c := range fills {
		widths[i] = c.MinWidth
		surplus -= c.MinWidth
	}
	if surplus <= 0 {
		return widths
	}

	pool := make([]int, 0, len(fills))
	for i, c := range fills {
		if c.Max() > widths[i] {
			pool = append(pool, i)
		}
	}
	for len(pool) > 0 && surplus > 0 {
		var total float64
		for _, i := range pool {
			total += weight(fills[i])
		}
		var keep, capped []int
		for _, i := range pool {
			if widths[i]+surplus*weight(fills[i])/total >= fills[i].Max() {
				capped = append(capped, i)
			} else {
				keep = append(keep, i)
			}
		}
		if len(capped) == 0 {
			for _, i := range pool {
				widths[i] += surplus * weight(fills[i]) / total
			}
			break
		}
		for _, i := range capped {
			surplus -= fills[i].Max() - widths[i]
			widths[i] = fills[i].Max()
		}
		pool = keep
	}
	return widths
}

package service

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/stef-k/datagrid/internal/column"
	"github.com/stef-k/datagrid/internal/database/repository"
)

type Row = *repository.Record

var errNotNumber = errors.New("not a number")

// RecordColumns builds the column set of the records grid. categories restricts the
// category column when non-empty.
func RecordColumns(categories []string) []*column.Column[Row] {
	category := []column.Rule{column.Required()}
	if len(categories) > 0 {
		category = append(category, column.OneOf(categories...))
	}
	return []*column.Column[Row]{
		{
			Layout: column.Layout{
				ID: "name", Header: "Name", Policy: column.Fill, Width: 2, MinWidth: 12, MaxWidth: 48,
				Visible: true, Sortable: true, Filterable: true, Searchable: true,
			},
			Editable: true,
			Get:      func(r Row) any { return r.Name },
			Set: func(r Row, v any) error {
				r.Name = strings.TrimSpace(column.Text(v))
				return nil
			},
			Validate:  column.Rules[Row](column.Required(), column.MaxLen(60)),
			Aggregate: column.AggregateCount,
		},
		{
			Layout: column.Layout{
				ID: "category", Header: "Category", Policy: column.FitToHeader, MinWidth: 12, MaxWidth: 20,
				Visible: true, Sortable: true, Filterable: true, Searchable: true,
			},
			Editable: true,
			Get:      func(r Row) any { return r.Category },
			Set: func(r Row, v any) error {
				r.Category = strings.TrimSpace(column.Text(v))
				return nil
			},
			Validate: column.Rules[Row](category...),
		},
		{
			Layout: column.Layout{
				ID: "quantity", Header: "Qty", Policy: column.Fixed, Width: 7, MinWidth: 5,
				Visible: true, Sortable: true, Filterable: true,
			},
			Editable: true,
			Get:      func(r Row) any { return r.Quantity },
			Set: func(r Row, v any) error {
				f, ok := column.ToFloat(v)
				if !ok {
					return fmt.Errorf("quantity %v: %w", v, errNotNumber)
				}
				r.Quantity = int64(f)
				return nil
			},
			Parse: func(s string) (any, error) {
				return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			},
			Validate:  column.Rules[Row](column.Range(0, 1_000_000)),
			Aggregate: column.AggregateSum,
		},
		{
			Layout: column.Layout{
				ID: "price", Header: "Price", Policy: column.Fixed, Width: 11, MinWidth: 8,
				Visible: true, Sortable: true,
			},
			Editable: true,
			Get:      func(r Row) any { return r.PriceCents },
			Set: func(r Row, v any) error {
				f, ok := column.ToFloat(v)
				if !ok {
					return fmt.Errorf("price %v: %w", v, errNotNumber)
				}
				r.PriceCents = int64(f)
				return nil
			},
			Parse:     parseDollars,
			Format:    formatCents,
			Validate:  column.Rules[Row](column.Range(0, 100_000_000)),
			Aggregate: column.AggregateAverage,
		},
		{
			Layout: column.Layout{
				ID: "active", Header: "Active", Policy: column.FitToHeader,
				Visible: true, Sortable: true, Filterable: true,
			},
			Editable: true,
			Get:      func(r Row) any { return r.Active },
			Set: func(r Row, v any) error {
				b, ok := v.(bool)
				if !ok {
					return fmt.Errorf("active %v: not a boolean", v)
				}
				r.Active = b
				return nil
			},
			Parse:  parseBool,
			Format: formatBool,
			Validate: func(_ Row, v any) column.Outcome {
				if _, ok := v.(bool); !ok {
					return column.Fail("must be yes or no")
				}
				return column.Ok()
			},
		},
		{
			Layout: column.Layout{
				ID: "notes", Header: "Notes", Policy: column.Fill, Width: 3, MinWidth: 10,
				Visible: true, Searchable: true, Filterable: true,
			},
			Editable: true,
			Get: func(r Row) any {
				if r.Notes == nil {
					return ""
				}
				return *r.Notes
			},
			Set: func(r Row, v any) error {
				s := strings.TrimSpace(column.Text(v))
				if s == "" {
					r.Notes = nil
					return nil
				}
				r.Notes = &s
				return nil
			},
			Validate: column.Rules[Row](column.MaxLen(200)),
		},
		{
			Layout: column.Layout{
				ID: "updated", Header: "Updated", Policy: column.AutoLegacy, MinWidth: 10,
				Visible: false, Sortable: true,
			},
			ReadOnly: true,
			Get: func(r Row) any {
				if r.UpdatedAt.IsZero() {
					return nil
				}
				return r.UpdatedAt
			},
			Format: func(v any) string {
				t, ok := v.(time.Time)
				if !ok {
					return ""
				}
				return t.Local().Format("2006-01-02 15:04")
			},
		},
	}
}

func dollarsToCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	s = strings.TrimPrefix(s, "$")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(f * 100)), nil
}

func parseDollars(s string) (any, error) { return dollarsToCents(s) }

func formatCents(v any) string {
	f, ok := column.ToFloat(v)
	if !ok {
		return column.Text(v)
	}
	return strconv.FormatFloat(f/100, 'f', 2, 64)
}

func parseBool(s string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1", "on":
		return true, nil
	case "n", "no", "false", "0", "off":
		return false, nil
	}
	return nil, fmt.Errorf("not a boolean: %q", s)
}

func formatBool(v any) string {
	if b, ok := v.(bool); ok && b {
		return "yes"
	}
	if _, ok := v.(bool); ok {
		return "no"
	}
	return ""
}

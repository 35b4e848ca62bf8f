package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/stef-k/datagrid/internal/column"
	"github.com/stef-k/datagrid/internal/pipeline"
	"github.com/stef-k/datagrid/internal/service"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")).Background(lipgloss.Color("238"))
	headerActive   = headerStyle.Foreground(lipgloss.Color("#f9e2af"))
	cursorStyle    = lipgloss.NewStyle().Background(lipgloss.Color("#313244")).Bold(true)
	cellCursor     = lipgloss.NewStyle().Background(lipgloss.Color("#45475a")).Bold(true)
	invalidStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
)

func (a *App) View() string {
	if a.width == 0 {
		return "loading…"
	}
	cols := a.eng.VisibleColumns()
	widths := a.cellWidths(cols)

	var b strings.Builder
	b.WriteString(a.renderHeader(cols, widths))
	b.WriteByte('\n')

	display := a.eng.Display()
	body := a.bodyRows()
	for i := 0; i < body; i++ {
		idx := a.top + i
		if idx < len(display) {
			b.WriteString(a.renderRow(idx, cols, widths))
		}
		b.WriteByte('\n')
	}

	if a.mode != modeBrowse {
		b.WriteString(a.input.View())
		b.WriteByte('\n')
	}
	b.WriteString(statusBarStyle.Render(padCell(a.statusLine(), a.width, false)))
	b.WriteByte('\n')
	b.WriteString(a.help.View(a.keys))
	return b.String()
}

// cellWidths floors the resolved pixel widths to whole cells, one pixel per cell.
func (a *App) cellWidths(cols []*column.Column[service.Row]) []int {
	resolved := a.eng.Widths()
	out := make([]int, len(cols))
	for i, c := range cols {
		w, ok := resolved[c.ID]
		if !ok {
			w = c.ActualWidth()
		}
		out[i] = max(1, int(math.Floor(w)))
	}
	return out
}

func (a *App) renderHeader(cols []*column.Column[service.Row], widths []int) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		label := c.Header
		switch a.eng.SortDirection(c.ID) {
		case pipeline.Ascending:
			label += " ▲"
		case pipeline.Descending:
			label += " ▼"
		}
		if _, ok := a.eng.Filter(c.ID); ok {
			label += " ⧩"
		}
		style := headerStyle
		if i == a.colCursor {
			style = headerActive
		}
		parts[i] = style.Render(padCell(label, widths[i], false))
	}
	return ansi.Truncate(strings.Join(parts, headerStyle.Render(" ")), a.width, "")
}

func (a *App) renderRow(idx int, cols []*column.Column[service.Row], widths []int) string {
	var cells []string
	var row service.Row
	if v, ok := a.rows.Handle(idx); ok && v.row != nil && len(v.cells) == len(cols) {
		cells, row = v.cells, v.row
	} else {
		row = a.eng.Display()[idx]
		for _, c := range cols {
			cells = append(cells, c.Text(row))
		}
	}

	activeRow, activeCol, editing := a.eng.Editor().Active()
	parts := make([]string, len(cols))
	for i, c := range cols {
		text := cells[i]
		if editing && activeRow == row && activeCol == c {
			text = a.input.Value()
		}
		cell := padCell(text, widths[i], isNumeric(c))
		switch {
		case len(a.eng.Editor().CellErrors(row, c.ID)) > 0:
			cell = invalidStyle.Render(cell)
		case idx == a.cursor && i == a.colCursor:
			cell = cellCursor.Render(cell)
		case idx == a.cursor:
			cell = cursorStyle.Render(cell)
		}
		parts[i] = cell
	}
	sep := " "
	if idx == a.cursor {
		sep = cursorStyle.Render(" ")
	}
	return ansi.Truncate(strings.Join(parts, sep), a.width, "")
}

func isNumeric(c *column.Column[service.Row]) bool {
	return c.Aggregate == column.AggregateSum || c.Aggregate == column.AggregateAverage
}

// padCell truncates text to w cells and pads it, right-aligned when numeric.
func padCell(text string, w int, right bool) string {
	if w <= 0 {
		return ""
	}
	if ansi.StringWidth(text) > w {
		text = ansi.Truncate(text, w, "…")
	}
	gap := strings.Repeat(" ", max(0, w-ansi.StringWidth(text)))
	if right {
		return gap + text
	}
	return text + gap
}

func (a *App) statusLine() string {
	var parts []string
	if !a.eng.Valid() {
		parts = append(parts, fmt.Sprintf("✗ %d invalid", len(a.eng.Errors())))
	}
	if a.eng.Paging() {
		parts = append(parts, fmt.Sprintf("page %d/%d", a.eng.Page(), a.eng.PageCount()))
	}
	parts = append(parts, fmt.Sprintf("%d/%d rows", a.eng.Total(), len(a.eng.Items())))
	if qty, err := a.eng.Summary("quantity"); err == nil && qty.Ok {
		parts = append(parts, fmt.Sprintf("qty %.0f", qty.Value))
	}
	if d := a.eng.History().UndoDescription(); d != "" {
		parts = append(parts, "undo: "+d)
	}
	if a.svc.Dirty() {
		parts = append(parts, "● unsaved")
	}
	if a.status != "" {
		parts = append(parts, dimStyle.Render(a.status))
	}
	return strings.Join(parts, "  ")
}

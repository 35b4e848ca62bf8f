package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stef-k/datagrid/internal/column"
	"github.com/stef-k/datagrid/internal/config"
	"github.com/stef-k/datagrid/internal/database/repository"
	"github.com/stef-k/datagrid/internal/grid"
	"github.com/stef-k/datagrid/internal/pipeline"
	"github.com/stef-k/datagrid/internal/service"
	"github.com/stef-k/datagrid/internal/virtualize"
)

type mode string

const (
	modeBrowse mode = "browse"
	modeEdit   mode = "edit"
	modeSearch mode = "search"
	modeFilter mode = "filter"
	modeImport mode = "import"
)

// rowView is a recycled row handle: the rendered cell texts of one display index.
type rowView struct {
	index int
	row   service.Row
	cells []string
}

// App is the Bubble Tea model hosting the records grid.
type App struct {
	ctx  context.Context
	svc  *service.GridService
	eng  *grid.Engine[service.Row]
	cfg  config.Config
	log  *slog.Logger
	keys keyMap
	help help.Model

	input     textinput.Model
	mode      mode
	filterCol string

	width     int
	height    int
	cursor    int
	colCursor int
	top       int

	rows        *virtualize.Virtualizer[*rowView]
	status      string
	confirmQuit bool
}

func New(ctx context.Context, svc *service.GridService, cfg config.Config, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 256

	a := &App{
		ctx:   ctx,
		svc:   svc,
		eng:   svc.Engine,
		cfg:   cfg,
		log:   log,
		keys:  newKeyMap(),
		help:  help.New(),
		input: in,
		mode:  modeBrowse,
	}
	a.rows = virtualize.New(virtualize.Callbacks[*rowView]{
		Create:  func(int) *rowView { return &rowView{} },
		Update:  a.bindRow,
		Cleanup: func(v *rowView) { v.row = nil; v.cells = v.cells[:0]; v.index = -1 },
	})
	a.eng.AttachWindow(a.rows)
	return a
}

func (a *App) bindRow(v *rowView, index int) {
	display := a.eng.Display()
	v.index = index
	v.cells = v.cells[:0]
	if index < 0 || index >= len(display) {
		v.row = nil
		return
	}
	v.row = display[index]
	for _, c := range a.eng.VisibleColumns() {
		v.cells = append(v.cells, c.Text(v.row))
	}
}

type recordsMsg []repository.Record
type errMsg struct{ err error }

// Init lists the records off the update loop; Update installs them into the engine.
func (a *App) Init() tea.Cmd {
	return loadRecords(a.ctx, a.svc.Records)
}

func loadRecords(ctx context.Context, repo *repository.RecordRepo) tea.Cmd {
	return func() tea.Msg {
		recs, err := repo.List(ctx, repository.RecordFilters{})
		if err != nil {
			return errMsg{fmt.Errorf("list records: %w", err)}
		}
		return recordsMsg(recs)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.help.Width = m.Width
		a.input.Width = m.Width - 4
		a.relayout()
		return a, nil
	case recordsMsg:
		a.svc.Install(m)
		a.status = fmt.Sprintf("%d records", len(a.eng.Items()))
		a.relayout()
		return a, nil
	case errMsg:
		a.status = "error: " + m.err.Error()
		a.log.Error("tui", "err", m.err)
		return a, nil
	case tea.KeyMsg:
		if a.mode != modeBrowse {
			return a.handleInputKey(m)
		}
		return a.handleBrowseKey(m)
	}
	return a, nil
}

func (a *App) bodyRows() int {
	// header, status line and help line
	n := a.height - 3
	if a.mode != modeBrowse {
		n--
	}
	if n < 1 {
		n = 1
	}
	return n
}

// relayout resolves widths for the terminal and reconciles the row window.
func (a *App) relayout() {
	cols := a.eng.VisibleColumns()
	seps := len(cols) - 1
	if seps < 0 {
		seps = 0
	}
	for _, c := range cols {
		if c.Policy == column.AutoLegacy {
			c.SetActualWidth(float64(a.autoWidth(c)))
		}
	}
	a.eng.Resize(float64(a.width - seps))
	a.scroll()
}

func (a *App) autoWidth(c *column.Column[service.Row]) int {
	w := len([]rune(c.Header))
	display := a.eng.Display()
	end := min(len(display), a.top+a.bodyRows())
	for i := a.top; i < end; i++ {
		w = max(w, len([]rune(c.Text(display[i]))))
	}
	return max(w, int(c.MinWidth))
}

func (a *App) scroll() {
	total := len(a.eng.Display())
	visible := a.bodyRows()
	a.cursor, a.top = clampCursorWindow(a.cursor, a.top, total, visible)
	a.eng.Scroll(float64(a.top), float64(visible))
}

func clampCursorWindow(cursor, top, total, visible int) (int, int) {
	if total <= 0 {
		return 0, 0
	}
	cursor = max(0, min(cursor, total-1))
	top = max(0, min(top, max(0, total-visible)))
	if cursor < top {
		top = cursor
	}
	if cursor >= top+visible {
		top = cursor - visible + 1
	}
	return cursor, top
}

func (a *App) currentRow() (service.Row, bool) {
	display := a.eng.Display()
	if a.cursor < 0 || a.cursor >= len(display) {
		return nil, false
	}
	return display[a.cursor], true
}

func (a *App) currentColumn() (*column.Column[service.Row], bool) {
	cols := a.eng.VisibleColumns()
	if len(cols) == 0 {
		return nil, false
	}
	a.colCursor = max(0, min(a.colCursor, len(cols)-1))
	return cols[a.colCursor], true
}

func (a *App) handleBrowseKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(m, a.keys.Quit) {
		a.confirmQuit = false
	}
	switch {
	case key.Matches(m, a.keys.Quit):
		if a.svc.Dirty() && !a.confirmQuit {
			a.confirmQuit = true
			a.status = "unsaved changes: w to save, q again to discard"
			return a, nil
		}
		return a, tea.Quit
	case key.Matches(m, a.keys.Up):
		a.cursor--
	case key.Matches(m, a.keys.Down):
		a.cursor++
	case key.Matches(m, a.keys.PageUp):
		a.cursor -= a.bodyRows()
		a.top -= a.bodyRows()
	case key.Matches(m, a.keys.PageDown):
		a.cursor += a.bodyRows()
		a.top += a.bodyRows()
	case key.Matches(m, a.keys.Left):
		a.colCursor--
		a.currentColumn()
	case key.Matches(m, a.keys.Right):
		a.colCursor++
		a.currentColumn()
	case key.Matches(m, a.keys.Sort):
		a.toggleSort()
	case key.Matches(m, a.keys.Search):
		a.openInput(modeSearch, a.eng.Search())
	case key.Matches(m, a.keys.Filter):
		a.openFilter()
	case key.Matches(m, a.keys.NextPage):
		a.eng.NextPage()
		a.cursor = 0
	case key.Matches(m, a.keys.PrevPage):
		a.eng.PrevPage()
		a.cursor = 0
	case key.Matches(m, a.keys.Toggle):
		a.toggleBool()
	case key.Matches(m, a.keys.Edit):
		a.beginEdit()
	case key.Matches(m, a.keys.New):
		if r, err := a.svc.NewRecord(a.ctx); err != nil {
			a.status = "error: " + err.Error()
		} else {
			a.focusRow(r)
		}
	case key.Matches(m, a.keys.Delete):
		if r, ok := a.currentRow(); ok {
			a.report(a.svc.DeleteRecord(r), "deleted "+r.Name)
		}
	case key.Matches(m, a.keys.Undo):
		ok, err := a.eng.Undo()
		a.reportHistory("undo", ok, err)
	case key.Matches(m, a.keys.Redo):
		ok, err := a.eng.Redo()
		a.reportHistory("redo", ok, err)
	case key.Matches(m, a.keys.Hide):
		if c, ok := a.currentColumn(); ok && len(a.eng.VisibleColumns()) > 1 {
			a.report(a.eng.SetColumnVisible(c.ID, false), "hid "+c.Header+" (u to undo)")
		}
	case key.Matches(m, a.keys.Import):
		a.openInput(modeImport, "")
	case key.Matches(m, a.keys.Save):
		a.save()
	case key.Matches(m, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
	}
	a.relayout()
	return a, nil
}

func (a *App) report(err error, ok string) {
	if err != nil {
		a.status = "error: " + err.Error()
		return
	}
	a.status = ok
}

func (a *App) reportHistory(verb string, ok bool, err error) {
	switch {
	case err != nil:
		a.status = verb + " failed: " + err.Error()
	case !ok:
		a.status = "nothing to " + verb
	default:
		a.status = verb + " done"
	}
}

func (a *App) focusRow(r service.Row) {
	for i, d := range a.eng.Display() {
		if d == r {
			a.cursor = i
			return
		}
	}
}

func (a *App) toggleSort() {
	c, ok := a.currentColumn()
	if !ok {
		return
	}
	d, err := a.eng.ToggleSort(c.ID)
	if err != nil {
		a.status = err.Error()
		return
	}
	a.status = fmt.Sprintf("sort %s %s", c.Header, d)
}

func (a *App) toggleBool() {
	r, ok := a.currentRow()
	c, okc := a.currentColumn()
	if !ok || !okc {
		return
	}
	b, isBool := c.Value(r).(bool)
	if !isBool {
		return
	}
	started, err := a.eng.BeginEdit(r, c.ID)
	if err != nil || !started {
		a.report(err, "read-only")
		return
	}
	_ = a.eng.SetPending(!b)
	a.commit()
}

func (a *App) beginEdit() {
	r, ok := a.currentRow()
	c, okc := a.currentColumn()
	if !ok || !okc {
		return
	}
	started, err := a.eng.BeginEdit(r, c.ID)
	if err != nil {
		a.status = "error: " + err.Error()
		return
	}
	if !started {
		a.status = c.Header + " is not editable"
		return
	}
	a.openInput(modeEdit, c.Text(r))
}

func (a *App) commit() bool {
	out, err := a.eng.CommitEdit()
	if err != nil {
		a.status = "error: " + err.Error()
		return false
	}
	if !out.Valid() {
		a.status = "invalid: " + strings.Join(out.Errors, "; ")
		return false
	}
	a.status = "saved to grid (w writes to disk)"
	return true
}

func (a *App) openInput(md mode, value string) {
	a.mode = md
	a.input.SetValue(value)
	a.input.CursorEnd()
	a.input.Focus()
}

func (a *App) closeInput() {
	a.mode = modeBrowse
	a.input.Blur()
	a.input.SetValue("")
}

func (a *App) openFilter() {
	c, ok := a.currentColumn()
	if !ok {
		return
	}
	values, err := a.eng.DistinctValues(c.ID)
	if err != nil {
		a.status = err.Error()
		return
	}
	a.filterCol = c.ID
	current := ""
	if f, ok := a.eng.Filter(c.ID); ok {
		current = f.Contains
		if len(f.Values) > 0 {
			current = strings.Join(f.Values, "|")
		}
	}
	if len(values) > 8 {
		values = append(values[:8:8], "…")
	}
	a.status = fmt.Sprintf("filter %s: %s", c.Header, strings.Join(values, ", "))
	a.openInput(modeFilter, current)
}

func (a *App) handleInputKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyCtrlC:
		return a, tea.Quit
	case tea.KeyEsc:
		if a.mode == modeEdit {
			a.eng.CancelEdit()
			a.status = "edit cancelled"
		}
		a.closeInput()
		a.relayout()
		return a, nil
	case tea.KeyEnter:
		a.submit(strings.TrimSpace(a.input.Value()))
		a.relayout()
		return a, nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(m)
	return a, cmd
}

func (a *App) submit(text string) {
	switch a.mode {
	case modeEdit:
		_, c, ok := a.eng.Editor().Active()
		if !ok {
			a.closeInput()
			return
		}
		_ = a.eng.SetPending(c.ParseText(text))
		if a.commit() {
			a.closeInput()
		}
	case modeSearch:
		a.eng.SetSearch(text)
		a.cursor = 0
		a.status = fmt.Sprintf("%d matches", a.eng.Total())
		a.closeInput()
	case modeFilter:
		a.report(a.eng.SetFilter(a.filterCol, parseFilter(text)), fmt.Sprintf("%d rows", a.eng.Total()))
		a.cursor = 0
		a.closeInput()
	case modeImport:
		a.importFile(text)
		a.closeInput()
	}
}

// parseFilter reads "a|b" as a value set and anything else as a substring.
func parseFilter(text string) pipeline.Filter {
	if strings.Contains(text, "|") {
		var vals []string
		for _, v := range strings.Split(text, "|") {
			if v = strings.TrimSpace(v); v != "" {
				vals = append(vals, v)
			}
		}
		return pipeline.Filter{Values: vals}
	}
	if strings.HasPrefix(text, "=") {
		return pipeline.Filter{Values: []string{strings.TrimPrefix(text, "=")}}
	}
	return pipeline.Filter{Contains: text}
}

// Store calls run on the update loop: the engine is single-threaded.
func (a *App) importFile(path string) {
	if path == "" {
		a.status = "enter a CSV path"
		return
	}
	abs := path
	if p, err := filepath.Abs(path); err == nil {
		abs = p
	}
	f, err := os.Open(abs)
	if err != nil {
		a.status = fmt.Sprintf("open %s: %v", abs, err)
		return
	}
	defer f.Close()
	res, err := a.svc.ImportCSV(a.ctx, f)
	if err != nil {
		a.status = "import failed: " + err.Error()
		return
	}
	a.status = fmt.Sprintf("imported %d, skipped %d, %d errors", res.Imported, res.Skipped, len(res.Errors))
	for _, e := range res.Errors {
		a.log.Warn("import", "file", filepath.Base(abs), "err", e)
	}
}

func (a *App) save() {
	res, err := a.svc.Save(a.ctx)
	if errors.Is(err, service.ErrInvalidGrid) {
		a.status = fmt.Sprintf("fix %d invalid cells before saving", len(a.eng.Errors()))
		return
	}
	if err != nil {
		a.status = "save failed: " + err.Error()
		return
	}
	a.status = fmt.Sprintf("saved: %d new, %d updated, %d deleted", res.Inserted, res.Updated, res.Deleted)
}

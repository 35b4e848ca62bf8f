package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Sort     key.Binding
	Search   key.Binding
	Filter   key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Edit     key.Binding
	Toggle   key.Binding
	New      key.Binding
	Delete   key.Binding
	Undo     key.Binding
	Redo     key.Binding
	Hide     key.Binding
	Import   key.Binding
	Save     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "column")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "column")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		Sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Filter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter column")),
		NextPage: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next page")),
		PrevPage: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev page")),
		Edit:     key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit")),
		Toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new row")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete row")),
		Undo:     key.NewBinding(key.WithKeys("u", "ctrl+z"), key.WithHelp("u", "undo")),
		Redo:     key.NewBinding(key.WithKeys("r", "ctrl+y"), key.WithHelp("r", "redo")),
		Hide:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "hide column")),
		Import:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import csv")),
		Save:     key.NewBinding(key.WithKeys("ctrl+s", "w"), key.WithHelp("w", "save")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Sort, k.Search, k.Filter, k.Undo, k.Save, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.PageUp, k.PageDown},
		{k.Sort, k.Search, k.Filter, k.NextPage, k.PrevPage, k.Hide},
		{k.Edit, k.Toggle, k.New, k.Delete, k.Undo, k.Redo},
		{k.Import, k.Save, k.Help, k.Quit},
	}
}

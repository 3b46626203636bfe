package console

import "github.com/charmbracelet/bubbles/key"

// keyMap lists every binding the console reacts to. Which ones are live
// depends on the page; the footer only shows the current page's set.
type keyMap struct {
	Quit key.Binding
	Help key.Binding

	// auth pages
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding
	SwitchTo  key.Binding
	Back      key.Binding

	// dashboard
	Search  key.Binding
	Refresh key.Binding
	NewLead key.Binding
	Edit    key.Binding
	Detail  key.Binding
	Delete  key.Binding
	NextPg  key.Binding
	PrevPg  key.Binding
	Logout  key.Binding
	Confirm key.Binding
	Cancel  key.Binding

	// form
	Save   key.Binding
	Cycle  key.Binding
	Toggle key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),

		NextField: key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		SwitchTo:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "sign in / register")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),

		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		NewLead: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new lead")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Detail:  key.NewBinding(key.WithKeys("enter", "v"), key.WithHelp("enter", "view")),
		Delete:  key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		NextPg:  key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→", "next page")),
		PrevPg:  key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←", "prev page")),
		Logout:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		Confirm: key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
		Cancel:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),

		Save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Cycle:  key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "change")),
		Toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	}
}

// pageKeys adapts a slice of bindings to help.KeyMap.
type pageKeys struct {
	short []key.Binding
}

func (p pageKeys) ShortHelp() []key.Binding  { return p.short }
func (p pageKeys) FullHelp() [][]key.Binding { return [][]key.Binding{p.short} }

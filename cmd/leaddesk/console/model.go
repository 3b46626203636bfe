// Package console is the interactive lead dashboard. It is a single
// bubbletea loop: remote calls run as commands and come back as typed
// messages tagged with the view sequence they were issued under.
package console

import (
	"context"
	"strings"
	"time"

	"leaddesk/cmd/leaddesk/ui"
	"leaddesk/internal/config"
	"leaddesk/internal/logging"
	"leaddesk/internal/notify"
	"leaddesk/internal/route"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Options wires the console to its services.
type Options struct {
	Session Session
	Leads   LeadAPI
	Queue   *notify.Queue
	Config  *config.Config
	// StartPath defaults to "/".
	StartPath string
}

// Model is the root bubbletea model.
type Model struct {
	ctx     context.Context
	session Session
	leads   LeadAPI
	queue   *notify.Queue
	cfg     *config.Config

	styles   ui.Styles
	layout   ui.LayoutConfig
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	markdown *ui.MarkdownRenderer

	// seq identifies the mounted view. Every navigation bumps it.
	seq     int
	route   route.Route
	pending string
	waiting bool

	auth authPage
	dash dashboard
	form formPage

	toasts []notify.Notice
	now    func() time.Time
}

// New builds the console. ctx bounds every remote call it makes.
func New(ctx context.Context, opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	q := opts.Queue
	if q == nil {
		q = notify.NewQueue(cfg.GetToastDuration())
	}
	start := opts.StartPath
	if start == "" {
		start = route.PathRoot
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	styles := ui.NewStyles(ui.ThemeFor(cfg.UI.Theme))
	sp.Style = styles.Spinner

	return Model{
		ctx:      ctx,
		session:  opts.Session,
		leads:    opts.Leads,
		queue:    q,
		cfg:      cfg,
		styles:   styles,
		layout:   ui.NewLayoutConfig(ui.MinimumTerminalWidth, 24),
		keys:     defaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		markdown: &ui.MarkdownRenderer{},
		pending:  start,
		waiting:  true,
		now:      time.Now,
	}
}

// Init starts session resolution. Nothing renders until it finishes.
func (m Model) Init() tea.Cmd {
	logging.UI("console starting at %s", m.pending)
	return tea.Batch(m.spinner.Tick, m.resolveCmd())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayoutConfig(max(msg.Width, 0), max(msg.Height, 0))
		m.help.Width = m.layout.ContentWidth()
		m.resize()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Help) && !m.typing() {
			m.help.ShowAll = !m.help.ShowAll
			break
		}
		cmds = append(cmds, m.handleKey(msg))

	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case sessionResolvedMsg:
		logging.UIDebug("session resolved, authenticated=%v", msg.state.Authenticated())
		if m.waiting {
			cmds = append(cmds, m.navigate(m.pending))
		}

	case ConfigReloadedMsg:
		cmds = append(cmds, m.applyConfig(msg.Config))

	case toastExpiredMsg:
		// pruning below

	default:
		cmds = append(cmds, m.handleResult(msg))
	}

	cmds = append(cmds, m.collectToasts())
	return m, tea.Batch(cmds...)
}

// handleResult dispatches remote call results to the mounted page.
func (m *Model) handleResult(msg tea.Msg) tea.Cmd {
	if s, ok := resultSeq(msg); ok && s != m.seq {
		logging.UIDebug("dropping %T from view %d (current %d)", msg, s, m.seq)
		return nil
	}

	switch msg := msg.(type) {
	case authDoneMsg:
		return m.authDone(msg)
	case loggedOutMsg:
		return m.navigate(route.PathLogin)
	case leadsLoadedMsg:
		return m.leadsLoaded(msg)
	case leadDeletedMsg:
		return m.leadDeleted(msg)
	case leadLoadedMsg:
		return m.leadLoaded(msg)
	case leadSavedMsg:
		return m.leadSaved(msg)
	}

	return m.updateInputs(msg)
}

func resultSeq(msg tea.Msg) (int, bool) {
	switch msg := msg.(type) {
	case authDoneMsg:
		return msg.seq, true
	case leadsLoadedMsg:
		return msg.seq, true
	case leadDeletedMsg:
		return msg.seq, true
	case leadLoadedMsg:
		return msg.seq, true
	case leadSavedMsg:
		return msg.seq, true
	}
	return 0, false
}

// navigate unmounts the current view and mounts the one path resolves
// to under the current session state.
func (m *Model) navigate(path string) tea.Cmd {
	m.seq++
	r, d := route.Resolve(path, m.session.State())
	logging.UIDebug("navigate %s -> %s (%s)", path, r.Path, d.Action)

	if d.Action != route.Render {
		m.pending = path
		m.waiting = true
		return m.spinner.Tick
	}

	m.waiting = false
	m.pending = ""
	m.route = r

	switch r.Kind {
	case route.KindLogin:
		return m.auth.mount(false)
	case route.KindRegister:
		return m.auth.mount(true)
	case route.KindDashboard:
		return m.mountDashboard()
	case route.KindNewLead, route.KindEditLead:
		return m.mountForm(r.ID)
	}
	return nil
}

func (m *Model) applyConfig(c *config.Config) tea.Cmd {
	if c == nil {
		return nil
	}
	logging.UI("applying reloaded config")
	prevSize := m.cfg.GetPageSize()
	m.cfg = c

	if err := logging.Configure(c.Logging.Settings()); err != nil {
		logging.ConfigWarn("re-applying logging settings: %v", err)
	}
	m.queue.SetTTL(c.GetToastDuration())
	m.styles = ui.NewStyles(ui.ThemeFor(c.UI.Theme))
	m.spinner.Style = m.styles.Spinner

	if m.route.Kind == route.KindDashboard && !m.waiting && c.GetPageSize() != prevSize {
		q := m.dash.browser.SetLimit(c.GetPageSize())
		m.dash.loading = true
		return m.fetchCmd(q)
	}
	return nil
}

// collectToasts moves queued notices onto the screen and drops expired
// ones. A timer is armed for the earliest expiry.
func (m *Model) collectToasts() tea.Cmd {
	now := m.now()
	m.toasts = append(m.toasts, m.queue.Drain()...)

	kept := m.toasts[:0]
	var next time.Time
	for _, n := range m.toasts {
		if n.Expired(now) {
			continue
		}
		kept = append(kept, n)
		if !n.ExpiresAt.IsZero() && (next.IsZero() || n.ExpiresAt.Before(next)) {
			next = n.ExpiresAt
		}
	}
	m.toasts = kept

	if next.IsZero() {
		return nil
	}
	return tea.Tick(next.Sub(now), func(time.Time) tea.Msg { return toastExpiredMsg{} })
}

func (m Model) busy() bool {
	return m.waiting || m.dash.loading || m.form.loading || m.form.submitting || m.auth.submitting
}

// typing reports whether a text input has focus, so printable keys
// belong to it.
func (m Model) typing() bool {
	if m.waiting {
		return false
	}
	switch m.route.Kind {
	case route.KindLogin, route.KindRegister:
		return true
	case route.KindDashboard:
		return m.dash.searching
	case route.KindNewLead, route.KindEditLead:
		return m.form.focusedText()
	}
	return false
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.waiting {
		return nil
	}
	switch m.route.Kind {
	case route.KindLogin, route.KindRegister:
		return m.authKey(msg)
	case route.KindDashboard:
		return m.dashboardKey(msg)
	case route.KindNewLead, route.KindEditLead:
		return m.formKey(msg)
	}
	return nil
}

func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	if m.waiting {
		return nil
	}
	switch m.route.Kind {
	case route.KindLogin, route.KindRegister:
		return m.auth.updateInputs(msg)
	case route.KindDashboard:
		return m.dash.updateInputs(msg)
	case route.KindNewLead, route.KindEditLead:
		return m.form.updateInputs(msg)
	}
	return nil
}

func (m *Model) resize() {
	m.dash.resize(m.layout)
}

// View renders the console.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")

	var body string
	switch {
	case m.waiting:
		body = m.spinner.View() + " " + m.styles.Muted.Render("Loading...")
	case m.route.Kind == route.KindLogin || m.route.Kind == route.KindRegister:
		body = m.auth.view(m.styles)
	case m.route.Kind == route.KindDashboard:
		body = m.dashboardView()
	case m.route.Kind == route.KindNewLead || m.route.Kind == route.KindEditLead:
		body = m.form.view(m.styles, m.spinner.View())
	}
	b.WriteString(m.styles.Content.Render(body))
	b.WriteString("\n")

	if len(m.toasts) > 0 {
		lines := make([]string, 0, len(m.toasts))
		for _, n := range m.toasts {
			lines = append(lines, m.styles.Notice(n))
		}
		b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Footer.Render(m.help.View(m.currentKeys())))
	return b.String()
}

func (m Model) header() string {
	title := "leaddesk"
	if s := m.session.State(); s.Authenticated() {
		title += "  ·  " + s.User.DisplayName()
	}
	return m.styles.Header.Width(m.layout.ContentWidth()).Render(title)
}

func (m Model) currentKeys() help.KeyMap {
	k := m.keys
	if m.waiting {
		return pageKeys{short: []key.Binding{k.Quit}}
	}
	switch m.route.Kind {
	case route.KindLogin, route.KindRegister:
		return pageKeys{short: []key.Binding{k.NextField, k.Submit, k.SwitchTo, k.Quit}}
	case route.KindDashboard:
		if m.dash.confirm != nil {
			return pageKeys{short: []key.Binding{k.Confirm, k.Cancel}}
		}
		return pageKeys{short: []key.Binding{k.Search, k.Refresh, k.NewLead, k.Detail, k.Edit, k.Delete, k.PrevPg, k.NextPg, k.Logout, k.Quit}}
	default:
		return pageKeys{short: []key.Binding{k.NextField, k.Cycle, k.Toggle, k.Save, k.Back, k.Quit}}
	}
}

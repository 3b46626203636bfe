package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"leaddesk/cmd/leaddesk/ui"
	"leaddesk/internal/leads"
	"leaddesk/internal/logging"
	"leaddesk/internal/notify"
	"leaddesk/internal/route"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// dashboard is the lead list. All list state lives in the browser; the
// widgets only mirror it.
type dashboard struct {
	browser *leads.Browser
	table   table.Model
	search  textinput.Model
	pager   paginator.Model
	detail  viewport.Model

	searching  bool
	showDetail bool
	confirm    *leads.Lead
	loading    bool
}

var leadColumns = []table.Column{
	{Title: "Name", Width: 20},
	{Title: "Email", Width: 26},
	{Title: "Company", Width: 16},
	{Title: "Source", Width: 13},
	{Title: "Status", Width: 10},
	{Title: "Score", Width: 5},
	{Title: "Value", Width: 12},
	{Title: "Qualified", Width: 9},
}

func (m *Model) mountDashboard() tea.Cmd {
	t := table.New(
		table.WithColumns(leadColumns),
		table.WithFocused(true),
		table.WithHeight(m.layout.TableHeight()),
	)

	si := textinput.New()
	si.Placeholder = "Search by email..."
	si.CharLimit = 100
	si.Width = 40
	si.Prompt = "/ "

	pg := paginator.New()
	pg.Type = paginator.Dots
	pg.PerPage = 1

	m.dash = dashboard{
		browser: leads.NewBrowser(m.cfg.GetPageSize()),
		table:   t,
		search:  si,
		pager:   pg,
		detail:  viewport.New(m.layout.DetailWidth(), m.layout.TableHeight()),
		loading: true,
	}
	m.dash.resize(m.layout)
	return tea.Batch(m.spinner.Tick, m.fetchCmd(m.dash.browser.InitialQuery()))
}

func (d *dashboard) resize(l ui.LayoutConfig) {
	if d.browser == nil {
		return
	}
	d.table.SetHeight(l.TableHeight())
	d.table.SetWidth(l.ContentWidth())
	d.detail.Width = l.DetailWidth()
	d.detail.Height = l.TableHeight()
}

func (d *dashboard) updateInputs(msg tea.Msg) tea.Cmd {
	if d.browser == nil {
		return nil
	}
	var cmd tea.Cmd
	if d.searching {
		d.search, cmd = d.search.Update(msg)
		return cmd
	}
	d.table, cmd = d.table.Update(msg)
	return cmd
}

func (d *dashboard) selected() (leads.Lead, bool) {
	rows := d.browser.Rows()
	i := d.table.Cursor()
	if i < 0 || i >= len(rows) {
		return leads.Lead{}, false
	}
	return rows[i], true
}

func (m *Model) dashboardKey(msg tea.KeyMsg) tea.Cmd {
	d := &m.dash
	k := m.keys

	if d.confirm != nil {
		switch {
		case key.Matches(msg, k.Confirm):
			l := *d.confirm
			d.confirm = nil
			d.loading = true
			logging.Leads("deleting lead %s", l.ID)
			return tea.Batch(m.spinner.Tick, m.deleteCmd(l))
		case key.Matches(msg, k.Cancel):
			d.confirm = nil
		}
		return nil
	}

	if d.searching {
		switch msg.Type {
		case tea.KeyEnter:
			d.searching = false
			d.search.Blur()
			d.loading = true
			return m.fetchCmd(d.browser.Search(d.search.Value()))
		case tea.KeyEsc:
			d.searching = false
			d.search.Blur()
			return nil
		}
		return d.updateInputs(msg)
	}

	if d.showDetail {
		switch {
		case key.Matches(msg, k.Back), key.Matches(msg, k.Detail):
			d.showDetail = false
			return nil
		case msg.String() == "up" || msg.String() == "down" || msg.String() == "k" || msg.String() == "j":
			var cmd tea.Cmd
			d.detail, cmd = d.detail.Update(msg)
			return cmd
		}
	}

	switch {
	case key.Matches(msg, k.Search):
		d.searching = true
		return d.search.Focus()
	case key.Matches(msg, k.Refresh):
		d.loading = true
		return m.fetchCmd(d.browser.RefreshQuery())
	case key.Matches(msg, k.NewLead):
		return m.navigate(route.PathNewLead)
	case key.Matches(msg, k.Edit):
		if l, ok := d.selected(); ok {
			return m.navigate(route.EditPath(l.ID))
		}
	case key.Matches(msg, k.Detail):
		if l, ok := d.selected(); ok {
			d.showDetail = true
			m.renderDetail(l)
		}
	case key.Matches(msg, k.Delete):
		if l, ok := d.selected(); ok {
			d.confirm = &l
		}
	case key.Matches(msg, k.NextPg):
		return m.pageCmd(d.browser.NextQuery())
	case key.Matches(msg, k.PrevPg):
		return m.pageCmd(d.browser.PrevQuery())
	case key.Matches(msg, k.Logout):
		return m.logoutCmd()
	default:
		cmd := d.updateInputs(msg)
		if d.showDetail {
			if l, ok := d.selected(); ok {
				m.renderDetail(l)
			}
		}
		return cmd
	}
	return nil
}

func (m *Model) pageCmd(q leads.Query, err error) tea.Cmd {
	if errors.Is(err, leads.ErrPageOutOfRange) {
		return nil
	}
	m.dash.loading = true
	return m.fetchCmd(q)
}

func (m *Model) renderDetail(l leads.Lead) {
	w := m.dash.detail.Width
	m.dash.detail.SetContent(m.markdown.Render(ui.LeadMarkdown(l), max(w-2, 20), m.styles.Theme.IsDark))
	m.dash.detail.GotoTop()
}

func (m *Model) leadsLoaded(msg leadsLoadedMsg) tea.Cmd {
	d := &m.dash
	d.loading = false
	if msg.err != nil {
		logging.LeadsError("fetch page %d: %v", msg.query.Page, msg.err)
		notify.Error(m.queue, "Failed to fetch leads")
		return nil
	}

	page := leads.Page{}
	if msg.page != nil {
		page = *msg.page
	}
	d.browser.Apply(msg.query, page)
	p := d.browser.Pagination()
	logging.LeadsDebug("loaded page %d/%d (%d rows)", p.Page, p.TotalPages, len(page.Data))

	rows := make([]table.Row, 0, len(d.browser.Rows()))
	for _, l := range d.browser.Rows() {
		score := ""
		if l.Score != nil {
			score = strconv.Itoa(*l.Score)
		}
		value := ""
		if l.LeadValue != nil {
			value = leads.FormatValue(*l.LeadValue)
		}
		qualified := "No"
		if l.IsQualified {
			qualified = "Yes"
		}
		rows = append(rows, table.Row{
			l.FullName(), l.Email, l.Company, l.Source.Label(), l.Status.Label(), score, value, qualified,
		})
	}
	d.table.SetRows(rows)
	if d.table.Cursor() >= len(rows) {
		d.table.SetCursor(max(len(rows)-1, 0))
	}

	d.pager.SetTotalPages(max(p.TotalPages, 1))
	d.pager.Page = max(p.Page-1, 0)
	d.pager.Type = paginator.Dots
	if p.TotalPages > 12 {
		d.pager.Type = paginator.Arabic
	}

	if d.showDetail {
		if l, ok := d.selected(); ok {
			m.renderDetail(l)
		} else {
			d.showDetail = false
		}
	}
	return nil
}

func (m *Model) leadDeleted(msg leadDeletedMsg) tea.Cmd {
	d := &m.dash
	if msg.err != nil {
		d.loading = false
		logging.LeadsError("delete %s: %v", msg.lead.ID, msg.err)
		notify.Error(m.queue, "Failed to delete lead")
		return nil
	}
	notify.Success(m.queue, "Lead deleted successfully")
	return m.fetchCmd(d.browser.CurrentQuery())
}

func (m Model) dashboardView() string {
	d := m.dash
	s := m.styles
	var b strings.Builder

	st := d.browser.Stats()
	b.WriteString(ui.Cards(s,
		[]string{"Total Leads", "New", "Qualified", "Pipeline Value"},
		[]string{strconv.Itoa(st.Total), strconv.Itoa(st.New), strconv.Itoa(st.Qualified), leads.FormatValue(st.Value)},
	))
	b.WriteString("\n")

	controls := d.search.View()
	if term := d.browser.SearchTerm(); term != "" && !d.searching {
		controls += s.Muted.Render(fmt.Sprintf("  filter: email contains %q", term))
	}
	if d.loading {
		controls += "  " + m.spinner.View()
	}
	b.WriteString(controls + "\n")

	if d.confirm != nil {
		dialog := s.Dialog.Render(
			s.Bold.Render("Delete lead") + "\n\n" +
				fmt.Sprintf("Are you sure you want to delete %s %s?", d.confirm.FirstName, d.confirm.LastName) + "\n\n" +
				s.Muted.Render("y to delete · n to cancel"),
		)
		b.WriteString(dialog + "\n")
		return b.String()
	}

	switch {
	case d.browser.Loaded() && len(d.browser.Rows()) == 0:
		b.WriteString(s.Muted.Render("No leads found") + "\n")
	case d.showDetail && !m.layout.IsCompact:
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, d.table.View(), "  ", s.Card.Render(d.detail.View())) + "\n")
	case d.showDetail:
		b.WriteString(s.Card.Render(d.detail.View()) + "\n")
	default:
		b.WriteString(d.table.View() + "\n")
	}

	if d.browser.Loaded() {
		b.WriteString(s.Muted.Render(d.browser.Showing()))
		if d.browser.ShowPager() {
			b.WriteString("   " + d.browser.PageText())
			if d.pager.Type == paginator.Dots {
				b.WriteString("  " + d.pager.View())
			}
		}
	}
	return b.String()
}

package console

import (
	"context"

	"leaddesk/internal/config"
	"leaddesk/internal/leads"
	"leaddesk/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// Session is the part of the session resolver the console drives.
type Session interface {
	State() session.State
	Resolve(ctx context.Context) session.State
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, p session.Profile) error
	Logout(ctx context.Context)
}

// LeadAPI is the lead half of the remote API.
type LeadAPI interface {
	ListLeads(ctx context.Context, q leads.Query) (*leads.Page, error)
	GetLead(ctx context.Context, id leads.ID) (*leads.Lead, error)
	CreateLead(ctx context.Context, in leads.Input) (*leads.Lead, error)
	UpdateLead(ctx context.Context, id leads.ID, in leads.Input) (*leads.Lead, error)
	DeleteLead(ctx context.Context, id leads.ID) error
}

// Results of remote calls carry the view sequence they were issued
// under. Anything older than the current view is dropped.
type (
	sessionResolvedMsg struct {
		state session.State
	}

	authDoneMsg struct {
		seq int
		err error
	}

	// loggedOutMsg is never stale: the identity is gone whichever view
	// is mounted.
	loggedOutMsg struct{}

	leadsLoadedMsg struct {
		seq   int
		query leads.Query
		page  *leads.Page
		err   error
	}

	leadDeletedMsg struct {
		seq  int
		lead leads.Lead
		err  error
	}

	leadLoadedMsg struct {
		seq  int
		lead *leads.Lead
		err  error
	}

	leadSavedMsg struct {
		seq     int
		editing bool
		err     error
	}

	toastExpiredMsg struct{}
)

// ConfigReloadedMsg is sent by the config watcher when the file changes.
type ConfigReloadedMsg struct {
	Config *config.Config
}

func (m Model) resolveCmd() tea.Cmd {
	ctx, s := m.ctx, m.session
	return func() tea.Msg {
		return sessionResolvedMsg{state: s.Resolve(ctx)}
	}
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	ctx, s, seq := m.ctx, m.session, m.seq
	return func() tea.Msg {
		return authDoneMsg{seq: seq, err: s.Login(ctx, email, password)}
	}
}

func (m Model) registerCmd(p session.Profile) tea.Cmd {
	ctx, s, seq := m.ctx, m.session, m.seq
	return func() tea.Msg {
		return authDoneMsg{seq: seq, err: s.Register(ctx, p)}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	ctx, s := m.ctx, m.session
	return func() tea.Msg {
		s.Logout(ctx)
		return loggedOutMsg{}
	}
}

func (m Model) fetchCmd(q leads.Query) tea.Cmd {
	ctx, api, seq := m.ctx, m.leads, m.seq
	return func() tea.Msg {
		page, err := api.ListLeads(ctx, q)
		return leadsLoadedMsg{seq: seq, query: q, page: page, err: err}
	}
}

func (m Model) deleteCmd(l leads.Lead) tea.Cmd {
	ctx, api, seq := m.ctx, m.leads, m.seq
	return func() tea.Msg {
		return leadDeletedMsg{seq: seq, lead: l, err: api.DeleteLead(ctx, l.ID)}
	}
}

func (m Model) loadLeadCmd(id leads.ID) tea.Cmd {
	ctx, api, seq := m.ctx, m.leads, m.seq
	return func() tea.Msg {
		l, err := api.GetLead(ctx, id)
		return leadLoadedMsg{seq: seq, lead: l, err: err}
	}
}

func (m Model) saveCmd(id leads.ID, in leads.Input) tea.Cmd {
	ctx, api, seq := m.ctx, m.leads, m.seq
	return func() tea.Msg {
		var err error
		if id != "" {
			_, err = api.UpdateLead(ctx, id, in)
		} else {
			_, err = api.CreateLead(ctx, in)
		}
		return leadSavedMsg{seq: seq, editing: id != "", err: err}
	}
}

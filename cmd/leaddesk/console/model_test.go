package console

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"leaddesk/internal/api"
	"leaddesk/internal/config"
	"leaddesk/internal/leads"
	"leaddesk/internal/notify"
	"leaddesk/internal/route"
	"leaddesk/internal/session"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeSession struct {
	mu       sync.Mutex
	user     *session.User
	loginErr error
	logins   int
	logouts  int
	notifier notify.Notifier
}

func (f *fakeSession) State() session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return session.State{}
	}
	u := *f.user
	return session.State{User: &u}
}

func (f *fakeSession) Resolve(context.Context) session.State { return f.State() }

func (f *fakeSession) Login(_ context.Context, email, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	if f.loginErr != nil {
		notify.Error(f.notifier, notify.MessageOr(f.loginErr, "Login failed"))
		return f.loginErr
	}
	f.user = &session.User{ID: "u1", Email: email, FirstName: "Ada", LastName: "Lovelace"}
	notify.Success(f.notifier, "Login successful!")
	return nil
}

func (f *fakeSession) Register(_ context.Context, p session.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	f.user = &session.User{ID: "u2", Email: p.Email, FirstName: p.FirstName, LastName: p.LastName}
	return nil
}

func (f *fakeSession) Logout(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	f.user = nil
}

type fakeLeads struct {
	mu sync.Mutex

	rows       []leads.Lead
	total      int
	totalPages int
	listErr    error
	queries    []leads.Query

	deleteErr error
	deleted   []leads.ID

	lead   *leads.Lead
	getErr error

	saveErr error
	created []leads.Input
	updated []leads.ID
}

func (f *fakeLeads) ListLeads(_ context.Context, q leads.Query) (*leads.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &leads.Page{
		Data:       f.rows,
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      f.total,
		TotalPages: f.totalPages,
	}, nil
}

func (f *fakeLeads) GetLead(_ context.Context, id leads.ID) (*leads.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.lead, nil
}

func (f *fakeLeads) CreateLead(_ context.Context, in leads.Input) (*leads.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return &leads.Lead{ID: "new", FirstName: in.FirstName}, nil
}

func (f *fakeLeads) UpdateLead(_ context.Context, id leads.ID, in leads.Input) (*leads.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, id)
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return &leads.Lead{ID: id, FirstName: in.FirstName}, nil
}

func (f *fakeLeads) DeleteLead(_ context.Context, id leads.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeLeads) lastQuery(t *testing.T) leads.Query {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.queries, "no list call was made")
	return f.queries[len(f.queries)-1]
}

// =============================================================================
// HARNESS
// =============================================================================

type harness struct {
	sess  *fakeSession
	api   *fakeLeads
	queue *notify.Queue
	m     Model
}

func newHarness(t *testing.T, signedIn bool) *harness {
	t.Helper()
	t.Setenv("COLORFGBG", "")
	h := &harness{
		api: &fakeLeads{
			rows: []leads.Lead{
				{ID: "1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Source: leads.SourceWebsite, Status: leads.StatusNew},
				{ID: "2", FirstName: "Alan", LastName: "Turing", Email: "alan@example.com", Source: leads.SourceReferral, Status: leads.StatusQualified, IsQualified: true},
			},
			total:      25,
			totalPages: 3,
		},
		queue: notify.NewQueue(0),
	}
	h.sess = &fakeSession{notifier: h.queue}
	if signedIn {
		h.sess.user = &session.User{ID: "u1", Email: "ada@example.com", FirstName: "Ada"}
	}

	cfg := config.DefaultConfig()
	cfg.Dashboard.PageSize = 10
	h.m = New(context.Background(), Options{Session: h.sess, Leads: h.api, Queue: h.queue, Config: cfg})
	h.m = drive(t, h.m, h.m.Init())
	return h
}

// drive runs cmd and feeds the resulting messages back through Update
// until nothing is left. Timer-driven messages are dropped, and commands
// that block (cursor blink) are abandoned.
func drive(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	pending := []tea.Cmd{cmd}
	for steps := 0; len(pending) > 0; steps++ {
		if steps > 500 {
			t.Fatal("command loop did not settle")
		}
		c := pending[0]
		pending = pending[1:]
		if c == nil {
			continue
		}
		msg, ok := runCmd(c)
		if !ok {
			continue
		}
		switch msg := msg.(type) {
		case tea.BatchMsg:
			pending = append(pending, msg...)
			continue
		case spinner.TickMsg, cursor.BlinkMsg, toastExpiredMsg, tea.QuitMsg:
			continue
		}
		next, c2 := m.Update(msg)
		m = next.(Model)
		pending = append(pending, c2)
	}
	return m
}

func runCmd(c tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(50 * time.Millisecond):
		return nil, false
	}
}

func (h *harness) send(t *testing.T, msg tea.Msg) {
	t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = drive(t, next.(Model), cmd)
}

func (h *harness) press(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		h.send(t, keyMsg(k))
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func (h *harness) toasts() []string {
	out := make([]string, 0, len(h.m.toasts))
	for _, n := range h.m.toasts {
		out = append(out, n.Text)
	}
	return out
}

func (h *harness) setField(t *testing.T, name, value string) {
	t.Helper()
	for i, f := range formFields {
		if f.name == name {
			h.m.form.inputs[i].SetValue(value)
			return
		}
	}
	t.Fatalf("no form field %q", name)
}

// =============================================================================
// ROUTING AND SESSION
// =============================================================================

func TestStart_SignedOutShowsLogin(t *testing.T) {
	h := newHarness(t, false)

	assert.False(t, h.m.waiting)
	assert.Equal(t, route.KindLogin, h.m.route.Kind)
	assert.Empty(t, h.api.queries, "no lead calls while signed out")
	assert.Contains(t, h.m.View(), "Sign in")
}

func TestStart_WaitsForSession(t *testing.T) {
	h := &harness{api: &fakeLeads{}, sess: &fakeSession{}, queue: notify.NewQueue(0)}
	m := New(context.Background(), Options{Session: h.sess, Leads: h.api, Queue: h.queue})

	assert.True(t, m.waiting)
	assert.Contains(t, m.View(), "Loading...")
}

func TestStart_SignedInLoadsDashboard(t *testing.T) {
	h := newHarness(t, true)

	assert.Equal(t, route.KindDashboard, h.m.route.Kind)
	q := h.api.lastQuery(t)
	assert.Equal(t, leads.Query{Page: 1, Limit: 10, Filters: leads.Filters{}}, q)
	assert.Len(t, h.m.dash.browser.Rows(), 2)

	view := h.m.View()
	assert.Contains(t, view, "Ada Lovelace")
	assert.Contains(t, view, "Showing 1 to 10 of 25 results")
	assert.Contains(t, view, "Page 1 of 3")
}

func TestLogin_ValidationBlocksRemoteCall(t *testing.T) {
	h := newHarness(t, false)

	h.press(t, "tab", "enter")

	assert.Equal(t, 0, h.sess.logins)
	require.NotNil(t, h.m.auth.errors)
	assert.Equal(t, "Email is required", h.m.auth.errors.Message("email"))
	assert.Equal(t, "Password is required", h.m.auth.errors.Message("password"))
	assert.Contains(t, h.m.View(), "Email is required")
}

func TestLogin_SuccessNavigatesToDashboard(t *testing.T) {
	h := newHarness(t, false)

	h.m.auth.inputs[0].SetValue("ada@example.com")
	h.m.auth.inputs[1].SetValue("secret")
	h.press(t, "tab", "enter")

	assert.Equal(t, 1, h.sess.logins)
	assert.Equal(t, route.KindDashboard, h.m.route.Kind)
	assert.Contains(t, h.toasts(), "Login successful!")
	assert.NotEmpty(t, h.api.queries)
}

func TestLogin_FailureStaysOnPage(t *testing.T) {
	h := newHarness(t, false)
	h.sess.loginErr = &api.Error{Status: 401, Message: "Invalid credentials"}

	h.m.auth.inputs[0].SetValue("ada@example.com")
	h.m.auth.inputs[1].SetValue("wrong")
	h.press(t, "tab", "enter")

	assert.Equal(t, route.KindLogin, h.m.route.Kind)
	assert.False(t, h.m.auth.submitting)
	assert.Contains(t, h.toasts(), "Invalid credentials")
}

func TestLogin_SwitchToRegister(t *testing.T) {
	h := newHarness(t, false)

	h.press(t, "ctrl+r")
	assert.Equal(t, route.KindRegister, h.m.route.Kind)
	assert.Len(t, h.m.auth.inputs, 4)

	h.press(t, "esc")
	assert.Equal(t, route.KindLogin, h.m.route.Kind)
}

func TestRegister_ShortPasswordRejected(t *testing.T) {
	h := newHarness(t, false)
	h.press(t, "ctrl+r")

	vals := []string{"Grace", "Hopper", "grace@navy.mil", "12345"}
	for i, v := range vals {
		h.m.auth.inputs[i].SetValue(v)
	}
	h.m.auth.setFocus(3)
	h.press(t, "enter")

	assert.Equal(t, 0, h.sess.logins)
	assert.Equal(t, "Password must be at least 6 characters", h.m.auth.errors.Message("password"))

	h.m.auth.inputs[3].SetValue("123456")
	h.press(t, "enter")
	assert.Equal(t, 1, h.sess.logins)
	assert.Equal(t, route.KindDashboard, h.m.route.Kind)
}

func TestLogout_ReturnsToLogin(t *testing.T) {
	h := newHarness(t, true)

	h.press(t, "L")

	assert.Equal(t, 1, h.sess.logouts)
	assert.Equal(t, route.KindLogin, h.m.route.Kind)
}

func TestLogout_LeavesProtectedViewOpenedMeanwhile(t *testing.T) {
	h := newHarness(t, true)

	next, logout := h.m.Update(keyMsg("L"))
	h.m = next.(Model)
	h.press(t, "n")
	require.Equal(t, route.KindNewLead, h.m.route.Kind)

	h.m = drive(t, h.m, logout)

	assert.Equal(t, 1, h.sess.logouts)
	assert.False(t, h.sess.State().Authenticated())
	assert.Equal(t, route.KindLogin, h.m.route.Kind)
}

func TestStaleResultsAreDropped(t *testing.T) {
	h := newHarness(t, true)
	before := h.m.dash.browser.Rows()

	h.send(t, leadsLoadedMsg{
		seq:   h.m.seq - 1,
		query: leads.Query{Page: 2, Limit: 10},
		page:  &leads.Page{Data: []leads.Lead{{ID: "x"}}, Page: 2, TotalPages: 9},
	})

	assert.Equal(t, before, h.m.dash.browser.Rows())
	assert.Equal(t, 1, h.m.dash.browser.Pagination().Page)
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestDashboard_PageChangeKeepsSearchFilter(t *testing.T) {
	h := newHarness(t, true)

	h.press(t, "/")
	require.True(t, h.m.dash.searching)
	h.m.dash.search.SetValue("  acme ")
	h.press(t, "enter")

	want := leads.Query{Page: 1, Limit: 10, Filters: leads.EmailContains("acme")}
	if diff := cmp.Diff(want, h.api.lastQuery(t)); diff != "" {
		t.Fatalf("search query mismatch (-want +got):\n%s", diff)
	}

	h.press(t, "right")
	want.Page = 2
	if diff := cmp.Diff(want, h.api.lastQuery(t)); diff != "" {
		t.Fatalf("page query mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, h.m.View(), `filter: email contains "acme"`)
}

func TestDashboard_PageOutOfRangeIsIgnored(t *testing.T) {
	h := newHarness(t, true)
	calls := len(h.api.queries)

	h.press(t, "left")

	assert.Len(t, h.api.queries, calls)
}

func TestDashboard_RefreshGoesToFirstPage(t *testing.T) {
	h := newHarness(t, true)
	h.press(t, "right")
	require.Equal(t, 2, h.m.dash.browser.Pagination().Page)

	h.press(t, "r")

	assert.Equal(t, 1, h.api.lastQuery(t).Page)
}

func TestDashboard_DeleteRefetchesCurrentPage(t *testing.T) {
	h := newHarness(t, true)
	h.press(t, "/")
	h.m.dash.search.SetValue("ada")
	h.press(t, "enter", "right")
	prev := h.api.lastQuery(t)

	h.press(t, "d")
	require.NotNil(t, h.m.dash.confirm)
	assert.Contains(t, h.m.View(), "Are you sure you want to delete Ada Lovelace?")

	h.press(t, "y")

	assert.Equal(t, []leads.ID{"1"}, h.api.deleted)
	if diff := cmp.Diff(prev, h.api.lastQuery(t)); diff != "" {
		t.Fatalf("refetch should repeat the current query (-want +got):\n%s", diff)
	}
	assert.Contains(t, h.toasts(), "Lead deleted successfully")
}

func TestDashboard_DeleteCancelled(t *testing.T) {
	h := newHarness(t, true)

	h.press(t, "d", "n")

	assert.Nil(t, h.m.dash.confirm)
	assert.Empty(t, h.api.deleted)
}

func TestDashboard_DeleteFailure(t *testing.T) {
	h := newHarness(t, true)
	h.api.deleteErr = errors.New("boom")
	calls := len(h.api.queries)

	h.press(t, "d", "y")

	assert.Len(t, h.api.queries, calls, "no refetch after a failed delete")
	assert.Contains(t, h.toasts(), "Failed to delete lead")
	assert.False(t, h.m.dash.loading)
}

func TestDashboard_FetchFailureKeepsRows(t *testing.T) {
	h := newHarness(t, true)
	h.api.listErr = errors.New("offline")

	h.press(t, "r")

	assert.Len(t, h.m.dash.browser.Rows(), 2)
	assert.Contains(t, h.toasts(), "Failed to fetch leads")
}

func TestDashboard_EditNavigates(t *testing.T) {
	h := newHarness(t, true)
	h.api.lead = &h.api.rows[0]

	h.press(t, "e")

	assert.Equal(t, route.KindEditLead, h.m.route.Kind)
	assert.Equal(t, leads.ID("1"), h.m.route.ID)
}

func TestDashboard_DetailPane(t *testing.T) {
	h := newHarness(t, true)
	h.send(t, tea.WindowSizeMsg{Width: 160, Height: 40})

	h.press(t, "enter")
	require.True(t, h.m.dash.showDetail)
	assert.Contains(t, h.m.dash.detail.View(), "Lovelace")

	h.press(t, "esc")
	assert.False(t, h.m.dash.showDetail)
}

// =============================================================================
// FORM
// =============================================================================

func TestForm_MissingFirstNameNeverSubmits(t *testing.T) {
	h := newHarness(t, true)
	h.press(t, "n")
	require.Equal(t, route.KindNewLead, h.m.route.Kind)

	h.setField(t, "last_name", "Lovelace")
	h.setField(t, "email", "ada@example.com")
	h.m.form.source = leads.SourceWebsite
	h.press(t, "ctrl+s")

	assert.Empty(t, h.api.created)
	require.NotNil(t, h.m.form.errors)
	assert.Equal(t, "First name is required", h.m.form.errors.Message("first_name"))
	assert.Contains(t, h.m.View(), "First name is required")
}

func TestForm_CreateSuccess(t *testing.T) {
	h := newHarness(t, true)
	h.press(t, "n")

	h.setField(t, "first_name", "Ada")
	h.setField(t, "last_name", "Lovelace")
	h.setField(t, "email", "ada@example.com")
	h.setField(t, "score", "85")

	// move to the source selector and pick the second source
	for i := 0; i < 7; i++ {
		h.press(t, "tab")
	}
	h.press(t, "right", "right")
	// qualified toggle is the last field
	h.m.form.setFocus(len(formFields) - 1)
	h.press(t, "space")
	h.press(t, "ctrl+s")

	require.Len(t, h.api.created, 1)
	in := h.api.created[0]
	assert.Equal(t, leads.SourceFacebookAds, in.Source)
	assert.Equal(t, leads.StatusNew, in.Status)
	assert.True(t, in.IsQualified)
	require.NotNil(t, in.Score)
	assert.Equal(t, 85, *in.Score)

	assert.Equal(t, route.KindDashboard, h.m.route.Kind)
	assert.Contains(t, h.toasts(), "Lead created successfully")
}

func TestForm_SaveFailureShowsServerMessage(t *testing.T) {
	h := newHarness(t, true)
	h.api.saveErr = &api.Error{Status: 409, Message: "Lead with this email already exists"}
	h.press(t, "n")

	h.setField(t, "first_name", "Ada")
	h.setField(t, "last_name", "Lovelace")
	h.setField(t, "email", "ada@example.com")
	h.m.form.source = leads.SourceOther
	h.press(t, "ctrl+s")

	assert.Equal(t, route.KindNewLead, h.m.route.Kind)
	assert.False(t, h.m.form.submitting)
	assert.Contains(t, h.toasts(), "Lead with this email already exists")
}

func TestForm_EditPrefillsAndUpdates(t *testing.T) {
	h := newHarness(t, true)
	score := 40
	h.api.lead = &leads.Lead{
		ID: "7", FirstName: "Grace", LastName: "Hopper", Email: "grace@navy.mil",
		Source: leads.SourceEvents, Status: leads.StatusContacted, Score: &score,
	}

	h.m = drive(t, h.m, h.m.navigate(route.EditPath("7")))

	require.False(t, h.m.form.loading)
	f := h.m.form.toForm()
	assert.Equal(t, "Grace", f.FirstName)
	assert.Equal(t, "40", f.Score)
	assert.Equal(t, leads.SourceEvents, f.Source)
	assert.Equal(t, leads.StatusContacted, f.Status)

	h.press(t, "ctrl+s")

	assert.Equal(t, []leads.ID{"7"}, h.api.updated)
	assert.Empty(t, h.api.created)
	assert.Contains(t, h.toasts(), "Lead updated successfully")
	assert.Equal(t, route.KindDashboard, h.m.route.Kind)
}

func TestForm_EditLoadFailureRedirects(t *testing.T) {
	h := newHarness(t, true)
	h.api.getErr = &api.Error{Status: 404}

	h.m = drive(t, h.m, h.m.navigate(route.EditPath("missing")))

	assert.Equal(t, route.KindDashboard, h.m.route.Kind)
	assert.Contains(t, h.toasts(), "Failed to load lead")
}

func TestForm_EscapeReturnsToList(t *testing.T) {
	h := newHarness(t, true)
	h.press(t, "n", "esc")

	assert.Equal(t, route.KindDashboard, h.m.route.Kind)
	assert.Empty(t, h.api.created)
}

func TestCycle(t *testing.T) {
	assert.Equal(t, leads.SourceWebsite, cycle(leads.Sources, leads.Source(""), 1))
	assert.Equal(t, leads.SourceOther, cycle(leads.Sources, leads.SourceWebsite, -1))
	assert.Equal(t, leads.StatusNew, cycle(leads.Statuses, leads.StatusWon, 1))
}

// =============================================================================
// CONFIG, TOASTS, LAYOUT
// =============================================================================

func TestConfigReload_AppliesPageSize(t *testing.T) {
	h := newHarness(t, true)

	cfg := config.DefaultConfig()
	cfg.Dashboard.PageSize = 50
	cfg.UI.Theme = "light"
	h.send(t, ConfigReloadedMsg{Config: cfg})

	assert.Equal(t, 50, h.api.lastQuery(t).Limit)
	assert.False(t, h.m.styles.Theme.IsDark)
}

func TestToasts_ExpireOnNextUpdate(t *testing.T) {
	h := newHarness(t, true)
	now := time.Now()
	h.m.now = func() time.Time { return now }
	h.m.toasts = []notify.Notice{
		{Level: notify.LevelSuccess, Text: "old", ExpiresAt: now.Add(-time.Second)},
		{Level: notify.LevelInfo, Text: "fresh", ExpiresAt: now.Add(time.Minute)},
	}

	next, cmd := h.m.Update(toastExpiredMsg{})
	h.m = next.(Model)

	assert.Equal(t, []string{"fresh"}, h.toasts())
	assert.NotNil(t, cmd, "a timer is armed for the remaining toast")
}

func TestUpdate_WindowSize(t *testing.T) {
	h := newHarness(t, true)

	h.send(t, tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 120, h.m.layout.TerminalWidth)
	assert.False(t, h.m.layout.IsCompact)
	assert.Equal(t, h.m.layout.TableHeight(), h.m.dash.table.Height())

	assert.NotPanics(t, func() {
		h.m.Update(tea.WindowSizeMsg{Width: -1, Height: -1})
	})
}

func TestHelpToggle(t *testing.T) {
	h := newHarness(t, true)
	assert.Contains(t, h.m.View(), "refresh")

	h.press(t, "?")
	assert.True(t, h.m.help.ShowAll)
}

func TestQuit(t *testing.T) {
	h := newHarness(t, true)
	_, cmd := h.m.Update(keyMsg("ctrl+c"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestHeaderShowsUser(t *testing.T) {
	h := newHarness(t, true)
	assert.True(t, strings.Contains(h.m.View(), "Ada"))
}

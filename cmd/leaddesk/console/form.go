package console

import (
	"errors"
	"strings"

	"leaddesk/cmd/leaddesk/ui"
	"leaddesk/internal/leads"
	"leaddesk/internal/logging"
	"leaddesk/internal/notify"
	"leaddesk/internal/route"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldSource
	fieldStatus
	fieldToggle
)

type formField struct {
	name  string
	label string
	kind  fieldKind
}

// formFields follows the lead form layout.
var formFields = []formField{
	{"first_name", "First name *", fieldText},
	{"last_name", "Last name *", fieldText},
	{"email", "Email *", fieldText},
	{"phone", "Phone", fieldText},
	{"company", "Company", fieldText},
	{"city", "City", fieldText},
	{"state", "State", fieldText},
	{"source", "Source *", fieldSource},
	{"status", "Status", fieldStatus},
	{"score", "Score", fieldText},
	{"lead_value", "Lead value", fieldText},
	{"is_qualified", "Qualified", fieldToggle},
}

// formPage is the create/edit lead form.
type formPage struct {
	id     leads.ID
	inputs []textinput.Model
	source leads.Source
	status leads.Status
	qual   bool
	focus  int
	errors *leads.ValidationError

	loading    bool
	submitting bool
}

func (m *Model) mountForm(id leads.ID) tea.Cmd {
	p := formPage{id: id, inputs: make([]textinput.Model, len(formFields))}
	for i, f := range formFields {
		if f.kind != fieldText {
			continue
		}
		ti := textinput.New()
		ti.CharLimit = 120
		ti.Width = 40
		p.inputs[i] = ti
	}
	p.load(leads.NewForm())
	m.form = p

	focus := m.form.setFocus(0)
	if id == "" {
		return focus
	}
	m.form.loading = true
	logging.FormDebug("loading lead %s for edit", id)
	return tea.Batch(focus, m.spinner.Tick, m.loadLeadCmd(id))
}

func (p *formPage) load(f leads.Form) {
	vals := map[string]string{
		"first_name": f.FirstName,
		"last_name":  f.LastName,
		"email":      f.Email,
		"phone":      f.Phone,
		"company":    f.Company,
		"city":       f.City,
		"state":      f.State,
		"score":      f.Score,
		"lead_value": f.LeadValue,
	}
	for i, fld := range formFields {
		if fld.kind == fieldText {
			p.inputs[i].SetValue(vals[fld.name])
		}
	}
	p.source, p.status, p.qual = f.Source, f.Status, f.IsQualified
}

func (p formPage) toForm() leads.Form {
	f := leads.Form{ID: p.id, Source: p.source, Status: p.status, IsQualified: p.qual}
	for i, fld := range formFields {
		if fld.kind != fieldText {
			continue
		}
		v := p.inputs[i].Value()
		switch fld.name {
		case "first_name":
			f.FirstName = v
		case "last_name":
			f.LastName = v
		case "email":
			f.Email = v
		case "phone":
			f.Phone = v
		case "company":
			f.Company = v
		case "city":
			f.City = v
		case "state":
			f.State = v
		case "score":
			f.Score = v
		case "lead_value":
			f.LeadValue = v
		}
	}
	return f
}

func (p *formPage) setFocus(i int) tea.Cmd {
	n := len(formFields)
	p.focus = ((i % n) + n) % n
	var cmd tea.Cmd
	for j, f := range formFields {
		if f.kind != fieldText {
			continue
		}
		if j == p.focus {
			cmd = p.inputs[j].Focus()
		} else {
			p.inputs[j].Blur()
		}
	}
	return cmd
}

func (p formPage) focusedText() bool {
	return p.focus < len(formFields) && formFields[p.focus].kind == fieldText
}

func (p *formPage) updateInputs(msg tea.Msg) tea.Cmd {
	if !p.focusedText() || len(p.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
	return cmd
}

// cycle steps through the known values. A value the server sent that is
// not in the list steps to the first entry.
func cycle[T comparable](list []T, cur T, dir int) T {
	for i, v := range list {
		if v == cur {
			return list[((i+dir)%len(list)+len(list))%len(list)]
		}
	}
	return list[0]
}

func (m *Model) formKey(msg tea.KeyMsg) tea.Cmd {
	p := &m.form
	k := m.keys
	if p.loading || p.submitting {
		if key.Matches(msg, k.Back) {
			return m.navigate(route.PathDashboard)
		}
		return nil
	}

	kind := formFields[p.focus].kind
	switch {
	case key.Matches(msg, k.Back):
		return m.navigate(route.PathDashboard)
	case key.Matches(msg, k.Save):
		return m.submitForm()
	case key.Matches(msg, k.NextField):
		return p.setFocus(p.focus + 1)
	case key.Matches(msg, k.PrevField):
		return p.setFocus(p.focus - 1)
	case msg.Type == tea.KeyEnter:
		if p.focus == len(formFields)-1 {
			return m.submitForm()
		}
		return p.setFocus(p.focus + 1)
	case kind == fieldSource && key.Matches(msg, k.Cycle):
		p.source = cycle(leads.Sources, p.source, direction(msg))
		return nil
	case kind == fieldStatus && key.Matches(msg, k.Cycle):
		p.status = cycle(leads.Statuses, p.status, direction(msg))
		return nil
	case kind == fieldToggle && (key.Matches(msg, k.Toggle) || key.Matches(msg, k.Cycle)):
		p.qual = !p.qual
		return nil
	}
	return p.updateInputs(msg)
}

func direction(msg tea.KeyMsg) int {
	if msg.Type == tea.KeyLeft {
		return -1
	}
	return 1
}

// submitForm validates and only then issues the create or update call.
func (m *Model) submitForm() tea.Cmd {
	p := &m.form
	in, err := p.toForm().Validate()
	if err != nil {
		var ve *leads.ValidationError
		if errors.As(err, &ve) {
			p.errors = ve
			logging.FormDebug("validation failed: %v", ve)
			return nil
		}
		logging.FormError("validating lead: %v", err)
		notify.Error(m.queue, "Failed to save lead")
		return nil
	}
	p.errors = nil
	p.submitting = true
	logging.Form("submitting lead (editing=%v)", p.id != "")
	return tea.Batch(m.spinner.Tick, m.saveCmd(p.id, in))
}

func (m *Model) leadLoaded(msg leadLoadedMsg) tea.Cmd {
	m.form.loading = false
	if msg.err != nil || msg.lead == nil {
		logging.FormError("load lead %s: %v", m.form.id, msg.err)
		notify.Error(m.queue, "Failed to load lead")
		return m.navigate(route.PathDashboard)
	}
	m.form.load(leads.FormFromLead(*msg.lead))
	return nil
}

func (m *Model) leadSaved(msg leadSavedMsg) tea.Cmd {
	m.form.submitting = false
	if msg.err != nil {
		logging.FormError("save lead: %v", msg.err)
		notify.Error(m.queue, notify.MessageOr(msg.err, "Failed to save lead"))
		return nil
	}
	if msg.editing {
		notify.Success(m.queue, "Lead updated successfully")
	} else {
		notify.Success(m.queue, "Lead created successfully")
	}
	return m.navigate(route.PathDashboard)
}

func (p formPage) view(s ui.Styles, spin string) string {
	var b strings.Builder
	title := "New lead"
	if p.id != "" {
		title = "Edit lead"
	}
	b.WriteString(s.Title.Render(title))
	b.WriteString("\n")

	if p.loading {
		b.WriteString(spin + " " + s.Muted.Render("Loading lead..."))
		return b.String()
	}

	for i, f := range formFields {
		label := s.Label.Render(f.label)
		if i == p.focus {
			label = s.Focused.Inherit(s.Label).Render(f.label)
		}

		var value string
		switch f.kind {
		case fieldText:
			value = p.inputs[i].View()
		case fieldSource:
			value = selectView(s, p.source.Label(), "Select source", i == p.focus)
		case fieldStatus:
			value = selectView(s, p.status.Label(), "Select status", i == p.focus)
		case fieldToggle:
			box := "[ ]"
			if p.qual {
				box = "[x]"
			}
			value = box + " Is qualified"
		}
		b.WriteString(label + value + "\n")

		if msg := p.errors.Message(f.name); msg != "" {
			b.WriteString(s.FieldError.PaddingLeft(14).Render(msg) + "\n")
		}
	}

	b.WriteString("\n")
	switch {
	case p.submitting:
		b.WriteString(spin + " " + s.Muted.Render("Saving..."))
	case p.id != "":
		b.WriteString(s.Muted.Render("ctrl+s to update lead · esc to cancel"))
	default:
		b.WriteString(s.Muted.Render("ctrl+s to create lead · esc to cancel"))
	}
	return b.String()
}

func selectView(s ui.Styles, label, placeholder string, focused bool) string {
	if label == "" {
		label = s.Muted.Render(placeholder)
	}
	if focused {
		return "‹ " + label + " ›"
	}
	return "  " + label
}

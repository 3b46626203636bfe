package console

import (
	"errors"
	"strings"

	"leaddesk/cmd/leaddesk/ui"
	"leaddesk/internal/route"
	"leaddesk/internal/session"
	"leaddesk/internal/validate"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type authField struct {
	name   string // json name, matches validation messages
	label  string
	secret bool
}

var (
	loginFields = []authField{
		{name: "email", label: "Email"},
		{name: "password", label: "Password", secret: true},
	}
	registerFields = []authField{
		{name: "first_name", label: "First name"},
		{name: "last_name", label: "Last name"},
		{name: "email", label: "Email"},
		{name: "password", label: "Password", secret: true},
	}
)

// authPage is the login or register form.
type authPage struct {
	register   bool
	fields     []authField
	inputs     []textinput.Model
	focus      int
	errors     *validate.ValidationError
	submitting bool
}

func (p *authPage) mount(register bool) tea.Cmd {
	*p = authPage{register: register, fields: loginFields}
	if register {
		p.fields = registerFields
	}
	p.inputs = make([]textinput.Model, len(p.fields))
	for i, f := range p.fields {
		ti := textinput.New()
		ti.Placeholder = f.label
		ti.CharLimit = 120
		ti.Width = 40
		if f.secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		p.inputs[i] = ti
	}
	return p.inputs[0].Focus()
}

func (p *authPage) value(name string) string {
	for i, f := range p.fields {
		if f.name == name {
			return p.inputs[i].Value()
		}
	}
	return ""
}

func (p *authPage) setFocus(i int) tea.Cmd {
	n := len(p.inputs)
	p.focus = ((i % n) + n) % n
	for j := range p.inputs {
		p.inputs[j].Blur()
	}
	return p.inputs[p.focus].Focus()
}

func (p *authPage) updateInputs(msg tea.Msg) tea.Cmd {
	if len(p.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
	return cmd
}

func (m *Model) authKey(msg tea.KeyMsg) tea.Cmd {
	p := &m.auth
	if p.submitting {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.SwitchTo):
		if p.register {
			return m.navigate(route.PathLogin)
		}
		return m.navigate(route.PathRegister)
	case key.Matches(msg, m.keys.Back) && p.register:
		return m.navigate(route.PathLogin)
	case key.Matches(msg, m.keys.NextField):
		return p.setFocus(p.focus + 1)
	case key.Matches(msg, m.keys.PrevField):
		return p.setFocus(p.focus - 1)
	case key.Matches(msg, m.keys.Submit):
		if p.focus < len(p.inputs)-1 {
			return p.setFocus(p.focus + 1)
		}
		return m.submitAuth()
	}
	return p.updateInputs(msg)
}

// submitAuth validates locally and only then calls the resolver.
func (m *Model) submitAuth() tea.Cmd {
	p := &m.auth
	var (
		err error
		cmd tea.Cmd
	)
	if p.register {
		prof := session.Profile{
			FirstName: strings.TrimSpace(p.value("first_name")),
			LastName:  strings.TrimSpace(p.value("last_name")),
			Email:     strings.TrimSpace(p.value("email")),
			Password:  p.value("password"),
		}
		if err = prof.Validate(); err == nil {
			cmd = m.registerCmd(prof)
		}
	} else {
		email, pw := strings.TrimSpace(p.value("email")), p.value("password")
		if err = (session.Credentials{Email: email, Password: pw}).Validate(); err == nil {
			cmd = m.loginCmd(email, pw)
		}
	}

	var ve *validate.ValidationError
	if errors.As(err, &ve) {
		p.errors = ve
		return nil
	}
	p.errors = nil
	p.submitting = true
	return cmd
}

func (m *Model) authDone(msg authDoneMsg) tea.Cmd {
	m.auth.submitting = false
	if msg.err != nil {
		// the resolver already raised the toast
		var ve *validate.ValidationError
		if errors.As(msg.err, &ve) {
			m.auth.errors = ve
		}
		return nil
	}
	return m.navigate(route.PathDashboard)
}

func (p authPage) view(s ui.Styles) string {
	var b strings.Builder
	title, sub := "Sign in", "Sign in to manage your leads"
	if p.register {
		title, sub = "Create account", "Register a new leaddesk account"
	}
	b.WriteString(s.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(s.Subtitle.Render(sub))
	b.WriteString("\n\n")

	for i, f := range p.fields {
		label := s.Label.Render(f.label)
		if i == p.focus {
			label = s.Focused.Inherit(s.Label).Render(f.label)
		}
		b.WriteString(label + p.inputs[i].View() + "\n")
		if msg := p.errors.Message(f.name); msg != "" {
			b.WriteString(s.FieldError.PaddingLeft(14).Render(msg) + "\n")
		}
	}

	b.WriteString("\n")
	switch {
	case p.submitting && p.register:
		b.WriteString(s.Muted.Render("Creating account..."))
	case p.submitting:
		b.WriteString(s.Muted.Render("Signing in..."))
	case p.register:
		b.WriteString(s.Muted.Render("Already have an account? ctrl+r to sign in"))
	default:
		b.WriteString(s.Muted.Render("Don't have an account? ctrl+r to register"))
	}
	return b.String()
}

package route

import (
	"testing"

	"leaddesk/internal/leads"
	"leaddesk/internal/session"

	"github.com/stretchr/testify/assert"
)

var (
	loading   = session.State{Loading: true}
	signedOut = session.State{}
	signedIn  = session.State{User: &session.User{Email: "ada@example.com"}}
)

func TestMatch(t *testing.T) {
	tests := []struct {
		path string
		kind Kind
		id   leads.ID
	}{
		{"/", KindRoot, ""},
		{"", KindRoot, ""},
		{"/login", KindLogin, ""},
		{"/register/", KindRegister, ""},
		{"/dashboard", KindDashboard, ""},
		{"/leads/new", KindNewLead, ""},
		{"/leads/42/edit", KindEditLead, "42"},
		{"/leads/abc-9/edit", KindEditLead, "abc-9"},
		{"/leads/a%2Fb/edit", KindEditLead, "a/b"},
		{"/leads/%zz/edit", KindUnknown, ""},
		{"/leads//edit", KindUnknown, ""},
		{"/leads/42", KindUnknown, ""},
		{"/settings", KindUnknown, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r := Match(tt.path)
			assert.Equal(t, tt.kind, r.Kind)
			assert.Equal(t, tt.id, r.ID)
		})
	}
	assert.Equal(t, "/leads/7/edit", EditPath("7"))
	assert.Equal(t, KindEditLead, Match(EditPath("7")).Kind)

	for _, id := range []leads.ID{"a/b", "x y", "50%"} {
		r := Match(EditPath(id))
		assert.Equal(t, KindEditLead, r.Kind, "id %q", id)
		assert.Equal(t, id, r.ID)
	}
}

func TestPublic(t *testing.T) {
	assert.Equal(t, Decision{Action: Wait}, Public(loading))
	assert.Equal(t, Decision{Action: Redirect, To: PathDashboard}, Public(signedIn))
	assert.Equal(t, Decision{Action: Render}, Public(signedOut))
}

func TestProtected(t *testing.T) {
	assert.Equal(t, Decision{Action: Wait}, Protected(loading))
	assert.Equal(t, Decision{Action: Redirect, To: PathLogin}, Protected(signedOut))
	assert.Equal(t, Decision{Action: Render}, Protected(signedIn))
}

func TestGuard(t *testing.T) {
	assert.Equal(t, Redirect, Guard(Match("/"), signedOut).Action)
	assert.Equal(t, PathDashboard, Guard(Match("/"), signedOut).To)
	assert.Equal(t, PathRoot, Guard(Match("/nope"), signedIn).To)
	assert.Equal(t, Render, Guard(Match("/leads/3/edit"), signedIn).Action)
	assert.Equal(t, PathLogin, Guard(Match("/leads/new"), signedOut).To)
	assert.True(t, Match("/login").Public())
	assert.False(t, Match("/dashboard").Public())
}

func TestResolve(t *testing.T) {
	r, d := Resolve("/", signedOut)
	assert.Equal(t, KindLogin, r.Kind)
	assert.Equal(t, Render, d.Action)

	r, d = Resolve("/unknown", signedIn)
	assert.Equal(t, KindDashboard, r.Kind)
	assert.Equal(t, Render, d.Action)

	r, d = Resolve("/login", signedIn)
	assert.Equal(t, KindDashboard, r.Kind)

	r, d = Resolve("/dashboard", loading)
	assert.Equal(t, KindDashboard, r.Kind)
	assert.Equal(t, Wait, d.Action)
}

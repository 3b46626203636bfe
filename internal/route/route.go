// Package route maps console paths to views and decides, from the session
// state, whether a view may render.
package route

import (
	"net/url"
	"strings"

	"leaddesk/internal/leads"
	"leaddesk/internal/session"
)

// Paths.
const (
	PathRoot      = "/"
	PathLogin     = "/login"
	PathRegister  = "/register"
	PathDashboard = "/dashboard"
	PathNewLead   = "/leads/new"
)

// Kind identifies a view.
type Kind int

const (
	KindUnknown Kind = iota
	KindRoot
	KindLogin
	KindRegister
	KindDashboard
	KindNewLead
	KindEditLead
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindLogin:
		return "login"
	case KindRegister:
		return "register"
	case KindDashboard:
		return "dashboard"
	case KindNewLead:
		return "new-lead"
	case KindEditLead:
		return "edit-lead"
	default:
		return "unknown"
	}
}

// Route is a matched path.
type Route struct {
	Kind Kind
	Path string
	ID   leads.ID // set for KindEditLead
}

// Public reports whether the route is only for signed-out users.
func (r Route) Public() bool {
	return r.Kind == KindLogin || r.Kind == KindRegister
}

// EditPath returns /leads/:id/edit with the ID escaped as one segment.
func EditPath(id leads.ID) string {
	return "/leads/" + url.PathEscape(string(id)) + "/edit"
}

// Match parses path into a route.
func Match(path string) Route {
	clean := "/" + strings.Trim(path, "/")
	r := Route{Path: clean}
	switch clean {
	case PathRoot:
		r.Kind = KindRoot
	case PathLogin:
		r.Kind = KindLogin
	case PathRegister:
		r.Kind = KindRegister
	case PathDashboard:
		r.Kind = KindDashboard
	case PathNewLead:
		r.Kind = KindNewLead
	default:
		parts := strings.Split(strings.Trim(clean, "/"), "/")
		if len(parts) == 3 && parts[0] == "leads" && parts[2] == "edit" && parts[1] != "" {
			if id, err := url.PathUnescape(parts[1]); err == nil {
				r.Kind = KindEditLead
				r.ID = leads.ID(id)
			}
		}
	}
	return r
}

// Action is what a guard decided.
type Action int

const (
	Render Action = iota
	Wait
	Redirect
)

func (a Action) String() string {
	switch a {
	case Wait:
		return "wait"
	case Redirect:
		return "redirect"
	default:
		return "render"
	}
}

// Decision is a guard outcome. To is set for Redirect.
type Decision struct {
	Action Action
	To     string
}

// Public guards login and register: signed-in users go to the dashboard.
func Public(s session.State) Decision {
	switch {
	case s.Loading:
		return Decision{Action: Wait}
	case s.Authenticated():
		return Decision{Action: Redirect, To: PathDashboard}
	default:
		return Decision{Action: Render}
	}
}

// Protected guards the lead views: signed-out users go to login.
func Protected(s session.State) Decision {
	switch {
	case s.Loading:
		return Decision{Action: Wait}
	case !s.Authenticated():
		return Decision{Action: Redirect, To: PathLogin}
	default:
		return Decision{Action: Render}
	}
}

// Guard dispatches on the route kind. The root path always forwards to
// the dashboard and unknown paths to the root.
func Guard(r Route, s session.State) Decision {
	switch r.Kind {
	case KindRoot:
		return Decision{Action: Redirect, To: PathDashboard}
	case KindUnknown:
		return Decision{Action: Redirect, To: PathRoot}
	case KindLogin, KindRegister:
		return Public(s)
	default:
		return Protected(s)
	}
}

// Resolve follows redirects from path until a route renders or must wait.
// It stops after a few hops so a bad table can never loop.
func Resolve(path string, s session.State) (Route, Decision) {
	r := Match(path)
	d := Guard(r, s)
	for hops := 0; d.Action == Redirect && hops < 4; hops++ {
		r = Match(d.To)
		d = Guard(r, s)
	}
	return r, d
}

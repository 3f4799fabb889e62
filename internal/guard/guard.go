// Package guard decides whether a portal view may be entered. It is a
// convenience for the user; the API enforces roles on its own.
package guard

import (
	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
	"github.com/jaswanth12321/carequo-insure-tech/internal/session"
)

type View string

const (
	Landing      View = "landing"
	Dashboard    View = "dashboard"
	Employees    View = "employees"
	Claims       View = "claims"
	Financials   View = "financials"
	Wellness     View = "wellness"
	EmployeeHome View = "employee_home"
)

// RoleSet lists the roles allowed into a view. nil means any authenticated role.
type RoleSet []models.Role

func (s RoleSet) Contains(r models.Role) bool {
	for _, x := range s {
		if x == r {
			return true
		}
	}
	return false
}

type Decision struct {
	Allow  bool
	Target View
}

func allow() Decision               { return Decision{Allow: true} }
func redirect(target View) Decision { return Decision{Target: target} }

// Decide is pure: the same inputs always give the same decision.
func Decide(required RoleSet, current models.Role, authenticated bool) Decision {
	if !authenticated {
		return redirect(Landing)
	}
	if required != nil && !required.Contains(current) {
		if current == models.RoleEmployee {
			return redirect(EmployeeHome)
		}
		return redirect(Dashboard)
	}
	return allow()
}

// Routes maps every protected view to the roles it admits.
var Routes = map[View]RoleSet{
	Dashboard:    {models.RoleCompanyAdmin, models.RoleHRManager, models.RoleSuperAdmin},
	Employees:    {models.RoleCompanyAdmin, models.RoleHRManager},
	Claims:       {models.RoleCompanyAdmin, models.RoleHRManager},
	Financials:   {models.RoleCompanyAdmin, models.RoleSuperAdmin},
	Wellness:     nil,
	EmployeeHome: {models.RoleEmployee},
}

func Known(v View) bool {
	if v == Landing {
		return true
	}
	_, ok := Routes[v]
	return ok
}

// Home is where a freshly authenticated session lands.
func Home(s session.Session) View {
	switch {
	case !s.Authenticated():
		return Landing
	case s.Role() == models.RoleEmployee:
		return EmployeeHome
	default:
		return Dashboard
	}
}

// Enter is evaluated on every navigation; nothing is cached between calls.
func Enter(v View, s session.Session) Decision {
	if v == Landing {
		return allow()
	}
	required, ok := Routes[v]
	if !ok {
		return redirect(Home(s))
	}
	return Decide(required, s.Role(), s.Authenticated())
}

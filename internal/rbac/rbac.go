// Package rbac is the authoritative role table. Every mutating service call checks it,
// regardless of what the portal already hid from the user.
package rbac

import (
	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
)

type Action string

const (
	ViewDashboard      Action = "dashboard:view"
	ManageEmployees    Action = "employees:manage"
	ReviewClaims       Action = "claims:review"
	SubmitClaims       Action = "claims:submit"
	ViewFinancials     Action = "financials:view"
	RecordTransactions Action = "financials:record"
	ManagePartners     Action = "wellness:manage"
	BookWellness       Action = "wellness:book"
	ManageCompanies    Action = "companies:manage"
)

var (
	admins      = []models.Role{models.RoleCompanyAdmin, models.RoleHRManager}
	finance     = []models.Role{models.RoleCompanyAdmin, models.RoleSuperAdmin}
	managers    = []models.Role{models.RoleCompanyAdmin, models.RoleHRManager, models.RoleSuperAdmin}
	everyone    = []models.Role{models.RoleSuperAdmin, models.RoleCompanyAdmin, models.RoleHRManager, models.RoleEmployee}
	superAdmins = []models.Role{models.RoleSuperAdmin}
)

var table = map[Action][]models.Role{
	ViewDashboard:      managers,
	ManageEmployees:    admins,
	ReviewClaims:       admins,
	SubmitClaims:       everyone,
	ViewFinancials:     finance,
	RecordTransactions: finance,
	ManagePartners:     finance,
	BookWellness:       everyone,
	ManageCompanies:    superAdmins,
}

// RolesFor returns the roles allowed to perform a.
func RolesFor(a Action) []models.Role {
	out := make([]models.Role, len(table[a]))
	copy(out, table[a])
	return out
}

func Can(role models.Role, a Action) bool {
	for _, r := range table[a] {
		if r == role {
			return true
		}
	}
	return false
}

func Require(p models.Principal, a Action) error {
	if !Can(p.Role, a) {
		return apperr.Permission("role %s is not allowed to %s", p.Role, a)
	}
	return nil
}

// internal/models/user.go
package models

import (
	"strings"
	"time"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
)

type Role string

const (
	RoleSuperAdmin   Role = "super_admin"
	RoleCompanyAdmin Role = "company_admin"
	RoleHRManager    Role = "hr_manager"
	RoleEmployee     Role = "employee"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleCompanyAdmin, RoleHRManager, RoleEmployee:
		return true
	}
	return false
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if !r.Valid() {
		return "", apperr.Validation("invalid role %q", s)
	}
	return r, nil
}

type User struct {
	ID           string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	Name         string  `gorm:"not null" json:"name"`
	Role         Role    `gorm:"type:varchar(20);not null" json:"role"`
	CompanyID    *string `gorm:"type:varchar(36);index" json:"company_id"`
	PasswordHash string  `gorm:"not null" json:"-"`

	TOTPSecret  string `json:"-"`
	TOTPEnabled bool   `gorm:"not null;default:false" json:"totp_enabled"`

	CreatedAt time.Time `json:"created_at"`
}

// Principal is the authenticated caller as seen by the services.
type Principal struct {
	UserID    string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
}

func (u *User) Principal() Principal {
	p := Principal{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
	if u.CompanyID != nil {
		p.CompanyID = *u.CompanyID
	}
	return p
}

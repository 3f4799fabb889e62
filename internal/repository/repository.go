// Package repository declares the persistence ports the services depend on.
// Implementations return apperr.ErrNotFound / ErrConflict / ErrInvalidState kinds.
package repository

import (
	"context"
	"time"

	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
)

// Scope restricts a query to one company, or to every company.
type Scope struct {
	CompanyID    string
	AllCompanies bool
}

func (s Scope) Matches(companyID string) bool {
	return s.AllCompanies || s.CompanyID == companyID
}

type ClaimFilter struct {
	Scope
	EmployeeID string             // optional
	Status     models.ClaimStatus // empty means every status
}

// ClaimTransition is applied only if the claim is still in From.
type ClaimTransition struct {
	ClaimID    string
	From       models.ClaimStatus
	To         models.ClaimStatus
	ReviewDate time.Time
	Notes      string
	ReviewedBy string
}

type Users interface {
	CreateUser(ctx context.Context, u *models.User) error
	// CreateUserWithProfile inserts the user and its employee row together, or neither.
	CreateUserWithProfile(ctx context.Context, u *models.User, e *models.Employee) error
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
}

type Companies interface {
	CreateCompany(ctx context.Context, c *models.Company) error
	CompanyByID(ctx context.Context, id string) (*models.Company, error)
	ListCompanies(ctx context.Context, scope Scope) ([]models.Company, error)
}

type Employees interface {
	CreateEmployee(ctx context.Context, e *models.Employee) error
	EmployeeByID(ctx context.Context, id string) (*models.Employee, error)
	EmployeeByUserID(ctx context.Context, userID string) (*models.Employee, error)
	ListEmployees(ctx context.Context, scope Scope) ([]models.Employee, error)
	CountEmployees(ctx context.Context, scope Scope) (int, error)
	UpdateEmployee(ctx context.Context, e *models.Employee) error
	DeleteEmployee(ctx context.Context, id string) error
}

type Claims interface {
	CreateClaim(ctx context.Context, c *models.Claim) error
	ClaimByID(ctx context.Context, id string) (*models.Claim, error)
	// ListClaims orders by submission date, then id.
	ListClaims(ctx context.Context, f ClaimFilter) ([]models.Claim, error)
	// TransitionClaim is a compare-and-set on the current status.
	TransitionClaim(ctx context.Context, t ClaimTransition) error
}

type Transactions interface {
	CreateTransaction(ctx context.Context, tx *models.FinancialTransaction) error
	// ListTransactions orders by transaction date, then id.
	ListTransactions(ctx context.Context, scope Scope) ([]models.FinancialTransaction, error)
}

type Partners interface {
	CreatePartner(ctx context.Context, p *models.WellnessPartner) error
	PartnerByID(ctx context.Context, id string) (*models.WellnessPartner, error)
	ListPartners(ctx context.Context) ([]models.WellnessPartner, error)
}

type Bookings interface {
	CreateBooking(ctx context.Context, b *models.Booking) error
	ListBookings(ctx context.Context, employeeID string) ([]models.Booking, error)
}

// Store groups every port; both the gorm and the in-memory backends fill all fields.
type Store struct {
	Users        Users
	Companies    Companies
	Employees    Employees
	Claims       Claims
	Transactions Transactions
	Partners     Partners
	Bookings     Bookings
}

// ScopeFor returns the visibility scope of a principal.
func ScopeFor(p models.Principal) Scope {
	if p.Role == models.RoleSuperAdmin {
		return Scope{AllCompanies: true}
	}
	return Scope{CompanyID: p.CompanyID}
}

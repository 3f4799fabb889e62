package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
	"github.com/jaswanth12321/carequo-insure-tech/internal/repository"
)

// Repo implements every repository port on top of gorm.
type Repo struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) repository.Store {
	r := &Repo{DB: db}
	return repository.Store{
		Users:        r,
		Companies:    r,
		Employees:    r,
		Claims:       r,
		Transactions: r,
		Partners:     r,
		Bookings:     r,
	}
}

func translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("%s not found", entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict("%s already exists", entity)
	}
	return err
}

func scoped(db *gorm.DB, s repository.Scope) *gorm.DB {
	if s.AllCompanies {
		return db
	}
	return db.Where("company_id = ?", s.CompanyID)
}

// =========================
// USERS
// =========================

func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	return translate(r.DB.WithContext(ctx).Create(u).Error, "user")
}

func (r *Repo) CreateUserWithProfile(ctx context.Context, u *models.User, e *models.Employee) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return translate(err, "user")
		}
		return translate(tx.Create(e).Error, "employee")
	})
}

func (r *Repo) UserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (r *Repo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (r *Repo) UpdateUser(ctx context.Context, u *models.User) error {
	return translate(r.DB.WithContext(ctx).Save(u).Error, "user")
}

// =========================
// COMPANIES
// =========================

func (r *Repo) CreateCompany(ctx context.Context, c *models.Company) error {
	return translate(r.DB.WithContext(ctx).Create(c).Error, "company")
}

func (r *Repo) CompanyByID(ctx context.Context, id string) (*models.Company, error) {
	var c models.Company
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, translate(err, "company")
	}
	return &c, nil
}

func (r *Repo) ListCompanies(ctx context.Context, s repository.Scope) ([]models.Company, error) {
	q := r.DB.WithContext(ctx)
	if !s.AllCompanies {
		q = q.Where("id = ?", s.CompanyID)
	}
	var rows []models.Company
	err := q.Order("created_at asc, id asc").Find(&rows).Error
	return rows, err
}

// =========================
// EMPLOYEES
// =========================

func (r *Repo) CreateEmployee(ctx context.Context, e *models.Employee) error {
	return translate(r.DB.WithContext(ctx).Create(e).Error, "employee")
}

func (r *Repo) EmployeeByID(ctx context.Context, id string) (*models.Employee, error) {
	var e models.Employee
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, translate(err, "employee")
	}
	return &e, nil
}

func (r *Repo) EmployeeByUserID(ctx context.Context, userID string) (*models.Employee, error) {
	var e models.Employee
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&e).Error; err != nil {
		return nil, translate(err, "employee profile")
	}
	return &e, nil
}

func (r *Repo) ListEmployees(ctx context.Context, s repository.Scope) ([]models.Employee, error) {
	var rows []models.Employee
	err := scoped(r.DB.WithContext(ctx), s).Order("created_at asc, id asc").Find(&rows).Error
	return rows, err
}

func (r *Repo) CountEmployees(ctx context.Context, s repository.Scope) (int, error) {
	var n int64
	err := scoped(r.DB.WithContext(ctx).Model(&models.Employee{}), s).Count(&n).Error
	return int(n), err
}

func (r *Repo) UpdateEmployee(ctx context.Context, e *models.Employee) error {
	res := r.DB.WithContext(ctx).Model(&models.Employee{}).Where("id = ?", e.ID).Updates(map[string]any{
		"employee_id":       e.EmployeeID,
		"department":        e.Department,
		"designation":       e.Designation,
		"date_of_joining":   e.DateOfJoining,
		"date_of_birth":     e.DateOfBirth,
		"phone":             e.Phone,
		"emergency_contact": e.EmergencyContact,
		"status":            e.Status,
	})
	if res.Error != nil {
		return translate(res.Error, "employee")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("employee not found")
	}
	return nil
}

func (r *Repo) DeleteEmployee(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Employee{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("employee not found")
	}
	return nil
}

// =========================
// CLAIMS
// =========================

func (r *Repo) CreateClaim(ctx context.Context, c *models.Claim) error {
	return translate(r.DB.WithContext(ctx).Create(c).Error, "claim")
}

func (r *Repo) ClaimByID(ctx context.Context, id string) (*models.Claim, error) {
	var c models.Claim
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, translate(err, "claim")
	}
	return &c, nil
}

func (r *Repo) ListClaims(ctx context.Context, f repository.ClaimFilter) ([]models.Claim, error) {
	q := scoped(r.DB.WithContext(ctx), f.Scope)
	if f.EmployeeID != "" {
		q = q.Where("employee_id = ?", f.EmployeeID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var rows []models.Claim
	err := q.Order("submission_date asc, id asc").Find(&rows).Error
	return rows, err
}

func (r *Repo) TransitionClaim(ctx context.Context, t repository.ClaimTransition) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Claim{}).
			Where("id = ? AND status = ?", t.ClaimID, t.From).
			Updates(map[string]any{
				"status":         t.To,
				"review_date":    t.ReviewDate,
				"reviewer_notes": t.Notes,
				"reviewed_by":    t.ReviewedBy,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			return nil
		}

		var current models.Claim
		if err := tx.Select("status").Where("id = ?", t.ClaimID).First(&current).Error; err != nil {
			return translate(err, "claim")
		}
		return apperr.InvalidState("claim is %s, expected %s", current.Status, t.From)
	})
}

// =========================
// FINANCIALS
// =========================

func (r *Repo) CreateTransaction(ctx context.Context, tx *models.FinancialTransaction) error {
	return translate(r.DB.WithContext(ctx).Create(tx).Error, "transaction")
}

func (r *Repo) ListTransactions(ctx context.Context, s repository.Scope) ([]models.FinancialTransaction, error) {
	var rows []models.FinancialTransaction
	err := scoped(r.DB.WithContext(ctx), s).Order("transaction_date asc, id asc").Find(&rows).Error
	return rows, err
}

// =========================
// WELLNESS
// =========================

func (r *Repo) CreatePartner(ctx context.Context, p *models.WellnessPartner) error {
	return translate(r.DB.WithContext(ctx).Create(p).Error, "wellness partner")
}

func (r *Repo) PartnerByID(ctx context.Context, id string) (*models.WellnessPartner, error) {
	var p models.WellnessPartner
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err, "partner")
	}
	return &p, nil
}

func (r *Repo) ListPartners(ctx context.Context) ([]models.WellnessPartner, error) {
	var rows []models.WellnessPartner
	err := r.DB.WithContext(ctx).Order("created_at asc, id asc").Find(&rows).Error
	return rows, err
}

func (r *Repo) CreateBooking(ctx context.Context, b *models.Booking) error {
	return translate(r.DB.WithContext(ctx).Create(b).Error, "booking")
}

func (r *Repo) ListBookings(ctx context.Context, employeeID string) ([]models.Booking, error) {
	var rows []models.Booking
	err := r.DB.WithContext(ctx).Where("employee_id = ?", employeeID).
		Order("created_at asc, id asc").Find(&rows).Error
	return rows, err
}

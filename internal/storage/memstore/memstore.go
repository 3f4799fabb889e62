// Package memstore is an in-process implementation of the repository ports, used for
// local runs (DB_DRIVER=memory) and by the package tests.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
	"github.com/jaswanth12321/carequo-insure-tech/internal/repository"
)

type Store struct {
	mu        sync.RWMutex
	users     map[string]models.User
	companies map[string]models.Company
	employees map[string]models.Employee
	claims    map[string]models.Claim
	txns      map[string]models.FinancialTransaction
	partners  map[string]models.WellnessPartner
	bookings  map[string]models.Booking
}

func New() *Store {
	return &Store{
		users:     map[string]models.User{},
		companies: map[string]models.Company{},
		employees: map[string]models.Employee{},
		claims:    map[string]models.Claim{},
		txns:      map[string]models.FinancialTransaction{},
		partners:  map[string]models.WellnessPartner{},
		bookings:  map[string]models.Booking{},
	}
}

// Repositories exposes s through the repository.Store ports.
func (s *Store) Repositories() repository.Store {
	return repository.Store{
		Users:        s,
		Companies:    s,
		Employees:    s,
		Claims:       s,
		Transactions: s,
		Partners:     s,
		Bookings:     s,
	}
}

func cloneClaim(c models.Claim) models.Claim {
	if c.Documents != nil {
		c.Documents = append([]string(nil), c.Documents...)
	}
	if c.ReviewDate != nil {
		d := *c.ReviewDate
		c.ReviewDate = &d
	}
	if c.ReviewerNotes != nil {
		n := *c.ReviewerNotes
		c.ReviewerNotes = &n
	}
	if c.ReviewedBy != nil {
		b := *c.ReviewedBy
		c.ReviewedBy = &b
	}
	return c
}

// =========================
// USERS
// =========================

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUser(u); err != nil {
		return err
	}
	s.users[u.ID] = *u
	return nil
}

func (s *Store) CreateUserWithProfile(_ context.Context, u *models.User, e *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUser(u); err != nil {
		return err
	}
	if err := s.checkEmployee(e); err != nil {
		return err
	}
	s.users[u.ID] = *u
	s.employees[e.ID] = *e
	return nil
}

func (s *Store) checkUser(u *models.User) error {
	if _, ok := s.users[u.ID]; ok {
		return apperr.Conflict("user already exists")
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return apperr.Conflict("user already exists")
		}
	}
	return nil
}

func (s *Store) UserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return &u, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (s *Store) UpdateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return apperr.NotFound("user not found")
	}
	s.users[u.ID] = *u
	return nil
}

// =========================
// COMPANIES
// =========================

func (s *Store) CreateCompany(_ context.Context, c *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[c.ID]; ok {
		return apperr.Conflict("company already exists")
	}
	s.companies[c.ID] = *c
	return nil
}

func (s *Store) CompanyByID(_ context.Context, id string) (*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.companies[id]
	if !ok {
		return nil, apperr.NotFound("company not found")
	}
	return &c, nil
}

func (s *Store) ListCompanies(_ context.Context, scope repository.Scope) ([]models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Company{}
	for _, c := range s.companies {
		if scope.AllCompanies || c.ID == scope.CompanyID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// =========================
// EMPLOYEES
// =========================

func (s *Store) CreateEmployee(_ context.Context, e *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkEmployee(e); err != nil {
		return err
	}
	s.employees[e.ID] = *e
	return nil
}

func (s *Store) checkEmployee(e *models.Employee) error {
	for _, existing := range s.employees {
		if existing.ID == e.ID || existing.UserID == e.UserID {
			return apperr.Conflict("employee already exists")
		}
		if existing.CompanyID == e.CompanyID && existing.EmployeeID == e.EmployeeID {
			return apperr.Conflict("employee already exists")
		}
	}
	return nil
}

func (s *Store) EmployeeByID(_ context.Context, id string) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	if !ok {
		return nil, apperr.NotFound("employee not found")
	}
	return &e, nil
}

func (s *Store) EmployeeByUserID(_ context.Context, userID string) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.employees {
		if e.UserID == userID {
			return &e, nil
		}
	}
	return nil, apperr.NotFound("employee profile not found")
}

func (s *Store) ListEmployees(_ context.Context, scope repository.Scope) ([]models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Employee{}
	for _, e := range s.employees {
		if scope.Matches(e.CompanyID) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CountEmployees(ctx context.Context, scope repository.Scope) (int, error) {
	rows, err := s.ListEmployees(ctx, scope)
	return len(rows), err
}

func (s *Store) UpdateEmployee(_ context.Context, e *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.employees[e.ID]
	if !ok {
		return apperr.NotFound("employee not found")
	}
	for _, other := range s.employees {
		if other.ID != e.ID && other.CompanyID == current.CompanyID && other.EmployeeID == e.EmployeeID {
			return apperr.Conflict("employee already exists")
		}
	}
	e.UserID = current.UserID
	e.CompanyID = current.CompanyID
	e.CreatedAt = current.CreatedAt
	s.employees[e.ID] = *e
	return nil
}

func (s *Store) DeleteEmployee(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[id]; !ok {
		return apperr.NotFound("employee not found")
	}
	delete(s.employees, id)
	return nil
}

// =========================
// CLAIMS
// =========================

func (s *Store) CreateClaim(_ context.Context, c *models.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claims[c.ID]; ok {
		return apperr.Conflict("claim already exists")
	}
	s.claims[c.ID] = cloneClaim(*c)
	return nil
}

func (s *Store) ClaimByID(_ context.Context, id string) (*models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.claims[id]
	if !ok {
		return nil, apperr.NotFound("claim not found")
	}
	c = cloneClaim(c)
	return &c, nil
}

func (s *Store) ListClaims(_ context.Context, f repository.ClaimFilter) ([]models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Claim{}
	for _, c := range s.claims {
		if !f.Scope.Matches(c.CompanyID) {
			continue
		}
		if f.EmployeeID != "" && c.EmployeeID != f.EmployeeID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		out = append(out, cloneClaim(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmissionDate.Equal(out[j].SubmissionDate) {
			return out[i].SubmissionDate.Before(out[j].SubmissionDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) TransitionClaim(_ context.Context, t repository.ClaimTransition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[t.ClaimID]
	if !ok {
		return apperr.NotFound("claim not found")
	}
	if c.Status != t.From {
		return apperr.InvalidState("claim is %s, expected %s", c.Status, t.From)
	}
	date, notes, by := t.ReviewDate, t.Notes, t.ReviewedBy
	c.Status = t.To
	c.ReviewDate = &date
	c.ReviewerNotes = &notes
	c.ReviewedBy = &by
	s.claims[c.ID] = c
	return nil
}

// =========================
// FINANCIALS
// =========================

func (s *Store) CreateTransaction(_ context.Context, tx *models.FinancialTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txns[tx.ID]; ok {
		return apperr.Conflict("transaction already exists")
	}
	s.txns[tx.ID] = *tx
	return nil
}

func (s *Store) ListTransactions(_ context.Context, scope repository.Scope) ([]models.FinancialTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.FinancialTransaction{}
	for _, tx := range s.txns {
		if scope.Matches(tx.CompanyID) {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TransactionDate.Equal(out[j].TransactionDate) {
			return out[i].TransactionDate.Before(out[j].TransactionDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// =========================
// WELLNESS
// =========================

func (s *Store) CreatePartner(_ context.Context, p *models.WellnessPartner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.partners[p.ID]; ok {
		return apperr.Conflict("wellness partner already exists")
	}
	s.partners[p.ID] = *p
	return nil
}

func (s *Store) PartnerByID(_ context.Context, id string) (*models.WellnessPartner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.partners[id]
	if !ok {
		return nil, apperr.NotFound("partner not found")
	}
	return &p, nil
}

func (s *Store) ListPartners(_ context.Context) ([]models.WellnessPartner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.WellnessPartner, 0, len(s.partners))
	for _, p := range s.partners {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CreateBooking(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; ok {
		return apperr.Conflict("booking already exists")
	}
	s.bookings[b.ID] = *b
	return nil
}

func (s *Store) ListBookings(_ context.Context, employeeID string) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Booking{}
	for _, b := range s.bookings {
		if b.EmployeeID == employeeID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

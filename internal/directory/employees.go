package directory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
	"github.com/jaswanth12321/carequo-insure-tech/internal/events"
	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
	"github.com/jaswanth12321/carequo-insure-tech/internal/rbac"
	"github.com/jaswanth12321/carequo-insure-tech/internal/repository"
)

type EmployeeInput struct {
	UserID           string                `json:"user_id"`
	EmployeeID       string                `json:"employee_id"`
	Department       string                `json:"department"`
	Designation      string                `json:"designation"`
	DateOfJoining    string                `json:"date_of_joining"`
	DateOfBirth      string                `json:"date_of_birth"`
	Phone            string                `json:"phone"`
	EmergencyContact string                `json:"emergency_contact"`
	Status           models.EmployeeStatus `json:"status,omitempty"`
}

func (in EmployeeInput) apply(e *models.Employee) error {
	e.EmployeeID = strings.TrimSpace(in.EmployeeID)
	if e.EmployeeID == "" {
		return apperr.Validation("employee_id is required")
	}
	e.Department = strings.TrimSpace(in.Department)
	e.Designation = strings.TrimSpace(in.Designation)
	e.Phone = strings.TrimSpace(in.Phone)
	e.EmergencyContact = strings.TrimSpace(in.EmergencyContact)

	var err error
	if e.DateOfJoining, err = optionalDate("date_of_joining", in.DateOfJoining); err != nil {
		return err
	}
	if e.DateOfBirth, err = optionalDate("date_of_birth", in.DateOfBirth); err != nil {
		return err
	}

	switch in.Status {
	case "":
		if e.Status == "" {
			e.Status = models.EmployeeActive
		}
	case models.EmployeeActive, models.EmployeeInactive:
		e.Status = in.Status
	default:
		return apperr.Validation("invalid status %q", in.Status)
	}
	return nil
}

// CreateEmployee attaches an existing user to the caller's company.
func (s *Service) CreateEmployee(ctx context.Context, p models.Principal, in EmployeeInput) (*models.Employee, error) {
	if err := rbac.Require(p, rbac.ManageEmployees); err != nil {
		return nil, err
	}
	if p.CompanyID == "" {
		return nil, apperr.Validation("a company is required to manage employees")
	}
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, apperr.Validation("user_id is required")
	}
	if _, err := s.Users.UserByID(ctx, userID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Validation("user %q does not exist", userID)
		}
		return nil, err
	}

	e := &models.Employee{
		ID:        uuid.NewString(),
		UserID:    userID,
		CompanyID: p.CompanyID,
		Status:    models.EmployeeActive,
		CreatedAt: s.Now(),
	}
	if err := in.apply(e); err != nil {
		return nil, err
	}
	if err := s.Employees.CreateEmployee(ctx, e); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.Conflict("employee_id %s or user %s is already registered", e.EmployeeID, userID)
		}
		return nil, err
	}

	s.invalidate(ctx, e.CompanyID)
	events.Emit(ctx, s.Events, s.Logger, events.New(events.EmployeeCreated, e.CompanyID, e.ID, p.UserID, e))
	return e, nil
}

// ListEmployees returns the caller's company roster; super admins see every company.
func (s *Service) ListEmployees(ctx context.Context, p models.Principal) ([]models.Employee, error) {
	return s.Employees.ListEmployees(ctx, repository.ScopeFor(p))
}

func (s *Service) GetEmployee(ctx context.Context, p models.Principal, id string) (*models.Employee, error) {
	e, err := s.Employees.EmployeeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Role == models.RoleEmployee {
		if e.UserID != p.UserID {
			return nil, apperr.Permission("employees may only read their own profile")
		}
		return e, nil
	}
	if !repository.ScopeFor(p).Matches(e.CompanyID) {
		return nil, apperr.NotFound("employee not found")
	}
	return e, nil
}

func (s *Service) UpdateEmployee(ctx context.Context, p models.Principal, id string, in EmployeeInput) (*models.Employee, error) {
	if err := rbac.Require(p, rbac.ManageEmployees); err != nil {
		return nil, err
	}
	e, err := s.managed(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(e); err != nil {
		return nil, err
	}
	if err := s.Employees.UpdateEmployee(ctx, e); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.Conflict("employee_id %s is already registered", e.EmployeeID)
		}
		return nil, err
	}

	s.invalidate(ctx, e.CompanyID)
	events.Emit(ctx, s.Events, s.Logger, events.New(events.EmployeeUpdated, e.CompanyID, e.ID, p.UserID, e))
	return e, nil
}

func (s *Service) DeleteEmployee(ctx context.Context, p models.Principal, id string) error {
	if err := rbac.Require(p, rbac.ManageEmployees); err != nil {
		return err
	}
	e, err := s.managed(ctx, p, id)
	if err != nil {
		return err
	}
	if err := s.Employees.DeleteEmployee(ctx, e.ID); err != nil {
		return err
	}

	s.invalidate(ctx, e.CompanyID)
	events.Emit(ctx, s.Events, s.Logger, events.New(events.EmployeeDeleted, e.CompanyID, e.ID, p.UserID, nil))
	return nil
}

// managed loads an employee of the caller's company; others read as missing.
func (s *Service) managed(ctx context.Context, p models.Principal, id string) (*models.Employee, error) {
	e, err := s.Employees.EmployeeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.CompanyID != p.CompanyID {
		return nil, apperr.NotFound("employee not found")
	}
	return e, nil
}

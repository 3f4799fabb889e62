package directory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
	"github.com/jaswanth12321/carequo-insure-tech/internal/rbac"
	"github.com/jaswanth12321/carequo-insure-tech/internal/repository"
)

type CompanyInput struct {
	Name          string          `json:"name"`
	Industry      string          `json:"industry"`
	EmployeeCount int             `json:"employee_count"`
	ContactEmail  string          `json:"contact_email"`
	ContactPhone  string          `json:"contact_phone"`
	Address       string          `json:"address"`
	PlanType      models.PlanType `json:"plan_type"`
}

func (s *Service) CreateCompany(ctx context.Context, p models.Principal, in CompanyInput) (*models.Company, error) {
	if err := rbac.Require(p, rbac.ManageCompanies); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	if in.EmployeeCount < 0 {
		return nil, apperr.Validation("employee_count must not be negative")
	}
	plan := in.PlanType
	if plan == "" {
		plan = models.PlanBasic
	}
	if !plan.Valid() {
		return nil, apperr.Validation("invalid plan_type %q", in.PlanType)
	}

	c := &models.Company{
		ID:            uuid.NewString(),
		Name:          name,
		Industry:      strings.TrimSpace(in.Industry),
		EmployeeCount: in.EmployeeCount,
		ContactEmail:  strings.ToLower(strings.TrimSpace(in.ContactEmail)),
		ContactPhone:  strings.TrimSpace(in.ContactPhone),
		Address:       strings.TrimSpace(in.Address),
		PlanType:      plan,
		CreatedAt:     s.Now(),
	}
	if err := s.Companies.CreateCompany(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListCompanies(ctx context.Context, p models.Principal) ([]models.Company, error) {
	return s.Companies.ListCompanies(ctx, repository.ScopeFor(p))
}

func (s *Service) GetCompany(ctx context.Context, p models.Principal, id string) (*models.Company, error) {
	if !repository.ScopeFor(p).Matches(id) {
		return nil, apperr.Permission("not authorized to view company %s", id)
	}
	return s.Companies.CompanyByID(ctx, id)
}

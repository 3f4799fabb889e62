// Package claims owns the claim lifecycle: submission by an employee and review by
// company admins or HR managers.
package claims

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
	"github.com/jaswanth12321/carequo-insure-tech/internal/events"
	"github.com/jaswanth12321/carequo-insure-tech/internal/metrics"
	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
	"github.com/jaswanth12321/carequo-insure-tech/internal/rbac"
	"github.com/jaswanth12321/carequo-insure-tech/internal/repository"
)

// FilterAll lists claims in every status.
const FilterAll = "all"

type StatsInvalidator interface {
	InvalidateStats(ctx context.Context, companyID string)
}

type SubmitInput struct {
	ClaimType   models.ClaimType `json:"claim_type" binding:"required"`
	Amount      decimal.Decimal  `json:"amount"`
	Description string           `json:"description"`
	Documents   []string         `json:"documents"`
}

type ReviewInput struct {
	Status        models.ClaimStatus `json:"status" binding:"required"`
	ReviewerNotes string             `json:"reviewer_notes"`
}

type Manager struct {
	Claims    repository.Claims
	Employees repository.Employees
	Stats     StatsInvalidator
	Events    events.Publisher
	Logger    *zap.Logger
	Now       func() time.Time
}

func NewManager(store repository.Store, stats StatsInvalidator, pub events.Publisher, logger *zap.Logger) *Manager {
	return &Manager{
		Claims:    store.Claims,
		Employees: store.Employees,
		Stats:     stats,
		Events:    pub,
		Logger:    logger,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// =========================
// SUBMIT
// =========================

// Submit files a claim owned by the caller's employee profile. The owner is never
// taken from the input.
func (m *Manager) Submit(ctx context.Context, p models.Principal, in SubmitInput) (*models.Claim, error) {
	if err := rbac.Require(p, rbac.SubmitClaims); err != nil {
		return nil, err
	}
	if !in.ClaimType.Valid() {
		return nil, apperr.Validation("invalid claim_type %q", in.ClaimType)
	}
	// validate the value that is stored
	amount := in.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, apperr.Validation("amount must be greater than zero")
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, apperr.Validation("description is required")
	}
	docs := make([]string, 0, len(in.Documents))
	for _, d := range in.Documents {
		if d = strings.TrimSpace(d); d != "" {
			docs = append(docs, d)
		}
	}

	emp, err := m.Employees.EmployeeByUserID(ctx, p.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("employee profile not found")
	}
	if err != nil {
		return nil, err
	}

	c := &models.Claim{
		ID:             ulid.Make().String(),
		EmployeeID:     emp.ID,
		CompanyID:      emp.CompanyID,
		ClaimType:      in.ClaimType,
		Amount:         amount,
		Description:    desc,
		Status:         models.ClaimSubmitted,
		Documents:      docs,
		SubmissionDate: m.Now(),
	}
	if err := m.Claims.CreateClaim(ctx, c); err != nil {
		return nil, err
	}

	metrics.ClaimsSubmitted.WithLabelValues(string(c.ClaimType)).Inc()
	m.invalidate(ctx, c.CompanyID)
	events.Emit(ctx, m.Events, m.Logger, events.New(events.ClaimSubmitted, c.CompanyID, c.ID, p.UserID, c))
	return c, nil
}

// =========================
// REVIEW
// =========================

// Review moves a claim to under_review, approved or rejected. The write only lands
// if the claim is still in the status that was read, so two concurrent reviewers
// cannot both succeed.
func (m *Manager) Review(ctx context.Context, p models.Principal, claimID string, in ReviewInput) (*models.Claim, error) {
	if err := rbac.Require(p, rbac.ReviewClaims); err != nil {
		return nil, err
	}
	switch in.Status {
	case models.ClaimUnderReview, models.ClaimApproved, models.ClaimRejected:
	default:
		return nil, apperr.Validation("status must be one of under_review, approved, rejected")
	}

	c, err := m.visible(ctx, p, claimID)
	if err != nil {
		return nil, err
	}
	if !c.Status.CanTransitionTo(in.Status) {
		metrics.ReviewConflicts.Inc()
		return nil, apperr.InvalidState("claim is %s and cannot move to %s", c.Status, in.Status)
	}

	err = m.Claims.TransitionClaim(ctx, repository.ClaimTransition{
		ClaimID:    c.ID,
		From:       c.Status,
		To:         in.Status,
		ReviewDate: m.Now(),
		Notes:      strings.TrimSpace(in.ReviewerNotes),
		ReviewedBy: p.UserID,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidState) {
			metrics.ReviewConflicts.Inc()
		}
		return nil, err
	}

	updated, err := m.Claims.ClaimByID(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	metrics.ClaimsReviewed.WithLabelValues(string(updated.Status)).Inc()
	m.invalidate(ctx, updated.CompanyID)
	events.Emit(ctx, m.Events, m.Logger, events.New(events.ClaimReviewed, updated.CompanyID, updated.ID, p.UserID, updated))
	return updated, nil
}

// =========================
// READ
// =========================

// List returns the claims visible to the caller, ordered by submission date.
// filter is "all" (or empty) or a claim status.
func (m *Manager) List(ctx context.Context, p models.Principal, filter string) ([]models.Claim, error) {
	f := repository.ClaimFilter{Scope: repository.ScopeFor(p)}
	switch filter = strings.TrimSpace(filter); filter {
	case "", FilterAll:
	default:
		st := models.ClaimStatus(filter)
		if !st.Valid() {
			return nil, apperr.Validation("invalid status filter %q", filter)
		}
		f.Status = st
	}

	if p.Role == models.RoleEmployee {
		emp, err := m.Employees.EmployeeByUserID(ctx, p.UserID)
		if errors.Is(err, apperr.ErrNotFound) {
			return []models.Claim{}, nil
		}
		if err != nil {
			return nil, err
		}
		f.EmployeeID = emp.ID
	}
	return m.Claims.ListClaims(ctx, f)
}

func (m *Manager) Get(ctx context.Context, p models.Principal, id string) (*models.Claim, error) {
	return m.visible(ctx, p, id)
}

// visible loads a claim and hides it behind NotFound when the caller may not see it.
func (m *Manager) visible(ctx context.Context, p models.Principal, id string) (*models.Claim, error) {
	c, err := m.Claims.ClaimByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Role == models.RoleEmployee {
		emp, err := m.Employees.EmployeeByUserID(ctx, p.UserID)
		if err != nil || emp.ID != c.EmployeeID {
			return nil, apperr.NotFound("claim not found")
		}
		return c, nil
	}
	if !repository.ScopeFor(p).Matches(c.CompanyID) {
		return nil, apperr.NotFound("claim not found")
	}
	return c, nil
}

func (m *Manager) invalidate(ctx context.Context, companyID string) {
	if m.Stats != nil {
		m.Stats.InvalidateStats(ctx, companyID)
	}
}

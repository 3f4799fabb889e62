// Package ledger records financial transactions and derives the dashboard stats
// from the current claim and transaction rows.
package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
	"github.com/jaswanth12321/carequo-insure-tech/internal/cache"
	"github.com/jaswanth12321/carequo-insure-tech/internal/events"
	"github.com/jaswanth12321/carequo-insure-tech/internal/metrics"
	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
	"github.com/jaswanth12321/carequo-insure-tech/internal/rbac"
	"github.com/jaswanth12321/carequo-insure-tech/internal/repository"
)

type TransactionInput struct {
	TransactionType models.TransactionType `json:"transaction_type" binding:"required"`
	Amount          decimal.Decimal        `json:"amount"`
	Description     string                 `json:"description"`
	ReferenceID     *string                `json:"reference_id"`
}

type Service struct {
	Employees    repository.Employees
	Claims       repository.Claims
	Transactions repository.Transactions
	Cache        cache.StatsCache
	Events       events.Publisher
	Logger       *zap.Logger
	Now          func() time.Time
}

func NewService(store repository.Store, c cache.StatsCache, pub events.Publisher, logger *zap.Logger) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{
		Employees:    store.Employees,
		Claims:       store.Claims,
		Transactions: store.Transactions,
		Cache:        c,
		Events:       pub,
		Logger:       logger,
		Now:          func() time.Time { return time.Now().UTC() },
	}
}

// RecordTransaction appends an immutable ledger row for the caller's company.
func (s *Service) RecordTransaction(ctx context.Context, p models.Principal, in TransactionInput) (*models.FinancialTransaction, error) {
	if err := rbac.Require(p, rbac.RecordTransactions); err != nil {
		return nil, err
	}
	if !in.TransactionType.Valid() {
		return nil, apperr.Validation("invalid transaction_type %q", in.TransactionType)
	}
	amount := in.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, apperr.Validation("amount must be greater than zero")
	}
	if p.CompanyID == "" {
		return nil, apperr.Validation("a company is required to record transactions")
	}
	if in.ReferenceID != nil {
		ref := strings.TrimSpace(*in.ReferenceID)
		if ref == "" {
			in.ReferenceID = nil
		} else {
			in.ReferenceID = &ref
		}
	}

	tx := &models.FinancialTransaction{
		ID:              ulid.Make().String(),
		CompanyID:       p.CompanyID,
		TransactionType: in.TransactionType,
		Amount:          amount,
		Description:     strings.TrimSpace(in.Description),
		ReferenceID:     in.ReferenceID,
		TransactionDate: s.Now(),
	}
	if err := s.Transactions.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	metrics.TransactionsRecorded.WithLabelValues(string(tx.TransactionType)).Inc()
	s.InvalidateStats(ctx, tx.CompanyID)
	events.Emit(ctx, s.Events, s.Logger, events.New(events.TransactionRecorded, tx.CompanyID, tx.ID, p.UserID, tx))
	return tx, nil
}

func (s *Service) List(ctx context.Context, p models.Principal) ([]models.FinancialTransaction, error) {
	if err := rbac.Require(p, rbac.ViewFinancials); err != nil {
		return nil, err
	}
	return s.Transactions.ListTransactions(ctx, repository.ScopeFor(p))
}

// Stats serves from the cache when possible and recomputes from the rows otherwise.
func (s *Service) Stats(ctx context.Context, p models.Principal) (models.DashboardStats, error) {
	if err := rbac.Require(p, rbac.ViewDashboard); err != nil {
		return models.DashboardStats{}, err
	}
	scope := repository.ScopeFor(p)
	key := cacheKey(scope)

	cached, err := s.Cache.Get(ctx, key)
	switch {
	case err == nil:
		metrics.StatsCacheHits.WithLabelValues("hit").Inc()
		return cached, nil
	case errors.Is(err, cache.ErrMiss):
		metrics.StatsCacheHits.WithLabelValues("miss").Inc()
	default:
		metrics.StatsCacheHits.WithLabelValues("error").Inc()
		s.Logger.Warn("stats cache read failed", zap.String("key", key), zap.Error(err))
	}

	// the generation is read before the rows so a write that invalidates the
	// key during compute keeps this result out of the cache
	gen, genErr := s.Cache.Generation(ctx, key)
	stats, err := s.compute(ctx, scope)
	if err != nil {
		return models.DashboardStats{}, err
	}
	if genErr != nil {
		s.Logger.Warn("stats cache generation read failed", zap.String("key", key), zap.Error(genErr))
		return stats, nil
	}
	switch err := s.Cache.Set(ctx, key, gen, stats); {
	case errors.Is(err, cache.ErrStale):
		s.Logger.Debug("stats invalidated during compute, not cached", zap.String("key", key))
	case err != nil:
		s.Logger.Warn("stats cache write failed", zap.String("key", key), zap.Error(err))
	}
	return stats, nil
}

func (s *Service) compute(ctx context.Context, scope repository.Scope) (models.DashboardStats, error) {
	count, err := s.Employees.CountEmployees(ctx, scope)
	if err != nil {
		return models.DashboardStats{}, err
	}
	claims, err := s.Claims.ListClaims(ctx, repository.ClaimFilter{Scope: scope})
	if err != nil {
		return models.DashboardStats{}, err
	}
	txns, err := s.Transactions.ListTransactions(ctx, scope)
	if err != nil {
		return models.DashboardStats{}, err
	}
	return ComputeStats(count, claims, txns), nil
}

// InvalidateStats drops the cached stats of a company and of the all-companies view.
// Every mutating claim, transaction and employee operation calls it.
func (s *Service) InvalidateStats(ctx context.Context, companyID string) {
	keys := []string{cacheKey(repository.Scope{AllCompanies: true})}
	if companyID != "" {
		keys = append(keys, cacheKey(repository.Scope{CompanyID: companyID}))
	}
	if err := s.Cache.Invalidate(ctx, keys...); err != nil {
		s.Logger.Warn("stats cache invalidation failed", zap.String("company_id", companyID), zap.Error(err))
	}
}

func cacheKey(scope repository.Scope) string {
	if scope.AllCompanies {
		return "all"
	}
	return "company:" + scope.CompanyID
}

// ComputeStats derives the dashboard figures from the rows in scope.
func ComputeStats(employeeCount int, claims []models.Claim, txns []models.FinancialTransaction) models.DashboardStats {
	st := models.DashboardStats{
		EmployeeCount:       employeeCount,
		TotalClaims:         len(claims),
		TotalClaimAmount:    decimal.Zero,
		ApprovedClaimAmount: decimal.Zero,
		TotalPremiums:       decimal.Zero,
		TotalPayouts:        decimal.Zero,
	}
	for _, c := range claims {
		st.TotalClaimAmount = st.TotalClaimAmount.Add(c.Amount)
		switch c.Status {
		case models.ClaimSubmitted:
			st.PendingClaims++
		case models.ClaimApproved:
			st.ApprovedClaims++
			st.ApprovedClaimAmount = st.ApprovedClaimAmount.Add(c.Amount)
		case models.ClaimRejected:
			st.RejectedClaims++
		}
	}
	for _, t := range txns {
		switch t.TransactionType {
		case models.TxPremiumPayment:
			st.TotalPremiums = st.TotalPremiums.Add(t.Amount)
		case models.TxClaimPayout:
			st.TotalPayouts = st.TotalPayouts.Add(t.Amount)
		}
	}
	st.NetBalance = st.TotalPremiums.Sub(st.TotalPayouts)
	return st
}

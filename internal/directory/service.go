// Package directory manages the reference data around claims: companies, employee
// records, wellness partners and bookings.
package directory

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
	"github.com/jaswanth12321/carequo-insure-tech/internal/events"
	"github.com/jaswanth12321/carequo-insure-tech/internal/repository"
)

type StatsInvalidator interface {
	InvalidateStats(ctx context.Context, companyID string)
}

type Service struct {
	Users     repository.Users
	Companies repository.Companies
	Employees repository.Employees
	Partners  repository.Partners
	Bookings  repository.Bookings
	Stats     StatsInvalidator
	Events    events.Publisher
	Logger    *zap.Logger
	Now       func() time.Time
}

func NewService(store repository.Store, stats StatsInvalidator, pub events.Publisher, logger *zap.Logger) *Service {
	return &Service{
		Users:     store.Users,
		Companies: store.Companies,
		Employees: store.Employees,
		Partners:  store.Partners,
		Bookings:  store.Bookings,
		Stats:     stats,
		Events:    pub,
		Logger:    logger,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) invalidate(ctx context.Context, companyID string) {
	if s.Stats != nil {
		s.Stats.InvalidateStats(ctx, companyID)
	}
}

// optionalDate accepts an empty string or a YYYY-MM-DD date.
func optionalDate(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}
	if _, err := time.Parse(time.DateOnly, v); err != nil {
		return "", apperr.Validation("%s must be a YYYY-MM-DD date", field)
	}
	return v, nil
}

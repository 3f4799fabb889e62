package portal

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
	"github.com/jaswanth12321/carequo-insure-tech/internal/guard"
	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
)

// Section names a block of a page that can fail on its own.
type Section string

const (
	SectionStats        Section = "stats"
	SectionEmployees    Section = "employees"
	SectionClaims       Section = "claims"
	SectionTransactions Section = "transactions"
	SectionPartners     Section = "partners"
	SectionBookings     Section = "bookings"
)

// Page is everything a view renders. Sections that failed are left empty and
// their error is kept in Failed.
type Page struct {
	View       guard.View `json:"view"`
	Generation uint64     `json:"-"`

	Stats        *models.DashboardStats        `json:"stats,omitempty"`
	Employees    []models.Employee             `json:"employees,omitempty"`
	Claims       []models.Claim                `json:"claims,omitempty"`
	ClaimFilter  string                        `json:"claim_filter,omitempty"`
	Transactions []models.FinancialTransaction `json:"transactions,omitempty"`
	Partners     []models.WellnessPartner      `json:"partners,omitempty"`
	Bookings     []models.Booking              `json:"bookings,omitempty"`

	Failed map[Section]error `json:"-"`
}

func (p *Page) degrade(s Section, err error) {
	if p.Failed == nil {
		p.Failed = map[Section]error{}
	}
	p.Failed[s] = err
}

// section loads one block. critical blocks fail the whole page; the others
// degrade to an empty state. Auth failures and cancellation are never degraded.
func (n *Navigator) section(p *Page, s Section, critical bool, fetch func() error) error {
	err := fetch()
	if err == nil {
		return nil
	}
	if critical || errors.Is(err, apperr.ErrAuth) || errors.Is(err, context.Canceled) {
		return err
	}
	n.logger.Warn("section unavailable", zap.String("view", string(p.View)), zap.String("section", string(s)), zap.Error(err))
	p.degrade(s, err)
	return nil
}

func (n *Navigator) load(ctx context.Context, v guard.View, filter string) (Page, error) {
	p := Page{View: v}
	var err error

	switch v {
	case guard.Landing:
		return p, nil

	case guard.Dashboard:
		err = n.section(&p, SectionStats, true, func() error {
			st, err := n.api.Stats(ctx)
			p.Stats = &st
			return err
		})

	case guard.Employees:
		err = n.section(&p, SectionEmployees, true, func() (err error) {
			p.Employees, err = n.api.ListEmployees(ctx)
			return err
		})

	case guard.Claims:
		p.ClaimFilter = filter
		err = n.section(&p, SectionClaims, true, func() (err error) {
			p.Claims, err = n.api.ListClaims(ctx, filter)
			return err
		})

	case guard.Financials:
		err = n.section(&p, SectionTransactions, true, func() (err error) {
			p.Transactions, err = n.api.ListTransactions(ctx)
			return err
		})
		if err == nil {
			err = n.section(&p, SectionStats, false, func() error {
				st, err := n.api.Stats(ctx)
				if err == nil {
					p.Stats = &st
				}
				return err
			})
		}

	case guard.Wellness:
		err = n.section(&p, SectionPartners, true, func() (err error) {
			p.Partners, err = n.api.ListPartners(ctx)
			return err
		})

	case guard.EmployeeHome:
		err = n.section(&p, SectionClaims, true, func() (err error) {
			p.Claims, err = n.api.ListClaims(ctx, "")
			return err
		})
		if err == nil {
			err = n.section(&p, SectionBookings, false, func() (err error) {
				p.Bookings, err = n.api.ListBookings(ctx)
				return err
			})
		}
		if err == nil {
			err = n.section(&p, SectionPartners, false, func() (err error) {
				p.Partners, err = n.api.ListPartners(ctx)
				return err
			})
		}
	}

	if err != nil {
		return Page{View: v}, err
	}
	return p, nil
}

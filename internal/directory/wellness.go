package directory

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
	"github.com/jaswanth12321/carequo-insure-tech/internal/events"
	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
	"github.com/jaswanth12321/carequo-insure-tech/internal/rbac"
)

type PartnerInput struct {
	Name         string             `json:"name"`
	ServiceType  models.ServiceType `json:"service_type"`
	Description  string             `json:"description"`
	ContactEmail string             `json:"contact_email"`
	ContactPhone string             `json:"contact_phone"`
	Availability string             `json:"availability"`
	Pricing      string             `json:"pricing"`
}

// BookingInput.ServiceType is accepted on the wire but the partner's own type wins.
type BookingInput struct {
	PartnerID   string             `json:"partner_id"`
	ServiceType models.ServiceType `json:"service_type"`
	BookingDate string             `json:"booking_date"`
	BookingTime string             `json:"booking_time"`
	Notes       string             `json:"notes"`
}

// =========================
// PARTNERS
// =========================

func (s *Service) CreatePartner(ctx context.Context, p models.Principal, in PartnerInput) (*models.WellnessPartner, error) {
	if err := rbac.Require(p, rbac.ManagePartners); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	if !in.ServiceType.Valid() {
		return nil, apperr.Validation("invalid service_type %q", in.ServiceType)
	}
	email := strings.ToLower(strings.TrimSpace(in.ContactEmail))
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, apperr.Validation("invalid contact_email %q", in.ContactEmail)
		}
	}

	partner := &models.WellnessPartner{
		ID:           uuid.NewString(),
		Name:         name,
		ServiceType:  in.ServiceType,
		Description:  strings.TrimSpace(in.Description),
		ContactEmail: email,
		ContactPhone: strings.TrimSpace(in.ContactPhone),
		Availability: strings.TrimSpace(in.Availability),
		Pricing:      strings.TrimSpace(in.Pricing),
		CreatedAt:    s.Now(),
	}
	if err := s.Partners.CreatePartner(ctx, partner); err != nil {
		return nil, err
	}
	return partner, nil
}

func (s *Service) ListPartners(ctx context.Context) ([]models.WellnessPartner, error) {
	return s.Partners.ListPartners(ctx)
}

func (s *Service) GetPartner(ctx context.Context, id string) (*models.WellnessPartner, error) {
	return s.Partners.PartnerByID(ctx, id)
}

// =========================
// BOOKINGS
// =========================

func (s *Service) CreateBooking(ctx context.Context, p models.Principal, in BookingInput) (*models.Booking, error) {
	if err := rbac.Require(p, rbac.BookWellness); err != nil {
		return nil, err
	}
	date := strings.TrimSpace(in.BookingDate)
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return nil, apperr.Validation("booking_date must be a YYYY-MM-DD date")
	}
	clock := strings.TrimSpace(in.BookingTime)
	if _, err := time.Parse("15:04", clock); err != nil {
		return nil, apperr.Validation("booking_time must be HH:MM")
	}

	emp, err := s.Employees.EmployeeByUserID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("employee profile not found")
		}
		return nil, err
	}
	partner, err := s.Partners.PartnerByID(ctx, strings.TrimSpace(in.PartnerID))
	if err != nil {
		return nil, err
	}

	b := &models.Booking{
		ID:          uuid.NewString(),
		EmployeeID:  emp.ID,
		PartnerID:   partner.ID,
		ServiceType: partner.ServiceType,
		BookingDate: date,
		BookingTime: clock,
		Status:      models.BookingScheduled,
		CreatedAt:   s.Now(),
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		b.Notes = &notes
	}
	if err := s.Bookings.CreateBooking(ctx, b); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.Events, s.Logger, events.New(events.BookingCreated, emp.CompanyID, b.ID, p.UserID, b))
	return b, nil
}

// ListBookings returns the caller's own bookings, or none without an employee profile.
func (s *Service) ListBookings(ctx context.Context, p models.Principal) ([]models.Booking, error) {
	emp, err := s.Employees.EmployeeByUserID(ctx, p.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return []models.Booking{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.Bookings.ListBookings(ctx, emp.ID)
}

package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jaswanth12321/carequo-insure-tech/internal/claims"
	"github.com/jaswanth12321/carequo-insure-tech/internal/directory"
	"github.com/jaswanth12321/carequo-insure-tech/internal/documents"
	"github.com/jaswanth12321/carequo-insure-tech/internal/ledger"
	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
)

type RegisterRequest struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Role      string  `json:"role"`
	CompanyID *string `json:"company_id,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code,omitempty"`
}

type AuthResponse struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	User        models.Principal `json:"user"`
}

// =========================
// AUTH
// =========================

func (c *Client) auth(ctx context.Context, path string, in any) (*AuthResponse, error) {
	raw, err := c.send(ctx, http.MethodPost, path, in)
	if err != nil {
		return nil, err
	}
	var out AuthResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("decode response: missing access_token")
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, in RegisterRequest) (*AuthResponse, error) {
	return c.auth(ctx, "/auth/register", in)
}

func (c *Client) Login(ctx context.Context, in LoginRequest) (*AuthResponse, error) {
	return c.auth(ctx, "/auth/login", in)
}

func (c *Client) Me(ctx context.Context) (models.Principal, error) {
	var p models.Principal
	err := c.call(ctx, http.MethodGet, "/auth/me", nil, &p)
	return p, err
}

// CurrentUser resolves token without binding the client to it.
func (c *Client) CurrentUser(ctx context.Context, token string) (models.Principal, error) {
	return c.As(StaticToken(token)).Me(ctx)
}

// =========================
// DIRECTORY
// =========================

func (c *Client) ListCompanies(ctx context.Context) ([]models.Company, error) {
	var out []models.Company
	err := c.call(ctx, http.MethodGet, "/companies", nil, &out)
	return out, err
}

func (c *Client) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	var out []models.Employee
	err := c.call(ctx, http.MethodGet, "/employees", nil, &out)
	return out, err
}

func (c *Client) CreateEmployee(ctx context.Context, in directory.EmployeeInput) (*models.Employee, error) {
	var out models.Employee
	if err := c.call(ctx, http.MethodPost, "/employees", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteEmployee(ctx context.Context, id string) error {
	_, err := c.send(ctx, http.MethodDelete, "/employees/"+url.PathEscape(id), nil)
	return err
}

// =========================
// CLAIMS
// =========================

func (c *Client) ListClaims(ctx context.Context, status string) ([]models.Claim, error) {
	path := "/claims"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var out []models.Claim
	err := c.call(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) GetClaim(ctx context.Context, id string) (*models.Claim, error) {
	var out models.Claim
	if err := c.call(ctx, http.MethodGet, "/claims/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitClaim(ctx context.Context, in claims.SubmitInput) (*models.Claim, error) {
	var out models.Claim
	if err := c.call(ctx, http.MethodPost, "/claims", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReviewClaim(ctx context.Context, id string, in claims.ReviewInput) (*models.Claim, error) {
	var out models.Claim
	if err := c.call(ctx, http.MethodPut, "/claims/"+url.PathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PresignDocument(ctx context.Context, in documents.PresignInput) (*documents.Upload, error) {
	var out documents.Upload
	if err := c.call(ctx, http.MethodPost, "/claims/documents/presign", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =========================
// FINANCIALS
// =========================

func (c *Client) ListTransactions(ctx context.Context) ([]models.FinancialTransaction, error) {
	var out []models.FinancialTransaction
	err := c.call(ctx, http.MethodGet, "/financials", nil, &out)
	return out, err
}

func (c *Client) RecordTransaction(ctx context.Context, in ledger.TransactionInput) (*models.FinancialTransaction, error) {
	var out models.FinancialTransaction
	if err := c.call(ctx, http.MethodPost, "/financials", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stats(ctx context.Context) (models.DashboardStats, error) {
	var out models.DashboardStats
	err := c.call(ctx, http.MethodGet, "/dashboard/stats", nil, &out)
	return out, err
}

// =========================
// WELLNESS
// =========================

func (c *Client) ListPartners(ctx context.Context) ([]models.WellnessPartner, error) {
	var out []models.WellnessPartner
	err := c.call(ctx, http.MethodGet, "/wellness-partners", nil, &out)
	return out, err
}

func (c *Client) CreatePartner(ctx context.Context, in directory.PartnerInput) (*models.WellnessPartner, error) {
	var out models.WellnessPartner
	if err := c.call(ctx, http.MethodPost, "/wellness-partners", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListBookings(ctx context.Context) ([]models.Booking, error) {
	var out []models.Booking
	err := c.call(ctx, http.MethodGet, "/bookings", nil, &out)
	return out, err
}

func (c *Client) CreateBooking(ctx context.Context, in directory.BookingInput) (*models.Booking, error) {
	var out models.Booking
	if err := c.call(ctx, http.MethodPost, "/bookings", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

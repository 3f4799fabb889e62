// Package auth registers and authenticates users and issues their bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
	"github.com/jaswanth12321/carequo-insure-tech/internal/repository"
	"github.com/jaswanth12321/carequo-insure-tech/internal/utils"
)

type RegisterInput struct {
	Name      string  `json:"name" binding:"required"`
	Email     string  `json:"email" binding:"required"`
	Password  string  `json:"password" binding:"required"`
	Role      string  `json:"role" binding:"required"`
	CompanyID *string `json:"company_id"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	// TOTPCode is only required once the account has enabled TOTP.
	TOTPCode string `json:"totp_code"`
}

type Result struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	User        models.Principal `json:"user"`
}

type Service struct {
	Users     repository.Users
	Companies repository.Companies
	Employees repository.Employees
	Tokens    *TokenIssuer
	Logger    *zap.Logger
	Now       func() time.Time
}

func NewService(store repository.Store, tokens *TokenIssuer, logger *zap.Logger) *Service {
	return &Service{
		Users:     store.Users,
		Companies: store.Companies,
		Employees: store.Employees,
		Tokens:    tokens,
		Logger:    logger,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// =========================
// REGISTER
// =========================

// Register creates the user and, for employees attached to a company, the default
// employee profile in the same write so they can file claims straight away.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Result, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidatePasswordStrong(in.Password); err != nil {
		return nil, err
	}

	var companyID *string
	if in.CompanyID != nil && strings.TrimSpace(*in.CompanyID) != "" {
		id := strings.TrimSpace(*in.CompanyID)
		if _, err := s.Companies.CompanyByID(ctx, id); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.Validation("unknown company %q", id)
			}
			return nil, err
		}
		companyID = &id
	}

	if _, err := s.Users.UserByEmail(ctx, email); err == nil {
		return nil, apperr.Validation("Email already registered")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Role:         role,
		CompanyID:    companyID,
		PasswordHash: hash,
		CreatedAt:    s.Now(),
	}
	if role == models.RoleEmployee && companyID != nil {
		err = s.Users.CreateUserWithProfile(ctx, u, s.defaultProfile(u))
	} else {
		err = s.Users.CreateUser(ctx, u)
	}
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.Validation("Email already registered")
		}
		return nil, err
	}

	s.Logger.Info("user registered", zap.String("user_id", u.ID), zap.String("role", string(role)))
	return s.result(u)
}

func (s *Service) defaultProfile(u *models.User) *models.Employee {
	now := s.Now()
	return &models.Employee{
		ID:               uuid.NewString(),
		UserID:           u.ID,
		CompanyID:        *u.CompanyID,
		EmployeeID:       "EMP-" + strings.ToUpper(uuid.NewString()[:8]),
		Department:       "General",
		Designation:      "Employee",
		DateOfJoining:    now.Format(time.DateOnly),
		DateOfBirth:      "1990-01-01",
		Phone:            "0000000000",
		EmergencyContact: "0000000000",
		Status:           models.EmployeeActive,
		CreatedAt:        now,
	}
}

// =========================
// LOGIN
// =========================

func (s *Service) Login(ctx context.Context, in LoginInput) (*Result, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	u, err := s.Users.UserByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Auth("Invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(u.PasswordHash, in.Password) {
		return nil, apperr.Auth("Invalid email or password")
	}

	if u.TOTPEnabled {
		code := strings.TrimSpace(in.TOTPCode)
		if code == "" {
			return nil, apperr.Auth("totp code required")
		}
		if !utils.VerifyTOTP(code, u.TOTPSecret, s.Now()) {
			return nil, apperr.Auth("invalid totp code")
		}
	}
	return s.result(u)
}

// =========================
// CURRENT USER
// =========================

// Authenticate resolves a bearer token to the principal it was issued for.
// A deleted user invalidates their outstanding tokens.
func (s *Service) Authenticate(ctx context.Context, token string) (models.Principal, error) {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return models.Principal{}, err
	}
	u, err := s.Users.UserByID(ctx, claims.Subject)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.Principal{}, apperr.Auth("User not found")
	}
	if err != nil {
		return models.Principal{}, err
	}
	return u.Principal(), nil
}

func (s *Service) Me(ctx context.Context, p models.Principal) (*models.User, error) {
	u, err := s.Users.UserByID(ctx, p.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Auth("User not found")
	}
	return u, err
}

// =========================
// TOTP
// =========================

// SetupTOTP stores a fresh secret; it only takes effect after VerifyTOTP.
func (s *Service) SetupTOTP(ctx context.Context, p models.Principal) (string, error) {
	u, err := s.Me(ctx, p)
	if err != nil {
		return "", err
	}
	if u.TOTPEnabled {
		return "", apperr.Conflict("totp already enabled")
	}
	secret, url, err := utils.GenerateTOTPSecret(u.Email)
	if err != nil {
		return "", fmt.Errorf("generate totp secret: %w", err)
	}
	u.TOTPSecret = secret
	if err := s.Users.UpdateUser(ctx, u); err != nil {
		return "", err
	}
	return url, nil
}

func (s *Service) VerifyTOTP(ctx context.Context, p models.Principal, code string) error {
	u, err := s.Me(ctx, p)
	if err != nil {
		return err
	}
	if u.TOTPSecret == "" {
		return apperr.Validation("totp not initialized")
	}
	if !utils.VerifyTOTP(strings.TrimSpace(code), u.TOTPSecret, s.Now()) {
		return apperr.Validation("invalid totp code")
	}
	u.TOTPEnabled = true
	return s.Users.UpdateUser(ctx, u)
}

func (s *Service) result(u *models.User) (*Result, error) {
	token, err := s.Tokens.Issue(u)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Result{AccessToken: token, TokenType: "bearer", User: u.Principal()}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.Validation("invalid email %q", raw)
	}
	return email, nil
}

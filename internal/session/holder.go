// Package session owns the portal's identity: it restores, establishes and ends
// sessions and hands out immutable Session values to everything downstream.
package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apiclient"
	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
)

const (
	loginFallback    = "Login failed"
	registerFallback = "Registration failed"
	logoutMessage    = "Logged out successfully"
)

// Session is a snapshot of who is signed in. It is never mutated; a change of
// identity produces a new value.
type Session struct {
	Principal   models.Principal
	AccessToken string
}

var Anonymous = Session{}

func (s Session) Authenticated() bool { return s.AccessToken != "" }

func (s Session) Role() models.Role { return s.Principal.Role }

// Token lets a Session act as the API client's token source.
func (s Session) Token() string { return s.AccessToken }

// Backend is the slice of the API the holder needs.
type Backend interface {
	Login(ctx context.Context, in apiclient.LoginRequest) (*apiclient.AuthResponse, error)
	Register(ctx context.Context, in apiclient.RegisterRequest) (*apiclient.AuthResponse, error)
	CurrentUser(ctx context.Context, token string) (models.Principal, error)
}

// Notifier receives transient user-facing messages.
type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

type Holder struct {
	store    Store
	backend  Backend
	notifier Notifier
	logger   *zap.Logger
}

func NewHolder(store Store, backend Backend, notifier Notifier, logger *zap.Logger) *Holder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Holder{store: store, backend: backend, notifier: notifier, logger: logger}
}

// Restore validates the persisted token against the backend. Any failure is
// treated as never having been logged in: the store is cleared and the error
// is only logged.
func (h *Holder) Restore(ctx context.Context) (Session, error) {
	token, _, err := h.store.Load()
	if err != nil {
		h.logger.Debug("unreadable session, discarding", zap.Error(err))
		return Anonymous, h.store.Clear()
	}
	if token == "" {
		return Anonymous, nil
	}

	p, err := h.backend.CurrentUser(ctx, token)
	if err != nil {
		h.logger.Debug("session restore failed", zap.Error(err))
		return Anonymous, h.store.Clear()
	}
	if err := h.store.Save(token, p.Role); err != nil {
		return Anonymous, err
	}
	return Session{Principal: p, AccessToken: token}, nil
}

// Peek returns the persisted token and role without asking the backend.
// Only the guard should rely on it.
func (h *Holder) Peek() Session {
	token, role, err := h.store.Load()
	if err != nil || token == "" {
		return Anonymous
	}
	return Session{Principal: models.Principal{Role: role}, AccessToken: token}
}

func (h *Holder) Login(ctx context.Context, email, password, totpCode string) (Session, error) {
	res, err := h.backend.Login(ctx, apiclient.LoginRequest{Email: email, Password: password, TOTPCode: totpCode})
	if err != nil {
		return Anonymous, surfaced(err, loginFallback)
	}
	return h.establish(res)
}

func (h *Holder) Register(ctx context.Context, in apiclient.RegisterRequest) (Session, error) {
	res, err := h.backend.Register(ctx, in)
	if err != nil {
		return Anonymous, surfaced(err, registerFallback)
	}
	return h.establish(res)
}

func (h *Holder) establish(res *apiclient.AuthResponse) (Session, error) {
	if err := h.store.Save(res.AccessToken, res.User.Role); err != nil {
		return Anonymous, fmt.Errorf("persist session: %w", err)
	}
	return Session{Principal: res.User, AccessToken: res.AccessToken}, nil
}

// Logout clears the store and notifies exactly once per call.
func (h *Holder) Logout() (Session, error) {
	err := h.store.Clear()
	if h.notifier != nil {
		h.notifier.Success(logoutMessage)
	}
	return Anonymous, err
}

// Expire drops a session the backend no longer accepts. It is silent.
func (h *Holder) Expire() Session {
	if err := h.store.Clear(); err != nil {
		h.logger.Debug("clear expired session", zap.Error(err))
	}
	return Anonymous
}

// surfaced keeps the backend's message when it sent one and otherwise
// substitutes fallback, without losing the error kind.
func surfaced(err error, fallback string) error {
	var e *apperr.Error
	if errors.As(err, &e) && e.Msg != "" {
		return err
	}
	return &apperr.Error{Kind: err, Msg: fallback}
}

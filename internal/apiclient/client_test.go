package apiclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apiclient"
	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
	"github.com/jaswanth12321/carequo-insure-tech/internal/auth"
	"github.com/jaswanth12321/carequo-insure-tech/internal/cache"
	"github.com/jaswanth12321/carequo-insure-tech/internal/claims"
	"github.com/jaswanth12321/carequo-insure-tech/internal/directory"
	"github.com/jaswanth12321/carequo-insure-tech/internal/documents"
	"github.com/jaswanth12321/carequo-insure-tech/internal/events"
	"github.com/jaswanth12321/carequo-insure-tech/internal/ledger"
	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
	"github.com/jaswanth12321/carequo-insure-tech/internal/routes"
	"github.com/jaswanth12321/carequo-insure-tech/internal/storage/memstore"
)

func init() { gin.SetMode(gin.TestMode) }

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	log := zap.NewNop()
	store := memstore.New().Repositories()
	pub := &events.Recorder{}
	ledgerSvc := ledger.NewService(store, cache.Nop{}, pub, log)
	r := routes.NewRouter(routes.Deps{
		Auth:      auth.NewService(store, auth.NewTokenIssuer("test-secret", time.Hour), log),
		Claims:    claims.NewManager(store, ledgerSvc, pub, log),
		Ledger:    ledgerSvc,
		Directory: directory.NewService(store, ledgerSvc, pub, log),
		Documents: &documents.Service{},
		Logger:    log,
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestBearerInjection(t *testing.T) {
	seen := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","data":[]}`))
	}))
	defer srv.Close()

	anon := apiclient.New(srv.URL, time.Second, nil)
	ctx := context.Background()

	if _, err := anon.ListPartners(ctx); err != nil {
		t.Fatal(err)
	}
	if got := <-seen; got != "" {
		t.Errorf("anonymous Authorization = %q, want none", got)
	}

	bound := anon.As(apiclient.StaticToken("tok-123"))
	if _, err := bound.ListClaims(ctx, "all"); err != nil {
		t.Fatal(err)
	}
	if _, err := bound.ListBookings(ctx); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if got := <-seen; got != "Bearer tok-123" {
			t.Errorf("bound Authorization = %q", got)
		}
	}

	if _, err := anon.ListPartners(ctx); err != nil {
		t.Fatal(err)
	}
	if got := <-seen; got != "" {
		t.Errorf("As must not mutate the parent client, got %q", got)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
		detail string
	}{
		{"validation", 400, `{"error":"validation_error","detail":"amount must be positive"}`, apperr.ErrValidation, "amount must be positive"},
		{"auth", 401, `{"error":"unauthorized","detail":"Token has expired"}`, apperr.ErrAuth, "Token has expired"},
		{"permission", 403, `{"error":"permission_denied","detail":"Not authorized"}`, apperr.ErrPermission, "Not authorized"},
		{"not found", 404, `{"error":"not_found","detail":"claim not found"}`, apperr.ErrNotFound, "claim not found"},
		{"invalid state", 409, `{"error":"invalid_state","detail":"claim is already approved"}`, apperr.ErrInvalidState, "claim is already approved"},
		{"conflict", 409, `{"error":"conflict","detail":"duplicate"}`, apperr.ErrConflict, "duplicate"},
		{"no body", 401, ``, apperr.ErrAuth, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := apiclient.New(srv.URL, time.Second, nil).Stats(context.Background())
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if tt.detail != "" && apperr.Detail(err) != tt.detail {
				t.Errorf("detail = %q, want %q", apperr.Detail(err), tt.detail)
			}
		})
	}
}

func TestTransportFailures(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()

	t.Run("client timeout", func(t *testing.T) {
		_, err := apiclient.New(slow.URL, 50*time.Millisecond, nil).Stats(context.Background())
		if !errors.Is(err, apperr.ErrTimeout) {
			t.Errorf("err = %v, want timeout", err)
		}
	})

	t.Run("context deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := apiclient.New(slow.URL, time.Minute, nil).Stats(ctx)
		if !errors.Is(err, apperr.ErrTimeout) {
			t.Errorf("err = %v, want timeout", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := apiclient.New(slow.URL, time.Minute, nil).Stats(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
		if errors.Is(err, apperr.ErrNetwork) {
			t.Errorf("cancellation reported as network error")
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		down := httptest.NewServer(http.NotFoundHandler())
		url := down.URL
		down.Close()
		_, err := apiclient.New(url, time.Second, nil).Stats(context.Background())
		if !errors.Is(err, apperr.ErrNetwork) {
			t.Errorf("err = %v, want network error", err)
		}
	})
}

func TestAgainstBackend(t *testing.T) {
	srv := newBackend(t)
	api := apiclient.New(srv.URL+"/api", 5*time.Second, zap.NewNop())
	ctx := context.Background()

	root, err := api.Register(ctx, apiclient.RegisterRequest{Name: "Root", Email: "root@carequo.test", Password: "TestPass123!", Role: "super_admin"})
	if err != nil {
		t.Fatal(err)
	}
	if root.TokenType != "bearer" || root.User.Role != models.RoleSuperAdmin {
		t.Fatalf("register = %+v", root)
	}

	companies, err := api.As(apiclient.StaticToken(root.AccessToken)).ListCompanies(ctx)
	if err != nil || len(companies) != 0 {
		t.Fatalf("companies = %v, %v", companies, err)
	}

	emp, err := api.Register(ctx, apiclient.RegisterRequest{Name: "Esha", Email: "esha@acme.test", Password: "TestPass123!", Role: "employee"})
	if err != nil {
		t.Fatal(err)
	}
	me, err := api.CurrentUser(ctx, emp.AccessToken)
	if err != nil || me.Email != "esha@acme.test" || me.Role != models.RoleEmployee {
		t.Fatalf("me = %+v, %v", me, err)
	}

	if _, err := api.Login(ctx, apiclient.LoginRequest{Email: "esha@acme.test", Password: "wrong-Pass1"}); !errors.Is(err, apperr.ErrAuth) {
		t.Errorf("bad login err = %v", err)
	}
	if _, err := api.Me(ctx); !errors.Is(err, apperr.ErrAuth) {
		t.Errorf("anonymous me err = %v", err)
	}

	empAPI := api.As(apiclient.StaticToken(emp.AccessToken))
	_, err = empAPI.SubmitClaim(ctx, claims.SubmitInput{ClaimType: models.ClaimMedical, Amount: decimal.NewFromInt(4500), Description: "X-ray"})
	// No company, so no profile was created at registration.
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("submit without profile err = %v", err)
	}
	if _, err := empAPI.Stats(ctx); !errors.Is(err, apperr.ErrPermission) {
		t.Errorf("employee stats err = %v", err)
	}
	if _, err := empAPI.PresignDocument(ctx, documents.PresignInput{Filename: "r.pdf"}); !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("presign err = %v", err)
	}
}

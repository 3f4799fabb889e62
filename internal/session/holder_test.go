package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apiclient"
	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
)

type fakeBackend struct {
	meCalls  int
	meErr    error
	me       models.Principal
	loginErr error
	auth     *apiclient.AuthResponse
}

func (f *fakeBackend) CurrentUser(_ context.Context, token string) (models.Principal, error) {
	f.meCalls++
	if f.meErr != nil {
		return models.Principal{}, f.meErr
	}
	return f.me, nil
}

func (f *fakeBackend) Login(context.Context, apiclient.LoginRequest) (*apiclient.AuthResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.auth, nil
}

func (f *fakeBackend) Register(context.Context, apiclient.RegisterRequest) (*apiclient.AuthResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.auth, nil
}

type countingNotifier struct{ success, failure []string }

func (n *countingNotifier) Success(msg string) { n.success = append(n.success, msg) }
func (n *countingNotifier) Failure(msg string) { n.failure = append(n.failure, msg) }

var hr = models.Principal{UserID: "u-1", Name: "Hari", Email: "hari@acme.test", Role: models.RoleHRManager, CompanyID: "co-1"}

func TestRestoreWithoutTokenSkipsBackend(t *testing.T) {
	be := &fakeBackend{}
	h := NewHolder(&MemoryStore{}, be, nil, nil)

	s, err := h.Restore(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if s.Authenticated() || be.meCalls != 0 {
		t.Errorf("session = %+v, backend calls = %d", s, be.meCalls)
	}
}

func TestRestore(t *testing.T) {
	tests := []struct {
		name     string
		meErr    error
		wantAuth bool
	}{
		{"valid token", nil, true},
		{"expired token", apperr.Auth("Token has expired"), false},
		{"network failure", apperr.New(apperr.ErrNetwork, "backend unreachable"), false},
		{"timeout", apperr.New(apperr.ErrTimeout, "request timed out"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MemoryStore{}
			_ = store.Save("tok", models.RoleEmployee)
			be := &fakeBackend{me: hr, meErr: tt.meErr}

			s, err := NewHolder(store, be, nil, nil).Restore(context.Background())
			if err != nil {
				t.Fatalf("restore must swallow backend errors, got %v", err)
			}
			if s.Authenticated() != tt.wantAuth {
				t.Fatalf("authenticated = %v, want %v", s.Authenticated(), tt.wantAuth)
			}
			token, role, _ := store.Load()
			if tt.wantAuth {
				if s.Principal != hr || s.Token() != "tok" {
					t.Errorf("session = %+v", s)
				}
				// the role is refreshed from the backend, not trusted from storage
				if token != "tok" || role != models.RoleHRManager {
					t.Errorf("store = %q %q", token, role)
				}
			} else if token != "" || role != "" {
				t.Errorf("store not cleared: %q %q", token, role)
			}
		})
	}
}

func TestLoginPersistsTokenAndRole(t *testing.T) {
	store := &MemoryStore{}
	be := &fakeBackend{auth: &apiclient.AuthResponse{AccessToken: "tok-9", TokenType: "bearer", User: hr}}
	h := NewHolder(store, be, nil, nil)

	s, err := h.Login(context.Background(), "hari@acme.test", "TestPass123!", "")
	if err != nil {
		t.Fatal(err)
	}
	if !s.Authenticated() || s.Role() != models.RoleHRManager || s.Principal.Name != "Hari" {
		t.Errorf("session = %+v", s)
	}
	if token, role, _ := store.Load(); token != "tok-9" || role != models.RoleHRManager {
		t.Errorf("store = %q %q", token, role)
	}
	if peek := h.Peek(); peek.Role() != models.RoleHRManager || !peek.Authenticated() {
		t.Errorf("peek = %+v", peek)
	}
}

func TestLoginFailureLeavesStoreUntouched(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantDetail string
		wantKind   error
	}{
		{"backend message", apperr.Auth("Invalid email or password"), "Invalid email or password", apperr.ErrAuth},
		{"empty detail", &apperr.Error{Kind: apperr.ErrAuth}, "Login failed", apperr.ErrAuth},
		{"untyped", fmt.Errorf("unexpected status 502"), "Login failed", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MemoryStore{}
			_ = store.Save("old", models.RoleEmployee)
			h := NewHolder(store, &fakeBackend{loginErr: tt.err}, nil, nil)

			s, err := h.Login(context.Background(), "x@acme.test", "nope", "")
			if err == nil || s.Authenticated() {
				t.Fatalf("login = %+v, %v", s, err)
			}
			if apperr.Detail(err) != tt.wantDetail {
				t.Errorf("detail = %q, want %q", apperr.Detail(err), tt.wantDetail)
			}
			if tt.wantKind != nil && !errors.Is(err, tt.wantKind) {
				t.Errorf("kind lost: %v", err)
			}
			if token, role, _ := store.Load(); token != "old" || role != models.RoleEmployee {
				t.Errorf("store mutated: %q %q", token, role)
			}
		})
	}
}

func TestRegisterFallbackMessage(t *testing.T) {
	h := NewHolder(&MemoryStore{}, &fakeBackend{loginErr: &apperr.Error{Kind: apperr.ErrValidation}}, nil, nil)
	_, err := h.Register(context.Background(), apiclient.RegisterRequest{Name: "X"})
	if apperr.Detail(err) != "Registration failed" || !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v", err)
	}
}

func TestLogoutNotifiesOncePerCall(t *testing.T) {
	store := &MemoryStore{}
	_ = store.Save("tok", models.RoleEmployee)
	n := &countingNotifier{}
	h := NewHolder(store, &fakeBackend{}, n, nil)

	s, err := h.Logout()
	if err != nil || s.Authenticated() {
		t.Fatalf("logout = %+v, %v", s, err)
	}
	if len(n.success) != 1 {
		t.Errorf("notifications = %v", n.success)
	}
	if token, role, _ := store.Load(); token != "" || role != "" {
		t.Errorf("store not cleared")
	}

	_, _ = h.Logout()
	if len(n.success) != 2 {
		t.Errorf("second logout notifications = %d, want 2", len(n.success))
	}
}

func TestExpireIsSilent(t *testing.T) {
	store := &MemoryStore{}
	_ = store.Save("tok", models.RoleEmployee)
	n := &countingNotifier{}
	h := NewHolder(store, &fakeBackend{}, n, nil)

	if s := h.Expire(); s.Authenticated() {
		t.Errorf("expire = %+v", s)
	}
	if len(n.success)+len(n.failure) != 0 {
		t.Errorf("expire notified: %v %v", n.success, n.failure)
	}
	if token, _, _ := store.Load(); token != "" {
		t.Errorf("token survived expire")
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	fs := NewFileStore(path)

	if token, role, err := fs.Load(); err != nil || token != "" || role != "" {
		t.Fatalf("empty load = %q %q %v", token, role, err)
	}
	if err := fs.Save("tok", models.RoleCompanyAdmin); err != nil {
		t.Fatal(err)
	}
	token, role, err := NewFileStore(path).Load()
	if err != nil || token != "tok" || role != models.RoleCompanyAdmin {
		t.Errorf("reload = %q %q %v", token, role, err)
	}
	if err := fs.Clear(); err != nil {
		t.Fatal(err)
	}
	if err := fs.Clear(); err != nil {
		t.Errorf("clearing twice: %v", err)
	}
	if token, _, _ := fs.Load(); token != "" {
		t.Errorf("token after clear = %q", token)
	}
}

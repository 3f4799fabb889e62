package claims

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
	"github.com/jaswanth12321/carequo-insure-tech/internal/events"
	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
	"github.com/jaswanth12321/carequo-insure-tech/internal/repository"
	"github.com/jaswanth12321/carequo-insure-tech/internal/storage/memstore"
)

type invalidations struct {
	mu        sync.Mutex
	companies []string
}

func (i *invalidations) InvalidateStats(_ context.Context, companyID string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.companies = append(i.companies, companyID)
}

var (
	employee   = models.Principal{UserID: "u-emp", Name: "Asha", Role: models.RoleEmployee, CompanyID: "co-1"}
	colleague  = models.Principal{UserID: "u-col", Name: "Ravi", Role: models.RoleEmployee, CompanyID: "co-1"}
	hrManager  = models.Principal{UserID: "u-hr", Role: models.RoleHRManager, CompanyID: "co-1"}
	otherHR    = models.Principal{UserID: "u-hr2", Role: models.RoleHRManager, CompanyID: "co-2"}
	superAdmin = models.Principal{UserID: "u-root", Role: models.RoleSuperAdmin}
)

type fixture struct {
	mgr   *Manager
	store *memstore.Store
	stats *invalidations
	rec   *events.Recorder
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	ctx := context.Background()
	for _, e := range []models.Employee{
		{ID: "emp-1", UserID: "u-emp", CompanyID: "co-1", EmployeeID: "EMP-1", Status: models.EmployeeActive},
		{ID: "emp-2", UserID: "u-col", CompanyID: "co-1", EmployeeID: "EMP-2", Status: models.EmployeeActive},
	} {
		e := e
		if err := store.CreateEmployee(ctx, &e); err != nil {
			t.Fatalf("seed employee: %v", err)
		}
	}

	f := &fixture{
		store: store,
		stats: &invalidations{},
		rec:   &events.Recorder{},
		clock: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	f.mgr = NewManager(store.Repositories(), f.stats, f.rec, zap.NewNop())
	f.mgr.Now = func() time.Time {
		f.clock = f.clock.Add(time.Minute)
		return f.clock
	}
	return f
}

func (f *fixture) submit(t *testing.T, p models.Principal, amount, desc string) *models.Claim {
	t.Helper()
	c, err := f.mgr.Submit(context.Background(), p, SubmitInput{
		ClaimType:   models.ClaimMedical,
		Amount:      decimal.RequireFromString(amount),
		Description: desc,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	return c
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name string
		in   SubmitInput
	}{
		{"zero amount", SubmitInput{ClaimType: models.ClaimMedical, Amount: decimal.Zero, Description: "X-ray"}},
		{"negative amount", SubmitInput{ClaimType: models.ClaimDental, Amount: decimal.NewFromInt(-20), Description: "filling"}},
		{"rounds to zero", SubmitInput{ClaimType: models.ClaimMedical, Amount: decimal.RequireFromString("0.004"), Description: "X-ray"}},
		{"sub cent", SubmitInput{ClaimType: models.ClaimWellness, Amount: decimal.RequireFromString("0.001"), Description: "yoga"}},
		{"blank description", SubmitInput{ClaimType: models.ClaimVision, Amount: decimal.NewFromInt(20), Description: "   "}},
		{"unknown type", SubmitInput{ClaimType: "cosmetic", Amount: decimal.NewFromInt(20), Description: "botox"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.mgr.Submit(context.Background(), employee, tt.in)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			all, _ := f.store.ListClaims(context.Background(), repository.ClaimFilter{Scope: repository.Scope{AllCompanies: true}})
			if len(all) != 0 {
				t.Errorf("expected no claim to be created, got %d", len(all))
			}
			if len(f.rec.Events()) != 0 {
				t.Errorf("expected no events, got %v", f.rec.Types())
			}
		})
	}
}

func TestSubmitWithoutEmployeeProfile(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.Submit(context.Background(), hrManager, SubmitInput{
		ClaimType: models.ClaimMedical, Amount: decimal.NewFromInt(10), Description: "flu",
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubmittedClaimHasNoReviewFields(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, employee, "120.50", "dental cleaning")

	if c.Status != models.ClaimSubmitted {
		t.Errorf("Status = %s", c.Status)
	}
	if c.ReviewDate != nil || c.ReviewerNotes != nil || c.ReviewedBy != nil {
		t.Errorf("review fields set on a fresh claim: %+v", c)
	}
	if c.EmployeeID != "emp-1" || c.CompanyID != "co-1" {
		t.Errorf("owner = %s/%s, want emp-1/co-1", c.EmployeeID, c.CompanyID)
	}
	if c.Documents == nil {
		t.Error("Documents should be an empty list, not nil")
	}
	if len(f.stats.companies) != 1 || f.stats.companies[0] != "co-1" {
		t.Errorf("stats invalidations = %v", f.stats.companies)
	}
}

func TestClaimScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	c := f.submit(t, employee, "4500", "X-ray")

	mine, err := f.mgr.List(ctx, employee, FilterAll)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 {
		t.Fatalf("expected exactly one claim, got %d", len(mine))
	}
	if mine[0].Status != models.ClaimSubmitted || !mine[0].Amount.Equal(decimal.NewFromInt(4500)) {
		t.Errorf("listed claim = %s %s", mine[0].Status, mine[0].Amount)
	}

	reviewed, err := f.mgr.Review(ctx, hrManager, c.ID, ReviewInput{
		Status: models.ClaimApproved, ReviewerNotes: "Verified with receipt",
	})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if reviewed.Status != models.ClaimApproved {
		t.Errorf("Status = %s", reviewed.Status)
	}
	if reviewed.ReviewDate == nil {
		t.Error("ReviewDate not set")
	}
	if reviewed.ReviewerNotes == nil || *reviewed.ReviewerNotes != "Verified with receipt" {
		t.Errorf("ReviewerNotes = %v", reviewed.ReviewerNotes)
	}
	if reviewed.ReviewedBy == nil || *reviewed.ReviewedBy != "u-hr" {
		t.Errorf("ReviewedBy = %v", reviewed.ReviewedBy)
	}

	_, err = f.mgr.Review(ctx, hrManager, c.ID, ReviewInput{Status: models.ClaimRejected, ReviewerNotes: "again"})
	if !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("second review: expected invalid state, got %v", err)
	}

	after, _ := f.store.ClaimByID(ctx, c.ID)
	if after.Status != models.ClaimApproved || *after.ReviewerNotes != "Verified with receipt" {
		t.Errorf("claim changed by rejected review: %s %q", after.Status, *after.ReviewerNotes)
	}

	want := []string{events.ClaimSubmitted, events.ClaimReviewed}
	got := f.rec.Types()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestReviewPermissions(t *testing.T) {
	tests := []struct {
		name string
		p    models.Principal
		want error
	}{
		{"employee", employee, apperr.ErrPermission},
		{"super admin", superAdmin, apperr.ErrPermission},
		{"hr of another company", otherHR, apperr.ErrNotFound},
		{"company admin", models.Principal{UserID: "u-ca", Role: models.RoleCompanyAdmin, CompanyID: "co-1"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			c := f.submit(t, employee, "75", "glasses")
			_, err := f.mgr.Review(context.Background(), tt.p, c.ID, ReviewInput{Status: models.ClaimRejected})
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestReviewTransitions(t *testing.T) {
	tests := []struct {
		name   string
		path   []models.ClaimStatus
		next   models.ClaimStatus
		wantOK bool
	}{
		{"submitted to under review", nil, models.ClaimUnderReview, true},
		{"submitted to approved", nil, models.ClaimApproved, true},
		{"under review to rejected", []models.ClaimStatus{models.ClaimUnderReview}, models.ClaimRejected, true},
		{"under review to under review", []models.ClaimStatus{models.ClaimUnderReview}, models.ClaimUnderReview, false},
		{"approved to rejected", []models.ClaimStatus{models.ClaimApproved}, models.ClaimRejected, false},
		{"rejected to approved", []models.ClaimStatus{models.ClaimRejected}, models.ClaimApproved, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			c := f.submit(t, employee, "10", "visit")
			for _, st := range tt.path {
				if _, err := f.mgr.Review(ctx, hrManager, c.ID, ReviewInput{Status: st}); err != nil {
					t.Fatalf("setup review to %s: %v", st, err)
				}
			}
			_, err := f.mgr.Review(ctx, hrManager, c.ID, ReviewInput{Status: tt.next})
			if tt.wantOK && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.wantOK && !errors.Is(err, apperr.ErrInvalidState) {
				t.Fatalf("expected invalid state, got %v", err)
			}
		})
	}
}

func TestReviewRejectsSubmittedAsDecision(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, employee, "10", "visit")
	_, err := f.mgr.Review(context.Background(), hrManager, c.ID, ReviewInput{Status: models.ClaimSubmitted})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConcurrentReviewsOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.submit(t, employee, "300", "physio")
	fixed := f.clock
	f.mgr.Now = func() time.Time { return fixed }

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			st := models.ClaimApproved
			if i%2 == 1 {
				st = models.ClaimRejected
			}
			_, err := f.mgr.Review(ctx, hrManager, c.ID, ReviewInput{Status: st})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, apperr.ErrInvalidState):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("expected exactly one successful review, got %d", wins)
	}
}

func TestListVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.submit(t, employee, "10", "one")
	f.submit(t, colleague, "20", "two")
	b := f.submit(t, employee, "30", "three")
	if _, err := f.mgr.Review(ctx, hrManager, a.ID, ReviewInput{Status: models.ClaimApproved}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		p      models.Principal
		filter string
		want   int
	}{
		{"employee sees own", employee, FilterAll, 2},
		{"employee filtered", employee, "approved", 1},
		{"colleague sees own", colleague, "", 1},
		{"hr sees company", hrManager, FilterAll, 3},
		{"hr pending", hrManager, "submitted", 2},
		{"other company", otherHR, FilterAll, 0},
		{"super admin sees all", superAdmin, FilterAll, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.mgr.List(ctx, tt.p, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d claims, want %d", len(got), tt.want)
			}
		})
	}

	first, _ := f.mgr.List(ctx, employee, FilterAll)
	second, _ := f.mgr.List(ctx, employee, FilterAll)
	if first[0].ID != a.ID || first[1].ID != b.ID {
		t.Errorf("unexpected order: %s, %s", first[0].ID, first[1].ID)
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("order changed between reads at %d", i)
		}
	}

	if _, err := f.mgr.List(ctx, employee, "paid"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for unknown filter, got %v", err)
	}
}

func TestGetHidesOtherEmployeesClaims(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.submit(t, colleague, "20", "two")

	if _, err := f.mgr.Get(ctx, employee, c.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if got, err := f.mgr.Get(ctx, colleague, c.ID); err != nil || got.ID != c.ID {
		t.Errorf("owner Get = %v, %v", got, err)
	}
	if _, err := f.mgr.Get(ctx, hrManager, c.ID); err != nil {
		t.Errorf("hr Get: %v", err)
	}
}

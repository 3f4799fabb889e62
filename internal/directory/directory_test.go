package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
	"github.com/jaswanth12321/carequo-insure-tech/internal/events"
	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
	"github.com/jaswanth12321/carequo-insure-tech/internal/storage/memstore"
)

type statsSpy struct{ companies []string }

func (s *statsSpy) InvalidateStats(_ context.Context, companyID string) {
	s.companies = append(s.companies, companyID)
}

var (
	hr       = models.Principal{UserID: "u-hr", Role: models.RoleHRManager, CompanyID: "co-1"}
	admin2   = models.Principal{UserID: "u-ca2", Role: models.RoleCompanyAdmin, CompanyID: "co-2"}
	employee = models.Principal{UserID: "u-emp", Role: models.RoleEmployee, CompanyID: "co-1"}
	root     = models.Principal{UserID: "u-root", Role: models.RoleSuperAdmin}
)

func newService(t *testing.T) (*Service, *statsSpy, *events.Recorder) {
	t.Helper()
	store := memstore.New()
	ctx := context.Background()
	for _, id := range []string{"u-hr", "u-emp", "u-new", "u-other"} {
		if err := store.CreateUser(ctx, &models.User{ID: id, Email: id + "@example.com", Role: models.RoleEmployee}); err != nil {
			t.Fatal(err)
		}
	}
	spy := &statsSpy{}
	rec := &events.Recorder{}
	svc := NewService(store.Repositories(), spy, rec, zap.NewNop())
	svc.Now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc, spy, rec
}

func TestEmployeeLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, spy, rec := newService(t)

	e, err := svc.CreateEmployee(ctx, hr, EmployeeInput{
		UserID: "u-emp", EmployeeID: "E-100", Department: "Finance", DateOfJoining: "2023-04-01", DateOfBirth: "1992-07-15",
	})
	if err != nil {
		t.Fatalf("CreateEmployee: %v", err)
	}
	if e.CompanyID != "co-1" || e.Status != models.EmployeeActive {
		t.Errorf("employee = %+v", e)
	}

	_, err = svc.CreateEmployee(ctx, hr, EmployeeInput{UserID: "u-new", EmployeeID: "E-100"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("duplicate employee_id: expected conflict, got %v", err)
	}

	updated, err := svc.UpdateEmployee(ctx, hr, e.ID, EmployeeInput{EmployeeID: "E-100", Department: "Audit", Status: models.EmployeeInactive})
	if err != nil {
		t.Fatalf("UpdateEmployee: %v", err)
	}
	if updated.Department != "Audit" || updated.Status != models.EmployeeInactive || updated.UserID != "u-emp" {
		t.Errorf("updated = %+v", updated)
	}

	if _, err := svc.UpdateEmployee(ctx, admin2, e.ID, EmployeeInput{EmployeeID: "X"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("other company update: expected not found, got %v", err)
	}

	if err := svc.DeleteEmployee(ctx, hr, e.ID); err != nil {
		t.Fatalf("DeleteEmployee: %v", err)
	}
	if err := svc.DeleteEmployee(ctx, hr, e.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete: expected not found, got %v", err)
	}

	if len(spy.companies) != 3 {
		t.Errorf("expected 3 stats invalidations, got %v", spy.companies)
	}
	want := []string{events.EmployeeCreated, events.EmployeeUpdated, events.EmployeeDeleted}
	got := rec.Types()
	if len(got) != len(want) {
		t.Fatalf("events = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCreateEmployeeValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	tests := []struct {
		name string
		p    models.Principal
		in   EmployeeInput
		want error
	}{
		{"employee role", employee, EmployeeInput{UserID: "u-new", EmployeeID: "E-1"}, apperr.ErrPermission},
		{"super admin", root, EmployeeInput{UserID: "u-new", EmployeeID: "E-1"}, apperr.ErrPermission},
		{"missing user", hr, EmployeeInput{UserID: "ghost", EmployeeID: "E-1"}, apperr.ErrValidation},
		{"blank employee id", hr, EmployeeInput{UserID: "u-new", EmployeeID: " "}, apperr.ErrValidation},
		{"bad date", hr, EmployeeInput{UserID: "u-new", EmployeeID: "E-1", DateOfBirth: "15/07/1992"}, apperr.ErrValidation},
		{"bad status", hr, EmployeeInput{UserID: "u-new", EmployeeID: "E-1", Status: "retired"}, apperr.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateEmployee(ctx, tt.p, tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGetEmployeeVisibility(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	own, _ := svc.CreateEmployee(ctx, hr, EmployeeInput{UserID: "u-emp", EmployeeID: "E-1"})
	other, _ := svc.CreateEmployee(ctx, hr, EmployeeInput{UserID: "u-other", EmployeeID: "E-2"})

	if _, err := svc.GetEmployee(ctx, employee, own.ID); err != nil {
		t.Errorf("own profile: %v", err)
	}
	if _, err := svc.GetEmployee(ctx, employee, other.ID); !errors.Is(err, apperr.ErrPermission) {
		t.Errorf("colleague profile: expected permission error, got %v", err)
	}
	if _, err := svc.GetEmployee(ctx, admin2, own.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("other company: expected not found, got %v", err)
	}
	if _, err := svc.GetEmployee(ctx, root, own.ID); err != nil {
		t.Errorf("super admin: %v", err)
	}

	list, _ := svc.ListEmployees(ctx, admin2)
	if len(list) != 0 {
		t.Errorf("other company sees %d employees", len(list))
	}
	list, _ = svc.ListEmployees(ctx, employee)
	if len(list) != 2 {
		t.Errorf("company roster = %d, want 2", len(list))
	}
}

func TestCompanies(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	if _, err := svc.CreateCompany(ctx, hr, CompanyInput{Name: "Acme"}); !errors.Is(err, apperr.ErrPermission) {
		t.Errorf("expected permission error, got %v", err)
	}
	if _, err := svc.CreateCompany(ctx, root, CompanyInput{Name: "Acme", PlanType: "platinum"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	c, err := svc.CreateCompany(ctx, root, CompanyInput{Name: " Acme ", Industry: "Retail"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "Acme" || c.PlanType != models.PlanBasic {
		t.Errorf("company = %+v", c)
	}

	member := models.Principal{UserID: "x", Role: models.RoleCompanyAdmin, CompanyID: c.ID}
	if got, err := svc.GetCompany(ctx, member, c.ID); err != nil || got.ID != c.ID {
		t.Errorf("member GetCompany = %v, %v", got, err)
	}
	if _, err := svc.GetCompany(ctx, admin2, c.ID); !errors.Is(err, apperr.ErrPermission) {
		t.Errorf("outsider: expected permission error, got %v", err)
	}
	all, _ := svc.ListCompanies(ctx, root)
	mine, _ := svc.ListCompanies(ctx, admin2)
	if len(all) != 1 || len(mine) != 0 {
		t.Errorf("all = %d, mine = %d", len(all), len(mine))
	}
}

func TestPartnersAndBookings(t *testing.T) {
	ctx := context.Background()
	svc, _, rec := newService(t)

	if _, err := svc.CreatePartner(ctx, hr, PartnerInput{Name: "Zen", ServiceType: models.ServiceMentalHealth}); !errors.Is(err, apperr.ErrPermission) {
		t.Errorf("hr create partner: expected permission error, got %v", err)
	}
	if _, err := svc.CreatePartner(ctx, root, PartnerInput{Name: "Zen", ServiceType: "spa"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("bad service type: expected validation error, got %v", err)
	}
	partner, err := svc.CreatePartner(ctx, root, PartnerInput{
		Name: "Zen Minds", ServiceType: models.ServiceMentalHealth, ContactEmail: "Care@Zen.example", Availability: "Mon-Fri", Pricing: "Free",
	})
	if err != nil {
		t.Fatal(err)
	}

	in := BookingInput{PartnerID: partner.ID, ServiceType: models.ServiceGym, BookingDate: "2024-02-10", BookingTime: "09:30", Notes: "first session"}
	if _, err := svc.CreateBooking(ctx, employee, in); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("no profile: expected not found, got %v", err)
	}
	if list, err := svc.ListBookings(ctx, employee); err != nil || len(list) != 0 {
		t.Errorf("no profile list = %v, %v", list, err)
	}

	if _, err := svc.CreateEmployee(ctx, hr, EmployeeInput{UserID: "u-emp", EmployeeID: "E-1"}); err != nil {
		t.Fatal(err)
	}
	b, err := svc.CreateBooking(ctx, employee, in)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if b.ServiceType != models.ServiceMentalHealth {
		t.Errorf("ServiceType = %s, want copied from partner", b.ServiceType)
	}
	if b.Status != models.BookingScheduled || b.Notes == nil || *b.Notes != "first session" {
		t.Errorf("booking = %+v", b)
	}

	bad := in
	bad.BookingTime = "9.30am"
	if _, err := svc.CreateBooking(ctx, employee, bad); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("bad time: expected validation error, got %v", err)
	}
	bad = in
	bad.PartnerID = "missing"
	if _, err := svc.CreateBooking(ctx, employee, bad); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing partner: expected not found, got %v", err)
	}

	list, err := svc.ListBookings(ctx, employee)
	if err != nil || len(list) != 1 {
		t.Errorf("ListBookings = %v, %v", list, err)
	}
	if types := rec.Types(); types[len(types)-1] != events.BookingCreated {
		t.Errorf("last event = %v", types)
	}
}

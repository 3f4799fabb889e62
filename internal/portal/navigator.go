// Package portal loads the data behind each portal view and runs the user's
// actions, always through the session it was handed.
package portal

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
	"github.com/jaswanth12321/carequo-insure-tech/internal/claims"
	"github.com/jaswanth12321/carequo-insure-tech/internal/directory"
	"github.com/jaswanth12321/carequo-insure-tech/internal/guard"
	"github.com/jaswanth12321/carequo-insure-tech/internal/ledger"
	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
	"github.com/jaswanth12321/carequo-insure-tech/internal/session"
)

// ErrStale reports a load that finished after the user had already moved on.
var ErrStale = errors.New("result discarded: view changed")

// API is the part of the REST client the views use. *apiclient.Client satisfies it.
type API interface {
	Stats(ctx context.Context) (models.DashboardStats, error)
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	CreateEmployee(ctx context.Context, in directory.EmployeeInput) (*models.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
	ListClaims(ctx context.Context, status string) ([]models.Claim, error)
	SubmitClaim(ctx context.Context, in claims.SubmitInput) (*models.Claim, error)
	ReviewClaim(ctx context.Context, id string, in claims.ReviewInput) (*models.Claim, error)
	ListTransactions(ctx context.Context) ([]models.FinancialTransaction, error)
	RecordTransaction(ctx context.Context, in ledger.TransactionInput) (*models.FinancialTransaction, error)
	ListPartners(ctx context.Context) ([]models.WellnessPartner, error)
	ListBookings(ctx context.Context) ([]models.Booking, error)
	CreateBooking(ctx context.Context, in directory.BookingInput) (*models.Booking, error)
}

// Expirer drops a session the backend rejected.
type Expirer interface {
	Expire() session.Session
}

type Navigator struct {
	api      API
	expirer  Expirer
	notifier session.Notifier
	logger   *zap.Logger

	mu          sync.Mutex
	sess        session.Session
	gen         uint64
	cancel      context.CancelFunc
	current     Page
	claimFilter string
}

func NewNavigator(sess session.Session, api API, expirer Expirer, notifier session.Notifier, logger *zap.Logger) *Navigator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Navigator{
		api:         api,
		expirer:     expirer,
		notifier:    notifier,
		logger:      logger,
		sess:        sess,
		current:     Page{View: guard.Landing},
		claimFilter: claims.FilterAll,
	}
}

func (n *Navigator) Session() session.Session {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sess
}

// Current returns the last page that was applied.
func (n *Navigator) Current() Page {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Navigate enters v, redirecting when the guard says so. Any load still in
// flight for the previous view is cancelled and its result dropped.
func (n *Navigator) Navigate(ctx context.Context, v guard.View) (Page, error) {
	n.mu.Lock()
	sess := n.sess
	filter := n.claimFilter
	n.mu.Unlock()

	if d := guard.Enter(v, sess); !d.Allow {
		n.logger.Debug("navigation redirected", zap.String("from", string(v)), zap.String("to", string(d.Target)))
		v = d.Target
	}

	n.mu.Lock()
	n.gen++
	gen := n.gen
	if n.cancel != nil {
		n.cancel()
	}
	lctx, cancel := context.WithCancel(ctx)
	n.cancel = cancel
	n.mu.Unlock()

	page, err := n.load(lctx, v, filter)
	page.Generation = gen

	if !n.commit(gen, page, err) {
		return Page{}, ErrStale
	}
	if err != nil {
		return n.failed(ctx, err)
	}
	return page, nil
}

// commit applies a successful page if gen is still the latest navigation. The
// check and the write share one critical section.
func (n *Navigator) commit(gen uint64, page Page, err error) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if gen != n.gen {
		return false
	}
	if err == nil {
		n.current = page
	}
	return true
}

// FilterClaims changes the claims filter and reloads the claims view.
func (n *Navigator) FilterClaims(ctx context.Context, status string) (Page, error) {
	if status == "" {
		status = claims.FilterAll
	}
	n.mu.Lock()
	n.claimFilter = status
	n.mu.Unlock()
	return n.Navigate(ctx, guard.Claims)
}

// Refresh reloads the current view. All refreshes are caller initiated.
func (n *Navigator) Refresh(ctx context.Context) (Page, error) {
	return n.Navigate(ctx, n.Current().View)
}

// failed applies the error handling rules shared by loads and actions.
func (n *Navigator) failed(ctx context.Context, err error) (Page, error) {
	switch {
	case errors.Is(err, apperr.ErrAuth):
		// an expired session just sends the user back to the login screen
		n.expire()
		page := Page{View: guard.Landing}
		n.mu.Lock()
		n.gen++
		page.Generation = n.gen
		n.current = page
		n.mu.Unlock()
		return page, nil
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		return Page{}, ErrStale
	case errors.Is(err, apperr.ErrPermission):
		n.logger.Error("request rejected by role check", zap.Error(err))
	}
	n.notifyFailure(err)
	return Page{}, err
}

func (n *Navigator) expire() {
	sess := session.Anonymous
	if n.expirer != nil {
		sess = n.expirer.Expire()
	}
	n.mu.Lock()
	n.sess = sess
	n.mu.Unlock()
}

func (n *Navigator) notifyFailure(err error) {
	if n.notifier != nil {
		n.notifier.Failure(apperr.Detail(err))
	}
}

func (n *Navigator) notifySuccess(msg string) {
	if n.notifier != nil {
		n.notifier.Success(msg)
	}
}

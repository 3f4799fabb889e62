package portal

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
	"github.com/jaswanth12321/carequo-insure-tech/internal/claims"
	"github.com/jaswanth12321/carequo-insure-tech/internal/directory"
	"github.com/jaswanth12321/carequo-insure-tech/internal/ledger"
)

// =========================
// ACTIONS
// Each action is one round trip followed by a reload of the current view.
// Failures are not retried; the user triggers the action again.
// =========================

func (n *Navigator) SubmitClaim(ctx context.Context, in claims.SubmitInput) (Page, error) {
	_, err := n.api.SubmitClaim(ctx, in)
	return n.after(ctx, err, "Claim submitted successfully")
}

// ReviewClaim records a decision. If someone else decided first the view is
// reloaded so the user sees the authoritative status.
func (n *Navigator) ReviewClaim(ctx context.Context, id string, in claims.ReviewInput) (Page, error) {
	_, err := n.api.ReviewClaim(ctx, id, in)
	if errors.Is(err, apperr.ErrInvalidState) {
		n.notifyFailure(err)
		if _, rerr := n.Refresh(ctx); rerr != nil {
			n.logger.Debug("refetch after stale review failed", zap.Error(rerr))
		}
		return n.Current(), err
	}
	return n.after(ctx, err, "Claim updated successfully")
}

func (n *Navigator) RecordTransaction(ctx context.Context, in ledger.TransactionInput) (Page, error) {
	_, err := n.api.RecordTransaction(ctx, in)
	return n.after(ctx, err, "Transaction recorded successfully")
}

func (n *Navigator) BookPartner(ctx context.Context, in directory.BookingInput) (Page, error) {
	_, err := n.api.CreateBooking(ctx, in)
	return n.after(ctx, err, "Booking created successfully")
}

func (n *Navigator) CreateEmployee(ctx context.Context, in directory.EmployeeInput) (Page, error) {
	_, err := n.api.CreateEmployee(ctx, in)
	return n.after(ctx, err, "Employee created successfully")
}

func (n *Navigator) DeleteEmployee(ctx context.Context, id string) (Page, error) {
	err := n.api.DeleteEmployee(ctx, id)
	return n.after(ctx, err, "Employee deleted successfully")
}

func (n *Navigator) after(ctx context.Context, err error, success string) (Page, error) {
	if err != nil {
		return n.failed(ctx, err)
	}
	n.notifySuccess(success)
	return n.Refresh(ctx)
}

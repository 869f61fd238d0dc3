// Package checkout drives the payment side of the portal: reloading
// the authoritative registration, reconciling coupons, and walking the
// gateway handshake as an explicit state machine.
package checkout

import (
	"context"
	"errors"
	"strings"

	"github.com/aoacon/portal-api/internal/models"
	"github.com/aoacon/portal-api/internal/portal"
	"github.com/aoacon/portal-api/internal/pricing"
)

var (
	// ErrEmptyCoupon rejects blank coupon input before any network call.
	ErrEmptyCoupon = errors.New("enter a coupon code")
	// ErrNoRegistration means the attendee has not registered yet; the
	// caller should send them to the registration flow.
	ErrNoRegistration = errors.New("registration not found, complete registration first")
)

// Reconciler holds the checkout page's view of the registration. The
// server's persisted amounts are trusted as-is; nothing here recomputes
// GST or fees.
type Reconciler struct {
	client       *portal.Client
	registration *models.Registration
}

func NewReconciler(client *portal.Client) *Reconciler {
	return &Reconciler{client: client}
}

// LoadRegistration fetches the authoritative record. Failures are not
// retried; a missing registration maps to ErrNoRegistration.
func (r *Reconciler) LoadRegistration(ctx context.Context) error {
	registration, err := r.client.MyRegistration(ctx)
	if err != nil {
		var apiErr *portal.APIError
		if errors.As(err, &apiErr) && apiErr.Status == 404 {
			return ErrNoRegistration
		}
		return err
	}
	r.registration = registration
	return nil
}

func (r *Reconciler) Registration() *models.Registration {
	return r.registration
}

// BalanceDue uses server-persisted values exclusively.
func (r *Reconciler) BalanceDue() int64 {
	if r.registration == nil {
		return 0
	}
	return pricing.BalanceDue(r.registration.TotalAmount, r.registration.TotalPaid)
}

func (r *Reconciler) CouponApplied() bool {
	return r.registration != nil && r.registration.CouponDiscount > 0
}

// ApplyCoupon normalises and submits a coupon code. On success the
// whole snapshot is replaced with the server's response; on failure the
// prior snapshot is kept untouched and the server's message surfaces to
// the caller.
func (r *Reconciler) ApplyCoupon(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ErrEmptyCoupon
	}
	registration, err := r.client.ApplyCoupon(ctx, code)
	if err != nil {
		return err
	}
	r.registration = registration
	return nil
}

// RevalidateCoupon re-checks an attached coupon right before payment.
// The updated registration always replaces the snapshot so a stripped
// coupon shows its new total. Transport errors leave state untouched.
func (r *Reconciler) RevalidateCoupon(ctx context.Context) (bool, error) {
	if r.registration == nil || r.registration.CouponCode == "" {
		return true, nil
	}
	validation, err := r.client.ValidateCoupon(ctx)
	if err != nil {
		return false, err
	}
	r.registration = &validation.Registration
	return validation.CouponValid, nil
}

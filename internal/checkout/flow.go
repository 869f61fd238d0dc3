package checkout

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/aoacon/portal-api/internal/portal"
)

// State of the payment flow. One attempt walks Idle → OrderCreating →
// GatewayOpen → Verifying → Succeeded/Failed → Redirected; dismissal
// and order failures fall back to Idle for a fresh attempt.
type State int

const (
	StateIdle State = iota
	StateNothingDue
	StateOrderCreating
	StateGatewayOpen
	StateVerifying
	StateSucceeded
	StateFailed
	StateRedirected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateNothingDue:
		return "NOTHING_DUE"
	case StateOrderCreating:
		return "ORDER_CREATING"
	case StateGatewayOpen:
		return "GATEWAY_OPEN"
	case StateVerifying:
		return "VERIFYING"
	case StateSucceeded:
		return "SUCCEEDED"
	case StateFailed:
		return "FAILED"
	case StateRedirected:
		return "REDIRECTED"
	default:
		return "UNKNOWN"
	}
}

// Outcome is where one Run ended up and, implicitly, where the UI goes
// next.
type Outcome int

const (
	// OutcomeAborted: the attempt never reached the gateway; state is
	// back at Idle and the attendee may retry.
	OutcomeAborted Outcome = iota
	OutcomeNothingDue
	OutcomeDismissed
	OutcomeCouponInvalid
	OutcomeSucceeded
	OutcomeFailed
)

// Redirect returns the navigation target for the outcome, or "" to
// stay on the checkout page.
func (o Outcome) Redirect() string {
	switch o {
	case OutcomeSucceeded:
		return "/payment-status?status=success&type=registration"
	case OutcomeFailed:
		return "/payment-status?status=failed&type=registration"
	case OutcomeNothingDue:
		return "/dashboard"
	default:
		return ""
	}
}

var (
	ErrPaymentInFlight = errors.New("a payment attempt is already in progress")
	// ErrCouponNoLongerValid blocks payment until the attendee reviews
	// the updated total.
	ErrCouponNoLongerValid = errors.New("coupon code is no longer valid, please review the updated total")
)

// ThemeColor is passed to the gateway checkout.
const ThemeColor = "#9c3253"

// Prefill seeds the gateway's contact block.
type Prefill struct {
	Name    string
	Email   string
	Contact string
}

// Options configure one gateway checkout presentation.
type Options struct {
	Prefill     Prefill
	ThemeColor  string
	Description string
}

// Callback is what the gateway reports when its checkout closes.
type Callback struct {
	OrderID   string
	PaymentID string
	Signature string
	// Dismissed is set when the attendee closed the checkout without
	// paying.
	Dismissed bool
}

// Gateway presents the payment checkout for a created order and blocks
// until it closes. Loading the gateway's script is the implementation's
// concern and must be idempotent across attempts.
type Gateway interface {
	Open(ctx context.Context, order portal.OrderDetails, opts Options) (Callback, error)
}

// PaymentFlow executes one payment attempt end to end. Safe to reuse
// across attempts; concurrent Runs are refused.
type PaymentFlow struct {
	client     *portal.Client
	gateway    Gateway
	reconciler *Reconciler
	prefill    Prefill
	logf       func(format string, args ...any)

	mu    sync.Mutex
	state State
}

func NewPaymentFlow(client *portal.Client, gateway Gateway, reconciler *Reconciler, prefill Prefill) *PaymentFlow {
	return &PaymentFlow{
		client:     client,
		gateway:    gateway,
		reconciler: reconciler,
		prefill:    prefill,
		logf:       log.Printf,
		state:      StateIdle,
	}
}

func (f *PaymentFlow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *PaymentFlow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// begin claims the flow for one attempt, refusing re-entry until the
// previous attempt settles. The claim is taken before any network call
// so overlapping Runs can never both create an order.
func (f *PaymentFlow) begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case StateOrderCreating, StateGatewayOpen, StateVerifying:
		return ErrPaymentInFlight
	}
	f.state = StateOrderCreating
	return nil
}

// Run drives a full payment attempt against the loaded registration.
func (f *PaymentFlow) Run(ctx context.Context) (Outcome, error) {
	if err := f.begin(); err != nil {
		return OutcomeAborted, err
	}

	if f.reconciler.BalanceDue() <= 0 {
		f.setState(StateNothingDue)
		return OutcomeNothingDue, nil
	}

	// A stale coupon must block payment, not silently change the charge.
	valid, err := f.reconciler.RevalidateCoupon(ctx)
	if err != nil {
		f.setState(StateIdle)
		return OutcomeAborted, err
	}
	if !valid {
		f.setState(StateIdle)
		return OutcomeCouponInvalid, ErrCouponNoLongerValid
	}

	order, err := f.client.CreateRegistrationOrder(ctx)
	if err != nil {
		f.setState(StateIdle)
		return OutcomeAborted, err
	}

	f.setState(StateGatewayOpen)
	callback, err := f.gateway.Open(ctx, *order, Options{
		Prefill:     f.prefill,
		ThemeColor:  ThemeColor,
		Description: "Conference Registration",
	})
	if err != nil {
		f.setState(StateIdle)
		return OutcomeAborted, err
	}
	if callback.Dismissed {
		f.setState(StateIdle)
		return OutcomeDismissed, nil
	}

	f.setState(StateVerifying)
	registration, err := f.client.VerifyPayment(ctx, portal.PaymentCallback{
		OrderID:   callback.OrderID,
		PaymentID: callback.PaymentID,
		Signature: callback.Signature,
	})
	if err != nil {
		f.setState(StateFailed)
		f.setState(StateRedirected)
		return OutcomeFailed, err
	}

	f.reconciler.registration = registration
	f.setState(StateSucceeded)

	// Best-effort: a QR failure never blocks the success redirect.
	if _, err := f.client.GenerateQR(ctx, registration.ID); err != nil {
		f.logf("QR generation failed, continuing to success page: %v", err)
	}

	f.setState(StateRedirected)
	return OutcomeSucceeded, nil
}

// Package portal is the Go client for the portal API. It mirrors the
// endpoints the registration and checkout flows consume and funnels
// every request through a Session so auth failures are handled in one
// place.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/aoacon/portal-api/internal/models"
	"github.com/aoacon/portal-api/internal/pricing"
)

// APIError carries the server's message for a rejected request.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

type Client struct {
	baseURL    string
	session    *Session
	httpClient *http.Client
}

func NewClient(baseURL string, session *Session) *Client {
	return &Client{
		baseURL:    baseURL,
		session:    session,
		httpClient: http.DefaultClient,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.session.invalidate()
	}
	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	return c.do(ctx, http.MethodPost, path, body, "application/json", out)
}

// errorMessage pulls the human-readable message out of an error
// response, tolerating both {message} and problem-details bodies.
func errorMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Title   string `json:"title"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return ""
	}
	switch {
	case payload.Message != "":
		return payload.Message
	case payload.Detail != "":
		return payload.Detail
	default:
		return payload.Title
	}
}

// Login exchanges credentials for a bearer token and stores it on the
// session.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	payload := map[string]string{"email": email, "password": password}
	var out struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	if err := c.postJSON(ctx, "/auth/login", payload, &out); err != nil {
		return nil, err
	}
	c.session.SetToken(out.Token)
	return &out.User, nil
}

// PricingQuote is the server's pricing snapshot, fetched per session
// and treated as read-only.
type PricingQuote struct {
	Base struct {
		Conference struct {
			PriceWithoutGST int64 `json:"priceWithoutGST"`
		} `json:"conference"`
	} `json:"base"`
	AddOns struct {
		Workshop struct {
			PriceWithoutGST int64 `json:"priceWithoutGST"`
		} `json:"workshop"`
		AoaCourse struct {
			PriceWithoutGST int64 `json:"priceWithoutGST"`
		} `json:"aoaCourse"`
		LifeMembership struct {
			PriceWithoutGST int64 `json:"priceWithoutGST"`
		} `json:"lifeMembership"`
	} `json:"addOns"`
	BookingPhase         string             `json:"bookingPhase"`
	GSTPercent           float64            `json:"gstPercent"`
	ProcessingFeePercent float64            `json:"processingFeePercent"`
	Workshops            []pricing.Workshop `json:"workshops"`
	Meta                 struct {
		AoaCourseFull     bool `json:"aoaCourseFull"`
		AoaCourseCount    int  `json:"aoaCourseCount"`
		AoaCourseCapacity int  `json:"aoaCourseCapacity"`
	} `json:"meta"`
}

// Quote converts the server payload into the pricing engine's quote
// type so drafts can be previewed and validated locally.
func (q *PricingQuote) Quote(role string) pricing.Quote {
	return pricing.Quote{
		BookingPhase:       q.BookingPhase,
		Role:               role,
		ConferenceBase:     q.Base.Conference.PriceWithoutGST,
		WorkshopAddOn:      q.AddOns.Workshop.PriceWithoutGST,
		AoaCourseBase:      q.AddOns.AoaCourse.PriceWithoutGST,
		LifeMembershipBase: q.AddOns.LifeMembership.PriceWithoutGST,
		GSTPercent:         q.GSTPercent,
		ProcessingFeePct:   q.ProcessingFeePercent,
		AoaCourseFull:      q.Meta.AoaCourseFull,
		AoaCourseCount:     q.Meta.AoaCourseCount,
		AoaCourseCapacity:  q.Meta.AoaCourseCapacity,
	}
}

func (c *Client) GetPricing(ctx context.Context) (*PricingQuote, error) {
	var quote PricingQuote
	if err := c.do(ctx, http.MethodGet, "/registration/pricing", nil, "", &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// MyRegistration fetches the caller's registration. A 404 means "not
// yet registered" and surfaces as an *APIError.
func (c *Client) MyRegistration(ctx context.Context) (*models.Registration, error) {
	var registration models.Registration
	if err := c.do(ctx, http.MethodGet, "/registration/my-registration", nil, "", &registration); err != nil {
		return nil, err
	}
	return &registration, nil
}

// SubmitRegistration posts the draft selection as a multipart form and
// returns the persisted, server-priced registration.
func (c *Client) SubmitRegistration(ctx context.Context, sel pricing.Selection) (*models.Registration, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("addWorkshop", strconv.FormatBool(sel.AddWorkshop))
	w.WriteField("addAoaCourse", strconv.FormatBool(sel.AddAoaCourse))
	w.WriteField("addLifeMembership", strconv.FormatBool(sel.AddLifeMembership))
	if sel.AddWorkshop {
		w.WriteField("selectedWorkshop", sel.SelectedWorkshop)
	}
	w.WriteField("accompanyingPersons", strconv.Itoa(sel.AccompanyingPersons))
	if err := w.Close(); err != nil {
		return nil, err
	}

	var out struct {
		Message      string              `json:"message"`
		Registration models.Registration `json:"registration"`
	}
	if err := c.do(ctx, http.MethodPost, "/registration", &buf, w.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out.Registration, nil
}

// SubmitDraft validates the draft against the current quote and only
// then posts it. An incomplete draft (workshop with no selection, a
// full course) fails here without a network call.
func (c *Client) SubmitDraft(ctx context.Context, quote *PricingQuote, draft *pricing.Draft) (*models.Registration, error) {
	if err := draft.Validate(quote.Quote(draft.Role)); err != nil {
		return nil, err
	}
	return c.SubmitRegistration(ctx, draft.Selection)
}

func (c *Client) ApplyCoupon(ctx context.Context, code string) (*models.Registration, error) {
	payload := map[string]string{"couponCode": code}
	var registration models.Registration
	if err := c.postJSON(ctx, "/registration/apply-coupon", payload, &registration); err != nil {
		return nil, err
	}
	return &registration, nil
}

// CouponValidation is the server's answer to a pre-payment re-check.
type CouponValidation struct {
	CouponValid  bool                `json:"couponValid"`
	Registration models.Registration `json:"registration"`
}

func (c *Client) ValidateCoupon(ctx context.Context) (*CouponValidation, error) {
	var out CouponValidation
	if err := c.postJSON(ctx, "/registration/validate-coupon", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// OrderDetails describes a freshly created gateway order. Amount is in
// paise.
type OrderDetails struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
}

func (c *Client) CreateRegistrationOrder(ctx context.Context) (*OrderDetails, error) {
	var order OrderDetails
	if err := c.postJSON(ctx, "/payment/create-order/registration", nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// PaymentCallback carries the gateway's signed success fields.
type PaymentCallback struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

func (c *Client) VerifyPayment(ctx context.Context, cb PaymentCallback) (*models.Registration, error) {
	var out struct {
		Message      string              `json:"message"`
		Registration models.Registration `json:"registration"`
	}
	if err := c.postJSON(ctx, "/payment/verify", cb, &out); err != nil {
		return nil, err
	}
	return &out.Registration, nil
}

func (c *Client) ReportPaymentFailure(ctx context.Context, orderID, reason string) error {
	payload := map[string]string{"razorpay_order_id": orderID, "reason": reason}
	return c.postJSON(ctx, "/payment/failed", payload, nil)
}

// GenerateQR requests the attendance pass for a paid registration.
func (c *Client) GenerateQR(ctx context.Context, registrationID uint) (string, error) {
	var out struct {
		Code string `json:"code"`
	}
	path := fmt.Sprintf("/attendance/generate-qr/%d", registrationID)
	if err := c.postJSON(ctx, path, nil, &out); err != nil {
		return "", err
	}
	return out.Code, nil
}

package portal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aoacon/portal-api/internal/models"
	"github.com/aoacon/portal-api/internal/pricing"
)

func TestSessionInvalidatedOnceOn401(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Unauthorized: invalid token"})
	}))
	defer srv.Close()

	session := NewSession()
	session.SetToken("stale-token")
	invalidations := 0
	session.OnInvalidate(func() { invalidations++ })

	client := NewClient(srv.URL, session)

	// Two overlapping 401s from different endpoints must notify once.
	if _, err := client.MyRegistration(context.Background()); err == nil {
		t.Fatal("expected error for 401")
	}
	if _, err := client.GetPricing(context.Background()); err == nil {
		t.Fatal("expected error for 401")
	}

	if invalidations != 1 {
		t.Errorf("invalidation hook fired %d times, want 1", invalidations)
	}
	if session.Token() != "" {
		t.Errorf("token survived invalidation: %q", session.Token())
	}
}

func TestLogoutDoesNotFireInvalidation(t *testing.T) {
	session := NewSession()
	session.SetToken("token")
	fired := false
	session.OnInvalidate(func() { fired = true })

	session.Logout()
	if session.Token() != "" {
		t.Error("logout kept the token")
	}
	if fired {
		t.Error("logout fired the invalidation hook")
	}
}

func TestLoginStoresTokenAndSendsBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			json.NewEncoder(w).Encode(map[string]any{
				"token": "fresh-token",
				"user":  models.User{Name: "Dr. Test"},
			})
		case "/registration/my-registration":
			gotAuth = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode(models.Registration{})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	session := NewSession()
	client := NewClient(srv.URL, session)

	user, err := client.Login(context.Background(), "doc@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.Name != "Dr. Test" {
		t.Errorf("user = %+v", user)
	}
	if session.Token() != "fresh-token" {
		t.Errorf("session token = %q", session.Token())
	}

	if _, err := client.MyRegistration(context.Background()); err != nil {
		t.Fatalf("my registration failed: %v", err)
	}
	if gotAuth != "Bearer fresh-token" {
		t.Errorf("authorization header = %q", gotAuth)
	}
}

func TestErrorMessageSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		switch r.URL.Path {
		case "/registration/apply-coupon":
			json.NewEncoder(w).Encode(map[string]string{"message": "Invalid coupon code"})
		default:
			// huma-style problem details
			json.NewEncoder(w).Encode(map[string]string{
				"title":  "Bad Request",
				"detail": "No balance due on this registration",
			})
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, NewSession())

	_, err := client.ApplyCoupon(context.Background(), "NOPE")
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error = %T, want *APIError", err)
	}
	if apiErr.Message != "Invalid coupon code" {
		t.Errorf("message = %q", apiErr.Message)
	}

	_, err = client.CreateRegistrationOrder(context.Background())
	apiErr, ok = err.(*APIError)
	if !ok {
		t.Fatalf("error = %T, want *APIError", err)
	}
	if apiErr.Message != "No balance due on this registration" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestSubmitDraftRejectedLocally(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		json.NewEncoder(w).Encode(map[string]any{
			"message":      "Registration saved",
			"registration": models.Registration{},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, NewSession())

	quote := &PricingQuote{BookingPhase: "REGULAR"}
	quote.Base.Conference.PriceWithoutGST = 10000
	quote.AddOns.Workshop.PriceWithoutGST = 2000
	quote.Meta.AoaCourseCapacity = 40

	// Workshop ticked but none chosen: rejected before any request.
	draft := pricing.NewDraft(pricing.RoleAOA, pricing.Selection{}, pricing.Selection{})
	draft.SetWorkshop(true)
	if _, err := client.SubmitDraft(context.Background(), quote, draft); !errors.Is(err, pricing.ErrWorkshopRequired) {
		t.Fatalf("err = %v, want ErrWorkshopRequired", err)
	}

	// A sold-out course is also stopped locally.
	fullQuote := *quote
	fullQuote.AddOns.AoaCourse.PriceWithoutGST = 5000
	fullQuote.Meta.AoaCourseFull = true
	courseDraft := pricing.NewDraft(pricing.RoleAOA, pricing.Selection{AddAoaCourse: true}, pricing.Selection{})
	if _, err := client.SubmitDraft(context.Background(), &fullQuote, courseDraft); !errors.Is(err, pricing.ErrCourseFull) {
		t.Fatalf("err = %v, want ErrCourseFull", err)
	}

	if requests != 0 {
		t.Fatalf("invalid drafts made %d network calls, want 0", requests)
	}

	// Completing the selection lets the submission through.
	draft.SelectWorkshop("pocus")
	if _, err := client.SubmitDraft(context.Background(), quote, draft); err != nil {
		t.Fatalf("submit draft failed: %v", err)
	}
	if requests != 1 {
		t.Errorf("valid draft made %d network calls, want 1", requests)
	}
}

func TestSubmitRegistrationForm(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("not a multipart form: %v", err)
		}
		got = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			got[k] = v[0]
		}
		json.NewEncoder(w).Encode(map[string]any{
			"message":      "Registration saved",
			"registration": models.Registration{},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, NewSession())

	sel := pricing.Selection{
		AddWorkshop:         true,
		SelectedWorkshop:    "pocus",
		AccompanyingPersons: 2,
	}
	if _, err := client.SubmitRegistration(context.Background(), sel); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if got["addWorkshop"] != "true" || got["selectedWorkshop"] != "pocus" || got["accompanyingPersons"] != "2" {
		t.Errorf("form = %v", got)
	}

	// Without the workshop add-on the selection field is omitted.
	sel = pricing.Selection{}
	if _, err := client.SubmitRegistration(context.Background(), sel); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, present := got["selectedWorkshop"]; present {
		t.Error("selectedWorkshop sent for a selection without the workshop")
	}
}

package handlers

import (
	"net/http"

	"github.com/aoacon/portal-api/internal/auth"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func RegisterRoutes(
	r *chi.Mux,
	authHandler *auth.AuthHandler,
	registrationHandler *RegistrationHandler,
	paymentHandler *PaymentHandler,
	attendanceHandler *AttendanceHandler,
	adminHandler *AdminHandler,
) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Initialize Huma API
	config := huma.DefaultConfig("AOACON Portal API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearerAuth": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	api := humachi.New(r, config)

	bearer := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"bearerAuth": {}}}
	}

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Get("/auth/google/login", authHandler.HandleGoogleLogin)
	r.Get("/auth/google/callback", authHandler.HandleGoogleCallback)

	huma.Post(api, "/auth/register", authHandler.HandleSignup)
	huma.Post(api, "/auth/login", authHandler.HandleLogin)

	// Protected routes
	huma.Get(api, "/auth/me", authHandler.HandleMe, bearer)

	huma.Get(api, "/registration/pricing", registrationHandler.HandleGetPricing, bearer)
	huma.Get(api, "/registration/my-registration", registrationHandler.HandleGetMyRegistration, bearer)
	huma.Post(api, "/registration", registrationHandler.HandleCreateRegistration, bearer)
	huma.Post(api, "/registration/apply-coupon", registrationHandler.HandleApplyCoupon, bearer)
	huma.Post(api, "/registration/validate-coupon", registrationHandler.HandleValidateCoupon, bearer)

	huma.Post(api, "/payment/create-order/registration", paymentHandler.HandleCreateOrder, bearer)
	huma.Post(api, "/payment/verify", paymentHandler.HandleVerifyPayment, bearer)
	huma.Post(api, "/payment/failed", paymentHandler.HandlePaymentFailed, bearer)

	huma.Post(api, "/attendance/generate-qr/{registrationId}", attendanceHandler.HandleGenerateQR, bearer)
	huma.Get(api, "/attendance/my-qr", attendanceHandler.HandleMyQR, bearer)

	huma.Get(api, "/admin/dashboard", adminHandler.HandleDashboard, bearer)
	huma.Get(api, "/admin/registrations", adminHandler.HandleListRegistrations, bearer)
	huma.Delete(api, "/admin/registrations/{id}", adminHandler.HandleDeleteRegistration, bearer)
	huma.Get(api, "/admin/users", adminHandler.HandleListUsers, bearer)
	huma.Delete(api, "/admin/users/{id}", adminHandler.HandleDeleteUser, bearer)
	huma.Get(api, "/admin/counters/registration-number", adminHandler.HandleGetCounter, bearer)
	huma.Put(api, "/admin/counters/registration-number", adminHandler.HandleUpdateCounter, bearer)
}

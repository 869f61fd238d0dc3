package handlers

import (
	"context"
	"testing"

	"github.com/aoacon/portal-api/internal/models"
	"github.com/aoacon/portal-api/internal/pricing"
)

func TestAdminEndpointsRejectAttendees(t *testing.T) {
	db, authHandler := setupTest(t)
	user := createUser(t, db, models.RoleAOA)
	handler := NewAdminHandler(db, authHandler)

	req := &DashboardRequest{}
	req.Authorization = bearerFor(t, authHandler, user.ID)
	if _, err := handler.HandleDashboard(context.Background(), req); err == nil {
		t.Fatal("expected 403 for a non-admin caller")
	}
}

func TestHandleDashboard(t *testing.T) {
	db, authHandler := setupTest(t)
	admin := createUser(t, db, models.RoleAdmin)
	a := createUser(t, db, models.RoleAOA)
	b := createUser(t, db, models.RoleNonAOA)
	handler := NewAdminHandler(db, authHandler)

	db.Create(&models.Registration{
		UserID: a.ID, RegistrationNumber: "AOACON-0001", RegistrationSeq: 1,
		RegistrationFields: models.RegistrationFields{
			PaymentStatus: models.PaymentStatusPaid,
			AddAoaCourse:  true,
			TotalPaid:     22790,
		},
	})
	db.Create(&models.Registration{
		UserID: b.ID, RegistrationNumber: "AOACON-0002", RegistrationSeq: 2,
		RegistrationFields: models.RegistrationFields{
			PaymentStatus: models.PaymentStatusPending,
		},
	})

	req := &DashboardRequest{}
	req.Authorization = bearerFor(t, authHandler, admin.ID)
	res, err := handler.HandleDashboard(context.Background(), req)
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}

	if res.Body.TotalRegistrations != 2 {
		t.Errorf("total registrations = %d, want 2", res.Body.TotalRegistrations)
	}
	if res.Body.PaidRegistrations != 1 {
		t.Errorf("paid registrations = %d, want 1", res.Body.PaidRegistrations)
	}
	if res.Body.TotalUsers != 2 {
		t.Errorf("total users = %d, want 2 (admin excluded)", res.Body.TotalUsers)
	}
	if res.Body.AoaCourseCount != 1 {
		t.Errorf("course count = %d, want 1", res.Body.AoaCourseCount)
	}
	if res.Body.TotalCollected != 22790 {
		t.Errorf("total collected = %d, want 22790", res.Body.TotalCollected)
	}
}

func TestHandleListRegistrations_Filters(t *testing.T) {
	db, authHandler := setupTest(t)
	admin := createUser(t, db, models.RoleAdmin)
	a := createUser(t, db, models.RoleAOA)
	b := createUser(t, db, models.RoleNonAOA)
	handler := NewAdminHandler(db, authHandler)

	db.Create(&models.Registration{
		UserID: a.ID, RegistrationNumber: "AOACON-0002", RegistrationSeq: 2,
		RegistrationFields: models.RegistrationFields{PaymentStatus: models.PaymentStatusPaid},
	})
	db.Create(&models.Registration{
		UserID: b.ID, RegistrationNumber: "AOACON-0001", RegistrationSeq: 1,
		RegistrationFields: models.RegistrationFields{PaymentStatus: models.PaymentStatusPending},
	})

	authz := bearerFor(t, authHandler, admin.ID)

	req := &ListRegistrationsRequest{}
	req.Authorization = authz
	res, err := handler.HandleListRegistrations(context.Background(), req)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(res.Body.Registrations) != 2 {
		t.Fatalf("registrations = %d, want 2", len(res.Body.Registrations))
	}
	// Ordered by assigned number, not insertion.
	if res.Body.Registrations[0].RegistrationNumber != "AOACON-0001" {
		t.Errorf("first = %q, want AOACON-0001", res.Body.Registrations[0].RegistrationNumber)
	}

	req = &ListRegistrationsRequest{Status: models.PaymentStatusPaid}
	req.Authorization = authz
	res, err = handler.HandleListRegistrations(context.Background(), req)
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if len(res.Body.Registrations) != 1 || res.Body.Registrations[0].RegistrationNumber != "AOACON-0002" {
		t.Errorf("status filter returned %+v", res.Body.Registrations)
	}

	req = &ListRegistrationsRequest{Search: "0001"}
	req.Authorization = authz
	res, err = handler.HandleListRegistrations(context.Background(), req)
	if err != nil {
		t.Fatalf("searched list failed: %v", err)
	}
	if len(res.Body.Registrations) != 1 || res.Body.Registrations[0].RegistrationNumber != "AOACON-0001" {
		t.Errorf("search returned %+v", res.Body.Registrations)
	}
}

func TestHandleDeleteUser_SelfDeleteBlocked(t *testing.T) {
	db, authHandler := setupTest(t)
	admin := createUser(t, db, models.RoleAdmin)
	attendee := createUser(t, db, models.RolePGS)
	handler := NewAdminHandler(db, authHandler)

	req := &DeleteUserRequest{ID: admin.ID}
	req.Authorization = bearerFor(t, authHandler, admin.ID)
	if _, err := handler.HandleDeleteUser(context.Background(), req); err == nil {
		t.Error("expected error deleting own account")
	}

	req = &DeleteUserRequest{ID: attendee.ID}
	req.Authorization = bearerFor(t, authHandler, admin.ID)
	if _, err := handler.HandleDeleteUser(context.Background(), req); err != nil {
		t.Errorf("delete user failed: %v", err)
	}
}

func TestHandleDeleteRegistration(t *testing.T) {
	db, authHandler := setupTest(t)
	admin := createUser(t, db, models.RoleAdmin)
	attendee := createUser(t, db, models.RolePGS)
	reg := seedRegistration(t, db, attendee.ID)
	handler := NewAdminHandler(db, authHandler)

	req := &DeleteRegistrationRequest{ID: reg.ID}
	req.Authorization = bearerFor(t, authHandler, admin.ID)
	if _, err := handler.HandleDeleteRegistration(context.Background(), req); err != nil {
		t.Fatalf("delete registration failed: %v", err)
	}

	var count int64
	db.Model(&models.Registration{}).Count(&count)
	if count != 0 {
		t.Errorf("registration rows = %d, want 0", count)
	}

	req = &DeleteRegistrationRequest{ID: reg.ID}
	req.Authorization = bearerFor(t, authHandler, admin.ID)
	if _, err := handler.HandleDeleteRegistration(context.Background(), req); err == nil {
		t.Error("expected 404 deleting a missing registration")
	}
}

func TestHandleUpdateCounter(t *testing.T) {
	db, authHandler := setupTest(t)
	admin := createUser(t, db, models.RoleAdmin)
	attendee := createUser(t, db, models.RoleAOA)
	handler := NewAdminHandler(db, authHandler)

	db.Create(&models.Registration{
		UserID: attendee.ID, RegistrationNumber: "AOACON-0050", RegistrationSeq: 50,
		RegistrationFields: models.RegistrationFields{
			BookingPhase:  pricing.PhaseRegular,
			PaymentStatus: models.PaymentStatusPending,
		},
	})
	authz := bearerFor(t, authHandler, admin.ID)

	getReq := &GetCounterRequest{}
	getReq.Authorization = authz
	state, err := handler.HandleGetCounter(context.Background(), getReq)
	if err != nil {
		t.Fatalf("get counter failed: %v", err)
	}
	if state.Body.MaxUsed != 50 {
		t.Errorf("max used = %d, want 50", state.Body.MaxUsed)
	}
	if state.Body.SuggestedNext != 51 {
		t.Errorf("suggested next = %d, want 51", state.Body.SuggestedNext)
	}

	// Below the highest assigned number is rejected.
	updReq := &UpdateCounterRequest{}
	updReq.Authorization = authz
	updReq.Body.Seq = 10
	if _, err := handler.HandleUpdateCounter(context.Background(), updReq); err == nil {
		t.Error("expected error setting counter below max used")
	}

	updReq = &UpdateCounterRequest{}
	updReq.Authorization = authz
	updReq.Body.Seq = 200
	state, err = handler.HandleUpdateCounter(context.Background(), updReq)
	if err != nil {
		t.Fatalf("update counter failed: %v", err)
	}
	if state.Body.Counter != 200 {
		t.Errorf("counter = %d, want 200", state.Body.Counter)
	}
	if state.Body.SuggestedNext != 201 {
		t.Errorf("suggested next = %d, want 201", state.Body.SuggestedNext)
	}
}

package handlers

import (
	"context"

	"github.com/aoacon/portal-api/internal/auth"
	"github.com/aoacon/portal-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
}

func NewAttendanceHandler(db *gorm.DB, authHandler *auth.AuthHandler) *AttendanceHandler {
	return &AttendanceHandler{db: db, authHandler: authHandler}
}

type GenerateQRRequest struct {
	auth.AuthInput
	RegistrationID uint `path:"registrationId"`
}

type QRResponse struct {
	Body struct {
		Code               string `json:"code"`
		RegistrationNumber string `json:"registrationNumber"`
	}
}

// HandleGenerateQR issues the attendance pass for a paid registration.
// Idempotent: re-generation returns the existing code.
func (h *AttendanceHandler) HandleGenerateQR(ctx context.Context, input *GenerateQRRequest) (*QRResponse, error) {
	user, err := h.authHandler.AuthorizeUser(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	var registration models.Registration
	if err := h.db.First(&registration, input.RegistrationID).Error; err != nil {
		return nil, huma.Error404NotFound("Registration not found")
	}
	if registration.UserID != user.ID && !user.IsAdmin() {
		return nil, huma.Error403Forbidden("This registration belongs to another attendee")
	}
	if registration.PaymentStatus != models.PaymentStatusPaid {
		return nil, huma.Error400BadRequest("Attendance pass requires a paid registration")
	}

	var pass models.AttendancePass
	if err := h.db.FirstOrInit(&pass, models.AttendancePass{RegistrationID: registration.ID}).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to load attendance pass")
	}
	if pass.Code == "" {
		pass.UserID = registration.UserID
		pass.Code = uuid.NewString()
		if err := h.db.Save(&pass).Error; err != nil {
			return nil, huma.Error500InternalServerError("Failed to save attendance pass")
		}
	}

	res := &QRResponse{}
	res.Body.Code = pass.Code
	res.Body.RegistrationNumber = registration.RegistrationNumber
	return res, nil
}

type MyQRRequest struct {
	auth.AuthInput
}

func (h *AttendanceHandler) HandleMyQR(ctx context.Context, input *MyQRRequest) (*QRResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	var pass models.AttendancePass
	if err := h.db.Where("user_id = ?", userID).First(&pass).Error; err != nil {
		return nil, huma.Error404NotFound("No attendance pass yet")
	}

	var registration models.Registration
	if err := h.db.First(&registration, pass.RegistrationID).Error; err != nil {
		return nil, huma.Error404NotFound("Registration not found")
	}

	res := &QRResponse{}
	res.Body.Code = pass.Code
	res.Body.RegistrationNumber = registration.RegistrationNumber
	return res, nil
}

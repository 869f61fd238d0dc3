package handlers

import (
	"context"

	"github.com/aoacon/portal-api/internal/auth"
	"github.com/aoacon/portal-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"
)

type AdminHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
}

func NewAdminHandler(db *gorm.DB, authHandler *auth.AuthHandler) *AdminHandler {
	return &AdminHandler{db: db, authHandler: authHandler}
}

type DashboardRequest struct {
	auth.AuthInput
}

type DashboardResponse struct {
	Body struct {
		TotalRegistrations int64 `json:"totalRegistrations"`
		PaidRegistrations  int64 `json:"paidRegistrations"`
		TotalUsers         int64 `json:"totalUsers"`
		AoaCourseCount     int64 `json:"aoaCourseCount"`
		TotalCollected     int64 `json:"totalCollected"`
	}
}

func (h *AdminHandler) HandleDashboard(ctx context.Context, input *DashboardRequest) (*DashboardResponse, error) {
	if _, err := h.authHandler.AuthorizeAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	res := &DashboardResponse{}
	h.db.Model(&models.Registration{}).Count(&res.Body.TotalRegistrations)
	h.db.Model(&models.Registration{}).Where("payment_status = ?", models.PaymentStatusPaid).Count(&res.Body.PaidRegistrations)
	h.db.Model(&models.User{}).Where("role <> ?", models.RoleAdmin).Count(&res.Body.TotalUsers)
	h.db.Model(&models.Registration{}).Where("add_aoa_course = ?", true).Count(&res.Body.AoaCourseCount)
	h.db.Model(&models.Registration{}).Select("COALESCE(SUM(total_paid), 0)").Scan(&res.Body.TotalCollected)
	return res, nil
}

type ListRegistrationsRequest struct {
	auth.AuthInput
	Status string `query:"status" enum:"PENDING,PAID,FAILED," doc:"Filter by payment status"`
	Search string `query:"search" doc:"Match against registration number"`
}

type ListRegistrationsResponse struct {
	Body struct {
		Registrations []models.Registration `json:"registrations"`
	}
}

func (h *AdminHandler) HandleListRegistrations(ctx context.Context, input *ListRegistrationsRequest) (*ListRegistrationsResponse, error) {
	if _, err := h.authHandler.AuthorizeAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	q := h.db.Order("registration_seq")
	if input.Status != "" {
		q = q.Where("payment_status = ?", input.Status)
	}
	if input.Search != "" {
		q = q.Where("registration_number LIKE ?", "%"+input.Search+"%")
	}

	res := &ListRegistrationsResponse{}
	if err := q.Find(&res.Body.Registrations).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list registrations")
	}
	return res, nil
}

type DeleteRegistrationRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

type MessageResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

func (h *AdminHandler) HandleDeleteRegistration(ctx context.Context, input *DeleteRegistrationRequest) (*MessageResponse, error) {
	if _, err := h.authHandler.AuthorizeAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	var registration models.Registration
	if err := h.db.First(&registration, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Registration not found")
	}
	if err := h.db.Delete(&registration).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to delete registration")
	}

	res := &MessageResponse{}
	res.Body.Message = "Registration deleted"
	return res, nil
}

type ListUsersRequest struct {
	auth.AuthInput
}

type ListUsersResponse struct {
	Body struct {
		Users []models.User `json:"users"`
	}
}

func (h *AdminHandler) HandleListUsers(ctx context.Context, input *ListUsersRequest) (*ListUsersResponse, error) {
	if _, err := h.authHandler.AuthorizeAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	res := &ListUsersResponse{}
	if err := h.db.Where("role <> ?", models.RoleAdmin).Find(&res.Body.Users).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list users")
	}
	return res, nil
}

type DeleteUserRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *AdminHandler) HandleDeleteUser(ctx context.Context, input *DeleteUserRequest) (*MessageResponse, error) {
	admin, err := h.authHandler.AuthorizeAdmin(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}
	if admin.ID == input.ID {
		return nil, huma.Error400BadRequest("You cannot delete your own account")
	}

	var user models.User
	if err := h.db.First(&user, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("User not found")
	}
	if err := h.db.Delete(&user).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to delete user")
	}

	res := &MessageResponse{}
	res.Body.Message = "User deleted"
	return res, nil
}

type GetCounterRequest struct {
	auth.AuthInput
}

type CounterResponse struct {
	Body struct {
		Counter       int64 `json:"counter"`
		MaxUsed       int64 `json:"maxUsed"`
		SuggestedNext int64 `json:"suggestedNext"`
	}
}

func (h *AdminHandler) HandleGetCounter(ctx context.Context, input *GetCounterRequest) (*CounterResponse, error) {
	if _, err := h.authHandler.AuthorizeAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}
	return h.counterState()
}

type UpdateCounterRequest struct {
	auth.AuthInput
	Body struct {
		Seq int64 `json:"seq" minimum:"0"`
	}
}

// HandleUpdateCounter moves the registration-number counter. Setting it
// below the highest number already handed out is rejected.
func (h *AdminHandler) HandleUpdateCounter(ctx context.Context, input *UpdateCounterRequest) (*CounterResponse, error) {
	if _, err := h.authHandler.AuthorizeAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	maxUsed, err := h.maxUsedSeq()
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to check used registration numbers")
	}
	if input.Body.Seq < maxUsed {
		return nil, huma.Error400BadRequest("Counter cannot be set below max used registration number.")
	}

	var counter models.Counter
	if err := h.db.FirstOrInit(&counter, models.Counter{Name: models.RegistrationNumberCounter}).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to load counter")
	}
	counter.Seq = input.Body.Seq
	if err := h.db.Save(&counter).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to save counter")
	}

	return h.counterState()
}

func (h *AdminHandler) counterState() (*CounterResponse, error) {
	var counter models.Counter
	if err := h.db.FirstOrInit(&counter, models.Counter{Name: models.RegistrationNumberCounter}).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to load counter")
	}
	maxUsed, err := h.maxUsedSeq()
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to check used registration numbers")
	}

	res := &CounterResponse{}
	res.Body.Counter = counter.Seq
	res.Body.MaxUsed = maxUsed
	res.Body.SuggestedNext = max(counter.Seq, maxUsed) + 1
	return res, nil
}

func (h *AdminHandler) maxUsedSeq() (int64, error) {
	var maxUsed int64
	err := h.db.Model(&models.Registration{}).Select("COALESCE(MAX(registration_seq), 0)").Scan(&maxUsed).Error
	return maxUsed, err
}

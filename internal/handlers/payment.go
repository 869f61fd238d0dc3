package handlers

import (
	"context"
	"log"

	"github.com/aoacon/portal-api/internal/auth"
	"github.com/aoacon/portal-api/internal/models"
	"github.com/aoacon/portal-api/internal/notifier"
	"github.com/aoacon/portal-api/internal/payment"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentHandler struct {
	db          *gorm.DB
	gateway     *payment.Client
	keySecret   string
	notifier    notifier.Notifier
	authHandler *auth.AuthHandler
}

func NewPaymentHandler(db *gorm.DB, gateway *payment.Client, keySecret string, notifier notifier.Notifier, authHandler *auth.AuthHandler) *PaymentHandler {
	return &PaymentHandler{db: db, gateway: gateway, keySecret: keySecret, notifier: notifier, authHandler: authHandler}
}

type CreateOrderRequest struct {
	auth.AuthInput
}

type CreateOrderResponse struct {
	Body struct {
		OrderID  string `json:"orderId"`
		Amount   int64  `json:"amount" doc:"Amount due, in paise"`
		Currency string `json:"currency"`
		KeyID    string `json:"keyId"`
	}
}

// HandleCreateOrder opens a fresh gateway order for the caller's
// balance due. Orders are never reused; every retry starts here.
func (h *PaymentHandler) HandleCreateOrder(ctx context.Context, input *CreateOrderRequest) (*CreateOrderResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	var registration models.Registration
	if err := h.db.Where("user_id = ?", userID).First(&registration).Error; err != nil {
		return nil, huma.Error404NotFound("Registration not found")
	}

	balanceDue := registration.BalanceDue()
	if balanceDue <= 0 {
		return nil, huma.Error400BadRequest("No balance due on this registration")
	}

	receipt := uuid.NewString()
	order, err := h.gateway.CreateOrder(ctx, balanceDue*100, "INR", receipt, map[string]string{
		"registrationNumber": registration.RegistrationNumber,
	})
	if err != nil {
		return nil, huma.Error502BadGateway("Payment failed. Please try again.")
	}

	record := models.PaymentRecord{
		RegistrationID: registration.ID,
		Receipt:        receipt,
		OrderID:        order.ID,
		Amount:         balanceDue,
		Currency:       order.Currency,
		Status:         models.PaymentRecordCreated,
	}
	if err := h.db.Create(&record).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to record payment order")
	}

	res := &CreateOrderResponse{}
	res.Body.OrderID = order.ID
	res.Body.Amount = order.Amount
	res.Body.Currency = order.Currency
	res.Body.KeyID = h.gateway.KeyID()
	return res, nil
}

type VerifyPaymentRequest struct {
	auth.AuthInput
	Body struct {
		RazorpayOrderID   string `json:"razorpay_order_id" required:"true"`
		RazorpayPaymentID string `json:"razorpay_payment_id" required:"true"`
		RazorpaySignature string `json:"razorpay_signature" required:"true"`
	}
}

type VerifyPaymentResponse struct {
	Body struct {
		Message      string              `json:"message"`
		Registration models.Registration `json:"registration"`
	}
}

// HandleVerifyPayment checks the gateway's signed callback. A good
// signature captures the payment and advances the registration to PAID
// once the balance reaches zero.
func (h *PaymentHandler) HandleVerifyPayment(ctx context.Context, input *VerifyPaymentRequest) (*VerifyPaymentResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	var record models.PaymentRecord
	if err := h.db.Where("order_id = ?", input.Body.RazorpayOrderID).First(&record).Error; err != nil {
		return nil, huma.Error404NotFound("Payment order not found")
	}

	var registration models.Registration
	if err := h.db.First(&registration, record.RegistrationID).Error; err != nil {
		return nil, huma.Error404NotFound("Registration not found")
	}
	if registration.UserID != userID {
		return nil, huma.Error403Forbidden("This payment belongs to another registration")
	}

	// A replayed callback for a captured order must not add to
	// totalPaid or burn another coupon use.
	if record.Status == models.PaymentRecordCaptured {
		res := &VerifyPaymentResponse{}
		res.Body.Message = "Payment already verified"
		res.Body.Registration = registration
		return res, nil
	}

	if !payment.VerifySignature(input.Body.RazorpayOrderID, input.Body.RazorpayPaymentID, input.Body.RazorpaySignature, h.keySecret) {
		h.db.Model(&record).Updates(map[string]any{
			"status":         models.PaymentRecordFailed,
			"failure_reason": "signature mismatch",
		})
		if registration.PaymentStatus != models.PaymentStatusPaid {
			h.db.Model(&registration).Update("payment_status", models.PaymentStatusFailed)
		}
		return nil, huma.Error400BadRequest("Payment verification failed")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		record.PaymentID = input.Body.RazorpayPaymentID
		record.Status = models.PaymentRecordCaptured
		if err := tx.Save(&record).Error; err != nil {
			return err
		}

		registration.TotalPaid += record.Amount
		if registration.TotalPaid >= registration.TotalAmount {
			registration.PaymentStatus = models.PaymentStatusPaid
			if registration.CouponCode != "" {
				if err := tx.Model(&models.Coupon{}).Where("code = ?", registration.CouponCode).
					UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error; err != nil {
					return err
				}
			}
		}
		if err := tx.Save(&registration).Error; err != nil {
			return err
		}

		history := models.RegistrationHistory{
			RegistrationID:     registration.ID,
			UserID:             registration.UserID,
			RegistrationNumber: registration.RegistrationNumber,
			RegistrationFields: registration.RegistrationFields,
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to record payment: " + err.Error())
	}

	if h.notifier != nil {
		var user models.User
		if err := h.db.First(&user, registration.UserID).Error; err == nil {
			if err := h.notifier.NotifyPayment(user, registration, record.Amount); err != nil {
				log.Printf("Payment notification failed: %v", err)
			}
		}
	}

	res := &VerifyPaymentResponse{}
	res.Body.Message = "Payment verified"
	res.Body.Registration = registration
	return res, nil
}

type PaymentFailedRequest struct {
	auth.AuthInput
	Body struct {
		RazorpayOrderID string `json:"razorpay_order_id" required:"true"`
		Reason          string `json:"reason"`
	}
}

type PaymentFailedResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

// HandlePaymentFailed records a gateway-reported failure. Totals are
// never touched; the next attempt creates a fresh order.
func (h *PaymentHandler) HandlePaymentFailed(ctx context.Context, input *PaymentFailedRequest) (*PaymentFailedResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	var record models.PaymentRecord
	if err := h.db.Where("order_id = ?", input.Body.RazorpayOrderID).First(&record).Error; err != nil {
		return nil, huma.Error404NotFound("Payment order not found")
	}

	var registration models.Registration
	if err := h.db.First(&registration, record.RegistrationID).Error; err != nil {
		return nil, huma.Error404NotFound("Registration not found")
	}
	if registration.UserID != userID {
		return nil, huma.Error403Forbidden("This payment belongs to another registration")
	}

	reason := input.Body.Reason
	if reason == "" {
		reason = "reported failed by gateway"
	}
	if err := h.db.Model(&record).Updates(map[string]any{
		"status":         models.PaymentRecordFailed,
		"failure_reason": reason,
	}).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to record payment failure")
	}
	if registration.PaymentStatus != models.PaymentStatusPaid {
		h.db.Model(&registration).Update("payment_status", models.PaymentStatusFailed)
	}

	res := &PaymentFailedResponse{}
	res.Body.Message = "Payment failure recorded"
	return res, nil
}

package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/aoacon/portal-api/internal/auth"
	"github.com/aoacon/portal-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"
)

type ApplyCouponRequest struct {
	auth.AuthInput
	Body struct {
		CouponCode string `json:"couponCode" doc:"Coupon code to apply"`
	}
}

type ApplyCouponResponse struct {
	Body models.Registration
}

// HandleApplyCoupon attaches a coupon to the caller's registration and
// returns the whole updated record. Coupons discount the conference
// base only; re-application simply re-evaluates from scratch.
func (h *RegistrationHandler) HandleApplyCoupon(ctx context.Context, input *ApplyCouponRequest) (*ApplyCouponResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(input.Body.CouponCode))
	if code == "" {
		return nil, huma.Error400BadRequest("Enter a coupon code.")
	}

	var registration models.Registration
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&registration).Error; err != nil {
			return huma.Error404NotFound("Registration not found")
		}

		var coupon models.Coupon
		if err := tx.Where("code = ?", code).First(&coupon).Error; err != nil {
			return huma.Error400BadRequest("Invalid coupon code")
		}
		if !coupon.ValidAt(time.Now()) {
			return huma.Error400BadRequest("This coupon has expired or is no longer available")
		}

		registration.CouponCode = coupon.Code
		registration.CouponDiscount = coupon.DiscountOn(registration.PackageBase)
		registration.TotalAmount = registration.SubtotalWithGST + registration.ProcessingFee - registration.CouponDiscount

		if err := tx.Save(&registration).Error; err != nil {
			return err
		}
		return h.snapshot(tx, &registration)
	})
	if err != nil {
		if _, ok := err.(huma.StatusError); ok {
			return nil, err
		}
		return nil, huma.Error500InternalServerError("Failed to apply coupon: " + err.Error())
	}

	return &ApplyCouponResponse{Body: registration}, nil
}

type ValidateCouponRequest struct {
	auth.AuthInput
}

type ValidateCouponResponse struct {
	Body struct {
		CouponValid  bool                `json:"couponValid"`
		Registration models.Registration `json:"registration"`
	}
}

// HandleValidateCoupon re-checks the attached coupon right before
// payment. An invalid coupon is stripped and the totals recomputed so
// the client can show the updated amount instead of charging.
func (h *RegistrationHandler) HandleValidateCoupon(ctx context.Context, input *ValidateCouponRequest) (*ValidateCouponResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	var registration models.Registration
	valid := true
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&registration).Error; err != nil {
			return huma.Error404NotFound("Registration not found")
		}
		if registration.CouponCode == "" {
			return nil
		}

		var coupon models.Coupon
		lookupErr := tx.Where("code = ?", registration.CouponCode).First(&coupon).Error
		if lookupErr != nil || !coupon.ValidAt(time.Now()) {
			valid = false
			registration.CouponCode = ""
			registration.CouponDiscount = 0
		} else {
			registration.CouponDiscount = coupon.DiscountOn(registration.PackageBase)
		}
		registration.TotalAmount = registration.SubtotalWithGST + registration.ProcessingFee - registration.CouponDiscount

		if err := tx.Save(&registration).Error; err != nil {
			return err
		}
		return h.snapshot(tx, &registration)
	})
	if err != nil {
		if _, ok := err.(huma.StatusError); ok {
			return nil, err
		}
		return nil, huma.Error500InternalServerError("Failed to validate coupon: " + err.Error())
	}

	res := &ValidateCouponResponse{}
	res.Body.CouponValid = valid
	res.Body.Registration = registration
	return res, nil
}

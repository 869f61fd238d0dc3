package handlers

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/aoacon/portal-api/internal/auth"
	"github.com/aoacon/portal-api/internal/models"
	"github.com/aoacon/portal-api/internal/notifier"
	"github.com/aoacon/portal-api/internal/pricing"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"
)

type RegistrationHandler struct {
	db          *gorm.DB
	notifier    notifier.Notifier
	authHandler *auth.AuthHandler
}

func NewRegistrationHandler(db *gorm.DB, notifier notifier.Notifier, authHandler *auth.AuthHandler) *RegistrationHandler {
	return &RegistrationHandler{db: db, notifier: notifier, authHandler: authHandler}
}

type PriceInfo struct {
	PriceWithoutGST int64 `json:"priceWithoutGST"`
}

type PricingResponse struct {
	Body struct {
		Base struct {
			Conference PriceInfo `json:"conference"`
		} `json:"base"`
		AddOns struct {
			Workshop       PriceInfo `json:"workshop"`
			AoaCourse      PriceInfo `json:"aoaCourse"`
			LifeMembership PriceInfo `json:"lifeMembership"`
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
}

type GetPricingRequest struct {
	auth.AuthInput
}

// HandleGetPricing returns the caller's pricing snapshot for the
// current booking phase. Ephemeral: clients re-fetch per session.
func (h *RegistrationHandler) HandleGetPricing(ctx context.Context, input *GetPricingRequest) (*PricingResponse, error) {
	user, err := h.authHandler.AuthorizeUser(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	count, err := h.aoaCourseCount(h.db, 0)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load course seats")
	}

	quote, err := pricing.QuoteFor(user.Role, time.Now(), count)
	if err != nil {
		return nil, huma.Error400BadRequest("No pricing available for your category")
	}

	res := &PricingResponse{}
	res.Body.Base.Conference = PriceInfo{PriceWithoutGST: quote.ConferenceBase}
	res.Body.AddOns.Workshop = PriceInfo{PriceWithoutGST: quote.WorkshopAddOn}
	res.Body.AddOns.AoaCourse = PriceInfo{PriceWithoutGST: quote.AoaCourseBase}
	res.Body.AddOns.LifeMembership = PriceInfo{PriceWithoutGST: quote.LifeMembershipBase}
	res.Body.BookingPhase = quote.BookingPhase
	res.Body.GSTPercent = quote.GSTPercent
	res.Body.ProcessingFeePercent = quote.ProcessingFeePct
	res.Body.Workshops = pricing.Workshops
	res.Body.Meta.AoaCourseFull = quote.AoaCourseFull
	res.Body.Meta.AoaCourseCount = quote.AoaCourseCount
	res.Body.Meta.AoaCourseCapacity = quote.AoaCourseCapacity
	return res, nil
}

type GetMyRegistrationRequest struct {
	auth.AuthInput
}

type MyRegistrationResponse struct {
	Body models.Registration
}

func (h *RegistrationHandler) HandleGetMyRegistration(ctx context.Context, input *GetMyRegistrationRequest) (*MyRegistrationResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	var registration models.Registration
	if err := h.db.Where("user_id = ?", userID).First(&registration).Error; err != nil {
		return nil, huma.Error404NotFound("Registration not found")
	}
	return &MyRegistrationResponse{Body: registration}, nil
}

type CreateRegistrationRequest struct {
	auth.AuthInput
	RawBody multipart.Form
}

type CreateRegistrationResponse struct {
	Body struct {
		Message      string              `json:"message"`
		Registration models.Registration `json:"registration"`
	}
}

// HandleCreateRegistration creates or edits the caller's registration.
// The booking phase is frozen at first submission; money columns are
// recomputed server-side on every write.
func (h *RegistrationHandler) HandleCreateRegistration(ctx context.Context, input *CreateRegistrationRequest) (*CreateRegistrationResponse, error) {
	user, err := h.authHandler.AuthorizeUser(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	sel, err := parseSelection(input.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	var registration models.Registration
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.FirstOrInit(&registration, models.Registration{UserID: user.ID}).Error; err != nil {
			return err
		}

		phase := registration.BookingPhase
		if phase == "" {
			phase = pricing.PhaseAt(time.Now())
		}

		count, err := h.aoaCourseCount(tx, user.ID)
		if err != nil {
			return err
		}

		quote, err := pricing.QuoteForPhase(user.Role, phase, count)
		if err != nil {
			return huma.Error400BadRequest("No pricing available for your category")
		}

		if registration.PaymentStatus == models.PaymentStatusPaid {
			if err := checkLockedAddOns(&registration, sel); err != nil {
				return err
			}
		}

		if err := pricing.Validate(quote, sel); err != nil {
			return huma.Error400BadRequest(err.Error())
		}

		// Carry the coupon across edits only while it still holds.
		discount := int64(0)
		couponCode := registration.CouponCode
		if couponCode != "" {
			var coupon models.Coupon
			if err := tx.Where("code = ?", couponCode).First(&coupon).Error; err != nil || !coupon.ValidAt(time.Now()) {
				couponCode = ""
			} else {
				discount = coupon.DiscountOn(quote.ConferenceBase)
			}
		}

		b := pricing.Compute(quote, sel, discount)

		isNew := registration.ID == 0
		totalPaid := registration.TotalPaid
		status := registration.PaymentStatus
		if isNew {
			status = models.PaymentStatusPending
			seq, err := h.nextRegistrationSeq(tx)
			if err != nil {
				return err
			}
			registration.RegistrationSeq = seq
			registration.RegistrationNumber = fmt.Sprintf("AOACON-%04d", seq)
		}

		registration.RegistrationFields = models.RegistrationFields{
			AddWorkshop:         sel.AddWorkshop,
			SelectedWorkshop:    sel.SelectedWorkshop,
			AddAoaCourse:        sel.AddAoaCourse,
			AddLifeMembership:   sel.AddLifeMembership,
			AccompanyingPersons: sel.AccompanyingPersons,
			PackageBase:         b.PackageBase,
			WorkshopAddOn:       b.WorkshopAddOn,
			AoaCourseBase:       b.AoaCourseBase,
			LifeMembershipBase:  b.LifeMembershipBase,
			AccompanyingBase:    b.AccompanyingBase,
			TotalBase:           b.TotalBase,
			TotalGST:            b.TotalGST,
			SubtotalWithGST:     b.SubtotalWithGST,
			ProcessingFee:       b.ProcessingFee,
			CouponCode:          couponCode,
			CouponDiscount:      b.CouponDiscount,
			TotalAmount:         b.TotalAmount,
			TotalPaid:           totalPaid,
			PaymentStatus:       status,
			BookingPhase:        phase,
		}

		if err := tx.Save(&registration).Error; err != nil {
			return err
		}

		return h.snapshot(tx, &registration)
	})
	if err != nil {
		if _, ok := err.(huma.StatusError); ok {
			return nil, err
		}
		return nil, huma.Error500InternalServerError("Failed to save registration: " + err.Error())
	}

	if h.notifier != nil {
		if err := h.notifier.NotifyRegistration(*user, registration); err != nil {
			log.Printf("Registration notification failed: %v", err)
		}
	}

	res := &CreateRegistrationResponse{}
	res.Body.Message = "Registration saved"
	res.Body.Registration = registration
	return res, nil
}

// snapshot appends the audit-trail row for a registration write. Must
// run inside the same transaction.
func (h *RegistrationHandler) snapshot(tx *gorm.DB, registration *models.Registration) error {
	history := models.RegistrationHistory{
		RegistrationID:     registration.ID,
		UserID:             registration.UserID,
		RegistrationNumber: registration.RegistrationNumber,
		RegistrationFields: registration.RegistrationFields,
	}
	return tx.Create(&history).Error
}

func (h *RegistrationHandler) aoaCourseCount(tx *gorm.DB, excludeUserID uint) (int, error) {
	var count int64
	q := tx.Model(&models.Registration{}).Where("add_aoa_course = ?", true)
	if excludeUserID != 0 {
		q = q.Where("user_id <> ?", excludeUserID)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// nextRegistrationSeq hands out the next registration number, never
// below the highest number already in use.
func (h *RegistrationHandler) nextRegistrationSeq(tx *gorm.DB) (int64, error) {
	var counter models.Counter
	if err := tx.FirstOrInit(&counter, models.Counter{Name: models.RegistrationNumberCounter}).Error; err != nil {
		return 0, err
	}

	var maxUsed int64
	if err := tx.Model(&models.Registration{}).Select("COALESCE(MAX(registration_seq), 0)").Scan(&maxUsed).Error; err != nil {
		return 0, err
	}

	seq := counter.Seq + 1
	if maxUsed >= seq {
		seq = maxUsed + 1
	}
	counter.Seq = seq
	if err := tx.Save(&counter).Error; err != nil {
		return 0, err
	}
	return seq, nil
}

func checkLockedAddOns(registration *models.Registration, sel pricing.Selection) error {
	if registration.AddWorkshop && !sel.AddWorkshop {
		return huma.Error400BadRequest("The workshop add-on is already paid for and cannot be removed")
	}
	if registration.AddAoaCourse && !sel.AddAoaCourse {
		return huma.Error400BadRequest("The AOA Certified Course is already paid for and cannot be removed")
	}
	if registration.AddLifeMembership && !sel.AddLifeMembership {
		return huma.Error400BadRequest("AOA Life Membership is already paid for and cannot be removed")
	}
	if sel.AccompanyingPersons < registration.AccompanyingPersons {
		return huma.Error400BadRequest("Accompanying persons already paid for cannot be removed")
	}
	return nil
}

func parseSelection(form multipart.Form) (pricing.Selection, error) {
	sel := pricing.Selection{
		AddWorkshop:       formBool(form, "addWorkshop"),
		AddAoaCourse:      formBool(form, "addAoaCourse"),
		AddLifeMembership: formBool(form, "addLifeMembership"),
		SelectedWorkshop:  formValue(form, "selectedWorkshop"),
	}
	if raw := formValue(form, "accompanyingPersons"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return sel, fmt.Errorf("accompanyingPersons must be a number")
		}
		sel.AccompanyingPersons = n
	}
	return sel, nil
}

func formValue(form multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func formBool(form multipart.Form, key string) bool {
	v, _ := strconv.ParseBool(formValue(form, key))
	return v
}

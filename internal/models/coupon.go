package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	CouponDiscountPercent = "PERCENT"
	CouponDiscountFixed   = "FIXED"
)

// Coupon discounts the conference base price only. Validity and the
// discount amount are decided here, never client-side.
type Coupon struct {
	gorm.Model
	Code          string     `json:"code" gorm:"uniqueIndex"`
	DiscountType  string     `json:"discountType"`
	DiscountValue int64      `json:"discountValue"`
	MaxUses       int        `json:"maxUses"`
	UsedCount     int        `json:"usedCount"`
	ValidFrom     *time.Time `json:"validFrom"`
	ValidUntil    *time.Time `json:"validUntil"`
	Active        bool       `json:"active"`
}

// ValidAt reports whether the coupon can be applied at t.
func (c *Coupon) ValidAt(t time.Time) bool {
	if !c.Active {
		return false
	}
	if c.ValidFrom != nil && t.Before(*c.ValidFrom) {
		return false
	}
	if c.ValidUntil != nil && t.After(*c.ValidUntil) {
		return false
	}
	if c.MaxUses > 0 && c.UsedCount >= c.MaxUses {
		return false
	}
	return true
}

// DiscountOn computes the rupee discount against the conference base,
// clamped so it never exceeds the base itself.
func (c *Coupon) DiscountOn(conferenceBase int64) int64 {
	var discount int64
	switch c.DiscountType {
	case CouponDiscountPercent:
		discount = conferenceBase * c.DiscountValue / 100
	case CouponDiscountFixed:
		discount = c.DiscountValue
	}
	if discount > conferenceBase {
		discount = conferenceBase
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

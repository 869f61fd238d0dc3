// Package pricing is the single authority for conference fee
// computation. The server persists its output; clients use the same
// functions for optimistic previews so the two can never drift.
package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Tax and fee rates applied to every registration.
var (
	GSTRate           = decimal.NewFromFloat(0.18)
	ProcessingFeeRate = decimal.NewFromFloat(0.0165)
)

var (
	ErrWorkshopRequired    = errors.New("please select a workshop")
	ErrUnknownWorkshop     = errors.New("unknown workshop selection")
	ErrWorkshopUnavailable = errors.New("workshop registration is not available in this phase")
	ErrCourseFull          = errors.New("AOA Certified Course seats are full")
	ErrCourseUnavailable   = errors.New("AOA Certified Course is not available for this category or phase")
	ErrExclusiveAddOns     = errors.New("choose either Workshop or AOA Certified Course")
	ErrAccompanyingRange   = errors.New("accompanying persons must be between 0 and 10")
)

// Quote is the ephemeral pricing snapshot handed to clients. Pre-GST
// rupees throughout; superseded by the next fetch, never persisted.
type Quote struct {
	BookingPhase       string  `json:"bookingPhase"`
	Role               string  `json:"role"`
	ConferenceBase     int64   `json:"conferenceBase"`
	WorkshopAddOn      int64   `json:"workshopAddOn"`
	AoaCourseBase      int64   `json:"aoaCourseBase"`
	LifeMembershipBase int64   `json:"lifeMembershipBase"`
	GSTPercent         float64 `json:"gstPercent"`
	ProcessingFeePct   float64 `json:"processingFeePercent"`
	AoaCourseFull      bool    `json:"aoaCourseFull"`
	AoaCourseCount     int     `json:"aoaCourseCount"`
	AoaCourseCapacity  int     `json:"aoaCourseCapacity"`
}

// QuoteFor builds the pricing snapshot for a role at time t.
// aoaCourseCount is the live number of course registrations.
func QuoteFor(role string, t time.Time, aoaCourseCount int) (Quote, error) {
	return QuoteForPhase(role, PhaseAt(t), aoaCourseCount)
}

// QuoteForPhase builds a snapshot for an explicit phase. Used when a
// registration's booking phase was frozen at first submission.
func QuoteForPhase(role, phase string, aoaCourseCount int) (Quote, error) {
	f, ok := feeMatrix[phase][role]
	if !ok {
		return Quote{}, fmt.Errorf("no fee schedule for role %q", role)
	}
	gst, _ := GSTRate.Mul(decimal.NewFromInt(100)).Float64()
	fee, _ := ProcessingFeeRate.Mul(decimal.NewFromInt(100)).Float64()
	return Quote{
		BookingPhase:       phase,
		Role:               role,
		ConferenceBase:     f.conference,
		WorkshopAddOn:      f.workshop,
		AoaCourseBase:      f.aoaCourse,
		LifeMembershipBase: f.lifeMembership,
		GSTPercent:         gst,
		ProcessingFeePct:   fee,
		AoaCourseFull:      aoaCourseCount >= AOACourseCapacity,
		AoaCourseCount:     aoaCourseCount,
		AoaCourseCapacity:  AOACourseCapacity,
	}, nil
}

// Selection is the attendee's draft choices.
type Selection struct {
	AddWorkshop         bool
	SelectedWorkshop    string
	AddAoaCourse        bool
	AddLifeMembership   bool
	AccompanyingPersons int
}

// Breakdown is the full cost derivation for one selection. All values
// whole rupees. TotalAmount = TotalBase + TotalGST + ProcessingFee −
// CouponDiscount.
type Breakdown struct {
	PackageBase        int64
	WorkshopAddOn      int64
	AoaCourseBase      int64
	LifeMembershipBase int64
	AccompanyingBase   int64
	TotalBase          int64
	TotalGST           int64
	SubtotalWithGST    int64
	ProcessingFee      int64
	CouponDiscount     int64
	TotalAmount        int64
}

// Compute derives the cost breakdown. couponDiscount is already
// validated and clamped by the caller (it applies to the conference
// base only and is subtracted after fees, as published).
func Compute(q Quote, sel Selection, couponDiscount int64) Breakdown {
	b := Breakdown{PackageBase: q.ConferenceBase}
	if sel.AddWorkshop {
		b.WorkshopAddOn = q.WorkshopAddOn
	}
	if sel.AddAoaCourse {
		b.AoaCourseBase = q.AoaCourseBase
	}
	if sel.AddLifeMembership {
		b.LifeMembershipBase = q.LifeMembershipBase
	}
	b.AccompanyingBase = int64(sel.AccompanyingPersons) * AccompanyingPersonFee
	b.TotalBase = b.PackageBase + b.WorkshopAddOn + b.AoaCourseBase + b.LifeMembershipBase + b.AccompanyingBase
	b.TotalGST = roundRate(b.TotalBase, GSTRate)
	b.SubtotalWithGST = b.TotalBase + b.TotalGST
	b.ProcessingFee = roundRate(b.SubtotalWithGST, ProcessingFeeRate)
	if couponDiscount > b.PackageBase {
		couponDiscount = b.PackageBase
	}
	if couponDiscount < 0 {
		couponDiscount = 0
	}
	b.CouponDiscount = couponDiscount
	b.TotalAmount = b.SubtotalWithGST + b.ProcessingFee - b.CouponDiscount
	return b
}

// BalanceDue is the remaining payable amount, never negative.
func BalanceDue(totalAmount, totalPaid int64) int64 {
	if due := totalAmount - totalPaid; due > 0 {
		return due
	}
	return 0
}

// Validate rejects a selection before any persistence or network call.
func Validate(q Quote, sel Selection) error {
	if sel.AddWorkshop {
		if q.WorkshopAddOn <= 0 {
			return ErrWorkshopUnavailable
		}
		if sel.SelectedWorkshop == "" {
			return ErrWorkshopRequired
		}
		if _, ok := WorkshopByID(sel.SelectedWorkshop); !ok {
			return ErrUnknownWorkshop
		}
	}
	if sel.AddAoaCourse {
		if q.AoaCourseBase <= 0 {
			return ErrCourseUnavailable
		}
		if q.AoaCourseFull {
			return ErrCourseFull
		}
	}
	if q.Role == RoleAOA && sel.AddWorkshop && sel.AddAoaCourse {
		return ErrExclusiveAddOns
	}
	if sel.AccompanyingPersons < 0 || sel.AccompanyingPersons > MaxAccompanyingPersons {
		return ErrAccompanyingRange
	}
	return nil
}

// roundRate multiplies a rupee amount by a rate and rounds half-up to
// whole rupees.
func roundRate(amount int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(rate).Round(0).IntPart()
}

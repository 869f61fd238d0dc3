package models

import (
	"gorm.io/gorm"
)

const (
	PaymentStatusPending = "PENDING"
	PaymentStatusPaid    = "PAID"
	PaymentStatusFailed  = "FAILED"
)

// RegistrationFields holds the attendee's selections and the
// server-computed money columns. Embedded in both the live registration
// and its history snapshots.
type RegistrationFields struct {
	AddWorkshop         bool   `json:"addWorkshop"`
	SelectedWorkshop    string `json:"selectedWorkshop"`
	AddAoaCourse        bool   `json:"addAoaCourse"`
	AddLifeMembership   bool   `json:"addLifeMembership"`
	AccompanyingPersons int    `json:"accompanyingPersons"`

	PackageBase        int64 `json:"packageBase"`
	WorkshopAddOn      int64 `json:"workshopAddOn"`
	AoaCourseBase      int64 `json:"aoaCourseBase"`
	LifeMembershipBase int64 `json:"lifeMembershipBase"`
	AccompanyingBase   int64 `json:"accompanyingBase"`
	TotalBase          int64 `json:"totalBase"`
	TotalGST           int64 `json:"totalGST"`
	SubtotalWithGST    int64 `json:"subtotalWithGST"`
	ProcessingFee      int64 `json:"processingFee"`
	CouponCode         string `json:"couponCode"`
	CouponDiscount     int64  `json:"couponDiscount"`
	TotalAmount        int64  `json:"totalAmount"`
	TotalPaid          int64  `json:"totalPaid"`

	PaymentStatus string `json:"paymentStatus"`
	BookingPhase  string `json:"bookingPhase"`
}

type Registration struct {
	gorm.Model
	UserID             uint   `json:"userId" gorm:"uniqueIndex"`
	User               User   `json:"-" gorm:"foreignKey:UserID"`
	RegistrationNumber string `json:"registrationNumber" gorm:"uniqueIndex"`
	RegistrationSeq    int64  `json:"-" gorm:"index"`
	RegistrationFields `gorm:"embedded"`
}

// BalanceDue is the remaining payable amount, never negative.
func (r *Registration) BalanceDue() int64 {
	due := r.TotalAmount - r.TotalPaid
	if due < 0 {
		return 0
	}
	return due
}

package models

import (
	"gorm.io/gorm"
)

const (
	PaymentRecordCreated  = "CREATED"
	PaymentRecordCaptured = "CAPTURED"
	PaymentRecordFailed   = "FAILED"
)

// PaymentRecord tracks one gateway order. Every payment attempt creates
// a fresh record; retries are never reused.
type PaymentRecord struct {
	gorm.Model
	RegistrationID uint         `json:"registration_id"`
	Registration   Registration `json:"-"`
	Receipt        string       `json:"receipt" gorm:"uniqueIndex"`
	OrderID        string       `json:"order_id" gorm:"uniqueIndex"`
	PaymentID      string       `json:"payment_id"`
	Amount         int64        `json:"amount"`
	Currency       string       `json:"currency"`
	Status         string       `json:"status"`
	FailureReason  string       `json:"failure_reason"`
}

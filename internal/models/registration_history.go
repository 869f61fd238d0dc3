package models

import (
	"gorm.io/gorm"
)

// RegistrationHistory is an append-only snapshot written on every
// registration create or edit, in the same transaction as the upsert.
type RegistrationHistory struct {
	gorm.Model
	RegistrationID     uint   `json:"registration_id"`
	UserID             uint   `json:"user_id"`
	RegistrationNumber string `json:"registration_number"`
	RegistrationFields `gorm:"embedded"`
}

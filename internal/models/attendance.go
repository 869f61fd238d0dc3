package models

import (
	"gorm.io/gorm"
)

// AttendancePass is the scannable code issued after payment. One per
// registration; re-generation returns the existing pass.
type AttendancePass struct {
	gorm.Model
	RegistrationID uint   `json:"registration_id" gorm:"uniqueIndex"`
	UserID         uint   `json:"user_id"`
	Code           string `json:"code" gorm:"uniqueIndex"`
}

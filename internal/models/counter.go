package models

import (
	"gorm.io/gorm"
)

const RegistrationNumberCounter = "registration-number"

// Counter backs server-assigned sequences, currently only the
// registration number. Seq is the last value handed out.
type Counter struct {
	gorm.Model
	Name string `json:"name" gorm:"uniqueIndex"`
	Seq  int64  `json:"seq"`
}

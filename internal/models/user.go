package models

import (
	"gorm.io/gorm"
)

// User roles. AOA/NON_AOA/PGS are attendee categories, ADMIN is back-office.
const (
	RoleAOA    = "AOA"
	RoleNonAOA = "NON_AOA"
	RolePGS    = "PGS"
	RoleAdmin  = "ADMIN"
)

type User struct {
	gorm.Model
	Name         string `json:"name"`
	Email        string `json:"email" gorm:"uniqueIndex"`
	Phone        string `json:"phone"`
	Role         string `json:"role"`
	MembershipID string `json:"membershipId"`
	PasswordHash string `json:"-"`
	GoogleID     string `json:"-" gorm:"index"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

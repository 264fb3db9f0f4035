package model

import (
	"fmt"
	"time"
)

// Role is the closed set of personnel categories a user can belong to.
type Role string

const (
	RoleCivilianEmployee  Role = "Civilian Employee"
	RoleMilitaryPersonnel Role = "Military Personnel"
	RoleContractor        Role = "Contractor"
)

// Roles lists every accepted role in display order.
var Roles = []Role{RoleCivilianEmployee, RoleMilitaryPersonnel, RoleContractor}

// ParseRole converts raw input into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User represents a registered member of the organization.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Username     string     `json:"username" gorm:"uniqueIndex;size:150;not null"`
	Email        string     `json:"-" gorm:"uniqueIndex;size:255;not null"`
	IdentityCode string     `json:"identity_code" gorm:"uniqueIndex;size:100;not null"`
	FullName     string     `json:"full_name" gorm:"size:255;not null"`
	Rank         string     `json:"rank" gorm:"size:100;not null"`
	Unit         string     `json:"unit" gorm:"size:100;not null"`
	Role         Role       `json:"-" gorm:"size:50;not null;default:'Civilian Employee'"`
	PhoneNumber  *string    `json:"-" gorm:"size:20"`
	BirthDate    *time.Time `json:"-" gorm:"type:date"`
	IDType       *string    `json:"-" gorm:"size:100"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
}

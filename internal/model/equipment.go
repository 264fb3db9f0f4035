package model

import (
	"fmt"
	"time"
)

// Category classifies a piece of equipment.
type Category string

const (
	CategoryGun       Category = "gun"
	CategoryAmmo      Category = "ammo"
	CategoryExplosive Category = "explosive"
)

// ParseCategory converts raw input into a Category, rejecting unknown values.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryGun, CategoryAmmo, CategoryExplosive:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// EquipmentStatus is the checkout state of an item.
type EquipmentStatus string

const (
	StatusAvailable EquipmentStatus = "available"
	StatusWithdrawn EquipmentStatus = "withdrawn"
)

// Equipment is a physical item tracked by its QR token.
// Status is withdrawn exactly when AssignedTo is set.
type Equipment struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	Name       string          `json:"name" gorm:"size:100;not null"`
	Category   Category        `json:"category" gorm:"size:50;not null;index"`
	QRToken    string          `json:"qr_token" gorm:"uniqueIndex;size:100;not null"`
	Status     EquipmentStatus `json:"status" gorm:"size:20;not null;default:'available';index"`
	AssignedTo *uint           `json:"assigned_to" gorm:"index"`
	CreatedAt  time.Time       `json:"-"`
	UpdatedAt  time.Time       `json:"-"`

	// Relations
	Holder *User `json:"-" gorm:"foreignKey:AssignedTo;constraint:OnDelete:SET NULL"`
}

// TableName keeps the table name singular like the registry it models.
func (Equipment) TableName() string {
	return "equipment"
}

// IsHeldBy reports whether the item is currently assigned to userID.
func (e *Equipment) IsHeldBy(userID uint) bool {
	return e.AssignedTo != nil && *e.AssignedTo == userID
}

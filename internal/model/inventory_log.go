package model

import "time"

// LogAction is the kind of transition an audit entry records.
type LogAction string

const (
	ActionWithdraw LogAction = "withdraw"
	ActionReturn   LogAction = "return"
)

// InventoryLogEntry is an immutable audit record of a withdraw or return.
// Entries are only written as part of a successful scan.
type InventoryLogEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ItemID    uint      `json:"-" gorm:"not null;index"`
	UserID    uint      `json:"-" gorm:"not null;index"`
	Action    LogAction `json:"action" gorm:"size:20;not null"`
	Timestamp time.Time `json:"timestamp" gorm:"autoCreateTime;not null;index"`
	Notes     string    `json:"notes" gorm:"type:text"`

	// Relations
	Item *Equipment `json:"item,omitempty" gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
	User *User      `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName returns the audit table name.
func (InventoryLogEntry) TableName() string {
	return "inventory_logs"
}

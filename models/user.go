package models

import (
	"time"
)

// User owns every ledger row, goal and security alert; removing a user removes them too.
type User struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Name           string          `gorm:"size:120;not null"`
	Email          string          `gorm:"size:255;not null;uniqueIndex"` // stored trimmed and lower-cased
	HashedPassword []byte          `gorm:"not null"`
	Transactions   []Transaction   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Goals          []Goal          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	SecurityAlerts []SecurityAlert `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

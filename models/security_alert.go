package models

import "time"

// AlertFailedLogin is recorded when a password check fails for an existing account.
const AlertFailedLogin = "failed_login"

// SecurityAlert is append-only; resolving it is the only change allowed.
type SecurityAlert struct {
	ID         uint `gorm:"primaryKey"`
	CreatedAt  time.Time
	UserID     uint       `gorm:"index;not null"`
	AlertType  string     `gorm:"size:50;not null"`
	Message    string     `gorm:"size:255;not null"`
	Timestamp  time.Time  `gorm:"index;not null"`
	Resolved   bool       `gorm:"default:false;not null"`
	ResolvedAt *time.Time
}

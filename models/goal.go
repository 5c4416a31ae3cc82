package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalPaused    GoalStatus = "paused"
	GoalCompleted GoalStatus = "completed"
)

func (s GoalStatus) Valid() bool {
	return s == GoalActive || s == GoalPaused || s == GoalCompleted
}

// DefaultGoalIcon is used when a goal is created without an icon.
const DefaultGoalIcon = "🎯"

// Goal is a savings target. CurrentAmount may exceed TargetAmount.
type Goal struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	UserID        uint            `gorm:"index;not null"`
	Name          string          `gorm:"size:120;not null"`
	Description   string          `gorm:"size:255"`
	TargetAmount  decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CurrentAmount decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Status        GoalStatus      `gorm:"size:16;not null;default:active"`
	Icon          string          `gorm:"size:50"`
}

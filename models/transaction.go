package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind discriminates ledger rows.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

func (k Kind) Valid() bool { return k == KindIncome || k == KindExpense }

type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
)

func (s Status) Valid() bool { return s == StatusCompleted || s == StatusPending }

// Transaction is a single ledger row. Expenses are transactions of KindExpense.
type Transaction struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      uint            `gorm:"index:idx_transactions_user_kind;not null"`
	Kind        Kind            `gorm:"size:16;index:idx_transactions_user_kind;not null"`
	Category    string          `gorm:"size:64"`
	Description string          `gorm:"size:255;not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null"` // never negative
	Date        time.Time       `gorm:"index;not null"`
	Status      Status          `gorm:"size:16;not null;default:completed"`
}

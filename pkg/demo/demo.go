// Package demo seeds the sample account used for local development and walkthroughs.
package demo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gryffintwin/models"
	"gryffintwin/pkg/apperr"
	"gryffintwin/pkg/identity"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	Email    = "demo@example.com"
	Password = "demo123"
)

// Seed creates the demo account with sample income, expenses and goals. It does nothing when
// the demo account already exists.
func Seed(ctx context.Context, db *gorm.DB, users *identity.Store, now time.Time) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Printf("demo user %s already present, skipping seed", Email)
		return nil
	}
	user, err := users.Register(ctx, "Demo User", Email, Password)
	if err != nil {
		if errors.Is(err, identity.ErrDuplicateEmail) {
			return nil
		}
		return err
	}
	rows, goals := Data(user.ID, now.UTC())
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("seed transactions: %w", err)
		}
		if err := tx.Create(&goals).Error; err != nil {
			return fmt.Errorf("seed goals: %w", err)
		}
		return nil
	})
	if err != nil {
		return apperr.Internal(err)
	}
	log.Printf("seeded demo user: email=%s password=%s (%d transactions, %d goals)", Email, Password, len(rows), len(goals))
	return nil
}

// Data builds the sample ledger rows and goals for userID, dated relative to now.
func Data(userID uint, now time.Time) ([]models.Transaction, []models.Goal) {
	rows := []models.Transaction{
		{UserID: userID, Kind: models.KindIncome, Category: "Salary", Description: "Monthly Salary", Amount: decimal.NewFromInt(5000), Date: now.AddDate(0, 0, -2), Status: models.StatusCompleted},
		{UserID: userID, Kind: models.KindIncome, Category: "Freelance", Description: "Freelance Project", Amount: decimal.NewFromInt(1500), Date: now.AddDate(0, 0, -10), Status: models.StatusCompleted},
		{UserID: userID, Kind: models.KindIncome, Category: "Investments", Description: "Dividend Income", Amount: decimal.NewFromInt(200), Date: now.AddDate(0, 0, -15), Status: models.StatusCompleted},
	}
	categories := []string{"Food", "Transport", "Entertainment", "Shopping", "Utilities"}
	descriptions := []string{
		"Grocery Store", "Gas Station", "Netflix Subscription", "Amazon Purchase", "Electric Bill",
		"Restaurant", "Uber Ride", "Movie Tickets", "Clothing Store", "Internet Bill",
	}
	for i := 0; i < 20; i++ {
		status := models.StatusCompleted
		if i%3 == 0 {
			status = models.StatusPending
		}
		rows = append(rows, models.Transaction{
			UserID:      userID,
			Kind:        models.KindExpense,
			Category:    categories[i%len(categories)],
			Description: descriptions[i%len(descriptions)],
			Amount:      decimal.NewFromFloat(50 + float64(i)*15.5),
			Date:        now.AddDate(0, 0, -i),
			Status:      status,
		})
	}
	goals := []models.Goal{
		{UserID: userID, Name: "Emergency Fund", Description: "3 months of expenses", TargetAmount: decimal.NewFromInt(10000), CurrentAmount: decimal.NewFromInt(8500), Status: models.GoalActive, Icon: "🏦"},
		{UserID: userID, Name: "New Car", Description: "Tesla Model 3", TargetAmount: decimal.NewFromInt(40000), CurrentAmount: decimal.NewFromInt(15000), Status: models.GoalActive, Icon: "🚗"},
		{UserID: userID, Name: "Holiday Gift", Description: "For family", TargetAmount: decimal.NewFromInt(500), CurrentAmount: decimal.NewFromInt(500), Status: models.GoalCompleted, Icon: "🎁"},
	}
	return rows, goals
}

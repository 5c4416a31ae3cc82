package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gryffintwin/models"
	"gryffintwin/pkg/apperr"

	"gorm.io/gorm"
)

// ledger reads and writes a user's transactions, goals and security alerts. Every query is scoped
// by user id, so a row owned by someone else is indistinguishable from a missing one.
type ledger struct {
	db  *gorm.DB
	now func() time.Time
}

func newLedger(db *gorm.DB, now func() time.Time) *ledger {
	return &ledger{db: db, now: now}
}

func label(kind models.Kind) string {
	if kind == models.KindExpense {
		return "expense"
	}
	return "transaction"
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(what)
	}
	return apperr.Internal(fmt.Errorf("load %s: %w", what, err))
}

// scoped narrows q to the rows of userID, and to kind unless it is empty.
func scoped(q *gorm.DB, userID uint, kind models.Kind) *gorm.DB {
	q = q.Where("user_id = ?", userID)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	return q
}

func (l *ledger) transactions(ctx context.Context, userID uint, kind models.Kind) ([]models.Transaction, error) {
	var rows []models.Transaction
	if err := scoped(l.db.WithContext(ctx), userID, kind).Order("id").Find(&rows).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("list transactions: %w", err))
	}
	return rows, nil
}

func (l *ledger) transaction(ctx context.Context, userID, id uint, kind models.Kind) (models.Transaction, error) {
	var t models.Transaction
	if err := scoped(l.db.WithContext(ctx), userID, kind).Where("id = ?", id).First(&t).Error; err != nil {
		return models.Transaction{}, notFoundOr(err, label(kind))
	}
	return t, nil
}

func (l *ledger) createTransaction(ctx context.Context, t *models.Transaction) error {
	if err := l.db.WithContext(ctx).Create(t).Error; err != nil {
		return apperr.Internal(fmt.Errorf("create %s: %w", label(t.Kind), err))
	}
	return nil
}

// updateTransaction loads the row, lets apply change it and saves it, all in one database transaction.
// An error from apply aborts the update unchanged.
func (l *ledger) updateTransaction(ctx context.Context, userID, id uint, kind models.Kind, apply func(*models.Transaction) error) (models.Transaction, error) {
	var t models.Transaction
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := scoped(tx, userID, kind).Where("id = ?", id).First(&t).Error; err != nil {
			return notFoundOr(err, label(kind))
		}
		if err := apply(&t); err != nil {
			return err
		}
		if err := tx.Save(&t).Error; err != nil {
			return apperr.Internal(fmt.Errorf("save %s: %w", label(kind), err))
		}
		return nil
	})
	if err != nil {
		return models.Transaction{}, err
	}
	return t, nil
}

func (l *ledger) deleteTransaction(ctx context.Context, userID, id uint, kind models.Kind) error {
	res := scoped(l.db.WithContext(ctx), userID, kind).Where("id = ?", id).Delete(&models.Transaction{})
	if res.Error != nil {
		return apperr.Internal(fmt.Errorf("delete %s: %w", label(kind), res.Error))
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(label(kind))
	}
	return nil
}

func (l *ledger) goals(ctx context.Context, userID uint) ([]models.Goal, error) {
	var goals []models.Goal
	if err := l.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&goals).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("list goals: %w", err))
	}
	return goals, nil
}

func (l *ledger) goal(ctx context.Context, userID, id uint) (models.Goal, error) {
	var g models.Goal
	if err := l.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&g).Error; err != nil {
		return models.Goal{}, notFoundOr(err, "goal")
	}
	return g, nil
}

func (l *ledger) createGoal(ctx context.Context, g *models.Goal) error {
	if err := l.db.WithContext(ctx).Create(g).Error; err != nil {
		return apperr.Internal(fmt.Errorf("create goal: %w", err))
	}
	return nil
}

func (l *ledger) updateGoal(ctx context.Context, userID, id uint, apply func(*models.Goal) error) (models.Goal, error) {
	var g models.Goal
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&g).Error; err != nil {
			return notFoundOr(err, "goal")
		}
		if err := apply(&g); err != nil {
			return err
		}
		if err := tx.Save(&g).Error; err != nil {
			return apperr.Internal(fmt.Errorf("save goal: %w", err))
		}
		return nil
	})
	if err != nil {
		return models.Goal{}, err
	}
	return g, nil
}

func (l *ledger) deleteGoal(ctx context.Context, userID, id uint) error {
	res := l.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Goal{})
	if res.Error != nil {
		return apperr.Internal(fmt.Errorf("delete goal: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("goal")
	}
	return nil
}

// alerts are returned oldest first.
func (l *ledger) alerts(ctx context.Context, userID uint) ([]models.SecurityAlert, error) {
	var alerts []models.SecurityAlert
	if err := l.db.WithContext(ctx).Where("user_id = ?", userID).Order(`"timestamp", id`).Find(&alerts).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("list alerts: %w", err))
	}
	return alerts, nil
}

func (l *ledger) createAlert(ctx context.Context, a *models.SecurityAlert) error {
	if a.Timestamp.IsZero() {
		a.Timestamp = l.now().UTC()
	}
	if err := l.db.WithContext(ctx).Create(a).Error; err != nil {
		return apperr.Internal(fmt.Errorf("create alert: %w", err))
	}
	return nil
}

// resolveAlert marks an alert resolved. Resolving twice keeps the first resolution time.
func (l *ledger) resolveAlert(ctx context.Context, userID, id uint) (models.SecurityAlert, error) {
	var a models.SecurityAlert
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err != nil {
			return notFoundOr(err, "alert")
		}
		if a.Resolved {
			return nil
		}
		at := l.now().UTC()
		a.Resolved = true
		a.ResolvedAt = &at
		if err := tx.Save(&a).Error; err != nil {
			return apperr.Internal(fmt.Errorf("resolve alert: %w", err))
		}
		return nil
	})
	if err != nil {
		return models.SecurityAlert{}, err
	}
	return a, nil
}

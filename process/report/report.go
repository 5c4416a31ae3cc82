// Package report prints a per-month ledger summary for one account.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gryffintwin/models"
	"gryffintwin/pkg/aggregate"
	"gryffintwin/pkg/apperr"
	"gryffintwin/pkg/identity"

	"gorm.io/gorm"
)

// Month is a calendar month in UTC.
type Month struct {
	Start time.Time
	End   time.Time // exclusive
}

// ParseMonth accepts YYYY-MM.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, apperr.Validation("invalid month %q, expected YYYY-MM", s)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Month{Start: start, End: start.AddDate(0, 1, 0)}, nil
}

func (m Month) String() string { return m.Start.Format("2006-01") }

// Rows loads the ledger rows of email dated within m, oldest first.
func Rows(ctx context.Context, db *gorm.DB, email string, m Month) (models.User, []models.Transaction, error) {
	var user models.User
	if err := db.WithContext(ctx).Where("email = ?", identity.NormalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, nil, apperr.NotFound("user")
		}
		return models.User{}, nil, fmt.Errorf("load user: %w", err)
	}
	var rows []models.Transaction
	err := db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", user.ID, m.Start, m.End).
		Order("date, id").
		Find(&rows).Error
	if err != nil {
		return models.User{}, nil, fmt.Errorf("fetch rows: %w", err)
	}
	return user, rows, nil
}

// Run writes the report for email and month to w. With list set every row is printed too.
func Run(ctx context.Context, db *gorm.DB, w io.Writer, email, month string, list bool) error {
	m, err := ParseMonth(month)
	if err != nil {
		return err
	}
	user, rows, err := Rows(ctx, db, email, m)
	if err != nil {
		return err
	}
	income, expense := aggregate.Totals(rows)

	fmt.Fprintf(w, "Report for %s month=%s (UTC):\n", user.Email, m)
	fmt.Fprintf(w, "  records=%d income=%s expenses=%s net=%s savings_rate=%.1f%%\n",
		len(rows), income.StringFixed(2), expense.StringFixed(2), income.Sub(expense).StringFixed(2),
		aggregate.SavingsRate(income, expense))

	if breakdown := aggregate.CategoryBreakdown(rows); len(breakdown) > 0 {
		fmt.Fprintln(w, "  categories:")
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, c := range breakdown {
			fmt.Fprintf(tw, "    %s\t%s\n", c.Category, c.Amount.StringFixed(2))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if list {
		for _, r := range rows {
			fmt.Fprintf(w, "%d|%s|%s|%s|%s|%s\n", r.ID, r.Kind, r.Category, r.Amount.StringFixed(2), r.Date.Format(time.RFC3339), r.Status)
		}
	}
	return nil
}

// CurrentMonth is the current UTC month as YYYY-MM.
func CurrentMonth() string { return time.Now().UTC().Format("2006-01") }

package aggregate

import (
	"fmt"
	"testing"
	"time"

	"gryffintwin/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func expense(category, amount string, date time.Time) models.Transaction {
	return models.Transaction{Kind: models.KindExpense, Category: category, Amount: d(amount), Date: date, Status: models.StatusCompleted}
}

func income(amount string, date time.Time) models.Transaction {
	return models.Transaction{Kind: models.KindIncome, Category: "Salary", Amount: d(amount), Date: date}
}

func goal(current, target string, status models.GoalStatus) models.Goal {
	return models.Goal{CurrentAmount: d(current), TargetAmount: d(target), Status: status}
}

func TestSummarize(t *testing.T) {
	rows := []models.Transaction{
		income("5000", now.AddDate(0, 0, -2)),
		income("1500", now.AddDate(0, -1, 0)),
		expense("Food", "120.50", now.AddDate(0, 0, -1)),
		expense("Transport", "79.50", now.AddDate(0, 0, -3)),
		expense("Housing", "1000", now.AddDate(0, -1, 0)),
		expense("Food", "10", now.AddDate(-1, 0, 0)), // same month, previous year
	}
	goals := []models.Goal{
		goal("8500", "10000", models.GoalActive),
		goal("15000", "40000", models.GoalActive),
		goal("500", "500", models.GoalCompleted),
	}

	got := Summarize(rows, goals, now, d("5000"))

	assert.True(t, d("6500").Equal(got.TotalIncome))
	assert.True(t, d("1210").Equal(got.TotalExpenses))
	assert.True(t, d("5290").Equal(got.Balance))
	assert.True(t, d("200").Equal(got.MonthlyExpenses))
	assert.Equal(t, 4, got.BudgetPercentage) // 200/5000 = 4%
	assert.Equal(t, 47, got.GoalsProgress)   // 24000/50500 = 47.52%
	assert.Equal(t, 2, got.ActiveGoals)
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil, nil, now, d("5000"))
	assert.True(t, got.Balance.IsZero())
	assert.Equal(t, 0, got.BudgetPercentage)
	assert.Equal(t, 0, got.GoalsProgress)
	assert.Equal(t, 0, got.ActiveGoals)
}

func TestZeroDenominators(t *testing.T) {
	assert.Equal(t, 0, GoalsProgress([]models.Goal{goal("100", "0", models.GoalActive), goal("5", "0", models.GoalPaused)}))
	assert.Equal(t, 0.0, GoalProgress(goal("100", "0", models.GoalActive)))
	assert.Equal(t, 0, Percent(d("10"), decimal.Zero))
	assert.Equal(t, 0.0, SavingsRate(decimal.Zero, d("300")))
	assert.True(t, AverageExpense(nil).IsZero())
	assert.Equal(t, 0, ListExpenses(nil, decimal.Zero).BudgetPercentage)
}

func TestPercentFloors(t *testing.T) {
	tests := []struct {
		part, whole string
		want        int
	}{
		{"4199.99", "4200", 99},
		{"4200", "4200", 100},
		{"6300", "4200", 150},
		{"2", "3", 66},
		{"0", "10", 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.part, tt.whole), func(t *testing.T) {
			assert.Equal(t, tt.want, Percent(d(tt.part), d(tt.whole)))
		})
	}
}

func TestGoalProgressRoundsToOneDecimal(t *testing.T) {
	assert.Equal(t, 85.0, GoalProgress(goal("8500", "10000", models.GoalActive)))
	assert.Equal(t, 37.5, GoalProgress(goal("15000", "40000", models.GoalActive)))
	assert.Equal(t, 33.3, GoalProgress(goal("1", "3", models.GoalActive)))
	assert.Equal(t, 66.7, GoalProgress(goal("2", "3", models.GoalActive)))
	assert.Equal(t, 150.0, GoalProgress(goal("750", "500", models.GoalCompleted)))
}

func TestListExpenses(t *testing.T) {
	rows := []models.Transaction{
		expense("Food", "12.5", now.AddDate(0, 0, -5)),
		income("5000", now),
		expense("Transport", "30", now.AddDate(0, 0, -1)),
		expense("Food", "7.25", now.AddDate(0, 0, -9)),
		expense("Other", "1", now.AddDate(0, 0, -1)),
	}

	got := ListExpenses(rows, d("4200"))

	sum := decimal.Zero
	for _, e := range got.Expenses {
		sum = sum.Add(e.Amount)
		assert.Equal(t, models.KindExpense, e.Kind)
	}
	assert.True(t, sum.Equal(got.Total), "listing total must equal the sum of listed amounts")
	assert.True(t, d("50.75").Equal(got.Total))
	assert.True(t, d("4149.25").Equal(got.Remaining))
	assert.Equal(t, 1, got.BudgetPercentage)

	require.Len(t, got.Expenses, 4)
	for i := 1; i < len(got.Expenses); i++ {
		assert.False(t, got.Expenses[i].Date.After(got.Expenses[i-1].Date))
	}
	// equal dates keep input order
	assert.Equal(t, "Transport", got.Expenses[0].Category)
	assert.Equal(t, "Other", got.Expenses[1].Category)
	// the input slice is untouched
	assert.Equal(t, "Food", rows[0].Category)
}

func TestRemainingBudgetGoesNegative(t *testing.T) {
	got := ListExpenses([]models.Transaction{expense("Rent", "6000", now)}, d("5000"))
	assert.True(t, d("-1000").Equal(got.Remaining))
	assert.Equal(t, 120, got.BudgetPercentage)
}

func TestCategoryBreakdownAndTop(t *testing.T) {
	rows := []models.Transaction{
		expense("Food", "10", now),
		expense("Transport", "40", now),
		expense("Food", "30", now),
		expense("Shopping", "40", now),
		income("900", now),
		expense("Utilities", "5", now),
		expense("Entertainment", "25", now),
		expense("Health", "1", now),
		expense("Books", "40", now),
	}

	breakdown := CategoryBreakdown(rows)
	require.Len(t, breakdown, 7)
	assert.Equal(t, "Food", breakdown[0].Category)
	assert.True(t, d("40").Equal(breakdown[0].Amount))

	top := TopCategories(breakdown, TopN)
	require.Len(t, top, 5)
	// four categories tie at 40; first-seen order decides
	assert.Equal(t, []string{"Food", "Transport", "Shopping", "Books", "Entertainment"}, categories(top))
	for i := 1; i < len(top); i++ {
		assert.True(t, top[i].Amount.LessThanOrEqual(top[i-1].Amount))
	}
}

func TestTopCategoriesLength(t *testing.T) {
	for distinct := 0; distinct <= 8; distinct++ {
		var rows []models.Transaction
		for i := 0; i < distinct; i++ {
			rows = append(rows, expense(fmt.Sprintf("c%d", i), fmt.Sprintf("%d", (i*7)%5+1), now))
		}
		top := TopCategories(CategoryBreakdown(rows), TopN)
		assert.Len(t, top, min(TopN, distinct))
		for i := 1; i < len(top); i++ {
			assert.True(t, top[i].Amount.LessThanOrEqual(top[i-1].Amount))
		}
	}
}

func TestAnalyze(t *testing.T) {
	rows := []models.Transaction{
		income("5000", now),
		income("1500", now.AddDate(0, -1, 0)),
		expense("Food", "100", now),
		expense("Housing", "1200", now.AddDate(0, -1, 0)),
		expense("Food", "50", now.AddDate(0, -7, 0)),
	}

	got := Analyze(rows, now)

	assert.True(t, d("6500").Equal(got.TotalIncome))
	assert.True(t, d("1350").Equal(got.TotalExpenses))
	assert.True(t, d("5150").Equal(got.NetSavings))
	assert.Equal(t, 79.2, got.SavingsRate) // 5150/6500 = 79.23%
	assert.True(t, d("450").Equal(got.AverageExpense))
	assert.Equal(t, 3, got.ExpenseCount)
	assert.Equal(t, []string{"Housing", "Food"}, categories(got.TopCategories))

	require.Len(t, got.MonthlyTrend, TrendMonths)
	assert.Equal(t, "2025-01", got.MonthlyTrend[0].Month)
	assert.Equal(t, "2025-06", got.MonthlyTrend[5].Month)
	assert.True(t, d("1200").Equal(got.MonthlyTrend[4].Amount))
	assert.True(t, d("100").Equal(got.MonthlyTrend[5].Amount))
	for _, m := range got.MonthlyTrend[:4] {
		assert.True(t, m.Amount.IsZero(), m.Month)
	}
}

func TestSavingsRateNegative(t *testing.T) {
	assert.Equal(t, -50.0, SavingsRate(d("1000"), d("1500")))
}

func TestMonthlyTrendAcrossYearBoundary(t *testing.T) {
	jan := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	rows := []models.Transaction{expense("Food", "20", time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC))}

	trend := MonthlyTrend(rows, jan, 3)

	require.Len(t, trend, 3)
	assert.Equal(t, []string{"2024-11", "2024-12", "2025-01"}, []string{trend[0].Month, trend[1].Month, trend[2].Month})
	assert.True(t, d("20").Equal(trend[1].Amount))
	assert.Nil(t, MonthlyTrend(rows, jan, 0))
}

func categories(in []CategoryTotal) []string {
	out := make([]string, len(in))
	for i, c := range in {
		out[i] = c.Category
	}
	return out
}

func TestSecurityPosture(t *testing.T) {
	var alerts []models.SecurityAlert
	for i := 1; i <= 8; i++ {
		alerts = append(alerts, models.SecurityAlert{ID: uint(i), AlertType: models.AlertFailedLogin, Resolved: i%4 == 0})
	}
	alerts = append(alerts, models.SecurityAlert{ID: 9, AlertType: "new_device"})

	p := SecurityPosture(alerts)

	assert.Equal(t, 9, p.Total)
	assert.Equal(t, 7, p.Unresolved)
	assert.Equal(t, 6, p.FailedLogins)
	assert.False(t, p.Secure())
	assert.True(t, p.Suspicious())
	require.Len(t, p.Recent, RecentAlerts)
	ids := make([]uint, len(p.Recent))
	for i, a := range p.Recent {
		ids[i] = a.ID
	}
	assert.Equal(t, []uint{5, 6, 7, 9}, ids[1:])
	assert.Equal(t, uint(3), ids[0])
}

func TestSecurityPostureQuiet(t *testing.T) {
	p := SecurityPosture([]models.SecurityAlert{
		{AlertType: models.AlertFailedLogin},
		{AlertType: models.AlertFailedLogin, Resolved: true},
	})
	assert.False(t, p.Secure())
	assert.False(t, p.Suspicious())
	assert.Len(t, p.Recent, 1)

	empty := SecurityPosture(nil)
	assert.True(t, empty.Secure())
	assert.Empty(t, empty.Recent)
}

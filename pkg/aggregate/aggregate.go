// Package aggregate derives dashboard, listing and analytics figures from a user's rows.
//
// Every function is pure and total: empty input or a zero denominator yields zero, never an error.
// Callers must have scoped the rows to one authenticated user before calling in.
package aggregate

import (
	"slices"
	"time"

	"gryffintwin/models"

	"github.com/shopspring/decimal"
)

// TopN is how many categories TopCategories keeps.
const TopN = 5

// TrendMonths is the length of the monthly expense trend.
const TrendMonths = 6

var hundred = decimal.NewFromInt(100)

type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

type MonthTotal struct {
	Month  string // YYYY-MM
	Amount decimal.Decimal
}

// Totals sums income and expense rows separately.
func Totals(rows []models.Transaction) (income, expense decimal.Decimal) {
	for _, r := range rows {
		switch r.Kind {
		case models.KindIncome:
			income = income.Add(r.Amount)
		case models.KindExpense:
			expense = expense.Add(r.Amount)
		}
	}
	return income, expense
}

// Balance is total income minus total expenses.
func Balance(rows []models.Transaction) decimal.Decimal {
	income, expense := Totals(rows)
	return income.Sub(expense)
}

func sameMonth(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// MonthlyExpenses sums expenses dated in the calendar month of now (UTC).
func MonthlyExpenses(rows []models.Transaction, now time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		if r.Kind == models.KindExpense && sameMonth(r.Date, now) {
			total = total.Add(r.Amount)
		}
	}
	return total
}

// Percent is floor(part / whole * 100), or 0 when whole is not positive.
func Percent(part, whole decimal.Decimal) int {
	if !whole.IsPositive() {
		return 0
	}
	q, _ := part.Mul(hundred).QuoRem(whole, 0)
	if part.IsNegative() {
		// QuoRem truncates toward zero.
		q = part.Mul(hundred).Div(whole).Floor()
	}
	return int(q.IntPart())
}

// RoundedPercent is round(part / whole * 100, 1), or 0 when whole is not positive.
func RoundedPercent(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Mul(hundred).Div(whole).Round(1).InexactFloat64()
}

// GoalsProgress is floor(sum(current) / sum(target) * 100) across all goals.
func GoalsProgress(goals []models.Goal) int {
	current, target := decimal.Zero, decimal.Zero
	for _, g := range goals {
		current = current.Add(g.CurrentAmount)
		target = target.Add(g.TargetAmount)
	}
	return Percent(current, target)
}

// GoalProgress is the per-goal progress rounded to one decimal place.
func GoalProgress(g models.Goal) float64 {
	return RoundedPercent(g.CurrentAmount, g.TargetAmount)
}

func ActiveGoals(goals []models.Goal) int {
	n := 0
	for _, g := range goals {
		if g.Status == models.GoalActive {
			n++
		}
	}
	return n
}

// Expenses keeps the expense rows in their original order.
func Expenses(rows []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, 0, len(rows))
	for _, r := range rows {
		if r.Kind == models.KindExpense {
			out = append(out, r)
		}
	}
	return out
}

// SortByDateDesc returns a copy of rows ordered newest first. Equal dates keep their input order.
func SortByDateDesc(rows []models.Transaction) []models.Transaction {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b models.Transaction) int {
		return b.Date.Compare(a.Date)
	})
	return out
}

type ExpenseListing struct {
	Total            decimal.Decimal
	MonthlyBudget    decimal.Decimal
	Remaining        decimal.Decimal
	BudgetPercentage int
	Expenses         []models.Transaction // newest first
}

// ListExpenses totals the expense rows against budget.
func ListExpenses(rows []models.Transaction, budget decimal.Decimal) ExpenseListing {
	expenses := Expenses(rows)
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return ExpenseListing{
		Total:            total,
		MonthlyBudget:    budget,
		Remaining:        budget.Sub(total),
		BudgetPercentage: Percent(total, budget),
		Expenses:         SortByDateDesc(expenses),
	}
}

// CategoryBreakdown sums expenses per category in one pass. The result lists categories in the
// order they were first seen, which is what TopCategories uses to break ties.
func CategoryBreakdown(rows []models.Transaction) []CategoryTotal {
	index := make(map[string]int)
	var out []CategoryTotal
	for _, r := range rows {
		if r.Kind != models.KindExpense {
			continue
		}
		i, ok := index[r.Category]
		if !ok {
			i = len(out)
			index[r.Category] = i
			out = append(out, CategoryTotal{Category: r.Category})
		}
		out[i].Amount = out[i].Amount.Add(r.Amount)
	}
	return out
}

// TopCategories returns the n largest categories, largest first.
func TopCategories(breakdown []CategoryTotal, n int) []CategoryTotal {
	out := slices.Clone(breakdown)
	slices.SortStableFunc(out, func(a, b CategoryTotal) int {
		return b.Amount.Cmp(a.Amount)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// SavingsRate is round((income - expense) / income * 100, 1), or 0 without income.
func SavingsRate(income, expense decimal.Decimal) float64 {
	return RoundedPercent(income.Sub(expense), income)
}

// AverageExpense is the mean expense amount, or 0 without expenses.
func AverageExpense(rows []models.Transaction) decimal.Decimal {
	expenses := Expenses(rows)
	if len(expenses) == 0 {
		return decimal.Zero
	}
	_, total := Totals(expenses)
	return total.Div(decimal.NewFromInt(int64(len(expenses)))).Round(2)
}

// MonthlyTrend sums expenses for each of the last months calendar months up to now, oldest first.
func MonthlyTrend(rows []models.Transaction, now time.Time, months int) []MonthTotal {
	if months <= 0 {
		return nil
	}
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	out := make([]MonthTotal, months)
	for i := range out {
		out[i] = MonthTotal{Month: first.AddDate(0, i, 0).Format("2006-01"), Amount: decimal.Zero}
	}
	for _, r := range rows {
		if r.Kind != models.KindExpense {
			continue
		}
		d := r.Date.UTC()
		i := (d.Year()-first.Year())*12 + int(d.Month()) - int(first.Month())
		if i >= 0 && i < months {
			out[i].Amount = out[i].Amount.Add(r.Amount)
		}
	}
	return out
}

type Dashboard struct {
	TotalIncome      decimal.Decimal
	TotalExpenses    decimal.Decimal
	Balance          decimal.Decimal
	MonthlyExpenses  decimal.Decimal
	BudgetPercentage int
	GoalsProgress    int
	ActiveGoals      int
}

// Summarize computes the dashboard figures.
func Summarize(rows []models.Transaction, goals []models.Goal, now time.Time, budget decimal.Decimal) Dashboard {
	income, expense := Totals(rows)
	monthly := MonthlyExpenses(rows, now)
	return Dashboard{
		TotalIncome:      income,
		TotalExpenses:    expense,
		Balance:          income.Sub(expense),
		MonthlyExpenses:  monthly,
		BudgetPercentage: Percent(monthly, budget),
		GoalsProgress:    GoalsProgress(goals),
		ActiveGoals:      ActiveGoals(goals),
	}
}

type Analytics struct {
	TotalIncome       decimal.Decimal
	TotalExpenses     decimal.Decimal
	NetSavings        decimal.Decimal
	SavingsRate       float64
	CategoryBreakdown []CategoryTotal
	TopCategories     []CategoryTotal
	AverageExpense    decimal.Decimal
	ExpenseCount      int
	MonthlyTrend      []MonthTotal
}

// Analyze computes the analytics figures.
func Analyze(rows []models.Transaction, now time.Time) Analytics {
	income, expense := Totals(rows)
	breakdown := CategoryBreakdown(rows)
	return Analytics{
		TotalIncome:       income,
		TotalExpenses:     expense,
		NetSavings:        income.Sub(expense),
		SavingsRate:       SavingsRate(income, expense),
		CategoryBreakdown: breakdown,
		TopCategories:     TopCategories(breakdown, TopN),
		AverageExpense:    AverageExpense(rows),
		ExpenseCount:      len(Expenses(rows)),
		MonthlyTrend:      MonthlyTrend(rows, now, TrendMonths),
	}
}

// RecentAlerts is how many unresolved alerts the security posture lists.
const RecentAlerts = 5

// SuspiciousFailedLogins is the count of unresolved failed-login alerts from which login activity is flagged.
const SuspiciousFailedLogins = 3

type Posture struct {
	Total        int
	Unresolved   int
	FailedLogins int // unresolved only
	Recent       []models.SecurityAlert
}

// Secure reports whether nothing needs the user's attention.
func (p Posture) Secure() bool { return p.Unresolved == 0 }

// Suspicious reports whether recent failed sign-ins warrant a warning.
func (p Posture) Suspicious() bool { return p.FailedLogins >= SuspiciousFailedLogins }

// SecurityPosture summarises alerts ordered oldest first. Recent holds the newest unresolved ones, oldest first.
func SecurityPosture(alerts []models.SecurityAlert) Posture {
	p := Posture{Total: len(alerts)}
	var unresolved []models.SecurityAlert
	for _, a := range alerts {
		if a.Resolved {
			continue
		}
		unresolved = append(unresolved, a)
		if a.AlertType == models.AlertFailedLogin {
			p.FailedLogins++
		}
	}
	p.Unresolved = len(unresolved)
	p.Recent = unresolved[max(0, len(unresolved)-RecentAlerts):]
	return p
}

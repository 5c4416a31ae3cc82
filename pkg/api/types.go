// Package api defines the JSON bodies exchanged between the API server and its clients.
package api

import "time"

// TokenType is the only scheme the API accepts in the Authorization header.
const TokenType = "bearer"

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type User struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuthResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	User        User      `json:"user"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type Account struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Balance float64 `json:"balance"`
	Status  string  `json:"status"`
}

type DashboardSummary struct {
	TotalBalance     float64   `json:"totalBalance"`
	TotalIncome      float64   `json:"totalIncome"`
	TotalExpenses    float64   `json:"totalExpenses"`
	MonthlyExpenses  float64   `json:"monthlyExpenses"`
	MonthlyBudget    float64   `json:"monthlyBudget"`
	BudgetPercentage int       `json:"budgetPercentage"`
	Investments      float64   `json:"investments"`
	InvestmentReturn float64   `json:"investmentReturn"`
	BalanceChange    float64   `json:"balanceChange"`
	GoalsProgress    int       `json:"goalsProgress"`
	ActiveGoals      int       `json:"activeGoals"`
	SecurityStatus   string    `json:"securityStatus"`
	FinancialScore   int       `json:"financialScore"`
	Accounts         []Account `json:"accounts"`
}

// ExpenseRequest creates an expense. Date accepts RFC 3339, "2006-01-02T15:04:05" or "2006-01-02".
type ExpenseRequest struct {
	Category    string   `json:"category" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Amount      *float64 `json:"amount" binding:"required"`
	Date        string   `json:"date"`
	Status      string   `json:"status"`
}

// ExpenseUpdate changes only the fields that are present.
type ExpenseUpdate struct {
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount"`
	Date        *string  `json:"date"`
	Status      *string  `json:"status"`
}

type Expense struct {
	ID          uint      `json:"id"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ExpenseListing struct {
	TotalExpenses    float64   `json:"totalExpenses"`
	MonthlyBudget    float64   `json:"monthlyBudget"`
	RemainingBudget  float64   `json:"remainingBudget"`
	BudgetPercentage int       `json:"budgetPercentage"`
	Expenses         []Expense `json:"expenses"`
}

type TransactionRequest struct {
	Kind        string   `json:"kind" binding:"required"`
	Category    string   `json:"category"`
	Description string   `json:"description" binding:"required"`
	Amount      *float64 `json:"amount" binding:"required"`
	Date        string   `json:"date"`
	Status      string   `json:"status"`
}

type Transaction struct {
	ID          uint      `json:"id"`
	Kind        string    `json:"kind"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
}

type TransactionListing struct {
	TotalIncome   float64       `json:"totalIncome"`
	TotalExpenses float64       `json:"totalExpenses"`
	Balance       float64       `json:"balance"`
	Transactions  []Transaction `json:"transactions"`
}

type GoalRequest struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	TargetAmount  *float64 `json:"targetAmount" binding:"required"`
	CurrentAmount *float64 `json:"currentAmount"`
	Status        string   `json:"status"`
	Icon          string   `json:"icon"`
}

// GoalUpdate changes only the fields that are present.
type GoalUpdate struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	TargetAmount  *float64 `json:"targetAmount"`
	CurrentAmount *float64 `json:"currentAmount"`
	Status        *string  `json:"status"`
	Icon          *string  `json:"icon"`
}

type Goal struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	TargetAmount  float64   `json:"targetAmount"`
	CurrentAmount float64   `json:"currentAmount"`
	Progress      float64   `json:"progress"`
	Status        string    `json:"status"`
	Icon          string    `json:"icon"`
	CreatedAt     time.Time `json:"createdAt"`
}

type GoalListing struct {
	Goals         []Goal `json:"goals"`
	GoalsProgress int    `json:"goalsProgress"`
	ActiveGoals   int    `json:"activeGoals"`
}

type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type MonthAmount struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type Analytics struct {
	TotalIncome       float64            `json:"totalIncome"`
	TotalExpenses     float64            `json:"totalExpenses"`
	NetSavings        float64            `json:"netSavings"`
	SavingsRate       float64            `json:"savingsRate"`
	CategoryBreakdown map[string]float64 `json:"categoryBreakdown"`
	TopCategories     []CategoryAmount   `json:"topCategories"`
	AverageExpense    float64            `json:"averageExpense"`
	ExpenseCount      int                `json:"expenseCount"`
	MonthlyTrend      []MonthAmount      `json:"monthlyTrend"`
}

type AlertRequest struct {
	AlertType string `json:"alertType" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

type Alert struct {
	ID         uint       `json:"id"`
	AlertType  string     `json:"alertType"`
	Message    string     `json:"message"`
	Timestamp  time.Time  `json:"timestamp"`
	Resolved   bool       `json:"resolved"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}

type SecurityPosture struct {
	OverallSecurity  string  `json:"overallSecurity"`
	LoginActivity    string  `json:"loginActivity"`
	FraudAlerts      int     `json:"fraudAlerts"`
	TotalAlerts      int     `json:"totalAlerts"`
	PasswordStrength string  `json:"passwordStrength"`
	TwoFactorAuth    bool    `json:"twoFactorAuth"`
	MonitoredCards   int     `json:"monitoredCards"`
	RecentAlerts     []Alert `json:"recentAlerts"`
}

type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Message struct {
	Message string `json:"message"`
}

package main

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"gryffintwin/models"
	"gryffintwin/pkg/aggregate"
	"gryffintwin/pkg/api"
	"gryffintwin/pkg/apperr"
	"gryffintwin/pkg/identity"
	"gryffintwin/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type server struct {
	cfg     Config
	users   *identity.Store
	tokens  *token.Service
	ledger  *ledger
	limiter *ipLimiter
	now     func() time.Time
}

func newServer(cfg Config, db *gorm.DB, users *identity.Store, tokens *token.Service, now func() time.Time) *server {
	return &server{
		cfg:     cfg,
		users:   users,
		tokens:  tokens,
		ledger:  newLedger(db, now),
		limiter: newIPLimiter(cfg.LoginPerMinute, cfg.LoginBurst, now),
		now:     now,
	}
}

func (s *server) setupRoutes(r *gin.Engine) {
	r.GET("/api/health", healthHandler)

	auth := r.Group("/api/auth")
	auth.POST("/register", s.limiter.middleware(), s.registerHandler)
	auth.POST("/login", s.limiter.middleware(), s.loginHandler)

	authed := r.Group("/api")
	authed.Use(s.requireBearer())
	authed.GET("/auth/me", meHandler)
	authed.GET("/dashboard/summary", s.dashboardHandler)

	authed.GET("/expenses", s.listExpensesHandler)
	authed.POST("/expenses", s.createExpenseHandler)
	authed.GET("/expenses/:id", s.getExpenseHandler)
	authed.PUT("/expenses/:id", s.updateExpenseHandler)
	authed.DELETE("/expenses/:id", s.deleteExpenseHandler)

	authed.GET("/transactions", s.listTransactionsHandler)
	authed.POST("/transactions", s.createTransactionHandler)
	authed.DELETE("/transactions/:id", s.deleteTransactionHandler)

	authed.GET("/goals", s.listGoalsHandler)
	authed.POST("/goals", s.createGoalHandler)
	authed.GET("/goals/:id", s.getGoalHandler)
	authed.PUT("/goals/:id", s.updateGoalHandler)
	authed.PATCH("/goals/:id", s.updateGoalHandler)
	authed.DELETE("/goals/:id", s.deleteGoalHandler)

	authed.GET("/analytics", s.analyticsHandler)

	authed.GET("/security", s.securityHandler)
	authed.POST("/security/alerts", s.createAlertHandler)
	authed.POST("/security/alerts/:id/resolve", s.resolveAlertHandler)
}

// handler is the full HTTP stack: CORS in front of the gin engine.
func (s *server) handler() http.Handler {
	r := gin.Default()
	// client IPs key the login limiter, so forwarded headers are not trusted
	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: trusted proxies: %v", err)
	}
	s.setupRoutes(r)
	return cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})(r)
}

func writeError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal || kind == apperr.KindUnavailable {
		log.Printf("error: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(apperr.HTTPStatus(kind), api.ErrorResponse{Error: apperr.Message(err)})
}

func abortError(c *gin.Context, err error) {
	writeError(c, err)
	c.Abort()
}

// bindJSON decodes the body into dst and turns binding failures into validation errors.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fe := verrs[0]
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		if fe.Tag() == "required" {
			return apperr.Validation("%s is required", field)
		}
		return apperr.Validation("%s must be a valid %s", field, fe.Tag())
	}
	if errors.Is(err, io.EOF) {
		return apperr.Validation("request body required")
	}
	return apperr.Validation("invalid JSON body")
}

func idParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid id")
	}
	return uint(id), nil
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// maxAmount is the largest value a numeric(14,2) column holds.
var maxAmount = decimal.RequireFromString("999999999999.99")

// Text limits match the column sizes in models.
const (
	maxCategoryLen    = 64
	maxDescriptionLen = 255
	maxGoalNameLen    = 120
	maxIconLen        = 50
	maxAlertTypeLen   = 50
	maxAlertLen       = 255
)

func parseAmount(field string, v float64) (decimal.Decimal, error) {
	if v < 0 {
		return decimal.Zero, apperr.Validation("%s must not be negative", field)
	}
	d := decimal.NewFromFloat(v).Round(2)
	if d.GreaterThan(maxAmount) {
		return decimal.Zero, apperr.Validation("%s must not exceed %s", field, maxAmount.StringFixed(2))
	}
	return d, nil
}

// optionalText trims v and rejects it when longer than limit characters.
func optionalText(field, v string, limit int) (string, error) {
	v = strings.TrimSpace(v)
	if utf8.RuneCountInString(v) > limit {
		return "", apperr.Validation("%s must be at most %d characters", field, limit)
	}
	return v, nil
}

func requiredText(field, v string, limit int) (string, error) {
	v, err := optionalText(field, v, limit)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", apperr.Validation("%s is required", field)
	}
	return v, nil
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02"}

// parseDate accepts RFC 3339, a zone-less timestamp (read as UTC) or a bare date. Empty means now.
func (s *server) parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return s.now().UTC(), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.Validation("date must be RFC 3339 or YYYY-MM-DD")
}

func parseStatus(v string) (models.Status, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return models.StatusCompleted, nil
	}
	if st := models.Status(v); st.Valid() {
		return st, nil
	}
	return "", apperr.Validation("status must be completed or pending")
}

func parseGoalStatus(v string) (models.GoalStatus, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return models.GoalActive, nil
	}
	if st := models.GoalStatus(v); st.Valid() {
		return st, nil
	}
	return "", apperr.Validation("status must be active, paused or completed")
}

func toAPIUser(u models.User) api.User {
	return api.User{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

func toAPIExpense(t models.Transaction) api.Expense {
	return api.Expense{
		ID:          t.ID,
		Category:    t.Category,
		Description: t.Description,
		Amount:      money(t.Amount),
		Date:        t.Date,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
	}
}

func toAPITransaction(t models.Transaction) api.Transaction {
	return api.Transaction{
		ID:          t.ID,
		Kind:        string(t.Kind),
		Category:    t.Category,
		Description: t.Description,
		Amount:      money(t.Amount),
		Date:        t.Date,
		Status:      string(t.Status),
	}
}

func toAPIGoal(g models.Goal) api.Goal {
	return api.Goal{
		ID:            g.ID,
		Name:          g.Name,
		Description:   g.Description,
		TargetAmount:  money(g.TargetAmount),
		CurrentAmount: money(g.CurrentAmount),
		Progress:      aggregate.GoalProgress(g),
		Status:        string(g.Status),
		Icon:          g.Icon,
		CreatedAt:     g.CreatedAt,
	}
}

func toAPIAlert(a models.SecurityAlert) api.Alert {
	return api.Alert{
		ID:         a.ID,
		AlertType:  a.AlertType,
		Message:    a.Message,
		Timestamp:  a.Timestamp,
		Resolved:   a.Resolved,
		ResolvedAt: a.ResolvedAt,
	}
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.Health{Status: "ok", Message: "GryffinTwin API is running"})
}

func (s *server) dashboardHandler(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()
	rows, err := s.ledger.transactions(ctx, user.ID, "")
	if err != nil {
		writeError(c, err)
		return
	}
	goals, err := s.ledger.goals(ctx, user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	alerts, err := s.ledger.alerts(ctx, user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	fin := s.cfg.Finance
	sum := aggregate.Summarize(rows, goals, s.now(), fin.MonthlyBudget)
	checking := sum.Balance.Mul(fin.CheckingShare)
	securityStatus := "Secured"
	if !aggregate.SecurityPosture(alerts).Secure() {
		securityStatus = "Attention"
	}
	c.JSON(http.StatusOK, api.DashboardSummary{
		TotalBalance:     money(sum.Balance),
		TotalIncome:      money(sum.TotalIncome),
		TotalExpenses:    money(sum.TotalExpenses),
		MonthlyExpenses:  money(sum.MonthlyExpenses),
		MonthlyBudget:    money(fin.MonthlyBudget),
		BudgetPercentage: sum.BudgetPercentage,
		Investments:      money(fin.Investments),
		InvestmentReturn: fin.InvestmentReturn,
		BalanceChange:    fin.BalanceChange,
		GoalsProgress:    sum.GoalsProgress,
		ActiveGoals:      sum.ActiveGoals,
		SecurityStatus:   securityStatus,
		FinancialScore:   fin.FinancialScore,
		Accounts: []api.Account{
			{Name: "Checking Account", Type: "checking", Balance: money(checking), Status: "active"},
			{Name: "Savings Account", Type: "savings", Balance: money(sum.Balance.Sub(checking)), Status: "active"},
		},
	})
}

func (s *server) listExpensesHandler(c *gin.Context) {
	user := currentUser(c)
	rows, err := s.ledger.transactions(c.Request.Context(), user.ID, models.KindExpense)
	if err != nil {
		writeError(c, err)
		return
	}
	listing := aggregate.ListExpenses(rows, s.cfg.Finance.MonthlyBudget)
	out := api.ExpenseListing{
		TotalExpenses:    money(listing.Total),
		MonthlyBudget:    money(listing.MonthlyBudget),
		RemainingBudget:  money(listing.Remaining),
		BudgetPercentage: listing.BudgetPercentage,
		Expenses:         make([]api.Expense, 0, len(listing.Expenses)),
	}
	for _, e := range listing.Expenses {
		out.Expenses = append(out.Expenses, toAPIExpense(e))
	}
	c.JSON(http.StatusOK, out)
}

func (s *server) createExpenseHandler(c *gin.Context) {
	user := currentUser(c)
	var req api.ExpenseRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	t, err := s.newLedgerRow(user.ID, models.KindExpense, req.Category, req.Description, *req.Amount, req.Date, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	if _, err := requiredText("category", t.Category, maxCategoryLen); err != nil {
		writeError(c, err)
		return
	}
	if err := s.ledger.createTransaction(c.Request.Context(), &t); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAPIExpense(t))
}

// newLedgerRow validates the fields shared by expenses and transactions.
func (s *server) newLedgerRow(userID uint, kind models.Kind, category, description string, amount float64, date, status string) (models.Transaction, error) {
	var err error
	t := models.Transaction{UserID: userID, Kind: kind}
	if t.Category, err = optionalText("category", category, maxCategoryLen); err != nil {
		return t, err
	}
	if t.Description, err = requiredText("description", description, maxDescriptionLen); err != nil {
		return t, err
	}
	if t.Amount, err = parseAmount("amount", amount); err != nil {
		return t, err
	}
	if t.Date, err = s.parseDate(date); err != nil {
		return t, err
	}
	if t.Status, err = parseStatus(status); err != nil {
		return t, err
	}
	return t, nil
}

func (s *server) getExpenseHandler(c *gin.Context) {
	user := currentUser(c)
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}
	t, err := s.ledger.transaction(c.Request.Context(), user.ID, id, models.KindExpense)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAPIExpense(t))
}

func (s *server) updateExpenseHandler(c *gin.Context) {
	user := currentUser(c)
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}
	var req api.ExpenseUpdate
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	t, err := s.ledger.updateTransaction(c.Request.Context(), user.ID, id, models.KindExpense, func(t *models.Transaction) error {
		var err error
		if req.Category != nil {
			if t.Category, err = requiredText("category", *req.Category, maxCategoryLen); err != nil {
				return err
			}
		}
		if req.Description != nil {
			if t.Description, err = requiredText("description", *req.Description, maxDescriptionLen); err != nil {
				return err
			}
		}
		if req.Amount != nil {
			if t.Amount, err = parseAmount("amount", *req.Amount); err != nil {
				return err
			}
		}
		if req.Date != nil {
			if t.Date, err = s.parseDate(*req.Date); err != nil {
				return err
			}
		}
		if req.Status != nil {
			if t.Status, err = parseStatus(*req.Status); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAPIExpense(t))
}

func (s *server) deleteExpenseHandler(c *gin.Context) {
	s.deleteRow(c, models.KindExpense)
}

func (s *server) deleteTransactionHandler(c *gin.Context) {
	s.deleteRow(c, "")
}

func (s *server) deleteRow(c *gin.Context, kind models.Kind) {
	user := currentUser(c)
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.ledger.deleteTransaction(c.Request.Context(), user.ID, id, kind); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.Message{Message: label(kind) + " deleted"})
}

func (s *server) listTransactionsHandler(c *gin.Context) {
	user := currentUser(c)
	kind := models.Kind(strings.ToLower(c.Query("kind")))
	if kind != "" && !kind.Valid() {
		writeError(c, apperr.Validation("kind must be income or expense"))
		return
	}
	rows, err := s.ledger.transactions(c.Request.Context(), user.ID, kind)
	if err != nil {
		writeError(c, err)
		return
	}
	income, expense := aggregate.Totals(rows)
	out := api.TransactionListing{
		TotalIncome:   money(income),
		TotalExpenses: money(expense),
		Balance:       money(income.Sub(expense)),
		Transactions:  make([]api.Transaction, 0, len(rows)),
	}
	for _, t := range aggregate.SortByDateDesc(rows) {
		out.Transactions = append(out.Transactions, toAPITransaction(t))
	}
	c.JSON(http.StatusOK, out)
}

func (s *server) createTransactionHandler(c *gin.Context) {
	user := currentUser(c)
	var req api.TransactionRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	kind := models.Kind(strings.ToLower(strings.TrimSpace(req.Kind)))
	if !kind.Valid() {
		writeError(c, apperr.Validation("kind must be income or expense"))
		return
	}
	t, err := s.newLedgerRow(user.ID, kind, req.Category, req.Description, *req.Amount, req.Date, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.ledger.createTransaction(c.Request.Context(), &t); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAPITransaction(t))
}

func (s *server) listGoalsHandler(c *gin.Context) {
	user := currentUser(c)
	goals, err := s.ledger.goals(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	out := api.GoalListing{
		Goals:         make([]api.Goal, 0, len(goals)),
		GoalsProgress: aggregate.GoalsProgress(goals),
		ActiveGoals:   aggregate.ActiveGoals(goals),
	}
	for _, g := range goals {
		out.Goals = append(out.Goals, toAPIGoal(g))
	}
	c.JSON(http.StatusOK, out)
}

func (s *server) createGoalHandler(c *gin.Context) {
	user := currentUser(c)
	var req api.GoalRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	g := models.Goal{UserID: user.ID}
	err := func() error {
		var err error
		if g.Name, err = requiredText("name", req.Name, maxGoalNameLen); err != nil {
			return err
		}
		if g.Description, err = optionalText("description", req.Description, maxDescriptionLen); err != nil {
			return err
		}
		if g.Icon, err = optionalText("icon", req.Icon, maxIconLen); err != nil {
			return err
		}
		if g.TargetAmount, err = parseTarget(*req.TargetAmount); err != nil {
			return err
		}
		if req.CurrentAmount != nil {
			if g.CurrentAmount, err = parseAmount("currentAmount", *req.CurrentAmount); err != nil {
				return err
			}
		}
		g.Status, err = parseGoalStatus(req.Status)
		return err
	}()
	if err != nil {
		writeError(c, err)
		return
	}
	if g.Icon == "" {
		g.Icon = models.DefaultGoalIcon
	}
	if err := s.ledger.createGoal(c.Request.Context(), &g); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAPIGoal(g))
}

func parseTarget(v float64) (decimal.Decimal, error) {
	d, err := parseAmount("targetAmount", v)
	if err != nil {
		return d, err
	}
	if !d.IsPositive() {
		return d, apperr.Validation("targetAmount must be greater than zero")
	}
	return d, nil
}

func (s *server) getGoalHandler(c *gin.Context) {
	user := currentUser(c)
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}
	g, err := s.ledger.goal(c.Request.Context(), user.ID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAPIGoal(g))
}

// updateGoalHandler serves both PUT and PATCH; absent fields are left unchanged.
func (s *server) updateGoalHandler(c *gin.Context) {
	user := currentUser(c)
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}
	var req api.GoalUpdate
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	g, err := s.ledger.updateGoal(c.Request.Context(), user.ID, id, func(g *models.Goal) error {
		var err error
		if req.Name != nil {
			if g.Name, err = requiredText("name", *req.Name, maxGoalNameLen); err != nil {
				return err
			}
		}
		if req.Description != nil {
			if g.Description, err = optionalText("description", *req.Description, maxDescriptionLen); err != nil {
				return err
			}
		}
		if req.TargetAmount != nil {
			if g.TargetAmount, err = parseTarget(*req.TargetAmount); err != nil {
				return err
			}
		}
		if req.CurrentAmount != nil {
			if g.CurrentAmount, err = parseAmount("currentAmount", *req.CurrentAmount); err != nil {
				return err
			}
		}
		if req.Status != nil {
			if strings.TrimSpace(*req.Status) == "" {
				return apperr.Validation("status must be active, paused or completed")
			}
			if g.Status, err = parseGoalStatus(*req.Status); err != nil {
				return err
			}
		}
		if req.Icon != nil {
			if g.Icon, err = optionalText("icon", *req.Icon, maxIconLen); err != nil {
				return err
			}
			if g.Icon == "" {
				g.Icon = models.DefaultGoalIcon
			}
		}
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAPIGoal(g))
}

func (s *server) deleteGoalHandler(c *gin.Context) {
	user := currentUser(c)
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.ledger.deleteGoal(c.Request.Context(), user.ID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.Message{Message: "goal deleted"})
}

func (s *server) analyticsHandler(c *gin.Context) {
	user := currentUser(c)
	rows, err := s.ledger.transactions(c.Request.Context(), user.ID, "")
	if err != nil {
		writeError(c, err)
		return
	}
	a := aggregate.Analyze(rows, s.now())
	out := api.Analytics{
		TotalIncome:       money(a.TotalIncome),
		TotalExpenses:     money(a.TotalExpenses),
		NetSavings:        money(a.NetSavings),
		SavingsRate:       a.SavingsRate,
		CategoryBreakdown: make(map[string]float64, len(a.CategoryBreakdown)),
		TopCategories:     make([]api.CategoryAmount, 0, len(a.TopCategories)),
		AverageExpense:    money(a.AverageExpense),
		ExpenseCount:      a.ExpenseCount,
		MonthlyTrend:      make([]api.MonthAmount, 0, len(a.MonthlyTrend)),
	}
	for _, ct := range a.CategoryBreakdown {
		out.CategoryBreakdown[ct.Category] = money(ct.Amount)
	}
	for _, ct := range a.TopCategories {
		out.TopCategories = append(out.TopCategories, api.CategoryAmount{Category: ct.Category, Amount: money(ct.Amount)})
	}
	for _, m := range a.MonthlyTrend {
		out.MonthlyTrend = append(out.MonthlyTrend, api.MonthAmount{Month: m.Month, Amount: money(m.Amount)})
	}
	c.JSON(http.StatusOK, out)
}

func (s *server) securityHandler(c *gin.Context) {
	user := currentUser(c)
	alerts, err := s.ledger.alerts(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	p := aggregate.SecurityPosture(alerts)
	out := api.SecurityPosture{
		OverallSecurity:  "Excellent",
		LoginActivity:    "Normal",
		FraudAlerts:      p.Unresolved,
		TotalAlerts:      p.Total,
		PasswordStrength: "Strong",
		TwoFactorAuth:    s.cfg.Finance.TwoFactorEnabled,
		MonitoredCards:   s.cfg.Finance.MonitoredCards,
		RecentAlerts:     make([]api.Alert, 0, len(p.Recent)),
	}
	if !p.Secure() {
		out.OverallSecurity = "Warning"
	}
	if p.Suspicious() {
		out.LoginActivity = "Suspicious"
	}
	for _, a := range p.Recent {
		out.RecentAlerts = append(out.RecentAlerts, toAPIAlert(a))
	}
	c.JSON(http.StatusOK, out)
}

func (s *server) createAlertHandler(c *gin.Context) {
	user := currentUser(c)
	var req api.AlertRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	a := models.SecurityAlert{UserID: user.ID}
	var err error
	if a.AlertType, err = requiredText("alertType", req.AlertType, maxAlertTypeLen); err != nil {
		writeError(c, err)
		return
	}
	if a.Message, err = requiredText("message", req.Message, maxAlertLen); err != nil {
		writeError(c, err)
		return
	}
	if err := s.ledger.createAlert(c.Request.Context(), &a); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAPIAlert(a))
}

func (s *server) resolveAlertHandler(c *gin.Context) {
	user := currentUser(c)
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}
	a, err := s.ledger.resolveAlert(c.Request.Context(), user.ID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAPIAlert(a))
}

package bridge

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"gryffintwin/pkg/api"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loginPath = "POST /api/auth/login"

type bridgeEnv struct {
	t     *testing.T
	mr    *miniredis.Miniredis
	store *SessionStore
	h     http.Handler
}

// newBridgeEnv serves the pages against a fake API built from routes. A login route
// accepting demo@example.com / demo123 is added unless routes brings its own.
func newBridgeEnv(t *testing.T, routes map[string]http.HandlerFunc) *bridgeEnv {
	t.Helper()
	mux := http.NewServeMux()
	if _, ok := routes[loginPath]; !ok {
		mux.HandleFunc(loginPath, func(w http.ResponseWriter, r *http.Request) {
			var in api.LoginRequest
			_ = json.NewDecoder(r.Body).Decode(&in)
			if in.Email != "demo@example.com" || in.Password != "demo123" {
				writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Error: "invalid email or password"})
				return
			}
			writeJSON(w, http.StatusOK, api.AuthResponse{
				AccessToken: "tok",
				TokenType:   api.TokenType,
				ExpiresAt:   testNow.Add(24 * time.Hour),
				User:        api.User{ID: 7, Name: "Demo", Email: "demo@example.com"},
			})
		})
	}
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}
	backend := httptest.NewServer(mux)
	t.Cleanup(backend.Close)
	return newBridgeEnvWithBackend(t, backend.URL)
}

func newBridgeEnvWithBackend(t *testing.T, backendURL string) *bridgeEnv {
	t.Helper()
	store, mr := newTestStore(t, 2*time.Hour, func() time.Time { return testNow })
	cfg := Config{BackendURL: backendURL, BackendTimeout: time.Second, CookieName: "gryffin_session", IdleTimeout: 2 * time.Hour}
	srv, err := NewServer(cfg, store, NewClient(backendURL, time.Second))
	require.NoError(t, err)
	return &bridgeEnv{t: t, mr: mr, store: store, h: srv.Routes()}
}

func (e *bridgeEnv) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.h.ServeHTTP(w, req)
	return w
}

func (e *bridgeEnv) post(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.h.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "gryffin_session" {
			return c
		}
	}
	return nil
}

func (e *bridgeEnv) login() *http.Cookie {
	e.t.Helper()
	w := e.post("/login", url.Values{"email": {"demo@example.com"}, "password": {"demo123"}}, nil)
	require.Equal(e.t, http.StatusSeeOther, w.Code)
	c := sessionCookie(w)
	require.NotNil(e.t, c)
	return c
}

func TestLoginStartsSession(t *testing.T) {
	e := newBridgeEnv(t, map[string]http.HandlerFunc{
		"GET /api/dashboard/summary": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, api.DashboardSummary{TotalBalance: 6451.5, SecurityStatus: "Secured",
				Accounts: []api.Account{{Name: "Checking", Type: "checking", Balance: 2580.6, Status: "active"}}})
		},
	})

	w := e.post("/login", url.Values{"email": {" demo@example.com "}, "password": {"demo123"}}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	c := sessionCookie(w)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.True(t, e.mr.Exists(sessionKeyPrefix+c.Value))

	w = e.get("/dashboard", c)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "$6451.50")
	assert.Contains(t, body, "Checking")
	assert.Contains(t, body, "Demo (demo@example.com)")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestLoginWrongPassword(t *testing.T) {
	e := newBridgeEnv(t, nil)
	w := e.post("/login", url.Values{"email": {"demo@example.com"}, "password": {"nope"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")
	assert.Nil(t, sessionCookie(w))
	assert.Empty(t, e.mr.Keys())
}

func TestLoginRequiresFields(t *testing.T) {
	e := newBridgeEnv(t, nil)
	w := e.post("/login", url.Values{"email": {"demo@example.com"}}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, e.mr.Keys())
}

func TestLoginBackendUnavailable(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	e := newBridgeEnvWithBackend(t, down.URL)

	w := e.post("/login", url.Values{"email": {"demo@example.com"}, "password": {"demo123"}}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "Invalid email or password")
	assert.Contains(t, w.Body.String(), "reference")
	assert.Nil(t, sessionCookie(w))
}

func TestLoginUnexpectedStatus(t *testing.T) {
	e := newBridgeEnv(t, map[string]http.HandlerFunc{
		loginPath: func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
		},
	})
	w := e.post("/login", url.Values{"email": {"demo@example.com"}, "password": {"demo123"}}, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Sign-in failed")
	assert.Contains(t, w.Body.String(), "reference")
}

func TestRegisterFlow(t *testing.T) {
	e := newBridgeEnv(t, map[string]http.HandlerFunc{
		"POST /api/auth/register": func(w http.ResponseWriter, r *http.Request) {
			var in api.RegisterRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			if in.Email == "taken@example.com" {
				writeJSON(w, http.StatusConflict, api.ErrorResponse{Error: "email already registered"})
				return
			}
			writeJSON(w, http.StatusCreated, api.AuthResponse{AccessToken: "new", ExpiresAt: testNow.Add(24 * time.Hour),
				User: api.User{ID: 9, Name: in.Name, Email: in.Email}})
		},
	})

	w := e.post("/register", url.Values{"name": {"Ann"}, "email": {"ann@example.com"}, "password": {"secret1"}}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.NotNil(t, sessionCookie(w))

	w = e.post("/register", url.Values{"name": {"Ann"}, "email": {"taken@example.com"}, "password": {"secret1"}}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "email already registered")
}

func TestProtectedPageWithoutSession(t *testing.T) {
	e := newBridgeEnv(t, nil)
	for _, path := range []string{"/dashboard", "/expenses", "/goals", "/analytics", "/security"} {
		w := e.get(path, nil)
		assert.Equal(t, http.StatusSeeOther, w.Code, path)
		assert.Equal(t, "/login", w.Header().Get("Location"), path)
	}
	w := e.get("/dashboard", &http.Cookie{Name: "gryffin_session", Value: "gone"})
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Equal(t, "/login", e.get("/", nil).Header().Get("Location"))
}

func TestLegacySessionIsCleared(t *testing.T) {
	e := newBridgeEnv(t, nil)
	require.NoError(t, e.mr.Set(sessionKeyPrefix+"legacy", `{"user_id":"demo@example.com","token":"tok"}`))

	w := e.get("/dashboard", &http.Cookie{Name: "gryffin_session", Value: "legacy"})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.False(t, e.mr.Exists(sessionKeyPrefix+"legacy"))
	c := sessionCookie(w)
	require.NotNil(t, c)
	assert.Less(t, c.MaxAge, 0)
}

func TestDownstreamUnauthorizedEndsSession(t *testing.T) {
	e := newBridgeEnv(t, map[string]http.HandlerFunc{
		"GET /api/goals": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Error: "token expired"})
		},
	})
	c := e.login()

	w := e.get("/goals", c)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.False(t, e.mr.Exists(sessionKeyPrefix+c.Value))
}

func TestDownstreamServerErrorHidesDetail(t *testing.T) {
	e := newBridgeEnv(t, map[string]http.HandlerFunc{
		"GET /api/analytics": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusInternalServerError, api.ErrorResponse{Error: "pq: relation transactions does not exist"})
		},
	})
	c := e.login()

	w := e.get("/analytics", c)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
	assert.Contains(t, w.Body.String(), "reference")
	assert.True(t, e.mr.Exists(sessionKeyPrefix+c.Value))
}

func TestExpenseForms(t *testing.T) {
	var created api.ExpenseRequest
	var deleted string
	var creates atomic.Int32
	e := newBridgeEnv(t, map[string]http.HandlerFunc{
		"POST /api/expenses": func(w http.ResponseWriter, r *http.Request) {
			creates.Add(1)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			if *created.Amount < 0 {
				writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: "amount must not be negative"})
				return
			}
			writeJSON(w, http.StatusCreated, api.Expense{ID: 1})
		},
		"DELETE /api/expenses/{id}": func(w http.ResponseWriter, r *http.Request) {
			deleted = r.PathValue("id")
			if deleted == "99" {
				writeJSON(w, http.StatusNotFound, api.ErrorResponse{Error: "expense not found"})
				return
			}
			writeJSON(w, http.StatusOK, api.Message{Message: "expense deleted"})
		},
		"GET /api/expenses": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, api.ExpenseListing{TotalExpenses: 12.5, MonthlyBudget: 5000,
				Expenses: []api.Expense{{ID: 1, Category: "Food", Description: "Lunch", Amount: 12.5, Date: testNow, Status: "completed"}}})
		},
	})
	c := e.login()

	w := e.post("/expenses", url.Values{"category": {"Food"}, "description": {"Lunch"}, "amount": {"12.5"}, "date": {"2025-05-01"}}, c)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/expenses", w.Header().Get("Location"))
	assert.Equal(t, "Food", created.Category)
	assert.Equal(t, 12.5, *created.Amount)
	assert.Equal(t, "2025-05-01", created.Date)

	w = e.get("/expenses", c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Lunch")
	assert.Contains(t, w.Body.String(), "$12.50")

	w = e.post("/expenses", url.Values{"category": {"Food"}, "description": {"Refund"}, "amount": {"-3"}}, c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "amount must not be negative")

	w = e.post("/expenses", url.Values{"category": {"Food"}, "amount": {"3"}}, c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = e.post("/expenses", url.Values{"category": {"Food"}, "description": {"x"}, "amount": {"lots"}}, c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	before := creates.Load()
	for _, amount := range []string{"NaN", "nan", "Inf", "-Inf", "+infinity"} {
		w = e.post("/expenses", url.Values{"category": {"Food"}, "description": {"x"}, "amount": {amount}}, c)
		assert.Equal(t, http.StatusBadRequest, w.Code, amount)
		assert.Contains(t, w.Body.String(), "amount must be a number", amount)
		assert.NotContains(t, w.Body.String(), "reference", amount)
	}
	assert.Equal(t, before, creates.Load())

	w = e.post("/expenses/1/delete", nil, c)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "1", deleted)

	w = e.post("/expenses/99/delete", nil, c)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "expense not found")
}

func TestGoalForms(t *testing.T) {
	var update api.GoalUpdate
	var created api.GoalRequest
	e := newBridgeEnv(t, map[string]http.HandlerFunc{
		"POST /api/goals": func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			writeJSON(w, http.StatusCreated, api.Goal{ID: 4})
		},
		"PATCH /api/goals/{id}": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "4", r.PathValue("id"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&update))
			writeJSON(w, http.StatusOK, api.Goal{ID: 4})
		},
		"DELETE /api/goals/{id}": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, api.Message{Message: "goal deleted"})
		},
	})
	c := e.login()

	w := e.post("/goals", url.Values{"name": {"Bike"}, "target_amount": {"800"}, "icon": {"🚲"}}, c)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "Bike", created.Name)
	assert.Equal(t, 800.0, *created.TargetAmount)
	assert.Nil(t, created.CurrentAmount)

	w = e.post("/goals/4/progress", url.Values{"current_amount": {"120.25"}}, c)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.NotNil(t, update.CurrentAmount)
	assert.Equal(t, 120.25, *update.CurrentAmount)
	assert.Nil(t, update.TargetAmount)

	w = e.post("/goals/4/progress", url.Values{}, c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = e.post("/goals/abc/delete", nil, c)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = e.post("/goals/4/delete", nil, c)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/goals", w.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	e := newBridgeEnv(t, nil)
	c := e.login()

	w := e.get("/logout", c)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.False(t, e.mr.Exists(sessionKeyPrefix+c.Value))

	w = e.get("/dashboard", c)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestSessionStoreDownShowsUnavailable(t *testing.T) {
	e := newBridgeEnv(t, nil)
	c := e.login()
	e.mr.Close()

	w := e.get("/dashboard", c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUndecodableResponseIsUpstreamFailure(t *testing.T) {
	e := newBridgeEnv(t, map[string]http.HandlerFunc{
		"GET /api/dashboard/summary": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body>maintenance</body></html>"))
		},
	})
	c := e.login()

	w := e.get("/dashboard", c)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "reference")
	assert.NotContains(t, w.Body.String(), "undecodable")
	assert.NotContains(t, w.Body.String(), "maintenance")
}

func TestLoginReplacesExistingSession(t *testing.T) {
	e := newBridgeEnv(t, nil)
	old := e.login()

	w := e.post("/login", url.Values{"email": {"demo@example.com"}, "password": {"demo123"}}, old)
	require.Equal(t, http.StatusSeeOther, w.Code)
	fresh := sessionCookie(w)
	require.NotNil(t, fresh)
	assert.NotEqual(t, old.Value, fresh.Value)
	assert.False(t, e.mr.Exists(sessionKeyPrefix+old.Value))
	assert.True(t, e.mr.Exists(sessionKeyPrefix+fresh.Value))
	assert.Len(t, e.mr.Keys(), 1)
}

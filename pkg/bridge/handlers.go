package bridge

import (
	"errors"
	"fmt"
	"html/template"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"gryffintwin/pkg/api"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Server renders the browser pages and relays each action to the API with the session's token.
type Server struct {
	cfg      Config
	sessions *SessionStore
	api      *Client
	pages    map[string]*template.Template
}

func NewServer(cfg Config, sessions *SessionStore, client *Client) (*Server, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, sessions: sessions, api: client, pages: pages}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeaders)

	r.Get("/", s.index)
	r.Get("/login", s.loginPage)
	r.Post("/login", s.login)
	r.Get("/register", s.registerPage)
	r.Post("/register", s.register)
	r.Get("/logout", s.logout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/dashboard", s.dashboard)
		r.Get("/expenses", s.expenses)
		r.Post("/expenses", s.createExpense)
		r.Post("/expenses/{id}/delete", s.deleteExpense)
		r.Get("/goals", s.goals)
		r.Post("/goals", s.createGoal)
		r.Post("/goals/{id}/progress", s.goalProgress)
		r.Post("/goals/{id}/delete", s.deleteGoal)
		r.Get("/analytics", s.analytics)
		r.Get("/security", s.security)
		r.Post("/security/alerts/{id}/resolve", s.resolveAlert)
	})
	return r
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (s *Server) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// endSession forgets the browser's session both in Redis and in the cookie.
func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		if err := s.sessions.Delete(r.Context(), c.Value); err != nil {
			log.Printf("delete session: %v", err)
		}
	}
	s.clearCookie(w)
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, auth api.AuthResponse) {
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		if err := s.sessions.Delete(r.Context(), c.Value); err != nil {
			s.unavailable(w, r, err)
			return
		}
	}
	sess, err := s.sessions.Create(r.Context(), Session{
		UserID:         auth.User.ID,
		Name:           auth.User.Name,
		Email:          auth.User.Email,
		Token:          auth.AccessToken,
		TokenExpiresAt: auth.ExpiresAt,
	})
	if err != nil {
		s.unavailable(w, r, err)
		return
	}
	s.setCookie(w, sess.ID)
	redirect(w, r, "/dashboard")
}

// incident logs detail for operators and returns the reference shown to the user.
func incident(format string, args ...any) string {
	ref := uuid.NewString()
	log.Printf("incident %s: %s", ref, fmt.Sprintf(format, args...))
	return ref
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, msg, ref string) {
	s.render(w, status, "error", view{Title: http.StatusText(status), User: sessionFrom(r), Error: msg, Ref: ref})
}

func (s *Server) unavailable(w http.ResponseWriter, r *http.Request, err error) {
	ref := incident("%s %s: %v", r.Method, r.URL.Path, err)
	s.renderError(w, r, http.StatusServiceUnavailable, "The service is unavailable right now. Please try again shortly.", ref)
}

// apiFailure turns an error from the API client into the page the browser sees.
func (s *Server) apiFailure(w http.ResponseWriter, r *http.Request, err error) {
	var uerr *UpstreamError
	switch {
	case errors.Is(err, ErrUnauthorized):
		s.endSession(w, r)
		redirect(w, r, "/login")
	case errors.Is(err, ErrUnavailable):
		s.unavailable(w, r, err)
	case errors.Is(err, ErrInvalidRequest):
		s.renderError(w, r, http.StatusBadRequest, "The submitted values are invalid.", "")
	case errors.As(err, &uerr) && uerr.Status < http.StatusInternalServerError:
		msg := uerr.Message
		if msg == "" {
			msg = http.StatusText(uerr.Status)
		}
		s.renderError(w, r, uerr.Status, msg, "")
	case uerr != nil:
		ref := incident("%s %s: backend status %d body %q", r.Method, r.URL.Path, uerr.Status, uerr.Body)
		s.renderError(w, r, http.StatusBadGateway, "Something went wrong on our side.", ref)
	default:
		ref := incident("%s %s: %v", r.Method, r.URL.Path, err)
		s.renderError(w, r, http.StatusBadGateway, "Something went wrong on our side.", ref)
	}
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(s.cfg.CookieName); err == nil {
		redirect(w, r, "/dashboard")
		return
	}
	redirect(w, r, "/login")
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "login", view{Title: "Sign in", Data: ""})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	fail := func(status int, msg, ref string) {
		s.render(w, status, "login", view{Title: "Sign in", Error: msg, Ref: ref, Data: email})
	}
	if email == "" || password == "" {
		fail(http.StatusBadRequest, "Email and password are required.", "")
		return
	}
	auth, err := s.api.Login(r.Context(), email, password)
	var uerr *UpstreamError
	switch {
	case err == nil:
		s.startSession(w, r, auth)
	case errors.Is(err, ErrUnauthorized):
		fail(http.StatusUnauthorized, "Invalid email or password", "")
	case errors.Is(err, ErrUnavailable):
		fail(http.StatusServiceUnavailable, "The service is unavailable right now. Please try again shortly.",
			incident("login %s: %v", email, err))
	case errors.As(err, &uerr) && uerr.Status < http.StatusInternalServerError:
		fail(uerr.Status, "Sign-in failed.", incident("login %s: backend status %d body %q", email, uerr.Status, uerr.Body))
	default:
		fail(http.StatusBadGateway, "Sign-in failed.", incident("login %s: %v", email, err))
	}
}

func (s *Server) registerPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "register", view{Title: "Create account"})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PostFormValue("name"))
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	fail := func(status int, msg, ref string) {
		s.render(w, status, "register", view{Title: "Create account", Error: msg, Ref: ref})
	}
	if name == "" || email == "" || password == "" {
		fail(http.StatusBadRequest, "Name, email and password are required.", "")
		return
	}
	auth, err := s.api.Register(r.Context(), name, email, password)
	var uerr *UpstreamError
	switch {
	case err == nil:
		s.startSession(w, r, auth)
	case errors.Is(err, ErrUnavailable):
		fail(http.StatusServiceUnavailable, "The service is unavailable right now. Please try again shortly.",
			incident("register %s: %v", email, err))
	case errors.As(err, &uerr) && uerr.Status < http.StatusInternalServerError && uerr.Message != "":
		fail(uerr.Status, uerr.Message, "")
	default:
		fail(http.StatusBadGateway, "Registration failed.", incident("register %s: %v", email, err))
	}
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.endSession(w, r)
	redirect(w, r, "/login")
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	data, err := s.api.Dashboard(r.Context(), sess.Token)
	if err != nil {
		s.apiFailure(w, r, err)
		return
	}
	s.render(w, http.StatusOK, "dashboard", view{Title: "Dashboard", User: sess, Data: data})
}

func (s *Server) expenses(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	data, err := s.api.Expenses(r.Context(), sess.Token)
	if err != nil {
		s.apiFailure(w, r, err)
		return
	}
	s.render(w, http.StatusOK, "expenses", view{Title: "Expenses", User: sess, Data: data})
}

// formAmount reads an optional decimal field; a blank field yields nil.
func formAmount(r *http.Request, field string) (*float64, error) {
	v := strings.TrimSpace(r.PostFormValue(field))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%s must be a number", strings.ReplaceAll(field, "_", " "))
	}
	return &f, nil
}

func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	req := api.ExpenseRequest{
		Category:    strings.TrimSpace(r.PostFormValue("category")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		Date:        strings.TrimSpace(r.PostFormValue("date")),
		Status:      strings.TrimSpace(r.PostFormValue("status")),
	}
	amount, err := formAmount(r, "amount")
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}
	if req.Category == "" || req.Description == "" || amount == nil {
		s.renderError(w, r, http.StatusBadRequest, "Category, description and amount are required.", "")
		return
	}
	req.Amount = amount
	if _, err := s.api.CreateExpense(r.Context(), sessionFrom(r).Token, req); err != nil {
		s.apiFailure(w, r, err)
		return
	}
	redirect(w, r, "/expenses")
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.renderError(w, r, http.StatusNotFound, "expense not found", "")
		return
	}
	if err := s.api.DeleteExpense(r.Context(), sessionFrom(r).Token, id); err != nil {
		s.apiFailure(w, r, err)
		return
	}
	redirect(w, r, "/expenses")
}

func (s *Server) goals(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	data, err := s.api.Goals(r.Context(), sess.Token)
	if err != nil {
		s.apiFailure(w, r, err)
		return
	}
	s.render(w, http.StatusOK, "goals", view{Title: "Goals", User: sess, Data: data})
}

func (s *Server) createGoal(w http.ResponseWriter, r *http.Request) {
	req := api.GoalRequest{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		Icon:        strings.TrimSpace(r.PostFormValue("icon")),
	}
	target, err := formAmount(r, "target_amount")
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}
	current, err := formAmount(r, "current_amount")
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}
	if req.Name == "" || target == nil {
		s.renderError(w, r, http.StatusBadRequest, "Name and target amount are required.", "")
		return
	}
	req.TargetAmount, req.CurrentAmount = target, current
	if _, err := s.api.CreateGoal(r.Context(), sessionFrom(r).Token, req); err != nil {
		s.apiFailure(w, r, err)
		return
	}
	redirect(w, r, "/goals")
}

func (s *Server) goalProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.renderError(w, r, http.StatusNotFound, "goal not found", "")
		return
	}
	current, err := formAmount(r, "current_amount")
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}
	if current == nil {
		s.renderError(w, r, http.StatusBadRequest, "Current amount is required.", "")
		return
	}
	if _, err := s.api.UpdateGoal(r.Context(), sessionFrom(r).Token, id, api.GoalUpdate{CurrentAmount: current}); err != nil {
		s.apiFailure(w, r, err)
		return
	}
	redirect(w, r, "/goals")
}

func (s *Server) deleteGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.renderError(w, r, http.StatusNotFound, "goal not found", "")
		return
	}
	if err := s.api.DeleteGoal(r.Context(), sessionFrom(r).Token, id); err != nil {
		s.apiFailure(w, r, err)
		return
	}
	redirect(w, r, "/goals")
}

func (s *Server) analytics(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	data, err := s.api.Analytics(r.Context(), sess.Token)
	if err != nil {
		s.apiFailure(w, r, err)
		return
	}
	s.render(w, http.StatusOK, "analytics", view{Title: "Analytics", User: sess, Data: data})
}

func (s *Server) security(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	data, err := s.api.Security(r.Context(), sess.Token)
	if err != nil {
		s.apiFailure(w, r, err)
		return
	}
	s.render(w, http.StatusOK, "security", view{Title: "Security", User: sess, Data: data})
}

func (s *Server) resolveAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.renderError(w, r, http.StatusNotFound, "alert not found", "")
		return
	}
	if err := s.api.ResolveAlert(r.Context(), sessionFrom(r).Token, id); err != nil {
		s.apiFailure(w, r, err)
		return
	}
	redirect(w, r, "/security")
}

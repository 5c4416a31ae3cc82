package bridge

import (
	"context"
	"errors"
	"log"
	"net/http"
)

// SecurityHeaders sets the browser hardening headers on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")
		h.Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		next.ServeHTTP(w, r)
	})
}

type sessionKey struct{}

func withSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// sessionFrom returns the session requireSession attached, or nil outside protected routes.
func sessionFrom(r *http.Request) *Session {
	sess, ok := r.Context().Value(sessionKey{}).(Session)
	if !ok {
		return nil
	}
	return &sess
}

// requireSession loads the cookie's session or sends the browser to /login.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(s.cfg.CookieName)
		if err != nil {
			redirect(w, r, "/login")
			return
		}
		sess, err := s.sessions.Load(r.Context(), c.Value)
		switch {
		case err == nil:
			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
		case errors.Is(err, ErrNoSession):
			s.clearCookie(w)
			redirect(w, r, "/login")
		case errors.Is(err, ErrLegacySession):
			log.Printf("discarding session: %v", err)
			if err := s.sessions.Delete(r.Context(), c.Value); err != nil {
				log.Printf("delete legacy session: %v", err)
			}
			s.clearCookie(w)
			redirect(w, r, "/login")
		default:
			s.unavailable(w, r, err)
		}
	})
}

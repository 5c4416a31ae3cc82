package main

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"gryffintwin/models"
	"gryffintwin/pkg/api"
	"gryffintwin/pkg/apperr"
	"gryffintwin/pkg/token"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const ctxUserKey = "user"

// requireBearer resolves the Authorization header to a user and stores it in the gin context.
func (s *server) requireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, raw, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		raw = strings.TrimSpace(raw)
		if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
			abortError(c, apperr.Unauthenticated("missing or invalid Authorization header"))
			return
		}
		id, err := s.tokens.Verify(raw)
		switch {
		case errors.Is(err, token.ErrExpired):
			abortError(c, apperr.Unauthenticated("token expired"))
			return
		case err != nil:
			abortError(c, apperr.Unauthenticated("invalid token"))
			return
		}
		user, err := s.users.ByID(c.Request.Context(), id)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				err = apperr.Unauthenticated("user not found")
			}
			abortError(c, err)
			return
		}
		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// currentUser is only meaningful behind requireBearer.
func currentUser(c *gin.Context) models.User {
	v, _ := c.Get(ctxUserKey)
	user, _ := v.(models.User)
	return user
}

const (
	limiterIdleTTL       = 30 * time.Minute
	limiterSweepInterval = 5 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// ipLimiter throttles credential endpoints per client IP. Idle entries are dropped lazily on use.
type ipLimiter struct {
	mu        sync.Mutex
	every     rate.Limit
	burst     int
	entries   map[string]*limiterEntry
	lastSweep time.Time
	now       func() time.Time
}

// newIPLimiter allows perMinute attempts per IP with the given burst. perMinute <= 0 disables limiting.
func newIPLimiter(perMinute, burst int, now func() time.Time) *ipLimiter {
	if perMinute <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &ipLimiter{
		every:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
		entries: make(map[string]*limiterEntry),
		now:     now,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.lastSweep) > limiterSweepInterval {
		for k, e := range l.entries {
			if now.Sub(e.lastUse) > limiterIdleTTL {
				delete(l.entries, k)
			}
		}
		l.lastSweep = now
	}
	e, ok := l.entries[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.every, l.burst)}
		l.entries[ip] = e
	}
	e.lastUse = now
	return e.limiter.AllowN(now, 1)
}

func (l *ipLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, api.ErrorResponse{Error: "too many attempts, try again later"})
			return
		}
		c.Next()
	}
}

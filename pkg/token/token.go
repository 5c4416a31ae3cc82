// Package token mints and verifies the bearer tokens used by the JSON API.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TTL is the lifetime of every issued token, whichever endpoint issued it.
const TTL = 24 * time.Hour

const issuer = "gryffintwin"

var (
	ErrExpired   = errors.New("token expired")
	ErrMalformed = errors.New("token malformed")
)

// Token is a signed access token and the instant it stops being valid.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

type Service struct {
	secret []byte
	now    func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(secret []byte, opts ...Option) *Service {
	s := &Service{secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a token for userID valid for TTL.
func (s *Service) Issue(userID uint) (Token, error) {
	if userID == 0 {
		return Token{}, errors.New("token: zero subject")
	}
	now := s.now()
	exp := now.Add(TTL)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	// NumericDate truncates to seconds; report what the token actually carries.
	return Token{Value: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify returns the subject of raw. An expired but otherwise sound token yields ErrExpired;
// anything else that fails yields ErrMalformed.
func (s *Service) Verify(raw string) (uint, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpired
		}
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrMalformed, claims.Subject)
	}
	return uint(id), nil
}

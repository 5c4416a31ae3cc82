package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-key-123")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueAndVerify(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := NewService(testSecret, WithClock(fixedClock(now)))

	tok, err := svc.Issue(42)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Value)
	assert.Equal(t, now.Add(TTL), tok.ExpiresAt.UTC())

	id, err := svc.Verify(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok.Value, claims)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, now, claims.IssuedAt.Time.UTC())
}

func TestIssueRejectsZeroSubject(t *testing.T) {
	_, err := NewService(testSecret).Issue(0)
	assert.Error(t, err)
}

func TestVerifyExpiredIsDistinctFromMalformed(t *testing.T) {
	issuedAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	tok, err := NewService(testSecret, WithClock(fixedClock(issuedAt))).Issue(7)
	require.NoError(t, err)

	later := NewService(testSecret, WithClock(fixedClock(issuedAt.Add(TTL+time.Second))))
	_, err = later.Verify(tok.Value)
	assert.ErrorIs(t, err, ErrExpired)
	assert.NotErrorIs(t, err, ErrMalformed)

	justBefore := NewService(testSecret, WithClock(fixedClock(issuedAt.Add(TTL-time.Second))))
	id, err := justBefore.Verify(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)
}

func TestVerifyMalformed(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := NewService(testSecret, WithClock(fixedClock(now)))
	good, err := svc.Issue(7)
	require.NoError(t, err)

	parts := strings.Split(good.Value, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	otherSecret, err := NewService([]byte("another-secret"), WithClock(fixedClock(now))).Issue(7)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "7",
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "7",
		Issuer:  issuer,
	}).SignedString(testSecret)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice@example.com",
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(testSecret)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"corrupted signature", tampered},
		{"signed with another secret", otherSecret.Value},
		{"alg none", noneAlg},
		{"missing expiry", noExpiry},
		{"non numeric subject", badSubject},
		{"garbage", "not-a-token"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			assert.ErrorIs(t, err, ErrMalformed)
			assert.NotErrorIs(t, err, ErrExpired)
		})
	}
}

func TestExpiredTokenWithBadSignatureIsMalformed(t *testing.T) {
	issuedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tok, err := NewService([]byte("old-secret"), WithClock(fixedClock(issuedAt))).Issue(3)
	require.NoError(t, err)

	svc := NewService(testSecret, WithClock(fixedClock(issuedAt.Add(48*time.Hour))))
	_, err = svc.Verify(tok.Value)
	assert.ErrorIs(t, err, ErrMalformed)
}

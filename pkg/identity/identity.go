// Package identity stores user credentials and checks them.
package identity

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"gryffintwin/models"
	"gryffintwin/pkg/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	MinPasswordLength = 6
	// bcrypt ignores everything past 72 bytes, so longer passwords are refused.
	MaxPasswordLength = 72

	maxNameLen  = 120
	maxEmailLen = 255
)

var (
	ErrDuplicateEmail     = apperr.Conflict("email already registered")
	ErrInvalidCredentials = apperr.Unauthenticated("invalid credentials")
)

type Store struct {
	db        *gorm.DB
	cost      int
	dummyHash []byte
	now       func() time.Time
}

type Option func(*Store)

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) Option {
	return func(s *Store) { s.cost = cost }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(db *gorm.DB, opts ...Option) (*Store, error) {
	s := &Store{db: db, cost: bcrypt.DefaultCost, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	// compared against when the email is unknown so both failure paths take the same time
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword(seed, s.cost)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	s.dummyHash = hash
	return s, nil
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperr.Validation("password too short (min %d)", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return apperr.Validation("password too long (max %d bytes)", MaxPasswordLength)
	}
	return nil
}

// Register creates a user. A taken email fails with ErrDuplicateEmail, including when a concurrent
// registration wins the race between the pre-check and the insert.
func (s *Store) Register(ctx context.Context, name, email, password string) (models.User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" {
		return models.User{}, apperr.Validation("name required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return models.User{}, apperr.Validation("name must be at most %d characters", maxNameLen)
	}
	if utf8.RuneCountInString(email) > maxEmailLen {
		return models.User{}, apperr.Validation("email must be at most %d characters", maxEmailLen)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return models.User{}, apperr.Validation("invalid email address")
	}
	if err := validatePassword(password); err != nil {
		return models.User{}, err
	}

	db := s.db.WithContext(ctx)
	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return models.User{}, ErrDuplicateEmail
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, apperr.Internal(fmt.Errorf("lookup user: %w", err))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.User{}, apperr.Internal(fmt.Errorf("hash password: %w", err))
	}
	user := models.User{Name: name, Email: email, HashedPassword: hashed}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, apperr.Internal(fmt.Errorf("create user: %w", err))
	}
	return user, nil
}

// Authenticate returns the user owning email when password matches, ErrInvalidCredentials otherwise.
// A wrong password for an existing account is recorded as a security alert.
func (s *Store) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	email = NormalizeEmail(email)
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, apperr.Internal(fmt.Errorf("lookup user: %w", err))
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return models.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		s.recordFailedLogin(ctx, user.ID)
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Store) recordFailedLogin(ctx context.Context, userID uint) {
	alert := models.SecurityAlert{
		UserID:    userID,
		AlertType: models.AlertFailedLogin,
		Message:   "failed sign-in attempt",
		Timestamp: s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&alert).Error; err != nil {
		log.Printf("warning: recording failed login for user %d: %v", userID, err)
	}
}

// ByID loads a user by primary key.
func (s *Store) ByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, apperr.NotFound("user")
		}
		return models.User{}, apperr.Internal(fmt.Errorf("load user %d: %w", id, err))
	}
	return user, nil
}

// SetPassword replaces the password of the account owning email.
func (s *Store) SetPassword(ctx context.Context, email, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return apperr.Internal(fmt.Errorf("hash password: %w", err))
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", NormalizeEmail(email)).
		Update("hashed_password", hashed)
	if res.Error != nil {
		return apperr.Internal(fmt.Errorf("update password: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint")
}

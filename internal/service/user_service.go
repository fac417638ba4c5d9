package service

import (
	"context"
	"errors"
	"strings"

	dom "github.com/seriessoft-design/spinlist-mobile-app/internal/domain"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/repo"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/utils"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidPhone       = errors.New("invalid phone number")
)

const minPasswordLen = 8

// UserService handles accounts: password sign-in, one-time-code sign-in, and
// the is_pro entitlement cache on the user row.
type UserService struct {
	repo repo.UserRepo
}

// NewUserService returns a new UserService.
func NewUserService(repo repo.UserRepo) *UserService {
	return &UserService{repo: repo}
}

// Register creates a password account. Email shape and password length are
// checked here, before anything touches the store.
func (s *UserService) Register(ctx context.Context, email, password string) (dom.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !utils.IsValidEmail(email) {
		return dom.User{}, ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return dom.User{}, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return dom.User{}, err
	}
	u, err := s.repo.CreateEmail(ctx, email, string(hash))
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.User{}, ErrEmailTaken
		}
		return dom.User{}, err
	}
	return u, nil
}

// ValidateCredentials checks email and password; returns the user if valid.
func (s *UserService) ValidateCredentials(ctx context.Context, email, password string) (dom.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return dom.User{}, ErrInvalidCredentials
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, err
	}
	if u.PasswordHash == "" {
		// Code-only account; no password to compare.
		return dom.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// GetByID fetches a user.
func (s *UserService) GetByID(ctx context.Context, id int64) (dom.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrNotFound
		}
		return dom.User{}, err
	}
	return u, nil
}

// EnsureByPhone returns the account for a phone number, creating it on first
// one-time-code sign-in. A concurrent first sign-in is resolved by re-reading
// after a unique violation.
func (s *UserService) EnsureByPhone(ctx context.Context, phone string) (dom.User, error) {
	phone = utils.NormalizePhone(phone)
	if phone == "" {
		return dom.User{}, ErrInvalidPhone
	}
	u, err := s.repo.GetByPhone(ctx, phone)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return dom.User{}, err
	}
	u, err = s.repo.CreatePhone(ctx, phone)
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return s.repo.GetByPhone(ctx, phone)
		}
		return dom.User{}, err
	}
	return u, nil
}

package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// MinPasswordLength matches the registration rule exposed by the API.
	MinPasswordLength = 8
	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
)

// Service owns credential checks. It never mints tokens; the HTTP layer
// passes the authenticated user's Subject to the token issuer.
type Service struct {
	repo Repository
	// clock is injectable for deterministic tests.
	clock func() time.Time
	cost  int
	// dummyHash is compared against when the email is unknown so that
	// lookups for missing and existing accounts take similar time.
	dummyHash []byte
}

type Option func(*Service)

// WithBcryptCost overrides bcrypt.DefaultCost (tests use bcrypt.MinCost).
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, clock: time.Now, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.cost)
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkPassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidArgument, MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || strings.TrimSpace(in.Name) == "" {
		return User{}, ErrInvalidArgument
	}
	if err := checkPassword(in.Password); err != nil {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock().UTC()
	return s.repo.Create(ctx, User{
		UUID:         uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		Address:      strings.TrimSpace(in.Address),
		PasswordHash: string(hash),
		IsMarketing:  in.IsMarketing,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Authenticate checks email/password and records the login time.
// Unknown emails and wrong passwords both return ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	now := s.clock().UTC()
	if err := s.repo.TouchLastLogin(ctx, u.ID, now); err != nil {
		return User{}, fmt.Errorf("record login: %w", err)
	}
	u.LastLoggedIn = &now
	u.UpdatedAt = now
	return u, nil
}

// ResetPassword replaces the password of the account registered under email.
func (s *Service) ResetPassword(ctx context.Context, email, password string) (User, error) {
	if err := checkPassword(password); err != nil {
		return User{}, err
	}
	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	now := s.clock().UTC()
	if err := s.repo.UpdatePassword(ctx, u.ID, string(hash), now); err != nil {
		return User{}, err
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = now
	return u, nil
}

// Get loads a user by the subject carried in an access token.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.FindByID(ctx, id)
}

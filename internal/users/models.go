package users

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// User is an account able to obtain access tokens.
// PasswordHash is a bcrypt hash and is never serialized.
type User struct {
	ID           int64      `json:"id" db:"id"`
	UUID         string     `json:"uuid" db:"uuid"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	PhoneNumber  string     `json:"phone_number" db:"phone_number"`
	Address      string     `json:"address" db:"address"`
	PasswordHash string     `json:"-" db:"password"`
	IsMarketing  bool       `json:"is_marketing" db:"is_marketing"`
	LastLoggedIn *time.Time `json:"last_logged_in" db:"last_logged_in"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Subject is the token subject for u: its numeric primary key.
func (u User) Subject() string {
	return strconv.FormatInt(u.ID, 10)
}

type RegisterInput struct {
	Name        string
	Email       string
	PhoneNumber string
	Address     string
	Password    string
	IsMarketing bool
}

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidArgument    = errors.New("invalid argument")

	// ErrPasswordTooLong wraps ErrInvalidArgument.
	ErrPasswordTooLong = fmt.Errorf("%w: password must not exceed %d bytes", ErrInvalidArgument, MaxPasswordBytes)
)

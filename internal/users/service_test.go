package users

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	svc := NewService(repo, WithBcryptCost(bcrypt.MinCost), WithClock(func() time.Time { return fixedNow }))
	return svc, repo
}

func registerJohn(t *testing.T, svc *Service) User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Name:        "John Doe",
		Email:       " John@Example.com ",
		PhoneNumber: "555-555-5555",
		Address:     "123 Main St",
		Password:    "password",
	})
	require.NoError(t, err)
	return u
}

func TestRegister_HashesPasswordAndNormalizesEmail(t *testing.T) {
	svc, _ := newTestService()
	u := registerJohn(t, svc)

	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "1", u.Subject())
	assert.Equal(t, "john@example.com", u.Email)
	assert.NotEmpty(t, u.UUID)
	assert.NotEqual(t, "password", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password")))
	assert.Equal(t, fixedNow, u.CreatedAt)
}

func TestRegister_RejectsDuplicatesAndShortPasswords(t *testing.T) {
	svc, _ := newTestService()
	registerJohn(t, svc)

	_, err := svc.Register(context.Background(), RegisterInput{Name: "J", Email: "JOHN@example.com", Password: "password"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Register(context.Background(), RegisterInput{Name: "J", Email: "j@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.Register(context.Background(), RegisterInput{Name: "", Email: "k@example.com", Password: "password"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAuthenticate(t *testing.T) {
	svc, repo := newTestService()
	registerJohn(t, svc)

	u, err := svc.Authenticate(context.Background(), "john@example.com", "password")
	require.NoError(t, err)
	require.NotNil(t, u.LastLoggedIn)
	assert.Equal(t, fixedNow, *u.LastLoggedIn)

	stored, err := repo.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoggedIn)

	_, err = svc.Authenticate(context.Background(), "john@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@example.com", "password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResetPassword(t *testing.T) {
	svc, _ := newTestService()
	registerJohn(t, svc)

	_, err := svc.ResetPassword(context.Background(), "john@example.com", "12345678")
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "john@example.com", "password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(context.Background(), "john@example.com", "12345678")
	assert.NoError(t, err)

	_, err = svc.ResetPassword(context.Background(), "nobody@example.com", "12345678")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ResetPassword(context.Background(), "john@example.com", "123")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPasswordsLongerThanBcryptAllowsAreRejected(t *testing.T) {
	svc, _ := newTestService()
	registerJohn(t, svc)
	long := strings.Repeat("p", MaxPasswordBytes+1)

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Jane", Email: "jane@example.com", Password: long})
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.ResetPassword(context.Background(), "john@example.com", long)
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	// Multi-byte runes count by bytes: 25 three-byte runes is 75 bytes.
	_, err = svc.Register(context.Background(), RegisterInput{Name: "Jane", Email: "jane@example.com", Password: strings.Repeat("€", 25)})
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = svc.Register(context.Background(), RegisterInput{Name: "Jane", Email: "jane@example.com", Password: strings.Repeat("p", MaxPasswordBytes)})
	assert.NoError(t, err)
}

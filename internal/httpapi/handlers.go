package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"petshop-api/internal/audit"
	"petshop-api/internal/auth"
	"petshop-api/internal/users"
	"petshop-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// TokenIssuer mints an access token for an authenticated subject.
type TokenIssuer interface {
	Issue(now time.Time, uid auth.UID) (string, error)
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Tokens TokenIssuer
	Users  *users.Service
	Audit  *audit.Service

	// Limiter is optional; without it logins are not throttled.
	Limiter          LoginLimiter
	MaxLoginAttempts int

	Clock func() time.Time
}

func (h Handlers) now() time.Time {
	if h.Clock != nil {
		return h.Clock()
	}
	return time.Now()
}

func origin(c *gin.Context) audit.Origin {
	return audit.Origin{IP: c.ClientIP(), RequestID: logger.RequestID(c.Request.Context())}
}

func internalError(c *gin.Context, msg string, err error) {
	logger.FromGin(c).Error(msg, "err", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error."})
}

func malformedBody(c *gin.Context, err error) {
	logger.FromGin(c).Debug("request body rejected", "err", err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Malformed request body."})
}

func unprocessable(c *gin.Context, errs FieldErrors) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
}

// --- Auth ---

var passwordTooLong = FieldErrors{"password": {fmt.Sprintf("The password must not be greater than %d bytes.", users.MaxPasswordBytes)}}

type registerRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Email       string `json:"email" binding:"required,email,max=255"`
	PhoneNumber string `json:"phone_number" binding:"required,max=64"`
	Address     string `json:"address" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
	IsMarketing bool   `json:"is_marketing"`
}

// Register creates an account. It does not log the user in.
func (h Handlers) Register(c *gin.Context) {
	var req registerRequest
	errs, err := bindJSON(c, &req)
	if err != nil {
		malformedBody(c, err)
		return
	}
	if errs != nil {
		unprocessable(c, errs)
		return
	}

	u, err := h.Users.Register(c.Request.Context(), users.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Password:    req.Password,
		IsMarketing: req.IsMarketing,
	})
	switch {
	case errors.Is(err, users.ErrEmailTaken):
		unprocessable(c, FieldErrors{"email": {"The email has already been taken."}})
		return
	case errors.Is(err, users.ErrPasswordTooLong):
		unprocessable(c, passwordTooLong)
		return
	case errors.Is(err, users.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	case err != nil:
		internalError(c, "register failed", err)
		return
	}

	h.record(c, h.Audit.LogRegistered(c.Request.Context(), u.ID, u.Email, origin(c)))
	c.JSON(http.StatusOK, gin.H{"message": "Successfully registered.", "user": u})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and returns a signed access token.
// Failed attempts are counted per email and client IP; the counter clears on success.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	errs, err := bindJSON(c, &req)
	if err != nil {
		malformedBody(c, err)
		return
	}
	if errs != nil {
		unprocessable(c, errs)
		return
	}

	ctx := c.Request.Context()
	log := logger.FromGin(c)
	o := origin(c)
	key := loginThrottleKey(req.Email, o.IP)

	if h.throttled() {
		n, err := h.Limiter.Attempts(ctx, key)
		if err != nil {
			log.Warn("login limiter unavailable", "err", err)
		} else if n >= int64(h.MaxLoginAttempts) {
			h.record(c, h.Audit.LogLoginFailed(ctx, req.Email, "throttled", o))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many login attempts."})
			return
		}
	}

	u, err := h.Users.Authenticate(ctx, req.Email, req.Password)
	if errors.Is(err, users.ErrInvalidCredentials) {
		if h.throttled() {
			if _, err := h.Limiter.RecordFailure(ctx, key); err != nil {
				log.Warn("login limiter unavailable", "err", err)
			}
		}
		h.record(c, h.Audit.LogLoginFailed(ctx, req.Email, "invalid credentials", o))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password."})
		return
	}
	if err != nil {
		internalError(c, "login failed", err)
		return
	}

	token, err := h.Tokens.Issue(h.now(), auth.UID(u.Subject()))
	if err != nil {
		internalError(c, "token issuance failed", err)
		return
	}
	if h.throttled() {
		if err := h.Limiter.Reset(ctx, key); err != nil {
			log.Warn("login limiter reset failed", "err", err)
		}
	}

	h.record(c, h.Audit.LogLoginSucceeded(ctx, u.ID, u.Email, o))
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged in.", "token": token})
}

func (h Handlers) throttled() bool {
	return h.Limiter != nil && h.MaxLoginAttempts > 0
}

type resetPasswordRequest struct {
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

// ResetPassword replaces the caller's password and returns a fresh token.
// The email must belong to the authenticated user.
func (h Handlers) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	errs, err := bindJSON(c, &req)
	if err != nil {
		malformedBody(c, err)
		return
	}
	if errs != nil {
		unprocessable(c, errs)
		return
	}

	current, ok := h.currentUser(c)
	if !ok {
		return
	}
	invalidEmail := FieldErrors{"email": {"The selected email is invalid."}}
	if !strings.EqualFold(strings.TrimSpace(req.Email), current.Email) {
		unprocessable(c, invalidEmail)
		return
	}

	u, err := h.Users.ResetPassword(c.Request.Context(), current.Email, req.Password)
	switch {
	case errors.Is(err, users.ErrPasswordTooLong):
		unprocessable(c, passwordTooLong)
		return
	case errors.Is(err, users.ErrNotFound):
		unprocessable(c, invalidEmail)
		return
	case err != nil:
		internalError(c, "password reset failed", err)
		return
	}

	token, err := h.Tokens.Issue(h.now(), auth.UID(u.Subject()))
	if err != nil {
		internalError(c, "token issuance failed", err)
		return
	}

	h.record(c, h.Audit.LogPasswordReset(c.Request.Context(), u.ID, u.Email, origin(c)))
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully.", "token": token})
}

// Logout acknowledges the request. Tokens are stateless and stay valid until exp.
func (h Handlers) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out."})
}

// Me returns the uid carried by the token and the account it names.
func (h Handlers) Me(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"uid": auth.UID(u.Subject()), "user": u})
}

// currentUser loads the account named by the verified token.
// It writes the error response itself and reports false on failure.
func (h Handlers) currentUser(c *gin.Context) (users.User, bool) {
	uid, err := auth.UIDFromGin(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized!"})
		return users.User{}, false
	}
	id, err := strconv.ParseInt(uid.String(), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return users.User{}, false
	}
	u, err := h.Users.Get(c.Request.Context(), id)
	if errors.Is(err, users.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "User not found."})
		return users.User{}, false
	}
	if err != nil {
		internalError(c, "user lookup failed", err)
		return users.User{}, false
	}
	return u, true
}

// record logs audit failures; they never fail the request.
func (h Handlers) record(c *gin.Context, err error) {
	if err != nil && h.Audit != nil {
		logger.FromGin(c).Warn("audit append failed", "err", err)
	}
}

package auth

import (
	"errors"
	"net/http"
)

// Per-request rejection reasons. Verify always returns one of these (possibly wrapped).
var (
	ErrMissingToken     = errors.New("auth: no token")
	ErrMalformedToken   = errors.New("auth: malformed token")
	ErrInvalidSignature = errors.New("auth: invalid signature")
	ErrAudienceMismatch = errors.New("auth: audience mismatch")
	ErrIssuerMismatch   = errors.New("auth: issuer mismatch")
	ErrTokenNotYetValid = errors.New("auth: token not yet valid")
	ErrTokenExpired     = errors.New("auth: token expired")
)

// ErrConfiguration marks missing or unusable key material. It is returned at
// construction time only and must stop the process from starting.
var ErrConfiguration = errors.New("auth: invalid configuration")

// Rejection describes how a failed verification is reported to the client.
type Rejection struct {
	Status  int
	Reason  string
	Message string
}

// Reject maps a verification error to its client-facing rejection.
// Every verification failure is a 401; unknown errors are treated as invalid tokens.
func Reject(err error) Rejection {
	r := Rejection{Status: http.StatusUnauthorized, Reason: "invalid_token", Message: "Invalid token"}
	switch {
	case errors.Is(err, ErrMissingToken):
		r.Reason, r.Message = "missing_token", "Unauthorized!"
	case errors.Is(err, ErrMalformedToken):
		r.Reason = "malformed_token"
	case errors.Is(err, ErrInvalidSignature):
		r.Reason = "invalid_signature"
	case errors.Is(err, ErrAudienceMismatch):
		r.Reason = "audience_mismatch"
	case errors.Is(err, ErrIssuerMismatch):
		r.Reason = "issuer_mismatch"
	case errors.Is(err, ErrTokenNotYetValid):
		r.Reason, r.Message = "token_not_yet_valid", "Token not yet valid"
	case errors.Is(err, ErrTokenExpired):
		r.Reason, r.Message = "token_expired", "Token expired"
	}
	return r
}

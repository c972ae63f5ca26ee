package auth

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates bearer tokens minted by an Issuer sharing the same Keyring.
// Verify is pure: it reads only the token, the supplied time and the keyring.
type Verifier struct {
	keys   *Keyring
	parser *jwt.Parser
}

func NewVerifier(keys *Keyring) (*Verifier, error) {
	if keys == nil {
		return nil, fmt.Errorf("%w: keyring is required", ErrConfiguration)
	}
	return &Verifier{
		keys:   keys,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{keys.method.Alg()})),
	}, nil
}

/* ===================== VERIFY TOKEN ===================== */

// Verify checks raw at time now and returns its claims.
//
// Order: framing, signature, then audience, issuer, not-before and expiry.
// The signature is checked over the raw segments before any claim is decoded,
// so a modified claims segment is always reported as ErrInvalidSignature.
func (v *Verifier) Verify(raw string, now time.Time) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, ErrMissingToken
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Claims{}, fmt.Errorf("%w: expected 3 segments", ErrMalformedToken)
	}
	sig, err := v.parser.DecodeSegment(parts[2])
	if err != nil {
		return Claims{}, fmt.Errorf("%w: signature segment: %v", ErrMalformedToken, err)
	}

	signingString := parts[0] + "." + parts[1]
	if err := v.keys.method.Verify(signingString, sig, v.keys.verifyKey); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	var claims Claims
	token, _, err := v.parser.ParseUnverified(raw, &claims)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenUnverifiable) {
			return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	// The MAC covers the header, but a header naming another algorithm must
	// still be refused so alg confusion cannot slip through.
	if token.Method == nil || token.Method.Alg() != v.keys.method.Alg() {
		return Claims{}, fmt.Errorf("%w: unexpected signing method", ErrInvalidSignature)
	}

	if err := v.checkClaims(claims, now); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

func (v *Verifier) checkClaims(c Claims, now time.Time) error {
	if !slices.Contains(c.Audience, v.keys.identity) {
		return ErrAudienceMismatch
	}
	if c.Issuer != v.keys.identity {
		return ErrIssuerMismatch
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrTokenNotYetValid
	}
	if c.ExpiresAt == nil {
		return fmt.Errorf("%w: exp claim missing", ErrMalformedToken)
	}
	if !now.Before(c.ExpiresAt.Time) {
		return ErrTokenExpired
	}
	if c.UID == "" {
		return fmt.Errorf("%w: uid claim missing", ErrMalformedToken)
	}
	return nil
}

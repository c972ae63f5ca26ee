package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultTokenTTL  = time.Hour
	DefaultNotBefore = time.Minute
)

// Issuer mints signed access tokens. It does not authenticate anyone;
// callers pass a subject whose credentials they already checked.
type Issuer struct {
	keys      *Keyring
	ttl       time.Duration
	notBefore time.Duration
}

// NewIssuer returns an Issuer signing with keys. A zero notBefore omits the nbf claim.
func NewIssuer(keys *Keyring, ttl, notBefore time.Duration) (*Issuer, error) {
	if keys == nil {
		return nil, fmt.Errorf("%w: keyring is required", ErrConfiguration)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: token ttl must be positive", ErrConfiguration)
	}
	if notBefore < 0 || notBefore >= ttl {
		return nil, fmt.Errorf("%w: not-before must be in [0, ttl)", ErrConfiguration)
	}
	return &Issuer{keys: keys, ttl: ttl, notBefore: notBefore}, nil
}

// TTL is the lifetime of issued tokens.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue returns the compact JWS for uid, valid from now+notBefore until now+ttl.
func (i *Issuer) Issue(now time.Time, uid UID) (string, error) {
	claims, err := i.Claims(now, uid)
	if err != nil {
		return "", err
	}
	t := jwt.NewWithClaims(i.keys.method, claims)
	s, err := t.SignedString(i.keys.signKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Claims builds the claim set Issue would sign.
func (i *Issuer) Claims(now time.Time, uid UID) (Claims, error) {
	if uid == "" {
		return Claims{}, errors.New("auth: uid is required")
	}
	rc := jwt.RegisteredClaims{
		Issuer:    i.keys.identity,
		Audience:  jwt.ClaimStrings{i.keys.identity},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	if i.notBefore > 0 {
		rc.NotBefore = jwt.NewNumericDate(now.Add(i.notBefore))
	}
	return Claims{RegisteredClaims: rc, UID: uid}, nil
}

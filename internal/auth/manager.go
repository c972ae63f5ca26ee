package auth

import (
	"petshop-api/internal/config"
)

// Manager bundles the Issuer and Verifier built from one configuration, so
// the process holds exactly one signing key for both directions.
type Manager struct {
	*Issuer
	*Verifier
}

func NewManager(cfg config.AuthConfig) (*Manager, error) {
	keys, err := NewKeyring(cfg)
	if err != nil {
		return nil, err
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	iss, err := NewIssuer(keys, ttl, cfg.NotBefore)
	if err != nil {
		return nil, err
	}
	ver, err := NewVerifier(keys)
	if err != nil {
		return nil, err
	}
	return &Manager{Issuer: iss, Verifier: ver}, nil
}

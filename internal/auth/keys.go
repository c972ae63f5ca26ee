package auth

import (
	"crypto/rsa"
	"fmt"
	"os"

	"petshop-api/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// Keyring is the immutable key material shared by Issuer and Verifier.
// It is built once at startup and read concurrently without locking.
type Keyring struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any

	// identity is the server base URL, used as both iss and aud.
	identity string
}

// NewKeyring builds the keyring described by cfg.
func NewKeyring(cfg config.AuthConfig) (*Keyring, error) {
	switch cfg.Algorithm {
	case "", config.AlgorithmHS256:
		secret, err := cfg.SigningSecret()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		return NewHMACKeyring(secret, cfg.Issuer)
	case config.AlgorithmRS256:
		if cfg.PrivateKeyFile == "" {
			return nil, fmt.Errorf("%w: JWT_PRIVATE_KEY_FILE is required for RS256", ErrConfiguration)
		}
		pemBytes, err := os.ReadFile(cfg.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("%w: read private key: %v", ErrConfiguration, err)
		}
		key, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
		if err != nil {
			return nil, fmt.Errorf("%w: parse private key: %v", ErrConfiguration, err)
		}
		return NewRSAKeyring(key, cfg.Issuer)
	default:
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrConfiguration, cfg.Algorithm)
	}
}

// NewHMACKeyring signs and verifies with HMAC-SHA-256 under secret.
func NewHMACKeyring(secret []byte, identity string) (*Keyring, error) {
	if len(secret) < config.MinSecretLength {
		return nil, fmt.Errorf("%w: signing key must be at least %d bytes, got %d", ErrConfiguration, config.MinSecretLength, len(secret))
	}
	if identity == "" {
		return nil, fmt.Errorf("%w: issuer is required", ErrConfiguration)
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Keyring{
		method:    jwt.SigningMethodHS256,
		signKey:   key,
		verifyKey: key,
		identity:  identity,
	}, nil
}

// NewRSAKeyring signs with key and verifies with its public half (RS256).
func NewRSAKeyring(key *rsa.PrivateKey, identity string) (*Keyring, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: private key is required", ErrConfiguration)
	}
	if key.N.BitLen() < 2048 {
		return nil, fmt.Errorf("%w: RSA key must be at least 2048 bits", ErrConfiguration)
	}
	if identity == "" {
		return nil, fmt.Errorf("%w: issuer is required", ErrConfiguration)
	}
	return &Keyring{
		method:    jwt.SigningMethodRS256,
		signKey:   key,
		verifyKey: &key.PublicKey,
		identity:  identity,
	}, nil
}

// Algorithm reports the JWS alg header value.
func (k *Keyring) Algorithm() string { return k.method.Alg() }

// Identity is the issuer and audience this server signs and accepts.
func (k *Keyring) Identity() string { return k.identity }

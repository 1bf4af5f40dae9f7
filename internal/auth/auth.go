// Package auth implements the credential and token issuer component.
// The issuer signs short-lived JWTs with the practitioner's RSA private key
// for use against the m-Path API.
package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrKeyConfig is returned when the private key is missing, unreadable or not a valid RSA PEM key.
	ErrKeyConfig = errors.New("invalid private key configuration")
	// ErrSigning is returned when signing the token fails.
	ErrSigning = errors.New("token signing failed")
)

// Issuer signs m-Path API tokens with a fixed RSA private key.
//
// The key is loaded once at construction. Token issuance is pure over its
// inputs and the injected clock.
type Issuer struct {
	key *rsa.PrivateKey
	now func() time.Time
}

type options struct {
	now func() time.Time
}

// Options represents an optional function to override Issuer default values.
type Options func(*options)

// New returns an Issuer using the PEM encoded RSA private key at keyPath.
func New(keyPath string, args ...Options) (Issuer, error) {
	opts := options{now: time.Now}
	for _, opt := range args {
		opt(&opts)
	}

	pemData, err := os.ReadFile(keyPath)
	if err != nil {
		return Issuer{}, fmt.Errorf("%w: could not read %s: %v", ErrKeyConfig, keyPath, err)
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemData)
	if err != nil {
		return Issuer{}, fmt.Errorf("%w: %s is not a valid RSA private key: %v", ErrKeyConfig, keyPath, err)
	}

	return Issuer{key: key, now: opts.now}, nil
}

// Token returns a signed RS256 JWT for the given user code.
//
// The token carries the user code and an expiry ttl from now, matching what
// the platform expects for bearer authentication.
func (i Issuer) Token(userCode string, ttl time.Duration) (string, error) {
	if userCode == "" {
		return "", fmt.Errorf("%w: user code cannot be empty", ErrKeyConfig)
	}
	if ttl <= 0 {
		return "", fmt.Errorf("%w: token ttl must be positive, got %v", ErrKeyConfig, ttl)
	}

	claims := jwt.MapClaims{
		"exp":      i.now().UTC().Add(ttl).Unix(),
		"userCode": userCode,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigning, err)
	}
	return token, nil
}

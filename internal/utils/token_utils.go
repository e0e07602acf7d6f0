package utils

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccountClaims is the token payload: the caller's public key plus the
// standard time bounds. The token is self-signed with the key pair whose
// public half it carries; possession of the private key is the credential.
type AccountClaims struct {
	PubKey string `json:"pub_key"`
	jwt.RegisteredClaims
}

var (
	// ErrTokenExpired indicates a token issued outside the accepted window.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid indicates a malformed token or a failed signature check.
	ErrTokenInvalid = errors.New("invalid token")
)

// MintAccountToken issues a PS256 token for the given key pair, valid for ttl.
func MintAccountToken(priv *rsa.PrivateKey, pubKeyPEM string, ttl time.Duration) (string, error) {
	return MintAccountTokenAt(priv, pubKeyPEM, time.Now(), ttl)
}

// MintAccountTokenAt issues a token with an explicit issue time. Split out so
// tests can produce expired or future-dated tokens.
func MintAccountTokenAt(priv *rsa.PrivateKey, pubKeyPEM string, issuedAt time.Time, ttl time.Duration) (string, error) {
	claims := AccountClaims{
		PubKey: pubKeyPEM,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodPS256, claims)
	signed, err := token.SignedString(priv)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyAccountToken validates a self-signed account token and returns the
// embedded public key PEM. maxAge bounds the accepted issue time on the server
// side regardless of the expiry the client signed into the token.
func VerifyAccountToken(tokenString string, maxAge time.Duration) (string, error) {
	claims := &AccountClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		c, ok := t.Claims.(*AccountClaims)
		if !ok || c.PubKey == "" {
			return nil, errors.New("token carries no public key")
		}
		return ParseRSAPublicKey(c.PubKey)
	}, jwt.WithValidMethods([]string{jwt.SigningMethodPS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return "", ErrTokenInvalid
	}

	// The expiry inside the token is client-chosen; enforce our own window on
	// the issue time, and reject tokens from the future.
	if claims.IssuedAt == nil {
		return "", fmt.Errorf("%w: missing issue time", ErrTokenInvalid)
	}
	now := time.Now()
	issued := claims.IssuedAt.Time
	if issued.After(now) {
		return "", ErrTokenExpired
	}
	if issued.Before(now.Add(-maxAge)) {
		return "", ErrTokenExpired
	}
	return claims.PubKey, nil
}

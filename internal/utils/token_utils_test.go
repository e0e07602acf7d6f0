package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountTokenRoundTrip(t *testing.T) {
	priv, _, pubPEM, err := GenerateKeyPair()
	require.NoError(t, err)

	token, err := MintAccountToken(priv, pubPEM, time.Hour)
	require.NoError(t, err)

	gotPubKey, err := VerifyAccountToken(token, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, pubPEM, gotPubKey)
}

func TestAccountToken_ExpiredByServerWindow(t *testing.T) {
	priv, _, pubPEM, err := GenerateKeyPair()
	require.NoError(t, err)

	// The client signed a generous expiry, but the issue time is outside the
	// server's accepted window.
	token, err := MintAccountTokenAt(priv, pubPEM, time.Now().Add(-2*time.Hour), 24*time.Hour)
	require.NoError(t, err)

	_, err = VerifyAccountToken(token, time.Hour)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestAccountToken_IssuedInFuture(t *testing.T) {
	priv, _, pubPEM, err := GenerateKeyPair()
	require.NoError(t, err)

	token, err := MintAccountTokenAt(priv, pubPEM, time.Now().Add(time.Hour), time.Hour)
	require.NoError(t, err)

	_, err = VerifyAccountToken(token, time.Hour)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestAccountToken_Tampered(t *testing.T) {
	priv, _, pubPEM, err := GenerateKeyPair()
	require.NoError(t, err)

	token, err := MintAccountToken(priv, pubPEM, time.Hour)
	require.NoError(t, err)

	_, err = VerifyAccountToken(token+"x", time.Hour)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAccountToken_SignedWithForeignKey(t *testing.T) {
	// A token claiming one identity but signed by another key must fail: the
	// signature is always checked against the key embedded in the claims.
	priv, _, _, err := GenerateKeyPair()
	require.NoError(t, err)
	_, _, victimPEM, err := GenerateKeyPair()
	require.NoError(t, err)

	token, err := MintAccountToken(priv, victimPEM, time.Hour)
	require.NoError(t, err)

	_, err = VerifyAccountToken(token, time.Hour)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("unit-test-secret")

func TestSignAndResolve(t *testing.T) {
	signed, err := Sign("alice", secret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	username, err := Resolve(signed, secret)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestResolveExpired(t *testing.T) {
	signed, err := Sign("bob", secret, -time.Minute)
	require.NoError(t, err)

	_, err = Resolve(signed, secret)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestResolveWrongSecret(t *testing.T) {
	signed, err := Sign("carol", secret, time.Hour)
	require.NoError(t, err)

	_, err = Resolve(signed, []byte("another-secret"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveMalformed(t *testing.T) {
	_, err := Resolve("definitely.not.a.jwt", secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

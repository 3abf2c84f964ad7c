package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testSecret = "super-secret-signing-key"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func TestVerifyEmptyToken(t *testing.T) {
	v := NewVerifier(testSecret, nil)
	_, err := v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestVerifyLocalValidToken(t *testing.T) {
	v := NewVerifier(testSecret, nil)
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "user-123",
		"email": "gopher@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	identity, err := v.Verify(context.Background(), token)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", identity.UserID)
	assert.Equal(t, "gopher@example.com", identity.Email)
}

func TestVerifyLocalWrongSecret(t *testing.T) {
	v := NewVerifier(testSecret, nil)
	token := signToken(t, "a-different-secret", jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyLocalExpiredToken(t *testing.T) {
	v := NewVerifier(testSecret, nil)
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})

	_, err := v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyLocalMissingSubject(t *testing.T) {
	v := NewVerifier(testSecret, nil)
	token := signToken(t, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

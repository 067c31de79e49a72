package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	svc := NewService("test-secret", bcrypt.MinCost)

	digest, err := svc.HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", digest)

	assert.True(t, svc.ComparePassword(digest, "hunter2"))
	assert.False(t, svc.ComparePassword(digest, "hunter3"))
	assert.False(t, svc.ComparePassword("not a digest", "hunter2"))
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService("test-secret", bcrypt.MinCost)

	token, err := svc.CreateToken("user-1", "user@example.com")
	require.NoError(t, err)

	userID, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestVerifyTokenRejectsBadTokens(t *testing.T) {
	svc := NewService("test-secret", bcrypt.MinCost)
	valid, err := svc.CreateToken("user-1", "user@example.com")
	require.NoError(t, err)

	otherSecret := NewService("other-secret", bcrypt.MinCost)
	foreign, err := otherSecret.CreateToken("user-1", "user@example.com")
	require.NoError(t, err)

	expired := signExpiredToken(t, "test-secret")
	unsigned := signUnsignedToken(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.token"},
		{name: "wrong secret", token: foreign},
		{name: "expired", token: expired},
		{name: "none algorithm", token: unsigned},
		{name: "tampered payload", token: valid[:len(valid)-4] + "AAAA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, err := svc.VerifyToken(tt.token)
			// Every failure collapses to the same error.
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Empty(t, userID)
		})
	}
}

func signExpiredToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"iat": 1000000000,
		"exp": 1000000001,
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func signUnsignedToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return signed
}

func TestVerifyTokenRequiresSubject(t *testing.T) {
	svc := NewService("test-secret", bcrypt.MinCost)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "user@example.com"})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.VerifyToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "super-secret-jwt-token-with-at-least-32-characters"
	testUserID = "5b1f0c2e-8d7a-4c3b-9e6f-1a2b3c4d5e6f"
)

func sign(t *testing.T, method jwt.SigningMethod, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() Claims {
	return Claims{
		Email:        "tenant@example.com",
		Role:         "authenticated",
		UserMetadata: UserMetadata{UserType: "tenant"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   testUserID,
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestVerifyValidToken(t *testing.T) {
	v := NewVerifier(testSecret, "authenticated")

	identity, err := v.Verify(sign(t, jwt.SigningMethodHS256, testSecret, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, testUserID, identity.ID)
	assert.Equal(t, "tenant@example.com", identity.Email)
	assert.Equal(t, "tenant", identity.UserType)
}

func TestVerifyRejects(t *testing.T) {
	v := NewVerifier(testSecret, "authenticated")

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	wrongAudience := validClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"anon"}

	badSubject := validClaims()
	badSubject.Subject = "42"

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.jwt"},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, "another-secret", validClaims())},
		{"wrong algorithm", sign(t, jwt.SigningMethodHS512, testSecret, validClaims())},
		{"expired", sign(t, jwt.SigningMethodHS256, testSecret, expired)},
		{"no expiry", sign(t, jwt.SigningMethodHS256, testSecret, noExpiry)},
		{"wrong audience", sign(t, jwt.SigningMethodHS256, testSecret, wrongAudience)},
		{"non uuid subject", sign(t, jwt.SigningMethodHS256, testSecret, badSubject)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := v.Verify(tt.token)
			assert.Nil(t, identity)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

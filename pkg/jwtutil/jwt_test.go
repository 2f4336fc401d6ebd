package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-service/pkg/config"
)

func signToken(t *testing.T, key string, claims UserClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func TestValidateToken(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key"})

	tenantID := uint(42)
	tokenString := signToken(t, "test-signing-key", UserClaims{
		Email:      "maria@example.com",
		UserID:     7,
		TenantID:   &tenantID,
		TenantName: "Revenda da Maria",
		Role:       "owner",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := ValidateToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", claims.Email)
	require.NotNil(t, claims.TenantID)
	assert.Equal(t, uint(42), *claims.TenantID)
	assert.Equal(t, "owner", claims.Role)
}

func TestValidateTokenWrongKey(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key"})

	tokenString := signToken(t, "another-key", UserClaims{UserID: 7})
	_, err := ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key"})

	tokenString := signToken(t, "test-signing-key", UserClaims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	_, err := ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestExtractTenantID(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key"})

	// Tokens without a tenant still validate; the middleware decides what
	// to do with the missing tenant.
	tokenString := signToken(t, "test-signing-key", UserClaims{UserID: 7})
	tenantID, err := ExtractTenantID(tokenString)
	require.NoError(t, err)
	assert.Nil(t, tenantID)
}

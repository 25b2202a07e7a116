package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/rmaia-dev/sgt-api/internal/models"
	"github.com/rmaia-dev/sgt-api/pkg/config"
	appErrors "github.com/rmaia-dev/sgt-api/pkg/errors"
)

func signTestToken(t *testing.T, secret string, claims models.AuthClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthServiceValidateToken(t *testing.T) {
	svc := NewAuthService(config.AuthConfig{Secret: "test-secret"})

	signed := signTestToken(t, "test-secret", models.AuthClaims{
		Name:  "Admin User",
		Admin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.True(t, claims.Admin)

	actor := claims.Actor()
	require.Equal(t, "user-1", actor.ID)
	require.Equal(t, "Admin User", actor.Name)
	require.True(t, actor.IsAdmin)
}

func TestAuthServiceValidateTokenExpired(t *testing.T) {
	svc := NewAuthService(config.AuthConfig{Secret: "test-secret"})

	signed := signTestToken(t, "test-secret", models.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := svc.ValidateToken(signed)
	require.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceValidateTokenWrongSecret(t *testing.T) {
	svc := NewAuthService(config.AuthConfig{Secret: "test-secret"})

	signed := signTestToken(t, "other-secret", models.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := svc.ValidateToken(signed)
	require.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceValidateTokenGarbage(t *testing.T) {
	svc := NewAuthService(config.AuthConfig{Secret: "test-secret"})

	_, err := svc.ValidateToken("not-a-token")
	require.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized))
}

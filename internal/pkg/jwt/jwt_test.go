package jwt

import (
	"testing"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewJWTService("test-secret", "15m", "24h")
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_RejectsBadDurations(t *testing.T) {
	_, err := NewJWTService("secret", "soon", "24h")
	assert.Error(t, err)
}

func TestGenerateAccessToken_Claims(t *testing.T) {
	svc := newTestService(t)
	employeeID := "emp-1"

	token, exp, err := svc.GenerateAccessToken(AccessClaims{
		UserID:     "user-1",
		Email:      "ana@example.com",
		EmployeeID: &employeeID,
		Role:       user.RoleManager,
	})
	require.NoError(t, err)
	assert.NotZero(t, exp)

	parsed, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)

	claims, err := parsed.AsMap(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, "emp-1", claims["employee_id"])
	assert.Equal(t, "manager", claims["role"])
	assert.Equal(t, TokenTypeAccess, claims["type"])
}

func TestVerifyRefreshToken(t *testing.T) {
	svc := newTestService(t)

	refresh, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	userID, err := svc.VerifyRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	sse, _, err := svc.GenerateSSEToken("user-1")
	require.NoError(t, err)
	_, err = svc.VerifyRefreshToken(sse)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestValidateSSEToken(t *testing.T) {
	svc := newTestService(t)

	token, expiresIn, err := svc.GenerateSSEToken("user-9")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	userID, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-9", userID)

	other, _ := NewJWTService("another-secret", "15m", "24h")
	_, err = other.ValidateSSEToken(token)
	assert.Error(t, err)
}

package server

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonathan/strategy-report/internal/config"
	"github.com/jonathan/strategy-report/internal/server/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func setupTestJWTService(_ *testing.T, expirationHours int) *JWTService {
	return NewJWTService(&config.JWTConfig{Secret: testSecret, ExpirationHours: expirationHours})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	service := setupTestJWTService(t, 24)

	token, err := service.GenerateToken("ana@consultoria.com", middleware.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3, "JWT should have 3 parts separated by dots")

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ana@consultoria.com", claims.PrincipalID())
	assert.Equal(t, middleware.RoleAdmin, claims.PrincipalRole())
	assert.NotEmpty(t, claims.ID)
}

func TestJWTService_UniqueTokens(t *testing.T) {
	service := setupTestJWTService(t, 24)
	t1, err := service.GenerateToken("ana", middleware.RoleViewer)
	require.NoError(t, err)
	t2, err := service.GenerateToken("ana", middleware.RoleViewer)
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2, "token id makes every token unique")
}

func TestJWTService_GenerateToken_Invalid(t *testing.T) {
	service := setupTestJWTService(t, 24)
	_, err := service.GenerateToken("", middleware.RoleAdmin)
	assert.Error(t, err)
	_, err = service.GenerateToken("ana", "superuser")
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_Expired(t *testing.T) {
	service := setupTestJWTService(t, 1)
	issued := time.Now().Add(-2 * time.Hour)
	service.now = func() time.Time { return issued }
	token, err := service.GenerateToken("ana", middleware.RoleAdmin)
	require.NoError(t, err)

	service.now = time.Now
	_, err = service.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestJWTService_ValidateToken_WrongSecret(t *testing.T) {
	other := NewJWTService(&config.JWTConfig{Secret: "another-secret-of-sufficient-length!!", ExpirationHours: 1})
	token, err := other.GenerateToken("ana", middleware.RoleAdmin)
	require.NoError(t, err)

	_, err = setupTestJWTService(t, 1).ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token signature")
}

func TestJWTService_ValidateToken_Malformed(t *testing.T) {
	service := setupTestJWTService(t, 1)
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, err := service.ValidateToken(tok)
		assert.Error(t, err, tok)
	}
}

func TestJWTService_ValidateToken_RejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{Role: middleware.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "mallory",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = setupTestJWTService(t, 1).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_MissingSubject(t *testing.T) {
	claims := &Claims{Role: middleware.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = setupTestJWTService(t, 1).ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no subject")
}

func TestJWTValidator_Adapter(t *testing.T) {
	service := setupTestJWTService(t, 1)
	token, err := service.GenerateToken("ana", middleware.RoleViewer)
	require.NoError(t, err)

	p, err := service.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ana", p.PrincipalID())
	assert.False(t, middleware.IsAdmin(p))

	_, err = service.AsTokenValidator().ValidateToken("bad")
	assert.Error(t, err)
}

package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTUtil_GenerateToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", 1, 24)
	userID := "1"

	tokenString, expiresAt, err := jwtUtil.GenerateToken(userID, TokenTypeAccess)

	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := jwtUtil.ValidateToken(tokenString)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTUtil_RefreshTokenUsesRefreshLifetime(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", 1, 24)

	tokenString, _, err := jwtUtil.GenerateToken("1", TokenTypeRefresh)
	require.NoError(t, err)

	claims, err := jwtUtil.ValidateToken(tokenString)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTUtil_ValidateToken_InvalidToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", 1, 24)

	_, err := jwtUtil.ValidateToken("invalid.token.string")
	assert.Error(t, err)
}

func TestJWTUtil_ValidateToken_ExpiredToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", -1, -1) // Token expires in the past

	tokenString, _, _ := jwtUtil.GenerateToken("1", TokenTypeAccess)

	_, err := jwtUtil.ValidateToken(tokenString)
	assert.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTUtil_ValidateToken_WrongSecret(t *testing.T) {
	jwtUtil1 := NewJWTUtil("secret1", 1, 24)
	jwtUtil2 := NewJWTUtil("secret2", 1, 24)

	tokenString, _, _ := jwtUtil1.GenerateToken("1", TokenTypeAccess)

	_, err := jwtUtil2.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestJWTUtil_ValidateToken_InvalidSigningMethod(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", 1, 24)
	claims := &JWTClaims{
		UserID: "1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	tokenString, _ := token.SignedString(jwt.UnsafeAllowNoneSignatureType)

	_, err := jwtUtil.ValidateToken(tokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected signing method")
}

func TestJWTUtil_PairAndTypedParsing(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", 1, 24)

	pair, err := jwtUtil.IssuePair("42")
	require.NoError(t, err)

	id, err := jwtUtil.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	id, err = jwtUtil.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	_, err = jwtUtil.ParseRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestMockTokenIssuer_Format(t *testing.T) {
	issuer := NewMockTokenIssuer(time.Hour)

	pair, err := issuer.IssuePair("1")
	require.NoError(t, err)
	assert.Regexp(t, `^mock-jwt-token-1-\d+$`, pair.AccessToken)
	assert.Regexp(t, `^mock-refresh-token-1-\d+$`, pair.RefreshToken)

	id, err := issuer.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "1", id)

	id, err = issuer.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "1", id)
}

func TestMockTokenIssuer_DashedIDsAndErrors(t *testing.T) {
	issuer := NewMockTokenIssuer(time.Hour)

	pair, _ := issuer.IssuePair("a1b2-c3d4")
	id, err := issuer.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a1b2-c3d4", id)

	_, err = issuer.ParseAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrMalformedMockToken)
	_, err = issuer.ParseAccess("mock-jwt-token-1-notanumber")
	assert.ErrorIs(t, err, ErrMalformedMockToken)
}

func TestMockTokenIssuer_Expired(t *testing.T) {
	issuer := NewMockTokenIssuer(time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	pair, _ := issuer.IssuePair("1")
	issuer.now = time.Now

	_, err := issuer.ParseAccess(pair.AccessToken)
	assert.Error(t, err)
}

package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"visa_referral/internal/model"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var ErrWrongTokenType = errors.New("wrong token type")

// JWTClaims custom claims for JWT
type JWTClaims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// JWTUtil provides JWT generation and validation
type JWTUtil struct {
	secretKey       string
	expirationHours int64
	refreshHours    int64
}

// NewJWTUtil creates a new JWTUtil
func NewJWTUtil(secretKey string, expirationHours, refreshHours int64) *JWTUtil {
	return &JWTUtil{secretKey: secretKey, expirationHours: expirationHours, refreshHours: refreshHours}
}

// GenerateToken generates a signed token of the given type
func (ju *JWTUtil) GenerateToken(userID, tokenType string) (string, time.Time, error) {
	hours := ju.expirationHours
	if tokenType == TokenTypeRefresh {
		hours = ju.refreshHours
	}
	now := time.Now()
	expiresAt := now.Add(time.Hour * time.Duration(hours))
	claims := &JWTClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(ju.secretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// ValidateToken validates the JWT token
func (ju *JWTUtil) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ju.secretKey), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// IssuePair issues an access and a refresh token for the user
func (ju *JWTUtil) IssuePair(userID string) (*model.TokenPair, error) {
	access, expiresAt, err := ju.GenerateToken(userID, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	refresh, _, err := ju.GenerateToken(userID, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	return &model.TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt}, nil
}

// ParseAccess returns the user id of a valid access token
func (ju *JWTUtil) ParseAccess(token string) (string, error) {
	return ju.parseTyped(token, TokenTypeAccess)
}

// ParseRefresh returns the user id of a valid refresh token
func (ju *JWTUtil) ParseRefresh(token string) (string, error) {
	return ju.parseTyped(token, TokenTypeRefresh)
}

func (ju *JWTUtil) parseTyped(token, tokenType string) (string, error) {
	claims, err := ju.ValidateToken(token)
	if err != nil {
		return "", err
	}
	if claims.TokenType != tokenType {
		return "", ErrWrongTokenType
	}
	return claims.UserID, nil
}

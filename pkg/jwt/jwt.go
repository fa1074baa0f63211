package jwt

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrNotRefresh   = errors.New("token is not a refresh token")
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims carries the caller identity inside both access and refresh tokens.
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	TokenType string    `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is the token set returned on login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// GetSecretKey returns the JWT secret from environment or a default
func GetSecretKey() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "your-super-secret-key-change-in-production"
	}
	return []byte(secret)
}

// GetRefreshSecretKey returns the refresh-token secret. Without
// JWT_REFRESH_SECRET both token kinds share the access secret.
func GetRefreshSecretKey() []byte {
	secret := os.Getenv("JWT_REFRESH_SECRET")
	if secret == "" {
		return GetSecretKey()
	}
	return []byte(secret)
}

func generate(userID uuid.UUID, username, role, tokenType string, ttl time.Duration, key []byte) (string, error) {
	claims := &Claims{
		UserID:    userID,
		Username:  username,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "simig-webapps",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// GenerateTokenPair issues a short-lived access token plus a refresh token,
// each signed with its own secret.
func GenerateTokenPair(userID uuid.UUID, username, role string) (*TokenPair, error) {
	access, err := generate(userID, username, role, TypeAccess, 24*time.Hour, GetSecretKey())
	if err != nil {
		return nil, err
	}
	refresh, err := generate(userID, username, role, TypeRefresh, 7*24*time.Hour, GetRefreshSecretKey())
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func validateWithKey(tokenString string, key []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return key, nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// ValidateToken parses and validates an access JWT token
func ValidateToken(tokenString string) (*Claims, error) {
	return validateWithKey(tokenString, GetSecretKey())
}

// ValidateRefreshToken validates against the refresh secret and requires the
// refresh type.
func ValidateRefreshToken(tokenString string) (*Claims, error) {
	claims, err := validateWithKey(tokenString, GetRefreshSecretKey())
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TypeRefresh {
		return nil, ErrNotRefresh
	}
	return claims, nil
}

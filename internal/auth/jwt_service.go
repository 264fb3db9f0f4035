package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	// DefaultAccessTokenExpiry is used when no explicit TTL is configured.
	DefaultAccessTokenExpiry = 15 * time.Minute
	// RefreshTokenExpiry is the duration for which refresh tokens are valid.
	RefreshTokenExpiry = 7 * 24 * time.Hour
)

// Token types carried in the typ claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken is returned for malformed, expired or foreign tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents JWT claims bound to a user identity.
type Claims struct {
	UserID       uint   `json:"user_id"`
	Username     string `json:"username"`
	IdentityCode string `json:"identity_code"`
	TokenType    string `json:"typ"`
	jwt.RegisteredClaims
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

// NewJWTService creates a new JWT service with the given secret.
// A non-positive accessTTL selects DefaultAccessTokenExpiry.
func NewJWTService(secret string, accessTTL time.Duration) *JWTService {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenExpiry
	}
	return &JWTService{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

// AccessTTL returns the configured access token lifetime.
func (s *JWTService) AccessTTL() time.Duration {
	return s.accessTTL
}

// GenerateAccessToken generates a new access token for the user.
func (s *JWTService) GenerateAccessToken(userID uint, username, identityCode string) (string, error) {
	_, token, err := s.sign(userID, username, identityCode, TokenTypeAccess, s.accessTTL)
	return token, err
}

// GenerateRefreshToken generates a new refresh token for the user.
// The refresh token ID is returned separately for storage in Redis.
func (s *JWTService) GenerateRefreshToken(userID uint, username, identityCode string) (tokenID string, token string, err error) {
	return s.sign(userID, username, identityCode, TokenTypeRefresh, RefreshTokenExpiry)
}

func (s *JWTService) sign(userID uint, username, identityCode, tokenType string, ttl time.Duration) (string, string, error) {
	tokenID := generateTokenID()
	now := s.now()
	claims := &Claims{
		UserID:       userID,
		Username:     username,
		IdentityCode: identityCode,
		TokenType:    tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", err
	}
	return tokenID, token, nil
}

// ValidateAccessToken accepts only access tokens.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, TokenTypeAccess)
}

// ValidateRefreshToken accepts only refresh tokens.
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, TokenTypeRefresh)
}

func (s *JWTService) validate(tokenString, tokenType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" || claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// RemainingTTL returns how long the claims stay valid, or zero once expired.
func (s *JWTService) RemainingTTL(claims *Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl < 0 {
		return 0
	}
	return ttl
}

// generateTokenID generates a unique token ID.
func generateTokenID() string {
	return uuid.New().String()
}

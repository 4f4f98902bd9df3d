// Package jwt provides session token generation and validation.
//
// The service issues a single stateless bearer token per login. The token
// carries the user's id and email, expires after seven days, and is never
// persisted server side.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken     = errors.New("jwt: invalid token")
	ErrExpiredToken     = errors.New("jwt: token has expired")
	ErrTokenNotFound    = errors.New("jwt: token not found")
	ErrTokenNotYetValid = errors.New("jwt: token not yet valid")
)

const defaultIssuer = "contact-service"

// Claims are the claims embedded in every session token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService creates and validates session tokens.
// Create one instance at startup and reuse it.
type TokenService struct {
	secret []byte
	expiry time.Duration
	issuer string
	parser *jwt.Parser
}

// NewTokenService creates a TokenService from environment configuration:
//   - JWT_SECRET: signing secret (required in production)
//   - JWT_ISSUER: issuer name (optional, default "contact-service")
func NewTokenService() *TokenService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default-secret-change-in-production"
	}

	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = defaultIssuer
	}

	parser := jwt.NewParser(
		// Only HS256 is accepted.
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithIssuer(issuer),
	)

	return &TokenService{
		secret: []byte(secret),
		expiry: 7 * 24 * time.Hour,
		issuer: issuer,
		parser: parser,
	}
}

// GenerateToken creates a signed session token for the given user.
func (s *TokenService) GenerateToken(ctx context.Context, userID, email string) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("creating session token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a session token and returns its claims.
func (s *TokenService) ParseToken(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenNotFound
	}

	claims := &Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, convertError(err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// convertError transforms jwt library errors into our custom errors.
func convertError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpiredToken, err)
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return fmt.Errorf("%w: %v", ErrTokenNotYetValid, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: token is malformed", ErrInvalidToken)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: signature is invalid", ErrInvalidToken)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}

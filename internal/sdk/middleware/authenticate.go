// Package middleware provides gin middleware shared across route groups.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/contactdesk/contact-service/internal/services/jwt"
)

const (
	// UserIDKey and EmailKey are the gin context keys the guard populates.
	UserIDKey = "auth_user_id"
	EmailKey  = "auth_email"

	bearerPrefix    = "Bearer "
	tokenCookieName = "token"
)

var ErrNoIdentity = errors.New("no authenticated identity in context")

// Authenticate validates the bearer token on protected requests and attaches
// the caller's identity to the context. The token is read from the
// Authorization header or, failing that, from the "token" cookie. Each
// verification is independent; nothing is shared across requests.
func Authenticate(ts *jwt.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, errCode := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errCode})
			c.Abort()
			return
		}

		claims, err := ts.ParseToken(c.Request.Context(), token)
		if err != nil {
			errCode := "invalid_token"
			if errors.Is(err, jwt.ErrExpiredToken) {
				errCode = "expired_token"
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": errCode})
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Next()
	}
}

// extractToken returns the bearer token and, when absent, the error code to
// report.
func extractToken(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			return "", "invalid_authorization_header"
		}
		return strings.TrimPrefix(authHeader, bearerPrefix), ""
	}

	if cookie, err := c.Cookie(tokenCookieName); err == nil && cookie != "" {
		return cookie, ""
	}

	return "", "missing_authorization_header"
}

// GetUserID extracts the authenticated user's id from the gin context.
func GetUserID(c *gin.Context) (string, error) {
	val, exists := c.Get(UserIDKey)
	if !exists {
		return "", ErrNoIdentity
	}
	userID, ok := val.(string)
	if !ok || userID == "" {
		return "", ErrNoIdentity
	}
	return userID, nil
}

// GetEmail extracts the authenticated user's email from the gin context.
func GetEmail(c *gin.Context) (string, error) {
	val, exists := c.Get(EmailKey)
	if !exists {
		return "", ErrNoIdentity
	}
	email, ok := val.(string)
	if !ok {
		return "", ErrNoIdentity
	}
	return email, nil
}

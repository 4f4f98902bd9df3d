package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/contactdesk/contact-service/internal/services/jwt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	_ = os.Setenv("JWT_SECRET", "test-secret")
	_ = os.Setenv("JWT_ISSUER", "test-issuer")

	code := m.Run()
	os.Exit(code)
}

func guardedRouter(ts *jwt.TokenService) *gin.Engine {
	router := gin.New()
	router.GET("/protected", Authenticate(ts), func(c *gin.Context) {
		userID, err := GetUserID(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no identity"})
			return
		}
		email, _ := GetEmail(c)
		c.JSON(http.StatusOK, gin.H{"id": userID, "email": email})
	})
	return router
}

func TestAuthenticate(t *testing.T) {
	ts := jwt.NewTokenService()
	router := guardedRouter(ts)

	token, err := ts.GenerateToken(context.Background(), "user-1", "a@x.com")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("token cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestGetUserIDWithoutGuard(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, err := GetUserID(c); err == nil {
		t.Fatal("expected error for context without identity")
	}
}

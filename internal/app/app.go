// Package app provides the HTTP handlers for the contact service.
package app

import (
	"context"
	"io"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/contactdesk/contact-service/internal/sdk/sqldb"
	"github.com/contactdesk/contact-service/internal/services/hash"
	"github.com/contactdesk/contact-service/internal/services/jwt"
	"github.com/contactdesk/contact-service/internal/services/mailtrap"
	"github.com/contactdesk/contact-service/internal/services/oauth"
	"github.com/contactdesk/contact-service/internal/services/sentry"
)

// OAuthProvider is the identity-provider surface the app depends on. The
// Google implementation lives in services/oauth; tests inject a fake.
type OAuthProvider interface {
	LoginURL(state string) string
	Exchange(ctx context.Context, code string) (oauth.Profile, error)
}

// PhotoStore is the object-storage surface for contact photos.
type PhotoStore interface {
	UploadWithVariants(ctx context.Context, objectName string, reader io.Reader, contentType string) error
	DeleteWithVariants(ctx context.Context, objectName string) error
	GetPublicURL(objectName string) string
}

type App struct {
	db     sqldb.Service
	jwt    *jwt.TokenService
	hash   *hash.HashService
	oauth  OAuthProvider
	email  mailtrap.Service
	photos PhotoStore
	sentry *sentry.SentryService

	frontendURL string
}

func NewApp(
	db sqldb.Service,
	jwt *jwt.TokenService,
	hash *hash.HashService,
	oauth OAuthProvider,
	email mailtrap.Service,
	photos PhotoStore,
	sentry *sentry.SentryService,
) *App {
	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:5173"
	}

	return &App{
		db:          db,
		jwt:         jwt,
		hash:        hash,
		oauth:       oauth,
		email:       email,
		photos:      photos,
		sentry:      sentry,
		frontendURL: frontendURL,
	}
}

func (a *App) toSentry(c *gin.Context, handler, errType string, level sentry.Level, err error) {
	a.sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("handler", handler)
		scope.SetExtra("error_type", errType)
		scope.SetLevel(level)
		if reqID := c.GetHeader("X-Request-ID"); reqID != "" {
			scope.SetTag("request_id", reqID)
		}
		a.sentry.CaptureException(err)
	})
}

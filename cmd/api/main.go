package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/contactdesk/contact-service/internal/app"
	"github.com/contactdesk/contact-service/internal/sdk/sqldb"
	"github.com/contactdesk/contact-service/internal/services/hash"
	"github.com/contactdesk/contact-service/internal/services/jwt"
	"github.com/contactdesk/contact-service/internal/services/mailtrap"
	"github.com/contactdesk/contact-service/internal/services/minio"
	"github.com/contactdesk/contact-service/internal/services/oauth"
	"github.com/contactdesk/contact-service/internal/services/sentry"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application failed: %v", err)
	}
}

func run() error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	logger.Info("GOMAXPROCS", "cpu", runtime.GOMAXPROCS(0))

	// 1. Initialize Database
	dbService := sqldb.New()
	if err := dbService.Migrate(); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// 2. Initialize Services
	jwtService := jwt.NewTokenService()
	hashService := hash.NewHashService()
	oauthProvider := oauth.NewGoogleProvider(oauth.GoogleConfigFromEnv())
	emailService := mailtrap.NewMailtrapService()
	photoService := minio.NewMinioService()
	sentryService := sentry.NewSentryService()
	defer sentryService.Close()

	// A nil *MinioService must stay a nil interface so handlers can detect it.
	var photoStore app.PhotoStore
	if photoService != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := photoService.EnsureBucket(ctx); err != nil {
			logger.Warn("photo bucket unavailable", "error", err)
		}
		cancel()
		photoStore = photoService
	}

	// 3. Initialize App
	application := app.NewApp(dbService, jwtService, hashService, oauthProvider, emailService, photoStore, sentryService)

	// 4. Configure Server
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 5000 // Fallback default
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      application.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// 5. Graceful Shutdown Logic
	done := make(chan bool, 1)
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down gracefully, press Ctrl+C again to force")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server forced to shutdown", "error", err)
		}
		if err := dbService.Close(); err != nil {
			logger.Error("Closing database", "error", err)
		}
		done <- true
	}()

	// 6. Start Server
	logger.Info("Starting server", "port", srv.Addr)
	err := srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}

	<-done
	logger.Info("Graceful shutdown complete")
	return nil
}

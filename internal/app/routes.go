package app

import (
	"github.com/gin-gonic/gin"

	"github.com/contactdesk/contact-service/internal/sdk/middleware"
)

// ----------------------------------------------------------------------------
// Route Registration
// ----------------------------------------------------------------------------

func (a *App) RegisterRoutes() *gin.Engine {
	router := gin.New()

	// Global middleware chain
	router.Use(gin.Recovery())      // Panic recovery
	router.Use(middleware.Logger()) // Custom slog logger
	router.Use(middleware.CORS())   // CORS support

	// Health check routes (public)
	health := router.Group("/health")
	{
		health.GET("/readiness", a.HandleReadiness)
		health.GET("/liveness", a.HandleLiveness)
	}

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.POST("/register", a.HandleRegister)
		auth.POST("/login", a.HandleLogin)
		auth.GET("/google", a.HandleGoogleLogin)
		auth.GET("/google/callback", a.HandleGoogleCallback)

		// User listing requires a session.
		auth.GET("/users", middleware.Authenticate(a.jwt), a.HandleListUsers)
	}

	// Contact routes (protected - requires authentication)
	contacts := router.Group("/api/contacts")
	contacts.Use(middleware.Authenticate(a.jwt))
	{
		contacts.GET("", a.HandleListContacts)
		contacts.POST("", a.HandleCreateContact)
		contacts.PUT("/:id", a.HandleUpdateContact)
		contacts.DELETE("/:id", a.HandleDeleteContact)
		contacts.POST("/:id/photo", a.HandleUploadContactPhoto)
		contacts.DELETE("/:id/photo", a.HandleDeleteContactPhoto)
	}

	return router
}

package middleware

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// CORS allows the frontend origin (FRONTEND_URL) to call the API with
// credentials. Preflight requests short-circuit with 204.
func CORS() gin.HandlerFunc {
	origin := os.Getenv("FRONTEND_URL")
	if origin == "" {
		origin = "http://localhost:5173"
	}

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

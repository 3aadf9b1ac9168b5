package app

import (
	"net/http"
	"time"

	"example/chess-history/app/logging"
	"example/chess-history/auth"

	"github.com/gin-gonic/gin"
)

// Health is a public health check endpoint.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Me echoes the authenticated subject.
func Me(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"subject": claims.Subject,
		"scopes":  claims.Scopes,
	})
}

func requestLogger() gin.HandlerFunc {
	log := logging.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

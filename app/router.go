// Package app wires shared HTTP routes for both local and Lambda execution.
package app

import (
	"time"

	"example/chess-history/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the shared HTTP router for both local and Lambda execution.
// guard authenticates everything except /health.
func NewRouter(s *Server, guard gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", Health)

	protected := router.Group("/")
	protected.Use(guard)
	protected.GET("/me", Me)

	players := protected.Group("/players/:username")
	players.GET("/profile", s.GetProfile)
	players.GET("/archives", s.GetArchives)
	players.GET("/years", s.GetYears)
	players.GET("/games", s.GetGames)
	players.GET("/summary", s.GetSummary)
	players.GET("/stored", s.GetStored)
	players.POST("/ingest", auth.RequireScope(auth.ScopeIngest), s.PostIngest)

	return router
}

package auth

import (
	"net/http"
	"strings"

	"example/chess-history/app/logging"

	"github.com/gin-gonic/gin"
)

type MiddlewareConfig struct {
	// Disabled injects local-dev claims carrying ScopeIngest.
	Disabled bool
}

// Middleware requires a valid bearer token and stores its claims on the
// request context.
func Middleware(verifier *Verifier, cfg MiddlewareConfig) gin.HandlerFunc {
	log := logging.Named("auth")
	if cfg.Disabled {
		log.Warn().Msg("auth disabled; requests run as local-dev")
	}

	return func(c *gin.Context) {
		if cfg.Disabled {
			setClaims(c, &Claims{Subject: "local-dev", Scopes: []string{ScopeIngest}})
			c.Next()
			return
		}
		if verifier == nil {
			respondUnauthorized(c, "auth verifier not configured")
			return
		}

		token, ok := extractBearerToken(c.GetHeader("Authorization"))
		if !ok {
			log.Warn().Str("path", c.Request.URL.Path).Msg("missing or malformed Authorization header")
			respondUnauthorized(c, "missing bearer token")
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("token rejected")
			respondUnauthorized(c, "invalid token")
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// RequireScope rejects requests whose claims lack any of scopes. It runs
// after Middleware.
func RequireScope(scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c.Request.Context())
		if !ok {
			respondUnauthorized(c, "missing auth context")
			return
		}
		if !claims.HasScopes(scopes...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient scope"})
			return
		}
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Request = c.Request.WithContext(WithClaims(c.Request.Context(), claims))
}

func extractBearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func respondUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}

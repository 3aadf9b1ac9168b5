package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ScopeIngest allows queueing ingest jobs.
const ScopeIngest = "ingest:write"

type ctxKey int

const claimsKey ctxKey = iota

// Claims is the part of a verified token the API acts on.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
	Scopes    []string
}

// HasScopes reports whether every required scope was granted.
func (c *Claims) HasScopes(required ...string) bool {
	if c == nil {
		return false
	}
	granted := make(map[string]struct{}, len(c.Scopes))
	for _, s := range c.Scopes {
		granted[s] = struct{}{}
	}
	for _, s := range required {
		if _, ok := granted[s]; !ok {
			return false
		}
	}
	return true
}

// claimsFromMap merges the space separated "scope" claim with Auth0's RBAC
// "permissions" array.
func claimsFromMap(mc jwt.MapClaims) *Claims {
	c := &Claims{}
	c.Subject, _ = mc.GetSubject()
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}

	seen := map[string]bool{}
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			c.Scopes = append(c.Scopes, s)
		}
	}
	if scope, ok := mc["scope"].(string); ok {
		for _, s := range strings.Fields(scope) {
			add(s)
		}
	}
	if perms, ok := mc["permissions"].([]any); ok {
		for _, p := range perms {
			if s, ok := p.(string); ok {
				add(s)
			}
		}
	}
	return c
}

func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok && claims != nil
}

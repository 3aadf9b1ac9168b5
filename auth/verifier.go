// Package auth verifies Auth0 access tokens and guards the player routes.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"example/chess-history/app/config"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const defaultLeeway = 30 * time.Second

var (
	errMissingSubject = errors.New("token missing sub")
	errInvalidClaims  = errors.New("invalid token claims")
)

// Verifier checks RS-signed JWTs against the issuer's JWKS.
type Verifier struct {
	issuer   string
	audience string
	keys     keyfunc.Keyfunc
	parser   *jwt.Parser
}

// NewVerifier builds a verifier from cfg. JWKSURL defaults to the issuer's
// well-known endpoint.
func NewVerifier(cfg config.AuthConfig) (*Verifier, error) {
	issuer := strings.TrimSpace(cfg.Issuer)
	audience := strings.TrimSpace(cfg.Audience)
	if issuer == "" || audience == "" {
		return nil, errors.New("AUTH0_ISSUER and AUTH0_AUDIENCE must be set")
	}
	if !strings.HasSuffix(issuer, "/") {
		issuer += "/"
	}

	jwksURL := cfg.JWKSURL
	if jwksURL == "" {
		jwksURL = issuer + ".well-known/jwks.json"
	}
	keys, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("init JWKS from %s: %w", jwksURL, err)
	}

	return &Verifier{
		issuer:   issuer,
		audience: audience,
		keys:     keys,
		parser: jwt.NewParser(
			jwt.WithIssuer(issuer),
			jwt.WithAudience(audience),
			jwt.WithLeeway(defaultLeeway),
			jwt.WithExpirationRequired(),
			jwt.WithValidMethods([]string{
				jwt.SigningMethodRS256.Name,
				jwt.SigningMethodRS384.Name,
				jwt.SigningMethodRS512.Name,
			}),
		),
	}, nil
}

// Verify parses tokenString and returns its claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	token, err := v.parser.Parse(tokenString, v.keys.Keyfunc)
	if err != nil {
		return nil, err
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errInvalidClaims
	}

	claims := claimsFromMap(mc)
	if claims.Subject == "" {
		return nil, errMissingSubject
	}
	return claims, nil
}

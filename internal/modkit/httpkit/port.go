// Package httpkit provides tiny HTTP helpers and adapters
package httpkit

import (
	"net/http"
	"strings"

	perrs "brandpulse/internal/platform/errors"
	"brandpulse/internal/platform/net/middleware"
)

// TokenFunc parses a bearer token into the caller identity
type TokenFunc func(token string) (middleware.Identity, error)

// Port implements middleware.AuthPort by reading Authorization and delegating to a TokenFunc
type Port struct {
	parse TokenFunc
}

// NewPortFunc builds a Port from a simple parser function
func NewPortFunc(fn TokenFunc) *Port {
	return &Port{parse: fn}
}

// Parse extracts the caller identity from the Authorization Bearer token
// returns unauthorized when the header is missing, malformed, or the parser returns an error
func (p *Port) Parse(r *http.Request) (middleware.Identity, error) {
	authz := r.Header.Get("Authorization")
	// normalize whitespace around the whole header
	s := strings.TrimSpace(authz)
	if s == "" {
		return middleware.Identity{}, perrs.Unauthorizedf("missing bearer token")
	}
	ls := strings.ToLower(s)
	const prefix = "bearer"
	if !strings.HasPrefix(ls, prefix) {
		return middleware.Identity{}, perrs.Unauthorizedf("missing bearer token")
	}
	// slice after "Bearer" (no trailing space required), then trim any spaces before token
	raw := strings.TrimSpace(s[len(prefix):])
	if raw == "" {
		return middleware.Identity{}, perrs.Unauthorizedf("missing bearer token")
	}

	if p.parse == nil {
		return middleware.Identity{}, perrs.Unauthorizedf("invalid bearer token")
	}

	id, err := p.parse(raw)
	if err != nil {
		return middleware.Identity{}, perrs.Unauthorizedf("invalid bearer token")
	}
	return id, nil
}

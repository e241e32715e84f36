// Package service implements portal access token verification
package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	perr "brandpulse/internal/platform/errors"
	"brandpulse/internal/services/auth/domain"
)

// Config for the token verifier
type Config struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Verifier issues and parses HMAC signed portal tokens
type Verifier struct {
	cfg Config
}

// claims is the wire shape of a portal token
type claims struct {
	TenantIDs   []string `json:"tenants"`
	Permissions []string `json:"permissions,omitempty"`
	SuperAdmin  bool     `json:"super_admin"`
	jwt.RegisteredClaims
}

// New constructs a Verifier
func New(cfg Config) *Verifier {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Verifier{cfg: cfg}
}

// Issue signs a token for the principal
func (v *Verifier) Issue(p domain.Principal) (string, error) {
	now := time.Now()
	c := claims{
		TenantIDs:   p.TenantIDs,
		Permissions: p.Permissions,
		SuperAdmin:  p.SuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    v.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.cfg.TTL)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := tok.SignedString(v.cfg.Secret)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "sign token")
	}
	return signed, nil
}

// Parse validates a raw token and returns the principal it carries
func (v *Verifier) Parse(raw string) (domain.Principal, error) {
	var c claims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}
	tok, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return v.cfg.Secret, nil
	}, opts...)
	if err != nil || !tok.Valid {
		return domain.Principal{}, perr.Unauthorizedf("invalid bearer token")
	}
	if c.Subject == "" {
		return domain.Principal{}, perr.Unauthorizedf("invalid bearer token")
	}
	return domain.Principal{
		UserID:      c.Subject,
		TenantIDs:   c.TenantIDs,
		Permissions: c.Permissions,
		SuperAdmin:  c.SuperAdmin,
	}, nil
}

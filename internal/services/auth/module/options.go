package module

import (
	"time"

	"brandpulse/internal/platform/config"
)

// Options holds configuration settings for the auth module
type Options struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	af := cfg.Prefix("CORE_AUTH_")
	return Options{
		Secret: af.MustString("JWT_SECRET"),
		Issuer: af.MayString("JWT_ISSUER", "brandpulse"),
		TTL:    af.MayDuration("JWT_TTL", 24*time.Hour),
	}
}

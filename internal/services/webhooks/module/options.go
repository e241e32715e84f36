package module

import (
	"time"

	"brandpulse/internal/platform/config"
)

// Options controls the webhook delivery dispatcher
type Options struct {
	Interval  time.Duration
	Batch     int
	Timeout   time.Duration
	UserAgent string
}

// FromConfig reads with WEBHOOKS_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("WEBHOOKS_")
	return Options{
		Interval:  c.MayDuration("PUMP_INTERVAL", time.Minute),
		Batch:     c.MayInt("PUMP_BATCH", 100),
		Timeout:   c.MayDuration("DELIVERY_TIMEOUT", 30*time.Second),
		UserAgent: c.MayString("USER_AGENT", "BrandPulse-Webhook/1.0"),
	}
}

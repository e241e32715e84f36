package module

import (
	"time"

	"brandpulse/internal/platform/config"
	"brandpulse/internal/services/exports/service"
)

// Options controls the export scheduler and outbound mail
type Options struct {
	Resync time.Duration
	SMTP   service.SMTPConfig
}

// FromConfig reads with EXPORTS_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("EXPORTS_")
	return Options{
		Resync: c.MayDuration("SCHEDULE_RESYNC", time.Minute),
		SMTP: service.SMTPConfig{
			Host:     c.MayString("SMTP_HOST", ""),
			Port:     c.MayInt("SMTP_PORT", 587),
			User:     c.MayString("SMTP_USER", ""),
			Password: c.MayString("SMTP_PASS", ""),
			From:     c.MayString("SMTP_FROM", "no-reply@brandpulse.local"),
			FromName: c.MayString("SMTP_FROM_NAME", "BrandPulse"),
			UseTLS:   c.MayBool("SMTP_STARTTLS", false),
			Timeout:  c.MayDuration("SMTP_TIMEOUT", 30*time.Second),
		},
	}
}

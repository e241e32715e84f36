package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"brandpulse/internal/platform/logger"
	"brandpulse/internal/services/webhooks/domain"
	"brandpulse/internal/services/webhooks/repo"
)

// responseBodyCap bounds how much of the receiver's response we persist
const responseBodyCap = 1000

// poster performs one delivery attempt and reports the response status
// and a truncated body
type poster interface {
	Post(ctx context.Context, url, secret, event string, payload []byte) (int, string, error)
}

type httpPoster struct {
	client    *http.Client
	userAgent string
}

func newHTTPPoster(timeout time.Duration, userAgent string) poster {
	return &httpPoster{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

func (p *httpPoster) Post(ctx context.Context, url, secret, event string, payload []byte) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", Sign(secret, payload))
	req.Header.Set("X-Webhook-Event", event)
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyCap))
	return resp.StatusCode, string(body), nil
}

// Run pumps the delivery queue until the context is cancelled.
// Implements domain.RunnerPort.
func (s *Service) Run(ctx context.Context) error {
	log := logger.Named("webhook-dispatcher")
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.pump(ctx); err != nil {
				log.Error().Err(err).Msg("webhook pump failed")
			}
		}
	}
}

// pump leases one batch of due deliveries and attempts each in turn
func (s *Service) pump(ctx context.Context) error {
	log := logger.Named("webhook-dispatcher")
	due, err := s.store().Due(ctx, s.now().UTC(), s.cfg.Batch)
	if err != nil {
		return err
	}
	for _, d := range due {
		if err := s.attempt(ctx, d); err != nil {
			log.Warn().Err(err).Str("delivery_id", d.ID).Msg("delivery attempt failed")
		}
	}
	return nil
}

// attempt posts one delivery and records the outcome. Non-2xx responses
// and transport errors schedule a retry with exponential backoff until
// the attempt budget runs out.
func (s *Service) attempt(ctx context.Context, d repo.DueDelivery) error {
	st := s.store()
	attempts := d.Attempts + 1

	status, body, err := s.post.Post(ctx, d.URL, d.Secret, d.Event, d.Payload)
	if err == nil && status >= 200 && status < 300 {
		return st.MarkSuccess(ctx, d.ID, attempts, status, body, s.now().UTC())
	}

	reason := "webhook delivery failed with status " + http.StatusText(status)
	if err != nil {
		reason = err.Error()
	}

	if attempts < d.MaxAttempts {
		backoff := time.Duration(1<<attempts) * time.Minute
		next := s.now().UTC().Add(backoff)
		return st.MarkRetrying(ctx, d.ID, attempts, reason, next)
	}
	return st.MarkFailed(ctx, d.ID, attempts, reason)
}

var _ domain.RunnerPort = (*Service)(nil)
var _ domain.ManagerPort = (*Service)(nil)
var _ domain.TriggerPort = (*Service)(nil)

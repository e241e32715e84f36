// Package service implements webhook subscription management and the
// delivery queue
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"brandpulse/internal/modkit/repokit"
	perr "brandpulse/internal/platform/errors"
	pnet "brandpulse/internal/platform/net"
	"brandpulse/internal/services/webhooks/domain"
	"brandpulse/internal/services/webhooks/repo"
)

const (
	defaultMaxAttempts   = 3
	defaultDeliveryLimit = 50
)

// Config for the webhooks service
type Config struct {
	// Interval between queue pump passes
	Interval time.Duration
	// Batch caps deliveries processed per pass
	Batch int
	// Timeout bounds one delivery POST
	Timeout time.Duration
	// UserAgent sent on delivery requests
	UserAgent string
}

// Service implements domain.ManagerPort, domain.TriggerPort, and
// domain.RunnerPort
type Service struct {
	tx     repokit.TxRunner
	binder repokit.Binder[repo.Storage]
	cfg    Config
	now    func() time.Time
	post   poster
}

// New constructs a new webhooks service
func New(tx repokit.TxRunner, binder repokit.Binder[repo.Storage], cfg Config) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Batch <= 0 {
		cfg.Batch = 100
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "BrandPulse-Webhook/1.0"
	}
	return &Service{
		tx:     tx,
		binder: binder,
		cfg:    cfg,
		now:    time.Now,
		post:   newHTTPPoster(cfg.Timeout, cfg.UserAgent),
	}
}

func (s *Service) store() repo.Storage { return s.binder.Bind(s.tx) }

func requireTenant(ctx context.Context, tenantID string) error {
	if pnet.CanAccessTenant(ctx, tenantID) {
		return nil
	}
	return perr.Forbiddenf("access denied to this tenant")
}

// getScoped loads a webhook and verifies the caller may manage its tenant
func (s *Service) getScoped(ctx context.Context, id string) (domain.Webhook, error) {
	w, err := s.store().Get(ctx, id)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.Webhook{}, perr.NotFoundf("webhook not found")
		}
		return domain.Webhook{}, err
	}
	if !pnet.CanAccessTenant(ctx, w.TenantID) {
		return domain.Webhook{}, perr.Forbiddenf("access denied")
	}
	return w, nil
}

// List implements domain.ManagerPort
func (s *Service) List(ctx context.Context, tenantID string) ([]domain.Webhook, error) {
	if err := requireTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	out, err := s.store().ByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Webhook{}
	}
	return out, nil
}

// Create implements domain.ManagerPort. The generated secret is only
// returned on this call.
func (s *Service) Create(ctx context.Context, tenantID string, in domain.CreateInput) (domain.Webhook, error) {
	if err := requireTenant(ctx, tenantID); err != nil {
		return domain.Webhook{}, err
	}
	if err := validateURL(in.URL); err != nil {
		return domain.Webhook{}, err
	}
	if err := validateEvents(in.Events); err != nil {
		return domain.Webhook{}, err
	}

	secret, err := newSecret()
	if err != nil {
		return domain.Webhook{}, err
	}

	now := s.now().UTC()
	w := domain.Webhook{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		URL:         in.URL,
		Secret:      secret,
		Events:      in.Events,
		Description: in.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store().Insert(ctx, w); err != nil {
		return domain.Webhook{}, err
	}
	return w, nil
}

// Update implements domain.ManagerPort
func (s *Service) Update(ctx context.Context, webhookID string, in domain.UpdateInput) (domain.Webhook, error) {
	w, err := s.getScoped(ctx, webhookID)
	if err != nil {
		return domain.Webhook{}, err
	}

	if in.URL != nil {
		if err := validateURL(*in.URL); err != nil {
			return domain.Webhook{}, err
		}
		w.URL = *in.URL
	}
	if in.Events != nil {
		if err := validateEvents(*in.Events); err != nil {
			return domain.Webhook{}, err
		}
		w.Events = *in.Events
	}
	if in.Description != nil {
		w.Description = *in.Description
	}
	if in.IsActive != nil {
		w.IsActive = *in.IsActive
	}
	w.UpdatedAt = s.now().UTC()

	if err := s.store().Update(ctx, w); err != nil {
		return domain.Webhook{}, err
	}
	w.Secret = ""
	return w, nil
}

// Delete implements domain.ManagerPort
func (s *Service) Delete(ctx context.Context, webhookID string) error {
	if _, err := s.getScoped(ctx, webhookID); err != nil {
		return err
	}
	return repokit.WithTx(ctx, s.tx, func(q repokit.Queryer) error {
		return s.binder.Bind(q).Delete(ctx, webhookID)
	})
}

// Deliveries implements domain.ManagerPort
func (s *Service) Deliveries(ctx context.Context, webhookID string, f domain.DeliveryFilter) ([]domain.Delivery, error) {
	if _, err := s.getScoped(ctx, webhookID); err != nil {
		return nil, err
	}
	if f.Limit <= 0 {
		f.Limit = defaultDeliveryLimit
	}
	out, err := s.store().Deliveries(ctx, webhookID, f)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Delivery{}
	}
	return out, nil
}

// Stats implements domain.ManagerPort
func (s *Service) Stats(ctx context.Context, webhookID string) (domain.Stats, error) {
	if _, err := s.getScoped(ctx, webhookID); err != nil {
		return domain.Stats{}, err
	}
	st, err := s.store().StatusCounts(ctx, webhookID)
	if err != nil {
		return domain.Stats{}, err
	}
	if st.Total > 0 {
		st.SuccessRate = float64(st.Success) / float64(st.Total) * 100
	}
	return st, nil
}

// RetryFailed implements domain.ManagerPort
func (s *Service) RetryFailed(ctx context.Context, webhookID string) (int64, error) {
	if _, err := s.getScoped(ctx, webhookID); err != nil {
		return 0, err
	}
	return s.store().ResetFailed(ctx, webhookID)
}

// Trigger implements domain.TriggerPort. It queues a delivery for every
// active webhook subscribed to the event (or to everything); unknown
// tenants and unsubscribed events queue nothing.
func (s *Service) Trigger(ctx context.Context, tenantID, event string, data any) error {
	hooks, err := s.store().ActiveSubscribed(ctx, tenantID, event)
	if err != nil {
		return err
	}
	if len(hooks) == 0 {
		return nil
	}

	now := s.now().UTC()
	body, err := json.Marshal(domain.Payload{
		Event:     event,
		Timestamp: now,
		TenantID:  tenantID,
		Data:      data,
	})
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "marshal webhook payload")
	}

	st := s.store()
	for _, h := range hooks {
		d := domain.Delivery{
			ID:          uuid.NewString(),
			WebhookID:   h.ID,
			Event:       event,
			Payload:     body,
			Status:      domain.StatusPending,
			MaxAttempts: defaultMaxAttempts,
			CreatedAt:   now,
		}
		if err := st.InsertDelivery(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return perr.Newf(perr.ErrorCodeValidation, "invalid URL format")
	}
	return nil
}

func validateEvents(events []string) error {
	var invalid []string
	for _, e := range events {
		if !domain.ValidEvent(e) {
			invalid = append(invalid, e)
		}
	}
	if len(invalid) > 0 {
		return perr.Newf(perr.ErrorCodeValidation, "invalid events: %s", strings.Join(invalid, ", "))
	}
	return nil
}

func newSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "generate webhook secret")
	}
	return hex.EncodeToString(buf), nil
}

package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"brandpulse/internal/platform/logger"
	pnet "brandpulse/internal/platform/net"
	"brandpulse/internal/services/exports/domain"
)

type cronEntry struct {
	id       cron.EntryID
	schedule string
}

// Run drives the cron scheduler until the context is cancelled. The
// job table is loaded from the database at start and reconciled every
// resync interval, so definition changes made through the API are
// picked up without a restart. Implements domain.RunnerPort.
func (s *Service) Run(ctx context.Context) error {
	log := logger.Named("export-scheduler")

	c := cron.New(cron.WithParser(cronParser))
	entries := map[string]cronEntry{}
	gates := map[string]chan struct{}{}

	if err := s.reconcile(ctx, c, entries, gates); err != nil {
		log.Error().Err(err).Msg("initial export schedule load failed")
	}
	c.Start()
	defer c.Stop()

	ticker := time.NewTicker(s.cfg.Resync)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.reconcile(ctx, c, entries, gates); err != nil {
				log.Error().Err(err).Msg("export schedule reconcile failed")
			}
		}
	}
}

// reconcile syncs the cron job table with the active export
// definitions in the database
func (s *Service) reconcile(ctx context.Context, c *cron.Cron, entries map[string]cronEntry, gates map[string]chan struct{}) error {
	active, err := s.store().Active(ctx)
	if err != nil {
		return err
	}

	seen := map[string]bool{}
	for _, e := range active {
		seen[e.ID] = true

		if cur, ok := entries[e.ID]; ok {
			if cur.schedule == e.Schedule {
				continue
			}
			c.Remove(cur.id)
			delete(entries, e.ID)
		}

		if _, ok := gates[e.ID]; !ok {
			gates[e.ID] = make(chan struct{}, 1)
		}
		job := e
		gate := gates[e.ID]
		id, err := c.AddFunc(job.Schedule, func() { s.runJob(job, gate) })
		if err != nil {
			logger.Named("export-scheduler").Error().Err(err).
				Str("export_id", job.ID).
				Str("schedule", job.Schedule).
				Msg("schedule export job failed")
			continue
		}
		entries[e.ID] = cronEntry{id: id, schedule: e.Schedule}
	}

	for id, cur := range entries {
		if !seen[id] {
			c.Remove(cur.id)
			delete(entries, id)
			delete(gates, id)
		}
	}
	return nil
}

// runJob executes one scheduled run under a per-job gate so an export
// cannot overlap itself
func (s *Service) runJob(e domain.ScheduledExport, gate chan struct{}) {
	log := logger.Named("export-scheduler")
	select {
	case gate <- struct{}{}:
		defer func() { <-gate }()
	default:
		log.Warn().Str("export_id", e.ID).Msg("previous run still in progress, skipping")
		return
	}

	// scheduled runs act on behalf of the system, not a portal user
	ctx := pnet.WithSuperAdmin(context.Background(), true)

	// the definition may have changed since it was scheduled
	fresh, err := s.store().Get(ctx, e.ID)
	if err != nil || !fresh.IsActive {
		if err != nil {
			log.Warn().Err(err).Str("export_id", e.ID).Msg("load export for run failed")
		}
		return
	}

	if err := s.execute(ctx, fresh); err != nil {
		log.Error().Err(err).Str("export_id", e.ID).Str("name", fresh.Name).Msg("export run failed")
		return
	}
	log.Info().Str("export_id", e.ID).Str("name", fresh.Name).Msg("export run completed")
}

var _ domain.RunnerPort = (*Service)(nil)

// Package repo provides the scheduled exports repository implementation.
package repo

import (
	"context"
	"encoding/json"
	"time"

	"brandpulse/internal/modkit/repokit"
	perr "brandpulse/internal/platform/errors"
	"brandpulse/internal/platform/store"
	"brandpulse/internal/services/exports/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the scheduled exports repository
type Storage interface {
	All(ctx context.Context) ([]domain.ScheduledExport, error)
	ByTenants(ctx context.Context, tenantIDs []string) ([]domain.ScheduledExport, error)
	Get(ctx context.Context, id string) (domain.ScheduledExport, error)
	Insert(ctx context.Context, e domain.ScheduledExport) error
	Update(ctx context.Context, e domain.ScheduledExport) error
	Delete(ctx context.Context, id string) error
	Active(ctx context.Context) ([]domain.ScheduledExport, error)
	SetLastRun(ctx context.Context, id string, at time.Time) error

	InsertHistory(ctx context.Context, h domain.HistoryEntry) error
	CompleteHistory(ctx context.Context, id, fileName string, fileSize, recordCount int64, at time.Time) error
	FailHistory(ctx context.Context, id, errMsg string, at time.Time) error
	History(ctx context.Context, scheduledExportID string, limit int) ([]domain.HistoryEntry, error)
}

const exportCols = `
	id::text, tenant_id::text, name, COALESCE(description, ''),
	export_type, format, schedule, recipients, filters,
	is_active, last_run_at, created_at, updated_at`

func scanExport(r store.Row) (domain.ScheduledExport, error) {
	var (
		e       domain.ScheduledExport
		filters []byte
	)
	err := r.Scan(
		&e.ID, &e.TenantID, &e.Name, &e.Description,
		&e.ExportType, &e.Format, &e.Schedule, &e.Recipients, &filters,
		&e.IsActive, &e.LastRunAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return e, err
	}
	if len(filters) > 0 {
		if err := json.Unmarshal(filters, &e.Filters); err != nil {
			return e, perr.Wrapf(err, perr.ErrorCodeJSON, "decode export filters")
		}
	}
	return e, nil
}

func (s *pg) All(ctx context.Context) ([]domain.ScheduledExport, error) {
	return store.Many(ctx, s.q, scanExport, `
		SELECT `+exportCols+`
		FROM scheduled_exports
		ORDER BY created_at DESC`)
}

func (s *pg) ByTenants(ctx context.Context, tenantIDs []string) ([]domain.ScheduledExport, error) {
	return store.Many(ctx, s.q, scanExport, `
		SELECT `+exportCols+`
		FROM scheduled_exports
		WHERE tenant_id = ANY($1)
		ORDER BY created_at DESC`, tenantIDs)
}

func (s *pg) Get(ctx context.Context, id string) (domain.ScheduledExport, error) {
	return store.One(ctx, s.q, scanExport, `
		SELECT `+exportCols+`
		FROM scheduled_exports
		WHERE id = $1`, id)
}

func (s *pg) Insert(ctx context.Context, e domain.ScheduledExport) error {
	filters, err := json.Marshal(e.Filters)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "encode export filters")
	}
	_, err = s.q.Exec(ctx, `
		INSERT INTO scheduled_exports
			(id, tenant_id, name, description, export_type, format, schedule,
			 recipients, filters, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.ID, e.TenantID, e.Name, e.Description, e.ExportType, e.Format, e.Schedule,
		e.Recipients, filters, e.IsActive, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

func (s *pg) Update(ctx context.Context, e domain.ScheduledExport) error {
	filters, err := json.Marshal(e.Filters)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "encode export filters")
	}
	_, err = s.q.Exec(ctx, `
		UPDATE scheduled_exports
		SET name = $2, description = NULLIF($3, ''), export_type = $4, format = $5,
			schedule = $6, recipients = $7, filters = $8, is_active = $9, updated_at = $10
		WHERE id = $1`,
		e.ID, e.Name, e.Description, e.ExportType, e.Format,
		e.Schedule, e.Recipients, filters, e.IsActive, e.UpdatedAt,
	)
	return err
}

// Delete removes the export definition and its run history
func (s *pg) Delete(ctx context.Context, id string) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM export_history WHERE scheduled_export_id = $1`, id); err != nil {
		return err
	}
	_, err := s.q.Exec(ctx, `DELETE FROM scheduled_exports WHERE id = $1`, id)
	return err
}

func (s *pg) Active(ctx context.Context) ([]domain.ScheduledExport, error) {
	return store.Many(ctx, s.q, scanExport, `
		SELECT `+exportCols+`
		FROM scheduled_exports
		WHERE is_active
		ORDER BY created_at`)
}

func (s *pg) SetLastRun(ctx context.Context, id string, at time.Time) error {
	_, err := s.q.Exec(ctx, `
		UPDATE scheduled_exports SET last_run_at = $2 WHERE id = $1`, id, at)
	return err
}

const historyCols = `
	id::text, scheduled_export_id::text, tenant_id::text, format, status,
	recipients, COALESCE(file_name, ''), COALESCE(file_size, 0),
	COALESCE(record_count, 0), COALESCE(error, ''),
	started_at, completed_at, created_at`

func scanHistory(r store.Row) (domain.HistoryEntry, error) {
	var h domain.HistoryEntry
	err := r.Scan(
		&h.ID, &h.ScheduledExportID, &h.TenantID, &h.Format, &h.Status,
		&h.Recipients, &h.FileName, &h.FileSize,
		&h.RecordCount, &h.Error,
		&h.StartedAt, &h.CompletedAt, &h.CreatedAt,
	)
	return h, err
}

func (s *pg) InsertHistory(ctx context.Context, h domain.HistoryEntry) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO export_history
			(id, scheduled_export_id, tenant_id, format, status, recipients, started_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		h.ID, h.ScheduledExportID, h.TenantID, h.Format, h.Status, h.Recipients, h.StartedAt, h.CreatedAt,
	)
	return err
}

func (s *pg) CompleteHistory(ctx context.Context, id, fileName string, fileSize, recordCount int64, at time.Time) error {
	_, err := s.q.Exec(ctx, `
		UPDATE export_history
		SET status = $2, file_name = $3, file_size = $4, record_count = $5, completed_at = $6
		WHERE id = $1`,
		id, domain.StatusCompleted, fileName, fileSize, recordCount, at,
	)
	return err
}

func (s *pg) FailHistory(ctx context.Context, id, errMsg string, at time.Time) error {
	_, err := s.q.Exec(ctx, `
		UPDATE export_history
		SET status = $2, error = $3, completed_at = $4
		WHERE id = $1`,
		id, domain.StatusFailed, errMsg, at,
	)
	return err
}

func (s *pg) History(ctx context.Context, scheduledExportID string, limit int) ([]domain.HistoryEntry, error) {
	return store.Many(ctx, s.q, scanHistory, `
		SELECT `+historyCols+`
		FROM export_history
		WHERE scheduled_export_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, scheduledExportID, limit)
}

// Package domain defines scheduled exports and their run history
package domain

import "time"

// Export types
const (
	TypeCampaign  = "campaign"
	TypeCampaigns = "campaigns"
	TypeAggregate = "aggregate"
)

// Output formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXML  = "xml"
)

// ValidType reports whether t names a known export type
func ValidType(t string) bool {
	return t == TypeCampaign || t == TypeCampaigns || t == TypeAggregate
}

// ValidFormat reports whether f names a supported output format
func ValidFormat(f string) bool {
	return f == FormatCSV || f == FormatJSON || f == FormatXML
}

// Run statuses
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Filters narrows which campaigns an export covers
type Filters struct {
	CampaignID  string   `json:"campaignId,omitempty"`
	CampaignIDs []string `json:"campaignIds,omitempty"`
	StartDate   string   `json:"startDate,omitempty"`
	EndDate     string   `json:"endDate,omitempty"`
}

// ScheduledExport is one recurring export definition
type ScheduledExport struct {
	ID          string     `json:"id"`
	TenantID    string     `json:"tenantId"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ExportType  string     `json:"exportType"`
	Format      string     `json:"format"`
	Schedule    string     `json:"schedule"`
	Recipients  []string   `json:"recipients"`
	Filters     Filters    `json:"filters"`
	IsActive    bool       `json:"isActive"`
	LastRunAt   *time.Time `json:"lastRunAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// HistoryEntry records one export run
type HistoryEntry struct {
	ID                string     `json:"id"`
	ScheduledExportID string     `json:"scheduledExportId"`
	TenantID          string     `json:"tenantId"`
	Format            string     `json:"format"`
	Status            string     `json:"status"`
	Recipients        []string   `json:"recipients"`
	FileName          string     `json:"fileName,omitempty"`
	FileSize          int64      `json:"fileSize,omitempty"`
	RecordCount       int64      `json:"recordCount,omitempty"`
	Error             string     `json:"error,omitempty"`
	StartedAt         time.Time  `json:"startedAt"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// CreateInput describes a new scheduled export
type CreateInput struct {
	TenantID    string   `json:"tenantId" validate:"required" example:"acme"`
	Name        string   `json:"name" validate:"required" example:"Weekly engagement digest"`
	Description string   `json:"description,omitempty"`
	ExportType  string   `json:"exportType,omitempty"`
	Format      string   `json:"format,omitempty"`
	Schedule    string   `json:"schedule" validate:"required" example:"0 9 * * 1"`
	Recipients  []string `json:"recipients" validate:"required,min=1,dive,email"`
	Filters     Filters  `json:"filters,omitempty"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

// UpdateInput carries partial changes; nil fields keep their value
type UpdateInput struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	ExportType  *string   `json:"exportType,omitempty"`
	Format      *string   `json:"format,omitempty"`
	Schedule    *string   `json:"schedule,omitempty"`
	Recipients  *[]string `json:"recipients,omitempty"`
	Filters     *Filters  `json:"filters,omitempty"`
	IsActive    *bool     `json:"isActive,omitempty"`
}

// CronCheck is the validate-cron response shape
type CronCheck struct {
	Valid      bool   `json:"valid"`
	Expression string `json:"expression"`
	Message    string `json:"message"`
}

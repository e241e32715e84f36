// Package domain defines webhook subscriptions and delivery records
package domain

import (
	"encoding/json"
	"time"
)

// Events the portal can notify subscribers about
const (
	EventCampaignCreated   = "campaign.created"
	EventCampaignUpdated   = "campaign.updated"
	EventCampaignDeleted   = "campaign.deleted"
	EventCampaignMilestone = "campaign.milestone"
	EventMachineDowntime   = "machine.downtime"
	EventUserCreated       = "user.created"
	EventUserDeleted       = "user.deleted"
	EventConfigChanged     = "config.changed"
	EventCSVUploaded       = "csv.uploaded"
	EventExportCompleted   = "export.completed"
)

// Events lists every known event name in a stable order
func Events() []string {
	return []string{
		EventCampaignCreated,
		EventCampaignUpdated,
		EventCampaignDeleted,
		EventCampaignMilestone,
		EventMachineDowntime,
		EventUserCreated,
		EventUserDeleted,
		EventConfigChanged,
		EventCSVUploaded,
		EventExportCompleted,
	}
}

// ValidEvent reports whether e names a known event. The wildcard "*"
// subscribes to everything.
func ValidEvent(e string) bool {
	if e == "*" {
		return true
	}
	for _, known := range Events() {
		if e == known {
			return true
		}
	}
	return false
}

// Delivery statuses
const (
	StatusPending  = "pending"
	StatusRetrying = "retrying"
	StatusSuccess  = "success"
	StatusFailed   = "failed"
)

// Webhook is one tenant subscription endpoint
type Webhook struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	URL         string    `json:"url"`
	Secret      string    `json:"secret,omitempty"`
	Events      []string  `json:"events"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Delivery is one queued or completed webhook POST
type Delivery struct {
	ID             string          `json:"id"`
	WebhookID      string          `json:"webhookId"`
	Event          string          `json:"event"`
	Payload        json.RawMessage `json:"payload"`
	Status         string          `json:"status"`
	Attempts       int             `json:"attempts"`
	MaxAttempts    int             `json:"maxAttempts"`
	NextRetryAt    *time.Time      `json:"nextRetryAt,omitempty"`
	ResponseStatus *int            `json:"responseStatus,omitempty"`
	ResponseBody   string          `json:"responseBody,omitempty"`
	Error          string          `json:"error,omitempty"`
	DeliveredAt    *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Payload is the signed body POSTed to subscribers
type Payload struct {
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	TenantID  string    `json:"tenantId"`
	Data      any       `json:"data"`
}

// Stats summarizes a webhook's delivery history
type Stats struct {
	Total       int64   `json:"total"`
	Success     int64   `json:"success"`
	Failed      int64   `json:"failed"`
	Pending     int64   `json:"pending"`
	Retrying    int64   `json:"retrying"`
	SuccessRate float64 `json:"successRate"`
}

// CreateInput creates a webhook subscription
type CreateInput struct {
	URL         string   `json:"url" validate:"required,url" example:"https://example.com/hooks/brandpulse"`
	Events      []string `json:"events" validate:"required,min=1,dive,required"`
	Description string   `json:"description"`
}

// UpdateInput patches a webhook; nil fields are untouched
type UpdateInput struct {
	URL         *string   `json:"url"`
	Events      *[]string `json:"events"`
	Description *string   `json:"description"`
	IsActive    *bool     `json:"isActive"`
}

// DeliveryFilter narrows delivery listings
type DeliveryFilter struct {
	Status string
	Limit  int
}

// Package domain defines campaign entities and derived KPI shapes
package domain

import "time"

// Tenant is a brand with portal branding fields
type Tenant struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
	AccentColor    string `json:"accentColor,omitempty"`
	LogoURL        string `json:"logoUrl,omitempty"`
}

// Campaign is one brand activation with its legacy counters
type Campaign struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`

	// legacy counters carried over from the pre-session data model
	TotalProductsDispensed   int64   `json:"totalProductsDispensed"`
	TotalUserInteractions    int64   `json:"totalUserInteractions"`
	TotalFreeSamplesRedeemed int64   `json:"totalFreeSamplesRedeemed"`
	TotalProductClicks       int64   `json:"totalProductClicks"`
	UniqueCustomers          int64   `json:"uniqueCustomers"`
	TotalAdPlays             int64   `json:"totalAdPlays"`
	AverageEngagementTime    float64 `json:"averageEngagementTime"`
	MachineUptimePercent     float64 `json:"machineUptimePercent"`
	TotalHours               float64 `json:"totalHours"`
	MachineOfflineMinutes    float64 `json:"machineOfflineMinutes"`

	Tenant *Tenant `json:"tenant,omitempty"`
}

// ListFilter narrows campaign listings
type ListFilter struct {
	TenantIDs []string
	Start     *time.Time
	End       *time.Time
}

// SessionAgg is the SQL roll-up over sessions in scope
type SessionAgg struct {
	Sessions         int64
	JourneyStarted   int64
	JourneyCompleted int64
	DurationCount    int64
	AvgDuration      float64
	DeepCount        int64
}

// AttentionQuality describes dwell time over measured sessions
type AttentionQuality struct {
	AverageDurationSeconds float64 `json:"averageDurationSeconds"`
	DeepEngagementPct      float64 `json:"deepEngagementPct"`
	SessionCount           int64   `json:"sessionCount"`
}

// ExperienceCompletion describes guided journey completion
type ExperienceCompletion struct {
	CompletionRate   float64 `json:"completionRate"`
	JourneyStarted   int64   `json:"journeyStarted"`
	JourneyCompleted int64   `json:"journeyCompleted"`
}

// QualifiedContacts counts consenting leads
type QualifiedContacts struct {
	Total       int64   `json:"total"`
	ContactRate float64 `json:"contactRate"`
}

// Metrics is the per-campaign KPI snapshot
type Metrics struct {
	VerifiedEngagement   int64                `json:"verifiedEngagement"`
	TotalImpressions     int64                `json:"totalImpressions"`
	EngagementRate       float64              `json:"engagementRate"`
	AttentionQuality     AttentionQuality     `json:"attentionQuality"`
	ExperienceCompletion ExperienceCompletion `json:"experienceCompletion"`
	QualifiedContacts    QualifiedContacts    `json:"qualifiedContacts"`
}

// Funnel is the impression to contact conversion ladder
type Funnel struct {
	Impressions                 int64   `json:"impressions"`
	Interactions                int64   `json:"interactions"`
	Completions                 int64   `json:"completions"`
	Contacts                    int64   `json:"contacts"`
	ImpressionToInteractionRate float64 `json:"impressionToInteractionRate"`
	InteractionToCompletionRate float64 `json:"interactionToCompletionRate"`
	CompletionToContactRate     float64 `json:"completionToContactRate"`
}

// AttentionBuckets is the dwell time histogram
type AttentionBuckets struct {
	Under15 int64 `json:"0-15"`
	To30    int64 `json:"15-30"`
	To60    int64 `json:"30-60"`
	Over60  int64 `json:"60+"`
}

// AttentionDistribution wraps the histogram with its total
type AttentionDistribution struct {
	Buckets AttentionBuckets `json:"buckets"`
	Total   int64            `json:"total"`
}

// FunnelStep is one cumulative step count
type FunnelStep struct {
	Step  int   `json:"step"`
	Count int64 `json:"count"`
}

// CompletionFunnel is the step by step drop-off over started journeys
type CompletionFunnel struct {
	Steps        []FunnelStep `json:"steps"`
	TotalStarted int64        `json:"totalStarted"`
}

// DayPoint is one calendar day of merged activity
type DayPoint struct {
	Date         string `json:"date"`
	Interactions int64  `json:"interactions"`
	Completions  int64  `json:"completions"`
	Contacts     int64  `json:"contacts"`
}

// Timeseries is the daily activity series for a campaign
type Timeseries struct {
	Series []DayPoint `json:"series"`
}

// KPIRollup is the summed KPI shape shared by the admin and tenant aggregates
type KPIRollup struct {
	VerifiedEngagement int64   `json:"verifiedEngagement"`
	JourneyCompleted   int64   `json:"journeyCompleted"`
	TotalImpressions   int64   `json:"totalImpressions"`
	EngagementRate     float64 `json:"engagementRate"`
	CompletionRate     float64 `json:"completionRate"`
	QualifiedContacts  int64   `json:"qualifiedContacts"`
	ContactRate        float64 `json:"contactRate"`
	AvgDurationSeconds float64 `json:"avgDurationSeconds"`
	DeepEngagementPct  float64 `json:"deepEngagementPct"`
}

// AdminAggregate is the cross-tenant roll-up
type AdminAggregate struct {
	KPIRollup
	CampaignCount int64 `json:"campaignCount"`
	TenantCount   int64 `json:"tenantCount"`
}

// LegacyTotals sums the legacy counters over a campaign set
type LegacyTotals struct {
	TotalProductsDispensed   int64 `json:"totalProductsDispensed"`
	TotalUserInteractions    int64 `json:"totalUserInteractions"`
	TotalFreeSamplesRedeemed int64 `json:"totalFreeSamplesRedeemed"`
	TotalProductClicks       int64 `json:"totalProductClicks"`
	UniqueCustomers          int64 `json:"uniqueCustomers"`
	TotalAdPlays             int64 `json:"totalAdPlays"`
	CampaignCount            int64 `json:"campaignCount"`
}

// DateRange echoes the requested bounds on aggregate responses
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// TenantAggregate is the per-tenant roll-up with legacy counters
type TenantAggregate struct {
	LegacyTotals
	AverageEngagementTime float64    `json:"averageEngagementTime"`
	AverageUptime         string     `json:"averageUptime"`
	DateRange             *DateRange `json:"dateRange"`
	KPIRollup
}

// ComparisonPeriod is one side of a period comparison
type ComparisonPeriod struct {
	DateRange DateRange    `json:"dateRange"`
	Metrics   LegacyTotals `json:"metrics"`
}

// ComparisonChanges holds percent changes between the two periods
type ComparisonChanges struct {
	TotalProductsDispensed   float64 `json:"totalProductsDispensed"`
	TotalUserInteractions    float64 `json:"totalUserInteractions"`
	TotalFreeSamplesRedeemed float64 `json:"totalFreeSamplesRedeemed"`
	TotalProductClicks       float64 `json:"totalProductClicks"`
	UniqueCustomers          float64 `json:"uniqueCustomers"`
	TotalAdPlays             float64 `json:"totalAdPlays"`
}

// Comparison is the two-period tenant comparison
type Comparison struct {
	Period1 ComparisonPeriod  `json:"period1"`
	Period2 ComparisonPeriod  `json:"period2"`
	Changes ComparisonChanges `json:"changes"`
}

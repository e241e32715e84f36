// Package http provides http transport for webhooks
package http

import (
	stdhttp "net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"brandpulse/internal/modkit/httpkit"
	"brandpulse/internal/services/webhooks/domain"
)

// eventDescriptions documents each deliverable event for API consumers
var eventDescriptions = map[string]string{
	domain.EventCampaignCreated:   "A new campaign was created",
	domain.EventCampaignUpdated:   "Campaign details were updated",
	domain.EventCampaignDeleted:   "A campaign was deleted",
	domain.EventCampaignMilestone: "A campaign reached an engagement milestone",
	domain.EventMachineDowntime:   "A machine reported low uptime",
	domain.EventUserCreated:       "A portal user account was created",
	domain.EventUserDeleted:       "A portal user account was deleted",
	domain.EventConfigChanged:     "Tenant configuration changed",
	domain.EventCSVUploaded:       "A metrics CSV upload finished processing",
	domain.EventExportCompleted:   "A scheduled export run finished",
}

// Register mounts webhook management endpoints on the given router
func Register(r httpkit.Router, s domain.ManagerPort) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/events", h.events)
	httpkit.Get(r, "/tenant/{tenantID}", h.list)
	httpkit.PostJSON(r, "/tenant/{tenantID}", h.create)
	httpkit.PutJSON(r, "/{webhookID}", h.update)
	httpkit.Delete(r, "/{webhookID}", h.remove)
	httpkit.Get(r, "/{webhookID}/deliveries", h.deliveries)
	httpkit.Get(r, "/{webhookID}/stats", h.stats)
	httpkit.Post(r, "/{webhookID}/retry", h.retry)
}

type handlers struct{ svc domain.ManagerPort }

// swagger:route GET /webhooks/events Webhooks webhooksEvents
// @Summary List deliverable webhook events
// @Tags Webhooks
// @Produce json
// @Success 200 {object} map[string]any "ok"
// @Router /webhooks/events [get]
func (h *handlers) events(_ *stdhttp.Request) (any, error) {
	return map[string]any{
		"events":       domain.Events(),
		"descriptions": eventDescriptions,
	}, nil
}

// swagger:route GET /webhooks/tenant/{tenantID} Webhooks webhooksList
// @Summary List a tenant's webhooks
// @Tags Webhooks
// @Produce json
// @Param tenantID path string true "Tenant id"
// @Success 200 {array} domain.Webhook "ok"
// @Router /webhooks/tenant/{tenantID} [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	return h.svc.List(r.Context(), chi.URLParam(r, "tenantID"))
}

// swagger:route POST /webhooks/tenant/{tenantID} Webhooks webhooksCreate
// @Summary Create a webhook subscription
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param tenantID path string true "Tenant id"
// @Param body body domain.CreateInput true "Webhook definition"
// @Success 200 {object} map[string]any "ok"
// @Router /webhooks/tenant/{tenantID} [post]
func (h *handlers) create(r *stdhttp.Request, in domain.CreateInput) (any, error) {
	w, err := h.svc.Create(r.Context(), chi.URLParam(r, "tenantID"), in)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"webhook": w,
		"message": "Webhook created successfully. Save the secret - it will not be shown again.",
	}, nil
}

// swagger:route PUT /webhooks/{webhookID} Webhooks webhooksUpdate
// @Summary Update a webhook subscription
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param webhookID path string true "Webhook id"
// @Param body body domain.UpdateInput true "Fields to change"
// @Success 200 {object} domain.Webhook "ok"
// @Router /webhooks/{webhookID} [put]
func (h *handlers) update(r *stdhttp.Request, in domain.UpdateInput) (any, error) {
	return h.svc.Update(r.Context(), chi.URLParam(r, "webhookID"), in)
}

// swagger:route DELETE /webhooks/{webhookID} Webhooks webhooksDelete
// @Summary Delete a webhook and its delivery history
// @Tags Webhooks
// @Produce json
// @Param webhookID path string true "Webhook id"
// @Success 200 {object} map[string]bool "ok"
// @Router /webhooks/{webhookID} [delete]
func (h *handlers) remove(r *stdhttp.Request) (any, error) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "webhookID")); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

// swagger:route GET /webhooks/{webhookID}/deliveries Webhooks webhooksDeliveries
// @Summary List recent delivery attempts for a webhook
// @Tags Webhooks
// @Produce json
// @Param webhookID path string true "Webhook id"
// @Param status query string false "Filter by delivery status"
// @Param limit query int false "Max rows, default 50"
// @Success 200 {array} domain.Delivery "ok"
// @Router /webhooks/{webhookID}/deliveries [get]
func (h *handlers) deliveries(r *stdhttp.Request) (any, error) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	return h.svc.Deliveries(r.Context(), chi.URLParam(r, "webhookID"), domain.DeliveryFilter{
		Status: q.Get("status"),
		Limit:  limit,
	})
}

// swagger:route GET /webhooks/{webhookID}/stats Webhooks webhooksStats
// @Summary Delivery outcome counts and success rate
// @Tags Webhooks
// @Produce json
// @Param webhookID path string true "Webhook id"
// @Success 200 {object} domain.Stats "ok"
// @Router /webhooks/{webhookID}/stats [get]
func (h *handlers) stats(r *stdhttp.Request) (any, error) {
	return h.svc.Stats(r.Context(), chi.URLParam(r, "webhookID"))
}

// swagger:route POST /webhooks/{webhookID}/retry Webhooks webhooksRetry
// @Summary Requeue all failed deliveries for a webhook
// @Tags Webhooks
// @Produce json
// @Param webhookID path string true "Webhook id"
// @Success 200 {object} map[string]any "ok"
// @Router /webhooks/{webhookID}/retry [post]
func (h *handlers) retry(r *stdhttp.Request) (any, error) {
	n, err := h.svc.RetryFailed(r.Context(), chi.URLParam(r, "webhookID"))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"retriedCount": n,
		"message":      "Retrying " + strconv.FormatInt(n, 10) + " failed deliveries",
	}, nil
}

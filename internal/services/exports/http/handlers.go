// Package http provides http transport for scheduled exports
package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	"brandpulse/internal/modkit/httpkit"
	"brandpulse/internal/services/exports/domain"
)

// Register mounts scheduled export endpoints on the given router
func Register(r httpkit.Router, s domain.ManagerPort) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/", h.list)
	httpkit.PostJSON(r, "/", h.create)
	httpkit.PostJSON(r, "/validate-cron", h.validateCron)
	httpkit.Get(r, "/{id}", h.get)
	httpkit.PutJSON(r, "/{id}", h.update)
	httpkit.Delete(r, "/{id}", h.remove)
	httpkit.Post(r, "/{id}/trigger", h.trigger)
	httpkit.Get(r, "/{id}/history", h.history)
}

type handlers struct{ svc domain.ManagerPort }

// swagger:route GET /scheduled-exports ScheduledExports scheduledExportsList
// @Summary List scheduled exports in the caller's tenants
// @Tags ScheduledExports
// @Produce json
// @Success 200 {array} domain.ScheduledExport "ok"
// @Router /scheduled-exports [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	return h.svc.List(r.Context())
}

// swagger:route GET /scheduled-exports/{id} ScheduledExports scheduledExportsGet
// @Summary Get one scheduled export
// @Tags ScheduledExports
// @Produce json
// @Param id path string true "Scheduled export id"
// @Success 200 {object} domain.ScheduledExport "ok"
// @Router /scheduled-exports/{id} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	return h.svc.Get(r.Context(), chi.URLParam(r, "id"))
}

// swagger:route POST /scheduled-exports ScheduledExports scheduledExportsCreate
// @Summary Create a scheduled export
// @Tags ScheduledExports
// @Accept json
// @Produce json
// @Param body body domain.CreateInput true "Export definition"
// @Success 200 {object} domain.ScheduledExport "ok"
// @Router /scheduled-exports [post]
func (h *handlers) create(r *stdhttp.Request, in domain.CreateInput) (any, error) {
	return h.svc.Create(r.Context(), in)
}

// swagger:route PUT /scheduled-exports/{id} ScheduledExports scheduledExportsUpdate
// @Summary Update a scheduled export
// @Tags ScheduledExports
// @Accept json
// @Produce json
// @Param id path string true "Scheduled export id"
// @Param body body domain.UpdateInput true "Fields to change"
// @Success 200 {object} domain.ScheduledExport "ok"
// @Router /scheduled-exports/{id} [put]
func (h *handlers) update(r *stdhttp.Request, in domain.UpdateInput) (any, error) {
	return h.svc.Update(r.Context(), chi.URLParam(r, "id"), in)
}

// swagger:route DELETE /scheduled-exports/{id} ScheduledExports scheduledExportsDelete
// @Summary Delete a scheduled export and its run history
// @Tags ScheduledExports
// @Produce json
// @Param id path string true "Scheduled export id"
// @Success 200 {object} map[string]string "ok"
// @Router /scheduled-exports/{id} [delete]
func (h *handlers) remove(r *stdhttp.Request) (any, error) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		return nil, err
	}
	return map[string]string{"message": "Scheduled export deleted successfully"}, nil
}

// swagger:route POST /scheduled-exports/{id}/trigger ScheduledExports scheduledExportsTrigger
// @Summary Run a scheduled export immediately
// @Tags ScheduledExports
// @Produce json
// @Param id path string true "Scheduled export id"
// @Success 200 {object} map[string]string "ok"
// @Router /scheduled-exports/{id}/trigger [post]
func (h *handlers) trigger(r *stdhttp.Request) (any, error) {
	if err := h.svc.Trigger(r.Context(), chi.URLParam(r, "id")); err != nil {
		return nil, err
	}
	return map[string]string{"message": "Export completed. Recipients will receive an email."}, nil
}

// swagger:route GET /scheduled-exports/{id}/history ScheduledExports scheduledExportsHistory
// @Summary List recent runs for a scheduled export
// @Tags ScheduledExports
// @Produce json
// @Param id path string true "Scheduled export id"
// @Success 200 {array} domain.HistoryEntry "ok"
// @Router /scheduled-exports/{id}/history [get]
func (h *handlers) history(r *stdhttp.Request) (any, error) {
	return h.svc.History(r.Context(), chi.URLParam(r, "id"))
}

type cronInput struct {
	Expression string `json:"expression" validate:"required" example:"0 9 * * 1"`
}

// swagger:route POST /scheduled-exports/validate-cron ScheduledExports scheduledExportsValidateCron
// @Summary Validate a cron expression
// @Tags ScheduledExports
// @Accept json
// @Produce json
// @Param body body cronInput true "Expression to check"
// @Success 200 {object} domain.CronCheck "ok"
// @Router /scheduled-exports/validate-cron [post]
func (h *handlers) validateCron(_ *stdhttp.Request, in cronInput) (any, error) {
	return h.svc.ValidateCron(in.Expression), nil
}

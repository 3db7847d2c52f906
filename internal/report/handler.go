// AngelaMos | 2026
// handler.go

package report

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/taskboard/internal/core"
	"github.com/carterperez-dev/taskboard/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/reports/dashboard", h.Dashboard)
		r.Get("/projects/{projectID}/report", h.Project)
	})
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Dashboard(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToDashboardResponse(d))
}

func (h *Handler) Project(w http.ResponseWriter, r *http.Request) {
	projectID, err := core.PathID(r, "projectID")
	if err != nil {
		core.HandleServiceError(w, err, "project")
		return
	}

	ctx := r.Context()

	rep, err := h.service.ProjectReport(
		ctx,
		projectID,
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
	)
	if err != nil {
		core.HandleServiceError(w, err, "project")
		return
	}

	core.OK(w, ToProjectReportResponse(rep))
}

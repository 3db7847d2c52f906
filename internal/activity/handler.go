// AngelaMos | 2026
// handler.go

package activity

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

		r.Get("/activity", h.ListMine)
		r.Get("/projects/{projectID}/activity", h.ListProject)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Post("/admin/activity/prune", h.Prune)
	})
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	page := core.ParsePage(r)

	logs, total, err := h.service.ListForUser(r.Context(), middleware.GetUserID(r.Context()), page)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToLogResponseList(logs), page.Page, page.PageSize, total)
}

func (h *Handler) ListProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := core.PathID(r, "projectID")
	if err != nil {
		core.HandleServiceError(w, err, "project")
		return
	}

	ctx := r.Context()
	page := core.ParsePage(r)

	logs, total, err := h.service.ListForProject(
		ctx,
		projectID,
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
		page,
	)
	if err != nil {
		core.HandleServiceError(w, err, "project")
		return
	}

	core.Paginated(w, ToLogResponseList(logs), page.Page, page.PageSize, total)
}

func (h *Handler) Prune(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.Prune(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, PruneResponse{Deleted: deleted})
}

// AngelaMos | 2026
// handler.go

package project

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/taskboard/internal/core"
	"github.com/carterperez-dev/taskboard/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/projects", h.List)
		r.Post("/projects", h.Create)
		r.Get("/projects/{projectID}", h.Get)
		r.Put("/projects/{projectID}", h.Update)
		r.Delete("/projects/{projectID}", h.Delete)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	p, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.HandleServiceError(w, err, "project")
		return
	}

	core.Created(w, ToProjectResponse(p, "owner"))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToMembershipResponseList(projects))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, err := core.PathID(r, "projectID")
	if err != nil {
		core.HandleServiceError(w, err, "project")
		return
	}

	ctx := r.Context()

	p, a, err := h.service.Get(
		ctx,
		projectID,
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
	)
	if err != nil {
		core.HandleServiceError(w, err, "project")
		return
	}

	core.OK(w, ToProjectResponse(p, a.Role))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	projectID, err := core.PathID(r, "projectID")
	if err != nil {
		core.HandleServiceError(w, err, "project")
		return
	}

	ctx := r.Context()

	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	p, err := h.service.Update(
		ctx,
		projectID,
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
		req,
	)
	if err != nil {
		core.HandleServiceError(w, err, "project")
		return
	}

	core.OK(w, ToProjectResponse(p, ""))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID, err := core.PathID(r, "projectID")
	if err != nil {
		core.HandleServiceError(w, err, "project")
		return
	}

	ctx := r.Context()

	err = h.service.Delete(
		ctx,
		projectID,
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
		core.QueryBool(r, "force"),
	)
	if err != nil {
		if errors.Is(err, ErrHasTasks) {
			core.JSONError(w, core.ConflictError(
				"PROJECT_HAS_TASKS",
				"project still has tasks; retry with force=true",
			))
			return
		}
		core.HandleServiceError(w, err, "project")
		return
	}

	core.NoContent(w)
}

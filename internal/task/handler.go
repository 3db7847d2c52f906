// AngelaMos | 2026
// handler.go

package task

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

		r.Get("/projects/{projectID}/tasks", h.List)
		r.Post("/projects/{projectID}/tasks", h.Create)
		r.Get("/projects/{projectID}/tasks/{taskID}", h.Get)
		r.Put("/projects/{projectID}/tasks/{taskID}", h.Update)
		r.Patch("/projects/{projectID}/tasks/{taskID}/status", h.Move)
		r.Delete("/projects/{projectID}/tasks/{taskID}", h.Delete)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, err := core.PathID(r, "projectID")
	if err != nil {
		handleError(w, err)
		return
	}

	ctx := r.Context()

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	t, err := h.service.Create(
		ctx,
		projectID,
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
		req,
	)
	if err != nil {
		handleError(w, err)
		return
	}

	core.Created(w, ToTaskResponse(t))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projectID, err := core.PathID(r, "projectID")
	if err != nil {
		handleError(w, err)
		return
	}

	ctx := r.Context()
	q := r.URL.Query()

	filter := Filter{
		Status:     q.Get("status"),
		Priority:   q.Get("priority"),
		AssigneeID: q.Get("assignee_id"),
	}
	if err := h.validator.Var(filter.Status, "omitempty,oneof=todo in_progress done"); err != nil {
		core.BadRequest(w, "status must be one of: todo in_progress done")
		return
	}
	if err := h.validator.Var(filter.Priority, "omitempty,oneof=low medium high urgent"); err != nil {
		core.BadRequest(w, "priority must be one of: low medium high urgent")
		return
	}
	if err := h.validator.Var(filter.AssigneeID, "omitempty,uuid"); err != nil {
		core.BadRequest(w, "assignee_id must be a valid UUID")
		return
	}

	tasks, err := h.service.List(
		ctx,
		projectID,
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
		filter,
	)
	if err != nil {
		handleError(w, err)
		return
	}

	core.OK(w, ToTaskResponseList(tasks))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, err := core.PathID(r, "projectID")
	if err != nil {
		handleError(w, err)
		return
	}
	taskID, err := core.PathID(r, "taskID")
	if err != nil {
		handleError(w, err)
		return
	}

	ctx := r.Context()

	t, err := h.service.Get(
		ctx,
		projectID,
		taskID,
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
	)
	if err != nil {
		handleError(w, err)
		return
	}

	core.OK(w, ToTaskResponse(t))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	projectID, err := core.PathID(r, "projectID")
	if err != nil {
		handleError(w, err)
		return
	}
	taskID, err := core.PathID(r, "taskID")
	if err != nil {
		handleError(w, err)
		return
	}

	ctx := r.Context()

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	t, err := h.service.Update(
		ctx,
		projectID,
		taskID,
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
		req,
	)
	if err != nil {
		handleError(w, err)
		return
	}

	core.OK(w, ToTaskResponse(t))
}

func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	projectID, err := core.PathID(r, "projectID")
	if err != nil {
		handleError(w, err)
		return
	}
	taskID, err := core.PathID(r, "taskID")
	if err != nil {
		handleError(w, err)
		return
	}

	ctx := r.Context()

	var req MoveTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	t, err := h.service.Move(
		ctx,
		projectID,
		taskID,
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
		req.Status,
	)
	if err != nil {
		handleError(w, err)
		return
	}

	core.OK(w, ToTaskResponse(t))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID, err := core.PathID(r, "projectID")
	if err != nil {
		handleError(w, err)
		return
	}
	taskID, err := core.PathID(r, "taskID")
	if err != nil {
		handleError(w, err)
		return
	}

	ctx := r.Context()

	err = h.service.Delete(
		ctx,
		projectID,
		taskID,
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
	)
	if err != nil {
		handleError(w, err)
		return
	}

	core.NoContent(w)
}

func handleError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrAssigneeNotMember) {
		core.BadRequest(w, "assignee must be the owner or a member of the project")
		return
	}
	core.HandleServiceError(w, err, "task")
}

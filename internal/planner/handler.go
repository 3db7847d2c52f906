// AngelaMos | 2026
// handler.go

package planner

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
	r.Route("/planner", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/tree", h.GetTree)
		r.Put("/order", h.Reorder)

		r.Get("/tasks", h.List)
		r.Post("/tasks", h.Create)
		r.Get("/tasks/{taskID}", h.Get)
		r.Put("/tasks/{taskID}", h.Update)
		r.Put("/tasks/{taskID}/parent", h.Reparent)
		r.Delete("/tasks/{taskID}", h.Delete)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	t, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		handleError(w, err)
		return
	}

	core.Created(w, ToTaskResponse(t))
}

// List returns the ordered children of ?parent_id, or the roots without it.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var parentID *string
	if p := r.URL.Query().Get("parent_id"); p != "" {
		if err := h.validator.Var(p, "uuid"); err != nil {
			core.BadRequest(w, "parent_id must be a valid UUID")
			return
		}
		parentID = &p
	}

	tasks, err := h.service.ListChildren(r.Context(), middleware.GetUserID(r.Context()), parentID)
	if err != nil {
		handleError(w, err)
		return
	}

	core.OK(w, ToTaskResponseList(tasks))
}

func (h *Handler) GetTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.service.GetTree(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToTreeResponse(tree))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	taskID, err := core.PathID(r, "taskID")
	if err != nil {
		handleError(w, err)
		return
	}

	t, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()), taskID)
	if err != nil {
		handleError(w, err)
		return
	}

	core.OK(w, ToTaskResponse(t))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	taskID, err := core.PathID(r, "taskID")
	if err != nil {
		handleError(w, err)
		return
	}

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
		r.Context(),
		middleware.GetUserID(r.Context()),
		taskID,
		req,
	)
	if err != nil {
		handleError(w, err)
		return
	}

	core.OK(w, ToTaskResponse(t))
}

func (h *Handler) Reparent(w http.ResponseWriter, r *http.Request) {
	taskID, err := core.PathID(r, "taskID")
	if err != nil {
		handleError(w, err)
		return
	}

	var req ReparentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	t, err := h.service.Reparent(
		r.Context(),
		middleware.GetUserID(r.Context()),
		taskID,
		req.ParentID,
	)
	if err != nil {
		handleError(w, err)
		return
	}

	core.OK(w, ToTaskResponse(t))
}

func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	tasks, err := h.service.Reorder(
		r.Context(),
		middleware.GetUserID(r.Context()),
		req.ParentID,
		req.OrderedIDs,
	)
	if err != nil {
		handleError(w, err)
		return
	}

	core.OK(w, ToTaskResponseList(tasks))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	taskID, err := core.PathID(r, "taskID")
	if err != nil {
		// a malformed id names no task, so there is nothing to delete
		core.OK(w, DeleteResponse{Deleted: 0})
		return
	}

	n, err := h.service.Delete(r.Context(), middleware.GetUserID(r.Context()), taskID)
	if err != nil {
		handleError(w, err)
		return
	}

	core.OK(w, DeleteResponse{Deleted: n})
}

func handleError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrCycle) {
		core.JSONError(w, core.ConflictError(
			"CYCLE_DETECTED",
			"a task cannot be moved under itself or one of its descendants",
		))
		return
	}
	core.HandleServiceError(w, err, "planner task")
}

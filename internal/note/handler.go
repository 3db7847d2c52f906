// AngelaMos | 2026
// handler.go

package note

import (
	"encoding/json"
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
	r.Route("/notes", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{noteID}", h.Get)
		r.Put("/{noteID}", h.Update)
		r.Delete("/{noteID}", h.Delete)
		r.Post("/{noteID}/pin", h.TogglePin)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	n, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.HandleServiceError(w, err, "note")
		return
	}

	core.Created(w, ToNoteResponse(n))
}

// List supports ?q= for a case-insensitive title/content search.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := core.ParsePage(r)

	notes, total, err := h.service.List(
		r.Context(),
		middleware.GetUserID(r.Context()),
		r.URL.Query().Get("q"),
		page,
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToNoteResponseList(notes), page.Page, page.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	noteID, err := core.PathID(r, "noteID")
	if err != nil {
		core.HandleServiceError(w, err, "note")
		return
	}

	n, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()), noteID)
	if err != nil {
		core.HandleServiceError(w, err, "note")
		return
	}

	core.OK(w, ToNoteResponse(n))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	noteID, err := core.PathID(r, "noteID")
	if err != nil {
		core.HandleServiceError(w, err, "note")
		return
	}

	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	n, err := h.service.Update(
		r.Context(),
		middleware.GetUserID(r.Context()),
		noteID,
		req,
	)
	if err != nil {
		core.HandleServiceError(w, err, "note")
		return
	}

	core.OK(w, ToNoteResponse(n))
}

func (h *Handler) TogglePin(w http.ResponseWriter, r *http.Request) {
	noteID, err := core.PathID(r, "noteID")
	if err != nil {
		core.HandleServiceError(w, err, "note")
		return
	}

	n, err := h.service.TogglePin(r.Context(), middleware.GetUserID(r.Context()), noteID)
	if err != nil {
		core.HandleServiceError(w, err, "note")
		return
	}

	core.OK(w, ToNoteResponse(n))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	noteID, err := core.PathID(r, "noteID")
	if err != nil {
		core.HandleServiceError(w, err, "note")
		return
	}

	err = h.service.Delete(r.Context(), middleware.GetUserID(r.Context()), noteID)
	if err != nil {
		core.HandleServiceError(w, err, "note")
		return
	}

	core.NoContent(w)
}

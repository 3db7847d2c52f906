// AngelaMos | 2026
// handler.go

package calendar

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/taskboard/internal/core"
	"github.com/carterperez-dev/taskboard/internal/middleware"
)

const defaultWindow = 30 * 24 * time.Hour

type Handler struct {
	service   *Service
	validator *validator.Validate
	now       func() time.Time
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		now:       time.Now,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/calendar", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/agenda", h.Agenda)
		r.Get("/events", h.ListEvents)
		r.Post("/events", h.Create)
		r.Get("/events/{eventID}", h.Get)
		r.Put("/events/{eventID}", h.Update)
		r.Delete("/events/{eventID}", h.Delete)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	ctx := r.Context()
	e, err := h.service.Create(ctx, middleware.GetUserID(ctx), middleware.IsAdmin(ctx), req)
	if err != nil {
		core.HandleServiceError(w, err, "event")
		return
	}

	core.Created(w, ToEventResponse(e))
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	events, err := h.service.ListEvents(r.Context(), middleware.GetUserID(r.Context()), from, to)
	if err != nil {
		core.HandleServiceError(w, err, "event")
		return
	}

	core.OK(w, ToEventResponseList(events))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	eventID, err := core.PathID(r, "eventID")
	if err != nil {
		core.HandleServiceError(w, err, "event")
		return
	}

	e, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()), eventID)
	if err != nil {
		core.HandleServiceError(w, err, "event")
		return
	}

	core.OK(w, ToEventResponse(e))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	eventID, err := core.PathID(r, "eventID")
	if err != nil {
		core.HandleServiceError(w, err, "event")
		return
	}

	var req UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	ctx := r.Context()
	e, err := h.service.Update(
		ctx,
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
		eventID,
		req,
	)
	if err != nil {
		core.HandleServiceError(w, err, "event")
		return
	}

	core.OK(w, ToEventResponse(e))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	eventID, err := core.PathID(r, "eventID")
	if err != nil {
		core.HandleServiceError(w, err, "event")
		return
	}

	err = h.service.Delete(r.Context(), middleware.GetUserID(r.Context()), eventID)
	if err != nil {
		core.HandleServiceError(w, err, "event")
		return
	}

	core.NoContent(w)
}

func (h *Handler) Agenda(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	items, err := h.service.Agenda(r.Context(), middleware.GetUserID(r.Context()), from, to)
	if err != nil {
		core.HandleServiceError(w, err, "agenda")
		return
	}

	core.OK(w, ToItemResponseList(items))
}

// parseRange reads RFC 3339 from/to query values. Missing values default
// to a window starting at midnight UTC today.
func (h *Handler) parseRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	q := r.URL.Query()

	from := h.now().UTC().Truncate(24 * time.Hour)
	if v := q.Get("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			core.BadRequest(w, "from must be an RFC 3339 timestamp")
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}

	to := from.Add(defaultWindow)
	if v := q.Get("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			core.BadRequest(w, "to must be an RFC 3339 timestamp")
			return time.Time{}, time.Time{}, false
		}
		to = parsed
	}

	return from, to, true
}

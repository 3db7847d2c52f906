// AngelaMos | 2026
// handler.go

package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/taskboard/internal/core"
	"github.com/carterperez-dev/taskboard/internal/middleware"
)

// SessionRevoker ends every session of a user.
type SessionRevoker interface {
	LogoutAll(ctx context.Context, userID string) error
}

type Handler struct {
	service   *Service
	sessions  SessionRevoker
	validator *validator.Validate
}

func NewHandler(service *Service, sessions SessionRevoker) *Handler {
	return &Handler{
		service:   service,
		sessions:  sessions,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the self-service account endpoints.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/users/me", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.GetMe)
		r.Put("/", h.UpdateMe)
		r.Delete("/", h.DeleteMe)
	})
}

// RegisterAdminRoutes mounts account management for administrators.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator, adminOnly)

		r.Get("/", h.ListUsers)
		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/", h.GetUser)
			r.Put("/", h.UpdateUser)
			r.Delete("/", h.DeleteUser)
			r.Put("/role", h.UpdateUserRole)
			r.Put("/quota", h.UpdateUserQuota)
			r.Post("/logout", h.ForceLogout)
		})
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.GetMe(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleError(w, err)
		return
	}
	core.OK(w, ToUserResponse(u))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !h.bind(w, r, &req) {
		return
	}

	u, err := h.service.UpdateMe(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		handleError(w, err)
		return
	}
	core.OK(w, ToUserResponse(u))
}

func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteMe(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		handleError(w, err)
		return
	}
	core.NoContent(w)
}

// ListUsers supports ?search= over email and name and ?role= filtering.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := core.ParsePage(r)
	filter := Filter{
		Search: r.URL.Query().Get("search"),
		Role:   r.URL.Query().Get("role"),
	}

	users, total, err := h.service.ListUsers(r.Context(), filter, page)
	if err != nil {
		handleError(w, err)
		return
	}

	core.Paginated(w, ToUserResponseList(users), page.Page, page.PageSize, total)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := core.PathID(r, "userID")
	if err != nil {
		handleError(w, err)
		return
	}

	u, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	core.OK(w, ToUserResponse(u))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := core.PathID(r, "userID")
	if err != nil {
		handleError(w, err)
		return
	}

	var req UpdateUserRequest
	if !h.bind(w, r, &req) {
		return
	}

	u, err := h.service.UpdateUser(r.Context(), userID, req)
	if err != nil {
		handleError(w, err)
		return
	}
	core.OK(w, ToUserResponse(u))
}

func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	userID, err := core.PathID(r, "userID")
	if err != nil {
		handleError(w, err)
		return
	}

	var req UpdateUserRoleRequest
	if !h.bind(w, r, &req) {
		return
	}

	u, err := h.service.UpdateUserRole(r.Context(), userID, req.Role)
	if err != nil {
		handleError(w, err)
		return
	}
	core.OK(w, ToUserResponse(u))
}

func (h *Handler) UpdateUserQuota(w http.ResponseWriter, r *http.Request) {
	userID, err := core.PathID(r, "userID")
	if err != nil {
		handleError(w, err)
		return
	}

	var req UpdateUserQuotaRequest
	if !h.bind(w, r, &req) {
		return
	}

	u, err := h.service.UpdateUserQuota(r.Context(), userID, req)
	if err != nil {
		handleError(w, err)
		return
	}
	core.OK(w, ToUserResponse(u))
}

// DeleteUser hard-deletes a non-admin account and everything it owns.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := core.PathID(r, "userID")
	if err != nil {
		handleError(w, err)
		return
	}
	requesterID := middleware.GetUserID(r.Context())

	if err := h.service.CanDeleteUser(r.Context(), requesterID, targetID); err != nil {
		handleError(w, err)
		return
	}
	if err := h.service.DeleteUser(r.Context(), targetID); err != nil {
		handleError(w, err)
		return
	}
	core.NoContent(w)
}

// ForceLogout revokes every session of the user and bumps the token
// version so outstanding access tokens stop verifying.
func (h *Handler) ForceLogout(w http.ResponseWriter, r *http.Request) {
	userID, err := core.PathID(r, "userID")
	if err != nil {
		handleError(w, err)
		return
	}

	if _, err := h.service.GetUser(r.Context(), userID); err != nil {
		handleError(w, err)
		return
	}
	if err := h.sessions.LogoutAll(r.Context(), userID); err != nil {
		handleError(w, err)
		return
	}
	core.NoContent(w)
}

func (h *Handler) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}
	return true
}

func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCannotDeleteSelf):
		core.JSONError(w, core.NewAppError(
			err,
			"use account deletion to remove your own account",
			http.StatusForbidden,
			"CANNOT_DELETE_SELF",
		))
	case errors.Is(err, ErrCannotDeleteAdmin):
		core.JSONError(w, core.NewAppError(
			err,
			"admin accounts must be demoted before deletion",
			http.StatusForbidden,
			"CANNOT_DELETE_ADMIN",
		))
	default:
		core.HandleServiceError(w, err, "user")
	}
}

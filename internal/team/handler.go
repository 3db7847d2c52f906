// AngelaMos | 2026
// handler.go

package team

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/taskboard/internal/core"
	"github.com/carterperez-dev/taskboard/internal/mailer"
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

		r.Get("/projects/{projectID}/members", h.ListMembers)
		r.Put("/projects/{projectID}/members/{userID}", h.UpdateMemberRole)
		r.Delete("/projects/{projectID}/members/{userID}", h.RemoveMember)
		r.Post("/projects/{projectID}/leave", h.Leave)

		r.Get("/projects/{projectID}/invitations", h.ListInvitations)
		r.Post("/projects/{projectID}/invitations", h.Invite)
		r.Delete("/projects/{projectID}/invitations/{invitationID}", h.Cancel)

		r.Get("/invitations", h.ListMine)
		r.Post("/invitations/accept", h.Accept)
		r.Post("/invitations/decline", h.Decline)
	})
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	projectID, err := core.PathID(r, "projectID")
	if err != nil {
		handleError(w, err)
		return
	}

	ctx := r.Context()

	members, err := h.service.ListMembers(
		ctx,
		projectID,
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
	)
	if err != nil {
		handleError(w, err, "project")
		return
	}

	core.OK(w, ToMemberResponseList(members))
}

func (h *Handler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	projectID, err := core.PathID(r, "projectID")
	if err != nil {
		handleError(w, err)
		return
	}
	userID, err := core.PathID(r, "userID")
	if err != nil {
		handleError(w, err)
		return
	}

	ctx := r.Context()

	var req UpdateMemberRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	err = h.service.UpdateMemberRole(
		ctx,
		projectID,
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
		userID,
		req.Role,
	)
	if err != nil {
		handleError(w, err, "member")
		return
	}

	core.NoContent(w)
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	projectID, err := core.PathID(r, "projectID")
	if err != nil {
		handleError(w, err)
		return
	}
	userID, err := core.PathID(r, "userID")
	if err != nil {
		handleError(w, err)
		return
	}

	ctx := r.Context()

	err = h.service.RemoveMember(
		ctx,
		projectID,
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
		userID,
	)
	if err != nil {
		handleError(w, err, "member")
		return
	}

	core.NoContent(w)
}

func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	projectID, err := core.PathID(r, "projectID")
	if err != nil {
		handleError(w, err)
		return
	}

	ctx := r.Context()

	if err := h.service.Leave(ctx, projectID, middleware.GetUserID(ctx)); err != nil {
		handleError(w, err, "project")
		return
	}

	core.NoContent(w)
}

func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	projectID, err := core.PathID(r, "projectID")
	if err != nil {
		handleError(w, err)
		return
	}

	ctx := r.Context()

	var req InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	inv, _, err := h.service.Invite(
		ctx,
		projectID,
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
		req,
	)
	if err != nil {
		handleError(w, err, "project")
		return
	}

	core.Created(w, ToInvitationResponse(inv))
}

func (h *Handler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	projectID, err := core.PathID(r, "projectID")
	if err != nil {
		handleError(w, err)
		return
	}

	ctx := r.Context()

	invs, err := h.service.ListInvitations(
		ctx,
		projectID,
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
	)
	if err != nil {
		handleError(w, err, "project")
		return
	}

	core.OK(w, ToInvitationResponseList(invs))
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	projectID, err := core.PathID(r, "projectID")
	if err != nil {
		handleError(w, err)
		return
	}
	invitationID, err := core.PathID(r, "invitationID")
	if err != nil {
		handleError(w, err)
		return
	}

	ctx := r.Context()

	err = h.service.Cancel(
		ctx,
		projectID,
		invitationID,
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
	)
	if err != nil {
		handleError(w, err, "invitation")
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	invs, err := h.service.ListMyInvitations(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleError(w, err, "user")
		return
	}

	core.OK(w, ToInvitationResponseList(invs))
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRespond(w, r)
	if !ok {
		return
	}

	member, err := h.service.Accept(r.Context(), req.Token, middleware.GetUserID(r.Context()))
	if err != nil {
		handleError(w, err, "invitation")
		return
	}

	core.OK(w, ToMemberResponse(member))
}

func (h *Handler) Decline(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRespond(w, r)
	if !ok {
		return
	}

	if err := h.service.Decline(r.Context(), req.Token, middleware.GetUserID(r.Context())); err != nil {
		handleError(w, err, "invitation")
		return
	}

	core.NoContent(w)
}

func (h *Handler) decodeRespond(w http.ResponseWriter, r *http.Request) (RespondRequest, bool) {
	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return req, false
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return req, false
	}

	return req, true
}

func handleError(w http.ResponseWriter, err error, resource string) {
	switch {
	case errors.Is(err, ErrInvitationExpired):
		core.JSONError(w, core.GoneError("INVITATION_EXPIRED", "invitation has expired"))
	case errors.Is(err, ErrInvitationNotPending):
		core.JSONError(w, core.ConflictError("INVITATION_NOT_PENDING", "invitation is no longer pending"))
	case errors.Is(err, ErrAlreadyMember):
		core.JSONError(w, core.ConflictError("ALREADY_MEMBER", "user is already a member of this project"))
	case errors.Is(err, ErrAlreadyInvited):
		core.JSONError(w, core.ConflictError("ALREADY_INVITED", "a pending invitation already exists for this email"))
	case errors.Is(err, ErrOwnerCannotLeave):
		core.JSONError(w, core.ConflictError("OWNER_CANNOT_LEAVE", "the project owner cannot be removed"))
	case errors.Is(err, ErrEmailMismatch):
		core.Forbidden(w, "invitation was sent to a different email")
	case errors.Is(err, mailer.ErrUnavailable):
		core.JSONError(w, core.NewAppError(err, "invitation mail could not be sent", http.StatusServiceUnavailable, "MAIL_UNAVAILABLE"))
	default:
		core.HandleServiceError(w, err, resource)
	}
}

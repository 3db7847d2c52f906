// AngelaMos | 2026
// service.go

package team

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/taskboard/internal/access"
	"github.com/carterperez-dev/taskboard/internal/activity"
	"github.com/carterperez-dev/taskboard/internal/core"
	"github.com/carterperez-dev/taskboard/internal/mailer"
	"github.com/carterperez-dev/taskboard/internal/project"
	"github.com/carterperez-dev/taskboard/internal/user"
)

var (
	ErrInvitationExpired    = errors.New("invitation expired")
	ErrInvitationNotPending = errors.New("invitation is no longer pending")
	ErrAlreadyMember        = errors.New("user is already a member")
	ErrAlreadyInvited       = errors.New("a pending invitation already exists")
	ErrEmailMismatch        = errors.New("invitation was sent to a different email")
	ErrOwnerCannotLeave     = errors.New("owner cannot leave the project")
)

const invitationTokenBytes = 32

type ProjectLookup interface {
	GetByID(ctx context.Context, id string) (*project.Project, error)
}

type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	GetQuota(ctx context.Context, userID string) (user.Quota, error)
}

type InvitationOptions struct {
	Expiry    time.Duration
	AcceptURL string
}

type Service struct {
	repo     Repository
	checker  *access.Checker
	projects ProjectLookup
	users    UserDirectory
	mailer   mailer.Mailer
	activity activity.Recorder
	opts     InvitationOptions
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(
	repo Repository,
	checker *access.Checker,
	projects ProjectLookup,
	users UserDirectory,
	mail mailer.Mailer,
	recorder activity.Recorder,
	opts InvitationOptions,
	logger *slog.Logger,
) *Service {
	if opts.Expiry <= 0 {
		opts.Expiry = 7 * 24 * time.Hour
	}

	return &Service{
		repo:     repo,
		checker:  checker,
		projects: projects,
		users:    users,
		mailer:   mail,
		activity: recorder,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// ListMembers returns the owner first, followed by accepted members in
// join order.
func (s *Service) ListMembers(
	ctx context.Context,
	projectID, userID string,
	isAdmin bool,
) ([]Member, error) {
	a, err := s.checker.Require(ctx, projectID, userID, isAdmin, access.CapView)
	if err != nil {
		return nil, err
	}

	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx, projectID)
	if err != nil {
		return nil, err
	}

	owner := Member{
		ProjectID: projectID,
		UserID:    a.OwnerID,
		Role:      access.RoleOwner,
		JoinedAt:  p.CreatedAt,
	}
	if u, err := s.users.GetUser(ctx, a.OwnerID); err == nil {
		owner.Name = u.Name
		owner.Email = u.Email
	}

	return append([]Member{owner}, members...), nil
}

func (s *Service) UpdateMemberRole(
	ctx context.Context,
	projectID, actorID string,
	isAdmin bool,
	targetID, role string,
) error {
	a, err := s.checker.Require(ctx, projectID, actorID, isAdmin, access.CapOwn)
	if err != nil {
		return err
	}

	if !access.ValidMemberRole(role) {
		return fmt.Errorf("update member role: invalid role %q: %w", role, core.ErrInvalidInput)
	}
	if targetID == a.OwnerID {
		return fmt.Errorf("update member role: owner role is fixed: %w", core.ErrInvalidInput)
	}

	if err := s.repo.UpdateMemberRole(ctx, projectID, targetID, role); err != nil {
		return err
	}

	s.activity.Record(ctx, activity.Entry{
		UserID:     actorID,
		ProjectID:  projectID,
		Action:     activity.ActionRoleChanged,
		EntityType: activity.EntityMember,
		EntityID:   targetID,
		Details:    role,
	})

	return nil
}

// RemoveMember is reserved for the project owner.
func (s *Service) RemoveMember(
	ctx context.Context,
	projectID, actorID string,
	isAdmin bool,
	targetID string,
) error {
	a, err := s.checker.Require(ctx, projectID, actorID, isAdmin, access.CapOwn)
	if err != nil {
		return err
	}

	if targetID == a.OwnerID {
		return fmt.Errorf("remove member: %w", ErrOwnerCannotLeave)
	}

	if err := s.repo.RemoveMember(ctx, projectID, targetID); err != nil {
		return err
	}

	s.activity.Record(ctx, activity.Entry{
		UserID:     actorID,
		ProjectID:  projectID,
		Action:     activity.ActionRemoved,
		EntityType: activity.EntityMember,
		EntityID:   targetID,
	})

	return nil
}

func (s *Service) Leave(ctx context.Context, projectID, userID string) error {
	a, err := s.checker.Resolve(ctx, projectID, userID, false)
	if err != nil {
		return err
	}

	if a.IsOwner() {
		return fmt.Errorf("leave project: %w", ErrOwnerCannotLeave)
	}

	if err := s.repo.RemoveMember(ctx, projectID, userID); err != nil {
		return err
	}

	s.activity.Record(ctx, activity.Entry{
		UserID:     userID,
		ProjectID:  projectID,
		Action:     activity.ActionLeft,
		EntityType: activity.EntityMember,
		EntityID:   userID,
	})

	return nil
}

// Invite creates a pending invitation and mails its token. Only the token
// hash is persisted; the returned token is the sole plaintext copy.
func (s *Service) Invite(
	ctx context.Context,
	projectID, actorID string,
	isAdmin bool,
	req InviteRequest,
) (*Invitation, string, error) {
	a, err := s.checker.Require(ctx, projectID, actorID, isAdmin, access.CapManageProject)
	if err != nil {
		return nil, "", err
	}

	email := normalizeEmail(req.Email)

	if err := s.ensureNotMember(ctx, projectID, a.OwnerID, email); err != nil {
		return nil, "", err
	}

	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, "", err
	}

	token, tokenHash, err := core.NewOpaqueToken(invitationTokenBytes)
	if err != nil {
		return nil, "", fmt.Errorf("invite: %w", err)
	}

	now := s.now()
	inv := &Invitation{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		Email:       email,
		Role:        req.Role,
		TokenHash:   tokenHash,
		Status:      InvitationPending,
		InvitedBy:   actorID,
		ExpiresAt:   now.Add(s.opts.Expiry),
		ProjectName: p.Name,
	}

	err = s.repo.InTx(ctx, func(tx Repository) error {
		if err := tx.LockProject(ctx, projectID); err != nil {
			return err
		}
		if err := s.checkMemberQuota(ctx, tx, projectID, a.OwnerID, true); err != nil {
			return err
		}
		if err := tx.CreateInvitation(ctx, inv); err != nil {
			if errors.Is(err, core.ErrDuplicateKey) {
				return fmt.Errorf("invite %s: %w", email, ErrAlreadyInvited)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	// an invitation whose mail never went out cannot be accepted
	if err := s.mailer.Send(ctx, s.invitationMessage(inv, token)); err != nil {
		if cerr := s.repo.SetInvitationStatus(ctx, inv.ID, InvitationCancelled, s.now()); cerr != nil {
			s.logger.WarnContext(ctx, "cancel unsent invitation failed",
				"invitation_id", inv.ID,
				"error", cerr,
			)
		}
		return nil, "", fmt.Errorf("send invitation: %w", err)
	}

	s.activity.Record(ctx, activity.Entry{
		UserID:     actorID,
		ProjectID:  projectID,
		Action:     activity.ActionInvited,
		EntityType: activity.EntityInvitation,
		EntityID:   inv.ID,
		Details:    email,
	})

	return inv, token, nil
}

func (s *Service) ListInvitations(
	ctx context.Context,
	projectID, actorID string,
	isAdmin bool,
) ([]Invitation, error) {
	if _, err := s.checker.Require(ctx, projectID, actorID, isAdmin, access.CapManageProject); err != nil {
		return nil, err
	}

	return s.repo.ListInvitations(ctx, projectID)
}

func (s *Service) ListMyInvitations(ctx context.Context, userID string) ([]Invitation, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.repo.ListPendingForEmail(ctx, normalizeEmail(u.Email), s.now())
}

// Accept joins the caller to the project. Expiry is evaluated here: a
// pending invitation past its deadline is marked expired and refused.
func (s *Service) Accept(ctx context.Context, token, userID string) (*Member, error) {
	inv, u, err := s.respondable(ctx, token, userID)
	if err != nil {
		return nil, err
	}

	ownerID, err := s.ownerOf(ctx, inv.ProjectID)
	if err != nil {
		return nil, err
	}
	if ownerID == u.ID {
		return nil, fmt.Errorf("accept invitation: %w", ErrAlreadyMember)
	}

	member := &Member{
		ProjectID: inv.ProjectID,
		UserID:    u.ID,
		Role:      inv.Role,
		Name:      u.Name,
		Email:     u.Email,
	}

	err = s.repo.InTx(ctx, func(tx Repository) error {
		if err := tx.LockProject(ctx, inv.ProjectID); err != nil {
			return err
		}
		if err := s.checkMemberQuota(ctx, tx, inv.ProjectID, ownerID, false); err != nil {
			return err
		}
		if err := tx.AddMember(ctx, member); err != nil {
			if errors.Is(err, core.ErrDuplicateKey) {
				return fmt.Errorf("accept invitation: %w", ErrAlreadyMember)
			}
			return err
		}
		if err := tx.SetInvitationStatus(ctx, inv.ID, InvitationAccepted, s.now()); err != nil {
			if errors.Is(err, core.ErrConflict) {
				return fmt.Errorf("accept invitation: %w", ErrInvitationNotPending)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		UserID:     u.ID,
		ProjectID:  inv.ProjectID,
		Action:     activity.ActionJoined,
		EntityType: activity.EntityMember,
		EntityID:   u.ID,
		Details:    inv.Role,
	})

	return member, nil
}

func (s *Service) Decline(ctx context.Context, token, userID string) error {
	inv, u, err := s.respondable(ctx, token, userID)
	if err != nil {
		return err
	}

	if err := s.repo.SetInvitationStatus(ctx, inv.ID, InvitationDeclined, s.now()); err != nil {
		if errors.Is(err, core.ErrConflict) {
			return fmt.Errorf("decline invitation: %w", ErrInvitationNotPending)
		}
		return err
	}

	s.activity.Record(ctx, activity.Entry{
		UserID:     u.ID,
		ProjectID:  inv.ProjectID,
		Action:     activity.ActionDeclined,
		EntityType: activity.EntityInvitation,
		EntityID:   inv.ID,
	})

	return nil
}

func (s *Service) Cancel(
	ctx context.Context,
	projectID, invitationID, actorID string,
	isAdmin bool,
) error {
	if _, err := s.checker.Require(ctx, projectID, actorID, isAdmin, access.CapManageProject); err != nil {
		return err
	}

	inv, err := s.repo.GetInvitation(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv.ProjectID != projectID {
		return fmt.Errorf("cancel invitation: %w", core.ErrNotFound)
	}
	if !inv.IsPending() {
		return fmt.Errorf("cancel invitation: %w", ErrInvitationNotPending)
	}

	if err := s.repo.SetInvitationStatus(ctx, inv.ID, InvitationCancelled, s.now()); err != nil {
		if errors.Is(err, core.ErrConflict) {
			return fmt.Errorf("cancel invitation: %w", ErrInvitationNotPending)
		}
		return err
	}

	s.activity.Record(ctx, activity.Entry{
		UserID:     actorID,
		ProjectID:  projectID,
		Action:     activity.ActionCancelled,
		EntityType: activity.EntityInvitation,
		EntityID:   inv.ID,
	})

	return nil
}

// respondable loads the invitation behind a token and checks the caller
// may still answer it.
func (s *Service) respondable(
	ctx context.Context,
	token, userID string,
) (*Invitation, *user.User, error) {
	inv, err := s.repo.GetInvitationByTokenHash(ctx, core.HashToken(token))
	if err != nil {
		return nil, nil, err
	}

	if !inv.IsPending() {
		return nil, nil, fmt.Errorf("respond to invitation: %w", ErrInvitationNotPending)
	}

	now := s.now()
	if inv.IsExpiredAt(now) {
		if err := s.repo.SetInvitationStatus(ctx, inv.ID, InvitationExpired, now); err != nil &&
			!errors.Is(err, core.ErrConflict) {
			s.logger.WarnContext(ctx, "mark invitation expired failed",
				"invitation_id", inv.ID,
				"error", err,
			)
		}
		return nil, nil, fmt.Errorf("respond to invitation: %w", ErrInvitationExpired)
	}

	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if normalizeEmail(u.Email) != inv.Email {
		return nil, nil, fmt.Errorf("respond to invitation: %w", ErrEmailMismatch)
	}

	return inv, u, nil
}

func (s *Service) ensureNotMember(ctx context.Context, projectID, ownerID, email string) error {
	invitee, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if invitee.ID == ownerID {
		return fmt.Errorf("invite %s: %w", email, ErrAlreadyMember)
	}

	_, err = s.repo.GetMemberRole(ctx, projectID, invitee.ID)
	switch {
	case err == nil:
		return fmt.Errorf("invite %s: %w", email, ErrAlreadyMember)
	case errors.Is(err, core.ErrNotFound):
		return nil
	default:
		return err
	}
}

// checkMemberQuota enforces members + outstanding invitations below the
// owner's per-project limit. A new invitation counts itself; an
// acceptance converts an invitation that is already counted. Callers hold
// the project lock in repo's transaction.
func (s *Service) checkMemberQuota(
	ctx context.Context,
	repo Repository,
	projectID, ownerID string,
	newInvitation bool,
) error {
	quota, err := s.users.GetQuota(ctx, ownerID)
	if err != nil {
		return err
	}

	members, err := repo.CountMembers(ctx, projectID)
	if err != nil {
		return err
	}

	used := members
	if newInvitation {
		pending, err := repo.CountPendingInvitations(ctx, projectID, s.now())
		if err != nil {
			return err
		}
		used += pending
	}

	if used >= quota.MaxMembersPerProject {
		return fmt.Errorf(
			"member limit of %d reached: %w",
			quota.MaxMembersPerProject,
			core.ErrQuotaExceeded,
		)
	}

	return nil
}

func (s *Service) ownerOf(ctx context.Context, projectID string) (string, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return "", err
	}
	return p.OwnerID, nil
}

func (s *Service) invitationMessage(inv *Invitation, token string) mailer.Message {
	link := token
	if s.opts.AcceptURL != "" {
		link = s.opts.AcceptURL + "?token=" + url.QueryEscape(token)
	}

	return mailer.Message{
		To:      inv.Email,
		Subject: fmt.Sprintf("You have been invited to %s", inv.ProjectName),
		Body: fmt.Sprintf(
			"You were invited to join %q as %s.\n\nAccept: %s\n\nThis invitation expires %s.",
			inv.ProjectName,
			inv.Role,
			link,
			inv.ExpiresAt.UTC().Format(time.RFC1123),
		),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

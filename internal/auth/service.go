// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/taskboard/internal/core"
	"github.com/carterperez-dev/taskboard/internal/mailer"
	"github.com/carterperez-dev/taskboard/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
	ErrEmailExists        = errors.New("email already exists")
	ErrResetTokenInvalid  = errors.New("password reset token invalid")
)

const (
	blacklistKeyPrefix = "blacklist:"
	resetKeyPrefix     = "password_reset:"
	resetTokenBytes    = 32
	sessionTokenBytes  = 32

	// expired sessions are kept this long so late refresh attempts still
	// report expiry instead of an unknown token
	expiredSessionGrace = 24 * time.Hour
)

type UserInfo struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	TokenVersion int
}

type PasswordResetOptions struct {
	Expiry   time.Duration
	ResetURL string
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(
		ctx context.Context,
		email, passwordHash, name string,
	) (*UserInfo, error)
	IncrementTokenVersion(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type Service struct {
	repo         Repository
	jwt          *JWTManager
	userProvider UserProvider
	redis        *redis.Client
	mailer       mailer.Mailer
	reset        PasswordResetOptions
	now          func() time.Time
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	userProvider UserProvider,
	redisClient *redis.Client,
	mail mailer.Mailer,
	reset PasswordResetOptions,
) *Service {
	if reset.Expiry <= 0 {
		reset.Expiry = time.Hour
	}

	return &Service{
		repo:         repo,
		jwt:          jwt,
		userProvider: userProvider,
		redis:        redisClient,
		mailer:       mail,
		reset:        reset,
		now:          time.Now,
	}
}

// VerifyAccessToken implements middleware.TokenVerifier. On top of the
// signature checks it rejects blacklisted tokens and tokens minted before
// the user's last logout-all or password change.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.ParseAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if claims.JTI != "" {
		blacklisted, err := s.IsAccessTokenBlacklisted(ctx, claims.JTI)
		if err != nil {
			return nil, err
		}
		if blacklisted {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
		}
	}

	if err := s.ValidateTokenVersion(ctx, claims.UserID, claims.TokenVersion); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
		}
		return nil, err
	}

	return claims, nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	user, err := s.userProvider.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // unknown accounts cost the same as known ones
			_, _, _ = core.CheckPassword(req.Password, "")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.userProvider.UpdatePassword(ctx, user.ID, newHash)
	}

	return s.startSession(ctx, user, userAgent, ipAddress, "")
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userProvider.Create(ctx, req.Email, passwordHash, req.Name)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.startSession(ctx, user, userAgent, ipAddress, "")
}

// Refresh rotates the session behind refreshToken. Presenting an already
// rotated token revokes its whole family.
func (s *Service) Refresh(
	ctx context.Context,
	refreshToken, userAgent, ipAddress string,
) (*AuthResponse, error) {
	session, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}

	switch session.State(s.now()) {
	case SessionRotated:
		//nolint:errcheck // the reuse error is returned either way
		_, _ = s.repo.RevokeFamily(ctx, session.FamilyID)
		return nil, ErrTokenReuse
	case SessionRevoked:
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
	case SessionExpired:
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	user, err := s.userProvider.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	resp, err := s.startSession(ctx, user, userAgent, ipAddress, session.FamilyID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Rotate(ctx, session.ID, resp.sessionID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// lost a race with a concurrent refresh of the same token
			//nolint:errcheck // the reuse error is returned either way
			_, _ = s.repo.RevokeFamily(ctx, session.FamilyID)
			return nil, ErrTokenReuse
		}
		return nil, fmt.Errorf("rotate session: %w", err)
	}

	return resp, nil
}

func (s *Service) Logout(
	ctx context.Context,
	refreshToken string,
	claims *middleware.AccessTokenClaims,
) error {
	userID := claims.UserID

	if claims.JTI != "" {
		if err := s.RevokeAccessToken(ctx, claims.JTI, claims.ExpiresAt); err != nil {
			return err
		}
	}

	if refreshToken == "" {
		return nil
	}

	session, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("logout: %w", err)
	}

	if session.UserID != userID {
		return fmt.Errorf("logout: %w", core.ErrForbidden)
	}

	if err := s.repo.Revoke(ctx, session.ID); err != nil &&
		!errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if _, err := s.repo.RevokeUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	if err := s.userProvider.IncrementTokenVersion(ctx, userID); err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	return nil
}

func (s *Service) RevokeAccessToken(
	ctx context.Context,
	jti string,
	expiresAt time.Time,
) error {
	key := blacklistKeyPrefix + jti
	ttl := time.Until(expiresAt)

	if ttl <= 0 {
		return nil
	}

	if err := s.redis.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	return nil
}

func (s *Service) IsAccessTokenBlacklisted(
	ctx context.Context,
	jti string,
) (bool, error) {
	key := blacklistKeyPrefix + jti

	exists, err := s.redis.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}

	return exists > 0, nil
}

func (s *Service) GetActiveSessions(
	ctx context.Context,
	userID string,
) ([]SessionInfo, error) {
	active, err := s.repo.ListActive(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}

	infos := make([]SessionInfo, 0, len(active))
	for i := range active {
		infos = append(infos, active[i].Info())
	}

	return infos, nil
}

func (s *Service) RevokeSession(
	ctx context.Context,
	userID, sessionID string,
) error {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("find session: %w", err)
	}

	// another user's session is reported as missing
	if session.UserID != userID {
		return fmt.Errorf("revoke session: %w", core.ErrNotFound)
	}

	if err := s.repo.Revoke(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID, currentPassword, newPassword string,
) error {
	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, _, err := core.CheckPassword(currentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userProvider.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.LogoutAll(ctx, userID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}

	return nil
}

func (s *Service) ValidateTokenVersion(
	ctx context.Context,
	userID string,
	tokenVersion int,
) error {
	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	if tokenVersion < user.TokenVersion {
		return fmt.Errorf("validate token version: %w", core.ErrTokenRevoked)
	}

	return nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}, nil
}

// startSession issues an access token and a new session for user. An empty
// familyID starts a new rotation family.
func (s *Service) startSession(
	ctx context.Context,
	user *UserInfo,
	userAgent, ipAddress, familyID string,
) (*AuthResponse, error) {
	accessToken, accessExpiry, err := s.jwt.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, refreshHash, err := core.NewOpaqueToken(sessionTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	if familyID == "" {
		familyID = uuid.New().String()
	}

	session := &Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: refreshHash,
		FamilyID:  familyID,
		ExpiresAt: s.now().Add(s.jwt.SessionTTL()),
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &AuthResponse{
		User: UserResponse{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		},
		Tokens: TokenResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    int(accessExpiry.Sub(s.now()) / time.Second),
			ExpiresAt:    accessExpiry,
		},
		sessionID: session.ID,
	}, nil
}

// ForgotPassword mails a one-time reset link. Unknown emails succeed
// silently so the endpoint cannot be used to enumerate accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userProvider.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get user: %w", err)
	}

	token, tokenHash, err := core.NewOpaqueToken(resetTokenBytes)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	key := resetKeyPrefix + tokenHash
	if err := s.redis.Set(ctx, key, user.ID, s.reset.Expiry).Err(); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	msg := mailer.Message{
		To:      user.Email,
		Subject: "Reset your password",
		Body: fmt.Sprintf(
			"Hi %s,\n\nUse the link below within %s to choose a new password:\n%s?token=%s\n",
			user.Name,
			s.reset.Expiry,
			s.reset.ResetURL,
			token,
		),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	return nil
}

func (s *Service) ResetPassword(
	ctx context.Context,
	token, newPassword string,
) error {
	key := resetKeyPrefix + core.HashToken(token)

	userID, err := s.redis.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrResetTokenInvalid
	}
	if err != nil {
		return fmt.Errorf("load reset token: %w", err)
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userProvider.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.LogoutAll(ctx, userID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}

	return nil
}

// PurgeExpiredTokens deletes sessions that expired more than
// expiredSessionGrace ago. Run periodically by the job scheduler.
func (s *Service) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredBefore(ctx, s.now().Add(-expiredSessionGrace))
}

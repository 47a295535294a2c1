package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/bizadmin/internal/auth"
	"github.com/BradenHooton/bizadmin/internal/metrics"
	"github.com/BradenHooton/bizadmin/internal/models"
	pkgauth "github.com/BradenHooton/bizadmin/pkg/auth"
	pkglogger "github.com/BradenHooton/bizadmin/pkg/logger"
	"github.com/google/uuid"
)

// ErrInvalidCredentials is returned for an unknown identifier and for a
// wrong password alike.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", models.ErrUnauthorized)

// PrincipalRepository defines the persistence used by authentication and
// principal administration
type PrincipalRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Principal, error)
	GetByIdentifier(ctx context.Context, identifier string) (*models.Principal, error)
	RecordFailedLogin(ctx context.Context, id uuid.UUID, threshold int, lockoutEnd, now time.Time) (*models.LockoutState, error)
	// RecordSuccessfulLogin resets the lockout state and stores token atomically.
	RecordSuccessfulLogin(ctx context.Context, id uuid.UUID, now time.Time, token *models.RefreshToken) error
	// UpdatePassword stores hash and, when revokeReason is set, revokes the
	// principal's refresh tokens in the same transaction.
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string, now time.Time, revokeReason string) (int64, error)
}

// RefreshTokenRepository defines the interface for refresh token persistence
type RefreshTokenRepository interface {
	GetByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	Rotate(ctx context.Context, oldID uuid.UUID, next *models.RefreshToken, now time.Time) error
	Revoke(ctx context.Context, id uuid.UUID, reason string, now time.Time) error
}

// LockoutNotifier is told when an account becomes locked.
type LockoutNotifier interface {
	NotifyLockout(ctx context.Context, p *models.Principal, until time.Time) error
}

// AuthPolicy holds the lockout and session settings
type AuthPolicy struct {
	MaxFailedAttempts              int
	LockoutDuration                time.Duration
	RefreshTokenExpiry             time.Duration
	RevokeSessionsOnPasswordChange bool
}

// PrincipalSummary is the public view of a principal
type PrincipalSummary struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
}

func NewPrincipalSummary(p *models.Principal) PrincipalSummary {
	return PrincipalSummary{
		ID:          p.ID,
		Username:    p.Username,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Role:        p.Role,
		Status:      string(p.Status),
	}
}

// Session is the result of a successful login or refresh
type Session struct {
	AccessToken           string           `json:"accessToken"`
	RefreshToken          string           `json:"refreshToken"`
	TokenType             string           `json:"tokenType"`
	ExpiresInSeconds      int64            `json:"expiresInSeconds"`
	RefreshTokenExpiresAt time.Time        `json:"refreshTokenExpiresAt"`
	Principal             PrincipalSummary `json:"principalSummary"`
}

// AuthService handles login, refresh token rotation, revocation and
// password changes
type AuthService struct {
	principals  PrincipalRepository
	tokens      RefreshTokenRepository
	tm          *auth.TokenManager
	hasher      *pkgauth.PasswordHasher
	policy      AuthPolicy
	timing      *auth.TimingDelay
	notifier    LockoutNotifier
	metrics     *metrics.Metrics
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	now         func() time.Time

	// dummyHash is compared against when the identifier is unknown so that
	// the bcrypt cost is paid on every path.
	dummyHash string
}

// NewAuthService creates a new AuthService
func NewAuthService(
	principals PrincipalRepository,
	tokens RefreshTokenRepository,
	tm *auth.TokenManager,
	hasher *pkgauth.PasswordHasher,
	policy AuthPolicy,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) (*AuthService, error) {
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &AuthService{
		principals:  principals,
		tokens:      tokens,
		tm:          tm,
		hasher:      hasher,
		policy:      policy,
		logger:      logger,
		auditLogger: auditLogger,
		now:         func() time.Time { return time.Now().UTC() },
		dummyHash:   dummy,
	}, nil
}

// SetTimingDelay pads credential failures to a uniform duration
func (s *AuthService) SetTimingDelay(td *auth.TimingDelay) { s.timing = td }

// SetLockoutNotifier enables lockout notifications
func (s *AuthService) SetLockoutNotifier(n LockoutNotifier) { s.notifier = n }

func (s *AuthService) SetMetrics(m *metrics.Metrics) { s.metrics = m }

// Login authenticates a principal by username or email
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*Session, error) {
	start := time.Now()
	identifier = strings.TrimSpace(identifier)

	if identifier == "" || password == "" {
		s.loginFailed(ctx, "", identifier, "invalid_credentials", metrics.OutcomeInvalid)
		s.timing.WaitFrom(start, false)
		return nil, ErrInvalidCredentials
	}

	p, err := s.principals.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			_ = s.hasher.Compare(s.dummyHash, password)
			s.loginFailed(ctx, "", identifier, "invalid_credentials", metrics.OutcomeInvalid)
			s.timing.WaitFrom(start, false)
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("failed to look up principal", slog.Any("error", err))
		s.metrics.LoginOutcome(metrics.OutcomeInternalFail)
		return nil, models.ErrInternalServer
	}

	now := s.now()
	if p.IsLocked(now) {
		s.loginFailed(ctx, p.ID.String(), identifier, "account_locked", metrics.OutcomeLocked)
		return nil, models.NewLockedError(*p.LockoutEnd, now)
	}

	if err := s.hasher.Compare(p.PasswordHash, password); err != nil {
		return nil, s.recordFailure(ctx, p, identifier, now, start)
	}

	if p.Status != models.StatusActive {
		s.logger.Info("login blocked due to account status",
			slog.String("principal_id", p.ID.String()),
			slog.String("status", string(p.Status)))
		s.loginFailed(ctx, p.ID.String(), identifier, "account_"+strings.ToLower(string(p.Status)), metrics.OutcomeInactive)
		return nil, &models.AccountStatusError{Status: p.Status}
	}

	session, rt, err := s.newSession(p, now)
	if err != nil {
		s.logger.Error("failed to issue session", slog.String("principal_id", p.ID.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if err := s.principals.RecordSuccessfulLogin(ctx, p.ID, now, rt); err != nil {
		s.logger.Error("failed to record successful login", slog.String("principal_id", p.ID.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.metrics.LoginOutcome(metrics.OutcomeSuccess)
	s.auditLogger.LogAuthAttempt(ctx, s.auditEvent(ctx, pkglogger.EventLogin, p.ID.String(), identifier, true, ""))
	s.timing.WaitFrom(start, true)

	return session, nil
}

// recordFailure persists a failed password attempt and reports a lockout
// when this attempt reached the threshold.
func (s *AuthService) recordFailure(ctx context.Context, p *models.Principal, identifier string, now, start time.Time) error {
	state, err := s.principals.RecordFailedLogin(ctx, p.ID, s.policy.MaxFailedAttempts, now.Add(s.policy.LockoutDuration), now)
	if err != nil {
		s.logger.Error("failed to record failed login", slog.String("principal_id", p.ID.String()), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if !state.Applied && state.LockoutEnd != nil && now.Before(*state.LockoutEnd) {
		s.loginFailed(ctx, p.ID.String(), identifier, "account_locked", metrics.OutcomeLocked)
		return models.NewLockedError(*state.LockoutEnd, now)
	}

	s.loginFailed(ctx, p.ID.String(), identifier, "invalid_credentials", metrics.OutcomeInvalid)

	if state.Applied && state.FailedAttempts >= s.policy.MaxFailedAttempts && state.LockoutEnd != nil {
		s.onLockout(ctx, p, *state.LockoutEnd, state.FailedAttempts)
	}

	s.timing.WaitFrom(start, false)
	return ErrInvalidCredentials
}

func (s *AuthService) onLockout(ctx context.Context, p *models.Principal, until time.Time, attempts int) {
	s.metrics.Lockout()
	s.logger.Warn("account locked after failed login attempts",
		slog.String("principal_id", p.ID.String()),
		slog.Int("failed_attempts", attempts),
		slog.Time("lockout_end", until))
	s.auditLogger.LogAccountAction(ctx, pkglogger.EventLockout, p.ID.String(), map[string]string{
		"lockout_end":     until.Format(time.RFC3339),
		"failed_attempts": fmt.Sprint(attempts),
	})

	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyLockout(ctx, p, until); err != nil {
		s.logger.Error("failed to send lockout notification",
			slog.String("principal_id", p.ID.String()),
			slog.Any("error", err))
	}
}

// Refresh exchanges an active refresh token for a new session. The
// presented token is revoked and replaced in the same transaction.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, models.ErrUnauthorized
	}

	rt, err := s.tokens.GetByHash(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.refreshFailed(ctx, "", "unknown_token")
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to look up refresh token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	now := s.now()
	if !rt.IsActive(now) {
		reason := "expired"
		if rt.RevokedAt != nil {
			reason = "revoked"
		}
		s.refreshFailed(ctx, rt.PrincipalID.String(), reason)
		return nil, models.ErrUnauthorized
	}

	p, err := s.principals.GetByID(ctx, rt.PrincipalID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.refreshFailed(ctx, rt.PrincipalID.String(), "principal_not_found")
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to load token owner", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if p.Status != models.StatusActive {
		s.refreshFailed(ctx, p.ID.String(), "account_"+strings.ToLower(string(p.Status)))
		return nil, &models.AccountStatusError{Status: p.Status}
	}

	session, next, err := s.newSession(p, now)
	if err != nil {
		s.logger.Error("failed to issue session", slog.String("principal_id", p.ID.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.tokens.Rotate(ctx, rt.ID, next, now); err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			s.refreshFailed(ctx, p.ID.String(), "concurrent_rotation")
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to rotate refresh token", slog.String("principal_id", p.ID.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.metrics.RefreshResult("rotated")
	s.auditLogger.LogAuthAttempt(ctx, s.auditEvent(ctx, pkglogger.EventRefresh, p.ID.String(), "", true, ""))
	return session, nil
}

// Revoke invalidates a refresh token. Revoking a revoked token succeeds.
func (s *AuthService) Revoke(ctx context.Context, refreshToken string) error {
	rt, err := s.tokens.GetByHash(ctx, auth.HashRefreshToken(strings.TrimSpace(refreshToken)))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to look up refresh token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if rt.RevokedAt == nil {
		if err := s.tokens.Revoke(ctx, rt.ID, models.RevokeReasonLogout, s.now()); err != nil {
			s.logger.Error("failed to revoke refresh token", slog.Any("error", err))
			return models.ErrInternalServer
		}
	}

	s.auditLogger.LogAuthAttempt(ctx, s.auditEvent(ctx, pkglogger.EventRevoke, rt.PrincipalID.String(), "", true, ""))
	return nil
}

// ChangePassword replaces the password of an authenticated principal after
// checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, principalID uuid.UUID, current, next string) error {
	if principalID == uuid.Nil {
		return models.ErrUnauthorized
	}
	ip := auth.RequestInfoFromContext(ctx).IPAddress

	p, err := s.principals.GetByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrUnauthorized
		}
		s.logger.Error("failed to load principal", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.hasher.Compare(p.PasswordHash, current); err != nil {
		s.auditLogger.LogPasswordChange(ctx, p.ID.String(), ip, false)
		return fmt.Errorf("%w: current password is incorrect", models.ErrUnauthorized)
	}

	if err := validateNewPassword("newPassword", next); err != nil {
		return err
	}
	if current == next {
		return models.NewValidationError("newPassword", "must differ from the current password")
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	var revokeReason string
	if s.policy.RevokeSessionsOnPasswordChange {
		revokeReason = models.RevokeReasonPasswordChanged
	}
	n, err := s.principals.UpdatePassword(ctx, p.ID, hash, s.now(), revokeReason)
	if err != nil {
		s.logger.Error("failed to update password", slog.String("principal_id", p.ID.String()), slog.Any("error", err))
		return models.ErrInternalServer
	}
	if revokeReason != "" {
		s.logger.Info("revoked sessions after password change",
			slog.String("principal_id", p.ID.String()), slog.Int64("revoked", n))
	}

	s.auditLogger.LogPasswordChange(ctx, p.ID.String(), ip, true)
	return nil
}

// newSession issues an access token and a refresh token for p. The returned
// RefreshToken holds only the hash and still has to be persisted.
func (s *AuthService) newSession(p *models.Principal, now time.Time) (*Session, *models.RefreshToken, error) {
	access, err := s.tm.GenerateAccessToken(p)
	if err != nil {
		return nil, nil, err
	}
	raw, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, nil, err
	}

	rt := &models.RefreshToken{
		ID:          uuid.New(),
		PrincipalID: p.ID,
		TokenHash:   auth.HashRefreshToken(raw),
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.policy.RefreshTokenExpiry),
	}

	return &Session{
		AccessToken:           access,
		RefreshToken:          raw,
		TokenType:             "Bearer",
		ExpiresInSeconds:      int64(s.tm.AccessTokenExpiry().Seconds()),
		RefreshTokenExpiresAt: rt.ExpiresAt,
		Principal:             NewPrincipalSummary(p),
	}, rt, nil
}

func (s *AuthService) loginFailed(ctx context.Context, principalID, identifier, reason, outcome string) {
	s.metrics.LoginOutcome(outcome)
	s.auditLogger.LogAuthAttempt(ctx, s.auditEvent(ctx, pkglogger.EventLogin, principalID, identifier, false, reason))
}

func (s *AuthService) refreshFailed(ctx context.Context, principalID, reason string) {
	s.metrics.RefreshResult(reason)
	s.auditLogger.LogAuthAttempt(ctx, s.auditEvent(ctx, pkglogger.EventRefresh, principalID, "", false, reason))
}

func (s *AuthService) auditEvent(ctx context.Context, eventType, principalID, identifier string, success bool, reason string) pkglogger.AuditEvent {
	info := auth.RequestInfoFromContext(ctx)
	return pkglogger.AuditEvent{
		EventType:     eventType,
		PrincipalID:   principalID,
		Identifier:    identifier,
		IPAddress:     info.IPAddress,
		UserAgent:     info.UserAgent,
		Success:       success,
		FailureReason: reason,
	}
}

// validateNewPassword maps password policy failures to a field error
func validateNewPassword(field, password string) error {
	err := pkgauth.ValidatePassword(password)
	if err == nil {
		return nil
	}
	var pve *pkgauth.PasswordValidationError
	if errors.As(err, &pve) {
		return &models.ValidationError{
			Message: "Password does not meet requirements",
			Fields:  map[string][]string{field: pve.Errors},
		}
	}
	return models.NewValidationError(field, err.Error())
}

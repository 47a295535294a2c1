package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/bizadmin/internal/metrics"
	"github.com/BradenHooton/bizadmin/internal/models"
	"github.com/BradenHooton/bizadmin/internal/query"
	pkgauth "github.com/BradenHooton/bizadmin/pkg/auth"
	pkglogger "github.com/BradenHooton/bizadmin/pkg/logger"
	"github.com/google/uuid"
)

// PrincipalStore is the persistence used for principal administration
type PrincipalStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Principal, error)
	GetByIdentifier(ctx context.Context, identifier string) (*models.Principal, error)
	Create(ctx context.Context, p *models.Principal) (*models.Principal, error)
	Query(ctx context.Context, plan *query.Plan[*models.Principal]) (query.PagedResult[*models.Principal], error)
	// UpdateStatus applies status and, when revokeReason is set, revokes the
	// principal's refresh tokens in the same transaction.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.PrincipalStatus, now time.Time, revokeReason string) (*models.Principal, error)
	Unlock(ctx context.Context, id uuid.UUID, now time.Time) error
}

// CreatePrincipalInput carries the fields for a new principal
type CreatePrincipalInput struct {
	Username    string
	Email       string
	DisplayName string
	Password    string
	Role        string
}

// PrincipalService manages principals on behalf of administrators
type PrincipalService struct {
	repo        PrincipalStore
	hasher      *pkgauth.PasswordHasher
	metrics     *metrics.Metrics
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	now         func() time.Time
}

func NewPrincipalService(repo PrincipalStore, hasher *pkgauth.PasswordHasher, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *PrincipalService {
	return &PrincipalService{
		repo:        repo,
		hasher:      hasher,
		logger:      logger,
		auditLogger: auditLogger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *PrincipalService) SetMetrics(m *metrics.Metrics) { s.metrics = m }

// Create validates the password policy and stores a new principal
func (s *PrincipalService) Create(ctx context.Context, in CreatePrincipalInput) (*models.Principal, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Username == "" || strings.Contains(in.Username, "@") {
		return nil, models.NewValidationError("username", "is required and may not contain '@'")
	}
	if !strings.Contains(in.Email, "@") {
		return nil, models.NewValidationError("email", "must be a valid email address")
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if in.Role != models.RoleAdmin && in.Role != models.RoleUser {
		return nil, models.NewValidationError("role", "must be one of: admin, user")
	}
	if err := validateNewPassword("password", in.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	now := s.now()
	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = in.Username
	}

	p, err := s.repo.Create(ctx, &models.Principal{
		Username:          in.Username,
		Email:             in.Email,
		DisplayName:       displayName,
		PasswordHash:      hash,
		Role:              in.Role,
		Status:            models.StatusActive,
		PasswordChangedAt: &now,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create principal", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction(ctx, pkglogger.EventPrincipalAdded, p.ID.String(), map[string]string{"role": p.Role})
	return p, nil
}

func (s *PrincipalService) Get(ctx context.Context, id uuid.UUID) (*models.Principal, error) {
	return s.repo.GetByID(ctx, id)
}

// Query runs a dynamic query over principals
func (s *PrincipalService) Query(ctx context.Context, req query.Request) (query.PagedResult[*models.Principal], error) {
	plan := models.PrincipalSchema.Plan(req)
	reportIgnored(ctx, s.logger, s.metrics, "principals", plan.Ignored())

	page, err := s.repo.Query(ctx, plan)
	if err != nil {
		s.logger.Error("failed to query principals", slog.Any("error", err))
		return query.PagedResult[*models.Principal]{}, models.ErrInternalServer
	}
	return page, nil
}

// UpdateStatus applies an administrative status change. Leaving Active
// revokes every refresh token of the principal.
func (s *PrincipalService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PrincipalStatus) (*models.Principal, error) {
	if !status.Valid() {
		return nil, models.NewValidationError("status", "must be one of: Active, Inactive, Suspended")
	}

	var revokeReason string
	if status != models.StatusActive {
		revokeReason = models.RevokeReasonStatusChanged
	}
	p, err := s.repo.UpdateStatus(ctx, id, status, s.now(), revokeReason)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update principal status", slog.String("principal_id", id.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction(ctx, pkglogger.EventStatusChange, id.String(), map[string]string{"status": string(status)})
	return p, nil
}

// Unlock clears the lockout state of a principal
func (s *PrincipalService) Unlock(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Unlock(ctx, id, s.now()); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to unlock principal", slog.String("principal_id", id.String()), slog.Any("error", err))
		return models.ErrInternalServer
	}
	s.auditLogger.LogAccountAction(ctx, pkglogger.EventUnlock, id.String(), nil)
	return nil
}

// UnlockByIdentifier unlocks the principal with the given username or email
func (s *PrincipalService) UnlockByIdentifier(ctx context.Context, identifier string) (*models.Principal, error) {
	p, err := s.repo.GetByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		return nil, err
	}
	if err := s.Unlock(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// reportIgnored logs and counts filters and sort keys a query dropped
func reportIgnored(ctx context.Context, logger *slog.Logger, m *metrics.Metrics, resource string, ignored []string) {
	if len(ignored) == 0 {
		return
	}
	logger.WarnContext(ctx, "query ignored unknown or invalid fields",
		slog.String("resource", resource),
		slog.String("ignored", strings.Join(ignored, ",")))
	m.QueryIgnored(resource, len(ignored))
}

package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/BradenHooton/bizadmin/internal/auth"
	"github.com/BradenHooton/bizadmin/internal/metrics"
	"github.com/BradenHooton/bizadmin/internal/models"
	"github.com/BradenHooton/bizadmin/internal/query"
	pkglogger "github.com/BradenHooton/bizadmin/pkg/logger"
	"github.com/google/uuid"
)

// CatalogRepository is the persistence of one catalog entity
type CatalogRepository[T any] interface {
	Query(ctx context.Context, plan *query.Plan[T]) (query.PagedResult[T], error)
	GetByID(ctx context.Context, id uuid.UUID) (T, error)
	Create(ctx context.Context, v T) (T, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// CatalogService serves query, get, create and soft delete for an audited
// catalog entity such as countries or products
type CatalogService[T any] struct {
	resource    string
	schema      *query.Schema[T]
	repo        CatalogRepository[T]
	id          func(T) uuid.UUID
	metrics     *metrics.Metrics
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewCatalogService[T any](
	resource string,
	schema *query.Schema[T],
	repo CatalogRepository[T],
	id func(T) uuid.UUID,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *CatalogService[T] {
	return &CatalogService[T]{
		resource:    resource,
		schema:      schema,
		repo:        repo,
		id:          id,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

func (s *CatalogService[T]) SetMetrics(m *metrics.Metrics) { s.metrics = m }

func (s *CatalogService[T]) Resource() string { return s.resource }

func (s *CatalogService[T]) Query(ctx context.Context, req query.Request) (query.PagedResult[T], error) {
	plan := s.schema.Plan(req)
	reportIgnored(ctx, s.logger, s.metrics, s.resource, plan.Ignored())

	page, err := s.repo.Query(ctx, plan)
	if err != nil {
		s.logger.Error("failed to query catalog", slog.String("resource", s.resource), slog.Any("error", err))
		return query.PagedResult[T]{}, models.ErrInternalServer
	}
	return page, nil
}

func (s *CatalogService[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to load catalog record", slog.String("resource", s.resource), slog.Any("error", err))
		var zero T
		return zero, models.ErrInternalServer
	}
	return v, err
}

func (s *CatalogService[T]) Create(ctx context.Context, v T) (T, error) {
	created, err := s.repo.Create(ctx, v)
	if err != nil {
		var zero T
		if errors.Is(err, models.ErrConflict) || errors.Is(err, models.ErrBadRequest) {
			return zero, err
		}
		s.logger.Error("failed to create catalog record", slog.String("resource", s.resource), slog.Any("error", err))
		return zero, models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction(ctx, pkglogger.EventRecordCreated, actorString(ctx), map[string]string{
		"resource":  s.resource,
		"record_id": s.id(created).String(),
	})
	return created, nil
}

// Delete soft-deletes the record; it disappears from every later query
func (s *CatalogService[T]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to delete catalog record", slog.String("resource", s.resource), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction(ctx, pkglogger.EventRecordDeleted, actorString(ctx), map[string]string{
		"resource":  s.resource,
		"record_id": id.String(),
	})
	return nil
}

func actorString(ctx context.Context) string {
	if id, ok := auth.ActorID(ctx); ok {
		return id.String()
	}
	return ""
}

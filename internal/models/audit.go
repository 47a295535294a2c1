package models

import (
	"time"

	"github.com/BradenHooton/bizadmin/internal/query"
	"github.com/google/uuid"
)

// AuditFields is embedded in every persisted entity.
type AuditFields struct {
	CreatedAt  time.Time
	CreatedBy  *uuid.UUID
	ModifiedAt *time.Time
	ModifiedBy *uuid.UUID
	IsDeleted  bool
}

// withAudit registers the audit columns on s and makes createdAt the
// default sort.
func withAudit[T any](s *query.Schema[T], audit func(T) AuditFields) *query.Schema[T] {
	return s.
		Time("createdAt", "created_at", func(v T) time.Time { return audit(v).CreatedAt }).
		UUIDPtr("createdBy", "created_by", func(v T) *uuid.UUID { return audit(v).CreatedBy }).
		TimePtr("modifiedAt", "modified_at", func(v T) *time.Time { return audit(v).ModifiedAt }).
		UUIDPtr("modifiedBy", "modified_by", func(v T) *uuid.UUID { return audit(v).ModifiedBy }).
		DefaultSort("createdAt")
}

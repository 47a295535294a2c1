package auth

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const (
	claimsKey ctxKey = "claims"
	actorKey  ctxKey = "actor"
)

// WithClaims stores verified access-token claims and the acting principal.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	ctx = context.WithValue(ctx, claimsKey, c)
	if id, err := uuid.Parse(c.PrincipalID); err == nil {
		ctx = WithActor(ctx, id)
	}
	return ctx
}

// ClaimsFromContext returns the claims set by AuthMiddleware, or nil.
func ClaimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey).(*Claims)
	return c
}

// WithActor records who is performing the current operation. Repositories
// read it to stamp createdBy and modifiedBy.
func WithActor(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey, id)
}

// ActorID returns the acting principal, if any.
func ActorID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(actorKey).(uuid.UUID)
	return id, ok
}

// ActorRef is ActorID as a nullable column value.
func ActorRef(ctx context.Context) *uuid.UUID {
	if id, ok := ActorID(ctx); ok {
		return &id
	}
	return nil
}

// RequestInfo describes the caller for audit records.
type RequestInfo struct {
	IPAddress string
	UserAgent string
}

const requestInfoKey ctxKey = "request_info"

func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey, info)
}

func RequestInfoFromContext(ctx context.Context) RequestInfo {
	info, _ := ctx.Value(requestInfoKey).(RequestInfo)
	return info
}

package logger

import (
	"context"
	"log/slog"
	"sort"
	"time"
)

// Audit event types
const (
	EventLogin          = "login"
	EventRefresh        = "token_refresh"
	EventRevoke         = "token_revoke"
	EventLockout        = "account_locked"
	EventPasswordChange = "password_change"
	EventStatusChange   = "status_change"
	EventUnlock         = "account_unlock"
	EventPrincipalAdded = "principal_created"
	EventRecordCreated  = "record_created"
	EventRecordDeleted  = "record_deleted"
)

// AuditEvent represents a security audit event
type AuditEvent struct {
	EventType     string
	PrincipalID   string
	Identifier    string // login identifier as typed, masked before logging
	IPAddress     string
	UserAgent     string
	Success       bool
	FailureReason string
	Metadata      map[string]string
}

// AuditLogger writes security events to the application log
type AuditLogger struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger, now: time.Now}
}

// LogAuthAttempt logs login, refresh and revoke outcomes
func (al *AuditLogger) LogAuthAttempt(ctx context.Context, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "auth"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
	}
	attrs = append(attrs, al.eventAttrs(event)...)
	al.write(ctx, event.Success, attrs)
}

// LogPasswordChange logs password change events
func (al *AuditLogger) LogPasswordChange(ctx context.Context, principalID, ipAddress string, success bool) {
	attrs := []slog.Attr{
		slog.String("audit_type", "password"),
		slog.String("event_type", EventPasswordChange),
		slog.Bool("success", success),
	}
	attrs = append(attrs, al.eventAttrs(AuditEvent{PrincipalID: principalID, IPAddress: ipAddress})...)
	al.write(ctx, success, attrs)
}

// LogAccountAction logs administrative and record-level actions
func (al *AuditLogger) LogAccountAction(ctx context.Context, eventType, principalID string, metadata map[string]string) {
	attrs := []slog.Attr{
		slog.String("audit_type", "account"),
		slog.String("event_type", eventType),
	}
	attrs = append(attrs, al.eventAttrs(AuditEvent{PrincipalID: principalID, Metadata: metadata})...)
	al.write(ctx, true, attrs)
}

func (al *AuditLogger) eventAttrs(event AuditEvent) []slog.Attr {
	attrs := []slog.Attr{slog.String("timestamp", al.now().UTC().Format(time.RFC3339))}

	if event.PrincipalID != "" {
		attrs = append(attrs, slog.String("principal_id", event.PrincipalID))
	}
	if event.Identifier != "" {
		attrs = append(attrs, slog.String("identifier", SanitizedIdentifier(event.Identifier)))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", event.UserAgent))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}

	keys := make([]string, 0, len(event.Metadata))
	for k := range event.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.String(k, event.Metadata[k]))
	}
	return attrs
}

func (al *AuditLogger) write(ctx context.Context, success bool, attrs []slog.Attr) {
	level := slog.LevelInfo
	if !success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "audit", attrs...)
}

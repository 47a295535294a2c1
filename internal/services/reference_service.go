package services

import (
	"context"
	"log/slog"

	"github.com/BradenHooton/bizadmin/internal/metrics"
	"github.com/BradenHooton/bizadmin/internal/models"
	"github.com/BradenHooton/bizadmin/internal/query"
)

// ReferenceService serves static reference lists through the in-memory
// query engine
type ReferenceService struct {
	timeZones   []models.TimeZone
	dateFormats []models.DateFormat
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewReferenceService(timeZones []models.TimeZone, dateFormats []models.DateFormat, logger *slog.Logger) *ReferenceService {
	return &ReferenceService{timeZones: timeZones, dateFormats: dateFormats, logger: logger}
}

// NewDefaultReferenceService uses the built-in time zone and date format lists
func NewDefaultReferenceService(logger *slog.Logger) *ReferenceService {
	return NewReferenceService(DefaultTimeZones, DefaultDateFormats, logger)
}

func (s *ReferenceService) SetMetrics(m *metrics.Metrics) { s.metrics = m }

func (s *ReferenceService) TimeZones(ctx context.Context, req query.Request) query.PagedResult[models.TimeZone] {
	plan := models.TimeZoneSchema.Plan(req)
	reportIgnored(ctx, s.logger, s.metrics, "time-zones", plan.Ignored())
	return query.ApplyPlan(plan, s.timeZones, identity[models.TimeZone])
}

func (s *ReferenceService) DateFormats(ctx context.Context, req query.Request) query.PagedResult[models.DateFormat] {
	plan := models.DateFormatSchema.Plan(req)
	reportIgnored(ctx, s.logger, s.metrics, "date-formats", plan.Ignored())
	return query.ApplyPlan(plan, s.dateFormats, identity[models.DateFormat])
}

func identity[T any](v T) T { return v }

var DefaultTimeZones = []models.TimeZone{
	{ID: "Pacific/Honolulu", DisplayName: "(UTC-10:00) Hawaii", OffsetMinutes: -600},
	{ID: "America/Anchorage", DisplayName: "(UTC-09:00) Alaska", OffsetMinutes: -540, ObservesDST: true},
	{ID: "America/Los_Angeles", DisplayName: "(UTC-08:00) Pacific Time (US & Canada)", OffsetMinutes: -480, ObservesDST: true},
	{ID: "America/Denver", DisplayName: "(UTC-07:00) Mountain Time (US & Canada)", OffsetMinutes: -420, ObservesDST: true},
	{ID: "America/Chicago", DisplayName: "(UTC-06:00) Central Time (US & Canada)", OffsetMinutes: -360, ObservesDST: true},
	{ID: "America/New_York", DisplayName: "(UTC-05:00) Eastern Time (US & Canada)", OffsetMinutes: -300, ObservesDST: true},
	{ID: "America/Sao_Paulo", DisplayName: "(UTC-03:00) Brasilia", OffsetMinutes: -180},
	{ID: "UTC", DisplayName: "(UTC) Coordinated Universal Time", OffsetMinutes: 0},
	{ID: "Europe/London", DisplayName: "(UTC+00:00) London, Dublin, Lisbon", OffsetMinutes: 0, ObservesDST: true},
	{ID: "Europe/Berlin", DisplayName: "(UTC+01:00) Amsterdam, Berlin, Rome, Vienna", OffsetMinutes: 60, ObservesDST: true},
	{ID: "Africa/Johannesburg", DisplayName: "(UTC+02:00) Harare, Pretoria", OffsetMinutes: 120},
	{ID: "Europe/Moscow", DisplayName: "(UTC+03:00) Moscow, St. Petersburg", OffsetMinutes: 180},
	{ID: "Asia/Dubai", DisplayName: "(UTC+04:00) Abu Dhabi, Muscat", OffsetMinutes: 240},
	{ID: "Asia/Kolkata", DisplayName: "(UTC+05:30) Chennai, Kolkata, Mumbai, New Delhi", OffsetMinutes: 330},
	{ID: "Asia/Kathmandu", DisplayName: "(UTC+05:45) Kathmandu", OffsetMinutes: 345},
	{ID: "Asia/Bangkok", DisplayName: "(UTC+07:00) Bangkok, Hanoi, Jakarta", OffsetMinutes: 420},
	{ID: "Asia/Singapore", DisplayName: "(UTC+08:00) Kuala Lumpur, Singapore", OffsetMinutes: 480},
	{ID: "Asia/Tokyo", DisplayName: "(UTC+09:00) Osaka, Sapporo, Tokyo", OffsetMinutes: 540},
	{ID: "Australia/Sydney", DisplayName: "(UTC+10:00) Canberra, Melbourne, Sydney", OffsetMinutes: 600, ObservesDST: true},
	{ID: "Pacific/Auckland", DisplayName: "(UTC+12:00) Auckland, Wellington", OffsetMinutes: 720, ObservesDST: true},
}

var DefaultDateFormats = []models.DateFormat{
	{Code: "ISO", Pattern: "yyyy-MM-dd", Example: "2024-03-09", IsDefault: true},
	{Code: "US", Pattern: "MM/dd/yyyy", Example: "03/09/2024"},
	{Code: "EU", Pattern: "dd/MM/yyyy", Example: "09/03/2024"},
	{Code: "DE", Pattern: "dd.MM.yyyy", Example: "09.03.2024"},
	{Code: "LONG", Pattern: "MMMM d, yyyy", Example: "March 9, 2024"},
	{Code: "MEDIUM", Pattern: "d MMM yyyy", Example: "9 Mar 2024"},
	{Code: "COMPACT", Pattern: "yyyyMMdd", Example: "20240309"},
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

const (
	defaultFetchLogLimit   = 20
	maxFetchLogLimit       = 50
	fetchStatsWindow       = 7 * 24 * time.Hour
	defaultCatLogPageSize  = 20
	maxCatLogPageSize      = 100
	defaultCleanupDays     = 30
	defaultAnalyticsWindow = 30
)

// LogKind selects which run logs a cleanup targets.
type LogKind string

const (
	LogKindFetch          LogKind = "fetch"
	LogKindCategorization LogKind = "categorization"
)

// LogService reads and prunes fetch and categorization run logs.
type LogService struct {
	fetchLogs ports.FetchLogRepository
	catLogs   ports.CategorizationLogRepository
	logger    *slog.Logger
	now       func() time.Time
}

// NewLogService builds the service.
func NewLogService(fetchLogs ports.FetchLogRepository, catLogs ports.CategorizationLogRepository, logger *slog.Logger) *LogService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogService{fetchLogs: fetchLogs, catLogs: catLogs, logger: logger, now: time.Now}
}

// FetchLogReport is the fetch log listing together with the weekly stats.
type FetchLogReport struct {
	Logs  []domain.FetchRunLog `json:"logs"`
	Stats domain.FetchLogStats `json:"stats"`
}

// FetchLogs lists fetch runs newest first with a limit capped at 50 and adds
// stats over the trailing seven days.
func (s *LogService) FetchLogs(ctx context.Context, filter domain.FetchLogFilter) (FetchLogReport, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultFetchLogLimit
	}
	filter.Limit = min(filter.Limit, maxFetchLogLimit)

	logs, err := s.fetchLogs.ListFetchLogs(ctx, filter)
	if err != nil {
		return FetchLogReport{}, fmt.Errorf("list fetch logs: %w", err)
	}
	if logs == nil {
		logs = []domain.FetchRunLog{}
	}
	stats, err := s.fetchLogs.FetchLogStats(ctx, s.now().Add(-fetchStatsWindow))
	if err != nil {
		return FetchLogReport{}, fmt.Errorf("fetch log stats: %w", err)
	}
	return FetchLogReport{Logs: logs, Stats: stats}, nil
}

// CategorizationLogPage is one page of categorization runs.
type CategorizationLogPage struct {
	Logs       []domain.CategorizationRunLog `json:"logs"`
	Page       int                           `json:"page"`
	Limit      int                           `json:"limit"`
	Total      int                           `json:"total"`
	TotalPages int                           `json:"totalPages"`
}

// CategorizationLogQuery selects a page of categorization runs.
type CategorizationLogQuery struct {
	Page        int
	Limit       int
	Status      domain.CategorizationRunStatus
	TriggeredBy domain.Trigger
	// Days restricts to runs started in the trailing window; zero means all.
	Days int
}

// CategorizationLogs returns one page of runs, newest first.
func (s *LogService) CategorizationLogs(ctx context.Context, q CategorizationLogQuery) (CategorizationLogPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = defaultCatLogPageSize
	}
	q.Limit = min(q.Limit, maxCatLogPageSize)

	filter := domain.CategorizationLogFilter{
		Status:      q.Status,
		TriggeredBy: q.TriggeredBy,
		Limit:       q.Limit,
		Offset:      (q.Page - 1) * q.Limit,
	}
	if q.Days > 0 {
		filter.Since = s.daysAgo(q.Days)
	}

	logs, total, err := s.catLogs.ListCategorizationLogs(ctx, filter)
	if err != nil {
		return CategorizationLogPage{}, fmt.Errorf("list categorization logs: %w", err)
	}
	if logs == nil {
		logs = []domain.CategorizationRunLog{}
	}
	return CategorizationLogPage{
		Logs:       logs,
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: (total + q.Limit - 1) / q.Limit,
	}, nil
}

// CategorizationLog returns a single run.
func (s *LogService) CategorizationLog(ctx context.Context, id string) (domain.CategorizationRunLog, error) {
	return s.catLogs.GetCategorizationLog(ctx, id)
}

// CategorizationAnalytics is the cost summary over a trailing window.
type CategorizationAnalytics struct {
	Days  int                            `json:"days"`
	Costs domain.CategorizationCostStats `json:"costs"`
	// AvgCostPerArticle is zero when nothing was categorized.
	AvgCostPerArticle float64 `json:"avgCostPerArticle"`
}

// Analytics totals categorization cost over the last days (default 30).
func (s *LogService) Analytics(ctx context.Context, days int) (CategorizationAnalytics, error) {
	if days <= 0 {
		days = defaultAnalyticsWindow
	}
	costs, err := s.catLogs.CategorizationCosts(ctx, s.daysAgo(days))
	if err != nil {
		return CategorizationAnalytics{}, fmt.Errorf("categorization costs: %w", err)
	}
	out := CategorizationAnalytics{Days: days, Costs: costs}
	if costs.TotalArticles > 0 {
		out.AvgCostPerArticle = costs.TotalCostUSD / float64(costs.TotalArticles)
	}
	return out, nil
}

// Cleanup deletes logs of kind older than days (default 30).
func (s *LogService) Cleanup(ctx context.Context, kind LogKind, days int) (int64, error) {
	if days <= 0 {
		days = defaultCleanupDays
	}
	cutoff := s.daysAgo(days)

	var (
		n   int64
		err error
	)
	switch kind {
	case LogKindFetch:
		n, err = s.fetchLogs.DeleteFetchLogsBefore(ctx, cutoff)
	case LogKindCategorization:
		n, err = s.catLogs.DeleteCategorizationLogsBefore(ctx, cutoff)
	default:
		return 0, fmt.Errorf("%w: unknown log kind %q", domain.ErrInvalid, kind)
	}
	if err != nil {
		return 0, fmt.Errorf("cleanup %s logs: %w", kind, err)
	}
	s.logger.Info("old logs deleted", "kind", kind, "older_than_days", days, "deleted", n)
	return n, nil
}

func (s *LogService) daysAgo(days int) time.Time {
	return s.now().Add(-time.Duration(days) * 24 * time.Hour)
}

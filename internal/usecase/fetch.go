package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
	"NewsDesk/internal/processor"
)

// FetchDeps wires the driven adapters into the fetch orchestrator.
type FetchDeps struct {
	Sources  ports.SourceRepository
	Logs     ports.FetchLogRepository
	Registry *processor.Registry
	Saver    *Saver
	Limits   LimitPolicy
	Recorder ports.Recorder
	Logger   *slog.Logger
}

// FetchOrchestrator runs sources through their processor and the saver,
// one source at a time, and keeps the run log current after each source.
type FetchOrchestrator struct {
	sources  ports.SourceRepository
	logs     ports.FetchLogRepository
	registry *processor.Registry
	saver    *Saver
	limits   LimitPolicy
	recorder ports.Recorder
	logger   *slog.Logger
	now      func() time.Time
	newJobID func(time.Time) string
}

// NewFetchOrchestrator constructs the orchestration component.
func NewFetchOrchestrator(deps FetchDeps) *FetchOrchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	registry := deps.Registry
	if registry == nil {
		registry = processor.NewRegistry()
	}
	return &FetchOrchestrator{
		sources:  deps.Sources,
		logs:     deps.Logs,
		registry: registry,
		saver:    deps.Saver,
		limits:   deps.Limits,
		recorder: recorderOrNop(deps.Recorder),
		logger:   logger,
		now:      time.Now,
		newJobID: newJobID,
	}
}

func newJobID(at time.Time) string {
	return fmt.Sprintf("job_%d_%s", at.UnixMilli(), uuid.NewString()[:8])
}

// fetchRun is the state of one invocation.
type fetchRun struct {
	jobID   string
	start   time.Time
	log     domain.FetchRunLog
	results []domain.FetchResult
	logger  *slog.Logger
}

// FetchAll fetches every active source. requestedMax <= 0 means the default cap.
func (o *FetchOrchestrator) FetchAll(ctx context.Context, requestedMax int) (domain.FetchJobResult, error) {
	run := o.newRun()
	maxArticles := o.limits.MaxArticles(requestedMax)
	run.logger.Info("starting bulk fetch", "max_articles", maxArticles, "requested", requestedMax,
		"default", o.limits.MaxArticles(0), "failsafe", FailsafeMaxArticles)

	sources, err := o.sources.ListSources(ctx, domain.SourceFilter{ActiveOnly: true})
	if err != nil {
		return domain.FetchJobResult{}, fmt.Errorf("list active sources: %w", err)
	}
	run.logger.Info("found active sources", "count", len(sources))

	if err := o.begin(ctx, run, domain.JobBulk, len(sources)); err != nil {
		return domain.FetchJobResult{}, err
	}
	if len(sources) == 0 {
		run.logger.Warn("no active sources found")
	}

	for _, src := range sources {
		if err := o.processSource(ctx, run, src, maxArticles); err != nil {
			return domain.FetchJobResult{}, o.abort(ctx, run, err)
		}
	}

	return o.finish(ctx, run)
}

// FetchSource fetches one source by id, even when it is inactive. A missing
// source fails with domain.ErrNotFound before any run log is written.
func (o *FetchOrchestrator) FetchSource(ctx context.Context, sourceID string, requestedMax int) (domain.FetchJobResult, error) {
	run := o.newRun()
	maxArticles := o.limits.MaxArticles(requestedMax)
	run.logger.Info("starting single source fetch", "source_id", sourceID, "max_articles", maxArticles, "requested", requestedMax)

	src, err := o.sources.GetSource(ctx, sourceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.FetchJobResult{}, fmt.Errorf("source not found: %s: %w", sourceID, domain.ErrNotFound)
		}
		return domain.FetchJobResult{}, fmt.Errorf("load source %s: %w", sourceID, err)
	}

	if err := o.begin(ctx, run, domain.JobSingle, 1); err != nil {
		return domain.FetchJobResult{}, err
	}
	if !src.IsActive {
		run.logger.Warn("source is inactive", "source", src.Name)
	}

	if err := o.processSource(ctx, run, src, maxArticles); err != nil {
		return domain.FetchJobResult{}, o.abort(ctx, run, err)
	}

	return o.finish(ctx, run)
}

func (o *FetchOrchestrator) newRun() *fetchRun {
	start := o.now()
	id := o.newJobID(start)
	return &fetchRun{
		jobID:   id,
		start:   start,
		results: []domain.FetchResult{},
		logger:  o.logger.With("job_id", id),
	}
}

func (o *FetchOrchestrator) begin(ctx context.Context, run *fetchRun, jobType domain.JobType, total int) error {
	run.log = domain.NewFetchRunLog(run.jobID, jobType, total, run.start)
	if err := o.logs.CreateFetchLog(ctx, &run.log); err != nil {
		return fmt.Errorf("create fetch log: %w", err)
	}
	run.logger.Debug("fetch log initialized", "job_type", jobType, "total_sources", total)
	return nil
}

// processSource contains every per-source failure. The returned error is
// run-level: the source status or run log could not be persisted.
func (o *FetchOrchestrator) processSource(ctx context.Context, run *fetchRun, src domain.Source, maxArticles int) error {
	started := o.now()
	log := run.logger.With("source", src.Name, "source_type", src.Type)
	log.Info("processing source", "max_articles", maxArticles)

	result := domain.FetchResult{SourceID: src.ID, SourceName: src.Name}
	saveErrors := []string{}

	feed, err := o.fetchFeed(ctx, src, maxArticles)
	if err != nil {
		result.Error = err.Error()
		log.Error("source failed", "error", err)
	} else {
		saved := o.saver.Save(ctx, feed.Articles, src.ID, src.Name, run.jobID)
		result.Success = true
		result.ArticlesFound = feed.TotalItems
		result.ArticlesProcessed = len(feed.Articles)
		result.ArticlesSaved = saved.SavedArticles
		result.SkippedDuplicates = saved.SkippedDuplicates
		saveErrors = saved.Errors
		log.Info("source processed", "found", result.ArticlesFound, "processed", result.ArticlesProcessed,
			"saved", result.ArticlesSaved, "duplicates", result.SkippedDuplicates)
	}
	result.DurationMS = o.now().Sub(started).Milliseconds()

	if err := o.sources.UpdateFetchStatus(ctx, src.ID, fetchStatusFor(result, o.now())); err != nil {
		return fmt.Errorf("update fetch status for %s: %w", src.Name, err)
	}

	sr := domain.SourceResult{
		SourceID:          src.ID,
		SourceName:        src.Name,
		Status:            domain.SourceSucceeded,
		MaxArticles:       maxArticles,
		TotalArticles:     result.ArticlesFound,
		ProcessedArticles: result.ArticlesProcessed,
		SavedArticles:     result.ArticlesSaved,
		SkippedDuplicates: result.SkippedDuplicates,
		Errors:            saveErrors,
		ExecutionTimeMS:   result.DurationMS,
	}
	if !result.Success {
		sr.Status = domain.SourceFailed
		sr.Errors = []string{result.Error}
	}
	run.log.Record(sr)
	if err := o.logs.SaveFetchLog(ctx, run.log); err != nil {
		return fmt.Errorf("update fetch log: %w", err)
	}

	run.results = append(run.results, result)
	o.recorder.SourceResult(sr.Status)
	o.recorder.ArticlesSaved(result.ArticlesSaved)
	o.recorder.DuplicatesSkipped(result.SkippedDuplicates)
	return nil
}

func (o *FetchOrchestrator) fetchFeed(ctx context.Context, src domain.Source, maxArticles int) (domain.FeedResult, error) {
	proc, err := o.registry.Resolve(src.Type)
	if err != nil {
		return domain.FeedResult{}, err
	}
	return proc.Fetch(ctx, src.Descriptor(), maxArticles)
}

func fetchStatusFor(r domain.FetchResult, at time.Time) domain.FetchStatus {
	saved := r.ArticlesSaved
	status := domain.FetchStatus{LastFetchedAt: &at, LastFetchSavedArticles: &saved}
	if r.Success {
		status.LastFetchStatus = domain.FetchOutcomeSuccess
		status.LastFetchMessage = fmt.Sprintf("Found %d articles, saved %d", r.ArticlesFound, r.ArticlesSaved)
		return status
	}
	status.LastFetchStatus = domain.FetchOutcomeError
	status.LastFetchMessage = r.Error
	status.LastFetchError = r.Error
	return status
}

func (o *FetchOrchestrator) finish(ctx context.Context, run *fetchRun) (domain.FetchJobResult, error) {
	end := o.now()
	run.log.Finalize(end)
	if err := o.logs.SaveFetchLog(ctx, run.log); err != nil {
		return domain.FetchJobResult{}, o.abort(ctx, run, fmt.Errorf("finalize fetch log: %w", err))
	}

	result := domain.NewFetchJobResult(run.jobID, run.start, end, run.results)
	o.recorder.FetchRun(run.log.JobType, run.log.Status, end.Sub(run.start))
	logJobCompletion(run.logger, run.log.JobType, run.log.Status, result)
	return result, nil
}

// abort marks the run failed, persists what it can and returns the cause.
func (o *FetchOrchestrator) abort(ctx context.Context, run *fetchRun, cause error) error {
	end := o.now()
	run.log.Fail(end, cause)
	if err := o.logs.SaveFetchLog(context.WithoutCancel(ctx), run.log); err != nil {
		run.logger.Error("failed to persist failed fetch log", "error", err)
	}
	o.recorder.FetchRun(run.log.JobType, domain.RunFailed, end.Sub(run.start))
	run.logger.Error("fetch job failed", "error", cause)
	return fmt.Errorf("fetch job %s: %w", run.jobID, cause)
}

func logJobCompletion(logger *slog.Logger, jobType domain.JobType, status domain.RunStatus, r domain.FetchJobResult) {
	rate := 0.0
	if r.TotalSources > 0 {
		rate = float64(r.SuccessfulSources) / float64(r.TotalSources) * 100
	}
	logger.Info("fetch job completed",
		"job_type", jobType,
		"status", status,
		"duration", time.Duration(r.DurationMS)*time.Millisecond,
		"sources_ok", r.SuccessfulSources,
		"sources_total", r.TotalSources,
		"success_rate", fmt.Sprintf("%.1f%%", rate),
		"articles_saved", r.TotalArticlesSaved,
		"articles_found", r.TotalArticlesFound,
		"sources_failed", r.FailedSources,
	)
	if r.TotalSources <= 1 {
		return
	}
	for i, res := range r.Results {
		attrs := []any{"n", i + 1, "source", res.SourceName, "duration", time.Duration(res.DurationMS) * time.Millisecond}
		if res.Success {
			attrs = append(attrs, "saved", res.ArticlesSaved, "found", res.ArticlesFound)
		} else {
			attrs = append(attrs, "error", strings.TrimSpace(res.Error))
		}
		logger.Info("source result", attrs...)
	}
}

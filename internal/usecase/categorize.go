package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"NewsDesk/internal/config"
	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

// ErrCategorizerDisabled is returned when no categorization service is configured.
var ErrCategorizerDisabled = errors.New("categorization service is not configured")

// CategorizeDeps wires the categorization job.
type CategorizeDeps struct {
	Articles    ports.ArticleRepository
	Logs        ports.CategorizationLogRepository
	Categorizer ports.Categorizer
	Config      config.CategorizationConfig
	Recorder    ports.Recorder
	Logger      *slog.Logger
}

// CategorizationJob labels pending articles in a single batch call.
type CategorizationJob struct {
	articles    ports.ArticleRepository
	logs        ports.CategorizationLogRepository
	categorizer ports.Categorizer
	cfg         config.CategorizationConfig
	recorder    ports.Recorder
	logger      *slog.Logger
	now         func() time.Time
}

// NewCategorizationJob constructs the job; a nil categorizer makes Run fail
// with ErrCategorizerDisabled.
func NewCategorizationJob(deps CategorizeDeps) *CategorizationJob {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg := deps.Config
	if cfg.MaxArticleCount <= 0 {
		cfg.MaxArticleCount = 50
	}
	if cfg.DefaultArticleCount <= 0 {
		cfg.DefaultArticleCount = min(10, cfg.MaxArticleCount)
	}
	return &CategorizationJob{
		articles:    deps.Articles,
		logs:        deps.Logs,
		categorizer: deps.Categorizer,
		cfg:         cfg,
		recorder:    recorderOrNop(deps.Recorder),
		logger:      logger,
		now:         time.Now,
	}
}

// ArticleCount clamps a requested count into [1, MaxArticleCount]; zero or
// negative picks the configured default.
func (j *CategorizationJob) ArticleCount(requested int) int {
	if requested <= 0 {
		return j.cfg.DefaultArticleCount
	}
	return min(requested, j.cfg.MaxArticleCount)
}

// Run categorizes up to count pending articles and returns the finalized log.
// A failed service call marks every selected article failed and is returned
// as an error alongside the persisted log.
func (j *CategorizationJob) Run(ctx context.Context, count int, trigger domain.Trigger) (domain.CategorizationRunLog, error) {
	if j.categorizer == nil {
		return domain.CategorizationRunLog{}, ErrCategorizerDisabled
	}
	limit := j.ArticleCount(count)

	runLog := domain.NewCategorizationRunLog(limit, trigger, j.categorizer.Model(), j.now())
	if err := j.logs.CreateCategorizationLog(ctx, &runLog); err != nil {
		return domain.CategorizationRunLog{}, fmt.Errorf("create categorization log: %w", err)
	}
	log := j.logger.With("run_id", runLog.ID, "trigger", trigger)
	log.Info("starting categorization", "limit", limit)

	pending, err := j.articles.ListPending(ctx, limit)
	if err != nil {
		return j.fail(ctx, runLog, fmt.Errorf("load pending articles: %w", err))
	}
	runLog.TotalArticlesAttempted = len(pending)

	if len(pending) == 0 {
		log.Info("no pending articles")
		return j.finish(ctx, runLog)
	}

	ids := make([]string, len(pending))
	items := make([]domain.CategorizationItem, len(pending))
	for i, a := range pending {
		ids[i] = a.ID
		items[i] = domain.CategorizationItem{ID: a.ID, Title: a.Title, Description: a.MetaDescription, Source: a.SourceName}
	}
	if err := j.articles.MarkCategorization(ctx, ids, domain.CategorizationProcessing); err != nil {
		return j.fail(ctx, runLog, fmt.Errorf("mark articles processing: %w", err))
	}

	batch, err := j.categorizer.Categorize(ctx, items)
	if err != nil {
		log.Error("categorization call failed", "error", err)
		runLog.ProcessingErrors = append(runLog.ProcessingErrors, err.Error())
		runLog.AddResults(j.failAll(ctx, pending, err)...)
		finished, saveErr := j.finish(ctx, runLog)
		if saveErr != nil {
			return finished, saveErr
		}
		return finished, fmt.Errorf("categorize batch: %w", err)
	}

	runLog.Usage = domain.EstimateCost(batch.Usage)
	if runLog.Usage.Model == "" {
		runLog.Usage.Model = runLog.Model
	}
	j.recorder.TokenUsage(runLog.Usage)

	byID := make(map[string]domain.CategorizedItem, len(batch.Items))
	for _, item := range batch.Items {
		byID[item.ID] = item
	}
	for _, a := range pending {
		runLog.AddResults(j.apply(ctx, a, byID))
	}

	return j.finish(ctx, runLog)
}

func (j *CategorizationJob) apply(ctx context.Context, a domain.Article, byID map[string]domain.CategorizedItem) domain.ArticleCategorizationResult {
	res := domain.ArticleCategorizationResult{ArticleID: a.ID, Title: a.Title, Status: domain.ResultFailed}

	item, ok := byID[a.ID]
	if !ok {
		return j.markFailed(ctx, a, res, "no categorization returned for article")
	}
	res.Rationale = item.Rationale
	res.Confidence = item.Confidence

	news, err := domain.ParseNewsCategory(item.NewsCategory)
	if err != nil {
		return j.markFailed(ctx, a, res, err.Error())
	}
	tech, err := domain.ParseTechCategory(item.TechCategory)
	if err != nil {
		return j.markFailed(ctx, a, res, err.Error())
	}
	res.NewsCategory, res.TechCategory = news, tech

	at := j.now()
	c := a.Categorization
	c.Status = domain.CategorizationCompleted
	c.Categories = domain.Categories{News: news, Tech: tech}
	c.Rationale = item.Rationale
	c.CategorizedAt = &at
	if err := j.articles.SaveCategorization(ctx, a.ID, c); err != nil {
		return j.markFailed(ctx, a, res, fmt.Sprintf("save categorization: %v", err))
	}

	res.Status = domain.ResultSuccess
	j.recorder.CategorizationResults(domain.ResultSuccess, 1)
	return res
}

func (j *CategorizationJob) markFailed(ctx context.Context, a domain.Article, res domain.ArticleCategorizationResult, msg string) domain.ArticleCategorizationResult {
	res.Status = domain.ResultFailed
	res.ErrorMessage = msg
	c := a.Categorization
	c.Status = domain.CategorizationFailed
	c.Rationale = "Categorization failed: " + msg
	if err := j.articles.SaveCategorization(ctx, a.ID, c); err != nil {
		j.logger.Warn("could not mark article failed", "article_id", a.ID, "error", err)
	}
	j.recorder.CategorizationResults(domain.ResultFailed, 1)
	return res
}

func (j *CategorizationJob) failAll(ctx context.Context, pending []domain.Article, cause error) []domain.ArticleCategorizationResult {
	out := make([]domain.ArticleCategorizationResult, 0, len(pending))
	for _, a := range pending {
		res := domain.ArticleCategorizationResult{ArticleID: a.ID, Title: a.Title}
		out = append(out, j.markFailed(ctx, a, res, cause.Error()))
	}
	return out
}

func (j *CategorizationJob) finish(ctx context.Context, runLog domain.CategorizationRunLog) (domain.CategorizationRunLog, error) {
	runLog.Finalize(j.now())
	if err := j.logs.SaveCategorizationLog(ctx, runLog); err != nil {
		return runLog, fmt.Errorf("save categorization log: %w", err)
	}
	j.logger.Info("categorization finished",
		"run_id", runLog.ID,
		"status", runLog.Status,
		"attempted", runLog.TotalArticlesAttempted,
		"successful", runLog.TotalArticlesSuccessful,
		"failed", runLog.TotalArticlesFailed,
		"cost_usd", fmt.Sprintf("%.6f", runLog.Usage.EstimatedCostUSD),
	)
	return runLog, nil
}

func (j *CategorizationJob) fail(ctx context.Context, runLog domain.CategorizationRunLog, cause error) (domain.CategorizationRunLog, error) {
	runLog.Fail(j.now(), cause)
	if err := j.logs.SaveCategorizationLog(context.WithoutCancel(ctx), runLog); err != nil {
		j.logger.Error("failed to persist failed categorization log", "error", err)
	}
	return runLog, cause
}

package ports

import (
	"context"
	"time"

	"NewsDesk/internal/domain"
)

// SourceRepository persists configured feeds. Name and URL are unique;
// violations surface as domain.ErrDuplicate.
type SourceRepository interface {
	CreateSource(ctx context.Context, src domain.Source) (domain.Source, error)
	GetSource(ctx context.Context, id string) (domain.Source, error)
	ListSources(ctx context.Context, filter domain.SourceFilter) ([]domain.Source, error)
	UpdateSource(ctx context.Context, src domain.Source) (domain.Source, error)
	DeleteSource(ctx context.Context, id string) error
	UpdateFetchStatus(ctx context.Context, id string, status domain.FetchStatus) error
}

// ArticleRepository persists fetched articles. Link is unique and GUID is
// unique when present.
type ArticleRepository interface {
	// ExistsByLinkOrGUID reports whether an article with the link, or with the
	// guid when non-empty, is already stored.
	ExistsByLinkOrGUID(ctx context.Context, link, guid string) (bool, error)
	InsertArticle(ctx context.Context, article domain.Article) (domain.Article, error)
	GetArticle(ctx context.Context, id string) (domain.Article, error)
	// ListArticles returns one page and the total number of matches.
	ListArticles(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, int, error)
	// ListPending returns pending articles, newest published first.
	ListPending(ctx context.Context, limit int) ([]domain.Article, error)
	MarkCategorization(ctx context.Context, ids []string, status domain.CategorizationStatus) error
	SaveCategorization(ctx context.Context, id string, c domain.Categorization) error
	// DeleteArticles removes the given ids and returns what was removed.
	DeleteArticles(ctx context.Context, ids []string) ([]domain.Article, error)
}

// FetchLogRepository persists fetch run logs.
type FetchLogRepository interface {
	CreateFetchLog(ctx context.Context, log *domain.FetchRunLog) error
	SaveFetchLog(ctx context.Context, log domain.FetchRunLog) error
	ListFetchLogs(ctx context.Context, filter domain.FetchLogFilter) ([]domain.FetchRunLog, error)
	FetchLogStats(ctx context.Context, since time.Time) (domain.FetchLogStats, error)
	DeleteFetchLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CategorizationLogRepository persists categorization run logs.
type CategorizationLogRepository interface {
	CreateCategorizationLog(ctx context.Context, log *domain.CategorizationRunLog) error
	SaveCategorizationLog(ctx context.Context, log domain.CategorizationRunLog) error
	GetCategorizationLog(ctx context.Context, id string) (domain.CategorizationRunLog, error)
	ListCategorizationLogs(ctx context.Context, filter domain.CategorizationLogFilter) ([]domain.CategorizationRunLog, int, error)
	CategorizationCosts(ctx context.Context, since time.Time) (domain.CategorizationCostStats, error)
	DeleteCategorizationLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CorrectionRepository stores reviewer overrides for analytics.
type CorrectionRepository interface {
	AddCorrection(ctx context.Context, c domain.CategoryCorrection) error
	// ListCorrections returns corrections newest first.
	ListCorrections(ctx context.Context) ([]domain.CategoryCorrection, error)
}

// Store bundles every repository behind one lifetime-scoped connection.
type Store interface {
	SourceRepository
	ArticleRepository
	FetchLogRepository
	CategorizationLogRepository
	CorrectionRepository
	Close(ctx context.Context) error
}

// FeedProcessor fetches and normalizes candidate articles for one source type.
type FeedProcessor interface {
	Type() domain.SourceType
	Fetch(ctx context.Context, src domain.FeedDescriptor, maxArticles int) (domain.FeedResult, error)
}

// Categorizer labels a batch of articles with the news and tech taxonomy.
type Categorizer interface {
	Categorize(ctx context.Context, items []domain.CategorizationItem) (domain.CategorizationBatch, error)
	Model() string
}

// SeenCache is a fast path in front of the article dedup query.
type SeenCache interface {
	Seen(ctx context.Context, link string) (bool, error)
	Remember(ctx context.Context, link string) error
	Forget(ctx context.Context, links ...string) error
}

// Recorder receives pipeline measurements.
type Recorder interface {
	FetchRun(jobType domain.JobType, status domain.RunStatus, took time.Duration)
	SourceResult(status domain.SourceStatus)
	ArticlesSaved(n int)
	DuplicatesSkipped(n int)
	CategorizationResults(status domain.ResultStatus, n int)
	TokenUsage(usage domain.OpenAIUsage)
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

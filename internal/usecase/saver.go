package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

// SaveResult reports what happened to a batch of candidates.
type SaveResult struct {
	TotalArticles     int
	SavedArticles     int
	SkippedDuplicates int
	Errors            []string
}

// Saver deduplicates candidates against stored articles and inserts new ones
// as pending. It takes no locks; the unique index on link is the backstop.
type Saver struct {
	articles ports.ArticleRepository
	cache    ports.SeenCache
	logger   *slog.Logger
	now      func() time.Time
}

// NewSaver wires the article repository; cache may be nil.
func NewSaver(articles ports.ArticleRepository, cache ports.SeenCache, logger *slog.Logger) *Saver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Saver{articles: articles, cache: cache, logger: logger, now: time.Now}
}

// Save processes every candidate independently; a failure on one is
// recorded in Errors and never stops the rest.
func (s *Saver) Save(ctx context.Context, candidates []domain.CandidateArticle, sourceID, sourceName, jobID string) SaveResult {
	res := SaveResult{TotalArticles: len(candidates), Errors: []string{}}
	log := s.logger.With("job_id", jobID, "source_id", sourceID)

	for _, c := range candidates {
		if s.seen(ctx, log, c.Link) {
			res.SkippedDuplicates++
			continue
		}

		exists, err := s.articles.ExistsByLinkOrGUID(ctx, c.Link, c.GUID)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("failed to check %q: %v", c.Title, err))
			log.Warn("duplicate check failed", "title", c.Title, "error", err)
			continue
		}
		if exists {
			res.SkippedDuplicates++
			s.remember(ctx, log, c.Link)
			continue
		}

		if _, err := s.articles.InsertArticle(ctx, domain.NewPendingArticle(c, sourceName, s.now())); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("failed to save %q: %v", c.Title, err))
			log.Warn("insert article failed", "title", c.Title, "error", err)
			continue
		}
		res.SavedArticles++
		s.remember(ctx, log, c.Link)
	}

	log.Debug("save complete", "source", sourceName, "total", res.TotalArticles, "saved", res.SavedArticles, "duplicates", res.SkippedDuplicates, "errors", len(res.Errors))
	return res
}

func (s *Saver) seen(ctx context.Context, log *slog.Logger, link string) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Seen(ctx, link)
	if err != nil {
		log.Debug("seen cache lookup failed", "error", err)
		return false
	}
	return ok
}

func (s *Saver) remember(ctx context.Context, log *slog.Logger, link string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Remember(ctx, link); err != nil {
		log.Debug("seen cache write failed", "error", err)
	}
}

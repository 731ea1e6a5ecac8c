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
	defaultArticlePageSize = 50
	maxArticlePageSize     = 200
)

// ReviewDeps wires the article review service.
type ReviewDeps struct {
	Articles    ports.ArticleRepository
	Corrections ports.CorrectionRepository
	Cache       ports.SeenCache
	Logger      *slog.Logger
}

// ReviewService lets editors browse, relabel and delete stored articles.
type ReviewService struct {
	articles    ports.ArticleRepository
	corrections ports.CorrectionRepository
	cache       ports.SeenCache
	logger      *slog.Logger
	now         func() time.Time
}

// NewReviewService builds the service; the cache may be nil.
func NewReviewService(deps ReviewDeps) *ReviewService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ReviewService{
		articles:    deps.Articles,
		corrections: deps.Corrections,
		cache:       deps.Cache,
		logger:      logger,
		now:         time.Now,
	}
}

// ArticlePage is one page of an article listing.
type ArticlePage struct {
	Articles []domain.Article `json:"articles"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// List returns articles matching filter. The limit defaults to 50 and is
// capped at 200.
func (s *ReviewService) List(ctx context.Context, filter domain.ArticleFilter) (ArticlePage, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultArticlePageSize
	}
	filter.Limit = min(filter.Limit, maxArticlePageSize)
	filter.Offset = max(filter.Offset, 0)

	articles, total, err := s.articles.ListArticles(ctx, filter)
	if err != nil {
		return ArticlePage{}, fmt.Errorf("list articles: %w", err)
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	return ArticlePage{Articles: articles, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// ReviewInput is the raw categorization update sent by a reviewer.
type ReviewInput struct {
	NewsCategory   *string `json:"newsCategory,omitempty"`
	TechCategory   *string `json:"techCategory,omitempty"`
	Rationale      *string `json:"rationale,omitempty"`
	IsTrainingData *bool   `json:"isTrainingData,omitempty"`
}

func (in ReviewInput) patch() (domain.CategorizationPatch, error) {
	var p domain.CategorizationPatch
	if in.NewsCategory != nil {
		c, err := domain.ParseNewsCategory(*in.NewsCategory)
		if err != nil {
			return p, err
		}
		p.NewsCategory = &c
	}
	if in.TechCategory != nil {
		c, err := domain.ParseTechCategory(*in.TechCategory)
		if err != nil {
			return p, err
		}
		p.TechCategory = &c
	}
	p.Rationale = in.Rationale
	p.IsTrainingData = in.IsTrainingData
	return p, nil
}

// Update applies a reviewer's labels to the article. Overriding a completed
// AI categorization appends a correction record.
func (s *ReviewService) Update(ctx context.Context, id string, in ReviewInput) (domain.Article, error) {
	patch, err := in.patch()
	if err != nil {
		return domain.Article{}, err
	}
	article, err := s.articles.GetArticle(ctx, id)
	if err != nil {
		return domain.Article{}, err
	}

	now := s.now()
	before := article.Categorization
	after := before
	patch.Apply(&after, now)

	if err := s.articles.SaveCategorization(ctx, id, after); err != nil {
		return domain.Article{}, fmt.Errorf("save categorization: %w", err)
	}
	article.Categorization = after

	if correction, ok := domain.CorrectionFor(article, before, after, now); ok && s.corrections != nil {
		if err := s.corrections.AddCorrection(ctx, correction); err != nil {
			s.logger.Warn("could not record correction", "article_id", id, "error", err)
		} else {
			s.logger.Info("correction recorded", "article_id", id,
				"ai_news", correction.AICategories.News, "human_news", correction.HumanCategories.News,
				"ai_tech", correction.AICategories.Tech, "human_tech", correction.HumanCategories.Tech)
		}
	}
	return article, nil
}

// Delete removes one article.
func (s *ReviewService) Delete(ctx context.Context, id string) error {
	deleted, err := s.articles.DeleteArticles(ctx, []string{id})
	if err != nil {
		return err
	}
	if len(deleted) == 0 {
		return fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
	}
	s.forget(ctx, deleted)
	return nil
}

// BulkDelete removes every listed article and reports how many existed.
func (s *ReviewService) BulkDelete(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: ids must be a non-empty array", domain.ErrInvalid)
	}
	deleted, err := s.articles.DeleteArticles(ctx, ids)
	if err != nil {
		return 0, err
	}
	s.forget(ctx, deleted)
	s.logger.Info("articles deleted", "requested", len(ids), "deleted", len(deleted))
	return len(deleted), nil
}

func (s *ReviewService) forget(ctx context.Context, deleted []domain.Article) {
	if s.cache == nil || len(deleted) == 0 {
		return
	}
	links := make([]string, 0, len(deleted))
	for _, a := range deleted {
		links = append(links, a.Link)
	}
	if err := s.cache.Forget(ctx, links...); err != nil {
		s.logger.Warn("seen cache eviction failed", "error", err)
	}
}

// CorrectionsAnalysis summarizes every recorded correction. Without a
// correction store the analysis is empty.
func (s *ReviewService) CorrectionsAnalysis(ctx context.Context) (domain.CorrectionAnalysis, error) {
	if s.corrections == nil {
		return domain.AnalyzeCorrections(nil), nil
	}
	corrections, err := s.corrections.ListCorrections(ctx)
	if err != nil {
		return domain.CorrectionAnalysis{}, fmt.Errorf("list corrections: %w", err)
	}
	return domain.AnalyzeCorrections(corrections), nil
}

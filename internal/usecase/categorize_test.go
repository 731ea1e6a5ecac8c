package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"NewsDesk/internal/config"
	"NewsDesk/internal/domain"
	"NewsDesk/internal/infrastructure/storage/memory"
)

type stubCategorizer struct {
	reply func(items []domain.CategorizationItem) (domain.CategorizationBatch, error)
	seen  []domain.CategorizationItem
}

func (s *stubCategorizer) Model() string { return "gpt-4o-mini" }

func (s *stubCategorizer) Categorize(_ context.Context, items []domain.CategorizationItem) (domain.CategorizationBatch, error) {
	s.seen = items
	return s.reply(items)
}

func seedPending(t *testing.T, store *memory.Store, n int) []domain.Article {
	t.Helper()
	out := make([]domain.Article, 0, n)
	base := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	for i := range n {
		published := base.Add(time.Duration(i) * time.Hour)
		a, err := store.InsertArticle(context.Background(), domain.Article{
			Title:          fmt.Sprintf("Article %d", i),
			Link:           fmt.Sprintf("https://p/%d", i),
			SourceName:     "src",
			PublishedDate:  &published,
			Categorization: domain.Categorization{Status: domain.CategorizationPending},
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		out = append(out, a)
	}
	return out
}

func TestCategorizationJobRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New()
	seedPending(t, store, 3)

	cat := &stubCategorizer{reply: func(items []domain.CategorizationItem) (domain.CategorizationBatch, error) {
		var out []domain.CategorizedItem
		for i, it := range items {
			switch i {
			case 0:
				out = append(out, domain.CategorizedItem{ID: it.ID, NewsCategory: "Solid News", TechCategory: "Developer Tools", Rationale: "tooling", Confidence: 90})
			case 1:
				out = append(out, domain.CategorizedItem{ID: it.ID, NewsCategory: "Breaking", TechCategory: "Developer Tools"})
			}
		}
		return domain.CategorizationBatch{Items: out, Usage: domain.TokenUsage{PromptTokens: 1000, CompletionTokens: 200, TotalTokens: 1200, Model: "gpt-4o-mini"}}, nil
	}}

	job := NewCategorizationJob(CategorizeDeps{Articles: store, Logs: store, Categorizer: cat, Config: config.CategorizationConfig{MaxArticleCount: 2}})
	runLog, err := job.Run(ctx, 10, domain.TriggerAPI)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(cat.seen) != 2 {
		t.Fatalf("count must be clamped to 2, sent %d", len(cat.seen))
	}
	if cat.seen[0].Title != "Article 2" {
		t.Fatalf("expected newest published first, got %q", cat.seen[0].Title)
	}
	if runLog.Status != domain.CatRunCompletedWithErrors || runLog.TotalArticlesSuccessful != 1 || runLog.TotalArticlesFailed != 1 {
		t.Fatalf("unexpected run log: %+v", runLog)
	}
	if runLog.NewsCategoryDistribution[domain.NewsSolid] != 1 {
		t.Fatalf("unexpected distribution: %v", runLog.NewsCategoryDistribution)
	}
	if runLog.Usage.EstimatedCostUSD <= 0 || runLog.Usage.TotalTokens != 1200 {
		t.Fatalf("unexpected usage: %+v", runLog.Usage)
	}

	ok, _ := store.GetArticle(ctx, cat.seen[0].ID)
	if ok.Categorization.Status != domain.CategorizationCompleted || ok.Categorization.Categories.Tech != domain.TechDevTools || ok.Categorization.CategorizedAt == nil {
		t.Fatalf("unexpected categorized article: %+v", ok.Categorization)
	}
	bad, _ := store.GetArticle(ctx, cat.seen[1].ID)
	if bad.Categorization.Status != domain.CategorizationFailed {
		t.Fatalf("invalid label must fail the article, got %s", bad.Categorization.Status)
	}

	stored, err := store.GetCategorizationLog(ctx, runLog.ID)
	if err != nil || stored.Status != runLog.Status || stored.TriggeredBy != domain.TriggerAPI {
		t.Fatalf("run log not persisted: %+v (%v)", stored, err)
	}
}

func TestCategorizationJobBatchFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New()
	seeded := seedPending(t, store, 2)

	cat := &stubCategorizer{reply: func([]domain.CategorizationItem) (domain.CategorizationBatch, error) {
		return domain.CategorizationBatch{}, errors.New("rate limited")
	}}
	job := NewCategorizationJob(CategorizeDeps{Articles: store, Logs: store, Categorizer: cat})

	runLog, err := job.Run(ctx, 5, domain.TriggerManual)
	if err == nil {
		t.Fatalf("expected batch error")
	}
	if runLog.Status != domain.CatRunFailed || runLog.TotalArticlesFailed != 2 {
		t.Fatalf("unexpected run log: %+v", runLog)
	}
	for _, a := range seeded {
		got, _ := store.GetArticle(ctx, a.ID)
		if got.Categorization.Status != domain.CategorizationFailed || got.Categorization.Rationale == "" {
			t.Fatalf("article left in %s with rationale %q", got.Categorization.Status, got.Categorization.Rationale)
		}
	}
}

func TestCategorizationJobNothingPending(t *testing.T) {
	t.Parallel()

	store := memory.New()
	cat := &stubCategorizer{reply: func([]domain.CategorizationItem) (domain.CategorizationBatch, error) {
		t.Fatalf("service must not be called without pending articles")
		return domain.CategorizationBatch{}, nil
	}}
	job := NewCategorizationJob(CategorizeDeps{Articles: store, Logs: store, Categorizer: cat})

	runLog, err := job.Run(context.Background(), 0, domain.TriggerScheduled)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if runLog.Status != domain.CatRunCompleted || runLog.TotalArticlesAttempted != 0 {
		t.Fatalf("unexpected run log: %+v", runLog)
	}
	if runLog.ArticleLimit != 10 {
		t.Fatalf("expected default limit 10, got %d", runLog.ArticleLimit)
	}
}

func TestCategorizationJobDisabled(t *testing.T) {
	t.Parallel()

	store := memory.New()
	job := NewCategorizationJob(CategorizeDeps{Articles: store, Logs: store})
	if _, err := job.Run(context.Background(), 1, domain.TriggerAPI); !errors.Is(err, ErrCategorizerDisabled) {
		t.Fatalf("expected ErrCategorizerDisabled, got %v", err)
	}
}

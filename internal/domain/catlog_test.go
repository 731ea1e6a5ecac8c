package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCategorizationRunLogFinalize(t *testing.T) {
	t.Parallel()

	start := time.Now()
	cases := []struct {
		name    string
		results []ArticleCategorizationResult
		want    CategorizationRunStatus
	}{
		{"nothing pending", nil, CatRunCompleted},
		{"all ok", []ArticleCategorizationResult{{Status: ResultSuccess, NewsCategory: NewsSolid, TechCategory: TechDevTools}}, CatRunCompleted},
		{"mixed", []ArticleCategorizationResult{{Status: ResultSuccess, NewsCategory: NewsSolid}, {Status: ResultFailed}}, CatRunCompletedWithErrors},
		{"all failed", []ArticleCategorizationResult{{Status: ResultFailed}}, CatRunFailed},
	}

	for _, tc := range cases {
		log := NewCategorizationRunLog(10, TriggerManual, "gpt-4o-mini", start)
		log.TotalArticlesAttempted = len(tc.results)
		log.AddResults(tc.results...)
		log.Finalize(start.Add(time.Second))
		if log.Status != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, log.Status)
		}
	}
}

func TestCategorizationRunLogDistributions(t *testing.T) {
	t.Parallel()

	log := NewCategorizationRunLog(3, TriggerAPI, "gpt-4o-mini", time.Now())
	log.TotalArticlesAttempted = 3
	log.AddResults(
		ArticleCategorizationResult{Status: ResultSuccess, NewsCategory: NewsSolid, TechCategory: TechDevTools},
		ArticleCategorizationResult{Status: ResultSuccess, NewsCategory: NewsSolid, TechCategory: TechResearch},
		ArticleCategorizationResult{Status: ResultFailed, NewsCategory: NewsTopStory},
	)
	log.Finalize(time.Now())

	if log.NewsCategoryDistribution[NewsSolid] != 2 {
		t.Fatalf("expected 2 solid news, got %d", log.NewsCategoryDistribution[NewsSolid])
	}
	if log.NewsCategoryDistribution[NewsTopStory] != 0 {
		t.Fatalf("failed results must not be tallied")
	}
	if len(log.TechCategoryDistribution) != len(TechCategories) {
		t.Fatalf("expected every tech label seeded, got %v", log.TechCategoryDistribution)
	}
}

func TestParseCategories(t *testing.T) {
	t.Parallel()

	if _, err := ParseNewsCategory("Solid News"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseTechCategory("Quantum"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

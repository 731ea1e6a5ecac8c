package domain

import (
	"testing"
	"time"
)

func TestCorrectionFor(t *testing.T) {
	t.Parallel()

	now := time.Now()
	art := Article{Title: "GPT-5 launches", SourceName: "OpenAI Blog", MetaDescription: "..."}
	before := Categorization{
		Status:     CategorizationCompleted,
		Categories: Categories{News: NewsSolid, Tech: TechProducts},
		Rationale:  "model launch",
	}

	after := before
	after.Categories.News = NewsTopStory
	corr, ok := CorrectionFor(art, before, after, now)
	if !ok {
		t.Fatalf("expected a correction")
	}
	if corr.AICategories.News != string(NewsSolid) || corr.HumanCategories.News != string(NewsTopStory) {
		t.Fatalf("unexpected correction: %+v", corr)
	}
	if corr.Source != "OpenAI Blog" || !corr.CorrectedAt.Equal(now) {
		t.Fatalf("unexpected correction metadata: %+v", corr)
	}

	if _, ok := CorrectionFor(art, before, before, now); ok {
		t.Fatalf("unchanged categories must not produce a correction")
	}

	pending := Categorization{Status: CategorizationPending}
	if _, ok := CorrectionFor(art, pending, after, now); ok {
		t.Fatalf("a first categorization must not produce a correction")
	}
}

func TestAnalyzeCorrections(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	corrections := []CategoryCorrection{
		{Source: "a", CorrectedAt: base.Add(3 * time.Hour), AICategories: AICategories{News: "Solid News", Tech: "Developer Tools"}, HumanCategories: HumanCategories{News: "Top Story Candidate", Tech: "Developer Tools"}},
		{Source: "a", CorrectedAt: base.Add(2 * time.Hour), AICategories: AICategories{News: "Solid News", Tech: "Industry Trends"}, HumanCategories: HumanCategories{News: "Top Story Candidate", Tech: "Products and Updates"}},
		{Source: "b", CorrectedAt: base.Add(time.Hour), AICategories: AICategories{News: "Not Relevant", Tech: "Not Relevant"}, HumanCategories: HumanCategories{News: "Not Relevant", Tech: "Developer Tools"}},
	}

	got := AnalyzeCorrections(corrections)
	if got.TotalCorrections != 3 {
		t.Fatalf("expected 3 corrections, got %d", got.TotalCorrections)
	}
	if got.LastCorrectionDate == nil || !got.LastCorrectionDate.Equal(base.Add(3*time.Hour)) {
		t.Fatalf("unexpected last correction date: %v", got.LastCorrectionDate)
	}
	if len(got.TopPatterns) != 3 {
		t.Fatalf("expected 3 patterns, got %v", got.TopPatterns)
	}
	if got.TopPatterns[0].Pattern != "News: Solid News → Top Story Candidate" || got.TopPatterns[0].Count != 2 {
		t.Fatalf("unexpected top pattern: %+v", got.TopPatterns[0])
	}
	a := got.SourceBreakdown["a"]
	if a.TotalCorrections != 2 || a.NewsCorrections != 2 || a.TechCorrections != 1 {
		t.Fatalf("unexpected breakdown for a: %+v", a)
	}
}

package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"NewsDesk/internal/domain"
)

func TestRecorderCounts(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.FetchRun(domain.JobBulk, domain.RunPartial, 3*time.Second)
	r.SourceResult(domain.SourceSucceeded)
	r.SourceResult(domain.SourceFailed)
	r.SourceResult(domain.SourceFailed)
	r.ArticlesSaved(3)
	r.ArticlesSaved(0)
	r.DuplicatesSkipped(1)
	r.CategorizationResults(domain.ResultSuccess, 4)
	r.TokenUsage(domain.OpenAIUsage{TokenUsage: domain.TokenUsage{PromptTokens: 100, CompletionTokens: 20, Model: "gpt-4o-mini"}, EstimatedCostUSD: 0.25})

	if got := testutil.ToFloat64(r.fetchRuns.WithLabelValues("bulk", "partial")); got != 1 {
		t.Fatalf("fetch runs = %v", got)
	}
	if got := testutil.ToFloat64(r.sourceResults.WithLabelValues("failed")); got != 2 {
		t.Fatalf("failed sources = %v", got)
	}
	if got := testutil.ToFloat64(r.articlesSaved); got != 3 {
		t.Fatalf("articles saved = %v", got)
	}
	if got := testutil.ToFloat64(r.tokens.WithLabelValues("gpt-4o-mini", "prompt")); got != 100 {
		t.Fatalf("prompt tokens = %v", got)
	}
	if got := testutil.ToFloat64(r.estimatedCostUSD.WithLabelValues("gpt-4o-mini")); got != 0.25 {
		t.Fatalf("cost = %v", got)
	}
}

func TestRecorderHandlerExposesMetrics(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.DuplicatesSkipped(2)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "newsdesk_fetch_duplicates_skipped_total 2") {
		t.Fatalf("metrics output missing counter:\n%s", body)
	}
}

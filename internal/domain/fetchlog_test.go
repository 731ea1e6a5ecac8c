package domain

import (
	"errors"
	"testing"
	"time"
)

func TestDeriveRunStatus(t *testing.T) {
	t.Parallel()

	ok := SourceResult{Status: SourceSucceeded}
	bad := SourceResult{Status: SourceFailed, Errors: []string{"boom"}}

	cases := []struct {
		name    string
		results []SourceResult
		want    RunStatus
	}{
		{"no sources", nil, RunCompleted},
		{"all ok", []SourceResult{ok, ok}, RunCompleted},
		{"all failed", []SourceResult{bad, bad}, RunFailed},
		{"mixed", []SourceResult{ok, bad}, RunPartial},
	}

	for _, tc := range cases {
		if got := DeriveRunStatus(tc.results); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestFetchRunLogRecordKeepsSummaryInSync(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	log := NewFetchRunLog("job_1", JobBulk, 3, start)

	log.Record(SourceResult{SourceName: "a", Status: SourceSucceeded, ProcessedArticles: 4, SavedArticles: 3, SkippedDuplicates: 1})
	log.Record(SourceResult{SourceName: "b", Status: SourceFailed, Errors: []string{"dial tcp: refused"}})
	log.Record(SourceResult{SourceName: "c", Status: SourceSucceeded, ProcessedArticles: 2, SavedArticles: 1, SkippedDuplicates: 0, Errors: []string{"insert x: duplicate"}})

	log.Finalize(start.Add(1500 * time.Millisecond))

	var saved int
	for _, r := range log.SourceResults {
		saved += r.SavedArticles
	}
	if log.Summary.TotalArticlesSaved != saved || saved != 4 {
		t.Fatalf("summary saved %d does not match results %d", log.Summary.TotalArticlesSaved, saved)
	}
	if log.Summary.TotalArticlesProcessed != 6 {
		t.Fatalf("expected 6 processed, got %d", log.Summary.TotalArticlesProcessed)
	}
	if log.Summary.TotalDuplicatesSkipped != 1 {
		t.Fatalf("expected 1 duplicate, got %d", log.Summary.TotalDuplicatesSkipped)
	}
	if log.Summary.TotalErrors != 2 {
		t.Fatalf("expected 2 errors, got %d", log.Summary.TotalErrors)
	}
	if log.Summary.ExecutionTimeMS != 1500 {
		t.Fatalf("expected 1500ms, got %d", log.Summary.ExecutionTimeMS)
	}
	if log.Status != RunPartial {
		t.Fatalf("expected partial, got %s", log.Status)
	}
	if len(log.JobErrors) != 1 || log.JobErrors[0] != "b: dial tcp: refused" {
		t.Fatalf("unexpected job errors: %v", log.JobErrors)
	}
}

func TestFetchRunLogFail(t *testing.T) {
	t.Parallel()

	start := time.Now()
	log := NewFetchRunLog("job_2", JobSingle, 1, start)
	log.Record(SourceResult{SourceName: "a", Status: SourceSucceeded})
	log.Fail(start.Add(time.Second), errors.New("db down"))

	if log.Status != RunFailed {
		t.Fatalf("expected failed, got %s", log.Status)
	}
	if log.EndTime == nil {
		t.Fatalf("expected end time")
	}
	if got := log.JobErrors[len(log.JobErrors)-1]; got != "db down" {
		t.Fatalf("unexpected last job error %q", got)
	}
}

func TestNewFetchJobResult(t *testing.T) {
	t.Parallel()

	start := time.Unix(0, 0)
	res := NewFetchJobResult("job", start, start.Add(2*time.Second), []FetchResult{
		{Success: true, ArticlesFound: 4, ArticlesSaved: 3},
		{Success: false, Error: "boom"},
	})

	if res.TotalSources != 2 || res.SuccessfulSources != 1 || res.FailedSources != 1 {
		t.Fatalf("unexpected source counts: %+v", res)
	}
	if res.TotalArticlesFound != 4 || res.TotalArticlesSaved != 3 {
		t.Fatalf("unexpected article counts: %+v", res)
	}
	if res.DurationMS != 2000 {
		t.Fatalf("expected 2000ms, got %d", res.DurationMS)
	}
	if empty := NewFetchJobResult("job", start, start, nil); empty.Results == nil {
		t.Fatalf("expected empty results slice, got nil")
	}
}

func TestComputeFetchLogStats(t *testing.T) {
	t.Parallel()

	logs := []FetchRunLog{
		{Status: RunCompleted, Summary: FetchSummary{TotalArticlesSaved: 5, TotalDuplicatesSkipped: 1, ExecutionTimeMS: 100}},
		{Status: RunPartial, Summary: FetchSummary{TotalArticlesSaved: 2, ExecutionTimeMS: 300}},
		{Status: RunFailed, Summary: FetchSummary{ExecutionTimeMS: 200}},
		{Status: RunCompleted, Summary: FetchSummary{TotalArticlesSaved: 1, ExecutionTimeMS: 200}},
	}

	st := ComputeFetchLogStats(logs)
	if st.TotalJobs != 4 || st.SuccessfulJobs != 2 || st.FailedJobs != 1 || st.PartialJobs != 1 {
		t.Fatalf("unexpected job counts: %+v", st)
	}
	if st.TotalArticlesSaved != 8 || st.TotalDuplicatesSkipped != 1 {
		t.Fatalf("unexpected article totals: %+v", st)
	}
	if st.AvgExecutionTimeMS != 200 {
		t.Fatalf("expected avg 200, got %v", st.AvgExecutionTimeMS)
	}
	if st.SuccessRate != 50 {
		t.Fatalf("expected success rate 50, got %v", st.SuccessRate)
	}

	if zero := ComputeFetchLogStats(nil); zero.SuccessRate != 0 {
		t.Fatalf("expected zero stats, got %+v", zero)
	}
}

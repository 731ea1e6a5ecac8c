package domain

import (
	"fmt"
	"time"
)

// JobType distinguishes a run over every active source from a targeted run.
type JobType string

const (
	JobSingle JobType = "single"
	JobBulk   JobType = "bulk"
)

// ParseJobType validates a raw job type.
func ParseJobType(raw string) (JobType, error) {
	switch t := JobType(raw); t {
	case JobSingle, JobBulk:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown job type %q", ErrInvalid, raw)
}

// RunStatus is the lifecycle state of a fetch run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunPartial   RunStatus = "partial"
)

// ParseRunStatus validates a raw run status.
func ParseRunStatus(raw string) (RunStatus, error) {
	switch s := RunStatus(raw); s {
	case RunRunning, RunCompleted, RunFailed, RunPartial:
		return s, nil
	}
	return "", fmt.Errorf("%w: unknown run status %q", ErrInvalid, raw)
}

// SourceStatus is the outcome of one source inside a run.
type SourceStatus string

const (
	SourceSucceeded SourceStatus = "success"
	SourceFailed    SourceStatus = "failed"
)

// SourceResult records how one source fared inside a run.
type SourceResult struct {
	SourceID          string       `json:"sourceId"`
	SourceName        string       `json:"sourceName"`
	Status            SourceStatus `json:"status"`
	MaxArticles       int          `json:"maxArticles,omitempty"`
	TotalArticles     int          `json:"totalArticles"`
	ProcessedArticles int          `json:"processedArticles"`
	SavedArticles     int          `json:"savedArticles"`
	SkippedDuplicates int          `json:"skippedDuplicates"`
	Errors            []string     `json:"errors"`
	ExecutionTimeMS   int64        `json:"executionTime"`
}

// FetchSummary aggregates the source results of a run.
type FetchSummary struct {
	TotalArticlesProcessed int   `json:"totalArticlesProcessed"`
	TotalArticlesSaved     int   `json:"totalArticlesSaved"`
	TotalDuplicatesSkipped int   `json:"totalDuplicatesSkipped"`
	TotalErrors            int   `json:"totalErrors"`
	ExecutionTimeMS        int64 `json:"executionTime"`
}

// FetchRunLog is the persisted record of one fetch run.
type FetchRunLog struct {
	ID            string         `json:"id" bson:"-"`
	JobID         string         `json:"jobId"`
	JobType       JobType        `json:"jobType"`
	StartTime     time.Time      `json:"startTime"`
	EndTime       *time.Time     `json:"endTime,omitempty"`
	Status        RunStatus      `json:"status"`
	TotalSources  int            `json:"totalSources"`
	SourceResults []SourceResult `json:"sourceResults"`
	Summary       FetchSummary   `json:"summary"`
	JobErrors     []string       `json:"jobErrors"`
}

// NewFetchRunLog starts a run log in the running state.
func NewFetchRunLog(jobID string, jobType JobType, totalSources int, start time.Time) FetchRunLog {
	return FetchRunLog{
		JobID:         jobID,
		JobType:       jobType,
		StartTime:     start,
		Status:        RunRunning,
		TotalSources:  totalSources,
		SourceResults: []SourceResult{},
		JobErrors:     []string{},
	}
}

// Record appends a source result and refreshes the summary.
func (l *FetchRunLog) Record(r SourceResult) {
	if r.Errors == nil {
		r.Errors = []string{}
	}
	l.SourceResults = append(l.SourceResults, r)
	exec := l.Summary.ExecutionTimeMS
	l.Summary = Summarize(l.SourceResults)
	l.Summary.ExecutionTimeMS = exec
	if r.Status == SourceFailed {
		for _, e := range r.Errors {
			l.JobErrors = append(l.JobErrors, fmt.Sprintf("%s: %s", r.SourceName, e))
		}
	}
}

// Finalize stamps the end time and derives the terminal status.
func (l *FetchRunLog) Finalize(end time.Time) {
	l.EndTime = &end
	l.Summary.ExecutionTimeMS = end.Sub(l.StartTime).Milliseconds()
	l.Status = DeriveRunStatus(l.SourceResults)
}

// Fail marks the run as failed with a run-level error.
func (l *FetchRunLog) Fail(end time.Time, err error) {
	l.EndTime = &end
	l.Summary.ExecutionTimeMS = end.Sub(l.StartTime).Milliseconds()
	l.Status = RunFailed
	if err != nil {
		l.JobErrors = append(l.JobErrors, err.Error())
	}
}

// Summarize is the element-wise aggregate of results. ExecutionTimeMS is left zero.
func Summarize(results []SourceResult) FetchSummary {
	var s FetchSummary
	for _, r := range results {
		s.TotalArticlesProcessed += r.ProcessedArticles
		s.TotalArticlesSaved += r.SavedArticles
		s.TotalDuplicatesSkipped += r.SkippedDuplicates
		s.TotalErrors += len(r.Errors)
	}
	return s
}

// DeriveRunStatus maps source outcomes to a run status: completed when nothing
// failed, failed when nothing succeeded, partial otherwise.
func DeriveRunStatus(results []SourceResult) RunStatus {
	var ok, failed int
	for _, r := range results {
		if r.Status == SourceSucceeded {
			ok++
		} else {
			failed++
		}
	}
	switch {
	case failed == 0:
		return RunCompleted
	case ok == 0:
		return RunFailed
	default:
		return RunPartial
	}
}

// FetchLogFilter narrows fetch log listings.
type FetchLogFilter struct {
	Status  RunStatus
	JobType JobType
	Since   time.Time
	Limit   int
}

// FetchLogStats aggregates fetch runs over a time window.
type FetchLogStats struct {
	TotalJobs              int     `json:"totalJobs"`
	SuccessfulJobs         int     `json:"successfulJobs"`
	FailedJobs             int     `json:"failedJobs"`
	PartialJobs            int     `json:"partialJobs"`
	TotalArticlesSaved     int     `json:"totalArticlesSaved"`
	TotalDuplicatesSkipped int     `json:"totalDuplicatesSkipped"`
	AvgExecutionTimeMS     float64 `json:"avgExecutionTime"`
	SuccessRate            float64 `json:"successRate"`
}

// ComputeFetchLogStats folds a set of run logs into stats. Running jobs count
// toward TotalJobs only.
func ComputeFetchLogStats(logs []FetchRunLog) FetchLogStats {
	var st FetchLogStats
	var execTotal int64
	for _, l := range logs {
		st.TotalJobs++
		switch l.Status {
		case RunCompleted:
			st.SuccessfulJobs++
		case RunFailed:
			st.FailedJobs++
		case RunPartial:
			st.PartialJobs++
		}
		st.TotalArticlesSaved += l.Summary.TotalArticlesSaved
		st.TotalDuplicatesSkipped += l.Summary.TotalDuplicatesSkipped
		execTotal += l.Summary.ExecutionTimeMS
	}
	if st.TotalJobs > 0 {
		st.AvgExecutionTimeMS = float64(execTotal) / float64(st.TotalJobs)
		st.SuccessRate = float64(st.SuccessfulJobs) / float64(st.TotalJobs) * 100
	}
	return st
}

// FetchResult is the caller-facing outcome of one source.
type FetchResult struct {
	SourceID          string `json:"sourceId"`
	SourceName        string `json:"sourceName"`
	Success           bool   `json:"success"`
	ArticlesFound     int    `json:"articlesFound"`
	ArticlesProcessed int    `json:"articlesProcessed"`
	ArticlesSaved     int    `json:"articlesSaved"`
	SkippedDuplicates int    `json:"skippedDuplicates"`
	Error             string `json:"error,omitempty"`
	DurationMS        int64  `json:"duration"`
}

// FetchJobResult is returned to whoever triggered a run.
type FetchJobResult struct {
	JobID              string        `json:"jobId"`
	StartTime          time.Time     `json:"startTime"`
	EndTime            time.Time     `json:"endTime"`
	TotalSources       int           `json:"totalSources"`
	SuccessfulSources  int           `json:"successfulSources"`
	FailedSources      int           `json:"failedSources"`
	TotalArticlesFound int           `json:"totalArticlesFound"`
	TotalArticlesSaved int           `json:"totalArticlesSaved"`
	DurationMS         int64         `json:"duration"`
	Results            []FetchResult `json:"results"`
}

// NewFetchJobResult totals per-source results.
func NewFetchJobResult(jobID string, start, end time.Time, results []FetchResult) FetchJobResult {
	if results == nil {
		results = []FetchResult{}
	}
	out := FetchJobResult{
		JobID:        jobID,
		StartTime:    start,
		EndTime:      end,
		TotalSources: len(results),
		DurationMS:   end.Sub(start).Milliseconds(),
		Results:      results,
	}
	for _, r := range results {
		if r.Success {
			out.SuccessfulSources++
		} else {
			out.FailedSources++
		}
		out.TotalArticlesFound += r.ArticlesFound
		out.TotalArticlesSaved += r.ArticlesSaved
	}
	return out
}

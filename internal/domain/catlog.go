package domain

import (
	"fmt"
	"time"
)

// CategorizationRunStatus is the lifecycle state of a categorization run.
type CategorizationRunStatus string

const (
	CatRunInProgress          CategorizationRunStatus = "in-progress"
	CatRunCompleted           CategorizationRunStatus = "completed"
	CatRunCompletedWithErrors CategorizationRunStatus = "completed_with_errors"
	CatRunFailed              CategorizationRunStatus = "failed"
)

// ParseCategorizationRunStatus validates a raw status.
func ParseCategorizationRunStatus(raw string) (CategorizationRunStatus, error) {
	switch s := CategorizationRunStatus(raw); s {
	case CatRunInProgress, CatRunCompleted, CatRunCompletedWithErrors, CatRunFailed:
		return s, nil
	}
	return "", fmt.Errorf("%w: unknown categorization run status %q", ErrInvalid, raw)
}

// Trigger names who started a categorization run.
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerScheduled Trigger = "scheduled"
	TriggerAPI       Trigger = "api"
)

// ParseTrigger validates a raw trigger.
func ParseTrigger(raw string) (Trigger, error) {
	switch t := Trigger(raw); t {
	case TriggerManual, TriggerScheduled, TriggerAPI:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown trigger %q", ErrInvalid, raw)
}

// ResultStatus is the outcome of one article inside a categorization run.
type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultFailed  ResultStatus = "failed"
)

// ArticleCategorizationResult is one article's entry in a categorization run log.
type ArticleCategorizationResult struct {
	ArticleID    string       `json:"articleId"`
	Title        string       `json:"title"`
	NewsCategory NewsCategory `json:"newsCategory,omitempty"`
	TechCategory TechCategory `json:"techCategory,omitempty"`
	Rationale    string       `json:"rationale"`
	Confidence   float64      `json:"confidence"`
	Status       ResultStatus `json:"status"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
}

// TokenUsage is the token accounting reported by the categorization service.
type TokenUsage struct {
	PromptTokens     int    `json:"promptTokens"`
	CompletionTokens int    `json:"completionTokens"`
	TotalTokens      int    `json:"totalTokens"`
	Model            string `json:"modelUsed"`
}

// OpenAIUsage is TokenUsage with the estimated cost attached.
type OpenAIUsage struct {
	TokenUsage       `bson:",inline"`
	EstimatedCostUSD float64 `json:"estimatedCostUSD"`
}

// CategorizationRunLog is the persisted record of one categorization run.
type CategorizationRunLog struct {
	ID                       string                        `json:"id" bson:"-"`
	StartTime                time.Time                     `json:"startTime"`
	EndTime                  *time.Time                    `json:"endTime,omitempty"`
	Status                   CategorizationRunStatus       `json:"status"`
	ProcessingTimeMS         int64                         `json:"processingTimeMs"`
	TriggeredBy              Trigger                       `json:"triggeredBy"`
	TotalArticlesAttempted   int                           `json:"totalArticlesAttempted"`
	TotalArticlesSuccessful  int                           `json:"totalArticlesSuccessful"`
	TotalArticlesFailed      int                           `json:"totalArticlesFailed"`
	ArticleLimit             int                           `json:"articleLimit"`
	BatchSize                int                           `json:"batchSize"`
	NewsCategoryDistribution map[NewsCategory]int          `json:"newsCategoryDistribution"`
	TechCategoryDistribution map[TechCategory]int          `json:"techCategoryDistribution"`
	Usage                    OpenAIUsage                   `json:"openaiUsage"`
	ArticleResults           []ArticleCategorizationResult `json:"articleResults"`
	ProcessingErrors         []string                      `json:"processingErrors"`
	Model                    string                        `json:"openaiModel"`
}

// NewCategorizationRunLog starts a run log in the in-progress state.
func NewCategorizationRunLog(limit int, trigger Trigger, model string, start time.Time) CategorizationRunLog {
	return CategorizationRunLog{
		StartTime:                start,
		Status:                   CatRunInProgress,
		TriggeredBy:              trigger,
		ArticleLimit:             limit,
		BatchSize:                limit,
		NewsCategoryDistribution: EmptyNewsDistribution(),
		TechCategoryDistribution: EmptyTechDistribution(),
		Usage:                    OpenAIUsage{TokenUsage: TokenUsage{Model: model}},
		ArticleResults:           []ArticleCategorizationResult{},
		ProcessingErrors:         []string{},
		Model:                    model,
	}
}

// AddResults appends article results and bumps the success and failure counters.
func (l *CategorizationRunLog) AddResults(results ...ArticleCategorizationResult) {
	for _, r := range results {
		l.ArticleResults = append(l.ArticleResults, r)
		if r.Status == ResultSuccess {
			l.TotalArticlesSuccessful++
		} else {
			l.TotalArticlesFailed++
		}
	}
}

// Finalize stamps the end time, tallies distributions and derives the status.
func (l *CategorizationRunLog) Finalize(end time.Time) {
	l.EndTime = &end
	l.ProcessingTimeMS = end.Sub(l.StartTime).Milliseconds()
	l.NewsCategoryDistribution = EmptyNewsDistribution()
	l.TechCategoryDistribution = EmptyTechDistribution()
	for _, r := range l.ArticleResults {
		if r.Status != ResultSuccess {
			continue
		}
		if r.NewsCategory != "" {
			l.NewsCategoryDistribution[r.NewsCategory]++
		}
		if r.TechCategory != "" {
			l.TechCategoryDistribution[r.TechCategory]++
		}
	}
	switch {
	case l.TotalArticlesAttempted == 0:
		l.Status = CatRunCompleted
	case l.TotalArticlesFailed == 0 && l.TotalArticlesSuccessful > 0:
		l.Status = CatRunCompleted
	case l.TotalArticlesSuccessful > 0:
		l.Status = CatRunCompletedWithErrors
	default:
		l.Status = CatRunFailed
	}
}

// Fail marks the run as failed with a run-level error.
func (l *CategorizationRunLog) Fail(end time.Time, err error) {
	l.EndTime = &end
	l.ProcessingTimeMS = end.Sub(l.StartTime).Milliseconds()
	l.Status = CatRunFailed
	if err != nil {
		l.ProcessingErrors = append(l.ProcessingErrors, err.Error())
	}
}

// CategorizationLogFilter narrows categorization log listings.
type CategorizationLogFilter struct {
	Status      CategorizationRunStatus
	TriggeredBy Trigger
	Since       time.Time
	Limit       int
	Offset      int
}

// CategorizationCostStats totals usage over a time window.
type CategorizationCostStats struct {
	TotalCostUSD  float64 `json:"totalCost"`
	TotalTokens   int     `json:"totalTokens"`
	TotalArticles int     `json:"totalArticles"`
	Runs          int     `json:"runs"`
}

// CategorizationItem is the metadata sent to the categorization service.
type CategorizationItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

// CategorizedItem is one labelled item returned by the service. Labels are
// raw strings and must be validated against the taxonomy.
type CategorizedItem struct {
	ID           string  `json:"id"`
	NewsCategory string  `json:"newsCategory"`
	TechCategory string  `json:"techCategory"`
	Rationale    string  `json:"rationale"`
	Confidence   float64 `json:"confidence"`
}

// CategorizationBatch is the service response for one batch.
type CategorizationBatch struct {
	Items []CategorizedItem
	Usage TokenUsage
}

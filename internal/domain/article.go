package domain

import (
	"fmt"
	"strings"
	"time"
)

// CategorizationStatus tracks an article through the LLM categorization job.
type CategorizationStatus string

const (
	CategorizationPending    CategorizationStatus = "pending"
	CategorizationProcessing CategorizationStatus = "processing"
	CategorizationCompleted  CategorizationStatus = "completed"
	CategorizationFailed     CategorizationStatus = "failed"
)

// ParseCategorizationStatus validates a raw status string.
func ParseCategorizationStatus(raw string) (CategorizationStatus, error) {
	switch s := CategorizationStatus(raw); s {
	case CategorizationPending, CategorizationProcessing, CategorizationCompleted, CategorizationFailed:
		return s, nil
	}
	return "", fmt.Errorf("%w: unknown categorization status %q", ErrInvalid, raw)
}

// Categories holds the two labels assigned to an article.
type Categories struct {
	News NewsCategory `json:"news,omitempty"`
	Tech TechCategory `json:"tech,omitempty"`
}

// Empty reports whether no label is set.
func (c Categories) Empty() bool {
	return c.News == "" && c.Tech == ""
}

// Categorization is the categorization sub-record of a persisted article.
type Categorization struct {
	Status         CategorizationStatus `json:"status"`
	Categories     Categories           `json:"categories"`
	Rationale      string               `json:"rationale,omitempty"`
	CategorizedAt  *time.Time           `json:"categorizedAt,omitempty"`
	IsTrainingData bool                 `json:"isTrainingData,omitempty"`
}

// Article is a persisted article. Link is unique across the collection.
type Article struct {
	ID              string         `json:"id" bson:"-"`
	Title           string         `json:"title"`
	Link            string         `json:"link"`
	SourceName      string         `json:"sourceName"`
	PublishedDate   *time.Time     `json:"publishedDate,omitempty"`
	MetaDescription string         `json:"metaDescription,omitempty"`
	GUID            string         `json:"guid,omitempty"`
	FetchedAt       time.Time      `json:"fetchedAt"`
	Categorization  Categorization `json:"categorization"`
}

// NewPendingArticle builds the persisted form of a candidate awaiting categorization.
func NewPendingArticle(c CandidateArticle, sourceName string, fetchedAt time.Time) Article {
	return Article{
		Title:           c.Title,
		Link:            c.Link,
		SourceName:      sourceName,
		PublishedDate:   c.PublishedDate,
		MetaDescription: c.MetaDescription,
		GUID:            c.GUID,
		FetchedAt:       fetchedAt,
		Categorization:  Categorization{Status: CategorizationPending},
	}
}

// ArticleFilter narrows article listings. Zero values mean "any".
// Listings are ordered by fetchedAt, newest first.
type ArticleFilter struct {
	SourceName string
	Status     CategorizationStatus
	// Category matches either the news or the tech label.
	Category string
	// Search is a case-insensitive substring of title, description or source.
	Search        string
	PublishedFrom *time.Time
	PublishedTo   *time.Time
	Limit         int
	Offset        int
}

// Matches applies the filter to a single article, ignoring paging.
func (f ArticleFilter) Matches(a Article) bool {
	if f.SourceName != "" && a.SourceName != f.SourceName {
		return false
	}
	if f.Status != "" && a.Categorization.Status != f.Status {
		return false
	}
	if f.Category != "" && string(a.Categorization.Categories.News) != f.Category && string(a.Categorization.Categories.Tech) != f.Category {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(a.Title), needle) &&
			!strings.Contains(strings.ToLower(a.MetaDescription), needle) &&
			!strings.Contains(strings.ToLower(a.SourceName), needle) {
			return false
		}
	}
	if f.PublishedFrom != nil && (a.PublishedDate == nil || a.PublishedDate.Before(*f.PublishedFrom)) {
		return false
	}
	if f.PublishedTo != nil && (a.PublishedDate == nil || a.PublishedDate.After(*f.PublishedTo)) {
		return false
	}
	return true
}

// CategorizationResult is written back onto an article by the categorization job.
type CategorizationResult struct {
	Status        CategorizationStatus
	Categories    Categories
	Rationale     string
	CategorizedAt time.Time
}

// CategorizationPatch is a human review of an article's categorization.
type CategorizationPatch struct {
	NewsCategory   *NewsCategory
	TechCategory   *TechCategory
	Rationale      *string
	IsTrainingData *bool
}

// Apply mutates c according to the patch at time now.
func (p CategorizationPatch) Apply(c *Categorization, now time.Time) {
	if p.NewsCategory != nil {
		c.Categories.News = *p.NewsCategory
	}
	if p.TechCategory != nil {
		c.Categories.Tech = *p.TechCategory
	}
	if p.Rationale != nil {
		c.Rationale = *p.Rationale
	}
	if p.IsTrainingData != nil {
		c.IsTrainingData = *p.IsTrainingData
	}
	if p.NewsCategory != nil || p.TechCategory != nil {
		c.Status = CategorizationCompleted
		c.CategorizedAt = &now
	}
}

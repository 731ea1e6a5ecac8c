package domain

import (
	"fmt"
	"strings"
	"time"
)

// SourceType selects the processor used to fetch a source.
type SourceType string

const (
	SourceRSS  SourceType = "rss"
	SourceHTML SourceType = "html"
)

// ParseSourceType validates a raw type string.
func ParseSourceType(raw string) (SourceType, error) {
	t := SourceType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown source type %q", ErrInvalid, raw)
	}
	return t, nil
}

// Valid reports whether t is a known source type.
func (t SourceType) Valid() bool {
	return t == SourceRSS || t == SourceHTML
}

// FetchOutcome is the result recorded on a source after a fetch attempt.
type FetchOutcome string

const (
	FetchOutcomeSuccess FetchOutcome = "success"
	FetchOutcomeError   FetchOutcome = "error"
)

// FetchStatus is written by the orchestrator after every fetch attempt.
type FetchStatus struct {
	LastFetchedAt          *time.Time   `json:"lastFetchedAt,omitempty"`
	LastFetchStatus        FetchOutcome `json:"lastFetchStatus,omitempty"`
	LastFetchMessage       string       `json:"lastFetchMessage,omitempty"`
	LastFetchError         string       `json:"lastFetchError,omitempty"`
	LastFetchSavedArticles *int         `json:"lastFetchSavedArticles,omitempty"`
}

// Source is a configured feed polled for articles.
type Source struct {
	ID          string      `json:"id" bson:"-"`
	Name        string      `json:"name"`
	URL         string      `json:"url"`
	Type        SourceType  `json:"type"`
	IsActive    bool        `json:"isActive"`
	FetchStatus FetchStatus `json:"fetchStatus"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Descriptor returns the minimal view handed to processors.
func (s Source) Descriptor() FeedDescriptor {
	return FeedDescriptor{Name: s.Name, URL: s.URL}
}

// NewSource validates the required fields and returns an active-by-default source.
func NewSource(name, url, rawType string, isActive *bool) (Source, error) {
	name = strings.TrimSpace(name)
	url = strings.TrimSpace(url)
	if name == "" || url == "" || strings.TrimSpace(rawType) == "" {
		return Source{}, fmt.Errorf("%w: missing required fields: name, url, type", ErrInvalid)
	}
	t, err := ParseSourceType(rawType)
	if err != nil {
		return Source{}, err
	}

	active := true
	if isActive != nil {
		active = *isActive
	}

	return Source{Name: name, URL: url, Type: t, IsActive: active}, nil
}

// SourcePatch carries optional updates for a source.
type SourcePatch struct {
	Name     *string     `json:"name,omitempty"`
	URL      *string     `json:"url,omitempty"`
	Type     *SourceType `json:"type,omitempty"`
	IsActive *bool       `json:"isActive,omitempty"`
}

// Apply copies the set fields onto src.
func (p SourcePatch) Apply(src *Source) {
	if p.Name != nil {
		src.Name = strings.TrimSpace(*p.Name)
	}
	if p.URL != nil {
		src.URL = strings.TrimSpace(*p.URL)
	}
	if p.Type != nil {
		src.Type = *p.Type
	}
	if p.IsActive != nil {
		src.IsActive = *p.IsActive
	}
}

// SourceFilter narrows source listings.
type SourceFilter struct {
	ActiveOnly bool
}

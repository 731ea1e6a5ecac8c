package domain

import "time"

// FeedDescriptor is what a processor needs to know about a source.
type FeedDescriptor struct {
	Name string
	URL  string
}

// CandidateArticle is a normalized article produced by a processor, before persistence.
type CandidateArticle struct {
	Title           string
	Link            string
	PublishedDate   *time.Time
	MetaDescription string
	GUID            string
}

// FeedResult is the normalized output of one processor invocation.
// TotalItems counts everything found upstream, before the article cap.
type FeedResult struct {
	Articles        []CandidateArticle
	TotalItems      int
	FeedTitle       string
	FeedDescription string
}

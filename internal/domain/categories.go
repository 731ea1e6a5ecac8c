package domain

import "fmt"

// NewsCategory ranks how newsworthy an article is.
type NewsCategory string

// TechCategory classifies the technology topic of an article.
type TechCategory string

const (
	NewsTopStory      NewsCategory = "Top Story Candidate"
	NewsSolid         NewsCategory = "Solid News"
	NewsLowerPriority NewsCategory = "Interesting but Lower Priority"
	NewsNotRelevant   NewsCategory = "Not Relevant"
)

const (
	TechProducts    TechCategory = "Products and Updates"
	TechDevTools    TechCategory = "Developer Tools"
	TechResearch    TechCategory = "Research and Innovation"
	TechTrends      TechCategory = "Industry Trends"
	TechStartups    TechCategory = "Startups and Funding"
	TechNotRelevant TechCategory = "Not Relevant"
)

// NewsCategories lists the news taxonomy in display order.
var NewsCategories = []NewsCategory{NewsTopStory, NewsSolid, NewsLowerPriority, NewsNotRelevant}

// TechCategories lists the tech taxonomy in display order.
var TechCategories = []TechCategory{TechProducts, TechDevTools, TechResearch, TechTrends, TechStartups, TechNotRelevant}

// ParseNewsCategory validates a news label.
func ParseNewsCategory(raw string) (NewsCategory, error) {
	for _, c := range NewsCategories {
		if string(c) == raw {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown news category %q", ErrInvalid, raw)
}

// ParseTechCategory validates a tech label.
func ParseTechCategory(raw string) (TechCategory, error) {
	for _, c := range TechCategories {
		if string(c) == raw {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown tech category %q", ErrInvalid, raw)
}

// EmptyNewsDistribution returns a zeroed tally for every news label.
func EmptyNewsDistribution() map[NewsCategory]int {
	out := make(map[NewsCategory]int, len(NewsCategories))
	for _, c := range NewsCategories {
		out[c] = 0
	}
	return out
}

// EmptyTechDistribution returns a zeroed tally for every tech label.
func EmptyTechDistribution() map[TechCategory]int {
	out := make(map[TechCategory]int, len(TechCategories))
	for _, c := range TechCategories {
		out[c] = 0
	}
	return out
}

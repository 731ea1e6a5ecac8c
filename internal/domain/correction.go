package domain

import (
	"fmt"
	"sort"
	"time"
)

// AICategories is what the model assigned before review.
type AICategories struct {
	News      string `json:"news,omitempty"`
	Tech      string `json:"tech,omitempty"`
	Rationale string `json:"aiRationale,omitempty"`
}

// HumanCategories is what a reviewer replaced them with.
type HumanCategories struct {
	News      string `json:"news,omitempty"`
	Tech      string `json:"tech,omitempty"`
	Rationale string `json:"humanRationale,omitempty"`
}

// CategoryCorrection records a reviewer overriding an AI categorization.
type CategoryCorrection struct {
	ID              string          `json:"id" bson:"-"`
	Title           string          `json:"title"`
	Source          string          `json:"source"`
	Description     string          `json:"description,omitempty"`
	AICategories    AICategories    `json:"aiCategories"`
	HumanCategories HumanCategories `json:"humanCategories"`
	CorrectedAt     time.Time       `json:"correctedAt"`
}

// CorrectionFor returns the correction implied by a review that moved a from
// before to after, or false when the review did not override an AI result.
func CorrectionFor(a Article, before, after Categorization, now time.Time) (CategoryCorrection, bool) {
	if before.Status != CategorizationCompleted || before.Categories.Empty() {
		return CategoryCorrection{}, false
	}
	if before.Categories == after.Categories {
		return CategoryCorrection{}, false
	}
	return CategoryCorrection{
		Title:       a.Title,
		Source:      a.SourceName,
		Description: a.MetaDescription,
		AICategories: AICategories{
			News:      string(before.Categories.News),
			Tech:      string(before.Categories.Tech),
			Rationale: before.Rationale,
		},
		HumanCategories: HumanCategories{
			News:      string(after.Categories.News),
			Tech:      string(after.Categories.Tech),
			Rationale: after.Rationale,
		},
		CorrectedAt: now,
	}, true
}

// CorrectionPattern counts one "from → to" change.
type CorrectionPattern struct {
	Pattern string `json:"pattern"`
	Count   int    `json:"count"`
}

// SourceCorrections tallies overrides for one source.
type SourceCorrections struct {
	TotalCorrections int `json:"totalCorrections"`
	NewsCorrections  int `json:"newsCorrections"`
	TechCorrections  int `json:"techCorrections"`
}

// CorrectionAnalysis summarises reviewer overrides.
type CorrectionAnalysis struct {
	TotalCorrections   int                          `json:"totalCorrections"`
	LastCorrectionDate *time.Time                   `json:"lastCorrectionDate"`
	RecentCorrections  []CategoryCorrection         `json:"recentCorrections"`
	TopPatterns        []CorrectionPattern          `json:"topPatterns"`
	SourceBreakdown    map[string]SourceCorrections `json:"sourceBreakdown"`
}

const (
	recentCorrections = 10
	topPatterns       = 15
)

// AnalyzeCorrections expects corrections newest first.
func AnalyzeCorrections(corrections []CategoryCorrection) CorrectionAnalysis {
	out := CorrectionAnalysis{
		TotalCorrections:  len(corrections),
		RecentCorrections: corrections[:min(len(corrections), recentCorrections)],
		TopPatterns:       []CorrectionPattern{},
		SourceBreakdown:   map[string]SourceCorrections{},
	}
	if len(corrections) > 0 {
		last := corrections[0].CorrectedAt
		out.LastCorrectionDate = &last
	}

	counts := map[string]int{}
	var order []string
	bump := func(key string) {
		if _, ok := counts[key]; !ok {
			order = append(order, key)
		}
		counts[key]++
	}
	for _, c := range corrections {
		src := out.SourceBreakdown[c.Source]
		src.TotalCorrections++
		if c.AICategories.News != c.HumanCategories.News {
			bump(fmt.Sprintf("News: %s → %s", c.AICategories.News, c.HumanCategories.News))
			src.NewsCorrections++
		}
		if c.AICategories.Tech != c.HumanCategories.Tech {
			bump(fmt.Sprintf("Tech: %s → %s", c.AICategories.Tech, c.HumanCategories.Tech))
			src.TechCorrections++
		}
		out.SourceBreakdown[c.Source] = src
	}

	for _, key := range order {
		out.TopPatterns = append(out.TopPatterns, CorrectionPattern{Pattern: key, Count: counts[key]})
	}
	sort.SliceStable(out.TopPatterns, func(i, j int) bool {
		return out.TopPatterns[i].Count > out.TopPatterns[j].Count
	})
	if len(out.TopPatterns) > topPatterns {
		out.TopPatterns = out.TopPatterns[:topPatterns]
	}
	return out
}

package llm

import (
	"fmt"
	"strings"

	"NewsDesk/internal/domain"
)

// BuildBatchPrompt renders the user message listing the taxonomy and every
// article to label.
func BuildBatchPrompt(items []domain.CategorizationItem) string {
	var b strings.Builder
	b.WriteString("Categorize each of the following articles for an AI industry newsletter.\n\n")

	b.WriteString("NEWS CATEGORIES (editorial priority, pick exactly one):\n")
	for _, c := range domain.NewsCategories {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\nTECH CATEGORIES (subject area, pick exactly one):\n")
	for _, c := range domain.TechCategories {
		fmt.Fprintf(&b, "- %s\n", c)
	}

	b.WriteString("\nARTICLES:\n")
	for i, it := range items {
		fmt.Fprintf(&b, "%d. id: %s\n   Title: %q\n", i+1, it.ID, it.Title)
		if d := strings.TrimSpace(it.Description); d != "" {
			fmt.Fprintf(&b, "   Description: %q\n", d)
		}
		fmt.Fprintf(&b, "   Source: %q\n", it.Source)
	}

	b.WriteString(`
INSTRUCTIONS:
1. Use the category names exactly as written above.
2. Return one entry per article, echoing its id.
3. Give a confidence score from 0 to 100 and a one-sentence rationale.

RESPOND WITH VALID JSON:
{"articles": [{"id": "...", "newsCategory": "...", "techCategory": "...", "rationale": "...", "confidence": 85}]}
`)
	return b.String()
}

package mongodb

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"NewsDesk/internal/domain"
)

func TestArticleFilterEmptyMatchesAll(t *testing.T) {
	t.Parallel()

	if got := articleFilter(domain.ArticleFilter{Limit: 10, Offset: 5}); len(got) != 0 {
		t.Fatalf("expected empty filter, got %v", got)
	}
}

func TestArticleFilterSingleClause(t *testing.T) {
	t.Parallel()

	got := articleFilter(domain.ArticleFilter{Status: domain.CategorizationPending})
	if got["categorization.status"] != "pending" || len(got) != 1 {
		t.Fatalf("unexpected filter %v", got)
	}
}

func TestArticleFilterCombinesOrClauses(t *testing.T) {
	t.Parallel()

	from := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	got := articleFilter(domain.ArticleFilter{
		SourceName:    "Lab",
		Category:      "Developer Tools",
		Search:        "gpt-4.1 (beta)",
		PublishedFrom: &from,
	})

	clauses, ok := got["$and"].([]bson.M)
	if !ok || len(clauses) != 4 {
		t.Fatalf("expected four $and clauses, got %v", got)
	}
	if clauses[0]["sourceName"] != "Lab" {
		t.Fatalf("unexpected first clause %v", clauses[0])
	}
	search, _ := clauses[2]["$or"].(bson.A)
	if len(search) != 3 {
		t.Fatalf("search must cover three fields, got %v", clauses[2])
	}
	title, _ := search[0].(bson.M)["title"].(primitive.Regex)
	if title.Pattern != `gpt-4\.1 \(beta\)` || title.Options != "i" {
		t.Fatalf("search must be a quoted case-insensitive regex, got %+v", title)
	}
	rng, _ := clauses[3]["publishedDate"].(bson.M)
	if rng["$gte"] != from {
		t.Fatalf("unexpected date range %v", clauses[3])
	}
}

func TestExistsFilter(t *testing.T) {
	t.Parallel()

	if got := existsFilter("https://x/1", ""); got["link"] != "https://x/1" || len(got) != 1 {
		t.Fatalf("empty guid must match link only, got %v", got)
	}
	or, _ := existsFilter("https://x/1", "g1")["$or"].(bson.A)
	if len(or) != 2 {
		t.Fatalf("expected link or guid, got %v", or)
	}
}

func TestFetchLogFilter(t *testing.T) {
	t.Parallel()

	since := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	got := fetchLogFilter(domain.FetchLogFilter{JobType: domain.JobSingle, Since: since})
	clauses, ok := got["$and"].([]bson.M)
	if !ok || len(clauses) != 2 || clauses[0]["jobType"] != "single" {
		t.Fatalf("unexpected filter %v", got)
	}
}

func TestRegistryUsesJSONKeys(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}
	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	log := domain.NewCategorizationRunLog(5, domain.TriggerAPI, "gpt-4o-mini", start)
	log.ID = "ignored"
	log.Usage = domain.OpenAIUsage{TokenUsage: domain.TokenUsage{TotalTokens: 42}, EstimatedCostUSD: 0.5}

	raw, err := bson.MarshalWithRegistry(reg, catLogDoc{CategorizationRunLog: log})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	doc := bson.Raw(raw)

	if _, err := doc.LookupErr("id"); err == nil {
		t.Fatalf("domain id must not be stored")
	}
	if _, err := doc.LookupErr("_id"); err == nil {
		t.Fatalf("zero object id must be omitted")
	}
	if v := doc.Lookup("triggeredBy").StringValue(); v != "api" {
		t.Fatalf("unexpected triggeredBy %q", v)
	}
	if v := doc.Lookup("openaiUsage", "totalTokens").AsInt64(); v != 42 {
		t.Fatalf("token usage must be inlined, got %d", v)
	}
	if v := doc.Lookup("openaiUsage", "estimatedCostUSD").Double(); v != 0.5 {
		t.Fatalf("unexpected cost %v", v)
	}

	var back catLogDoc
	if err := bson.UnmarshalWithRegistry(reg, raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.ArticleLimit != 5 || !back.StartTime.Equal(start) || back.Usage.TotalTokens != 42 {
		t.Fatalf("unexpected round trip: %+v", back.CategorizationRunLog)
	}
}

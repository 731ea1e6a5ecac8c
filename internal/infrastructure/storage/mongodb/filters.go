package mongodb

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"NewsDesk/internal/domain"
)

// and joins the non-empty clauses; no clauses yields the match-all filter.
func and(clauses ...bson.M) bson.M {
	var kept []bson.M
	for _, c := range clauses {
		if len(c) > 0 {
			kept = append(kept, c)
		}
	}
	switch len(kept) {
	case 0:
		return bson.M{}
	case 1:
		return kept[0]
	default:
		return bson.M{"$and": kept}
	}
}

func eq(field, value string) bson.M {
	if value == "" {
		return nil
	}
	return bson.M{field: value}
}

func since(field string, t time.Time) bson.M {
	if t.IsZero() {
		return nil
	}
	return bson.M{field: bson.M{"$gte": t}}
}

func articleFilter(f domain.ArticleFilter) bson.M {
	clauses := []bson.M{
		eq("sourceName", f.SourceName),
		eq("categorization.status", string(f.Status)),
	}
	if f.Category != "" {
		clauses = append(clauses, bson.M{"$or": bson.A{
			bson.M{"categorization.categories.news": f.Category},
			bson.M{"categorization.categories.tech": f.Category},
		}})
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		clauses = append(clauses, bson.M{"$or": bson.A{
			bson.M{"title": pattern},
			bson.M{"metaDescription": pattern},
			bson.M{"sourceName": pattern},
		}})
	}
	if f.PublishedFrom != nil || f.PublishedTo != nil {
		rng := bson.M{}
		if f.PublishedFrom != nil {
			rng["$gte"] = *f.PublishedFrom
		}
		if f.PublishedTo != nil {
			rng["$lte"] = *f.PublishedTo
		}
		clauses = append(clauses, bson.M{"publishedDate": rng})
	}
	return and(clauses...)
}

func existsFilter(link, guid string) bson.M {
	if guid == "" {
		return bson.M{"link": link}
	}
	return bson.M{"$or": bson.A{bson.M{"link": link}, bson.M{"guid": guid}}}
}

func fetchLogFilter(f domain.FetchLogFilter) bson.M {
	return and(
		eq("status", string(f.Status)),
		eq("jobType", string(f.JobType)),
		since("startTime", f.Since),
	)
}

func catLogFilter(f domain.CategorizationLogFilter) bson.M {
	return and(
		eq("status", string(f.Status)),
		eq("triggeredBy", string(f.TriggeredBy)),
		since("startTime", f.Since),
	)
}

func fetchStatsPipeline(from time.Time) mongo.Pipeline {
	countIf := func(status domain.RunStatus) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", string(status)}}, 1, 0}}}
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"startTime": bson.M{"$gte": from}}}},
		{{Key: "$group", Value: bson.M{
			"_id":                    nil,
			"totalJobs":              bson.M{"$sum": 1},
			"successfulJobs":         countIf(domain.RunCompleted),
			"failedJobs":             countIf(domain.RunFailed),
			"partialJobs":            countIf(domain.RunPartial),
			"totalArticlesSaved":     bson.M{"$sum": "$summary.totalArticlesSaved"},
			"totalDuplicatesSkipped": bson.M{"$sum": "$summary.totalDuplicatesSkipped"},
			"avgExecutionTime":       bson.M{"$avg": "$summary.executionTime"},
		}}},
	}
}

func costPipeline(from time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"startTime": bson.M{"$gte": from}}}},
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"runs":          bson.M{"$sum": 1},
			"totalCost":     bson.M{"$sum": "$openaiUsage.estimatedCostUSD"},
			"totalTokens":   bson.M{"$sum": "$openaiUsage.totalTokens"},
			"totalArticles": bson.M{"$sum": "$totalArticlesSuccessful"},
		}}},
	}
}

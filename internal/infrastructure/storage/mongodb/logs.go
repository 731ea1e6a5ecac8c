package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"NewsDesk/internal/domain"
)

// CreateFetchLog stores a new run log; jobId is unique.
func (s *Store) CreateFetchLog(ctx context.Context, log *domain.FetchRunLog) error {
	res, err := s.db.Collection(collFetchLogs).InsertOne(ctx, fetchLogDoc{FetchRunLog: *log})
	if err != nil {
		return mapErr(err, "insert fetch log")
	}
	log.ID = idHex(res.InsertedID)
	return nil
}

// SaveFetchLog replaces the stored run log.
func (s *Store) SaveFetchLog(ctx context.Context, log domain.FetchRunLog) error {
	oid, err := objectID(log.ID, "fetch log")
	if err != nil {
		return err
	}
	res, err := s.db.Collection(collFetchLogs).ReplaceOne(ctx, bson.M{"_id": oid}, fetchLogDoc{ID: oid, FetchRunLog: log})
	if err != nil {
		return mapErr(err, "save fetch log")
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("fetch log %s: %w", log.ID, domain.ErrNotFound)
	}
	return nil
}

// ListFetchLogs returns run logs newest first.
func (s *Store) ListFetchLogs(ctx context.Context, f domain.FetchLogFilter) ([]domain.FetchRunLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	cur, err := s.db.Collection(collFetchLogs).Find(ctx, fetchLogFilter(f), opts)
	if err != nil {
		return nil, mapErr(err, "list fetch logs")
	}
	return decodeAll(ctx, cur, fetchLogDoc.toDomain)
}

type fetchStatsRow struct {
	TotalJobs              int     `bson:"totalJobs"`
	SuccessfulJobs         int     `bson:"successfulJobs"`
	FailedJobs             int     `bson:"failedJobs"`
	PartialJobs            int     `bson:"partialJobs"`
	TotalArticlesSaved     int     `bson:"totalArticlesSaved"`
	TotalDuplicatesSkipped int     `bson:"totalDuplicatesSkipped"`
	AvgExecutionTime       float64 `bson:"avgExecutionTime"`
}

func (r fetchStatsRow) toDomain() domain.FetchLogStats {
	st := domain.FetchLogStats{
		TotalJobs:              r.TotalJobs,
		SuccessfulJobs:         r.SuccessfulJobs,
		FailedJobs:             r.FailedJobs,
		PartialJobs:            r.PartialJobs,
		TotalArticlesSaved:     r.TotalArticlesSaved,
		TotalDuplicatesSkipped: r.TotalDuplicatesSkipped,
		AvgExecutionTimeMS:     r.AvgExecutionTime,
	}
	if st.TotalJobs > 0 {
		st.SuccessRate = float64(st.SuccessfulJobs) / float64(st.TotalJobs) * 100
	}
	return st
}

// FetchLogStats aggregates runs started at or after since on the server.
func (s *Store) FetchLogStats(ctx context.Context, since time.Time) (domain.FetchLogStats, error) {
	cur, err := s.db.Collection(collFetchLogs).Aggregate(ctx, fetchStatsPipeline(since))
	if err != nil {
		return domain.FetchLogStats{}, mapErr(err, "fetch log stats")
	}
	rows, err := decodeAll(ctx, cur, fetchStatsRow.toDomain)
	if err != nil || len(rows) == 0 {
		return domain.FetchLogStats{}, err
	}
	return rows[0], nil
}

// DeleteFetchLogsBefore removes runs started before cutoff.
func (s *Store) DeleteFetchLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.Collection(collFetchLogs).DeleteMany(ctx, bson.M{"startTime": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, mapErr(err, "delete fetch logs")
	}
	return res.DeletedCount, nil
}

// CreateCategorizationLog stores a new categorization run log.
func (s *Store) CreateCategorizationLog(ctx context.Context, log *domain.CategorizationRunLog) error {
	res, err := s.db.Collection(collCatLogs).InsertOne(ctx, catLogDoc{CategorizationRunLog: *log})
	if err != nil {
		return mapErr(err, "insert categorization log")
	}
	log.ID = idHex(res.InsertedID)
	return nil
}

// SaveCategorizationLog replaces the stored categorization run log.
func (s *Store) SaveCategorizationLog(ctx context.Context, log domain.CategorizationRunLog) error {
	oid, err := objectID(log.ID, "categorization log")
	if err != nil {
		return err
	}
	res, err := s.db.Collection(collCatLogs).ReplaceOne(ctx, bson.M{"_id": oid}, catLogDoc{ID: oid, CategorizationRunLog: log})
	if err != nil {
		return mapErr(err, "save categorization log")
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("categorization log %s: %w", log.ID, domain.ErrNotFound)
	}
	return nil
}

// GetCategorizationLog returns the log or domain.ErrNotFound.
func (s *Store) GetCategorizationLog(ctx context.Context, id string) (domain.CategorizationRunLog, error) {
	oid, err := objectID(id, "categorization log")
	if err != nil {
		return domain.CategorizationRunLog{}, err
	}
	var doc catLogDoc
	if err := s.db.Collection(collCatLogs).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return domain.CategorizationRunLog{}, mapErr(err, "categorization log "+id)
	}
	return doc.toDomain(), nil
}

// ListCategorizationLogs returns one page, newest first, and the total.
func (s *Store) ListCategorizationLogs(ctx context.Context, f domain.CategorizationLogFilter) ([]domain.CategorizationRunLog, int, error) {
	coll := s.db.Collection(collCatLogs)
	query := catLogFilter(f)

	total, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, mapErr(err, "count categorization logs")
	}
	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	if f.Offset > 0 {
		opts.SetSkip(int64(f.Offset))
	}
	cur, err := coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, mapErr(err, "list categorization logs")
	}
	logs, err := decodeAll(ctx, cur, catLogDoc.toDomain)
	if err != nil {
		return nil, 0, err
	}
	return logs, int(total), nil
}

type costRow struct {
	Runs          int     `bson:"runs"`
	TotalCost     float64 `bson:"totalCost"`
	TotalTokens   int     `bson:"totalTokens"`
	TotalArticles int     `bson:"totalArticles"`
}

func (r costRow) toDomain() domain.CategorizationCostStats {
	return domain.CategorizationCostStats{
		TotalCostUSD:  r.TotalCost,
		TotalTokens:   r.TotalTokens,
		TotalArticles: r.TotalArticles,
		Runs:          r.Runs,
	}
}

// CategorizationCosts totals usage for runs started at or after since.
func (s *Store) CategorizationCosts(ctx context.Context, since time.Time) (domain.CategorizationCostStats, error) {
	cur, err := s.db.Collection(collCatLogs).Aggregate(ctx, costPipeline(since))
	if err != nil {
		return domain.CategorizationCostStats{}, mapErr(err, "categorization costs")
	}
	rows, err := decodeAll(ctx, cur, costRow.toDomain)
	if err != nil || len(rows) == 0 {
		return domain.CategorizationCostStats{}, err
	}
	return rows[0], nil
}

// DeleteCategorizationLogsBefore removes runs started before cutoff.
func (s *Store) DeleteCategorizationLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.Collection(collCatLogs).DeleteMany(ctx, bson.M{"startTime": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, mapErr(err, "delete categorization logs")
	}
	return res.DeletedCount, nil
}

// AddCorrection appends a reviewer override.
func (s *Store) AddCorrection(ctx context.Context, c domain.CategoryCorrection) error {
	_, err := s.db.Collection(collCorrections).InsertOne(ctx, correctionDoc{CategoryCorrection: c})
	return mapErr(err, "insert correction")
}

// ListCorrections returns every correction, newest first.
func (s *Store) ListCorrections(ctx context.Context) ([]domain.CategoryCorrection, error) {
	opts := options.Find().SetSort(bson.D{{Key: "correctedAt", Value: -1}})
	cur, err := s.db.Collection(collCorrections).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, mapErr(err, "list corrections")
	}
	return decodeAll(ctx, cur, correctionDoc.toDomain)
}

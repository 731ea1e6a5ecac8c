package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"NewsDesk/internal/domain"
)

func scanDoc[T any](row rowScanner) (T, error) {
	var (
		out T
		raw []byte
	)
	if err := row.Scan(&raw); err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}

// CreateFetchLog stores a new run log; jobId is unique.
func (s *Store) CreateFetchLog(ctx context.Context, log *domain.FetchRunLog) error {
	log.ID = newID()
	doc, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("encode fetch log: %w", err)
	}
	insert := psql.Insert("fetch_logs").
		Columns("id", "job_id", "job_type", "status", "start_time", "doc").
		Values(log.ID, log.JobID, log.JobType, log.Status, log.StartTime, string(doc))
	_, err = s.exec(ctx, insert, "insert fetch log")
	return err
}

// SaveFetchLog replaces the stored run log.
func (s *Store) SaveFetchLog(ctx context.Context, log domain.FetchRunLog) error {
	doc, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("encode fetch log: %w", err)
	}
	update := psql.Update("fetch_logs").Set("status", log.Status).Set("doc", string(doc)).Where(sq.Eq{"id": log.ID})
	n, err := s.exec(ctx, update, "save fetch log")
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("fetch log %s: %w", log.ID, domain.ErrNotFound)
	}
	return nil
}

func fetchLogQuery(f domain.FetchLogFilter) sq.SelectBuilder {
	q := psql.Select("doc").From("fetch_logs").OrderBy("start_time DESC")
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}
	if f.JobType != "" {
		q = q.Where(sq.Eq{"job_type": f.JobType})
	}
	if !f.Since.IsZero() {
		q = q.Where(sq.GtOrEq{"start_time": f.Since})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	return q
}

// ListFetchLogs returns run logs newest first.
func (s *Store) ListFetchLogs(ctx context.Context, f domain.FetchLogFilter) ([]domain.FetchRunLog, error) {
	rows, err := s.query(ctx, fetchLogQuery(f), "list fetch logs")
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDoc[domain.FetchRunLog])
}

// FetchLogStats aggregates runs started at or after since.
func (s *Store) FetchLogStats(ctx context.Context, since time.Time) (domain.FetchLogStats, error) {
	logs, err := s.ListFetchLogs(ctx, domain.FetchLogFilter{Since: since})
	if err != nil {
		return domain.FetchLogStats{}, err
	}
	return domain.ComputeFetchLogStats(logs), nil
}

// DeleteFetchLogsBefore removes runs started before cutoff.
func (s *Store) DeleteFetchLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.exec(ctx, psql.Delete("fetch_logs").Where(sq.Lt{"start_time": cutoff}), "delete fetch logs")
}

// CreateCategorizationLog stores a new categorization run log.
func (s *Store) CreateCategorizationLog(ctx context.Context, log *domain.CategorizationRunLog) error {
	log.ID = newID()
	doc, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("encode categorization log: %w", err)
	}
	insert := psql.Insert("categorization_logs").
		Columns("id", "status", "triggered_by", "start_time", "doc").
		Values(log.ID, log.Status, log.TriggeredBy, log.StartTime, string(doc))
	_, err = s.exec(ctx, insert, "insert categorization log")
	return err
}

// SaveCategorizationLog replaces the stored categorization run log.
func (s *Store) SaveCategorizationLog(ctx context.Context, log domain.CategorizationRunLog) error {
	doc, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("encode categorization log: %w", err)
	}
	update := psql.Update("categorization_logs").Set("status", log.Status).Set("doc", string(doc)).Where(sq.Eq{"id": log.ID})
	n, err := s.exec(ctx, update, "save categorization log")
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("categorization log %s: %w", log.ID, domain.ErrNotFound)
	}
	return nil
}

// GetCategorizationLog returns the log or domain.ErrNotFound.
func (s *Store) GetCategorizationLog(ctx context.Context, id string) (domain.CategorizationRunLog, error) {
	row, err := s.queryRow(ctx, psql.Select("doc").From("categorization_logs").Where(sq.Eq{"id": id}), "get categorization log")
	if err != nil {
		return domain.CategorizationRunLog{}, err
	}
	l, err := scanDoc[domain.CategorizationRunLog](row)
	if err != nil {
		return domain.CategorizationRunLog{}, mapErr(err, "categorization log "+id)
	}
	return l, nil
}

func catLogWhere(f domain.CategorizationLogFilter) sq.And {
	var where sq.And
	if f.Status != "" {
		where = append(where, sq.Eq{"status": f.Status})
	}
	if f.TriggeredBy != "" {
		where = append(where, sq.Eq{"triggered_by": f.TriggeredBy})
	}
	if !f.Since.IsZero() {
		where = append(where, sq.GtOrEq{"start_time": f.Since})
	}
	return where
}

// ListCategorizationLogs returns one page, newest first, and the total.
func (s *Store) ListCategorizationLogs(ctx context.Context, f domain.CategorizationLogFilter) ([]domain.CategorizationRunLog, int, error) {
	where := catLogWhere(f)

	count := psql.Select("COUNT(*)").From("categorization_logs")
	list := psql.Select("doc").From("categorization_logs").OrderBy("start_time DESC")
	if len(where) > 0 {
		count, list = count.Where(where), list.Where(where)
	}
	if f.Limit > 0 {
		list = list.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		list = list.Offset(uint64(f.Offset))
	}

	row, err := s.queryRow(ctx, count, "count categorization logs")
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := row.Scan(&total); err != nil {
		return nil, 0, mapErr(err, "count categorization logs")
	}
	rows, err := s.query(ctx, list, "list categorization logs")
	if err != nil {
		return nil, 0, err
	}
	logs, err := collect(rows, scanDoc[domain.CategorizationRunLog])
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func costQuery(since time.Time) sq.SelectBuilder {
	return psql.Select(
		"COUNT(*)",
		"COALESCE(SUM((doc->'openaiUsage'->>'estimatedCostUSD')::float8), 0)",
		"COALESCE(SUM((doc->'openaiUsage'->>'totalTokens')::bigint), 0)",
		"COALESCE(SUM((doc->>'totalArticlesSuccessful')::bigint), 0)",
	).From("categorization_logs").Where(sq.GtOrEq{"start_time": since})
}

// CategorizationCosts totals usage for runs started at or after since.
func (s *Store) CategorizationCosts(ctx context.Context, since time.Time) (domain.CategorizationCostStats, error) {
	row, err := s.queryRow(ctx, costQuery(since), "categorization costs")
	if err != nil {
		return domain.CategorizationCostStats{}, err
	}
	var st domain.CategorizationCostStats
	if err := row.Scan(&st.Runs, &st.TotalCostUSD, &st.TotalTokens, &st.TotalArticles); err != nil {
		return domain.CategorizationCostStats{}, mapErr(err, "categorization costs")
	}
	return st, nil
}

// DeleteCategorizationLogsBefore removes runs started before cutoff.
func (s *Store) DeleteCategorizationLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.exec(ctx, psql.Delete("categorization_logs").Where(sq.Lt{"start_time": cutoff}), "delete categorization logs")
}

// AddCorrection appends a reviewer override.
func (s *Store) AddCorrection(ctx context.Context, c domain.CategoryCorrection) error {
	c.ID = newID()
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode correction: %w", err)
	}
	insert := psql.Insert("category_corrections").Columns("id", "corrected_at", "doc").Values(c.ID, c.CorrectedAt, string(doc))
	_, err = s.exec(ctx, insert, "insert correction")
	return err
}

// ListCorrections returns every correction, newest first.
func (s *Store) ListCorrections(ctx context.Context) ([]domain.CategoryCorrection, error) {
	rows, err := s.query(ctx, psql.Select("doc").From("category_corrections").OrderBy("corrected_at DESC"), "list corrections")
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDoc[domain.CategoryCorrection])
}

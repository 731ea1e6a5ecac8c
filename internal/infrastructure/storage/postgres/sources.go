package postgres

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"NewsDesk/internal/domain"
)

var sourceColumns = []string{
	"id", "name", "url", "type", "is_active",
	"last_fetched_at", "last_fetch_status", "last_fetch_message", "last_fetch_error", "last_fetch_saved_articles",
	"created_at", "updated_at",
}

func scanSource(row rowScanner) (domain.Source, error) {
	var (
		src                   domain.Source
		fetchedAt             sql.NullTime
		status, message, ferr sql.NullString
		saved                 sql.NullInt64
	)
	if err := row.Scan(&src.ID, &src.Name, &src.URL, &src.Type, &src.IsActive,
		&fetchedAt, &status, &message, &ferr, &saved,
		&src.CreatedAt, &src.UpdatedAt); err != nil {
		return domain.Source{}, err
	}
	src.FetchStatus = domain.FetchStatus{
		LastFetchedAt:    timePtr(fetchedAt),
		LastFetchStatus:  domain.FetchOutcome(status.String),
		LastFetchMessage: message.String,
		LastFetchError:   ferr.String,
	}
	if saved.Valid {
		n := int(saved.Int64)
		src.FetchStatus.LastFetchSavedArticles = &n
	}
	return src, nil
}

// CreateSource inserts src with a fresh id.
func (s *Store) CreateSource(ctx context.Context, src domain.Source) (domain.Source, error) {
	now := s.now().UTC()
	src.ID = newID()
	src.CreatedAt, src.UpdatedAt = now, now

	insert := psql.Insert("sources").
		Columns("id", "name", "url", "type", "is_active", "created_at", "updated_at").
		Values(src.ID, src.Name, src.URL, src.Type, src.IsActive, src.CreatedAt, src.UpdatedAt)
	if _, err := s.exec(ctx, insert, "insert source"); err != nil {
		return domain.Source{}, err
	}
	return src, nil
}

// GetSource returns the source or domain.ErrNotFound.
func (s *Store) GetSource(ctx context.Context, id string) (domain.Source, error) {
	row, err := s.queryRow(ctx, psql.Select(sourceColumns...).From("sources").Where(sq.Eq{"id": id}), "get source")
	if err != nil {
		return domain.Source{}, err
	}
	src, err := scanSource(row)
	if err != nil {
		return domain.Source{}, mapErr(err, "source "+id)
	}
	return src, nil
}

// ListSources returns sources newest first.
func (s *Store) ListSources(ctx context.Context, filter domain.SourceFilter) ([]domain.Source, error) {
	rows, err := s.query(ctx, sourceListQuery(filter), "list sources")
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSource)
}

func sourceListQuery(filter domain.SourceFilter) sq.SelectBuilder {
	q := psql.Select(sourceColumns...).From("sources").OrderBy("created_at DESC", "name")
	if filter.ActiveOnly {
		q = q.Where(sq.Eq{"is_active": true})
	}
	return q
}

// UpdateSource replaces the editable fields of the stored source.
func (s *Store) UpdateSource(ctx context.Context, src domain.Source) (domain.Source, error) {
	update := psql.Update("sources").
		Set("name", src.Name).
		Set("url", src.URL).
		Set("type", src.Type).
		Set("is_active", src.IsActive).
		Set("updated_at", s.now().UTC()).
		Where(sq.Eq{"id": src.ID})
	n, err := s.exec(ctx, update, "update source")
	if err != nil {
		return domain.Source{}, err
	}
	if n == 0 {
		return domain.Source{}, fmt.Errorf("source %s: %w", src.ID, domain.ErrNotFound)
	}
	return s.GetSource(ctx, src.ID)
}

// DeleteSource removes the source; articles are left in place.
func (s *Store) DeleteSource(ctx context.Context, id string) error {
	n, err := s.exec(ctx, psql.Delete("sources").Where(sq.Eq{"id": id}), "delete source")
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("source %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// UpdateFetchStatus overwrites the fetch status columns.
func (s *Store) UpdateFetchStatus(ctx context.Context, id string, status domain.FetchStatus) error {
	var saved sql.NullInt64
	if status.LastFetchSavedArticles != nil {
		saved = sql.NullInt64{Int64: int64(*status.LastFetchSavedArticles), Valid: true}
	}
	update := psql.Update("sources").
		Set("last_fetched_at", nullTime(status.LastFetchedAt)).
		Set("last_fetch_status", nullString(string(status.LastFetchStatus))).
		Set("last_fetch_message", nullString(status.LastFetchMessage)).
		Set("last_fetch_error", nullString(status.LastFetchError)).
		Set("last_fetch_saved_articles", saved).
		Set("updated_at", s.now().UTC()).
		Where(sq.Eq{"id": id})
	n, err := s.exec(ctx, update, "update fetch status")
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("source %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

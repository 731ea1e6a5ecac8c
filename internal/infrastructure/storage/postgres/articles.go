package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"NewsDesk/internal/domain"
)

var articleColumns = []string{
	"id", "title", "link", "guid", "source_name", "published_date", "meta_description", "fetched_at",
	"categorization_status", "news_category", "tech_category", "rationale", "categorized_at", "is_training_data",
}

func scanArticle(row rowScanner) (domain.Article, error) {
	var (
		a                          domain.Article
		guid, desc, news, tech, rt sql.NullString
		published, categorizedAt   sql.NullTime
	)
	if err := row.Scan(&a.ID, &a.Title, &a.Link, &guid, &a.SourceName, &published, &desc, &a.FetchedAt,
		&a.Categorization.Status, &news, &tech, &rt, &categorizedAt, &a.Categorization.IsTrainingData); err != nil {
		return domain.Article{}, err
	}
	a.GUID = guid.String
	a.MetaDescription = desc.String
	a.PublishedDate = timePtr(published)
	a.Categorization.Categories = domain.Categories{News: domain.NewsCategory(news.String), Tech: domain.TechCategory(tech.String)}
	a.Categorization.Rationale = rt.String
	a.Categorization.CategorizedAt = timePtr(categorizedAt)
	return a, nil
}

// ExistsByLinkOrGUID reports whether an article with link, or with a
// non-empty guid, is stored.
func (s *Store) ExistsByLinkOrGUID(ctx context.Context, link, guid string) (bool, error) {
	row, err := s.queryRow(ctx, existsQuery(link, guid), "check article")
	if err != nil {
		return false, err
	}
	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, mapErr(err, "check article")
	}
	return true, nil
}

func existsQuery(link, guid string) sq.SelectBuilder {
	match := sq.Or{sq.Eq{"link": link}}
	if guid != "" {
		match = append(match, sq.Eq{"guid": guid})
	}
	return psql.Select("1").From("articles").Where(match).Limit(1)
}

// InsertArticle stores a new article. Link or guid collisions yield
// domain.ErrDuplicate.
func (s *Store) InsertArticle(ctx context.Context, a domain.Article) (domain.Article, error) {
	a.ID = newID()
	c := a.Categorization
	insert := psql.Insert("articles").Columns(articleColumns...).Values(
		a.ID, a.Title, a.Link, nullString(a.GUID), a.SourceName, nullTime(a.PublishedDate), nullString(a.MetaDescription), a.FetchedAt,
		c.Status, nullString(string(c.Categories.News)), nullString(string(c.Categories.Tech)), nullString(c.Rationale),
		nullTime(c.CategorizedAt), c.IsTrainingData,
	)
	if _, err := s.exec(ctx, insert, "insert article"); err != nil {
		return domain.Article{}, err
	}
	return a, nil
}

// GetArticle returns the article or domain.ErrNotFound.
func (s *Store) GetArticle(ctx context.Context, id string) (domain.Article, error) {
	row, err := s.queryRow(ctx, psql.Select(articleColumns...).From("articles").Where(sq.Eq{"id": id}), "get article")
	if err != nil {
		return domain.Article{}, err
	}
	a, err := scanArticle(row)
	if err != nil {
		return domain.Article{}, mapErr(err, "article "+id)
	}
	return a, nil
}

// articleWhere translates the filter into predicates; nil means no filter.
func articleWhere(f domain.ArticleFilter) sq.And {
	var where sq.And
	if f.SourceName != "" {
		where = append(where, sq.Eq{"source_name": f.SourceName})
	}
	if f.Status != "" {
		where = append(where, sq.Eq{"categorization_status": f.Status})
	}
	if f.Category != "" {
		where = append(where, sq.Or{sq.Eq{"news_category": f.Category}, sq.Eq{"tech_category": f.Category}})
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		where = append(where, sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"meta_description": pattern},
			sq.ILike{"source_name": pattern},
		})
	}
	if f.PublishedFrom != nil {
		where = append(where, sq.GtOrEq{"published_date": *f.PublishedFrom})
	}
	if f.PublishedTo != nil {
		where = append(where, sq.LtOrEq{"published_date": *f.PublishedTo})
	}
	return where
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func articleListQuery(f domain.ArticleFilter) sq.SelectBuilder {
	q := psql.Select(articleColumns...).From("articles").OrderBy("fetched_at DESC", "id")
	if where := articleWhere(f); len(where) > 0 {
		q = q.Where(where)
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return q
}

func articleCountQuery(f domain.ArticleFilter) sq.SelectBuilder {
	q := psql.Select("COUNT(*)").From("articles")
	if where := articleWhere(f); len(where) > 0 {
		q = q.Where(where)
	}
	return q
}

// ListArticles returns one page newest fetched first and the total match count.
func (s *Store) ListArticles(ctx context.Context, f domain.ArticleFilter) ([]domain.Article, int, error) {
	row, err := s.queryRow(ctx, articleCountQuery(f), "count articles")
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := row.Scan(&total); err != nil {
		return nil, 0, mapErr(err, "count articles")
	}

	rows, err := s.query(ctx, articleListQuery(f), "list articles")
	if err != nil {
		return nil, 0, err
	}
	articles, err := collect(rows, scanArticle)
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

func pendingQuery(limit int) sq.SelectBuilder {
	return psql.Select(articleColumns...).From("articles").
		Where(sq.Eq{"categorization_status": domain.CategorizationPending}).
		OrderBy("published_date DESC NULLS LAST", "fetched_at DESC").
		Limit(uint64(max(limit, 0)))
}

// ListPending returns up to limit pending articles, most recently published first.
func (s *Store) ListPending(ctx context.Context, limit int) ([]domain.Article, error) {
	rows, err := s.query(ctx, pendingQuery(limit), "list pending")
	if err != nil {
		return nil, err
	}
	return collect(rows, scanArticle)
}

// MarkCategorization sets the status on every listed article.
func (s *Store) MarkCategorization(ctx context.Context, ids []string, status domain.CategorizationStatus) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.exec(ctx, psql.Update("articles").Set("categorization_status", status).Where(sq.Eq{"id": ids}), "mark categorization")
	return err
}

// SaveCategorization overwrites the categorization columns.
func (s *Store) SaveCategorization(ctx context.Context, id string, c domain.Categorization) error {
	update := psql.Update("articles").
		Set("categorization_status", c.Status).
		Set("news_category", nullString(string(c.Categories.News))).
		Set("tech_category", nullString(string(c.Categories.Tech))).
		Set("rationale", nullString(c.Rationale)).
		Set("categorized_at", nullTime(c.CategorizedAt)).
		Set("is_training_data", c.IsTrainingData).
		Where(sq.Eq{"id": id})
	n, err := s.exec(ctx, update, "save categorization")
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteArticles removes the ids that exist and returns them.
func (s *Store) DeleteArticles(ctx context.Context, ids []string) ([]domain.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	del := psql.Delete("articles").Where(sq.Eq{"id": ids}).Suffix("RETURNING " + strings.Join(articleColumns, ", "))
	rows, err := s.query(ctx, del, "delete articles")
	if err != nil {
		return nil, err
	}
	return collect(rows, scanArticle)
}

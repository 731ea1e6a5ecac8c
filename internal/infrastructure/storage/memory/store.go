package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

// Store keeps every collection in process memory. It enforces the same
// unique constraints as the database adapters.
type Store struct {
	mu          sync.RWMutex
	sources     map[string]domain.Source
	articles    map[string]domain.Article
	fetchLogs   map[string]domain.FetchRunLog
	catLogs     map[string]domain.CategorizationRunLog
	corrections []domain.CategoryCorrection
	now         func() time.Time
}

var _ ports.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		sources:   map[string]domain.Source{},
		articles:  map[string]domain.Article{},
		fetchLogs: map[string]domain.FetchRunLog{},
		catLogs:   map[string]domain.CategorizationRunLog{},
		now:       time.Now,
	}
}

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }

func newID() string { return uuid.NewString() }

// CreateSource inserts src with a fresh id.
func (s *Store) CreateSource(_ context.Context, src domain.Source) (domain.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSourceUnique(src, ""); err != nil {
		return domain.Source{}, err
	}
	now := s.now()
	src.ID = newID()
	src.CreatedAt, src.UpdatedAt = now, now
	s.sources[src.ID] = src
	return src, nil
}

func (s *Store) checkSourceUnique(src domain.Source, exclude string) error {
	for id, other := range s.sources {
		if id == exclude {
			continue
		}
		if other.Name == src.Name || other.URL == src.URL {
			return fmt.Errorf("source %q: %w", src.Name, domain.ErrDuplicate)
		}
	}
	return nil
}

// GetSource returns the source or domain.ErrNotFound.
func (s *Store) GetSource(_ context.Context, id string) (domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src, ok := s.sources[id]
	if !ok {
		return domain.Source{}, fmt.Errorf("source %s: %w", id, domain.ErrNotFound)
	}
	return src, nil
}

// ListSources returns sources newest first.
func (s *Store) ListSources(_ context.Context, filter domain.SourceFilter) ([]domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Source, 0, len(s.sources))
	for _, src := range s.sources {
		if filter.ActiveOnly && !src.IsActive {
			continue
		}
		out = append(out, src)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateSource replaces the stored source.
func (s *Store) UpdateSource(_ context.Context, src domain.Source) (domain.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sources[src.ID]
	if !ok {
		return domain.Source{}, fmt.Errorf("source %s: %w", src.ID, domain.ErrNotFound)
	}
	if err := s.checkSourceUnique(src, src.ID); err != nil {
		return domain.Source{}, err
	}
	src.CreatedAt = current.CreatedAt
	src.UpdatedAt = s.now()
	s.sources[src.ID] = src
	return src, nil
}

// DeleteSource removes the source; articles are left in place.
func (s *Store) DeleteSource(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sources[id]; !ok {
		return fmt.Errorf("source %s: %w", id, domain.ErrNotFound)
	}
	delete(s.sources, id)
	return nil
}

// UpdateFetchStatus overwrites the fetch status sub-record.
func (s *Store) UpdateFetchStatus(_ context.Context, id string, status domain.FetchStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.sources[id]
	if !ok {
		return fmt.Errorf("source %s: %w", id, domain.ErrNotFound)
	}
	src.FetchStatus = status
	src.UpdatedAt = s.now()
	s.sources[id] = src
	return nil
}

// ExistsByLinkOrGUID reports whether the link, or the non-empty guid, is stored.
func (s *Store) ExistsByLinkOrGUID(_ context.Context, link, guid string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.articles {
		if a.Link == link || (guid != "" && a.GUID == guid) {
			return true, nil
		}
	}
	return false, nil
}

// InsertArticle stores a new article, rejecting duplicate link or guid.
func (s *Store) InsertArticle(_ context.Context, article domain.Article) (domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.articles {
		if a.Link == article.Link || (article.GUID != "" && a.GUID == article.GUID) {
			return domain.Article{}, fmt.Errorf("article %q: %w", article.Link, domain.ErrDuplicate)
		}
	}
	article.ID = newID()
	s.articles[article.ID] = article
	return article, nil
}

// GetArticle returns the article or domain.ErrNotFound.
func (s *Store) GetArticle(_ context.Context, id string) (domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.articles[id]
	if !ok {
		return domain.Article{}, fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
	}
	return a, nil
}

// ListArticles returns a page ordered by fetchedAt desc and the total match count.
func (s *Store) ListArticles(_ context.Context, filter domain.ArticleFilter) ([]domain.Article, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.Article
	for _, a := range s.articles {
		if filter.Matches(a) {
			matched = append(matched, a)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].FetchedAt.Equal(matched[j].FetchedAt) {
			return matched[i].Link < matched[j].Link
		}
		return matched[i].FetchedAt.After(matched[j].FetchedAt)
	})
	return page(matched, filter.Offset, filter.Limit), len(matched), nil
}

// ListPending returns pending articles, newest published first.
func (s *Store) ListPending(_ context.Context, limit int) ([]domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []domain.Article
	for _, a := range s.articles {
		if a.Categorization.Status == domain.CategorizationPending {
			pending = append(pending, a)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return publishedAfter(pending[i], pending[j])
	})
	return page(pending, 0, limit), nil
}

func publishedAfter(a, b domain.Article) bool {
	switch {
	case a.PublishedDate == nil && b.PublishedDate == nil:
		return a.Link < b.Link
	case a.PublishedDate == nil:
		return false
	case b.PublishedDate == nil:
		return true
	}
	return a.PublishedDate.After(*b.PublishedDate)
}

// MarkCategorization sets the status on every listed article.
func (s *Store) MarkCategorization(_ context.Context, ids []string, status domain.CategorizationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		a, ok := s.articles[id]
		if !ok {
			continue
		}
		a.Categorization.Status = status
		s.articles[id] = a
	}
	return nil
}

// SaveCategorization overwrites the categorization sub-record.
func (s *Store) SaveCategorization(_ context.Context, id string, c domain.Categorization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.articles[id]
	if !ok {
		return fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
	}
	a.Categorization = c
	s.articles[id] = a
	return nil
}

// DeleteArticles removes the ids that exist and returns them.
func (s *Store) DeleteArticles(_ context.Context, ids []string) ([]domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted []domain.Article
	for _, id := range ids {
		if a, ok := s.articles[id]; ok {
			deleted = append(deleted, a)
			delete(s.articles, id)
		}
	}
	return deleted, nil
}

// CreateFetchLog stores a new run log; jobId is unique.
func (s *Store) CreateFetchLog(_ context.Context, log *domain.FetchRunLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.fetchLogs {
		if l.JobID == log.JobID {
			return fmt.Errorf("fetch log %s: %w", log.JobID, domain.ErrDuplicate)
		}
	}
	log.ID = newID()
	s.fetchLogs[log.ID] = cloneFetchLog(*log)
	return nil
}

// SaveFetchLog replaces the stored run log.
func (s *Store) SaveFetchLog(_ context.Context, log domain.FetchRunLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.fetchLogs[log.ID]; !ok {
		return fmt.Errorf("fetch log %s: %w", log.ID, domain.ErrNotFound)
	}
	s.fetchLogs[log.ID] = cloneFetchLog(log)
	return nil
}

func cloneFetchLog(l domain.FetchRunLog) domain.FetchRunLog {
	l.SourceResults = slices.Clone(l.SourceResults)
	l.JobErrors = slices.Clone(l.JobErrors)
	return l
}

// ListFetchLogs returns matching logs, newest first.
func (s *Store) ListFetchLogs(_ context.Context, filter domain.FetchLogFilter) ([]domain.FetchRunLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.FetchRunLog
	for _, l := range s.fetchLogs {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.JobType != "" && l.JobType != filter.JobType {
			continue
		}
		if !filter.Since.IsZero() && l.StartTime.Before(filter.Since) {
			continue
		}
		out = append(out, cloneFetchLog(l))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return page(out, 0, filter.Limit), nil
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
func (s *Store) DeleteFetchLogsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, l := range s.fetchLogs {
		if l.StartTime.Before(cutoff) {
			delete(s.fetchLogs, id)
			n++
		}
	}
	return n, nil
}

// CreateCategorizationLog stores a new categorization run log.
func (s *Store) CreateCategorizationLog(_ context.Context, log *domain.CategorizationRunLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.ID = newID()
	s.catLogs[log.ID] = cloneCatLog(*log)
	return nil
}

// SaveCategorizationLog replaces the stored categorization run log.
func (s *Store) SaveCategorizationLog(_ context.Context, log domain.CategorizationRunLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.catLogs[log.ID]; !ok {
		return fmt.Errorf("categorization log %s: %w", log.ID, domain.ErrNotFound)
	}
	s.catLogs[log.ID] = cloneCatLog(log)
	return nil
}

func cloneCatLog(l domain.CategorizationRunLog) domain.CategorizationRunLog {
	l.ArticleResults = slices.Clone(l.ArticleResults)
	l.ProcessingErrors = slices.Clone(l.ProcessingErrors)
	news := make(map[domain.NewsCategory]int, len(l.NewsCategoryDistribution))
	for k, v := range l.NewsCategoryDistribution {
		news[k] = v
	}
	tech := make(map[domain.TechCategory]int, len(l.TechCategoryDistribution))
	for k, v := range l.TechCategoryDistribution {
		tech[k] = v
	}
	l.NewsCategoryDistribution, l.TechCategoryDistribution = news, tech
	return l
}

// GetCategorizationLog returns the log or domain.ErrNotFound.
func (s *Store) GetCategorizationLog(_ context.Context, id string) (domain.CategorizationRunLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.catLogs[id]
	if !ok {
		return domain.CategorizationRunLog{}, fmt.Errorf("categorization log %s: %w", id, domain.ErrNotFound)
	}
	return cloneCatLog(l), nil
}

// ListCategorizationLogs returns one page, newest first, and the total.
func (s *Store) ListCategorizationLogs(_ context.Context, filter domain.CategorizationLogFilter) ([]domain.CategorizationRunLog, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.CategorizationRunLog
	for _, l := range s.catLogs {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.TriggeredBy != "" && l.TriggeredBy != filter.TriggeredBy {
			continue
		}
		if !filter.Since.IsZero() && l.StartTime.Before(filter.Since) {
			continue
		}
		out = append(out, cloneCatLog(l))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return page(out, filter.Offset, filter.Limit), len(out), nil
}

// CategorizationCosts totals usage for runs started at or after since.
func (s *Store) CategorizationCosts(_ context.Context, since time.Time) (domain.CategorizationCostStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st domain.CategorizationCostStats
	for _, l := range s.catLogs {
		if l.StartTime.Before(since) {
			continue
		}
		st.Runs++
		st.TotalCostUSD += l.Usage.EstimatedCostUSD
		st.TotalTokens += l.Usage.TotalTokens
		st.TotalArticles += l.TotalArticlesSuccessful
	}
	return st, nil
}

// DeleteCategorizationLogsBefore removes runs started before cutoff.
func (s *Store) DeleteCategorizationLogsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, l := range s.catLogs {
		if l.StartTime.Before(cutoff) {
			delete(s.catLogs, id)
			n++
		}
	}
	return n, nil
}

// AddCorrection appends a reviewer override.
func (s *Store) AddCorrection(_ context.Context, c domain.CategoryCorrection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = newID()
	s.corrections = append(s.corrections, c)
	return nil
}

// ListCorrections returns corrections newest first.
func (s *Store) ListCorrections(_ context.Context) ([]domain.CategoryCorrection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.corrections)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CorrectedAt.After(out[j].CorrectedAt) })
	return out, nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

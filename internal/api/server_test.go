package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"NewsDesk/internal/config"
	"NewsDesk/internal/domain"
	"NewsDesk/internal/infrastructure/feeds"
	"NewsDesk/internal/infrastructure/storage/memory"
	"NewsDesk/internal/processor"
	"NewsDesk/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestRouter(t *testing.T, token string) (*gin.Engine, *memory.Store) {
	t.Helper()
	store := memory.New()
	registry := processor.NewRegistry(feeds.NewRSSProcessor(nil, config.FetchConfig{}, nil))
	fetcher := usecase.NewFetchOrchestrator(usecase.FetchDeps{
		Sources:  store,
		Logs:     store,
		Registry: registry,
		Saver:    usecase.NewSaver(store, nil, nil),
		Limits:   usecase.NewLimitPolicy(10),
	})
	router := NewRouter(Deps{
		Sources:    usecase.NewSourceService(store, nil),
		Fetcher:    fetcher,
		Categorize: usecase.NewCategorizationJob(usecase.CategorizeDeps{Articles: store, Logs: store}),
		Review:     usecase.NewReviewService(usecase.ReviewDeps{Articles: store, Corrections: store}),
		Logs:       usecase.NewLogService(store, store, nil),
		APIToken:   token,
	})
	return router, store
}

func do(t *testing.T, router http.Handler, method, path string, body any, header ...string) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec.Code, env
}

func TestSourceRoutes(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, "")

	code, env := do(t, router, http.MethodPost, "/api/sources", map[string]any{"name": "Blog", "url": "https://b.example/rss", "type": "rss"})
	if code != http.StatusOK || !env.Success {
		t.Fatalf("create: %d %+v", code, env)
	}
	var src domain.Source
	if err := json.Unmarshal(env.Data, &src); err != nil || src.ID == "" || !src.IsActive {
		t.Fatalf("unexpected source %s (%v)", env.Data, err)
	}

	code, env = do(t, router, http.MethodPost, "/api/sources", map[string]any{"name": "Blog", "url": "https://c.example/rss", "type": "rss"})
	if code != http.StatusConflict || env.Success || env.Error == "" {
		t.Fatalf("duplicate: %d %+v", code, env)
	}

	code, _ = do(t, router, http.MethodPost, "/api/sources", map[string]any{"name": "X", "url": "https://x.example"})
	if code != http.StatusBadRequest {
		t.Fatalf("missing type: %d", code)
	}

	code, env = do(t, router, http.MethodPatch, "/api/sources/"+src.ID, map[string]any{"isActive": false})
	if code != http.StatusOK {
		t.Fatalf("patch: %d %+v", code, env)
	}

	code, env = do(t, router, http.MethodGet, "/api/sources", nil)
	var list []domain.Source
	_ = json.Unmarshal(env.Data, &list)
	if code != http.StatusOK || len(list) != 1 || list[0].IsActive {
		t.Fatalf("list: %d %s", code, env.Data)
	}

	if code, _ = do(t, router, http.MethodDelete, "/api/sources/"+src.ID, nil); code != http.StatusOK {
		t.Fatalf("delete: %d", code)
	}
	if code, _ = do(t, router, http.MethodGet, "/api/sources/"+src.ID, nil); code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", code)
	}
}

func TestFetchRoutes(t *testing.T) {
	t.Parallel()

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>f</title>`+
			`<item><title>One story</title><link>https://f.example/1</link></item>`+
			`<item><title>Two story</title><link>https://f.example/2</link></item></channel></rss>`)
	}))
	t.Cleanup(feed.Close)

	router, store := newTestRouter(t, "")
	src, err := store.CreateSource(t.Context(), domain.Source{Name: "Feed", URL: feed.URL, Type: domain.SourceRSS, IsActive: true})
	if err != nil {
		t.Fatalf("create source: %v", err)
	}

	code, env := do(t, router, http.MethodPost, "/api/jobs/article-fetch/bulk", nil)
	if code != http.StatusOK {
		t.Fatalf("bulk: %d %+v", code, env)
	}
	var result domain.FetchJobResult
	_ = json.Unmarshal(env.Data, &result)
	if result.TotalArticlesSaved != 2 || result.SuccessfulSources != 1 {
		t.Fatalf("unexpected bulk result %s", env.Data)
	}

	code, env = do(t, router, http.MethodPost, "/api/jobs/article-fetch/single", map[string]any{"sourceId": src.ID, "maxArticles": 1})
	_ = json.Unmarshal(env.Data, &result)
	if code != http.StatusOK || result.TotalArticlesSaved != 0 || result.TotalArticlesFound != 2 {
		t.Fatalf("single: %d %s", code, env.Data)
	}

	if code, _ = do(t, router, http.MethodPost, "/api/jobs/article-fetch/single", map[string]any{"sourceId": "nope"}); code != http.StatusNotFound {
		t.Fatalf("unknown source: %d", code)
	}
	if code, _ = do(t, router, http.MethodPost, "/api/jobs/article-fetch/single", map[string]any{}); code != http.StatusBadRequest {
		t.Fatalf("missing sourceId: %d", code)
	}

	code, env = do(t, router, http.MethodGet, "/api/jobs/article-fetch/logs?jobType=bulk", nil)
	var report usecase.FetchLogReport
	_ = json.Unmarshal(env.Data, &report)
	if code != http.StatusOK || len(report.Logs) != 1 || report.Stats.TotalJobs != 2 {
		t.Fatalf("logs: %d %s", code, env.Data)
	}
	if code, _ = do(t, router, http.MethodGet, "/api/jobs/article-fetch/logs?status=weird", nil); code != http.StatusBadRequest {
		t.Fatalf("bad status filter: %d", code)
	}

	code, env = do(t, router, http.MethodGet, "/api/articles?status=pending&limit=1", nil)
	var page usecase.ArticlePage
	_ = json.Unmarshal(env.Data, &page)
	if code != http.StatusOK || page.Total != 2 || len(page.Articles) != 1 {
		t.Fatalf("articles: %d %s", code, env.Data)
	}
}

func TestArticleReviewRoutes(t *testing.T) {
	t.Parallel()

	router, store := newTestRouter(t, "")
	a, err := store.InsertArticle(t.Context(), domain.Article{
		Title:      "Launch",
		Link:       "https://r.example/1",
		SourceName: "Lab",
		Categorization: domain.Categorization{
			Status:     domain.CategorizationCompleted,
			Categories: domain.Categories{News: domain.NewsLowerPriority, Tech: domain.TechProducts},
		},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	code, env := do(t, router, http.MethodPatch, "/api/articles/"+a.ID, map[string]any{"newsCategory": "Top Story Candidate"})
	if code != http.StatusOK {
		t.Fatalf("patch: %d %+v", code, env)
	}
	if code, _ = do(t, router, http.MethodPatch, "/api/articles/"+a.ID, map[string]any{"techCategory": "Gadgets"}); code != http.StatusBadRequest {
		t.Fatalf("invalid label: %d", code)
	}

	code, env = do(t, router, http.MethodGet, "/api/categorization-training/corrections-analysis", nil)
	var analysis domain.CorrectionAnalysis
	_ = json.Unmarshal(env.Data, &analysis)
	if code != http.StatusOK || analysis.TotalCorrections != 1 {
		t.Fatalf("analysis: %d %s", code, env.Data)
	}

	code, env = do(t, router, http.MethodPost, "/api/articles/bulk-delete", map[string]any{"ids": []string{a.ID}})
	if code != http.StatusOK || string(env.Data) != `{"deletedCount":1}` {
		t.Fatalf("bulk delete: %d %s", code, env.Data)
	}
	if code, _ = do(t, router, http.MethodDelete, "/api/articles/"+a.ID, nil); code != http.StatusNotFound {
		t.Fatalf("delete missing: %d", code)
	}
}

func TestCategorizeWithoutServiceIsUnavailable(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, "")
	code, env := do(t, router, http.MethodPost, "/api/jobs/categorize-articles", map[string]any{"articleCount": 5})
	if code != http.StatusServiceUnavailable || env.Success {
		t.Fatalf("categorize: %d %+v", code, env)
	}
}

func TestCategorizationLogRoutes(t *testing.T) {
	t.Parallel()

	router, store := newTestRouter(t, "")
	l := domain.NewCategorizationRunLog(3, domain.TriggerManual, "gpt-4o-mini", t0())
	if err := store.CreateCategorizationLog(t.Context(), &l); err != nil {
		t.Fatalf("create log: %v", err)
	}

	code, env := do(t, router, http.MethodGet, "/api/categorization-logs?page=1&limit=10&triggeredBy=manual", nil)
	var page usecase.CategorizationLogPage
	_ = json.Unmarshal(env.Data, &page)
	if code != http.StatusOK || page.Total != 1 {
		t.Fatalf("list: %d %s", code, env.Data)
	}
	if code, _ = do(t, router, http.MethodGet, "/api/categorization-logs/"+l.ID, nil); code != http.StatusOK {
		t.Fatalf("get: %d", code)
	}
	if code, _ = do(t, router, http.MethodGet, "/api/categorization-logs/analytics?days=7", nil); code != http.StatusOK {
		t.Fatalf("analytics: %d", code)
	}
	if code, _ = do(t, router, http.MethodGet, "/api/categorization-logs?page=x", nil); code != http.StatusBadRequest {
		t.Fatalf("bad page: %d", code)
	}
	code, env = do(t, router, http.MethodDelete, "/api/categorization-logs", map[string]any{"olderThanDays": 1})
	if code != http.StatusOK || string(env.Data) != `{"deletedCount":1}` {
		t.Fatalf("cleanup: %d %s", code, env.Data)
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, "s3cret")

	if code, _ := do(t, router, http.MethodGet, "/api/health", nil); code != http.StatusOK {
		t.Fatalf("health must stay open: %d", code)
	}
	if code, _ := do(t, router, http.MethodGet, "/api/sources", nil); code != http.StatusUnauthorized {
		t.Fatalf("missing token: %d", code)
	}
	if code, _ := do(t, router, http.MethodGet, "/api/sources", nil, "Authorization", "Bearer wrong"); code != http.StatusUnauthorized {
		t.Fatalf("wrong token: %d", code)
	}
	if code, _ := do(t, router, http.MethodGet, "/api/sources", nil, "Authorization", "Bearer s3cret"); code != http.StatusOK {
		t.Fatalf("valid token: %d", code)
	}
}

func t0() time.Time {
	return time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
}

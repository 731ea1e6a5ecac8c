package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"NewsDesk/internal/logging"
	"NewsDesk/internal/usecase"
)

// Deps are the services exposed over HTTP.
type Deps struct {
	Sources    *usecase.SourceService
	Fetcher    *usecase.FetchOrchestrator
	Categorize *usecase.CategorizationJob
	Review     *usecase.ReviewService
	Logs       *usecase.LogService
	// Metrics serves /metrics when set.
	Metrics http.Handler
	// APIToken, when set, is required as a bearer token on /api routes other
	// than health.
	APIToken string
	Logger   *slog.Logger
}

type handlers struct {
	Deps
	logger *slog.Logger
}

// NewRouter constructs a Gin engine with every route registered.
func NewRouter(deps Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &handlers{Deps: deps, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), logging.GinMiddleware(logger.With("component", "http")))

	r.GET("/api/health", h.health)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	api := r.Group("/api", bearerAuth(deps.APIToken))

	api.GET("/sources", h.listSources)
	api.POST("/sources", h.createSource)
	api.GET("/sources/:id", h.getSource)
	api.PATCH("/sources/:id", h.updateSource)
	api.DELETE("/sources/:id", h.deleteSource)

	api.POST("/jobs/article-fetch/bulk", h.fetchBulk)
	api.POST("/jobs/article-fetch/single", h.fetchSingle)
	api.GET("/jobs/article-fetch/logs", h.fetchLogs)
	api.DELETE("/jobs/article-fetch/logs", h.cleanupFetchLogs)
	api.POST("/jobs/categorize-articles", h.categorize)

	api.GET("/categorization-logs", h.categorizationLogs)
	api.GET("/categorization-logs/analytics", h.categorizationAnalytics)
	api.GET("/categorization-logs/:id", h.categorizationLog)
	api.DELETE("/categorization-logs", h.cleanupCategorizationLogs)

	api.GET("/articles", h.listArticles)
	api.PATCH("/articles/:id", h.updateArticle)
	api.DELETE("/articles/:id", h.deleteArticle)
	api.POST("/articles/bulk-delete", h.bulkDeleteArticles)

	api.GET("/categorization-training/corrections-analysis", h.correctionsAnalysis)

	return r
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func bearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authentication required"})
			return
		}
		c.Next()
	}
}

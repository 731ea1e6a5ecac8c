package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/usecase"
)

type fetchRequest struct {
	SourceID    string `json:"sourceId"`
	MaxArticles int    `json:"maxArticles"`
}

// runContext keeps request values but outlives a disconnecting client, so a
// started run always finishes and persists its log.
func runContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func (h *handlers) fetchBulk(c *gin.Context) {
	var req fetchRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	result, err := h.Fetcher.FetchAll(runContext(c), req.MaxArticles)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

func (h *handlers) fetchSingle(c *gin.Context) {
	var req fetchRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	if req.SourceID == "" {
		badRequest(c, "sourceId is required")
		return
	}
	result, err := h.Fetcher.FetchSource(runContext(c), req.SourceID, req.MaxArticles)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

type categorizeRequest struct {
	ArticleCount int `json:"articleCount"`
}

func (h *handlers) categorize(c *gin.Context) {
	var req categorizeRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	runLog, err := h.Categorize.Run(runContext(c), req.ArticleCount, domain.TriggerAPI)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, runLog)
}

type cleanupRequest struct {
	OlderThanDays int `json:"olderThanDays"`
}

func (h *handlers) cleanup(c *gin.Context, kind usecase.LogKind) {
	var req cleanupRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	n, err := h.Logs.Cleanup(c.Request.Context(), kind, req.OlderThanDays)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"deletedCount": n})
}

func (h *handlers) cleanupFetchLogs(c *gin.Context) { h.cleanup(c, usecase.LogKindFetch) }

func (h *handlers) cleanupCategorizationLogs(c *gin.Context) {
	h.cleanup(c, usecase.LogKindCategorization)
}

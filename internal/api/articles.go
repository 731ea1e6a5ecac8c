package api

import (
	"github.com/gin-gonic/gin"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/usecase"
)

func (h *handlers) listArticles(c *gin.Context) {
	page, valid := intQuery(c, "page", 1)
	if !valid {
		return
	}
	limit, valid := intQuery(c, "limit", 0)
	if !valid {
		return
	}
	filter := domain.ArticleFilter{
		SourceName: c.Query("source"),
		Category:   c.Query("category"),
		Search:     c.Query("search"),
		Limit:      limit,
	}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseCategorizationStatus(raw)
		if err != nil {
			fail(c, err)
			return
		}
		filter.Status = status
	}
	if page > 1 && limit > 0 {
		filter.Offset = (page - 1) * limit
	}

	result, err := h.Review.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

func (h *handlers) updateArticle(c *gin.Context) {
	var in usecase.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}
	article, err := h.Review.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, article)
}

func (h *handlers) deleteArticle(c *gin.Context) {
	id := c.Param("id")
	if err := h.Review.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"id": id})
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

func (h *handlers) bulkDeleteArticles(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}
	n, err := h.Review.BulkDelete(c.Request.Context(), req.IDs)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"deletedCount": n})
}

func (h *handlers) correctionsAnalysis(c *gin.Context) {
	analysis, err := h.Review.CorrectionsAnalysis(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, analysis)
}

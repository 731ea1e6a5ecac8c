package api

import (
	"github.com/gin-gonic/gin"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/usecase"
)

func (h *handlers) listSources(c *gin.Context) {
	sources, err := h.Sources.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if sources == nil {
		sources = []domain.Source{}
	}
	ok(c, sources)
}

func (h *handlers) createSource(c *gin.Context) {
	var in usecase.SourceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}
	src, err := h.Sources.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, src)
}

func (h *handlers) getSource(c *gin.Context) {
	src, err := h.Sources.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, src)
}

func (h *handlers) updateSource(c *gin.Context) {
	var patch domain.SourcePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}
	src, err := h.Sources.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, src)
}

func (h *handlers) deleteSource(c *gin.Context) {
	id := c.Param("id")
	if err := h.Sources.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"id": id})
}

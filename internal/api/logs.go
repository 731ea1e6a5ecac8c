package api

import (
	"github.com/gin-gonic/gin"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/usecase"
)

func (h *handlers) fetchLogs(c *gin.Context) {
	limit, valid := intQuery(c, "limit", 0)
	if !valid {
		return
	}
	filter := domain.FetchLogFilter{Limit: limit}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseRunStatus(raw)
		if err != nil {
			fail(c, err)
			return
		}
		filter.Status = status
	}
	if raw := c.Query("jobType"); raw != "" {
		jobType, err := domain.ParseJobType(raw)
		if err != nil {
			fail(c, err)
			return
		}
		filter.JobType = jobType
	}

	report, err := h.Logs.FetchLogs(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, report)
}

func (h *handlers) categorizationLogs(c *gin.Context) {
	page, valid := intQuery(c, "page", 1)
	if !valid {
		return
	}
	limit, valid := intQuery(c, "limit", 0)
	if !valid {
		return
	}
	days, valid := intQuery(c, "days", 0)
	if !valid {
		return
	}
	q := usecase.CategorizationLogQuery{Page: page, Limit: limit, Days: days}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseCategorizationRunStatus(raw)
		if err != nil {
			fail(c, err)
			return
		}
		q.Status = status
	}
	if raw := c.Query("triggeredBy"); raw != "" {
		trigger, err := domain.ParseTrigger(raw)
		if err != nil {
			fail(c, err)
			return
		}
		q.TriggeredBy = trigger
	}

	result, err := h.Logs.CategorizationLogs(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

func (h *handlers) categorizationLog(c *gin.Context) {
	l, err := h.Logs.CategorizationLog(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, l)
}

func (h *handlers) categorizationAnalytics(c *gin.Context) {
	days, valid := intQuery(c, "days", 0)
	if !valid {
		return
	}
	analytics, err := h.Logs.Analytics(c.Request.Context(), days)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, analytics)
}

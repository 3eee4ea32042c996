package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bakchoddost/bakchoddost/internal/logstream"
	"github.com/bakchoddost/bakchoddost/internal/models"
	"github.com/bakchoddost/bakchoddost/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	svc  *service.AdminService
	logs logstream.Stream
}

func NewAdminHandler(svc *service.AdminService, logs logstream.Stream) *AdminHandler {
	return &AdminHandler{svc: svc, logs: logs}
}

// BackfillRequest configures a fit backfill job.
type BackfillRequest struct {
	BatchSize    int  `json:"batch_size"`
	RecomputeAll bool `json:"recompute_all"`
}

// ListUsers godoc
// @Summary List all users (admin only)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} service.UserWithRole
// @Failure 403 {object} ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// ListAuditLogs godoc
// @Summary List audit logs (admin only)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param user_id query string false "Filter by user ID"
// @Param limit query int false "Maximum entries (default 100, max 500)"
// @Success 200 {array} models.AuditLog
// @Failure 400 {object} ErrorResponse
// @Router /admin/audit-logs [get]
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	var userID *uuid.UUID
	if raw := c.Query("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid user_id"})
			return
		}
		userID = &id
	}

	logs, err := h.svc.ListAuditLogs(c.Request.Context(), userID, queryInt(c, "limit", 100))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// StartBackfill godoc
// @Summary Queue a max_friend_required backfill (admin only)
// @Description Fills in missing fit metadata, or recomputes it for every template with recompute_all
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body BackfillRequest false "Backfill options"
// @Success 202 {object} models.Job
// @Failure 400 {object} ErrorResponse
// @Router /admin/backfill [post]
func (h *AdminHandler) StartBackfill(c *gin.Context) {
	var req BackfillRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}
	}

	job, err := h.svc.StartBackfill(c.Request.Context(), service.BackfillRequest{
		BatchSize:    req.BatchSize,
		RecomputeAll: req.RecomputeAll,
	}, getUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, job)
}

// GetJob godoc
// @Summary Get a job by ID (admin only)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} models.Job
// @Failure 404 {object} ErrorResponse
// @Router /admin/jobs/{id} [get]
func (h *AdminHandler) GetJob(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	job, err := h.svc.GetJob(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// StreamJobLogs godoc
// @Summary Stream job progress via Server-Sent Events (admin only)
// @Description Sends stored logs first, then live lines until the job finishes
// @Tags admin
// @Security BearerAuth
// @Produce text/event-stream
// @Param id path string true "Job ID"
// @Success 200 {string} string "SSE stream"
// @Failure 404 {object} ErrorResponse
// @Router /admin/jobs/{id}/logs [get]
func (h *AdminHandler) StreamJobLogs(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	// Subscribe before reading the job so a Close that lands after the read
	// still reaches this stream.
	lines, cancel := h.logs.Subscribe(c.Request.Context(), id)
	defer cancel()

	job, err := h.svc.GetJob(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	writeEvent(c, "", job.Logs)
	if job.Status == models.JobStatusCompleted || job.Status == models.JobStatusFailed {
		writeEvent(c, "done", string(job.Status))
		return
	}

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case line, ok := <-lines:
			if !ok {
				writeEvent(c, "done", "stream ended")
				return
			}
			writeEvent(c, "", line)
		}
	}
}

// writeEvent writes one SSE event, one data field per line. Empty data is
// skipped.
func writeEvent(c *gin.Context, event, data string) {
	if data == "" {
		return
	}
	if event != "" {
		fmt.Fprintf(c.Writer, "event: %s\n", event)
	}
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(c.Writer, "data: %s\n", line)
	}
	fmt.Fprint(c.Writer, "\n")
	c.Writer.Flush()
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bakchoddost/bakchoddost/internal/models"
	"github.com/bakchoddost/bakchoddost/internal/poem"
	"github.com/bakchoddost/bakchoddost/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
		return
	}
	if errors.Is(err, poem.ErrNoTemplates) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "No templates available"})
		return
	}
	if errors.Is(err, service.ErrForbidden) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		return
	}
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationErr.Message})
		return
	}
	var conflictErr *service.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, ErrorResponse{Error: conflictErr.Message})
		return
	}
	slog.Error("unhandled service error", "error", err, "path", c.Request.URL.Path)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
}

func getUserID(c *gin.Context) uuid.UUID {
	user, exists := c.Get("user")
	if !exists {
		return uuid.Nil
	}
	return user.(*models.User).ID
}

// parseID reads the :id path parameter, replying 400 when it is malformed.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid ID"})
		return uuid.Nil, false
	}
	return id, true
}

// queryInt reads an integer query parameter, falling back to def.
func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

// HealthCheck godoc
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

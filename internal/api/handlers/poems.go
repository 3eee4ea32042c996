package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/bakchoddost/bakchoddost/internal/service"
	"github.com/bakchoddost/bakchoddost/internal/store"
	"github.com/gin-gonic/gin"
	"golang.org/x/text/unicode/norm"
)

// Name limits for generate requests.
const (
	MaxNameLength  = 60
	MaxFriendNames = 10
)

// PoemHandler serves generation, browsing, and template CRUD.
type PoemHandler struct {
	svc *service.TemplateService
}

// NewPoemHandler creates a new PoemHandler.
func NewPoemHandler(svc *service.TemplateService) *PoemHandler {
	return &PoemHandler{svc: svc}
}

// GenerateRequest names the user and their friends.
type GenerateRequest struct {
	UserName    string   `json:"userName"`
	FriendNames []string `json:"friendNames"`
}

// ValidateRequest carries template text to check.
type ValidateRequest struct {
	Text string `json:"text"`
}

// TemplateRequest creates or replaces a template.
type TemplateRequest struct {
	Text         string `json:"text" binding:"required"`
	Instructions string `json:"instructions"`
}

// cleanName NFC-normalizes and trims a name.
func cleanName(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// normalize cleans and bounds the names in a generate request. Blank friend
// names are dropped before the count is checked.
func (r *GenerateRequest) normalize() error {
	r.UserName = cleanName(r.UserName)
	if r.UserName == "" {
		return &service.ValidationError{Message: "userName is required"}
	}
	if utf8.RuneCountInString(r.UserName) > MaxNameLength {
		return &service.ValidationError{Message: fmt.Sprintf("userName must be at most %d characters", MaxNameLength)}
	}
	names := make([]string, 0, len(r.FriendNames))
	for i, name := range r.FriendNames {
		name = cleanName(name)
		if name == "" {
			continue
		}
		if utf8.RuneCountInString(name) > MaxNameLength {
			return &service.ValidationError{Message: fmt.Sprintf("friendNames[%d] must be at most %d characters", i, MaxNameLength)}
		}
		names = append(names, name)
	}
	if len(names) > MaxFriendNames {
		return &service.ValidationError{Message: fmt.Sprintf("at most %d friendNames are allowed", MaxFriendNames)}
	}
	r.FriendNames = names
	return nil
}

// Generate godoc
// @Summary Generate a poem
// @Description Picks a random template that fits the number of friend names and renders it
// @Tags poems
// @Accept json
// @Produce json
// @Param request body GenerateRequest true "Names"
// @Success 200 {object} poem.Result
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /poems/generate [post]
func (h *PoemHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if err := req.normalize(); err != nil {
		handleServiceError(c, err)
		return
	}

	res, err := h.svc.Generate(c.Request.Context(), req.UserName, req.FriendNames)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Validate godoc
// @Summary Validate template text
// @Tags poems
// @Accept json
// @Produce json
// @Param request body ValidateRequest true "Template text"
// @Success 200 {object} poem.Analysis
// @Failure 400 {object} ErrorResponse
// @Router /poems/validate [post]
func (h *PoemHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	analysis, err := h.svc.Validate(req.Text)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// Trending godoc
// @Summary Trending poems
// @Description A few random templates rendered with demo names
// @Tags poems
// @Produce json
// @Success 200 {array} service.TrendingPoem
// @Router /poems/trending [get]
func (h *PoemHandler) Trending(c *gin.Context) {
	items, err := h.svc.Trending(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Browse godoc
// @Summary Browse templates
// @Description Newest first, optionally filtered by a case-insensitive substring
// @Tags poems
// @Produce json
// @Param q query string false "Search text"
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size (1-50)"
// @Success 200 {object} store.Page
// @Router /poems/browse [get]
func (h *PoemHandler) Browse(c *gin.Context) {
	page, err := h.svc.Browse(c.Request.Context(), strings.TrimSpace(c.Query("q")),
		queryInt(c, "page", 1), queryInt(c, "limit", store.DefaultPageSize))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListMine godoc
// @Summary List my templates
// @Tags poems
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size (1-50)"
// @Success 200 {object} store.Page
// @Failure 401 {object} ErrorResponse
// @Router /poems [get]
func (h *PoemHandler) ListMine(c *gin.Context) {
	page, err := h.svc.ListMine(c.Request.Context(), getUserID(c),
		queryInt(c, "page", 1), queryInt(c, "limit", store.DefaultPageSize))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get godoc
// @Summary Get a template
// @Tags poems
// @Security BearerAuth
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} models.Template
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /poems/{id} [get]
func (h *PoemHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	t, err := h.svc.Get(c.Request.Context(), id, getUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Create godoc
// @Summary Create a template
// @Tags poems
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param template body TemplateRequest true "Template"
// @Success 201 {object} models.Template
// @Failure 400 {object} ErrorResponse
// @Router /poems [post]
func (h *PoemHandler) Create(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "text is required"})
		return
	}
	t, err := h.svc.Create(c.Request.Context(), service.TemplateRequest{
		Text:         req.Text,
		Instructions: req.Instructions,
	}, getUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// Update godoc
// @Summary Replace a template's text
// @Tags poems
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param template body TemplateRequest true "Template"
// @Success 200 {object} models.Template
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /poems/{id} [put]
func (h *PoemHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "text is required"})
		return
	}
	t, err := h.svc.Update(c.Request.Context(), id, service.TemplateRequest{
		Text:         req.Text,
		Instructions: req.Instructions,
	}, getUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Delete godoc
// @Summary Delete a template
// @Tags poems
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /poems/{id} [delete]
func (h *PoemHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, getUserID(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

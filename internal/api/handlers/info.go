package handlers

import (
	"net/http"
	"runtime"

	"github.com/bakchoddost/bakchoddost/internal/db"
	"github.com/bakchoddost/bakchoddost/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// InfoHandler handles server info requests
type InfoHandler struct {
	db *gorm.DB
}

// NewInfoHandler creates a new InfoHandler
func NewInfoHandler(database *gorm.DB) *InfoHandler {
	return &InfoHandler{db: database}
}

// InfoResponse represents the server info response
type InfoResponse struct {
	ServerID  string `json:"server_id"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Templates int64  `json:"templates"`
}

// GetInfo godoc
// @Summary Get server information
// @Description Returns the unique server ID, version and template count
// @Tags system
// @Produce json
// @Success 200 {object} InfoResponse
// @Failure 500 {object} ErrorResponse
// @Router /info [get]
func (h *InfoHandler) GetInfo(c *gin.Context) {
	serverID, err := db.GetServerID(h.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to retrieve server ID",
		})
		return
	}

	resp := InfoResponse{
		ServerID:  serverID,
		Version:   Version,
		GoVersion: runtime.Version(),
	}
	if err := h.db.WithContext(c.Request.Context()).Model(&models.Template{}).Count(&resp.Templates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to count templates"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

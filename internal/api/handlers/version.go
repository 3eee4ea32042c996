package handlers

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = ""
)

// VersionResponse describes the running build.
type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetVersion godoc
// @Summary Get version information
// @Description Returns version information about the server build
// @Tags system
// @Produce json
// @Success 200 {object} VersionResponse
// @Router /version [get]
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, VersionResponse{
		Version:   Version,
		Commit:    Commit,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	})
}

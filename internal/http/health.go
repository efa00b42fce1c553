package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readingcenter/internal/database"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Center  string            `json:"center,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db           *database.Database
	version      string
	center       string
	tasksEnabled bool
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{
		db:      db,
		version: version,
	}
}

// WithCenter sets the center name and whether the background queue runs,
// both reported by Status.
func (h *HealthController) WithCenter(name string, tasksEnabled bool) *HealthController {
	h.center = name
	h.tasksEnabled = tasksEnabled
	return h
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	// Check database connectivity
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok (" + h.db.Driver + ")"
		}
	} else {
		checks["database"] = "not configured"
	}

	if h.tasksEnabled {
		checks["tasks"] = "enabled"
	} else {
		checks["tasks"] = "disabled"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Center:  h.center,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}

// Ping answers liveness probes.
func (h *HealthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

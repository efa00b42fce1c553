package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/readingcenter/internal/tasks"
)

// TaskStatusReader looks up queued tasks.
type TaskStatusReader interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// JobRunner triggers the scheduled jobs on demand.
type JobRunner interface {
	RunReminders() (string, error)
	RunActivityCleanup() error
	NextRuns() map[string]time.Time
}

// TasksController handles task queue management endpoints.
type TasksController struct {
	client TaskStatusReader
	jobs   JobRunner
}

// NewTasksController creates a new TasksController. jobs may be nil when the
// scheduler is not running.
func NewTasksController(client TaskStatusReader, jobs JobRunner) *TasksController {
	return &TasksController{client: client, jobs: jobs}
}

func (tc *TasksController) RegisterRoutes(api *gin.RouterGroup, g Guards) {
	admin := api.Group("/admin/tasks", g.Admin)
	admin.GET("/types", tc.ListTaskTypes)
	admin.GET("/schedule", tc.Schedule)
	admin.GET("/:id", tc.GetTaskStatus)
	admin.POST("/:type/run", tc.RunTask)
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

// ListTaskTypes handles GET /api/admin/tasks/types
// Returns the list of task types that can be triggered.
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	types := []TaskTypeInfo{
		{
			Type:        "visit_reminders",
			Description: "Remind visitors of tomorrow's validated reservations",
			Queue:       tasks.QueueVisitReminders,
		},
		{
			Type:        "activity_cleanup",
			Description: "Delete activity entries past the retention period",
			Queue:       tasks.QueueCleanupActivityLog,
		},
	}

	c.JSON(http.StatusOK, gin.H{
		"task_types": types,
	})
}

// GetTaskStatus handles GET /api/admin/tasks/:id
// Returns the status of a specific task.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.client.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task_id": taskID,
		"status":  tasks.StatusName(status),
	})
}

// RunTask handles POST /api/admin/tasks/:type/run
func (tc *TasksController) RunTask(c *gin.Context) {
	if tc.jobs == nil {
		respondError(c, http.StatusServiceUnavailable, CodeUnavailable, "scheduler is not running")
		return
	}

	switch c.Param("type") {
	case "visit_reminders":
		date, err := tc.jobs.RunReminders()
		if err != nil {
			respondInternalError(c, err, "run visit reminders")
			return
		}
		c.JSON(http.StatusAccepted, SuccessResponse{Message: "visit reminders queued", Data: gin.H{"date": date}})
	case "activity_cleanup":
		if err := tc.jobs.RunActivityCleanup(); err != nil {
			respondInternalError(c, err, "run activity cleanup")
			return
		}
		c.JSON(http.StatusAccepted, SuccessResponse{Message: "activity cleanup queued"})
	default:
		respondBadRequest(c, "unknown task type")
	}
}

// Schedule handles GET /api/admin/tasks/schedule
func (tc *TasksController) Schedule(c *gin.Context) {
	next := map[string]time.Time{}
	if tc.jobs != nil {
		next = tc.jobs.NextRuns()
	}
	c.JSON(http.StatusOK, gin.H{"next_runs": next})
}

package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readingcenter/internal/activity"
	"github.com/mrlokans/readingcenter/internal/database/content"
	"github.com/mrlokans/readingcenter/internal/entities"
)

type EventsController struct {
	store    EventStore
	recorder ActivityRecorder
}

func NewEventsController(store EventStore, recorder ActivityRecorder) *EventsController {
	return &EventsController{store: store, recorder: recorder}
}

func (ec *EventsController) RegisterRoutes(api *gin.RouterGroup, g Guards) {
	api.GET("/events", ec.ListEvents)
	api.GET("/events/:id", ec.GetEvent)
	api.POST("/events", g.Staff, ec.CreateEvent)
	api.PATCH("/events/:id", g.Staff, ec.UpdateEvent)
	api.DELETE("/events/:id", g.Staff, ec.DeleteEvent)
}

type CreateEventRequest struct {
	Title       string     `json:"title" binding:"required,max=300"`
	Description string     `json:"description"`
	Location    string     `json:"location" binding:"omitempty,max=300"`
	StartsAt    time.Time  `json:"starts_at" binding:"required"`
	EndsAt      *time.Time `json:"ends_at"`
	Capacity    int        `json:"capacity" binding:"omitempty,min=0"`
	ImageURL    string     `json:"image_url" binding:"omitempty,url,max=2048"`
}

type UpdateEventRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=300"`
	Description *string    `json:"description"`
	Location    *string    `json:"location" binding:"omitempty,max=300"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Capacity    *int       `json:"capacity" binding:"omitempty,min=0"`
	ImageURL    *string    `json:"image_url" binding:"omitempty,max=2048"`
}

// ListEvents returns events by start time; upcoming=true hides past ones.
func (ec *EventsController) ListEvents(c *gin.Context) {
	limit, offset, ok := parsePage(c)
	if !ok {
		return
	}
	events, total, err := ec.store.ListEvents(content.EventFilter{
		Upcoming: parseBoolQuery(c, "upcoming"),
		Page:     content.Page{Limit: limit, Offset: offset},
	})
	if err != nil {
		respondInternalError(c, err, "list events")
		return
	}
	c.JSON(http.StatusOK, newPaginated(events, total, limit, offset))
}

func (ec *EventsController) GetEvent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	event, err := ec.store.GetEvent(id)
	if err != nil {
		respondStoreError(c, err, "event")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (ec *EventsController) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.EndsAt != nil && req.EndsAt.Before(req.StartsAt) {
		respondBadRequest(c, "ends_at must not be before starts_at")
		return
	}
	event := &entities.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Capacity:    req.Capacity,
		ImageURL:    req.ImageURL,
	}
	if err := ec.store.CreateEvent(event); err != nil {
		respondStoreError(c, err, "event")
		return
	}
	recordActivity(c, ec.recorder, activity.Entry{
		Type:        entities.ActivityContent,
		Action:      "event_create",
		Description: fmt.Sprintf("Created event %q", event.Title),
		EntityType:  "event",
		EntityID:    idPtr(event.ID),
	})
	respondCreated(c, event)
}

func (ec *EventsController) UpdateEvent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.StartsAt != nil || req.EndsAt != nil {
		current, err := ec.store.GetEvent(id)
		if err != nil {
			respondStoreError(c, err, "event")
			return
		}
		starts, ends := current.StartsAt, current.EndsAt
		if req.StartsAt != nil {
			starts = *req.StartsAt
		}
		if req.EndsAt != nil {
			ends = req.EndsAt
		}
		if ends != nil && ends.Before(starts) {
			respondBadRequest(c, "ends_at must not be before starts_at")
			return
		}
	}

	event, err := ec.store.UpdateEvent(id, content.EventUpdate{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Capacity:    req.Capacity,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondStoreError(c, err, "event")
		return
	}
	recordActivity(c, ec.recorder, activity.Entry{
		Type:       entities.ActivityContent,
		Action:     "event_update",
		EntityType: "event",
		EntityID:   idPtr(id),
	})
	c.JSON(http.StatusOK, event)
}

func (ec *EventsController) DeleteEvent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ec.store.DeleteEvent(id); err != nil {
		respondStoreError(c, err, "event")
		return
	}
	recordActivity(c, ec.recorder, activity.Entry{
		Type:       entities.ActivityContent,
		Action:     "event_delete",
		EntityType: "event",
		EntityID:   idPtr(id),
	})
	respondSuccess(c, "event deleted")
}

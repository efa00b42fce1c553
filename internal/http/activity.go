package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	dbactivity "github.com/mrlokans/readingcenter/internal/database/activity"
	"github.com/mrlokans/readingcenter/internal/entities"
)

// ActivityController lists the administrative activity trail.
type ActivityController struct {
	reader ActivityReader
}

func NewActivityController(reader ActivityReader) *ActivityController {
	return &ActivityController{reader: reader}
}

func (ac *ActivityController) RegisterRoutes(api *gin.RouterGroup, g Guards) {
	api.GET("/admin/activity", g.Admin, ac.ListActivity)
}

// ListActivity handles GET /api/admin/activity with optional type,
// entity_type, entity_id, user_id and since (RFC 3339) filters.
func (ac *ActivityController) ListActivity(c *gin.Context) {
	limit, offset, ok := parsePage(c)
	if !ok {
		return
	}
	userID, ok := optionalQueryID(c, "user_id")
	if !ok {
		return
	}
	entityID, ok := optionalQueryID(c, "entity_id")
	if !ok {
		return
	}
	filter := dbactivity.Filter{
		UserID:     userID,
		Type:       entities.ActivityType(c.Query("type")),
		EntityType: c.Query("entity_type"),
		EntityID:   entityID,
		Limit:      limit,
		Offset:     offset,
	}
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			respondBadRequest(c, "invalid since")
			return
		}
		filter.Since = t
	}

	entries, total, err := ac.reader.List(filter)
	if err != nil {
		respondInternalError(c, err, "list activity")
		return
	}
	c.JSON(http.StatusOK, newPaginated(entries, total, limit, offset))
}

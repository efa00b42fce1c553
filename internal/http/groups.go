package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readingcenter/internal/activity"
	"github.com/mrlokans/readingcenter/internal/auth"
	"github.com/mrlokans/readingcenter/internal/database/content"
	"github.com/mrlokans/readingcenter/internal/entities"
)

type GroupsController struct {
	store    GroupStore
	recorder ActivityRecorder
}

func NewGroupsController(store GroupStore, recorder ActivityRecorder) *GroupsController {
	return &GroupsController{store: store, recorder: recorder}
}

func (gc *GroupsController) RegisterRoutes(api *gin.RouterGroup, g Guards) {
	api.GET("/groups", gc.ListGroups)
	api.GET("/groups/:id", gc.GetGroup)
	api.POST("/groups", g.Staff, gc.CreateGroup)
	api.PATCH("/groups/:id", g.Staff, gc.UpdateGroup)
	api.DELETE("/groups/:id", g.Staff, gc.DeleteGroup)
}

type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
	Schedule    string `json:"schedule" binding:"omitempty,max=200"`
	MaxMembers  int    `json:"max_members" binding:"omitempty,min=0"`
	Active      *bool  `json:"active"`
}

type UpdateGroupRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	Schedule    *string `json:"schedule" binding:"omitempty,max=200"`
	MaxMembers  *int    `json:"max_members" binding:"omitempty,min=0"`
	Active      *bool   `json:"active"`
}

// ListGroups returns active groups. Staff may pass all=true to include
// inactive ones.
func (gc *GroupsController) ListGroups(c *gin.Context) {
	limit, offset, ok := parsePage(c)
	if !ok {
		return
	}
	activeOnly := !(auth.GetIdentity(c).IsPrivileged() && parseBoolQuery(c, "all"))
	groups, total, err := gc.store.ListGroups(activeOnly, content.Page{Limit: limit, Offset: offset})
	if err != nil {
		respondInternalError(c, err, "list groups")
		return
	}
	c.JSON(http.StatusOK, newPaginated(groups, total, limit, offset))
}

func (gc *GroupsController) GetGroup(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	group, err := gc.store.GetGroup(id)
	if err != nil {
		respondStoreError(c, err, "group")
		return
	}
	if !group.Active && !auth.GetIdentity(c).IsPrivileged() {
		respondNotFound(c, "group")
		return
	}
	c.JSON(http.StatusOK, group)
}

func (gc *GroupsController) CreateGroup(c *gin.Context) {
	var req CreateGroupRequest
	if !bindJSON(c, &req) {
		return
	}
	group := &entities.ReadingGroup{
		Name:        req.Name,
		Description: req.Description,
		Schedule:    req.Schedule,
		MaxMembers:  req.MaxMembers,
		Active:      req.Active == nil || *req.Active,
	}
	if err := gc.store.CreateGroup(group); err != nil {
		respondStoreError(c, err, "group")
		return
	}
	recordActivity(c, gc.recorder, activity.Entry{
		Type:        entities.ActivityContent,
		Action:      "group_create",
		Description: fmt.Sprintf("Created reading group %q", group.Name),
		EntityType:  "group",
		EntityID:    idPtr(group.ID),
	})
	respondCreated(c, group)
}

func (gc *GroupsController) UpdateGroup(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateGroupRequest
	if !bindJSON(c, &req) {
		return
	}
	group, err := gc.store.UpdateGroup(id, content.GroupUpdate{
		Name:        req.Name,
		Description: req.Description,
		Schedule:    req.Schedule,
		MaxMembers:  req.MaxMembers,
		Active:      req.Active,
	})
	if err != nil {
		respondStoreError(c, err, "group")
		return
	}
	recordActivity(c, gc.recorder, activity.Entry{
		Type:       entities.ActivityContent,
		Action:     "group_update",
		EntityType: "group",
		EntityID:   idPtr(id),
	})
	c.JSON(http.StatusOK, group)
}

func (gc *GroupsController) DeleteGroup(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := gc.store.DeleteGroup(id); err != nil {
		respondStoreError(c, err, "group")
		return
	}
	recordActivity(c, gc.recorder, activity.Entry{
		Type:       entities.ActivityContent,
		Action:     "group_delete",
		EntityType: "group",
		EntityID:   idPtr(id),
	})
	respondSuccess(c, "group deleted")
}

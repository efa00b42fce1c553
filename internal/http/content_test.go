package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readingcenter/internal/auth"
	"github.com/mrlokans/readingcenter/internal/database/content"
	"github.com/mrlokans/readingcenter/internal/entities"
)

func contentRouter(identity *auth.Identity, repo *content.Repository, recorder ActivityRecorder) *gin.Engine {
	return newTestRouter(identity, func(api *gin.RouterGroup, g Guards) {
		NewGroupsController(repo, recorder).RegisterRoutes(api, g)
		NewEventsController(repo, recorder).RegisterRoutes(api, g)
		NewNewsController(repo, recorder).RegisterRoutes(api, g)
	})
}

type pageOf[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
}

func TestGroups_Visibility(t *testing.T) {
	db := setupTestDB(t)
	repo := content.NewRepository(db.DB)
	recorder := &fakeRecorder{}
	staff := contentRouter(staffIdentity, repo, recorder)
	public := contentRouter(nil, repo, recorder)

	w := doJSON(t, staff, http.MethodPost, "/api/groups", map[string]any{"name": "Poetry circle", "schedule": "first Tuesday, 18:00"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	active := decode[entities.ReadingGroup](t, w)
	assert.True(t, active.Active)

	w = doJSON(t, staff, http.MethodPost, "/api/groups", map[string]any{"name": "Retired club", "active": false})
	require.Equal(t, http.StatusCreated, w.Code)
	retired := decode[entities.ReadingGroup](t, w)

	list := decode[pageOf[entities.ReadingGroup]](t, doJSON(t, public, http.MethodGet, "/api/groups?all=true", nil))
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Poetry circle", list.Data[0].Name)

	list = decode[pageOf[entities.ReadingGroup]](t, doJSON(t, staff, http.MethodGet, "/api/groups?all=true", nil))
	assert.Equal(t, int64(2), list.Total)

	assert.Equal(t, http.StatusNotFound, doJSON(t, public, http.MethodGet, "/api/groups/"+itoa(retired.ID), nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, staff, http.MethodGet, "/api/groups/"+itoa(retired.ID), nil).Code)

	w = doJSON(t, staff, http.MethodPatch, "/api/groups/"+itoa(retired.ID), map[string]any{"active": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[entities.ReadingGroup](t, w).Active)
	assert.Equal(t, http.StatusOK, doJSON(t, public, http.MethodGet, "/api/groups/"+itoa(retired.ID), nil).Code)

	require.Equal(t, http.StatusOK, doJSON(t, staff, http.MethodDelete, "/api/groups/"+itoa(active.ID), nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, staff, http.MethodGet, "/api/groups/"+itoa(active.ID), nil).Code)

	assert.Equal(t, []string{"group_create", "group_create", "group_update", "group_delete"}, recorder.actions())
}

func TestEvents(t *testing.T) {
	db := setupTestDB(t)
	repo := content.NewRepository(db.DB)
	staff := contentRouter(staffIdentity, repo, nil)

	now := time.Now().UTC().Truncate(time.Second)
	past := map[string]any{"title": "Winter reading", "starts_at": now.Add(-72 * time.Hour), "ends_at": now.Add(-70 * time.Hour)}
	soon := map[string]any{"title": "Author talk", "starts_at": now.Add(48 * time.Hour), "location": "Main hall"}

	require.Equal(t, http.StatusCreated, doJSON(t, staff, http.MethodPost, "/api/events", past).Code)
	w := doJSON(t, staff, http.MethodPost, "/api/events", soon)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	talk := decode[entities.Event](t, w)

	t.Run("upcoming only", func(t *testing.T) {
		list := decode[pageOf[entities.Event]](t, doJSON(t, contentRouter(nil, repo, nil), http.MethodGet, "/api/events?upcoming=true", nil))
		require.Len(t, list.Data, 1)
		assert.Equal(t, "Author talk", list.Data[0].Title)

		list = decode[pageOf[entities.Event]](t, doJSON(t, contentRouter(nil, repo, nil), http.MethodGet, "/api/events", nil))
		assert.Equal(t, int64(2), list.Total)
	})

	t.Run("end before start", func(t *testing.T) {
		bad := map[string]any{"title": "Backwards", "starts_at": now.Add(time.Hour), "ends_at": now}
		assert.Equal(t, http.StatusBadRequest, doJSON(t, staff, http.MethodPost, "/api/events", bad).Code)

		w := doJSON(t, staff, http.MethodPatch, "/api/events/"+itoa(talk.ID), map[string]any{"ends_at": now})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update", func(t *testing.T) {
		w := doJSON(t, staff, http.MethodPatch, "/api/events/"+itoa(talk.ID), map[string]any{"capacity": 40})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		updated := decode[entities.Event](t, w)
		assert.Equal(t, 40, updated.Capacity)
		assert.Equal(t, "Main hall", updated.Location)
	})

	t.Run("missing start", func(t *testing.T) {
		w := doJSON(t, staff, http.MethodPost, "/api/events", map[string]any{"title": "Undated"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "required", decode[validationErrorResponse](t, w).Details["starts_at"])
	})
}

func TestNews_Drafts(t *testing.T) {
	db := setupTestDB(t)
	repo := content.NewRepository(db.DB)
	staffUser := seedUser(t, db, "editor", entities.UserRoleStaff)
	staff := contentRouter(staffUser, repo, nil)
	public := contentRouter(nil, repo, nil)

	w := doJSON(t, staff, http.MethodPost, "/api/news", map[string]any{"title": "New opening hours", "body": "We now open on Saturdays.", "published": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	published := decode[entities.News](t, w)
	require.NotNil(t, published.AuthorID)
	assert.Equal(t, staffUser.UserID, *published.AuthorID)

	w = doJSON(t, staff, http.MethodPost, "/api/news", map[string]any{"title": "Spring programme", "body": "Draft"})
	require.Equal(t, http.StatusCreated, w.Code)
	draft := decode[entities.News](t, w)
	assert.False(t, draft.Published)

	list := decode[pageOf[entities.News]](t, doJSON(t, public, http.MethodGet, "/api/news", nil))
	require.Len(t, list.Data, 1)
	assert.Equal(t, published.ID, list.Data[0].ID)

	list = decode[pageOf[entities.News]](t, doJSON(t, staff, http.MethodGet, "/api/news", nil))
	assert.Equal(t, int64(2), list.Total)

	assert.Equal(t, http.StatusNotFound, doJSON(t, public, http.MethodGet, "/api/news/"+itoa(draft.ID), nil).Code)

	w = doJSON(t, staff, http.MethodPatch, "/api/news/"+itoa(draft.ID), map[string]any{"published": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusOK, doJSON(t, public, http.MethodGet, "/api/news/"+itoa(draft.ID), nil).Code)

	assert.Equal(t, http.StatusUnauthorized, doJSON(t, public, http.MethodDelete, "/api/news/"+itoa(draft.ID), nil).Code)
}

package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/readingcenter/internal/reservations"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseIDParam_Valid(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "123"}}

	id, ok := parseIDParam(c, "id")

	assert.True(t, ok)
	assert.Equal(t, uint(123), id)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParseIDParam_Invalid(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	id, ok := parseIDParam(c, "id")

	assert.False(t, ok)
	assert.Equal(t, uint(0), id)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid id")
}

func TestParseIDParam_Negative(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "-1"}}

	id, ok := parseIDParam(c, "id")

	assert.False(t, ok)
	assert.Equal(t, uint(0), id)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseIDParam_Zero(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "0"}}

	_, ok := parseIDParam(c, "id")

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseQueryID_Valid(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/?book_id=456", nil)

	id, ok := parseQueryID(c, "book_id")

	assert.True(t, ok)
	assert.Equal(t, uint(456), id)
}

func TestParseQueryID_Missing(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)

	id, ok := parseQueryID(c, "book_id")

	assert.False(t, ok)
	assert.Equal(t, uint(0), id)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "book_id is required")
}

func TestOptionalQueryID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)

	id, ok := optionalQueryID(c, "author_id")
	assert.True(t, ok)
	assert.Equal(t, uint(0), id)
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
		wantOK     bool
	}{
		{"defaults", "", defaultPageLimit, 0, true},
		{"explicit", "?limit=5&offset=10", 5, 10, true},
		{"clamped", "?limit=1000", maxPageLimit, 0, true},
		{"zero limit", "?limit=0", 0, 0, false},
		{"negative offset", "?offset=-3", 0, 0, false},
		{"garbage", "?limit=abc", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/"+tt.query, nil)

			limit, offset, ok := parsePage(c)

			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantLimit, limit)
				assert.Equal(t, tt.wantOffset, offset)
			} else {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestNewPaginated(t *testing.T) {
	resp := newPaginated([]int{1, 2}, 5, 2, 0)
	assert.True(t, resp.HasMore)
	assert.Equal(t, 3, resp.TotalPages)

	resp = newPaginated([]int{5}, 5, 2, 4)
	assert.False(t, resp.HasMore)
}

func TestRespondStoreError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", gorm.ErrRecordNotFound, http.StatusNotFound, CodeNotFound},
		{"duplicate", gorm.ErrDuplicatedKey, http.StatusConflict, CodeDuplicateEntry},
		{"foreign key", gorm.ErrForeignKeyViolated, http.StatusConflict, CodeForeignKey},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondStoreError(c, tt.err, "book")

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decode[ErrorResponse](t, w)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotContains(t, resp.Error, "disk on fire")
		})
	}
}

func TestRespondReservationError(t *testing.T) {
	tests := []struct {
		code       reservations.Code
		wantStatus int
	}{
		{reservations.CodeBookNotAvailable, http.StatusBadRequest},
		{reservations.CodeBookingConflict, http.StatusBadRequest},
		{reservations.CodeClosedDay, http.StatusBadRequest},
		{reservations.CodeInvalidDate, http.StatusBadRequest},
		{reservations.CodeDailyLimitReached, http.StatusBadRequest},
		{reservations.CodeSlotLimitReached, http.StatusBadRequest},
		{reservations.CodeValidation, http.StatusBadRequest},
		{reservations.CodeNotFound, http.StatusNotFound},
		{reservations.CodeInvalidTransition, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondReservationError(c, &reservations.Error{Code: tt.code, Message: "nope"})

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decode[ErrorResponse](t, w)
			assert.Equal(t, string(tt.code), resp.Code)
			assert.Equal(t, "nope", resp.Error)
		})
	}

	t.Run("storage errors fall through", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		respondReservationError(c, gorm.ErrDuplicatedKey)

		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, CodeDuplicateEntry, decode[ErrorResponse](t, w).Code)
	})
}

func TestRespondSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondSuccess(c, "done")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"done"`)
}

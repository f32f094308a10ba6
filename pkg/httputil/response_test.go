package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/servipro/marketplace-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestOK(t *testing.T) {
	w := perform(func(c *gin.Context) { OK(c, gin.H{"answer": 42}) })

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestFailMapsAppErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"bad request", apperrors.BadRequest("nope", nil), http.StatusBadRequest},
		{"unauthorized", apperrors.Unauthorized("", nil), http.StatusUnauthorized},
		{"forbidden", apperrors.Forbidden("", nil), http.StatusForbidden},
		{"not found", apperrors.NotFound("thing", nil), http.StatusNotFound},
		{"conflict", apperrors.Conflict("taken", nil), http.StatusConflict},
		{"internal", apperrors.Internal(assert.AnError), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := perform(func(c *gin.Context) { Fail(c, tc.err) })
			assert.Equal(t, tc.status, w.Code)

			resp := decode(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.status, resp.Error.Code)
		})
	}
}

func TestFailHidesUnknownErrors(t *testing.T) {
	w := perform(func(c *gin.Context) { Fail(c, assert.AnError) })

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "internal server error", resp.Error.Message)
}

func TestPaginated(t *testing.T) {
	w := perform(func(c *gin.Context) {
		Paginated(c, []int{1, 2, 3}, 2, 3, 7)
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool              `json:"success"`
		Data    PaginatedResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Pagination.Page)
	assert.EqualValues(t, 7, resp.Data.Pagination.Total)
	assert.EqualValues(t, 3, resp.Data.Pagination.TotalPages)
}

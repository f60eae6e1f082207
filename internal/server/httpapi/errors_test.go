package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountd/accountd/internal/common"
)

func errorRouter(err error) *gin.Engine {
	r := gin.New()
	r.Use(localeMiddleware())
	r.GET("/boom", func(c *gin.Context) {
		writeError(c, err)
	})
	return r
}

func getBoom(t *testing.T, err error) (*httptest.ResponseRecorder, errorBody) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	errorRouter(err).ServeHTTP(w, req)

	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestWriteError_ValidationEnumeratesAllFields(t *testing.T) {
	err := (&common.ValidationError{}).
		Add("email", "users.errors.email_already_exists").
		Add("username", "users.errors.username_already_exists")

	w, body := getBoom(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, body.Fields, 2)
	assert.Equal(t, "email", body.Fields[0].Field)
	assert.Equal(t, "username", body.Fields[1].Field)
	assert.Equal(t, "This username is already taken", body.Fields[1].Message)
}

func TestWriteError_Authentication(t *testing.T) {
	w, body := getBoom(t, common.NewAuthenticationError("auth.errors.invalid_credentials"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid username or password", body.Error)
}

func TestWriteError_Authorization(t *testing.T) {
	w, _ := getBoom(t, common.NewAuthorizationError("auth.errors.insufficient_role"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWriteError_NotFound(t *testing.T) {
	w, _ := getBoom(t, common.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWriteError_Internal(t *testing.T) {
	w, body := getBoom(t, common.ErrInternal)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", body.Error)
}

package util

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/greenprint-app/greenprint-backend/internal/logger"
	"github.com/greenprint-app/greenprint-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserFromContextWithoutAuthResponds401(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger.InitializeForTests()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)

	_, ok := GetUserFromContext(c)
	require.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "UNAUTHORIZED", body["code"])
}

func TestGetUserFromContextReturnsAuthenticatedUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger.InitializeForTests()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(ContextUserKey, &models.User{Username: "alice"})
	c.Set(ContextUserIDKey, "some-id")

	user, ok := GetUserFromContext(c)
	require.True(t, ok)
	assert.Equal(t, "alice", user.Username)

	id, ok := GetUserIDFromContext(c)
	require.True(t, ok)
	assert.Equal(t, "some-id", id)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-backend/pkg/jwt"
)

func authTestRouter(manager *jwt.Manager) (*gin.Engine, *uuid.UUID, *string) {
	gin.SetMode(gin.TestMode)

	var gotUser uuid.UUID
	var gotRole string

	router := gin.New()
	router.GET("/me", AuthMiddleware(manager), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		gotUser = userID
		gotRole = c.GetString("role")
		c.Status(http.StatusOK)
	})

	return router, &gotUser, &gotRole
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	manager := jwt.NewManager("test-secret")
	router, gotUser, gotRole := authTestRouter(manager)

	userID := uuid.New()
	token, err := manager.GenerateAccessToken(userID.String(), "user@example.com", "admin", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, *gotUser)
	assert.Equal(t, "admin", *gotRole)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	router, _, _ := authTestRouter(jwt.NewManager("test-secret"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	router, _, _ := authTestRouter(jwt.NewManager("test-secret"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsForgedToken(t *testing.T) {
	router, _, _ := authTestRouter(jwt.NewManager("test-secret"))

	forged, err := jwt.NewManager("other-secret").GenerateAccessToken(uuid.NewString(), "x@y.z", "admin", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsNonUUIDSubject(t *testing.T) {
	manager := jwt.NewManager("test-secret")
	router, _, _ := authTestRouter(manager)

	token, err := manager.GenerateAccessToken("not-a-uuid", "x@y.z", "customer", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

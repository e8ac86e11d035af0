package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/classmark/testing-service/internal/models"
	"github.com/classmark/testing-service/internal/services"
	"github.com/classmark/testing-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubGroupService struct{}

func (stubGroupService) Create(_ context.Context, req *services.CreateGroupRequest) (*models.Group, error) {
	return &models.Group{ID: 1, Name: req.Name}, nil
}

func (stubGroupService) List(_ context.Context) ([]*models.Group, error) {
	return []*models.Group{{ID: 1, Name: "10-A"}}, nil
}

func routerForTest() *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := utils.NewDefaultLogger()
	auth := services.NewAuthService(nil, logger, utils.NewValidator(), "test-secret")

	hm := NewHandlerManager(auth, stubGroupService{}, nil, nil, nil, nil, "/tmp/uploads", logger)
	router := gin.New()
	hm.SetupRoutes(router)
	return router
}

// The registration form lists groups before the user has an account, so the
// group list must answer without a token. Creating groups stays protected.
func TestRoutes_GroupListIsPublic(t *testing.T) {
	router := routerForTest()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/groups", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "10-A")
}

func TestRoutes_GroupCreateRequiresToken(t *testing.T) {
	router := routerForTest()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/groups", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// Protected routes answer 401 without a token; a 404 here would mean the
// route was never registered.
func TestRoutes_Registered(t *testing.T) {
	router := routerForTest()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/teacher/result/12/details"},
		{http.MethodGet, "/api/teacher/3/results"},
		{http.MethodPost, "/api/student/attempts/7"},
		{http.MethodPut, "/api/student/attempts/7/checkpoint"},
	}
	for _, p := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(p.method, p.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", p.method, p.path)
	}
}

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

func setupUserRouter(handler *UserHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/users/:userId", handler.ListOthers)
	r.POST("/user/update", handler.UpdateProfile)
	r.POST("/user/status", handler.UpdateStatus)
	return r
}

func TestListOthersSuccess(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupUserRouter(NewUserHandler(users))

	users.On("ListOthers", mock.Anything, int64(1)).Return([]models.PublicUser{
		{ID: 2, Username: "bob"},
		{ID: 3, Username: "carol"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []models.PublicUser
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "bob", resp[0].Username)
	users.AssertExpectations(t)
}

func TestListOthersInvalidID(t *testing.T) {
	router := setupUserRouter(NewUserHandler(new(mocks.UserRepositoryMock)))

	req := httptest.NewRequest(http.MethodGet, "/users/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProfilePartial(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupUserRouter(NewUserHandler(users))

	users.On("UpdateProfile", mock.Anything, int64(1), mock.MatchedBy(func(u models.ProfileUpdate) bool {
		return u.Bio != nil && *u.Bio == "hello" && u.FirstName == nil
	})).Return(nil).Once()

	body := bytes.NewBufferString(`{"user_id":1,"bio":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/user/update", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	users.AssertExpectations(t)
}

func TestUpdateProfileUserNotFound(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupUserRouter(NewUserHandler(users))

	users.On("UpdateProfile", mock.Anything, int64(9), mock.Anything).
		Return(repositories.ErrUserNotFound).Once()

	body := bytes.NewBufferString(`{"user_id":9,"bio":"x"}`)
	req := httptest.NewRequest(http.MethodPost, "/user/update", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	users.AssertExpectations(t)
}

func TestUpdateStatusOffline(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupUserRouter(NewUserHandler(users))

	users.On("SetOnlineStatus", mock.Anything, int64(1), false).Return(nil).Once()

	body := bytes.NewBufferString(`{"user_id":1,"is_online":false}`)
	req := httptest.NewRequest(http.MethodPost, "/user/status", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	users.AssertExpectations(t)
}

func TestUpdateStatusMissingFlag(t *testing.T) {
	router := setupUserRouter(NewUserHandler(new(mocks.UserRepositoryMock)))

	body := bytes.NewBufferString(`{"user_id":1}`)
	req := httptest.NewRequest(http.MethodPost, "/user/status", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

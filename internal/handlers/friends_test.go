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

func setupFriendRouter(handler *FriendHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/friend-request", handler.SendRequest)
	r.POST("/accept-friend", handler.AcceptRequest)
	r.POST("/reject-friend", handler.RejectRequest)
	r.GET("/friends/:userId", handler.ListFriends)
	r.GET("/friend-requests/:userId", handler.ListPendingRequests)
	return r
}

func TestSendRequestSuccess(t *testing.T) {
	friends := new(mocks.FriendRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	handler := NewFriendHandler(friends, users, new(mocks.ChatRepositoryMock), nil)
	router := setupFriendRouter(handler)

	users.On("GetByUsername", mock.Anything, "bob").Return(models.User{ID: 2, Username: "bob"}, nil).Once()
	friends.On("CreateRequest", mock.Anything, int64(1), int64(2)).
		Return(models.FriendRequest{ID: 5, FromUserID: 1, ToUserID: 2, Status: models.RequestPending}, nil).Once()

	body := bytes.NewBufferString(`{"from_user_id":1,"to_username":"bob"}`)
	req := httptest.NewRequest(http.MethodPost, "/friend-request", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, float64(5), resp["request_id"])
	users.AssertExpectations(t)
	friends.AssertExpectations(t)
}

func TestSendRequestUnknownTarget(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	handler := NewFriendHandler(new(mocks.FriendRepositoryMock), users, new(mocks.ChatRepositoryMock), nil)
	router := setupFriendRouter(handler)

	users.On("GetByUsername", mock.Anything, "ghost").
		Return(models.User{}, repositories.ErrUserNotFound).Once()

	body := bytes.NewBufferString(`{"from_user_id":1,"to_username":"ghost"}`)
	req := httptest.NewRequest(http.MethodPost, "/friend-request", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	users.AssertExpectations(t)
}

func TestSendRequestToSelf(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	handler := NewFriendHandler(new(mocks.FriendRepositoryMock), users, new(mocks.ChatRepositoryMock), nil)
	router := setupFriendRouter(handler)

	users.On("GetByUsername", mock.Anything, "alice").Return(models.User{ID: 1, Username: "alice"}, nil).Once()

	body := bytes.NewBufferString(`{"from_user_id":1,"to_username":"alice"}`)
	req := httptest.NewRequest(http.MethodPost, "/friend-request", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	users.AssertExpectations(t)
}

func TestSendRequestAlreadyPending(t *testing.T) {
	friends := new(mocks.FriendRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	handler := NewFriendHandler(friends, users, new(mocks.ChatRepositoryMock), nil)
	router := setupFriendRouter(handler)

	users.On("GetByUsername", mock.Anything, "bob").Return(models.User{ID: 2, Username: "bob"}, nil).Once()
	friends.On("CreateRequest", mock.Anything, int64(1), int64(2)).
		Return(models.FriendRequest{}, repositories.ErrRequestExists).Once()

	body := bytes.NewBufferString(`{"from_user_id":1,"to_username":"bob"}`)
	req := httptest.NewRequest(http.MethodPost, "/friend-request", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	friends.AssertExpectations(t)
}

func TestAcceptRequestCreatesChat(t *testing.T) {
	friends := new(mocks.FriendRepositoryMock)
	chats := new(mocks.ChatRepositoryMock)
	handler := NewFriendHandler(friends, new(mocks.UserRepositoryMock), chats, nil)
	router := setupFriendRouter(handler)

	friends.On("AcceptRequest", mock.Anything, int64(5)).
		Return(models.FriendRequest{ID: 5, FromUserID: 1, ToUserID: 2, Status: models.RequestAccepted}, nil).Once()
	chats.On("CreateOrGetPrivate", mock.Anything, int64(1), int64(2)).
		Return(models.Chat{ID: 10, Type: models.ChatPrivate}, nil).Once()

	body := bytes.NewBufferString(`{"request_id":5}`)
	req := httptest.NewRequest(http.MethodPost, "/accept-friend", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	friends.AssertExpectations(t)
	chats.AssertExpectations(t)
}

func TestAcceptRequestNotFound(t *testing.T) {
	friends := new(mocks.FriendRepositoryMock)
	handler := NewFriendHandler(friends, new(mocks.UserRepositoryMock), new(mocks.ChatRepositoryMock), nil)
	router := setupFriendRouter(handler)

	friends.On("AcceptRequest", mock.Anything, int64(99)).
		Return(models.FriendRequest{}, repositories.ErrRequestNotFound).Once()

	body := bytes.NewBufferString(`{"request_id":99}`)
	req := httptest.NewRequest(http.MethodPost, "/accept-friend", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	friends.AssertExpectations(t)
}

func TestRejectRequestIdempotent(t *testing.T) {
	friends := new(mocks.FriendRepositoryMock)
	handler := NewFriendHandler(friends, new(mocks.UserRepositoryMock), new(mocks.ChatRepositoryMock), nil)
	router := setupFriendRouter(handler)

	friends.On("RejectRequest", mock.Anything, int64(42)).Return(nil).Twice()

	for i := 0; i < 2; i++ {
		body := bytes.NewBufferString(`{"request_id":42}`)
		req := httptest.NewRequest(http.MethodPost, "/reject-friend", body)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	friends.AssertExpectations(t)
}

func TestListFriendsSuccess(t *testing.T) {
	friends := new(mocks.FriendRepositoryMock)
	handler := NewFriendHandler(friends, new(mocks.UserRepositoryMock), new(mocks.ChatRepositoryMock), nil)
	router := setupFriendRouter(handler)

	friends.On("ListFriends", mock.Anything, int64(1)).
		Return([]models.PublicUser{{ID: 2, Username: "bob"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/friends/1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []models.PublicUser
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	friends.AssertExpectations(t)
}

func TestListPendingRequestsRepoError(t *testing.T) {
	friends := new(mocks.FriendRepositoryMock)
	handler := NewFriendHandler(friends, new(mocks.UserRepositoryMock), new(mocks.ChatRepositoryMock), nil)
	router := setupFriendRouter(handler)

	friends.On("ListPendingRequests", mock.Anything, int64(1)).
		Return(([]models.PendingRequest)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/friend-requests/1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	friends.AssertExpectations(t)
}

package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/repositories"
	"messenger-service/internal/telemetry"
)

// FriendHandler manages the friend request lifecycle and the friend graph.
type FriendHandler struct {
	friends repositories.FriendRepository
	users   repositories.UserRepository
	chats   repositories.ChatRepository
	audit   *telemetry.AuditEmitter
}

// NewFriendHandler builds a FriendHandler.
func NewFriendHandler(friends repositories.FriendRepository, users repositories.UserRepository, chats repositories.ChatRepository, audit *telemetry.AuditEmitter) *FriendHandler {
	return &FriendHandler{friends: friends, users: users, chats: chats, audit: audit}
}

// SendRequest creates a pending request, resolving the target by username.
func (h *FriendHandler) SendRequest(c *gin.Context) {
	var req struct {
		FromUserID int64  `json:"from_user_id" binding:"required"`
		ToUsername string `json:"to_username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := h.users.GetByUsername(c.Request.Context(), req.ToUsername)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Printf("resolve target failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send request"})
		return
	}
	if target.ID == req.FromUserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot send a friend request to yourself"})
		return
	}

	request, err := h.friends.CreateRequest(c.Request.Context(), req.FromUserID, target.ID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrRequestExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": "friend request already exists"})
		case errors.Is(err, repositories.ErrAlreadyFriends):
			c.JSON(http.StatusBadRequest, gin.H{"error": "users are already friends"})
		default:
			log.Printf("create request failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send request"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "request_id": request.ID})
}

// AcceptRequest marks the request accepted, creates both friend edges and
// ensures a private chat exists for the pair.
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	var req struct {
		RequestID int64 `json:"request_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.friends.AcceptRequest(c.Request.Context(), req.RequestID)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "friend request not found"})
			return
		}
		log.Printf("accept request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not accept request"})
		return
	}

	if _, err := h.chats.CreateOrGetPrivate(c.Request.Context(), request.FromUserID, request.ToUserID); err != nil {
		log.Printf("ensure private chat failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not accept request"})
		return
	}

	h.audit.Emit(c.Request.Context(), telemetry.EventFriendAccepted, "", requestIDFromContext(c), &request.ToUserID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RejectRequest drops the request; absent ids succeed quietly.
func (h *FriendHandler) RejectRequest(c *gin.Context) {
	var req struct {
		RequestID int64 `json:"request_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.friends.RejectRequest(c.Request.Context(), req.RequestID); err != nil {
		log.Printf("reject request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reject request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListFriends returns the caller's friends with public profiles.
func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	friends, err := h.friends.ListFriends(c.Request.Context(), userID)
	if err != nil {
		log.Printf("list friends failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load friends"})
		return
	}
	c.JSON(http.StatusOK, friends)
}

// ListPendingRequests returns incoming pending requests with sender profiles.
func (h *FriendHandler) ListPendingRequests(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	requests, err := h.friends.ListPendingRequests(c.Request.Context(), userID)
	if err != nil {
		log.Printf("list pending requests failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load requests"})
		return
	}
	c.JSON(http.StatusOK, requests)
}

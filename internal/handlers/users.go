package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

// UserHandler manages profile and presence endpoints.
type UserHandler struct {
	users repositories.UserRepository
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(users repositories.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// ListOthers returns every user except the caller.
func (h *UserHandler) ListOthers(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	users, err := h.users.ListOthers(c.Request.Context(), userID)
	if err != nil {
		log.Printf("list users failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpdateProfile applies a partial profile change; absent fields stay as-is.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		UserID int64 `json:"user_id" binding:"required"`
		models.ProfileUpdate
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.UpdateProfile(c.Request.Context(), req.UserID, req.ProfileUpdate); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Printf("update profile failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateStatus flips the online flag and bumps last-seen.
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		UserID   int64 `json:"user_id" binding:"required"`
		IsOnline *bool `json:"is_online" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.SetOnlineStatus(c.Request.Context(), req.UserID, *req.IsOnline); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Printf("update status failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

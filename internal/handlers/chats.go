package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
	"messenger-service/internal/telemetry"
)

// ChatHandler manages chat lifecycle and pinning.
type ChatHandler struct {
	chats repositories.ChatRepository
	audit *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(chats repositories.ChatRepository, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{chats: chats, audit: audit}
}

// Create returns the existing private chat for a pair or creates a new chat.
func (h *ChatHandler) Create(c *gin.Context) {
	var req struct {
		Type         string  `json:"type" binding:"required,oneof=private group"`
		Participants []int64 `json:"participants" binding:"required,min=1"`
		Name         string  `json:"name"`
		CreatedBy    *int64  `json:"created_by"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var chat models.Chat
	var err error
	switch req.Type {
	case models.ChatPrivate:
		if len(req.Participants) != 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "private chats need exactly two participants"})
			return
		}
		chat, err = h.chats.CreateOrGetPrivate(c.Request.Context(), req.Participants[0], req.Participants[1])
	case models.ChatGroup:
		chat, err = h.chats.CreateGroup(c.Request.Context(), req.Name, req.CreatedBy, req.Participants)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrSelfChat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot create chat with yourself"})
			return
		}
		log.Printf("create chat failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create chat"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "chat": chat})
}

// ListForUser returns the user's chats with pin state and projection.
func (h *ChatHandler) ListForUser(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	chats, err := h.chats.ListForUser(c.Request.Context(), userID)
	if err != nil {
		log.Printf("list chats failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chats"})
		return
	}
	c.JSON(http.StatusOK, chats)
}

// Pin marks a chat pinned for a user.
func (h *ChatHandler) Pin(c *gin.Context) {
	h.setPin(c, true)
}

// Unpin removes a user's pin marker.
func (h *ChatHandler) Unpin(c *gin.Context) {
	h.setPin(c, false)
}

func (h *ChatHandler) setPin(c *gin.Context, pinned bool) {
	var req struct {
		UserID int64 `json:"user_id" binding:"required"`
		ChatID int64 `json:"chat_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.chats.GetChat(c.Request.Context(), req.ChatID); err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
			return
		}
		log.Printf("lookup chat failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update pin"})
		return
	}

	var err error
	if pinned {
		err = h.chats.Pin(c.Request.Context(), req.UserID, req.ChatID)
	} else {
		err = h.chats.Unpin(c.Request.Context(), req.UserID, req.ChatID)
	}
	if err != nil {
		log.Printf("update pin failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update pin"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Delete removes a chat; its messages and pin markers go with it.
func (h *ChatHandler) Delete(c *gin.Context) {
	chatID, ok := paramID(c, "chatId")
	if !ok {
		return
	}

	if err := h.chats.Delete(c.Request.Context(), chatID); err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
			return
		}
		log.Printf("delete chat failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete chat"})
		return
	}

	h.audit.Emit(c.Request.Context(), telemetry.EventChatDeleted, "", requestIDFromContext(c), nil)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

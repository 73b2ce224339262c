package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/models"
	"messenger-service/internal/monitorclient"
	"messenger-service/internal/observability"
	"messenger-service/internal/repositories"
)

// MessageHandler manages sending and listing messages.
type MessageHandler struct {
	chats    repositories.ChatRepository
	messages repositories.MessageRepository
	users    repositories.UserRepository
	capture  monitorclient.Capture
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(chats repositories.ChatRepository, messages repositories.MessageRepository, users repositories.UserRepository, capture monitorclient.Capture) *MessageHandler {
	return &MessageHandler{chats: chats, messages: messages, users: users, capture: capture}
}

// Post appends a message to a chat. Sender must be a participant; the chat's
// last-message projection updates atomically with the insert.
func (h *MessageHandler) Post(c *gin.Context) {
	var req struct {
		ChatID        int64  `json:"chat_id" binding:"required"`
		SenderID      int64  `json:"sender_id" binding:"required"`
		Text          string `json:"text" binding:"required"`
		EncryptedText string `json:"encrypted_text"`
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
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send message"})
		return
	}

	member, err := h.chats.IsParticipant(c.Request.Context(), req.ChatID, req.SenderID)
	if err != nil {
		log.Printf("verify membership failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send message"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "sender is not a chat participant"})
		return
	}

	sender, err := h.users.GetByID(c.Request.Context(), req.SenderID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "sender not found"})
			return
		}
		log.Printf("lookup sender failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send message"})
		return
	}

	msg := models.Message{
		ChatID:        req.ChatID,
		SenderID:      req.SenderID,
		SenderName:    sender.Username,
		Text:          req.Text,
		EncryptedText: req.EncryptedText,
	}
	if err := h.messages.Append(c.Request.Context(), &msg); err != nil {
		log.Printf("append message failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send message"})
		return
	}
	observability.IncMessagesSent()

	// Best-effort plaintext capture; a down monitor never fails the send.
	if err := h.capture.Capture(c.Request.Context(), monitorclient.Record{
		Sender:    msg.SenderName,
		SenderID:  msg.SenderID,
		ChatID:    msg.ChatID,
		Text:      msg.Text,
		Encrypted: msg.EncryptedText != "",
	}); err != nil {
		observability.IncCaptureFailure()
		log.Printf("monitor capture failed: %v", err)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": msg})
}

// List returns all chat messages, oldest first.
func (h *MessageHandler) List(c *gin.Context) {
	chatID, ok := paramID(c, "chatId")
	if !ok {
		return
	}

	if _, err := h.chats.GetChat(c.Request.Context(), chatID); err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
			return
		}
		log.Printf("lookup chat failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	messages, err := h.messages.ListForChat(c.Request.Context(), chatID)
	if err != nil {
		log.Printf("list messages failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, messages)
}

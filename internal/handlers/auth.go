package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
	"messenger-service/internal/security"
	"messenger-service/internal/telemetry"
)

const defaultAvatar = "😊"

// AuthHandler manages registration and login.
type AuthHandler struct {
	users  repositories.UserRepository
	hasher *security.PasswordHasher
	audit  *telemetry.AuditEmitter
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(users repositories.UserRepository, hasher *security.PasswordHasher, audit *telemetry.AuditEmitter) *AuthHandler {
	return &AuthHandler{users: users, hasher: hasher, audit: audit}
}

// Register creates an account. The credential never appears in the response.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username   string `json:"username" binding:"required"`
		Password   string `json:"password" binding:"required"`
		PublicKey  string `json:"public_key"`
		PrivateKey string `json:"private_key"`
		Avatar     string `json:"avatar"`
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		Bio        string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashed, err := h.hasher.Hash(req.Password)
	if err != nil {
		log.Printf("hash password failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register user"})
		return
	}

	if req.Avatar == "" {
		req.Avatar = defaultAvatar
	}

	user := models.User{
		Username:       req.Username,
		HashedPassword: hashed,
		PublicKey:      req.PublicKey,
		PrivateKey:     req.PrivateKey,
		Avatar:         req.Avatar,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Bio:            req.Bio,
	}

	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateUser) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username already taken"})
			return
		}
		log.Printf("create user failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register user"})
		return
	}

	h.audit.Emit(c.Request.Context(), telemetry.EventUserRegistered, user.Username, requestIDFromContext(c), &user.ID)
	c.JSON(http.StatusCreated, gin.H{"success": true, "user": user.Public()})
}

// Login verifies credentials, marks the user online and returns the profile
// with the key material the client needs.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		log.Printf("lookup user failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not log in"})
		return
	}

	if err := h.hasher.Verify(req.Password, user.HashedPassword); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	if err := h.users.SetOnlineStatus(c.Request.Context(), user.ID, true); err != nil {
		log.Printf("set online failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not log in"})
		return
	}

	type loginUser struct {
		models.PublicUser
		PrivateKey string `json:"private_key"`
	}

	h.audit.Emit(c.Request.Context(), telemetry.EventUserLogin, user.Username, requestIDFromContext(c), &user.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "user": loginUser{
		PublicUser: user.Public(),
		PrivateKey: user.PrivateKey,
	}})
}

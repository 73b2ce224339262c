package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"messenger-service/internal/middleware"
	"messenger-service/internal/observability"
)

// Routes bundles the handlers the router mounts.
type Routes struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Friends  *FriendHandler
	Chats    *ChatHandler
	Messages *MessageHandler
}

// NewRouter assembles the API router with the standard middleware chain.
// Extra middlewares (tracing) run before the route handlers.
func NewRouter(routes Routes, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(observability.AccessLogMiddleware())
	router.Use(observability.HTTPMetricsMiddleware())
	for _, mw := range extra {
		router.Use(mw)
	}

	router.POST("/register", routes.Auth.Register)
	router.POST("/login", routes.Auth.Login)

	router.GET("/users/:userId", routes.Users.ListOthers)
	router.POST("/user/update", routes.Users.UpdateProfile)
	router.POST("/user/status", routes.Users.UpdateStatus)

	router.POST("/friend-request", routes.Friends.SendRequest)
	router.POST("/accept-friend", routes.Friends.AcceptRequest)
	router.POST("/reject-friend", routes.Friends.RejectRequest)
	router.GET("/friends/:userId", routes.Friends.ListFriends)
	router.GET("/friend-requests/:userId", routes.Friends.ListPendingRequests)

	router.POST("/chats", routes.Chats.Create)
	router.GET("/chats/:userId", routes.Chats.ListForUser)
	router.POST("/chats/pin", routes.Chats.Pin)
	router.POST("/chats/unpin", routes.Chats.Unpin)
	router.DELETE("/chats/:chatId", routes.Chats.Delete)

	router.POST("/messages", routes.Messages.Post)
	router.GET("/messages/:chatId", routes.Messages.List)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

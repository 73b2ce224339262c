package monitor

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"messenger-service/internal/observability"
)

// Server exposes the monitor dashboard, the capture API and the live tail.
type Server struct {
	store    *Store
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewServer builds a Server around a store.
func NewServer(store *Store) *Server {
	return &Server{
		store: store,
		hub:   NewHub(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Router wires the monitor routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(observability.AccessLogMiddleware())
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/", s.Dashboard)
	router.POST("/api/log", s.AppendRecord)
	router.GET("/api/stats", s.GetStats)
	router.GET("/export", s.Export)
	router.GET("/clear", s.Clear)
	router.GET("/ws", s.LiveTail)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// AppendRecord receives one captured message, stores it and notifies
// watchers.
func (s *Server) AppendRecord(c *gin.Context) {
	var rec Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := s.store.Append(rec)
	if err != nil {
		log.Printf("monitor append failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist record"})
		return
	}

	s.hub.Broadcast(rec)
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

// GetStats returns log totals.
func (s *Server) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Stats())
}

// Export streams the full log as a downloadable JSON document.
func (s *Server) Export(c *gin.Context) {
	stats := s.store.Stats()
	c.Header("Content-Disposition", "attachment; filename=monitor_export.json")
	c.JSON(http.StatusOK, gin.H{
		"export_date":    time.Now().UTC().Format(time.RFC3339),
		"total_messages": stats.TotalMessages,
		"users":          stats.Users,
		"chats":          stats.Chats,
		"messages":       s.store.Snapshot(),
	})
}

// Clear wipes the log and sends the browser back to the dashboard.
func (s *Server) Clear(c *gin.Context) {
	if err := s.store.Clear(); err != nil {
		log.Printf("monitor clear failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear log"})
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// LiveTail upgrades to a websocket and pushes records as they arrive.
func (s *Server) LiveTail(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("monitor ws upgrade failed: %v", err)
		return
	}

	s.hub.Add(conn)
	defer func() {
		s.hub.Remove(conn)
		conn.Close()
	}()

	// Reads are discarded; the connection exists only to receive pushes.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func parseChatFilter(raw string) int64 {
	if raw == "" {
		return 0
	}
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return chatID
}

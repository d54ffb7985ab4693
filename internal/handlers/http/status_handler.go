package http

import (
	"net/http"
	"time"

	"pulsehub/internal/core/ports"
	"pulsehub/pkg/utils"

	"github.com/gin-gonic/gin"
)

// StatusHandler is the thin operational surface next to the signaling
// socket: liveness plus current coordinator state counts.
type StatusHandler struct {
	presence  ports.PresenceRepository
	calls     ports.CallService
	streams   ports.StreamService
	startedAt time.Time
}

func NewStatusHandler(presence ports.PresenceRepository, calls ports.CallService, streams ports.StreamService) *StatusHandler {
	return &StatusHandler{
		presence:  presence,
		calls:     calls,
		streams:   streams,
		startedAt: time.Now(),
	}
}

func (h *StatusHandler) SetupRoutes(router *gin.Engine) {
	router.GET("/", h.Status)
	router.GET("/health", h.Status)

	api := router.Group("/api/v1")
	{
		api.GET("/online", h.OnlineUsers)
	}
}

func (h *StatusHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()

	onlineUsers, err := h.presence.Count(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"timestamp":     time.Now(),
		"uptime":        utils.FormatDuration(utils.Since(h.startedAt)),
		"onlineUsers":   onlineUsers,
		"activeCalls":   h.calls.ActiveCount(ctx),
		"activeStreams": h.streams.ActiveCount(ctx),
	})
}

func (h *StatusHandler) OnlineUsers(c *gin.Context) {
	users, err := h.presence.ListOnline(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}

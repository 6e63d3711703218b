package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/matteo/veloclub/internal/app/countsync"
	"github.com/rs/zerolog"
)

// Handler upgrades authenticated connections onto the live count feed
type Handler struct {
	hub     *Hub
	fetcher countsync.CountFetcher
	logger  zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, fetcher countsync.CountFetcher, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:     hub,
		fetcher: fetcher,
		logger:  logger,
	}
}

// HandleConnection godoc
// @Summary Establish a WebSocket connection for live participant counts
// @Description Upgrades the HTTP connection; the client then sends watch frames listing its visible event ids and receives count snapshots plus live updates
// @Tags events, websocket
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} gin.H "Unauthorized: JWT token missing or invalid"
// @Router /ws/counts [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	// Get user ID from context (set by auth middleware)
	userIDInterface, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User ID not found in context",
		})
		return
	}
	userID, ok := userIDInterface.(int64)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Invalid user ID format",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, 64),
		userID: userID,
		logger: h.logger,
	}
	client.session = countsync.NewSession(h.fetcher, client)

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("userID", userID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("Count feed connection established")
}

package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/krswitch/backend/internal/app/services"
)

// Handler for WebSocket connections
type Handler struct {
	hub       *Hub
	userStore services.UserStore
	logger    zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(
	hub *Hub,
	userStore services.UserStore,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		hub:       hub,
		userStore: userStore,
		logger:    logger,
	}
}

// HandleConnection godoc
// @Summary Establish a WebSocket connection for the barter event stream
// @Description Upgrades the HTTP connection to a WebSocket delivering offer lifecycle events in real time
// @Tags websocket
// @Produce json
// @Param nim query string true "Student NIM to register the connection under"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 400 {object} gin.H "Missing NIM"
// @Failure 404 {object} gin.H "Unknown student"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	nim := c.Query("nim")
	if nim == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameter 'nim' is required",
		})
		return
	}

	exists, err := h.userStore.Exists(c, nim)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("nim", nim).
			Msg("Failed to check student")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to check student",
		})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Student not found",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("nim", nim).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		nim:    nim,
		logger: h.logger,
	}
	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Str("nim", nim).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}

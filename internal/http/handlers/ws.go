package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"

	"memoryarena/internal/logger"
	"memoryarena/internal/service"
	"memoryarena/internal/store"
	"memoryarena/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WS upgrades the connection and binds it to the requested room. The
// token travels in the query string because browsers cannot set
// headers on websocket upgrades.
func (h *Handler) WS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return
	}
	uid, err := service.ParseJWT(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	roomID := c.Param("id")
	if _, err := h.Store.GetRoom(c.Request.Context(), roomID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load room, try again"})
		return
	}

	allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("ws upgrade failed", "room", roomID, "uid", uid, "error", err)
		return
	}

	// The request context dies when this handler returns; the session
	// outlives it.
	client := ws.NewClient(uid, roomID, conn, h.Lifecycle, h.Engine, h.Store)
	go client.Run(context.Background())
}

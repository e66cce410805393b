package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"memoryarena/internal/logger"
	"memoryarena/internal/room"
	"memoryarena/internal/store"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	maxMessageSize = 4096
	sendBuffer     = 64
)

// Client is one authenticated websocket session bound to one room. It
// streams recomputed views on every room snapshot and forwards the
// player's intents to the lifecycle and engine. The socket holds no
// authority: dropping it loses nothing but the live feed.
type Client struct {
	UID    string
	RoomID string
	Conn   *websocket.Conn
	Send   chan []byte

	lifecycle *room.Lifecycle
	engine    *room.Engine
	projector *room.Projector

	done chan struct{}
}

func NewClient(uid, roomID string, conn *websocket.Conn, lc *room.Lifecycle, eng *room.Engine, st store.DocumentStore) *Client {
	return &Client{
		UID:       uid,
		RoomID:    roomID,
		Conn:      conn,
		Send:      make(chan []byte, sendBuffer),
		lifecycle: lc,
		engine:    eng,
		projector: room.NewProjector(st, roomID, uid),
		done:      make(chan struct{}),
	}
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type intentMessage struct {
	Type    string `json:"type"`
	CardID  string `json:"card_id,omitempty"`
	IsReady bool   `json:"is_ready,omitempty"`
}

// Run drives the session until the socket or the room goes away. The
// initial view arrives before any intent is processed.
func (c *Client) Run(ctx context.Context) {
	go c.writePump()

	unsubscribe, err := c.projector.Watch(ctx, func(view room.View, ok bool) {
		if !ok {
			c.enqueue(envelope{Type: "room_closed"})
			return
		}
		payload, err := json.Marshal(view)
		if err != nil {
			logger.Error("view marshal failed", "room", c.RoomID, "uid", c.UID, "error", err)
			return
		}
		c.enqueue(envelope{Type: "room", Payload: payload})
	})
	if err != nil {
		logger.Warn("room watch failed", "room", c.RoomID, "uid", c.UID, "error", err)
		c.enqueue(envelope{Type: "room_closed"})
	}

	c.readPump(ctx)

	if unsubscribe != nil {
		unsubscribe()
	}
	close(c.done)
}

func (c *Client) readPump(ctx context.Context) {
	defer c.Conn.Close()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws read error", "room", c.RoomID, "uid", c.UID, "error", err)
			}
			return
		}
		c.handleIntent(ctx, msg)
	}
}

// handleIntent dispatches one client message. Rejections go back to
// this socket only; accepted intents become store writes that every
// subscriber observes.
func (c *Client) handleIntent(ctx context.Context, msg []byte) {
	var intent intentMessage
	if err := json.Unmarshal(msg, &intent); err != nil {
		c.sendError("malformed message")
		return
	}

	var err error
	switch intent.Type {
	case "flip":
		err = c.engine.Flip(ctx, c.RoomID, c.UID, intent.CardID)
	case "ready":
		err = c.lifecycle.SetPlayerReady(ctx, c.RoomID, c.UID, intent.IsReady)
	case "leave":
		err = c.lifecycle.LeaveRoom(ctx, c.RoomID, c.UID)
	case "ping":
		c.enqueue(envelope{Type: "pong"})
		return
	default:
		c.sendError("unknown intent: " + intent.Type)
		return
	}

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.enqueue(envelope{Type: "room_closed"})
			return
		}
		c.sendError(err.Error())
	}
}

func (c *Client) sendError(reason string) {
	payload, _ := json.Marshal(map[string]string{"error": reason})
	c.enqueue(envelope{Type: "error", Payload: payload})
}

// enqueue drops the message if the send buffer is full; the next
// snapshot supersedes anything a slow client missed.
func (c *Client) enqueue(env envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	default:
		logger.Warn("ws send buffer full, dropping", "room", c.RoomID, "uid", c.UID)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

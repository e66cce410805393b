package handlers

import (
	"errors"
	"net/http"
	"time"

	"memoryarena/internal/deck"
	"memoryarena/internal/domain"
	"memoryarena/internal/http/middleware"
	"memoryarena/internal/room"
	"memoryarena/internal/store"

	"github.com/gin-gonic/gin"
)

type createRoomRequest struct {
	GameType   domain.GameType   `json:"game_type"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Theme      domain.Theme      `json:"theme"`
}

// CreateRoom opens a new waiting room hosted by the caller.
func (h *Handler) CreateRoom(c *gin.Context) {
	uid, ok := middleware.UID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createRoomRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if req.GameType == "" {
		req.GameType = domain.GameCardFlip
	}
	if req.Difficulty == "" {
		req.Difficulty = domain.Difficulty4x4
	}
	if req.Theme == "" {
		req.Theme = domain.ThemeEmojis
	}
	// Reject configs the deck cannot serve before the room exists.
	if _, err := deck.Generate(req.Difficulty, req.Theme); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.Profiles.GetByUID(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown profile"})
		return
	}

	roomID, err := h.Lifecycle.CreateRoom(c.Request.Context(), profile.RoomPlayer(time.Now().UTC()), req.GameType, req.Difficulty, req.Theme)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room, try again"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"room_id": roomID})
}

// GetRoom returns the caller's projected view of the room.
func (h *Handler) GetRoom(c *gin.Context) {
	uid, _ := middleware.UID(c)

	snap, err := h.Store.GetRoom(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load room, try again"})
		return
	}

	c.JSON(http.StatusOK, room.Project(snap.Room, uid))
}

// JoinRoom adds the caller to the room. Rejections (missing, started,
// full) are soft: the response says joined=false and nothing changed.
func (h *Handler) JoinRoom(c *gin.Context) {
	uid, ok := middleware.UID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	profile, err := h.Profiles.GetByUID(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown profile"})
		return
	}

	joined, err := h.Lifecycle.JoinRoom(c.Request.Context(), c.Param("id"), profile.RoomPlayer(time.Now().UTC()))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join room, try again"})
		return
	}
	if !joined {
		c.JSON(http.StatusConflict, gin.H{"joined": false, "error": "room unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"joined": true})
}

// LeaveRoom removes the caller from the room.
func (h *Handler) LeaveRoom(c *gin.Context) {
	uid, ok := middleware.UID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.Lifecycle.LeaveRoom(c.Request.Context(), c.Param("id"), uid); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to leave room, try again"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"left": true})
}

type readyRequest struct {
	IsReady bool `json:"is_ready"`
}

// SetReady toggles the caller's readiness flag.
func (h *Handler) SetReady(c *gin.Context) {
	uid, ok := middleware.UID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req readyRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	err := h.Lifecycle.SetPlayerReady(c.Request.Context(), c.Param("id"), uid, req.IsReady)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"is_ready": req.IsReady})
	case errors.Is(err, store.ErrNotFound), errors.Is(err, room.ErrNotMember):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update readiness, try again"})
	}
}

type startRequest struct {
	FirstPlayerUID string `json:"first_player_uid"`
}

// StartGame deals a fresh deck and transitions the room to playing.
// Host only.
func (h *Handler) StartGame(c *gin.Context) {
	uid, ok := middleware.UID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req startRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	roomID := c.Param("id")
	snap, err := h.Store.GetRoom(c.Request.Context(), roomID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load room, try again"})
		return
	}
	if snap.Room.HostID != uid {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the host can start"})
		return
	}

	cards, err := deck.Generate(snap.Room.Difficulty, snap.Room.Theme)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to deal cards"})
		return
	}

	first := req.FirstPlayerUID
	if first == "" {
		first = uid
	}

	err = h.Lifecycle.StartGame(c.Request.Context(), roomID, cards, first)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"started": true})
	case errors.Is(err, room.ErrNotWaiting):
		c.JSON(http.StatusConflict, gin.H{"error": "game already started"})
	case errors.Is(err, room.ErrNotEnoughPlayers), errors.Is(err, room.ErrPlayersNotReady), errors.Is(err, room.ErrNotMember):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start game, try again"})
	}
}

type flipRequest struct {
	CardID string `json:"card_id"`
}

// Flip issues a flip intent. Rejections are reported to the caller
// only; other players never see them.
func (h *Handler) Flip(c *gin.Context) {
	uid, ok := middleware.UID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req flipRequest
	if err := c.BindJSON(&req); err != nil || req.CardID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card_id required"})
		return
	}

	err := h.Engine.Flip(c.Request.Context(), c.Param("id"), uid, req.CardID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"flipped": true})
	case errors.Is(err, room.ErrNotYourTurn),
		errors.Is(err, room.ErrResolutionPending),
		errors.Is(err, room.ErrCardUnavailable),
		errors.Is(err, room.ErrUnknownCard),
		errors.Is(err, room.ErrMatchFinished),
		errors.Is(err, room.ErrNoActiveMatch):
		c.JSON(http.StatusConflict, gin.H{"flipped": false, "error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "flip failed, try again"})
	}
}

// CleanupRoom deletes a finished room. Host only.
func (h *Handler) CleanupRoom(c *gin.Context) {
	uid, ok := middleware.UID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	roomID := c.Param("id")
	snap, err := h.Store.GetRoom(c.Request.Context(), roomID)
	if errors.Is(err, store.ErrNotFound) {
		// Already gone; same outcome.
		c.JSON(http.StatusOK, gin.H{"deleted": true})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load room, try again"})
		return
	}
	if snap.Room.HostID != uid {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the host can close the room"})
		return
	}
	if snap.Room.Status != domain.RoomFinished {
		c.JSON(http.StatusConflict, gin.H{"error": "room is not finished"})
		return
	}

	if err := h.Lifecycle.Cleanup(c.Request.Context(), roomID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to close room, try again"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

package handlers

import (
	"net/http"
	"strconv"

	"memoryarena/internal/domain"
	"memoryarena/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type soloResultRequest struct {
	GameType    domain.GameType   `json:"game_type"`
	Difficulty  domain.Difficulty `json:"difficulty"`
	Score       int               `json:"score"`
	Moves       int               `json:"moves"`
	TimeSeconds int               `json:"time_seconds"`
	IsWin       bool              `json:"is_win"`
}

// SubmitResult records a completed solo game. Write-once; the server
// never reads it back into game state.
func (h *Handler) SubmitResult(c *gin.Context) {
	uid, ok := middleware.UID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req soloResultRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if req.GameType == "" || req.Difficulty == "" || req.Score < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid result"})
		return
	}

	profile, err := h.Profiles.GetByUID(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown profile"})
		return
	}

	rec := &domain.MatchRecord{
		UID:         uid,
		DisplayName: profile.DisplayName,
		GameType:    req.GameType,
		Difficulty:  req.Difficulty,
		Score:       req.Score,
		Moves:       req.Moves,
		TimeSeconds: req.TimeSeconds,
		IsWin:       req.IsWin,
	}
	if err := h.ResultSvc.RecordSoloResult(c.Request.Context(), rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save result, try again"})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// MyResults returns the caller's recent game history.
func (h *Handler) MyResults(c *gin.Context) {
	uid, ok := middleware.UID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	records, err := h.Results.ListByUser(c.Request.Context(), uid, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history, try again"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": records})
}

// Leaderboard returns top scores for a game type, optionally narrowed
// by difficulty.
func (h *Handler) Leaderboard(c *gin.Context) {
	gameType := domain.GameType(c.DefaultQuery("game_type", string(domain.GameCardFlip)))
	difficulty := domain.Difficulty(c.Query("difficulty"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, err := h.Results.Leaderboard(c.Request.Context(), gameType, difficulty, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load leaderboard, try again"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"game_type":   gameType,
		"leaderboard": entries,
	})
}

package handlers

import (
	"net/http"
	"strings"

	"memoryarena/internal/domain"
	"memoryarena/internal/http/middleware"
	"memoryarena/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type guestAuthRequest struct {
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url"`
}

// GuestAuth registers a guest identity and returns its token. The
// multiplayer core treats the resulting uid as opaque.
func (h *Handler) GuestAuth(c *gin.Context) {
	var req guestAuthRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.DisplayName == "" || len(req.DisplayName) > 64 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "display_name required"})
		return
	}

	profile := &domain.Profile{
		UID:         uuid.NewString(),
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
	}
	if err := h.Profiles.Create(c.Request.Context(), profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create profile"})
		return
	}

	token, err := service.GenerateJWT(profile.UID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"profile": profile,
	})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *gin.Context) {
	uid, ok := middleware.UID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	profile, err := h.Profiles.GetByUID(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

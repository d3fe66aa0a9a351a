package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/paincake00/radarcore/internal/entity"
)

// UserIDHeader заголовок с id пользователя, проставляется шлюзом авторизации.
const UserIDHeader = "X-User-ID"

// UpdateLocationInput координаты указателями: 0 допустимое значение.
type UpdateLocationInput struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

type UpdateLocationResponse struct {
	Events []entity.MatchedEvent `json:"events"`
}

func (h *Handler) updateLocation(c *gin.Context) {
	userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing " + UserIDHeader})
		return
	}

	var input UpdateLocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pos := entity.Position{Latitude: *input.Latitude, Longitude: *input.Longitude}
	matches, err := h.RadarService.UpdateLocation(c.Request.Context(), userID, pos)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, UpdateLocationResponse{Events: matches})
}

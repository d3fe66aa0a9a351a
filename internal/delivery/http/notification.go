package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h *Handler) clearNotification(c *gin.Context) {
	h.RadarService.ClearNotification(c.Request.Context(), c.Param("userID"), c.Param("eventID"))
	c.Status(http.StatusNoContent)
}

// getStats сколько разных пользователей получили уведомление по каждому событию.
func (h *Handler) getStats(c *gin.Context) {
	window := h.StatsWindow
	if raw := c.Query("minutes"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid minutes"})
			return
		}
		window = m
	}

	stats, err := h.EventService.GetStats(c.Request.Context(), window)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"window_minutes": window, "user_counts": stats})
}

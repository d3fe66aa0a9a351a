package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/paincake00/radarcore/internal/entity"
)

func (h *Handler) getEvents(c *gin.Context) {
	snapshot, err := h.EventService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// publishEvents принимает ленту в том же виде, в каком она хранится: {"success": ..., "data": [...]}.
func (h *Handler) publishEvents(c *gin.Context) {
	var input entity.EventSnapshot
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Events == nil {
		input.Events = []entity.Event{}
	}

	if err := h.EventService.Publish(c.Request.Context(), input.Events); err != nil {
		respondError(c, err)
		return
	}

	h.Feed.Broadcast(FeedMessage{Type: "published", Count: len(input.Events), Events: input.Events})
	c.JSON(http.StatusOK, gin.H{"published": len(input.Events)})
}

func (h *Handler) nearbyUsers(c *gin.Context) {
	radius := 0.0
	if raw := c.Query("radius"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil || r <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid radius"})
			return
		}
		radius = r
	}

	users, err := h.RadarService.NearbyUsers(c.Request.Context(), c.Param("id"), radius)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"event_id": c.Param("id"), "users": users})
}

func (h *Handler) eventDistance(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	d, err := h.RadarService.EventDistance(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "distance_meters": d})
}

package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paincake00/radarcore/internal/delivery/http/middleware"
	"github.com/paincake00/radarcore/internal/metrics"
	"github.com/paincake00/radarcore/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger интерфейс для проверки соединения с сервисами (БД, Redis).
type Pinger interface {
	Ping(ctx context.Context) error
}

// RateLimit параметры ограничения частоты обновлений позиции.
type RateLimit struct {
	Limiter     middleware.Limiter
	MaxRequests int
	Window      time.Duration
}

// Handler структура, объединяющая все HTTP-обработчики.
type Handler struct {
	RadarService *usecase.RadarService
	EventService *usecase.EventService
	DBPinger     Pinger
	RedisPinger  Pinger
	APIKey       string
	StatsWindow  int
	RateLimit    RateLimit
	Metrics      *metrics.Metrics
	Gatherer     prometheus.Gatherer
	Feed         *FeedHub
}

// NewHandler создает новый экземпляр HTTP-обработчика.
func NewHandler(rs *usecase.RadarService, es *usecase.EventService, db Pinger, rds Pinger, apiKey string, statsWindow int) *Handler {
	return &Handler{
		RadarService: rs,
		EventService: es,
		DBPinger:     db,
		RedisPinger:  rds,
		APIKey:       apiKey,
		StatsWindow:  statsWindow,
		Metrics:      metrics.NewNop(),
		Gatherer:     prometheus.DefaultGatherer,
		Feed:         NewFeedHub(),
	}
}

// InitRoutes инициализирует роутер Gin и настраивает маршруты API.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.Default()

	router.GET("/api/v1/system/health", h.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.Gatherer, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	{
		radar := v1.Group("/radar")
		if h.RateLimit.Limiter != nil {
			radar.Use(middleware.RateLimitMiddleware(h.RateLimit.Limiter, h.RateLimit.MaxRequests, h.RateLimit.Window, h.Metrics.RateLimited))
		}
		{
			radar.POST("/location", h.updateLocation)
		}

		events := v1.Group("/events")
		// Лента и служебные запросы только с API-ключом
		events.Use(middleware.AuthMiddleware(h.APIKey))
		{
			events.GET("", h.getEvents)
			events.PUT("", h.publishEvents)
			events.GET("/ws", h.eventFeed)
			events.GET("/distance", h.eventDistance) // Отдельно от /:id
			events.GET("/:id/users", h.nearbyUsers)
		}

		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthMiddleware(h.APIKey))
		{
			notifications.GET("/stats", h.getStats)
			notifications.DELETE("/:userID/:eventID", h.clearNotification)
		}
	}

	return router
}

// healthCheck проверяет состояние сервиса и зависимостей (PostgreSQL, Redis).
func (h *Handler) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	if h.DBPinger != nil {
		if err := h.DBPinger.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": err.Error()})
			return
		}
	}
	if h.RedisPinger != nil {
		if err := h.RedisPinger.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "redis": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError переводит ошибки сервисов в HTTP-статусы.
func respondError(c *gin.Context, err error) {
	var ve *usecase.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, usecase.ErrEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrIndexUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

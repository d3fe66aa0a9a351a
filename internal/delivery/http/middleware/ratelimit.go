package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paincake00/radarcore/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
)

// Limiter счетчик запросов с фиксированным окном.
type Limiter interface {
	// Allow false, если лимит исчерпан; второе значение: сколько ждать до нового окна.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error)
}

// RateLimitMiddleware ограничивает частоту запросов одного пользователя (заголовок X-User-ID).
// Запросы без пользователя пропускаются дальше, их отклонит обработчик.
// Если хранилище счетчиков недоступно, запрос пропускается.
func RateLimitMiddleware(l Limiter, limit int, window time.Duration, rejected prometheus.Counter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.Next()
			return
		}

		allowed, retryAfter, err := l.Allow(c.Request.Context(), "rate_limit:"+userID, limit, window)
		if err != nil {
			logger.Warnf("Rate limiter unavailable for user %s: %v", userID, err)
			c.Next()
			return
		}
		if !allowed {
			if rejected != nil {
				rejected.Inc()
			}
			secs := int(math.Ceil(retryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests",
				"retry_after": secs,
			})
			return
		}

		c.Next()
	}
}

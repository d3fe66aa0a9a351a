package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// APIKeyHeader заголовок с ключом для служебных маршрутов.
	APIKeyHeader = "X-API-Key"
	// APIKeyQuery параметр запроса для клиентов, которые не могут выставить заголовок (браузерный WebSocket).
	APIKeyQuery = "api_key"
)

func presentedKey(c *gin.Context) string {
	if key := c.GetHeader(APIKeyHeader); key != "" {
		return key
	}
	return c.Query(APIKeyQuery)
}

// AuthMiddleware пропускает запрос, только если ключ совпадает с apiKey.
// Пустой apiKey отключает проверку (локальный запуск).
func AuthMiddleware(apiKey string) gin.HandlerFunc {
	expected := []byte(apiKey)
	return func(c *gin.Context) {
		if len(expected) == 0 {
			c.Next()
			return
		}
		if subtle.ConstantTimeCompare([]byte(presentedKey(c)), expected) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

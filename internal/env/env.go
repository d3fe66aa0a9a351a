// Package env чтение отдельных переменных окружения со значением по умолчанию.
// Сервис читает конфигурацию через internal/config; env нужен утилитам из cmd/.
package env

import (
	"os"
	"strconv"
	"time"
)

// lookup возвращает fallback, если переменной нет, она пустая или parse вернул ошибку.
func lookup[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		return fallback
	}
	return v
}

func GetString(key string, fallback string) string {
	return lookup(key, fallback, func(s string) (string, error) { return s, nil })
}

func GetInt(key string, fallback int) int {
	return lookup(key, fallback, strconv.Atoi)
}

// GetDuration принимает значения вида "250ms", "2s".
func GetDuration(key string, fallback time.Duration) time.Duration {
	return lookup(key, fallback, time.ParseDuration)
}

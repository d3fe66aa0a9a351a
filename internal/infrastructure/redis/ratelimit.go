package redis

import (
	"context"
	"time"
)

// Rate limiting (Ограничение частоты)

// Allow фиксированное окно: INCR ключа, TTL ставится на первом запросе окна.
// Возвращает, пропускать ли запрос, и сколько осталось до конца окна.
func (r *RedisRepo) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	count, err := r.Client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if count == 1 {
		if err := r.Client.Expire(ctx, key, window).Err(); err != nil {
			return false, 0, err
		}
	}
	if count <= int64(limit) {
		return true, 0, nil
	}

	ttl, err := r.Client.TTL(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if ttl < 0 {
		// Ключ остался без TTL (сбой между INCR и EXPIRE): восстанавливаем окно.
		_ = r.Client.Expire(ctx, key, window).Err()
		ttl = window
	}
	return false, ttl, nil
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL Store (Кеш с временем жизни)

// GetJSON читает и декодирует значение. false: ключа нет или срок истек.
func (r *RedisRepo) GetJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	val, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON записывает значение с TTL (SET EX). ttl = 0: без срока.
func (r *RedisRepo) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key, data, ttl).Err()
}

// SetJSONIfAbsent SET NX EX: проверка и запись одной командой.
func (r *RedisRepo) SetJSONIfAbsent(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	return r.Client.SetNX(ctx, key, data, ttl).Result()
}

// Delete удаляет ключ; отсутствие ключа ошибкой не считается.
func (r *RedisRepo) Delete(ctx context.Context, key string) error {
	return r.Client.Del(ctx, key).Err()
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paincake00/radarcore/internal/entity"
	"github.com/redis/go-redis/v9"
)

// Live events (Лента событий)

// GetLiveEvents читает полный срез событий. nil без ошибки: ленту еще не публиковали.
func (r *RedisRepo) GetLiveEvents(ctx context.Context) (*entity.EventSnapshot, error) {
	val, err := r.Client.Get(ctx, r.EventsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snapshot entity.EventSnapshot
	if err := json.Unmarshal(val, &snapshot); err != nil {
		return nil, fmt.Errorf("decode live events: %w", err)
	}
	return &snapshot, nil
}

// stagingTTL срок жизни временного GEO-множества, если публикация прервалась до RENAME.
const stagingTTL = time.Minute

// PublishEvents заменяет срез и GEO-множество событий.
// Координаты сначала пишутся во временный ключ: если GEOADD отклонил точку,
// текущие срез и индекс не меняются. Затем RENAME и SET выполняются в одной транзакции (MULTI/EXEC).
func (r *RedisRepo) PublishEvents(ctx context.Context, events []entity.Event) error {
	if events == nil {
		events = []entity.Event{}
	}
	data, err := json.Marshal(entity.EventSnapshot{Success: true, Events: events})
	if err != nil {
		return err
	}

	locations := make([]*redis.GeoLocation, 0, len(events))
	for _, ev := range events {
		locations = append(locations, &redis.GeoLocation{
			Name:      ev.ID,
			Longitude: float64(ev.Lon),
			Latitude:  float64(ev.Lat),
		})
	}

	staging := ""
	if len(locations) > 0 {
		staging = r.EventsGeoKey + ":staging:" + uuid.NewString()
		if err := r.Client.GeoAdd(ctx, staging, locations...).Err(); err != nil {
			return fmt.Errorf("stage events geo set: %w", err)
		}
		if err := r.Client.Expire(ctx, staging, stagingTTL).Err(); err != nil {
			r.Client.Del(ctx, staging)
			return fmt.Errorf("stage events geo set: %w", err)
		}
	}

	_, err = r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if staging == "" {
			pipe.Del(ctx, r.EventsGeoKey)
		} else {
			pipe.Rename(ctx, staging, r.EventsGeoKey)
			pipe.Persist(ctx, r.EventsGeoKey) // RENAME переносит TTL временного ключа
		}
		pipe.Set(ctx, r.EventsKey, data, 0)
		return nil
	})
	return err
}

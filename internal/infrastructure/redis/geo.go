package redis

import (
	"context"
	"errors"

	"github.com/paincake00/radarcore/internal/entity"
	"github.com/redis/go-redis/v9"
)

// GeoIndex

// UpsertPosition добавляет или перемещает член GEO-множества (GEOADD).
func (r *RedisRepo) UpsertPosition(ctx context.Context, setKey, member string, pos entity.Position) error {
	return r.Client.GeoAdd(ctx, setKey, &redis.GeoLocation{
		Name:      member,
		Longitude: pos.Longitude,
		Latitude:  pos.Latitude,
	}).Err()
}

// RadiusSearch члены в радиусе (GEORADIUS_RO).
func (r *RedisRepo) RadiusSearch(ctx context.Context, setKey string, center entity.Position, radiusMeters float64) ([]string, error) {
	locs, err := r.Client.GeoRadius(ctx, setKey, center.Longitude, center.Latitude, &redis.GeoRadiusQuery{
		Radius: radiusMeters,
		Unit:   "m",
		Sort:   "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}
	members := make([]string, 0, len(locs))
	for _, l := range locs {
		members = append(members, l.Name)
	}
	return members, nil
}

// RadiusSearchWithDistance члены в радиусе вместе с расстоянием, одним запросом (WITHDIST).
func (r *RedisRepo) RadiusSearchWithDistance(ctx context.Context, setKey string, center entity.Position, radiusMeters float64) ([]entity.GeoHit, error) {
	locs, err := r.Client.GeoRadius(ctx, setKey, center.Longitude, center.Latitude, &redis.GeoRadiusQuery{
		Radius:   radiusMeters,
		Unit:     "m",
		WithDist: true,
		Sort:     "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}
	hits := make([]entity.GeoHit, 0, len(locs))
	for _, l := range locs {
		hits = append(hits, entity.GeoHit{Member: l.Name, Distance: l.Dist})
	}
	return hits, nil
}

// DistanceBetween расстояние между двумя членами (GEODIST). entity.ErrNotFound, если одного из них нет.
func (r *RedisRepo) DistanceBetween(ctx context.Context, setKey, memberA, memberB string) (float64, error) {
	d, err := r.Client.GeoDist(ctx, setKey, memberA, memberB, "m").Result()
	if errors.Is(err, redis.Nil) {
		return 0, entity.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return d, nil
}

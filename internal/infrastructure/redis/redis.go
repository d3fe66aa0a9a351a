package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultEventsKey    = "events:live"
	DefaultEventsGeoKey = "events:geo"
)

// RedisRepo реализация гео-индекса, TTL-хранилища, ленты событий, очереди и счетчиков на Redis.
type RedisRepo struct {
	Client *redis.Client

	EventsKey    string        // JSON-срез живых событий
	EventsGeoKey string        // GEO-множество координат событий
	BlockTimeout time.Duration // таймаут BRPOP в Dequeue
}

// Options параметры подключения.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// New создает новое подключение к Redis.
func New(opts Options) (*RedisRepo, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewWithClient(client), nil
}

// NewWithClient оборачивает готовый клиент (используется в тестах).
func NewWithClient(client *redis.Client) *RedisRepo {
	return &RedisRepo{
		Client:       client,
		EventsKey:    DefaultEventsKey,
		EventsGeoKey: DefaultEventsGeoKey,
		BlockTimeout: 5 * time.Second,
	}
}

// Close закрывает соединение.
func (r *RedisRepo) Close() {
	r.Client.Close()
}

// Ping проверяет доступность Redis.
func (r *RedisRepo) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

// Queue (Очередь)

// Enqueue добавляет задачу в очередь списка (LPush).
func (r *RedisRepo) Enqueue(ctx context.Context, queueName string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.Client.LPush(ctx, queueName, data).Err()
}

// Dequeue извлекает задачу из очереди (BRPop). Пустая строка: за BlockTimeout ничего не пришло.
func (r *RedisRepo) Dequeue(ctx context.Context, queueName string) (string, error) {
	result, err := r.Client.BRPop(ctx, r.BlockTimeout, queueName).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	// result содержит [имя_очереди, значение]
	if len(result) < 2 {
		return "", fmt.Errorf("redis pop unexpected result")
	}
	return result[1], nil
}

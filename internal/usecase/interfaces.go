package usecase

import (
	"context"
	"time"

	"github.com/paincake00/radarcore/internal/entity"
)

// GeoIndex гео-индекс (Redis GEO): один член множества: одна координата.
type GeoIndex interface {
	UpsertPosition(ctx context.Context, setKey, member string, pos entity.Position) error
	RadiusSearch(ctx context.Context, setKey string, center entity.Position, radiusMeters float64) ([]string, error)
	RadiusSearchWithDistance(ctx context.Context, setKey string, center entity.Position, radiusMeters float64) ([]entity.GeoHit, error)
	DistanceBetween(ctx context.Context, setKey, memberA, memberB string) (float64, error)
}

// EventSource отдает полный срез живых событий.
type EventSource interface {
	GetLiveEvents(ctx context.Context) (*entity.EventSnapshot, error)
}

// EventPublisher заменяет срез событий и их гео-индекс.
type EventPublisher interface {
	EventSource
	PublishEvents(ctx context.Context, events []entity.Event) error
}

// TTLStore key-value хранилище JSON-значений с TTL.
type TTLStore interface {
	// GetJSON декодирует значение в dst; false, если ключа нет.
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// SetJSONIfAbsent атомарно записывает значение, только если ключа нет.
	SetJSONIfAbsent(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

type DeliveryGateway interface {
	Send(ctx context.Context, userID, deviceToken string, payload entity.PushPayload) error
}

type UserDirectory interface {
	// GetDeviceToken возвращает токен устройства; false, если токена нет.
	GetDeviceToken(ctx context.Context, userID string) (string, bool, error)
}

// LocationCache последние принятые позиции пользователей.
// Put заменяет запись целиком; при гонке побеждает последний писатель.
type LocationCache interface {
	Get(userID string) (entity.TrackedLocation, bool)
	Put(loc entity.TrackedLocation)
}

type DeliveryLog interface {
	RecordDelivery(ctx context.Context, d *entity.Delivery) error
	GetStats(ctx context.Context, windowMinutes int) (map[string]int, error) // event_id -> user_count
}

// QueueRepository очередь задач для фоновой доставки.
type QueueRepository interface {
	Enqueue(ctx context.Context, queueName string, payload interface{}) error
	// Dequeue блокируется до появления задачи; пустая строка, если задач нет.
	Dequeue(ctx context.Context, queueName string) (string, error)
}

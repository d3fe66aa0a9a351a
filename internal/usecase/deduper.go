package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/paincake00/radarcore/internal/entity"
	"github.com/paincake00/radarcore/internal/logger"
	"github.com/paincake00/radarcore/internal/metrics"
)

const (
	DefaultNotificationTTL   = 900 * time.Second
	DefaultDeliveryRecordTTL = 600 * time.Second
)

// StoreOutcome результат попытки резервирования в хранилище.
type StoreOutcome int

const (
	StoreMiss        StoreOutcome = iota // ключа не было, резерв записан
	StoreHit                             // уже отправляли в пределах TTL
	StoreUnavailable                     // хранилище не ответило
)

func (o StoreOutcome) String() string {
	switch o {
	case StoreMiss:
		return "miss"
	case StoreHit:
		return "hit"
	default:
		return "unavailable"
	}
}

type Decision int

const (
	Allowed Decision = iota
	Denied
)

// decide: недоступность хранилища разрешает отправку (fail-open).
func decide(o StoreOutcome) Decision {
	if o == StoreHit {
		return Denied
	}
	return Allowed
}

// KeyFunc строит ключ хранилища для пары (пользователь, событие).
type KeyFunc func(userID, eventID string) string

// NotificationKey раскладка ключей дедупликатора уведомлений.
func NotificationKey(userID, eventID string) string {
	return fmt.Sprintf("notification:%s:%s", userID, eventID)
}

// DeliveryRecordKey раскладка ключей журнала доставок воркера.
func DeliveryRecordKey(userID, eventID string) string {
	return fmt.Sprintf("user:%s:notified:%s", userID, eventID)
}

// Deduper "не чаще раза за окно" для пары (пользователь, событие) поверх TTLStore.
// Экземпляры с разными KeyFunc и TTL не пересекаются по ключам.
type Deduper struct {
	Store   TTLStore
	Key     KeyFunc
	TTL     time.Duration
	Metrics *metrics.Metrics
	now     func() time.Time
}

func NewDeduper(store TTLStore, key KeyFunc, ttl time.Duration, m *metrics.Metrics) *Deduper {
	if m == nil {
		m = metrics.NewNop()
	}
	return &Deduper{Store: store, Key: key, TTL: ttl, Metrics: m, now: time.Now}
}

func (d *Deduper) record(userID, eventID string) entity.NotificationRecord {
	return entity.NotificationRecord{
		UserID:     userID,
		EventID:    eventID,
		SentAt:     d.now().UnixMilli(),
		TTLSeconds: int64(d.TTL / time.Second),
	}
}

// Reserve одна атомарная операция check-and-set.
func (d *Deduper) Reserve(ctx context.Context, userID, eventID string) StoreOutcome {
	key := d.Key(userID, eventID)
	created, err := d.Store.SetJSONIfAbsent(ctx, key, d.record(userID, eventID), d.TTL)
	if err != nil {
		logger.Errorf("Error checking notification cache for %s: %v", key, err)
		return StoreUnavailable
	}
	if !created {
		return StoreHit
	}
	return StoreMiss
}

// TryAcquire true: можно отправлять. Резерв уже записан, отдельный MarkSent не нужен.
func (d *Deduper) TryAcquire(ctx context.Context, userID, eventID string) bool {
	outcome := d.Reserve(ctx, userID, eventID)
	d.Metrics.DedupDecisions.WithLabelValues(outcome.String()).Inc()
	if outcome == StoreHit {
		logger.Debugf("Notification already sent to user %s for event %s", userID, eventID)
	}
	return decide(outcome) == Allowed
}

// MarkSent записывает (или продлевает) отметку об отправке.
func (d *Deduper) MarkSent(ctx context.Context, userID, eventID string) error {
	if err := d.Store.SetJSON(ctx, d.Key(userID, eventID), d.record(userID, eventID), d.TTL); err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	return nil
}

// Has проверяет наличие отметки без её записи.
func (d *Deduper) Has(ctx context.Context, userID, eventID string) (bool, error) {
	var rec entity.NotificationRecord
	return d.Store.GetJSON(ctx, d.Key(userID, eventID), &rec)
}

// Clear снимает отметку. Ошибки только логируются.
func (d *Deduper) Clear(ctx context.Context, userID, eventID string) {
	key := d.Key(userID, eventID)
	if err := d.Store.Delete(ctx, key); err != nil {
		logger.Errorf("Error clearing notification cache for %s: %v", key, err)
	}
}

package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrNotFound запись (член гео-множества, пользователь) отсутствует.
var ErrNotFound = errors.New("not found")

// Position координата пользователя или события в градусах WGS 84.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// TrackedLocation последняя принятая (проиндексированная) позиция пользователя.
type TrackedLocation struct {
	UserID     string   `json:"user_id"`
	Position   Position `json:"position"`
	CapturedAt int64    `json:"captured_at"` // epoch millis
}

// Age возвращает возраст записи относительно now.
func (t TrackedLocation) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(t.CapturedAt))
}

// Coordinate число, которое в ленте событий может прийти как строкой ("-0.127721"), так и числом.
type Coordinate float64

func (c *Coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid coordinate %q: %w", s, err)
		}
		*c = Coordinate(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Coordinate(v)
	return nil
}

// Event событие из живой ленты. Лента отдаётся целиком, ядро её только читает.
type Event struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Category string     `json:"category"`
	Lat      Coordinate `json:"lat"`
	Lon      Coordinate `json:"lon"`
	EndLocal string     `json:"end_local"`

	// Payload исходный JSON события, отдаётся дальше без изменений.
	Payload json.RawMessage `json:"-"`
}

type eventFields Event

func (e *Event) UnmarshalJSON(data []byte) error {
	var f eventFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*e = Event(f)
	e.Payload = append(json.RawMessage(nil), data...)
	return nil
}

func (e Event) MarshalJSON() ([]byte, error) {
	if len(e.Payload) > 0 {
		return e.Payload, nil
	}
	return json.Marshal(eventFields(e))
}

// Position координата события.
func (e Event) Position() Position {
	return Position{Latitude: float64(e.Lat), Longitude: float64(e.Lon)}
}

var endTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-07",
	"2006-01-02T15:04:05-07",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// EndTime разбирает EndLocal. Значение без смещения считается UTC.
func (e Event) EndTime() (time.Time, error) {
	for _, layout := range endTimeLayouts {
		if t, err := time.Parse(layout, e.EndLocal); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized end_local %q", e.EndLocal)
}

// EventSnapshot полный срез живых событий, как он хранится в Redis.
type EventSnapshot struct {
	Success bool    `json:"success"`
	Events  []Event `json:"data"`
}

// MatchedEvent событие рядом с пользователем; пересчитывается на каждый запрос.
type MatchedEvent struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	EndLocal string  `json:"end_local"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Distance float64 `json:"distance"` // метры
}

// GeoHit результат радиусного поиска в гео-индексе.
type GeoHit struct {
	Member   string
	Distance float64 // метры
}

// NotificationRecord отметка "уведомление отправлено" для пары (пользователь, событие).
type NotificationRecord struct {
	UserID     string `json:"user_id"`
	EventID    string `json:"event_id"`
	SentAt     int64  `json:"sent_at"` // epoch millis
	TTLSeconds int64  `json:"ttl_seconds"`
}

// PushPayload содержимое push-уведомления о событии рядом.
type PushPayload struct {
	EventID     string  `json:"event_id"`
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Description string  `json:"description"`
	DeepLink    string  `json:"deep_link"`
}

// PushTask задача в очереди Redis, обрабатывается воркером.
type PushTask struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	DeviceToken string      `json:"device_token"`
	Payload     PushPayload `json:"payload"`
	CreatedAt   string      `json:"created_at"`
}

// Delivery факт успешной доставки уведомления (журнал в PostgreSQL).
type Delivery struct {
	ID          int       `json:"id"`
	MessageID   string    `json:"message_id"`
	UserID      string    `json:"user_id"`
	EventID     string    `json:"event_id"`
	DeliveredAt time.Time `json:"delivered_at"`
}

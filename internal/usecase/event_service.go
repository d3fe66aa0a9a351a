package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/paincake00/radarcore/internal/entity"
)

// EventService публикация живой ленты событий и статистика уведомлений.
type EventService struct {
	Publisher EventPublisher
	Log       DeliveryLog
}

func NewEventService(p EventPublisher, l DeliveryLog) *EventService {
	return &EventService{Publisher: p, Log: l}
}

// Publish заменяет ленту целиком. Событие без id, с неверными координатами или повтором id отклоняется.
func (s *EventService) Publish(ctx context.Context, events []entity.Event) error {
	seen := make(map[string]struct{}, len(events))
	for i, ev := range events {
		if ev.ID == "" {
			return &ValidationError{Field: fmt.Sprintf("data[%d].id", i), Msg: "required"}
		}
		if _, dup := seen[ev.ID]; dup {
			return &ValidationError{Field: fmt.Sprintf("data[%d].id", i), Msg: "duplicate id " + ev.ID}
		}
		seen[ev.ID] = struct{}{}
		var ve *ValidationError
		if err := ValidateIndexable(ev.Position()); errors.As(err, &ve) {
			return &ValidationError{Field: fmt.Sprintf("data[%d].%s", i, ve.Field), Msg: ve.Msg}
		}
	}
	if err := s.Publisher.PublishEvents(ctx, events); err != nil {
		return indexError("publish events", err)
	}
	return nil
}

// List возвращает текущий срез; пустой срез, если ленты еще нет.
func (s *EventService) List(ctx context.Context) (*entity.EventSnapshot, error) {
	snapshot, err := s.Publisher.GetLiveEvents(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return &entity.EventSnapshot{Success: false, Events: []entity.Event{}}, nil
	}
	return snapshot, nil
}

// GetStats сколько разных пользователей получили уведомление по каждому событию за последние N минут.
func (s *EventService) GetStats(ctx context.Context, windowMinutes int) (map[string]int, error) {
	return s.Log.GetStats(ctx, windowMinutes)
}

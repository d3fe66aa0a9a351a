package usecase

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/paincake00/radarcore/internal/entity"
	"github.com/paincake00/radarcore/internal/logger"
)

// EventsGeoKey множество Redis GEO с координатами живых событий.
const EventsGeoKey = "events:geo"

// EventMatcher ищет события рядом с точкой и в окне по времени.
type EventMatcher struct {
	Geo    GeoIndex
	GeoKey string
}

func NewEventMatcher(geo GeoIndex) *EventMatcher {
	return &EventMatcher{Geo: geo, GeoKey: EventsGeoKey}
}

// FindNearby возвращает события из events в радиусе radiusMeters от position,
// у которых |end_local - now| <= window. Результат отсортирован по расстоянию, затем по id.
// Ошибка возвращается только при сбое гео-индекса.
func (m *EventMatcher) FindNearby(ctx context.Context, position entity.Position, radiusMeters float64, events []entity.Event, window time.Duration, now time.Time) ([]entity.MatchedEvent, error) {
	if len(events) == 0 {
		return []entity.MatchedEvent{}, nil
	}

	// Один запрос и на принадлежность, и на расстояние.
	hits, err := m.Geo.RadiusSearchWithDistance(ctx, m.GeoKey, position, radiusMeters)
	if err != nil {
		return nil, indexError("radius search", err)
	}
	distances := make(map[string]float64, len(hits))
	for _, h := range hits {
		distances[h.Member] = h.Distance
	}

	matches := make([]entity.MatchedEvent, 0, len(hits))
	seen := make(map[string]struct{}, len(hits))
	for _, ev := range events {
		dist, ok := distances[ev.ID]
		if !ok {
			continue
		}
		if _, dup := seen[ev.ID]; dup {
			logger.Warnf("Duplicate event %s in snapshot, keeping first", ev.ID)
			continue
		}
		// Повтор отбрасывается, даже если первая копия не прошла фильтры.
		seen[ev.ID] = struct{}{}
		if dist < 0 || dist > radiusMeters {
			logger.Warnf("Event %s dropped: distance %.2fm outside [0, %.0f]", ev.ID, dist, radiusMeters)
			continue
		}

		end, err := ev.EndTime()
		if err != nil {
			logger.Warnf("Event %s dropped: %v", ev.ID, err)
			continue
		}
		diff := end.Sub(now)
		if diff < 0 {
			diff = -diff
		}
		if diff > window {
			logger.Debugf("Event %s filtered out by time: diff=%v, window=%v", ev.ID, diff, window)
			continue
		}

		matches = append(matches, entity.MatchedEvent{
			ID:       ev.ID,
			Title:    ev.Title,
			Category: ev.Category,
			EndLocal: ev.EndLocal,
			Lat:      float64(ev.Lat),
			Lon:      float64(ev.Lon),
			Distance: dist,
		})
	}

	slices.SortFunc(matches, func(a, b entity.MatchedEvent) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return matches, nil
}

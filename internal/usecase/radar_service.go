package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paincake00/radarcore/internal/entity"
	"github.com/paincake00/radarcore/internal/logger"
	"github.com/paincake00/radarcore/internal/metrics"
)

const (
	// UserLocationsKey множество Redis GEO с позициями пользователей.
	UserLocationsKey = "user:locations"

	DefaultSearchRadius    = 1000.0 // метры
	DefaultTimeWindow      = 10 * time.Minute
	DefaultUserLocationTTL = 900 * time.Second
)

// RadarSettings параметры поиска и кеширования.
type RadarSettings struct {
	SearchRadius    float64
	TimeWindow      time.Duration
	UserLocationTTL time.Duration
}

// RadarService обрабатывает обновление позиции: фильтр перемещений -> запись в индекс ->
// поиск событий -> дедупликация -> отправка уведомлений.
type RadarService struct {
	Gate      *MovementGate
	Matcher   *EventMatcher
	Deduper   *Deduper
	Geo       GeoIndex
	Events    EventSource
	Store     TTLStore
	Locations LocationCache
	Users     UserDirectory
	Gateway   DeliveryGateway
	Metrics   *metrics.Metrics
	Settings  RadarSettings

	now func() time.Time
}

// NewRadarService создает оркестратор; нулевые настройки заменяются значениями по умолчанию.
func NewRadarService(
	gate *MovementGate,
	matcher *EventMatcher,
	deduper *Deduper,
	geo GeoIndex,
	events EventSource,
	store TTLStore,
	locations LocationCache,
	users UserDirectory,
	gateway DeliveryGateway,
	m *metrics.Metrics,
	settings RadarSettings,
) *RadarService {
	if settings.SearchRadius <= 0 {
		settings.SearchRadius = DefaultSearchRadius
	}
	if settings.TimeWindow <= 0 {
		settings.TimeWindow = DefaultTimeWindow
	}
	if settings.UserLocationTTL <= 0 {
		settings.UserLocationTTL = DefaultUserLocationTTL
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &RadarService{
		Gate:      gate,
		Matcher:   matcher,
		Deduper:   deduper,
		Geo:       geo,
		Events:    events,
		Store:     store,
		Locations: locations,
		Users:     users,
		Gateway:   gateway,
		Metrics:   m,
		Settings:  settings,
		now:       time.Now,
	}
}

// lastSeen значение маркера user:locations:{id}.
type lastSeen struct {
	Timestamp int64 `json:"timestamp"`
}

// UpdateLocation принимает новую позицию пользователя и возвращает события рядом.
// Прерывают обработку только ошибки валидации и записи в индекс;
// сбои чтения и уведомлений на список событий не влияют.
func (s *RadarService) UpdateLocation(ctx context.Context, userID string, pos entity.Position) ([]entity.MatchedEvent, error) {
	if strings.TrimSpace(userID) == "" {
		s.Metrics.LocationUpdates.WithLabelValues("invalid").Inc()
		return nil, &ValidationError{Field: "user_id", Msg: "required"}
	}
	if err := ValidatePosition(pos); err != nil {
		s.Metrics.LocationUpdates.WithLabelValues("invalid").Inc()
		return nil, err
	}

	logger.Infof("Processing location update for user %s at %.6f, %.6f", userID, pos.Latitude, pos.Longitude)
	now := s.now()

	var previous *entity.TrackedLocation
	if cached, ok := s.Locations.Get(userID); ok {
		previous = &cached
	}

	if s.Gate.ShouldReindex(userID, previous, pos, now) {
		s.Metrics.Reindex.WithLabelValues("write").Inc()
		if err := s.Geo.UpsertPosition(ctx, UserLocationsKey, userID, pos); err != nil {
			s.Metrics.LocationUpdates.WithLabelValues("index_error").Inc()
			logger.Errorf("Failed to update location for user %s: %v", userID, err)
			return nil, indexError("upsert position", err)
		}
		// Маркер активности вспомогательный, его потеря не отменяет обновление.
		seenKey := fmt.Sprintf("%s:%s", UserLocationsKey, userID)
		if err := s.Store.SetJSON(ctx, seenKey, lastSeen{Timestamp: now.UnixMilli()}, s.Settings.UserLocationTTL); err != nil {
			logger.Warnf("Failed to refresh last-seen marker for user %s: %v", userID, err)
		}
		s.Locations.Put(entity.TrackedLocation{UserID: userID, Position: pos, CapturedAt: now.UnixMilli()})
	} else {
		s.Metrics.Reindex.WithLabelValues("skip").Inc()
		logger.Debugf("Skipping index write for user %s: movement below threshold", userID)
	}

	matches := s.findNearby(ctx, pos, now)
	s.Metrics.MatchedEvents.Observe(float64(len(matches)))
	logger.Infof("Found %d nearby events for user %s", len(matches), userID)

	if len(matches) > 0 {
		s.notify(ctx, userID, matches)
	}

	s.Metrics.LocationUpdates.WithLabelValues("ok").Inc()
	return matches, nil
}

// findNearby сбои чтения превращает в пустой результат.
func (s *RadarService) findNearby(ctx context.Context, pos entity.Position, now time.Time) []entity.MatchedEvent {
	snapshot, err := s.Events.GetLiveEvents(ctx)
	if err != nil {
		logger.Errorf("Failed to load live events: %v", err)
		return []entity.MatchedEvent{}
	}
	if snapshot == nil || !snapshot.Success {
		logger.Warnf("No events data found or invalid format")
		return []entity.MatchedEvent{}
	}

	matches, err := s.Matcher.FindNearby(ctx, pos, s.Settings.SearchRadius, snapshot.Events, s.Settings.TimeWindow, now)
	if err != nil {
		logger.Errorf("Failed to find nearby events: %v", err)
		return []entity.MatchedEvent{}
	}
	return matches
}

// notify отправляет уведомления по порядку расстояния. Ошибка по одному событию не мешает остальным,
// резерв дедупликатора при неудачной отправке не снимается.
func (s *RadarService) notify(ctx context.Context, userID string, matches []entity.MatchedEvent) {
	token, ok, err := s.Users.GetDeviceToken(ctx, userID)
	if err != nil {
		logger.Errorf("Failed to resolve device token for user %s: %v", userID, err)
		return
	}
	if !ok || token == "" {
		logger.Warnf("No valid device token found for user %s", userID)
		return
	}

	for _, ev := range matches {
		if !s.Deduper.TryAcquire(ctx, userID, ev.ID) {
			s.Metrics.Deliveries.WithLabelValues("duplicate").Inc()
			continue
		}
		if err := s.Gateway.Send(ctx, userID, token, BuildPushPayload(ev)); err != nil {
			s.Metrics.Deliveries.WithLabelValues("failed").Inc()
			logger.Errorf("Failed to send notification to user %s for event %s: %v", userID, ev.ID, err)
			continue
		}
		s.Metrics.Deliveries.WithLabelValues("sent").Inc()
		logger.Infof("Notification queued for user %s, event %s", userID, ev.ID)
	}
}

// BuildPushPayload формирует содержимое уведомления.
func BuildPushPayload(ev entity.MatchedEvent) entity.PushPayload {
	title := ev.Title
	if title == "" {
		title = "Unknown Event"
	}
	category := ev.Category
	if category == "" {
		category = "Unknown Category"
	}
	return entity.PushPayload{
		EventID:     ev.ID,
		Title:       title,
		Category:    category,
		Latitude:    ev.Lat,
		Longitude:   ev.Lon,
		Description: title,
		DeepLink:    "cabradar://event/" + ev.ID,
	}
}

// NearbyUsers пользователи, проиндексированные в радиусе от события.
func (s *RadarService) NearbyUsers(ctx context.Context, eventID string, radiusMeters float64) ([]string, error) {
	if radiusMeters <= 0 {
		radiusMeters = s.Settings.SearchRadius
	}
	snapshot, err := s.Events.GetLiveEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load live events: %w", err)
	}
	if snapshot == nil {
		return nil, ErrEventNotFound
	}
	for _, ev := range snapshot.Events {
		if ev.ID != eventID {
			continue
		}
		users, err := s.Geo.RadiusSearch(ctx, UserLocationsKey, ev.Position(), radiusMeters)
		if err != nil {
			return nil, indexError("radius search", err)
		}
		return users, nil
	}
	return nil, ErrEventNotFound
}

// EventDistance расстояние между двумя событиями по гео-индексу.
func (s *RadarService) EventDistance(ctx context.Context, fromID, toID string) (float64, error) {
	if fromID == "" || toID == "" {
		return 0, &ValidationError{Field: "from,to", Msg: "required"}
	}
	d, err := s.Geo.DistanceBetween(ctx, s.Matcher.GeoKey, fromID, toID)
	if errors.Is(err, entity.ErrNotFound) {
		return 0, ErrEventNotFound
	}
	if err != nil {
		return 0, indexError("distance", err)
	}
	return d, nil
}

// ClearNotification снимает отметку дедупликатора (тесты, эксплуатация).
func (s *RadarService) ClearNotification(ctx context.Context, userID, eventID string) {
	s.Deduper.Clear(ctx, userID, eventID)
}

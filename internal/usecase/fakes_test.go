package usecase

import (
	"context"
	"errors"
	"math"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/paincake00/radarcore/internal/entity"
)

// --- Моки ---

var errBoom = errors.New("boom")

// fakeGeo гео-индекс в памяти; расстояния считаются той же формулой Хаверсина.
type fakeGeo struct {
	mu      sync.Mutex
	sets    map[string]map[string]entity.Position
	upserts map[string]int
	fail    error
}

func newFakeGeo() *fakeGeo {
	return &fakeGeo{
		sets:    make(map[string]map[string]entity.Position),
		upserts: make(map[string]int),
	}
}

func (g *fakeGeo) UpsertPosition(ctx context.Context, setKey, member string, pos entity.Position) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return g.fail
	}
	if g.sets[setKey] == nil {
		g.sets[setKey] = make(map[string]entity.Position)
	}
	g.sets[setKey][member] = pos
	g.upserts[setKey]++
	return nil
}

func (g *fakeGeo) RadiusSearchWithDistance(ctx context.Context, setKey string, center entity.Position, radiusMeters float64) ([]entity.GeoHit, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return nil, g.fail
	}
	var hits []entity.GeoHit
	for member, pos := range g.sets[setKey] {
		if d := DistanceMeters(center, pos); d <= radiusMeters {
			hits = append(hits, entity.GeoHit{Member: member, Distance: d})
		}
	}
	slices.SortFunc(hits, func(a, b entity.GeoHit) int {
		if a.Distance < b.Distance {
			return -1
		}
		if a.Distance > b.Distance {
			return 1
		}
		return 0
	})
	return hits, nil
}

func (g *fakeGeo) RadiusSearch(ctx context.Context, setKey string, center entity.Position, radiusMeters float64) ([]string, error) {
	hits, err := g.RadiusSearchWithDistance(ctx, setKey, center, radiusMeters)
	if err != nil {
		return nil, err
	}
	members := make([]string, 0, len(hits))
	for _, h := range hits {
		members = append(members, h.Member)
	}
	return members, nil
}

func (g *fakeGeo) DistanceBetween(ctx context.Context, setKey, a, b string) (float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return 0, g.fail
	}
	pa, okA := g.sets[setKey][a]
	pb, okB := g.sets[setKey][b]
	if !okA || !okB {
		return 0, entity.ErrNotFound
	}
	return DistanceMeters(pa, pb), nil
}

func (g *fakeGeo) upsertCount(setKey string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.upserts[setKey]
}

// fakeEvents источник и публикатор ленты.
type fakeEvents struct {
	snapshot  *entity.EventSnapshot
	err       error
	published []entity.Event
}

func (f *fakeEvents) GetLiveEvents(ctx context.Context) (*entity.EventSnapshot, error) {
	return f.snapshot, f.err
}

func (f *fakeEvents) PublishEvents(ctx context.Context, events []entity.Event) error {
	if f.err != nil {
		return f.err
	}
	f.published = events
	f.snapshot = &entity.EventSnapshot{Success: true, Events: events}
	return nil
}

// failingStore хранилище, которое всегда недоступно.
type failingStore struct{}

func (failingStore) GetJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	return false, errBoom
}
func (failingStore) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errBoom
}
func (failingStore) SetJSONIfAbsent(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	return false, errBoom
}
func (failingStore) Delete(ctx context.Context, key string) error { return errBoom }

type fakeUsers struct {
	tokens map[string]string
	err    error
}

func (u *fakeUsers) GetDeviceToken(ctx context.Context, userID string) (string, bool, error) {
	if u.err != nil {
		return "", false, u.err
	}
	t, ok := u.tokens[userID]
	return t, ok, nil
}

type sentPush struct {
	UserID  string
	Token   string
	Payload entity.PushPayload
}

// recordingGateway запоминает отправки; failFor: id событий, на которых Send падает.
type recordingGateway struct {
	mu      sync.Mutex
	sent    []sentPush
	failFor map[string]bool
}

func (g *recordingGateway) Send(ctx context.Context, userID, token string, p entity.PushPayload) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failFor[p.EventID] {
		return errBoom
	}
	g.sent = append(g.sent, sentPush{UserID: userID, Token: token, Payload: p})
	return nil
}

func (g *recordingGateway) eventIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, 0, len(g.sent))
	for _, s := range g.sent {
		ids = append(ids, s.Payload.EventID)
	}
	return ids
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// --- Вспомогательные функции ---

var london = entity.Position{Latitude: 51.5074, Longitude: -0.1278}

// north точка в meters к северу от p.
func north(p entity.Position, meters float64) entity.Position {
	return entity.Position{
		Latitude:  p.Latitude + meters/earthRadiusMeters*180/math.Pi,
		Longitude: p.Longitude,
	}
}

func baseTime() time.Time {
	return time.Date(2025, 4, 6, 15, 0, 0, 0, time.UTC)
}

func newEvent(id string, pos entity.Position, end time.Time) entity.Event {
	return entity.Event{
		ID:       id,
		Title:    "Event " + id,
		Category: "music",
		Lat:      entity.Coordinate(pos.Latitude),
		Lon:      entity.Coordinate(pos.Longitude),
		EndLocal: end.Format(time.RFC3339),
	}
}

// indexEvents кладет события в гео-индекс под EventsGeoKey.
func indexEvents(t *testing.T, geo *fakeGeo, events []entity.Event) {
	t.Helper()
	for _, ev := range events {
		if err := geo.UpsertPosition(context.Background(), EventsGeoKey, ev.ID, ev.Position()); err != nil {
			t.Fatalf("index event %s: %v", ev.ID, err)
		}
	}
}

package memory

import (
	"sync"
	"time"

	"github.com/paincake00/radarcore/internal/entity"
)

// LocationCache последние проиндексированные позиции пользователей.
// sync.Map дает атомарную замену по ключу, общий лок не нужен.
type LocationCache struct {
	entries sync.Map // userID -> entity.TrackedLocation
	maxAge  time.Duration
	now     func() time.Time
}

// NewLocationCache maxAge: срок, после которого непрочитанная запись считается отсутствующей.
func NewLocationCache(maxAge time.Duration) *LocationCache {
	return &LocationCache{maxAge: maxAge, now: time.Now}
}

// WithClock подменяет часы (для тестов).
func (c *LocationCache) WithClock(now func() time.Time) *LocationCache {
	c.now = now
	return c
}

func (c *LocationCache) expired(loc entity.TrackedLocation) bool {
	return c.maxAge > 0 && loc.Age(c.now()) > c.maxAge
}

func (c *LocationCache) Get(userID string) (entity.TrackedLocation, bool) {
	v, ok := c.entries.Load(userID)
	if !ok {
		return entity.TrackedLocation{}, false
	}
	loc := v.(entity.TrackedLocation)
	if c.expired(loc) {
		c.entries.CompareAndDelete(userID, v)
		return entity.TrackedLocation{}, false
	}
	return loc, true
}

func (c *LocationCache) Put(loc entity.TrackedLocation) {
	c.entries.Store(loc.UserID, loc)
}

// Sweep удаляет просроченные записи; возвращает их число.
func (c *LocationCache) Sweep() int {
	removed := 0
	c.entries.Range(func(k, v interface{}) bool {
		if c.expired(v.(entity.TrackedLocation)) && c.entries.CompareAndDelete(k, v) {
			removed++
		}
		return true
	})
	return removed
}

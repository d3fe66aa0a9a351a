package usecase

import (
	"time"

	"github.com/paincake00/radarcore/internal/entity"
)

const (
	DefaultMinDistanceChange = 10.0 // метры
	DefaultMaxCacheAge       = 300 * time.Second
)

// MovementGate решает, достаточно ли сдвинулся пользователь, чтобы переписать его точку в гео-индексе.
type MovementGate struct {
	MinDistanceChange float64
	MaxCacheAge       time.Duration
}

// NewMovementGate создает фильтр перемещений; нулевые значения заменяются значениями по умолчанию.
func NewMovementGate(minDistance float64, maxAge time.Duration) *MovementGate {
	if minDistance <= 0 {
		minDistance = DefaultMinDistanceChange
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxCacheAge
	}
	return &MovementGate{MinDistanceChange: minDistance, MaxCacheAge: maxAge}
}

// ShouldReindex не имеет побочных эффектов: кеш обновляет вызывающий после успешной записи в индекс.
func (g *MovementGate) ShouldReindex(userID string, previous *entity.TrackedLocation, next entity.Position, now time.Time) bool {
	if previous == nil || previous.Age(now) > g.MaxCacheAge {
		return true
	}
	return DistanceMeters(previous.Position, next) >= g.MinDistanceChange
}

package usecase

import (
	"fmt"
	"math"

	"github.com/paincake00/radarcore/internal/entity"
)

const earthRadiusMeters = 6371000

// MaxIndexLatitude предел широты Redis GEO (проекция EPSG:3857).
const MaxIndexLatitude = 85.05112878

// DistanceMeters вычисляет расстояние между двумя точками в метрах по формуле Хаверсина.
func DistanceMeters(a, b entity.Position) float64 {
	phi1 := a.Latitude * math.Pi / 180
	phi2 := b.Latitude * math.Pi / 180
	deltaPhi := (b.Latitude - a.Latitude) * math.Pi / 180
	deltaLambda := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	// Погрешность округления может дать h чуть больше 1.
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// ValidatePosition отклоняет координаты вне диапазона. Значения не обрезаются.
func ValidatePosition(p entity.Position) error {
	if math.IsNaN(p.Latitude) || p.Latitude < -90 || p.Latitude > 90 {
		return &ValidationError{Field: "latitude", Msg: "must be between -90 and 90"}
	}
	if math.IsNaN(p.Longitude) || p.Longitude < -180 || p.Longitude > 180 {
		return &ValidationError{Field: "longitude", Msg: "must be between -180 and 180"}
	}
	return nil
}

// ValidateIndexable как ValidatePosition, но дополнительно требует широту в пределах гео-индекса.
func ValidateIndexable(p entity.Position) error {
	if err := ValidatePosition(p); err != nil {
		return err
	}
	if p.Latitude < -MaxIndexLatitude || p.Latitude > MaxIndexLatitude {
		return &ValidationError{Field: "latitude", Msg: fmt.Sprintf("must be between -%v and %v", MaxIndexLatitude, MaxIndexLatitude)}
	}
	return nil
}

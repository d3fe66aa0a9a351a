package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrIndexUnavailable = errors.New("geo index unavailable")
	ErrEventNotFound    = errors.New("event not found")
)

// ValidationError ошибка валидации одного поля.
type ValidationError struct {
	Field string `json:"field"`
	Msg   string `json:"message"`
}

func (e *ValidationError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Msg) }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// indexError оборачивает сбой гео-индекса, сохраняя исходную ошибку.
func indexError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIndexUnavailable, op, err)
}

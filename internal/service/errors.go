package service

import (
	"errors"

	"github.com/rivermark/aqualink/internal/domain"
)

// Re-exported sentinels so callers can branch without importing domain.
var (
	ErrOrderNotFound     = domain.ErrOrderNotFound
	ErrItemNotFound      = domain.ErrItemNotFound
	ErrInvalidTransition = domain.ErrInvalidTransition
	ErrInsufficientStock = domain.ErrInsufficientStock
	ErrEmptyCart         = domain.ErrEmptyCart
)

// asUnavailable downgrades infrastructure failures to the retry-safe
// unavailable condition while letting domain errors pass through intact.
func asUnavailable(err error, op, message string) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	if domain.IsValidationError(err) {
		return err
	}
	return domain.Unavailable(err, op, message)
}

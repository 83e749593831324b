// Package service holds the business rules of the feedback board. Every
// mutation takes the acting user, consults the policy package, and enforces
// the cross-entity invariants (status cascades, delete guards, the single
// answer per thread) inside a request-scoped transaction.
package service

import (
	"errors"

	"echoboard/internal/models"

	"gorm.io/gorm"
)

// orNotFound converts a gorm record-not-found error into the typed NotFound
// error for the given resource, wrapping anything else as internal.
func orNotFound(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// isDuplicate reports whether err is a unique-constraint violation. The
// pre-checks in the orchestrator exist to produce friendlier errors; the
// constraint remains the final authority under concurrency.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// asAppError passes AppErrors through untouched and wraps anything else as
// internal, so transaction callbacks can return either.
func asAppError(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}

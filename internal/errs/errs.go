// Package errs defines the error kinds shared by every data-model component.
// The request layer distinguishes failures by kind only; wrapping adds detail
// without changing how a failure is classified.
package errs

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound: a referenced site, survey, asset or type does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrCycle: a site reparent/create would make a site its own ancestor.
	ErrCycle = errors.New("parent assignment would create a cycle")

	// ErrNotEmpty: delete was requested with the reject policy on a target
	// that still has dependents.
	ErrNotEmpty = errors.New("record still has dependents")

	// ErrDuplicateName: a unique name (asset type) is already taken.
	ErrDuplicateName = errors.New("name is already in use")

	// ErrValidation: malformed geometry or a missing required field.
	ErrValidation = errors.New("invalid input")

	// ErrConflict: a concurrent writer won; the whole operation is safe to
	// retry because nothing of the failed transaction survives.
	ErrConflict = errors.New("conflicting concurrent update")

	// ErrStorageCleanup: content removal failed after the row delete
	// committed. Non-fatal; the reconciliation job retries orphans.
	ErrStorageCleanup = errors.New("stored content could not be removed")
)

// Postgres SQLSTATE codes translated into shared kinds.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// Translate maps driver/ORM errors onto the shared kinds. Errors that are
// already classified, and errors with no classification, pass through
// unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation, codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
			return errors.Join(ErrConflict, err)
		}
	}
	return err
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation. Callers that know which constraint can be involved use this to
// report ErrDuplicateName instead of the generic ErrConflict.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// HTTPStatus maps an error kind to the client-facing response status.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrCycle), errors.Is(err, ErrNotEmpty),
		errors.Is(err, ErrDuplicateName), errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

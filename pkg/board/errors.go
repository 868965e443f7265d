package board

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Error kinds surfaced by the engine. Store failures are wrapped with %w and
// carry the underlying redis error; the API boundary maps each kind onto the
// conventional HTTP status.
var (
	// ErrNotFound means a referenced board, column or card does not exist.
	ErrNotFound = errors.New("not found")

	// ErrBadRequest means the request itself is invalid: a position outside
	// the valid range, or a self-combination.
	ErrBadRequest = errors.New("bad request")

	// ErrInconsistency means a card expected inside a slot structure was
	// missing. That indicates a race with a concurrent delete or a caller
	// defect; the operation is aborted and not retried.
	ErrInconsistency = errors.New("arrangement inconsistency")
)

// IsNotFound reports whether err is a missing-record error, either the
// engine's ErrNotFound or a raw redis.Nil from the store.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, redis.Nil)
}

// IsBadRequest reports whether err is a request-validation error.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

// IsInconsistency reports whether err is an internal arrangement
// inconsistency.
func IsInconsistency(err error) bool {
	return errors.Is(err, ErrInconsistency)
}

func badRequestf(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, a...))
}

func notFoundf(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, a...))
}

func inconsistencyf(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrInconsistency, fmt.Sprintf(format, a...))
}

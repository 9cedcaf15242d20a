package repository

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Domain-level errors repository implementations bubble up.
var (
	ErrNotFound = errors.New("not found")
	// ErrDataAccess covers every store failure that is not a connectivity problem,
	// including malformed generated SQL.
	ErrDataAccess = errors.New("data access failure")
	// ErrUnavailable means the store could not be reached.
	ErrUnavailable = errors.New("data store unavailable")
	// ErrMissingFilter is returned when a query path requires a filter the request lacks.
	ErrMissingFilter = errors.New("missing required filter")
)

// MissingFilter wraps ErrMissingFilter with the name of the absent field.
func MissingFilter(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingFilter, field)
}

// MapPgError translates pgx / Postgres failures to domain errors. The original error stays
// in the chain so callers can still log it. Context cancellation passes through untouched.
func MapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, ErrDataAccess) || errors.Is(err, ErrUnavailable) || errors.Is(err, ErrMissingFilter) {
		return err
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgerrcode.IsConnectionException(pgErr.Code) || pgerrcode.IsOperatorIntervention(pgErr.Code) {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return fmt.Errorf("%w: %s: %w", ErrDataAccess, pgErr.Code, err)
	}
	var netErr net.Error
	if pgconn.Timeout(err) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return fmt.Errorf("%w: %w", ErrDataAccess, err)
}

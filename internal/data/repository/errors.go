package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrConflict is the parent of every constraint violation surfaced by repositories.
	ErrConflict = errors.New("conflict")
	// ErrDuplicate wraps unique violations (23505).
	ErrDuplicate = fmt.Errorf("%w: duplicate key", ErrConflict)
	// ErrOverlap wraps the bookings_no_overlap exclusion violation (23P01).
	ErrOverlap = fmt.Errorf("%w: overlapping booking", ErrConflict)
	// ErrNotFound is returned by writes that matched no row. Reads return nil, nil instead.
	ErrNotFound = errors.New("record not found")
)

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w (%s): %w", ErrDuplicate, pgErr.ConstraintName, err)
	case pgExclusionViolation:
		return fmt.Errorf("%w (%s): %w", ErrOverlap, pgErr.ConstraintName, err)
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

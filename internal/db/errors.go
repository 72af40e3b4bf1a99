package db

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy surfaced to callers. Check with errors.Is.
var (
	// ErrNotFound means an item or status id resolved to no row.
	ErrNotFound = errors.New("not found")

	// ErrValidation means the input was malformed (bad date, missing field).
	ErrValidation = errors.New("validation failed")

	// ErrConflict means a storage uniqueness constraint fired, e.g. a slug
	// collision that raced past the probing loop.
	ErrConflict = errors.New("conflict")
)

// mapSQLErr converts driver-level constraint failures into the taxonomy.
// The UNIQUE constraint is the authoritative guard for slug races; the
// probing loop in slug.go is only a best-effort pre-check.
func mapSQLErr(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

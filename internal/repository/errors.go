package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a row does not exist. Callers in the
// progression engine treat it as "synthesize defaults", never as a failure.
var ErrNotFound = errors.New("repository: not found")

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

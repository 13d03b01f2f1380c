package repository

import (
	"context"
	"errors"
)

var (
	// ErrConflict is returned when the database aborted a transaction because
	// of a serialization failure or deadlock. The whole transaction may be retried.
	ErrConflict = errors.New("repository: transaction conflict")
	// ErrDuplicate is returned when a unique constraint rejected a write
	ErrDuplicate = errors.New("repository: duplicate key")
)

// Transactor runs fn inside one serializable transaction. Repositories called
// with the ctx handed to fn take part in that transaction; any error returned
// by fn rolls everything back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

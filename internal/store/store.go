// Package store provides durable keyed storage of account records.
// It is a pure read/write contract: no business rules live here, and
// serializing concurrent access is the caller's responsibility.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/securebank-dev/ledger/internal/model"
)

// ErrNotFound is returned when no account matches the lookup key.
var ErrNotFound = errors.New("account not found")

// StorageError wraps a backend persistence failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store is the persistence boundary for account records. Reads and
// writes are whole-record; partial field updates are not exposed.
type Store interface {
	// Get fetches an account by username.
	Get(ctx context.Context, username string) (model.Account, error)
	// GetByAccountNumber fetches an account by its account number.
	GetByAccountNumber(ctx context.Context, number string) (model.Account, error)
	// Put persists a whole account record, replacing any prior version.
	Put(ctx context.Context, account model.Account) error
	// PutPair persists two account records atomically: either both
	// versions are durable afterwards or neither is.
	PutPair(ctx context.Context, a, b model.Account) error
	// List returns all accounts.
	List(ctx context.Context) ([]model.Account, error)
}

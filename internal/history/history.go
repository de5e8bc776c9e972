// Package history provides read-side queries over an account's
// append-only transaction records.
package history

import (
	"context"
	"iter"
	"strings"

	"github.com/securebank-dev/ledger/internal/model"
	"github.com/securebank-dev/ledger/internal/store"
)

// Filter selects transaction records. The zero value matches everything.
type Filter struct {
	Type   model.TransactionType // empty matches all types
	Search string                // case-insensitive substring over id, amount, description
}

// Match reports whether rec passes the filter.
func (f Filter) Match(rec model.TransactionRecord) bool {
	if f.Type != "" && rec.Type != f.Type {
		return false
	}
	if f.Search == "" {
		return true
	}
	needle := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(rec.ID), needle) ||
		strings.Contains(rec.Amount.String(), needle) ||
		strings.Contains(strings.ToLower(rec.Description), needle)
}

// Select returns a lazy, restartable sequence over the records matching
// f, preserving the newest-first order. Iteration never mutates the
// underlying slice.
func Select(records []model.TransactionRecord, f Filter) iter.Seq[model.TransactionRecord] {
	return func(yield func(model.TransactionRecord) bool) {
		for _, rec := range records {
			if !f.Match(rec) {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// Log answers filtered history queries against the account store.
type Log struct {
	store store.Store
}

// NewLog creates a Log backed by the given store.
func NewLog(st store.Store) *Log {
	return &Log{store: st}
}

// Query fetches the account's history and returns the records matching
// f, newest first.
func (l *Log) Query(ctx context.Context, username string, f Filter) ([]model.TransactionRecord, error) {
	acct, err := l.store.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	out := make([]model.TransactionRecord, 0, len(acct.Transactions))
	for rec := range Select(acct.Transactions, f) {
		out = append(out, rec)
	}
	return out, nil
}

package id

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator mints unique transaction record identifiers. Uniqueness must
// hold under rapid concurrent commits, so wall-clock-derived IDs are not
// acceptable implementations.
type Generator interface {
	NewID() string
}

// UUID generates "txn_<uuid>" identifiers.
type UUID struct{}

// NewID returns a fresh random identifier.
func (UUID) NewID() string {
	return "txn_" + uuid.NewString()
}

// Sequence generates "txn_<n>" identifiers from an atomic counter.
// Deterministic, so tests can assert on exact IDs.
type Sequence struct {
	n atomic.Int64
}

// NewID returns the next identifier in the sequence.
func (s *Sequence) NewID() string {
	return fmt.Sprintf("txn_%d", s.n.Add(1))
}

// NewToken returns an opaque session token.
func NewToken() string {
	return uuid.NewString()
}

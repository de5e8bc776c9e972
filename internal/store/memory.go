package store

import (
	"context"
	"sync"

	"github.com/securebank-dev/ledger/internal/model"
)

// Memory is an in-memory Store keyed by username. Used by tests and as
// a fallback when no database path is configured.
type Memory struct {
	mu       sync.RWMutex
	accounts map[string]model.Account // username -> record
	byNumber map[string]string        // account number -> username
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[string]model.Account),
		byNumber: make(map[string]string),
	}
}

// Get fetches an account by username.
func (m *Memory) Get(ctx context.Context, username string) (model.Account, error) {
	if err := ctx.Err(); err != nil {
		return model.Account{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[username]
	if !ok {
		return model.Account{}, ErrNotFound
	}
	return a.Clone(), nil
}

// GetByAccountNumber fetches an account by its account number.
func (m *Memory) GetByAccountNumber(ctx context.Context, number string) (model.Account, error) {
	if err := ctx.Err(); err != nil {
		return model.Account{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	username, ok := m.byNumber[number]
	if !ok {
		return model.Account{}, ErrNotFound
	}
	return m.accounts[username].Clone(), nil
}

// Put persists a whole account record.
func (m *Memory) Put(ctx context.Context, account model.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(account)
	return nil
}

// PutPair persists two account records in one critical section.
func (m *Memory) PutPair(ctx context.Context, a, b model.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(a)
	m.put(b)
	return nil
}

func (m *Memory) put(account model.Account) {
	m.accounts[account.Username] = account.Clone()
	m.byNumber[account.AccountNumber] = account.Username
}

// List returns all accounts.
func (m *Memory) List(ctx context.Context) ([]model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a.Clone())
	}
	return out, nil
}

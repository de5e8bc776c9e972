// Package session verifies credentials, tracks failed-attempt lockout,
// and owns the ephemeral authenticated sessions with idle expiry.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/securebank-dev/ledger/internal/id"
	"github.com/securebank-dev/ledger/internal/store"
)

var (
	// ErrLocked is terminal: once an account locks, no further login
	// attempt changes its state and no unlock path exists.
	ErrLocked = errors.New("account locked: contact Secure Bank")

	// ErrExpired invalidates a session after idle timeout; the holder
	// must log in again. Unknown tokens report the same way.
	ErrExpired = errors.New("session expired")
)

// CredentialsError rejects a login with a wrong PIN while attempts
// remain before lockout.
type CredentialsError struct {
	AttemptsLeft int
}

func (e *CredentialsError) Error() string {
	return fmt.Sprintf("incorrect PIN: %d attempts left", e.AttemptsLeft)
}

// Session is an authenticated identity. It lives only in memory and is
// destroyed on logout, lockout, or idle expiry.
type Session struct {
	Token          string
	Username       string
	IssuedAt       time.Time
	LastActivityAt time.Time
}

// Options configures a Manager. Zero values fall back to the reference
// deployment constants.
type Options struct {
	MaxAttempts int           // failed logins before lockout (default 3)
	IdleTimeout time.Duration // inactivity before expiry (default 3m)
	LoginDelay  time.Duration // artificial minimum login latency (default none)
}

// Manager is the authentication front door for the ledger.
type Manager struct {
	store       store.Store
	maxAttempts int
	idleTimeout time.Duration
	loginDelay  time.Duration
	clock       func() time.Time
	newToken    func() string

	// authMu serializes the read-check-persist sequence of Login so
	// concurrent attempts cannot race the failure counter.
	authMu sync.Mutex

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a Manager backed by the given account store.
func NewManager(st store.Store, opts Options) *Manager {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 3 * time.Minute
	}
	return &Manager{
		store:       st,
		maxAttempts: opts.MaxAttempts,
		idleTimeout: opts.IdleTimeout,
		loginDelay:  opts.LoginDelay,
		clock:       time.Now,
		newToken:    id.NewToken,
		sessions:    make(map[string]*Session),
	}
}

// Login verifies the PIN for username and mints a session on success.
// Wrong PINs increment the failure counter and lock the account when it
// reaches the attempt limit; both branches persist before returning.
func (m *Manager) Login(ctx context.Context, username, pin string) (Session, error) {
	// The delay runs before any state is touched, so cancelling here
	// leaves nothing to unwind.
	if m.loginDelay > 0 {
		select {
		case <-time.After(m.loginDelay):
		case <-ctx.Done():
			return Session{}, ctx.Err()
		}
	}

	m.authMu.Lock()
	defer m.authMu.Unlock()

	acct, err := m.store.Get(ctx, username)
	if err != nil {
		return Session{}, err
	}

	if acct.Locked {
		return Session{}, ErrLocked
	}

	if acct.PIN != pin {
		acct.FailedAttempts++
		locked := acct.FailedAttempts >= m.maxAttempts
		acct.Locked = locked
		if err := m.store.Put(ctx, acct); err != nil {
			return Session{}, fmt.Errorf("persisting failed attempt: %w", err)
		}
		if locked {
			return Session{}, ErrLocked
		}
		return Session{}, &CredentialsError{AttemptsLeft: m.maxAttempts - acct.FailedAttempts}
	}

	now := m.clock()
	acct.FailedAttempts = 0
	acct.LastLogin = &now
	if err := m.store.Put(ctx, acct); err != nil {
		return Session{}, fmt.Errorf("persisting login: %w", err)
	}

	sess := &Session{
		Token:          m.newToken(),
		Username:       username,
		IssuedAt:       now,
		LastActivityAt: now,
	}
	m.mu.Lock()
	m.sessions[sess.Token] = sess
	m.mu.Unlock()
	return *sess, nil
}

// Validate resolves a token to its session, expiring it when idle for
// longer than the timeout. Expiry deletes the session.
func (m *Manager) Validate(token string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[token]
	if !ok {
		return Session{}, ErrExpired
	}
	if m.clock().Sub(sess.LastActivityAt) > m.idleTimeout {
		delete(m.sessions, token)
		return Session{}, ErrExpired
	}
	return *sess, nil
}

// Touch records activity on the session, pushing back its expiry.
// Every authenticated operation calls this.
func (m *Manager) Touch(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[token]; ok {
		sess.LastActivityAt = m.clock()
	}
}

// Logout destroys the session unconditionally. Idempotent.
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// SweepExpired removes every idle-expired session and reports how many
// were dropped. Racing an explicit logout is harmless.
func (m *Manager) SweepExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	var n int
	for token, sess := range m.sessions {
		if now.Sub(sess.LastActivityAt) > m.idleTimeout {
			delete(m.sessions, token)
			n++
		}
	}
	return n
}

// Run sweeps expired sessions at the given interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.SweepExpired()
		}
	}
}

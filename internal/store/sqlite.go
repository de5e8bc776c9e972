package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/securebank-dev/ledger/internal/model"
)

// SQLite is a Store backed by a SQLite database file. PutPair uses a
// single database transaction, so both records commit or neither does.
type SQLite struct {
	db *sql.DB
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		account_id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		username TEXT NOT NULL UNIQUE,
		pin TEXT NOT NULL,
		account_number TEXT NOT NULL UNIQUE,
		balance TEXT NOT NULL,
		failed_attempts INTEGER NOT NULL DEFAULT 0,
		locked INTEGER NOT NULL DEFAULT 0,
		daily_withdraw_total TEXT NOT NULL,
		daily_withdraw_date TEXT NOT NULL,
		last_login TIMESTAMP
	)`,

	// Insertion order carries the history ordering: newer records have
	// higher rowids, so newest-first reads are ORDER BY rowid DESC.
	`CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL REFERENCES accounts(account_id),
		type TEXT NOT NULL,
		amount TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		balance_after TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id)`,
}

// OpenSQLite opens (creating if needed) a SQLite-backed store at path,
// with WAL mode and foreign keys enabled.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Get fetches an account by username.
func (s *SQLite) Get(ctx context.Context, username string) (model.Account, error) {
	return s.getWhere(ctx, "username = ?", username)
}

// GetByAccountNumber fetches an account by its account number.
func (s *SQLite) GetByAccountNumber(ctx context.Context, number string) (model.Account, error) {
	return s.getWhere(ctx, "account_number = ?", number)
}

func (s *SQLite) getWhere(ctx context.Context, where string, arg any) (model.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT account_id, full_name, username, pin, account_number, balance,
			failed_attempts, locked, daily_withdraw_total, daily_withdraw_date, last_login
		FROM accounts WHERE `+where, arg)

	var (
		a              model.Account
		balance, total string
		locked         int
		lastLogin      sql.NullTime
	)
	err := row.Scan(&a.AccountID, &a.FullName, &a.Username, &a.PIN, &a.AccountNumber,
		&balance, &a.FailedAttempts, &locked, &total, &a.DailyWithdrawDate, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, ErrNotFound
	}
	if err != nil {
		return model.Account{}, &StorageError{Op: "get", Err: err}
	}

	if a.Balance, err = decimal.NewFromString(balance); err != nil {
		return model.Account{}, &StorageError{Op: "get", Err: fmt.Errorf("parsing balance %q: %w", balance, err)}
	}
	if a.DailyWithdrawTotal, err = decimal.NewFromString(total); err != nil {
		return model.Account{}, &StorageError{Op: "get", Err: fmt.Errorf("parsing daily total %q: %w", total, err)}
	}
	a.Locked = locked != 0
	if lastLogin.Valid {
		t := lastLogin.Time
		a.LastLogin = &t
	}

	if a.Transactions, err = s.loadTransactions(ctx, a.AccountID); err != nil {
		return model.Account{}, err
	}
	return a, nil
}

func (s *SQLite) loadTransactions(ctx context.Context, accountID string) ([]model.TransactionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, amount, timestamp, balance_after, description
		FROM transactions WHERE account_id = ? ORDER BY rowid DESC`, accountID)
	if err != nil {
		return nil, &StorageError{Op: "load transactions", Err: err}
	}
	defer rows.Close()

	var recs []model.TransactionRecord
	for rows.Next() {
		var (
			rec           model.TransactionRecord
			amount, after string
			ts            time.Time
		)
		if err := rows.Scan(&rec.ID, &rec.Type, &amount, &ts, &after, &rec.Description); err != nil {
			return nil, &StorageError{Op: "load transactions", Err: err}
		}
		if rec.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, &StorageError{Op: "load transactions", Err: err}
		}
		if rec.BalanceAfter, err = decimal.NewFromString(after); err != nil {
			return nil, &StorageError{Op: "load transactions", Err: err}
		}
		rec.Timestamp = ts
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "load transactions", Err: err}
	}
	return recs, nil
}

// Put persists a whole account record in one database transaction.
func (s *SQLite) Put(ctx context.Context, account model.Account) error {
	return s.inTx(ctx, "put", func(tx *sql.Tx) error {
		return writeAccount(ctx, tx, account)
	})
}

// PutPair persists two account records in a single database transaction.
func (s *SQLite) PutPair(ctx context.Context, a, b model.Account) error {
	return s.inTx(ctx, "put pair", func(tx *sql.Tx) error {
		if err := writeAccount(ctx, tx, a); err != nil {
			return err
		}
		return writeAccount(ctx, tx, b)
	})
}

func (s *SQLite) inTx(ctx context.Context, op string, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Op: op, Err: err}
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return &StorageError{Op: op, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &StorageError{Op: op, Err: err}
	}
	return nil
}

func writeAccount(ctx context.Context, tx *sql.Tx, a model.Account) error {
	var lastLogin sql.NullTime
	if a.LastLogin != nil {
		lastLogin = sql.NullTime{Time: *a.LastLogin, Valid: true}
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (account_id, full_name, username, pin, account_number,
			balance, failed_attempts, locked, daily_withdraw_total, daily_withdraw_date, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET
			full_name = excluded.full_name,
			pin = excluded.pin,
			balance = excluded.balance,
			failed_attempts = excluded.failed_attempts,
			locked = excluded.locked,
			daily_withdraw_total = excluded.daily_withdraw_total,
			daily_withdraw_date = excluded.daily_withdraw_date,
			last_login = excluded.last_login`,
		a.AccountID, a.FullName, a.Username, a.PIN, a.AccountNumber,
		a.Balance.String(), a.FailedAttempts, boolToInt(a.Locked),
		a.DailyWithdrawTotal.String(), a.DailyWithdrawDate, lastLogin)
	if err != nil {
		return fmt.Errorf("upserting account %s: %w", a.AccountID, err)
	}

	// Records are immutable, so only unseen IDs insert. Walk oldest to
	// newest so fresh records land with the highest rowids.
	for i := len(a.Transactions) - 1; i >= 0; i-- {
		rec := a.Transactions[i]
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO transactions (id, account_id, type, amount, timestamp, balance_after, description)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, a.AccountID, string(rec.Type), rec.Amount.String(),
			rec.Timestamp, rec.BalanceAfter.String(), rec.Description)
		if err != nil {
			return fmt.Errorf("inserting transaction %s: %w", rec.ID, err)
		}
	}
	return nil
}

// List returns all accounts.
func (s *SQLite) List(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT username FROM accounts ORDER BY username`)
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, &StorageError{Op: "list", Err: err}
		}
		usernames = append(usernames, u)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}

	accounts := make([]model.Account, 0, len(usernames))
	for _, u := range usernames {
		a, err := s.Get(ctx, u)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the calendar-date layout used for daily-limit bookkeeping.
const DateFormat = "2006-01-02"

// Account represents one account holder's full record, including the
// credential/lockout state and the append-only transaction history.
type Account struct {
	AccountID     string
	FullName      string
	Username      string // unique login name
	PIN           string // plaintext per reference behavior; hashing is a collaborator concern
	AccountNumber string // unique 9-digit number used as transfer beneficiary address

	Balance decimal.Decimal // never negative after a committed operation

	FailedAttempts int
	Locked         bool // permanent once set; no unlock path exists

	DailyWithdrawTotal decimal.Decimal
	DailyWithdrawDate  string // DateFormat day the total applies to

	LastLogin *time.Time

	// Transactions is ordered newest-first. Records are appended at the
	// head and never mutated or removed.
	Transactions []TransactionRecord
}

// AppendTransaction prepends a record, keeping the newest-first order.
func (a *Account) AppendTransaction(rec TransactionRecord) {
	a.Transactions = append([]TransactionRecord{rec}, a.Transactions...)
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing the internal transaction slice.
func (a Account) Clone() Account {
	cp := a
	if a.LastLogin != nil {
		t := *a.LastLogin
		cp.LastLogin = &t
	}
	cp.Transactions = make([]TransactionRecord, len(a.Transactions))
	copy(cp.Transactions, a.Transactions)
	return cp
}

package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount rejects zero or negative operation amounts.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrInsufficientFunds rejects operations that would drive the
	// balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSelfTransfer rejects transfers whose beneficiary is the
	// sender's own account number.
	ErrSelfTransfer = errors.New("cannot transfer to your own account")

	// ErrBeneficiaryNotFound rejects transfers to unknown account numbers.
	ErrBeneficiaryNotFound = errors.New("beneficiary account not found")
)

// DailyLimitError rejects a withdrawal that would cross the daily cap.
// Remaining is the allowance still available today.
type DailyLimitError struct {
	Remaining decimal.Decimal
}

func (e *DailyLimitError) Error() string {
	return fmt.Sprintf("daily withdrawal limit exceeded: remaining allowance %s", e.Remaining.StringFixed(2))
}

// PartialTransferError reports a transfer whose debit leg committed but
// whose credit leg could not be persisted within the retry budget. It
// carries everything manual reconciliation needs and must never be
// swallowed by callers.
type PartialTransferError struct {
	SenderID     string
	ReceiverID   string
	Amount       decimal.Decimal
	SentRecordID string
	Err          error
}

func (e *PartialTransferError) Error() string {
	return fmt.Sprintf("transfer of %s from %s to %s committed only the debit leg (record %s): %v",
		e.Amount.StringFixed(2), e.SenderID, e.ReceiverID, e.SentRecordID, e.Err)
}

func (e *PartialTransferError) Unwrap() error { return e.Err }

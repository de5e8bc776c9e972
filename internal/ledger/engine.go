// Package ledger implements the balance-mutating core: deposit,
// withdrawal and peer transfer, each atomic with respect to the
// accounts it touches.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/securebank-dev/ledger/internal/id"
	"github.com/securebank-dev/ledger/internal/model"
	"github.com/securebank-dev/ledger/internal/store"
)

// maxPersistRetries bounds re-attempts of the two-leg transfer write
// before surfacing a PartialTransferError.
const maxPersistRetries = 3

// Engine applies money-movement operations against the account store.
// Every operation holds the per-account lock across its whole
// read-check-mutate-persist sequence.
type Engine struct {
	store      store.Store
	locks      *accountLocks
	clock      func() time.Time
	ids        id.Generator
	dailyLimit decimal.Decimal
}

// NewEngine creates an Engine enforcing the given daily withdrawal cap.
func NewEngine(st store.Store, dailyLimit decimal.Decimal) *Engine {
	return &Engine{
		store:      st,
		locks:      newAccountLocks(),
		clock:      time.Now,
		ids:        id.UUID{},
		dailyLimit: dailyLimit,
	}
}

// Account returns a snapshot of the account for the given username.
func (e *Engine) Account(ctx context.Context, username string) (model.Account, error) {
	return e.store.Get(ctx, username)
}

// Balance returns the current balance for the given username.
func (e *Engine) Balance(ctx context.Context, username string) (decimal.Decimal, error) {
	acct, err := e.store.Get(ctx, username)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return acct.Balance, nil
}

// Deposit credits amount to the account and appends a DEPOSIT record.
// There is no upper bound on deposits.
func (e *Engine) Deposit(ctx context.Context, username string, amount decimal.Decimal) (model.TransactionRecord, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return model.TransactionRecord{}, ErrInvalidAmount
	}

	acct, err := e.store.Get(ctx, username)
	if err != nil {
		return model.TransactionRecord{}, err
	}

	unlock := e.locks.lock(acct.AccountNumber)
	defer unlock()
	if err := ctx.Err(); err != nil {
		return model.TransactionRecord{}, err
	}

	// Re-read under the lock; the pre-lock copy may be stale.
	acct, err = e.store.Get(ctx, username)
	if err != nil {
		return model.TransactionRecord{}, err
	}

	acct.Balance = acct.Balance.Add(amount)
	rec := model.TransactionRecord{
		ID:           e.ids.NewID(),
		Type:         model.TypeDeposit,
		Amount:       amount,
		Timestamp:    e.clock(),
		BalanceAfter: acct.Balance,
	}
	acct.AppendTransaction(rec)

	if err := e.store.Put(ctx, acct); err != nil {
		return model.TransactionRecord{}, fmt.Errorf("persisting deposit: %w", err)
	}
	return rec, nil
}

// Withdraw debits amount from the account, subject to the funds check
// and then the daily withdrawal cap, and appends a WITHDRAW record.
func (e *Engine) Withdraw(ctx context.Context, username string, amount decimal.Decimal) (model.TransactionRecord, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return model.TransactionRecord{}, ErrInvalidAmount
	}

	acct, err := e.store.Get(ctx, username)
	if err != nil {
		return model.TransactionRecord{}, err
	}

	unlock := e.locks.lock(acct.AccountNumber)
	defer unlock()
	if err := ctx.Err(); err != nil {
		return model.TransactionRecord{}, err
	}

	acct, err = e.store.Get(ctx, username)
	if err != nil {
		return model.TransactionRecord{}, err
	}

	if acct.Balance.LessThan(amount) {
		return model.TransactionRecord{}, ErrInsufficientFunds
	}

	// A new calendar day resets the window before the cap is evaluated.
	today := e.clock().Format(model.DateFormat)
	if acct.DailyWithdrawDate != today {
		acct.DailyWithdrawTotal = decimal.Zero
		acct.DailyWithdrawDate = today
	}
	if acct.DailyWithdrawTotal.Add(amount).GreaterThan(e.dailyLimit) {
		return model.TransactionRecord{}, &DailyLimitError{
			Remaining: e.dailyLimit.Sub(acct.DailyWithdrawTotal),
		}
	}

	acct.Balance = acct.Balance.Sub(amount)
	acct.DailyWithdrawTotal = acct.DailyWithdrawTotal.Add(amount)
	rec := model.TransactionRecord{
		ID:           e.ids.NewID(),
		Type:         model.TypeWithdraw,
		Amount:       amount,
		Timestamp:    e.clock(),
		BalanceAfter: acct.Balance,
	}
	acct.AppendTransaction(rec)

	if err := e.store.Put(ctx, acct); err != nil {
		return model.TransactionRecord{}, fmt.Errorf("persisting withdrawal: %w", err)
	}
	return rec, nil
}

// TransferResult reports a committed transfer.
type TransferResult struct {
	Sent          model.TransactionRecord
	Received      model.TransactionRecord
	SenderName    string
	ReceiverName  string
	SenderBalance decimal.Decimal
}

// Transfer moves amount from the sender to the account holding the
// beneficiary account number. The debit leg is built first, then the
// credit leg, and both records persist in one atomic pair write. The
// daily withdrawal cap does not apply to transfers.
func (e *Engine) Transfer(ctx context.Context, username, beneficiary string, amount decimal.Decimal) (TransferResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return TransferResult{}, ErrInvalidAmount
	}

	sender, err := e.store.Get(ctx, username)
	if err != nil {
		return TransferResult{}, err
	}
	if sender.AccountNumber == beneficiary {
		return TransferResult{}, ErrSelfTransfer
	}

	unlock := e.locks.lockPair(sender.AccountNumber, beneficiary)
	defer unlock()
	if err := ctx.Err(); err != nil {
		return TransferResult{}, err
	}

	sender, err = e.store.Get(ctx, username)
	if err != nil {
		return TransferResult{}, err
	}
	if sender.Balance.LessThan(amount) {
		return TransferResult{}, ErrInsufficientFunds
	}

	receiver, err := e.store.GetByAccountNumber(ctx, beneficiary)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TransferResult{}, ErrBeneficiaryNotFound
		}
		return TransferResult{}, err
	}

	now := e.clock()

	// Debit leg first. The order is part of the contract.
	sender.Balance = sender.Balance.Sub(amount)
	sent := model.TransactionRecord{
		ID:           e.ids.NewID(),
		Type:         model.TypeTransferSent,
		Amount:       amount,
		Timestamp:    now,
		BalanceAfter: sender.Balance,
		Description:  "To: " + receiver.FullName,
	}
	sender.AppendTransaction(sent)

	// Credit leg second, sharing the commit time.
	receiver.Balance = receiver.Balance.Add(amount)
	received := model.TransactionRecord{
		ID:           e.ids.NewID(),
		Type:         model.TypeTransferReceived,
		Amount:       amount,
		Timestamp:    now,
		BalanceAfter: receiver.Balance,
		Description:  "From: " + sender.FullName,
	}
	receiver.AppendTransaction(received)

	// Record IDs stay fixed across retries, so a re-attempt after an
	// ambiguous failure cannot double-apply either leg.
	var persistErr error
	for attempt := 0; attempt < maxPersistRetries; attempt++ {
		if persistErr = e.store.PutPair(ctx, sender, receiver); persistErr == nil {
			break
		}
	}
	if persistErr != nil {
		return TransferResult{}, e.classifyTransferFailure(ctx, sender, receiver, sent, persistErr)
	}

	return TransferResult{
		Sent:          sent,
		Received:      received,
		SenderName:    sender.FullName,
		ReceiverName:  receiver.FullName,
		SenderBalance: sender.Balance,
	}, nil
}

// classifyTransferFailure distinguishes a clean abort (nothing durable,
// plain storage error) from a torn write where the debit leg committed
// without the credit leg.
func (e *Engine) classifyTransferFailure(ctx context.Context, sender, receiver model.Account, sent model.TransactionRecord, persistErr error) error {
	current, err := e.store.Get(ctx, sender.Username)
	if err == nil && len(current.Transactions) > 0 && current.Transactions[0].ID == sent.ID {
		return &PartialTransferError{
			SenderID:     sender.AccountID,
			ReceiverID:   receiver.AccountID,
			Amount:       sent.Amount,
			SentRecordID: sent.ID,
			Err:          persistErr,
		}
	}
	return fmt.Errorf("persisting transfer: %w", persistErr)
}

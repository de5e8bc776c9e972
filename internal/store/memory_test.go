package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securebank-dev/ledger/internal/model"
)

func testAccount(username, number string, balance int64) model.Account {
	return model.Account{
		AccountID:          "acct_" + username,
		FullName:           "Test " + username,
		Username:           username,
		PIN:                "1234",
		AccountNumber:      number,
		Balance:            decimal.NewFromInt(balance),
		DailyWithdrawTotal: decimal.Zero,
		DailyWithdrawDate:  "2026-08-29",
	}
}

func TestMemoryGetPut(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "user1")
	assert.ErrorIs(t, err, ErrNotFound)

	acct := testAccount("user1", "100000001", 15000)
	require.NoError(t, m.Put(ctx, acct))

	got, err := m.Get(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, "user1", got.Username)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(15000)))

	byNum, err := m.GetByAccountNumber(ctx, "100000001")
	require.NoError(t, err)
	assert.Equal(t, "user1", byNum.Username)

	_, err = m.GetByAccountNumber(ctx, "999999999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	acct := testAccount("user1", "100000001", 100)
	acct.AppendTransaction(model.TransactionRecord{
		ID:           "txn_1",
		Type:         model.TypeDeposit,
		Amount:       decimal.NewFromInt(100),
		Timestamp:    time.Now(),
		BalanceAfter: decimal.NewFromInt(100),
	})
	require.NoError(t, m.Put(ctx, acct))

	got, err := m.Get(ctx, "user1")
	require.NoError(t, err)
	got.Transactions[0].ID = "mutated"
	got.Balance = decimal.NewFromInt(0)

	again, err := m.Get(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, "txn_1", again.Transactions[0].ID)
	assert.True(t, again.Balance.Equal(decimal.NewFromInt(100)))
}

func TestMemoryPutPair(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	a := testAccount("user1", "100000001", 50)
	b := testAccount("user2", "100000002", 150)
	require.NoError(t, m.PutPair(ctx, a, b))

	list, err := m.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestMemoryCancelledContext(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Get(ctx, "user1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, m.Put(ctx, testAccount("user1", "100000001", 0)), context.Canceled)
}

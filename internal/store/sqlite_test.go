package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securebank-dev/ledger/internal/model"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestDB(t)

	now := time.Now().UTC().Truncate(time.Second)
	acct := testAccount("user1", "100000001", 15000)
	acct.FailedAttempts = 2
	acct.LastLogin = &now
	acct.AppendTransaction(model.TransactionRecord{
		ID:           "txn_1",
		Type:         model.TypeDeposit,
		Amount:       decimal.NewFromInt(5000),
		Timestamp:    now,
		BalanceAfter: decimal.NewFromInt(15000),
		Description:  "opening deposit",
	})
	require.NoError(t, s.Put(ctx, acct))

	got, err := s.Get(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, "acct_user1", got.AccountID)
	assert.Equal(t, 2, got.FailedAttempts)
	assert.False(t, got.Locked)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(15000)))
	require.NotNil(t, got.LastLogin)
	assert.True(t, got.LastLogin.Equal(now))
	require.Len(t, got.Transactions, 1)
	assert.Equal(t, "txn_1", got.Transactions[0].ID)
	assert.Equal(t, model.TypeDeposit, got.Transactions[0].Type)
	assert.Equal(t, "opening deposit", got.Transactions[0].Description)
}

func TestSQLiteNotFound(t *testing.T) {
	ctx := context.Background()
	s := openTestDB(t)

	_, err := s.Get(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetByAccountNumber(ctx, "000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteTransactionOrdering(t *testing.T) {
	ctx := context.Background()
	s := openTestDB(t)

	acct := testAccount("user1", "100000001", 0)
	require.NoError(t, s.Put(ctx, acct))

	// Commit three records across separate writes, as the engine does.
	for i, id := range []string{"txn_1", "txn_2", "txn_3"} {
		acct.AppendTransaction(model.TransactionRecord{
			ID:           id,
			Type:         model.TypeDeposit,
			Amount:       decimal.NewFromInt(10),
			Timestamp:    time.Now().UTC(),
			BalanceAfter: decimal.NewFromInt(int64(10 * (i + 1))),
		})
		require.NoError(t, s.Put(ctx, acct))
	}

	got, err := s.Get(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, got.Transactions, 3)
	assert.Equal(t, "txn_3", got.Transactions[0].ID, "newest first")
	assert.Equal(t, "txn_1", got.Transactions[2].ID)
}

func TestSQLitePutPair(t *testing.T) {
	ctx := context.Background()
	s := openTestDB(t)

	a := testAccount("user1", "100000001", 40)
	b := testAccount("user2", "100000002", 60)
	require.NoError(t, s.PutPair(ctx, a, b))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "user1", list[0].Username)
	assert.Equal(t, "user2", list[1].Username)
}

func TestSQLiteUpdateKeepsLock(t *testing.T) {
	ctx := context.Background()
	s := openTestDB(t)

	acct := testAccount("user1", "100000001", 100)
	require.NoError(t, s.Put(ctx, acct))

	acct.Locked = true
	acct.FailedAttempts = 3
	require.NoError(t, s.Put(ctx, acct))

	got, err := s.Get(ctx, "user1")
	require.NoError(t, err)
	assert.True(t, got.Locked)
	assert.Equal(t, 3, got.FailedAttempts)
}

package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securebank-dev/ledger/internal/store"
)

func TestLoadDemoAccounts(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	n, err := Load(ctx, mem, "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	acct, err := mem.Get(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, "Anand Kumar", acct.FullName)
	assert.True(t, acct.Balance.Equal(decimal.NewFromInt(15000)))
	require.Len(t, acct.Transactions, 1)
	assert.True(t, acct.Balance.Equal(acct.Transactions[0].BalanceAfter))
}

func TestLoadSkipsExisting(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	_, err := Load(ctx, mem, "", time.Now())
	require.NoError(t, err)

	// Mutate a balance, then re-seed: nothing resets.
	acct, err := mem.Get(ctx, "user1")
	require.NoError(t, err)
	acct.Balance = decimal.NewFromInt(1)
	require.NoError(t, mem.Put(ctx, acct))

	n, err := Load(ctx, mem, "", time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	acct, err = mem.Get(ctx, "user1")
	require.NoError(t, err)
	assert.True(t, acct.Balance.Equal(decimal.NewFromInt(1)))
}

func TestLoadFromCSV(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	csvData := strings.Join([]string{
		"account_id,full_name,username,pin,account_number,opening_balance",
		"user_010,Ravi Menon,ravi,4321,100000010,500.00",
	}, "\n")
	path := filepath.Join(t.TempDir(), "accounts.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvData), 0o644))

	n, err := Load(ctx, mem, path, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	acct, err := mem.Get(ctx, "ravi")
	require.NoError(t, err)
	assert.Equal(t, "100000010", acct.AccountNumber)
	assert.True(t, acct.Balance.Equal(decimal.NewFromInt(500)))
	assert.NotEmpty(t, acct.DailyWithdrawDate)
}

func TestReadAccountsRejectsNegativeBalance(t *testing.T) {
	csvData := strings.Join([]string{
		"account_id,full_name,username,pin,account_number,opening_balance",
		"user_011,Bad Row,bad,0000,100000011,-10.00",
	}, "\n")

	_, err := ReadAccounts(strings.NewReader(csvData))
	assert.ErrorContains(t, err, "negative")
}

func TestCSVRoundTrip(t *testing.T) {
	accounts := DemoAccounts(time.Now())

	var sb strings.Builder
	require.NoError(t, WriteAccounts(&sb, accounts))

	got, err := ReadAccounts(strings.NewReader(sb.String()))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "user1", got[0].Username)
	assert.True(t, got[0].Balance.Equal(decimal.NewFromInt(15000)))
}

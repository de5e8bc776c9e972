// Package seed loads initial account records, either from a CSV file or
// from the built-in demo set.
package seed

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/securebank-dev/ledger/internal/model"
	"github.com/securebank-dev/ledger/internal/store"
)

// DemoAccounts returns the demo account holders, mirroring the data a
// fresh deployment is initialized with.
func DemoAccounts(now time.Time) []model.Account {
	today := now.Format(model.DateFormat)
	return []model.Account{
		{
			AccountID:          "user_001",
			FullName:           "Anand Kumar",
			Username:           "user1",
			PIN:                "1234",
			AccountNumber:      "100000001",
			Balance:            decimal.NewFromInt(15000),
			DailyWithdrawTotal: decimal.Zero,
			DailyWithdrawDate:  today,
			Transactions: []model.TransactionRecord{
				{
					ID:           "txn_1",
					Type:         model.TypeDeposit,
					Amount:       decimal.NewFromInt(5000),
					Timestamp:    now,
					BalanceAfter: decimal.NewFromInt(15000),
				},
			},
		},
		{
			AccountID:          "user_002",
			FullName:           "Priya Sharma",
			Username:           "user2",
			PIN:                "0000",
			AccountNumber:      "100000002",
			Balance:            decimal.NewFromInt(25000),
			DailyWithdrawTotal: decimal.Zero,
			DailyWithdrawDate:  today,
		},
	}
}

// Load seeds the store from path when set, otherwise with the demo
// accounts. Existing accounts are left untouched so re-seeding a live
// database cannot reset balances or histories.
func Load(ctx context.Context, st store.Store, path string, now time.Time) (int, error) {
	var accounts []model.Account
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return 0, fmt.Errorf("opening seed file: %w", err)
		}
		defer f.Close()

		accounts, err = ReadAccounts(f)
		if err != nil {
			return 0, fmt.Errorf("reading seed file: %w", err)
		}
		for i := range accounts {
			if accounts[i].DailyWithdrawDate == "" {
				accounts[i].DailyWithdrawDate = now.Format(model.DateFormat)
			}
		}
	} else {
		accounts = DemoAccounts(now)
	}

	var seeded int
	for _, acct := range accounts {
		if _, err := st.Get(ctx, acct.Username); err == nil {
			continue
		}
		if err := st.Put(ctx, acct); err != nil {
			return seeded, fmt.Errorf("seeding account %s: %w", acct.Username, err)
		}
		seeded++
	}
	return seeded, nil
}

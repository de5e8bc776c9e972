package seed

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/securebank-dev/ledger/internal/model"
)

const (
	numFields = 6
	colID     = 0
	colName   = 1
	colUser   = 2
	colPIN    = 3
	colNumber = 4
	colOpen   = 5
)

// ReadAccounts reads seed accounts from an accounts.csv reader.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes seed accounts as accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"account_id", "full_name", "username", "pin", "account_number", "opening_balance"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a seed CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = acct.AccountID
	row[colName] = acct.FullName
	row[colUser] = acct.Username
	row[colPIN] = acct.PIN
	row[colNumber] = acct.AccountNumber
	row[colOpen] = acct.Balance.StringFixed(2)
	return row
}

// UnmarshalAccount converts a seed CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	balance, err := decimal.NewFromString(record[colOpen])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing opening_balance %q: %w", record[colOpen], err)
	}
	if balance.IsNegative() {
		return model.Account{}, fmt.Errorf("opening_balance %q is negative", record[colOpen])
	}

	return model.Account{
		AccountID:          record[colID],
		FullName:           record[colName],
		Username:           record[colUser],
		PIN:                record[colPIN],
		AccountNumber:      record[colNumber],
		Balance:            balance,
		DailyWithdrawTotal: decimal.Zero,
	}, nil
}

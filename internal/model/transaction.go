package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a transaction record.
type TransactionType string

const (
	TypeDeposit          TransactionType = "DEPOSIT"
	TypeWithdraw         TransactionType = "WITHDRAW"
	TypeTransferSent     TransactionType = "TRANSFER_SENT"
	TypeTransferReceived TransactionType = "TRANSFER_RECEIVED"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeDeposit, TypeWithdraw, TypeTransferSent, TypeTransferReceived:
		return true
	}
	return false
}

// Credit reports whether the type increases the account balance.
func (t TransactionType) Credit() bool {
	return t == TypeDeposit || t == TypeTransferReceived
}

// TransactionRecord is one immutable row of an account's history.
type TransactionRecord struct {
	ID           string
	Type         TransactionType
	Amount       decimal.Decimal // always positive; direction comes from Type
	Timestamp    time.Time       // commit time
	BalanceAfter decimal.Decimal // account balance immediately after this record
	Description  string          // optional; transfers name the counterparty
}

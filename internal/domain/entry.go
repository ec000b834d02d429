package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount indicates invalid amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNegativeAmount indicates zero or negative amount.
	ErrNegativeAmount = errors.New("negative amount")
	// ErrInvalidMethod indicates an unknown transaction method.
	ErrInvalidMethod = errors.New("invalid transaction method")
	// ErrInvalidDirection indicates an unknown entry direction.
	ErrInvalidDirection = errors.New("invalid transaction type")
	// ErrTransactionIDTaken indicates a transaction identifier collision at commit time.
	ErrTransactionIDTaken = errors.New("transaction id already exists")
	// ErrEntryNotFound indicates that the entry is not found.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrIDSpaceExhausted indicates that identifier generation gave up after
	// the allowed number of collisions.
	ErrIDSpaceExhausted = errors.New("identifier space exhausted")
)

// Direction is the side of a ledger entry.
type Direction string

// Entry directions.
const (
	Debit  Direction = "Debit"
	Credit Direction = "Credit"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == Debit || d == Credit
}

// Method is the channel a transaction was made through.
type Method string

// Transaction methods.
const (
	MethodUPI      Method = "UPI"
	MethodNEFT     Method = "NEFT"
	MethodIMPS     Method = "IMPS"
	MethodRTGS     Method = "RTGS"
	MethodATM      Method = "ATM"
	MethodPOS      Method = "POS"
	MethodWithdraw Method = "WITHDRAW"
	MethodCash     Method = "CASH"
	MethodOther    Method = "OTHER"
)

// Valid reports whether m is a known method.
func (m Method) Valid() bool {
	switch m {
	case MethodUPI, MethodNEFT, MethodIMPS, MethodRTGS,
		MethodATM, MethodPOS, MethodWithdraw, MethodCash, MethodOther:
		return true
	}

	return false
}

// TransactionIDPrefix starts every transaction identifier.
const TransactionIDPrefix = "txn"

// TransferParty identifies the counterparty account recorded in entry details.
type TransferParty struct {
	AccountNumber string `json:"account_number"`
	RoutingCode   string `json:"ifsc,omitempty"`
}

// EntryDetails is the structured metadata attached to an entry. Fields are
// filled per entry purpose: Source and AddedBy for manual staff entries,
// TransferredTo on the debit side of a transfer, TransferredFrom on the
// credit side.
type EntryDetails struct {
	Remarks         string         `json:"remarks,omitempty"`
	Source          string         `json:"source,omitempty"`
	AddedBy         string         `json:"added_by,omitempty"`
	TransferredTo   *TransferParty `json:"transferred_to,omitempty"`
	TransferredFrom *TransferParty `json:"transferred_from,omitempty"`
}

// Entry is one immutable monetary movement against one account.
type Entry struct {
	ID              string       `json:"-"`
	TransactionID   string       `json:"transaction_id"`
	Direction       Direction    `json:"transaction_type"`
	Amount          string       `json:"amount"`
	AccountID       string       `json:"-"`
	AccountNumber   string       `json:"account_number,omitempty"`
	Method          Method       `json:"transaction_method"`
	Details         EntryDetails `json:"description"`
	ReferenceNumber string       `json:"reference_number,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// CreateEntryParams is the input data to insert one entry row.
type CreateEntryParams struct {
	TransactionID   string
	Direction       Direction
	Amount          string
	AccountID       string
	Method          Method
	Details         EntryDetails
	ReferenceNumber string
}

// PostEntryParams is the input data for the single-entry atomic unit:
// one balance mutation plus one entry insert.
type PostEntryParams struct {
	AccountNumber   string
	TransactionID   string
	Direction       Direction
	Amount          string
	Method          Method
	Details         EntryDetails
	ReferenceNumber string
}

// EntryTxResult is the result of the single-entry atomic unit.
type EntryTxResult struct {
	Entry   Entry   `json:"entry"`
	Account Account `json:"account"`
}

// CreateStaffEntryParams is the input data for a manual staff credit or debit.
// HolderName is optional; when supplied it must match the account holder.
type CreateStaffEntryParams struct {
	AccountNumber   string
	Direction       Direction
	Amount          string
	Method          Method
	Source          string
	HolderName      string
	ReferenceNumber string
}

// ListStatementParams is the input data for a statement export over a
// set of accounts within a date window.
type ListStatementParams struct {
	AccountNumbers []string
	Start          time.Time
	End            time.Time
}

const amountScale = 3

// NormalizeAmount parses a caller supplied amount, requires it to be
// strictly positive and normalizes it to 3 decimal places using
// banker's rounding. All amounts enter the ledger through this function
// so no further rounding happens downstream.
func NormalizeAmount(amount string) (string, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", ErrInvalidAmount
	}

	if d.LessThanOrEqual(decimal.Zero) {
		return "", ErrNegativeAmount
	}

	return d.RoundBank(amountScale).StringFixed(amountScale), nil
}

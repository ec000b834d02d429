// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountNumberTaken indicates that the generated account number is already in use.
	ErrAccountNumberTaken = errors.New("account number already exists")
	// ErrCustomerNotFound indicates that the owning customer is not found.
	ErrCustomerNotFound = errors.New("customer not found")
)

// AccountType classifies an account.
type AccountType string

// Account types.
const (
	TypeSaving   AccountType = "SV"
	TypeSalary   AccountType = "SL"
	TypeCurrent  AccountType = "CT"
	TypeBusiness AccountType = "BS"
	TypeOther    AccountType = "OT"
)

// AccountStatus describes whether an account may take part in operations.
type AccountStatus string

// Account statuses.
const (
	StatusActive    AccountStatus = "AC"
	StatusInactive  AccountStatus = "IA"
	StatusHold      AccountStatus = "HL"
	StatusBlocked   AccountStatus = "BL"
	StatusSuspended AccountStatus = "SP"
	StatusOther     AccountStatus = "OT"
)

// Account holds a customer's balance and holder data.
//
// Balance is mutated only through a ledger-entry-producing operation,
// never written directly.
type Account struct {
	ID            string        `json:"-"`
	AccountNumber string        `json:"account_number"`
	Balance       string        `json:"balance"`
	Type          AccountType   `json:"account_type"`
	Status        AccountStatus `json:"status"`
	CustomerID    string        `json:"-"`
	HolderName    string        `json:"holder_name,omitempty"`
	Email         string        `json:"-"`
	RoutingCode   string        `json:"ifsc_code,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// CreateAccountParams is the input data to open an account.
type CreateAccountParams struct {
	AccountNumber string
	CustomerID    string
	Type          AccountType
	Status        AccountStatus
	Balance       string
}

const maskVisibleDigits = 6

// MaskAccountNumber truncates an account number to its last 6 digits
// for storage in counterparty metadata.
func MaskAccountNumber(number string) string {
	if len(number) <= maskVisibleDigits {
		return number
	}

	return number[len(number)-maskVisibleDigits:]
}

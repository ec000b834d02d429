package domain

import "errors"

var (
	// ErrSenderInactive indicates that the sender account status is not Active.
	ErrSenderInactive = errors.New("your account is not active")
	// ErrInsufficientBalance indicates that the account does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient account balance")
	// ErrDestinationNotFound indicates that the destination account number does not resolve.
	ErrDestinationNotFound = errors.New("destination account not found")
	// ErrDestinationInactive indicates that the destination account status is not Active.
	ErrDestinationInactive = errors.New("destination account is not active")
	// ErrHolderMismatch indicates that the supplied holder details do not
	// match the destination account. A name mismatch and a routing code
	// mismatch both return this error so a caller cannot probe which
	// part was wrong.
	ErrHolderMismatch = errors.New("account or account holder details don't match")
	// ErrSelfTransfer indicates an attempt to transfer to the sending account.
	ErrSelfTransfer = errors.New("cannot transfer to the same account")
	// ErrTxConflict indicates a transient locking conflict; the operation may be retried.
	ErrTxConflict = errors.New("operation conflicted with a concurrent one, retry")
)

// CreateTransferParams is the caller input for a funds transfer. The
// sender account is resolved from the authenticated identity, not from
// the request.
type CreateTransferParams struct {
	DestinationAccountNumber string
	Amount                   string
	HolderName               string
	RoutingCode              string
	Remarks                  string
	Method                   Method
}

// TransferTxParams is the input data for the paired-entry atomic unit.
type TransferTxParams struct {
	SenderAccountNumber      string
	DestinationAccountNumber string
	DestinationRoutingCode   string
	Amount                   string
	Method                   Method
	Remarks                  string
	DebitTransactionID       string
	CreditTransactionID      string
}

// TransferTxResult is the result of the paired-entry atomic unit.
type TransferTxResult struct {
	DebitEntry         Entry   `json:"debit_entry"`
	CreditEntry        Entry   `json:"credit_entry"`
	SenderAccount      Account `json:"sender_account"`
	DestinationAccount Account `json:"destination_account"`
}

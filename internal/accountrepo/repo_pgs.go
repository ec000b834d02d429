// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/corebank/ledger/internal/domain"
	"github.com/corebank/ledger/pkg/dbpkg"
	"github.com/corebank/ledger/pkg/errorspkg"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const accountColumns = `
	a.id, a.account_number, a.balance, a.account_type, a.status, a.customer_id,
	c.full_name, c.email, b.ifsc_code, a.created_at
`

const accountJoins = `
FROM accounts a
JOIN customers c ON c.id = a.customer_id
JOIN branches b ON b.id = c.branch_id
`

func scanAccount(row *sql.Row) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.AccountNumber,
		&a.Balance,
		&a.Type,
		&a.Status,
		&a.CustomerID,
		&a.HolderName,
		&a.Email,
		&a.RoutingCode,
		&a.CreatedAt,
	)

	return a, err
}

const createQuery = `
INSERT INTO
    accounts (account_number, customer_id, account_type, status, balance)
VALUES
    ($1, $2, $3, $4, $5)
RETURNING id, account_number, balance, account_type, status, customer_id, created_at
`

// Create opens the account and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.AccountNumber, arg.CustomerID, arg.Type, arg.Status, arg.Balance)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.AccountNumber,
		&a.Balance,
		&a.Type,
		&a.Status,
		&a.CustomerID,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "accounts_account_number_key":
				return a, domain.ErrAccountNumberTaken
			case "accounts_customer_id_fkey":
				return a, domain.ErrCustomerNotFound
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getByNumberQuery = `
SELECT ` + accountColumns + accountJoins + `
WHERE a.account_number = $1 AND NOT a.is_deleted
`

// GetByNumber returns the account with the given account number.
func (r *RepoPGS) GetByNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, getByNumberQuery, accountNumber))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getByHolderQuery = `
SELECT ` + accountColumns + accountJoins + `
WHERE c.username = $1 AND NOT a.is_deleted
`

// GetByHolder returns the account owned by the customer with the given username.
func (r *RepoPGS) GetByHolder(ctx context.Context, username string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, getByHolderQuery, username))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const applyEntryQuery = `
UPDATE accounts
SET balance = balance + $1
WHERE account_number = $2 AND NOT is_deleted
RETURNING id, account_number, balance, account_type, status, customer_id, created_at
`

// ApplyEntry recomputes the balance for one accepted entry: plus amount
// for Credit, minus amount for Debit. It is the only sanctioned path to
// mutate a balance; the UPDATE takes the row lock so concurrent units
// against the same account serialize. Holder fields on the returned
// account are not populated.
func (r *RepoPGS) ApplyEntry(ctx context.Context, direction domain.Direction, amount, accountNumber string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	delta := amount
	if direction == domain.Debit {
		delta = "-" + amount
	}

	row := r.db.QueryRowContext(ctx, applyEntryQuery, delta, accountNumber)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.AccountNumber,
		&a.Balance,
		&a.Type,
		&a.Status,
		&a.CustomerID,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		if retryErr, ok := err.(*pq.Error); ok && dbpkg.IsRetriableTxError(retryErr) {
			return a, domain.ErrTxConflict
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const debitWithFundsCheckQuery = `
UPDATE accounts
SET balance = balance - $1
WHERE account_number = $2 AND NOT is_deleted AND balance >= $1
RETURNING id, account_number, balance, account_type, status, customer_id, created_at
`

// DebitWithFundsCheck debits the account only if the balance covers the
// amount. It is used on the sender side of a transfer so the funds
// check re-holds under the row lock even when the pre-validation read
// raced with another unit. The caller must have resolved the account
// already: no rows means insufficient funds.
func (r *RepoPGS) DebitWithFundsCheck(ctx context.Context, amount, accountNumber string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, debitWithFundsCheckQuery, amount, accountNumber)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.AccountNumber,
		&a.Balance,
		&a.Type,
		&a.Status,
		&a.CustomerID,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrInsufficientBalance
		}

		if retryErr, ok := err.(*pq.Error); ok && dbpkg.IsRetriableTxError(retryErr) {
			return a, domain.ErrTxConflict
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const accountNumberExistsQuery = `
SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)
`

// AccountNumberExists reports whether the account number is already in use.
func (r *RepoPGS) AccountNumberExists(ctx context.Context, number string) (bool, error) {
	l := zerolog.Ctx(ctx)

	var exists bool
	if err := r.db.QueryRowContext(ctx, accountNumberExistsQuery, number).Scan(&exists); err != nil {
		l.Error().Err(err).Send()
		return false, errorspkg.ErrInternal
	}

	return exists, nil
}

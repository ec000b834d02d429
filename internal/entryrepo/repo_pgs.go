// Package entryrepo manages repository layer of ledger entries.
package entryrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/corebank/ledger/internal/accountrepo"
	"github.com/corebank/ledger/internal/domain"
	"github.com/corebank/ledger/pkg/dbpkg"
	"github.com/corebank/ledger/pkg/errorspkg"
)

// RepoPGS facilitates entry repository layer logic. Entries are
// append-only: there are no update or delete queries.
type RepoPGS struct {
	db          dbpkg.SQLInterface
	conn        *sql.DB
	lockTimeout time.Duration
}

// NewTxRepoPGS returns entry RepoPGS scoped to an existing transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

// NewRepoPGS returns entry RepoPGS with a connection to start its own
// atomic units.
func NewRepoPGS(db *sql.DB, lockTimeout time.Duration) *RepoPGS {
	return &RepoPGS{db: db, conn: db, lockTimeout: lockTimeout}
}

const createQuery = `
INSERT INTO
    entries (transaction_id, direction, amount, account_id, method, details, reference_number)
VALUES
    ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
RETURNING id, transaction_id, direction, amount, account_id, method, details, COALESCE(reference_number, ''), created_at
`

// Create inserts one immutable entry and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateEntryParams) (domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	var e domain.Entry

	details, err := json.Marshal(arg.Details)
	if err != nil {
		l.Error().Err(err).Send()
		return e, errorspkg.ErrInternal
	}

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.TransactionID, arg.Direction, arg.Amount, arg.AccountID,
		arg.Method, details, arg.ReferenceNumber)

	e, err = scanEntry(row)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "entries_transaction_id_key":
				return e, domain.ErrTransactionIDTaken
			case "entries_account_id_fkey":
				return e, domain.ErrAccountNotFound
			case "entries_amount_check":
				return e, domain.ErrNegativeAmount
			}
		}

		return e, errorspkg.ErrInternal
	}

	return e, nil
}

func scanEntry(row *sql.Row) (domain.Entry, error) {
	var (
		e       domain.Entry
		details []byte
	)

	err := row.Scan(
		&e.ID,
		&e.TransactionID,
		&e.Direction,
		&e.Amount,
		&e.AccountID,
		&e.Method,
		&details,
		&e.ReferenceNumber,
		&e.CreatedAt,
	)
	if err != nil {
		return e, err
	}

	if err := json.Unmarshal(details, &e.Details); err != nil {
		return e, err
	}

	return e, nil
}

const getQuery = `
SELECT id, transaction_id, direction, amount, account_id, method, details, COALESCE(reference_number, ''), created_at
FROM entries
WHERE transaction_id = $1
`

// Get returns the entry with the given transaction id.
func (r *RepoPGS) Get(ctx context.Context, transactionID string) (domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	e, err := scanEntry(r.db.QueryRowContext(ctx, getQuery, transactionID))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return e, domain.ErrEntryNotFound
		}

		return e, errorspkg.ErrInternal
	}

	return e, nil
}

const listByAccountQuery = `
SELECT e.id, e.transaction_id, e.direction, e.amount, e.account_id, a.account_number,
       e.method, e.details, COALESCE(e.reference_number, ''), e.created_at
FROM entries e
JOIN accounts a ON a.id = e.account_id
WHERE a.account_number = $1
ORDER BY e.created_at
LIMIT $2 OFFSET $3
`

// ListByAccount returns the account's entries ordered by commit time.
func (r *RepoPGS) ListByAccount(ctx context.Context, accountNumber string, limit, offset int32) ([]domain.Entry, error) {
	rows, err := r.db.QueryContext(ctx, listByAccountQuery, accountNumber, limit, offset)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return collectEntries(ctx, rows)
}

const listStatementQuery = `
SELECT e.id, e.transaction_id, e.direction, e.amount, e.account_id, a.account_number,
       e.method, e.details, COALESCE(e.reference_number, ''), e.created_at
FROM entries e
JOIN accounts a ON a.id = e.account_id
WHERE a.account_number = ANY($1) AND e.created_at BETWEEN $2 AND $3
ORDER BY e.created_at
`

// ListStatement returns entries for the given accounts within the date
// window, ordered by commit time. It reads committed state only.
func (r *RepoPGS) ListStatement(ctx context.Context, arg domain.ListStatementParams) ([]domain.Entry, error) {
	rows, err := r.db.QueryContext(ctx, listStatementQuery,
		pq.Array(arg.AccountNumbers), arg.Start, arg.End)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return collectEntries(ctx, rows)
}

func collectEntries(ctx context.Context, rows *sql.Rows) ([]domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	defer rows.Close()

	items := []domain.Entry{}

	for rows.Next() {
		var (
			e       domain.Entry
			details []byte
		)

		if err := rows.Scan(
			&e.ID,
			&e.TransactionID,
			&e.Direction,
			&e.Amount,
			&e.AccountID,
			&e.AccountNumber,
			&e.Method,
			&details,
			&e.ReferenceNumber,
			&e.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		if err := json.Unmarshal(details, &e.Details); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, e)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const transactionIDExistsQuery = `
SELECT EXISTS (SELECT 1 FROM entries WHERE transaction_id = $1)
`

// TransactionIDExists reports whether the transaction id is already in use.
func (r *RepoPGS) TransactionIDExists(ctx context.Context, id string) (bool, error) {
	l := zerolog.Ctx(ctx)

	var exists bool
	if err := r.db.QueryRowContext(ctx, transactionIDExistsQuery, id).Scan(&exists); err != nil {
		l.Error().Err(err).Send()
		return false, errorspkg.ErrInternal
	}

	return exists, nil
}

// PostEntry applies one balance mutation and inserts the matching entry
// within a single database transaction. Both succeed or both roll back;
// no intermediate state is visible to another reader.
func (r *RepoPGS) PostEntry(ctx context.Context, arg domain.PostEntryParams) (domain.EntryTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.EntryTxResult

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	if err := dbpkg.SetLockTimeout(ctx, tx, r.lockTimeout); err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	accountRepo := accountrepo.NewRepoPGS(tx)
	entryRepo := NewTxRepoPGS(tx)

	result.Account, err = accountRepo.ApplyEntry(ctx, arg.Direction, arg.Amount, arg.AccountNumber)
	if err != nil {
		return result, err
	}

	result.Entry, err = entryRepo.Create(ctx, domain.CreateEntryParams{
		TransactionID:   arg.TransactionID,
		Direction:       arg.Direction,
		Amount:          arg.Amount,
		AccountID:       result.Account.ID,
		Method:          arg.Method,
		Details:         arg.Details,
		ReferenceNumber: arg.ReferenceNumber,
	})
	if err != nil {
		return result, err
	}

	result.Entry.AccountNumber = result.Account.AccountNumber

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()

		if dbpkg.IsRetriableTxError(err) {
			return result, domain.ErrTxConflict
		}

		return result, errorspkg.ErrInternal
	}

	return result, nil
}

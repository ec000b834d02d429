// Package transferrepo manages repository layer of transfers.
package transferrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"github.com/corebank/ledger/internal/accountrepo"
	"github.com/corebank/ledger/internal/domain"
	"github.com/corebank/ledger/internal/entryrepo"
	"github.com/corebank/ledger/pkg/dbpkg"
	"github.com/corebank/ledger/pkg/errorspkg"
)

// RepoPGS facilitates transfer repository layer logic.
type RepoPGS struct {
	conn        *sql.DB
	lockTimeout time.Duration
}

// NewRepoPGS returns transfer RepoPGS with a connection to start transactions.
func NewRepoPGS(db *sql.DB, lockTimeout time.Duration) *RepoPGS {
	return &RepoPGS{
		conn:        db,
		lockTimeout: lockTimeout,
	}
}

// Transfer moves funds between two accounts as one atomic unit: a
// guarded debit of the sender, a credit of the destination, and the two
// correlated entries. Everything commits or rolls back together.
//
// Balance updates execute in ascending account-number order so two
// transfers moving funds in opposite directions between the same
// accounts cannot deadlock. Lock waits are bounded by lock_timeout and
// surface as domain.ErrTxConflict, which the coordinator retries.
func (r *RepoPGS) Transfer(ctx context.Context, arg domain.TransferTxParams) (domain.TransferTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransferTxResult

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

	// To avoid deadlocks execute balance updates in consistent account number order.
	if arg.SenderAccountNumber < arg.DestinationAccountNumber {
		result.SenderAccount, err = accountRepo.DebitWithFundsCheck(ctx, arg.Amount, arg.SenderAccountNumber)
		if err == nil {
			result.DestinationAccount, err = accountRepo.ApplyEntry(ctx, domain.Credit, arg.Amount, arg.DestinationAccountNumber)
		}
	} else {
		result.DestinationAccount, err = accountRepo.ApplyEntry(ctx, domain.Credit, arg.Amount, arg.DestinationAccountNumber)
		if err == nil {
			result.SenderAccount, err = accountRepo.DebitWithFundsCheck(ctx, arg.Amount, arg.SenderAccountNumber)
		}
	}

	if err != nil {
		return result, err
	}

	entryRepo := entryrepo.NewTxRepoPGS(tx)

	result.DebitEntry, err = entryRepo.Create(ctx, domain.CreateEntryParams{
		TransactionID: arg.DebitTransactionID,
		Direction:     domain.Debit,
		Amount:        arg.Amount,
		AccountID:     result.SenderAccount.ID,
		Method:        arg.Method,
		Details: domain.EntryDetails{
			Remarks: arg.Remarks,
			TransferredTo: &domain.TransferParty{
				AccountNumber: arg.DestinationAccountNumber,
				RoutingCode:   arg.DestinationRoutingCode,
			},
		},
	})
	if err != nil {
		return result, err
	}

	result.CreditEntry, err = entryRepo.Create(ctx, domain.CreateEntryParams{
		TransactionID: arg.CreditTransactionID,
		Direction:     domain.Credit,
		Amount:        arg.Amount,
		AccountID:     result.DestinationAccount.ID,
		Method:        arg.Method,
		Details: domain.EntryDetails{
			Remarks: arg.Remarks,
			TransferredFrom: &domain.TransferParty{
				AccountNumber: domain.MaskAccountNumber(arg.SenderAccountNumber),
			},
		},
	})
	if err != nil {
		return result, err
	}

	result.DebitEntry.AccountNumber = arg.SenderAccountNumber
	result.CreditEntry.AccountNumber = arg.DestinationAccountNumber

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()

		if dbpkg.IsRetriableTxError(err) {
			return result, domain.ErrTxConflict
		}

		return result, errorspkg.ErrInternal
	}

	return result, nil
}

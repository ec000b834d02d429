// Package entryservice manages business logic layer of manual ledger
// entries posted by bank staff.
package entryservice

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/corebank/ledger/internal/accountdelivery"
	"github.com/corebank/ledger/internal/domain"
	"github.com/corebank/ledger/internal/notification"
)

// Repo provides data access layer interface needed by entry service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package entryservice
type Repo interface {
	PostEntry(ctx context.Context, arg domain.PostEntryParams) (domain.EntryTxResult, error)
	ListByAccount(ctx context.Context, accountNumber string, limit, offset int32) ([]domain.Entry, error)
	ListStatement(ctx context.Context, arg domain.ListStatementParams) ([]domain.Entry, error)
}

// IDGenerator provides collision-free transaction identifiers.
type IDGenerator interface {
	TransactionID(ctx context.Context) (string, error)
}

// Dispatcher enqueues holder notifications after commit.
type Dispatcher interface {
	Enqueue(event notification.Event)
}

// Service facilitates entry service layer logic.
type Service struct {
	repo           Repo
	accountService accountdelivery.Service
	idGenerator    IDGenerator
	dispatcher     Dispatcher
	maxTxAttempts  int
}

// New returns entry service struct to manage manual entry business logic.
func New(r Repo, as accountdelivery.Service, g IDGenerator, d Dispatcher, maxTxAttempts int) *Service {
	if maxTxAttempts <= 0 {
		maxTxAttempts = 3
	}

	return &Service{
		repo:           r,
		accountService: as,
		idGenerator:    g,
		dispatcher:     d,
		maxTxAttempts:  maxTxAttempts,
	}
}

// PostEntry posts one manual credit or debit on behalf of bank staff.
// Holder status is intentionally not checked: staff may credit or debit
// an account in any status. The balance mutation and the entry insert
// commit as one atomic unit; the holder notification is enqueued only
// after that commit and cannot fail the operation.
func (s *Service) PostEntry(ctx context.Context, staffID string, arg domain.CreateStaffEntryParams) (domain.EntryTxResult, error) {
	l := zerolog.Ctx(ctx)

	amount, err := domain.NormalizeAmount(arg.Amount)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.EntryTxResult{}, err
	}

	if !arg.Direction.Valid() {
		return domain.EntryTxResult{}, domain.ErrInvalidDirection
	}

	if !arg.Method.Valid() {
		return domain.EntryTxResult{}, domain.ErrInvalidMethod
	}

	account, err := s.accountService.GetByNumber(ctx, arg.AccountNumber)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.EntryTxResult{}, err
	}

	if arg.HolderName != "" && arg.HolderName != account.HolderName {
		l.Info().Msg("staff entry holder name mismatch")
		return domain.EntryTxResult{}, domain.ErrHolderMismatch
	}

	var result domain.EntryTxResult

	for attempt := 0; attempt < s.maxTxAttempts; attempt++ {
		var transactionID string

		transactionID, err = s.idGenerator.TransactionID(ctx)
		if err != nil {
			l.Error().Err(err).Send()
			return domain.EntryTxResult{}, err
		}

		result, err = s.repo.PostEntry(ctx, domain.PostEntryParams{
			AccountNumber: arg.AccountNumber,
			TransactionID: transactionID,
			Direction:     arg.Direction,
			Amount:        amount,
			Method:        arg.Method,
			Details: domain.EntryDetails{
				Source:  arg.Source,
				AddedBy: staffID,
			},
			ReferenceNumber: arg.ReferenceNumber,
		})

		if errors.Is(err, domain.ErrTxConflict) || errors.Is(err, domain.ErrTransactionIDTaken) {
			l.Info().Err(err).Int("attempt", attempt+1).Msg("retrying manual entry")
			continue
		}

		break
	}

	if err != nil {
		if errors.Is(err, domain.ErrTransactionIDTaken) {
			return domain.EntryTxResult{}, domain.ErrTxConflict
		}

		return domain.EntryTxResult{}, err
	}

	s.dispatcher.Enqueue(notification.Event{
		RecipientEmail: account.Email,
		Direction:      arg.Direction,
		AccountNumber:  account.AccountNumber,
		Amount:         amount,
		OccurredAt:     result.Entry.CreatedAt,
	})

	return result, nil
}

// ListByAccount returns the account's entry history ordered by commit time.
func (s *Service) ListByAccount(ctx context.Context, accountNumber string, limit, offset int32) ([]domain.Entry, error) {
	if _, err := s.accountService.GetByNumber(ctx, accountNumber); err != nil {
		return nil, err
	}

	return s.repo.ListByAccount(ctx, accountNumber, limit, offset)
}

// ListStatement returns committed entries for the given accounts within
// the date window.
func (s *Service) ListStatement(ctx context.Context, arg domain.ListStatementParams) ([]domain.Entry, error) {
	return s.repo.ListStatement(ctx, arg)
}

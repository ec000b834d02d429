// Package transferservice manages business logic layer of transfers.
package transferservice

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/corebank/ledger/internal/accountdelivery"
	"github.com/corebank/ledger/internal/domain"
	"github.com/corebank/ledger/internal/notification"
)

// Repo provides data access layer interface needed by transfer service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transferservice
type Repo interface {
	Transfer(ctx context.Context, arg domain.TransferTxParams) (domain.TransferTxResult, error)
}

// IDGenerator provides collision-free transaction identifiers.
type IDGenerator interface {
	TransactionID(ctx context.Context) (string, error)
}

// Dispatcher enqueues holder notifications after commit.
type Dispatcher interface {
	Enqueue(event notification.Event)
}

// Service facilitates transfer service layer logic.
type Service struct {
	repo           Repo
	accountService accountdelivery.Service
	idGenerator    IDGenerator
	dispatcher     Dispatcher
	maxTxAttempts  int
}

// New returns transfer service struct to manage transfer bussines logic.
func New(tr Repo, as accountdelivery.Service, g IDGenerator, d Dispatcher, maxTxAttempts int) *Service {
	if maxTxAttempts <= 0 {
		maxTxAttempts = 3
	}

	return &Service{
		repo:           tr,
		accountService: as,
		idGenerator:    g,
		dispatcher:     d,
		maxTxAttempts:  maxTxAttempts,
	}
}

// validRequest runs the pre-transfer checks in order, first failure
// wins, before any side effect. A holder name mismatch and a routing
// code mismatch return the same error on purpose so a caller cannot
// enumerate accounts.
func (s *Service) validRequest(ctx context.Context, sender domain.Account, arg domain.CreateTransferParams, amount string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if sender.AccountNumber == arg.DestinationAccountNumber {
		return domain.Account{}, domain.ErrSelfTransfer
	}

	if sender.Status != domain.StatusActive {
		return domain.Account{}, domain.ErrSenderInactive
	}

	senderBalance, err := decimal.NewFromString(sender.Balance)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, err
	}

	amountDecimal, err := decimal.NewFromString(amount)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, err
	}

	if senderBalance.LessThan(amountDecimal) {
		return domain.Account{}, domain.ErrInsufficientBalance
	}

	destination, err := s.accountService.GetByNumber(ctx, arg.DestinationAccountNumber)
	if err != nil {
		l.Info().Err(err).Send()

		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.Account{}, domain.ErrDestinationNotFound
		}

		return domain.Account{}, err
	}

	if destination.Status != domain.StatusActive {
		return domain.Account{}, domain.ErrDestinationInactive
	}

	if destination.HolderName != arg.HolderName {
		return domain.Account{}, domain.ErrHolderMismatch
	}

	if destination.RoutingCode != arg.RoutingCode {
		return domain.Account{}, domain.ErrHolderMismatch
	}

	return destination, nil
}

// Transfer validates the request and then moves the funds as one atomic
// unit. It returns the full transaction result; the debit-side
// transaction id is the transfer's reference. Transient conflicts are
// retried a bounded number of times before surfacing.
func (s *Service) Transfer(ctx context.Context, fromUsername string, arg domain.CreateTransferParams) (domain.TransferTxResult, error) {
	l := zerolog.Ctx(ctx)

	amount, err := domain.NormalizeAmount(arg.Amount)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.TransferTxResult{}, err
	}

	if !arg.Method.Valid() {
		return domain.TransferTxResult{}, domain.ErrInvalidMethod
	}

	sender, err := s.accountService.GetByHolder(ctx, fromUsername)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.TransferTxResult{}, err
	}

	destination, err := s.validRequest(ctx, sender, arg, amount)
	if err != nil {
		return domain.TransferTxResult{}, err
	}

	var result domain.TransferTxResult

	for attempt := 0; attempt < s.maxTxAttempts; attempt++ {
		var debitID, creditID string

		debitID, err = s.idGenerator.TransactionID(ctx)
		if err != nil {
			l.Error().Err(err).Send()
			return domain.TransferTxResult{}, err
		}

		creditID, err = s.idGenerator.TransactionID(ctx)
		if err != nil {
			l.Error().Err(err).Send()
			return domain.TransferTxResult{}, err
		}

		result, err = s.repo.Transfer(ctx, domain.TransferTxParams{
			SenderAccountNumber:      sender.AccountNumber,
			DestinationAccountNumber: destination.AccountNumber,
			DestinationRoutingCode:   destination.RoutingCode,
			Amount:                   amount,
			Method:                   arg.Method,
			Remarks:                  arg.Remarks,
			DebitTransactionID:       debitID,
			CreditTransactionID:      creditID,
		})

		if errors.Is(err, domain.ErrTxConflict) || errors.Is(err, domain.ErrTransactionIDTaken) {
			l.Info().Err(err).Int("attempt", attempt+1).Msg("retrying transfer")
			continue
		}

		break
	}

	if err != nil {
		if errors.Is(err, domain.ErrTransactionIDTaken) {
			return domain.TransferTxResult{}, domain.ErrTxConflict
		}

		return domain.TransferTxResult{}, err
	}

	s.dispatcher.Enqueue(notification.Event{
		RecipientEmail: sender.Email,
		Direction:      domain.Debit,
		AccountNumber:  sender.AccountNumber,
		Amount:         amount,
		OccurredAt:     result.DebitEntry.CreatedAt,
	})
	s.dispatcher.Enqueue(notification.Event{
		RecipientEmail: destination.Email,
		Direction:      domain.Credit,
		AccountNumber:  destination.AccountNumber,
		Amount:         amount,
		OccurredAt:     result.CreditEntry.CreatedAt,
	})

	return result, nil
}

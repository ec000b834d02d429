package entryservice

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/corebank/ledger/internal/accountdelivery"
	"github.com/corebank/ledger/internal/domain"
	"github.com/corebank/ledger/internal/notification"
	"github.com/corebank/ledger/pkg/errorspkg"
	"github.com/corebank/ledger/pkg/randompkg"
)

func randomAccount() domain.Account {
	return domain.Account{
		ID:            randompkg.String(32),
		AccountNumber: randompkg.AccountNumber(),
		Balance:       "1000.000",
		Type:          domain.TypeSaving,
		Status:        domain.StatusActive,
		HolderName:    randompkg.HolderName(),
		Email:         randompkg.Email(),
		RoutingCode:   randompkg.IFSC(),
		CreatedAt:     time.Now().Truncate(time.Second).UTC(),
	}
}

func TestPostEntry(t *testing.T) {
	account := randomAccount()
	staffID := randompkg.Username()
	transactionID := "txn" + randompkg.Digits(12)
	committedAt := time.Now().Truncate(time.Second).UTC()

	validArg := domain.CreateStaffEntryParams{
		AccountNumber: account.AccountNumber,
		Direction:     domain.Credit,
		Amount:        "250",
		Method:        domain.MethodCash,
		Source:        "cash deposit",
	}

	wantPostParams := domain.PostEntryParams{
		AccountNumber: account.AccountNumber,
		TransactionID: transactionID,
		Direction:     domain.Credit,
		Amount:        "250.000",
		Method:        domain.MethodCash,
		Details: domain.EntryDetails{
			Source:  "cash deposit",
			AddedBy: staffID,
		},
	}

	testTxResult := domain.EntryTxResult{
		Entry: domain.Entry{
			TransactionID: transactionID,
			Direction:     domain.Credit,
			Amount:        "250.000",
			AccountNumber: account.AccountNumber,
			Method:        domain.MethodCash,
			CreatedAt:     committedAt,
		},
		Account: account,
	}

	testCases := []struct {
		name          string
		arg           domain.CreateStaffEntryParams
		buildStubs    func(repo *MockRepo, as *accountdelivery.MockService, g *MockIDGenerator, d *MockDispatcher)
		checkResponse func(res domain.EntryTxResult, err error)
	}{
		{
			name: "Invalid amount",
			arg: domain.CreateStaffEntryParams{
				AccountNumber: account.AccountNumber,
				Direction:     domain.Credit,
				Amount:        "!@#$",
				Method:        domain.MethodCash,
			},
			buildStubs: func(repo *MockRepo, as *accountdelivery.MockService, g *MockIDGenerator, d *MockDispatcher) {
				repo.EXPECT().PostEntry(gomock.Any(), gomock.Any()).Times(0)
				as.EXPECT().GetByNumber(gomock.Any(), gomock.Any()).Times(0)
				d.EXPECT().Enqueue(gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.EntryTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrInvalidAmount.Error())
			},
		},
		{
			name: "Negative amount",
			arg: domain.CreateStaffEntryParams{
				AccountNumber: account.AccountNumber,
				Direction:     domain.Debit,
				Amount:        "-250",
				Method:        domain.MethodCash,
			},
			buildStubs: func(repo *MockRepo, as *accountdelivery.MockService, g *MockIDGenerator, d *MockDispatcher) {
				repo.EXPECT().PostEntry(gomock.Any(), gomock.Any()).Times(0)
				as.EXPECT().GetByNumber(gomock.Any(), gomock.Any()).Times(0)
				d.EXPECT().Enqueue(gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.EntryTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrNegativeAmount.Error())
			},
		},
		{
			name: "Invalid direction",
			arg: domain.CreateStaffEntryParams{
				AccountNumber: account.AccountNumber,
				Direction:     domain.Direction("Sideways"),
				Amount:        "250",
				Method:        domain.MethodCash,
			},
			buildStubs: func(repo *MockRepo, as *accountdelivery.MockService, g *MockIDGenerator, d *MockDispatcher) {
				repo.EXPECT().PostEntry(gomock.Any(), gomock.Any()).Times(0)
				as.EXPECT().GetByNumber(gomock.Any(), gomock.Any()).Times(0)
				d.EXPECT().Enqueue(gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.EntryTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrInvalidDirection.Error())
			},
		},
		{
			name: "Invalid method",
			arg: domain.CreateStaffEntryParams{
				AccountNumber: account.AccountNumber,
				Direction:     domain.Credit,
				Amount:        "250",
				Method:        domain.Method("WIRE"),
			},
			buildStubs: func(repo *MockRepo, as *accountdelivery.MockService, g *MockIDGenerator, d *MockDispatcher) {
				repo.EXPECT().PostEntry(gomock.Any(), gomock.Any()).Times(0)
				as.EXPECT().GetByNumber(gomock.Any(), gomock.Any()).Times(0)
				d.EXPECT().Enqueue(gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.EntryTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrInvalidMethod.Error())
			},
		},
		{
			name: "Account not found",
			arg:  validArg,
			buildStubs: func(repo *MockRepo, as *accountdelivery.MockService, g *MockIDGenerator, d *MockDispatcher) {
				repo.EXPECT().PostEntry(gomock.Any(), gomock.Any()).Times(0)
				as.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(account.AccountNumber)).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
				d.EXPECT().Enqueue(gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.EntryTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrAccountNotFound.Error())
			},
		},
		{
			name: "Holder name mismatch",
			arg: domain.CreateStaffEntryParams{
				AccountNumber: account.AccountNumber,
				Direction:     domain.Credit,
				Amount:        "250",
				Method:        domain.MethodCash,
				HolderName:    "Somebody Else",
			},
			buildStubs: func(repo *MockRepo, as *accountdelivery.MockService, g *MockIDGenerator, d *MockDispatcher) {
				repo.EXPECT().PostEntry(gomock.Any(), gomock.Any()).Times(0)
				as.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(account.AccountNumber)).
					Times(1).
					Return(account, nil)
				d.EXPECT().Enqueue(gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.EntryTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrHolderMismatch.Error())
			},
		},
		{
			name: "Inactive account still accepted",
			arg:  validArg,
			buildStubs: func(repo *MockRepo, as *accountdelivery.MockService, g *MockIDGenerator, d *MockDispatcher) {
				blocked := account
				blocked.Status = domain.StatusBlocked

				as.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(account.AccountNumber)).
					Times(1).
					Return(blocked, nil)
				g.EXPECT().TransactionID(gomock.Any()).
					Times(1).
					Return(transactionID, nil)
				repo.EXPECT().PostEntry(gomock.Any(), gomock.Eq(wantPostParams)).
					Times(1).
					Return(testTxResult, nil)
				d.EXPECT().Enqueue(gomock.Any()).Times(1)
			},
			checkResponse: func(res domain.EntryTxResult, err error) {
				require.NoError(t, err)
				require.Equal(t, testTxResult, res)
			},
		},
		{
			name: "ID generator err",
			arg:  validArg,
			buildStubs: func(repo *MockRepo, as *accountdelivery.MockService, g *MockIDGenerator, d *MockDispatcher) {
				as.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(account.AccountNumber)).
					Times(1).
					Return(account, nil)
				g.EXPECT().TransactionID(gomock.Any()).
					Times(1).
					Return("", domain.ErrIDSpaceExhausted)
				repo.EXPECT().PostEntry(gomock.Any(), gomock.Any()).Times(0)
				d.EXPECT().Enqueue(gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.EntryTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrIDSpaceExhausted.Error())
			},
		},
		{
			name: "Retries on duplicate transaction id",
			arg:  validArg,
			buildStubs: func(repo *MockRepo, as *accountdelivery.MockService, g *MockIDGenerator, d *MockDispatcher) {
				as.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(account.AccountNumber)).
					Times(1).
					Return(account, nil)
				g.EXPECT().TransactionID(gomock.Any()).
					Times(1).
					Return("txn000000000001", nil)
				g.EXPECT().TransactionID(gomock.Any()).
					Times(1).
					Return(transactionID, nil)
				repo.EXPECT().PostEntry(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.EntryTxResult{}, domain.ErrTransactionIDTaken)
				repo.EXPECT().PostEntry(gomock.Any(), gomock.Eq(wantPostParams)).
					Times(1).
					Return(testTxResult, nil)
				d.EXPECT().Enqueue(gomock.Any()).Times(1)
			},
			checkResponse: func(res domain.EntryTxResult, err error) {
				require.NoError(t, err)
				require.Equal(t, testTxResult, res)
			},
		},
		{
			name: "Conflict exhausts attempts",
			arg:  validArg,
			buildStubs: func(repo *MockRepo, as *accountdelivery.MockService, g *MockIDGenerator, d *MockDispatcher) {
				as.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(account.AccountNumber)).
					Times(1).
					Return(account, nil)
				g.EXPECT().TransactionID(gomock.Any()).
					Times(3).
					Return(transactionID, nil)
				repo.EXPECT().PostEntry(gomock.Any(), gomock.Any()).
					Times(3).
					Return(domain.EntryTxResult{}, domain.ErrTxConflict)
				d.EXPECT().Enqueue(gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.EntryTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrTxConflict.Error())
			},
		},
		{
			name: "Insufficient balance on debit",
			arg: domain.CreateStaffEntryParams{
				AccountNumber: account.AccountNumber,
				Direction:     domain.Debit,
				Amount:        "250",
				Method:        domain.MethodWithdraw,
				Source:        "cash withdrawal",
			},
			buildStubs: func(repo *MockRepo, as *accountdelivery.MockService, g *MockIDGenerator, d *MockDispatcher) {
				as.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(account.AccountNumber)).
					Times(1).
					Return(account, nil)
				g.EXPECT().TransactionID(gomock.Any()).
					Times(1).
					Return(transactionID, nil)
				repo.EXPECT().PostEntry(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.EntryTxResult{}, domain.ErrInsufficientBalance)
				d.EXPECT().Enqueue(gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.EntryTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrInsufficientBalance.Error())
			},
		},
		{
			name: "OK",
			arg:  validArg,
			buildStubs: func(repo *MockRepo, as *accountdelivery.MockService, g *MockIDGenerator, d *MockDispatcher) {
				as.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(account.AccountNumber)).
					Times(1).
					Return(account, nil)
				g.EXPECT().TransactionID(gomock.Any()).
					Times(1).
					Return(transactionID, nil)
				repo.EXPECT().PostEntry(gomock.Any(), gomock.Eq(wantPostParams)).
					Times(1).
					Return(testTxResult, nil)
				d.EXPECT().Enqueue(gomock.Eq(notification.Event{
					RecipientEmail: account.Email,
					Direction:      domain.Credit,
					AccountNumber:  account.AccountNumber,
					Amount:         "250.000",
					OccurredAt:     committedAt,
				})).Times(1)
			},
			checkResponse: func(res domain.EntryTxResult, err error) {
				require.NoError(t, err)
				require.Equal(t, testTxResult, res)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			entryRepo := NewMockRepo(ctrl)
			accountService := accountdelivery.NewMockService(ctrl)
			idGenerator := NewMockIDGenerator(ctrl)
			dispatcher := NewMockDispatcher(ctrl)
			entryService := New(entryRepo, accountService, idGenerator, dispatcher, 3)

			tc.buildStubs(entryRepo, accountService, idGenerator, dispatcher)

			tc.checkResponse(entryService.PostEntry(context.Background(), staffID, tc.arg))
		})
	}
}

func TestListByAccount(t *testing.T) {
	account := randomAccount()

	entries := []domain.Entry{
		{TransactionID: "txn" + randompkg.Digits(12), Direction: domain.Credit, Amount: "100.000"},
		{TransactionID: "txn" + randompkg.Digits(12), Direction: domain.Debit, Amount: "40.000"},
	}

	testCases := []struct {
		name          string
		accountNumber string
		buildStubs    func(repo *MockRepo, as *accountdelivery.MockService)
		checkResponse func(res []domain.Entry, err error)
	}{
		{
			name:          "Account not found",
			accountNumber: account.AccountNumber,
			buildStubs: func(repo *MockRepo, as *accountdelivery.MockService) {
				as.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(account.AccountNumber)).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
				repo.EXPECT().ListByAccount(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res []domain.Entry, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrAccountNotFound.Error())
			},
		},
		{
			name:          "Repo err",
			accountNumber: account.AccountNumber,
			buildStubs: func(repo *MockRepo, as *accountdelivery.MockService) {
				as.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(account.AccountNumber)).
					Times(1).
					Return(account, nil)
				repo.EXPECT().ListByAccount(gomock.Any(), gomock.Eq(account.AccountNumber), gomock.Any(), gomock.Any()).
					Times(1).
					Return(nil, errorspkg.ErrInternal)
			},
			checkResponse: func(res []domain.Entry, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, errorspkg.ErrInternal.Error())
			},
		},
		{
			name:          "OK",
			accountNumber: account.AccountNumber,
			buildStubs: func(repo *MockRepo, as *accountdelivery.MockService) {
				as.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(account.AccountNumber)).
					Times(1).
					Return(account, nil)
				repo.EXPECT().ListByAccount(gomock.Any(), gomock.Eq(account.AccountNumber), gomock.Eq(int32(10)), gomock.Eq(int32(0))).
					Times(1).
					Return(entries, nil)
			},
			checkResponse: func(res []domain.Entry, err error) {
				require.NoError(t, err)
				require.Equal(t, entries, res)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			entryRepo := NewMockRepo(ctrl)
			accountService := accountdelivery.NewMockService(ctrl)
			idGenerator := NewMockIDGenerator(ctrl)
			dispatcher := NewMockDispatcher(ctrl)
			entryService := New(entryRepo, accountService, idGenerator, dispatcher, 3)

			tc.buildStubs(entryRepo, accountService)

			tc.checkResponse(entryService.ListByAccount(context.Background(), tc.accountNumber, 10, 0))
		})
	}
}

func TestListStatement(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entryRepo := NewMockRepo(ctrl)
	accountService := accountdelivery.NewMockService(ctrl)
	idGenerator := NewMockIDGenerator(ctrl)
	dispatcher := NewMockDispatcher(ctrl)
	entryService := New(entryRepo, accountService, idGenerator, dispatcher, 3)

	arg := domain.ListStatementParams{
		AccountNumbers: []string{randompkg.AccountNumber()},
		Start:          time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2023, 3, 31, 23, 59, 59, 0, time.UTC),
	}

	entries := []domain.Entry{
		{TransactionID: "txn" + randompkg.Digits(12), Direction: domain.Credit, Amount: "100.000"},
	}

	entryRepo.EXPECT().ListStatement(gomock.Any(), gomock.Eq(arg)).
		Times(1).
		Return(entries, nil)

	res, err := entryService.ListStatement(context.Background(), arg)
	require.NoError(t, err)
	require.Equal(t, entries, res)
}

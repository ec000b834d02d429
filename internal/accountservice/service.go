// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"

	"github.com/corebank/ledger/internal/domain"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	GetByNumber(ctx context.Context, accountNumber string) (domain.Account, error)
	GetByHolder(ctx context.Context, username string) (domain.Account, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo Repo
}

// New returns account service struct to manage account business logic.
func New(ar Repo) *Service {
	return &Service{repo: ar}
}

// GetByNumber returns a committed snapshot of the account with the
// given account number.
func (s *Service) GetByNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	return s.repo.GetByNumber(ctx, accountNumber)
}

// GetByHolder returns a committed snapshot of the account owned by the
// customer with the given username.
func (s *Service) GetByHolder(ctx context.Context, username string) (domain.Account, error) {
	return s.repo.GetByHolder(ctx, username)
}

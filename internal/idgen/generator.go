// Package idgen produces collision-free account numbers and transaction
// identifiers.
package idgen

import (
	"context"
	"crypto/rand"
	"io"
	"math/big"
	"strings"

	"github.com/rs/zerolog"

	"github.com/corebank/ledger/internal/domain"
)

const (
	accountNumberDigits = 12
	transactionIDDigits = 12
	defaultMaxAttempts  = 5
)

// Store checks candidate identifiers against persisted ones.
//
//go:generate mockgen -source generator.go -destination generator_mock.go -package idgen
type Store interface {
	AccountNumberExists(ctx context.Context, number string) (bool, error)
	TransactionIDExists(ctx context.Context, id string) (bool, error)
}

// Generator draws fixed-length random numeric identifiers and retries a
// bounded number of times on collision. The uniqueness race between
// check and insert is closed at commit time by unique indexes; callers
// regenerate on domain.ErrTransactionIDTaken or
// domain.ErrAccountNumberTaken.
type Generator struct {
	store       Store
	rand        io.Reader
	maxAttempts int
}

// New returns a Generator backed by crypto/rand.
func New(store Store) *Generator {
	return NewWithRand(store, rand.Reader, defaultMaxAttempts)
}

// NewWithRand returns a Generator with an injected random source and
// collision retry budget.
func NewWithRand(store Store, r io.Reader, maxAttempts int) *Generator {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	return &Generator{store: store, rand: r, maxAttempts: maxAttempts}
}

// AccountNumber generates an unused 12-digit account number.
func (g *Generator) AccountNumber(ctx context.Context) (string, error) {
	l := zerolog.Ctx(ctx)

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		num, err := g.digits(accountNumberDigits)
		if err != nil {
			return "", err
		}

		taken, err := g.store.AccountNumberExists(ctx, num)
		if err != nil {
			return "", err
		}

		if !taken {
			return num, nil
		}

		l.Info().Str("account_number", domain.MaskAccountNumber(num)).Msg("account number collision, regenerating")
	}

	return "", domain.ErrIDSpaceExhausted
}

// TransactionID generates an unused transaction identifier of the form
// "txn" followed by 12 random digits.
func (g *Generator) TransactionID(ctx context.Context) (string, error) {
	l := zerolog.Ctx(ctx)

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		suffix, err := g.digits(transactionIDDigits)
		if err != nil {
			return "", err
		}

		id := domain.TransactionIDPrefix + suffix

		taken, err := g.store.TransactionIDExists(ctx, id)
		if err != nil {
			return "", err
		}

		if !taken {
			return id, nil
		}

		l.Info().Str("transaction_id", id).Msg("transaction id collision, regenerating")
	}

	return "", domain.ErrIDSpaceExhausted
}

func (g *Generator) digits(n int) (string, error) {
	var sb strings.Builder

	ten := big.NewInt(10)

	for i := 0; i < n; i++ {
		d, err := rand.Int(g.rand, ten)
		if err != nil {
			return "", err
		}

		_ = sb.WriteByte(byte('0' + d.Int64()))
	}

	return sb.String(), nil
}

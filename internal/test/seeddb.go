// Package test provides shared test helpers.
package test

import (
	"context"
	"testing"

	"github.com/corebank/ledger/internal/accountrepo"
	"github.com/corebank/ledger/internal/domain"
	"github.com/corebank/ledger/pkg/dbpkg"
	"github.com/corebank/ledger/pkg/randompkg"
)

// Branch is a seeded bank branch row.
type Branch struct {
	ID   string
	Name string
	IFSC string
}

// Customer is a seeded customer row.
type Customer struct {
	ID       string
	Username string
	FullName string
	Email    string
	BranchID string
}

// SeedBranch creates a random branch.
func SeedBranch(t *testing.T, db dbpkg.SQLInterface) Branch {
	t.Helper()

	b := Branch{
		Name: randompkg.String(10),
		IFSC: randompkg.IFSC(),
	}

	const query = `
	INSERT INTO branches (name, ifsc_code)
	VALUES ($1, $2)
	RETURNING id
	`

	if err := db.QueryRowContext(context.Background(), query, b.Name, b.IFSC).Scan(&b.ID); err != nil {
		t.Fatalf("seeding branch %+v returned error: %v", b, err)
	}

	return b
}

// SeedCustomer creates a random customer in the given branch.
func SeedCustomer(t *testing.T, db dbpkg.SQLInterface, branchID string) Customer {
	t.Helper()

	c := Customer{
		Username: randompkg.Username(),
		FullName: randompkg.HolderName(),
		Email:    randompkg.Email(),
		BranchID: branchID,
	}

	const query = `
	INSERT INTO customers (username, full_name, email, branch_id)
	VALUES ($1, $2, $3, $4)
	RETURNING id
	`

	err := db.QueryRowContext(context.Background(), query,
		c.Username, c.FullName, c.Email, c.BranchID).Scan(&c.ID)
	if err != nil {
		t.Fatalf("seeding customer %+v returned error: %v", c, err)
	}

	return c
}

// SeedAccount opens an active account for the customer with the given
// starting balance and returns the full account snapshot including
// holder fields.
func SeedAccount(t *testing.T, db dbpkg.SQLInterface, customerID, balance string) domain.Account {
	t.Helper()

	accountRepo := accountrepo.NewRepoPGS(db)

	arg := domain.CreateAccountParams{
		AccountNumber: randompkg.AccountNumber(),
		CustomerID:    customerID,
		Type:          domain.TypeSaving,
		Status:        domain.StatusActive,
		Balance:       balance,
	}

	if _, err := accountRepo.Create(context.Background(), arg); err != nil {
		t.Fatalf("accountRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	account, err := accountRepo.GetByNumber(context.Background(), arg.AccountNumber)
	if err != nil {
		t.Fatalf("accountRepo.GetByNumber(context.Background(), %v) returned error: %v",
			arg.AccountNumber, err)
	}

	return account
}

// SeedAccountWithHolder seeds a branch, a customer and an account with
// the given starting balance in one call.
func SeedAccountWithHolder(t *testing.T, db dbpkg.SQLInterface, balance string) domain.Account {
	t.Helper()

	branch := SeedBranch(t, db)
	customer := SeedCustomer(t, db, branch.ID)

	return SeedAccount(t, db, customer.ID, balance)
}

package bank

import (
	"context"

	"github.com/simonvc/tellerledger/internal/ledger"
)

// Store is the persistence the service needs. Both the flat-file store and
// the SQLite store implement it.
type Store interface {
	SaveCustomer(ctx context.Context, c *ledger.Customer) error
	UpdateCustomer(ctx context.Context, c *ledger.Customer) error
	FindAllCustomers(ctx context.Context) ([]*ledger.Customer, error)
	FindCustomerByID(ctx context.Context, id string) (*ledger.Customer, error)

	SaveAccount(ctx context.Context, a *ledger.Account) error
	UpdateAccount(ctx context.Context, a *ledger.Account) error
	FindAllAccounts(ctx context.Context) ([]*ledger.Account, error)
	FindAccountByNumber(ctx context.Context, number string) (*ledger.Account, error)
	FindAccountsByCustomer(ctx context.Context, customerID string) ([]*ledger.Account, error)
	// AccountNumbers lists every number already taken, including accounts
	// that cannot be loaded.
	AccountNumbers(ctx context.Context) ([]string, error)

	FindTransactionsByAccount(ctx context.Context, number string) ([]ledger.Transaction, error)
	FindAllTransactions(ctx context.Context) ([]ledger.Transaction, error)

	// Commit persists the transactions and resulting balances of one
	// operation.
	Commit(ctx context.Context, postings ...ledger.Posting) error

	SaveUser(ctx context.Context, u *ledger.User) error
	UpdateUser(ctx context.Context, u *ledger.User) error
	FindAllUsers(ctx context.Context) ([]*ledger.User, error)
	FindUserByUsername(ctx context.Context, username string) (*ledger.User, error)
	FindUserByCustomerID(ctx context.Context, customerID string) (*ledger.User, error)

	Close() error
}

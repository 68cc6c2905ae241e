// Package store keeps the ledger in four line-delimited text files:
// customers, accounts, transactions and users. Keys are not enforced by the
// files themselves; readers resolve duplicates and skip rows they cannot
// decode or link.
//
// Calls on one Store are serialised. Several processes writing the same
// directory are not supported.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/simonvc/tellerledger/internal/ledger"
)

const (
	CustomersFile    = "customers.txt"
	AccountsFile     = "accounts.txt"
	TransactionsFile = "transactions.txt"
	UsersFile        = "users.txt"
)

type Store struct {
	mu     sync.Mutex
	dir    string
	logger *slog.Logger

	customers    *table[*ledger.Customer]
	accounts     *table[ledger.AccountState]
	transactions *table[ledger.Transaction]
	users        *table[*ledger.User]
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open prepares a store rooted at dir, creating the directory if needed.
// Table files are created on first write.
func Open(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &Store{dir: dir, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	s.customers = &table[*ledger.Customer]{
		name: "customers", path: filepath.Join(dir, CustomersFile), logger: s.logger,
		decode: decodeCustomer, encode: encodeCustomer, key: customerKey,
	}
	s.accounts = &table[ledger.AccountState]{
		name: "accounts", path: filepath.Join(dir, AccountsFile), logger: s.logger,
		decode: decodeAccount, encode: encodeAccount, key: accountKey,
	}
	s.transactions = &table[ledger.Transaction]{
		name: "transactions", path: filepath.Join(dir, TransactionsFile), logger: s.logger,
		decode: decodeTransaction, encode: encodeTransaction,
	}
	s.users = &table[*ledger.User]{
		name: "users", path: filepath.Join(dir, UsersFile), logger: s.logger,
		decode: decodeUser, encode: encodeUser, key: userKey,
	}
	return s, nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) Close() error { return nil }

// graph is the fully linked state of the three ledger tables.
type graph struct {
	customers []*ledger.Customer
	byID      map[string]*ledger.Customer
	accounts  []*ledger.Account
	byNumber  map[string]*ledger.Account
}

// loadGraph reads each ledger table once and links customers, accounts and
// transactions. Accounts whose customer is missing, or whose customer already
// holds an account of the same type, are skipped.
func (s *Store) loadGraph() (*graph, error) {
	customers, err := s.customers.values()
	if err != nil {
		return nil, err
	}
	accounts, err := s.accounts.load()
	if err != nil {
		return nil, err
	}
	txns, err := s.transactions.values()
	if err != nil {
		return nil, err
	}

	g := &graph{
		customers: customers,
		byID:      make(map[string]*ledger.Customer, len(customers)),
		byNumber:  make(map[string]*ledger.Account, len(accounts)),
	}
	for _, c := range customers {
		g.byID[c.ID] = c
	}
	logs := make(map[string][]ledger.Transaction)
	for _, t := range txns {
		logs[t.AccountNumber] = append(logs[t.AccountNumber], t)
	}

	for _, r := range accounts {
		owner, ok := g.byID[r.value.CustomerID]
		if !ok {
			s.accounts.warn(r.line, "unknown customer "+r.value.CustomerID)
			continue
		}
		a, err := ledger.RestoreAccount(r.value, logs[r.value.Number])
		if err != nil {
			s.accounts.warn(r.line, err.Error())
			continue
		}
		if err := owner.AddAccount(a); err != nil {
			s.accounts.warn(r.line, err.Error())
			continue
		}
		g.accounts = append(g.accounts, a)
		g.byNumber[a.Number] = a
	}
	return g, nil
}

func (s *Store) SaveCustomer(ctx context.Context, c *ledger.Customer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateCustomer(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customers.append(c)
}

func (s *Store) UpdateCustomer(ctx context.Context, c *ledger.Customer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateCustomer(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customers.replace(c)
}

// FindAllCustomers returns every customer with its accounts and their
// transaction logs attached.
func (s *Store) FindAllCustomers(ctx context.Context) ([]*ledger.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.loadGraph()
	if err != nil {
		return nil, err
	}
	return g.customers, nil
}

func (s *Store) FindCustomerByID(ctx context.Context, id string) (*ledger.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.loadGraph()
	if err != nil {
		return nil, err
	}
	c, ok := g.byID[id]
	if !ok {
		return nil, ledger.ErrCustomerNotFound
	}
	return c, nil
}

func (s *Store) SaveAccount(ctx context.Context, a *ledger.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts.append(a.State())
}

// UpdateAccount replaces every stored row for the account number with the
// account's current state.
func (s *Store) UpdateAccount(ctx context.Context, a *ledger.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts.replace(a.State())
}

func (s *Store) FindAllAccounts(ctx context.Context) ([]*ledger.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.loadGraph()
	if err != nil {
		return nil, err
	}
	return g.accounts, nil
}

func (s *Store) FindAccountByNumber(ctx context.Context, number string) (*ledger.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.loadGraph()
	if err != nil {
		return nil, err
	}
	a, ok := g.byNumber[number]
	if !ok {
		return nil, ledger.ErrAccountNotFound
	}
	return a, nil
}

// AccountNumbers returns every account number the tables mention, in file
// order: accounts that cannot be loaded and numbers known only from the
// transaction log included.
func (s *Store) AccountNumbers(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	var out []string
	add := func(n string) {
		if n != "" && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	accounts, err := s.accounts.scan()
	if err != nil {
		return nil, err
	}
	for _, r := range accounts {
		if r.ok() {
			add(r.value.Number)
		} else {
			add(splitRow(r.raw)[0])
		}
	}
	txns, err := s.transactions.scan()
	if err != nil {
		return nil, err
	}
	for _, r := range txns {
		if r.ok() {
			add(r.value.AccountNumber)
		} else if f := splitRow(r.raw); len(f) > 1 {
			add(f[1])
		}
	}
	return out, nil
}

func (s *Store) FindAccountsByCustomer(ctx context.Context, customerID string) ([]*ledger.Account, error) {
	accounts, err := s.FindAllAccounts(ctx)
	if err != nil {
		return nil, err
	}
	var out []*ledger.Account
	for _, a := range accounts {
		if a.CustomerID == customerID {
			out = append(out, a)
		}
	}
	return out, nil
}

// FindTransactionsByAccount returns the account's log in file order.
func (s *Store) FindTransactionsByAccount(ctx context.Context, number string) ([]ledger.Transaction, error) {
	all, err := s.FindAllTransactions(ctx)
	if err != nil {
		return nil, err
	}
	var out []ledger.Transaction
	for _, t := range all {
		if t.AccountNumber == number {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) FindAllTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transactions.values()
}

// Commit persists the postings of one operation: every new transaction row
// is appended, then the accounts table is rewritten once with the new
// balances.
func (s *Store) Commit(ctx context.Context, postings ...ledger.Posting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var (
		txns   []ledger.Transaction
		states []ledger.AccountState
	)
	for _, p := range postings {
		if err := p.Account.Validate(); err != nil {
			return err
		}
		txns = append(txns, p.Transactions...)
		states = append(states, p.Account.State())
	}
	if len(states) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transactions.append(txns...); err != nil {
		return err
	}
	if err := s.accounts.replace(states...); err != nil {
		return fmt.Errorf("transactions written but balances not updated: %w", err)
	}
	return nil
}

// SaveUser inserts a user or replaces the stored one with the same username.
func (s *Store) SaveUser(ctx context.Context, u *ledger.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := u.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.users.values()
	if err != nil {
		return err
	}
	for _, existing := range users {
		if existing.Username == u.Username {
			return s.users.replace(u)
		}
	}
	return s.users.append(u)
}

func (s *Store) UpdateUser(ctx context.Context, u *ledger.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := u.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users.replace(u)
}

func (s *Store) FindAllUsers(ctx context.Context) ([]*ledger.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users.values()
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*ledger.User, error) {
	users, err := s.FindAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ledger.ErrUserNotFound
}

func (s *Store) FindUserByCustomerID(ctx context.Context, customerID string) (*ledger.User, error) {
	users, err := s.FindAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.CustomerID != "" && u.CustomerID == customerID {
			return u, nil
		}
	}
	return nil, ledger.ErrUserNotFound
}

func validateCustomer(c *ledger.Customer) error {
	if c.ID == "" {
		return fmt.Errorf("%w: customer id is required", ledger.ErrInvalidCustomer)
	}
	return c.Validate()
}

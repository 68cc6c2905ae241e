package bank

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/simonvc/tellerledger/internal/ledger"
)

// OpenAccountRequest describes a teller opening an account for a customer.
// Number is assigned when empty; employer fields are kept for Checking only.
type OpenAccountRequest struct {
	CustomerID      string
	Type            ledger.AccountType
	InitialBalance  decimal.Decimal
	Branch          string
	EmployerName    string
	EmployerAddress string
	Number          string
}

// OpenAccount creates an account for an existing customer. It fails when the
// customer already holds an account of the requested type or the opening
// balance is below the type's minimum.
func (s *Service) OpenAccount(ctx context.Context, req OpenAccountRequest) (*ledger.Account, error) {
	c, err := s.store.FindCustomerByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	numbers, err := s.store.AccountNumbers(ctx)
	if err != nil {
		return nil, err
	}
	if req.Number != "" && slices.Contains(numbers, req.Number) {
		return nil, fmt.Errorf("%w: %s", ledger.ErrDuplicateAccount, req.Number)
	}
	if req.Number == "" {
		req.Number = nextID(AccountNumberPrefix, numbers)
	}

	a, err := ledger.NewAccount(ledger.OpenParams{
		Number:          req.Number,
		CustomerID:      c.ID,
		Type:            req.Type,
		InitialBalance:  req.InitialBalance,
		Branch:          req.Branch,
		EmployerName:    req.EmployerName,
		EmployerAddress: req.EmployerAddress,
	}, s.accountOptions()...)
	if err != nil {
		s.logger.Debug("open account rejected", "customer", c.ID, "type", req.Type, "error", err)
		return nil, err
	}
	if err := c.AddAccount(a); err != nil {
		s.logger.Debug("open account rejected", "customer", c.ID, "type", req.Type, "error", err)
		return nil, err
	}
	if err := s.store.SaveAccount(ctx, a); err != nil {
		return nil, fmt.Errorf("save account %s: %w", a.Number, err)
	}
	s.logger.Info("account opened",
		"account", a.Number, "customer", c.ID, "type", a.Type, "balance", ledger.FormatAmount(a.Balance()))
	return a, nil
}

// Account loads an account with its full transaction log.
func (s *Service) Account(ctx context.Context, number string) (*ledger.Account, error) {
	a, err := s.store.FindAccountByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	a.Apply(s.accountOptions()...)
	return a, nil
}

// ListAccounts returns every account, or only those of customerID when it is
// not empty.
func (s *Service) ListAccounts(ctx context.Context, customerID string) ([]*ledger.Account, error) {
	if customerID != "" {
		return s.store.FindAccountsByCustomer(ctx, customerID)
	}
	return s.store.FindAllAccounts(ctx)
}

func (s *Service) Deposit(ctx context.Context, number string, amount decimal.Decimal) (*ledger.Account, error) {
	a, err := s.Account(ctx, number)
	if err != nil {
		return nil, err
	}
	txn, err := a.Deposit(amount)
	if err != nil {
		s.logger.Debug("deposit rejected", "account", number, "amount", amount.String(), "error", err)
		return nil, err
	}
	if err := s.commit(ctx, ledger.Posting{Account: a, Transactions: []ledger.Transaction{txn}}); err != nil {
		return nil, err
	}
	s.logTransaction("deposit", txn)
	return a, nil
}

func (s *Service) Withdraw(ctx context.Context, number string, amount decimal.Decimal) (*ledger.Account, error) {
	a, err := s.Account(ctx, number)
	if err != nil {
		return nil, err
	}
	txn, err := a.Withdraw(amount)
	if err != nil {
		s.logger.Debug("withdrawal rejected", "account", number, "amount", amount.String(), "error", err)
		return nil, err
	}
	if err := s.commit(ctx, ledger.Posting{Account: a, Transactions: []ledger.Transaction{txn}}); err != nil {
		return nil, err
	}
	s.logTransaction("withdrawal", txn)
	return a, nil
}

// Transfer withdraws from one account and deposits into another. Both sides
// are persisted by a single Commit; nothing is written when either side is
// rejected.
func (s *Service) Transfer(ctx context.Context, from, to string, amount decimal.Decimal) (*ledger.Account, *ledger.Account, error) {
	if from == to {
		return nil, nil, fmt.Errorf("%w: %s", ledger.ErrSameAccount, from)
	}
	src, err := s.Account(ctx, from)
	if err != nil {
		return nil, nil, err
	}
	dst, err := s.Account(ctx, to)
	if err != nil {
		return nil, nil, err
	}
	if s.requireSameOwner && src.CustomerID != dst.CustomerID {
		return nil, nil, fmt.Errorf("%w: %s belongs to %s, %s to %s",
			ledger.ErrAccountOwnerMismatch, from, src.CustomerID, to, dst.CustomerID)
	}

	out, err := src.Withdraw(amount)
	if err != nil {
		s.logger.Debug("transfer rejected", "from", from, "to", to, "amount", amount.String(), "error", err)
		return nil, nil, err
	}
	in, err := dst.Deposit(amount)
	if err != nil {
		s.logger.Debug("transfer rejected", "from", from, "to", to, "amount", amount.String(), "error", err)
		return nil, nil, err
	}
	err = s.commit(ctx,
		ledger.Posting{Account: src, Transactions: []ledger.Transaction{out}},
		ledger.Posting{Account: dst, Transactions: []ledger.Transaction{in}},
	)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("transfer", "from", from, "to", to, "amount", ledger.FormatAmount(out.Amount),
		"from_balance", ledger.FormatAmount(src.Balance()), "to_balance", ledger.FormatAmount(dst.Balance()))
	return src, dst, nil
}

// ApplyInterestToAll credits monthly interest to every account that earns a
// positive amount and returns how many were credited.
func (s *Service) ApplyInterestToAll(ctx context.Context) (int, error) {
	accounts, err := s.store.FindAllAccounts(ctx)
	if err != nil {
		return 0, err
	}
	var postings []ledger.Posting
	for _, a := range accounts {
		a.Apply(s.accountOptions()...)
		txn, ok := a.ApplyInterest()
		if !ok {
			continue
		}
		postings = append(postings, ledger.Posting{Account: a, Transactions: []ledger.Transaction{txn}})
	}
	if len(postings) == 0 {
		s.logger.Info("interest applied", "credited", 0)
		return 0, nil
	}
	if err := s.commit(ctx, postings...); err != nil {
		return 0, err
	}
	s.logger.Info("interest applied", "credited", len(postings), "accounts", len(accounts))
	return len(postings), nil
}

func (s *Service) commit(ctx context.Context, postings ...ledger.Posting) error {
	if err := s.store.Commit(ctx, postings...); err != nil {
		s.logger.Error("commit failed", "postings", len(postings), "error", err)
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Service) logTransaction(op string, t ledger.Transaction) {
	s.logger.Info(op,
		"account", t.AccountNumber,
		"txn", t.ID,
		"amount", ledger.FormatAmount(t.Amount),
		"balance", ledger.FormatAmount(t.BalanceAfter))
}

// Transactions returns the log of one account, or of every account when
// number is empty, in the order they were recorded.
func (s *Service) Transactions(ctx context.Context, number string) ([]ledger.Transaction, error) {
	if number == "" {
		return s.store.FindAllTransactions(ctx)
	}
	if _, err := s.store.FindAccountByNumber(ctx, number); err != nil {
		return nil, err
	}
	return s.store.FindTransactionsByAccount(ctx, number)
}

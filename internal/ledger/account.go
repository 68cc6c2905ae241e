package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AccountType is the stored tag identifying an account variant.
type AccountType string

const (
	AccountSavings    AccountType = "SavingsAccount"
	AccountInvestment AccountType = "InvestmentAccount"
	AccountChecking   AccountType = "CheckingAccount"
)

var AllAccountTypes = []AccountType{
	AccountSavings,
	AccountInvestment,
	AccountChecking,
}

// accountPolicy holds the rules each variant enforces.
type accountPolicy struct {
	label            string
	minimumBalance   decimal.Decimal
	monthlyRate      decimal.Decimal
	allowWithdrawals bool
}

var policies = map[AccountType]accountPolicy{
	AccountSavings: {
		label:          "Savings",
		minimumBalance: decimal.NewFromInt(50),
		monthlyRate:    decimal.RequireFromString("0.0005"),
		// Savings hold funds for future use; nothing may be withdrawn.
		allowWithdrawals: false,
	},
	AccountInvestment: {
		label:            "Investment",
		minimumBalance:   decimal.NewFromInt(500),
		monthlyRate:      decimal.RequireFromString("0.05"),
		allowWithdrawals: true,
	},
	AccountChecking: {
		label:            "Checking",
		minimumBalance:   decimal.Zero,
		monthlyRate:      decimal.Zero,
		allowWithdrawals: true,
	},
}

// ParseAccountType accepts a stored tag (SavingsAccount) or a short name
// (savings), case-insensitively.
func ParseAccountType(s string) (AccountType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, t := range AllAccountTypes {
		if norm == strings.ToLower(string(t)) || norm == strings.ToLower(policies[t].label) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAccountType, s)
}

// Valid reports whether t is a known variant.
func (t AccountType) Valid() bool {
	_, ok := policies[t]
	return ok
}

// Label returns a human-readable name, e.g. "Savings".
func (t AccountType) Label() string {
	if p, ok := policies[t]; ok {
		return p.label
	}
	return string(t)
}

// MinimumBalance is the floor the balance may never drop below after a
// withdrawal, and the minimum opening balance.
func (t AccountType) MinimumBalance() decimal.Decimal {
	return policies[t].minimumBalance
}

// MonthlyRate is the interest rate credited by ApplyInterest.
func (t AccountType) MonthlyRate() decimal.Decimal {
	return policies[t].monthlyRate
}

// AllowsWithdrawals reports whether the variant accepts withdrawals at all.
func (t AccountType) AllowsWithdrawals() bool {
	return policies[t].allowWithdrawals
}

// OpenParams describes a new account.
type OpenParams struct {
	Number          string
	CustomerID      string
	Type            AccountType
	InitialBalance  decimal.Decimal
	Branch          string
	EmployerName    string
	EmployerAddress string
}

// AccountState is everything persisted for an account row.
type AccountState struct {
	Number          string
	CustomerID      string
	Type            AccountType
	Balance         decimal.Decimal
	Branch          string
	EmployerName    string
	EmployerAddress string
}

// Account owns a balance and an ordered transaction log. CustomerID is a
// back-reference by key; the account never holds its customer.
type Account struct {
	Number          string      `json:"number"`
	CustomerID      string      `json:"customer_id"`
	Type            AccountType `json:"type"`
	Branch          string      `json:"branch"`
	EmployerName    string      `json:"employer_name,omitempty"`
	EmployerAddress string      `json:"employer_address,omitempty"`

	balance      decimal.Decimal
	transactions []Transaction
	clock        Clock
	ids          IDGenerator
}

// Option configures the time and id sources of an account.
type Option func(*Account)

func WithClock(c Clock) Option {
	return func(a *Account) { a.clock = c }
}

func WithIDGenerator(g IDGenerator) Option {
	return func(a *Account) { a.ids = g }
}

// NewAccount validates and creates an account. An opening balance below the
// variant minimum fails with ErrBelowMinimumBalance.
func NewAccount(p OpenParams, opts ...Option) (*Account, error) {
	if !p.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAccountType, p.Type)
	}
	balance := RoundMoney(p.InitialBalance)
	if minimum := p.Type.MinimumBalance(); balance.LessThan(minimum) {
		return nil, fmt.Errorf("%w: %s account requires at least %s, got %s",
			ErrBelowMinimumBalance, p.Type.Label(), FormatAmount(minimum), FormatAmount(balance))
	}
	a := newAccount(AccountState{
		Number:          p.Number,
		CustomerID:      p.CustomerID,
		Type:            p.Type,
		Balance:         balance,
		Branch:          p.Branch,
		EmployerName:    p.EmployerName,
		EmployerAddress: p.EmployerAddress,
	}, nil, opts)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// RestoreAccount rebuilds an account from stored state and its transaction
// log. Minimum-balance rules are not re-checked.
func RestoreAccount(s AccountState, txns []Transaction, opts ...Option) (*Account, error) {
	if !s.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAccountType, s.Type)
	}
	a := newAccount(s, txns, opts)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func newAccount(s AccountState, txns []Transaction, opts []Option) *Account {
	a := &Account{
		Number:     s.Number,
		CustomerID: s.CustomerID,
		Type:       s.Type,
		Branch:     s.Branch,
		balance:    s.Balance,
		clock:      SystemClock(),
		ids:        UUIDGenerator(),
	}
	if s.Type == AccountChecking {
		a.EmployerName = s.EmployerName
		a.EmployerAddress = s.EmployerAddress
	}
	if len(txns) > 0 {
		a.transactions = make([]Transaction, len(txns))
		copy(a.transactions, txns)
	}
	a.Apply(opts...)
	return a
}

// Apply sets the time and id sources on an existing account, e.g. one
// loaded from a store.
func (a *Account) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(a)
	}
}

// Validate checks the identifying fields.
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Number) == "" {
		return fmt.Errorf("%w: account number is required", ErrInvalidAccount)
	}
	if strings.TrimSpace(a.CustomerID) == "" {
		return fmt.Errorf("%w: customer id is required", ErrInvalidAccount)
	}
	if !a.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownAccountType, a.Type)
	}
	return nil
}

func (a *Account) Balance() decimal.Decimal { return a.balance }

func (a *Account) MinimumBalance() decimal.Decimal { return a.Type.MinimumBalance() }

// State returns the persisted fields of the account.
func (a *Account) State() AccountState {
	return AccountState{
		Number:          a.Number,
		CustomerID:      a.CustomerID,
		Type:            a.Type,
		Balance:         a.balance,
		Branch:          a.Branch,
		EmployerName:    a.EmployerName,
		EmployerAddress: a.EmployerAddress,
	}
}

// Transactions returns a copy of the log in insertion order.
func (a *Account) Transactions() []Transaction {
	out := make([]Transaction, len(a.transactions))
	copy(out, a.transactions)
	return out
}

// Deposit credits a positive amount and records a DEPOSIT.
func (a *Account) Deposit(amount decimal.Decimal) (Transaction, error) {
	amount = RoundMoney(amount)
	if !amount.IsPositive() {
		return Transaction{}, fmt.Errorf("%w: deposit of %s", ErrInvalidAmount, FormatAmount(amount))
	}
	return a.post(TxnDeposit, amount, a.balance.Add(amount)), nil
}

// Withdraw debits a positive amount when the variant allows withdrawals and
// the balance stays at or above the minimum.
func (a *Account) Withdraw(amount decimal.Decimal) (Transaction, error) {
	if !a.Type.AllowsWithdrawals() {
		return Transaction{}, ErrWithdrawalsNotAllowed
	}
	amount = RoundMoney(amount)
	if !amount.IsPositive() {
		return Transaction{}, fmt.Errorf("%w: withdrawal of %s", ErrInvalidAmount, FormatAmount(amount))
	}
	after := a.balance.Sub(amount)
	if after.LessThan(a.MinimumBalance()) {
		return Transaction{}, fmt.Errorf("%w: balance %s, withdrawal %s, minimum %s",
			ErrInsufficientFunds, FormatAmount(a.balance), FormatAmount(amount), FormatAmount(a.MinimumBalance()))
	}
	return a.post(TxnWithdrawal, amount, after), nil
}

// CalculateInterest returns this month's interest rounded to cents.
func (a *Account) CalculateInterest() decimal.Decimal {
	return RoundMoney(a.balance.Mul(a.Type.MonthlyRate()))
}

// ApplyInterest credits CalculateInterest when it is strictly positive.
// It reports whether anything was credited.
func (a *Account) ApplyInterest() (Transaction, bool) {
	interest := a.CalculateInterest()
	if !interest.IsPositive() {
		return Transaction{}, false
	}
	return a.post(TxnInterest, interest, a.balance.Add(interest)), true
}

func (a *Account) post(typ TransactionType, amount, after decimal.Decimal) Transaction {
	if a.clock == nil {
		a.clock = SystemClock()
	}
	if a.ids == nil {
		a.ids = UUIDGenerator()
	}
	txn := newTransaction(a.ids, a.clock, a.Number, typ, amount, after)
	a.balance = after
	a.transactions = append(a.transactions, txn)
	return txn
}

package store

import (
	"fmt"
	"time"

	"github.com/simonvc/tellerledger/internal/ledger"
)

// field returns fields[i], or "" when trailing empty fields were cut off.
func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

func need(fields []string, n int) error {
	if len(fields) < n {
		return fmt.Errorf("expected at least %d fields, got %d", n, len(fields))
	}
	return nil
}

// customers: id|INDIVIDUAL|first|surname|nationalId|address|phone|email
//            id|COMPANY|name|number|address|phone|email

func encodeCustomer(c *ledger.Customer) []string {
	if c.Kind == ledger.CustomerCompany {
		return []string{c.ID, string(c.Kind), c.CompanyName, c.CompanyNumber, c.Address, c.Phone, c.Email}
	}
	return []string{c.ID, string(c.Kind), c.FirstName, c.Surname, c.NationalID, c.Address, c.Phone, c.Email}
}

func decodeCustomer(f []string) (*ledger.Customer, error) {
	if err := need(f, 7); err != nil {
		return nil, err
	}
	if f[0] == "" {
		return nil, fmt.Errorf("empty customer id")
	}
	kind, err := ledger.ParseCustomerKind(f[1])
	if err != nil {
		return nil, err
	}
	if kind == ledger.CustomerCompany {
		return ledger.NewCompany(f[0], f[2], f[3], ledger.Contact{Address: f[4], Phone: f[5], Email: f[6]})
	}
	return ledger.NewIndividual(f[0], f[2], f[3], f[4], ledger.Contact{Address: f[5], Phone: f[6], Email: field(f, 7)})
}

func customerKey(c *ledger.Customer) string { return c.ID }

// accounts: number|customerId|tag|balance|branch|employerName|employerAddress

func encodeAccount(s ledger.AccountState) []string {
	return []string{
		s.Number,
		s.CustomerID,
		string(s.Type),
		ledger.FormatAmount(s.Balance),
		s.Branch,
		s.EmployerName,
		s.EmployerAddress,
	}
}

func decodeAccount(f []string) (ledger.AccountState, error) {
	if err := need(f, 5); err != nil {
		return ledger.AccountState{}, err
	}
	if f[0] == "" || f[1] == "" {
		return ledger.AccountState{}, fmt.Errorf("empty account number or customer id")
	}
	typ := ledger.AccountType(f[2])
	if !typ.Valid() {
		return ledger.AccountState{}, fmt.Errorf("%w: %q", ledger.ErrUnknownAccountType, f[2])
	}
	balance, err := ledger.ParseAmount(f[3])
	if err != nil {
		return ledger.AccountState{}, fmt.Errorf("balance: %w", err)
	}
	return ledger.AccountState{
		Number:          f[0],
		CustomerID:      f[1],
		Type:            typ,
		Balance:         balance,
		Branch:          f[4],
		EmployerName:    field(f, 5),
		EmployerAddress: field(f, 6),
	}, nil
}

func accountKey(s ledger.AccountState) string { return s.Number }

// transactions: id|accountNumber|type|amount|balanceAfter|timestamp

func encodeTransaction(t ledger.Transaction) []string {
	return []string{
		t.ID,
		t.AccountNumber,
		string(t.Type),
		ledger.FormatAmount(t.Amount),
		ledger.FormatAmount(t.BalanceAfter),
		t.Timestamp.UTC().Format(ledger.TimestampLayout),
	}
}

func decodeTransaction(f []string) (ledger.Transaction, error) {
	if err := need(f, 6); err != nil {
		return ledger.Transaction{}, err
	}
	typ, err := ledger.ParseTransactionType(f[2])
	if err != nil {
		return ledger.Transaction{}, err
	}
	amount, err := ledger.ParseAmount(f[3])
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("amount: %w", err)
	}
	after, err := ledger.ParseAmount(f[4])
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("balance after: %w", err)
	}
	ts, err := time.ParseInLocation(ledger.TimestampLayout, f[5], time.UTC)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("timestamp: %w", err)
	}
	return ledger.Transaction{
		ID:            f[0],
		AccountNumber: f[1],
		Type:          typ,
		Amount:        amount,
		BalanceAfter:  after,
		Timestamp:     ts,
	}, nil
}

// users: username|hash|role|customerId

func encodeUser(u *ledger.User) []string {
	return []string{u.Username, u.PasswordHash, string(u.Role), u.CustomerID}
}

func decodeUser(f []string) (*ledger.User, error) {
	if err := need(f, 3); err != nil {
		return nil, err
	}
	role, err := ledger.ParseRole(f[2])
	if err != nil {
		return nil, err
	}
	u := &ledger.User{Username: f[0], PasswordHash: f[1], Role: role, CustomerID: field(f, 3)}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func userKey(u *ledger.User) string { return u.Username }

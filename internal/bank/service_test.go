package bank_test

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/simonvc/tellerledger/internal/bank"
	"github.com/simonvc/tellerledger/internal/ledger"
	"github.com/simonvc/tellerledger/internal/sqlstore"
	"github.com/simonvc/tellerledger/internal/store"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type seqIDs struct{ n int }

func (g *seqIDs) NextID() string {
	g.n++
	return fmt.Sprintf("TXN%04d", g.n)
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

var backends = map[string]func(t *testing.T) bank.Store{
	"file": func(t *testing.T) bank.Store {
		s, err := store.Open(t.TempDir(), store.WithLogger(quiet))
		require.NoError(t, err)
		return s
	},
	"sqlite": func(t *testing.T) bank.Store {
		s, err := sqlstore.Open(filepath.Join(t.TempDir(), "ledger.db"), sqlstore.WithLogger(quiet))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	},
}

// eachBackend runs fn against a fresh service for every store implementation.
func eachBackend(t *testing.T, fn func(t *testing.T, svc *bank.Service, st bank.Store), opts ...bank.Option) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			st := open(t)
			opts := append([]bank.Option{
				bank.WithClock(fixedClock{time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC)}),
				bank.WithIDGenerator(&seqIDs{}),
				bank.WithBcryptCost(bcrypt.MinCost),
			}, opts...)
			fn(t, bank.New(st, quiet, opts...), st)
		})
	}
}

func registerJacob(t *testing.T, svc *bank.Service) *ledger.Customer {
	t.Helper()
	c, err := ledger.NewIndividual("", "Jacob", "Smith", "ID123456",
		ledger.Contact{Address: "Plot 123, Gaborone", Phone: "71234567", Email: "jacob@email.com"})
	require.NoError(t, err)
	c, err = svc.RegisterCustomer(context.Background(), c)
	require.NoError(t, err)
	return c
}

func open(t *testing.T, svc *bank.Service, customerID string, typ ledger.AccountType, balance string) *ledger.Account {
	t.Helper()
	a, err := svc.OpenAccount(context.Background(), bank.OpenAccountRequest{
		CustomerID:     customerID,
		Type:           typ,
		InitialBalance: ledger.MustAmount(balance),
		Branch:         "Main Branch",
	})
	require.NoError(t, err)
	return a
}

func TestRegisterCustomerAssignsIDs(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *bank.Service, _ bank.Store) {
		ctx := context.Background()
		first := registerJacob(t, svc)
		require.Equal(t, "CUST001", first.ID)

		co, err := ledger.NewCompany("", "TechSolutions Ltd", "BW000123456", ledger.Contact{})
		require.NoError(t, err)
		co, err = svc.RegisterCustomer(ctx, co)
		require.NoError(t, err)
		require.Equal(t, "CUST002", co.ID)

		dup, err := ledger.NewIndividual("CUST001", "Theo", "Johnson", "", ledger.Contact{})
		require.NoError(t, err)
		_, err = svc.RegisterCustomer(ctx, dup)
		require.ErrorIs(t, err, ledger.ErrDuplicateCustomer)

		customers, err := svc.ListCustomers(ctx)
		require.NoError(t, err)
		require.Len(t, customers, 2)
	})
}

func TestOpenAccount(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *bank.Service, _ bank.Store) {
		ctx := context.Background()
		c := registerJacob(t, svc)

		_, err := svc.OpenAccount(ctx, bank.OpenAccountRequest{
			CustomerID: c.ID, Type: ledger.AccountInvestment, InitialBalance: ledger.MustAmount("499.99"),
		})
		require.ErrorIs(t, err, ledger.ErrBelowMinimumBalance)

		inv := open(t, svc, c.ID, ledger.AccountInvestment, "500.00")
		require.Equal(t, "ACC001", inv.Number)
		require.Empty(t, inv.Transactions())

		_, err = svc.OpenAccount(ctx, bank.OpenAccountRequest{
			CustomerID: c.ID, Type: ledger.AccountInvestment, InitialBalance: ledger.MustAmount("900"),
		})
		require.ErrorIs(t, err, ledger.ErrDuplicateAccountType)

		_, err = svc.OpenAccount(ctx, bank.OpenAccountRequest{
			CustomerID: c.ID, Type: ledger.AccountChecking, Number: "ACC001",
		})
		require.ErrorIs(t, err, ledger.ErrDuplicateAccount)

		_, err = svc.OpenAccount(ctx, bank.OpenAccountRequest{CustomerID: "CUST404", Type: ledger.AccountChecking})
		require.ErrorIs(t, err, ledger.ErrCustomerNotFound)

		chk, err := svc.OpenAccount(ctx, bank.OpenAccountRequest{
			CustomerID:      c.ID,
			Type:            ledger.AccountChecking,
			EmployerName:    "Tech Solutions Ltd",
			EmployerAddress: "Plot 789, Gaborone",
		})
		require.NoError(t, err)
		require.Equal(t, "ACC002", chk.Number)

		got, err := svc.FindCustomerByID(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, got.Accounts(), 2)
		stored, ok := got.AccountByNumber("ACC002")
		require.True(t, ok)
		require.Equal(t, "Tech Solutions Ltd", stored.EmployerName)
	})
}

func TestSavingsScenarioPersists(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *bank.Service, st bank.Store) {
		ctx := context.Background()
		c := registerJacob(t, svc)
		open(t, svc, c.ID, ledger.AccountSavings, "1000.00")

		a, err := svc.Deposit(ctx, "ACC001", ledger.MustAmount("500"))
		require.NoError(t, err)
		require.Equal(t, "1500.00", ledger.FormatAmount(a.Balance()))

		_, err = svc.Withdraw(ctx, "ACC001", ledger.MustAmount("2000"))
		require.Error(t, err)

		n, err := svc.ApplyInterestToAll(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, n)

		reloaded, err := st.FindAccountByNumber(ctx, "ACC001")
		require.NoError(t, err)
		require.Equal(t, "1500.75", ledger.FormatAmount(reloaded.Balance()))
		txns := reloaded.Transactions()
		require.Len(t, txns, 2)
		require.Equal(t, ledger.TxnDeposit, txns[0].Type)
		require.Equal(t, "1500.00", ledger.FormatAmount(txns[0].BalanceAfter))
		require.Equal(t, ledger.TxnInterest, txns[1].Type)
		require.Equal(t, "0.75", ledger.FormatAmount(txns[1].Amount))
		require.Equal(t, "TXN0001", txns[0].ID)
		require.Equal(t, "2024-06-30 23:59:59", txns[1].Timestamp.Format(ledger.TimestampLayout))
	})
}

func TestWithdrawRules(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *bank.Service, _ bank.Store) {
		ctx := context.Background()
		c := registerJacob(t, svc)
		open(t, svc, c.ID, ledger.AccountSavings, "5000")
		open(t, svc, c.ID, ledger.AccountInvestment, "1000")

		_, err := svc.Withdraw(ctx, "ACC001", ledger.MustAmount("1"))
		require.ErrorIs(t, err, ledger.ErrWithdrawalsNotAllowed)

		_, err = svc.Withdraw(ctx, "ACC002", ledger.MustAmount("600"))
		require.ErrorIs(t, err, ledger.ErrInsufficientFunds)

		a, err := svc.Withdraw(ctx, "ACC002", ledger.MustAmount("500"))
		require.NoError(t, err)
		require.Equal(t, "500.00", ledger.FormatAmount(a.Balance()))

		_, err = svc.Deposit(ctx, "ACC002", ledger.MustAmount("0"))
		require.ErrorIs(t, err, ledger.ErrInvalidAmount)

		_, err = svc.Deposit(ctx, "ACC404", ledger.MustAmount("1"))
		require.ErrorIs(t, err, ledger.ErrAccountNotFound)

		txns, err := svc.Transactions(ctx, "ACC002")
		require.NoError(t, err)
		require.Len(t, txns, 1)
		all, err := svc.Transactions(ctx, "")
		require.NoError(t, err)
		require.Len(t, all, 1)
	})
}

func TestTransfer(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *bank.Service, st bank.Store) {
		ctx := context.Background()
		c := registerJacob(t, svc)
		open(t, svc, c.ID, ledger.AccountInvestment, "1000")
		open(t, svc, c.ID, ledger.AccountChecking, "0")

		src, dst, err := svc.Transfer(ctx, "ACC001", "ACC002", ledger.MustAmount("250"))
		require.NoError(t, err)
		require.Equal(t, "750.00", ledger.FormatAmount(src.Balance()))
		require.Equal(t, "250.00", ledger.FormatAmount(dst.Balance()))

		_, _, err = svc.Transfer(ctx, "ACC001", "ACC002", ledger.MustAmount("250.01"))
		require.ErrorIs(t, err, ledger.ErrInsufficientFunds)

		_, _, err = svc.Transfer(ctx, "ACC002", "ACC002", ledger.MustAmount("1"))
		require.ErrorIs(t, err, ledger.ErrSameAccount)

		_, _, err = svc.Transfer(ctx, "ACC002", "ACC404", ledger.MustAmount("1"))
		require.ErrorIs(t, err, ledger.ErrAccountNotFound)

		a, err := st.FindAccountByNumber(ctx, "ACC001")
		require.NoError(t, err)
		require.Equal(t, "750.00", ledger.FormatAmount(a.Balance()))
		require.Len(t, a.Transactions(), 1)
		b, err := st.FindAccountByNumber(ctx, "ACC002")
		require.NoError(t, err)
		require.Equal(t, "250.00", ledger.FormatAmount(b.Balance()))
		require.Len(t, b.Transactions(), 1)
	})
}

func TestTransferRequireSameOwner(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *bank.Service, _ bank.Store) {
		ctx := context.Background()
		jacob := registerJacob(t, svc)
		theo, err := ledger.NewIndividual("", "Theo", "Johnson", "ID789012", ledger.Contact{})
		require.NoError(t, err)
		theo, err = svc.RegisterCustomer(ctx, theo)
		require.NoError(t, err)

		open(t, svc, jacob.ID, ledger.AccountChecking, "100")
		open(t, svc, theo.ID, ledger.AccountChecking, "100")

		_, _, err = svc.Transfer(ctx, "ACC001", "ACC002", ledger.MustAmount("10"))
		require.ErrorIs(t, err, ledger.ErrAccountOwnerMismatch)

		a, err := svc.Account(ctx, "ACC001")
		require.NoError(t, err)
		require.Equal(t, "100.00", ledger.FormatAmount(a.Balance()))
	}, bank.RequireSameOwner())
}

func TestApplyInterestToAll(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *bank.Service, _ bank.Store) {
		ctx := context.Background()
		c := registerJacob(t, svc)
		open(t, svc, c.ID, ledger.AccountSavings, "1500")
		open(t, svc, c.ID, ledger.AccountInvestment, "1000")
		open(t, svc, c.ID, ledger.AccountChecking, "99999")

		n, err := svc.ApplyInterestToAll(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, n)

		accounts, err := svc.ListAccounts(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, accounts, 3)
		byNumber := map[string]*ledger.Account{}
		for _, a := range accounts {
			byNumber[a.Number] = a
		}
		require.Equal(t, "1500.75", ledger.FormatAmount(byNumber["ACC001"].Balance()))
		require.Equal(t, "1050.00", ledger.FormatAmount(byNumber["ACC002"].Balance()))
		require.Equal(t, "99999.00", ledger.FormatAmount(byNumber["ACC003"].Balance()))
		require.Empty(t, byNumber["ACC003"].Transactions())
	})
}

func TestFindCustomerByAccount(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *bank.Service, _ bank.Store) {
		ctx := context.Background()
		c := registerJacob(t, svc)
		open(t, svc, c.ID, ledger.AccountChecking, "10")

		got, err := svc.FindCustomerByAccount(ctx, "ACC001")
		require.NoError(t, err)
		require.Equal(t, c.ID, got.ID)
		require.Len(t, got.Accounts(), 1)

		_, err = svc.FindCustomerByAccount(ctx, "ACC999")
		require.ErrorIs(t, err, ledger.ErrAccountNotFound)
	})
}

func TestUpdateContact(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *bank.Service, _ bank.Store) {
		ctx := context.Background()
		c := registerJacob(t, svc)

		_, err := svc.UpdateContact(ctx, c.ID, ledger.Contact{Address: "Plot 9, Maun", Phone: "1", Email: "j@x"})
		require.NoError(t, err)

		got, err := svc.FindCustomerByID(ctx, c.ID)
		require.NoError(t, err)
		require.Equal(t, "Plot 9, Maun", got.Address)
		require.Equal(t, "Jacob Smith", got.Name())

		customers, err := svc.ListCustomers(ctx)
		require.NoError(t, err)
		require.Len(t, customers, 1)
	})
}

func TestUsers(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *bank.Service, _ bank.Store) {
		ctx := context.Background()
		c := registerJacob(t, svc)

		u, err := svc.RegisterUser(ctx, "Jacob", "123445", ledger.RoleCustomer, c.ID)
		require.NoError(t, err)
		require.True(t, u.IsCustomer())

		_, err = svc.RegisterUser(ctx, "Jacob", "other", ledger.RoleCustomer, "")
		require.ErrorIs(t, err, ledger.ErrDuplicateUser)

		_, err = svc.RegisterUser(ctx, "Ghost", "pw", ledger.RoleCustomer, "CUST404")
		require.ErrorIs(t, err, ledger.ErrCustomerNotFound)

		_, err = svc.Authenticate(ctx, "Jacob", "wrong")
		require.ErrorIs(t, err, ledger.ErrInvalidCredentials)
		_, err = svc.Authenticate(ctx, "Nobody", "123445")
		require.ErrorIs(t, err, ledger.ErrInvalidCredentials)

		got, err := svc.Authenticate(ctx, "Jacob", "123445")
		require.NoError(t, err)
		require.Equal(t, c.ID, got.CustomerID)

		teller, err := svc.RegisterUser(ctx, "Admin", "admin123", ledger.RoleTeller, "")
		require.NoError(t, err)
		require.True(t, teller.IsTeller())

		linked, err := svc.LinkCustomer(ctx, "Admin", c.ID)
		require.NoError(t, err)
		require.Equal(t, c.ID, linked.CustomerID)

		users, err := svc.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
	})
}

func TestAuthenticateUpgradesLegacyHash(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *bank.Service, st bank.Store) {
		ctx := context.Background()
		sum := sha256.Sum256([]byte("021103"))
		legacy := &ledger.User{
			Username:     "Jaden",
			PasswordHash: base64.StdEncoding.EncodeToString(sum[:]),
			Role:         ledger.RoleTeller,
		}
		require.NoError(t, st.SaveUser(ctx, legacy))

		_, err := svc.Authenticate(ctx, "Jaden", "021103")
		require.NoError(t, err)

		stored, err := st.FindUserByUsername(ctx, "Jaden")
		require.NoError(t, err)
		require.False(t, stored.NeedsRehash())
		require.True(t, stored.Authenticate("021103"))
	})
}

func TestOpenAccountNeverReusesStoredNumbers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	orphan := "ACC001|CUST999|CheckingAccount|900.00|Main Branch||"
	require.NoError(t, os.WriteFile(filepath.Join(dir, store.AccountsFile), []byte(orphan+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, store.TransactionsFile), []byte(
		"T1|ACC001|WITHDRAWAL|100.00|900.00|2024-01-01 10:00:00\n"+
			"T2|ACC002|DEPOSIT|5.00|5.00|2024-01-01 10:00:00\n"), 0o644))

	st, err := store.Open(dir, store.WithLogger(quiet))
	require.NoError(t, err)
	svc := bank.New(st, quiet, bank.WithIDGenerator(&seqIDs{}), bank.WithBcryptCost(bcrypt.MinCost))
	c := registerJacob(t, svc)

	a := open(t, svc, c.ID, ledger.AccountInvestment, "600")
	require.Equal(t, "ACC003", a.Number)

	reloaded, err := svc.Account(ctx, "ACC003")
	require.NoError(t, err)
	require.Equal(t, c.ID, reloaded.CustomerID)
	require.Equal(t, "600.00", ledger.FormatAmount(reloaded.Balance()))
	require.Empty(t, reloaded.Transactions())

	for _, number := range []string{"ACC001", "ACC002"} {
		_, err := svc.OpenAccount(ctx, bank.OpenAccountRequest{
			Number:         number,
			CustomerID:     c.ID,
			Type:           ledger.AccountChecking,
			InitialBalance: ledger.MustAmount("10"),
		})
		require.ErrorIs(t, err, ledger.ErrDuplicateAccount, number)
	}

	_, err = svc.Deposit(ctx, "ACC003", ledger.MustAmount("1"))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dir, store.AccountsFile))
	require.NoError(t, err)
	require.Contains(t, string(b), orphan)

	report, err := st.Check(ctx)
	require.NoError(t, err)
	for _, issue := range report.Issues {
		require.NotEqual(t, store.IssueDuplicateKey, issue.Kind, issue.String())
		require.NotEqual(t, store.IssueBalanceMismatch, issue.Kind, issue.String())
	}
}

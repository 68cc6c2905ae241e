// Package seed loads the sample bank used for demos and first runs.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/simonvc/tellerledger/internal/bank"
	"github.com/simonvc/tellerledger/internal/ledger"
)

type sampleAccount struct {
	number, customerID string
	typ                ledger.AccountType
	opening, deposit   string
	branch             string
	employer, address  string
}

type sampleUser struct {
	username, password string
	role               ledger.Role
	customerID         string
}

var customers = []func() (*ledger.Customer, error){
	func() (*ledger.Customer, error) {
		return ledger.NewIndividual("CUST001", "Jacob", "Smith", "ID123456",
			ledger.Contact{Address: "Plot 123, Gaborone", Phone: "71234567", Email: "jacob@email.com"})
	},
	func() (*ledger.Customer, error) {
		return ledger.NewIndividual("CUST002", "Theo", "Johnson", "ID789012",
			ledger.Contact{Address: "Plot 456, Francistown", Phone: "71234568", Email: "theo@email.com"})
	},
	func() (*ledger.Customer, error) {
		return ledger.NewIndividual("CUST003", "Sarah", "Williams", "ID345678",
			ledger.Contact{Address: "Plot 789, Maun", Phone: "71234569", Email: "sarah@email.com"})
	},
	func() (*ledger.Customer, error) {
		return ledger.NewCompany("CUST004", "TechSolutions Ltd", "BW000123456",
			ledger.Contact{Address: "Plot 321, Gaborone CBD", Phone: "3901234", Email: "info@techsolutions.bw"})
	},
}

var accounts = []sampleAccount{
	{"ACC001", "CUST001", ledger.AccountSavings, "1500", "500", "Main Branch", "", ""},
	{"ACC002", "CUST001", ledger.AccountInvestment, "5000", "1000", "Main Branch", "", ""},
	{"ACC003", "CUST001", ledger.AccountChecking, "3000", "2000", "Main Branch", "Tech Solutions Ltd", "Plot 789, Gaborone"},
	{"ACC004", "CUST002", ledger.AccountSavings, "2500", "1000", "Main Branch", "", ""},
	{"ACC005", "CUST002", ledger.AccountInvestment, "7500", "2500", "Main Branch", "", ""},
	{"ACC006", "CUST002", ledger.AccountChecking, "4500", "1500", "Main Branch", "Finance Corp", "Plot 321, Francistown"},
	{"ACC007", "CUST003", ledger.AccountSavings, "1000", "", "Maun Branch", "", ""},
	{"ACC008", "CUST003", ledger.AccountChecking, "2000", "", "Maun Branch", "Safari Tours Ltd", "Plot 456, Maun"},
	{"ACC009", "CUST004", ledger.AccountSavings, "50000", "", "Main Branch", "", ""},
	{"ACC010", "CUST004", ledger.AccountChecking, "75000", "", "Main Branch", "Self Employed", "Plot 321, Gaborone CBD"},
}

var users = []sampleUser{
	{"Jacob", "123445", ledger.RoleCustomer, "CUST001"},
	{"Theo", "Theo2024", ledger.RoleCustomer, "CUST002"},
	{"Sarah", "sarah123", ledger.RoleCustomer, "CUST003"},
	{"Jaden", "021103", ledger.RoleTeller, ""},
	{"Admin", "admin123", ledger.RoleTeller, ""},
}

type Seeder struct {
	svc    *bank.Service
	logger *slog.Logger
}

func New(svc *bank.Service, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{svc: svc, logger: logger}
}

// Run loads the sample customers, accounts and users when the store has no
// customers yet. It reports whether anything was written.
func (s *Seeder) Run(ctx context.Context) (bool, error) {
	existing, err := s.svc.ListCustomers(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		s.logger.Debug("store already has customers, skipping seed", "customers", len(existing))
		return false, nil
	}

	for _, build := range customers {
		c, err := build()
		if err != nil {
			return false, err
		}
		if _, err := s.svc.RegisterCustomer(ctx, c); err != nil {
			return false, fmt.Errorf("seed customer %s: %w", c.ID, err)
		}
	}

	for _, a := range accounts {
		if _, err := s.svc.OpenAccount(ctx, bank.OpenAccountRequest{
			Number:          a.number,
			CustomerID:      a.customerID,
			Type:            a.typ,
			InitialBalance:  ledger.MustAmount(a.opening),
			Branch:          a.branch,
			EmployerName:    a.employer,
			EmployerAddress: a.address,
		}); err != nil {
			return false, fmt.Errorf("seed account %s: %w", a.number, err)
		}
		if a.deposit == "" {
			continue
		}
		if _, err := s.svc.Deposit(ctx, a.number, ledger.MustAmount(a.deposit)); err != nil {
			return false, fmt.Errorf("seed deposit %s: %w", a.number, err)
		}
	}

	for _, u := range users {
		if _, err := s.svc.RegisterUser(ctx, u.username, u.password, u.role, u.customerID); err != nil {
			return false, fmt.Errorf("seed user %s: %w", u.username, err)
		}
	}

	s.logger.Info("seeded sample data",
		"customers", len(customers), "accounts", len(accounts), "users", len(users))
	return true, nil
}

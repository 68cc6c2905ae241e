package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simonvc/tellerledger/internal/ledger"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const customerColumns = `id, kind, first_name, surname, national_id, company_name, company_number, address, phone, email`

func (s *Store) SaveCustomer(ctx context.Context, c *ledger.Customer) error {
	if err := validateCustomer(c); err != nil {
		return err
	}
	res, err := s.writer.ExecContext(ctx,
		`INSERT INTO customers (`+customerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		customerArgs(c)...,
	)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ledger.ErrDuplicateCustomer, c.ID)
	}
	return nil
}

// UpdateCustomer writes the customer, inserting it when absent.
func (s *Store) UpdateCustomer(ctx context.Context, c *ledger.Customer) error {
	if err := validateCustomer(c); err != nil {
		return err
	}
	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO customers (`+customerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			first_name = excluded.first_name,
			surname = excluded.surname,
			national_id = excluded.national_id,
			company_name = excluded.company_name,
			company_number = excluded.company_number,
			address = excluded.address,
			phone = excluded.phone,
			email = excluded.email`,
		customerArgs(c)...,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// FindAllCustomers returns every customer with accounts and transaction logs
// attached, in insertion order.
func (s *Store) FindAllCustomers(ctx context.Context) ([]*ledger.Customer, error) {
	rows, err := s.reader.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []*ledger.Customer
	byID := make(map[string]*ledger.Customer)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	accounts, err := s.FindAllAccounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if err := s.attach(byID[a.CustomerID], a); err != nil {
			return nil, err
		}
	}
	return customers, nil
}

func (s *Store) FindCustomerByID(ctx context.Context, id string) (*ledger.Customer, error) {
	row := s.reader.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if err != nil {
		return nil, err
	}
	accounts, err := s.FindAccountsByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if err := s.attach(c, a); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// attach adds a to c. A second account of the same type is left out of the
// customer with a warning, as the flat store does.
func (s *Store) attach(c *ledger.Customer, a *ledger.Account) error {
	if c == nil {
		return fmt.Errorf("account %s: %w", a.Number, ledger.ErrCustomerNotFound)
	}
	if err := c.AddAccount(a); err != nil {
		if errors.Is(err, ledger.ErrDuplicateAccountType) {
			s.logger.Warn("skipping account", "table", "accounts", "account", a.Number, "reason", err.Error())
			return nil
		}
		return err
	}
	return nil
}

func scanCustomer(row scanner) (*ledger.Customer, error) {
	var c ledger.Customer
	var kind string
	err := row.Scan(&c.ID, &kind, &c.FirstName, &c.Surname, &c.NationalID,
		&c.CompanyName, &c.CompanyNumber, &c.Address, &c.Phone, &c.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan customer: %w", err)
	}
	if c.Kind, err = ledger.ParseCustomerKind(kind); err != nil {
		return nil, err
	}
	return &c, nil
}

func customerArgs(c *ledger.Customer) []any {
	return []any{
		c.ID, string(c.Kind), c.FirstName, c.Surname, c.NationalID,
		c.CompanyName, c.CompanyNumber, c.Address, c.Phone, c.Email,
	}
}

func validateCustomer(c *ledger.Customer) error {
	if c.ID == "" {
		return fmt.Errorf("%w: customer id is required", ledger.ErrInvalidCustomer)
	}
	return c.Validate()
}

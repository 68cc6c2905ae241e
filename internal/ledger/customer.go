package ledger

import (
	"fmt"
	"strings"
)

type CustomerKind string

const (
	CustomerIndividual CustomerKind = "INDIVIDUAL"
	CustomerCompany    CustomerKind = "COMPANY"
)

// ParseCustomerKind validates a stored kind tag, case-insensitively.
func ParseCustomerKind(s string) (CustomerKind, error) {
	switch k := CustomerKind(strings.ToUpper(strings.TrimSpace(s))); k {
	case CustomerIndividual, CustomerCompany:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCustomerKind, s)
	}
}

// Contact holds the attributes shared by every customer kind.
type Contact struct {
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Customer is either an individual or a company. Only the fields of its
// kind are meaningful.
type Customer struct {
	ID   string       `json:"id"`
	Kind CustomerKind `json:"kind"`
	Contact

	FirstName  string `json:"first_name,omitempty"`
	Surname    string `json:"surname,omitempty"`
	NationalID string `json:"national_id,omitempty"`

	CompanyName   string `json:"company_name,omitempty"`
	CompanyNumber string `json:"company_number,omitempty"`

	accounts []*Account
}

func NewIndividual(id, firstName, surname, nationalID string, c Contact) (*Customer, error) {
	cust := &Customer{
		ID:         id,
		Kind:       CustomerIndividual,
		Contact:    c,
		FirstName:  firstName,
		Surname:    surname,
		NationalID: nationalID,
	}
	if err := cust.Validate(); err != nil {
		return nil, err
	}
	return cust, nil
}

func NewCompany(id, companyName, companyNumber string, c Contact) (*Customer, error) {
	cust := &Customer{
		ID:            id,
		Kind:          CustomerCompany,
		Contact:       c,
		CompanyName:   companyName,
		CompanyNumber: companyNumber,
	}
	if err := cust.Validate(); err != nil {
		return nil, err
	}
	return cust, nil
}

// Validate checks the fields required for the customer's kind. An empty ID
// is allowed so the registration path can assign one.
func (c *Customer) Validate() error {
	switch c.Kind {
	case CustomerIndividual:
		if strings.TrimSpace(c.FirstName) == "" || strings.TrimSpace(c.Surname) == "" {
			return fmt.Errorf("%w: first name and surname are required", ErrInvalidCustomer)
		}
	case CustomerCompany:
		if strings.TrimSpace(c.CompanyName) == "" {
			return fmt.Errorf("%w: company name is required", ErrInvalidCustomer)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCustomerKind, c.Kind)
	}
	return nil
}

// Name is "first surname" for individuals and the company name for companies.
func (c *Customer) Name() string {
	if c.Kind == CustomerCompany {
		return c.CompanyName
	}
	return c.FirstName + " " + c.Surname
}

// AddAccount attaches an account. A second account of the same variant is
// rejected and the customer is left unchanged.
func (c *Customer) AddAccount(a *Account) error {
	if a.CustomerID != c.ID {
		return fmt.Errorf("%w: account %s is owned by %s, not %s", ErrAccountOwnerMismatch, a.Number, a.CustomerID, c.ID)
	}
	for _, existing := range c.accounts {
		if existing.Type == a.Type {
			return fmt.Errorf("%w: %s already has %s account %s", ErrDuplicateAccountType, c.ID, a.Type.Label(), existing.Number)
		}
	}
	c.accounts = append(c.accounts, a)
	return nil
}

// AccountByNumber returns the customer's account with the given number.
func (c *Customer) AccountByNumber(number string) (*Account, bool) {
	for _, a := range c.accounts {
		if a.Number == number {
			return a, true
		}
	}
	return nil, false
}

// Accounts returns a copy of the account list.
func (c *Customer) Accounts() []*Account {
	out := make([]*Account, len(c.accounts))
	copy(out, c.accounts)
	return out
}

// Package bank implements the teller and customer operations on top of a
// Store: registering customers, opening accounts, moving money and running
// the monthly interest batch.
package bank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/simonvc/tellerledger/internal/ledger"
	"github.com/simonvc/tellerledger/internal/password"
)

const (
	CustomerIDPrefix    = "CUST"
	AccountNumberPrefix = "ACC"
)

type Service struct {
	store  Store
	logger *slog.Logger

	clock            ledger.Clock
	ids              ledger.IDGenerator
	requireSameOwner bool
	bcryptCost       int
}

type Option func(*Service)

func WithClock(c ledger.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithIDGenerator(g ledger.IDGenerator) Option {
	return func(s *Service) { s.ids = g }
}

// RequireSameOwner restricts transfers to accounts of one customer.
func RequireSameOwner() Option {
	return func(s *Service) { s.requireSameOwner = true }
}

func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func New(store Store, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:      store,
		logger:     logger,
		clock:      ledger.SystemClock(),
		ids:        ledger.UUIDGenerator(),
		bcryptCost: password.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) accountOptions() []ledger.Option {
	return []ledger.Option{ledger.WithClock(s.clock), ledger.WithIDGenerator(s.ids)}
}

// RegisterCustomer stores a new customer. An empty ID is replaced by the
// next free CUSTnnn id.
func (s *Service) RegisterCustomer(ctx context.Context, c *ledger.Customer) (*ledger.Customer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	customers, err := s.store.FindAllCustomers(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(customers))
	for i, existing := range customers {
		if c.ID != "" && existing.ID == c.ID {
			return nil, fmt.Errorf("%w: %s", ledger.ErrDuplicateCustomer, c.ID)
		}
		ids[i] = existing.ID
	}
	if c.ID == "" {
		c.ID = nextID(CustomerIDPrefix, ids)
	}
	if err := s.store.SaveCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("save customer %s: %w", c.ID, err)
	}
	s.logger.Info("customer registered", "customer", c.ID, "kind", c.Kind, "name", c.Name())
	return c, nil
}

func (s *Service) FindCustomerByID(ctx context.Context, id string) (*ledger.Customer, error) {
	c, err := s.store.FindCustomerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, a := range c.Accounts() {
		a.Apply(s.accountOptions()...)
	}
	return c, nil
}

// FindCustomerByAccount returns the owner of an account, with all of the
// owner's accounts attached.
func (s *Service) FindCustomerByAccount(ctx context.Context, number string) (*ledger.Customer, error) {
	a, err := s.store.FindAccountByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.FindCustomerByID(ctx, a.CustomerID)
}

func (s *Service) ListCustomers(ctx context.Context) ([]*ledger.Customer, error) {
	return s.store.FindAllCustomers(ctx)
}

// nextID returns prefix followed by one more than the highest numeric
// suffix among ids, zero padded to three digits.
func nextID(prefix string, ids []string) string {
	highest := 0
	for _, id := range ids {
		rest, ok := strings.CutPrefix(id, prefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, highest+1)
}

func isNotFound(err error) bool {
	return errors.Is(err, ledger.ErrCustomerNotFound) ||
		errors.Is(err, ledger.ErrAccountNotFound) ||
		errors.Is(err, ledger.ErrUserNotFound)
}

// UpdateContact replaces the contact details of a customer.
func (s *Service) UpdateContact(ctx context.Context, id string, contact ledger.Contact) (*ledger.Customer, error) {
	c, err := s.store.FindCustomerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Contact = contact
	if err := s.store.UpdateCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("save customer %s: %w", id, err)
	}
	s.logger.Info("customer updated", "customer", id)
	return c, nil
}

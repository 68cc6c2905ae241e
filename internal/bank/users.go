package bank

import (
	"context"
	"fmt"

	"github.com/simonvc/tellerledger/internal/ledger"
)

// RegisterUser creates a login. A non-empty customerID must name an existing
// customer.
func (s *Service) RegisterUser(ctx context.Context, username, pw string, role ledger.Role, customerID string) (*ledger.User, error) {
	_, err := s.store.FindUserByUsername(ctx, username)
	if err == nil {
		return nil, fmt.Errorf("%w: %s", ledger.ErrDuplicateUser, username)
	}
	if !isNotFound(err) {
		return nil, err
	}
	if customerID != "" {
		if _, err := s.store.FindCustomerByID(ctx, customerID); err != nil {
			return nil, err
		}
	}
	u, err := ledger.NewUser(username, pw, role, customerID, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveUser(ctx, u); err != nil {
		return nil, fmt.Errorf("save user %s: %w", username, err)
	}
	s.logger.Info("user registered", "user", username, "role", role, "customer", customerID)
	return u, nil
}

// Authenticate checks a username and password. Unknown users and wrong
// passwords both return ErrInvalidCredentials. A hash in the legacy format is
// replaced by a bcrypt hash on success.
func (s *Service) Authenticate(ctx context.Context, username, pw string) (*ledger.User, error) {
	u, err := s.store.FindUserByUsername(ctx, username)
	if isNotFound(err) {
		s.logger.Debug("login rejected", "user", username, "reason", "unknown user")
		return nil, ledger.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !u.Authenticate(pw) {
		s.logger.Debug("login rejected", "user", username, "reason", "wrong password")
		return nil, ledger.ErrInvalidCredentials
	}
	if u.NeedsRehash() {
		if err := u.SetPassword(pw, s.bcryptCost); err != nil {
			return nil, err
		}
		if err := s.store.UpdateUser(ctx, u); err != nil {
			s.logger.Warn("password rehash not saved", "user", username, "error", err)
		} else {
			s.logger.Info("password rehashed", "user", username)
		}
	}
	return u, nil
}

// LinkCustomer attaches an existing customer to a user.
func (s *Service) LinkCustomer(ctx context.Context, username, customerID string) (*ledger.User, error) {
	u, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.FindCustomerByID(ctx, customerID); err != nil {
		return nil, err
	}
	u.CustomerID = customerID
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("save user %s: %w", username, err)
	}
	s.logger.Info("user linked", "user", username, "customer", customerID)
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*ledger.User, error) {
	return s.store.FindAllUsers(ctx)
}

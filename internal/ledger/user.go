package ledger

import (
	"fmt"
	"strings"

	"github.com/simonvc/tellerledger/internal/password"
)

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleTeller   Role = "TELLER"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleCustomer, RoleTeller:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// User is an authentication record. CustomerID optionally references the
// customer a CUSTOMER login acts for.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	CustomerID   string `json:"customer_id,omitempty"`
}

// NewUser hashes password with the given bcrypt cost.
func NewUser(username, pw string, role Role, customerID string, cost int) (*User, error) {
	u := &User{Username: username, Role: role, CustomerID: customerID}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := u.SetPassword(pw, cost); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidUser)
	}
	if u.Role != RoleCustomer && u.Role != RoleTeller {
		return fmt.Errorf("%w: %q", ErrUnknownRole, u.Role)
	}
	return nil
}

func (u *User) SetPassword(pw string, cost int) error {
	if pw == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidUser)
	}
	hash, err := password.Hash(pw, cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) Authenticate(pw string) bool {
	return password.Verify(pw, u.PasswordHash)
}

// NeedsRehash reports a hash written in the legacy unsalted format.
func (u *User) NeedsRehash() bool {
	return password.IsLegacy(u.PasswordHash)
}

func (u *User) IsCustomer() bool { return u.Role == RoleCustomer }

func (u *User) IsTeller() bool { return u.Role == RoleTeller }

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simonvc/tellerledger/internal/ledger"
)

const userColumns = `username, password, role, customer_id`

// SaveUser inserts the user or replaces the one with the same username.
func (s *Store) SaveUser(ctx context.Context, u *ledger.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			password = excluded.password,
			role = excluded.role,
			customer_id = excluded.customer_id`,
		u.Username, u.PasswordHash, string(u.Role), u.CustomerID,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, u *ledger.User) error {
	return s.SaveUser(ctx, u)
}

func (s *Store) FindAllUsers(ctx context.Context) ([]*ledger.User, error) {
	rows, err := s.reader.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*ledger.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*ledger.User, error) {
	return scanUser(s.reader.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (s *Store) FindUserByCustomerID(ctx context.Context, customerID string) (*ledger.User, error) {
	if customerID == "" {
		return nil, ledger.ErrUserNotFound
	}
	return scanUser(s.reader.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE customer_id = ? ORDER BY rowid LIMIT 1`, customerID))
}

func scanUser(row scanner) (*ledger.User, error) {
	var u ledger.User
	var role string
	err := row.Scan(&u.Username, &u.PasswordHash, &role, &u.CustomerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if u.Role, err = ledger.ParseRole(role); err != nil {
		return nil, err
	}
	return &u, nil
}

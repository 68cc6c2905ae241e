package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
)

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		if err := migrateV1(ctx, tx); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		s.logger.Debug("applied schema migration", "version", 1)
	}

	return tx.Commit()
}

func migrateV1(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id             TEXT PRIMARY KEY,
			kind           TEXT NOT NULL CHECK (kind IN ('INDIVIDUAL','COMPANY')),
			first_name     TEXT NOT NULL DEFAULT '',
			surname        TEXT NOT NULL DEFAULT '',
			national_id    TEXT NOT NULL DEFAULT '',
			company_name   TEXT NOT NULL DEFAULT '',
			company_number TEXT NOT NULL DEFAULT '',
			address        TEXT NOT NULL DEFAULT '',
			phone          TEXT NOT NULL DEFAULT '',
			email          TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS accounts (
			number           TEXT PRIMARY KEY,
			customer_id      TEXT NOT NULL REFERENCES customers(id),
			type             TEXT NOT NULL CHECK (type IN ('SavingsAccount','InvestmentAccount','CheckingAccount')),
			balance          TEXT NOT NULL,
			branch           TEXT NOT NULL DEFAULT '',
			employer_name    TEXT NOT NULL DEFAULT '',
			employer_address TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_customer ON accounts(customer_id)`,

		// seq keeps append order; timestamps only have second precision.
		`CREATE TABLE IF NOT EXISTS transactions (
			seq            INTEGER PRIMARY KEY AUTOINCREMENT,
			id             TEXT NOT NULL UNIQUE,
			account_number TEXT NOT NULL REFERENCES accounts(number),
			type           TEXT NOT NULL CHECK (type IN ('DEPOSIT','WITHDRAWAL','INTEREST')),
			amount         TEXT NOT NULL,
			balance_after  TEXT NOT NULL,
			created_at     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_number, seq)`,

		`CREATE TABLE IF NOT EXISTS users (
			username    TEXT PRIMARY KEY,
			password    TEXT NOT NULL,
			role        TEXT NOT NULL CHECK (role IN ('CUSTOMER','TELLER')),
			customer_id TEXT NOT NULL DEFAULT ''
		)`,

		`INSERT INTO schema_version (version) VALUES (1)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

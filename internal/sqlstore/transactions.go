package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/simonvc/tellerledger/internal/ledger"
)

const transactionColumns = `id, account_number, type, amount, balance_after, created_at`

func insertTransaction(ctx context.Context, tx *sql.Tx, t ledger.Transaction) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountNumber, string(t.Type),
		ledger.FormatAmount(t.Amount), ledger.FormatAmount(t.BalanceAfter),
		t.Timestamp.UTC().Format(ledger.TimestampLayout),
	)
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", t.ID, err)
	}
	return nil
}

// Commit writes the transactions and new balances of every posting in one
// database transaction.
func (s *Store) Commit(ctx context.Context, postings ...ledger.Posting) error {
	if len(postings) == 0 {
		return nil
	}
	for _, p := range postings {
		if err := p.Account.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, p := range postings {
		for _, t := range p.Transactions {
			if err := insertTransaction(ctx, tx, t); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, upsertAccount, accountArgs(p.Account.State())...); err != nil {
			return fmt.Errorf("update account %s: %w", p.Account.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) FindTransactionsByAccount(ctx context.Context, number string) ([]ledger.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE account_number = ? ORDER BY seq`, number)
}

func (s *Store) FindAllTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	return s.queryTransactions(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY seq`)
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]ledger.Transaction, error) {
	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []ledger.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func scanTransaction(row scanner) (ledger.Transaction, error) {
	var t ledger.Transaction
	var typ, amount, after, createdAt string
	if err := row.Scan(&t.ID, &t.AccountNumber, &typ, &amount, &after, &createdAt); err != nil {
		return t, fmt.Errorf("scan transaction: %w", err)
	}
	var err error
	if t.Type, err = ledger.ParseTransactionType(typ); err != nil {
		return t, err
	}
	if t.Amount, err = ledger.ParseAmount(amount); err != nil {
		return t, fmt.Errorf("transaction %s amount: %w", t.ID, err)
	}
	if t.BalanceAfter, err = ledger.ParseAmount(after); err != nil {
		return t, fmt.Errorf("transaction %s balance: %w", t.ID, err)
	}
	if t.Timestamp, err = time.ParseInLocation(ledger.TimestampLayout, createdAt, time.UTC); err != nil {
		return t, fmt.Errorf("transaction %s timestamp: %w", t.ID, err)
	}
	return t, nil
}

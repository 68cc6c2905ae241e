package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simonvc/tellerledger/internal/ledger"
)

const accountColumns = `number, customer_id, type, balance, branch, employer_name, employer_address`

const upsertAccount = `INSERT INTO accounts (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(number) DO UPDATE SET
		customer_id = excluded.customer_id,
		type = excluded.type,
		balance = excluded.balance,
		branch = excluded.branch,
		employer_name = excluded.employer_name,
		employer_address = excluded.employer_address`

func (s *Store) SaveAccount(ctx context.Context, a *ledger.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	res, err := s.writer.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(number) DO NOTHING`,
		accountArgs(a.State())...,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ledger.ErrDuplicateAccount, a.Number)
	}
	return nil
}

func (s *Store) UpdateAccount(ctx context.Context, a *ledger.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if _, err := s.writer.ExecContext(ctx, upsertAccount, accountArgs(a.State())...); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

func (s *Store) FindAllAccounts(ctx context.Context) ([]*ledger.Account, error) {
	return s.queryAccounts(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY rowid`)
}

func (s *Store) FindAccountsByCustomer(ctx context.Context, customerID string) ([]*ledger.Account, error) {
	return s.queryAccounts(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE customer_id = ? ORDER BY rowid`, customerID)
}

func (s *Store) FindAccountByNumber(ctx context.Context, number string) (*ledger.Account, error) {
	row := s.reader.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE number = ?`, number)
	st, err := scanAccountState(row)
	if err != nil {
		return nil, err
	}
	txns, err := s.FindTransactionsByAccount(ctx, number)
	if err != nil {
		return nil, err
	}
	return ledger.RestoreAccount(st, txns)
}

// AccountNumbers returns every account number in use, including numbers
// referenced only by transactions.
func (s *Store) AccountNumbers(ctx context.Context) ([]string, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT number FROM accounts UNION SELECT account_number FROM transactions ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("list account numbers: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// queryAccounts loads the selected accounts and then their transactions in
// one more query.
func (s *Store) queryAccounts(ctx context.Context, query string, args ...any) ([]*ledger.Account, error) {
	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	var states []ledger.AccountState
	for rows.Next() {
		st, err := scanAccountState(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		states = append(states, st)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return nil, nil
	}

	all, err := s.FindAllTransactions(ctx)
	if err != nil {
		return nil, err
	}
	logs := make(map[string][]ledger.Transaction)
	for _, t := range all {
		logs[t.AccountNumber] = append(logs[t.AccountNumber], t)
	}

	accounts := make([]*ledger.Account, 0, len(states))
	for _, st := range states {
		a, err := ledger.RestoreAccount(st, logs[st.Number])
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func scanAccountState(row scanner) (ledger.AccountState, error) {
	var st ledger.AccountState
	var typ, balance string
	err := row.Scan(&st.Number, &st.CustomerID, &typ, &balance, &st.Branch, &st.EmployerName, &st.EmployerAddress)
	if errors.Is(err, sql.ErrNoRows) {
		return st, ledger.ErrAccountNotFound
	}
	if err != nil {
		return st, fmt.Errorf("scan account: %w", err)
	}
	st.Type = ledger.AccountType(typ)
	if st.Balance, err = ledger.ParseAmount(balance); err != nil {
		return st, fmt.Errorf("account %s balance: %w", st.Number, err)
	}
	return st, nil
}

func accountArgs(st ledger.AccountState) []any {
	return []any{
		st.Number, st.CustomerID, string(st.Type), ledger.FormatAmount(st.Balance),
		st.Branch, st.EmployerName, st.EmployerAddress,
	}
}

package store

import (
	"context"
	"fmt"

	"github.com/simonvc/tellerledger/internal/ledger"
)

type IssueKind string

const (
	IssueMalformed            IssueKind = "malformed"
	IssueDuplicateKey         IssueKind = "duplicate-key"
	IssueDanglingCustomer     IssueKind = "dangling-customer"
	IssueOrphanTransaction    IssueKind = "orphan-transaction"
	IssueBalanceMismatch      IssueKind = "balance-mismatch"
	IssueDuplicateAccountType IssueKind = "duplicate-account-type"
)

type Issue struct {
	Kind   IssueKind `json:"kind"`
	Table  string    `json:"table"`
	Line   int       `json:"line"`
	Key    string    `json:"key,omitempty"`
	Detail string    `json:"detail"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s:%d %s %s: %s", i.Table, i.Line, i.Kind, i.Key, i.Detail)
}

// Report summarises a Check run. Row counts include every non-blank line.
type Report struct {
	Customers    int     `json:"customers"`
	Accounts     int     `json:"accounts"`
	Transactions int     `json:"transactions"`
	Users        int     `json:"users"`
	Issues       []Issue `json:"issues"`
}

func (r *Report) OK() bool { return len(r.Issues) == 0 }

func (r *Report) add(kind IssueKind, tbl string, line int, key, detail string) {
	r.Issues = append(r.Issues, Issue{Kind: kind, Table: tbl, Line: line, Key: key, Detail: detail})
}

// scanKeyed reports malformed rows and repeated keys of a keyed table and
// returns its records.
func scanKeyed[T any](r *Report, t *table[T]) ([]record[T], error) {
	recs, err := t.scan()
	if err != nil {
		return nil, err
	}
	first := make(map[string]int)
	for _, rec := range recs {
		if !rec.ok() {
			r.add(IssueMalformed, t.name, rec.line, "", rec.err.Error())
			continue
		}
		k := t.key(rec.value)
		if line, seen := first[k]; seen {
			r.add(IssueDuplicateKey, t.name, rec.line, k, fmt.Sprintf("first seen on line %d", line))
			continue
		}
		first[k] = rec.line
	}
	return recs, nil
}

// Check reads every table and reports the integrity problems the read path
// would otherwise hide: undecodable rows, duplicate keys, accounts without a
// customer, transactions without an account, and accounts whose balance
// differs from the balance recorded by their last transaction.
func (s *Store) Check(ctx context.Context) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r := &Report{}
	custRecs, err := scanKeyed(r, s.customers)
	if err != nil {
		return nil, err
	}
	acctRecs, err := scanKeyed(r, s.accounts)
	if err != nil {
		return nil, err
	}
	userRecs, err := scanKeyed(r, s.users)
	if err != nil {
		return nil, err
	}
	txnRecs, err := s.transactions.scan()
	if err != nil {
		return nil, err
	}
	r.Customers, r.Accounts, r.Transactions, r.Users = len(custRecs), len(acctRecs), len(txnRecs), len(userRecs)

	customers := make(map[string]bool)
	for _, rec := range custRecs {
		if rec.ok() {
			customers[rec.value.ID] = true
		}
	}

	// last version of every account, as the read path sees it
	accounts, err := s.accounts.load()
	if err != nil {
		return nil, err
	}
	byNumber := make(map[string]ledger.AccountState, len(accounts))
	types := make(map[string]string)
	for _, rec := range accounts {
		st := rec.value
		byNumber[st.Number] = st
		if !customers[st.CustomerID] {
			r.add(IssueDanglingCustomer, s.accounts.name, rec.line, st.Number, "unknown customer "+st.CustomerID)
			continue
		}
		tk := st.CustomerID + "/" + string(st.Type)
		if other, dup := types[tk]; dup {
			r.add(IssueDuplicateAccountType, s.accounts.name, rec.line, st.Number,
				fmt.Sprintf("%s already holds %s account %s", st.CustomerID, st.Type.Label(), other))
			continue
		}
		types[tk] = st.Number
	}

	ids := make(map[string]int)
	last := make(map[string]ledger.Transaction)
	for _, rec := range txnRecs {
		if !rec.ok() {
			r.add(IssueMalformed, s.transactions.name, rec.line, "", rec.err.Error())
			continue
		}
		t := rec.value
		if line, seen := ids[t.ID]; seen {
			r.add(IssueDuplicateKey, s.transactions.name, rec.line, t.ID, fmt.Sprintf("first seen on line %d", line))
		} else {
			ids[t.ID] = rec.line
		}
		if _, ok := byNumber[t.AccountNumber]; !ok {
			r.add(IssueOrphanTransaction, s.transactions.name, rec.line, t.ID, "unknown account "+t.AccountNumber)
			continue
		}
		last[t.AccountNumber] = t
	}

	for _, rec := range accounts {
		st := rec.value
		t, ok := last[st.Number]
		if !ok || t.BalanceAfter.Equal(st.Balance) {
			continue
		}
		r.add(IssueBalanceMismatch, s.accounts.name, rec.line, st.Number,
			fmt.Sprintf("balance %s, last transaction %s", ledger.FormatAmount(st.Balance), ledger.FormatAmount(t.BalanceAfter)))
	}
	return r, nil
}

// Compact rewrites the keyed tables with one row per key, keeping the last
// version at the position of the first. Undecodable rows are kept. It
// returns the number of rows removed.
func (s *Store) Compact(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, compact := range []func() (int, error){
		s.customers.compact,
		s.accounts.compact,
		s.users.compact,
	} {
		n, err := compact()
		if err != nil {
			return removed, err
		}
		removed += n
	}
	if removed > 0 {
		s.logger.Info("compacted store", "dir", s.dir, "removed", removed)
	}
	return removed, nil
}

func (t *table[T]) compact() (int, error) {
	recs, err := t.scan()
	if err != nil {
		return 0, err
	}
	lines := make([]string, 0, len(recs))
	index := make(map[string]int)
	for _, r := range recs {
		if !r.ok() {
			lines = append(lines, r.raw)
			continue
		}
		k := t.key(r.value)
		if i, seen := index[k]; seen {
			lines[i] = r.raw
			continue
		}
		index[k] = len(lines)
		lines = append(lines, r.raw)
	}
	removed := len(recs) - len(lines)
	if removed == 0 {
		return 0, nil
	}
	return removed, t.rewrite(lines)
}

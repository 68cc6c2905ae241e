package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxnDeposit    TransactionType = "DEPOSIT"
	TxnWithdrawal TransactionType = "WITHDRAWAL"
	TxnInterest   TransactionType = "INTEREST"
)

// ParseTransactionType validates a stored type tag.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(s); t {
	case TxnDeposit, TxnWithdrawal, TxnInterest:
		return t, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// Transaction is one balance-changing event. Amount is always a positive
// magnitude; its direction follows from Type.
type Transaction struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"account_number"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Posting pairs an account's new state with the transactions that produced it.
// Stores persist a batch of postings as one unit.
type Posting struct {
	Account      *Account
	Transactions []Transaction
}

// TimestampLayout is the on-disk timestamp format (yyyy-MM-dd HH:mm:ss).
const TimestampLayout = "2006-01-02 15:04:05"

// Clock supplies the current time for new transactions.
type Clock interface {
	Now() time.Time
}

// IDGenerator supplies unique transaction ids.
type IDGenerator interface {
	NextID() string
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// uuidGenerator issues time-ordered UUIDv7 ids, which stay unique across
// transactions created within the same millisecond.
type uuidGenerator struct{}

func (uuidGenerator) NextID() string { return uuid.Must(uuid.NewV7()).String() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// UUIDGenerator returns the default transaction id source.
func UUIDGenerator() IDGenerator { return uuidGenerator{} }

func newTransaction(ids IDGenerator, clock Clock, account string, typ TransactionType, amount, balanceAfter decimal.Decimal) Transaction {
	return Transaction{
		ID:            ids.NextID(),
		AccountNumber: account,
		Type:          typ,
		Amount:        amount,
		BalanceAfter:  balanceAfter,
		Timestamp:     clock.Now().UTC().Truncate(time.Second),
	}
}

package seed

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/simonvc/tellerledger/internal/bank"
	"github.com/simonvc/tellerledger/internal/ledger"
	"github.com/simonvc/tellerledger/internal/store"
)

func TestRunSeedsOnce(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.Open(t.TempDir(), store.WithLogger(logger))
	require.NoError(t, err)
	svc := bank.New(st, logger, bank.WithBcryptCost(bcrypt.MinCost))
	seeder := New(svc, logger)

	seeded, err := seeder.Run(ctx)
	require.NoError(t, err)
	require.True(t, seeded)

	customers, err := svc.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 4)
	require.Equal(t, "TechSolutions Ltd", customers[3].Name())
	require.Len(t, customers[0].Accounts(), 3)
	require.Len(t, customers[2].Accounts(), 2)

	acc1, err := svc.Account(ctx, "ACC001")
	require.NoError(t, err)
	require.Equal(t, "2000.00", ledger.FormatAmount(acc1.Balance()))
	require.Len(t, acc1.Transactions(), 1)

	acc10, err := svc.Account(ctx, "ACC010")
	require.NoError(t, err)
	require.Equal(t, "75000.00", ledger.FormatAmount(acc10.Balance()))
	require.Equal(t, "Self Employed", acc10.EmployerName)

	u, err := svc.Authenticate(ctx, "Sarah", "sarah123")
	require.NoError(t, err)
	require.Equal(t, "CUST003", u.CustomerID)
	admin, err := svc.Authenticate(ctx, "Admin", "admin123")
	require.NoError(t, err)
	require.True(t, admin.IsTeller())

	seeded, err = seeder.Run(ctx)
	require.NoError(t, err)
	require.False(t, seeded)
	customers, err = svc.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 4)

	report, err := st.Check(ctx)
	require.NoError(t, err)
	require.True(t, report.OK(), "%v", report.Issues)
}

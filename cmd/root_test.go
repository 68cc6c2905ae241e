package cmd

import (
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/simonvc/tellerledger/internal/ledger"
	"github.com/simonvc/tellerledger/internal/sqlstore"
	"github.com/simonvc/tellerledger/internal/store"
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	flagConfig, flagDataDir, flagBackend, flagLogLevel = "", "", "", ""
	rootCmd.SetArgs(args)
	return Execute()
}

func TestCommandsAgainstFileBackend(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("TELLER_BCRYPT_COST", "4")
	t.Setenv("TELLER_LOG_LEVEL", "error")
	data := filepath.Join(dir, "data")

	require.NoError(t, run(t, "--data-dir", data, "seed"))
	require.NoError(t, run(t, "--data-dir", data, "txn", "deposit", "ACC003", "100"))
	require.NoError(t, run(t, "--data-dir", data, "txn", "transfer", "ACC003", "ACC002", "250.50"))

	err := run(t, "--data-dir", data, "txn", "withdraw", "ACC001", "10")
	require.ErrorIs(t, err, ledger.ErrWithdrawalsNotAllowed)

	require.NoError(t, run(t, "--data-dir", data, "interest", "apply"))
	require.NoError(t, run(t, "--data-dir", data, "store", "check"))
	require.NoError(t, run(t, "--data-dir", data, "store", "compact"))
	require.NoError(t, run(t, "--data-dir", data, "user", "verify", "Jacob", "--password", "123445"))

	st, err := store.Open(data)
	require.NoError(t, err)
	a, err := st.FindAccountByNumber(t.Context(), "ACC003")
	require.NoError(t, err)
	require.Equal(t, "4849.50", ledger.FormatAmount(a.Balance()))
	txns, err := st.FindTransactionsByAccount(t.Context(), "ACC003")
	require.NoError(t, err)
	require.Len(t, txns, 3)
}

func TestCommandsAgainstSQLiteBackend(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("TELLER_BCRYPT_COST", "4")
	t.Setenv("TELLER_LOG_LEVEL", "error")
	data := filepath.Join(dir, "data")

	require.NoError(t, run(t, "--data-dir", data, "--backend", "sqlite", "seed"))
	require.FileExists(t, filepath.Join(data, "ledger.db"))
	require.NoError(t, run(t, "--data-dir", data, "--backend", "sqlite", "interest", "apply"))

	err := run(t, "--data-dir", data, "--backend", "sqlite", "store", "check")
	require.ErrorContains(t, err, "file backend")
	require.Nil(t, backend, "store left open after a failed command")

	db, err := sqlstore.Open(filepath.Join(data, "ledger.db"))
	require.NoError(t, err)
	defer db.Close()
	a, err := db.FindAccountByNumber(t.Context(), "ACC002")
	require.NoError(t, err)
	require.Equal(t, "6300.00", ledger.FormatAmount(a.Balance()))
}

func TestBadConfigFails(t *testing.T) {
	t.Chdir(t.TempDir())
	err := run(t, "--data-dir", "x", "--backend", "postgres", "customer", "list")
	require.ErrorContains(t, err, "unknown backend")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"Main Branch", 16, "Main Branch"},
		{"Gaborone Central Branch", 16, "Gaborone Centr.."},
		{"Görlitzer Straße Zweigstelle", 16, "Görlitzer Stra.."},
		{"ÅÅÅÅÅÅ", 5, "ÅÅÅ.."},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.n)
		require.Equal(t, tt.want, got)
		require.True(t, utf8.ValidString(got))
	}
}

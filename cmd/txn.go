package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simonvc/tellerledger/internal/ledger"
)

var txnCmd = &cobra.Command{
	Use:     "txn",
	Aliases: []string{"transaction"},
	Short:   "Move money and list transactions",
}

func amountArg(s string) (decimal.Decimal, error) {
	amount, err := ledger.ParseAmount(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return amount, nil
}

// txn deposit
var txnDepositCmd = &cobra.Command{
	Use:   "deposit [number] [amount]",
	Short: "Deposit into an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := amountArg(args[1])
		if err != nil {
			return err
		}
		a, err := svc.Deposit(cmd.Context(), args[0], amount)
		if err != nil {
			return err
		}
		fmt.Printf("Deposited %s into %s. Balance: %s\n",
			ledger.FormatAmount(amount), a.Number, ledger.FormatAmount(a.Balance()))
		return nil
	},
}

// txn withdraw
var txnWithdrawCmd = &cobra.Command{
	Use:   "withdraw [number] [amount]",
	Short: "Withdraw from an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := amountArg(args[1])
		if err != nil {
			return err
		}
		a, err := svc.Withdraw(cmd.Context(), args[0], amount)
		if err != nil {
			return err
		}
		fmt.Printf("Withdrew %s from %s. Balance: %s\n",
			ledger.FormatAmount(amount), a.Number, ledger.FormatAmount(a.Balance()))
		return nil
	},
}

// txn transfer
var txnTransferCmd = &cobra.Command{
	Use:   "transfer [from] [to] [amount]",
	Short: "Transfer between two accounts",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := amountArg(args[2])
		if err != nil {
			return err
		}
		src, dst, err := svc.Transfer(cmd.Context(), args[0], args[1], amount)
		if err != nil {
			return err
		}
		fmt.Printf("Transferred %s from %s to %s.\n", ledger.FormatAmount(amount), src.Number, dst.Number)
		fmt.Printf("  %-10s %15s\n", src.Number, ledger.FormatAmount(src.Balance()))
		fmt.Printf("  %-10s %15s\n", dst.Number, ledger.FormatAmount(dst.Balance()))
		return nil
	},
}

// txn list
var txnListAccount string

var txnListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions in the order they were recorded",
	RunE: func(cmd *cobra.Command, args []string) error {
		txns, err := svc.Transactions(cmd.Context(), txnListAccount)
		if err != nil {
			return err
		}
		if len(txns) == 0 {
			fmt.Println("No transactions found.")
			return nil
		}

		fmt.Printf("%-36s %-10s %-19s %-10s %14s %14s\n", "ID", "ACCOUNT", "DATE", "TYPE", "AMOUNT", "BALANCE")
		fmt.Printf("%-36s %-10s %-19s %-10s %14s %14s\n", "--", "-------", "----", "----", "------", "-------")
		for _, t := range txns {
			fmt.Printf("%-36s %-10s %-19s %-10s %14s %14s\n",
				t.ID,
				t.AccountNumber,
				t.Timestamp.Format(ledger.TimestampLayout),
				t.Type,
				ledger.FormatAmount(t.Amount),
				ledger.FormatAmount(t.BalanceAfter),
			)
		}
		return nil
	},
}

func init() {
	txnListCmd.Flags().StringVar(&txnListAccount, "account", "", "Filter by account number")

	txnCmd.AddCommand(txnDepositCmd)
	txnCmd.AddCommand(txnWithdrawCmd)
	txnCmd.AddCommand(txnTransferCmd)
	txnCmd.AddCommand(txnListCmd)

	rootCmd.AddCommand(txnCmd)
}

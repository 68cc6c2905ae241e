package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/tellerledger/internal/bank"
	"github.com/simonvc/tellerledger/internal/ledger"
)

var accountCmd = &cobra.Command{
	Use:     "account",
	Aliases: []string{"acct"},
	Short:   "Manage accounts",
}

// account open
var (
	acctOpenNumber          string
	acctOpenCustomer        string
	acctOpenType            string
	acctOpenBalance         string
	acctOpenBranch          string
	acctOpenEmployerName    string
	acctOpenEmployerAddress string
)

var accountOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Open an account for a customer",
	Long: "Open a savings, investment or checking account. Each customer holds at most one account " +
		"of each type, and the opening balance must meet the type's minimum (savings 50.00, investment 500.00).",
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := ledger.ParseAccountType(acctOpenType)
		if err != nil {
			return err
		}
		balance, err := ledger.ParseAmount(acctOpenBalance)
		if err != nil {
			return fmt.Errorf("invalid opening balance %q: %w", acctOpenBalance, err)
		}

		a, err := svc.OpenAccount(cmd.Context(), bank.OpenAccountRequest{
			Number:          acctOpenNumber,
			CustomerID:      acctOpenCustomer,
			Type:            typ,
			InitialBalance:  balance,
			Branch:          acctOpenBranch,
			EmployerName:    acctOpenEmployerName,
			EmployerAddress: acctOpenEmployerAddress,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Account opened: %s %s for %s, balance %s\n",
			a.Number, a.Type.Label(), a.CustomerID, ledger.FormatAmount(a.Balance()))
		return nil
	},
}

// account list
var acctListCustomer string

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts, err := svc.ListAccounts(cmd.Context(), acctListCustomer)
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			fmt.Println("No accounts found.")
			return nil
		}
		printAccounts(accounts)
		return nil
	},
}

// account get
var accountGetCmd = &cobra.Command{
	Use:   "get [number]",
	Short: "Show an account statement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := svc.Account(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printStatement(a)
		return nil
	},
}

func init() {
	accountOpenCmd.Flags().StringVar(&acctOpenNumber, "number", "", "Account number (assigned when empty)")
	accountOpenCmd.Flags().StringVar(&acctOpenCustomer, "customer", "", "Owning customer ID")
	accountOpenCmd.Flags().StringVar(&acctOpenType, "type", "", "Account type: savings, investment or checking")
	accountOpenCmd.Flags().StringVar(&acctOpenBalance, "balance", "0", "Opening balance")
	accountOpenCmd.Flags().StringVar(&acctOpenBranch, "branch", "Main Branch", "Branch")
	accountOpenCmd.Flags().StringVar(&acctOpenEmployerName, "employer", "", "Employer name (checking only)")
	accountOpenCmd.Flags().StringVar(&acctOpenEmployerAddress, "employer-address", "", "Employer address (checking only)")
	accountOpenCmd.MarkFlagRequired("customer")
	accountOpenCmd.MarkFlagRequired("type")

	accountListCmd.Flags().StringVar(&acctListCustomer, "customer", "", "Filter by customer ID")

	accountCmd.AddCommand(accountOpenCmd)
	accountCmd.AddCommand(accountListCmd)
	accountCmd.AddCommand(accountGetCmd)

	rootCmd.AddCommand(accountCmd)
}

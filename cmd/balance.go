package cmd

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simonvc/tellerledger/internal/ledger"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show deposits held, by account type",
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts, err := svc.ListAccounts(cmd.Context(), "")
		if err != nil {
			return err
		}
		printHoldings(accounts)
		return nil
	},
}

func printHoldings(accounts []*ledger.Account) {
	w := 60
	fmt.Println()
	fmt.Println(center("DEPOSITS HELD", w))
	fmt.Println(center(strings.Repeat("=", 20), w))
	fmt.Println()

	total := decimal.Zero
	for _, typ := range ledger.AllAccountTypes {
		sum := decimal.Zero
		var lines []*ledger.Account
		for _, a := range accounts {
			if a.Type == typ {
				lines = append(lines, a)
				sum = sum.Add(a.Balance())
			}
		}
		fmt.Printf("  %s\n", strings.ToUpper(typ.Label()))
		fmt.Printf("  %s\n", strings.Repeat("─", w-4))
		for _, a := range lines {
			fmt.Printf("  %-8s %-*s%15s\n", a.Number, w-26, a.CustomerID, ledger.FormatAmount(a.Balance()))
		}
		fmt.Printf("%*s%s\n", w-15, "", "─────────────")
		fmt.Printf("%-*s%15s\n", w-15, "Total "+typ.Label(), ledger.FormatAmount(sum))
		fmt.Println()
		total = total.Add(sum)
	}

	fmt.Printf("%*s%s\n", w-15, "", "═════════════")
	fmt.Printf("%-*s%15s\n", w-15, fmt.Sprintf("Total (%d accounts)", len(accounts)), ledger.FormatAmount(total))
}

func printCustomer(c *ledger.Customer) {
	fmt.Printf("ID:       %s\n", c.ID)
	fmt.Printf("Kind:     %s\n", c.Kind)
	fmt.Printf("Name:     %s\n", c.Name())
	if c.Kind == ledger.CustomerCompany {
		fmt.Printf("Reg No:   %s\n", c.CompanyNumber)
	} else {
		fmt.Printf("ID No:    %s\n", c.NationalID)
	}
	fmt.Printf("Address:  %s\n", c.Address)
	fmt.Printf("Phone:    %s\n", c.Phone)
	fmt.Printf("Email:    %s\n", c.Email)

	accounts := c.Accounts()
	if len(accounts) == 0 {
		fmt.Println("Accounts: none")
		return
	}
	fmt.Println("Accounts:")
	printAccounts(accounts)
}

func printAccounts(accounts []*ledger.Account) {
	fmt.Printf("  %-10s %-10s %-12s %-16s %15s\n", "NUMBER", "CUSTOMER", "TYPE", "BRANCH", "BALANCE")
	fmt.Printf("  %-10s %-10s %-12s %-16s %15s\n", "------", "--------", "----", "------", "-------")
	for _, a := range accounts {
		fmt.Printf("  %-10s %-10s %-12s %-16s %15s\n",
			a.Number, a.CustomerID, a.Type.Label(), truncate(a.Branch, 16), ledger.FormatAmount(a.Balance()))
	}
}

func printStatement(a *ledger.Account) {
	w := 70
	fmt.Println()
	fmt.Println(center("STATEMENT "+a.Number, w))
	fmt.Println(center(strings.Repeat("=", 20), w))
	fmt.Println()
	fmt.Printf("  Customer: %s\n", a.CustomerID)
	fmt.Printf("  Type:     %s (minimum %s, monthly rate %s)\n",
		a.Type.Label(), ledger.FormatAmount(a.MinimumBalance()), a.Type.MonthlyRate().String())
	fmt.Printf("  Branch:   %s\n", a.Branch)
	if a.EmployerName != "" {
		fmt.Printf("  Employer: %s, %s\n", a.EmployerName, a.EmployerAddress)
	}
	fmt.Println()

	fmt.Printf("  %-19s %-10s %15s %15s\n", "DATE", "TYPE", "AMOUNT", "BALANCE")
	fmt.Printf("  %s\n", strings.Repeat("─", w-4))
	for _, t := range a.Transactions() {
		amount := ledger.FormatAmount(t.Amount)
		if t.Type == ledger.TxnWithdrawal {
			amount = "(" + amount + ")"
		}
		fmt.Printf("  %-19s %-10s %15s %15s\n",
			t.Timestamp.Format(ledger.TimestampLayout), t.Type, amount, ledger.FormatAmount(t.BalanceAfter))
	}
	fmt.Printf("  %s\n", strings.Repeat("─", w-4))
	fmt.Printf("  %-46s %15s\n", "BALANCE", ledger.FormatAmount(a.Balance()))
}

func center(s string, w int) string {
	if len(s) >= w {
		return s
	}
	pad := (w - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-2]) + ".."
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

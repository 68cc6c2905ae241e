package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/tellerledger/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample customers, accounts and users into an empty ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		seeded, err := seed.New(svc, logger).Run(cmd.Context())
		if err != nil {
			return err
		}
		if !seeded {
			fmt.Println("Ledger already has customers; nothing seeded.")
			return nil
		}
		fmt.Println("Sample data loaded.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/tellerledger/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Maintain the flat-file tables",
}

func fileStore() (*store.Store, error) {
	fs, ok := backend.(*store.Store)
	if !ok {
		return nil, errors.New("store commands need the file backend")
	}
	return fs, nil
}

var storeCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report malformed rows, duplicate keys, orphans and balance mismatches",
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := fileStore()
		if err != nil {
			return err
		}
		r, err := fs.Check(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Rows: %d customers, %d accounts, %d transactions, %d users\n",
			r.Customers, r.Accounts, r.Transactions, r.Users)
		if r.OK() {
			fmt.Println("\n  [CLEAN]")
			return nil
		}
		fmt.Printf("\n%d issue(s):\n", len(r.Issues))
		for _, i := range r.Issues {
			fmt.Printf("  %s\n", i)
		}
		return fmt.Errorf("store check found %d issue(s)", len(r.Issues))
	},
}

var storeCompactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Rewrite the keyed tables with duplicate rows collapsed",
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := fileStore()
		if err != nil {
			return err
		}
		n, err := fs.Compact(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Compacted %s: %d duplicate row(s) removed.\n", fs.Dir(), n)
		return nil
	},
}

func init() {
	storeCmd.AddCommand(storeCheckCmd)
	storeCmd.AddCommand(storeCompactCmd)

	rootCmd.AddCommand(storeCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/tellerledger/internal/ledger"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage login users",
}

var (
	userPassword string
	userRole     string
	userCustomer string
)

var userAddCmd = &cobra.Command{
	Use:   "add [username]",
	Short: "Create a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := ledger.ParseRole(userRole)
		if err != nil {
			return err
		}
		u, err := svc.RegisterUser(cmd.Context(), args[0], userPassword, role, userCustomer)
		if err != nil {
			return err
		}
		fmt.Printf("User created: %s (%s)", u.Username, u.Role)
		if u.CustomerID != "" {
			fmt.Printf(" linked to %s", u.CustomerID)
		}
		fmt.Println()
		return nil
	},
}

var userLinkCmd = &cobra.Command{
	Use:   "link [username] [customer-id]",
	Short: "Link a user to a customer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := svc.LinkCustomer(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("User %s linked to %s\n", u.Username, u.CustomerID)
		return nil
	},
}

var userVerifyCmd = &cobra.Command{
	Use:   "verify [username]",
	Short: "Check a user's password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := svc.Authenticate(cmd.Context(), args[0], userPassword)
		if err != nil {
			return err
		}
		fmt.Printf("OK: %s (%s)\n", u.Username, u.Role)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := svc.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Println("No users found.")
			return nil
		}
		fmt.Printf("%-20s %-9s %s\n", "USERNAME", "ROLE", "CUSTOMER")
		fmt.Printf("%-20s %-9s %s\n", "--------", "----", "--------")
		for _, u := range users {
			fmt.Printf("%-20s %-9s %s\n", u.Username, u.Role, u.CustomerID)
		}
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringVar(&userPassword, "password", "", "Password")
	userAddCmd.Flags().StringVar(&userRole, "role", string(ledger.RoleCustomer), "Role: customer or teller")
	userAddCmd.Flags().StringVar(&userCustomer, "customer", "", "Customer ID to link")
	userAddCmd.MarkFlagRequired("password")

	userVerifyCmd.Flags().StringVar(&userPassword, "password", "", "Password")
	userVerifyCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userLinkCmd)
	userCmd.AddCommand(userVerifyCmd)
	userCmd.AddCommand(userListCmd)

	rootCmd.AddCommand(userCmd)
}

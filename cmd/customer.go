package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/tellerledger/internal/ledger"
)

var customerCmd = &cobra.Command{
	Use:     "customer",
	Aliases: []string{"cust"},
	Short:   "Manage customers",
}

var (
	custID      string
	custAddress string
	custPhone   string
	custEmail   string

	custFirstName  string
	custSurname    string
	custNationalID string

	custCompanyName   string
	custCompanyNumber string
)

func contactFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&custAddress, "address", "", "Postal address")
	cmd.Flags().StringVar(&custPhone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&custEmail, "email", "", "Email address")
}

func flagContact() ledger.Contact {
	return ledger.Contact{Address: custAddress, Phone: custPhone, Email: custEmail}
}

// customer add-individual
var customerAddIndividualCmd = &cobra.Command{
	Use:   "add-individual",
	Short: "Register an individual customer",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ledger.NewIndividual(custID, custFirstName, custSurname, custNationalID, flagContact())
		if err != nil {
			return err
		}
		return registerCustomer(cmd, c)
	},
}

// customer add-company
var customerAddCompanyCmd = &cobra.Command{
	Use:   "add-company",
	Short: "Register a company customer",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ledger.NewCompany(custID, custCompanyName, custCompanyNumber, flagContact())
		if err != nil {
			return err
		}
		return registerCustomer(cmd, c)
	},
}

func registerCustomer(cmd *cobra.Command, c *ledger.Customer) error {
	created, err := svc.RegisterCustomer(cmd.Context(), c)
	if err != nil {
		return err
	}
	fmt.Printf("Customer registered: %s (%s) %s\n", created.ID, created.Kind, created.Name())
	return nil
}

// customer list
var customerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List customers",
	RunE: func(cmd *cobra.Command, args []string) error {
		customers, err := svc.ListCustomers(cmd.Context())
		if err != nil {
			return err
		}
		if len(customers) == 0 {
			fmt.Println("No customers found.")
			return nil
		}

		fmt.Printf("%-10s %-11s %-30s %-9s %s\n", "ID", "KIND", "NAME", "ACCOUNTS", "PHONE")
		fmt.Printf("%-10s %-11s %-30s %-9s %s\n", "--", "----", "----", "--------", "-----")
		for _, c := range customers {
			fmt.Printf("%-10s %-11s %-30s %-9d %s\n", c.ID, c.Kind, truncate(c.Name(), 30), len(c.Accounts()), c.Phone)
		}
		return nil
	},
}

// customer get
var customerGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a customer and their accounts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := svc.FindCustomerByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printCustomer(c)
		return nil
	},
}

// customer by-account
var customerByAccountCmd = &cobra.Command{
	Use:   "by-account [number]",
	Short: "Show the customer that owns an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := svc.FindCustomerByAccount(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printCustomer(c)
		return nil
	},
}

// customer update-contact
var customerUpdateContactCmd = &cobra.Command{
	Use:   "update-contact [id]",
	Short: "Change a customer's address, phone or email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := svc.FindCustomerByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		contact := c.Contact
		if cmd.Flags().Changed("address") {
			contact.Address = custAddress
		}
		if cmd.Flags().Changed("phone") {
			contact.Phone = custPhone
		}
		if cmd.Flags().Changed("email") {
			contact.Email = custEmail
		}
		updated, err := svc.UpdateContact(cmd.Context(), c.ID, contact)
		if err != nil {
			return err
		}
		printCustomer(updated)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{customerAddIndividualCmd, customerAddCompanyCmd} {
		c.Flags().StringVar(&custID, "id", "", "Customer ID (assigned when empty)")
		contactFlags(c)
	}
	contactFlags(customerUpdateContactCmd)

	customerAddIndividualCmd.Flags().StringVar(&custFirstName, "first-name", "", "First name")
	customerAddIndividualCmd.Flags().StringVar(&custSurname, "surname", "", "Surname")
	customerAddIndividualCmd.Flags().StringVar(&custNationalID, "national-id", "", "National ID number")
	customerAddIndividualCmd.MarkFlagRequired("first-name")
	customerAddIndividualCmd.MarkFlagRequired("surname")
	customerAddIndividualCmd.MarkFlagRequired("national-id")

	customerAddCompanyCmd.Flags().StringVar(&custCompanyName, "name", "", "Company name")
	customerAddCompanyCmd.Flags().StringVar(&custCompanyNumber, "number", "", "Company registration number")
	customerAddCompanyCmd.MarkFlagRequired("name")
	customerAddCompanyCmd.MarkFlagRequired("number")

	customerCmd.AddCommand(customerAddIndividualCmd)
	customerCmd.AddCommand(customerAddCompanyCmd)
	customerCmd.AddCommand(customerListCmd)
	customerCmd.AddCommand(customerGetCmd)
	customerCmd.AddCommand(customerByAccountCmd)
	customerCmd.AddCommand(customerUpdateContactCmd)

	rootCmd.AddCommand(customerCmd)
}

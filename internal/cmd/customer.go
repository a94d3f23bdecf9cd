package cmd

import (
	"fmt"
	"os"

	"github.com/matthieukhl/orderdesk/internal/models"
	"github.com/matthieukhl/orderdesk/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	asJSON        bool
	customerQuery string

	customerFirst  string
	customerLast   string
	customerMiddle string
	customerPhone  string
	customerEmail  string
)

var customerCmd = &cobra.Command{
	Use:     "customer",
	Aliases: []string{"customers"},
	Short:   "List, add, edit and delete customers",
}

var customerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List customers, optionally filtered by a search string",
	Args:  cobra.NoArgs,
	RunE:  listCustomers,
}

var customerShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one customer",
	Args:  cobra.ExactArgs(1),
	RunE:  showCustomer,
}

var customerAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a customer",
	Example: `  orderdesk customer add --first Ivan --last Petrov --phone "+7 (912) 345-67-89"
  orderdesk customer add --first Alice --email alice@example.com`,
	Args: cobra.NoArgs,
	RunE: addCustomer,
}

var customerEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the given fields of a customer",
	Long: `Change the given fields of a customer. Fields whose flag is not set
keep their value; pass an empty string to clear an optional field.`,
	Args: cobra.ExactArgs(1),
	RunE: editCustomer,
}

var customerDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a customer who has no orders",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteCustomer,
}

func init() {
	rootCmd.AddCommand(customerCmd)
	customerCmd.AddCommand(customerListCmd, customerShowCmd, customerAddCmd, customerEditCmd, customerDeleteCmd)

	customerListCmd.Flags().StringVarP(&customerQuery, "query", "q", "", "Search names, phone and email")
	customerListCmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	customerShowCmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	bindCustomerFlags(customerAddCmd.Flags())
	bindCustomerFlags(customerEditCmd.Flags())
	customerAddCmd.MarkFlagRequired("first")
}

func bindCustomerFlags(fs *pflag.FlagSet) {
	fs.StringVar(&customerFirst, "first", "", "First name")
	fs.StringVar(&customerLast, "last", "", "Last name")
	fs.StringVar(&customerMiddle, "middle", "", "Middle name")
	fs.StringVar(&customerPhone, "phone", "", "Phone, e.g. +7 (912) 345-67-89")
	fs.StringVar(&customerEmail, "email", "", "Email address")
}

func listCustomers(cmd *cobra.Command, args []string) error {
	s, err := openApp()
	if err != nil {
		return err
	}
	defer s.Close()

	customers, err := s.app.Customers(cmd.Context(), store.CustomerFilter{Query: customerQuery})
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(os.Stdout, customers)
	}
	if len(customers) == 0 {
		fmt.Println("📭 No customers found")
		return nil
	}
	return printCustomers(os.Stdout, customers)
}

func showCustomer(cmd *cobra.Command, args []string) error {
	id, err := parseID(models.EntityCustomer, args[0])
	if err != nil {
		return err
	}

	s, err := openApp()
	if err != nil {
		return err
	}
	defer s.Close()

	c, err := s.app.Customer(cmd.Context(), id)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(os.Stdout, c)
	}
	return printCustomer(os.Stdout, c)
}

func addCustomer(cmd *cobra.Command, args []string) error {
	s, err := openApp()
	if err != nil {
		return err
	}
	defer s.Close()

	c, err := s.app.AddCustomer(cmd.Context(), models.Customer{
		FirstName:  customerFirst,
		LastName:   customerLast,
		MiddleName: customerMiddle,
		Phone:      customerPhone,
		Email:      customerEmail,
	})
	if err != nil {
		return err
	}
	fmt.Printf("✅ Customer #%d %s added\n", c.ID, c.DisplayName())
	return nil
}

func editCustomer(cmd *cobra.Command, args []string) error {
	id, err := parseID(models.EntityCustomer, args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	var patch models.CustomerPatch
	if flags.Changed("first") {
		patch.FirstName = &customerFirst
	}
	if flags.Changed("last") {
		patch.LastName = &customerLast
	}
	if flags.Changed("middle") {
		patch.MiddleName = &customerMiddle
	}
	if flags.Changed("phone") {
		patch.Phone = &customerPhone
	}
	if flags.Changed("email") {
		patch.Email = &customerEmail
	}

	s, err := openApp()
	if err != nil {
		return err
	}
	defer s.Close()

	c, err := s.app.EditCustomer(cmd.Context(), id, patch)
	if err != nil {
		return err
	}
	fmt.Printf("✅ Customer #%d %s updated\n", c.ID, c.DisplayName())
	return nil
}

func deleteCustomer(cmd *cobra.Command, args []string) error {
	id, err := parseID(models.EntityCustomer, args[0])
	if err != nil {
		return err
	}

	s, err := openApp()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.app.RemoveCustomer(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Printf("🗑️  Customer #%d deleted\n", id)
	return nil
}

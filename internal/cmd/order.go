package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/matthieukhl/orderdesk/internal/app"
	"github.com/matthieukhl/orderdesk/internal/models"
	"github.com/matthieukhl/orderdesk/internal/store"
	"github.com/spf13/cobra"
)

var (
	orderCustomer int64
	orderStatus   string
	orderFrom     string
	orderTo       string
	orderSort     string
	orderDesc     bool

	orderItems []string
	orderNotes string
)

var orderCmd = &cobra.Command{
	Use:     "order",
	Aliases: []string{"orders"},
	Short:   "Place, edit, cancel and delete orders",
}

var orderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders with optional filters and sorting",
	Example: `  orderdesk order list --customer 3 --from 2024-03-01 --to 2024-03-31
  orderdesk order list --sort total --desc`,
	Args: cobra.NoArgs,
	RunE: listOrders,
}

var orderShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one order with its items",
	Args:  cobra.ExactArgs(1),
	RunE:  showOrder,
}

var orderAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Place an order",
	Long: `Place an order for a customer. Each --item is PRODUCT_ID:QUANTITY.
Items are priced from the catalog and their quantity is taken from stock.`,
	Example: `  orderdesk order add --customer 1 --item 4:2 --item 7:1 --notes "Gift wrap"`,
	Args:    cobra.NoArgs,
	RunE:    addOrder,
}

var orderEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change status or notes, or replace the items of an order",
	Long: `Change status or notes, or replace the items of an order. Passing any
--item replaces the whole item list; stock is moved accordingly.`,
	Args: cobra.ExactArgs(1),
	RunE: editOrder,
}

var orderCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel an order and return its items to stock",
	Args:  cobra.ExactArgs(1),
	RunE:  cancelOrder,
}

var orderDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an order and return its items to stock",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteOrder,
}

func init() {
	rootCmd.AddCommand(orderCmd)
	orderCmd.AddCommand(orderListCmd, orderShowCmd, orderAddCmd, orderEditCmd, orderCancelCmd, orderDeleteCmd)

	lf := orderListCmd.Flags()
	lf.Int64Var(&orderCustomer, "customer", 0, "Only orders of this customer id")
	lf.StringVar(&orderStatus, "status", "", "Only orders in this status")
	lf.StringVar(&orderFrom, "from", "", "First day, e.g. 2024-03-01")
	lf.StringVar(&orderTo, "to", "", "Last day, inclusive")
	lf.StringVar(&orderSort, "sort", "date", "Sort by date, total or customer")
	lf.BoolVar(&orderDesc, "desc", false, "Sort descending")
	lf.BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	orderShowCmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	af := orderAddCmd.Flags()
	af.Int64Var(&orderCustomer, "customer", 0, "Customer id")
	af.StringArrayVar(&orderItems, "item", nil, "PRODUCT_ID:QUANTITY, repeatable")
	af.StringVar(&orderStatus, "status", "", "Initial status (default pending)")
	af.StringVar(&orderNotes, "notes", "", "Free text notes")
	orderAddCmd.MarkFlagRequired("customer")
	orderAddCmd.MarkFlagRequired("item")

	ef := orderEditCmd.Flags()
	ef.StringArrayVar(&orderItems, "item", nil, "PRODUCT_ID:QUANTITY, repeatable; replaces all items")
	ef.StringVar(&orderStatus, "status", "", "New status")
	ef.StringVar(&orderNotes, "notes", "", "New notes")
}

// parseItems reads PRODUCT_ID:QUANTITY pairs.
func parseItems(pairs []string) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(pairs))
	for i, raw := range pairs {
		field := fmt.Sprintf("items[%d]", i)
		idPart, qtyPart, ok := strings.Cut(strings.TrimSpace(raw), ":")
		if !ok {
			return nil, models.NewValidationError(models.EntityOrder, field, "must look like PRODUCT_ID:QUANTITY")
		}
		productID, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
		if err != nil {
			return nil, models.NewValidationError(models.EntityOrder, field+".product_id", "must be a number")
		}
		qty, err := strconv.Atoi(strings.TrimSpace(qtyPart))
		if err != nil {
			return nil, models.NewValidationError(models.EntityOrder, field+".quantity", "must be a whole number")
		}
		items = append(items, models.OrderItem{ProductID: productID, Quantity: qty})
	}
	return items, nil
}

func listFilter() (store.OrderFilter, error) {
	var (
		f   store.OrderFilter
		err error
	)
	f.CustomerID = orderCustomer
	if orderStatus != "" {
		if f.Status, err = models.ParseOrderStatus(orderStatus); err != nil {
			return f, err
		}
	}
	if f.From, f.To, err = store.DayRange(orderFrom, orderTo); err != nil {
		return f, err
	}
	if f.SortBy, err = store.ParseOrderSort(orderSort); err != nil {
		return f, err
	}
	f.Desc = orderDesc
	return f, nil
}

func customerNames(ctx context.Context, a *app.App) (map[int64]string, error) {
	customers, err := a.Customers(ctx, store.CustomerFilter{})
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.DisplayName()
	}
	return names, nil
}

func productNames(ctx context.Context, a *app.App) (map[int64]string, error) {
	products, err := a.Products(ctx, store.ProductFilter{})
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	return names, nil
}

func listOrders(cmd *cobra.Command, args []string) error {
	filter, err := listFilter()
	if err != nil {
		return err
	}

	s, err := openApp()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	orders, err := s.app.Orders(ctx, filter)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(os.Stdout, orders)
	}
	if len(orders) == 0 {
		fmt.Println("📭 No orders found")
		return nil
	}

	names, err := customerNames(ctx, s.app)
	if err != nil {
		return err
	}
	return printOrders(os.Stdout, orders, names)
}

func showOrder(cmd *cobra.Command, args []string) error {
	id, err := parseID(models.EntityOrder, args[0])
	if err != nil {
		return err
	}

	s, err := openApp()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	o, err := s.app.Order(ctx, id)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(os.Stdout, o)
	}

	customers, err := customerNames(ctx, s.app)
	if err != nil {
		return err
	}
	products, err := productNames(ctx, s.app)
	if err != nil {
		return err
	}
	return printOrder(os.Stdout, o, nameOf(customers, o.CustomerID), products)
}

func addOrder(cmd *cobra.Command, args []string) error {
	items, err := parseItems(orderItems)
	if err != nil {
		return err
	}
	status := models.OrderStatusPending
	if orderStatus != "" {
		if status, err = models.ParseOrderStatus(orderStatus); err != nil {
			return err
		}
	}

	s, err := openApp()
	if err != nil {
		return err
	}
	defer s.Close()

	o, err := s.app.PlaceOrder(cmd.Context(), models.Order{
		CustomerID: orderCustomer,
		Status:     status,
		Notes:      orderNotes,
		Items:      items,
	})
	if err != nil {
		return err
	}
	fmt.Printf("✅ Order #%d placed: %d item(s), total %s\n", o.ID, o.Quantity(), money(o.Total()))
	return nil
}

func editOrder(cmd *cobra.Command, args []string) error {
	id, err := parseID(models.EntityOrder, args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	var patch models.OrderPatch
	if flags.Changed("status") {
		status, err := models.ParseOrderStatus(orderStatus)
		if err != nil {
			return err
		}
		patch.Status = &status
	}
	if flags.Changed("notes") {
		patch.Notes = &orderNotes
	}
	if flags.Changed("item") {
		if patch.Items, err = parseItems(orderItems); err != nil {
			return err
		}
	}

	s, err := openApp()
	if err != nil {
		return err
	}
	defer s.Close()

	o, err := s.app.EditOrder(cmd.Context(), id, patch)
	if err != nil {
		return err
	}
	fmt.Printf("✅ Order #%d updated: %s, total %s\n", o.ID, o.Status, money(o.Total()))
	return nil
}

func cancelOrder(cmd *cobra.Command, args []string) error {
	id, err := parseID(models.EntityOrder, args[0])
	if err != nil {
		return err
	}

	s, err := openApp()
	if err != nil {
		return err
	}
	defer s.Close()

	o, err := s.app.CancelOrder(cmd.Context(), id)
	if err != nil {
		return err
	}
	fmt.Printf("🚫 Order #%d cancelled, %d unit(s) returned to stock\n", o.ID, o.Quantity())
	return nil
}

func deleteOrder(cmd *cobra.Command, args []string) error {
	id, err := parseID(models.EntityOrder, args[0])
	if err != nil {
		return err
	}

	s, err := openApp()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.app.RemoveOrder(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Printf("🗑️  Order #%d deleted\n", id)
	return nil
}

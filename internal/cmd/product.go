package cmd

import (
	"fmt"
	"os"

	"github.com/matthieukhl/orderdesk/internal/models"
	"github.com/matthieukhl/orderdesk/internal/store"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	productQuery   string
	productInStock bool

	productName  string
	productUnit  string
	productPrice string
	productStock int
)

var productCmd = &cobra.Command{
	Use:     "product",
	Aliases: []string{"products"},
	Short:   "List, add, edit and delete catalog products",
}

var productListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	Args:  cobra.NoArgs,
	RunE:  listProducts,
}

var productShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE:  showProduct,
}

var productAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Add a product to the catalog",
	Example: `  orderdesk product add --name Widget --price 9.99 --stock 10`,
	Args:    cobra.NoArgs,
	RunE:    addProduct,
}

var productEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the given fields of a product",
	Long: `Change the given fields of a product. Existing orders keep the price
they were placed with.`,
	Args: cobra.ExactArgs(1),
	RunE: editProduct,
}

var productDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a product that no order refers to",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteProduct,
}

func init() {
	rootCmd.AddCommand(productCmd)
	productCmd.AddCommand(productListCmd, productShowCmd, productAddCmd, productEditCmd, productDeleteCmd)

	productListCmd.Flags().StringVarP(&productQuery, "query", "q", "", "Search name and unit")
	productListCmd.Flags().BoolVar(&productInStock, "in-stock", false, "Only products with stock left")
	productListCmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	productShowCmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	bindProductFlags(productAddCmd.Flags())
	bindProductFlags(productEditCmd.Flags())
	productAddCmd.MarkFlagRequired("name")
	productAddCmd.MarkFlagRequired("price")
}

func bindProductFlags(fs *pflag.FlagSet) {
	fs.StringVar(&productName, "name", "", "Product name")
	fs.StringVar(&productUnit, "unit", models.DefaultUnit, "Unit of measure")
	fs.StringVar(&productPrice, "price", "", "Unit price, e.g. 9.99")
	fs.IntVar(&productStock, "stock", 0, "Units in stock")
}

func parsePrice(s string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, models.NewValidationError(models.EntityProduct, "price", "must be a number")
	}
	return price, nil
}

func listProducts(cmd *cobra.Command, args []string) error {
	s, err := openApp()
	if err != nil {
		return err
	}
	defer s.Close()

	products, err := s.app.Products(cmd.Context(), store.ProductFilter{
		Query:       productQuery,
		InStockOnly: productInStock,
	})
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(os.Stdout, products)
	}
	if len(products) == 0 {
		fmt.Println("📭 No products found")
		return nil
	}
	return printProducts(os.Stdout, products)
}

func showProduct(cmd *cobra.Command, args []string) error {
	id, err := parseID(models.EntityProduct, args[0])
	if err != nil {
		return err
	}

	s, err := openApp()
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := s.app.Product(cmd.Context(), id)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(os.Stdout, p)
	}
	return printProduct(os.Stdout, p)
}

func addProduct(cmd *cobra.Command, args []string) error {
	price, err := parsePrice(productPrice)
	if err != nil {
		return err
	}

	s, err := openApp()
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := s.app.AddProduct(cmd.Context(), models.Product{
		Name:  productName,
		Unit:  productUnit,
		Price: price,
		Stock: productStock,
	})
	if err != nil {
		return err
	}
	fmt.Printf("✅ Product #%d %s added (%s, %d in stock)\n", p.ID, p.Name, money(p.Price), p.Stock)
	return nil
}

func editProduct(cmd *cobra.Command, args []string) error {
	id, err := parseID(models.EntityProduct, args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	var patch models.ProductPatch
	if flags.Changed("name") {
		patch.Name = &productName
	}
	if flags.Changed("unit") {
		patch.Unit = &productUnit
	}
	if flags.Changed("price") {
		price, err := parsePrice(productPrice)
		if err != nil {
			return err
		}
		patch.Price = &price
	}
	if flags.Changed("stock") {
		patch.Stock = &productStock
	}

	s, err := openApp()
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := s.app.EditProduct(cmd.Context(), id, patch)
	if err != nil {
		return err
	}
	fmt.Printf("✅ Product #%d %s updated (%s, %d in stock)\n", p.ID, p.Name, money(p.Price), p.Stock)
	return nil
}

func deleteProduct(cmd *cobra.Command, args []string) error {
	id, err := parseID(models.EntityProduct, args[0])
	if err != nil {
		return err
	}

	s, err := openApp()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.app.RemoveProduct(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Printf("🗑️  Product #%d deleted\n", id)
	return nil
}

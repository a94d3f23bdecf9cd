package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/matthieukhl/orderdesk/internal/models"
	"github.com/shopspring/decimal"
)

const dateTime = "2006-01-02 15:04"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func stamp(t time.Time) string {
	return t.UTC().Format(dateTime)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// parseID reads a positional record id.
func parseID(entity, arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q: must be a positive number", entity, arg)
	}
	return id, nil
}

func printCustomers(w io.Writer, customers []models.Customer) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tEMAIL\tCREATED")
	for _, c := range customers {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.DisplayName(), c.Phone, c.Email, stamp(c.CreatedAt))
	}
	return tw.Flush()
}

func printCustomer(w io.Writer, c *models.Customer) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%d\n", c.ID)
	fmt.Fprintf(tw, "Last name:\t%s\n", c.LastName)
	fmt.Fprintf(tw, "First name:\t%s\n", c.FirstName)
	fmt.Fprintf(tw, "Middle name:\t%s\n", c.MiddleName)
	fmt.Fprintf(tw, "Phone:\t%s\n", c.Phone)
	fmt.Fprintf(tw, "Email:\t%s\n", c.Email)
	fmt.Fprintf(tw, "Created:\t%s\n", stamp(c.CreatedAt))
	return tw.Flush()
}

func printProducts(w io.Writer, products []models.Product) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tUNIT\tPRICE\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Unit, money(p.Price), p.Stock)
	}
	return tw.Flush()
}

func printProduct(w io.Writer, p *models.Product) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%d\n", p.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", p.Name)
	fmt.Fprintf(tw, "Unit:\t%s\n", p.Unit)
	fmt.Fprintf(tw, "Price:\t%s\n", money(p.Price))
	fmt.Fprintf(tw, "Stock:\t%d\n", p.Stock)
	fmt.Fprintf(tw, "Created:\t%s\n", stamp(p.CreatedAt))
	return tw.Flush()
}

func printOrders(w io.Writer, orders []models.Order, customers map[int64]string) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tCUSTOMER\tSTATUS\tITEMS\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			o.ID, stamp(o.CreatedAt), nameOf(customers, o.CustomerID), o.Status, o.Quantity(), money(o.Total()))
	}
	return tw.Flush()
}

func printOrder(w io.Writer, o *models.Order, customer string, products map[int64]string) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Order:\t#%d\n", o.ID)
	fmt.Fprintf(tw, "Customer:\t%s (#%d)\n", customer, o.CustomerID)
	fmt.Fprintf(tw, "Status:\t%s\n", o.Status)
	fmt.Fprintf(tw, "Created:\t%s\n", stamp(o.CreatedAt))
	if o.Notes != "" {
		fmt.Fprintf(tw, "Notes:\t%s\n", o.Notes)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = newTable(w)
	fmt.Fprintln(tw, "PRODUCT\tQTY\tPRICE\tLINE TOTAL")
	for _, item := range o.Items {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
			nameOf(products, item.ProductID), item.Quantity, money(item.Price), money(item.LineTotal()))
	}
	fmt.Fprintf(tw, "\t\t\t%s\n", money(o.Total()))
	return tw.Flush()
}

func nameOf(names map[int64]string, id int64) string {
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("#%d", id)
}

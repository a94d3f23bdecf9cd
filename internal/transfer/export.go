package transfer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/matthieukhl/orderdesk/internal/models"
	"github.com/matthieukhl/orderdesk/internal/store"
	"gopkg.in/yaml.v3"
)

var (
	customerHeader = []string{"id", "last_name", "first_name", "middle_name", "phone", "email", "created_at"}
	productHeader  = []string{"id", "name", "unit", "price", "stock", "created_at"}
	// one row per line item; order fields repeat on every row of the order
	orderHeader = []string{"order_id", "customer_id", "status", "notes", "created_at", "product_id", "quantity", "price", "line_total", "order_total"}
)

// Export writes every record of one entity from snap to w.
func Export(w io.Writer, format Format, entity string, snap *store.Snapshot) error {
	var records any
	switch entity {
	case models.EntityCustomer:
		records = snap.Customers
	case models.EntityProduct:
		records = snap.Products
	case models.EntityOrder:
		records = snap.Orders
	default:
		return inputError("unknown entity %q", entity)
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatCSV:
		return exportCSV(w, entity, snap)
	default:
		return inputError("unsupported format %q", format)
	}
}

func exportCSV(w io.Writer, entity string, snap *store.Snapshot) error {
	cw := csv.NewWriter(w)
	var rows [][]string

	switch entity {
	case models.EntityCustomer:
		rows = append(rows, customerHeader)
		for _, c := range snap.Customers {
			rows = append(rows, []string{
				id(c.ID), c.LastName, c.FirstName, c.MiddleName, c.Phone, c.Email, stamp(c.CreatedAt),
			})
		}
	case models.EntityProduct:
		rows = append(rows, productHeader)
		for _, p := range snap.Products {
			rows = append(rows, []string{
				id(p.ID), p.Name, p.Unit, p.Price.StringFixed(2), strconv.Itoa(p.Stock), stamp(p.CreatedAt),
			})
		}
	case models.EntityOrder:
		rows = append(rows, orderHeader)
		for _, o := range snap.Orders {
			total := o.Total().StringFixed(2)
			for _, it := range o.Items {
				rows = append(rows, []string{
					id(o.ID), id(o.CustomerID), string(o.Status), o.Notes, stamp(o.CreatedAt),
					id(it.ProductID), strconv.Itoa(it.Quantity), it.Price.StringFixed(2),
					it.LineTotal().StringFixed(2), total,
				})
			}
		}
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

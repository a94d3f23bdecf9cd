package store

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/matthieukhl/orderdesk/internal/models"
	"github.com/shopspring/decimal"
)

type OrderSort string

const (
	SortByDate     OrderSort = "date"
	SortByTotal    OrderSort = "total"
	SortByCustomer OrderSort = "customer"
)

func ParseOrderSort(s string) (OrderSort, error) {
	switch by := OrderSort(strings.ToLower(strings.TrimSpace(s))); by {
	case "":
		return SortByDate, nil
	case SortByDate, SortByTotal, SortByCustomer:
		return by, nil
	default:
		return "", models.NewValidationError(models.EntityOrder, "sort", "must be one of: date, total, customer")
	}
}

type OrderFilter struct {
	CustomerID int64
	Status     models.OrderStatus
	// From is inclusive, To is exclusive. Zero values leave the range open.
	From   time.Time
	To     time.Time
	SortBy OrderSort
	Desc   bool
}

func (f OrderFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.CustomerID > 0 {
		conds = append(conds, "o.customer_id = ?")
		args = append(args, f.CustomerID)
	}
	if f.Status != "" {
		conds = append(conds, "o.status = ?")
		args = append(args, string(f.Status))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (f OrderFilter) inRange(t time.Time) bool {
	if !f.From.IsZero() && t.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !t.Before(f.To) {
		return false
	}
	return true
}

// ParseDay reads a calendar day (2006-01-02) or an RFC 3339 timestamp as UTC.
func ParseDay(field, s string) (time.Time, error) {
	t, _, err := parseDay(field, s)
	return t, err
}

// parseDay also reports whether s was a plain calendar day.
func parseDay(field, s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	return time.Time{}, false, models.NewValidationError(models.EntityOrder, field, "must be a date like 2024-03-01")
}

// DayRange turns an inclusive range of calendar days into From and To.
// A plain day as "to" covers that whole day; a timestamp is used as given.
// An empty bound stays open.
func DayRange(from, to string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if from != "" {
		if start, err = ParseDay("from", from); err != nil {
			return start, end, err
		}
	}
	if to != "" {
		var wholeDay bool
		if end, wholeDay, err = parseDay("to", to); err != nil {
			return start, end, err
		}
		if wholeDay {
			end = end.AddDate(0, 0, 1)
		}
	}
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		return start, end, models.NewValidationError(models.EntityOrder, "to", "must not be before from")
	}
	return start, end, nil
}

type OrderRepository struct {
	s *Store
}

const orderColumns = `o.id, o.customer_id, o.status, o.notes, o.created_at`

// holdsStock reports whether an order in this status keeps its items
// reserved. Cancelled orders give their stock back.
func holdsStock(status models.OrderStatus) bool {
	return status != models.OrderStatusCancelled
}

func scanOrder(row rowScanner, extra ...any) (models.Order, error) {
	var o models.Order
	dest := append([]any{&o.ID, &o.CustomerID, &o.Status, &o.Notes, &o.CreatedAt}, extra...)
	err := row.Scan(dest...)
	o.CreatedAt = o.CreatedAt.UTC()
	return o, err
}

// loadItems returns line items grouped by order id, in insertion order.
func loadItems(ctx context.Context, tx *sql.Tx, where string, args ...any) (map[int64][]models.OrderItem, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		`+where+`
		ORDER BY oi.order_id, oi.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make(map[int64][]models.OrderItem)
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price); err != nil {
			return nil, fmt.Errorf("scan order item row: %w", err)
		}
		items[it.OrderID] = append(items[it.OrderID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

func getOrder(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = ?`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFound(models.EntityOrder, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	items, err := loadItems(ctx, tx, `WHERE o.id = ?`, id)
	if err != nil {
		return nil, err
	}
	o.Items = items[id]
	return &o, nil
}

func listOrders(ctx context.Context, tx *sql.Tx, filter OrderFilter) ([]models.Order, error) {
	where, args := filter.where()

	rows, err := tx.QueryContext(ctx, `
		SELECT `+orderColumns+`, c.last_name, c.first_name, c.middle_name
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		`+where+`
		ORDER BY o.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	names := make(map[int64]string)
	for rows.Next() {
		var c models.Customer
		o, err := scanOrder(rows, &c.LastName, &c.FirstName, &c.MiddleName)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		if !filter.inRange(o.CreatedAt) {
			continue
		}
		names[o.ID] = strings.ToLower(c.DisplayName())
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	items, err := loadItems(ctx, tx, where, args...)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	sortOrders(orders, names, filter.SortBy, filter.Desc)
	return orders, nil
}

// sortOrders orders by the requested key; equal keys fall back to id.
func sortOrders(orders []models.Order, names map[int64]string, by OrderSort, desc bool) {
	slices.SortStableFunc(orders, func(a, b models.Order) int {
		var c int
		switch by {
		case SortByTotal:
			c = a.Total().Cmp(b.Total())
		case SortByCustomer:
			c = cmpOr(strings.Compare(names[a.ID], names[b.ID]), cmp.Compare(a.CustomerID, b.CustomerID))
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if desc {
			c = -c
		}
		return cmpOr(c, cmp.Compare(a.ID, b.ID))
	})
}

// priceItems copies each product's catalog price onto its line. Products
// already on the order keep the price they were bought at.
func priceItems(ctx context.Context, tx *sql.Tx, items []models.OrderItem, keep map[int64]decimal.Decimal) error {
	for i := range items {
		p, err := getProduct(ctx, tx, items[i].ProductID)
		if err != nil {
			return err
		}
		if price, ok := keep[p.ID]; ok {
			items[i].Price = price
		} else {
			items[i].Price = p.Price
		}
	}
	return nil
}

// moveStock takes (sign -1) or returns (sign +1) the quantities of items.
func moveStock(ctx context.Context, tx *sql.Tx, items []models.OrderItem, sign int) error {
	for _, it := range items {
		p, err := getProduct(ctx, tx, it.ProductID)
		if err != nil {
			return err
		}
		if err := adjustStock(ctx, tx, p, sign*it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func insertItems(ctx context.Context, tx *sql.Tx, orderID int64, items []models.OrderItem) error {
	for i := range items {
		items[i].OrderID = orderID
		res, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES (?, ?, ?, ?)`,
			orderID, items[i].ProductID, items[i].Quantity, items[i].Price)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
		if items[i].ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("read order item id: %w", err)
		}
	}
	return nil
}

// freshItems copies caller-supplied lines, dropping ids and prices the store assigns.
func freshItems(items []models.OrderItem) []models.OrderItem {
	out := make([]models.OrderItem, len(items))
	for i, it := range items {
		out[i] = models.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return out
}

// Create places an order: the customer and every product must exist, item
// prices come from the catalog and stock is reserved in the same transaction.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) (int64, error) {
	in := models.Order{
		CustomerID: o.CustomerID,
		Status:     o.Status,
		Notes:      o.Notes,
		Items:      freshItems(o.Items),
	}
	if o.Items == nil {
		in.Items = nil
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return 0, err
	}
	in.CreatedAt = r.s.timestamp()

	err := r.s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := getCustomer(ctx, tx, in.CustomerID); err != nil {
			return err
		}
		if err := priceItems(ctx, tx, in.Items, nil); err != nil {
			return err
		}
		if holdsStock(in.Status) {
			if err := moveStock(ctx, tx, in.Items, -1); err != nil {
				return err
			}
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO orders (customer_id, status, notes, created_at)
			VALUES (?, ?, ?, ?)`,
			in.CustomerID, string(in.Status), in.Notes, in.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		if in.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("read order id: %w", err)
		}
		return insertItems(ctx, tx, in.ID, in.Items)
	})
	if err != nil {
		return 0, err
	}

	*o = in
	r.s.log(models.EntityOrder, o.ID).WithField("total", o.Total().String()).Debug("order created")
	return o.ID, nil
}

func (r *OrderRepository) Get(ctx context.Context, id int64) (*models.Order, error) {
	var o *models.Order
	err := r.s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		o, err = getOrder(ctx, tx, id)
		return err
	})
	return o, err
}

// Update changes status and notes or replaces the items. Stock follows the
// change: replaced items are returned and the new ones reserved, cancelling
// returns everything, and leaving cancelled reserves it again.
func (r *OrderRepository) Update(ctx context.Context, id int64, patch models.OrderPatch) (*models.Order, error) {
	if patch.IsEmpty() {
		return nil, emptyPatch(models.EntityOrder)
	}
	if patch.Items != nil {
		patch.Items = freshItems(patch.Items)
	}

	var updated models.Order
	err := r.s.db.WithTx(ctx, func(tx *sql.Tx) error {
		current, err := getOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		updated = patch.Apply(*current)
		if err := updated.Validate(); err != nil {
			return err
		}

		itemsChanged := patch.Items != nil
		if itemsChanged || holdsStock(current.Status) != holdsStock(updated.Status) {
			if holdsStock(current.Status) {
				if err := moveStock(ctx, tx, current.Items, +1); err != nil {
					return err
				}
			}
			if itemsChanged {
				keep := make(map[int64]decimal.Decimal, len(current.Items))
				for _, it := range current.Items {
					keep[it.ProductID] = it.Price
				}
				if err := priceItems(ctx, tx, updated.Items, keep); err != nil {
					return err
				}
			}
			if holdsStock(updated.Status) {
				if err := moveStock(ctx, tx, updated.Items, -1); err != nil {
					return err
				}
			}
		}

		if _, err := tx.ExecContext(ctx, `UPDATE orders SET status = ?, notes = ? WHERE id = ?`,
			string(updated.Status), updated.Notes, id); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if itemsChanged {
			if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, id); err != nil {
				return fmt.Errorf("delete order items: %w", err)
			}
			return insertItems(ctx, tx, id, updated.Items)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.s.log(models.EntityOrder, id).WithField("status", updated.Status).Debug("order updated")
	return &updated, nil
}

// Delete removes the order with its items and returns reserved stock.
func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	err := r.s.db.WithTx(ctx, func(tx *sql.Tx) error {
		current, err := getOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if holdsStock(current.Status) {
			if err := moveStock(ctx, tx, current.Items, +1); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, id); err != nil {
			return fmt.Errorf("delete order items: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.s.log(models.EntityOrder, id).Debug("order deleted")
	return nil
}

func (r *OrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	var orders []models.Order
	err := r.s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		orders, err = listOrders(ctx, tx, filter)
		return err
	})
	return orders, err
}

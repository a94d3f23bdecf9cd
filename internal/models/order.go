package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderItem is one line of an order. Price is the unit price captured when
// the order was placed, so later product price changes do not alter totals.
type OrderItem struct {
	ID        int64           `json:"id" yaml:"id" db:"id"`
	OrderID   int64           `json:"order_id" yaml:"order_id" db:"order_id"`
	ProductID int64           `json:"product_id" yaml:"product_id" db:"product_id" validate:"gt=0"`
	Quantity  int             `json:"quantity" yaml:"quantity" db:"quantity" validate:"gt=0"`
	Price     decimal.Decimal `json:"price" yaml:"price" db:"price" validate:"gte=0"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID         int64       `json:"id" yaml:"id" db:"id"`
	CustomerID int64       `json:"customer_id" yaml:"customer_id" db:"customer_id" validate:"gt=0"`
	Status     OrderStatus `json:"status" yaml:"status" db:"status" validate:"oneof=pending paid shipped delivered cancelled"`
	Notes      string      `json:"notes" yaml:"notes" db:"notes" validate:"max=1000"`
	Items      []OrderItem `json:"items" yaml:"items" validate:"required,min=1,dive"`
	CreatedAt  time.Time   `json:"created_at" yaml:"created_at" db:"created_at"`
}

// Total is always derived from the items and never stored.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Quantity is the number of units across all lines.
func (o Order) Quantity() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

func (o Order) MarshalJSON() ([]byte, error) {
	type order Order
	return json.Marshal(struct {
		order
		Total decimal.Decimal `json:"total"`
	}{order(o), o.Total()})
}

func (o Order) MarshalYAML() (interface{}, error) {
	type order Order
	return struct {
		order `yaml:",inline"`
		Total decimal.Decimal `yaml:"total"`
	}{order(o), o.Total()}, nil
}

func (o *Order) Normalize() {
	o.Notes = strings.TrimSpace(o.Notes)
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
}

func (o *Order) Validate() error {
	extra := &ValidationError{}
	seen := make(map[int64]int, len(o.Items))
	for i, item := range o.Items {
		checkMoney(extra, fmt.Sprintf("items[%d].price", i), item.Price)
		if first, dup := seen[item.ProductID]; dup && item.ProductID > 0 {
			if extra.Fields == nil {
				extra.Fields = map[string]string{}
			}
			extra.Fields[fmt.Sprintf("items[%d].product_id", i)] = fmt.Sprintf("duplicates items[%d]", first)
			continue
		}
		seen[item.ProductID] = i
	}
	return merge(EntityOrder, validateStruct(EntityOrder, o), extra)
}

// ProductIDs lists the distinct products in item order.
func (o Order) ProductIDs() []int64 {
	ids := make([]int64, 0, len(o.Items))
	seen := make(map[int64]bool, len(o.Items))
	for _, item := range o.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}

// OrderPatch changes status, notes, or replaces the whole item list.
// A nil Items leaves the items untouched.
type OrderPatch struct {
	Status *OrderStatus `json:"status,omitempty" yaml:"status,omitempty"`
	Notes  *string      `json:"notes,omitempty" yaml:"notes,omitempty"`
	Items  []OrderItem  `json:"items,omitempty" yaml:"items,omitempty"`
}

func (p OrderPatch) IsEmpty() bool {
	return p.Status == nil && p.Notes == nil && p.Items == nil
}

func (p OrderPatch) Apply(o Order) Order {
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.Notes != nil {
		o.Notes = *p.Notes
	}
	if p.Items != nil {
		items := make([]OrderItem, len(p.Items))
		copy(items, p.Items)
		o.Items = items
	}
	o.Normalize()
	return o
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return st, nil
	default:
		return "", NewValidationError(EntityOrder, "status", "must be one of: pending, paid, shipped, delivered, cancelled")
	}
}

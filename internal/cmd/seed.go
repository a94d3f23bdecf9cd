package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Pallinder/go-randomdata"
	"github.com/matthieukhl/orderdesk/internal/app"
	"github.com/matthieukhl/orderdesk/internal/models"
	"github.com/shopspring/decimal"
)

type seedStats struct {
	Customers int
	Products  int
	Orders    int
	Skipped   int
}

var seedStatuses = []string{
	string(models.OrderStatusPending),
	string(models.OrderStatusPending),
	string(models.OrderStatusPaid),
	string(models.OrderStatusShipped),
	string(models.OrderStatusDelivered),
	string(models.OrderStatusCancelled),
}

// seedSampleData creates n customers, n products and 2n orders of random
// data through the App, so every record passes the usual validation. Orders
// that would exceed the remaining stock are skipped.
func seedSampleData(ctx context.Context, a *app.App, n int, out io.Writer) (seedStats, error) {
	var stats seedStats

	fmt.Fprintln(out, "   👥 Creating customers...")
	customerIDs := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		c, err := a.AddCustomer(ctx, randomCustomer())
		if err != nil {
			return stats, err
		}
		customerIDs = append(customerIDs, c.ID)
	}
	stats.Customers = len(customerIDs)

	fmt.Fprintln(out, "   📦 Creating products...")
	productIDs := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		p, err := a.AddProduct(ctx, randomProduct())
		if err != nil {
			return stats, err
		}
		productIDs = append(productIDs, p.ID)
	}
	stats.Products = len(productIDs)

	fmt.Fprintln(out, "   🛒 Creating orders...")
	for i := 0; i < 2*n; i++ {
		order := randomOrder(customerIDs, productIDs)
		_, err := a.PlaceOrder(ctx, order)
		var cerr *models.ConstraintError
		if errors.As(err, &cerr) {
			stats.Skipped++
			continue
		}
		if err != nil {
			return stats, err
		}
		stats.Orders++
	}

	return stats, nil
}

func randomCustomer() models.Customer {
	c := models.Customer{
		LastName:  randomdata.LastName(),
		FirstName: randomdata.FirstName(randomdata.RandomGender),
		Phone: fmt.Sprintf("+7 (9%02d) %03d-%02d-%02d",
			randomdata.Number(0, 100), randomdata.Number(0, 1000),
			randomdata.Number(0, 100), randomdata.Number(0, 100)),
	}
	if randomdata.Boolean() {
		c.MiddleName = randomdata.FirstName(randomdata.Male)
	}
	c.Email = fmt.Sprintf("%s.%s%d@example.com", mailbox(c.FirstName), mailbox(c.LastName), randomdata.Number(100))
	return c
}

// mailbox keeps the ASCII letters of a name, lowercased.
func mailbox(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r + 'a' - 'A'
		default:
			return -1
		}
	}, name)
}

func randomProduct() models.Product {
	return models.Product{
		Name:  fmt.Sprintf("%s %s", randomdata.Adjective(), randomdata.Noun()),
		Unit:  randomdata.StringSample("pcs", "kg", "box", "pack"),
		Price: decimal.NewFromFloat(randomdata.Decimal(1, 500, 2)).Round(2),
		Stock: randomdata.Number(5, 100),
	}
}

func randomOrder(customerIDs, productIDs []int64) models.Order {
	order := models.Order{
		CustomerID: customerIDs[randomdata.Number(len(customerIDs))],
		Status:     models.OrderStatus(randomdata.StringSample(seedStatuses...)),
	}

	lines := randomdata.Number(1, 4)
	seen := make(map[int64]bool, lines)
	for len(order.Items) < lines && len(seen) < len(productIDs) {
		id := productIDs[randomdata.Number(len(productIDs))]
		if seen[id] {
			continue
		}
		seen[id] = true
		order.Items = append(order.Items, models.OrderItem{
			ProductID: id,
			Quantity:  randomdata.Number(1, 4),
		})
	}

	if randomdata.Number(4) == 0 {
		order.Notes = randomdata.StringSample("Call before delivery", "Leave at the door", "Gift wrap", "Urgent")
	}
	return order
}

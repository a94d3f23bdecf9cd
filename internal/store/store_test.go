package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matthieukhl/orderdesk/internal/config"
	"github.com/matthieukhl/orderdesk/internal/database"
	"github.com/matthieukhl/orderdesk/internal/logging"
	"github.com/matthieukhl/orderdesk/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickClock advances one hour per reading so every created row gets a
// distinct, predictable timestamp.
type tickClock struct {
	t time.Time
}

func (c *tickClock) now() time.Time {
	c.t = c.t.Add(time.Hour)
	return c.t
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewConnection(&config.DBConfig{Driver: config.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	clock := &tickClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	return New(db, logging.Discard(), WithClock(clock.now))
}

func ptr[T any](v T) *T { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mustCustomer(t *testing.T, s *Store, first, last string) *models.Customer {
	t.Helper()
	c := &models.Customer{FirstName: first, LastName: last}
	_, err := s.Customers().Create(context.Background(), c)
	require.NoError(t, err)
	return c
}

func mustProduct(t *testing.T, s *Store, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: dec(price), Stock: stock}
	_, err := s.Products().Create(context.Background(), p)
	require.NoError(t, err)
	return p
}

func mustOrder(t *testing.T, s *Store, customerID int64, items ...models.OrderItem) *models.Order {
	t.Helper()
	o := &models.Order{CustomerID: customerID, Items: items}
	_, err := s.Orders().Create(context.Background(), o)
	require.NoError(t, err)
	return o
}

func item(productID int64, qty int) models.OrderItem {
	return models.OrderItem{ProductID: productID, Quantity: qty}
}

func stockOf(t *testing.T, s *Store, id int64) int {
	t.Helper()
	p, err := s.Products().Get(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func orderIDs(orders []models.Order) []int64 {
	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	return ids
}

func TestCustomerRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	c := &models.Customer{
		LastName:   "  Иванов ",
		FirstName:  "Иван",
		MiddleName: "Петрович",
		Phone:      "+7(999)123-45-67",
		Email:      "ivanov@mail.ru",
	}
	id, err := s.Customers().Create(ctx, c)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Equal(t, id, c.ID)
	assert.Equal(t, "Иванов", c.LastName)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), c.CreatedAt)

	got, err := s.Customers().Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, c.LastName, got.LastName)
	assert.Equal(t, c.FirstName, got.FirstName)
	assert.Equal(t, c.MiddleName, got.MiddleName)
	assert.Equal(t, c.Phone, got.Phone)
	assert.Equal(t, c.Email, got.Email)
	assert.True(t, c.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, "Иванов И.П.", got.DisplayName())
}

func TestCustomerCreate_ValidationLeavesNoRow(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	c := &models.Customer{LastName: "Smith", Phone: "12345"}
	_, err := s.Customers().Create(ctx, c)

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "first_name")
	assert.Contains(t, verr.Fields, "phone")
	assert.Zero(t, c.ID)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, counts["customers"])
}

func TestCustomerUpdate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	c := mustCustomer(t, s, "Alice", "Smith")

	updated, err := s.Customers().Update(ctx, c.ID, models.CustomerPatch{Email: ptr("alice@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", updated.Email)
	assert.Equal(t, "Alice", updated.FirstName)

	got, err := s.Customers().Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)

	t.Run("invalid value keeps stored row", func(t *testing.T) {
		_, err := s.Customers().Update(ctx, c.ID, models.CustomerPatch{FirstName: ptr("  ")})
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)

		got, err := s.Customers().Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.FirstName)
	})

	t.Run("empty patch", func(t *testing.T) {
		_, err := s.Customers().Update(ctx, c.ID, models.CustomerPatch{})
		var verr *models.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("missing customer", func(t *testing.T) {
		_, err := s.Customers().Update(ctx, 999, models.CustomerPatch{FirstName: ptr("Bob")})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestCustomerDelete_WithOrdersIsRejected(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice := mustCustomer(t, s, "Alice", "Smith")
	widget := mustProduct(t, s, "Widget", "9.99", 10)
	order := mustOrder(t, s, alice.ID, item(widget.ID, 2))

	before, err := s.Counts(ctx)
	require.NoError(t, err)

	err = s.Customers().Delete(ctx, alice.ID)
	var cerr *models.ConstraintError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, models.EntityCustomer, cerr.Entity)
	assert.Equal(t, alice.ID, cerr.ID)

	after, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = s.Customers().Get(ctx, alice.ID)
	assert.NoError(t, err)
	_, err = s.Orders().Get(ctx, order.ID)
	assert.NoError(t, err)
}

func TestCustomerDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	c := mustCustomer(t, s, "Bob", "Adams")

	require.NoError(t, s.Customers().Delete(ctx, c.ID))

	_, err := s.Customers().Get(ctx, c.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = s.Customers().Delete(ctx, c.ID)
	var nf *models.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, models.EntityCustomer, nf.Entity)
}

func TestCustomerList_Query(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	ivanov := mustCustomer(t, s, "Иван", "Иванов")
	alice := mustCustomer(t, s, "Alice", "Smith")
	mustCustomer(t, s, "Bob", "Adams")

	all, err := s.Customers().List(ctx, CustomerFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	got, err := s.Customers().List(ctx, CustomerFilter{Query: "ИВАН"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ivanov.ID, got[0].ID)

	got, err = s.Customers().List(ctx, CustomerFilter{Query: "aLi"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, alice.ID, got[0].ID)

	got, err = s.Customers().List(ctx, CustomerFilter{Query: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestProductRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := mustProduct(t, s, "Widget", "9.99", 10)
	assert.Equal(t, models.DefaultUnit, p.Unit)

	got, err := s.Products().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, "pcs", got.Unit)
	assert.Equal(t, "9.99", got.Price.String())
	assert.Equal(t, 10, got.Stock)

	_, err = s.Products().Get(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestProductCreate_Invalid(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Products().Create(context.Background(), &models.Product{Name: "Widget", Price: dec("-1"), Stock: -3})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "price")
	assert.Contains(t, verr.Fields, "stock")
}

func TestProductUpdate_KeepsOrderPrices(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice := mustCustomer(t, s, "Alice", "Smith")
	widget := mustProduct(t, s, "Widget", "9.99", 10)
	order := mustOrder(t, s, alice.ID, item(widget.ID, 2))

	updated, err := s.Products().Update(ctx, widget.ID, models.ProductPatch{Price: ptr(dec("12.50"))})
	require.NoError(t, err)
	assert.Equal(t, "12.5", updated.Price.String())

	got, err := s.Orders().Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "19.98", got.Total().String())
}

func TestProductDelete_InUseIsRejected(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice := mustCustomer(t, s, "Alice", "Smith")
	widget := mustProduct(t, s, "Widget", "9.99", 10)
	spare := mustProduct(t, s, "Spare", "1.00", 1)
	mustOrder(t, s, alice.ID, item(widget.ID, 1))

	err := s.Products().Delete(ctx, widget.ID)
	var cerr *models.ConstraintError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, models.EntityProduct, cerr.Entity)
	assert.Contains(t, cerr.Error(), "1 order(s)")

	_, err = s.Products().Get(ctx, widget.ID)
	assert.NoError(t, err)

	require.NoError(t, s.Products().Delete(ctx, spare.ID))
	_, err = s.Products().Get(ctx, spare.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestProductList_Filters(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	widget := mustProduct(t, s, "Widget", "9.99", 10)
	mustProduct(t, s, "Gadget", "5.00", 0)
	bolt := mustProduct(t, s, "Bolt M6", "0.10", 500)

	got, err := s.Products().List(ctx, ProductFilter{InStockOnly: true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []int64{widget.ID, bolt.ID}, []int64{got[0].ID, got[1].ID})

	got, err = s.Products().List(ctx, ProductFilter{Query: "dget"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Gadget", got[0].Name)
}

func TestOrderCreate_AliceWidget(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice := mustCustomer(t, s, "Alice", "")
	widget := mustProduct(t, s, "Widget", "9.99", 10)

	o := &models.Order{
		CustomerID: alice.ID,
		// a caller-supplied price is ignored in favour of the catalog price
		Items: []models.OrderItem{{ProductID: widget.ID, Quantity: 2, Price: dec("1.00")}},
	}
	id, err := s.Orders().Create(ctx, o)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, o.Status)
	assert.Equal(t, "19.98", o.Total().String())

	got, err := s.Orders().Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, widget.ID, got.Items[0].ProductID)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, "9.99", got.Items[0].Price.String())
	assert.Equal(t, "19.98", got.Total().String())
	assert.True(t, o.CreatedAt.Equal(got.CreatedAt))

	assert.Equal(t, 8, stockOf(t, s, widget.ID))
}

func TestOrderCreate_InsufficientStockWritesNothing(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice := mustCustomer(t, s, "Alice", "Smith")
	gadget := mustProduct(t, s, "Gadget", "5.00", 5)
	widget := mustProduct(t, s, "Widget", "9.99", 1)

	_, err := s.Orders().Create(ctx, &models.Order{
		CustomerID: alice.ID,
		Items:      []models.OrderItem{item(gadget.ID, 1), item(widget.ID, 2)},
	})
	var cerr *models.ConstraintError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, widget.ID, cerr.ID)
	assert.Contains(t, cerr.Reason, "requested 2, available 1")

	assert.Equal(t, 5, stockOf(t, s, gadget.ID))
	assert.Equal(t, 1, stockOf(t, s, widget.ID))

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, counts["orders"])
	assert.Equal(t, 0, counts["order_items"])
}

func TestOrderCreate_MissingReferences(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice := mustCustomer(t, s, "Alice", "Smith")
	widget := mustProduct(t, s, "Widget", "9.99", 10)

	_, err := s.Orders().Create(ctx, &models.Order{CustomerID: 999, Items: []models.OrderItem{item(widget.ID, 1)}})
	var nf *models.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, models.EntityCustomer, nf.Entity)

	_, err = s.Orders().Create(ctx, &models.Order{CustomerID: alice.ID, Items: []models.OrderItem{item(999, 1)}})
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, models.EntityProduct, nf.Entity)
	assert.Equal(t, int64(999), nf.ID)

	assert.Equal(t, 10, stockOf(t, s, widget.ID))
}

func TestOrderCreate_Invalid(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice := mustCustomer(t, s, "Alice", "Smith")

	_, err := s.Orders().Create(ctx, &models.Order{CustomerID: alice.ID})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "items")

	_, err = s.Orders().Create(ctx, &models.Order{CustomerID: alice.ID, Items: []models.OrderItem{item(1, 0)}})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "items[0].quantity")
}

func TestOrderUpdate_ReplaceItems(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice := mustCustomer(t, s, "Alice", "Smith")
	widget := mustProduct(t, s, "Widget", "9.99", 10)
	gadget := mustProduct(t, s, "Gadget", "5.00", 10)
	order := mustOrder(t, s, alice.ID, item(widget.ID, 2))

	_, err := s.Products().Update(ctx, widget.ID, models.ProductPatch{Price: ptr(dec("12.00"))})
	require.NoError(t, err)

	updated, err := s.Orders().Update(ctx, order.ID, models.OrderPatch{
		Items: []models.OrderItem{item(widget.ID, 3), item(gadget.ID, 1)},
	})
	require.NoError(t, err)
	assert.Equal(t, "34.97", updated.Total().String())

	got, err := s.Orders().Get(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "9.99", got.Items[0].Price.String(), "existing line keeps its price")
	assert.Equal(t, "5", got.Items[1].Price.String())
	assert.Equal(t, "34.97", got.Total().String())

	assert.Equal(t, 7, stockOf(t, s, widget.ID))
	assert.Equal(t, 9, stockOf(t, s, gadget.ID))

	t.Run("too many rolls back", func(t *testing.T) {
		_, err := s.Orders().Update(ctx, order.ID, models.OrderPatch{
			Items: []models.OrderItem{item(widget.ID, 11)},
		})
		var cerr *models.ConstraintError
		require.ErrorAs(t, err, &cerr)

		assert.Equal(t, 7, stockOf(t, s, widget.ID))
		assert.Equal(t, 9, stockOf(t, s, gadget.ID))
		got, err := s.Orders().Get(ctx, order.ID)
		require.NoError(t, err)
		assert.Len(t, got.Items, 2)
	})
}

func TestOrderUpdate_CancelReturnsStock(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice := mustCustomer(t, s, "Alice", "Smith")
	widget := mustProduct(t, s, "Widget", "9.99", 10)
	order := mustOrder(t, s, alice.ID, item(widget.ID, 4))
	assert.Equal(t, 6, stockOf(t, s, widget.ID))

	_, err := s.Orders().Update(ctx, order.ID, models.OrderPatch{Notes: ptr("leave at the door")})
	require.NoError(t, err)
	assert.Equal(t, 6, stockOf(t, s, widget.ID), "notes do not move stock")

	_, err = s.Orders().Update(ctx, order.ID, models.OrderPatch{Status: ptr(models.OrderStatusPaid)})
	require.NoError(t, err)
	assert.Equal(t, 6, stockOf(t, s, widget.ID))

	cancelled, err := s.Orders().Update(ctx, order.ID, models.OrderPatch{Status: ptr(models.OrderStatusCancelled)})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, "leave at the door", cancelled.Notes)
	assert.Equal(t, 10, stockOf(t, s, widget.ID))

	_, err = s.Orders().Update(ctx, order.ID, models.OrderPatch{Status: ptr(models.OrderStatusPending)})
	require.NoError(t, err)
	assert.Equal(t, 6, stockOf(t, s, widget.ID))

	_, err = s.Orders().Update(ctx, order.ID, models.OrderPatch{Status: ptr(models.OrderStatus("lost"))})
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = s.Orders().Update(ctx, 999, models.OrderPatch{Notes: ptr("x")})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestOrderDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice := mustCustomer(t, s, "Alice", "Smith")
	widget := mustProduct(t, s, "Widget", "9.99", 10)
	open := mustOrder(t, s, alice.ID, item(widget.ID, 3))
	cancelled := mustOrder(t, s, alice.ID, item(widget.ID, 2))
	_, err := s.Orders().Update(ctx, cancelled.ID, models.OrderPatch{Status: ptr(models.OrderStatusCancelled)})
	require.NoError(t, err)
	assert.Equal(t, 7, stockOf(t, s, widget.ID))

	require.NoError(t, s.Orders().Delete(ctx, open.ID))
	assert.Equal(t, 10, stockOf(t, s, widget.ID))

	require.NoError(t, s.Orders().Delete(ctx, cancelled.ID))
	assert.Equal(t, 10, stockOf(t, s, widget.ID), "cancelled orders hold no stock")

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, counts["orders"])
	assert.Equal(t, 0, counts["order_items"])

	assert.ErrorIs(t, s.Orders().Delete(ctx, open.ID), models.ErrNotFound)

	// with its orders gone the customer can be removed
	assert.NoError(t, s.Customers().Delete(ctx, alice.ID))
}

func TestOrderList_FilterAndSort(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice := mustCustomer(t, s, "Alice", "Smith")
	bob := mustCustomer(t, s, "Bob", "Adams")
	widget := mustProduct(t, s, "Widget", "9.99", 100)
	gadget := mustProduct(t, s, "Gadget", "5.00", 100)

	o1 := mustOrder(t, s, alice.ID, item(widget.ID, 1))
	o2 := mustOrder(t, s, bob.ID, item(gadget.ID, 1))
	o3 := mustOrder(t, s, alice.ID, item(gadget.ID, 3))

	list := func(f OrderFilter) []int64 {
		t.Helper()
		orders, err := s.Orders().List(ctx, f)
		require.NoError(t, err)
		return orderIDs(orders)
	}

	assert.Equal(t, []int64{o1.ID, o2.ID, o3.ID}, list(OrderFilter{}))
	assert.Equal(t, []int64{o3.ID, o2.ID, o1.ID}, list(OrderFilter{Desc: true}))
	assert.Equal(t, []int64{o2.ID, o1.ID, o3.ID}, list(OrderFilter{SortBy: SortByTotal}))
	assert.Equal(t, []int64{o3.ID, o1.ID, o2.ID}, list(OrderFilter{SortBy: SortByTotal, Desc: true}))
	// "Adams B." sorts before "Smith A."; equal names fall back to id
	assert.Equal(t, []int64{o2.ID, o1.ID, o3.ID}, list(OrderFilter{SortBy: SortByCustomer}))
	assert.Equal(t, []int64{o1.ID, o3.ID, o2.ID}, list(OrderFilter{SortBy: SortByCustomer, Desc: true}))

	assert.Equal(t, []int64{o1.ID, o3.ID}, list(OrderFilter{CustomerID: alice.ID}))
	assert.Equal(t, []int64{o2.ID}, list(OrderFilter{From: o2.CreatedAt, To: o3.CreatedAt}))
	assert.Equal(t, []int64{o2.ID, o3.ID}, list(OrderFilter{From: o2.CreatedAt}))

	_, err := s.Orders().Update(ctx, o2.ID, models.OrderPatch{Status: ptr(models.OrderStatusPaid)})
	require.NoError(t, err)
	assert.Equal(t, []int64{o2.ID}, list(OrderFilter{Status: models.OrderStatusPaid}))
	assert.Empty(t, list(OrderFilter{Status: models.OrderStatusShipped}))

	orders, err := s.Orders().List(ctx, OrderFilter{CustomerID: alice.ID})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Len(t, orders[1].Items, 1)
	assert.Equal(t, "15", orders[1].Total().String())
}

func TestParseOrderSort(t *testing.T) {
	by, err := ParseOrderSort("")
	require.NoError(t, err)
	assert.Equal(t, SortByDate, by)

	by, err = ParseOrderSort(" Total ")
	require.NoError(t, err)
	assert.Equal(t, SortByTotal, by)

	_, err = ParseOrderSort("price")
	var verr *models.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestSnapshotAndCounts(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.NotNil(t, snap.Customers)
	assert.Empty(t, snap.Orders)

	alice := mustCustomer(t, s, "Alice", "Smith")
	widget := mustProduct(t, s, "Widget", "9.99", 10)
	gadget := mustProduct(t, s, "Gadget", "5.00", 10)
	mustOrder(t, s, alice.ID, item(widget.ID, 1), item(gadget.ID, 2))

	snap, err = s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Customers, 1)
	assert.Len(t, snap.Products, 2)
	require.Len(t, snap.Orders, 1)
	assert.Len(t, snap.Orders[0].Items, 2)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"customers": 1, "products": 2, "orders": 1, "order_items": 2}, counts)
}

func TestDayRange(t *testing.T) {
	from, to, err := DayRange("2024-03-01", "2024-03-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), to, "to is inclusive")

	from, to, err = DayRange("", "2024-03-01T12:30:00Z")
	require.NoError(t, err)
	assert.True(t, from.IsZero())
	assert.Equal(t, time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), to)

	_, to, err = DayRange("2024-03-01", "2024-03-02T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), to, "a midnight timestamp is taken as is")

	_, _, err = DayRange("2024-03-02", "2024-03-02T00:00:00Z")
	require.Error(t, err, "an empty timestamp range is rejected")

	_, _, err = DayRange("yesterday", "")
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "from")

	_, _, err = DayRange("2024-03-05", "2024-03-01")
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "to")
}

package analyze

import (
	"encoding/json"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/matthieukhl/orderdesk/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(month time.Month, day, hour int) time.Time {
	return time.Date(2024, month, day, hour, 0, 0, 0, time.UTC)
}

func line(productID int64, qty int, price string) models.OrderItem {
	return models.OrderItem{ProductID: productID, Quantity: qty, Price: decimal.RequireFromString(price)}
}

func sampleDataset() Dataset {
	return Dataset{
		Customers: []models.Customer{
			{ID: 1, FirstName: "Alice", LastName: "Smith"},
			{ID: 2, FirstName: "Bob", LastName: "Adams"},
			{ID: 3, FirstName: "Carol"},
		},
		Products: []models.Product{
			{ID: 10, Name: "Widget", Price: decimal.RequireFromString("9.99")},
			{ID: 20, Name: "Gadget", Price: decimal.RequireFromString("5.00")},
			{ID: 30, Name: "Bolt", Price: decimal.RequireFromString("0.10")},
		},
		Orders: []models.Order{
			{ID: 1, CustomerID: 1, Status: models.OrderStatusPaid, CreatedAt: at(3, 1, 10),
				Items: []models.OrderItem{line(10, 2, "9.99")}},
			{ID: 2, CustomerID: 2, Status: models.OrderStatusPending, CreatedAt: at(3, 1, 15),
				Items: []models.OrderItem{line(20, 1, "5.00"), line(10, 1, "9.99")}},
			{ID: 3, CustomerID: 1, Status: models.OrderStatusDelivered, CreatedAt: at(3, 2, 9),
				Items: []models.OrderItem{line(20, 3, "5.00")}},
			{ID: 4, CustomerID: 3, Status: models.OrderStatusShipped, CreatedAt: at(4, 10, 12),
				Items: []models.OrderItem{line(30, 10, "0.10"), line(20, 1, "5.00")}},
			{ID: 5, CustomerID: 2, Status: models.OrderStatusCancelled, CreatedAt: at(4, 11, 8),
				Items: []models.OrderItem{line(10, 5, "9.99")}},
		},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleDataset())

	assert.Equal(t, 3, s.Customers)
	assert.Equal(t, 3, s.Products)
	assert.Equal(t, 5, s.Orders)
	assert.Equal(t, 1, s.CancelledOrders)
	assert.Equal(t, 18, s.ItemsSold)
	assert.Equal(t, "55.97", s.Revenue.String())
	assert.Equal(t, "13.99", s.AverageOrder.String())
	require.NotNil(t, s.FirstOrder)
	require.NotNil(t, s.LastOrder)
	assert.Equal(t, at(3, 1, 10), *s.FirstOrder)
	assert.Equal(t, at(4, 10, 12), *s.LastOrder)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(Dataset{})
	assert.Zero(t, s.Orders)
	assert.True(t, s.Revenue.IsZero())
	assert.True(t, s.AverageOrder.IsZero())
	assert.Nil(t, s.FirstOrder)
}

func TestTopCustomers(t *testing.T) {
	ds := sampleDataset()

	top := TopCustomers(ds, 2)
	require.Len(t, top, 2)
	assert.Equal(t, int64(1), top[0].CustomerID)
	assert.Equal(t, "Smith A.", top[0].Name)
	assert.Equal(t, 2, top[0].Orders)
	assert.Equal(t, "34.98", top[0].Revenue.String())
	// Bob and Carol both have one order; Bob spent more
	assert.Equal(t, int64(2), top[1].CustomerID)
	assert.Equal(t, "14.99", top[1].Revenue.String())

	all := TopCustomers(ds, 0)
	require.Len(t, all, 3)
	assert.Equal(t, "Carol", all[2].Name)
}

func TestTopCustomers_TiesBreakByID(t *testing.T) {
	ds := Dataset{Orders: []models.Order{
		{ID: 1, CustomerID: 7, Items: []models.OrderItem{line(1, 1, "2.00")}},
		{ID: 2, CustomerID: 3, Items: []models.OrderItem{line(1, 1, "2.00")}},
	}}

	top := TopCustomers(ds, 5)
	require.Len(t, top, 2)
	assert.Equal(t, int64(3), top[0].CustomerID)
	assert.Equal(t, "customer #3", top[0].Name)
	assert.Equal(t, int64(7), top[1].CustomerID)
}

func TestTopProducts(t *testing.T) {
	top := TopProducts(sampleDataset(), 5)
	require.Len(t, top, 3)

	assert.Equal(t, "Bolt", top[0].Name)
	assert.Equal(t, 10, top[0].Quantity)
	assert.Equal(t, "1", top[0].Revenue.String())

	assert.Equal(t, "Gadget", top[1].Name)
	assert.Equal(t, 5, top[1].Quantity)
	assert.Equal(t, 3, top[1].Orders)
	assert.Equal(t, "25", top[1].Revenue.String())

	assert.Equal(t, "Widget", top[2].Name)
	assert.Equal(t, 3, top[2].Quantity, "cancelled order is not counted")
	assert.Equal(t, "29.97", top[2].Revenue.String())
}

func TestDailyOrders(t *testing.T) {
	daily := DailyOrders(sampleDataset())
	require.Len(t, daily, 3)

	assert.Equal(t, "2024-03-01", daily[0].Period)
	assert.Equal(t, 2, daily[0].Orders)
	assert.Equal(t, 4, daily[0].Items)
	assert.Equal(t, "34.97", daily[0].Revenue.String())

	assert.Equal(t, "2024-03-02", daily[1].Period)
	assert.Equal(t, "2024-04-10", daily[2].Period)
	assert.Equal(t, "6", daily[2].Revenue.String())
}

func TestMonthlyRevenue(t *testing.T) {
	monthly := MonthlyRevenue(sampleDataset())
	require.Len(t, monthly, 2)

	assert.Equal(t, "2024-03", monthly[0].Period)
	assert.Equal(t, 3, monthly[0].Orders)
	assert.Equal(t, "49.97", monthly[0].Revenue.String())
	assert.Equal(t, "2024-04", monthly[1].Period)
	assert.Equal(t, 11, monthly[1].Items)
}

func TestCustomerNetwork(t *testing.T) {
	links := CustomerNetwork(sampleDataset())
	require.Len(t, links, 3)

	assert.Equal(t, int64(1), links[0].CustomerA)
	assert.Equal(t, int64(2), links[0].CustomerB)
	assert.Equal(t, 2, links[0].Weight)
	assert.Equal(t, []int64{10, 20}, links[0].Products)
	assert.Equal(t, "Adams B.", links[0].NameB)

	assert.Equal(t, [2]int64{1, 3}, [2]int64{links[1].CustomerA, links[1].CustomerB})
	assert.Equal(t, [2]int64{2, 3}, [2]int64{links[2].CustomerA, links[2].CustomerB})
	assert.Equal(t, []int64{20}, links[2].Products)
}

func TestCustomerNetwork_NoSharedProducts(t *testing.T) {
	ds := Dataset{Orders: []models.Order{
		{ID: 1, CustomerID: 1, Items: []models.OrderItem{line(1, 1, "1.00")}},
		{ID: 2, CustomerID: 2, Items: []models.OrderItem{line(2, 1, "1.00")}},
	}}
	links := CustomerNetwork(ds)
	assert.NotNil(t, links)
	assert.Empty(t, links)
}

func TestCustomerNetwork_RepeatPurchasesCountOnce(t *testing.T) {
	ds := Dataset{Orders: []models.Order{
		{ID: 1, CustomerID: 7, Status: models.OrderStatusPaid, Items: []models.OrderItem{line(5, 1, "1.00")}},
		{ID: 2, CustomerID: 7, Status: models.OrderStatusPaid, Items: []models.OrderItem{line(5, 3, "1.00"), line(6, 1, "1.00")}},
		{ID: 3, CustomerID: 4, Status: models.OrderStatusPaid, Items: []models.OrderItem{line(6, 1, "1.00"), line(5, 1, "1.00")}},
		{ID: 4, CustomerID: 9, Status: models.OrderStatusCancelled, Items: []models.OrderItem{line(5, 1, "1.00")}},
	}}

	links := CustomerNetwork(ds)
	require.Len(t, links, 1)
	assert.Equal(t, int64(4), links[0].CustomerA)
	assert.Equal(t, int64(7), links[0].CustomerB)
	assert.Equal(t, 2, links[0].Weight)
	assert.Equal(t, []int64{5, 6}, links[0].Products)
	assert.Equal(t, "customer #4", links[0].NameA)
}

func TestReport_IsDeterministic(t *testing.T) {
	engine := NewEngine(3)
	ds := sampleDataset()
	want, err := json.Marshal(engine.Report(ds))
	require.NoError(t, err)

	r := rand.New(rand.NewPCG(1, 2))
	for range 10 {
		shuffled := sampleDataset()
		r.Shuffle(len(shuffled.Orders), func(i, j int) {
			shuffled.Orders[i], shuffled.Orders[j] = shuffled.Orders[j], shuffled.Orders[i]
		})
		r.Shuffle(len(shuffled.Customers), func(i, j int) {
			shuffled.Customers[i], shuffled.Customers[j] = shuffled.Customers[j], shuffled.Customers[i]
		})
		got, err := json.Marshal(engine.Report(shuffled))
		require.NoError(t, err)
		assert.JSONEq(t, string(want), string(got))
	}

	assert.Len(t, ds.Orders, 5, "input is not modified")
}

func TestReport_Section(t *testing.T) {
	report := NewEngine(5).Report(sampleDataset())

	for _, kind := range Kinds {
		assert.True(t, IsKind(kind))
		section, err := report.Section(kind)
		require.NoError(t, err, kind)
		assert.NotNil(t, section, kind)
	}

	_, err := report.Section("weekly")
	assert.Error(t, err)
	assert.False(t, IsKind("weekly"))
}

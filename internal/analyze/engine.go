package analyze

import (
	"fmt"
	"slices"

	"github.com/matthieukhl/orderdesk/internal/models"
	"github.com/shopspring/decimal"
)

// Dataset is the input of every analysis. Functions in this package never
// modify it and return the same result for the same dataset.
type Dataset struct {
	Customers []models.Customer
	Products  []models.Product
	Orders    []models.Order
}

// Report bundles every analysis in one value.
type Report struct {
	Summary      Summary        `json:"summary" yaml:"summary"`
	TopCustomers []CustomerStat `json:"top_customers" yaml:"top_customers"`
	TopProducts  []ProductStat  `json:"top_products" yaml:"top_products"`
	Daily        []PeriodStat   `json:"daily" yaml:"daily"`
	Monthly      []PeriodStat   `json:"monthly" yaml:"monthly"`
	Network      []CustomerLink `json:"network" yaml:"network"`
}

const (
	KindSummary      = "summary"
	KindTopCustomers = "top-customers"
	KindTopProducts  = "top-products"
	KindDaily        = "daily"
	KindMonthly      = "monthly"
	KindNetwork      = "network"
)

// Kinds lists the report sections in display order.
var Kinds = []string{KindSummary, KindTopCustomers, KindTopProducts, KindDaily, KindMonthly, KindNetwork}

// Section returns one part of the report by kind.
func (r Report) Section(kind string) (any, error) {
	switch kind {
	case KindSummary:
		return r.Summary, nil
	case KindTopCustomers:
		return r.TopCustomers, nil
	case KindTopProducts:
		return r.TopProducts, nil
	case KindDaily:
		return r.Daily, nil
	case KindMonthly:
		return r.Monthly, nil
	case KindNetwork:
		return r.Network, nil
	default:
		return nil, fmt.Errorf("unknown analysis %q, expected one of %v", kind, Kinds)
	}
}

func IsKind(kind string) bool {
	return slices.Contains(Kinds, kind)
}

// Engine runs the analyses with a fixed ranking size.
type Engine struct {
	topN int
}

// NewEngine returns an engine that keeps topN entries in rankings.
// topN <= 0 keeps all of them.
func NewEngine(topN int) *Engine {
	return &Engine{topN: topN}
}

func (e *Engine) TopN() int { return e.topN }

// Report runs every analysis over ds.
func (e *Engine) Report(ds Dataset) Report {
	return Report{
		Summary:      Summarize(ds),
		TopCustomers: TopCustomers(ds, e.topN),
		TopProducts:  TopProducts(ds, e.topN),
		Daily:        DailyOrders(ds),
		Monthly:      MonthlyRevenue(ds),
		Network:      CustomerNetwork(ds),
	}
}

// counted reports whether an order takes part in revenue and rankings.
// Cancelled orders are only counted in the summary.
func counted(o models.Order) bool {
	return o.Status != models.OrderStatusCancelled
}

func customerNames(customers []models.Customer) map[int64]string {
	names := make(map[int64]string, len(customers))
	for i := range customers {
		names[customers[i].ID] = customers[i].DisplayName()
	}
	return names
}

func nameOr(names map[int64]string, entity string, id int64) string {
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("%s #%d", entity, id)
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

const cents = 2

func average(total decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(int64(n)), cents)
}

package analyze

import (
	"cmp"
	"slices"
	"time"

	"github.com/matthieukhl/orderdesk/internal/models"
	"github.com/shopspring/decimal"
)

type Summary struct {
	Customers       int             `json:"customers" yaml:"customers"`
	Products        int             `json:"products" yaml:"products"`
	Orders          int             `json:"orders" yaml:"orders"`
	CancelledOrders int             `json:"cancelled_orders" yaml:"cancelled_orders"`
	ItemsSold       int             `json:"items_sold" yaml:"items_sold"`
	Revenue         decimal.Decimal `json:"revenue" yaml:"revenue"`
	AverageOrder    decimal.Decimal `json:"average_order" yaml:"average_order"`
	FirstOrder      *time.Time      `json:"first_order,omitempty" yaml:"first_order,omitempty"`
	LastOrder       *time.Time      `json:"last_order,omitempty" yaml:"last_order,omitempty"`
}

// Summarize counts records and totals the revenue of non-cancelled orders.
func Summarize(ds Dataset) Summary {
	s := Summary{
		Customers: len(ds.Customers),
		Products:  len(ds.Products),
		Orders:    len(ds.Orders),
		Revenue:   decimal.Zero,
	}
	active := 0
	for _, o := range ds.Orders {
		if !counted(o) {
			s.CancelledOrders++
			continue
		}
		active++
		s.ItemsSold += o.Quantity()
		s.Revenue = s.Revenue.Add(o.Total())

		at := o.CreatedAt
		if s.FirstOrder == nil || at.Before(*s.FirstOrder) {
			s.FirstOrder = &at
		}
		if s.LastOrder == nil || at.After(*s.LastOrder) {
			s.LastOrder = &at
		}
	}
	s.AverageOrder = average(s.Revenue, active)
	return s
}

type CustomerStat struct {
	CustomerID int64           `json:"customer_id" yaml:"customer_id"`
	Name       string          `json:"name" yaml:"name"`
	Orders     int             `json:"orders" yaml:"orders"`
	Revenue    decimal.Decimal `json:"revenue" yaml:"revenue"`
}

// TopCustomers ranks customers by number of orders, then revenue, then id.
// Customers without orders are left out.
func TopCustomers(ds Dataset, n int) []CustomerStat {
	names := customerNames(ds.Customers)
	byID := make(map[int64]*CustomerStat)
	for _, o := range ds.Orders {
		if !counted(o) {
			continue
		}
		st, ok := byID[o.CustomerID]
		if !ok {
			st = &CustomerStat{
				CustomerID: o.CustomerID,
				Name:       nameOr(names, models.EntityCustomer, o.CustomerID),
				Revenue:    decimal.Zero,
			}
			byID[o.CustomerID] = st
		}
		st.Orders++
		st.Revenue = st.Revenue.Add(o.Total())
	}

	stats := make([]CustomerStat, 0, len(byID))
	for _, st := range byID {
		stats = append(stats, *st)
	}
	slices.SortFunc(stats, func(a, b CustomerStat) int {
		return cmpOr(
			cmp.Compare(b.Orders, a.Orders),
			b.Revenue.Cmp(a.Revenue),
			cmp.Compare(a.CustomerID, b.CustomerID),
		)
	})
	return limit(stats, n)
}

type ProductStat struct {
	ProductID int64           `json:"product_id" yaml:"product_id"`
	Name      string          `json:"name" yaml:"name"`
	Quantity  int             `json:"quantity" yaml:"quantity"`
	Orders    int             `json:"orders" yaml:"orders"`
	Revenue   decimal.Decimal `json:"revenue" yaml:"revenue"`
}

// TopProducts ranks products by quantity sold, then revenue, then id.
func TopProducts(ds Dataset, n int) []ProductStat {
	names := make(map[int64]string, len(ds.Products))
	for _, p := range ds.Products {
		names[p.ID] = p.Name
	}

	byID := make(map[int64]*ProductStat)
	for _, o := range ds.Orders {
		if !counted(o) {
			continue
		}
		for _, it := range o.Items {
			st, ok := byID[it.ProductID]
			if !ok {
				st = &ProductStat{
					ProductID: it.ProductID,
					Name:      nameOr(names, models.EntityProduct, it.ProductID),
					Revenue:   decimal.Zero,
				}
				byID[it.ProductID] = st
			}
			st.Quantity += it.Quantity
			st.Orders++
			st.Revenue = st.Revenue.Add(it.LineTotal())
		}
	}

	stats := make([]ProductStat, 0, len(byID))
	for _, st := range byID {
		stats = append(stats, *st)
	}
	slices.SortFunc(stats, func(a, b ProductStat) int {
		return cmpOr(
			cmp.Compare(b.Quantity, a.Quantity),
			b.Revenue.Cmp(a.Revenue),
			cmp.Compare(a.ProductID, b.ProductID),
		)
	})
	return limit(stats, n)
}

// PeriodStat is the activity of one day ("2006-01-02") or month ("2006-01").
type PeriodStat struct {
	Period  string          `json:"period" yaml:"period"`
	Orders  int             `json:"orders" yaml:"orders"`
	Items   int             `json:"items" yaml:"items"`
	Revenue decimal.Decimal `json:"revenue" yaml:"revenue"`
}

// DailyOrders groups orders by UTC calendar day, oldest first.
func DailyOrders(ds Dataset) []PeriodStat {
	return byPeriod(ds.Orders, time.DateOnly)
}

// MonthlyRevenue groups orders by UTC calendar month, oldest first.
func MonthlyRevenue(ds Dataset) []PeriodStat {
	return byPeriod(ds.Orders, "2006-01")
}

func byPeriod(orders []models.Order, layout string) []PeriodStat {
	byKey := make(map[string]*PeriodStat)
	for _, o := range orders {
		if !counted(o) {
			continue
		}
		key := o.CreatedAt.UTC().Format(layout)
		st, ok := byKey[key]
		if !ok {
			st = &PeriodStat{Period: key, Revenue: decimal.Zero}
			byKey[key] = st
		}
		st.Orders++
		st.Items += o.Quantity()
		st.Revenue = st.Revenue.Add(o.Total())
	}

	stats := make([]PeriodStat, 0, len(byKey))
	for _, st := range byKey {
		stats = append(stats, *st)
	}
	// both layouts sort lexically in time order
	slices.SortFunc(stats, func(a, b PeriodStat) int {
		return cmp.Compare(a.Period, b.Period)
	})
	return stats
}

package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func ptr[T any](v T) *T { return &v }

func TestCustomerValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      Customer
		wantErr map[string]string
	}{
		{
			name: "first name only",
			in:   Customer{FirstName: "Alice"},
		},
		{
			name: "full record",
			in: Customer{
				LastName: "Ivanov", FirstName: "Ivan", MiddleName: "Ivanovich",
				Phone: "+7(999)123-45-67", Email: "ivan@mail.ru",
			},
		},
		{
			name:    "blank first name",
			in:      Customer{FirstName: "   ", LastName: "Ivanov"},
			wantErr: map[string]string{"first_name": "is required"},
		},
		{
			name: "bad phone and email",
			in:   Customer{FirstName: "Ivan", Phone: "12345", Email: "nope"},
			wantErr: map[string]string{
				"phone": "is not a valid phone number, e.g. +7(999)123-45-67 or 89991234567",
				"email": "is not a valid email, e.g. example@mail.ru",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.in
			c.Normalize()
			err := c.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, EntityCustomer, verr.Entity)
			assert.Equal(t, tt.wantErr, verr.Fields)
		})
	}
}

func TestValidPhone(t *testing.T) {
	for _, ok := range []string{"+7(999)123-45-67", "89991234567", "8 999 123 45 67", "+7-999-123-45-67"} {
		assert.True(t, ValidPhone(ok), ok)
	}
	for _, bad := range []string{"", "123", "+1(999)123-45-67", "8999123456"} {
		assert.False(t, ValidPhone(bad), bad)
	}
}

func TestCustomerDisplayName(t *testing.T) {
	c := Customer{LastName: "Иванов", FirstName: "Иван", MiddleName: "Петрович"}
	assert.Equal(t, "Иванов И.П.", c.DisplayName())

	c = Customer{LastName: "Smith", FirstName: "John"}
	assert.Equal(t, "Smith J.", c.DisplayName())

	c = Customer{FirstName: "Alice"}
	assert.Equal(t, "Alice", c.DisplayName())
}

func TestCustomerMatches(t *testing.T) {
	c := Customer{LastName: "Петров", FirstName: "Олег", Email: "oleg@mail.ru"}
	assert.True(t, c.Matches("петр"))
	assert.True(t, c.Matches("MAIL"))
	assert.True(t, c.Matches(""))
	assert.False(t, c.Matches("sidorov"))
}

func TestCustomerPatch(t *testing.T) {
	c := Customer{ID: 3, FirstName: "Ivan", Email: "old@mail.ru"}
	assert.True(t, CustomerPatch{}.IsEmpty())

	out := CustomerPatch{Email: ptr(" new@mail.ru "), LastName: ptr("Petrov")}.Apply(c)
	assert.Equal(t, int64(3), out.ID)
	assert.Equal(t, "new@mail.ru", out.Email)
	assert.Equal(t, "Petrov", out.LastName)
	assert.Equal(t, "old@mail.ru", c.Email, "original must not change")
}

func TestProductValidate(t *testing.T) {
	p := Product{Name: "Widget", Price: decimal.RequireFromString("9.99"), Stock: 10}
	p.Normalize()
	require.NoError(t, p.Validate())
	assert.Equal(t, DefaultUnit, p.Unit)

	free := Product{Name: "Sample", Price: decimal.Zero}
	free.Normalize()
	assert.NoError(t, free.Validate(), "zero price is allowed")

	bad := Product{Name: "", Price: decimal.RequireFromString("-1"), Stock: -2}
	bad.Normalize()
	var verr *ValidationError
	require.ErrorAs(t, bad.Validate(), &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "price")
	assert.Contains(t, verr.Fields, "stock")

	fractional := Product{Name: "Bolt", Price: decimal.RequireFromString("0.001")}
	fractional.Normalize()
	require.ErrorAs(t, fractional.Validate(), &verr)
	assert.Equal(t, "must have at most 2 decimal places", verr.Fields["price"])

	top := Product{Name: "Yacht", Price: MaxMoney}
	top.Normalize()
	assert.NoError(t, top.Validate())

	huge := Product{Name: "Island", Price: decimal.RequireFromString("10000000000")}
	huge.Normalize()
	require.ErrorAs(t, huge.Validate(), &verr)
	assert.Equal(t, "must be at most 9999999999.99", verr.Fields["price"])
}

func TestOrderTotal(t *testing.T) {
	o := Order{Items: []OrderItem{
		{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("9.99")},
	}}
	assert.Equal(t, "19.98", o.Total().String())

	o.Items = append(o.Items, OrderItem{ProductID: 2, Quantity: 3, Price: decimal.RequireFromString("0.10")})
	assert.Equal(t, "20.28", o.Total().String())
	assert.Equal(t, 5, o.Quantity())

	assert.True(t, Order{}.Total().IsZero())
}

func TestOrderValidate(t *testing.T) {
	valid := Order{CustomerID: 1, Items: []OrderItem{{ProductID: 1, Quantity: 1, Price: decimal.NewFromInt(5)}}}
	valid.Normalize()
	require.NoError(t, valid.Validate())
	assert.Equal(t, OrderStatusPending, valid.Status)

	var verr *ValidationError

	noItems := Order{CustomerID: 1}
	noItems.Normalize()
	require.ErrorAs(t, noItems.Validate(), &verr)
	assert.Contains(t, verr.Fields, "items")

	badQty := Order{CustomerID: 1, Items: []OrderItem{{ProductID: 1, Quantity: 0}}}
	badQty.Normalize()
	require.ErrorAs(t, badQty.Validate(), &verr)
	assert.Equal(t, "must be greater than 0", verr.Fields["items[0].quantity"])

	dup := Order{CustomerID: 1, Items: []OrderItem{{ProductID: 1, Quantity: 1}, {ProductID: 1, Quantity: 2}}}
	dup.Normalize()
	require.ErrorAs(t, dup.Validate(), &verr)
	assert.Equal(t, "duplicates items[0]", verr.Fields["items[1].product_id"])

	badStatus := valid
	badStatus.Status = "lost"
	require.ErrorAs(t, badStatus.Validate(), &verr)
	assert.Contains(t, verr.Fields, "status")
}

func TestOrderJSONIncludesTotal(t *testing.T) {
	o := Order{ID: 7, CustomerID: 1, Status: OrderStatusPaid, Items: []OrderItem{
		{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("9.99")},
	}}

	data, err := json.Marshal(o)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "19.98", out["total"])
	assert.Equal(t, float64(7), out["id"])
	assert.Equal(t, "paid", out["status"])

	var back Order
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "19.98", back.Total().String())
}

func TestOrderYAMLIncludesTotal(t *testing.T) {
	o := Order{ID: 1, CustomerID: 1, Items: []OrderItem{
		{ProductID: 1, Quantity: 4, Price: decimal.RequireFromString("2.50")},
	}}

	data, err := yaml.Marshal(o)
	require.NoError(t, err)
	assert.Contains(t, string(data), "total: \"10\"")
}

func TestOrderPatch(t *testing.T) {
	o := Order{ID: 1, CustomerID: 2, Status: OrderStatusPending, Items: []OrderItem{{ProductID: 1, Quantity: 1}}}

	out := OrderPatch{Status: ptr(OrderStatusPaid)}.Apply(o)
	assert.Equal(t, OrderStatusPaid, out.Status)
	assert.Len(t, out.Items, 1)

	out = OrderPatch{Items: []OrderItem{{ProductID: 3, Quantity: 2}, {ProductID: 4, Quantity: 1}}}.Apply(o)
	assert.Equal(t, []int64{3, 4}, out.ProductIDs())
	assert.Equal(t, int64(2), out.CustomerID)
}

func TestParseOrderStatus(t *testing.T) {
	st, err := ParseOrderStatus(" Shipped ")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, st)

	_, err = ParseOrderStatus("gone")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestErrorTaxonomy(t *testing.T) {
	err := error(NewNotFound(EntityProduct, 4))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "product 4 not found", err.Error())

	cerr := &ConstraintError{Entity: EntityCustomer, ID: 1, Reason: "referenced by 2 order(s)"}
	assert.Equal(t, "customer 1: referenced by 2 order(s)", cerr.Error())

	verr := &ValidationError{Entity: EntityProduct, Fields: map[string]string{"price": "bad", "name": "is required"}}
	assert.Equal(t, "invalid product: name is required; price bad", verr.Error())
}

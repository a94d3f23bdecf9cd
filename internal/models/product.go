package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultUnit = "pcs"

type Product struct {
	ID        int64           `json:"id" yaml:"id" db:"id"`
	Name      string          `json:"name" yaml:"name" db:"name" validate:"required,max=255"`
	Unit      string          `json:"unit" yaml:"unit" db:"unit" validate:"required,max=32"`
	Price     decimal.Decimal `json:"price" yaml:"price" db:"price" validate:"gte=0"`
	Stock     int             `json:"stock" yaml:"stock" db:"stock" validate:"gte=0"`
	CreatedAt time.Time       `json:"created_at" yaml:"created_at" db:"created_at"`
}

func (p *Product) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Unit = strings.TrimSpace(p.Unit)
	if p.Unit == "" {
		p.Unit = DefaultUnit
	}
}

func (p *Product) Validate() error {
	extra := &ValidationError{}
	checkMoney(extra, "price", p.Price)
	return merge(EntityProduct, validateStruct(EntityProduct, p), extra)
}

func (p *Product) Matches(query string) bool {
	return containsFold(query, p.Name, p.Unit)
}

type ProductPatch struct {
	Name  *string          `json:"name,omitempty" yaml:"name,omitempty"`
	Unit  *string          `json:"unit,omitempty" yaml:"unit,omitempty"`
	Price *decimal.Decimal `json:"price,omitempty" yaml:"price,omitempty"`
	Stock *int             `json:"stock,omitempty" yaml:"stock,omitempty"`
}

func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Unit == nil && p.Price == nil && p.Stock == nil
}

func (p ProductPatch) Apply(prod Product) Product {
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.Unit != nil {
		prod.Unit = *p.Unit
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.Stock != nil {
		prod.Stock = *p.Stock
	}
	prod.Normalize()
	return prod
}

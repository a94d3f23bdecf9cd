package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Customer represents a buyer. FirstName is the only mandatory part of the name.
type Customer struct {
	ID         int64     `json:"id" yaml:"id" db:"id"`
	LastName   string    `json:"last_name" yaml:"last_name" db:"last_name" validate:"max=100"`
	FirstName  string    `json:"first_name" yaml:"first_name" db:"first_name" validate:"required,max=100"`
	MiddleName string    `json:"middle_name" yaml:"middle_name" db:"middle_name" validate:"max=100"`
	Phone      string    `json:"phone" yaml:"phone" db:"phone" validate:"omitempty,phone"`
	Email      string    `json:"email" yaml:"email" db:"email" validate:"omitempty,email,max=255"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at" db:"created_at"`
}

// Normalize trims surrounding whitespace from every text field.
func (c *Customer) Normalize() {
	c.LastName = strings.TrimSpace(c.LastName)
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.MiddleName = strings.TrimSpace(c.MiddleName)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
}

func (c *Customer) Validate() error {
	return validateStruct(EntityCustomer, c)
}

// DisplayName renders "Ivanov I.I." or just the first name when there is no last name.
func (c *Customer) DisplayName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	name := c.LastName + " " + initial(c.FirstName)
	if c.MiddleName != "" {
		name += initial(c.MiddleName)
	}
	return name
}

func initial(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return ""
	}
	return string(r) + "."
}

// Matches reports whether query occurs in any searchable field, ignoring case.
func (c *Customer) Matches(query string) bool {
	return containsFold(query, c.LastName, c.FirstName, c.MiddleName, c.Phone, c.Email)
}

func containsFold(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

type CustomerPatch struct {
	LastName   *string `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	FirstName  *string `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	MiddleName *string `json:"middle_name,omitempty" yaml:"middle_name,omitempty"`
	Phone      *string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email      *string `json:"email,omitempty" yaml:"email,omitempty"`
}

func (p CustomerPatch) IsEmpty() bool {
	return p.LastName == nil && p.FirstName == nil && p.MiddleName == nil && p.Phone == nil && p.Email == nil
}

// Apply returns c with the patch applied. ID and CreatedAt never change.
func (p CustomerPatch) Apply(c Customer) Customer {
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.MiddleName != nil {
		c.MiddleName = *p.MiddleName
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	c.Normalize()
	return c
}

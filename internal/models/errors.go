package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	EntityCustomer = "customer"
	EntityProduct  = "product"
	EntityOrder    = "order"
)

// ErrNotFound matches every *NotFoundError through errors.Is.
var ErrNotFound = errors.New("not found")

type NotFoundError struct {
	Entity string
	ID     int64
}

func NewNotFound(entity string, id int64) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError lists the offending fields, keyed by their JSON name.
type ValidationError struct {
	Entity string
	Fields map[string]string
}

func NewValidationError(entity, field, message string) *ValidationError {
	return &ValidationError{Entity: entity, Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(parts, "; "))
}

// ConstraintError reports a change that would break referential integrity
// or overdraw stock.
type ConstraintError struct {
	Entity string
	ID     int64
	Reason string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Entity, e.ID, e.Reason)
}

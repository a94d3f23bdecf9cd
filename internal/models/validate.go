package models

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Accepts +7(999)123-45-67, 8 999 123 45 67, 89991234567 and similar.
var phonePattern = regexp.MustCompile(`^(\+7|8)[\s\-]?\(?\d{3}\)?[\s\-]?\d{3}[\s\-]?\d{2}[\s\-]?\d{2}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// decimal.Decimal is checked as a float so gte/gt tags work on money
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return v
}

// ValidPhone reports whether s is an accepted phone number.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

func validateStruct(entity string, s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %s: %w", entity, err)
	}

	verr := &ValidationError{Entity: entity, Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		verr.Fields[fieldPath(fe.Namespace())] = fieldMessage(fe)
	}
	return verr
}

// fieldPath drops the struct name: "Order.items[0].quantity" -> "items[0].quantity".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "is not a valid email, e.g. example@mail.ru"
	case "phone":
		return "is not a valid phone number, e.g. +7(999)123-45-67 or 89991234567"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must not be less than " + fe.Param()
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}

// MaxMoney is the largest amount a DECIMAL(12,2) column holds.
var MaxMoney = decimal.RequireFromString("9999999999.99")

// checkMoney enforces the money rules validator tags cannot express exactly:
// two decimal places and the column's upper bound.
func checkMoney(verr *ValidationError, field string, d decimal.Decimal) {
	var msg string
	switch {
	case !d.Equal(d.Round(2)):
		msg = "must have at most 2 decimal places"
	case d.GreaterThan(MaxMoney):
		msg = "must be at most " + MaxMoney.String()
	default:
		return
	}
	if verr.Fields == nil {
		verr.Fields = map[string]string{}
	}
	if _, exists := verr.Fields[field]; !exists {
		verr.Fields[field] = msg
	}
}

// merge folds the money checks into the tag-based result.
func merge(entity string, tagErr error, extra *ValidationError) error {
	if tagErr == nil && len(extra.Fields) == 0 {
		return nil
	}
	if tagErr == nil {
		extra.Entity = entity
		return extra
	}
	var verr *ValidationError
	if !errors.As(tagErr, &verr) {
		return tagErr
	}
	for k, v := range extra.Fields {
		if _, exists := verr.Fields[k]; !exists {
			verr.Fields[k] = v
		}
	}
	return verr
}

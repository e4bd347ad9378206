package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/billdesk/internal/invoice/format"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	// the customer name ends up in the document file name
	_ = v.RegisterValidation("docname", func(fl validator.FieldLevel) bool {
		return format.SafeName(fl.Field().String()) != ""
	})
	return v
}

// ParseLineItem builds a LineItem from raw form input. Any non-numeric or
// out-of-range field yields ErrInvalidInput naming the field.
func ParseLineItem(name, price, quantity, unit, rate string) (LineItem, error) {
	unitPrice, err := parseAmount("item_price", price)
	if err != nil {
		return LineItem{}, err
	}
	qty, err := parseAmount("quantity", quantity)
	if err != nil {
		return LineItem{}, err
	}
	weighting, err := parseAmount("weighting_rate", rate)
	if err != nil {
		return LineItem{}, err
	}

	item := LineItem{
		ItemName:      strings.TrimSpace(name),
		UnitPrice:     unitPrice,
		Quantity:      qty,
		Unit:          strings.TrimSpace(unit),
		WeightingRate: weighting,
	}
	if err := ValidateLineItem(item); err != nil {
		return LineItem{}, err
	}
	return item, nil
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q is not a number", ErrInvalidInput, field, raw)
	}
	return d, nil
}

// ValidateLineItem checks the field rules and rejects amounts finer than
// the stored precision.
func ValidateLineItem(item LineItem) error {
	if err := structError(validate.Struct(item)); err != nil {
		return err
	}
	for _, f := range []struct {
		name   string
		value  decimal.Decimal
		places int32
	}{
		{"item_price", item.UnitPrice, AmountPlaces},
		{"quantity", item.Quantity, QuantityPlaces},
		{"weighting_rate", item.WeightingRate, AmountPlaces},
	} {
		if !f.value.Equal(f.value.Truncate(f.places)) {
			return fmt.Errorf("%w: %s %s has more than %d decimal places", ErrInvalidInput, f.name, f.value.String(), f.places)
		}
	}
	return nil
}

func ValidateCustomer(customer CustomerRecord) error {
	return structError(validate.Struct(customer.Normalize()))
}

// ValidateInvoice rejects an invoice without items before any other rule.
func ValidateInvoice(customer CustomerRecord, items []LineItem) error {
	if len(items) == 0 {
		return ErrEmptyInvoice
	}
	if err := ValidateCustomer(customer); err != nil {
		return err
	}
	for i, item := range items {
		if err := ValidateLineItem(item); err != nil {
			return fmt.Errorf("item %d: %w", i+1, err)
		}
	}
	return nil
}

func structError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, fieldName(fe.Field()))
	case "gt":
		return fmt.Errorf("%w: %s must be greater than %s", ErrInvalidInput, fieldName(fe.Field()), fe.Param())
	case "gte":
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidInput, fieldName(fe.Field()))
	case "docname":
		return fmt.Errorf("%w: %s %q has no characters usable in a file name", ErrInvalidInput, fieldName(fe.Field()), fe.Value())
	default:
		return fmt.Errorf("%w: %s failed %s", ErrInvalidInput, fieldName(fe.Field()), fe.Tag())
	}
}

var fieldNames = map[string]string{
	"Name":          "name",
	"ItemName":      "item_name",
	"UnitPrice":     "item_price",
	"Quantity":      "quantity",
	"WeightingRate": "weighting_rate",
}

func fieldName(field string) string {
	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}

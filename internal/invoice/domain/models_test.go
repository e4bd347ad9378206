package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(name, price, qty, unit, rate string) LineItem {
	return LineItem{
		ItemName:      name,
		UnitPrice:     decimal.RequireFromString(price),
		Quantity:      decimal.RequireFromString(qty),
		Unit:          unit,
		WeightingRate: decimal.RequireFromString(rate),
	}
}

func TestLineTotal_WeightingRateAddedOncePerLine(t *testing.T) {
	cement := item("Cement", "350.00", "10", "bags", "50.00")
	assert.Equal(t, "3550.00", FormatAmount(cement.LineTotal()))
}

func TestGrandTotal_FractionalQuantities(t *testing.T) {
	items := []LineItem{
		item("Sand", "1200.50", "1.5", "tons", "0"),
		item("Gravel", "899.99", "2.0", "tons", "25"),
	}

	// 1200.50*1.5 = 1800.75 ; 899.99*2 + 25 = 1824.98
	assert.Equal(t, "3625.73", FormatAmount(GrandTotal(items)))

	inv := Invoice{Items: items}
	assert.True(t, inv.GrandTotal().Equal(decimal.RequireFromString("3625.73")))
}

func TestGrandTotal_EqualsSumOfLineTotals(t *testing.T) {
	items := []LineItem{
		item("Cement", "350", "10", "bags", "50"),
		item("Steel", "62.25", "0.333", "kg", "1.10"),
		item("Brick", "7", "1000", "pcs", "0"),
	}

	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal().Round(AmountPlaces))
	}
	assert.Equal(t, FormatAmount(sum), FormatAmount(GrandTotal(items)))
}

func TestInvoice_NamingHelpers(t *testing.T) {
	inv := Invoice{
		Customer: CustomerRecord{Name: "Ravi"},
		IssuedAt: time.Date(2024, time.July, 3, 14, 5, 9, 0, time.UTC),
	}

	assert.Equal(t, "Ravi_20240703140509", inv.ID())
	assert.Equal(t, "2024-07", inv.MonthBucket())
	assert.Equal(t, "2024-07-03", inv.IssueDate())
}

func TestParseLineItem(t *testing.T) {
	got, err := ParseLineItem(" Cement ", "350", "1.5", "bags", "50")
	require.NoError(t, err)
	assert.Equal(t, "Cement", got.ItemName)
	assert.Equal(t, "1.5", got.Quantity.String())

	cases := map[string][5]string{
		"non numeric price":    {"Cement", "abc", "1", "bags", "0"},
		"empty quantity":       {"Cement", "350", "", "bags", "0"},
		"zero quantity":        {"Cement", "350", "0", "bags", "0"},
		"negative price":       {"Cement", "-1", "1", "bags", "0"},
		"negative weighting":   {"Cement", "350", "1", "bags", "-5"},
		"missing item name":    {"  ", "350", "1", "bags", "0"},
		"non numeric rate":     {"Cement", "350", "1", "bags", "fifty"},
		"non numeric quantity": {"Cement", "350", "1,5", "bags", "0"},
		"price sub paisa":      {"Cement", "350.555", "1", "bags", "0"},
		"quantity too fine":    {"Cement", "350", "1.2345", "bags", "0"},
		"weighting sub paisa":  {"Cement", "350", "1", "bags", "0.001"},
	}
	for name, in := range cases {
		_, err := ParseLineItem(in[0], in[1], in[2], in[3], in[4])
		assert.True(t, errors.Is(err, ErrInvalidInput), name)
	}
}

func TestValidateInvoice(t *testing.T) {
	ravi := CustomerRecord{Name: "Ravi", Address: "12 Market Rd", Phone: "9998887777"}

	assert.ErrorIs(t, ValidateInvoice(ravi, nil), ErrEmptyInvoice)
	assert.ErrorIs(t, ValidateInvoice(CustomerRecord{}, nil), ErrEmptyInvoice)
	assert.ErrorIs(t, ValidateInvoice(CustomerRecord{Name: "  "}, []LineItem{item("Cement", "1", "1", "bags", "0")}), ErrInvalidInput)
	assert.ErrorIs(t, ValidateInvoice(ravi, []LineItem{item("Cement", "1", "0", "bags", "0")}), ErrInvalidInput)
	assert.NoError(t, ValidateInvoice(ravi, []LineItem{item("Cement", "0", "1", "bags", "0")}))
}

func TestParseLineItem_TrailingZerosAreNotExtraPrecision(t *testing.T) {
	got, err := ParseLineItem("Sand", "350.5000", "2.500", "ton", "10.00")
	require.NoError(t, err)
	assert.Equal(t, "886.25", FormatAmount(got.LineTotal()))
}

func TestValidateCustomer_NameMustYieldFileName(t *testing.T) {
	for _, name := range []string{"???", "...", "/"} {
		err := ValidateCustomer(CustomerRecord{Name: name})
		assert.ErrorIs(t, err, ErrInvalidInput, name)
		assert.Contains(t, err.Error(), "file name", name)
	}
	assert.NoError(t, ValidateCustomer(CustomerRecord{Name: "Ravi Kumar"}))
	assert.NoError(t, ValidateCustomer(CustomerRecord{Name: "A/B Traders"}))
}

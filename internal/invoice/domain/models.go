package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// AmountPlaces is the precision every amount is printed and compared with.
	AmountPlaces = 2
	// QuantityPlaces is the finest quantity accepted. Quantities print with
	// AmountPlaces, so anything finer would not reproduce the line total.
	QuantityPlaces = 2

	issuedAtLayout = "20060102150405"
	monthLayout    = "2006-01"
	dateLayout     = "2006-01-02"
)

// CustomerRecord is the customer block of one invoice. Name doubles as the
// natural key of the customers table.
type CustomerRecord struct {
	Name    string `validate:"required,docname"`
	Address string
	Phone   string
}

// Normalize trims surrounding whitespace from every field.
func (c CustomerRecord) Normalize() CustomerRecord {
	return CustomerRecord{
		Name:    strings.TrimSpace(c.Name),
		Address: strings.TrimSpace(c.Address),
		Phone:   strings.TrimSpace(c.Phone),
	}
}

// LineItem is one priced material entry. WeightingRate is a flat per-line
// surcharge and is not scaled by Quantity.
type LineItem struct {
	ItemName      string          `validate:"required"`
	UnitPrice     decimal.Decimal `validate:"gte=0"`
	Quantity      decimal.Decimal `validate:"gt=0"`
	Unit          string
	WeightingRate decimal.Decimal `validate:"gte=0"`
}

// LineTotal returns UnitPrice*Quantity + WeightingRate.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(l.Quantity).Add(l.WeightingRate)
}

type Invoice struct {
	Customer CustomerRecord
	Items    []LineItem
	IssuedAt time.Time
}

func (i Invoice) GrandTotal() decimal.Decimal {
	return GrandTotal(i.Items)
}

// ID names the invoice for its document file. Two invoices for the same
// customer within one second share an ID.
func (i Invoice) ID() string {
	return i.Customer.Name + "_" + i.IssuedAt.Format(issuedAtLayout)
}

// MonthBucket is the YYYY-MM directory the document is filed under.
func (i Invoice) MonthBucket() string {
	return i.IssuedAt.Format(monthLayout)
}

// IssueDate is the date printed on the document and stored on bill rows.
func (i Invoice) IssueDate() string {
	return i.IssuedAt.Format(dateLayout)
}

// GrandTotal sums the line totals as printed, each rounded to AmountPlaces,
// so the document's rows always add up to its total line.
func GrandTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal().Round(AmountPlaces))
	}
	return total
}

// FormatAmount renders an amount with exactly two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountPlaces)
}

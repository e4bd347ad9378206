package domain

import (
	"context"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	invoiceservice "github.com/smallbiznis/billdesk/internal/invoice/service"
)

// Receipt describes a submitted invoice.
type Receipt struct {
	Path       string
	Invoice    invoicedomain.Invoice
	GrandTotal decimal.Decimal
	Rows       int
}

// Assembler produces and, on rollback, removes invoice documents.
type Assembler interface {
	Assemble(ctx context.Context, customer invoicedomain.CustomerRecord, items []invoicedomain.LineItem, outputRoot string) (invoiceservice.Result, error)
	Discard(path string) error
}

type Service interface {
	// Submit renders the invoice, writes its document and records one bill
	// row per item. Either all of it happens or none of it survives.
	Submit(ctx context.Context, customer invoicedomain.CustomerRecord, items []invoicedomain.LineItem) (Receipt, error)
	// Statement renders the stored bill history of a customer.
	Statement(ctx context.Context, customerName string) ([]byte, error)
}

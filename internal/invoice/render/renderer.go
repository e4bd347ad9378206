// Package render lays out an invoice document.
package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/billdesk/internal/config"
	"github.com/smallbiznis/billdesk/internal/invoice/domain"
	"github.com/smallbiznis/billdesk/internal/layout"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	rowHeight      = layout.DefaultLineHeight
	ruleWidth      = 0.5
	paymentCodeW   = 50.0
	paymentTrailer = 10.0
)

var (
	customerColumns = [2]float64{40, 150}
	itemColumns     = [5]float64{50, 30, 30, 30, 40}
)

// PaymentImage is an encoded payment code ready for placement. Source is
// read once.
type PaymentImage struct {
	Name   string
	Source io.Reader
}

type Renderer interface {
	Render(inv domain.Invoice, profile config.Profile, code PaymentImage) ([]byte, error)
}

type Params struct {
	fx.In

	Log *zap.Logger
}

type PDFRenderer struct {
	log          *zap.Logger
	uncompressed bool
}

func NewRenderer(p Params) Renderer {
	return &PDFRenderer{
		log: p.Log.Named("invoice.render"),
	}
}

// Render produces the invoice document. The output depends only on inv,
// profile and code.
func (r *PDFRenderer) Render(inv domain.Invoice, profile config.Profile, code PaymentImage) ([]byte, error) {
	if len(inv.Items) == 0 {
		return nil, domain.ErrEmptyInvoice
	}

	page := layout.Page{
		Title:     "Invoice " + inv.ID(),
		Author:    profile.Business.Name,
		Creator:   "billdesk",
		CreatedAt: inv.IssuedAt,

		Uncompressed: r.uncompressed,
		Header: func(c *layout.Canvas) {
			c.Font(layout.Bold, 25)
			c.Line(rowHeight, profile.Business.Name, layout.AlignCenter)
			c.Font(layout.Regular, 12)
			c.Line(rowHeight, "Date: "+inv.IssueDate(), layout.AlignRight)
			c.Rule(ruleWidth)
			c.Space(rowHeight)
		},
		Footer: func(c *layout.Canvas) {
			c.FromBottom(15)
			c.Font(layout.Italic, 8)
			c.Line(rowHeight, fmt.Sprintf("Page %d/%s", c.PageNo(), layout.TotalPagesAlias), layout.AlignCenter)
		},
	}

	out, err := layout.Render(page, func(c *layout.Canvas) error {
		writeCustomer(c, inv.Customer)
		total := writeItems(c, inv.Items)
		writeTotal(c, total, profile.Payment.Currency)
		return writePayment(c, profile, code)
	})
	if err != nil {
		return nil, err
	}

	r.log.Debug("invoice rendered",
		zap.String("invoice", inv.ID()),
		zap.Int("items", len(inv.Items)),
		zap.Int("bytes", len(out)),
	)
	return out, nil
}

func writeCustomer(c *layout.Canvas, customer domain.CustomerRecord) {
	c.Font(layout.Italic, 18)
	c.Line(rowHeight, "Customer Details:", layout.AlignLeft)

	fields := [][2]string{
		{"Name", customer.Name},
		{"Address", customer.Address},
		{"Phone", customer.Phone},
	}
	for _, f := range fields {
		c.Font(layout.Bold, 12)
		c.Box(customerColumns[0], rowHeight, f[0], layout.BorderAll, layout.AlignLeft, false)
		c.Font(layout.Regular, 12)
		c.Box(customerColumns[1], rowHeight, f[1], layout.BorderAll, layout.AlignLeft, true)
	}
	c.Space(rowHeight)
}

// writeItems emits one row per item in input order and returns the running
// total of the printed line totals.
func writeItems(c *layout.Canvas, items []domain.LineItem) decimal.Decimal {
	c.Font(layout.Italic, 18)
	c.Line(rowHeight, "Item's Details:", layout.AlignLeft)

	c.Font(layout.Bold, 12)
	c.Row(rowHeight, itemCells("Item", "Price (INR)", "Quantity", "Unit", "Total (INR)")...)

	c.Font(layout.Regular, 12)
	total := decimal.Zero
	for _, item := range items {
		line := item.LineTotal().Round(domain.AmountPlaces)
		cells := itemCells(
			item.ItemName,
			domain.FormatAmount(item.UnitPrice),
			domain.FormatAmount(item.Quantity),
			item.Unit,
			domain.FormatAmount(line),
		)
		// numbers right, text left
		cells[1].Align = layout.AlignRight
		cells[2].Align = layout.AlignRight
		cells[4].Align = layout.AlignRight
		c.Row(rowHeight, cells...)
		total = total.Add(line)
	}
	return total
}

func itemCells(values ...string) []layout.Cell {
	cells := make([]layout.Cell, len(values))
	for i, v := range values {
		cells[i] = layout.Cell{
			Width:  itemColumns[i],
			Text:   v,
			Border: layout.BorderAll,
			Align:  layout.AlignLeft,
		}
	}
	return cells
}

func writeTotal(c *layout.Canvas, total decimal.Decimal, currency string) {
	c.Space(rowHeight)
	c.Font(layout.Bold, 12)
	c.Line(rowHeight, TotalLine(total, currency), layout.AlignRight)
	c.Rule(ruleWidth)
	c.Space(5)
}

// TotalLine is the text of the totals line, e.g. "Total Amount: 3550.00 INR".
func TotalLine(total decimal.Decimal, currency string) string {
	return fmt.Sprintf("Total Amount: %s %s", domain.FormatAmount(total), currency)
}

func writePayment(c *layout.Canvas, profile config.Profile, code PaymentImage) error {
	c.Space(rowHeight)
	c.Font(layout.Bold, 12)
	c.Line(rowHeight, "Online Payment Details:", layout.AlignLeft)
	c.Font(layout.Regular, 12)
	c.Line(rowHeight, profile.Payment.PayeeLabel+": "+profile.Payment.PayeeID, layout.AlignLeft)

	// The image advances the cursor by its own height, so the closing line
	// below can never overlap it.
	if _, err := c.Image(code.Name, code.Source, paymentCodeW); err != nil {
		return err
	}
	c.Space(paymentTrailer)

	c.Font(layout.Bold, 15)
	c.Line(rowHeight, profile.Business.ClosingLine, layout.AlignCenter)
	c.Rule(ruleWidth)
	c.Space(5)
	return nil
}

func FromBytes(name string, png []byte) PaymentImage {
	return PaymentImage{Name: name, Source: bytes.NewReader(png)}
}

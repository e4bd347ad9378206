package pdf

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"go.uber.org/zap"
)

var (
	colorBlack = &props.Color{Red: 0, Green: 0, Blue: 0}
	colorGray  = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// StatementData is the bill history of one customer. Amounts are preformatted.
type StatementData struct {
	BusinessName string
	GeneratedOn  string
	Currency     string

	CustomerName    string
	CustomerAddress string
	CustomerPhone   string

	Lines []StatementLine

	GrandTotal string
}

type StatementLine struct {
	Date          string
	ItemName      string
	Quantity      string
	Unit          string
	UnitPrice     string
	WeightingRate string
	Total         string
}

type PDFProvider struct {
	log *zap.Logger
}

func New(log *zap.Logger) Provider {
	return &PDFProvider{log: log.Named("pdf.statement")}
}

func (p *PDFProvider) GenerateStatement(ctx context.Context, data StatementData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithTitle("Statement "+data.CustomerName, true).
		WithAuthor(data.BusinessName, true).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, data.BusinessName, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)
	m.AddRow(8,
		text.NewCol(6, "Customer Statement", props.Text{Size: 12, Style: fontstyle.Italic}),
		text.NewCol(6, "Date: "+data.GeneratedOn, props.Text{Size: 10, Align: align.Right}),
	)
	m.AddRows(line.NewRow(1, props.Line{Color: colorBlack, Thickness: 0.5}))

	m.AddRows(customerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))

	m.AddRows(tableHeaderRow(data.Currency))
	for _, l := range data.Lines {
		m.AddRows(tableLineRow(l))
	}
	if len(data.Lines) == 0 {
		m.AddRow(8, text.NewCol(12, "No bills recorded.", props.Text{Size: 9, Style: fontstyle.Italic, Top: 2}))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorBlack, Thickness: 0.3}))
	m.AddRow(10,
		col.New(7),
		text.NewCol(5, fmt.Sprintf("Total Billed: %s %s", data.GrandTotal, data.Currency), props.Text{
			Size:  11,
			Style: fontstyle.Bold,
			Align: align.Right,
			Top:   2,
		}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate statement: %w", err)
	}

	p.log.Debug("statement generated",
		zap.String("customer", data.CustomerName),
		zap.Int("lines", len(data.Lines)),
	)
	return doc.GetBytes(), nil
}

func customerRow(data StatementData) core.Row {
	return row.New(20).Add(
		col.New(12).Add(
			text.New(data.CustomerName, props.Text{Style: fontstyle.Bold, Size: 11, Top: 2}),
			text.New("Address: "+nonEmpty(data.CustomerAddress, "-"), props.Text{Size: 9, Top: 8, Color: colorGray}),
			text.New("Phone: "+nonEmpty(data.CustomerPhone, "-"), props.Text{Size: 9, Top: 13, Color: colorGray}),
		),
	)
}

func tableHeaderRow(currency string) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: a, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("Date", 2, align.Left),
		h("Item", 3, align.Left),
		h("Qty", 1, align.Right),
		h("Unit", 1, align.Left),
		h("Price ("+currency+")", 2, align.Right),
		h("Weighting", 1, align.Right),
		h("Total ("+currency+")", 2, align.Right),
	)
}

func tableLineRow(l StatementLine) core.Row {
	c := func(value string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(value, props.Text{Size: 9, Align: a, Top: 1}))
	}
	return row.New(7).Add(
		c(l.Date, 2, align.Left),
		c(l.ItemName, 3, align.Left),
		c(l.Quantity, 1, align.Right),
		c(l.Unit, 1, align.Left),
		c(l.UnitPrice, 2, align.Right),
		c(l.WeightingRate, 1, align.Right),
		c(l.Total, 2, align.Right),
	)
}

func nonEmpty(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

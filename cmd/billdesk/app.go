package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/smallbiznis/billdesk/internal/bill"
	"github.com/smallbiznis/billdesk/internal/billing"
	billingdomain "github.com/smallbiznis/billdesk/internal/billing/domain"
	"github.com/smallbiznis/billdesk/internal/clock"
	"github.com/smallbiznis/billdesk/internal/config"
	"github.com/smallbiznis/billdesk/internal/console"
	"github.com/smallbiznis/billdesk/internal/customer"
	customerdomain "github.com/smallbiznis/billdesk/internal/customer/domain"
	"github.com/smallbiznis/billdesk/internal/invoice"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	"github.com/smallbiznis/billdesk/internal/logger"
	"github.com/smallbiznis/billdesk/internal/migration"
	"github.com/smallbiznis/billdesk/internal/opener"
	"github.com/smallbiznis/billdesk/internal/providers/pdf"
	"github.com/smallbiznis/billdesk/pkg/db"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const (
	flagConfigDir  = "config-dir"
	flagOutputRoot = "output-root"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "billdesk",
		Usage: "invoices for a construction-materials counter",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagConfigDir,
				Usage: "directory searched first for billdesk.yml",
			},
			&cli.StringFlag{
				Name:  flagOutputRoot,
				Usage: "root directory for generated invoices",
			},
		},
		// item specs contain commas
		DisableSliceFlagSeparator: true,
		Action:                    runMenu,
		Commands: []*cli.Command{
			{
				Name:   "menu",
				Usage:  "interactive billing menu",
				Action: runMenu,
			},
			{
				Name:  "create",
				Usage: "generate one invoice non-interactively",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "customer name", Required: true},
					&cli.StringFlag{Name: "address", Usage: "customer address (stored one if empty)"},
					&cli.StringFlag{Name: "phone", Usage: "customer phone (stored one if empty)"},
					&cli.StringSliceFlag{
						Name:     "item",
						Usage:    `line item "name,price,quantity,unit,weighting_rate" (repeatable)`,
						Required: true,
					},
					&cli.BoolFlag{Name: "open", Usage: "open the document when done"},
				},
				Action: runCreate,
			},
			{
				Name:  "statement",
				Usage: "write a customer's bill history as PDF",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "customer", Usage: "customer name", Required: true},
					&cli.StringFlag{Name: "out", Usage: "output file", Required: true},
				},
				Action: runStatement,
			},
			{
				Name:  "customers",
				Usage: "list stored customers",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page-size", Usage: "customers per page"},
					&cli.StringFlag{Name: "page-token", Usage: "token printed by the previous page"},
				},
				Action: runCustomers,
			},
		},
	}
}

func runMenu(cCtx *cli.Context) error {
	var c *console.Console
	stop, err := start(cCtx, true, fx.Populate(&c))
	if err != nil {
		return err
	}
	defer stop()

	return c.Run(cCtx.Context, cCtx.App.Reader, cCtx.App.Writer)
}

func runCreate(cCtx *cli.Context) error {
	items, err := parseItems(cCtx.StringSlice("item"))
	if err != nil {
		return err
	}
	customer := invoicedomain.CustomerRecord{
		Name:    cCtx.String("name"),
		Address: cCtx.String("address"),
		Phone:   cCtx.String("phone"),
	}

	var (
		svc billingdomain.Service
		op  opener.Opener
	)
	stop, err := start(cCtx, false, fx.Populate(&svc, &op))
	if err != nil {
		return err
	}
	defer stop()

	receipt, err := svc.Submit(cCtx.Context, customer, items)
	if err != nil {
		return err
	}
	fmt.Fprintf(cCtx.App.Writer, "%s\nTotal Amount: %s\n", receipt.Path, invoicedomain.FormatAmount(receipt.GrandTotal))

	if cCtx.Bool("open") {
		return op.Open(receipt.Path)
	}
	return nil
}

func runStatement(cCtx *cli.Context) error {
	var (
		svc billingdomain.Service
		fs  afero.Fs
	)
	stop, err := start(cCtx, false, fx.Populate(&svc, &fs))
	if err != nil {
		return err
	}
	defer stop()

	doc, err := svc.Statement(cCtx.Context, cCtx.String("customer"))
	if err != nil {
		return err
	}
	out := cCtx.String("out")
	if err := afero.WriteFile(fs, out, doc, 0o644); err != nil {
		return fmt.Errorf("%w: %v", invoicedomain.ErrIOFailure, err)
	}
	fmt.Fprintln(cCtx.App.Writer, out)
	return nil
}

func runCustomers(cCtx *cli.Context) error {
	var svc customerdomain.Service
	stop, err := start(cCtx, false, fx.Populate(&svc))
	if err != nil {
		return err
	}
	defer stop()

	resp, err := svc.List(cCtx.Context, customerdomain.ListCustomerRequest{
		PageToken: cCtx.String("page-token"),
		PageSize:  cCtx.Int("page-size"),
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cCtx.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tADDRESS\tPHONE")
	for _, c := range resp.Customers {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, c.Address, c.Phone)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if resp.HasMore {
		fmt.Fprintf(cCtx.App.Writer, "next page: --page-token %s\n", resp.NextPageToken)
	}
	return nil
}

// parseItems reads "name,price,quantity,unit,weighting_rate" values. The
// weighting rate may be omitted.
func parseItems(values []string) ([]invoicedomain.LineItem, error) {
	items := make([]invoicedomain.LineItem, 0, len(values))
	for i, raw := range values {
		parts := strings.Split(raw, ",")
		if len(parts) == 4 {
			parts = append(parts, "0")
		}
		if len(parts) != 5 {
			return nil, fmt.Errorf("%w: item %d: want name,price,quantity,unit,weighting_rate", invoicedomain.ErrInvalidInput, i+1)
		}
		item, err := invoicedomain.ParseLineItem(parts[0], parts[1], parts[2], parts[3], parts[4])
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, invoicedomain.ErrEmptyInvoice
	}
	return items, nil
}

// overrideConfig applies global flags on top of the environment. Only the
// menu runs long enough to pick up profile edits.
func overrideConfig(cCtx *cli.Context, interactive bool) func(config.Config) config.Config {
	return func(cfg config.Config) config.Config {
		return applyFlags(cCtx, interactive, cfg)
	}
}

func applyFlags(cCtx *cli.Context, interactive bool, cfg config.Config) config.Config {
	if v := cCtx.String(flagConfigDir); v != "" {
		cfg.ConfigDir = v
	}
	if v := cCtx.String(flagOutputRoot); v != "" {
		cfg.OutputRoot = v
	}
	if !interactive {
		cfg.WatchProfile = false
	}
	return cfg
}

// start builds and starts the application graph for one command. The returned
// func stops it, closing the database.
func start(cCtx *cli.Context, interactive bool, opts ...fx.Option) (func(), error) {
	app := fx.New(append([]fx.Option{
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		config.Module,
		fx.Decorate(overrideConfig(cCtx, interactive)),
		logger.Module,
		clock.Module,
		db.Module,
		migration.Module,
		customer.Module,
		bill.Module,
		invoice.Module,
		pdf.Module,
		billing.Module,
		opener.Module,
		console.Module,
	}, opts...)...)

	ctx := cCtx.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if err := app.Err(); err != nil {
		return nil, err
	}
	if err := app.Start(ctx); err != nil {
		return nil, err
	}
	return func() {
		_ = app.Stop(context.Background())
	}, nil
}

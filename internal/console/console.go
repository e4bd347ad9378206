// Package console is the interactive menu front end.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	billingdomain "github.com/smallbiznis/billdesk/internal/billing/domain"
	"github.com/smallbiznis/billdesk/internal/config"
	customerdomain "github.com/smallbiznis/billdesk/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	"github.com/smallbiznis/billdesk/internal/opener"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	menuTitle = "--- Billing App for Construction Materials ---"

	choiceGenerate = "1"
	choiceExit     = "2"
)

type Params struct {
	fx.In

	Billing   billingdomain.Service
	Customers customerdomain.Service
	Opener    opener.Opener
	Profile   *config.ProfileHolder
	Log       *zap.Logger
}

type Console struct {
	billing   billingdomain.Service
	customers customerdomain.Service
	opener    opener.Opener
	profile   *config.ProfileHolder
	log       *zap.Logger
}

func New(p Params) *Console {
	return &Console{
		billing:   p.Billing,
		customers: p.Customers,
		opener:    p.Opener,
		profile:   p.Profile,
		log:       p.Log.Named("console"),
	}
}

// session is one run of the menu over a pair of streams.
type session struct {
	*Console
	in  *bufio.Reader
	out io.Writer
}

// Run serves the menu until the user exits or input ends.
func (c *Console) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	s := &session{Console: c, in: bufio.NewReader(in), out: out}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printf("\n%s\n", menuTitle)
		s.printf("1. Generate New Bill\n")
		s.printf("2. Exit\n")
		choice, err := s.prompt("Enter your choice: ")
		if err != nil {
			return endOfInput(err)
		}

		switch choice {
		case choiceGenerate:
			if err := s.generate(ctx); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.printf("Error: %v\n", err)
			}
		case choiceExit:
			s.printf("Exiting...\n")
			return nil
		default:
			s.printf("Invalid choice. Please try again.\n")
		}
	}
}

func (s *session) generate(ctx context.Context) error {
	customer, err := s.readCustomer(ctx)
	if err != nil {
		return err
	}

	items, err := s.readItems()
	if err != nil {
		return err
	}

	receipt, err := s.billing.Submit(ctx, customer, items)
	if err != nil {
		return err
	}

	s.printf("Bill generated: %s\n", receipt.Path)
	s.printf("%s\n", s.totalLine(receipt.GrandTotal))

	open, err := s.confirm("The bill has been generated. Do you want to open it? (y/n): ")
	if err != nil {
		return err
	}
	if open {
		if err := s.opener.Open(receipt.Path); err != nil {
			s.log.Warn("failed to open document", zap.String("path", receipt.Path), zap.Error(err))
			s.printf("Could not open %s: %v\n", receipt.Path, err)
		}
	}
	return nil
}

func (s *session) readCustomer(ctx context.Context) (invoicedomain.CustomerRecord, error) {
	var name string
	for name == "" {
		v, err := s.prompt("Enter Customer Name: ")
		if err != nil {
			return invoicedomain.CustomerRecord{}, err
		}
		name = v
		if name == "" {
			s.printf("Customer name is required.\n")
		}
	}

	// offer what we stored for this name the first time
	var stored customerdomain.Customer
	found, err := s.customers.GetByName(ctx, name)
	switch {
	case err == nil:
		stored = found
		s.printf("Returning customer. Press Enter to keep the stored details.\n")
	case errors.Is(err, customerdomain.ErrNotFound):
	default:
		return invoicedomain.CustomerRecord{}, err
	}

	address, err := s.promptDefault("Enter Address", stored.Address)
	if err != nil {
		return invoicedomain.CustomerRecord{}, err
	}
	phone, err := s.promptDefault("Enter Phone Number", stored.Phone)
	if err != nil {
		return invoicedomain.CustomerRecord{}, err
	}

	return invoicedomain.CustomerRecord{Name: name, Address: address, Phone: phone}, nil
}

func (s *session) readItems() ([]invoicedomain.LineItem, error) {
	currency := s.profile.Get().Payment.Currency
	var items []invoicedomain.LineItem

	for {
		item, err := s.readItem(currency)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		s.printItems(items, currency)

		more, err := s.confirm("Add another item? (y/n): ")
		if err != nil {
			return nil, err
		}
		if !more {
			return items, nil
		}
	}
}

// readItem re-prompts until the entered fields form a valid item.
func (s *session) readItem(currency string) (invoicedomain.LineItem, error) {
	for {
		fields := make([]string, 0, 5)
		for _, label := range []string{
			"Enter Item Name: ",
			"Enter Item Price (" + currency + "): ",
			"Enter Quantity (e.g., 1.5, 2.0): ",
			"Enter Unit (tons/kg): ",
		} {
			v, err := s.prompt(label)
			if err != nil {
				return invoicedomain.LineItem{}, err
			}
			fields = append(fields, v)
		}
		rate, err := s.promptDefault("Enter Weighting Rate ("+currency+")", "0")
		if err != nil {
			return invoicedomain.LineItem{}, err
		}

		item, err := invoicedomain.ParseLineItem(fields[0], fields[1], fields[2], fields[3], rate)
		if err != nil {
			if errors.Is(err, invoicedomain.ErrInvalidInput) {
				s.printf("Invalid item: %v. Please enter the item again.\n", err)
				continue
			}
			return invoicedomain.LineItem{}, err
		}
		return item, nil
	}
}

func (s *session) printItems(items []invoicedomain.LineItem, currency string) {
	s.printf("\nItems:\n")
	for _, item := range items {
		s.printf("  %s - %s %s @ %s %s\n",
			item.ItemName,
			item.Quantity.String(),
			item.Unit,
			invoicedomain.FormatAmount(item.UnitPrice),
			currency,
		)
	}
	s.printf("%s\n", s.totalLine(invoicedomain.GrandTotal(items)))
}

func (s *session) totalLine(total decimal.Decimal) string {
	return fmt.Sprintf("Total Amount: %s %s", invoicedomain.FormatAmount(total), s.profile.Get().Payment.Currency)
}

func (s *session) prompt(label string) (string, error) {
	s.printf("%s", label)
	line, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *session) promptDefault(label, def string) (string, error) {
	if def != "" {
		label = fmt.Sprintf("%s [%s]", label, def)
	}
	v, err := s.prompt(label + ": ")
	if err != nil {
		return "", err
	}
	if v == "" {
		return def, nil
	}
	return v, nil
}

func (s *session) confirm(label string) (bool, error) {
	v, err := s.prompt(label)
	if err != nil {
		return false, err
	}
	v = strings.ToLower(v)
	return v == "y" || v == "yes", nil
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

var Module = fx.Module("console",
	fx.Provide(New),
)

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	billdomain "github.com/smallbiznis/billdesk/internal/bill/domain"
	"github.com/smallbiznis/billdesk/internal/billing/domain"
	"github.com/smallbiznis/billdesk/internal/clock"
	"github.com/smallbiznis/billdesk/internal/config"
	customerdomain "github.com/smallbiznis/billdesk/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	"github.com/smallbiznis/billdesk/internal/providers/pdf"
	"github.com/smallbiznis/billdesk/pkg/db/pagination"
	"github.com/smallbiznis/billdesk/pkg/log/ctxlogger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Config    config.Config
	Profile   *config.ProfileHolder
	Clock     clock.Clock
	Assembler domain.Assembler
	Customers customerdomain.Service
	BillRepo  billdomain.Repository
	PDF       pdf.Provider
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	profile *config.ProfileHolder
	clock   clock.Clock

	outputRoot string

	assembler domain.Assembler
	customers customerdomain.Service
	billRepo  billdomain.Repository
	pdf       pdf.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("billing.service"),
		profile: p.Profile,
		clock:   p.Clock,

		outputRoot: p.Config.OutputRoot,

		assembler: p.Assembler,
		customers: p.Customers,
		billRepo:  p.BillRepo,
		pdf:       p.PDF,
	}
}

func (s *Service) Submit(ctx context.Context, customer invoicedomain.CustomerRecord, items []invoicedomain.LineItem) (domain.Receipt, error) {
	customer = customer.Normalize()
	if err := invoicedomain.ValidateInvoice(customer, items); err != nil {
		return domain.Receipt{}, err
	}

	ctx, _ = ctxlogger.ContextWithSubmission(ctx)
	ctx = ctxlogger.ContextWithCustomer(ctx, customer.Name)
	log := ctxlogger.WithContext(ctx, s.log)

	customer, err := s.customers.Resolve(ctx, customer)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("resolve customer: %w", err)
	}

	res, err := s.assembler.Assemble(ctx, customer, items, s.outputRoot)
	if err != nil {
		return domain.Receipt{}, err
	}

	rows := billdomain.FromInvoice(res.Invoice)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.customers.Remember(ctx, tx, res.Invoice.Customer); err != nil {
			return err
		}
		return s.billRepo.InsertBatch(ctx, tx, rows)
	})
	if err != nil {
		if derr := s.assembler.Discard(res.Path); derr != nil {
			log.Error("failed to discard document after rollback", zap.String("path", res.Path), zap.Error(derr))
		}
		return domain.Receipt{}, fmt.Errorf("%w: record bills: %v", invoicedomain.ErrIOFailure, err)
	}

	receipt := domain.Receipt{
		Path:       res.Path,
		Invoice:    res.Invoice,
		GrandTotal: res.Invoice.GrandTotal(),
		Rows:       len(rows),
	}
	log.Info("bill submitted",
		zap.String("path", receipt.Path),
		zap.String("grand_total", invoicedomain.FormatAmount(receipt.GrandTotal)),
		zap.Int("rows", receipt.Rows),
	)
	return receipt, nil
}

func (s *Service) Statement(ctx context.Context, customerName string) ([]byte, error) {
	customer, err := s.customers.GetByName(ctx, customerName)
	if err != nil {
		if errors.Is(err, customerdomain.ErrInvalidName) {
			return nil, fmt.Errorf("%w: customer name is required", invoicedomain.ErrInvalidInput)
		}
		return nil, err
	}

	bills, err := s.allBills(ctx, customer.Name)
	if err != nil {
		return nil, err
	}

	profile := s.profile.Get()
	data := pdf.StatementData{
		BusinessName:    profile.Business.Name,
		GeneratedOn:     s.clock.Now().Format("2006-01-02"),
		Currency:        profile.Payment.Currency,
		CustomerName:    customer.Name,
		CustomerAddress: customer.Address,
		CustomerPhone:   customer.Phone,
		Lines:           make([]pdf.StatementLine, 0, len(bills)),
	}

	total := decimal.Zero
	for _, b := range bills {
		item := b.LineItem()
		data.Lines = append(data.Lines, pdf.StatementLine{
			Date:          b.Date,
			ItemName:      item.ItemName,
			Quantity:      invoicedomain.FormatAmount(item.Quantity),
			Unit:          item.Unit,
			UnitPrice:     invoicedomain.FormatAmount(item.UnitPrice),
			WeightingRate: invoicedomain.FormatAmount(item.WeightingRate),
			Total:         invoicedomain.FormatAmount(b.TotalAmount),
		})
		total = total.Add(b.TotalAmount)
	}
	data.GrandTotal = invoicedomain.FormatAmount(total)

	return s.pdf.GenerateStatement(ctx, data)
}

func (s *Service) allBills(ctx context.Context, name string) ([]*billdomain.Bill, error) {
	var (
		out  []*billdomain.Bill
		page = pagination.Pagination{PageSize: pagination.MaxPageSize}
	)
	for {
		items, err := s.billRepo.ListByCustomer(ctx, s.db, name, page)
		if err != nil {
			return nil, err
		}
		items, info := pagination.BuildCursorPageInfo(items, page.Size(), func(b *billdomain.Bill) int64 {
			return b.ID
		})
		out = append(out, items...)
		if !info.HasMore {
			return out, nil
		}
		page.PageToken = info.NextPageToken
	}
}

package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/billdesk/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	"github.com/smallbiznis/billdesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("customer.service"),
		repo: p.Repo,
	}
}

func (s *Service) Remember(ctx context.Context, tx *gorm.DB, record invoicedomain.CustomerRecord) (bool, error) {
	record = record.Normalize()
	if record.Name == "" {
		return false, domain.ErrInvalidName
	}
	if tx == nil {
		tx = s.db
	}

	created, err := s.repo.InsertIfAbsent(ctx, tx, &domain.Customer{
		Name:    record.Name,
		Address: record.Address,
		Phone:   record.Phone,
	})
	if err != nil {
		return false, err
	}
	if created {
		s.log.Info("customer remembered", zap.String("name", record.Name))
	}
	return created, nil
}

func (s *Service) Resolve(ctx context.Context, record invoicedomain.CustomerRecord) (invoicedomain.CustomerRecord, error) {
	record = record.Normalize()
	if record.Name == "" {
		return record, domain.ErrInvalidName
	}
	if record.Address != "" && record.Phone != "" {
		return record, nil
	}

	stored, err := s.repo.FindByName(ctx, s.db, record.Name)
	if err != nil {
		return record, err
	}
	if stored == nil {
		return record, nil
	}

	if record.Address == "" {
		record.Address = stored.Address
	}
	if record.Phone == "" {
		record.Phone = stored.Phone
	}
	return record, nil
}

func (s *Service) GetByName(ctx context.Context, name string) (domain.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}

	item, err := s.repo.FindByName(ctx, s.db, name)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (domain.ListCustomerResponse, error) {
	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}

	items, err := s.repo.List(ctx, s.db, page)
	if err != nil {
		return domain.ListCustomerResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, page.Size(), func(c *domain.Customer) int64 {
		return c.ID
	})

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		customers = append(customers, *item)
	}

	return domain.ListCustomerResponse{PageInfo: pageInfo, Customers: customers}, nil
}
